// internal/workers/quiz/save-email/models.go
package saveemail

import "encoding/json"

// LeadCapturedEvent is the SNS event type published for a consenting lead.
const LeadCapturedEvent = "lead.captured"

type Input struct {
	QuizResponseID    string `json:"quizResponseId"`
	Email             string `json:"email"`
	AgreedToLeadTerms bool   `json:"agreedToLeadTerms"`
}

// UnmarshalJSON also accepts consent as agreed_to_lead_terms.
func (in *Input) UnmarshalJSON(data []byte) error {
	type plain Input
	var aux struct {
		plain
		AgreedColumn *bool `json:"agreed_to_lead_terms"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*in = Input(aux.plain)
	if aux.AgreedColumn != nil && *aux.AgreedColumn {
		in.AgreedToLeadTerms = true
	}
	return nil
}

type Output struct {
	Success        bool   `json:"success"`
	QuizResponseID string `json:"quizResponseId"`
	LeadNotified   bool   `json:"leadNotified"`
}

// LeadEvent is the message body of a lead.captured notification.
type LeadEvent struct {
	QuizResponseID string `json:"quizResponseId"`
	Email          string `json:"email"`
	CapturedAt     string `json:"capturedAt"`
}
