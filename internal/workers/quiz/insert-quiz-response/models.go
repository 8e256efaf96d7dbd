// internal/workers/quiz/insert-quiz-response/models.go
package insertquizresponse

import (
	"encoding/json"

	"fragrance-finder/internal/quiz"
)

// MaxTopFragrances is how many leading sequence numbers are stored per response.
const MaxTopFragrances = 3

type Input struct {
	quiz.Answers

	Tags              interface{} `json:"tags"`
	TopFragranceIDs   []int       `json:"topFragranceIds"`
	Country           string      `json:"country"`
	City              string      `json:"city"`
	Region            string      `json:"region"`
	Email             string      `json:"email"`
	AgreedToLeadTerms bool        `json:"agreedToLeadTerms"`
}

// UnmarshalJSON also accepts the quiz client's column-style keys
// (top_fragrance_ids, user_country, user_city, user_region,
// agreed_to_lead_terms). The camelCase key wins when both are set.
func (in *Input) UnmarshalJSON(data []byte) error {
	type plain Input
	var aux struct {
		plain
		TopFragranceIDsColumn []int   `json:"top_fragrance_ids"`
		UserCountry           *string `json:"user_country"`
		UserCity              *string `json:"user_city"`
		UserRegion            *string `json:"user_region"`
		AgreedColumn          *bool   `json:"agreed_to_lead_terms"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*in = Input(aux.plain)
	if len(in.TopFragranceIDs) == 0 {
		in.TopFragranceIDs = aux.TopFragranceIDsColumn
	}
	in.Country = firstSet(in.Country, aux.UserCountry)
	in.City = firstSet(in.City, aux.UserCity)
	in.Region = firstSet(in.Region, aux.UserRegion)
	if aux.AgreedColumn != nil && *aux.AgreedColumn {
		in.AgreedToLeadTerms = true
	}
	return nil
}

func firstSet(primary string, alias *string) string {
	if primary == "" && alias != nil {
		return *alias
	}
	return primary
}

type Output struct {
	ResponseID string   `json:"responseId"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"createdAt"` // ISO 8601
}
