// internal/workers/communication/newsletter-subscribe/models.go
package newslettersubscribe

import "encoding/json"

// Geo is caller-supplied location; it is never resolved server side.
type Geo struct {
	CountryName string `json:"country_name"`
	City        string `json:"city"`
	Region      string `json:"region"`
}

type Input struct {
	Email       string          `json:"email"`
	Geo         *Geo            `json:"geo,omitempty"`
	QuizAnswers json.RawMessage `json:"quizAnswers,omitempty"`
	Tags        interface{}     `json:"tags"`
}

type Output struct {
	Success      bool   `json:"success"`
	SubscriberID string `json:"subscriberId"`
	Created      bool   `json:"created"`
}
