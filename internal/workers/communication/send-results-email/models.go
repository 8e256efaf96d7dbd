// internal/workers/communication/send-results-email/models.go
package sendresultsemail

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
	// StatusDuplicate is attached to the EMAIL_ALREADY_SENT error metadata.
	StatusDuplicate = "duplicate"
)

// Fragrance is one result as the results page shows it.
type Fragrance struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	MatchScore  float64 `json:"matchScore"`
	PurchaseURL string  `json:"purchaseUrl,omitempty"`
}

type Input struct {
	To         string      `json:"to"`
	Fragrances []Fragrance `json:"fragrances"`
	Tags       interface{} `json:"tags"`
}

type Output struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Included  int    `json:"included"`
}
