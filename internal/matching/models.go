// internal/matching/models.go
package matching

// DefaultImage is used when a catalog record carries no usable image.
const DefaultImage = "/default-bottle.png"

// SubRatings holds the six optional numeric ratings of a catalog item.
// Missing or non-numeric source values are stored as 0.
type SubRatings struct {
	Longevity   float64 `json:"longevity"`
	Sillage     float64 `json:"sillage"`
	Versatility float64 `json:"versatility"`
	Uniqueness  float64 `json:"uniqueness"`
	MassAppeal  float64 `json:"massAppeal"`
	Value       float64 `json:"value"`
}

// Values returns the ratings in their fixed slot order.
func (r SubRatings) Values() [6]float64 {
	return [6]float64{r.Longevity, r.Sillage, r.Versatility, r.Uniqueness, r.MassAppeal, r.Value}
}

// CatalogItem is one candidate fragrance as delivered by a catalog source.
type CatalogItem struct {
	ID             string     `json:"id"`
	SequenceNumber int        `json:"sequenceNumber"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Tags           []string   `json:"tags"`
	ImageRef       string     `json:"image"`
	SubRatings     SubRatings `json:"subRatings"`
	PurchaseURL    string     `json:"purchaseUrl,omitempty"`
}

// RankedResult is a scored catalog item. It is recomputed on every request.
type RankedResult struct {
	ID               string     `json:"id"`
	SequenceNumber   int        `json:"sequenceNumber"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Tags             []string   `json:"tags"`
	Image            string     `json:"image"`
	PurchaseURL      string     `json:"purchaseUrl,omitempty"`
	RawScore         int        `json:"score"`
	NormalizedScore  float64    `json:"rawMatchScore"`
	Relevance        int        `json:"relevance"`
	DisplayMatch     int        `json:"displayMatch"`
	AverageSubRating float64    `json:"avgScore"`
	SubRatings       SubRatings `json:"subRatings"`
}

// Status describes why a scoring run produced the results it did.
type Status string

const (
	StatusMatched          Status = "matched"
	StatusNoGenderSelected Status = "no_gender_selected"
	StatusNoCandidates     Status = "no_candidates"
)

// Outcome is the detailed result of a scoring run.
type Outcome struct {
	Results    []RankedResult `json:"results"`
	Gender     string         `json:"gender,omitempty"`
	Candidates int            `json:"candidates"`
	Status     Status         `json:"status"`
}
