// internal/workers/quiz/score-fragrances/models.go
package scorefragrances

import (
	"fragrance-finder/internal/matching"
	"fragrance-finder/internal/quiz"
)

// StatusSourceUnavailable marks a run scored against an empty catalog because
// the catalog could not be fetched.
const StatusSourceUnavailable = "source_unavailable"

type Input struct {
	// Tags is loosely typed: strings, nested lists and junk entries are accepted.
	Tags    interface{}   `json:"tags"`
	Answers *quiz.Answers `json:"answers,omitempty"`
}

type Output struct {
	Results          []matching.RankedResult `json:"results"`
	Status           string                  `json:"status"`
	Gender           string                  `json:"gender,omitempty"`
	Candidates       int                     `json:"candidates"`
	CatalogAvailable bool                    `json:"catalogAvailable"`
	CatalogSource    string                  `json:"catalogSource"`
}
