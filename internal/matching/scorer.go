// internal/matching/scorer.go
package matching

import (
	"math"
	"sort"
)

// Scorer ranks catalog items against a quiz tag set. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
	tables   Tables
	maxScore int
	genders  TagSet
}

// NewScorer builds a Scorer from the given tables. The tables are copied.
func NewScorer(tables Tables) *Scorer {
	t := tables.clone()
	return &Scorer{
		tables:   t,
		maxScore: t.MaxScore(),
		genders:  NewTagSet(t.Genders),
	}
}

// Tables returns a copy of the scorer's configuration.
func (s *Scorer) Tables() Tables {
	return s.tables.clone()
}

// MaxScore is the highest raw score an item can reach.
func (s *Scorer) MaxScore() int {
	return s.maxScore
}

// Score returns the ranked, capped results for quizTags over catalog.
func (s *Scorer) Score(quizTags []string, catalog []CatalogItem) []RankedResult {
	return s.ScoreDetailed(quizTags, catalog).Results
}

// ScoreDetailed is Score plus the selected gender and a status explaining an
// empty result.
func (s *Scorer) ScoreDetailed(quizTags []string, catalog []CatalogItem) Outcome {
	tags := NormalizeTags(quizTags)

	gender := s.selectGender(tags)
	if gender == "" {
		return Outcome{Results: []RankedResult{}, Status: StatusNoGenderSelected}
	}

	quiz := NewTagSet(tags)
	results := make([]RankedResult, 0, len(catalog))
	for _, item := range catalog {
		itemTags := NormalizeTags(item.Tags)
		itemSet := NewTagSet(itemTags)
		if !itemSet.Has(gender) {
			continue
		}
		results = append(results, s.rank(item, itemTags, itemSet, quiz))
	}

	// Ties keep catalog order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RawScore > results[j].RawScore
	})

	candidates := len(results)
	if s.tables.ResultCap > 0 && len(results) > s.tables.ResultCap {
		results = results[:s.tables.ResultCap]
	}

	status := StatusMatched
	if candidates == 0 {
		status = StatusNoCandidates
	}
	return Outcome{
		Results:    results,
		Gender:     gender,
		Candidates: candidates,
		Status:     status,
	}
}

// selectGender returns the first quiz tag found in the gender vocabulary.
func (s *Scorer) selectGender(tags []string) string {
	for _, t := range tags {
		if s.genders.Has(t) {
			return t
		}
	}
	return ""
}

func (s *Scorer) rank(item CatalogItem, itemTags []string, itemSet, quiz TagSet) RankedResult {
	raw := s.rawScore(itemSet, quiz)

	normalized := 0.0
	if s.maxScore > 0 {
		normalized = float64(raw) / float64(s.maxScore)
	}

	image := item.ImageRef
	if image == "" {
		image = DefaultImage
	}

	return RankedResult{
		ID:               item.ID,
		SequenceNumber:   item.SequenceNumber,
		Title:            item.Title,
		Description:      item.Description,
		Tags:             itemTags,
		Image:            image,
		PurchaseURL:      item.PurchaseURL,
		RawScore:         raw,
		NormalizedScore:  normalized,
		Relevance:        roundHalfUp(normalized * 100),
		DisplayMatch:     s.displayMatch(normalized),
		AverageSubRating: AverageSubRating(item.SubRatings),
		SubRatings:       item.SubRatings,
	}
}

// rawScore applies category weights and avoidance penalties, then clamps.
func (s *Scorer) rawScore(itemSet, quiz TagSet) int {
	score := 0
	for _, c := range s.tables.Categories {
		for _, t := range c.Tags {
			if quiz.Has(t) && itemSet.Has(t) {
				score += c.Weight
				break
			}
		}
	}

	for _, a := range s.tables.Avoidances {
		if !quiz.Has(a.Tag) {
			continue
		}
		for _, forbidden := range a.Forbidden {
			if itemSet.Has(forbidden) {
				score -= s.tables.Penalty
			}
		}
	}

	if score < 0 {
		return 0
	}
	if score > s.maxScore {
		return s.maxScore
	}
	return score
}

// displayMatch maps [0,1] onto [floor, floor+span] so low matches never look discouraging.
func (s *Scorer) displayMatch(normalized float64) int {
	return roundHalfUp(float64(s.tables.DisplayFloor) + normalized*float64(s.tables.DisplaySpan))
}

// AverageSubRating is the mean of all six rating slots (absent counts as 0),
// rounded to one decimal.
func AverageSubRating(r SubRatings) float64 {
	values := r.Values()
	sum := 0.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
	}
	return math.Round(sum/float64(len(values))*10) / 10
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
