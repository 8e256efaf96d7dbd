// internal/matching/scorer_test.go
package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func fullMatchTags() []string {
	return []string{
		"for-men", "daily-wear", "fresh-citrus", "warm-weather",
		"moderate-intensity", "medium-longevity", "budget-mid", "designer-brand",
	}
}

func item(id string, tags ...string) CatalogItem {
	return CatalogItem{
		ID:          id,
		Title:       "Item " + id,
		Description: "Description " + id,
		Tags:        tags,
		ImageRef:    "https://img.example.com/" + id + ".png",
	}
}

func newDefaultScorer() *Scorer {
	return NewScorer(DefaultTables())
}

// ==========================
// Scenario Tests
// ==========================

func TestScorer_Score_FullProfileWithoutAge(t *testing.T) {
	scorer := newDefaultScorer()

	results := scorer.Score(fullMatchTags(), []CatalogItem{item("rec1", fullMatchTags()...)})

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, "rec1", r.ID)
	assert.Equal(t, 70, r.RawScore) // 10+20+10+10+10+5+5, no age category
	assert.InDelta(t, 70.0/75.0, r.NormalizedScore, 1e-9)
	assert.Equal(t, 97, r.DisplayMatch)
	assert.Equal(t, 93, r.Relevance)
}

func TestScorer_Score_AllCategoriesReachMax(t *testing.T) {
	scorer := newDefaultScorer()
	tags := append(fullMatchTags(), "age-26-35")

	results := scorer.Score(tags, []CatalogItem{item("rec1", tags...)})

	require.Len(t, results, 1)
	assert.Equal(t, 75, results[0].RawScore)
	assert.Equal(t, 1.0, results[0].NormalizedScore)
	assert.Equal(t, 100, results[0].DisplayMatch)
	assert.Equal(t, 100, results[0].Relevance)
}

func TestScorer_Score_AvoidancePenaltyClampsToZero(t *testing.T) {
	scorer := newDefaultScorer()

	results := scorer.Score(
		[]string{"for-women", "avoid-sweet"},
		[]CatalogItem{item("rec1", "for-women", "sweet-gourmand")},
	)

	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].RawScore)
	assert.Equal(t, 60, results[0].DisplayMatch)
	assert.Equal(t, 0, results[0].Relevance)
}

func TestScorer_Score_AvoidanceCompoundsPerForbiddenTag(t *testing.T) {
	scorer := newDefaultScorer()
	quiz := []string{"for-men", "daily-wear", "evening-wear", "warm-weather", "light-intensity", "long-longevity", "avoid-fresh"}
	catalog := []CatalogItem{
		item("both", "for-men", "daily-wear", "warm-weather", "light-intensity", "long-longevity", "fresh-citrus", "aquatic-clean"),
		item("one", "for-men", "daily-wear", "warm-weather", "light-intensity", "long-longevity", "fresh-citrus"),
		item("none", "for-men", "daily-wear", "warm-weather", "light-intensity", "long-longevity"),
	}

	results := scorer.Score(quiz, catalog)

	require.Len(t, results, 3)
	byID := map[string]int{}
	for _, r := range results {
		byID[r.ID] = r.RawScore
	}
	assert.Equal(t, 40, byID["none"])
	assert.Equal(t, 20, byID["one"])  // 40 - 20
	assert.Equal(t, 0, byID["both"]) // 40 - 40
}

func TestScorer_Score_CategoryCountsOnce(t *testing.T) {
	scorer := newDefaultScorer()
	quiz := []string{"for-unisex", "daily-wear", "office-use", "evening-wear"}

	results := scorer.Score(quiz, []CatalogItem{item("rec1", "for-unisex", "daily-wear", "office-use", "evening-wear")})

	require.Len(t, results, 1)
	assert.Equal(t, 10, results[0].RawScore)
}

func TestScorer_Score_DuplicateTagsDoNotDoubleCount(t *testing.T) {
	scorer := newDefaultScorer()
	quiz := []string{"for-men", "avoid-musk", "avoid-musk", " AVOID-MUSK ", "spicy-warm", "spicy-warm"}

	results := scorer.Score(quiz, []CatalogItem{item("rec1", "for-men", "spicy-warm", "musky", "musky")})

	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].RawScore) // 20 - 20, penalty applied once
}

func TestScorer_Score_EmptyCatalog(t *testing.T) {
	scorer := newDefaultScorer()

	for _, tags := range [][]string{fullMatchTags(), {"daily-wear"}, nil} {
		out := scorer.ScoreDetailed(tags, nil)
		assert.NotNil(t, out.Results)
		assert.Empty(t, out.Results)
	}
	assert.Equal(t, StatusNoCandidates, scorer.ScoreDetailed(fullMatchTags(), []CatalogItem{}).Status)
}

func TestScorer_Score_NoGenderShortCircuits(t *testing.T) {
	scorer := newDefaultScorer()
	quiz := []string{"daily-wear", "fresh-citrus", "warm-weather"}
	catalog := []CatalogItem{
		item("rec1", "for-men", "daily-wear", "fresh-citrus", "warm-weather"),
		item("rec2", "for-women", "daily-wear"),
	}

	out := scorer.ScoreDetailed(quiz, catalog)

	assert.Empty(t, out.Results)
	assert.Equal(t, StatusNoGenderSelected, out.Status)
	assert.Equal(t, "", out.Gender)
}

func TestScorer_Score_FirstGenderWins(t *testing.T) {
	scorer := newDefaultScorer()
	catalog := []CatalogItem{
		item("men", "for-men"),
		item("women", "for-women"),
	}

	out := scorer.ScoreDetailed([]string{"for-women", "for-men"}, catalog)

	require.Len(t, out.Results, 1)
	assert.Equal(t, "women", out.Results[0].ID)
	assert.Equal(t, "for-women", out.Gender)
}

func TestScorer_Score_RenormalizesInput(t *testing.T) {
	scorer := newDefaultScorer()

	results := scorer.Score(
		[]string{"  For-Men ", "FRESH-CITRUS", ""},
		[]CatalogItem{item("rec1", " FOR-MEN", "Fresh-Citrus ")},
	)

	require.Len(t, results, 1)
	assert.Equal(t, 20, results[0].RawScore)
	assert.Equal(t, []string{"for-men", "fresh-citrus"}, results[0].Tags)
}

func TestScorer_Score_DefaultImageFallback(t *testing.T) {
	scorer := newDefaultScorer()
	it := item("rec1", "for-men")
	it.ImageRef = ""

	results := scorer.Score([]string{"for-men"}, []CatalogItem{it})

	require.Len(t, results, 1)
	assert.Equal(t, DefaultImage, results[0].Image)
}

// ==========================
// Property Tests
// ==========================

// propertyCatalog builds a deterministic catalog that exercises every
// category and avoidance combination reasonably often.
func propertyCatalog(n int) []CatalogItem {
	tables := DefaultTables()
	var pool []string
	for _, c := range tables.Categories {
		pool = append(pool, c.Tags...)
	}
	pool = append(pool, "musky")

	catalog := make([]CatalogItem, 0, n)
	for i := 0; i < n; i++ {
		tags := []string{tables.Genders[i%len(tables.Genders)]}
		for j, tag := range pool {
			if (i*7+j*3)%5 == 0 {
				tags = append(tags, tag)
			}
		}
		catalog = append(catalog, item(fmt.Sprintf("rec%03d", i), tags...))
	}
	return catalog
}

func propertyQueries() [][]string {
	return [][]string{
		fullMatchTags(),
		append(fullMatchTags(), "avoid-fresh", "avoid-musk"),
		{"for-women", "floral-scent", "sweet-gourmand", "evening-wear", "avoid-woody"},
		{"for-unisex", "aquatic-clean", "all-season", "age-46-plus", "avoid-sweet", "avoid-floral"},
		{"for-men"},
	}
}

func TestScorer_Properties(t *testing.T) {
	scorer := newDefaultScorer()
	catalog := propertyCatalog(120)
	byID := make(map[string]CatalogItem, len(catalog))
	for _, c := range catalog {
		byID[c.ID] = c
	}

	for _, quiz := range propertyQueries() {
		t.Run(fmt.Sprint(quiz), func(t *testing.T) {
			out := scorer.ScoreDetailed(quiz, catalog)
			results := out.Results

			assert.LessOrEqual(t, len(results), 15, "cap")
			assert.Greater(t, out.Candidates, 15, "catalog should overflow the cap")

			for i, r := range results {
				src := byID[r.ID]
				assert.Contains(t, NormalizeTags(src.Tags), out.Gender, "hard filter")

				assert.GreaterOrEqual(t, r.RawScore, 0)
				assert.LessOrEqual(t, r.RawScore, 75)
				assert.GreaterOrEqual(t, r.DisplayMatch, 60)
				assert.LessOrEqual(t, r.DisplayMatch, 100)

				if i > 0 {
					assert.GreaterOrEqual(t, results[i-1].RawScore, r.RawScore, "sort order")
				}
			}

			again := scorer.Score(quiz, catalog)
			assert.Equal(t, results, again, "idempotent")
		})
	}
}

func TestScorer_DisplayMatchMonotonic(t *testing.T) {
	scorer := newDefaultScorer()
	prev := -1
	for raw := 0; raw <= scorer.MaxScore(); raw++ {
		dm := scorer.displayMatch(float64(raw) / float64(scorer.MaxScore()))
		assert.GreaterOrEqual(t, dm, prev, "raw=%d", raw)
		assert.GreaterOrEqual(t, dm, 60)
		assert.LessOrEqual(t, dm, 100)
		prev = dm
	}
}

func TestScorer_StableTieOrder(t *testing.T) {
	scorer := newDefaultScorer()
	catalog := []CatalogItem{
		item("a", "for-men", "daily-wear"),
		item("b", "for-men", "woody-earthy"),
		item("c", "for-men", "daily-wear"),
		item("d", "for-men", "woody-earthy"),
		item("e", "for-men"),
	}

	results := scorer.Score([]string{"for-men", "daily-wear", "woody-earthy"}, catalog)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids)
}

// ==========================
// Configuration Tests
// ==========================

func TestDefaultTables_MaxScore(t *testing.T) {
	assert.Equal(t, 75, DefaultTables().MaxScore())
	assert.Equal(t, 75, newDefaultScorer().MaxScore())
}

func TestScorer_AlternateTables(t *testing.T) {
	tables := Tables{
		Genders:      []string{"any"},
		Categories:   []Category{{Name: "color", Tags: []string{"red", "blue"}, Weight: 4}},
		Avoidances:   []Avoidance{{Tag: "no-blue", Forbidden: []string{"blue"}}},
		Penalty:      1,
		ResultCap:    2,
		DisplayFloor: 0,
		DisplaySpan:  100,
	}
	scorer := NewScorer(tables)
	catalog := []CatalogItem{
		item("1", "any", "red"),
		item("2", "any", "blue"),
		item("3", "any", "red", "blue"),
	}

	results := scorer.Score([]string{"any", "red", "blue", "no-blue"}, catalog)

	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].ID)
	assert.Equal(t, 4, results[0].RawScore)
	assert.Equal(t, 100, results[0].DisplayMatch)
	assert.Equal(t, 3, results[1].RawScore)
	assert.Equal(t, 75, results[1].DisplayMatch)
}

func TestScorer_TablesAreCopied(t *testing.T) {
	tables := DefaultTables()
	scorer := NewScorer(tables)

	tables.Categories[0].Weight = 1000
	tables.Genders[0] = "nobody"

	assert.Equal(t, 75, scorer.MaxScore())
	assert.Len(t, scorer.Score([]string{"for-men"}, []CatalogItem{item("x", "for-men")}), 1)
}

func TestTables_WithResultCap(t *testing.T) {
	assert.Equal(t, 30, DefaultTables().WithResultCap(30).ResultCap)
	assert.Equal(t, 15, DefaultTables().WithResultCap(0).ResultCap)
}

// ==========================
// Sub-rating Tests
// ==========================

func TestAverageSubRating(t *testing.T) {
	tests := []struct {
		name     string
		ratings  SubRatings
		expected float64
	}{
		{"all missing", SubRatings{}, 0},
		{"all populated", SubRatings{8, 7, 9, 6, 8, 7}, 7.5},
		{"missing counted as zero", SubRatings{Longevity: 9, Sillage: 9, Versatility: 9}, 4.5},
		{"rounds to one decimal", SubRatings{Longevity: 10, Sillage: 1}, 1.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AverageSubRating(tt.ratings))
		})
	}
}
