// internal/matching/tables.go
package matching

// Category is a named group of quiz tags that contributes its weight at most once.
type Category struct {
	Name   string
	Tags   []string
	Weight int
}

// Avoidance maps an "avoid-*" quiz tag to the item tags it penalises.
type Avoidance struct {
	Tag       string
	Forbidden []string
}

// Tables is the immutable scoring configuration handed to a Scorer.
type Tables struct {
	Genders      []string
	Categories   []Category
	Avoidances   []Avoidance
	Penalty      int
	ResultCap    int
	DisplayFloor int
	DisplaySpan  int
}

// DefaultTables returns the production scoring tables (max score 75).
func DefaultTables() Tables {
	return Tables{
		Genders: []string{"for-men", "for-women", "for-unisex"},
		Categories: []Category{
			{Name: "usage", Tags: []string{"daily-wear", "office-use", "evening-wear", "special-event", "sporty-fragrance"}, Weight: 10},
			{Name: "profile", Tags: []string{"fresh-citrus", "woody-earthy", "spicy-warm", "sweet-gourmand", "floral-scent", "aquatic-clean"}, Weight: 20},
			{Name: "season", Tags: []string{"warm-weather", "cold-weather", "all-season"}, Weight: 10},
			{Name: "intensity", Tags: []string{"light-intensity", "moderate-intensity", "strong-intensity"}, Weight: 10},
			{Name: "longevity", Tags: []string{"short-longevity", "medium-longevity", "long-longevity"}, Weight: 10},
			{Name: "budget", Tags: []string{"budget-low", "budget-mid", "budget-high", "budget-luxury"}, Weight: 5},
			{Name: "brand", Tags: []string{"designer-brand", "niche-brand", "any-brand"}, Weight: 5},
			{Name: "age", Tags: []string{"age-under-25", "age-26-35", "age-36-45", "age-46-plus"}, Weight: 5},
		},
		Avoidances: []Avoidance{
			{Tag: "avoid-sweet", Forbidden: []string{"sweet-gourmand"}},
			{Tag: "avoid-woody", Forbidden: []string{"woody-earthy"}},
			{Tag: "avoid-floral", Forbidden: []string{"floral-scent"}},
			{Tag: "avoid-fresh", Forbidden: []string{"fresh-citrus", "aquatic-clean"}},
			{Tag: "avoid-musk", Forbidden: []string{"musky"}},
		},
		Penalty:      20,
		ResultCap:    15,
		DisplayFloor: 60,
		DisplaySpan:  40,
	}
}

// MaxScore is the sum of all category weights.
func (t Tables) MaxScore() int {
	total := 0
	for _, c := range t.Categories {
		total += c.Weight
	}
	return total
}

// WithResultCap returns a copy of the tables with a different cap.
// Non-positive values leave the cap unchanged.
func (t Tables) WithResultCap(limit int) Tables {
	if limit > 0 {
		t.ResultCap = limit
	}
	return t
}

// clone deep-copies the slices so a Scorer never shares them with its caller.
func (t Tables) clone() Tables {
	out := t
	out.Genders = NormalizeTags(t.Genders)
	out.Categories = make([]Category, len(t.Categories))
	for i, c := range t.Categories {
		out.Categories[i] = Category{Name: c.Name, Tags: NormalizeTags(c.Tags), Weight: c.Weight}
	}
	out.Avoidances = make([]Avoidance, len(t.Avoidances))
	for i, a := range t.Avoidances {
		out.Avoidances[i] = Avoidance{Tag: normalizeTag(a.Tag), Forbidden: NormalizeTags(a.Forbidden)}
	}
	return out
}
