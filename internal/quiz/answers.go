// internal/quiz/answers.go
package quiz

import (
	"encoding/json"
	"fmt"

	"fragrance-finder/internal/matching"
)

// StringList is a quiz answer that may arrive as a single string, a list of
// strings (possibly nested) or null. Non-string entries are dropped.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("quiz answer: %w", err)
	}
	*l = StringList(matching.SanitizeTags(raw))
	return nil
}

// Answers is a raw quiz submission.
type Answers struct {
	Gender       StringList `json:"gender,omitempty"`
	AgeGroup     StringList `json:"age_group,omitempty"`
	Usage        StringList `json:"usage,omitempty"`
	ScentProfile StringList `json:"scent_profile,omitempty"`
	Intensity    StringList `json:"intensity,omitempty"`
	Seasonality  StringList `json:"seasonality,omitempty"`
	Avoidance    StringList `json:"avoidance,omitempty"`
	Longevity    StringList `json:"longevity,omitempty"`
	Budget       StringList `json:"budget,omitempty"`
	BrandType    StringList `json:"brand_type,omitempty"`
}

// fields returns the answer lists in question order, gender first.
func (a Answers) fields() []StringList {
	return []StringList{
		a.Gender,
		a.AgeGroup,
		a.Usage,
		a.ScentProfile,
		a.Intensity,
		a.Seasonality,
		a.Avoidance,
		a.Longevity,
		a.Budget,
		a.BrandType,
	}
}

// Tags flattens every answer into one normalized tag list.
func (a Answers) Tags() []string {
	var all []string
	for _, f := range a.fields() {
		all = append(all, f...)
	}
	return matching.NormalizeTags(all)
}

// IsEmpty reports whether no question was answered.
func (a Answers) IsEmpty() bool {
	return len(a.Tags()) == 0
}

// First returns the first value of a list, or "".
func (l StringList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// MergeTags combines explicit tags (loosely typed) with the answers' tags.
// Explicit tags come first so a caller-supplied gender wins.
func MergeTags(explicit interface{}, answers *Answers) []string {
	tags := matching.SanitizeTags(explicit)
	if answers != nil {
		tags = append(tags, answers.Tags()...)
	}
	return matching.NormalizeTags(tags)
}
