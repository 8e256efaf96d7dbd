// internal/matching/tags.go
package matching

import "strings"

// TagSet is a set of normalized tags.
type TagSet map[string]struct{}

// NewTagSet builds a set from already normalized tags.
func NewTagSet(tags []string) TagSet {
	set := make(TagSet, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags lower-cases and trims every tag, drops empty ones and removes
// duplicates while keeping the first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := normalizeTag(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// SanitizeTags turns loosely typed input (decoded JSON, store records) into a
// normalized tag list. Nested lists are flattened, non-string entries are dropped.
func SanitizeTags(raw interface{}) []string {
	var flat []string
	collectStrings(raw, &flat)
	return NormalizeTags(flat)
}

func collectStrings(v interface{}, out *[]string) {
	switch val := v.(type) {
	case nil:
	case string:
		*out = append(*out, val)
	case []string:
		*out = append(*out, val...)
	case []interface{}:
		for _, item := range val {
			collectStrings(item, out)
		}
	}
}
