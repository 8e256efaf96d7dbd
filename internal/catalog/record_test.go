// internal/catalog/record_test.go
package catalog

import (
	"encoding/json"
	"testing"

	"fragrance-finder/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFields(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))
	return fields
}

func TestDecodeRecord_FullRecord(t *testing.T) {
	fields := decodeFields(t, `{
		"Title": "Bleu Intense",
		"Description": "Citrus and woods",
		"Tags": ["For-Men", " fresh-citrus ", 5, "daily-wear"],
		"Images": ["https://img/1.png", "https://img/2.png"],
		"Image": "https://img/fallback.png",
		"frag_number": 17,
		"rating1": 8, "rating2": "7", "rating3": 9, "rating4": 6, "rating5": 8, "rating6": 7,
		"link_global": "https://shop/bleu",
		"MoreInfo": "https://info/bleu"
	}`)

	item := DecodeRecord("rec1", fields)

	assert.Equal(t, "rec1", item.ID)
	assert.Equal(t, 17, item.SequenceNumber)
	assert.Equal(t, "Bleu Intense", item.Title)
	assert.Equal(t, "Citrus and woods", item.Description)
	assert.Equal(t, []string{"for-men", "fresh-citrus", "daily-wear"}, item.Tags)
	assert.Equal(t, "https://img/1.png", item.ImageRef)
	assert.Equal(t, matching.SubRatings{Longevity: 8, Sillage: 7, Versatility: 9, Uniqueness: 6, MassAppeal: 8, Value: 7}, item.SubRatings)
	assert.Equal(t, "https://shop/bleu", item.PurchaseURL)
}

func TestDecodeRecord_NamedRatingsWinOverNumbered(t *testing.T) {
	fields := decodeFields(t, `{"Sillage": 9, "rating2": 1, "Value": "abc", "rating6": 4}`)

	item := DecodeRecord("rec1", fields)

	assert.Equal(t, 9.0, item.SubRatings.Sillage)
	assert.Equal(t, 0.0, item.SubRatings.Value) // non-numeric named value counts as 0
	assert.Equal(t, 0.0, item.SubRatings.Longevity)
}

func TestDecodeRecord_Images(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"attachment objects", `{"Images": [{"url": "https://att/1.jpg", "filename": "1.jpg"}]}`, "https://att/1.jpg"},
		{"string images", `{"Images": "https://img/s.png"}`, "https://img/s.png"},
		{"empty list falls back to Image", `{"Images": [], "Image": "https://img/i.png"}`, "https://img/i.png"},
		{"empty string falls back to Image", `{"Images": "", "Image": "https://img/i.png"}`, "https://img/i.png"},
		{"nothing uses placeholder", `{}`, matching.DefaultImage},
		{"non-string image uses placeholder", `{"Image": 12}`, matching.DefaultImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecodeRecord("x", decodeFields(t, tt.raw)).ImageRef)
		})
	}
}

func TestDecodeRecord_TagShapes(t *testing.T) {
	assert.Equal(t, []string{"for-women", "floral-scent"}, DecodeRecord("x", decodeFields(t, `{"Tags": "For-Women, floral-scent,"}`)).Tags)
	assert.Equal(t, []string{}, DecodeRecord("x", decodeFields(t, `{"Tags": 3}`)).Tags)
	assert.Equal(t, []string{}, DecodeRecord("x", decodeFields(t, `{}`)).Tags)
}

func TestDecodeRecord_MissingFields(t *testing.T) {
	item := DecodeRecord("", decodeFields(t, `{"id": "es-7", "title": "lower case", "frag_number": "x", "MoreInfo": "https://info"}`))

	assert.Equal(t, "es-7", item.ID)
	assert.Equal(t, "lower case", item.Title)
	assert.Equal(t, 0, item.SequenceNumber)
	assert.Equal(t, "https://info", item.PurchaseURL)
	assert.Equal(t, matching.SubRatings{}, item.SubRatings)
}

func TestDecodeRecord_SequenceNumberShapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{"number", `{"frag_number": 89}`, 89},
		{"numeric string", `{"frag_number": "89"}`, 89},
		{"prefixed string", `{"frag_number": "frag_89"}`, 89},
		{"prefixed with spaces", `{"frag_number": " frag_7 "}`, 7},
		{"fallback key", `{"sequenceNumber": "frag_12"}`, 12},
		{"prefix only", `{"frag_number": "frag_"}`, 0},
		{"missing", `{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecodeRecord("x", decodeFields(t, tt.raw)).SequenceNumber)
		})
	}
}
