// internal/catalog/record.go
package catalog

import (
	"math"
	"strings"

	"fragrance-finder/internal/matching"

	"github.com/spf13/cast"
)

// ratingFields lists, per sub-rating slot, the named field and its numbered fallback.
var ratingFields = [6][2]string{
	{"Longevity", "rating1"},
	{"Sillage", "rating2"},
	{"Versatility", "rating3"},
	{"Uniqueness", "rating4"},
	{"MassAppeal", "rating5"},
	{"Value", "rating6"},
}

// DecodeRecord turns a loosely typed store record into a CatalogItem.
// Missing or malformed fields fall back to zero values, never to an error.
func DecodeRecord(id string, fields map[string]interface{}) matching.CatalogItem {
	if id == "" {
		id = stringField(fields, "id", "ID")
	}

	return matching.CatalogItem{
		ID:             id,
		SequenceNumber: sequenceNumber(lookup(fields, "frag_number", "sequenceNumber")),
		Title:          stringField(fields, "Title", "title"),
		Description:    stringField(fields, "Description", "description"),
		Tags:           decodeTags(lookup(fields, "Tags", "tags")),
		ImageRef:       decodeImage(fields),
		SubRatings:     decodeSubRatings(fields),
		PurchaseURL:    stringField(fields, "link_global", "MoreInfo", "purchaseUrl"),
	}
}

// lookup returns the first present, non-nil value among keys.
func lookup(fields map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringField(fields map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// sequenceNumber accepts 89, "89" and the store's "frag_89" form.
func sequenceNumber(v interface{}) int {
	if s, ok := v.(string); ok {
		v = strings.TrimLeftFunc(strings.TrimSpace(s), func(r rune) bool {
			return r < '0' || r > '9'
		})
	}
	if v == nil {
		return 0
	}
	return int(number(v))
}

// number coerces loosely typed numerics; anything unparsable is 0.
func number(v interface{}) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// decodeTags accepts a list or a comma separated string.
func decodeTags(v interface{}) []string {
	if s, ok := v.(string); ok {
		return matching.NormalizeTags(strings.Split(s, ","))
	}
	return matching.SanitizeTags(v)
}

// decodeImage picks the first usable entry of Images (strings or attachment
// objects), then Image, then the placeholder.
func decodeImage(fields map[string]interface{}) string {
	switch images := fields["Images"].(type) {
	case string:
		if s := strings.TrimSpace(images); s != "" {
			return s
		}
	case []interface{}:
		if len(images) > 0 {
			if s := imageURL(images[0]); s != "" {
				return s
			}
		}
	}

	if s := imageURL(lookup(fields, "Image", "image")); s != "" {
		return s
	}
	return matching.DefaultImage
}

func imageURL(v interface{}) string {
	switch img := v.(type) {
	case string:
		return strings.TrimSpace(img)
	case map[string]interface{}:
		if s, ok := img["url"].(string); ok {
			return strings.TrimSpace(s)
		}
	case []interface{}:
		if len(img) > 0 {
			return imageURL(img[0])
		}
	}
	return ""
}

func decodeSubRatings(fields map[string]interface{}) matching.SubRatings {
	var slots [6]float64
	for i, names := range ratingFields {
		slots[i] = number(lookup(fields, names[0], names[1]))
	}
	return matching.SubRatings{
		Longevity:   slots[0],
		Sillage:     slots[1],
		Versatility: slots[2],
		Uniqueness:  slots[3],
		MassAppeal:  slots[4],
		Value:       slots[5],
	}
}
