// internal/api/schemas.go
package api

import "fragrance-finder/internal/common/validation"

// Request body schemas. Tag and answer fields stay loose because the quiz
// client sends strings, nested arrays and nulls interchangeably.
var (
	scoreSchema = validation.MustCompileSchema("get-matching-fragrances", `{
		"type": "object",
		"properties": {
			"tags":    {},
			"answers": {"type": ["object", "null"]}
		}
	}`)

	insertQuizResponseSchema = validation.MustCompileSchema("insert-quiz-response", `{
		"type": "object",
		"properties": {
			"topFragranceIds":   {"type": ["array", "null"], "items": {"type": "integer"}},
			"country":           {"type": ["string", "null"]},
			"city":              {"type": ["string", "null"]},
			"region":            {"type": ["string", "null"]},
			"email":             {"type": ["string", "null"]},
			"agreedToLeadTerms": {"type": ["boolean", "null"]},

			"top_fragrance_ids":    {"type": ["array", "null"], "items": {"type": ["integer", "null"]}},
			"user_country":         {"type": ["string", "null"]},
			"user_city":            {"type": ["string", "null"]},
			"user_region":          {"type": ["string", "null"]},
			"agreed_to_lead_terms": {"type": ["boolean", "null"]}
		}
	}`)

	saveEmailSchema = validation.MustCompileSchema("save-email", `{
		"type": "object",
		"required": ["quizResponseId", "email"],
		"properties": {
			"quizResponseId":       {"type": "string", "minLength": 1},
			"email":                {"type": "string", "minLength": 1},
			"agreedToLeadTerms":    {"type": ["boolean", "null"]},
			"agreed_to_lead_terms": {"type": ["boolean", "null"]}
		}
	}`)

	newsletterSchema = validation.MustCompileSchema("newsletter-subscribe", `{
		"type": "object",
		"required": ["email"],
		"properties": {
			"email": {"type": "string", "minLength": 1},
			"geo": {
				"type": ["object", "null"],
				"properties": {
					"country_name": {"type": ["string", "null"]},
					"city":         {"type": ["string", "null"]},
					"region":       {"type": ["string", "null"]}
				}
			}
		}
	}`)

	sendEmailSchema = validation.MustCompileSchema("send-email", `{
		"type": "object",
		"required": ["to", "fragrances", "tags"],
		"properties": {
			"to": {"type": "string", "minLength": 1},
			"fragrances": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"properties": {
						"title":       {"type": "string"},
						"description": {"type": ["string", "null"]},
						"image":       {"type": ["string", "null"]},
						"matchScore":  {"type": "number"},
						"purchaseUrl": {"type": ["string", "null"]}
					}
				}
			},
			"tags": {"type": "array"}
		}
	}`)
)
