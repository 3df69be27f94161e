package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestValidationProperties tests invariants of the validator across
// generated inputs
func TestValidationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	store := emptyStore(t)

	rangeNode := mustParse(t, map[string]interface{}{
		"type":    "integer",
		"minimum": 1,
		"maximum": 14,
	})

	properties.Property("integers inside an inclusive range always validate", prop.ForAll(
		func(n int) bool {
			return Validate(float64(n), rangeNode, store, "/days").Valid()
		},
		gen.IntRange(1, 14),
	))

	properties.Property("integers outside the range always produce exactly one violation", prop.ForAll(
		func(n int) bool {
			result := Validate(float64(n), rangeNode, store, "/days")
			return len(result.Violations) == 1 && result.Violations[0].Path == "/days"
		},
		gen.OneGenOf(gen.IntRange(-1000, 0), gen.IntRange(15, 1000)),
	))

	lengthNode := mustParse(t, map[string]interface{}{
		"type":      "string",
		"minLength": 1,
		"maxLength": 32,
	})

	properties.Property("string length bounds agree with the code point count", prop.ForAll(
		func(s string) bool {
			length := utf8.RuneCountInString(s)
			valid := Validate(s, lengthNode, store, "").Valid()
			return valid == (length >= 1 && length <= 32)
		},
		gen.AnyString(),
	))

	objectNode := mustParse(t, map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string"},
			"days":  map[string]interface{}{"type": "integer"},
		},
		"required": []interface{}{"query"},
	})

	properties.Property("validation is deterministic", prop.ForAll(
		func(query string, days int, stray string) bool {
			value := map[string]interface{}{
				"query": query,
				"days":  float64(days),
				stray:   true,
			}
			first := Validate(value, objectNode, store, "")
			second := Validate(value, objectNode, store, "")
			if len(first.Violations) != len(second.Violations) {
				return false
			}
			for i := range first.Violations {
				if first.Violations[i] != second.Violations[i] {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
		gen.Int(),
		gen.Identifier(),
	))

	properties.Property("every violation path extends the starting path", prop.ForAll(
		func(days int, stray string) bool {
			value := map[string]interface{}{
				"days": float64(days),
				stray:  "x",
			}
			result := Validate(value, objectNode, store, "/arguments")
			for _, v := range result.Violations {
				if !strings.HasPrefix(v.Path, "/arguments") {
					return false
				}
			}
			return true
		},
		gen.Int(),
		gen.Identifier(),
	))

	properties.Property("a valid value reports no violations and an empty list means valid", prop.ForAll(
		func(query string) bool {
			value := map[string]interface{}{"query": query}
			result := Validate(value, objectNode, store, "")
			return result.Valid() == (len(result.Violations) == 0)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
