package domain

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"
)

// Constraint names the schema rule a violation broke.
type Constraint string

const (
	ConstraintType               Constraint = "type"
	ConstraintRequired           Constraint = "required"
	ConstraintPattern            Constraint = "pattern"
	ConstraintEnum               Constraint = "enum"
	ConstraintMinLength          Constraint = "min_length"
	ConstraintMaxLength          Constraint = "max_length"
	ConstraintMinimum            Constraint = "minimum"
	ConstraintMaximum            Constraint = "maximum"
	ConstraintAdditionalProperty Constraint = "additional_property"
	ConstraintOneOf              Constraint = "one_of"
	ConstraintAnyOf              Constraint = "any_of"
	ConstraintUnresolvedRef      Constraint = "unresolved_ref"
)

// Violation is one schema failure, qualified by a JSON-pointer-style
// path from the value root. Value carries the offending value's type and
// a truncated rendering, never the full payload.
type Violation struct {
	Path       string     `json:"path"`
	Constraint Constraint `json:"constraint"`
	Message    string     `json:"message"`
	Value      string     `json:"value"`
}

// String renders the violation for logs and error payloads.
func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s: %s (got %s)", path, v.Message, v.Value)
}

// Result is the outcome of validating one value against one schema.
// A value is valid exactly when the violation list is empty.
type Result struct {
	Violations []Violation
}

// Valid reports whether the value satisfied the schema.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Validate checks value against node, resolving references through
// store. It is a pure function: no side effects, deterministic output,
// and safe to run concurrently against a shared store.
//
// Violations accumulate across independent branches so a caller gets
// every problem in one pass; within a single scalar node a type mismatch
// short-circuits the remaining checks on that node.
func Validate(value interface{}, node *SchemaNode, store *SchemaStore, path string) Result {
	var violations []Violation
	validateNode(value, node, store, path, &violations)
	return Result{Violations: violations}
}

func validateNode(value interface{}, node *SchemaNode, store *SchemaStore, path string, out *[]Violation) {
	if node.Kind == KindRef {
		resolved, err := Resolve(node, store)
		if err != nil {
			*out = append(*out, Violation{
				Path:       path,
				Constraint: ConstraintUnresolvedRef,
				Message:    err.Error(),
				Value:      valueSummary(value),
			})
			return
		}
		node = resolved
	}

	switch node.Kind {
	case KindString:
		validateString(value, node, path, out)
	case KindNumber, KindInteger:
		validateNumeric(value, node, path, out)
	case KindBoolean:
		if _, ok := value.(bool); !ok {
			*out = append(*out, typeViolation(path, "boolean", value))
		}
	case KindObject:
		validateObject(value, node, store, path, out)
	case KindArray:
		validateArray(value, node, store, path, out)
	case KindOneOf:
		validateOneOf(value, node, store, path, out)
	case KindAnyOf:
		validateAnyOf(value, node, store, path, out)
	}
}

func validateString(value interface{}, node *SchemaNode, path string, out *[]Violation) {
	s, ok := value.(string)
	if !ok {
		*out = append(*out, typeViolation(path, "string", value))
		return
	}

	// Every applicable string constraint is checked; a single value can
	// break several of them at once.
	if node.Pattern != nil && !node.Pattern.MatchString(s) {
		*out = append(*out, Violation{
			Path:       path,
			Constraint: ConstraintPattern,
			Message:    fmt.Sprintf("does not match pattern %q", node.PatternSrc),
			Value:      valueSummary(value),
		})
	}
	if len(node.Enum) > 0 && !containsString(node.Enum, s) {
		*out = append(*out, Violation{
			Path:       path,
			Constraint: ConstraintEnum,
			Message:    fmt.Sprintf("is not one of %d allowed values", len(node.Enum)),
			Value:      valueSummary(value),
		})
	}
	length := utf8.RuneCountInString(s)
	if node.MinLength != nil && length < *node.MinLength {
		*out = append(*out, Violation{
			Path:       path,
			Constraint: ConstraintMinLength,
			Message:    fmt.Sprintf("length %d is below minimum length %d", length, *node.MinLength),
			Value:      valueSummary(value),
		})
	}
	if node.MaxLength != nil && length > *node.MaxLength {
		*out = append(*out, Violation{
			Path:       path,
			Constraint: ConstraintMaxLength,
			Message:    fmt.Sprintf("length %d exceeds maximum length %d", length, *node.MaxLength),
			Value:      valueSummary(value),
		})
	}
}

func validateNumeric(value interface{}, node *SchemaNode, path string, out *[]Violation) {
	f, ok := numericValue(value)
	if !ok {
		*out = append(*out, typeViolation(path, node.Kind.String(), value))
		return
	}
	if node.Kind == KindInteger && math.Trunc(f) != f {
		*out = append(*out, Violation{
			Path:       path,
			Constraint: ConstraintType,
			Message:    "expected integer, got non-integral number",
			Value:      valueSummary(value),
		})
		return
	}
	if node.Minimum != nil && f < *node.Minimum {
		*out = append(*out, Violation{
			Path:       path,
			Constraint: ConstraintMinimum,
			Message:    fmt.Sprintf("%v is below minimum %v", f, *node.Minimum),
			Value:      valueSummary(value),
		})
	}
	if node.Maximum != nil && f > *node.Maximum {
		*out = append(*out, Violation{
			Path:       path,
			Constraint: ConstraintMaximum,
			Message:    fmt.Sprintf("%v exceeds maximum %v", f, *node.Maximum),
			Value:      valueSummary(value),
		})
	}
}

func validateObject(value interface{}, node *SchemaNode, store *SchemaStore, path string, out *[]Violation) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		*out = append(*out, typeViolation(path, "object", value))
		return
	}

	// Missing required fields are all reported together, in the order
	// the document declares them.
	for _, name := range node.Required {
		if _, present := obj[name]; !present {
			*out = append(*out, Violation{
				Path:       path + "/" + name,
				Constraint: ConstraintRequired,
				Message:    fmt.Sprintf("missing required property %q", name),
				Value:      "absent",
			})
		}
	}

	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		propPath := path + "/" + name
		if prop, declared := node.Properties[name]; declared {
			validateNode(obj[name], prop, store, propPath, out)
			continue
		}
		if node.AdditionalSchema != nil {
			validateNode(obj[name], node.AdditionalSchema, store, propPath, out)
			continue
		}
		if !node.AdditionalAllowed {
			*out = append(*out, Violation{
				Path:       propPath,
				Constraint: ConstraintAdditionalProperty,
				Message:    fmt.Sprintf("unexpected property %q", name),
				Value:      valueSummary(obj[name]),
			})
		}
	}
}

func validateArray(value interface{}, node *SchemaNode, store *SchemaStore, path string, out *[]Violation) {
	arr, ok := value.([]interface{})
	if !ok {
		*out = append(*out, typeViolation(path, "array", value))
		return
	}
	if node.Items == nil {
		return
	}
	for i, element := range arr {
		validateNode(element, node.Items, store, fmt.Sprintf("%s/%d", path, i), out)
	}
}

// validateOneOf enforces strict oneOf semantics: exactly one alternative
// must accept the value. Zero matches and multiple matches produce
// distinct diagnostics; a value matching two alternatives signals an
// ambiguous contract, not a caller mistake, and saying so helps whoever
// reads the error.
func validateOneOf(value interface{}, node *SchemaNode, store *SchemaStore, path string, out *[]Violation) {
	matches := 0
	for _, alt := range node.Alternatives {
		if Validate(value, alt, store, path).Valid() {
			matches++
		}
	}
	switch {
	case matches == 1:
		return
	case matches == 0:
		*out = append(*out, Violation{
			Path:       path,
			Constraint: ConstraintOneOf,
			Message:    fmt.Sprintf("matches none of %d alternatives", len(node.Alternatives)),
			Value:      valueSummary(value),
		})
	default:
		*out = append(*out, Violation{
			Path:       path,
			Constraint: ConstraintOneOf,
			Message:    fmt.Sprintf("ambiguously matches %d of %d alternatives", matches, len(node.Alternatives)),
			Value:      valueSummary(value),
		})
	}
}

func validateAnyOf(value interface{}, node *SchemaNode, store *SchemaStore, path string, out *[]Violation) {
	for _, alt := range node.Alternatives {
		if Validate(value, alt, store, path).Valid() {
			return
		}
	}
	*out = append(*out, Violation{
		Path:       path,
		Constraint: ConstraintAnyOf,
		Message:    fmt.Sprintf("matches none of %d alternatives", len(node.Alternatives)),
		Value:      valueSummary(value),
	})
}

func typeViolation(path, expected string, value interface{}) Violation {
	return Violation{
		Path:       path,
		Constraint: ConstraintType,
		Message:    fmt.Sprintf("expected %s", expected),
		Value:      valueSummary(value),
	}
}

// numericValue normalizes the numeric types a decoded JSON or YAML value
// can carry. encoding/json produces float64; yaml.v3 and hand-built test
// fixtures produce int/int64.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// valueSummary describes a value's type and a bounded rendering for
// error payloads. Large strings, objects and arrays are summarized so
// error messages never echo whole payloads back to the caller.
func valueSummary(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return fmt.Sprintf("boolean %v", val)
	case string:
		const maxRunes = 24
		if utf8.RuneCountInString(val) > maxRunes {
			runes := []rune(val)
			return fmt.Sprintf("string %q (truncated)", string(runes[:maxRunes]))
		}
		return fmt.Sprintf("string %q", val)
	case float64, int, int64:
		return fmt.Sprintf("number %v", val)
	case map[string]interface{}:
		return fmt.Sprintf("object with %d properties", len(val))
	case []interface{}:
		return fmt.Sprintf("array of %d elements", len(val))
	default:
		return fmt.Sprintf("%T", v)
	}
}
