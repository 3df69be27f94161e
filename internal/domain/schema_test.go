package domain

import (
	"strings"
	"testing"
)

// TestParseSchemaNode_Ref tests parsing of $ref schema nodes
func TestParseSchemaNode_Ref(t *testing.T) {
	node, err := ParseSchemaNode(map[string]interface{}{
		"$ref": "#/definitions/Location",
	})
	if err != nil {
		t.Fatalf("Failed to parse $ref node: %v", err)
	}

	if node.Kind != KindRef {
		t.Errorf("Expected kind $ref, got %s", node.Kind)
	}

	if node.Ref != "Location" {
		t.Errorf("Expected ref target 'Location', got '%s'", node.Ref)
	}
}

// TestParseSchemaNode_UnsupportedRefSyntax tests that only the
// "#/definitions/<name>" reference syntax is accepted
func TestParseSchemaNode_UnsupportedRefSyntax(t *testing.T) {
	badRefs := []interface{}{
		"Location",
		"#/components/schemas/Location",
		"http://example.com/schema.json#/definitions/Location",
		"#/definitions/",
		"#/definitions/Location/properties/name",
		42,
	}

	for _, ref := range badRefs {
		_, err := ParseSchemaNode(map[string]interface{}{"$ref": ref})
		if err == nil {
			t.Errorf("Expected error for $ref %v, got none", ref)
		}
	}
}

// TestParseSchemaNode_String tests parsing of string schemas with constraints
func TestParseSchemaNode_String(t *testing.T) {
	node, err := ParseSchemaNode(map[string]interface{}{
		"type":      "string",
		"pattern":   `\d{4}-\d{2}-\d{2}`,
		"enum":      []interface{}{"a", "b"},
		"minLength": 1,
		"maxLength": 10,
	})
	if err != nil {
		t.Fatalf("Failed to parse string node: %v", err)
	}

	if node.Kind != KindString {
		t.Errorf("Expected kind string, got %s", node.Kind)
	}

	// The pattern is anchored for full-string semantics.
	if !node.Pattern.MatchString("2024-12-25") {
		t.Error("Expected pattern to match a full-string date")
	}
	if node.Pattern.MatchString("x2024-12-25") {
		t.Error("Expected anchored pattern to reject a prefixed date")
	}

	if len(node.Enum) != 2 {
		t.Errorf("Expected 2 enum values, got %d", len(node.Enum))
	}

	if *node.MinLength != 1 || *node.MaxLength != 10 {
		t.Errorf("Expected length bounds [1,10], got [%d,%d]", *node.MinLength, *node.MaxLength)
	}
}

// TestParseSchemaNode_InvalidPattern tests that a broken regular
// expression fails at parse time, not at validation time
func TestParseSchemaNode_InvalidPattern(t *testing.T) {
	_, err := ParseSchemaNode(map[string]interface{}{
		"type":    "string",
		"pattern": "(unclosed",
	})
	if err == nil {
		t.Fatal("Expected error for invalid pattern, got none")
	}
	if !strings.Contains(err.Error(), "pattern") {
		t.Errorf("Expected pattern error, got: %v", err)
	}
}

// TestParseSchemaNode_Object tests parsing of object schemas
func TestParseSchemaNode_Object(t *testing.T) {
	node, err := ParseSchemaNode(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string"},
			"days":  map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 14},
		},
		"required": []interface{}{"query"},
	})
	if err != nil {
		t.Fatalf("Failed to parse object node: %v", err)
	}

	if node.Kind != KindObject {
		t.Errorf("Expected kind object, got %s", node.Kind)
	}

	if len(node.Properties) != 2 {
		t.Errorf("Expected 2 properties, got %d", len(node.Properties))
	}

	if len(node.Required) != 1 || node.Required[0] != "query" {
		t.Errorf("Expected required [query], got %v", node.Required)
	}

	days := node.Properties["days"]
	if days.Kind != KindInteger {
		t.Errorf("Expected days to be integer, got %s", days.Kind)
	}
	if *days.Minimum != 1 || *days.Maximum != 14 {
		t.Errorf("Expected days bounds [1,14], got [%v,%v]", *days.Minimum, *days.Maximum)
	}

	// additionalProperties defaults to rejected.
	if node.AdditionalAllowed || node.AdditionalSchema != nil {
		t.Error("Expected additional properties to be rejected by default")
	}
}

// TestParseSchemaNode_RequiredMustBeDeclared tests the required-subset
// invariant: required names must exist in properties
func TestParseSchemaNode_RequiredMustBeDeclared(t *testing.T) {
	_, err := ParseSchemaNode(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"query", "date"},
	})
	if err == nil {
		t.Fatal("Expected error for undeclared required property, got none")
	}
	if !strings.Contains(err.Error(), "date") {
		t.Errorf("Expected error to name the undeclared property, got: %v", err)
	}
}

// TestParseSchemaNode_AdditionalPropertiesForms tests the boolean and
// schema forms of additionalProperties
func TestParseSchemaNode_AdditionalPropertiesForms(t *testing.T) {
	allowed, err := ParseSchemaNode(map[string]interface{}{
		"type":                 "object",
		"additionalProperties": true,
	})
	if err != nil {
		t.Fatalf("Failed to parse additionalProperties=true: %v", err)
	}
	if !allowed.AdditionalAllowed {
		t.Error("Expected additional properties to be allowed")
	}

	schema, err := ParseSchemaNode(map[string]interface{}{
		"type": "object",
		"additionalProperties": map[string]interface{}{
			"type": "string",
		},
	})
	if err != nil {
		t.Fatalf("Failed to parse schema-form additionalProperties: %v", err)
	}
	if schema.AdditionalSchema == nil || schema.AdditionalSchema.Kind != KindString {
		t.Error("Expected schema-form additionalProperties to compile to a string node")
	}

	_, err = ParseSchemaNode(map[string]interface{}{
		"type":                 "object",
		"additionalProperties": "yes",
	})
	if err == nil {
		t.Error("Expected error for non-boolean non-schema additionalProperties")
	}
}

// TestParseSchemaNode_Array tests parsing of array schemas
func TestParseSchemaNode_Array(t *testing.T) {
	node, err := ParseSchemaNode(map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": "number"},
	})
	if err != nil {
		t.Fatalf("Failed to parse array node: %v", err)
	}

	if node.Kind != KindArray || node.Items.Kind != KindNumber {
		t.Errorf("Expected array of numbers, got %s of %v", node.Kind, node.Items)
	}

	_, err = ParseSchemaNode(map[string]interface{}{"type": "array"})
	if err == nil {
		t.Error("Expected error for array without items")
	}
}

// TestParseSchemaNode_Composites tests oneOf and anyOf parsing
func TestParseSchemaNode_Composites(t *testing.T) {
	node, err := ParseSchemaNode(map[string]interface{}{
		"oneOf": []interface{}{
			map[string]interface{}{"type": "string"},
			map[string]interface{}{"type": "integer"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to parse oneOf node: %v", err)
	}
	if node.Kind != KindOneOf || len(node.Alternatives) != 2 {
		t.Errorf("Expected oneOf with 2 alternatives, got %s with %d", node.Kind, len(node.Alternatives))
	}

	node, err = ParseSchemaNode(map[string]interface{}{
		"anyOf": []interface{}{
			map[string]interface{}{"type": "boolean"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to parse anyOf node: %v", err)
	}
	if node.Kind != KindAnyOf || len(node.Alternatives) != 1 {
		t.Errorf("Expected anyOf with 1 alternative, got %s with %d", node.Kind, len(node.Alternatives))
	}

	_, err = ParseSchemaNode(map[string]interface{}{"oneOf": []interface{}{}})
	if err == nil {
		t.Error("Expected error for empty oneOf")
	}
}

// TestParseSchemaNode_UnsupportedType tests rejection of unknown schema types
func TestParseSchemaNode_UnsupportedType(t *testing.T) {
	_, err := ParseSchemaNode(map[string]interface{}{"type": "null"})
	if err == nil {
		t.Error("Expected error for unsupported type 'null'")
	}

	_, err = ParseSchemaNode(map[string]interface{}{})
	if err == nil {
		t.Error("Expected error for schema without type or $ref")
	}
}

// TestParseSchemaNode_BoundsOrdering tests that inverted bounds are rejected
func TestParseSchemaNode_BoundsOrdering(t *testing.T) {
	_, err := ParseSchemaNode(map[string]interface{}{
		"type":    "integer",
		"minimum": 10,
		"maximum": 1,
	})
	if err == nil {
		t.Error("Expected error for minimum > maximum")
	}

	_, err = ParseSchemaNode(map[string]interface{}{
		"type":      "string",
		"minLength": 5,
		"maxLength": 2,
	})
	if err == nil {
		t.Error("Expected error for minLength > maxLength")
	}
}
