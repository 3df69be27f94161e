package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// SchemaKind identifies the variant of a SchemaNode.
type SchemaKind int

const (
	KindObject SchemaKind = iota
	KindArray
	KindString
	KindNumber
	KindInteger
	KindBoolean
	KindRef
	KindOneOf
	KindAnyOf
)

// String returns the schema type keyword for the kind.
func (k SchemaKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindRef:
		return "$ref"
	case KindOneOf:
		return "oneOf"
	case KindAnyOf:
		return "anyOf"
	default:
		return "unknown"
	}
}

// RefPrefix is the reference syntax accepted in schema documents.
// A $ref value must be "#/definitions/<name>".
const RefPrefix = "#/definitions/"

// SchemaNode is the compiled form of one schema in the document.
// It is a tagged variant: Kind selects which of the constraint fields
// are meaningful, and validation switches exhaustively over it.
// Nodes are immutable after parsing and safe for concurrent use.
type SchemaNode struct {
	Kind        SchemaKind
	Description string

	// Object constraints. A property not listed in Properties is rejected
	// unless AdditionalAllowed is set or AdditionalSchema is non-nil.
	Properties        map[string]*SchemaNode
	Required          []string
	AdditionalAllowed bool
	AdditionalSchema  *SchemaNode

	// Array constraints. Items applies to every element.
	Items *SchemaNode

	// String constraints. Pattern is compiled for full-string matching.
	Pattern    *regexp.Regexp
	PatternSrc string
	Enum       []string
	MinLength  *int
	MaxLength  *int

	// Number/integer constraints, inclusive bounds.
	Minimum *float64
	Maximum *float64

	// Ref holds the target definition name for KindRef nodes.
	Ref string

	// Alternatives holds the oneOf/anyOf members for composite nodes.
	Alternatives []*SchemaNode
}

// ParseSchemaNode compiles a raw schema mapping (as decoded from the
// document) into a SchemaNode. Nested schemas are compiled recursively,
// but $ref targets are not chased here; reference existence is a store
// load-time concern.
func ParseSchemaNode(raw map[string]interface{}) (*SchemaNode, error) {
	if raw == nil {
		return nil, fmt.Errorf("schema must be a mapping")
	}

	node := &SchemaNode{}
	if desc, ok := raw["description"].(string); ok {
		node.Description = desc
	}

	// $ref nodes carry no other constraints.
	if refRaw, ok := raw["$ref"]; ok {
		ref, ok := refRaw.(string)
		if !ok {
			return nil, fmt.Errorf("$ref must be a string, got %T", refRaw)
		}
		if !strings.HasPrefix(ref, RefPrefix) {
			return nil, fmt.Errorf("unsupported $ref syntax %q: expected %q prefix", ref, RefPrefix)
		}
		target := strings.TrimPrefix(ref, RefPrefix)
		if target == "" || strings.Contains(target, "/") {
			return nil, fmt.Errorf("invalid $ref target in %q", ref)
		}
		node.Kind = KindRef
		node.Ref = target
		return node, nil
	}

	if alts, ok := raw["oneOf"]; ok {
		return parseComposite(node, KindOneOf, "oneOf", alts)
	}
	if alts, ok := raw["anyOf"]; ok {
		return parseComposite(node, KindAnyOf, "anyOf", alts)
	}

	typeName, ok := raw["type"].(string)
	if !ok {
		return nil, fmt.Errorf("schema is missing a type (and has no $ref/oneOf/anyOf)")
	}

	switch typeName {
	case "object":
		node.Kind = KindObject
		if err := parseObject(node, raw); err != nil {
			return nil, err
		}
	case "array":
		node.Kind = KindArray
		itemsRaw, ok := raw["items"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("array schema requires an items mapping")
		}
		items, err := ParseSchemaNode(itemsRaw)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		node.Items = items
	case "string":
		node.Kind = KindString
		if err := parseString(node, raw); err != nil {
			return nil, err
		}
	case "number", "integer":
		if typeName == "integer" {
			node.Kind = KindInteger
		} else {
			node.Kind = KindNumber
		}
		if err := parseNumeric(node, raw); err != nil {
			return nil, err
		}
	case "boolean":
		node.Kind = KindBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", typeName)
	}

	return node, nil
}

func parseComposite(node *SchemaNode, kind SchemaKind, keyword string, alts interface{}) (*SchemaNode, error) {
	list, ok := alts.([]interface{})
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("%s must be a non-empty sequence of schemas", keyword)
	}
	node.Kind = kind
	for i, altRaw := range list {
		altMap, ok := altRaw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s[%d]: alternative must be a mapping", keyword, i)
		}
		alt, err := ParseSchemaNode(altMap)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", keyword, i, err)
		}
		node.Alternatives = append(node.Alternatives, alt)
	}
	return node, nil
}

func parseObject(node *SchemaNode, raw map[string]interface{}) error {
	if propsRaw, ok := raw["properties"]; ok {
		props, ok := propsRaw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("properties must be a mapping")
		}
		node.Properties = make(map[string]*SchemaNode, len(props))
		// Sorted for deterministic error reporting.
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			propMap, ok := props[name].(map[string]interface{})
			if !ok {
				return fmt.Errorf("properties.%s: schema must be a mapping", name)
			}
			prop, err := ParseSchemaNode(propMap)
			if err != nil {
				return fmt.Errorf("properties.%s: %w", name, err)
			}
			node.Properties[name] = prop
		}
	}

	if reqRaw, ok := raw["required"]; ok {
		reqList, ok := reqRaw.([]interface{})
		if !ok {
			return fmt.Errorf("required must be a sequence of property names")
		}
		seen := make(map[string]bool, len(reqList))
		for i, item := range reqList {
			name, ok := item.(string)
			if !ok {
				return fmt.Errorf("required[%d]: must be a string", i)
			}
			if _, declared := node.Properties[name]; !declared {
				return fmt.Errorf("required property %q is not declared in properties", name)
			}
			if seen[name] {
				return fmt.Errorf("required lists %q more than once", name)
			}
			seen[name] = true
			node.Required = append(node.Required, name)
		}
	}

	// additionalProperties defaults to false: unknown properties are
	// rejected unless the document opts in explicitly.
	if addRaw, ok := raw["additionalProperties"]; ok {
		switch add := addRaw.(type) {
		case bool:
			node.AdditionalAllowed = add
		case map[string]interface{}:
			schema, err := ParseSchemaNode(add)
			if err != nil {
				return fmt.Errorf("additionalProperties: %w", err)
			}
			node.AdditionalSchema = schema
		default:
			return fmt.Errorf("additionalProperties must be a boolean or a schema, got %T", addRaw)
		}
	}

	return nil
}

func parseString(node *SchemaNode, raw map[string]interface{}) error {
	if patRaw, ok := raw["pattern"]; ok {
		pat, ok := patRaw.(string)
		if !ok {
			return fmt.Errorf("pattern must be a string")
		}
		// Full-string semantics: the whole value must match, so the
		// pattern is wrapped in anchors at compile time.
		re, err := regexp.Compile("^(?:" + pat + ")$")
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pat, err)
		}
		node.Pattern = re
		node.PatternSrc = pat
	}

	if enumRaw, ok := raw["enum"]; ok {
		enumList, ok := enumRaw.([]interface{})
		if !ok || len(enumList) == 0 {
			return fmt.Errorf("enum must be a non-empty sequence of strings")
		}
		for i, item := range enumList {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("enum[%d]: must be a string", i)
			}
			node.Enum = append(node.Enum, s)
		}
	}

	for _, bound := range []struct {
		key string
		dst **int
	}{
		{"minLength", &node.MinLength},
		{"maxLength", &node.MaxLength},
	} {
		if v, ok := raw[bound.key]; ok {
			n, ok := intValue(v)
			if !ok || n < 0 {
				return fmt.Errorf("%s must be a non-negative integer", bound.key)
			}
			*bound.dst = &n
		}
	}
	if node.MinLength != nil && node.MaxLength != nil && *node.MinLength > *node.MaxLength {
		return fmt.Errorf("minLength %d exceeds maxLength %d", *node.MinLength, *node.MaxLength)
	}

	return nil
}

func parseNumeric(node *SchemaNode, raw map[string]interface{}) error {
	for _, bound := range []struct {
		key string
		dst **float64
	}{
		{"minimum", &node.Minimum},
		{"maximum", &node.Maximum},
	} {
		if v, ok := raw[bound.key]; ok {
			f, ok := floatValue(v)
			if !ok {
				return fmt.Errorf("%s must be a number", bound.key)
			}
			*bound.dst = &f
		}
	}
	if node.Minimum != nil && node.Maximum != nil && *node.Minimum > *node.Maximum {
		return fmt.Errorf("minimum %v exceeds maximum %v", *node.Minimum, *node.Maximum)
	}
	return nil
}

// intValue normalizes the integer representations produced by the YAML
// and JSON decoders.
func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// floatValue normalizes the numeric representations produced by the YAML
// and JSON decoders.
func floatValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
