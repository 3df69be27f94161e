package domain

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaLoadError aggregates every problem found while loading a schema
// document. The store is all-or-nothing: a single unresolved reference or
// malformed schema means no tool becomes callable.
type SchemaLoadError struct {
	Problems []string
}

// Error implements the error interface.
func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("schema document load failed: %s", strings.Join(e.Problems, "; "))
}

// ToolContract pairs a tool name with its compiled input/output schemas.
// RawInput and RawOutput keep the document form (with $refs intact) for
// tools/list introspection; clients see the contract exactly as declared.
type ToolContract struct {
	Name         string
	Description  string
	InputSchema  *SchemaNode
	OutputSchema *SchemaNode
	RawInput     map[string]interface{}
	RawOutput    map[string]interface{}
}

// schemaDocument is the on-disk form of the schema document.
type schemaDocument struct {
	Definitions map[string]map[string]interface{} `yaml:"definitions"`
	Tools       []struct {
		Name         string                 `yaml:"name"`
		Description  string                 `yaml:"description"`
		InputSchema  map[string]interface{} `yaml:"input_schema"`
		OutputSchema map[string]interface{} `yaml:"output_schema"`
	} `yaml:"tools"`
}

// SchemaStore is the immutable table of named definitions and tool
// contracts built once at startup. It is read-only after LoadDocument
// and safe to share across concurrent invocations without locking.
type SchemaStore struct {
	definitions map[string]*SchemaNode
	tools       []*ToolContract
	byName      map[string]*ToolContract
}

// LoadDocument reads and compiles a schema document from a YAML file.
// Returns a *SchemaLoadError if the file is missing, malformed, or fails
// the reference closure check.
func LoadDocument(path string) (*SchemaStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SchemaLoadError{Problems: []string{fmt.Sprintf("schema document not found: %s", path)}}
		}
		return nil, &SchemaLoadError{Problems: []string{fmt.Sprintf("failed to read schema document: %v", err)}}
	}
	return ParseDocument(data)
}

// ParseDocument compiles a schema document from raw bytes.
// All definitions and tool schemas are compiled, tool names checked for
// uniqueness, and the reference graph checked for closure before any
// store is returned.
func ParseDocument(data []byte) (*SchemaStore, error) {
	var doc schemaDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaLoadError{Problems: []string{fmt.Sprintf("invalid document syntax: %v", err)}}
	}

	store := &SchemaStore{
		definitions: make(map[string]*SchemaNode, len(doc.Definitions)),
		byName:      make(map[string]*ToolContract, len(doc.Tools)),
	}
	var problems []string

	// Compile definitions in name order so repeated loads report
	// problems identically.
	defNames := make([]string, 0, len(doc.Definitions))
	for name := range doc.Definitions {
		defNames = append(defNames, name)
	}
	sort.Strings(defNames)
	for _, name := range defNames {
		node, err := ParseSchemaNode(doc.Definitions[name])
		if err != nil {
			problems = append(problems, fmt.Sprintf("definitions.%s: %v", name, err))
			continue
		}
		store.definitions[name] = node
	}

	if len(doc.Tools) == 0 {
		problems = append(problems, "document declares no tools")
	}

	for i, rawTool := range doc.Tools {
		label := rawTool.Name
		if label == "" {
			label = fmt.Sprintf("tools[%d]", i)
			problems = append(problems, fmt.Sprintf("%s: tool name is required", label))
		}
		if _, dup := store.byName[rawTool.Name]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate tool name", label))
			continue
		}

		contract := &ToolContract{
			Name:        rawTool.Name,
			Description: rawTool.Description,
			RawInput:    rawTool.InputSchema,
			RawOutput:   rawTool.OutputSchema,
		}
		if rawTool.InputSchema == nil {
			problems = append(problems, fmt.Sprintf("%s: input_schema is required", label))
		} else if node, err := ParseSchemaNode(rawTool.InputSchema); err != nil {
			problems = append(problems, fmt.Sprintf("%s: input_schema: %v", label, err))
		} else {
			contract.InputSchema = node
		}
		if rawTool.OutputSchema == nil {
			problems = append(problems, fmt.Sprintf("%s: output_schema is required", label))
		} else if node, err := ParseSchemaNode(rawTool.OutputSchema); err != nil {
			problems = append(problems, fmt.Sprintf("%s: output_schema: %v", label, err))
		} else {
			contract.OutputSchema = node
		}

		if rawTool.Name != "" {
			store.tools = append(store.tools, contract)
			store.byName[rawTool.Name] = contract
		}
	}

	problems = append(problems, store.checkClosure()...)

	if len(problems) > 0 {
		return nil, &SchemaLoadError{Problems: problems}
	}
	return store, nil
}

// checkClosure walks every reference reachable from any tool schema,
// transitively through definitions, and reports targets that do not
// exist plus reference chains that never reach a concrete schema.
// Revisiting an already-visited definition terminates that branch, so
// mutually-recursive definitions are accepted without looping.
func (s *SchemaStore) checkClosure() []string {
	var problems []string
	visited := make(map[string]bool)

	var walk func(node *SchemaNode, where string)
	walk = func(node *SchemaNode, where string) {
		if node == nil {
			return
		}
		switch node.Kind {
		case KindRef:
			target, ok := s.definitions[node.Ref]
			if !ok {
				problems = append(problems, fmt.Sprintf("%s: unresolved reference %q", where, RefPrefix+node.Ref))
				return
			}
			if visited[node.Ref] {
				return
			}
			visited[node.Ref] = true
			walk(target, "definitions."+node.Ref)
		case KindObject:
			for _, prop := range sortedProperties(node.Properties) {
				walk(prop.node, where+".properties."+prop.name)
			}
			walk(node.AdditionalSchema, where+".additionalProperties")
		case KindArray:
			walk(node.Items, where+".items")
		case KindOneOf, KindAnyOf:
			for i, alt := range node.Alternatives {
				walk(alt, fmt.Sprintf("%s.%s[%d]", where, node.Kind, i))
			}
		}
	}

	for _, tool := range s.tools {
		walk(tool.InputSchema, tool.Name+".input_schema")
		walk(tool.OutputSchema, tool.Name+".output_schema")
	}

	// A cycle made purely of refs can never describe a satisfiable value;
	// reject it at load time rather than looping at request time.
	for _, name := range sortedKeys(s.definitions) {
		if s.definitions[name].Kind != KindRef {
			continue
		}
		if _, err := Resolve(s.definitions[name], s); err != nil {
			problems = append(problems, fmt.Sprintf("definitions.%s: %v", name, err))
		}
	}

	return problems
}

// Definition returns the schema node registered under name.
func (s *SchemaStore) Definition(name string) (*SchemaNode, bool) {
	node, ok := s.definitions[name]
	return node, ok
}

// Tools returns the tool contracts in document order.
func (s *SchemaStore) Tools() []*ToolContract {
	return s.tools
}

// Tool returns the contract registered under name.
func (s *SchemaStore) Tool(name string) (*ToolContract, bool) {
	contract, ok := s.byName[name]
	return contract, ok
}

type namedNode struct {
	name string
	node *SchemaNode
}

func sortedProperties(props map[string]*SchemaNode) []namedNode {
	out := make([]namedNode, 0, len(props))
	for name, node := range props {
		out = append(out, namedNode{name: name, node: node})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func sortedKeys(m map[string]*SchemaNode) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
