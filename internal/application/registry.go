package application

import (
	"fmt"
	"sort"
	"strings"

	"weather-mcp-server/internal/domain"
)

// registeredTool pairs a tool contract with its handler capability.
type registeredTool struct {
	contract *domain.ToolContract
	handler  domain.HandlerFunc
}

// ToolRegistry maps each declared tool name to its contract and handler.
// It is built once at startup from the schema store and a statically
// known handler map, is immutable afterwards, and is shared read-only
// across concurrent invocations.
type ToolRegistry struct {
	tools map[string]registeredTool
	order []string
}

// NewToolRegistry builds a registry from the store's tool contracts and
// the handler map. Every tool in the document must have a handler and
// every handler must have a document entry; a mismatch in either
// direction is a startup error, never a per-request discovery.
func NewToolRegistry(store *domain.SchemaStore, handlers map[string]domain.HandlerFunc) (*ToolRegistry, error) {
	var problems []string

	registry := &ToolRegistry{
		tools: make(map[string]registeredTool, len(handlers)),
	}

	for _, contract := range store.Tools() {
		handler, ok := handlers[contract.Name]
		if !ok {
			problems = append(problems, fmt.Sprintf("tool %q has a schema contract but no handler", contract.Name))
			continue
		}
		registry.tools[contract.Name] = registeredTool{contract: contract, handler: handler}
		registry.order = append(registry.order, contract.Name)
	}

	var orphaned []string
	for name := range handlers {
		if _, ok := store.Tool(name); !ok {
			orphaned = append(orphaned, name)
		}
	}
	sort.Strings(orphaned)
	for _, name := range orphaned {
		problems = append(problems, fmt.Sprintf("handler %q has no schema contract in the document", name))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("tool registry configuration error: %s", strings.Join(problems, "; "))
	}

	return registry, nil
}

// Lookup returns the contract and handler registered under name.
func (r *ToolRegistry) Lookup(name string) (*domain.ToolContract, domain.HandlerFunc, bool) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, nil, false
	}
	return tool.contract, tool.handler, true
}

// ListTools returns the tool definitions in document order, with raw
// schemas ($refs intact) for client introspection.
func (r *ToolRegistry) ListTools() []domain.ToolDefinition {
	definitions := make([]domain.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		contract := r.tools[name].contract
		definitions = append(definitions, domain.ToolDefinition{
			Name:         contract.Name,
			Description:  contract.Description,
			InputSchema:  contract.RawInput,
			OutputSchema: contract.RawOutput,
		})
	}
	return definitions
}
