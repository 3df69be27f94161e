package domain

import "fmt"

// Resolve expands a $ref node into its target definition, one hop at a
// time, until a non-ref node is reached. Non-ref nodes are returned
// unchanged. Nested schemas inside the result keep their own refs; the
// validator resolves those on demand as it descends, which is what lets
// mutually-recursive definitions exist without unbounded expansion.
//
// For a store that passed its load-time closure check, Resolve cannot
// fail on any node reachable from a tool contract. The error returns
// cover hand-built nodes and the load-time pure-ref cycle check.
func Resolve(node *SchemaNode, store *SchemaStore) (*SchemaNode, error) {
	if node == nil {
		return nil, fmt.Errorf("cannot resolve a nil schema")
	}

	seen := make(map[string]bool)
	for node.Kind == KindRef {
		if seen[node.Ref] {
			return nil, fmt.Errorf("reference cycle through %q never reaches a concrete schema", RefPrefix+node.Ref)
		}
		seen[node.Ref] = true

		target, ok := store.Definition(node.Ref)
		if !ok {
			return nil, fmt.Errorf("unresolved reference %q", RefPrefix+node.Ref)
		}
		node = target
	}
	return node, nil
}
