package emitter

import (
	"safedi/scope"
	"safedi/types"
)

// topoOrder returns every scope reached from root by an EAGER
// Instantiated edge (including root itself), in dependency-first order:
// a scope never appears before a descendant it needs to reference by
// name. A scope reachable only through a lazy (Instantiator /
// ErasedInstantiator) edge is deliberately excluded — it is rendered
// inline as a closure at its point of use instead of as a top-level
// let-binding, so it must never also appear here.
//
// The order is built with a modified insertion sort: nodes are
// discovered in plain pre-order, then each is inserted into the result
// just before the first already-placed node that depends on it, rather
// than sorted by a single global comparator.
func topoOrder(root *scope.Scope) []*scope.Scope {
	var nodes []*scope.Scope
	visited := map[string]bool{}
	var collect func(s *scope.Scope)
	collect = func(s *scope.Scope) {
		if s == nil {
			return
		}
		key := types.CanonicalKey(s.Instantiable.ConcreteType)
		if visited[key] {
			return
		}
		visited[key] = true
		nodes = append(nodes, s)
		for _, p := range s.Properties {
			if p.Child != nil && p.Dependency.IsInstantiated() && !p.Dependency.IsLazy() {
				collect(p.Child)
			}
		}
	}
	collect(root)

	order := make([]*scope.Scope, 0, len(nodes))
	for _, n := range nodes {
		nkey := types.CanonicalKey(n.Instantiable.ConcreteType)
		insertAt := len(order)
		for i, placed := range order {
			if dependsOn(placed, nkey) {
				insertAt = i
				break
			}
		}
		order = append(order, nil)
		copy(order[insertAt+1:], order[insertAt:])
		order[insertAt] = n
	}
	return order
}

func dependsOn(s *scope.Scope, key string) bool {
	for _, p := range s.Properties {
		if p.Child == nil || !p.Dependency.IsInstantiated() || p.Dependency.IsLazy() {
			continue
		}
		if types.CanonicalKey(p.Child.Instantiable.ConcreteType) == key {
			return true
		}
	}
	return false
}
