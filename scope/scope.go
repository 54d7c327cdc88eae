// Package scope builds the per-root dependency tree the validator walks
// and the emitter renders.
package scope

import (
	"sort"

	"safedi/registry"
	"safedi/types"
)

// PropertyToInstantiate is one property on a Scope's Instantiable, paired
// with the child Scope that builds it when the property is Instantiated
// and a provider was found for its type. Child is nil for Received,
// Forwarded, and Aliased properties, and for an Instantiated property
// whose type has no registered provider — that absence is a validator
// diagnostic, not a scope-construction failure.
type PropertyToInstantiate struct {
	Property   types.Property
	Dependency types.Dependency
	Child      *Scope
}

// Scope is one node in a root's dependency tree: a provider plus, for
// each of its properties, the child scope (if any) that fulfills it.
type Scope struct {
	Instantiable types.Instantiable
	Properties   []PropertyToInstantiate
}

// Graph is the full set of scope trees for a module, one per discovered
// root.
type Graph struct {
	Roots []*Scope
}

// Build discovers roots and materializes a Scope tree for each. A type
// is a "possible root" if its Instantiable declares IsRoot; it becomes a
// final root only if it is never encountered as an Instantiated child
// while building every possible root's tree — a root that some other
// provider already instantiates is nested, not a true entry point, and
// is dropped from Roots so the emitter doesn't generate a duplicate
// top-level builder for it.
//
// Final roots are sorted by their concrete type's canonical source form;
// within a Scope, properties preserve declaration order except
// that an Aliased property is reordered to after the property supplying
// its FulfillingProperty, when that property is declared on the same
// Instantiable.
func Build(reg *registry.Registry) *Graph {
	b := &builder{reg: reg, memo: map[string]*Scope{}}

	var possibleRoots []types.Instantiable
	for _, inst := range reg.All() {
		if inst.IsRoot {
			possibleRoots = append(possibleRoots, inst)
		}
	}
	sort.SliceStable(possibleRoots, func(i, j int) bool {
		return possibleRoots[i].ConcreteType.AsSource() < possibleRoots[j].ConcreteType.AsSource()
	})

	rootScopes := make([]*Scope, len(possibleRoots))
	for i, root := range possibleRoots {
		rootScopes[i] = b.build(root)
	}

	reachableAsChild := map[string]bool{}
	for _, s := range rootScopes {
		markDescendants(s, reachableAsChild, map[string]bool{})
	}

	graph := &Graph{}
	for i, root := range possibleRoots {
		if reachableAsChild[types.CanonicalKey(root.ConcreteType)] {
			continue
		}
		graph.Roots = append(graph.Roots, rootScopes[i])
	}
	return graph
}

type builder struct {
	reg  *registry.Registry
	memo map[string]*Scope
}

// build returns the Scope for inst, constructing it on first visit and
// reusing the same pointer for every later reference to the same type —
// including a reference encountered while that first construction is
// still in progress (a dependency cycle). In the cyclic case the
// returned Scope's Properties slice is still being filled in by the
// in-progress call further up the Go call stack; every holder of the
// pointer observes the same struct once construction finishes, so
// nothing downstream ever sees a half-built scope by the time it reads
// it. The validator's own traversal notices the repeated pointer/type to
// report the cycle.
func (b *builder) build(inst types.Instantiable) *Scope {
	key := types.CanonicalKey(inst.ConcreteType)
	if s, ok := b.memo[key]; ok {
		return s
	}
	s := &Scope{Instantiable: inst}
	b.memo[key] = s

	for _, dep := range orderForAliasing(inst.Dependencies) {
		pti := PropertyToInstantiate{Property: dep.Property, Dependency: dep}
		if dep.IsInstantiated() {
			if child, ok := b.reg.Lookup(builtType(dep)); ok {
				pti.Child = b.build(child)
			}
		}
		s.Properties = append(s.Properties, pti)
	}
	return s
}

// builtType resolves the concrete type a lazy or eager Instantiated
// dependency actually constructs: an explicit FulfilledByType override
// takes priority, then — for an Instantiator<T>/ErasedInstantiator<F,R>
// declared type — the generic's built-type argument, falling back to the
// declared property type itself.
func builtType(dep types.Dependency) types.TypeDescription {
	if src, ok := dep.Source.(types.Instantiated); ok && src.FulfilledByType != nil {
		return src.FulfilledByType
	}
	if types.IsInstantiatorType(dep.Property.Type) {
		if built, ok := types.InstantiatorBuiltType(dep.Property.Type); ok {
			return built
		}
	}
	return dep.Property.Type
}

// markDescendants records every type reachable as a Child anywhere under
// s, across the whole tree.
func markDescendants(s *Scope, reachable, visited map[string]bool) {
	if s == nil {
		return
	}
	key := types.CanonicalKey(s.Instantiable.ConcreteType)
	if visited[key] {
		return
	}
	visited[key] = true
	for _, p := range s.Properties {
		if p.Child == nil {
			continue
		}
		reachable[types.CanonicalKey(p.Child.Instantiable.ConcreteType)] = true
		markDescendants(p.Child, reachable, visited)
	}
}

// orderForAliasing reorders deps so that an Aliased dependency always
// appears after the dependency declaring the property it aliases, when
// that property is declared on the same Instantiable. Dependencies with
// no such ordering constraint keep their declared order.
func orderForAliasing(deps []types.Dependency) []types.Dependency {
	ordered := make([]types.Dependency, 0, len(deps))
	remaining := append([]types.Dependency(nil), deps...)

	for len(remaining) > 0 {
		var next []types.Dependency
		progressed := false
		for _, d := range remaining {
			if waitsOnUnplacedSource(d, remaining) {
				next = append(next, d)
				continue
			}
			ordered = append(ordered, d)
			progressed = true
		}
		if !progressed {
			// No dependency could be placed (an alias cycle, which
			// shouldn't occur structurally); append the remainder
			// as-is rather than loop forever.
			ordered = append(ordered, next...)
			break
		}
		remaining = next
	}
	return ordered
}

func waitsOnUnplacedSource(d types.Dependency, remaining []types.Dependency) bool {
	al, ok := d.Source.(types.Aliased)
	if !ok {
		return false
	}
	for _, other := range remaining {
		if other.Property.Label == d.Property.Label && types.Equal(other.Property.Type, d.Property.Type) {
			continue
		}
		if other.Property.Label == al.FulfillingProperty.Label && types.Equal(other.Property.Type, al.FulfillingProperty.Type) {
			return true
		}
	}
	return false
}
