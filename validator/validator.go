// Package validator walks a built scope graph and reports every way it
// violates the dependency rules: unresolved roots, Instantiated types
// with no provider, unfulfillable receptions, dependency cycles (eager and
// lazy), malformed root shapes, and mismatched forwarding types. It never
// stops at the first problem — every run either finds nothing, or
// collects the full set so a single fix-and-rerun cycle clears them all.
package validator

import (
	"fmt"
	"sort"

	"safedi/diagnostic"
	"safedi/scope"
	"safedi/types"
)

// Validate walks every root in graph and returns the diagnostics found,
// bundled and sorted (nil if the graph is valid).
func Validate(graph *scope.Graph) *diagnostic.Bundle {
	v := &validation{}
	for _, root := range graph.Roots {
		v.checkRootConstraint(root)
		v.walk(root, []types.TypeDescription{root.Instantiable.ConcreteType}, map[string]types.Property{}, map[string]int{})
	}
	v.checkLazyCycles(graph)
	return diagnostic.NewBundle(v.diags)
}

type validation struct {
	diags []diagnostic.Diagnostic
}

// walk performs the reception-check DFS: chain is the root-to-here path
// of types, receivable is the (label,type) set available to the current
// node's properties, and instantiatedAt
// maps a property key to the index in chain of the ancestor that
// @Instantiated it, for the DependencyReceivedInSameChain check.
func (v *validation) walk(s *scope.Scope, chain []types.TypeDescription, receivable map[string]types.Property, instantiatedAt map[string]int) {
	if s == nil {
		return
	}

	// Accumulate what this node contributes to R for its own children
	// before recursing, and check what it demands from ancestors.
	childReceivable := cloneProps(receivable)
	childInstantiatedAt := cloneInts(instantiatedAt)

	for _, pti := range s.Properties {
		dep := pti.Dependency
		switch src := dep.Source.(type) {
		case types.Instantiated:
			builtKey := dep.Property.Key()
			if src.FulfilledByType != nil {
				builtKey = types.Property{Label: dep.Property.Label, Type: src.FulfilledByType}.Key()
			}
			childInstantiatedAt[builtKey] = len(chain) - 1
			childReceivable[dep.Property.Key()] = dep.Property

		case types.Forwarded:
			childReceivable[dep.Property.Key()] = dep.Property

		case types.Received:
			if _, ok := receivable[dep.Property.Key()]; ok {
				v.checkReceivedInSameChain(dep.Property, chain, instantiatedAt)
				childReceivable[dep.Property.Key()] = dep.Property
				continue
			}
			if src.OnlyIfAvailable {
				continue
			}
			v.diags = append(v.diags, diagnostic.UnfulfillableProperty{
				Property:    dep.Property,
				Chain:       diagnostic.Chain(chain),
				Suggestions: v.suggestFor(dep.Property, receivable),
			})

		case types.Aliased:
			sourceKey := src.FulfillingProperty.Key()
			if _, ok := receivable[sourceKey]; ok {
				v.checkReceivedInSameChain(src.FulfillingProperty, chain, instantiatedAt)
				childReceivable[dep.Property.Key()] = dep.Property
				continue
			}
			// The source property may also be declared on this same
			// node rather than an ancestor, e.g. a root Aliased from a
			// property it Instantiates itself -- checkRootConstraint
			// treats that as self-sufficient, so walk must accept it
			// too. Declaration order guarantees the source property is
			// already in childReceivable by the time an Aliased
			// dependency sourced from it is visited: scope.Build
			// reorders an Aliased property to after the property
			// supplying it, when that property is declared locally.
			if _, ok := childReceivable[sourceKey]; ok {
				childReceivable[dep.Property.Key()] = dep.Property
				continue
			}
			if src.OnlyIfAvailable {
				continue
			}
			v.diags = append(v.diags, diagnostic.UnfulfillableProperty{
				Property:    src.FulfillingProperty,
				Chain:       diagnostic.Chain(chain),
				Suggestions: v.suggestFor(src.FulfillingProperty, receivable),
			})
		}
	}

	for _, pti := range s.Properties {
		if pti.Child == nil || !pti.Dependency.IsInstantiated() {
			continue
		}
		if cycleAt := indexOfType(chain, pti.Child.Instantiable.ConcreteType); cycleAt >= 0 {
			// A repeat of a type already on the active path. Eager
			// repeats can never finish constructing and are fatal; lazy
			// repeats are the whole point of a builder closure and are
			// reported separately (with full "is it really closed by a
			// reception?" context) by checkLazyCycles. Either way,
			// descending again here would recurse forever.
			if !pti.Dependency.IsLazy() {
				cyclePath := append(append([]types.TypeDescription{}, chain[cycleAt:]...), pti.Child.Instantiable.ConcreteType)
				v.diags = append(v.diags, diagnostic.DependencyCycle{Path: diagnostic.Chain(cyclePath)})
			}
			continue
		}
		nextChain := append(append([]types.TypeDescription{}, chain...), pti.Child.Instantiable.ConcreteType)
		v.walk(pti.Child, nextChain, childReceivable, childInstantiatedAt)
	}

	// An Instantiated dependency whose type has no registered provider
	// never got a Child scope attached; report it here where the full
	// chain context is available.
	for _, pti := range s.Properties {
		if pti.Dependency.IsInstantiated() && pti.Child == nil {
			v.diags = append(v.diags, diagnostic.NoInstantiableFound{
				Type:  pti.Property.Type,
				Chain: diagnostic.Chain(chain),
			})
		}
	}

	v.checkForwarding(s)
}

func (v *validation) checkReceivedInSameChain(matched types.Property, chain []types.TypeDescription, instantiatedAt map[string]int) {
	idx, ok := instantiatedAt[matched.Key()]
	// Receiving from an ancestor is the normal case; it is only a problem
	// when the receiver sits inside the subtree of the instantiated value.
	if !ok || indexOfType(chain[idx+1:], matched.Type) < 0 {
		return
	}
	v.diags = append(v.diags, diagnostic.DependencyReceivedInSameChain{
		Path: diagnostic.Chain(append([]types.TypeDescription{}, chain[idx:]...)),
		Type: matched.Type,
	})
}

// suggestFor builds the "did you mean?" candidates for an unfulfillable
// property: a receivable property with the same label but a different
// type, one with the same type but a different label, or the
// non-optional/IUO/any-unwrapped form of the same (label, type).
func (v *validation) suggestFor(p types.Property, receivable map[string]types.Property) []diagnostic.Suggestion {
	var suggestions []diagnostic.Suggestion
	unwrapped := unwrapOptionalLike(p.Type)
	if unwrapped != nil {
		if avail, ok := receivable[types.Property{Label: p.Label, Type: unwrapped}.Key()]; ok {
			suggestions = append(suggestions, diagnostic.Suggestion{Kind: diagnostic.SuggestOptionalMismatch, Property: avail})
		}
	}
	keys := make([]string, 0, len(receivable))
	for k := range receivable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		candidate := receivable[k]
		if candidate.Label == p.Label && !types.Equal(candidate.Type, p.Type) {
			suggestions = append(suggestions, diagnostic.Suggestion{Kind: diagnostic.SuggestSameLabelDifferentType, Property: candidate})
		}
		if candidate.Label != p.Label && types.Equal(candidate.Type, p.Type) {
			suggestions = append(suggestions, diagnostic.Suggestion{Kind: diagnostic.SuggestSameTypeDifferentLabel, Property: candidate})
		}
	}
	return suggestions
}

// unwrapOptionalLike strips exactly one layer of Optional,
// ImplicitlyUnwrapped, or Any, reporting nil if t carries none of those.
func unwrapOptionalLike(t types.TypeDescription) types.TypeDescription {
	switch v := t.(type) {
	case types.Optional:
		return v.Inner
	case types.ImplicitlyUnwrapped:
		return v.Inner
	case types.Any:
		return v.Inner
	default:
		return nil
	}
}

// checkRootConstraint enforces that a provider marked IsRoot only has
// dependencies that are @Instantiated, or @Aliased from a property
// @Instantiated on that same provider: a root must be fully
// self-sufficient to construct.
func (v *validation) checkRootConstraint(s *scope.Scope) {
	inst := s.Instantiable
	if !inst.IsRoot {
		return
	}
	localInstantiated := map[string]bool{}
	for _, d := range inst.Dependencies {
		if d.IsInstantiated() {
			localInstantiated[d.Property.Key()] = true
		}
	}
	var violations []types.Property
	for _, d := range inst.Dependencies {
		switch src := d.Source.(type) {
		case types.Instantiated:
			continue
		case types.Aliased:
			if localInstantiated[src.FulfillingProperty.Key()] {
				continue
			}
			violations = append(violations, d.Property)
		default:
			violations = append(violations, d.Property)
		}
	}
	if len(violations) > 0 {
		v.diags = append(v.diags, diagnostic.CannotBeRoot{Type: inst.ConcreteType, Violations: violations})
	}
}

// checkForwarding validates that every ErasedInstantiator<F, R>-typed
// Instantiated dependency's child provider declares Forwarded
// dependencies matching one of the three shapes the built closure can
// actually supply: a single Forwarded dependency whose type equals F; no
// Forwarded dependency at all when F is void; or, when F is a tuple,
// exactly one Forwarded dependency per tuple element, matching its label
// and type in order.
func (v *validation) checkForwarding(s *scope.Scope) {
	for _, pti := range s.Properties {
		if pti.Child == nil || !pti.Dependency.IsInstantiated() {
			continue
		}
		if !types.IsErasedInstantiatorType(pti.Property.Type) {
			continue
		}
		forwardedType, ok := types.ErasedInstantiatorForwardedType(pti.Property.Type)
		if !ok {
			continue
		}
		var forwarded []types.Property
		for _, d := range pti.Child.Instantiable.Dependencies {
			if d.IsForwarded() {
				forwarded = append(forwarded, d.Property)
			}
		}
		if forwardingShapeMatches(forwardedType, forwarded) {
			continue
		}
		v.diags = append(v.diags, diagnostic.ForwardingInstantiatorGenericDoesNotMatch{
			Property: pti.Property,
			Target:   pti.Child.Instantiable.ConcreteType,
			Expected: expectedErasedInstantiatorType(forwarded, pti.Property.Type),
		})
	}
}

func forwardingShapeMatches(forwardedType types.TypeDescription, forwarded []types.Property) bool {
	if isVoidLike(forwardedType) {
		return len(forwarded) == 0
	}
	if tup, ok := forwardedType.(types.Tuple); ok && len(tup.Elements) > 1 {
		if len(forwarded) != len(tup.Elements) {
			return false
		}
		for i, elem := range tup.Elements {
			if forwarded[i].Label != elem.Label || !types.Equal(forwarded[i].Type, elem.Type) {
				return false
			}
		}
		return true
	}
	return len(forwarded) == 1 && types.Equal(forwarded[0].Type, forwardedType)
}

func isVoidLike(t types.TypeDescription) bool {
	return types.Equal(t, types.Void{})
}

func expectedErasedInstantiatorType(forwarded []types.Property, erased types.TypeDescription) types.TypeDescription {
	built, ok := types.InstantiatorBuiltType(erased)
	if !ok {
		built = types.Unknown{Raw: "?"}
	}
	var f types.TypeDescription
	switch len(forwarded) {
	case 0:
		f = types.Void{}
	case 1:
		f = forwarded[0].Type
	default:
		elems := make([]types.TupleElement, len(forwarded))
		for i, p := range forwarded {
			elems[i] = types.TupleElement{Label: p.Label, Type: p.Type}
		}
		f = types.Tuple{Elements: elems}
	}
	return types.Simple{Name: fmt.Sprintf("ErasedInstantiator<%s, %s>", f.AsSource(), built.AsSource())}
}

// checkLazyCycles detects a cycle that passes through at least one lazy
// (Instantiator/ErasedInstantiator) edge. Such a cycle is normally
// harmless — the lazy closure defers construction past the point where
// eager recursion would diverge — unless the cycle is closed by a
// Received (or onlyIfAvailable Aliased) dependency rather than another
// Instantiated one: that still demands the ancestor's value synchronously
// at the point the lazy closure runs, which reintroduces the eager
// problem laziness was meant to avoid.
func (v *validation) checkLazyCycles(graph *scope.Graph) {
	for _, root := range graph.Roots {
		v.walkLazy(root, nil, map[string]bool{})
	}
}

type lazyPathEntry struct {
	typ    types.TypeDescription
	scope  *scope.Scope
	isLazy bool
}

func (v *validation) walkLazy(s *scope.Scope, path []lazyPathEntry, onPath map[string]bool) {
	if s == nil {
		return
	}
	key := types.CanonicalKey(s.Instantiable.ConcreteType)
	if onPath[key] {
		return
	}
	onPath[key] = true
	defer delete(onPath, key)

	nextPath := append(append([]lazyPathEntry{}, path...), lazyPathEntry{typ: s.Instantiable.ConcreteType, scope: s})

	for _, pti := range s.Properties {
		if pti.Child == nil || !pti.Dependency.IsInstantiated() {
			continue
		}
		childEntry := lazyPathEntry{typ: pti.Child.Instantiable.ConcreteType, scope: pti.Child, isLazy: pti.Dependency.IsLazy()}
		childKey := types.CanonicalKey(childEntry.typ)

		if idx := indexOfLazyEntry(nextPath, childKey); idx >= 0 {
			cyclePath := append(append([]lazyPathEntry{}, nextPath[idx:]...), childEntry)
			if anyLazy(cyclePath) {
				if closing, ok := receivedClosureIn(cyclePath, nextPath[idx].typ); ok {
					v.diags = append(v.diags, diagnostic.LazyDependencyCycle{
						Path:         chainOf(cyclePath),
						ClosingType:  closing.Type,
						ClosingLabel: closing.Label,
					})
				}
			}
			continue
		}
		v.walkLazy(pti.Child, nextPath, onPath)
	}
}

func indexOfLazyEntry(path []lazyPathEntry, key string) int {
	for i, e := range path {
		if types.CanonicalKey(e.typ) == key {
			return i
		}
	}
	return -1
}

func anyLazy(path []lazyPathEntry) bool {
	for _, e := range path {
		if e.isLazy {
			return true
		}
	}
	return false
}

func chainOf(path []lazyPathEntry) diagnostic.Chain {
	out := make(diagnostic.Chain, len(path))
	for i, e := range path {
		out[i] = e.typ
	}
	return out
}

// receivedClosureIn reports whether any node along the cycle, the node
// that starts it included, declares a Received or onlyIfAvailable-Aliased
// dependency whose type matches closingType — the signal that this lazy
// cycle is, in practice, still demanded eagerly.
func receivedClosureIn(path []lazyPathEntry, closingType types.TypeDescription) (types.Property, bool) {
	for _, e := range path {
		if e.scope == nil {
			continue
		}
		for _, dep := range e.scope.Instantiable.Dependencies {
			switch src := dep.Source.(type) {
			case types.Received:
				if types.Equal(dep.Property.Type, closingType) {
					return dep.Property, true
				}
			case types.Aliased:
				if src.OnlyIfAvailable && types.Equal(src.FulfillingProperty.Type, closingType) {
					return dep.Property, true
				}
			}
		}
	}
	return types.Property{}, false
}

func indexOfType(chain []types.TypeDescription, t types.TypeDescription) int {
	for i, c := range chain {
		if types.Equal(c, t) {
			return i
		}
	}
	return -1
}

func cloneProps(m map[string]types.Property) map[string]types.Property {
	out := make(map[string]types.Property, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneInts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
