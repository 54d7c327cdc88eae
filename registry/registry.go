// Package registry builds the global fulfilled-type index the rest of the
// pipeline resolves dependencies against.
package registry

import (
	"sort"

	"safedi/diagnostic"
	"safedi/types"
)

// Registry is the immutable fulfilled_type -> Instantiable map built from
// an ordered list of module summaries, plus the label/type multimap used
// to generate "did you mean?" suggestions.
type Registry struct {
	byFulfilledType map[string]types.Instantiable
	// sourceByKey preserves one canonical TypeDescription per key, so
	// lookups can report the type as the caller spelled it even though
	// the index itself is keyed by canonical string.
	sourceByKey map[string]types.TypeDescription

	// byLabel and byType together form the "declared properties"
	// multimap: every Property appearing on any Instantiable's
	// Dependencies list, indexed both ways for near-miss suggestions.
	byLabel map[string][]types.Property
	byType  map[string][]types.Property

	// instantiables is every provider, in summary-then-declaration order,
	// for callers that need to range deterministically.
	instantiables []types.Instantiable
}

// Build merges summaries (current module last, so its imports and names
// are authoritative) into a Registry. It returns every
// DuplicateInstantiable diagnostic found — the registry it also returns
// is still populated with the first-seen provider for each type, so
// scope/validator can continue past the duplicate and surface as many
// other diagnostics as possible in the same run.
func Build(summaries []types.ModuleSummary) (*Registry, []diagnostic.Diagnostic) {
	r := &Registry{
		byFulfilledType: make(map[string]types.Instantiable),
		sourceByKey:     make(map[string]types.TypeDescription),
		byLabel:         make(map[string][]types.Property),
		byType:          make(map[string][]types.Property),
	}
	var diags []diagnostic.Diagnostic

	for _, summary := range summaries {
		for _, inst := range summary.Instantiables {
			r.instantiables = append(r.instantiables, inst)

			for _, dep := range inst.Dependencies {
				r.byLabel[dep.Property.Label] = append(r.byLabel[dep.Property.Label], dep.Property)
				key := types.CanonicalKey(dep.Property.Type)
				r.byType[key] = append(r.byType[key], dep.Property)
			}

			for _, ft := range inst.FulfilledTypes() {
				key := types.CanonicalKey(ft)
				if _, exists := r.byFulfilledType[key]; exists {
					diags = append(diags, diagnostic.DuplicateInstantiable{Type: ft})
					continue
				}
				r.byFulfilledType[key] = inst
				r.sourceByKey[key] = ft
			}
		}
	}

	return r, diags
}

// Lookup resolves t to the Instantiable that fulfills it, per the
// unified equality rules in types.Equal (composition set-equality, void
// normalization).
func (r *Registry) Lookup(t types.TypeDescription) (types.Instantiable, bool) {
	inst, ok := r.byFulfilledType[types.CanonicalKey(t)]
	return inst, ok
}

// All returns every registered Instantiable, in the order Build
// encountered them.
func (r *Registry) All() []types.Instantiable {
	return r.instantiables
}

// PropertiesWithLabel returns every declared Property anywhere in the
// registry with the given label — used to build
// diagnostic.SuggestSameLabelDifferentType suggestions.
func (r *Registry) PropertiesWithLabel(label string) []types.Property {
	return r.byLabel[label]
}

// PropertiesWithType returns every declared Property anywhere in the
// registry with a structurally-equal type — used to build
// diagnostic.SuggestSameTypeDifferentLabel suggestions.
func (r *Registry) PropertiesWithType(t types.TypeDescription) []types.Property {
	return r.byType[types.CanonicalKey(t)]
}

// SortedFulfilledTypeKeys returns every fulfilled-type key in the
// registry in sorted order, for callers that need a deterministic full
// scan.
func (r *Registry) SortedFulfilledTypeKeys() []string {
	keys := make([]string, 0, len(r.byFulfilledType))
	for k := range r.byFulfilledType {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
