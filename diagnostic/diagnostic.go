// Package diagnostic defines every error kind the analyzer can report,
// plus the ordering and bundling rules that make a diagnostic set
// reproducible across runs.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"safedi/types"
)

// Chain is a root-to-here sequence of providers, rendered in diagnostics
// as "Root -> Child -> Grandchild".
type Chain []types.TypeDescription

func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, t := range c {
		parts[i] = t.AsSource()
	}
	return strings.Join(parts, " -> ")
}

// rootSource returns the canonical source form of the chain's first
// element, used as the primary sort key. An empty chain sorts first.
func (c Chain) rootSource() string {
	if len(c) == 0 {
		return ""
	}
	return c[0].AsSource()
}

// SuggestionKind classifies a "did you mean?" suggestion attached to an
// UnfulfillableProperty diagnostic.
type SuggestionKind int

const (
	// SuggestSameLabelDifferentType: a property with the same label but a
	// different type is available.
	SuggestSameLabelDifferentType SuggestionKind = iota
	// SuggestSameTypeDifferentLabel: a property with the same type but a
	// different label is available.
	SuggestSameTypeDifferentLabel
	// SuggestOptionalMismatch: the non-optional/IUO/any-unwrapped form of
	// the same (label, type) is available — suggest onlyIfAvailable.
	SuggestOptionalMismatch
)

// Suggestion is one candidate fix offered alongside an
// UnfulfillableProperty diagnostic.
type Suggestion struct {
	Kind     SuggestionKind
	Property types.Property
}

func (s Suggestion) String() string {
	switch s.Kind {
	case SuggestSameLabelDifferentType:
		return fmt.Sprintf("a property named %q is available with type `%s`", s.Property.Label, s.Property.Type.AsSource())
	case SuggestSameTypeDifferentLabel:
		return fmt.Sprintf("a property of type `%s` is available under the name %q", s.Property.Type.AsSource(), s.Property.Label)
	case SuggestOptionalMismatch:
		return fmt.Sprintf(
			"The non-optional `%s: %s` is available in chain. Did you mean to decorate this property with `@Received(onlyIfAvailable: true)`?",
			s.Property.Label, s.Property.Type.AsSource(),
		)
	default:
		return ""
	}
}

// Diagnostic is implemented by every error kind in this package. Beyond
// the standard error interface, it exposes the three-part sort key
// (root type source form, chain depth, property source form) that keeps
// a diagnostic set's ordering stable.
type Diagnostic interface {
	error
	sortKey() (rootSource string, depth int, propertySource string)
}

// --- ConfigurationError ---

// ConfigurationError reports a missing required input or an unreachable
// input directory — problems with how the tool itself was invoked, not
// with the dependency graph.
type ConfigurationError struct {
	Message string
}

func (e ConfigurationError) Error() string { return e.Message }
func (e ConfigurationError) sortKey() (string, int, string) { return "", 0, e.Message }

// --- DuplicateInstantiable ---

// DuplicateInstantiable reports that a fulfilled type is claimed by more
// than one Instantiable.
type DuplicateInstantiable struct {
	Type types.TypeDescription
}

func (e DuplicateInstantiable) Error() string {
	return fmt.Sprintf("`%s` is already fulfilled by another @Instantiable-decorated type or extension", e.Type.AsSource())
}

func (e DuplicateInstantiable) sortKey() (string, int, string) {
	return e.Type.AsSource(), 0, ""
}

// --- NoInstantiableFound ---

// NoInstantiableFound reports a reachable type with no provider.
type NoInstantiableFound struct {
	Type  types.TypeDescription
	Chain Chain
}

func (e NoInstantiableFound) Error() string {
	return fmt.Sprintf(
		"No `@Instantiable`-decorated type or extension found to fulfill `@Instantiated`-decorated property with type `%s`",
		e.Type.AsSource(),
	)
}

func (e NoInstantiableFound) sortKey() (string, int, string) {
	return e.Chain.rootSource(), len(e.Chain), e.Type.AsSource()
}

// --- UnfulfillableProperty ---

// UnfulfillableProperty reports a Received (or Aliased) dependency with
// no matching entry in the receivable set.
type UnfulfillableProperty struct {
	Property    types.Property
	Chain       Chain
	Suggestions []Suggestion
}

func (e UnfulfillableProperty) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@Received property `%s: %s` is not @Instantiated or @Forwarded in chain: %s",
		e.Property.Label, e.Property.Type.AsSource(), e.Chain.String())
	for _, s := range e.Suggestions {
		text := s.String()
		if text == "" {
			continue
		}
		if s.Kind == SuggestOptionalMismatch {
			b.WriteString(". ")
			b.WriteString(text)
		} else {
			fmt.Fprintf(&b, ". Did you mean %s?", text)
		}
	}
	return b.String()
}

func (e UnfulfillableProperty) sortKey() (string, int, string) {
	return e.Chain.rootSource(), len(e.Chain), e.Property.Type.AsSource()
}

// --- DependencyCycle ---

// DependencyCycle reports an eager (Instantiated, non-lazy) cycle.
type DependencyCycle struct {
	Path Chain
}

func (e DependencyCycle) Error() string {
	return fmt.Sprintf("Dependency cycle detected: %s", e.Path.String())
}

func (e DependencyCycle) sortKey() (string, int, string) {
	return e.Path.rootSource(), len(e.Path), ""
}

// --- LazyDependencyCycle ---

// LazyDependencyCycle reports a lazy-edge cycle closed by a Received (or
// Aliased onlyIfAvailable) dependency rather than an Instantiated one.
type LazyDependencyCycle struct {
	Path         Chain
	ClosingType  types.TypeDescription
	ClosingLabel string
}

func (e LazyDependencyCycle) Error() string {
	return fmt.Sprintf(
		"Dependency cycle detected through lazily-instantiated properties: %s. "+
			"Property `%s: %s` closes the cycle as @Received; declare it @Instantiated on %s instead.",
		e.Path.String(), e.ClosingLabel, e.ClosingType.AsSource(), e.Path.rootSource(),
	)
}

func (e LazyDependencyCycle) sortKey() (string, int, string) {
	return e.Path.rootSource(), len(e.Path), e.ClosingType.AsSource()
}

// --- DependencyReceivedInSameChain ---

// DependencyReceivedInSameChain reports a provider whose Instantiated
// dependency's own subtree receives the very type the provider is
// instantiating.
type DependencyReceivedInSameChain struct {
	Path Chain
	Type types.TypeDescription
}

func (e DependencyReceivedInSameChain) Error() string {
	return fmt.Sprintf(
		"`%s` is @Instantiated by `%s` but is also @Received further down the same chain: %s",
		e.Type.AsSource(), e.Path.rootSource(), e.Path.String(),
	)
}

func (e DependencyReceivedInSameChain) sortKey() (string, int, string) {
	return e.Path.rootSource(), len(e.Path), e.Type.AsSource()
}

// --- CannotBeRoot ---

// CannotBeRoot reports a provider marked IsRoot whose dependencies are
// not all Instantiated or locally-sourced Aliased.
type CannotBeRoot struct {
	Type       types.TypeDescription
	Violations []types.Property
}

func (e CannotBeRoot) Error() string {
	names := make([]string, len(e.Violations))
	for i, p := range e.Violations {
		names[i] = fmt.Sprintf("%s: %s", p.Label, p.Type.AsSource())
	}
	return fmt.Sprintf(
		"`%s` is marked as a root but has dependencies that are not @Instantiated or locally-sourced @Aliased: %s",
		e.Type.AsSource(), strings.Join(names, ", "),
	)
}

func (e CannotBeRoot) sortKey() (string, int, string) {
	return e.Type.AsSource(), 0, ""
}

// --- ForwardingInstantiatorGenericDoesNotMatch ---

// ForwardingInstantiatorGenericDoesNotMatch reports an ErasedInstantiator
// whose forwarded-type argument doesn't match any of the three shapes
// a forwarding instantiator allows: void, a single type, or a tuple.
type ForwardingInstantiatorGenericDoesNotMatch struct {
	Property types.Property
	Target   types.TypeDescription
	Expected types.TypeDescription
}

func (e ForwardingInstantiatorGenericDoesNotMatch) Error() string {
	return fmt.Sprintf(
		"Property `%s: %s` incorrectly configured. Property should instead be of type `%s`",
		e.Property.Label, e.Property.Type.AsSource(), e.Expected.AsSource(),
	)
}

func (e ForwardingInstantiatorGenericDoesNotMatch) sortKey() (string, int, string) {
	return e.Target.AsSource(), 0, e.Property.Type.AsSource()
}

// --- NestedInstantiablesFound ---

// NestedInstantiablesFound is surfaced from the visitor contract: the
// core assumes every Instantiable it is handed is top-level, but a
// visitor may detect and report a nested annotated declaration through
// this shape instead of a panic.
type NestedInstantiablesFound struct {
	Types []types.TypeDescription
}

func (e NestedInstantiablesFound) Error() string {
	names := make([]string, len(e.Types))
	for i, t := range e.Types {
		names[i] = t.AsSource()
	}
	return fmt.Sprintf("@Instantiable-decorated types must be top-level, found nested: %s", strings.Join(names, ", "))
}

func (e NestedInstantiablesFound) sortKey() (string, int, string) {
	if len(e.Types) == 0 {
		return "", 0, ""
	}
	return e.Types[0].AsSource(), 0, ""
}

// Sort orders diagnostics by (root type source form, chain depth,
// property source form), so that test fixtures see a stable
// order regardless of iteration order upstream.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		ri, di, pi := diags[i].sortKey()
		rj, dj, pj := diags[j].sortKey()
		if ri != rj {
			return ri < rj
		}
		if di != dj {
			return di < dj
		}
		return pi < pj
	})
}
