package types

// ImportStatement is one `import Foo` (optionally `import class Foo.Bar`)
// line as it appeared in a source module.
type ImportStatement struct {
	// ModuleName is the imported module, e.g. "UIKit".
	ModuleName string `json:"moduleName"`
	// Kind is empty for a wholesale import, or the declaration kind for a
	// partial import (e.g. "class", "struct", "func").
	Kind string `json:"kind,omitempty"`
	// Symbol is set for a partial import, e.g. "Foo.Bar".
	Symbol string `json:"symbol,omitempty"`
	// RequiresConditionalAvailability marks an import that must be
	// guarded by a `#if canImport(...)` (or similar) directive when
	// re-emitted, because it may not exist on every target.
	RequiresConditionalAvailability bool `json:"requiresConditionalAvailability,omitempty"`
}

// IsWholesale reports whether this import brings in the entire module
// rather than one symbol from it.
func (i ImportStatement) IsWholesale() bool { return i.Symbol == "" }

// ModuleSummary is the pre-extracted structured summary of one module's
// annotated declarations — the sole input the analyzer consumes. It does
// not parse source itself; a syntactic visitor (out of scope for this
// package) builds one of these per module.
type ModuleSummary struct {
	Instantiables []Instantiable    `json:"instantiables"`
	Imports       []ImportStatement `json:"imports"`
}
