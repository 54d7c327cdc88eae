package diagnostic

import (
	"fmt"
	"strings"
)

// Bundle collects every diagnostic raised during one analysis run. The
// validator's "collect, don't stop" policy means a run either produces
// zero diagnostics (graph valid, safe to emit) or a Bundle with every
// violation found, sorted and rendered as one fatal error — the same
// single-concrete-type-per-kind shape an HTTP error response uses,
// generalized to an error *set* instead of one-at-a-time.
type Bundle struct {
	Diagnostics []Diagnostic
}

// NewBundle sorts diags (per Sort) and wraps them in a Bundle. Returns nil
// if diags is empty, so callers can write:
//
//	if b := diagnostic.NewBundle(diags); b != nil { return b }
func NewBundle(diags []Diagnostic) *Bundle {
	if len(diags) == 0 {
		return nil
	}
	cp := append([]Diagnostic(nil), diags...)
	Sort(cp)
	return &Bundle{Diagnostics: cp}
}

// Error implements the error interface, rendering every diagnostic on its
// own line prefixed with its ordinal.
func (b *Bundle) Error() string {
	if b == nil || len(b.Diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d diagnostic(s):\n", len(b.Diagnostics))
	for i, d := range b.Diagnostics {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, d.Error())
	}
	return sb.String()
}

// Len reports how many diagnostics the bundle holds (0 for a nil
// receiver, so call sites can check `bundle.Len() == 0` without a prior
// nil check).
func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Diagnostics)
}
