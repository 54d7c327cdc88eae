package diagnostic

import (
	"encoding/json"
	"fmt"
	"io"
)

// Format selects how a Bundle is rendered to an output stream — the same
// kind of choice an HTTP exception filter makes between a JSON body and
// a plain-text response based on the request's Accept header; here the
// choice is a CLI flag instead of a header.
type Format int

const (
	// FormatText renders one human-readable line per diagnostic.
	FormatText Format = iota
	// FormatJSON renders the bundle as a JSON array of {kind, message}.
	FormatJSON
)

// Renderer writes a Bundle to w in the configured Format.
type Renderer struct {
	Format Format
}

// Render writes every diagnostic in the bundle to w. A nil bundle writes
// nothing and returns nil.
func (r Renderer) Render(w io.Writer, b *Bundle) error {
	if b.Len() == 0 {
		return nil
	}
	switch r.Format {
	case FormatJSON:
		return r.renderJSON(w, b)
	default:
		return r.renderText(w, b)
	}
}

func (r Renderer) renderText(w io.Writer, b *Bundle) error {
	for _, d := range b.Diagnostics {
		if _, err := fmt.Fprintf(w, "error: %s\n", d.Error()); err != nil {
			return err
		}
	}
	return nil
}

type jsonDiagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (r Renderer) renderJSON(w io.Writer, b *Bundle) error {
	out := make([]jsonDiagnostic, len(b.Diagnostics))
	for i, d := range b.Diagnostics {
		out[i] = jsonDiagnostic{Kind: kindName(d), Message: d.Error()}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func kindName(d Diagnostic) string {
	switch d.(type) {
	case ConfigurationError:
		return "ConfigurationError"
	case DuplicateInstantiable:
		return "DuplicateInstantiable"
	case NoInstantiableFound:
		return "NoInstantiableFound"
	case UnfulfillableProperty:
		return "UnfulfillableProperty"
	case DependencyCycle:
		return "DependencyCycle"
	case LazyDependencyCycle:
		return "LazyDependencyCycle"
	case DependencyReceivedInSameChain:
		return "DependencyReceivedInSameChain"
	case CannotBeRoot:
		return "CannotBeRoot"
	case ForwardingInstantiatorGenericDoesNotMatch:
		return "ForwardingInstantiatorGenericDoesNotMatch"
	case NestedInstantiablesFound:
		return "NestedInstantiablesFound"
	default:
		return "Unknown"
	}
}
