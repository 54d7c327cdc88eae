package types

// Property represents one injected field: its label as declared on the
// provider, and the type it is declared with.
type Property struct {
	Label string          `json:"label"`
	Type  TypeDescription `json:"type"`
}

// Key returns a canonical (label, type) key suitable for set/map
// membership, as used by the validator's receivable-property set.
func (p Property) Key() string {
	return p.Label + ":" + CanonicalKey(p.Type)
}

// Equal reports whether two properties share the same label and
// structurally equal type.
func (p Property) Equal(o Property) bool {
	return p.Label == o.Label && Equal(p.Type, o.Type)
}
