// Package types is the structural data model shared by every stage of the
// analyzer: the syntactic findings a module summary carries, and the
// dependency graph built from them.
package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TypeDescription is a structural description of a named type as it
// appeared in source. It is a closed tagged union: every concrete type in
// this file implements it, and no other package should add variants.
type TypeDescription interface {
	// AsSource renders the canonical textual form used in diagnostics and
	// generated output.
	AsSource() string

	typeDescriptionTag() string
}

// Equal reports whether two TypeDescriptions are structurally identical,
// applying two normalizations: composition equality is set-equality over
// members, and void equality treats `()`, `(Void)`, and `Void` as the
// same type.
func Equal(a, b TypeDescription) bool {
	if a == nil || b == nil {
		return a == b
	}
	if isVoid(a) && isVoid(b) {
		return true
	}
	switch av := a.(type) {
	case Simple:
		bv, ok := b.(Simple)
		return ok && av.Name == bv.Name
	case Nested:
		bv, ok := b.(Nested)
		return ok && av.Name == bv.Name && Equal(av.Parent, bv.Parent)
	case Composition:
		bv, ok := b.(Composition)
		if !ok {
			return false
		}
		return compositionSetEqual(av.Members, bv.Members)
	case Optional:
		bv, ok := b.(Optional)
		return ok && Equal(av.Inner, bv.Inner)
	case ImplicitlyUnwrapped:
		bv, ok := b.(ImplicitlyUnwrapped)
		return ok && Equal(av.Inner, bv.Inner)
	case Some:
		bv, ok := b.(Some)
		return ok && Equal(av.Inner, bv.Inner)
	case Any:
		bv, ok := b.(Any)
		return ok && Equal(av.Inner, bv.Inner)
	case Metatype:
		bv, ok := b.(Metatype)
		return ok && Equal(av.Inner, bv.Inner)
	case Attributed:
		bv, ok := b.(Attributed)
		if !ok {
			return false
		}
		return Equal(av.Inner, bv.Inner) &&
			equalStringSets(av.Specifiers, bv.Specifiers) &&
			equalStringSets(av.Attributes, bv.Attributes)
	case Array:
		bv, ok := b.(Array)
		return ok && Equal(av.Element, bv.Element)
	case Dictionary:
		bv, ok := b.(Dictionary)
		return ok && Equal(av.Key, bv.Key) && Equal(av.Value, bv.Value)
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if av.Elements[i].Label != bv.Elements[i].Label ||
				!Equal(av.Elements[i].Type, bv.Elements[i].Type) {
				return false
			}
		}
		return true
	case Closure:
		bv, ok := b.(Closure)
		if !ok || len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return equalStringSets(av.Effects, bv.Effects) && Equal(av.Result, bv.Result)
	case Void:
		_, ok := b.(Void)
		return ok
	case Unknown:
		bv, ok := b.(Unknown)
		return ok && av.Raw == bv.Raw
	default:
		return false
	}
}

func isVoid(t TypeDescription) bool {
	switch v := t.(type) {
	case Void:
		return true
	case Simple:
		return v.Name == "Void"
	case Tuple:
		if len(v.Elements) == 0 {
			return true
		}
		if len(v.Elements) == 1 && v.Elements[0].Label == "" {
			return isVoid(v.Elements[0].Type)
		}
		return false
	default:
		return false
	}
}

func equalStringSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func compositionSetEqual(a, b []TypeDescription) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		found := false
		for i, bv := range b {
			if used[i] {
				continue
			}
			if Equal(av, bv) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Simple is a bare named type, e.g. `NetworkService`.
type Simple struct {
	Name string `json:"name"`
}

func (Simple) typeDescriptionTag() string { return "simple" }
func (s Simple) AsSource() string         { return s.Name }

// Nested is a type named relative to an enclosing parent, e.g.
// `LoggedInViewController.ForwardedProperties`.
type Nested struct {
	Name   string          `json:"name"`
	Parent TypeDescription `json:"parent"`
}

func (Nested) typeDescriptionTag() string { return "nested" }
func (n Nested) AsSource() string         { return n.Parent.AsSource() + "." + n.Name }

// Composition is a protocol/type composition, e.g. `A & B`. Equality and
// canonical rendering are both set-based: members are sorted by their
// canonical source form before being joined.
type Composition struct {
	Members []TypeDescription `json:"members"`
}

func (Composition) typeDescriptionTag() string { return "composition" }
func (c Composition) AsSource() string {
	parts := make([]string, len(c.Members))
	for i, m := range c.Members {
		parts[i] = m.AsSource()
	}
	sort.Strings(parts)
	return strings.Join(parts, " & ")
}

// Optional is `Inner?`.
type Optional struct {
	Inner TypeDescription `json:"inner"`
}

func (Optional) typeDescriptionTag() string { return "optional" }
func (o Optional) AsSource() string         { return o.Inner.AsSource() + "?" }

// ImplicitlyUnwrapped is `Inner!`.
type ImplicitlyUnwrapped struct {
	Inner TypeDescription `json:"inner"`
}

func (ImplicitlyUnwrapped) typeDescriptionTag() string { return "implicitlyUnwrapped" }
func (i ImplicitlyUnwrapped) AsSource() string         { return i.Inner.AsSource() + "!" }

// Some is an opaque result type, `some Inner`.
type Some struct {
	Inner TypeDescription `json:"inner"`
}

func (Some) typeDescriptionTag() string { return "some" }
func (s Some) AsSource() string         { return "some " + s.Inner.AsSource() }

// Any is an existential/boxed-protocol type, `any Inner`. It is a distinct
// TypeDescription from plain protocol reception: the two are never
// interchangeable for dependency matching.
type Any struct {
	Inner TypeDescription `json:"inner"`
}

func (Any) typeDescriptionTag() string { return "any" }
func (a Any) AsSource() string         { return "any " + a.Inner.AsSource() }

// Metatype is `Inner.Type` / `Inner.Protocol`.
type Metatype struct {
	Inner TypeDescription `json:"inner"`
}

func (Metatype) typeDescriptionTag() string { return "metatype" }
func (m Metatype) AsSource() string         { return m.Inner.AsSource() + ".Type" }

// Attributed decorates an inner type with specifiers (e.g. `inout`) and
// attributes (e.g. `@escaping`).
type Attributed struct {
	Inner      TypeDescription `json:"inner"`
	Specifiers []string        `json:"specifiers,omitempty"`
	Attributes []string        `json:"attributes,omitempty"`
}

func (Attributed) typeDescriptionTag() string { return "attributed" }
func (a Attributed) AsSource() string {
	var b strings.Builder
	for _, attr := range a.Attributes {
		b.WriteString("@")
		b.WriteString(attr)
		b.WriteString(" ")
	}
	for _, spec := range a.Specifiers {
		b.WriteString(spec)
		b.WriteString(" ")
	}
	b.WriteString(a.Inner.AsSource())
	return b.String()
}

// hasAttribute reports whether the attribute (e.g. "escaping") is present,
// looking through zero or more layers of Attributed.
func hasAttribute(t TypeDescription, name string) bool {
	a, ok := t.(Attributed)
	if !ok {
		return false
	}
	for _, attr := range a.Attributes {
		if attr == name {
			return true
		}
	}
	return hasAttribute(a.Inner, name)
}

// stripAttribute returns the type with the named attribute removed,
// collapsing an Attributed wrapper entirely once it carries no more
// specifiers or attributes.
func stripAttribute(t TypeDescription, name string) TypeDescription {
	a, ok := t.(Attributed)
	if !ok {
		return t
	}
	attrs := make([]string, 0, len(a.Attributes))
	for _, attr := range a.Attributes {
		if attr != name {
			attrs = append(attrs, attr)
		}
	}
	inner := stripAttribute(a.Inner, name)
	if len(attrs) == 0 && len(a.Specifiers) == 0 {
		return inner
	}
	return Attributed{Inner: inner, Specifiers: a.Specifiers, Attributes: attrs}
}

// Array is `[Element]`.
type Array struct {
	Element TypeDescription `json:"element"`
}

func (Array) typeDescriptionTag() string { return "array" }
func (a Array) AsSource() string         { return "[" + a.Element.AsSource() + "]" }

// Dictionary is `[Key: Value]`.
type Dictionary struct {
	Key   TypeDescription `json:"key"`
	Value TypeDescription `json:"value"`
}

func (Dictionary) typeDescriptionTag() string { return "dictionary" }
func (d Dictionary) AsSource() string {
	return "[" + d.Key.AsSource() + ": " + d.Value.AsSource() + "]"
}

// TupleElement is one labeled (or unlabeled) member of a Tuple.
type TupleElement struct {
	Label string          `json:"label,omitempty"`
	Type  TypeDescription `json:"type"`
}

// Tuple is `(a: A, B)`. The zero-element tuple is canonically void (see
// isVoid), and AsSource renders it as the type-position spelling `Void`;
// this package has no value-position `()` rendering.
type Tuple struct {
	Elements []TupleElement `json:"elements"`
}

func (Tuple) typeDescriptionTag() string { return "tuple" }
func (t Tuple) AsSource() string {
	if isVoid(t) {
		return "Void"
	}
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		if e.Label != "" {
			parts[i] = e.Label + ": " + e.Type.AsSource()
		} else {
			parts[i] = e.Type.AsSource()
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Closure is `(Params) async throws -> Result`.
type Closure struct {
	Params  []TypeDescription `json:"params"`
	Effects []string          `json:"effects,omitempty"` // e.g. "async", "throws"
	Result  TypeDescription   `json:"result"`
}

func (Closure) typeDescriptionTag() string { return "closure" }
func (c Closure) AsSource() string {
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		parts[i] = p.AsSource()
	}
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(")")
	for _, e := range c.Effects {
		b.WriteString(" ")
		b.WriteString(e)
	}
	b.WriteString(" -> ")
	b.WriteString(c.Result.AsSource())
	return b.String()
}

// Void is the canonical empty-tuple / `Void` type.
type Void struct{}

func (Void) typeDescriptionTag() string { return "void" }
func (Void) AsSource() string           { return "Void" }

// Unknown wraps raw, unparsed textual type syntax the visitor could not
// otherwise classify. It still participates in equality (by raw text) so
// that a duplicate-detection pass doesn't silently treat two unrelated
// unparsed types as the same type.
type Unknown struct {
	Raw string `json:"raw"`
}

func (Unknown) typeDescriptionTag() string { return "unknown" }
func (u Unknown) AsSource() string         { return u.Raw }

// --- JSON (de)serialization ---
//
// TypeDescription is a Go interface, so a value boxed inside a
// ModuleSummary needs an explicit discriminator to round-trip through
// JSON. Each variant marshals itself behind a {"kind": ..., ...} envelope;
// UnmarshalTypeDescription reads the kind first and dispatches.

type typeEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalTypeDescription produces the envelope used throughout the JSON
// module-summary format.
func MarshalTypeDescription(t TypeDescription) ([]byte, error) {
	if t == nil {
		return json.Marshal(nil)
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(typeEnvelope{Kind: t.typeDescriptionTag(), Data: data})
}

// UnmarshalTypeDescription is the inverse of MarshalTypeDescription.
func UnmarshalTypeDescription(raw []byte) (TypeDescription, error) {
	if string(raw) == "null" {
		return nil, nil
	}
	var env typeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("type description envelope: %w", err)
	}
	switch env.Kind {
	case "simple":
		var v Simple
		return v, json.Unmarshal(env.Data, &v)
	case "nested":
		return unmarshalNested(env.Data)
	case "composition":
		return unmarshalComposition(env.Data)
	case "optional":
		return unmarshalWrapped(env.Data, func(inner TypeDescription) TypeDescription { return Optional{Inner: inner} })
	case "implicitlyUnwrapped":
		return unmarshalWrapped(env.Data, func(inner TypeDescription) TypeDescription { return ImplicitlyUnwrapped{Inner: inner} })
	case "some":
		return unmarshalWrapped(env.Data, func(inner TypeDescription) TypeDescription { return Some{Inner: inner} })
	case "any":
		return unmarshalWrapped(env.Data, func(inner TypeDescription) TypeDescription { return Any{Inner: inner} })
	case "metatype":
		return unmarshalWrapped(env.Data, func(inner TypeDescription) TypeDescription { return Metatype{Inner: inner} })
	case "attributed":
		return unmarshalAttributed(env.Data)
	case "array":
		return unmarshalWrapped(env.Data, func(inner TypeDescription) TypeDescription { return Array{Element: inner} })
	case "dictionary":
		return unmarshalDictionary(env.Data)
	case "tuple":
		return unmarshalTuple(env.Data)
	case "closure":
		return unmarshalClosure(env.Data)
	case "void":
		return Void{}, nil
	case "unknown":
		var v Unknown
		return v, json.Unmarshal(env.Data, &v)
	default:
		return nil, fmt.Errorf("unknown type description kind %q", env.Kind)
	}
}

type rawInner struct {
	Inner json.RawMessage `json:"inner"`
}

func unmarshalWrapped(raw json.RawMessage, wrap func(TypeDescription) TypeDescription) (TypeDescription, error) {
	var ri rawInner
	if err := json.Unmarshal(raw, &ri); err != nil {
		return nil, err
	}
	inner, err := UnmarshalTypeDescription(ri.Inner)
	if err != nil {
		return nil, err
	}
	return wrap(inner), nil
}

func unmarshalNested(raw json.RawMessage) (TypeDescription, error) {
	var r struct {
		Name   string          `json:"name"`
		Parent json.RawMessage `json:"parent"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	parent, err := UnmarshalTypeDescription(r.Parent)
	if err != nil {
		return nil, err
	}
	return Nested{Name: r.Name, Parent: parent}, nil
}

func unmarshalComposition(raw json.RawMessage) (TypeDescription, error) {
	var r struct {
		Members []json.RawMessage `json:"members"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	members := make([]TypeDescription, len(r.Members))
	for i, m := range r.Members {
		td, err := UnmarshalTypeDescription(m)
		if err != nil {
			return nil, err
		}
		members[i] = td
	}
	return Composition{Members: members}, nil
}

func unmarshalAttributed(raw json.RawMessage) (TypeDescription, error) {
	var r struct {
		Inner      json.RawMessage `json:"inner"`
		Specifiers []string        `json:"specifiers"`
		Attributes []string        `json:"attributes"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	inner, err := UnmarshalTypeDescription(r.Inner)
	if err != nil {
		return nil, err
	}
	return Attributed{Inner: inner, Specifiers: r.Specifiers, Attributes: r.Attributes}, nil
}

func unmarshalDictionary(raw json.RawMessage) (TypeDescription, error) {
	var r struct {
		Key   json.RawMessage `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	key, err := UnmarshalTypeDescription(r.Key)
	if err != nil {
		return nil, err
	}
	value, err := UnmarshalTypeDescription(r.Value)
	if err != nil {
		return nil, err
	}
	return Dictionary{Key: key, Value: value}, nil
}

func unmarshalTuple(raw json.RawMessage) (TypeDescription, error) {
	var r struct {
		Elements []struct {
			Label string          `json:"label"`
			Type  json.RawMessage `json:"type"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	elems := make([]TupleElement, len(r.Elements))
	for i, e := range r.Elements {
		td, err := UnmarshalTypeDescription(e.Type)
		if err != nil {
			return nil, err
		}
		elems[i] = TupleElement{Label: e.Label, Type: td}
	}
	return Tuple{Elements: elems}, nil
}

func unmarshalClosure(raw json.RawMessage) (TypeDescription, error) {
	var r struct {
		Params  []json.RawMessage `json:"params"`
		Effects []string          `json:"effects"`
		Result  json.RawMessage   `json:"result"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	params := make([]TypeDescription, len(r.Params))
	for i, p := range r.Params {
		td, err := UnmarshalTypeDescription(p)
		if err != nil {
			return nil, err
		}
		params[i] = td
	}
	result, err := UnmarshalTypeDescription(r.Result)
	if err != nil {
		return nil, err
	}
	return Closure{Params: params, Effects: r.Effects, Result: result}, nil
}

// HasEscaping reports whether a closure-typed Instantiator dependency
// carries the @escaping attribute. Nothing in this module calls it;
// Initializer.Matches tolerates that asymmetry through WithoutEscaping.
func HasEscaping(t TypeDescription) bool { return hasAttribute(t, "escaping") }

// WithoutEscaping strips an @escaping attribute for comparison purposes.
func WithoutEscaping(t TypeDescription) TypeDescription { return stripAttribute(t, "escaping") }

// CanonicalKey returns a string safe to use as a map key for "same type"
// comparisons that don't need the full Equal semantics (e.g. building the
// fulfilled-type registry index), derived from AsSource. Composition's
// AsSource already sorts members, so the key is stable regardless of
// declaration order.
func CanonicalKey(t TypeDescription) string {
	if t == nil {
		return ""
	}
	if isVoid(t) {
		return "Void"
	}
	return t.AsSource()
}
