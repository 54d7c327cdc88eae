package types

import (
	"encoding/json"
	"fmt"
)

// DependencySource classifies how a Dependency's value comes to exist:
// built locally (Instantiated), supplied by an ancestor (Received), passed
// in by the caller of a builder (Forwarded), or taken from another named
// property further up the chain under a new name/type (Aliased).
type DependencySource interface {
	dependencySourceTag() string
}

// Instantiated means the enclosing provider constructs this dependency
// itself, either directly or (if its type is an Instantiator/
// ErasedInstantiator) lazily.
type Instantiated struct {
	// FulfilledByType overrides the property's declared type when the
	// concrete type actually constructed differs from it (e.g. the
	// property is declared as a protocol but a concrete conformer is
	// instantiated). Nil means the declared type is also the fulfilled
	// type.
	FulfilledByType TypeDescription `json:"fulfilledByType,omitempty"`
	// ErasedToExistential marks that a concrete value must be boxed into
	// an existential (`any P`) at the point of construction.
	ErasedToExistential bool `json:"erasedToExistential,omitempty"`
}

func (Instantiated) dependencySourceTag() string { return "instantiated" }

// Received means the value must be supplied by an ancestor provider.
type Received struct {
	// OnlyIfAvailable permits the property to be absent from the
	// receivable set without error (it is simply not injected / stays
	// nil), rather than failing validation.
	OnlyIfAvailable bool `json:"onlyIfAvailable,omitempty"`
}

func (Received) dependencySourceTag() string { return "received" }

// Forwarded means the value is supplied at construction time by the
// caller of a builder (an Instantiator/ErasedInstantiator invocation).
type Forwarded struct{}

func (Forwarded) dependencySourceTag() string { return "forwarded" }

// Aliased means the dependency is a renamed/retyped reception: its value
// is taken from another named property further up the chain.
type Aliased struct {
	FulfillingProperty Property `json:"fulfillingProperty"`
	ErasedToExistential bool    `json:"erasedToExistential,omitempty"`
	OnlyIfAvailable     bool    `json:"onlyIfAvailable,omitempty"`
}

func (Aliased) dependencySourceTag() string { return "aliased" }

// Dependency is one field on a provider whose value is injected, together
// with the means by which it comes to exist.
type Dependency struct {
	Property Property         `json:"property"`
	Source   DependencySource `json:"source"`
}

// InstantiatedType resolves to the concrete type a dependency is actually
// fulfilled as: Instantiated.FulfilledByType when set, the aliased
// property's type when the source is Aliased, or the declared property
// type otherwise.
func (d Dependency) InstantiatedType() TypeDescription {
	switch src := d.Source.(type) {
	case Instantiated:
		if src.FulfilledByType != nil {
			return src.FulfilledByType
		}
	case Aliased:
		return src.FulfillingProperty.Type
	}
	return d.Property.Type
}

// IsInstantiated reports whether the dependency is built by the enclosing
// provider (directly, not through an alias).
func (d Dependency) IsInstantiated() bool {
	_, ok := d.Source.(Instantiated)
	return ok
}

// IsReceived reports whether the dependency must come from an ancestor.
func (d Dependency) IsReceived() bool {
	_, ok := d.Source.(Received)
	return ok
}

// IsForwarded reports whether the dependency is supplied by a builder's
// caller.
func (d Dependency) IsForwarded() bool {
	_, ok := d.Source.(Forwarded)
	return ok
}

// IsAliased reports whether the dependency is a renamed/retyped
// reception.
func (d Dependency) IsAliased() bool {
	_, ok := d.Source.(Aliased)
	return ok
}

// IsLazy reports whether this Instantiated dependency's declared type is
// an Instantiator/ErasedInstantiator — i.e. it introduces a lazy edge
// rather than an eager one.
func (d Dependency) IsLazy() bool {
	return d.IsInstantiated() && IsInstantiatorType(d.Property.Type)
}

// --- JSON ---

type dependencyEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalDependencySource produces the envelope used in the JSON module
// summary format.
func MarshalDependencySource(s DependencySource) ([]byte, error) {
	data, err := json.Marshal(s)
	switch src := s.(type) {
	case Instantiated:
		var fulfilled json.RawMessage
		if fulfilled, err = MarshalTypeDescription(src.FulfilledByType); err == nil {
			data, err = json.Marshal(map[string]interface{}{"fulfilledByType": fulfilled, "erasedToExistential": src.ErasedToExistential})
		}
	case Aliased:
		var propType json.RawMessage
		if propType, err = MarshalTypeDescription(src.FulfillingProperty.Type); err == nil {
			data, err = json.Marshal(map[string]interface{}{"fulfillingProperty": map[string]interface{}{"label": src.FulfillingProperty.Label, "type": propType}, "erasedToExistential": src.ErasedToExistential, "onlyIfAvailable": src.OnlyIfAvailable})
		}
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(dependencyEnvelope{Kind: s.dependencySourceTag(), Data: data})
}

// UnmarshalDependencySource is the inverse of MarshalDependencySource.
func UnmarshalDependencySource(raw []byte) (DependencySource, error) {
	var env dependencyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("dependency source envelope: %w", err)
	}
	switch env.Kind {
	case "instantiated":
		var wire struct {
			FulfilledByType     json.RawMessage `json:"fulfilledByType"`
			ErasedToExistential bool            `json:"erasedToExistential"`
		}
		if err := json.Unmarshal(env.Data, &wire); err != nil {
			return nil, err
		}
		var fulfilled TypeDescription
		if len(wire.FulfilledByType) > 0 {
			var err error
			fulfilled, err = UnmarshalTypeDescription(wire.FulfilledByType)
			if err != nil {
				return nil, err
			}
		}
		return Instantiated{FulfilledByType: fulfilled, ErasedToExistential: wire.ErasedToExistential}, nil
	case "received":
		var v Received
		return v, json.Unmarshal(env.Data, &v)
	case "forwarded":
		return Forwarded{}, nil
	case "aliased":
		var wire struct {
			FulfillingProperty struct {
				Label string          `json:"label"`
				Type  json.RawMessage `json:"type"`
			} `json:"fulfillingProperty"`
			ErasedToExistential bool `json:"erasedToExistential"`
			OnlyIfAvailable     bool `json:"onlyIfAvailable"`
		}
		if err := json.Unmarshal(env.Data, &wire); err != nil {
			return nil, err
		}
		td, err := UnmarshalTypeDescription(wire.FulfillingProperty.Type)
		if err != nil {
			return nil, err
		}
		return Aliased{
			FulfillingProperty:  Property{Label: wire.FulfillingProperty.Label, Type: td},
			ErasedToExistential: wire.ErasedToExistential,
			OnlyIfAvailable:     wire.OnlyIfAvailable,
		}, nil
	default:
		return nil, fmt.Errorf("unknown dependency source kind %q", env.Kind)
	}
}

// MarshalJSON implements json.Marshaler for Dependency, routing the
// polymorphic Source field through the envelope helpers above.
func (d Dependency) MarshalJSON() ([]byte, error) {
	propType, err := MarshalTypeDescription(d.Property.Type)
	if err != nil {
		return nil, err
	}
	src, err := MarshalDependencySource(d.Source)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Property struct {
			Label string          `json:"label"`
			Type  json.RawMessage `json:"type"`
		} `json:"property"`
		Source json.RawMessage `json:"source"`
	}{
		Property: struct {
			Label string          `json:"label"`
			Type  json.RawMessage `json:"type"`
		}{Label: d.Property.Label, Type: propType},
		Source: src,
	})
}

// UnmarshalJSON implements json.Unmarshaler for Dependency.
func (d *Dependency) UnmarshalJSON(raw []byte) error {
	var wire struct {
		Property struct {
			Label string          `json:"label"`
			Type  json.RawMessage `json:"type"`
		} `json:"property"`
		Source json.RawMessage `json:"source"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	td, err := UnmarshalTypeDescription(wire.Property.Type)
	if err != nil {
		return err
	}
	src, err := UnmarshalDependencySource(wire.Source)
	if err != nil {
		return err
	}
	d.Property = Property{Label: wire.Property.Label, Type: td}
	d.Source = src
	return nil
}
