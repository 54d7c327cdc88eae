package types

import "encoding/json"

type instantiableWire struct {
	ConcreteType             json.RawMessage   `json:"concreteType"`
	IsRoot                   bool              `json:"isRoot,omitempty"`
	Initializer              *Initializer      `json:"initializer,omitempty"`
	AdditionalFulfilledTypes []json.RawMessage `json:"additionalFulfilledTypes,omitempty"`
	Dependencies             []Dependency      `json:"dependencies,omitempty"`
	DeclarationKind          DeclarationKind   `json:"declarationKind"`
}

// MarshalJSON implements json.Marshaler, routing TypeDescription fields
// through the envelope helpers in type_description.go.
func (i Instantiable) MarshalJSON() ([]byte, error) {
	concrete, err := MarshalTypeDescription(i.ConcreteType)
	if err != nil {
		return nil, err
	}
	additional := make([]json.RawMessage, len(i.AdditionalFulfilledTypes))
	for idx, t := range i.AdditionalFulfilledTypes {
		raw, err := MarshalTypeDescription(t)
		if err != nil {
			return nil, err
		}
		additional[idx] = raw
	}
	return json.Marshal(instantiableWire{
		ConcreteType:             concrete,
		IsRoot:                   i.IsRoot,
		Initializer:              i.Initializer,
		AdditionalFulfilledTypes: additional,
		Dependencies:             i.Dependencies,
		DeclarationKind:          i.DeclarationKind,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Instantiable) UnmarshalJSON(raw []byte) error {
	var wire instantiableWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	concrete, err := UnmarshalTypeDescription(wire.ConcreteType)
	if err != nil {
		return err
	}
	var additional []TypeDescription
	if len(wire.AdditionalFulfilledTypes) > 0 {
		additional = make([]TypeDescription, len(wire.AdditionalFulfilledTypes))
	}
	for idx, raw := range wire.AdditionalFulfilledTypes {
		td, err := UnmarshalTypeDescription(raw)
		if err != nil {
			return err
		}
		additional[idx] = td
	}
	i.ConcreteType = concrete
	i.IsRoot = wire.IsRoot
	i.Initializer = wire.Initializer
	i.AdditionalFulfilledTypes = additional
	i.Dependencies = wire.Dependencies
	i.DeclarationKind = wire.DeclarationKind
	return nil
}
