package types

// Argument is one parameter of an Initializer.
type Argument struct {
	OuterLabel string          `json:"outerLabel,omitempty"`
	InnerLabel string          `json:"innerLabel"`
	Type       TypeDescription `json:"type"`
	HasDefault bool            `json:"hasDefault,omitempty"`
}

// label returns the label a caller uses to pass this argument: the outer
// label if present, otherwise the inner label.
func (a Argument) label() string {
	if a.OuterLabel != "" {
		return a.OuterLabel
	}
	return a.InnerLabel
}

// Initializer is a constructor an Instantiable can be built with.
type Initializer struct {
	IsPublicOrOpen  bool       `json:"isPublicOrOpen,omitempty"`
	IsOptional      bool       `json:"isOptional,omitempty"`
	IsAsync         bool       `json:"isAsync,omitempty"`
	Throws          bool       `json:"throws,omitempty"`
	HasGenericParam bool       `json:"hasGenericParam,omitempty"`
	HasGenericWhere bool       `json:"hasGenericWhere,omitempty"`
	Arguments       []Argument `json:"arguments,omitempty"`
}

// Matches reports whether the initializer can be called with exactly the
// given dependency list: every dependency's (label, type) must be present
// among the non-defaulted arguments, and no non-defaulted argument may go
// unmatched.
func (init Initializer) Matches(deps []Dependency) bool {
	required := make([]Argument, 0, len(init.Arguments))
	for _, a := range init.Arguments {
		if !a.HasDefault {
			required = append(required, a)
		}
	}
	if len(required) != len(deps) {
		return false
	}
	used := make([]bool, len(required))
	for _, dep := range deps {
		matched := false
		for i, arg := range required {
			if used[i] {
				continue
			}
			if arg.label() == dep.Property.Label && typesMatchForArgument(arg.Type, dep.Property.Type) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, u := range used {
		if !u {
			return false
		}
	}
	return true
}

// typesMatchForArgument compares an initializer argument's type against a
// dependency's declared type, tolerating the @escaping attribute
// asymmetry that closures over a dependency commonly exhibit (a property
// may be declared without @escaping while the initializer parameter that
// stores it must say @escaping, or vice versa).
func typesMatchForArgument(argType, depType TypeDescription) bool {
	if Equal(argType, depType) {
		return true
	}
	_, argClosure := argType.(Closure)
	_, depClosure := depType.(Closure)
	argAttr, argIsAttr := argType.(Attributed)
	depAttr, depIsAttr := depType.(Attributed)
	if argIsAttr || depIsAttr || argClosure || depClosure {
		return Equal(WithoutEscaping(argType), WithoutEscaping(depType))
	}
	_ = argAttr
	_ = depAttr
	return false
}
