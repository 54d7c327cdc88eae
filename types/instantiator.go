package types

import "strings"

// Lazy builder type names recognized by the analyzer. The data model has
// no dedicated "generic application" variant, so a generic instantiation
// is carried the same way any other named type is: as a Simple whose
// Name is the full source text, e.g. "Instantiator<NetworkService>".
const (
	instantiatorName          = "Instantiator"
	sendableInstantiatorName  = "SendableInstantiator"
	erasedInstantiatorName    = "ErasedInstantiator"
)

// IsInstantiatorType reports whether t names one of the lazy-builder
// generic types: Instantiator<T>, SendableInstantiator<T>, or
// ErasedInstantiator<F, R>.
func IsInstantiatorType(t TypeDescription) bool {
	name, _, ok := genericNameAndArgs(t)
	if !ok {
		return false
	}
	switch name {
	case instantiatorName, sendableInstantiatorName, erasedInstantiatorName:
		return true
	default:
		return false
	}
}

// IsErasedInstantiatorType reports whether t is specifically
// ErasedInstantiator<F, R>.
func IsErasedInstantiatorType(t TypeDescription) bool {
	name, _, ok := genericNameAndArgs(t)
	return ok && name == erasedInstantiatorName
}

// InstantiatorBuiltType returns the target type T a lazy builder
// constructs: the sole argument for Instantiator<T>/SendableInstantiator<T>,
// or the second argument (R) for ErasedInstantiator<F, R>.
func InstantiatorBuiltType(t TypeDescription) (TypeDescription, bool) {
	name, args, ok := genericNameAndArgs(t)
	if !ok {
		return nil, false
	}
	switch name {
	case instantiatorName, sendableInstantiatorName:
		if len(args) == 1 {
			return args[0], true
		}
	case erasedInstantiatorName:
		if len(args) == 2 {
			return args[1], true
		}
	}
	return nil, false
}

// ErasedInstantiatorForwardedType returns the F argument of
// ErasedInstantiator<F, R>.
func ErasedInstantiatorForwardedType(t TypeDescription) (TypeDescription, bool) {
	name, args, ok := genericNameAndArgs(t)
	if !ok || name != erasedInstantiatorName || len(args) != 2 {
		return nil, false
	}
	return args[0], true
}

// genericNameAndArgs parses "Name<Arg1, Arg2>" out of a Simple type's raw
// source name, splitting top-level commas (respecting nested angle
// brackets). Non-Simple types, and Simple types without a generic
// argument list, report ok=false.
func genericNameAndArgs(t TypeDescription) (string, []TypeDescription, bool) {
	s, ok := t.(Simple)
	if !ok {
		return "", nil, false
	}
	open := strings.IndexByte(s.Name, '<')
	if open < 0 || !strings.HasSuffix(s.Name, ">") {
		return "", nil, false
	}
	name := s.Name[:open]
	inner := s.Name[open+1 : len(s.Name)-1]
	parts := splitTopLevel(inner)
	args := make([]TypeDescription, len(parts))
	for i, p := range parts {
		args[i] = Simple{Name: strings.TrimSpace(p)}
	}
	return name, args, true
}

// splitTopLevel splits s on commas that are not nested inside angle
// brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
