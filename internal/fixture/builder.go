// Package fixture builds types.Instantiable values from plain Go structs
// tagged with `safedi:"..."`, so examples and tests can describe a
// provider as a struct literal instead of hand-assembling
// types.Dependency slices. It reads struct-tag metadata the way a config
// loader reads `validate:"..."` tags, narrowed to only the five
// dependency kinds the analyzer itself understands, and is never
// consulted by the analyzer — only by the fixtures that feed it.
package fixture

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"safedi/types"
)

const tagKey = "safedi"

// Build reflects over v, a pointer to a struct, and returns the
// types.Instantiable it describes. Each field with a `safedi:"..."` tag
// becomes one Dependency; a field tagged `safedi:"root"` instead marks
// the whole Instantiable as a root and contributes no dependency.
//
// Tag grammar (comma-separated after the kind):
//
//	`safedi:"instantiated"`
//	`safedi:"instantiated,erasedToExistential"`
//	`safedi:"received"`
//	`safedi:"received,onlyIfAvailable"`
//	`safedi:"forwarded"`
//	`safedi:"aliased,from=otherFieldName"` — value is renamed/retyped from
//	                                         the sibling field named otherFieldName
//	`safedi:"root"`
func Build(v interface{}) (types.Instantiable, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return types.Instantiable{}, fmt.Errorf("fixture: Build requires a pointer to a struct, got %T", v)
	}
	rt := rv.Elem().Type()

	inst := types.Instantiable{
		ConcreteType:    types.Simple{Name: rt.Name()},
		DeclarationKind: types.DeclarationStruct,
	}

	fieldType := map[string]types.TypeDescription{}
	for i := 0; i < rt.NumField(); i++ {
		fieldType[rt.Field(i).Name] = fieldTypeDescription(rt.Field(i))
	}

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag, ok := field.Tag.Lookup(tagKey)
		if !ok {
			continue
		}
		parts := strings.Split(tag, ",")
		kind := strings.TrimSpace(parts[0])
		options := parts[1:]

		if kind == "root" {
			inst.IsRoot = true
			continue
		}

		label := lowerFirst(field.Name)
		propType := fieldType[field.Name]
		dep := types.Dependency{Property: types.Property{Label: label, Type: propType}}

		switch kind {
		case "instantiated":
			dep.Source = types.Instantiated{ErasedToExistential: hasFlag(options, "erasedToExistential")}
		case "received":
			dep.Source = types.Received{OnlyIfAvailable: hasFlag(options, "onlyIfAvailable")}
		case "forwarded":
			dep.Source = types.Forwarded{}
		case "aliased":
			from, ok := optionValue(options, "from")
			if !ok {
				return types.Instantiable{}, fmt.Errorf("fixture: field %s aliased tag missing from=<field>", field.Name)
			}
			fromType, ok := fieldType[from]
			if !ok {
				return types.Instantiable{}, fmt.Errorf("fixture: field %s aliased from unknown field %q", field.Name, from)
			}
			dep.Source = types.Aliased{
				FulfillingProperty:  types.Property{Label: lowerFirst(from), Type: fromType},
				ErasedToExistential: hasFlag(options, "erasedToExistential"),
				OnlyIfAvailable:     hasFlag(options, "onlyIfAvailable"),
			}
		default:
			return types.Instantiable{}, fmt.Errorf("fixture: field %s has unknown safedi tag kind %q", field.Name, kind)
		}

		inst.Dependencies = append(inst.Dependencies, dep)
	}

	return inst, nil
}

func fieldTypeDescription(f reflect.StructField) types.TypeDescription {
	t := f.Type
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return types.Simple{Name: name}
}

func hasFlag(options []string, name string) bool {
	for _, o := range options {
		if strings.TrimSpace(o) == name {
			return true
		}
	}
	return false
}

func optionValue(options []string, key string) (string, bool) {
	prefix := key + "="
	for _, o := range options {
		o = strings.TrimSpace(o)
		if strings.HasPrefix(o, prefix) {
			return strings.TrimPrefix(o, prefix), true
		}
	}
	return "", false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
