package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoidCanonicalization(t *testing.T) {
	cases := []TypeDescription{
		Void{},
		Simple{Name: "Void"},
		Tuple{},
	}
	for i := range cases {
		for j := range cases {
			assert.True(t, Equal(cases[i], cases[j]), "case %d vs %d should be void-equal", i, j)
		}
	}
	assert.Equal(t, "Void", Void{}.AsSource())
	assert.Equal(t, "Void", Tuple{}.AsSource())
}

func TestCompositionSetEquality(t *testing.T) {
	a := Composition{Members: []TypeDescription{Simple{Name: "A"}, Simple{Name: "B"}}}
	b := Composition{Members: []TypeDescription{Simple{Name: "B"}, Simple{Name: "A"}}}
	assert.True(t, Equal(a, b))
	assert.Equal(t, a.AsSource(), b.AsSource())

	c := Composition{Members: []TypeDescription{Simple{Name: "A"}, Simple{Name: "C"}}}
	assert.False(t, Equal(a, c))
}

func TestAsSourceRendersCanonicalForm(t *testing.T) {
	opt := Optional{Inner: Simple{Name: "NetworkService"}}
	assert.Equal(t, "NetworkService?", opt.AsSource())

	arr := Array{Element: Simple{Name: "Logger"}}
	assert.Equal(t, "[Logger]", arr.AsSource())

	dict := Dictionary{Key: Simple{Name: "String"}, Value: Simple{Name: "Int"}}
	assert.Equal(t, "[String: Int]", dict.AsSource())

	tuple := Tuple{Elements: []TupleElement{
		{Label: "label", Type: Simple{Name: "String"}},
		{Type: Simple{Name: "Int"}},
	}}
	assert.Equal(t, "(label: String, Int)", tuple.AsSource())

	nested := Nested{Name: "ForwardedProperties", Parent: Simple{Name: "LoggedInViewController"}}
	assert.Equal(t, "LoggedInViewController.ForwardedProperties", nested.AsSource())
}

func TestEscapingAsymmetryTolerated(t *testing.T) {
	plain := Closure{Params: []TypeDescription{Simple{Name: "Int"}}, Result: Void{}}
	escaping := Attributed{Inner: plain, Attributes: []string{"escaping"}}
	assert.False(t, Equal(plain, escaping))
	assert.True(t, Equal(WithoutEscaping(escaping), plain))
}

func TestTypeDescriptionJSONRoundTrip(t *testing.T) {
	original := Dictionary{
		Key: Simple{Name: "String"},
		Value: Optional{Inner: Composition{Members: []TypeDescription{
			Simple{Name: "A"},
			Attributed{Inner: Simple{Name: "B"}, Attributes: []string{"escaping"}},
		}}},
	}
	raw, err := MarshalTypeDescription(original)
	assert.NoError(t, err)

	roundTripped, err := UnmarshalTypeDescription(raw)
	assert.NoError(t, err)
	assert.True(t, Equal(original, roundTripped))
}

func TestInstantiatorGenericParsing(t *testing.T) {
	inst := Simple{Name: "Instantiator<NetworkService>"}
	assert.True(t, IsInstantiatorType(inst))
	target, ok := InstantiatorBuiltType(inst)
	assert.True(t, ok)
	assert.Equal(t, "NetworkService", target.AsSource())

	erased := Simple{Name: "ErasedInstantiator<LoggedInViewController.ForwardedProperties, UIViewController>"}
	assert.True(t, IsErasedInstantiatorType(erased))
	forwarded, ok := ErasedInstantiatorForwardedType(erased)
	assert.True(t, ok)
	assert.Equal(t, "LoggedInViewController.ForwardedProperties", forwarded.AsSource())
	built, ok := InstantiatorBuiltType(erased)
	assert.True(t, ok)
	assert.Equal(t, "UIViewController", built.AsSource())
}
