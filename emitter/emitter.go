// Package emitter renders a validated scope graph into generated source:
// one static builder per root, topologically ordered so each
// let-binding only ever references names already declared above it,
// plus a DOT export of the same graph for visualization.
package emitter

import (
	"fmt"
	"sort"
	"strings"

	"safedi/scope"
	"safedi/types"
)

// Header is the two-line comment opening the generated source file,
// marking it as generated.
const Header = "// Code generated by safedi. DO NOT EDIT.\n" +
	"// This file is generated; changes will be overwritten by the next run.\n"

// NoRootsMarker replaces the root extensions when a module set has no
// discovered roots.
const NoRootsMarker = "// No root @Instantiable-decorated types found.\n"

// GeneratedFileName is the single combined source file one invocation's
// worth of root extensions is written to.
const GeneratedFileName = "safedi-generated.swift"

// Emitter renders scope.Scope trees into Swift source text.
type Emitter struct {
	// Imports, deduplicated and sorted, to print above the generated
	// extension — the caller (pipeline) collects these from every
	// module summary's import list before calling RenderAll or RenderRoot.
	Imports []types.ImportStatement
}

// New constructs an Emitter configured with the deduplicated import list
// a pipeline run discovered.
func New(imports []types.ImportStatement) *Emitter {
	return &Emitter{Imports: DeduplicateImports(imports)}
}

// RenderRoot generates the builder extension body for a single root (no
// header or imports of its own — RenderAll combines those, once, across
// every root in the invocation's single generated file).
func (e *Emitter) RenderRoot(root *scope.Scope) string {
	var b strings.Builder
	typeName := root.Instantiable.ConcreteType.AsSource()
	fmt.Fprintf(&b, "extension %s {\n", typeName)
	fmt.Fprintf(&b, "    static func makeSafeDI() -> %s {\n", typeName)

	order := topoOrder(root)
	for _, s := range order {
		if s == root {
			continue
		}
		b.WriteString(renderDeclaration(s))
	}
	b.WriteString(renderDeclaration(root))
	fmt.Fprintf(&b, "        return %s\n", varName(root.Instantiable.ConcreteType))
	b.WriteString("    }\n}\n")
	return b.String()
}

// RenderAll combines every root's builder extension into the one
// generated source file an invocation produces: the header, the
// deduplicated imports once, then each root extension separated by a
// blank line. A roots-less graph gets NoRootsMarker in place of any
// extension.
func (e *Emitter) RenderAll(graph *scope.Graph) map[string]string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	for _, imp := range e.Imports {
		b.WriteString(renderImport(imp))
	}
	if len(e.Imports) > 0 {
		b.WriteString("\n")
	}

	if len(graph.Roots) == 0 {
		b.WriteString(NoRootsMarker)
	} else {
		for i, root := range graph.Roots {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(e.RenderRoot(root))
		}
	}

	return map[string]string{GeneratedFileName: b.String()}
}

func renderDeclaration(s *scope.Scope) string {
	name := varName(s.Instantiable.ConcreteType)
	return fmt.Sprintf("        let %s = %s\n", name, constructorCall(s))
}

func constructorCall(s *scope.Scope) string {
	typeName := s.Instantiable.ConcreteType.AsSource()
	args := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		args = append(args, renderArgument(p))
	}
	return fmt.Sprintf("%s(%s)", typeName, strings.Join(args, ", "))
}

func renderArgument(p scope.PropertyToInstantiate) string {
	label := p.Property.Label
	switch {
	case p.Dependency.IsLazy() && p.Child != nil:
		return fmt.Sprintf("%s: %s", label, renderLazyArgument(p))
	case p.Dependency.IsInstantiated() && p.Child != nil:
		return fmt.Sprintf("%s: %s", label, varName(p.Child.Instantiable.ConcreteType))
	default:
		// Received, Forwarded, and Aliased dependencies are already
		// in scope as parameters/captures named after the property.
		return fmt.Sprintf("%s: %s", label, label)
	}
}

// renderLazyArgument builds the closure literal satisfying an
// Instantiator<T>/ErasedInstantiator<F,R>-typed property: the closure
// captures whatever the built scope still needs from the surrounding
// scope and constructs T (or invokes the forwarded builder) on demand.
//
// T's own eager (non-lazy, non-forwarded, non-received) dependencies are
// never part of topoOrder for the enclosing root — that order only
// collects what's reachable by an eager edge from the root, and the edge
// into this lazy subtree is exactly the one kind it excludes. So any such
// dependency has no outer let-binding to reference; it must be declared
// inside the closure body instead, in its own dependency order, exactly
// the way topoOrder would hoist it for a root.
func renderLazyArgument(p scope.PropertyToInstantiate) string {
	var forwardedParams []string
	for _, child := range p.Child.Properties {
		if child.Dependency.IsForwarded() {
			forwardedParams = append(forwardedParams, child.Property.Label)
		}
	}
	params := strings.Join(forwardedParams, ", ")

	order := topoOrder(p.Child)
	if len(order) == 1 {
		return fmt.Sprintf("{ %s in %s }", params, constructorCall(p.Child))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "{ %s in\n", params)
	for _, s := range order {
		if s == p.Child {
			continue
		}
		b.WriteString(renderDeclaration(s))
	}
	b.WriteString(renderDeclaration(p.Child))
	fmt.Fprintf(&b, "            return %s\n", varName(p.Child.Instantiable.ConcreteType))
	b.WriteString("        }")
	return b.String()
}

func renderImport(imp types.ImportStatement) string {
	line := "import " + imp.ModuleName
	if imp.Kind != "" && imp.Symbol != "" {
		line = fmt.Sprintf("import %s %s", imp.Kind, imp.Symbol)
	}
	if imp.RequiresConditionalAvailability {
		return fmt.Sprintf("#if canImport(%s)\n%s\n#endif\n", imp.ModuleName, line)
	}
	return line + "\n"
}

func varName(t types.TypeDescription) string {
	name := t.AsSource()
	if name == "" {
		return "value"
	}
	r := []rune(name)
	r[0] = toLowerRune(r[0])
	out := make([]rune, 0, len(r))
	for _, c := range r {
		if c == '.' || c == '<' || c == '>' || c == ' ' || c == ',' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func toLowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// DeduplicateImports collapses equivalent imports, preferring a
// wholesale import over any partial import of the same module — a
// partial `import class Foo.Bar` is redundant once `import Foo` is
// already present — and sorts the result for reproducible output.
func DeduplicateImports(imports []types.ImportStatement) []types.ImportStatement {
	wholesale := map[string]types.ImportStatement{}
	partial := map[string]types.ImportStatement{}
	for _, imp := range imports {
		if imp.IsWholesale() {
			wholesale[imp.ModuleName] = imp
		} else {
			key := imp.ModuleName + "|" + imp.Kind + "|" + imp.Symbol
			partial[key] = imp
		}
	}
	out := make([]types.ImportStatement, 0, len(wholesale)+len(partial))
	for _, imp := range wholesale {
		out = append(out, imp)
	}
	for _, imp := range partial {
		if _, covered := wholesale[imp.ModuleName]; covered {
			continue
		}
		out = append(out, imp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModuleName != out[j].ModuleName {
			return out[i].ModuleName < out[j].ModuleName
		}
		if out[i].IsWholesale() != out[j].IsWholesale() {
			return out[i].IsWholesale()
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
