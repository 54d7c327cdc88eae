package emitter

import (
	"fmt"
	"strings"

	"safedi/scope"
	"safedi/types"
)

// RenderDOT exports graph as a Graphviz DOT document: one cluster of
// edges per root, separated by a blank line, with Instantiated edges
// drawn plainly and Aliased edges labeled to show the rename.
func RenderDOT(graph *scope.Graph) string {
	var b strings.Builder
	b.WriteString("graph SafeDI {\n")
	b.WriteString("    ranksep=2\n")

	if len(graph.Roots) == 0 {
		b.WriteString("}\n")
		return b.String()
	}

	visited := map[string]bool{}
	for i, root := range graph.Roots {
		if i > 0 {
			b.WriteString("\n")
		}
		writeDotScope(&b, root, visited)
	}
	b.WriteString("}\n")
	return b.String()
}

func writeDotScope(b *strings.Builder, s *scope.Scope, visited map[string]bool) {
	if s == nil {
		return
	}
	key := types.CanonicalKey(s.Instantiable.ConcreteType)
	if visited[key] {
		return
	}
	visited[key] = true

	from := s.Instantiable.ConcreteType.AsSource()
	for _, p := range s.Properties {
		switch src := p.Dependency.Source.(type) {
		case types.Instantiated:
			if p.Child != nil {
				fmt.Fprintf(b, "    %q -- %q\n", from, p.Child.Instantiable.ConcreteType.AsSource())
			}
		case types.Aliased:
			fmt.Fprintf(b, "    %q -- %q [label=%q]\n", from, src.FulfillingProperty.Type.AsSource(),
				fmt.Sprintf("alias: %s <- %s: %s", p.Property.Type.AsSource(), src.FulfillingProperty.Label, src.FulfillingProperty.Type.AsSource()))
		}
	}
	for _, p := range s.Properties {
		writeDotScope(b, p.Child, visited)
	}
}
