package emitter

import (
	"fmt"
	"sort"

	"safedi/scope"
)

// Exporter produces one named output format from a validated scope
// graph — the generated Swift source, the DOT visualization, or a
// future format a caller registers without this package needing to know
// about it up front.
type Exporter interface {
	Name() string
	RunsAfter() []string
	Export(*Emitter, *scope.Graph) (map[string]string, error)
}

// ExporterRegistry holds every registered Exporter and runs them in an
// order that respects each one's declared RunsAfter dependencies —
// adapted from the same named-plugin-plus-dependency-ordering shape the
// driver's own collaborator registry uses, generalized from wiring HTTP
// middleware to wiring output formats.
type ExporterRegistry struct {
	exporters map[string]Exporter
}

// NewExporterRegistry returns a registry seeded with the built-in
// SourceExporter and DOTExporter.
func NewExporterRegistry() *ExporterRegistry {
	r := &ExporterRegistry{exporters: map[string]Exporter{}}
	r.Register(SourceExporter{})
	r.Register(DOTExporter{})
	return r
}

// Register adds an Exporter, replacing any previously registered
// Exporter with the same Name.
func (r *ExporterRegistry) Register(e Exporter) {
	r.exporters[e.Name()] = e
}

// RunAll executes every registered Exporter in dependency order and
// merges their outputs. A later exporter's output for a given filename
// overwrites an earlier one's.
func (r *ExporterRegistry) RunAll(emitter *Emitter, graph *scope.Graph) (map[string]string, error) {
	ordered, err := r.order()
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, e := range ordered {
		files, err := e.Export(emitter, graph)
		if err != nil {
			return nil, fmt.Errorf("exporter %q: %w", e.Name(), err)
		}
		for name, content := range files {
			out[name] = content
		}
	}
	return out, nil
}

// order performs a dependency-respecting topological sort over the
// registered exporters' RunsAfter declarations, breaking ties by name
// for a reproducible run order.
func (r *ExporterRegistry) order() ([]Exporter, error) {
	names := make([]string, 0, len(r.exporters))
	for name := range r.exporters {
		names = append(names, name)
	}
	sort.Strings(names)

	var ordered []Exporter
	placed := map[string]bool{}
	visiting := map[string]bool{}

	var visit func(name string) error
	visit = func(name string) error {
		if placed[name] {
			return nil
		}
		if visiting[name] {
			return fmt.Errorf("exporter dependency cycle at %q", name)
		}
		e, ok := r.exporters[name]
		if !ok {
			return nil
		}
		visiting[name] = true
		deps := append([]string{}, e.RunsAfter()...)
		sort.Strings(deps)
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		visiting[name] = false
		placed[name] = true
		ordered = append(ordered, e)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// SourceExporter renders the generated builder extensions.
type SourceExporter struct{}

func (SourceExporter) Name() string        { return "source" }
func (SourceExporter) RunsAfter() []string { return nil }
func (SourceExporter) Export(e *Emitter, graph *scope.Graph) (map[string]string, error) {
	return e.RenderAll(graph), nil
}

// DOTExporter renders the graph visualization, after the source
// exporter so a partial failure there still surfaces before the DOT
// output is computed.
type DOTExporter struct{}

func (DOTExporter) Name() string        { return "dot" }
func (DOTExporter) RunsAfter() []string { return []string{"source"} }
func (DOTExporter) Export(_ *Emitter, graph *scope.Graph) (map[string]string, error) {
	return map[string]string{"safedi-graph.dot": RenderDOT(graph)}, nil
}
