package pipeline

import (
	"context"

	"go.uber.org/fx"

	"safedi/diagnostic"
	"safedi/emitter"
	"safedi/internal/config"
	"safedi/internal/eventbus"
	"safedi/internal/obslog"
	"safedi/registry"
	"safedi/scope"
	"safedi/types"
	"safedi/validator"
)

// Result is everything one pipeline run produces: the validated scope
// graph, the aggregated module summary (for --module-info-output), and
// the rendered output files keyed by filename.
type Result struct {
	Graph  *scope.Graph
	Merged types.ModuleSummary
	Files  map[string]string
}

// App is the CLI driver's entry point: it wires the pipeline's own
// collaborators (loader, interceptor, lifecycle, event bus) as an fx.App
// and runs the four analysis stages from an fx.Lifecycle OnStart hook,
// the same way an Fx-based application wires providers and runs
// module/controller setup around Start/Stop. The analyzer stages
// themselves (registry/scope/validator/emitter) stay synchronous and
// reflection-free; only the driver's own wiring goes through fx.
type App struct {
	fx     *fx.App
	result *Result
	holder *errHolder
}

// errHolder lets the fx.Lifecycle hook below write back the pipeline's
// run error so Run can retrieve it after Start returns, since an fx.Hook
// can't hand a value directly to the code that constructed the App.
type errHolder struct{ err error }

// NewApp constructs an App configured to run opts once Run is called.
func NewApp(opts config.Options, logOut *obslog.Logger) *App {
	result := &Result{}
	holder := &errHolder{}

	bus := eventbus.NewBus()
	lifecycle := NewLifecycle()
	loader := NewModuleLoader()
	ic := NewInterceptor(bus, logOut)

	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(opts),
		fx.Provide(
			func() *eventbus.Bus { return bus },
			func() *Lifecycle { return lifecycle },
			func() *ModuleLoader { return loader },
			func() *Interceptor { return ic },
		),
		fx.Invoke(func(lc fx.Lifecycle, opts config.Options, loader *ModuleLoader, ic *Interceptor, lifecycle *Lifecycle, bus *eventbus.Bus) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					holder.err = run(ctx, opts, loader, ic, lifecycle, result)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					bus.Shutdown()
					return nil
				},
			})
		}),
	)

	return &App{fx: fxApp, result: result, holder: holder}
}

// Run starts the fx.App (which synchronously executes the pipeline from
// its OnStart hook), then stops it — the same timeout-bounded
// start/stop lifecycle any fx-based application uses.
func (a *App) Run() (*Result, error) {
	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := a.fx.Start(startCtx); err != nil {
		return nil, err
	}

	stopCtx, cancel2 := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel2()
	stopErr := a.fx.Stop(stopCtx)

	if a.holder.err != nil {
		return a.result, a.holder.err
	}
	return a.result, stopErr
}

// run executes the loading, registry, scope, validation, and emission
// stages in order, short-circuiting on the first fatal diagnostic.Bundle
// or I/O error.
func run(ctx context.Context, opts config.Options, loader *ModuleLoader, ic *Interceptor, lc *Lifecycle, result *Result) error {
	lc.Enter(StateLoading)

	var summaries []types.ModuleSummary
	if err := ic.Run(ctx, "module.load", nil, func() error {
		var loadErr error
		summaries, loadErr = loader.Load(opts.SourcesFilePath, opts.Include, opts.IncludeFilePath)
		return loadErr
	}); err != nil {
		return err
	}
	result.Merged = Merge(summaries)

	var reg *registry.Registry
	var buildDiags []diagnostic.Diagnostic
	if err := ic.Run(ctx, "registry.build", func() int { return len(buildDiags) }, func() error {
		reg, buildDiags = registry.Build(summaries)
		return nil
	}); err != nil {
		return err
	}
	if bundle := diagnostic.NewBundle(buildDiags); bundle != nil {
		return bundle
	}

	lc.Enter(StateValidating)

	var graph *scope.Graph
	if err := ic.Run(ctx, "scope.build", nil, func() error {
		graph = scope.Build(reg)
		return nil
	}); err != nil {
		return err
	}

	var bundle *diagnostic.Bundle
	if err := ic.Run(ctx, "validator.validate", func() int { return bundle.Len() }, func() error {
		bundle = validator.Validate(graph)
		return nil
	}); err != nil {
		return err
	}
	if bundle != nil {
		return bundle
	}

	lc.Enter(StateEmitting)
	result.Graph = graph

	if err := ic.Run(ctx, "emitter.render", nil, func() error {
		imports, err := additionalImports(opts)
		if err != nil {
			return err
		}
		allImports := append(append([]types.ImportStatement(nil), result.Merged.Imports...), imports...)

		e := emitter.New(allImports)
		exporters := emitter.NewExporterRegistry()
		files, exportErr := exporters.RunAll(e, graph)
		if exportErr != nil {
			return exportErr
		}
		if opts.DotFileOutput == "" {
			delete(files, "safedi-graph.dot")
		}
		result.Files = files
		return nil
	}); err != nil {
		return err
	}

	lc.Enter(StateDone)
	return nil
}
