package pipeline

import "sync"

// State is one stage of a single generator run. Unlike a long-lived
// application's lifecycle state, which cycles through
// init/bootstrap/shutdown repeatedly, a pipeline run walks this sequence
// exactly once, linearly, start to finish.
type State int

const (
	StateNotStarted State = iota
	StateLoading
	StateValidating
	StateEmitting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateValidating:
		return "validating"
	case StateEmitting:
		return "emitting"
	case StateDone:
		return "done"
	default:
		return "not-started"
	}
}

// StageHook is called when the Lifecycle enters or exits a State.
type StageHook func(s State)

// Lifecycle tracks which stage of the pipeline a run is in and notifies
// registered hooks on every transition — the same
// OnModuleInit/OnApplicationBootstrap/OnApplicationShutdown notification
// shape a module-manager lifecycle drives, collapsed from per-module
// hook interfaces (nothing here has multiple independent "modules" to
// notify) to a single ordered hook list per transition.
type Lifecycle struct {
	mu       sync.Mutex
	state    State
	onEnter  []StageHook
	onExit   []StageHook
}

// NewLifecycle returns a Lifecycle in StateNotStarted.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateNotStarted}
}

// OnEnter registers a hook called every time the Lifecycle enters a new
// state, immediately after the transition.
func (l *Lifecycle) OnEnter(hook StageHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onEnter = append(l.onEnter, hook)
}

// OnExit registers a hook called with the state being left every time the
// Lifecycle leaves a state; it runs once the new state is already set,
// before the OnEnter hooks.
func (l *Lifecycle) OnExit(hook StageHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onExit = append(l.onExit, hook)
}

// Enter transitions the Lifecycle to s, firing onExit hooks for the
// current state and onEnter hooks for s.
func (l *Lifecycle) Enter(s State) {
	l.mu.Lock()
	prev := l.state
	exitHooks := append([]StageHook(nil), l.onExit...)
	enterHooks := append([]StageHook(nil), l.onEnter...)
	l.state = s
	l.mu.Unlock()

	for _, h := range exitHooks {
		h(prev)
	}
	for _, h := range enterHooks {
		h(s)
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
