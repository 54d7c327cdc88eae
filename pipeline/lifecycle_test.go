package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleStartsNotStarted(t *testing.T) {
	lc := NewLifecycle()
	assert.Equal(t, StateNotStarted, lc.State())
}

func TestLifecycleEnterFiresHooksInOrder(t *testing.T) {
	lc := NewLifecycle()
	var entered, exited []State
	lc.OnEnter(func(s State) { entered = append(entered, s) })
	lc.OnExit(func(s State) { exited = append(exited, s) })

	lc.Enter(StateLoading)
	lc.Enter(StateValidating)

	assert.Equal(t, []State{StateLoading, StateValidating}, entered)
	assert.Equal(t, []State{StateNotStarted, StateLoading}, exited)
	assert.Equal(t, StateValidating, lc.State())
}

func TestStateStringer(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "done", StateDone.String())
}
