package contextops

import (
	"context"
	"sync"
	"time"
)

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseComplete Phase = "complete"
	PhaseError    Phase = "error"
)

// TabOpState is the per-tab workflow record. Entries persist until the
// caller clears them after consuming a terminal phase; nothing is collected
// implicitly.
type TabOpState struct {
	Phase     Phase
	Progress  *Progress
	Err       string
	StartedAt time.Time
}

// Tracker maps source-tab identifiers to independent workflow records so
// operations on different tabs never block each other. It also holds the
// per-tab cancellation hooks for in-flight invocations.
type Tracker struct {
	mu      sync.Mutex
	now     func() time.Time
	states  map[string]*TabOpState
	cancels map[string]context.CancelFunc
}

func NewTracker() *Tracker {
	return &Tracker{
		now:     time.Now,
		states:  map[string]*TabOpState{},
		cancels: map[string]context.CancelFunc{},
	}
}

// Begin marks the tab as running. It returns false when an invocation for
// the same tab is already running; terminal or idle records are replaced.
func (t *Tracker) Begin(tabID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.states[tabID]; ok && state.Phase == PhaseRunning {
		return false
	}
	t.states[tabID] = &TabOpState{Phase: PhaseRunning, StartedAt: t.now()}
	return true
}

func (t *Tracker) Progress(tabID string, p Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.states[tabID]; ok && state.Phase == PhaseRunning {
		progress := p
		state.Progress = &progress
	}
}

func (t *Tracker) Complete(tabID string) {
	t.finish(tabID, PhaseComplete, "")
}

func (t *Tracker) Fail(tabID string, msg string) {
	t.finish(tabID, PhaseError, msg)
}

func (t *Tracker) finish(tabID string, phase Phase, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.states[tabID]
	if !ok {
		state = &TabOpState{StartedAt: t.now()}
		t.states[tabID] = state
	}
	state.Phase = phase
	state.Err = msg
	delete(t.cancels, tabID)
}

// State returns a copy of the tab's record. Absent tabs read as idle.
func (t *Tracker) State(tabID string) TabOpState {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.states[tabID]
	if !ok {
		return TabOpState{Phase: PhaseIdle}
	}
	out := *state
	if state.Progress != nil {
		progress := *state.Progress
		out.Progress = &progress
	}
	return out
}

func (t *Tracker) AnyRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, state := range t.states {
		if state.Phase == PhaseRunning {
			return true
		}
	}
	return false
}

// Clear removes the tab's record. Callers invoke it after consuming a
// terminal state.
func (t *Tracker) Clear(tabID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, tabID)
	delete(t.cancels, tabID)
}

func (t *Tracker) registerCancel(tabID string, cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancels[tabID] = cancel
}

// Cancel fires the tab's cancellation hook. It reports whether an in-flight
// invocation was found.
func (t *Tracker) Cancel(tabID string) bool {
	t.mu.Lock()
	cancel, ok := t.cancels[tabID]
	delete(t.cancels, tabID)
	t.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (t *Tracker) CancelAll() {
	t.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(t.cancels))
	for tabID, cancel := range t.cancels {
		cancels = append(cancels, cancel)
		delete(t.cancels, tabID)
	}
	t.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}
