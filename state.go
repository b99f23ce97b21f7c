package winloop

import (
	"sync/atomic"
)

// RunState represents the lifecycle state of a [Loop].
//
// State Machine:
//
//	StateIdle (0) → StateRunning (1)       [first Run/RunOnDemand/Pump]
//	StateRunning (1) → StateExited (2)     [exit request honored]
//	StateExited (2) → StateRunning (1)     [restart via RunOnDemand/Pump]
//	StateIdle/StateExited → StateDestroyed [Close()]
//	StateDestroyed (3) → (terminal)
//
// Transition Rules:
//   - Use TryTransition() (CAS) for contended transitions (Idle/Exited → Running)
//   - Use Store() only for transitions made on the loop-owning thread while
//     no other transition can race (Running → Exited)
type RunState uint32

const (
	// StateIdle indicates the loop has been created but never run.
	StateIdle RunState = iota
	// StateRunning indicates a run session is active (a mode driver is
	// executing, or a pump session is open between Pump calls).
	StateRunning
	// StateExited indicates the last run session ended; the loop may be
	// restarted via RunOnDemand or Pump.
	StateExited
	// StateDestroyed indicates Close() completed; the loop is unusable.
	StateDestroyed
)

// String returns a human-readable representation of the state.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateExited:
		return "Exited"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// runState is a lock-free state cell with cache-line padding so that
// cross-thread readers (Proxy sends) do not share a line with the queue.
type runState struct { // betteralign:ignore
	_ [64]byte      //nolint:unused
	v atomic.Uint32 // State value
	_ [60]byte      //nolint:unused
}

func newRunState() *runState {
	s := &runState{}
	s.v.Store(uint32(StateIdle))
	return s
}

// Load returns the current state atomically.
func (s *runState) Load() RunState {
	return RunState(s.v.Load())
}

// Store atomically stores a new state.
func (s *runState) Store(state RunState) {
	s.v.Store(uint32(state))
}

// TryTransition attempts to atomically transition from one state to another.
// Returns true if the transition was performed.
func (s *runState) TryTransition(from, to RunState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// TransitionAny attempts the transition from the first matching source state.
func (s *runState) TransitionAny(to RunState, from ...RunState) bool {
	for _, f := range from {
		if s.v.CompareAndSwap(uint32(f), uint32(to)) {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the loop has been destroyed.
func (s *runState) IsTerminal() bool {
	return s.Load() == StateDestroyed
}

// CanSend returns true if Proxy sends may still be observed by a drain.
// Sends are accepted before the first run and while a session is active;
// they are rejected once the loop has exited or been destroyed.
func (s *runState) CanSend() bool {
	state := s.Load()
	return state == StateIdle || state == StateRunning
}
