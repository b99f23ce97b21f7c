package winloop

import (
	"fmt"
	"time"
)

// noTimeout is the sentinel for "no deadline" in poll-timeout arithmetic.
// Absence of a deadline always means "infinite", never "zero".
const noTimeout = time.Duration(-1)

// ControlFlowKind discriminates the variants of [ControlFlow].
type ControlFlowKind uint8

const (
	// FlowWait sleeps until an event, proxy signal, or backend wake
	// arrives. This is the default for a zero-valued ControlFlow.
	FlowWait ControlFlowKind = iota
	// FlowPoll runs the next iteration immediately after the current one,
	// without sleeping, even when no events are pending.
	FlowPoll
	// FlowWaitUntil sleeps like FlowWait but no later than a deadline.
	FlowWaitUntil
)

// ControlFlow directs how long the loop idles between iterations.
//
// Exactly one value is active at a time. It may be changed from inside a
// callback via [Loop.SetControlFlow] and takes effect when the waker is
// rearmed at the end of the current iteration, never mid-iteration.
//
// The zero value is Wait.
type ControlFlow struct {
	deadline time.Time
	kind     ControlFlowKind
}

// Poll returns the ControlFlow that never sleeps between iterations.
func Poll() ControlFlow {
	return ControlFlow{kind: FlowPoll}
}

// Wait returns the ControlFlow that sleeps until externally woken.
func Wait() ControlFlow {
	return ControlFlow{kind: FlowWait}
}

// WaitUntil returns the ControlFlow that sleeps until t, or until
// externally woken, whichever comes first. A deadline already in the past
// behaves like [Poll]: the next iteration fires immediately.
func WaitUntil(t time.Time) ControlFlow {
	return ControlFlow{kind: FlowWaitUntil, deadline: t}
}

// WaitFor is shorthand for WaitUntil(time.Now().Add(d)).
func WaitFor(d time.Duration) ControlFlow {
	return WaitUntil(time.Now().Add(d))
}

// Kind returns the variant discriminant.
func (f ControlFlow) Kind() ControlFlowKind {
	return f.kind
}

// Deadline returns the WaitUntil deadline. ok is false for Poll and Wait.
func (f ControlFlow) Deadline() (deadline time.Time, ok bool) {
	return f.deadline, f.kind == FlowWaitUntil
}

// String returns a human-readable representation of the directive.
func (f ControlFlow) String() string {
	switch f.kind {
	case FlowPoll:
		return "Poll"
	case FlowWaitUntil:
		return fmt.Sprintf("WaitUntil(%s)", f.deadline.Format(time.RFC3339Nano))
	default:
		return "Wait"
	}
}

// wakeTimeout converts the directive into a poll timeout measured from now.
// Poll yields zero (never sleeps), WaitUntil yields the remaining duration
// clamped at zero, Wait yields noTimeout.
func (f ControlFlow) wakeTimeout(now time.Time) time.Duration {
	switch f.kind {
	case FlowPoll:
		return 0
	case FlowWaitUntil:
		d := f.deadline.Sub(now)
		if d < 0 {
			d = 0
		}
		return d
	default:
		return noTimeout
	}
}

// minTimeout merges two poll timeouts, treating noTimeout as +infinity.
func minTimeout(a, b time.Duration) time.Duration {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}
