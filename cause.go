package winloop

import (
	"fmt"
	"time"
)

// StartCauseKind discriminates the variants of [StartCause].
type StartCauseKind uint8

const (
	// CauseInit is synthesized for the first iteration of every run
	// session, before any other event.
	CauseInit StartCauseKind = iota
	// CausePoll means the active directive was Poll; the iteration began
	// immediately after the previous one.
	CausePoll
	// CauseWaitCancelled means the wait was interrupted before any
	// requested resume time: an event, proxy signal, or native wake
	// arrived early.
	CauseWaitCancelled
	// CauseResumeTimeReached means a WaitUntil deadline elapsed.
	CauseResumeTimeReached
)

// String returns the kind's name.
func (k StartCauseKind) String() string {
	switch k {
	case CauseInit:
		return "Init"
	case CausePoll:
		return "Poll"
	case CauseWaitCancelled:
		return "WaitCancelled"
	case CauseResumeTimeReached:
		return "ResumeTimeReached"
	default:
		return fmt.Sprintf("StartCauseKind(%d)", uint8(k))
	}
}

// StartCause describes why an iteration began. It is computed once per
// iteration, before NewEvents is dispatched, and is immutable afterward.
//
// Distinguishing "my timer elapsed" (ResumeTimeReached) from "something
// interrupted me early" (WaitCancelled with RequestedResume set) matters for
// anything timing-sensitive, such as animation pacing.
type StartCause struct {
	// Start is the instant the preceding wait began. Zero for Init.
	Start time.Time
	// RequestedResume is the WaitUntil deadline that was armed when the
	// wait began. Zero when no deadline was armed.
	RequestedResume time.Time
	// Kind is the variant discriminant.
	Kind StartCauseKind
}

// HasRequestedResume reports whether a WaitUntil deadline was armed.
func (c StartCause) HasRequestedResume() bool {
	return !c.RequestedResume.IsZero()
}

// String returns a human-readable representation of the cause.
func (c StartCause) String() string {
	switch c.Kind {
	case CauseInit:
		return "Init"
	case CausePoll:
		return "Poll"
	case CauseWaitCancelled:
		if c.HasRequestedResume() {
			return fmt.Sprintf("WaitCancelled(resume=%s)", c.RequestedResume.Format(time.RFC3339Nano))
		}
		return "WaitCancelled"
	case CauseResumeTimeReached:
		return fmt.Sprintf("ResumeTimeReached(resume=%s)", c.RequestedResume.Format(time.RFC3339Nano))
	default:
		return fmt.Sprintf("StartCause(%d)", c.Kind)
	}
}

// deriveStartCause classifies why an iteration is beginning by comparing the
// directive that was armed against the clock at wake time. An exit already
// latched when the wait ends reports as a plain WaitCancelled: the iteration
// only runs to flush already-queued events.
func deriveStartCause(flow ControlFlow, start, now time.Time, exiting bool) StartCause {
	if exiting {
		return StartCause{Kind: CauseWaitCancelled, Start: start}
	}
	switch flow.Kind() {
	case FlowPoll:
		return StartCause{Kind: CausePoll, Start: start}
	case FlowWaitUntil:
		if now.Before(flow.deadline) {
			return StartCause{Kind: CauseWaitCancelled, Start: start, RequestedResume: flow.deadline}
		}
		return StartCause{Kind: CauseResumeTimeReached, Start: start, RequestedResume: flow.deadline}
	default:
		return StartCause{Kind: CauseWaitCancelled, Start: start}
	}
}
