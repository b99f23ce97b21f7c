package winloop

import (
	"fmt"
	"time"
)

// This file is the iteration engine shared by every mode driver. One
// iteration is: block on the wake source (bounded by the merged control-flow
// and pump timeouts), derive the StartCause, then dispatch the fixed
// sequence NewEvents, queued events in FIFO order, coalesced redraws, and
// AboutToWait. Exit requests latch and are honored between iterations,
// never mid-sequence.

// dispatch runs a single application callback under the reentrancy guard.
//
// Panics are not recovered: the guard is cleared and the process-wide
// panic flag set first, then the unwind continues through the mode driver
// to the caller. The flag keeps wake handlers and backend threads racing
// the unwind from re-entering dispatch state, and poisons later mode entry
// until [Loop.Close].
func (l *Loop) dispatch(f func()) {
	l.inCallback = true
	completed := false
	defer func() {
		l.inCallback = false
		if !completed {
			panicDetected.Store(true)
		}
	}()
	f()
	completed = true
}

// hasPending reports whether an iteration has work waiting: queued events,
// pending redraws, an unconsumed wake-up, or a backend shutdown request.
func (l *Loop) hasPending() bool {
	return l.queue.hasPending() || l.wakeFlag.Load() || l.shutdownReq.Load()
}

// exitRequested folds any backend shutdown request into the exit latch and
// reports whether the session should end.
func (l *Loop) exitRequested() bool {
	if l.shutdownReq.Swap(false) {
		l.exiting = true
	}
	return l.exiting
}

// beginSession transitions the loop into a run session. On a restart (the
// previous session exited) all residue from that session is discarded:
// queued events, pending redraws, the coalesced wake flag, and the exit
// latch. Restarting requires a restartable backend.
func (l *Loop) beginSession() error {
	prev := l.state.Load()
	if prev == StateExited && !l.caps.restartable {
		return fmt.Errorf("%w: backend %q cannot restart a finished loop", ErrNotSupported, l.backendName())
	}
	if !l.state.TransitionAny(StateRunning, StateIdle, StateExited) {
		if l.state.Load() == StateDestroyed {
			return ErrLoopClosed
		}
		return ErrLoopRunning
	}
	if prev == StateExited {
		l.queue.purge()
		l.wakeFlag.Store(false)
		l.shutdownReq.Store(false)
	}
	l.exiting = false
	l.exitCode = 0
	l.loopRunning = true
	l.logDebug().Bool("restart", prev == StateExited).Log("session started")
	return nil
}

// finishSession delivers the final Exiting dispatch and closes the run
// session. The exit code is left in place for the mode driver to report.
func (l *Loop) finishSession(app Application) {
	l.dispatch(func() { app.Exiting(l) })
	l.loopRunning = false
	l.state.Store(StateExited)
	l.logDebug().Int("code", l.exitCode).Log("session ended")
}

func (l *Loop) backendName() string {
	if l.backend == nil {
		return "none"
	}
	return l.backend.Name()
}

// singleIteration dispatches one full iteration of the event sequence.
func (l *Loop) singleIteration(app Application, cause StartCause) {
	l.metrics.addIteration()
	l.exitRequested()
	l.logTrace().Stringer("cause", cause).Log("iteration")

	l.dispatch(func() { app.NewEvents(l, cause) })
	if cause.Kind == CauseInit {
		l.dispatch(func() { app.Resumed(l) })
	}

	// Snapshot drain: exactly the records queued before this point, in
	// FIFO order. Anything pushed during dispatch lands in the next
	// iteration's batch, never interleaved into this one.
	batch := l.queue.takeEvents()
	for i := range batch {
		ev := &batch[i]
		switch ev.kind {
		case pendingWindow:
			l.metrics.addWindowEvent()
			l.dispatch(func() { app.WindowEvent(l, ev.winID, ev.window) })
		case pendingDevice:
			l.metrics.addDeviceEvent()
			l.dispatch(func() { app.DeviceEvent(l, ev.devID, ev.device) })
		case pendingUser:
			l.metrics.addUserEvent()
			l.dispatch(func() { app.UserEvent(l, ev.user) })
		}
	}
	l.queue.releaseEvents(batch)

	// Consume the coalesced wake-up; it is satisfied by this iteration.
	// Signals arriving after this point schedule the next one.
	l.wakeFlag.Swap(false)

	// Redraws dispatch after every non-redraw event, at most once per
	// window. Requests made during a redraw dispatch land next iteration.
	l.redrawBuf = l.queue.takeRedraws(l.redrawBuf)
	for _, id := range l.redrawBuf {
		id := id
		l.metrics.addRedrawDispatched()
		l.dispatch(func() { app.WindowEvent(l, id, RedrawRequested{}) })
	}

	l.dispatch(func() { app.AboutToWait(l) })
}

// pollEvents blocks until there is reason to iterate, then runs exactly one
// iteration. pumpTimeout bounds the block on top of the control flow's own
// deadline; negative means unbounded.
//
// The block is skipped entirely (timeout zero) when work is already
// pending. A wake with nothing to do under an unbounded wait is treated as
// spurious and dispatches nothing.
func (l *Loop) pollEvents(app Application, pumpTimeout time.Duration) error {
	start := l.clock()

	var timeout time.Duration
	if l.hasPending() {
		timeout = 0
	} else {
		timeout = minTimeout(l.flow.wakeTimeout(start), pumpTimeout)
	}

	if _, err := l.wake.Wait(timeout); err != nil {
		l.logErr().Err(err).Log("wake wait failed")
		return &WakeArmError{Op: "wait", Err: err}
	}

	now := l.clock()
	cause := deriveStartCause(l.flow, start, now, l.exiting || l.shutdownReq.Load())

	if !l.hasPending() && timeout < 0 &&
		cause.Kind != CauseResumeTimeReached && cause.Kind != CausePoll {
		l.metrics.addSpuriousWake()
		l.logTrace().Log("spurious wake")
		return nil
	}

	l.singleIteration(app, cause)
	return nil
}

// pumpEvents performs one bounded step of the loop: it opens the run
// session if necessary (synthesizing the Init iteration), runs at most one
// further iteration, and closes the session once an exit request is
// observed. pumpTimeout < 0 means no caller-imposed bound.
func (l *Loop) pumpEvents(app Application, pumpTimeout time.Duration) (PumpStatus, error) {
	if !l.loopRunning {
		if err := l.beginSession(); err != nil {
			return PumpStatus{}, err
		}
		l.singleIteration(app, StartCause{Kind: CauseInit})
	}

	if !l.exitRequested() {
		if err := l.pollEvents(app, pumpTimeout); err != nil {
			l.exiting = true
			status := PumpStatus{Exited: true, Code: l.exitCode}
			l.finishSession(app)
			return status, err
		}
	}

	if l.exitRequested() {
		status := PumpStatus{Exited: true, Code: l.exitCode}
		l.finishSession(app)
		return status, nil
	}
	return PumpStatus{}, nil
}
