package winloop

import (
	"runtime"
	"time"
)

// NoTimeout is the sentinel for an unbounded [Loop.Pump]: the call may
// block indefinitely, exactly like the blocking mode drivers. Any negative
// duration behaves the same.
const NoTimeout = noTimeout

// PumpStatus reports the outcome of a single [Loop.Pump] step.
type PumpStatus struct {
	// Code is the session's exit code. Meaningful only when Exited is set.
	Code int
	// Exited reports that the run session ended during this step. The
	// loop may be pumped (or run) again, which starts a fresh session.
	Exited bool
}

// checkModeEntry validates a mode-driver call before any state changes.
// blocking distinguishes Run/RunOnDemand (for which reentry is a
// programmer error) from Pump (which degrades to a no-op instead).
func (l *Loop) checkModeEntry(blocking bool) error {
	if panicDetected.Load() {
		return ErrPanicked
	}
	if l.state.Load() == StateDestroyed {
		return ErrLoopClosed
	}
	if getGoroutineID() != l.ownerGID {
		return ErrWrongThread
	}
	if blocking && l.inCallback {
		return ErrReentrantRun
	}
	return nil
}

// Run drives the loop until the application requests exit. It is the
// run-to-completion mode: a Loop may be consumed by Run at most once, and a
// second call fails with [ErrRunConsumed] even after a clean exit. Use
// [Loop.RunOnDemand] when the loop must be restartable.
//
// Run must be called on the goroutine that created the loop; it locks that
// goroutine to its OS thread for the duration. A nonzero exit code is
// reported as [ExitFailureError]; code 0 returns nil.
func (l *Loop) Run(app Application) error {
	if err := l.checkModeEntry(true); err != nil {
		return err
	}
	if !l.runConsumed.CompareAndSwap(false, true) {
		return ErrRunConsumed
	}
	return l.runToExit(app)
}

// RunOnDemand drives the loop until the application requests exit, and may
// be called again afterwards: each restart begins a fresh session with a
// new Init iteration and no residue from the previous run. Restarting
// requires a restartable backend ([ErrNotSupported] otherwise).
//
// Calling RunOnDemand while a pump session is open (a prior [Loop.Pump]
// observed no exit) continues that session rather than restarting it.
func (l *Loop) RunOnDemand(app Application) error {
	if err := l.checkModeEntry(true); err != nil {
		return err
	}
	return l.runToExit(app)
}

func (l *Loop) runToExit(app Application) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for {
		status, err := l.pumpEvents(app, noTimeout)
		if err != nil {
			return err
		}
		if status.Exited {
			if status.Code != 0 {
				return &ExitFailureError{Code: status.Code}
			}
			return nil
		}
	}
}

// Pump runs a single bounded step of the loop, for embedding it inside an
// external frame or UI loop. The first call opens the run session and
// synthesizes the Init iteration; each call then performs at most one
// further iteration.
//
// timeout bounds how long the step may block waiting for events: it can
// shorten the active control flow's wait but never extends it. Zero means
// never block; [NoTimeout] (or any negative value) means no caller bound.
//
// A Pump from inside a callback (modal reentrancy) performs no dispatch and
// returns a zero [PumpStatus]; events queued meanwhile are observed by the
// outer iteration sequence as usual.
func (l *Loop) Pump(app Application, timeout time.Duration) (PumpStatus, error) {
	if err := l.checkModeEntry(false); err != nil {
		return PumpStatus{}, err
	}
	if l.inCallback {
		return PumpStatus{}, nil
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	return l.pumpEvents(app, timeout)
}
