package winloop

import (
	"errors"
	"fmt"
)

// Category sentinels. Every package error matches exactly one of these via
// [errors.Is], so callers can branch on the class of failure without
// enumerating the specific errors.
var (
	// ErrProgrammer marks misuse of the API: calling an operation in a
	// state where it is documented not to work.
	ErrProgrammer = errors.New("winloop: programmer error")

	// ErrNotSupported marks an operation the selected backend cannot
	// provide. It is reported at call time, before any partial execution.
	ErrNotSupported = errors.New("winloop: not supported by backend")
)

// Specific errors, each wrapping its category sentinel.
var (
	// ErrRunConsumed is returned by [Loop.Run] when it has already been
	// invoked once on the same loop. Use [Loop.RunOnDemand] for a loop
	// that must be started more than once.
	ErrRunConsumed = fmt.Errorf("%w: run already consumed", ErrProgrammer)

	// ErrLoopClosed is returned by [Proxy.SendEvent] once the loop has
	// exited or been destroyed, and by operations on a destroyed loop.
	ErrLoopClosed = fmt.Errorf("%w: loop closed", ErrProgrammer)

	// ErrLoopRunning is returned by [Loop.Close] while a run session is
	// active, and by mode entry while another session is open.
	ErrLoopRunning = fmt.Errorf("%w: loop running", ErrProgrammer)

	// ErrWrongThread is returned by mode drivers invoked from a goroutine
	// other than the one that created the loop. Dispatch is
	// single-threaded and owner-bound.
	ErrWrongThread = fmt.Errorf("%w: not on the loop-owning goroutine", ErrProgrammer)

	// ErrReentrantRun is returned by Run/RunOnDemand invoked from inside
	// an application callback. A nested Pump is permitted (it degrades to
	// a no-op step); a nested blocking run is not.
	ErrReentrantRun = fmt.Errorf("%w: run from inside a callback", ErrProgrammer)

	// ErrAlreadyCreated is returned by [New] while another loop exists in
	// this process. Destroy the previous loop with [Loop.Close] first.
	ErrAlreadyCreated = fmt.Errorf("%w: an event loop already exists in this process", ErrProgrammer)

	// ErrPanicked is returned by mode drivers after a callback panic
	// escaped a previous run on the same loop. The loop is poisoned;
	// [Loop.Close] releases the process-wide creation guard.
	ErrPanicked = fmt.Errorf("%w: loop poisoned by a previous callback panic", ErrProgrammer)
)

// WakeArmError reports a failure to arm, wait on, or signal the wake source.
// Forward progress cannot be guaranteed once the wake source is broken, so
// mode drivers treat it as fatal and return it from the run call.
type WakeArmError struct {
	Err error
	Op  string
}

// Error implements the error interface.
func (e *WakeArmError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("winloop: wake source %s failed", e.Op)
	}
	return fmt.Sprintf("winloop: wake source %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *WakeArmError) Unwrap() error {
	return e.Err
}

// ExitFailureError carries a nonzero exit code set via [Loop.ExitWithCode].
// Run and RunOnDemand return it so callers can surface the code as the
// process exit status.
type ExitFailureError struct {
	Code int
}

// Error implements the error interface.
func (e *ExitFailureError) Error() string {
	return fmt.Sprintf("winloop: loop exited with code %d", e.Code)
}
