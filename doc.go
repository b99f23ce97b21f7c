// Package winloop implements the control-flow core of a windowing event
// loop: run modes, wake-up and timeout management, event queuing and
// dispatch ordering, and the lifecycle rules that hold them together. It is
// platform-agnostic; OS integrations plug in behind the [Backend],
// [EventSink], and [WakeSource] interfaces (see backend/x11 and
// backend/term for real ones, backend/headless for tests).
//
// # Architecture
//
// A [Loop] repeats a fixed iteration sequence on the goroutine that created
// it: block on the wake source until the control flow's deadline, a wake
// signal, or pending work; derive a [StartCause] describing why the
// iteration began; then dispatch NewEvents, the queued window, device, and
// user events in arrival order, coalesced redraws (at most one per window),
// and finally AboutToWait. The [ControlFlow] set during an iteration (Poll,
// Wait, or WaitUntil) takes effect when the waker is rearmed afterwards,
// never mid-iteration.
//
// Three mode drivers share that engine. [Loop.Run] drives to completion and
// consumes the loop. [Loop.RunOnDemand] does the same but may be called
// again, restarting with a fresh Init and no residue. [Loop.Pump] performs
// one bounded step per call so the loop can be embedded in an external
// frame loop.
//
// # Thread Safety
//
// Dispatch is deliberately single-threaded: mode drivers must run on the
// loop's owning goroutine and fail fast with [ErrWrongThread] elsewhere.
// Every other goroutine interacts through a cloneable [Proxy]
// ([Proxy.SendEvent], [Proxy.WakeUp]) or through the [EventSink] methods
// used by backends; both are safe for concurrent use and wake the loop
// without it having to poll. Wake-ups coalesce, so any number of signals
// before the loop runs again costs exactly one extra iteration.
//
// A callback panic propagates out of the mode driver with the reentrancy
// guard cleared and [PanicDetected] set first, so concurrent wakers never
// observe a half-unwound loop.
//
// # Usage
//
//	loop, err := winloop.New()
//	if err != nil {
//		// ...
//	}
//	defer loop.Close()
//
//	err = loop.Run(app) // app implements winloop.Application
//
// See the examples directory for complete programs covering control flow,
// pumping, and cross-goroutine wake-ups.
package winloop
