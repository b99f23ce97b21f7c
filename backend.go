package winloop

// EventSink is the engine-side intake that backends deliver native events
// through. All methods are safe to call from any goroutine; each delivery
// signals the wake source so a sleeping loop observes the event promptly.
//
// Deliveries made while the loop is mid-dispatch are queued and observed on
// the next iteration, never dispatched inline.
type EventSink interface {
	// PushWindowEvent enqueues a per-window event in FIFO order.
	PushWindowEvent(id WindowID, ev WindowEvent) error

	// PushDeviceEvent enqueues a raw device event in FIFO order.
	PushDeviceEvent(id DeviceID, ev DeviceEvent) error

	// RequestRedraw records a redraw request. Requests coalesce per window
	// to at most one RedrawRequested dispatch per iteration, delivered
	// after all non-redraw events.
	RequestRedraw(id WindowID) error

	// NotifyWindowDestroyed drops pending redraw coalescing state for a
	// window that no longer exists. Already-queued events still drain.
	NotifyWindowDestroyed(id WindowID) error

	// RequestShutdown asks the loop to exit. Like an in-callback Exit the
	// request is deferred: the iteration that observes it still drains its
	// queued events and dispatches AboutToWait before stopping.
	RequestShutdown() error
}

// Backend produces native events for the engine. One backend is bound per
// loop, at construction; capabilities are probed there, never per call.
//
// The engine only routes: how faithfully native events are translated into
// the [WindowEvent]/[DeviceEvent] taxonomy is the backend's concern.
type Backend interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// Start begins delivering native events to the sink. Called once,
	// from [New]. Implementations typically spawn a goroutine that reads
	// the native connection and pushes into the sink.
	Start(sink EventSink) error

	// Stop ends event delivery and releases native resources. Called
	// once, from [Loop.Close].
	Stop() error
}

// WakeSourceProvider is an optional [Backend] capability: the backend
// supplies its own wake primitive, typically one integrated with its native
// connection. Probed once at construction; overrides the platform default.
type WakeSourceProvider interface {
	WakeSource() (WakeSource, error)
}

// SingleShot is an optional [Backend] capability marking backends whose
// native toolkit cannot be wound back up after the loop exits. With a
// single-shot backend, restarting via RunOnDemand or Pump reports
// [ErrNotSupported] at call time, before any partial execution.
type SingleShot interface {
	SingleShot() bool
}

// capabilities is the probed capability set, fixed at construction.
type capabilities struct {
	restartable bool
	ownWake     bool
}

func probeCapabilities(b Backend) capabilities {
	caps := capabilities{restartable: true}
	if b == nil {
		return caps
	}
	if ss, ok := b.(SingleShot); ok && ss.SingleShot() {
		caps.restartable = false
	}
	if _, ok := b.(WakeSourceProvider); ok {
		caps.ownWake = true
	}
	return caps
}
