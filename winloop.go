package winloop

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

// Process-wide state. Some native toolkits initialize once per process, so
// loop creation is guarded: [New] claims the guard, [Loop.Close] releases
// it. This is the documented init/teardown cycle; there is no other global
// mutable state.
var (
	loopExists    atomic.Bool
	panicDetected atomic.Bool
	loopIDCounter atomic.Uint64
)

// PanicDetected reports whether a callback panic is unwinding, or has
// unwound, through a run call. Wake handlers and backend threads racing the
// unwind can use it to avoid re-entering dispatch state. Cleared by
// [Loop.Close].
func PanicDetected() bool {
	return panicDetected.Load()
}

// Loop is the event-loop control-flow engine: it owns the pending-event
// queue, derives a [StartCause] for every iteration, dispatches the ordered
// event sequence to an [Application], and rearms the wake source according
// to the active [ControlFlow].
//
// A Loop is bound to the goroutine that created it. All dispatch happens on
// that goroutine, via [Loop.Run], [Loop.RunOnDemand], or [Loop.Pump]; mode
// entry from any other goroutine fails fast with [ErrWrongThread]. Other
// goroutines interact exclusively through a [Proxy] or the [EventSink]
// surface.
type Loop struct {
	// Cross-thread state.
	state       *runState
	queue       *eventQueue
	wake        WakeSource
	backend     Backend
	logger      *logiface.Logger[logiface.Event]
	metrics     *Metrics
	clock       func() time.Time
	wakeFlag    atomic.Bool // coalesced Proxy.WakeUp signal
	shutdownReq atomic.Bool // backend-signalled shutdown
	runConsumed atomic.Bool
	id          uint64
	ownerGID    uint64
	caps        capabilities

	// Dispatch context: loop-owning thread only.
	flow        ControlFlow
	exitCode    int
	inCallback  bool
	exiting     bool
	loopRunning bool // a run session is open (Init delivered)
	redrawBuf   []WindowID
}

var _ EventSink = (*Loop)(nil)

// New creates the process's event loop. At most one loop may exist at a
// time; a second New before [Loop.Close] returns [ErrAlreadyCreated].
//
// The loop is bound to the calling goroutine: Run, RunOnDemand, and Pump
// must be invoked from it. If a backend is configured via [WithBackend] it
// is started here and its capability set is probed once.
func New(opts ...Option) (*Loop, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if !loopExists.CompareAndSwap(false, true) {
		return nil, ErrAlreadyCreated
	}

	caps := probeCapabilities(cfg.backend)

	wake := cfg.wakeSource
	if wake == nil && caps.ownWake {
		wake, err = cfg.backend.(WakeSourceProvider).WakeSource()
		if err != nil {
			loopExists.Store(false)
			return nil, &WakeArmError{Op: "open", Err: err}
		}
	}
	if wake == nil {
		wake, err = newPlatformWakeSource()
		if err != nil {
			loopExists.Store(false)
			return nil, &WakeArmError{Op: "open", Err: err}
		}
	}

	l := &Loop{
		state:    newRunState(),
		queue:    newEventQueue(cfg.queueCapacity),
		wake:     wake,
		backend:  cfg.backend,
		logger:   cfg.logger,
		clock:    cfg.clock,
		id:       loopIDCounter.Add(1),
		ownerGID: getGoroutineID(),
		caps:     caps,
	}
	if cfg.metricsEnabled {
		l.metrics = &Metrics{}
	}

	if l.backend != nil {
		if err := l.backend.Start(l); err != nil {
			_ = wake.Close()
			loopExists.Store(false)
			return nil, err
		}
		l.logDebug().Str("backend", l.backend.Name()).
			Bool("restartable", caps.restartable).
			Bool("ownWake", caps.ownWake).
			Log("backend started")
	}

	l.logDebug().Log("loop created")
	return l, nil
}

// Close tears the loop down: stops the backend, closes the wake source,
// discards queued events, and releases the process-wide creation guard so a
// fresh loop may be created. Returns [ErrLoopRunning] while a run session is
// active and [ErrLoopClosed] if already destroyed.
//
// A loop poisoned by a callback panic may be closed even though its state
// never reached [StateExited]; Close is the only way out of that state.
func (l *Loop) Close() error {
claim:
	for {
		switch st := l.state.Load(); st {
		case StateRunning:
			if !panicDetected.Load() {
				return ErrLoopRunning
			}
			if l.state.TryTransition(st, StateDestroyed) {
				break claim
			}
		case StateDestroyed:
			return ErrLoopClosed
		default:
			if l.state.TryTransition(st, StateDestroyed) {
				break claim
			}
		}
	}
	var firstErr error
	if l.backend != nil {
		firstErr = l.backend.Stop()
	}
	if err := l.wake.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	l.queue.purge()
	l.logDebug().Log("loop destroyed")
	panicDetected.Store(false)
	loopExists.Store(false)
	return firstErr
}

// CreateProxy returns a cloneable, thread-safe handle for enqueuing events
// and waking the loop from other goroutines. Safe to call from any
// goroutine; dropping proxies never affects the loop's lifetime.
func (l *Loop) CreateProxy() *Proxy {
	return &Proxy{loop: l}
}

// SetControlFlow changes the idle directive. The new value takes effect
// when the waker is rearmed at the end of the current iteration, never
// mid-iteration. Loop-owning thread only.
func (l *Loop) SetControlFlow(flow ControlFlow) {
	l.flow = flow
}

// ControlFlow returns the active idle directive. Loop-owning thread only.
func (l *Loop) ControlFlow() ControlFlow {
	return l.flow
}

// Exit requests the run session stop with code 0. The request is deferred:
// the remainder of the current iteration's queued events and the
// AboutToWait dispatch still run, then Exiting is delivered and the mode
// driver returns. Loop-owning thread only.
func (l *Loop) Exit() {
	l.ExitWithCode(0)
}

// ExitWithCode is [Loop.Exit] with an exit code. The code set last wins;
// nonzero codes surface from Run/RunOnDemand as [ExitFailureError] and from
// Pump in the [PumpStatus]. Loop-owning thread only.
func (l *Loop) ExitWithCode(code int) {
	l.exiting = true
	l.exitCode = code
}

// Exiting reports whether an exit has been requested for the current run
// session. Loop-owning thread only.
func (l *Loop) Exiting() bool {
	return l.exiting
}

// State returns the lifecycle state. Safe from any goroutine.
func (l *Loop) State() RunState {
	return l.state.Load()
}

// Metrics returns a snapshot of the runtime counters. Zero when metrics
// were not enabled via [WithMetrics]. Safe from any goroutine.
func (l *Loop) Metrics() MetricsSnapshot {
	return l.metrics.snapshot()
}

// --- EventSink ---
//
// The loop is its own sink: backends (and tests) deliver events through
// these methods from any goroutine. Each delivery signals the wake source
// unconditionally, so correctness never depends on the loop being asleep
// when the signal arrives.

// PushWindowEvent implements [EventSink].
func (l *Loop) PushWindowEvent(id WindowID, ev WindowEvent) error {
	if !l.state.CanSend() {
		return ErrLoopClosed
	}
	l.queue.push(pendingEvent{kind: pendingWindow, winID: id, window: ev})
	return l.signalWake()
}

// PushDeviceEvent implements [EventSink].
func (l *Loop) PushDeviceEvent(id DeviceID, ev DeviceEvent) error {
	if !l.state.CanSend() {
		return ErrLoopClosed
	}
	l.queue.push(pendingEvent{kind: pendingDevice, devID: id, device: ev})
	return l.signalWake()
}

// RequestRedraw implements [EventSink].
func (l *Loop) RequestRedraw(id WindowID) error {
	if !l.state.CanSend() {
		return ErrLoopClosed
	}
	if !l.queue.requestRedraw(id) {
		l.metrics.addRedrawCoalesced()
	}
	return l.signalWake()
}

// NotifyWindowDestroyed implements [EventSink].
func (l *Loop) NotifyWindowDestroyed(id WindowID) error {
	if l.state.Load() == StateDestroyed {
		return ErrLoopClosed
	}
	l.queue.dropWindow(id)
	return nil
}

// RequestShutdown implements [EventSink].
func (l *Loop) RequestShutdown() error {
	if !l.state.CanSend() {
		return ErrLoopClosed
	}
	l.shutdownReq.Store(true)
	return l.signalWake()
}

func (l *Loop) signalWake() error {
	if err := l.wake.Notify(); err != nil {
		return &WakeArmError{Op: "notify", Err: err}
	}
	return nil
}

// getGoroutineID returns the current goroutine's ID.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
