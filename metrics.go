package winloop

import (
	"sync/atomic"
)

// Metrics tracks runtime counters for the event loop. Counters are plain
// atomics updated by the loop-owning thread and by producers; reading them
// via [Loop.Metrics] is safe from any goroutine.
//
// Collection is off by default; enable it with [WithMetrics]. All methods
// are nil-receiver safe so the hot path updates unconditionally.
type Metrics struct {
	iterations        atomic.Uint64
	windowEvents      atomic.Uint64
	deviceEvents      atomic.Uint64
	userEvents        atomic.Uint64
	redrawsDispatched atomic.Uint64
	redrawsCoalesced  atomic.Uint64
	wakesCoalesced    atomic.Uint64
	spuriousWakes     atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of the loop counters.
type MetricsSnapshot struct {
	// Iterations counts dispatched iterations (NewEvents dispatches).
	Iterations uint64
	// WindowEvents counts dispatched window events, redraws excluded.
	WindowEvents uint64
	// DeviceEvents counts dispatched device events.
	DeviceEvents uint64
	// UserEvents counts dispatched proxy payloads.
	UserEvents uint64
	// RedrawsDispatched counts RedrawRequested dispatches.
	RedrawsDispatched uint64
	// RedrawsCoalesced counts redraw requests absorbed into a pending one.
	RedrawsCoalesced uint64
	// WakesCoalesced counts WakeUp calls absorbed into a pending signal.
	WakesCoalesced uint64
	// SpuriousWakes counts wake-ups that carried nothing and were skipped.
	SpuriousWakes uint64
}

func (m *Metrics) addIteration() {
	if m != nil {
		m.iterations.Add(1)
	}
}

func (m *Metrics) addWindowEvent() {
	if m != nil {
		m.windowEvents.Add(1)
	}
}

func (m *Metrics) addDeviceEvent() {
	if m != nil {
		m.deviceEvents.Add(1)
	}
}

func (m *Metrics) addUserEvent() {
	if m != nil {
		m.userEvents.Add(1)
	}
}

func (m *Metrics) addRedrawDispatched() {
	if m != nil {
		m.redrawsDispatched.Add(1)
	}
}

func (m *Metrics) addRedrawCoalesced() {
	if m != nil {
		m.redrawsCoalesced.Add(1)
	}
}

func (m *Metrics) addWakeCoalesced() {
	if m != nil {
		m.wakesCoalesced.Add(1)
	}
}

func (m *Metrics) addSpuriousWake() {
	if m != nil {
		m.spuriousWakes.Add(1)
	}
}

func (m *Metrics) snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Iterations:        m.iterations.Load(),
		WindowEvents:      m.windowEvents.Load(),
		DeviceEvents:      m.deviceEvents.Load(),
		UserEvents:        m.userEvents.Load(),
		RedrawsDispatched: m.redrawsDispatched.Load(),
		RedrawsCoalesced:  m.redrawsCoalesced.Load(),
		WakesCoalesced:    m.wakesCoalesced.Load(),
		SpuriousWakes:     m.spuriousWakes.Load(),
	}
}
