// Package headless provides a winloop backend with no native windowing
// system behind it. Events are injected programmatically, which makes it
// the backend of choice for tests, simulations, and driving the engine
// from custom sources.
package headless

import (
	"fmt"
	"sync"

	"github.com/joeycumines/go-winloop"
)

// Backend implements [winloop.Backend] over an injectable event source. The
// zero value is not usable; construct with [New].
//
// Injection methods are safe from any goroutine once the backend has been
// started (which happens inside [winloop.New]).
type Backend struct {
	mu      sync.Mutex
	sink    winloop.EventSink
	started bool
}

// New returns an unstarted headless backend.
func New() *Backend {
	return &Backend{}
}

// Name implements [winloop.Backend].
func (b *Backend) Name() string { return "headless" }

// Start implements [winloop.Backend].
func (b *Backend) Start(sink winloop.EventSink) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return fmt.Errorf("headless: backend already started")
	}
	b.sink = sink
	b.started = true
	return nil
}

// Stop implements [winloop.Backend]. Subsequent injections fail.
func (b *Backend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sink = nil
	b.started = false
	return nil
}

func (b *Backend) currentSink() (winloop.EventSink, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sink == nil {
		return nil, fmt.Errorf("headless: backend not started")
	}
	return b.sink, nil
}

// InjectWindowEvent delivers a window event to the loop.
func (b *Backend) InjectWindowEvent(id winloop.WindowID, ev winloop.WindowEvent) error {
	sink, err := b.currentSink()
	if err != nil {
		return err
	}
	return sink.PushWindowEvent(id, ev)
}

// InjectDeviceEvent delivers a raw device event to the loop.
func (b *Backend) InjectDeviceEvent(id winloop.DeviceID, ev winloop.DeviceEvent) error {
	sink, err := b.currentSink()
	if err != nil {
		return err
	}
	return sink.PushDeviceEvent(id, ev)
}

// InjectRedraw requests a redraw for the window.
func (b *Backend) InjectRedraw(id winloop.WindowID) error {
	sink, err := b.currentSink()
	if err != nil {
		return err
	}
	return sink.RequestRedraw(id)
}

// InjectShutdown asks the loop to exit, as a native "quit" message would.
func (b *Backend) InjectShutdown() error {
	sink, err := b.currentSink()
	if err != nil {
		return err
	}
	return sink.RequestShutdown()
}
