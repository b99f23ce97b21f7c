package winloop

import (
	"errors"
	"sync"
	"time"
)

// errWakeSourceClosed is returned by WakeSource implementations once Close
// has been called. Mode drivers wrap it in a [WakeArmError].
var errWakeSourceClosed = errors.New("winloop: wake source closed")

// WakeSource is the per-backend primitive the loop idles on: it can be
// waited on with a deadline and unblocked early by an explicit signal.
//
// Callback-driven native run loops and blocking poll loops are both hidden
// behind this one capability interface, one implementation per target.
type WakeSource interface {
	// Wait blocks until the timeout elapses or a notification arrives.
	// timeout < 0 blocks indefinitely; timeout == 0 is a non-blocking
	// check. Returns whether a notification was consumed.
	//
	// Wait is only ever called from the loop-owning thread.
	Wait(timeout time.Duration) (notified bool, err error)

	// Notify unblocks a concurrent or future Wait. Safe to call from any
	// goroutine. Notifications between waits coalesce: N signals consume
	// as one.
	Notify() error

	// Close releases resources. Only called once the loop has stopped
	// waiting; a Wait after Close fails.
	Close() error
}

// chanWakeSource is the portable WakeSource used on targets without an
// fd-based primitive, and by the headless backend. A one-slot channel
// coalesces notifications.
type chanWakeSource struct {
	ch   chan struct{}
	done chan struct{}
	once sync.Once
}

func newChanWakeSource() *chanWakeSource {
	return &chanWakeSource{
		ch:   make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (s *chanWakeSource) Wait(timeout time.Duration) (bool, error) {
	select {
	case <-s.done:
		return false, errWakeSourceClosed
	default:
	}
	if timeout == 0 {
		select {
		case <-s.ch:
			return true, nil
		default:
			return false, nil
		}
	}
	if timeout < 0 {
		select {
		case <-s.ch:
			return true, nil
		case <-s.done:
			return false, errWakeSourceClosed
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.ch:
		return true, nil
	case <-t.C:
		return false, nil
	case <-s.done:
		return false, errWakeSourceClosed
	}
}

func (s *chanWakeSource) Notify() error {
	select {
	case <-s.done:
		return errWakeSourceClosed
	default:
	}
	select {
	case s.ch <- struct{}{}:
	default:
	}
	return nil
}

func (s *chanWakeSource) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
