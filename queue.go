package winloop

import (
	"sync"
)

// pendingKind discriminates queued event records.
type pendingKind uint8

const (
	pendingWindow pendingKind = iota
	pendingDevice
	pendingUser
)

// pendingEvent is one queued record. Window, device, and user payloads share
// a single struct; redraw requests are held separately so they can be
// coalesced per window.
type pendingEvent struct {
	user   any
	window WindowEvent
	device DeviceEvent
	winID  WindowID
	devID  DeviceID
	kind   pendingKind
}

// eventQueue is the ordered holding area between producers (backends,
// proxies) and the loop-owning thread.
//
// Producers append under the mutex from any goroutine. The drain is
// single-consumer: takeEvents swaps the live slice for a recycled one, so
// records arriving while the batch is being dispatched land in the next
// iteration's batch and are never interleaved mid-drain.
type eventQueue struct {
	redraw    map[WindowID]struct{}
	events    []pendingEvent
	spare     []pendingEvent
	redrawSeq []WindowID
	mu        sync.Mutex
}

func newEventQueue(capacity int) *eventQueue {
	return &eventQueue{
		events: make([]pendingEvent, 0, capacity),
		spare:  make([]pendingEvent, 0, capacity),
		redraw: make(map[WindowID]struct{}),
	}
}

// push appends a record in FIFO arrival order.
func (q *eventQueue) push(ev pendingEvent) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// requestRedraw records a redraw request for the window. Requests are
// deduplicated per window identity: at most one dispatch per iteration.
// Returns false when the request coalesced into an existing one.
func (q *eventQueue) requestRedraw(id WindowID) bool {
	q.mu.Lock()
	_, dup := q.redraw[id]
	if !dup {
		q.redraw[id] = struct{}{}
		q.redrawSeq = append(q.redrawSeq, id)
	}
	q.mu.Unlock()
	return !dup
}

// dropWindow discards any pending redraw state for a destroyed window.
// Already-queued window events are not filtered; they drain normally.
func (q *eventQueue) dropWindow(id WindowID) {
	q.mu.Lock()
	if _, ok := q.redraw[id]; ok {
		delete(q.redraw, id)
		seq := q.redrawSeq[:0]
		for _, w := range q.redrawSeq {
			if w != id {
				seq = append(seq, w)
			}
		}
		q.redrawSeq = seq
	}
	q.mu.Unlock()
}

// hasPending reports whether anything is waiting to drain.
func (q *eventQueue) hasPending() bool {
	q.mu.Lock()
	pending := len(q.events) > 0 || len(q.redrawSeq) > 0
	q.mu.Unlock()
	return pending
}

// takeEvents removes and returns the current batch of non-redraw records.
// The caller must hand the slice back via releaseEvents before the next
// takeEvents call (single consumer).
func (q *eventQueue) takeEvents() []pendingEvent {
	q.mu.Lock()
	batch := q.events
	q.events = q.spare[:0]
	q.mu.Unlock()
	return batch
}

// releaseEvents recycles a batch obtained from takeEvents.
func (q *eventQueue) releaseEvents(batch []pendingEvent) {
	for i := range batch {
		batch[i] = pendingEvent{}
	}
	q.mu.Lock()
	q.spare = batch[:0]
	q.mu.Unlock()
}

// takeRedraws removes and returns the coalesced redraw set in first-request
// order, appending to into.
func (q *eventQueue) takeRedraws(into []WindowID) []WindowID {
	q.mu.Lock()
	into = append(into[:0], q.redrawSeq...)
	q.redrawSeq = q.redrawSeq[:0]
	clear(q.redraw)
	q.mu.Unlock()
	return into
}

// purge discards everything: queued records and redraw state. Used when a
// fresh run session begins so nothing leaks from a previous run.
func (q *eventQueue) purge() {
	q.mu.Lock()
	for i := range q.events {
		q.events[i] = pendingEvent{}
	}
	q.events = q.events[:0]
	q.redrawSeq = q.redrawSeq[:0]
	clear(q.redraw)
	q.mu.Unlock()
}
