package winloop

// Proxy is a cloneable, thread-safe handle to a [Loop]. Copying a Proxy (by
// value, or sharing the pointer) yields an equivalent handle; any number may
// exist and all remain valid until the loop is destroyed. Dropping every
// proxy has no effect on the loop.
type Proxy struct {
	loop *Loop
}

// SendEvent enqueues a user event for dispatch to
// [Application.UserEvent] on the loop thread.
//
// The wake source is signalled unconditionally, even when the loop is
// busy-polling and the signal is redundant. Sends race inherently with loop
// shutdown: a nil error means the event was enqueued, not that it will be
// observed before the session ends. After the loop has exited or been
// destroyed, SendEvent fails with [ErrLoopClosed] and the event is
// discarded.
func (p *Proxy) SendEvent(ev any) error {
	l := p.loop
	if l == nil || !l.state.CanSend() {
		return ErrLoopClosed
	}
	l.queue.push(pendingEvent{kind: pendingUser, user: ev})
	return l.signalWake()
}

// WakeUp schedules one extra loop iteration with no accompanying event. The
// iteration dispatches the usual lifecycle sequence (NewEvents through
// AboutToWait) with an empty queue.
//
// Signals coalesce: the wake is recorded in a flag the loop consumes at the
// start of each iteration, so N concurrent calls before the loop runs again
// produce exactly one extra iteration, and the underlying wake source is
// signalled only by the call that set the flag. Harmless after the loop has
// exited.
func (p *Proxy) WakeUp() {
	l := p.loop
	if l == nil {
		return
	}
	if !l.wakeFlag.CompareAndSwap(false, true) {
		l.metrics.addWakeCoalesced()
		return
	}
	if err := l.wake.Notify(); err != nil {
		// Reset so a later call can retry the signal.
		l.wakeFlag.Store(false)
	}
}
