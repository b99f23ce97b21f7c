package winloop

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// Tests that construct a Loop share the process-wide creation guard, so
// none of them may run in parallel with each other.

// newTestLoop creates a loop bound to the test goroutine and tears it down
// with the test. A pump session left open by the test is driven to exit
// first so Close can succeed.
func newTestLoop(t *testing.T, opts ...Option) *Loop {
	t.Helper()
	loop, err := New(opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		if loop.State() == StateRunning && !PanicDetected() {
			loop.Exit()
			_, _ = loop.Pump(&testApp{}, 0)
		}
		if err := loop.Close(); err != nil && !errors.Is(err, ErrLoopClosed) {
			t.Errorf("Close() failed: %v", err)
		}
	})
	return loop
}

// testApp records the dispatch sequence as a flat trace and forwards each
// callback to an optional hook.
type testApp struct {
	trace         []string
	causes        []StartCause
	onNewEvents   func(*Loop, StartCause)
	onResumed     func(*Loop)
	onWindowEvent func(*Loop, WindowID, WindowEvent)
	onDeviceEvent func(*Loop, DeviceID, DeviceEvent)
	onUserEvent   func(*Loop, any)
	onAboutToWait func(*Loop)
	onExiting     func(*Loop)
}

var _ Application = (*testApp)(nil)

func (a *testApp) NewEvents(l *Loop, cause StartCause) {
	a.trace = append(a.trace, "new-events:"+cause.Kind.String())
	a.causes = append(a.causes, cause)
	if a.onNewEvents != nil {
		a.onNewEvents(l, cause)
	}
}

func (a *testApp) Resumed(l *Loop) {
	a.trace = append(a.trace, "resumed")
	if a.onResumed != nil {
		a.onResumed(l)
	}
}

func (a *testApp) WindowEvent(l *Loop, id WindowID, ev WindowEvent) {
	a.trace = append(a.trace, fmt.Sprintf("window:%d:%T", id, ev))
	if a.onWindowEvent != nil {
		a.onWindowEvent(l, id, ev)
	}
}

func (a *testApp) DeviceEvent(l *Loop, id DeviceID, ev DeviceEvent) {
	a.trace = append(a.trace, fmt.Sprintf("device:%d:%T", id, ev))
	if a.onDeviceEvent != nil {
		a.onDeviceEvent(l, id, ev)
	}
}

func (a *testApp) UserEvent(l *Loop, ev any) {
	a.trace = append(a.trace, fmt.Sprintf("user:%v", ev))
	if a.onUserEvent != nil {
		a.onUserEvent(l, ev)
	}
}

func (a *testApp) AboutToWait(l *Loop) {
	a.trace = append(a.trace, "about-to-wait")
	if a.onAboutToWait != nil {
		a.onAboutToWait(l)
	}
}

func (a *testApp) Exiting(l *Loop) {
	a.trace = append(a.trace, "exiting")
	if a.onExiting != nil {
		a.onExiting(l)
	}
}

// countPrefix returns how many trace entries start with prefix.
func (a *testApp) countPrefix(prefix string) int {
	n := 0
	for _, entry := range a.trace {
		if strings.HasPrefix(entry, prefix) {
			n++
		}
	}
	return n
}

// indexOf returns the position of the first trace entry starting with
// prefix, or -1.
func (a *testApp) indexOf(prefix string) int {
	for i, entry := range a.trace {
		if strings.HasPrefix(entry, prefix) {
			return i
		}
	}
	return -1
}

// requireTrace fails the test unless the recorded trace matches want
// exactly.
func (a *testApp) requireTrace(t *testing.T, want ...string) {
	t.Helper()
	if len(a.trace) != len(want) {
		t.Fatalf("trace = %v, want %v", a.trace, want)
	}
	for i := range want {
		if a.trace[i] != want[i] {
			t.Fatalf("trace[%d] = %q, want %q (full trace %v)", i, a.trace[i], want[i], a.trace)
		}
	}
}
