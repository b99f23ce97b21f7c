package winloop

import (
	"errors"
	"testing"
	"time"
)

func TestRunToCompletion(t *testing.T) {
	loop := newTestLoop(t)

	app := &testApp{}
	app.onAboutToWait = func(l *Loop) { l.Exit() }

	if err := loop.Run(app); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	app.requireTrace(t,
		"new-events:Init",
		"resumed",
		"about-to-wait",
		"exiting",
	)
	if loop.State() != StateExited {
		t.Errorf("State() = %v, want Exited", loop.State())
	}
	if len(app.causes) != 1 || !app.causes[0].Start.IsZero() {
		t.Errorf("Init cause should carry a zero Start, got %+v", app.causes)
	}
}

func TestRunConsumedBySecondCall(t *testing.T) {
	loop := newTestLoop(t)

	app := &testApp{}
	app.onAboutToWait = func(l *Loop) { l.Exit() }
	if err := loop.Run(app); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if err := loop.Run(app); !errors.Is(err, ErrRunConsumed) {
		t.Errorf("second Run = %v, want ErrRunConsumed", err)
	}

	// RunOnDemand remains available: only the run-to-completion entry
	// point is consumed.
	if err := loop.RunOnDemand(app); err != nil {
		t.Errorf("RunOnDemand after Run = %v", err)
	}
}

func TestRunOnDemandRestart(t *testing.T) {
	loop := newTestLoop(t)
	proxy := loop.CreateProxy()

	app := &testApp{}
	app.onAboutToWait = func(l *Loop) { l.Exit() }
	app.onExiting = func(l *Loop) {
		// Queued during shutdown: must not leak into the next session.
		_ = proxy.SendEvent("stale")
	}

	if err := loop.RunOnDemand(app); err != nil {
		t.Fatalf("first RunOnDemand failed: %v", err)
	}

	second := &testApp{}
	second.onAboutToWait = func(l *Loop) { l.Exit() }
	if err := loop.RunOnDemand(second); err != nil {
		t.Fatalf("second RunOnDemand failed: %v", err)
	}

	second.requireTrace(t,
		"new-events:Init",
		"resumed",
		"about-to-wait",
		"exiting",
	)
	if n := second.countPrefix("user:"); n != 0 {
		t.Errorf("second session observed %d events from the first", n)
	}
}

func TestPollDirectiveIteratesWithoutEvents(t *testing.T) {
	loop := newTestLoop(t)

	// No events, no proxy signals: under Poll the loop must keep iterating
	// on its own, without blocking between AboutToWait dispatches.
	app := &testApp{}
	app.onNewEvents = func(l *Loop, _ StartCause) { l.SetControlFlow(Poll()) }
	iterations := 0
	app.onAboutToWait = func(l *Loop) {
		iterations++
		if iterations >= 5 {
			l.Exit()
		}
	}

	start := time.Now()
	if err := loop.Run(app); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("5 polled iterations took %v, expected no blocking", elapsed)
	}
	if len(app.causes) != 5 {
		t.Fatalf("got %d iterations, want 5 (causes %v)", len(app.causes), app.causes)
	}
	for i, cause := range app.causes[1:] {
		if cause.Kind != CausePoll {
			t.Errorf("causes[%d].Kind = %v, want Poll", i+1, cause.Kind)
		}
	}
}

func TestRunExitCode(t *testing.T) {
	loop := newTestLoop(t)

	app := &testApp{}
	app.onAboutToWait = func(l *Loop) {
		l.ExitWithCode(1)
		l.ExitWithCode(7) // last set wins
	}
	err := loop.RunOnDemand(app)
	var exitErr *ExitFailureError
	if !errors.As(err, &exitErr) {
		t.Fatalf("RunOnDemand = %v, want ExitFailureError", err)
	}
	if exitErr.Code != 7 {
		t.Errorf("exit code = %d, want 7", exitErr.Code)
	}

	// A fresh session starts with a clean exit latch and code.
	clean := &testApp{}
	clean.onAboutToWait = func(l *Loop) { l.Exit() }
	if err := loop.RunOnDemand(clean); err != nil {
		t.Errorf("restart after failure exit = %v, want nil", err)
	}
}

func TestRunWrongGoroutine(t *testing.T) {
	loop := newTestLoop(t)

	app := &testApp{}
	errCh := make(chan error, 1)
	go func() {
		errCh <- loop.Run(app)
	}()
	if err := <-errCh; !errors.Is(err, ErrWrongThread) {
		t.Errorf("Run from another goroutine = %v, want ErrWrongThread", err)
	}

	// The errant call must not have consumed the run.
	app.onAboutToWait = func(l *Loop) { l.Exit() }
	if err := loop.Run(app); err != nil {
		t.Errorf("Run on the owning goroutine = %v", err)
	}
}

func TestRunReentrantFromCallback(t *testing.T) {
	loop := newTestLoop(t)

	var nestedRun, nestedOnDemand error
	app := &testApp{}
	app.onAboutToWait = func(l *Loop) {
		nestedRun = l.Run(&testApp{})
		nestedOnDemand = l.RunOnDemand(&testApp{})
		l.Exit()
	}
	if err := loop.Run(app); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !errors.Is(nestedRun, ErrReentrantRun) {
		t.Errorf("nested Run = %v, want ErrReentrantRun", nestedRun)
	}
	if !errors.Is(nestedOnDemand, ErrReentrantRun) {
		t.Errorf("nested RunOnDemand = %v, want ErrReentrantRun", nestedOnDemand)
	}
}

func TestExitIsDeferredToIterationEnd(t *testing.T) {
	loop := newTestLoop(t)
	proxy := loop.CreateProxy()

	// Two events queued before the run; the first one requests exit. The
	// second must still dispatch, and so must AboutToWait, before Exiting.
	if err := proxy.SendEvent("first"); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}
	if err := proxy.SendEvent("second"); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}

	app := &testApp{}
	app.onUserEvent = func(l *Loop, ev any) {
		if ev == "first" {
			l.Exit()
			if !l.Exiting() {
				t.Error("Exiting() should report the latched request")
			}
		}
	}
	if err := loop.Run(app); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	app.requireTrace(t,
		"new-events:Init",
		"resumed",
		"user:first",
		"user:second",
		"about-to-wait",
		"exiting",
	)
}

func TestShutdownRequestFlushesBeforeExit(t *testing.T) {
	loop := newTestLoop(t)

	if err := loop.CreateProxy().SendEvent("pending"); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}
	if err := loop.RequestShutdown(); err != nil {
		t.Fatalf("RequestShutdown failed: %v", err)
	}

	app := &testApp{}
	if err := loop.Run(app); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	app.requireTrace(t,
		"new-events:Init",
		"resumed",
		"user:pending",
		"about-to-wait",
		"exiting",
	)
}
