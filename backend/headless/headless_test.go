package headless_test

import (
	"testing"
	"time"

	"github.com/joeycumines/go-winloop"
	"github.com/joeycumines/go-winloop/backend/headless"
)

// collectApp gathers everything dispatched and exits at the end of the
// first iteration.
type collectApp struct {
	winloop.UnimplementedApplication
	windows []winloop.WindowEvent
	devices []winloop.DeviceEvent
	redraws int
}

func (a *collectApp) WindowEvent(l *winloop.Loop, id winloop.WindowID, ev winloop.WindowEvent) {
	if _, ok := ev.(winloop.RedrawRequested); ok {
		a.redraws++
		return
	}
	a.windows = append(a.windows, ev)
}

func (a *collectApp) DeviceEvent(l *winloop.Loop, id winloop.DeviceID, ev winloop.DeviceEvent) {
	a.devices = append(a.devices, ev)
}

func (a *collectApp) AboutToWait(l *winloop.Loop) { l.Exit() }

func TestInjectionBeforeStartFails(t *testing.T) {
	b := headless.New()
	if err := b.InjectWindowEvent(1, winloop.CloseRequested{}); err == nil {
		t.Error("injection before start should fail")
	}
	if err := b.InjectShutdown(); err == nil {
		t.Error("shutdown before start should fail")
	}
}

func TestInjectedEventsDispatch(t *testing.T) {
	backend := headless.New()
	loop, err := winloop.New(winloop.WithBackend(backend))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer loop.Close()

	if err := backend.InjectWindowEvent(1, winloop.Resized{Width: 100, Height: 50}); err != nil {
		t.Fatalf("InjectWindowEvent failed: %v", err)
	}
	if err := backend.InjectDeviceEvent(0, winloop.Key{Code: 42, Pressed: true}); err != nil {
		t.Fatalf("InjectDeviceEvent failed: %v", err)
	}
	if err := backend.InjectRedraw(1); err != nil {
		t.Fatalf("InjectRedraw failed: %v", err)
	}

	app := &collectApp{}
	if err := loop.Run(app); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(app.windows) != 1 {
		t.Fatalf("window events = %v, want one Resized", app.windows)
	}
	if got, ok := app.windows[0].(winloop.Resized); !ok || got.Width != 100 || got.Height != 50 {
		t.Errorf("window event = %#v, want Resized{100, 50}", app.windows[0])
	}
	if len(app.devices) != 1 {
		t.Fatalf("device events = %v, want one Key", app.devices)
	}
	if got, ok := app.devices[0].(winloop.Key); !ok || got.Code != 42 || !got.Pressed {
		t.Errorf("device event = %#v, want Key{42, true}", app.devices[0])
	}
	if app.redraws != 1 {
		t.Errorf("redraws = %d, want 1", app.redraws)
	}
}

func TestInjectShutdownEndsRun(t *testing.T) {
	backend := headless.New()
	loop, err := winloop.New(winloop.WithBackend(backend))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer loop.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		if err := backend.InjectShutdown(); err != nil {
			t.Errorf("InjectShutdown failed: %v", err)
		}
	}()

	// No callback requests exit; the injected shutdown must end the run.
	if err := loop.Run(&winloop.UnimplementedApplication{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := loop.State(); got != winloop.StateExited {
		t.Errorf("State() = %v, want Exited", got)
	}
}

func TestInjectionAfterCloseFails(t *testing.T) {
	backend := headless.New()
	loop, err := winloop.New(winloop.WithBackend(backend))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := loop.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := backend.InjectWindowEvent(1, winloop.CloseRequested{}); err == nil {
		t.Error("injection after close should fail")
	}
}

func TestRestartSupported(t *testing.T) {
	backend := headless.New()
	loop, err := winloop.New(winloop.WithBackend(backend))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer loop.Close()

	for i := 0; i < 3; i++ {
		if err := loop.RunOnDemand(&collectApp{}); err != nil {
			t.Fatalf("RunOnDemand %d failed: %v", i, err)
		}
		if got := loop.State(); got != winloop.StateExited {
			t.Fatalf("State() after run %d = %v, want Exited", i, got)
		}
	}
}
