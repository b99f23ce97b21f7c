package winloop_test

import (
	"fmt"
	"time"

	winloop "github.com/joeycumines/go-winloop"
	"github.com/joeycumines/go-winloop/backend/headless"
)

// closePrinterApp prints the lifecycle of a short session and exits once the
// window asks to close.
type closePrinterApp struct {
	winloop.UnimplementedApplication
}

func (closePrinterApp) Resumed(*winloop.Loop) { fmt.Println("resumed") }

func (closePrinterApp) WindowEvent(l *winloop.Loop, id winloop.WindowID, ev winloop.WindowEvent) {
	switch ev.(type) {
	case winloop.CloseRequested:
		fmt.Printf("window %d: close requested\n", id)
		l.Exit()
	case winloop.RedrawRequested:
		fmt.Printf("window %d: redraw\n", id)
	}
}

func (closePrinterApp) Exiting(*winloop.Loop) { fmt.Println("exiting") }

// Example_basicRun demonstrates the fundamental pattern: create a loop over
// a backend, run an application, and let a close request end the session.
//
// Redraws are delivered after all other events of the iteration, however
// early they were requested.
func Example_basicRun() {
	backend := headless.New()
	loop, err := winloop.New(winloop.WithBackend(backend))
	if err != nil {
		fmt.Println("create:", err)
		return
	}
	defer loop.Close()

	// Deliveries made before the run are drained by the first iteration.
	_ = backend.InjectRedraw(1)
	_ = backend.InjectWindowEvent(1, winloop.CloseRequested{})

	if err := loop.Run(closePrinterApp{}); err != nil {
		fmt.Println("run:", err)
	}

	// Output:
	// resumed
	// window 1: close requested
	// window 1: redraw
	// exiting
}

// userPrinterApp exits after the first user event.
type userPrinterApp struct {
	winloop.UnimplementedApplication
}

func (userPrinterApp) UserEvent(l *winloop.Loop, ev any) {
	fmt.Println("user:", ev)
	l.Exit()
}

// Example_proxySend demonstrates waking the loop from another goroutine. The
// proxy is safe to clone and use concurrently; each send also wakes a
// sleeping loop.
func Example_proxySend() {
	loop, err := winloop.New()
	if err != nil {
		fmt.Println("create:", err)
		return
	}
	defer loop.Close()

	proxy := loop.CreateProxy()
	go func() {
		if err := proxy.SendEvent("ping"); err != nil {
			fmt.Println("send:", err)
		}
	}()

	if err := loop.Run(userPrinterApp{}); err != nil {
		fmt.Println("run:", err)
	}

	// Output:
	// user: ping
}

// frameApp drives a fixed number of timed frames via WaitUntil deadlines.
type frameApp struct {
	winloop.UnimplementedApplication
	frames int
}

func (a *frameApp) NewEvents(l *winloop.Loop, cause winloop.StartCause) {
	if cause.Kind == winloop.CauseResumeTimeReached {
		a.frames++
		fmt.Println("frame", a.frames)
		if a.frames == 3 {
			l.Exit()
			return
		}
	}
	l.SetControlFlow(winloop.WaitUntil(time.Now().Add(time.Millisecond)))
}

// Example_controlFlow demonstrates deadline-driven iteration: WaitUntil
// parks the loop until its deadline, and the wake-up reports
// ResumeTimeReached.
func Example_controlFlow() {
	loop, err := winloop.New()
	if err != nil {
		fmt.Println("create:", err)
		return
	}
	defer loop.Close()

	if err := loop.Run(&frameApp{}); err != nil {
		fmt.Println("run:", err)
	}

	// Output:
	// frame 1
	// frame 2
	// frame 3
}

// tickerApp counts iterations and exits on the fourth.
type tickerApp struct {
	winloop.UnimplementedApplication
	ticks int
}

func (a *tickerApp) NewEvents(l *winloop.Loop, cause winloop.StartCause) {
	a.ticks++
	fmt.Println("tick", a.ticks)
}

func (a *tickerApp) AboutToWait(l *winloop.Loop) {
	if a.ticks >= 4 {
		l.Exit()
	}
}

// Example_pump demonstrates external pacing: the caller owns the outer loop
// and taps the engine for at most one blocking interval per call. The first
// call also runs the synthetic Init iteration.
func Example_pump() {
	loop, err := winloop.New()
	if err != nil {
		fmt.Println("create:", err)
		return
	}
	defer loop.Close()

	app := &tickerApp{}
	for {
		status, err := loop.Pump(app, 0)
		if err != nil {
			fmt.Println("pump:", err)
			return
		}
		if status.Exited {
			fmt.Println("exited with code", status.Code)
			return
		}
	}

	// Output:
	// tick 1
	// tick 2
	// tick 3
	// tick 4
	// exited with code 0
}
