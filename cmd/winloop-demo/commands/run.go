package commands

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joeycumines/logiface"
	"github.com/spf13/cobra"

	winloop "github.com/joeycumines/go-winloop"
	"github.com/joeycumines/go-winloop/backend/headless"
	"github.com/joeycumines/go-winloop/backend/term"
	"github.com/joeycumines/go-winloop/backend/x11"
)

var (
	backendName string
	duration    time.Duration
	winTitle    string
	winWidth    uint16
	winHeight   uint16

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run an event loop session",
		Example: `  # Synthetic events on the headless backend, verbose engine logs
  winloop-demo run --log-level trace

  # Take over the terminal; Ctrl+C quits, logs go to a file
  winloop-demo run --backend term --log-file demo.log

  # Open an X11 window; closing it ends the session
  winloop-demo run --backend x11 --title hello --width 640 --height 480`,
		RunE: runSession,
	}
)

func init() {
	runCmd.Flags().StringVarP(&backendName, "backend", "b", "headless", "backend to drive (headless, term, x11)")
	runCmd.Flags().DurationVar(&duration, "duration", 3*time.Second, "headless session length")
	runCmd.Flags().StringVar(&winTitle, "title", "winloop demo", "x11 window title")
	runCmd.Flags().Uint16Var(&winWidth, "width", 640, "x11 window width")
	runCmd.Flags().Uint16Var(&winHeight, "height", 480, "x11 window height")
	rootCmd.AddCommand(runCmd)
}

// demoApp logs every dispatched callback and ends the session when its
// window goes away.
type demoApp struct {
	winloop.UnimplementedApplication
	log  *logiface.Logger[logiface.Event]
	x11  *x11.Backend  // window teardown, x11 only
	term *term.Backend // banner drawing, term only
}

func (a *demoApp) NewEvents(l *winloop.Loop, cause winloop.StartCause) {
	a.log.Debug().Stringer("cause", cause).Log("iteration")
}

func (a *demoApp) Resumed(l *winloop.Loop) {
	a.log.Info().Log("resumed")
}

func (a *demoApp) WindowEvent(l *winloop.Loop, id winloop.WindowID, ev winloop.WindowEvent) {
	a.log.Info().
		Uint64("window", uint64(id)).
		Str("event", fmt.Sprintf("%#v", ev)).
		Log("window event")

	switch ev.(type) {
	case winloop.RedrawRequested:
		a.drawBanner()

	case winloop.CloseRequested:
		// With a real window server the window is torn down first and
		// Destroyed ends the session; otherwise exit directly.
		if a.x11 != nil {
			if err := a.x11.DestroyWindow(id); err != nil {
				a.log.Err().Err(err).Log("destroy window")
				l.Exit()
			}
			return
		}
		l.Exit()

	case winloop.Destroyed:
		l.Exit()
	}
}

func (a *demoApp) DeviceEvent(l *winloop.Loop, id winloop.DeviceID, ev winloop.DeviceEvent) {
	a.log.Info().
		Uint64("device", uint64(id)).
		Str("event", fmt.Sprintf("%#v", ev)).
		Log("device event")
}

func (a *demoApp) UserEvent(l *winloop.Loop, ev any) {
	a.log.Info().Str("payload", fmt.Sprint(ev)).Log("user event")
}

func (a *demoApp) AboutToWait(l *winloop.Loop) {
	a.log.Debug().Log("about to wait")
}

func (a *demoApp) Exiting(l *winloop.Loop) {
	a.log.Info().Log("exiting")
}

func (a *demoApp) drawBanner() {
	if a.term == nil {
		return
	}
	screen := a.term.Screen()
	if screen == nil {
		return
	}
	screen.Clear()
	for i, r := range "winloop demo; Ctrl+C quits" {
		screen.SetContent(i, 0, r, nil, tcell.StyleDefault)
	}
	screen.Show()
}

func runSession(cmd *cobra.Command, args []string) error {
	// The term backend owns the terminal, so console logs would corrupt
	// the screen.
	quiet := backendName == "term" && logFile == ""
	logger, cleanup, err := newLogger(quiet)
	if err != nil {
		return err
	}
	defer cleanup()

	app := &demoApp{log: logger}

	var (
		backend winloop.Backend
		setup   func() error
	)
	switch backendName {
	case "headless":
		hb := headless.New()
		backend = hb
		setup = func() error {
			go injectTraffic(hb, duration)
			return nil
		}
	case "term":
		tb := term.New().WithMouse()
		backend = tb
		app.term = tb
	case "x11":
		xb := x11.New()
		backend = xb
		app.x11 = xb
		setup = func() error {
			id, err := xb.CreateWindow(winTitle, winWidth, winHeight)
			if err != nil {
				return err
			}
			logger.Info().Uint64("window", uint64(id)).Log("window created")
			return nil
		}
	default:
		return fmt.Errorf("unknown backend %q", backendName)
	}

	loop, err := winloop.New(
		winloop.WithBackend(backend),
		winloop.WithLogger(logger),
		winloop.WithMetrics(true),
	)
	if err != nil {
		return err
	}
	defer loop.Close()

	if setup != nil {
		if err := setup(); err != nil {
			return err
		}
	}

	if err := loop.Run(app); err != nil {
		return err
	}

	m := loop.Metrics()
	logger.Info().
		Uint64("iterations", m.Iterations).
		Uint64("windowEvents", m.WindowEvents).
		Uint64("deviceEvents", m.DeviceEvents).
		Uint64("redraws", m.RedrawsDispatched).
		Uint64("redrawsCoalesced", m.RedrawsCoalesced).
		Uint64("spuriousWakes", m.SpuriousWakes).
		Log("session metrics")
	return nil
}

// injectTraffic feeds the headless backend a scripted session: a resize,
// then key taps with redraws until the deadline, then shutdown.
func injectTraffic(b *headless.Backend, d time.Duration) {
	deadline := time.Now().Add(d)
	_ = b.InjectWindowEvent(1, winloop.Resized{Width: 800, Height: 600})
	for i := 0; time.Now().Before(deadline); i++ {
		_ = b.InjectDeviceEvent(0, winloop.Key{Code: uint32('a' + i%26), Pressed: true})
		_ = b.InjectDeviceEvent(0, winloop.Key{Code: uint32('a' + i%26), Pressed: false})
		_ = b.InjectRedraw(1)
		time.Sleep(200 * time.Millisecond)
	}
	_ = b.InjectShutdown()
}
