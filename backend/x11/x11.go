// Package x11 provides a winloop backend over the X11 protocol, speaking
// directly to the X server via BurntSushi/xgb. It owns the connection and a
// reader goroutine that translates core protocol events into the engine's
// event taxonomy.
package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/joeycumines/go-winloop"
)

// coreDevice identifies the X core keyboard/pointer pair. Per-device
// identification needs the XInput extension, which this backend does not
// speak.
const coreDevice winloop.DeviceID = 0

const windowEventMask = xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskFocusChange

// Backend implements [winloop.Backend] over an X server connection. The
// connection is established by Start and survives run-session restarts, so
// the backend is restartable.
type Backend struct {
	mu     sync.Mutex
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	sink   winloop.EventSink
	wg     sync.WaitGroup

	wmProtocols    xproto.Atom
	wmDeleteWindow xproto.Atom
}

// New returns an unstarted X11 backend. The display is taken from the
// DISPLAY environment variable when the connection is established.
func New() *Backend {
	return &Backend{}
}

// Name implements [winloop.Backend].
func (b *Backend) Name() string { return "x11" }

// Start implements [winloop.Backend]: connects to the X server, interns the
// window-manager atoms, and spawns the event reader.
func (b *Backend) Start(sink winloop.EventSink) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		return fmt.Errorf("x11: backend already started")
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("x11: connect: %w", err)
	}

	protocols, err := internAtom(conn, "WM_PROTOCOLS")
	if err != nil {
		conn.Close()
		return err
	}
	deleteWindow, err := internAtom(conn, "WM_DELETE_WINDOW")
	if err != nil {
		conn.Close()
		return err
	}

	b.conn = conn
	b.screen = xproto.Setup(conn).DefaultScreen(conn)
	b.sink = sink
	b.wmProtocols = protocols
	b.wmDeleteWindow = deleteWindow

	b.wg.Add(1)
	go b.readEvents(conn, sink)
	return nil
}

// Stop implements [winloop.Backend]: closes the connection, which unblocks
// and terminates the reader.
func (b *Backend) Stop() error {
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.sink = nil
	b.mu.Unlock()
	if conn == nil {
		return nil
	}
	conn.Close()
	b.wg.Wait()
	return nil
}

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("x11: intern %s: %w", name, err)
	}
	return reply.Atom, nil
}

// CreateWindow creates and maps a top-level window, registering for the
// events the engine dispatches. Close requests arrive as
// [winloop.CloseRequested] via the WM_DELETE_WINDOW protocol rather than as
// a connection error.
func (b *Backend) CreateWindow(title string, width, height uint16) (winloop.WindowID, error) {
	b.mu.Lock()
	conn, screen := b.conn, b.screen
	protocols, deleteWindow := b.wmProtocols, b.wmDeleteWindow
	b.mu.Unlock()
	if conn == nil {
		return 0, fmt.Errorf("x11: backend not started")
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, fmt.Errorf("x11: allocate window id: %w", err)
	}

	err = xproto.CreateWindowChecked(conn, screen.RootDepth, wid, screen.Root,
		0, 0, width, height, 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{screen.WhitePixel, windowEventMask}).Check()
	if err != nil {
		return 0, fmt.Errorf("x11: create window: %w", err)
	}

	xproto.ChangeProperty(conn, xproto.PropModeReplace, wid,
		xproto.AtomWmName, xproto.AtomString, 8, uint32(len(title)), []byte(title))

	var atom [4]byte
	xgb.Put32(atom[:], uint32(deleteWindow))
	xproto.ChangeProperty(conn, xproto.PropModeReplace, wid,
		protocols, xproto.AtomAtom, 32, 1, atom[:])

	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		return 0, fmt.Errorf("x11: map window: %w", err)
	}
	return winloop.WindowID(wid), nil
}

// DestroyWindow destroys a window created with CreateWindow. The engine is
// notified via the DestroyNotify event the server sends back.
func (b *Backend) DestroyWindow(id winloop.WindowID) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("x11: backend not started")
	}
	if err := xproto.DestroyWindowChecked(conn, xproto.Window(id)).Check(); err != nil {
		return fmt.Errorf("x11: destroy window: %w", err)
	}
	return nil
}

// readEvents translates the X event stream until the connection closes.
// Push errors are ignored: they occur only once the loop can no longer
// observe events, at which point delivery is moot.
func (b *Backend) readEvents(conn *xgb.Conn, sink winloop.EventSink) {
	defer b.wg.Done()

	var (
		prevX, prevY int16
		havePrev     bool
	)

	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return // connection closed
		}
		if xerr != nil {
			continue
		}

		switch e := ev.(type) {
		case xproto.ExposeEvent:
			// Count==0 marks the last expose in a series; intermediate
			// ones would coalesce anyway, but skipping them avoids
			// pointless wake-ups.
			if e.Count == 0 {
				_ = sink.RequestRedraw(winloop.WindowID(e.Window))
			}

		case xproto.ConfigureNotifyEvent:
			_ = sink.PushWindowEvent(winloop.WindowID(e.Window), winloop.Resized{
				Width:  int(e.Width),
				Height: int(e.Height),
			})

		case xproto.FocusInEvent:
			_ = sink.PushWindowEvent(winloop.WindowID(e.Event), winloop.Focused{Gained: true})

		case xproto.FocusOutEvent:
			_ = sink.PushWindowEvent(winloop.WindowID(e.Event), winloop.Focused{Gained: false})

		case xproto.ClientMessageEvent:
			if e.Type == b.wmProtocols && e.Format == 32 &&
				xproto.Atom(e.Data.Data32[0]) == b.wmDeleteWindow {
				_ = sink.PushWindowEvent(winloop.WindowID(e.Window), winloop.CloseRequested{})
			}

		case xproto.DestroyNotifyEvent:
			_ = sink.NotifyWindowDestroyed(winloop.WindowID(e.Window))
			_ = sink.PushWindowEvent(winloop.WindowID(e.Window), winloop.Destroyed{})

		case xproto.KeyPressEvent:
			_ = sink.PushDeviceEvent(coreDevice, winloop.Key{Code: uint32(e.Detail), Pressed: true})

		case xproto.KeyReleaseEvent:
			_ = sink.PushDeviceEvent(coreDevice, winloop.Key{Code: uint32(e.Detail), Pressed: false})

		case xproto.ButtonPressEvent:
			_ = sink.PushDeviceEvent(coreDevice, winloop.Button{Button: uint32(e.Detail), Pressed: true})

		case xproto.ButtonReleaseEvent:
			_ = sink.PushDeviceEvent(coreDevice, winloop.Button{Button: uint32(e.Detail), Pressed: false})

		case xproto.MotionNotifyEvent:
			if havePrev {
				_ = sink.PushDeviceEvent(coreDevice, winloop.Motion{
					DX: float64(e.EventX - prevX),
					DY: float64(e.EventY - prevY),
				})
			}
			prevX, prevY, havePrev = e.EventX, e.EventY, true
		}
	}
}
