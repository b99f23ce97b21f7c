// Package term provides a winloop backend over a terminal via tcell. The
// terminal surfaces as a single window ([RootWindow]): resizes arrive as
// window events, key and mouse input as device events, and Ctrl+C as a
// close request, mirroring how a desktop window manager delivers the close
// button.
package term

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/joeycumines/go-winloop"
)

// RootWindow identifies the terminal itself.
const RootWindow winloop.WindowID = 1

// coreDevice identifies the terminal's keyboard/mouse pair.
const coreDevice winloop.DeviceID = 0

// Backend implements [winloop.Backend] over a tcell screen. It is
// single-shot: tcell screens cannot be reinitialized after Fini, so the
// engine refuses restarts up front instead of failing mid-run.
type Backend struct {
	mu      sync.Mutex
	screen  tcell.Screen
	owned   bool // screen created by Start, not injected
	mouse   bool
	started bool
	wg      sync.WaitGroup
}

// New returns an unstarted terminal backend; the screen is allocated and
// initialized by Start.
func New() *Backend {
	return &Backend{owned: true}
}

// NewWithScreen returns a backend over an injected screen, typically a
// [tcell.SimulationScreen] in tests. The screen must not yet be
// initialized; the backend takes ownership.
func NewWithScreen(s tcell.Screen) *Backend {
	return &Backend{screen: s}
}

// WithMouse enables mouse reporting; motion arrives as [winloop.Motion]
// deltas and button transitions as [winloop.Button] events. Must be called
// before the backend is started.
func (b *Backend) WithMouse() *Backend {
	b.mouse = true
	return b
}

// Name implements [winloop.Backend].
func (b *Backend) Name() string { return "term" }

// SingleShot implements [winloop.SingleShot].
func (b *Backend) SingleShot() bool { return true }

// Screen returns the underlying tcell screen for drawing. Valid between
// Start and Stop.
func (b *Backend) Screen() tcell.Screen {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.screen
}

// Start implements [winloop.Backend]: initializes the screen and spawns the
// input reader.
func (b *Backend) Start(sink winloop.EventSink) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return fmt.Errorf("term: backend already started")
	}

	screen := b.screen
	if b.owned && screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("term: allocate screen: %w", err)
		}
	}
	if screen == nil {
		return fmt.Errorf("term: backend already stopped")
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("term: init screen: %w", err)
	}
	screen.EnableFocus()
	if b.mouse {
		screen.EnableMouse()
	}
	b.screen = screen
	b.started = true

	b.wg.Add(1)
	go b.readEvents(screen, sink)
	return nil
}

// Stop implements [winloop.Backend]: finalizes the screen, which unblocks
// and terminates the reader.
func (b *Backend) Stop() error {
	b.mu.Lock()
	screen := b.screen
	b.screen = nil
	b.mu.Unlock()
	if screen == nil {
		return nil
	}
	screen.Fini()
	b.wg.Wait()
	return nil
}

// readEvents translates the tcell event stream until the screen is
// finalized. Push errors are ignored; they only occur once the loop can no
// longer observe events.
func (b *Backend) readEvents(screen tcell.Screen, sink winloop.EventSink) {
	defer b.wg.Done()

	var (
		prevX, prevY int
		havePrev     bool
		buttons      tcell.ButtonMask
	)

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return // screen finalized
		}

		switch e := ev.(type) {
		case *tcell.EventResize:
			w, h := e.Size()
			_ = sink.PushWindowEvent(RootWindow, winloop.Resized{Width: w, Height: h})
			// The old cell contents are gone after a resize.
			_ = sink.RequestRedraw(RootWindow)

		case *tcell.EventFocus:
			_ = sink.PushWindowEvent(RootWindow, winloop.Focused{Gained: e.Focused})

		case *tcell.EventKey:
			if e.Key() == tcell.KeyCtrlC {
				_ = sink.PushWindowEvent(RootWindow, winloop.CloseRequested{})
				continue
			}
			_ = sink.PushDeviceEvent(coreDevice, winloop.Key{Code: keyCode(e), Pressed: true})

		case *tcell.EventMouse:
			x, y := e.Position()
			if havePrev && (x != prevX || y != prevY) {
				_ = sink.PushDeviceEvent(coreDevice, winloop.Motion{
					DX: float64(x - prevX),
					DY: float64(y - prevY),
				})
			}
			prevX, prevY, havePrev = x, y, true

			next := e.Buttons() &^ (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight)
			for bit := tcell.ButtonMask(1); bit <= tcell.Button8; bit <<= 1 {
				was, is := buttons&bit != 0, next&bit != 0
				if was != is {
					_ = sink.PushDeviceEvent(coreDevice, winloop.Button{
						Button:  buttonNumber(bit),
						Pressed: is,
					})
				}
			}
			buttons = next
		}
	}
}

// keyCode flattens a tcell key event into a single code: printable input is
// the rune itself, everything else the tcell key constant offset beyond the
// Unicode range so the two cannot collide.
func keyCode(e *tcell.EventKey) uint32 {
	if e.Key() == tcell.KeyRune {
		return uint32(e.Rune())
	}
	return uint32(e.Key()) + 0x110000
}

func buttonNumber(bit tcell.ButtonMask) uint32 {
	var n uint32
	for bit != 0 {
		bit >>= 1
		n++
	}
	return n
}
