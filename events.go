package winloop

// WindowID identifies a window for event routing and redraw coalescing.
// Identities are assigned by the backend and are opaque to the engine.
type WindowID uint64

// DeviceID identifies an input device. Opaque to the engine.
type DeviceID uint64

// WindowEvent is the sealed set of per-window events the engine delivers.
// The engine treats all variants as opaque payloads except
// [RedrawRequested], which it synthesizes itself when coalescing redraw
// requests.
type WindowEvent interface {
	isWindowEvent()
}

// RedrawRequested is delivered at most once per window per iteration, after
// all non-redraw events, when a redraw was requested for that window.
type RedrawRequested struct{}

// CloseRequested reports that the user or the system asked the window to
// close. The application decides whether to exit.
type CloseRequested struct{}

// Resized reports the window's new inner size in native pixels (or terminal
// cells for the terminal backend).
type Resized struct {
	Width  int
	Height int
}

// Focused reports a change of keyboard focus.
type Focused struct {
	Gained bool
}

// Destroyed reports that the window is gone. After delivery the engine drops
// any pending redraw coalescing state for the window.
type Destroyed struct{}

func (RedrawRequested) isWindowEvent() {}
func (CloseRequested) isWindowEvent()  {}
func (Resized) isWindowEvent()         {}
func (Focused) isWindowEvent()         {}
func (Destroyed) isWindowEvent()       {}

// DeviceEvent is the sealed set of raw device events. Input translation
// (layouts, IME, scancode mapping) is out of scope; payloads carry whatever
// the backend natively reports.
type DeviceEvent interface {
	isDeviceEvent()
}

// Key reports a raw key transition. Code is the backend's native keycode.
type Key struct {
	Code    uint32
	Pressed bool
}

// Motion reports relative pointer motion.
type Motion struct {
	DX float64
	DY float64
}

// Button reports a raw button transition. Button is the backend's native
// button index.
type Button struct {
	Button  uint32
	Pressed bool
}

func (Key) isDeviceEvent()    {}
func (Motion) isDeviceEvent() {}
func (Button) isDeviceEvent() {}
