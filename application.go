package winloop

// Application receives the dispatched event stream. All methods are invoked
// on the loop-owning thread, never concurrently, in a fixed order within
// each iteration:
//
//  1. NewEvents with the iteration's [StartCause]
//  2. Resumed, on the first iteration of a run session only (after Init)
//  3. WindowEvent / DeviceEvent / UserEvent, each queued event exactly
//     once, in FIFO arrival order
//  4. WindowEvent with [RedrawRequested], at most once per window
//  5. AboutToWait, always the last dispatch before the loop idles
//  6. Exiting, exactly once, when the session ends
//
// Callbacks may freely call [Loop.SetControlFlow], [Loop.Exit], and
// [Loop.CreateProxy] on the handle they are given. A panic raised from a
// callback is not recovered; it unwinds through the mode driver after the
// dispatch guard is cleared.
type Application interface {
	// NewEvents marks the start of an iteration.
	NewEvents(loop *Loop, cause StartCause)

	// Resumed is the uniform initialization point: dispatched once per run
	// session, right after NewEvents(Init), regardless of whether the
	// backend has a native suspend/resume lifecycle.
	Resumed(loop *Loop)

	// WindowEvent delivers a per-window event.
	WindowEvent(loop *Loop, id WindowID, ev WindowEvent)

	// DeviceEvent delivers a raw device event.
	DeviceEvent(loop *Loop, id DeviceID, ev DeviceEvent)

	// UserEvent delivers a payload sent through [Proxy.SendEvent]. The
	// payload is opaque to the engine.
	UserEvent(loop *Loop, ev any)

	// AboutToWait marks the end of an iteration's dispatch.
	AboutToWait(loop *Loop)

	// Exiting marks the end of the run session. The loop may be restarted
	// afterwards via RunOnDemand or Pump (backend permitting).
	Exiting(loop *Loop)
}

// UnimplementedApplication is a no-op [Application] for embedding, so
// applications only spell out the callbacks they care about.
type UnimplementedApplication struct{}

func (UnimplementedApplication) NewEvents(*Loop, StartCause)              {}
func (UnimplementedApplication) Resumed(*Loop)                            {}
func (UnimplementedApplication) WindowEvent(*Loop, WindowID, WindowEvent) {}
func (UnimplementedApplication) DeviceEvent(*Loop, DeviceID, DeviceEvent) {}
func (UnimplementedApplication) UserEvent(*Loop, any)                     {}
func (UnimplementedApplication) AboutToWait(*Loop)                        {}
func (UnimplementedApplication) Exiting(*Loop)                            {}
