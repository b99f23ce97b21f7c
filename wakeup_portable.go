//go:build !linux && !darwin

package winloop

// newPlatformWakeSource returns the default wake source for targets without
// an fd-based primitive: a channel-backed source serviced by the runtime
// timer. Windows IOCP / browser callback integration would slot in here.
func newPlatformWakeSource() (WakeSource, error) {
	return newChanWakeSource(), nil
}
