//go:build linux || darwin

package winloop

import (
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// maxPollMillis caps the poll(2) timeout to stay well inside the range of a
// C int. A wait that outlives the cap wakes early and rearms.
const maxPollMillis = 1 << 30

// fdWakeSource implements WakeSource over an eventfd (Linux) or a
// non-blocking self-pipe (Darwin), polled with a millisecond deadline.
type fdWakeSource struct {
	readFD  int
	writeFD int
	buf     [8]byte
	closed  atomic.Bool
}

func newFDWakeSource() (*fdWakeSource, error) {
	r, w, err := createWakeFd(0, wakeFdCloexec|wakeFdNonblock)
	if err != nil {
		return nil, err
	}
	return &fdWakeSource{readFD: r, writeFD: w}, nil
}

// newPlatformWakeSource returns the default wake source for this target.
func newPlatformWakeSource() (WakeSource, error) {
	return newFDWakeSource()
}

func (s *fdWakeSource) Wait(timeout time.Duration) (bool, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if s.closed.Load() {
			return false, errWakeSourceClosed
		}
		fds := [1]unix.PollFd{{Fd: int32(s.readFD), Events: unix.POLLIN}}
		n, err := unix.Poll(fds[:], pollMillis(timeout))
		if err == unix.EINTR {
			if timeout > 0 {
				timeout = time.Until(deadline)
				if timeout <= 0 {
					return false, nil
				}
			}
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return false, errWakeSourceClosed
		}
		s.drain()
		return true, nil
	}
}

// drain empties the wake fd so a level-triggered poll does not re-fire.
func (s *fdWakeSource) drain() {
	for {
		if _, err := unix.Read(s.readFD, s.buf[:]); err != nil {
			break
		}
	}
}

func (s *fdWakeSource) Notify() error {
	if s.closed.Load() {
		return errWakeSourceClosed
	}
	var one uint64 = 1
	buf := (*[8]byte)(unsafe.Pointer(&one))[:]
	for {
		_, err := unix.Write(s.writeFD, buf)
		switch err {
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			// Counter saturated or pipe full: a wake is already pending.
			return nil
		default:
			return err
		}
	}
}

func (s *fdWakeSource) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := unix.Close(s.readFD)
	if s.writeFD != s.readFD {
		if werr := unix.Close(s.writeFD); err == nil {
			err = werr
		}
	}
	return err
}

// pollMillis converts a wake timeout to poll(2) milliseconds, rounding up so
// a short WaitUntil never wakes before its deadline and never busy-spins.
func pollMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	if timeout == 0 {
		return 0
	}
	ms := (timeout + time.Millisecond - 1) / time.Millisecond
	if ms > maxPollMillis {
		return maxPollMillis
	}
	return int(ms)
}
