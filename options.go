package winloop

import (
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

// loopOptions holds configuration options for Loop creation.
type loopOptions struct {
	logger         *logiface.Logger[logiface.Event]
	backend        Backend
	wakeSource     WakeSource
	clock          func() time.Time
	queueCapacity  int
	metricsEnabled bool
}

// --- Loop Options ---

// Option configures a Loop instance.
type Option interface {
	applyOption(*loopOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyOptionFunc func(*loopOptions) error
}

func (o *optionImpl) applyOption(opts *loopOptions) error {
	return o.applyOptionFunc(opts)
}

// WithLogger attaches a structured logger to the loop. The engine logs
// session boundaries and fatal conditions at debug/error level and
// per-iteration detail at trace level. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithBackend binds a platform backend to the loop. The backend is started
// by [New] and stopped by [Loop.Close]; its capabilities (own wake source,
// single-shot) are probed once, at construction.
//
// Without this option the loop has no native event producer: only proxies
// and direct sink access feed it. That is the headless configuration used
// by most tests.
func WithBackend(b Backend) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.backend = b
		return nil
	}}
}

// WithWakeSource overrides the wake primitive the loop idles on. Takes
// precedence over both the platform default and a backend-provided source.
func WithWakeSource(ws WakeSource) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.wakeSource = ws
		return nil
	}}
}

// WithQueueCapacity sets the initial capacity of the pending-event queue.
// The queue grows past it as needed; this only tunes allocation.
func WithQueueCapacity(n int) Option {
	return &optionImpl{func(opts *loopOptions) error {
		if n < 0 {
			return fmt.Errorf("winloop: negative queue capacity %d", n)
		}
		opts.queueCapacity = n
		return nil
	}}
}

// WithMetrics enables runtime counters on the Loop, readable via
// [Loop.Metrics]. Counters are plain atomics; overhead is a few adds per
// iteration.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// WithClock overrides the time source used for StartCause derivation and
// deadline arithmetic. Intended for tests; defaults to [time.Now].
func WithClock(now func() time.Time) Option {
	return &optionImpl{func(opts *loopOptions) error {
		if now == nil {
			return fmt.Errorf("winloop: nil clock")
		}
		opts.clock = now
		return nil
	}}
}

// defaultQueueCapacity is the initial pending-event queue capacity.
const defaultQueueCapacity = 64

// resolveOptions applies Option instances to loopOptions.
func resolveOptions(opts []Option) (*loopOptions, error) {
	cfg := &loopOptions{
		queueCapacity: defaultQueueCapacity,
		clock:         time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
