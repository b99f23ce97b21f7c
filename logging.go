package winloop

import (
	"github.com/joeycumines/logiface"
)

// Logging is injected via [WithLogger] and flows through [logiface]. The
// builder chain is nil-safe, so call sites log unconditionally: with no
// logger configured every builder method is a no-op.
//
// Levels: session boundaries and capability decisions log at debug, fatal
// wake/panic conditions at error, per-iteration detail at trace.

// logDebug returns a debug-level builder annotated with the loop identity.
func (l *Loop) logDebug() *logiface.Builder[logiface.Event] {
	return l.annotate(l.logger.Debug())
}

// logTrace returns a trace-level builder annotated with the loop identity.
func (l *Loop) logTrace() *logiface.Builder[logiface.Event] {
	return l.annotate(l.logger.Trace())
}

// logErr returns an error-level builder annotated with the loop identity.
func (l *Loop) logErr() *logiface.Builder[logiface.Event] {
	return l.annotate(l.logger.Err())
}

func (l *Loop) annotate(b *logiface.Builder[logiface.Event]) *logiface.Builder[logiface.Event] {
	return b.Uint64("loop", l.id).Stringer("state", l.state.Load())
}
