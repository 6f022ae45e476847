package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds operation-scoped logging context. One LogContext spans
// every round trip of a single client operation (a whole directory
// enumeration, or both halves of an fstat).
type LogContext struct {
	OperationID string // Correlates all frames of one operation
	TraceID     string // OpenTelemetry trace ID
	SpanID      string // OpenTelemetry span ID
	Command     string // FIND, QUERY_PATH_INFORMATION, FSTAT, ...
	Server      string // Remote address
	TreeID      uint16
	UserID      uint16
	StartTime   time.Time
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext with a fresh operation id.
func NewLogContext(command string, tid uint16) *LogContext {
	return &LogContext{
		OperationID: uuid.NewString(),
		Command:     command,
		TreeID:      tid,
		StartTime:   time.Now(),
	}
}

// EnsureContext returns ctx unchanged when it already carries a LogContext,
// otherwise attaches a new one for command.
func EnsureContext(ctx context.Context, command string, tid uint16) (context.Context, *LogContext) {
	if lc := FromContext(ctx); lc != nil {
		return ctx, lc
	}
	lc := NewLogContext(command, tid)
	return WithContext(ctx, lc), lc
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

// attrs renders the populated fields in a fixed order.
func (lc *LogContext) attrs() []slog.Attr {
	out := make([]slog.Attr, 0, 7)
	if lc.OperationID != "" {
		out = append(out, slog.String(KeyOperationID, lc.OperationID))
	}
	if lc.TraceID != "" {
		out = append(out, slog.String(KeyTraceID, lc.TraceID))
	}
	if lc.SpanID != "" {
		out = append(out, slog.String(KeySpanID, lc.SpanID))
	}
	if lc.Command != "" {
		out = append(out, slog.String(KeyCommand, lc.Command))
	}
	if lc.Server != "" {
		out = append(out, slog.String(KeyServer, lc.Server))
	}
	if lc.TreeID != 0 {
		out = append(out, slog.Int(KeyTreeID, int(lc.TreeID)))
	}
	if lc.UserID != 0 {
		out = append(out, slog.Int(KeyUserID, int(lc.UserID)))
	}
	return out
}
