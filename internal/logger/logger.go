// Package logger is the process-wide structured logger. Records go through
// log/slog; a LogContext attached to the context is expanded into leading
// fields so every round trip of one operation shares an op_id.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var (
	// level is shared by every handler built below, so SetLevel never
	// needs to rebuild the handler chain.
	level = new(slog.LevelVar)

	mu       sync.RWMutex
	out      io.Writer = os.Stderr
	closer   io.Closer
	useColor bool
	format   = "text"
	base     *slog.Logger
)

func init() {
	useColor = isTerminal(os.Stderr.Fd())
	rebuild()
}

// rebuild installs a handler for the current output and format.
func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		h = NewColorTextHandler(out, level, useColor)
	}
	base = slog.New(contextHandler{h})
}

// ParseLevel maps DEBUG, INFO, WARN or ERROR in any case to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(name string) {
	if l, err := ParseLevel(name); err == nil {
		level.Set(l)
	}
}

// CurrentLevel reports the minimum level being logged.
func CurrentLevel() slog.Level { return level.Level() }

// SetFormat switches between "text" and "json". Unknown names are ignored.
func SetFormat(name string) {
	name = strings.ToLower(name)
	if name != "text" && name != "json" {
		return
	}
	mu.Lock()
	format = name
	mu.Unlock()
	rebuild()
}

// Init applies cfg. Output can be "stdout", "stderr", or a file path; a file
// opened by an earlier Init is closed when replaced.
func Init(cfg Config) error {
	if cfg.Output != "" {
		w, color, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}
		setOutput(w, color)
	}
	SetLevel(cfg.Level)
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}
	rebuild()
	return nil
}

func setOutput(w io.Writer, color bool) {
	mu.Lock()
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	out = w
	useColor = color
	if c, ok := w.(*os.File); ok && c != os.Stdout && c != os.Stderr {
		closer = c
	}
	mu.Unlock()
}

func openOutput(name string) (io.Writer, bool, error) {
	switch strings.ToLower(name) {
	case "stdout":
		return os.Stdout, isTerminal(os.Stdout.Fd()), nil
	case "stderr":
		return os.Stderr, isTerminal(os.Stderr.Fd()), nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log file %q: %w", name, err)
	}
	return f, false, nil
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func logAt(ctx context.Context, l slog.Level, msg string, args []any) {
	if l < level.Level() {
		return
	}
	current().Log(ctx, l, msg, args...)
}

// Debug logs msg with alternating key/value args.
func Debug(msg string, args ...any) { logAt(context.Background(), slog.LevelDebug, msg, args) }

func Info(msg string, args ...any) { logAt(context.Background(), slog.LevelInfo, msg, args) }

func Warn(msg string, args ...any) { logAt(context.Background(), slog.LevelWarn, msg, args) }

func Error(msg string, args ...any) { logAt(context.Background(), slog.LevelError, msg, args) }

// DebugCtx logs at debug level with the LogContext fields of ctx first.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelDebug, msg, args)
}

func InfoCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelInfo, msg, args)
}

func WarnCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelWarn, msg, args)
}

func ErrorCtx(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelError, msg, args)
}

// contextHandler expands a LogContext found in the record's context into
// leading attributes before delegating.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	lc := FromContext(ctx)
	if lc == nil {
		return h.Handler.Handle(ctx, r)
	}
	nr := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	nr.AddAttrs(lc.attrs()...)
	r.Attrs(func(a slog.Attr) bool {
		nr.AddAttrs(a)
		return true
	})
	return h.Handler.Handle(ctx, nr)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}
