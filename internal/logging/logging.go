// Package logging is the structured-logging facade for the core. It
// generalizes the teacher's internal/debug namespaced gate (Log/LogIndexing/
// LogSearch/LogMCP, an MCP-mode stdio-suppression switch) into a small
// component-scoped wrapper over the standard library's log/slog — the one
// ambient concern where the pack's own idiom is stdlib, not a gap: no
// go.mod in the corpus pulls in zerolog/zap/logrus.
package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var (
	mu      sync.Mutex
	handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	quiet   atomic.Bool // set when running behind a stdio transport (MCP mode)
)

// SetQuiet suppresses all log output, mirroring the teacher's MCPMode
// switch that silences debug logging when stdout/stdin carry the protocol.
func SetQuiet(enabled bool) {
	quiet.Store(enabled)
}

// SetWriter rebinds the underlying handler, e.g. to a rotating file in
// production or a test buffer in unit tests.
func SetWriter(h slog.Handler) {
	mu.Lock()
	defer mu.Unlock()
	handler = h
}

// Logger scopes log output to one named component, e.g. "indexing",
// "search", "edit", "ucg" — the same namespacing the teacher's
// debug.LogIndexing/LogSearch/LogMCP helpers provide ad hoc.
type Logger struct {
	component string
}

// Component returns a Logger scoped to the given component name.
func Component(name string) Logger {
	return Logger{component: name}
}

func (l Logger) base() *slog.Logger {
	mu.Lock()
	h := handler
	mu.Unlock()
	return slog.New(h).With("component", l.component)
}

func (l Logger) Debug(msg string, args ...any) {
	if quiet.Load() {
		return
	}
	l.base().Debug(msg, args...)
}

func (l Logger) Info(msg string, args ...any) {
	if quiet.Load() {
		return
	}
	l.base().Info(msg, args...)
}

func (l Logger) Warn(msg string, args ...any) {
	if quiet.Load() {
		return
	}
	l.base().Warn(msg, args...)
}

func (l Logger) Error(msg string, args ...any) {
	if quiet.Load() {
		return
	}
	l.base().Error(msg, args...)
}

// WithContext returns l unchanged; it reads nothing from ctx. The core
// does not define its own context keys.
func (l Logger) WithContext(ctx context.Context) Logger {
	return l
}
