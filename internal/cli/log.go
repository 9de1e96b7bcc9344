// Package cli implements the obj2acf command-line interface.
//
// This package wires the conversion pipeline, the mesh and .acf readers and
// the topology debugging tools into cobra commands. Status lines are styled
// with lipgloss; diagnostics go through charmbracelet/log on stderr.
//
// # Commands
//
// The main commands are:
//   - convert: Map a mesh group onto a body grid and patch the .acf file
//   - scan: List the groups of an OBJ file and how each would be treated
//   - extract: Print a body's station lines from an .acf file
//   - topology: Draw the vertex graph and BFS layering of a group
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every pipeline stage and file event. Loggers are passed through
// context.Context where commands hand work to helpers.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Converted 2 bodies (41ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks logs pipeline and file events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnStageStart(_ context.Context, runID, stage string) {
	h.logger.Debug("stage start", "run", short(runID), "stage", stage)
}

func (h *logHooks) OnStageComplete(_ context.Context, runID, stage string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("stage failed", "run", short(runID), "stage", stage, "duration", d, "err", err)
		return
	}
	h.logger.Debug("stage done", "run", short(runID), "stage", stage, "duration", d)
}

func (h *logHooks) OnSkip(_ context.Context, runID, group, reason string) {
	h.logger.Debug("skip", "run", short(runID), "group", group, "reason", reason)
}

func (h *logHooks) OnRead(_ context.Context, kind, path string, size int) {
	h.logger.Debug("read", "kind", kind, "path", path, "bytes", size)
}

func (h *logHooks) OnWrite(_ context.Context, path string, size int, digest string) {
	h.logger.Debug("write", "path", path, "bytes", size, "blake3", short(digest))
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
