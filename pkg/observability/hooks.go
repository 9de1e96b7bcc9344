// Package observability provides hooks for metrics, tracing, and logging.
//
// The conversion libraries never log. Consumers that want to watch a run
// register hooks at startup and receive one event per pipeline stage and one
// per file read or written.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetFileHooks(&myFileHooks{})
//	    // ... run application
//	}
//
// The pipeline calls hooks to emit events:
//
//	observability.Pipeline().OnStageStart(ctx, runID, "stations")
//	// ... do work ...
//	observability.Pipeline().OnStageComplete(ctx, runID, "stations", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the conversion pipeline. runID
// identifies one conversion; stage names are the pipeline.Stage* constants.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, runID, stage string)
	OnStageComplete(ctx context.Context, runID, stage string, duration time.Duration, err error)

	// OnSkip records a mesh group that was not converted.
	OnSkip(ctx context.Context, runID, group, reason string)
}

// =============================================================================
// File Hooks
// =============================================================================

// FileHooks receives events from file reads and writes.
type FileHooks interface {
	// OnRead records an input file that was parsed.
	OnRead(ctx context.Context, kind, path string, size int)

	// OnWrite records an output file. digest is the BLAKE3 hex digest of
	// the written bytes.
	OnWrite(ctx context.Context, path string, size int, digest string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopPipelineHooks) OnSkip(context.Context, string, string, string) {}

// NoopFileHooks is a no-op implementation of FileHooks.
type NoopFileHooks struct{}

func (NoopFileHooks) OnRead(context.Context, string, string, int)  {}
func (NoopFileHooks) OnWrite(context.Context, string, int, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	fileHooks     FileHooks     = NoopFileHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any conversion.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetFileHooks registers custom file hooks.
func SetFileHooks(h FileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fileHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// File returns the registered file hooks.
func File() FileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fileHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	fileHooks = NoopFileHooks{}
}
