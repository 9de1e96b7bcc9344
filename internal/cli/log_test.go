package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/obj2acf/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))

	time.Sleep(10 * time.Millisecond)
	prog.done("Converted 1 bodies")

	if !bytes.Contains(buf.Bytes(), []byte("Converted 1 bodies")) {
		t.Errorf("progress.done() output = %q, should contain message", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should return default logger when none set")
	}

	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()
	run := "0123456789abcdef"

	h.OnStageStart(ctx, run, "stations")
	h.OnStageComplete(ctx, run, "stations", time.Millisecond, nil)
	h.OnStageComplete(ctx, run, "canonicalize", time.Millisecond, errors.New("ring too large"))
	h.OnSkip(ctx, run, "wing_l", "looks like a wing")
	h.OnRead(ctx, "mesh", "plane.obj", 128)
	h.OnWrite(ctx, "plane_out.acf", 256, "af1349b9f5f9a1a6a0404dea36dcc949")

	out := buf.String()
	for _, want := range []string{"stage start", "stage done", "stage failed", "ring too large", "wing_l", "plane.obj", "af1349b9"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, run) {
		t.Error("run IDs should be shortened")
	}
}

func TestSetLogLevel_RegistersHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	c := New(&bytes.Buffer{}, LogInfo)
	c.SetLogLevel(LogInfo)
	if _, ok := observability.Pipeline().(*logHooks); ok {
		t.Fatal("hooks registered at info level")
	}

	c.SetLogLevel(LogDebug)
	if _, ok := observability.Pipeline().(*logHooks); !ok {
		t.Error("pipeline hooks not registered at debug level")
	}
	if _, ok := observability.File().(*logHooks); !ok {
		t.Error("file hooks not registered at debug level")
	}
}
