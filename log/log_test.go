package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", logger.Format(), DefaultFormat)
	}

	if logger.caller != DefaultCaller || logger.pretty != DefaultPretty {
		t.Errorf("caller = %v, pretty = %v", logger.caller, logger.pretty)
	}
}

func TestLogger_Make_WithLevel_FiltersMessages(t *testing.T) {
	tests := []struct {
		level   Level
		log     func(Logger)
		written bool
	}{
		{LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{LevelDebug, func(l Logger) { l.Debug("m") }, true},
		{LevelInfo, func(l Logger) { l.Debug("m") }, false},
		{LevelWarn, func(l Logger) { l.Info("m") }, false},
		{LevelWarn, func(l Logger) { l.Warn("m") }, true},
		{LevelError, func(l Logger) { l.Warn("m") }, false},
		{LevelError, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level), WithPretty(false)))

			if got := buf.Len() > 0; got != tt.written {
				t.Errorf("written = %v, want %v: %q", got, tt.written, buf.String())
			}
		})
	}
}

func TestLogger_Make_WithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false), WithLevel(LevelTrace))
	logger.Trace("lex complete", slog.Int("tokens", 12))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}

	if record["level"] != "TRACE" || record["msg"] != "lex complete" || record["tokens"] != float64(12) {
		t.Errorf("record = %v", record)
	}
}

func TestLogger_Make_WithTimeLayout_None(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatJSON), WithPretty(false), WithTimeLayout("none")).Info("m")

	if strings.Contains(buf.String(), `"time"`) {
		t.Errorf("time written with layout none: %s", buf.String())
	}
}

func TestLogger_Make_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithPretty(false), WithFormat(FormatText)).Info("m")

	if !strings.Contains(buf.String(), "log_test.go:") {
		t.Errorf("source missing or wrong frame: %s", buf.String())
	}
}

func TestLogger_Wrap_OverridesConfiguration(t *testing.T) {
	var first, second bytes.Buffer

	base := Make(&first, WithLevel(LevelWarn), WithPretty(false))
	wrapped := base.Wrap(WithOutput(&second), WithLevel(LevelDebug))

	base.Info("dropped")
	wrapped.Debug("kept")

	if first.Len() != 0 {
		t.Errorf("base logger wrote %q", first.String())
	}

	if !strings.Contains(second.String(), "kept") {
		t.Errorf("wrapped logger wrote %q", second.String())
	}

	if base.Level() != LevelWarn {
		t.Errorf("base Level() = %v after Wrap", base.Level())
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer

		logger := Make(&buf, WithPretty(pretty), WithFormat(FormatText)).
			With(slog.String("component", "parser"))
		logger.Info("m", slog.Int("line", 3))

		out := buf.String()
		if !strings.Contains(out, "component=parser") || !strings.Contains(out, "line=3") {
			t.Errorf("pretty=%v output %q missing attributes", pretty, out)
		}
	}
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var logger Logger

	logger.Trace("m")
	logger.Info("m")
	logger.ErrorContext(t.Context(), "m")

	if logger.Enabled(t.Context(), LevelError) {
		t.Error("zero Logger reports enabled")
	}

	if got := logger.With(slog.String("k", "v")); got.Logger != nil {
		t.Error("With on zero Logger produced a handler")
	}

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Error("zero Logger does not report defaults")
	}
}

func TestLogger_ContextMethods_LogSuccessfully(t *testing.T) {
	type key struct{}

	ctx := context.WithValue(t.Context(), key{}, "v")

	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithPretty(false))

	logger.TraceContext(ctx, "trace")
	logger.DebugContext(ctx, "debug")
	logger.InfoContext(ctx, "info")
	logger.WarnContext(ctx, "warn")
	logger.ErrorContext(ctx, "error")

	if got := strings.Count(buf.String(), "\n"); got != 5 {
		t.Errorf("wrote %d records, want 5:\n%s", got, buf.String())
	}
}

func TestLogger_ConcurrentCalls_ThreadSafe(t *testing.T) {
	var buf safeBuffer

	logger := Make(&buf, WithPretty(true))

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 50 {
				logger.Info("concurrent", slog.Int("worker", i))
			}
		}()
	}

	wg.Wait()

	if got := strings.Count(buf.String(), "\n"); got != 16*50 {
		t.Errorf("wrote %d lines, want %d", got, 16*50)
	}
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Make(&bytes.Buffer{}, WithPretty(false))

	for b.Loop() {
		logger.Info("benchmark", slog.Int("n", 1))
	}
}

func BenchmarkLogger_Trace_Disabled(b *testing.B) {
	logger := Make(&bytes.Buffer{})

	for b.Loop() {
		logger.Trace("benchmark", slog.Int("n", 1))
	}
}
