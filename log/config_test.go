package log

import (
	"io"
	"slices"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"trace":   LevelTrace,
		"TRACE":   LevelTrace,
		"debug":   LevelDebug,
		" Info ":  LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"info+2":  LevelInfo + 2,
		"bogus":   DefaultLevel,
		"":        DefaultLevel,
		"error-4": LevelWarn,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevel_String(t *testing.T) {
	tests := map[Level]string{
		LevelTrace:     "trace",
		LevelError:     "error",
		LevelInfo + 2:  "info+2",
		LevelTrace - 1: "trace-1",
	}

	for level, want := range tests {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", int(level), got, want)
		}
	}

	if got := slices.Collect(Levels()); !slices.Equal(got, []string{"trace", "debug", "info", "warn", "error"}) {
		t.Errorf("Levels() = %v", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":  FormatJSON,
		"JSON ": FormatJSON,
		"text":  FormatText,
		"xml":   DefaultFormat,
	}

	for in, want := range tests {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", in, got, want)
		}
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestConfig_formatTime(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc-3339-nano", "2023-10-15T14:30:45.123456789Z"},
		{"DateTime", "2023-10-15 14:30:45"},
		{"ms", "Oct 15 14:30:45.123"},
		{"15:04", "14:30"},
		{"none", ""},
		{"", ""},
		{"  \t ", ""},
	}

	for _, tt := range tests {
		c := WithTimeLayout(tt.layout)(config{})
		if got := c.formatTime(now); got != tt.want {
			t.Errorf("layout %q formats %q, want %q", tt.layout, got, tt.want)
		}
	}
}

func TestConfig_Options_AreIndependent(t *testing.T) {
	base := makeConfig(nil)
	changed := apply(base, WithLevel(LevelError), WithCaller(true), nil)

	if base.level != DefaultLevel || base.caller {
		t.Error("applying options modified the original config")
	}

	if changed.level != LevelError || !changed.caller {
		t.Errorf("changed = %+v", changed)
	}

	if base.output != io.Discard {
		t.Error("nil writer did not default to io.Discard")
	}
}

func BenchmarkConfig_formatTime(b *testing.B) {
	c := WithTimeLayout("RFC3339Nano")(config{})
	now := time.Now()

	for b.Loop() {
		_ = c.formatTime(now)
	}
}
