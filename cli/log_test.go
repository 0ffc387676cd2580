package cli

import (
	"testing"

	"github.com/ardnew/dopa/log"
)

func TestLogConfigScan(t *testing.T) {
	defer log.Config(log.WithLevel(log.DefaultLevel), log.WithFormat(log.DefaultFormat),
		log.WithCaller(false), log.WithPretty(true))

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			"separate values",
			[]string{"run", "--log-level", "debug", "--log-format", "json", "x.dopa"},
			logConfig{Level: "debug", Format: "json", Pretty: true},
		},
		{
			"assigned values",
			[]string{"--log-level=trace", "--log-time-layout=kitchen", "--log-caller"},
			logConfig{Level: "trace", TimeLayout: "kitchen", Caller: true, Pretty: true},
		},
		{
			"negated booleans",
			[]string{"--no-log-pretty", "--log-caller=false"},
			logConfig{Pretty: false},
		},
		{
			"negated assigned",
			[]string{"--no-log-pretty=false", "--no-log-caller=true"},
			logConfig{Pretty: true},
		},
		{
			"stops at terminator",
			[]string{"--", "--log-level=error"},
			logConfig{Pretty: true},
		},
		{
			"value flag without value",
			[]string{"--log-level", "--log-caller"},
			logConfig{Caller: true, Pretty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logConfig{Pretty: true}
			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestLogConfigScanConfiguresDefault(t *testing.T) {
	defer log.Config(log.WithLevel(log.DefaultLevel))

	var f logConfig
	f.scan([]string{"--log-level=warn"})

	if got := log.Default().Level(); got != log.LevelWarn {
		t.Errorf("default level = %v, want warn", got)
	}
}
