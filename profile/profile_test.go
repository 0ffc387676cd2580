package profile

import (
	"slices"
	"testing"
)

func TestMake(t *testing.T) {
	got := Make(WithMode("cpu"), nil, WithPath("/tmp/p"), WithQuiet(true), WithMode("heap"))

	want := Config{Mode: "heap", Path: "/tmp/p", Quiet: true}
	if got != want {
		t.Errorf("Make() = %+v, want %+v", got, want)
	}
}

func TestStartDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty mode", Make()},
		{"unknown mode", Make(WithMode("nope"), WithPath(t.TempDir()), WithQuiet(true))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.cfg.Start()
			if _, ok := s.(ignore); !ok {
				t.Errorf("Start() = %T, want no-op", s)
			}

			s.Stop()
			s.Stop()
		})
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !slices.IsSorted(modes) {
		t.Errorf("Modes() not sorted: %v", modes)
	}

	if Enabled != slices.Contains(modes, "cpu") {
		t.Errorf("Enabled = %v, Modes() = %v", Enabled, modes)
	}
}
