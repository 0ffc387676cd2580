package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestResolveYAML(t *testing.T) {
	const doc = `
log:
  level: debug
  pretty: false
log_time_layout: kitchen
encoding: latin1
depth: 12
ratio: 0.5
paths: [a, 2]
`

	r, err := resolveYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolveYAML() error = %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-pretty", false},
		{"log-time-layout", "kitchen"},
		{"encoding", "latin1"},
		{"depth", "12"},
		{"ratio", "0.5"},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: tt.flag}})
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%s) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}

	paths, _ := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "paths"}})
	if seq, ok := paths.([]any); !ok || len(seq) != 2 || seq[0] != "a" || seq[1] != "2" {
		t.Errorf("Resolve(paths) = %#v", paths)
	}
}

func TestResolveYAMLEmpty(t *testing.T) {
	r, err := resolveYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("resolveYAML() error = %v", err)
	}

	if got, _ := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}}); got != nil {
		t.Errorf("Resolve() = %#v, want nil", got)
	}
}

func TestResolveYAMLMalformed(t *testing.T) {
	if _, err := resolveYAML(strings.NewReader("log: [unclosed")); err == nil {
		t.Error("resolveYAML() error = nil, want parse error")
	}
}
