package pkg

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestUserDir_Lookup(t *testing.T) {
	base := t.TempDir()

	got := userDir(func() (string, error) { return base, nil }, ".config")
	if want := filepath.Join(base, Prefix()); got != want {
		t.Errorf("userDir() = %q, want %q", got, want)
	}
}

func TestUserDir_Fallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := userDir(
		func() (string, error) { return "", errors.New("unavailable") },
		".cache",
	)
	if want := filepath.Join(home, ".cache", Prefix()); got != want {
		t.Errorf("userDir() = %q, want %q", got, want)
	}
}

func TestPrefix_NotEmpty(t *testing.T) {
	p := Prefix()
	if p == "" || strings.HasPrefix(p, ".") {
		t.Errorf("Prefix() = %q", p)
	}
}

func TestVersion_Trimmed(t *testing.T) {
	v := Version()
	if v == "" || strings.TrimSpace(v) != v {
		t.Errorf("Version() = %q", v)
	}
}
