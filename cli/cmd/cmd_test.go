package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func setStdin(t *testing.T, content string) {
	t.Helper()

	saved := stdin
	stdin = strings.NewReader(content)

	t.Cleanup(func() { stdin = saved })
}

func TestLoadScripts(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a.dopa", "var x = 1;")
	b := writeFile(t, dir, "b.dopa", "print(x);\nprint(x + 1);\n")
	link := filepath.Join(dir, "link.dopa")

	if err := os.Symlink(a, link); err != nil {
		t.Fatal(err)
	}

	setStdin(t, "return x;")

	src, err := loadScripts(t.Context(), []string{a, b, link, "-", a, "-"})
	if err != nil {
		t.Fatalf("loadScripts() error = %v", err)
	}

	if len(src) != 3 {
		t.Fatalf("loaded %d scripts, want 3", len(src))
	}

	want := "var x = 1;\nprint(x);\nprint(x + 1);\nreturn x;\n"
	if got := src.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	for i, wantLine := range []int{1, 2, 4} {
		if src[i].line != wantLine {
			t.Errorf("script %d starts at line %d, want %d", i, src[i].line, wantLine)
		}
	}

	if src[2].name != stdinSource {
		t.Errorf("stdin script named %q", src[2].name)
	}
}

func TestLocate(t *testing.T) {
	src := scripts{
		{name: "a", text: "1;\n", line: 1},
		{name: "b", text: "2;\n3;\n", line: 2},
		{name: "c", text: "4;\n", line: 4},
	}

	tests := []struct {
		line     int
		wantName string
		wantLine int
	}{
		{1, "a", 1},
		{2, "b", 1},
		{3, "b", 2},
		{4, "c", 1},
		{9, "c", 6},
		{0, stdinSource, 0},
	}

	for _, tt := range tests {
		sc, line := src.locate(tt.line)
		if sc.name != tt.wantName || line != tt.wantLine {
			t.Errorf("locate(%d) = %s:%d, want %s:%d", tt.line, sc.name, line, tt.wantName, tt.wantLine)
		}
	}
}

func TestLoadScriptsEncoding(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "latin1.dopa", "var s = \"caf\xe9\";\n")

	src, err := loadScripts(WithEncoding(t.Context(), "latin1"), []string{path})
	if err != nil {
		t.Fatalf("loadScripts() error = %v", err)
	}

	if got := src.Text(); got != "var s = \"café\";\n" {
		t.Errorf("decoded text = %q", got)
	}

	utf8, err := loadScripts(WithEncoding(t.Context(), "UTF8"), []string{writeFile(t, dir, "u.dopa", "\"é\";\n")})
	if err != nil || utf8.Text() != "\"é\";\n" {
		t.Errorf("utf-8 text = %q, %v", utf8.Text(), err)
	}

	if _, err := loadScripts(WithEncoding(t.Context(), "klingon"), []string{path}); !errors.Is(err, ErrEncoding) {
		t.Errorf("unknown encoding error = %v", err)
	}
}

func TestLoadScriptsMissing(t *testing.T) {
	_, err := loadScripts(t.Context(), []string{filepath.Join(t.TempDir(), "missing.dopa")})

	if !errors.Is(err, ErrReadSource) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want read source error", err)
	}
}

func TestErrorIs(t *testing.T) {
	err := ErrScript.With().Wrap(os.ErrClosed)

	if !errors.Is(err, ErrScript) || !errors.Is(err, os.ErrClosed) {
		t.Errorf("errors.Is failed for %v", err)
	}

	if errors.Is(err, ErrReadSource) {
		t.Error("matched a different sentinel")
	}

	if got := err.Error(); got != "script failed: file already closed" {
		t.Errorf("Error() = %q", got)
	}
}
