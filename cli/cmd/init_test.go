package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
)

type initCLI struct {
	Level   string           `default:"info"`
	Pretty  bool             `default:"true" negatable:""`
	Timeout time.Duration    `default:"5s"`
	Secret  string           `default:"x"    hidden:""`
	Version kong.VersionFlag ``

	Init Init `cmd:""`
}

func runInit(t *testing.T, base string, args ...string) error {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli,
		kong.Vars{ConfigIdentifier: base, "version": "test"},
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return cli.Init.Run(WithContext(t.Context(), ktx))
}

func TestInit(t *testing.T) {
	base := filepath.Join(t.TempDir(), "config")
	path := base + ".yaml"

	if err := runInit(t, base, "--level=debug"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := "level: debug\npretty: true\ntimeout: 5s\n"
	if string(data) != want {
		t.Errorf("config = %q, want %q", data, want)
	}

	for _, hidden := range []string{"secret", "help", "version"} {
		if strings.Contains(string(data), hidden) {
			t.Errorf("config contains %q", hidden)
		}
	}

	err = runInit(t, base)
	if !errors.Is(err, ErrWriteConfig) || !errors.Is(err, ErrFileExists) {
		t.Errorf("second init error = %v, want file exists", err)
	}

	if err := runInit(t, base, "--force", "--no-pretty"); err != nil {
		t.Fatalf("forced Run() error = %v", err)
	}

	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "pretty: false") || !strings.Contains(string(data), "level: info") {
		t.Errorf("forced config = %q", data)
	}
}
