package cmd

import (
	"testing"

	"github.com/alecthomas/kong"
)

func TestReplCacheDir(t *testing.T) {
	var cli struct {
		Repl Repl `cmd:""`
	}

	parser, err := kong.New(&cli, kong.Vars{CacheIdentifier: "/cache/dopa", "maxDepth": "64"})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse([]string{"repl"})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithContext(t.Context(), ktx)

	if got := cli.Repl.cacheDir(ctx); got != "/cache/dopa" {
		t.Errorf("cacheDir() = %q", got)
	}

	if cli.Repl.MaxDepth != 64 {
		t.Errorf("MaxDepth = %d", cli.Repl.MaxDepth)
	}

	cli.Repl.NoHistory = true
	if got := cli.Repl.cacheDir(ctx); got != "" {
		t.Errorf("cacheDir() with --no-history = %q", got)
	}

	if got := (&Repl{}).cacheDir(t.Context()); got != "" {
		t.Errorf("cacheDir() without kong context = %q", got)
	}
}
