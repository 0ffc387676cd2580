package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/dopa/cli/cmd/repl"
	"github.com/ardnew/dopa/lang/stdlib"
	"github.com/ardnew/dopa/log"
)

// Repl starts an interactive session, optionally continuing the program
// given by scripts.
type Repl struct {
	Scripts   []string `arg:"" help:"Script files to run before the session, or '-' for stdin." name:"script" optional:""`
	MaxDepth  int      `       help:"Maximum depth of nested function calls."                     default:"${maxDepth}"`
	NoHistory bool     `       help:"Do not read or write the history file."`

	stderr io.Writer
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stderr := r.stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	// The terminal belongs to the session, so script output is shown by it
	// and read() sees end of input.
	out := repl.NewTranscript()

	it, err := newInterpreter(r.MaxDepth,
		stdlib.WithOutput(out),
		stdlib.WithInput(strings.NewReader("")),
	)
	if err != nil {
		return err
	}

	if len(r.Scripts) > 0 {
		src, err := loadScripts(ctx, r.Scripts)
		if err != nil {
			return err
		}

		if err := it.Parse(ctx, src.Text()); err != nil {
			report(stderr, err, src)

			return ErrScript.With(slog.String("command", "repl")).Wrap(err)
		}

		// A failing script still leaves its declarations to explore.
		if _, err := it.Execute(ctx); err != nil {
			report(stderr, err, src)
		}
	}

	return repl.Session{
		Interpreter: it,
		Output:      out,
		CacheDir:    r.cacheDir(ctx),
		Logger:      log.Default(),
	}.Run(ctx)
}

// cacheDir returns the directory of the history file, or "" to keep
// history in memory.
func (r *Repl) cacheDir(ctx context.Context) string {
	if r.NoHistory {
		return ""
	}

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[CacheIdentifier]
}
