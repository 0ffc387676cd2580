package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/ardnew/dopa/lang"
	"github.com/ardnew/dopa/lang/stdlib"
	"github.com/ardnew/dopa/log"
)

// Run executes scripts. Multiple scripts are joined in order into one
// program, so later scripts may call functions declared by earlier ones.
type Run struct {
	Scripts  []string      `arg:"" default:"-"           help:"Script files, or '-' for stdin."                   name:"script"`
	Print    bool          `                             help:"Print the value returned by the program."                        short:"P"`
	MaxDepth int           `       default:"${maxDepth}" help:"Maximum depth of nested function calls."`
	Timeout  time.Duration `                             help:"Cancel the program after this duration (0 = none)."              short:"t"`

	stdout io.Writer
	stderr io.Writer
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if r.Timeout > 0 {
		var cancelTimeout context.CancelFunc

		ctx, cancelTimeout = context.WithTimeout(ctx, r.Timeout)
		defer cancelTimeout()
	}

	stdout, stderr := r.writers()

	src, err := loadScripts(ctx, r.Scripts)
	if err != nil {
		return err
	}

	it, err := newInterpreter(r.MaxDepth, stdlib.WithOutput(stdout), stdlib.WithInput(stdin))
	if err != nil {
		return err
	}

	if err := it.Parse(ctx, src.Text()); err != nil {
		report(stderr, err, src)

		return ErrScript.With(slog.String("command", "run")).Wrap(err)
	}

	start := time.Now()

	result, err := it.Execute(ctx)
	if err != nil {
		report(stderr, err, src)

		return ErrScript.With(slog.String("command", "run")).Wrap(err)
	}

	log.DebugContext(ctx, "program complete",
		slog.Int("scripts", len(src)),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("result", result.Type().String()),
	)

	if r.Print && !result.IsUndefined() {
		if _, err := fmt.Fprintln(stdout, result); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}

func (r *Run) writers() (stdout, stderr io.Writer) {
	stdout, stderr = r.stdout, r.stderr
	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	return stdout, stderr
}

// newInterpreter returns an interpreter logging to the package logger with
// the embedded library registered.
func newInterpreter(maxDepth int, opts ...stdlib.Option) (*lang.Interpreter, error) {
	it := lang.NewInterpreter(
		lang.WithLogger(log.Default()),
		lang.WithMaxDepth(maxDepth),
	)

	opts = append([]stdlib.Option{stdlib.WithLogger(log.Default())}, opts...)

	if err := stdlib.Register(it, opts...); err != nil {
		return nil, err
	}

	return it, nil
}
