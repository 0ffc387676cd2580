package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/dopa/lang"
	"github.com/ardnew/dopa/log"
)

const defaultEditor = "vi"

// editProgramCommand implements [tea.ExecCommand] for the edit-parse-retry
// loop. It writes the session source to a temporary file, opens
// the user's editor on it, and compiles the result. On a parse error the
// user is prompted to re-edit; declining ends the REPL.
type editProgramCommand struct {
	ctxFunc func() context.Context
	source  string
	edited  *lang.Program // nil when the edit was cancelled
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editProgramCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editProgramCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editProgramCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. An emptied file cancels the edit.
// It returns [ErrEditDeclined] if the user declines to fix a parse error.
func (c *editProgramCommand) Run() error {
	ctx := c.ctxFunc()

	content := c.source

	f, err := os.CreateTemp("", "dopa-repl-*.dopa")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		content = string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		prog, err := lang.Compile(ctx, content, lang.WithLogger(c.logger))

		c.logger.TraceContext(ctx, "editor parse attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", err == nil),
		)

		if err == nil {
			c.edited = prog

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", err)

		var le *lang.Error
		if errors.As(err, &le) {
			fmt.Fprint(c.stderr, le.Excerpt(content))
		}

		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor runs $EDITOR, or vi, on path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if strings.TrimSpace(editor) == "" {
		editor = defaultEditor
	}

	// $EDITOR may carry arguments, e.g. "code --wait".
	args := append(strings.Fields(editor), path)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
