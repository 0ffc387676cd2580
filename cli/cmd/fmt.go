package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/dopa/lang"
)

// Fmt parses a script and writes it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as dopa source (default)."`
	JSON   JSON   `cmd:""                    help:"Format the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Format the syntax tree as YAML."`
	Tokens Tokens `cmd:""                    help:"Format the token sequence as YAML."`
}

// Input is the source argument shared by the fmt subcommands.
type Input struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`

	stdout io.Writer
	stderr io.Writer
}

func (in *Input) writers() (stdout, stderr io.Writer) {
	stdout, stderr = in.stdout, in.stderr
	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	return stdout, stderr
}

// read loads the source.
func (in *Input) read(ctx context.Context) (scripts, error) {
	return loadScripts(ctx, []string{in.Source})
}

// compile loads and parses the source, reporting parse errors.
func (in *Input) compile(ctx context.Context, format string) (*lang.Program, scripts, error) {
	src, err := in.read(ctx)
	if err != nil {
		return nil, nil, err
	}

	prog, err := lang.Compile(ctx, src.Text())
	if err != nil {
		_, stderr := in.writers()
		report(stderr, err, src)

		return nil, nil, ErrScript.With(slog.String("format", format)).Wrap(err)
	}

	return prog, src, nil
}

// Native formats input as dopa source.
type Native struct {
	Indent int  `default:"0" help:"Indent width in spaces; 0 indents with tabs." short:"i"`
	Write  bool `            help:"Rewrite the source file in place."             short:"w"`

	Input `embed:""`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, _, err := f.compile(ctx, "native")
	if err != nil {
		return err
	}

	indent := "\t"
	if f.Indent > 0 {
		indent = strings.Repeat(" ", f.Indent)
	}

	if !f.Write || f.Source == stdinSource {
		stdout, _ := f.writers()

		return wrapWrite(prog.Format(stdout, indent))
	}

	var buf bytes.Buffer
	if err := prog.Format(&buf, indent); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	info, err := os.Stat(f.Source)
	if err != nil {
		return ErrWriteOutput.With(slog.String("file", f.Source)).Wrap(err)
	}

	if err := os.WriteFile(f.Source, buf.Bytes(), info.Mode().Perm()); err != nil {
		return ErrWriteOutput.With(slog.String("file", f.Source)).Wrap(err)
	}

	return nil
}

// JSON formats the syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Input `embed:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, _, err := j.compile(ctx, "json")
	if err != nil {
		return err
	}

	stdout, _ := j.writers()

	return wrapWrite(prog.FormatJSON(stdout, j.Indent))
}

// YAML formats the syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Input `embed:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, _, err := y.compile(ctx, "yaml")
	if err != nil {
		return err
	}

	stdout, _ := y.writers()

	return wrapWrite(prog.FormatYAML(ctx, stdout, y.Indent))
}

// Tokens formats the token sequence of the source as YAML.
type Tokens struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Input `embed:""`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := t.read(ctx)
	if err != nil {
		return err
	}

	stdout, stderr := t.writers()

	tokens, err := lang.Tokenize(src.Text())
	if err != nil {
		report(stderr, err, src)

		return ErrScript.With(slog.String("format", "tokens")).Wrap(err)
	}

	return wrapWrite(lang.FormatTokens(ctx, stdout, tokens, t.Indent))
}

func wrapWrite(err error) error {
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
