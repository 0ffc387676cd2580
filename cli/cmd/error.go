package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/dopa/lang"
)

// Error represents a CLI command error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message, so that
// wrapped and annotated copies match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

var (
	ErrEncoding    = NewError("unsupported source encoding")
	ErrReadSource  = NewError("read source")
	ErrScript      = NewError("script failed")
	ErrWriteOutput = NewError("write output")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
)

// report writes a diagnostic for a positioned script error: its code and
// message, the script location, and the offending source line with a caret
// under the failing column. Errors without a position are not reported.
func report(w io.Writer, err error, src scripts) {
	var le *lang.Error
	if !errors.As(err, &le) || le.Line < 1 {
		return
	}

	sc, line := src.locate(le.Line)

	r := lipgloss.NewRenderer(w)
	head := r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	gutter := r.NewStyle().Foreground(lipgloss.Color("12"))
	caret := r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	detail := le.Message()
	if cause := errors.Unwrap(le); cause != nil {
		detail += ": " + cause.Error()
	}

	fmt.Fprintf(w, "%s %s\n", head.Render(fmt.Sprintf("error[%d]:", le.Code)), detail)
	fmt.Fprintf(w, "%s %s:%d:%d\n", gutter.Render("  -->"), sc.name, line, le.Column)

	excerpt := le.WithPosition(line, le.Column).Excerpt(sc.text)

	for l := range strings.Lines(excerpt) {
		l = strings.TrimSuffix(l, "\n")

		if strings.TrimSpace(l) == "^" {
			fmt.Fprintln(w, caret.Render(l))
		} else {
			fmt.Fprintln(w, l)
		}
	}
}
