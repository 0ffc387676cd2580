package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Code identifies a class of script error. Codes are grouped by the stage
// that raises them: 1xxxx lexing, 2xxxx parsing, 3xxxx execution.
type Code int

const (
	CodeLex              Code = 10000 // lex
	CodeSyntax           Code = 20000 // syntax
	CodeExecution        Code = 30000 // execution
	CodeAssignNotFound   Code = 30001 // assignment target not found
	CodeFunctionNotFound Code = 30002 // function not found
	CodeVariableNotFound Code = 30003 // variable not found
)

// catalog holds the message template of each code. Templates use positional
// placeholders {0}, {1}, ... filled from the arguments given to [NewError].
var catalog = map[Code]string{
	CodeLex:              "Parsing error",
	CodeSyntax:           "Syntax error",
	CodeExecution:        "Execution error",
	CodeAssignNotFound:   "Variable {0} not found",
	CodeFunctionNotFound: "Function {0} not found",
	CodeVariableNotFound: "Variable {0} not found",
}

// Message expands the code's template with args. Placeholders without a
// matching argument expand to the empty string.
func (c Code) Message(args ...string) string {
	tmpl, ok := catalog[c]
	if !ok {
		return "error " + strconv.Itoa(int(c))
	}

	if !strings.Contains(tmpl, "{") {
		return tmpl
	}

	var b strings.Builder

	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			break
		}

		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			break
		}

		b.WriteString(tmpl[:open])

		if n, err := strconv.Atoi(tmpl[open+1 : open+end]); err == nil {
			if n >= 0 && n < len(args) {
				b.WriteString(args[n])
			}
		} else {
			b.WriteString(tmpl[open : open+end+1])
		}

		tmpl = tmpl[open+end+1:]
	}

	b.WriteString(tmpl)

	return b.String()
}

// Sentinel errors, one per code. They match any [Error] with the same code
// under [errors.Is].
var (
	ErrLex              = NewError(CodeLex)
	ErrSyntax           = NewError(CodeSyntax)
	ErrExecution        = NewError(CodeExecution)
	ErrAssignNotFound   = NewError(CodeAssignNotFound)
	ErrFunctionNotFound = NewError(CodeFunctionNotFound)
	ErrVariableNotFound = NewError(CodeVariableNotFound)
)

// Error is a script error carrying a stable numeric code and the 1-based
// source position that raised it. It implements both error and
// slog.LogValuer.
type Error struct {
	Code   Code
	Line   int
	Column int

	msg   string
	err   error       // wrapped cause
	attrs []slog.Attr // structured logging attributes
}

// NewError returns an Error for code whose message is the code's template
// expanded with args.
func NewError(code Code, args ...string) *Error {
	return &Error{Code: code, msg: code.Message(args...)}
}

// WrapError converts err into an Error. An Error anywhere in err's chain is
// returned unchanged so that positioned script errors propagate as raised;
// any other error becomes the cause of a new Error with the given code.
func WrapError(code Code, err error) *Error {
	if err == nil {
		return nil
	}

	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return NewError(code).Wrap(err)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.msg)

	if e.Line > 0 {
		b.WriteString(" at line ")
		b.WriteString(strconv.Itoa(e.Line))
		b.WriteString(", column ")
		b.WriteString(strconv.Itoa(e.Column))
	}

	if e.err != nil {
		b.WriteString(": ")
		b.WriteString(e.err.Error())
	}

	return b.String()
}

// Message returns the expanded message without position or cause.
func (e *Error) Message() string { return e.msg }

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.Code == e.Code
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)
	attrs = append(attrs,
		slog.Int("code", int(e.Code)),
		slog.String("error", e.msg),
	)

	if e.Line > 0 {
		attrs = append(attrs,
			slog.Int("line", e.Line),
			slog.Int("column", e.Column),
		)
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	c.attrs = append(append(c.attrs, e.attrs...), attrs...)

	return &c
}

// WithPosition returns a copy of e located at line and column.
func (e *Error) WithPosition(line, column int) *Error {
	c := *e
	c.Line, c.Column = line, column

	return &c
}

// at is shorthand for positioning an error at a node.
func (e *Error) at(p Pos) *Error { return e.WithPosition(p.Line, p.Column) }

// Excerpt renders the source line holding the error with a caret under its
// column. It returns the empty string if the position is not within source.
func (e *Error) Excerpt(source string) string {
	lines := strings.Split(source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.Line)
	line := strings.TrimRight(lines[e.Line-1], "\r")

	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(line)
	b.WriteByte('\n')

	// 2 leading spaces + " | "
	b.WriteString(strings.Repeat(" ", len(num)+5))

	if e.Column > 1 {
		b.WriteString(strings.Repeat(" ", e.Column-1))
	}

	b.WriteString("^\n")

	return b.String()
}

// execErrorf returns an execution error whose cause is the formatted detail.
func execErrorf(p Pos, format string, args ...any) *Error {
	return ErrExecution.Wrap(fmt.Errorf(format, args...)).at(p)
}

// Errorf returns an execution error whose cause is the formatted message.
// Native functions use it to fail; the interpreter positions the error at
// the failing call.
func Errorf(format string, args ...any) *Error {
	return ErrExecution.Wrap(fmt.Errorf(format, args...))
}
