package stdlib

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/ardnew/dopa/lang"
)

func (l *library) print(_ context.Context, c lang.Call) (lang.Value, error) {
	var b strings.Builder

	for i, v := range c.Args {
		if i > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(v.String())
	}

	b.WriteByte('\n')

	if _, err := io.WriteString(l.out, b.String()); err != nil {
		return lang.Value{}, err
	}

	return lang.Value{}, nil
}

// read returns the next input line without its terminator, or undefined
// once the input is exhausted.
func (l *library) read(context.Context, lang.Call) (lang.Value, error) {
	line, err := l.lines.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return lang.Value{}, err
	}

	if line == "" && err != nil {
		return lang.Undefined(), nil
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	return lang.NewString(line), nil
}
