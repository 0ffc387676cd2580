package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// compiled is a cached compilation result.
type compiled struct {
	source  string
	program *Program
}

// programs caches compiled programs by the xxh3 hash of their source.
var programs sync.Map // map[uint64]compiled

// Compile tokenizes and analyses source. Programs are immutable, so the
// result is cached and shared by every caller compiling identical source.
func Compile(ctx context.Context, source string, opts ...Option) (*Program, error) {
	o := makeOptions(opts...)
	key := xxh3.HashString(source)

	if c, ok := programs.Load(key); ok && c.(compiled).source == source {
		o.logger.TraceContext(ctx, "compile cache hit",
			slog.Uint64("key", key),
		)

		return c.(compiled).program, nil
	}

	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}

	o.logger.TraceContext(ctx, "lex complete", slog.Int("tokens", len(tokens)))

	prog, err := Analyse(tokens)
	if err != nil {
		return nil, err
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("instructions", len(prog.Instructions)),
		slog.Int("functions", len(prog.Functions)),
		slog.Int("globals", len(prog.Variables)),
	)

	programs.Store(key, compiled{source: source, program: prog})

	return prog, nil
}

// readChunk is the size of each read from a source reader.
const readChunk = 32 << 10

// ReadSource reads all of r as script source. Reading runs ahead of the
// caller on a separate goroutine and stops early if ctx is cancelled.
func ReadSource(ctx context.Context, r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	var (
		b   strings.Builder
		buf = make([]byte, readChunk)
	)

	for {
		if err := ctx.Err(); err != nil {
			return "", context.Cause(ctx)
		}

		n, err := ra.Read(buf)
		b.Write(buf[:n])

		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}

		if err != nil {
			return "", err
		}
	}
}
