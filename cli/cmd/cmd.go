package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/ardnew/dopa/lang"
)

type (
	kongContextKey struct{}
	encodingKey    struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongContextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongContextKey{}).(*kong.Context)

	return ktx
}

// defaultEncoding is the source encoding assumed when none is configured.
const defaultEncoding = "utf-8"

// WithEncoding returns a new context.Context selecting the character
// encoding of source input. The name is any WHATWG encoding label, such as
// "utf-8", "latin1" or "shift_jis".
func WithEncoding(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, encodingKey{}, name)
}

func encodingFrom(ctx context.Context) string {
	if name, ok := ctx.Value(encodingKey{}).(string); ok && name != "" {
		return name
	}

	return defaultEncoding
}

// decoding returns the decoder for the named encoding, or nil if source is
// already UTF-8.
func decoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, ErrEncoding.Wrap(err).With(slog.String("encoding", name))
	}

	if canonical, _ := htmlindex.Name(enc); canonical == defaultEncoding {
		return nil, nil
	}

	return enc, nil
}

// script is one source file of a program.
type script struct {
	name string
	text string
	line int // first line of text within the joined program
}

// scripts are the source files of one program, in order.
type scripts []script

// stdinSource names standard input as a source.
const stdinSource = "-"

// stdin is the reader behind [stdinSource].
var stdin io.Reader = os.Stdin

// Text returns the program source: each script's text in order, each
// terminated by a newline.
func (s scripts) Text() string {
	var b strings.Builder

	for _, sc := range s {
		b.WriteString(sc.text)
	}

	return b.String()
}

// locate maps a line of the joined program back to its script.
func (s scripts) locate(line int) (script, int) {
	for i := len(s) - 1; i >= 0; i-- {
		if line >= s[i].line {
			return s[i], line - s[i].line + 1
		}
	}

	return script{name: stdinSource}, line
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// loadScripts reads the named sources, decoding them with the encoding in
// ctx. A file named more than once, directly or through a link, is read
// once. "-" reads standard input.
func loadScripts(ctx context.Context, paths []string) (scripts, error) {
	enc, err := decoding(encodingFrom(ctx))
	if err != nil {
		return nil, err
	}

	var (
		out  scripts
		seen = make(map[fileKey]struct{})
		line = 1

		stdinRead bool
	)

	for _, path := range paths {
		if path == stdinSource {
			if stdinRead {
				continue
			}

			stdinRead = true
		}

		text, ok, err := readScript(ctx, path, enc, seen)
		if err != nil {
			return nil, ErrReadSource.With(slog.String("source", path)).Wrap(err)
		}

		if !ok {
			continue
		}

		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}

		out = append(out, script{name: path, text: text, line: line})
		line += strings.Count(text, "\n")
	}

	return out, nil
}

// readScript reads path unless it has been seen before.
func readScript(
	ctx context.Context,
	path string,
	enc encoding.Encoding,
	seen map[fileKey]struct{},
) (string, bool, error) {
	var r io.Reader

	if path == stdinSource {
		r = stdin
	} else {
		file, err := openUniqueFile(path, seen)
		if file == nil {
			return "", false, err
		}
		defer file.Close()

		r = file
	}

	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	text, err := lang.ReadSource(ctx, r)
	if err != nil {
		return "", false, err
	}

	return text, true, nil
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates. It
// returns a nil file and nil error for a duplicate.
func openUniqueFile(path string, seen map[fileKey]struct{}) (*os.File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()

		return nil, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			file.Close()

			return nil, nil
		}

		seen[key] = struct{}{}
	}

	return file, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
