package stdlib

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/dopa/lang"
)

// getFiles lists the regular files of a directory as structures with
// members FullName, Name and Length.
func (l *library) getFiles(ctx context.Context, c lang.Call) (lang.Value, error) {
	return l.list(ctx, c, func(e fs.DirEntry) bool { return e.Type().IsRegular() })
}

// getDirectories lists the subdirectories of a directory as structures with
// members FullName and Name.
func (l *library) getDirectories(ctx context.Context, c lang.Call) (lang.Value, error) {
	return l.list(ctx, c, fs.DirEntry.IsDir)
}

func (l *library) list(ctx context.Context, c lang.Call, keep func(fs.DirEntry) bool) (lang.Value, error) {
	dir, err := stringArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return lang.Value{}, err
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return lang.Value{}, err
	}

	out := lang.NewArray()

	for _, e := range entries {
		if !keep(e) {
			continue
		}

		info := lang.NewStructure()
		info.Fields().Set("FullName", lang.NewString(filepath.Join(abs, e.Name())))
		info.Fields().Set("Name", lang.NewString(e.Name()))

		if !e.IsDir() {
			fi, err := e.Info()
			if err != nil {
				return lang.Value{}, err
			}

			info.Fields().Set("Length", lang.NewInt(fi.Size()))
		}

		out.Array().Push(info)
	}

	l.logger.DebugContext(ctx, c.Name,
		slog.String("directory", abs),
		slog.Int("entries", out.Array().Len()),
	)

	return out, nil
}
