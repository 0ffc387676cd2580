package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/dopa/log"
	"github.com/ardnew/dopa/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init writes a configuration file holding the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	base, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	confPath := base + ".yaml"

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !i.Force {
		flags |= os.O_EXCL
	}

	file, err := os.OpenFile(confPath, flags, 0o600)
	if os.IsExist(err) {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}
	defer file.Close()

	enc := yaml.NewEncoder(file, yaml.Indent(defaultConfigIndent))
	defer enc.Close()

	if err := enc.EncodeContext(ctx, configValues(ktx)); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// configValues returns the current value of every configurable flag,
// keyed by flag name. Flags of the selected command itself are skipped.
func configValues(ktx *kong.Context) yaml.MapSlice {
	ignore := []string{"help", "version", profile.Tag}

	var own []*kong.Flag
	if node := ktx.Selected(); node != nil {
		own = node.Flags
	}

	var out yaml.MapSlice

	for _, flag := range ktx.Flags() {
		if flag.Hidden || slices.Contains(own, flag) || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := configValue(ktx.FlagValue(flag)); ok {
			out = append(out, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	slices.SortFunc(out, func(a, b yaml.MapItem) int {
		return strings.Compare(a.Key.(string), b.Key.(string))
	})

	return out
}

// configValue converts a flag value to a YAML scalar, or reports false for
// values that are unset.
func configValue(v any) (any, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case string:
		return v, v != ""
	case []string:
		return v, len(v) > 0
	case bool, int, int64, uint, uint64, float64:
		return v, true
	case time.Duration:
		return v.String(), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
