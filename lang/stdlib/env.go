package stdlib

import (
	"context"
	"os"

	"github.com/ardnew/mung"

	"github.com/ardnew/dopa/lang"
)

// getEnv returns the value of an environment variable, or undefined if it
// is not set.
func (l *library) getEnv(_ context.Context, c lang.Call) (lang.Value, error) {
	name, err := stringArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	if v, ok := l.lookup(name); ok {
		return lang.NewString(v), nil
	}

	return lang.Undefined(), nil
}

// pathPrefix prepends items to a list delimited like PATH.
func (l *library) pathPrefix(_ context.Context, c lang.Call) (lang.Value, error) {
	list, err := stringArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	items, err := stringArgs(c, 1)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.NewString(mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
	).String()), nil
}

// pathPrefixIf is pathPrefix filtered by the script or native function
// named by its second argument, which is called with each item and keeps
// it when it returns true.
func (l *library) pathPrefixIf(ctx context.Context, c lang.Call) (lang.Value, error) {
	list, err := stringArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	predicate, err := stringArg(c, 1)
	if err != nil {
		return lang.Value{}, err
	}

	items, err := stringArgs(c, 2)
	if err != nil {
		return lang.Value{}, err
	}

	var failed error

	keep := func(item string) bool {
		if failed != nil {
			return false
		}

		v, err := c.Interpreter.Call(ctx, predicate, lang.NewString(item))
		if err != nil {
			failed = err

			return false
		}

		return v.Bool()
	}

	out := mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
		mung.WithFilter(keep),
	).String()

	if failed != nil {
		return lang.Value{}, failed
	}

	return lang.NewString(out), nil
}
