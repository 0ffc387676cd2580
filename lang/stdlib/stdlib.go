// Package stdlib is the embedded library of dopa scripts: console I/O,
// container helpers, filesystem listing, dates, timing, randomness and
// environment access. It is installed on an interpreter with [Register],
// which only uses [lang.Interpreter.AddFunction], so hosts may install a
// subset, replace entries, or add their own alongside it.
package stdlib

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"
	"time"

	"github.com/ardnew/dopa/lang"
	"github.com/ardnew/dopa/log"
)

// Option configures the library installed by [Register].
type Option func(options) options

type options struct {
	logger log.Logger
	out    io.Writer
	in     io.Reader
	rand   *rand.Rand
	lookup func(string) (string, bool)
	now    func() time.Time
}

func makeOptions(opts ...Option) options {
	o := options{
		out:    os.Stdout,
		in:     os.Stdin,
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		lookup: os.LookupEnv,
		now:    time.Now,
	}

	for _, opt := range opts {
		o = opt(o)
	}

	return o
}

// WithOutput directs print to w.
func WithOutput(w io.Writer) Option {
	return func(o options) options {
		o.out = w

		return o
	}
}

// WithInput makes read consume lines from r.
func WithInput(r io.Reader) Option {
	return func(o options) options {
		o.in = r

		return o
	}
}

// WithRand sets the source of random.
func WithRand(r *rand.Rand) Option {
	return func(o options) options {
		o.rand = r

		return o
	}
}

// WithLookupEnv sets the environment lookup of getEnv.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(o options) options {
		o.lookup = lookup

		return o
	}
}

// WithClock sets the clock of date().
func WithClock(now func() time.Time) Option {
	return func(o options) options {
		o.now = now

		return o
	}
}

// WithLogger sets the logger of the library's debug events.
func WithLogger(logger log.Logger) Option {
	return func(o options) options {
		o.logger = logger

		return o
	}
}

// library is the state shared by the natives of one registration.
type library struct {
	options

	lines *bufio.Reader
}

// entry describes one native function.
type entry struct {
	name      string
	signature string
	fn        func(*library, context.Context, lang.Call) (lang.Value, error)
}

var entries = []entry{
	{"print", "print(value...)", (*library).print},
	{"read", "read()", (*library).read},

	{"arrayNew", "arrayNew(value...)", (*library).arrayNew},
	{"arrayPush", "arrayPush(array, value)", (*library).arrayPush},
	{"arrayLength", "arrayLength(array)", (*library).arrayLength},
	{"arrayClear", "arrayClear(array)", (*library).arrayClear},
	{"arrayRemoveAt", "arrayRemoveAt(array, index)", (*library).arrayRemoveAt},

	{"structureNew", "structureNew()", (*library).structureNew},
	{"mapNew", "mapNew()", (*library).mapNew},
	{"mapKeys", "mapKeys(map)", (*library).mapKeys},
	{"mapContains", "mapContains(map, key)", (*library).mapContains},
	{"mapRemove", "mapRemove(map, key)", (*library).mapRemove},

	{"getFiles", "getFiles(directory)", (*library).getFiles},
	{"getDirectories", "getDirectories(directory)", (*library).getDirectories},

	{"date", "date([year, month, day[, hour, minute, second[, millisecond]]])", (*library).date},
	{"timespanTotalMilliseconds", "timespanTotalMilliseconds(timespan)", (*library).timespanTotalMilliseconds},
	{"sleep", "sleep(milliseconds)", (*library).sleep},
	{"random", "random(n)", (*library).random},

	{"getEnv", "getEnv(name)", (*library).getEnv},
	{"pathPrefix", "pathPrefix(list, item...)", (*library).pathPrefix},
	{"pathPrefixIf", "pathPrefixIf(list, predicate, item...)", (*library).pathPrefixIf},
}

// Register installs the library on it, replacing natives of the same
// names.
func Register(it *lang.Interpreter, opts ...Option) error {
	lib := &library{options: makeOptions(opts...)}
	lib.lines = bufio.NewReader(lib.in)

	for _, e := range entries {
		fn := e.fn

		err := it.AddFunction(e.name, func(ctx context.Context, c lang.Call) (lang.Value, error) {
			return fn(lib, ctx, c)
		})
		if err != nil {
			return err
		}
	}

	lib.logger.Debug("stdlib registered", slog.Int("functions", len(entries)))

	return nil
}

// Names returns the names of the library's functions, sorted.
func Names() []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}

	slices.Sort(names)

	return names
}

// Signature returns the call signature of the library function name.
func Signature(name string) (string, bool) {
	for _, e := range entries {
		if e.name == name {
			return e.signature, true
		}
	}

	return "", false
}
