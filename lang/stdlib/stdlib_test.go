package stdlib

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ardnew/dopa/lang"
)

type fixture struct {
	*lang.Interpreter

	out strings.Builder
}

func newFixture(t *testing.T, input string) *fixture {
	t.Helper()

	f := &fixture{Interpreter: lang.NewInterpreter()}

	env := map[string]string{"HOME": "/home/dopa"}

	err := Register(f.Interpreter,
		WithOutput(&f.out),
		WithInput(strings.NewReader(input)),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC) }),
		WithLookupEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok }),
	)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	return f
}

func (f *fixture) run(t *testing.T, source string) (lang.Value, error) {
	t.Helper()

	if err := f.Parse(t.Context(), source); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	return f.Execute(t.Context())
}

func (f *fixture) mustRun(t *testing.T, source string) lang.Value {
	t.Helper()

	v, err := f.run(t, source)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	return v
}

func TestScripts(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"array helpers", `
			var a = arrayNew(1, 2, 3);
			arrayPush(a, 4);
			arrayRemoveAt(a, 0);
			var n = arrayLength(a);
			arrayClear(a);
			return n + ":" + arrayLength(a);`, "3:0"},
		{"array shared by helpers", `
			var a = arrayNew();
			var b = a;
			arrayPush(b, "x");
			return a;`, `["x"]`},
		{"map helpers", `
			var m = mapNew();
			m["b"] = 1;
			m.a = 2;
			var had = mapContains(m, "a");
			mapRemove(m, "a");
			return arrayNew(mapKeys(m), had, mapContains(m, "a"));`, `[["b"], true, false]`},
		{"structure keys", `
			var s = structureNew();
			s.y = 1; s.x = 2;
			return mapKeys(s);`, `["x", "y"]`},
		{"date components", "return date(2024, 2, 29, 13, 4, 5);", "2024-02-29 13:04:05"},
		{"date milliseconds", "return date(2024, 2, 29, 13, 4, 5, 7);", "2024-02-29 13:04:05.007"},
		{"date now", "return date();", "2020-06-01 12:00:00"},
		{"date ordering", "return date(2024, 1, 2) > date(2024, 1, 1);", "true"},
		{
			"timespan milliseconds",
			"return timespanTotalMilliseconds(date(2024, 1, 2, 0, 0, 1) - date(2024, 1, 1));",
			"86401000",
		},
		{"sleep", "sleep(1); sleep(-5); return 1;", "1"},
		{"environment", `return arrayNew(getEnv("HOME"), getEnv("NOPE"));`, `["/home/dopa", undefined]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")

			if got := f.mustRun(t, tt.source).String(); got != tt.want {
				t.Errorf("result = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPrintAndRead(t *testing.T) {
	f := newFixture(t, "first line\r\nsecond")

	f.mustRun(t, `
		var line = read();
		while (line != undefined) {
			print("got", line, 1.5, true);
			line = read();
		}
		print();
	`)

	want := "got first line 1.5 true\ngot second 1.5 true\n\n"
	if got := f.out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestFileListing(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "a.dopa"), []byte("print(1);"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := os.Mkdir(filepath.Join(dir, "lib"), 0o700); err != nil {
		t.Fatal(err)
	}

	f := newFixture(t, "")

	files, err := f.Call(t.Context(), "getFiles", lang.NewString(dir))
	if err != nil {
		t.Fatalf("getFiles error = %v", err)
	}

	if files.Array().Len() != 1 {
		t.Fatalf("getFiles = %v", files)
	}

	file, _ := files.Array().At(0)
	name, _ := file.Fields().Get("Name")
	full, _ := file.Fields().Get("FullName")
	size, _ := file.Fields().Get("Length")

	if name.Text() != "a.dopa" || full.Text() != filepath.Join(dir, "a.dopa") || size.Int() != 9 {
		t.Errorf("file = %v", file)
	}

	dirs, err := f.Call(t.Context(), "getDirectories", lang.NewString(dir))
	if err != nil {
		t.Fatalf("getDirectories error = %v", err)
	}

	if got := dirs.String(); !strings.Contains(got, `Name: "lib"`) || dirs.Array().Len() != 1 {
		t.Errorf("getDirectories = %s", got)
	}

	if _, err := f.Call(t.Context(), "getFiles", lang.NewString(filepath.Join(dir, "missing"))); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing directory error = %v", err)
	}
}

func TestRandom(t *testing.T) {
	f := newFixture(t, "")

	v := f.mustRun(t, `
		var seen = arrayNew(false, false, false);
		for (var i = 0; i < 200; i++) {
			var r = random(3);
			if (r < 0 || r >= 3) { return -1; }
			seen[r] = true;
		}
		return seen[0] && seen[1] && seen[2];
	`)

	if !v.Bool() {
		t.Errorf("random(3) result = %v", v)
	}
}

func TestPathPrefix(t *testing.T) {
	sep := string(os.PathListSeparator)
	list := strings.Join([]string{"/usr/bin", "/bin"}, sep)

	f := newFixture(t, "")

	plain, err := f.Call(t.Context(), "pathPrefix", lang.NewString(list), lang.NewString("/opt/dopa/bin"))
	if err != nil {
		t.Fatalf("pathPrefix error = %v", err)
	}

	if got := plain.Text(); !strings.HasPrefix(got, "/opt/dopa/bin"+sep) || !strings.Contains(got, "/usr/bin") {
		t.Errorf("pathPrefix = %q", got)
	}

	f.mustRun(t, "function always(item) { return true; }")

	filtered, err := f.Call(t.Context(), "pathPrefixIf",
		lang.NewString(list), lang.NewString("always"), lang.NewString("/opt/dopa/bin"))
	if err != nil {
		t.Fatalf("pathPrefixIf error = %v", err)
	}

	if filtered.Text() != plain.Text() {
		t.Errorf("pathPrefixIf with an accepting predicate = %q, want %q", filtered.Text(), plain.Text())
	}

	_, err = f.Call(t.Context(), "pathPrefixIf",
		lang.NewString(list), lang.NewString("nope"), lang.NewString("/x"))
	if !errors.Is(err, lang.ErrFunctionNotFound) {
		t.Errorf("unknown predicate error = %v", err)
	}
}

func TestSleepCancelled(t *testing.T) {
	f := newFixture(t, "")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	start := time.Now()

	_, err := f.Call(ctx, "sleep", lang.NewInt(60_000))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}

	if time.Since(start) > 10*time.Second {
		t.Error("sleep ignored cancellation")
	}
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		source string
		text   string
	}{
		{"arrayLength(1);", "arrayLength: argument 1 must be array, got numeric"},
		{"arrayPush(arrayNew());", "arrayPush expects 2 arguments, got 1"},
		{"arrayRemoveAt(arrayNew(), 0);", "index 0 out of range"},
		{"arrayRemoveAt(arrayNew(1), 18446744073709551616);", "argument 2 must be an integer"},
		{"random(2.5);", "argument 1 must be an integer"},
		{`mapKeys("s");`, "must be map or structure"},
		{"date(2023, 2, 29);", "invalid date"},
		{"date(2023, 13, 1);", "month 13 out of range"},
		{"date(1, 2);", "expects 0, 3, 6 or 7 arguments"},
		{"random(0);", "must be positive"},
		{`pathPrefix("a", 1);`, "argument 2 must be string"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			f := newFixture(t, "")

			_, err := f.run(t, "var x = 0;\n  "+tt.source)
			if !errors.Is(err, lang.ErrExecution) {
				t.Fatalf("error = %v, want execution error", err)
			}

			var ee *lang.Error
			if !errors.As(err, &ee) || ee.Line != 2 || ee.Column != 3 {
				t.Errorf("error %v not positioned at the call", err)
			}

			if !strings.Contains(err.Error(), tt.text) {
				t.Errorf("error %q does not contain %q", err, tt.text)
			}
		})
	}
}

func TestNamesAndSignatures(t *testing.T) {
	names := Names()

	if !slices.IsSorted(names) || len(names) != len(entries) {
		t.Errorf("Names() = %v", names)
	}

	for _, want := range []string{"print", "arrayNew", "date", "pathPrefixIf"} {
		if !slices.Contains(names, want) {
			t.Errorf("Names() missing %s", want)
		}
	}

	if sig, ok := Signature("arrayPush"); !ok || sig != "arrayPush(array, value)" {
		t.Errorf("Signature(arrayPush) = %q, %v", sig, ok)
	}

	if _, ok := Signature("nope"); ok {
		t.Error("Signature(nope) found")
	}

	it := lang.NewInterpreter()
	if err := Register(it); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(it.Natives(), names) {
		t.Errorf("Natives() = %v, want %v", it.Natives(), names)
	}
}
