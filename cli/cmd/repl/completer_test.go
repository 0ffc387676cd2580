package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/dopa/lang"
	"github.com/ardnew/dopa/lang/stdlib"
)

// newSession returns an interpreter with the standard library, its console
// captured by the returned transcript, after running source.
func newSession(t *testing.T, source string) (*lang.Interpreter, *Transcript) {
	t.Helper()

	out := NewTranscript()
	it := lang.NewInterpreter()

	if err := stdlib.Register(it, stdlib.WithOutput(out), stdlib.WithInput(strings.NewReader(""))); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if source == "" {
		return it, out
	}

	if err := it.Parse(t.Context(), source); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, err := it.Execute(t.Context()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	return it, out
}

const playerSource = `
var player = structureNew();
player.name = "ada";
player.pos = structureNew();
player.pos.y = 2;
player.pos.x = 1;
var scores = mapNew();
scores["high"] = 10;
function double(n) { return n * 2; }
`

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "bar.baz", 7, "baz", 4, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "add(a, fo", 9, "fo", 7, 9},
		{"after_assign", "x=fo", 4, "fo", 2, 4},
		{"after_comparison", "a >= fo", 7, "fo", 5, 7},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"underscore", "my_var", 6, "my_var", 0, 6},
		{"digits", "x2 + y10", 8, "y10", 5, 8},
		{"hyphen_is_operator", "a-b", 3, "b", 2, 3},
		{"empty_after_dot", "player.", 7, "", 7, 7},
		{"cursor_past_end", "foo", 10, "foo", 0, 3},
		{"non_ascii", "größe", 6, "größe", 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "bar.baz.", 8, "bar.baz"},
		{"after_operator", "foo + bar.baz.", 14, "bar.baz"},
		{"after_paren", "(bar.baz.", 9, "bar.baz"},
		{"no_chain", "a + ", 4, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"after_equals", "x = a.b.", 8, "a.b"},
		{"partial_member", "player.na", 7, "player"},
		{"number_literal", "1.", 2, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parentPath(tt.input, tt.wordStart)
			if got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	it, _ := newSession(t, playerSource)

	top := candidates(it, "")

	if !slices.IsSorted(top) {
		t.Errorf("top-level candidates not sorted: %v", top)
	}

	for _, want := range []string{"player", "scores", "double", "print", "arrayPush", "while", "function", "undefined"} {
		if !slices.Contains(top, want) {
			t.Errorf("top-level candidates missing %q", want)
		}
	}

	tests := []struct {
		parent string
		want   []string
	}{
		{"player", []string{"name", "pos"}},
		{"player.pos", []string{"x", "y"}},
		{"scores", []string{"high"}},
		{"player.name", nil},
		{"player.missing", nil},
		{"nobody", nil},
		{"double", nil},
	}

	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			if got := candidates(it, tt.parent); !slices.Equal(got, tt.want) {
				t.Errorf("candidates(%q) = %v, want %v", tt.parent, got, tt.want)
			}
		})
	}
}

func TestComputeMatches(t *testing.T) {
	it, out := newSession(t, playerSource)

	m := newModel(t.Context(), Session{Interpreter: it, Output: out}, NewHistory(""))

	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  string // best match, "" for none
		count int    // -1 to skip
	}{
		{"prefix", modeEval, "pla", "player", -1},
		{"members_after_dot", modeEval, "player.", "name", 2},
		{"member_prefix", modeEval, "player.po", "pos", 1},
		{"empty_top_level", modeEval, "", "", 0},
		{"after_operator", modeEval, "1 + dou", "double", -1},
		{"command", modeCtrl, "li", "list", 1},
		{"empty_command", modeCtrl, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, _, end := m.computeMatches()

			if end != len(tt.input) {
				t.Errorf("word end = %d, want %d", end, len(tt.input))
			}

			if tt.count >= 0 && len(matches) != tt.count {
				t.Errorf("got %d matches, want %d", len(matches), tt.count)
			}

			switch {
			case tt.want == "" && len(matches) != 0:
				t.Errorf("unexpected matches %v", matches)
			case tt.want != "" && (len(matches) == 0 || matches[0].Str != tt.want):
				t.Errorf("best match = %v, want %q", matches, tt.want)
			}
		})
	}
}
