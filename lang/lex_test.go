package lang

import (
	"errors"
	"testing"
)

func TestTokenize(t *testing.T) {
	type tok struct {
		value string
		kind  Kind
		name  Name
	}

	tests := []struct {
		name   string
		source string
		want   []tok
	}{
		{
			name:   "declaration",
			source: `var x = 1.5;`,
			want: []tok{
				{"var", KindKeyword, NameVar},
				{"x", KindIdentifier, NameNone},
				{"=", KindAssignment, NameAssign},
				{"1.5", KindLiteral, NameNumber},
				{";", KindSeparator, NameSemicolon},
			},
		},
		{
			name:   "two-character operators",
			source: `a<=b!=c&&d||e++ -=`,
			want: []tok{
				{"a", KindIdentifier, NameNone},
				{"<=", KindOperator, NameLessEqual},
				{"b", KindIdentifier, NameNone},
				{"!=", KindOperator, NameNotEqual},
				{"c", KindIdentifier, NameNone},
				{"&&", KindOperator, NameAnd},
				{"d", KindIdentifier, NameNone},
				{"||", KindOperator, NameOr},
				{"e", KindIdentifier, NameNone},
				{"++", KindUnaryOperator, NameIncrement},
				{"-=", KindAssignment, NameSubAssign},
			},
		},
		{
			name:   "negative literal where an operand is expected",
			source: `x = -2 - -3`,
			want: []tok{
				{"x", KindIdentifier, NameNone},
				{"=", KindAssignment, NameAssign},
				{"-2", KindLiteral, NameNumber},
				{"-", KindOperator, NameSub},
				{"-3", KindLiteral, NameNumber},
			},
		},
		{
			name:   "binary minus after operand",
			source: `a -1`,
			want: []tok{
				{"a", KindIdentifier, NameNone},
				{"-", KindOperator, NameSub},
				{"1", KindLiteral, NameNumber},
			},
		},
		{
			name:   "escaped string",
			source: `"say \"hi\" \n"`,
			want: []tok{
				{`say "hi" n`, KindLiteral, NameString},
			},
		},
		{
			name:   "comment kept as token",
			source: "a; // note\nb",
			want: []tok{
				{"a", KindIdentifier, NameNone},
				{";", KindSeparator, NameSemicolon},
				{"// note", KindComment, NameComment},
				{"b", KindIdentifier, NameNone},
			},
		},
		{
			name:   "member access and leading dot number",
			source: `s.name + .5`,
			want: []tok{
				{"s", KindIdentifier, NameNone},
				{".", KindSeparator, NameDot},
				{"name", KindIdentifier, NameNone},
				{"+", KindOperator, NameAdd},
				{".5", KindLiteral, NameNumber},
			},
		},
		{
			name:   "keyword literals",
			source: `true false undefined`,
			want: []tok{
				{"true", KindLiteral, NameTrue},
				{"false", KindLiteral, NameFalse},
				{"undefined", KindLiteral, NameUndefined},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.source)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize() = %v, want %d tokens", got, len(tt.want))
			}

			for i, w := range tt.want {
				if got[i].Value != w.value || got[i].Kind != w.kind || got[i].Name != w.name {
					t.Errorf("token %d = {%q %v %v}, want {%q %v %v}",
						i, got[i].Value, got[i].Kind, got[i].Name, w.value, w.kind, w.name)
				}
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	got, err := Tokenize("var a;\r\n  a = 2;")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	want := []Pos{{1, 1}, {1, 5}, {1, 6}, {2, 3}, {2, 5}, {2, 7}, {2, 8}}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}

	for i, p := range want {
		if got[i].Pos() != p {
			t.Errorf("token %d (%s) at %+v, want %+v", i, got[i], got[i].Pos(), p)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		line   int
		column int
	}{
		{"unterminated string", "var a;\nvar b;\nprint(\"open);", 3, 7},
		{"trailing backslash", `"abc\`, 1, 1},
		{"unexpected character", "a = 1;\n  b = #;", 2, 7},
		{"two dots", "x = 1.2.3;", 1, 5},
		{"letters in number", "x = 12ab;", 1, 5},
		{"lone ampersand", "a & b", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.source)
			if err == nil {
				t.Fatal("Tokenize() succeeded, want error")
			}

			if !errors.Is(err, ErrLex) {
				t.Fatalf("error %v is not ErrLex", err)
			}

			var ee *Error
			if !errors.As(err, &ee) {
				t.Fatalf("error %T is not *Error", err)
			}

			if ee.Code != CodeLex {
				t.Errorf("Code = %d, want %d", ee.Code, CodeLex)
			}

			if ee.Line != tt.line || ee.Column != tt.column {
				t.Errorf("position = %d:%d, want %d:%d", ee.Line, ee.Column, tt.line, tt.column)
			}
		})
	}
}

func TestValidNumber(t *testing.T) {
	tests := map[string]bool{
		"0":     true,
		"12.50": true,
		".5":    true,
		"-3":    true,
		"-":     false,
		"1.2.3": false,
		"1e5":   false,
		"":      false,
	}

	for s, want := range tests {
		if got := validNumber(s); got != want {
			t.Errorf("validNumber(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestKeywords(t *testing.T) {
	words := Keywords()

	for _, want := range []string{"if", "function", "ref", "continue", "true", "undefined"} {
		found := false

		for _, w := range words {
			found = found || w == want
		}

		if !found {
			t.Errorf("Keywords() missing %q", want)
		}
	}

	for _, w := range words {
		toks, err := Tokenize(w)
		if err != nil || len(toks) != 1 || toks[0].Name == NameNone {
			t.Errorf("Tokenize(%q) = %v, %v", w, toks, err)
		}
	}
}
