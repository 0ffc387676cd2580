package lang

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	errUnterminatedString = errors.New("unterminated string literal")
	errInvalidNumber      = errors.New("invalid numeric literal")
	errUnexpectedChar     = errors.New("unexpected character")
)

// Tokenize splits source into a token sequence in a single left-to-right
// pass. Comments are kept as [KindComment] tokens; the parser discards them.
// Carriage returns are ignored, so line numbers are the same for LF and CRLF
// sources.
//
// An unterminated string, a malformed number or a character that starts no
// token fails with a [CodeLex] error positioned at the offending token.
func Tokenize(source string) ([]Token, error) {
	l := &lexer{
		src:    source,
		line:   1,
		col:    1,
		tokens: make([]Token, 0, len(source)/4),
	}

	if err := l.run(); err != nil {
		return nil, err
	}

	return l.tokens, nil
}

// lexer holds the scanning state.
type lexer struct {
	src    string
	pos    int
	line   int
	col    int
	tokens []Token
}

func (l *lexer) run() error {
	for !l.eof() {
		r := l.peek()

		switch {
		case unicode.IsSpace(r):
			l.advance()

		case r == '/' && l.peekAt(1) == '/':
			l.comment()

		case isIdentStart(r):
			l.word()

		case r == '"':
			if err := l.quoted(); err != nil {
				return err
			}

		case l.numberStart():
			if err := l.number(); err != nil {
				return err
			}

		default:
			if err := l.punct(); err != nil {
				return err
			}
		}
	}

	return nil
}

func (l *lexer) eof() bool { return l.pos >= len(l.src) }

func (l *lexer) peek() rune { return l.peekAt(0) }

// peekAt returns the rune n runes ahead of the cursor, or 0 past the end.
func (l *lexer) peekAt(n int) rune {
	pos := l.pos

	for ; n > 0 && pos < len(l.src); n-- {
		_, size := utf8.DecodeRuneInString(l.src[pos:])
		pos += size
	}

	if pos >= len(l.src) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.src[pos:])

	return r
}

// advance consumes one rune and updates the line and column.
func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size

	switch r {
	case '\n':
		l.line++
		l.col = 1
	case '\r':
	default:
		l.col++
	}

	return r
}

func (l *lexer) emit(start Pos, value string, name Name) {
	kind := name.kind()
	if name == NameNone {
		kind = KindIdentifier
	}

	l.tokens = append(l.tokens, Token{
		Value:  value,
		Line:   start.Line,
		Column: start.Column,
		Kind:   kind,
		Name:   name,
	})
}

func (l *lexer) here() Pos { return Pos{Line: l.line, Column: l.col} }

func (l *lexer) comment() {
	start, from := l.here(), l.pos

	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}

	l.emit(start, strings.TrimRight(l.src[from:l.pos], "\r"), NameComment)
}

// word scans an identifier, keyword or keyword literal.
func (l *lexer) word() {
	start, from := l.here(), l.pos

	for !l.eof() && isIdentPart(l.peek()) {
		l.advance()
	}

	value := l.src[from:l.pos]

	name, ok := lexemes[value]
	if !ok || (name.kind() != KindKeyword && name.kind() != KindLiteral) {
		name = NameNone
	}

	l.emit(start, value, name)
}

// quoted scans a double-quoted literal. A backslash makes the following
// character literal; there are no named escape sequences.
func (l *lexer) quoted() error {
	start := l.here()

	l.advance() // opening quote

	var b strings.Builder

	for {
		if l.eof() {
			return ErrLex.Wrap(errUnterminatedString).at(start)
		}

		r := l.advance()

		switch r {
		case '"':
			l.emit(start, b.String(), NameString)

			return nil

		case '\\':
			if l.eof() {
				return ErrLex.Wrap(errUnterminatedString).at(start)
			}

			b.WriteRune(l.advance())

		case '\r':

		default:
			b.WriteRune(r)
		}
	}
}

// numberStart reports whether the cursor begins a numeric literal. A '-'
// followed by a digit is a sign only where an operand is expected, so that
// "a -1" still subtracts.
func (l *lexer) numberStart() bool {
	r := l.peek()

	switch {
	case isDigit(r):
		return true
	case r == '.':
		return isDigit(l.peekAt(1))
	case r == '-':
		next := l.peekAt(1)
		if !isDigit(next) && (next != '.' || !isDigit(l.peekAt(2))) {
			return false
		}

		return len(l.tokens) == 0 || !l.tokens[len(l.tokens)-1].operand()
	}

	return false
}

// number scans a run of digits, letters and dots and validates it as a
// decimal literal without exponent.
func (l *lexer) number() error {
	start, from := l.here(), l.pos

	if l.peek() == '-' {
		l.advance()
	}

	for !l.eof() {
		r := l.peek()
		if !isIdentPart(r) && r != '.' {
			break
		}

		// A dot belongs to the literal only when a digit follows it.
		if r == '.' && !isDigit(l.peekAt(1)) {
			break
		}

		l.advance()
	}

	value := l.src[from:l.pos]
	if !validNumber(value) {
		return ErrLex.Wrap(errInvalidNumber).
			With(slog.String("literal", value)).
			at(start)
	}

	l.emit(start, value, NameNumber)

	return nil
}

// punct scans punctuation and operators, preferring two-character lexemes.
func (l *lexer) punct() error {
	start := l.here()

	if l.pos+1 < len(l.src) {
		if name, ok := lexemes[l.src[l.pos:l.pos+2]]; ok {
			value := l.src[l.pos : l.pos+2]
			l.advance()
			l.advance()
			l.emit(start, value, name)

			return nil
		}
	}

	r := l.advance()

	name, ok := lexemes[string(r)]
	if !ok || name.kind() == KindKeyword || name.kind() == KindLiteral {
		return ErrLex.Wrap(errUnexpectedChar).
			With(slog.String("char", string(r))).
			at(start)
	}

	l.emit(start, string(r), name)

	return nil
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// validNumber reports whether s is an optionally signed decimal literal with
// at least one digit and at most one dot.
func validNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	digits, dots := 0, 0

	for _, r := range s {
		switch {
		case isDigit(r):
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}

	return digits > 0 && dots <= 1
}
