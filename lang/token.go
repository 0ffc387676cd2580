package lang

//go:generate go tool stringer --linecomment --type Kind,Name --output token_string.go

import "strconv"

// Kind classifies a token.
type Kind int

const (
	KindIdentifier    Kind = iota // identifier
	KindKeyword                   // keyword
	KindSeparator                 // separator
	KindOperator                  // operator
	KindUnaryOperator             // unary operator
	KindAssignment                // assignment
	KindLiteral                   // literal
	KindComment                   // comment
)

// Name is the specific identity of a token. For keywords, punctuation and
// operators the name's string form is the token's lexeme.
type Name int

const (
	NameNone Name = iota // none

	NameIf       // if
	NameElse     // else
	NameWhile    // while
	NameDo       // do
	NameFor      // for
	NameBreak    // break
	NameContinue // continue
	NameReturn   // return
	NameFunction // function
	NameVar      // var
	NameRef      // ref

	NameBlockOpen    // {
	NameBlockClose   // }
	NameParenOpen    // (
	NameParenClose   // )
	NameComma        // ,
	NameBracketOpen  // [
	NameBracketClose // ]
	NameSemicolon    // ;
	NameDot          // .

	NameAdd          // +
	NameSub          // -
	NameMul          // *
	NameDiv          // /
	NameMod          // %
	NameOr           // ||
	NameAnd          // &&
	NameEqual        // ==
	NameNotEqual     // !=
	NameGreater      // >
	NameLess         // <
	NameGreaterEqual // >=
	NameLessEqual    // <=

	NameIncrement // ++
	NameDecrement // --
	NameNot       // !

	NameAssign    // =
	NameAddAssign // +=
	NameSubAssign // -=
	NameMulAssign // *=
	NameDivAssign // /=

	NameTrue      // true
	NameFalse     // false
	NameUndefined // undefined
	NameString    // string
	NameNumber    // number

	NameComment // comment
)

// kind returns the token kind of a fixed-lexeme name.
func (n Name) kind() Kind {
	switch {
	case n >= NameIf && n <= NameRef:
		return KindKeyword
	case n >= NameBlockOpen && n <= NameDot:
		return KindSeparator
	case n >= NameAdd && n <= NameLessEqual:
		return KindOperator
	case n >= NameIncrement && n <= NameNot:
		return KindUnaryOperator
	case n >= NameAssign && n <= NameDivAssign:
		return KindAssignment
	case n >= NameTrue && n <= NameNumber:
		return KindLiteral
	case n == NameComment:
		return KindComment
	default:
		return KindIdentifier
	}
}

// lexemes maps every fixed lexeme (keywords, punctuation, operators and the
// keyword literals) to its name.
var lexemes = func() map[string]Name {
	m := make(map[string]Name, int(NameUndefined))
	for n := NameIf; n <= NameUndefined; n++ {
		m[n.String()] = n
	}

	return m
}()

// Keywords returns the reserved words of the language, including the
// keyword literals true, false and undefined, in declaration order.
func Keywords() []string {
	var words []string

	for n := NameIf; n <= NameUndefined; n++ {
		if k := n.kind(); k == KindKeyword || k == KindLiteral {
			words = append(words, n.String())
		}
	}

	return words
}

// Token is a classified lexical unit with its 1-based source position.
type Token struct {
	Value  string
	Line   int
	Column int
	Kind   Kind
	Name   Name
}

// Pos returns the token's source position.
func (t Token) Pos() Pos { return Pos{Line: t.Line, Column: t.Column} }

// String returns a short description used in diagnostics.
func (t Token) String() string {
	switch t.Name {
	case NameString:
		return strconv.Quote(t.Value)
	case NameNone, NameNumber, NameComment:
		return t.Value
	default:
		return "'" + t.Value + "'"
	}
}

// operand reports whether t can end an operand, which decides whether a
// following '-' is binary or the sign of a numeric literal.
func (t Token) operand() bool {
	switch t.Name {
	case NameNone, NameString, NameNumber, NameTrue, NameFalse, NameUndefined,
		NameParenClose, NameBracketClose:
		return true
	}

	return false
}
