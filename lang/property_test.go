package lang

import (
	"strconv"
	"strings"
	"testing"

	"github.com/expr-lang/expr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var (
	arithmeticOps = []string{"+", "-", "*"}
	comparisonOps = []string{"==", "!=", "<", "<=", ">", ">="}
)

// chainSource joins operands with the operators selected by ops.
func chainSource(operands, ops []int) string {
	var b strings.Builder

	for i, n := range operands {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(arithmeticOps[ops[i-1]%len(arithmeticOps)])
			b.WriteByte(' ')
		}

		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}

// evaluate runs "return <expression>;" on a fresh interpreter.
func evaluate(t *testing.T, expression string) (Value, error) {
	it := NewInterpreter()
	if err := it.Parse(t.Context(), "return "+expression+";"); err != nil {
		return Value{}, err
	}

	return it.Execute(t.Context())
}

func TestPropertyArithmeticMatchesGo(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("integer chains evaluate with arithmetic precedence", prop.ForAll(
		func(operands, ops []int) bool {
			source := chainSource(operands, ops)

			want, err := expr.Eval(source, nil)
			if err != nil {
				t.Logf("expr.Eval(%q) error = %v", source, err)

				return false
			}

			got, err := evaluate(t, source)
			if err != nil {
				t.Logf("evaluate(%q) error = %v", source, err)

				return false
			}

			return got.Type() == TypeNumeric && got.Int() == want.(int)
		},
		gen.SliceOfN(5, gen.IntRange(-20, 20)),
		gen.SliceOfN(4, gen.IntRange(0, len(arithmeticOps)-1)),
	))

	properties.Property("comparisons bind looser than arithmetic", prop.ForAll(
		func(left, right, ops []int, cmp int) bool {
			source := chainSource(left, ops[:len(left)-1]) + " " +
				comparisonOps[cmp] + " " + chainSource(right, ops[len(left)-1:])

			want, err := expr.Eval(source, nil)
			if err != nil {
				return false
			}

			got, err := evaluate(t, source)
			if err != nil {
				return false
			}

			return got.Type() == TypeBoolean && got.Bool() == want.(bool)
		},
		gen.SliceOfN(3, gen.IntRange(-9, 9)),
		gen.SliceOfN(3, gen.IntRange(-9, 9)),
		gen.SliceOfN(4, gen.IntRange(0, len(arithmeticOps)-1)),
		gen.IntRange(0, len(comparisonOps)-1),
	))

	properties.TestingRun(t)
}

func TestPropertyFormatPreservesResult(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("formatted source evaluates to the same value", prop.ForAll(
		func(operands, ops []int) bool {
			source := "var r = " + chainSource(operands, ops) + "; return r;"

			tokens, err := Tokenize(source)
			if err != nil {
				return false
			}

			prog, err := Analyse(tokens)
			if err != nil {
				return false
			}

			formatted := prog.String()

			first := NewInterpreter()
			if err := first.Load(prog); err != nil {
				return false
			}

			want, err := first.Execute(t.Context())
			if err != nil {
				return false
			}

			it := NewInterpreter()
			if err := it.Parse(t.Context(), formatted); err != nil {
				t.Logf("reparse of %q: %v", formatted, err)

				return false
			}

			got, err := it.Execute(t.Context())
			if err != nil {
				return false
			}

			return Equal(got, want) && it.Program().String() == formatted
		},
		gen.SliceOfN(6, gen.IntRange(-50, 50)),
		gen.SliceOfN(5, gen.IntRange(0, len(arithmeticOps)-1)),
	))

	properties.TestingRun(t)
}

func TestPropertyTokenizeIdentifiers(t *testing.T) {
	parameters := gopter.DefaultTestParameters()

	properties := gopter.NewProperties(parameters)

	properties.Property("space-separated words tokenize one per word", prop.ForAll(
		func(words []string) bool {
			tokens, err := Tokenize(strings.Join(words, " "))
			if err != nil || len(tokens) != len(words) {
				return false
			}

			column := 1

			for i, tok := range tokens {
				if tok.Value != words[i] || tok.Line != 1 || tok.Column != column {
					return false
				}

				column += len(words[i]) + 1
			}

			return true
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}
