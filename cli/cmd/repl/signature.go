package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/dopa/lang"
	"github.com/ardnew/dopa/lang/stdlib"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string
	argIndex int  // current argument index (0-based)
	inCall   bool // true if cursor is inside parameter list
}

// detectFunctionCall reports the innermost call whose argument list holds
// the cursor, and which argument the cursor is in. Parentheses and commas
// inside string literals are ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	// Open parens and argument counts, innermost last.
	type open struct{ pos, args int }

	var (
		stack           []open
		quoted, escaped bool
	)

	for i, r := range input[:cursor] {
		switch {
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '(':
			stack = append(stack, open{pos: i})
		case r == ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case r == ',':
			if len(stack) > 0 {
				stack[len(stack)-1].args++
			}
		}
	}

	if len(stack) == 0 {
		return functionCall{}
	}

	top := stack[len(stack)-1]

	name, _, _ := wordBounds(input, top.pos)
	if name == "" {
		return functionCall{}
	}

	return functionCall{name: name, argIndex: top.args, inCall: true}
}

// signature returns the signature of the script or native function name and
// its parameter names. Natives of the embedded library are described by
// their documented signature; other natives show no parameters.
func signature(it *lang.Interpreter, name string) (string, []string) {
	if sig, ok := stdlib.Signature(name); ok {
		return sig, signatureParams(sig)
	}

	if prog := it.Program(); prog != nil {
		if fn, ok := prog.Function(name); ok {
			params := make([]string, fn.Parameters)

			for i, v := range fn.Variables[:fn.Parameters] {
				params[i] = v.Name
				if v.IsReference {
					params[i] = "ref " + v.Name
				}
			}

			return name + "(" + strings.Join(params, ", ") + ")", params
		}
	}

	for _, n := range it.Natives() {
		if n == name {
			return name + "(...)", []string{"..."}
		}
	}

	return "", nil
}

// signatureParams splits the parameter list of a signature string.
func signatureParams(sig string) []string {
	open := strings.IndexByte(sig, '(')
	end := strings.LastIndexByte(sig, ')')

	if open < 0 || end <= open+1 {
		return nil
	}

	return strings.Split(sig[open+1:end], ", ")
}

// renderSignatureHint renders the signature with the parameter at argIndex
// highlighted. A trailing variadic parameter ("value...") stays highlighted
// for every argument from its position on.
func renderSignatureHint(sig string, params []string, argIndex int) string {
	open := strings.IndexByte(sig, '(')
	if open < 0 {
		return signatureStyle.Render(sig)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(sig[:open]))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasSuffix(p, "...")

		if i == argIndex || (variadic && argIndex > i) {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
