package lang

import (
	"io"
	"strings"
)

// Format writes p as source text, nesting blocks by indent. Declarations are
// written at the top of the program and of each function, functions before
// the top-level statements, and every nested binary chain in parentheses.
// The output parses to a program that executes identically, and formatting
// it again reproduces it exactly.
func (p *Program) Format(w io.Writer, indent string) error {
	f := formatter{indent: indent}

	f.declare(p.Variables)

	for _, fn := range p.Functions {
		f.function(fn)
	}

	f.statements(p.Instructions)

	_, err := io.WriteString(w, f.String())

	return err
}

// String returns the formatted source of p, indented by tabs.
func (p *Program) String() string {
	var b strings.Builder

	_ = p.Format(&b, "\t")

	return b.String()
}

type formatter struct {
	strings.Builder

	indent string
	depth  int
	// gap requests a blank line before the next top-level item.
	gap bool
}

// line starts a new indented line.
func (f *formatter) line() {
	if f.gap && f.depth == 0 {
		f.WriteByte('\n')
	}

	f.gap = false

	f.WriteString(strings.Repeat(f.indent, f.depth))
}

func (f *formatter) declare(vars []*Variable) {
	if len(vars) == 0 {
		return
	}

	f.line()
	f.WriteString("var ")

	for i, v := range vars {
		if i > 0 {
			f.WriteString(", ")
		}

		f.WriteString(v.Name)
	}

	f.WriteString(";\n")

	f.gap = true
}

func (f *formatter) function(fn *Function) {
	f.line()
	f.WriteString("function ")
	f.WriteString(fn.Name)
	f.WriteByte('(')

	for i, v := range fn.Variables[:fn.Parameters] {
		if i > 0 {
			f.WriteString(", ")
		}

		if v.IsReference {
			f.WriteString("ref ")
		}

		f.WriteString(v.Name)
	}

	f.WriteString(") {\n")

	f.depth++
	f.declare(fn.Variables[fn.Parameters:])
	f.gap = false
	f.statements(fn.Body)
	f.depth--

	f.line()
	f.WriteString("}\n")

	f.gap = true
}

func (f *formatter) statements(ins []Instruction) {
	for _, in := range ins {
		f.statement(in)
	}
}

// block writes a braced body, leaving the cursor after the closing brace.
func (f *formatter) block(b *Block) {
	f.WriteString("{\n")

	f.depth++
	f.statements(b.Body)
	f.depth--

	f.line()
	f.WriteByte('}')
}

func (f *formatter) statement(in Instruction) {
	// A multi-name initializer of a for loop runs once before the loop.
	if loop, ok := in.(*For); ok {
		if init, ok := loop.Init.(*Block); ok {
			f.statements(init.Body)
		}
	}

	f.line()

	switch n := in.(type) {
	case *Condition:
		for i, br := range n.Branches {
			if i > 0 {
				f.WriteString(" else ")
			}

			f.WriteString("if (")
			f.expr(br.Test, false)
			f.WriteString(") ")
			f.block(br.Body)
		}

		if n.Else != nil {
			f.WriteString(" else ")
			f.block(n.Else)
		}

	case *While:
		f.WriteString("while (")
		f.expr(n.Test, false)
		f.WriteString(") ")
		f.block(n.Body)

	case *DoWhile:
		f.WriteString("do ")
		f.block(n.Body)
		f.WriteString(" while (")
		f.expr(n.Test, false)
		f.WriteString(");")

	case *For:
		f.WriteString("for (")

		if _, ok := n.Init.(*Block); !ok && n.Init != nil {
			f.expr(n.Init, false)
		}

		f.WriteString("; ")

		if n.Test != nil {
			f.expr(n.Test, false)
		}

		f.WriteString("; ")

		if n.Step != nil {
			f.expr(n.Step, false)
		}

		f.WriteString(") ")
		f.block(n.Body)

	case *Block:
		f.block(n)

	case *Break:
		f.WriteString("break;")

	case *Continue:
		f.WriteString("continue;")

	case *Return:
		f.WriteString("return")

		if n.Value != nil {
			f.WriteByte(' ')
			f.expr(n.Value, false)
		}

		f.WriteByte(';')

	default:
		f.expr(in, false)
		f.WriteByte(';')
	}

	f.WriteByte('\n')
}

// expr writes an expression. Nested chains are parenthesized, as is any
// node other than a reference or call that carries a path.
func (f *formatter) expr(in Instruction, nested bool) {
	path := in.base().Path

	switch n := in.(type) {
	case *Assignment:
		f.WriteString(n.Name)
		f.path(path)
		f.WriteByte(' ')
		f.WriteString(n.Op.String())
		f.WriteByte(' ')
		f.expr(n.Value, false)

		return

	case *IncDec:
		if n.Prefix {
			f.WriteString(n.Op.String())
		}

		f.WriteString(n.Name)
		f.path(path)

		if !n.Prefix {
			f.WriteString(n.Op.String())
		}

		return

	case *Reference:
		f.WriteString(n.Name)
		f.path(path)

		return

	case *FunctionCall:
		f.WriteString(n.Name)
		f.WriteByte('(')

		for i, arg := range n.Args {
			if i > 0 {
				f.WriteString(", ")
			}

			f.expr(arg, false)
		}

		f.WriteByte(')')
		f.path(path)

		return
	}

	_, chain := in.(*Chain)
	group := len(path) > 0 || (nested && chain)

	if group {
		f.WriteByte('(')
	}

	switch n := in.(type) {
	case *Literal:
		f.literal(n.Value)

	case *Negation:
		f.WriteByte('!')
		f.expr(n.Operand, true)

	case *Chain:
		for i, operand := range n.Operands {
			if i > 0 {
				f.WriteByte(' ')
				f.WriteString(n.Operators[i-1].String())
				f.WriteByte(' ')
			}

			f.expr(operand, true)
		}
	}

	if group {
		f.WriteByte(')')
		f.path(path)
	}
}

func (f *formatter) path(path []PathSegment) {
	for _, seg := range path {
		if seg.Index != nil {
			f.WriteByte('[')
			f.expr(seg.Index, false)
			f.WriteByte(']')
		} else {
			f.WriteByte('.')
			f.WriteString(seg.Member)
		}
	}
}

// literal writes v in a form the lexer reads back as v.
func (f *formatter) literal(v Value) {
	switch v.typ {
	case TypeString:
		f.WriteByte('"')

		for _, r := range v.str {
			if r == '"' || r == '\\' {
				f.WriteByte('\\')
			}

			f.WriteRune(r)
		}

		f.WriteByte('"')

	case TypeUndefined:
		f.WriteString(NameUndefined.String())

	default:
		f.WriteString(v.String())
	}
}
