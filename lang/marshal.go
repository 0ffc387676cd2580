package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ToMap converts the program's syntax tree to plain Go maps and slices.
func (p *Program) ToMap() map[string]any {
	functions := make([]any, len(p.Functions))

	for i, fn := range p.Functions {
		params := make([]any, fn.Parameters)
		for j, v := range fn.Variables[:fn.Parameters] {
			params[j] = variableMap(v)
		}

		locals := make([]any, 0, len(fn.Variables)-fn.Parameters)
		for _, v := range fn.Variables[fn.Parameters:] {
			locals = append(locals, variableMap(v))
		}

		functions[i] = map[string]any{
			"name":       fn.Name,
			"line":       fn.Line,
			"column":     fn.Column,
			"parameters": params,
			"locals":     locals,
			"body":       nodeList(fn.Body),
		}
	}

	globals := make([]any, len(p.Variables))
	for i, v := range p.Variables {
		globals[i] = variableMap(v)
	}

	return map[string]any{
		"globals":      globals,
		"functions":    functions,
		"instructions": nodeList(p.Instructions),
	}
}

func variableMap(v *Variable) map[string]any {
	m := map[string]any{
		"name":  v.Name,
		"index": v.Index,
	}

	if v.IsReference {
		m["ref"] = true
	}

	return m
}

func nodeList(ins []Instruction) []any {
	out := make([]any, len(ins))
	for i, in := range ins {
		out[i] = nodeMap(in)
	}

	return out
}

// nodeMap converts one instruction. Every map has a "kind", a "line" and a
// "column"; the remaining keys depend on the kind.
func nodeMap(in Instruction) map[string]any {
	if in == nil {
		return nil
	}

	pos := in.Position()
	m := map[string]any{
		"line":   pos.Line,
		"column": pos.Column,
	}

	if path := in.base().Path; len(path) > 0 {
		segs := make([]any, len(path))

		for i, seg := range path {
			if seg.Index != nil {
				segs[i] = map[string]any{"index": nodeMap(seg.Index)}
			} else {
				segs[i] = map[string]any{"member": seg.Member}
			}
		}

		m["path"] = segs
	}

	block := func(b *Block) []any {
		if b == nil {
			return nil
		}

		return nodeList(b.Body)
	}

	switch n := in.(type) {
	case *Assignment:
		m["kind"] = "assignment"
		m["name"] = n.Name
		m["op"] = n.Op.String()
		m["value"] = nodeMap(n.Value)
		m["resolved"] = n.Var != nil

	case *Literal:
		m["kind"] = "literal"
		m["type"] = n.Value.Type().String()
		m["value"] = n.Value.Native()

	case *FunctionCall:
		m["kind"] = "call"
		m["name"] = n.Name
		m["args"] = nodeList(n.Args)

	case *Reference:
		m["kind"] = "reference"
		m["name"] = n.Name
		m["resolved"] = n.Var != nil

	case *Return:
		m["kind"] = "return"
		if n.Value != nil {
			m["value"] = nodeMap(n.Value)
		}

	case *Chain:
		ops := make([]any, len(n.Operators))
		for i, op := range n.Operators {
			ops[i] = op.String()
		}

		m["kind"] = "chain"
		m["operands"] = nodeList(n.Operands)
		m["operators"] = ops

	case *Condition:
		branches := make([]any, len(n.Branches))
		for i, br := range n.Branches {
			branches[i] = map[string]any{
				"test": nodeMap(br.Test),
				"body": block(br.Body),
			}
		}

		m["kind"] = "if"
		m["branches"] = branches

		if n.Else != nil {
			m["else"] = block(n.Else)
		}

	case *While:
		m["kind"] = "while"
		m["test"] = nodeMap(n.Test)
		m["body"] = block(n.Body)

	case *DoWhile:
		m["kind"] = "do"
		m["body"] = block(n.Body)
		m["test"] = nodeMap(n.Test)

	case *For:
		m["kind"] = "for"
		m["init"] = nodeMap(n.Init)
		m["test"] = nodeMap(n.Test)
		m["step"] = nodeMap(n.Step)
		m["body"] = block(n.Body)

	case *IncDec:
		m["kind"] = n.Op.String()
		m["name"] = n.Name
		m["prefix"] = n.Prefix

	case *Negation:
		m["kind"] = "not"
		m["operand"] = nodeMap(n.Operand)

	case *Break:
		m["kind"] = "break"

	case *Continue:
		m["kind"] = "continue"

	case *Block:
		m["kind"] = "block"
		m["body"] = nodeList(n.Body)
	}

	return m
}

// FormatJSON writes the program's syntax tree as JSON. An indent of zero
// writes it on one line.
func (p *Program) FormatJSON(w io.Writer, indent int) error {
	return writeJSON(w, p.ToMap(), indent)
}

// FormatYAML writes the program's syntax tree as YAML. An indent of zero
// writes it in flow style.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return writeYAML(ctx, w, p.ToMap(), indent)
}

// FormatTokens writes tokens as a YAML sequence.
func FormatTokens(ctx context.Context, w io.Writer, tokens []Token, indent int) error {
	out := make([]any, len(tokens))
	for i, t := range tokens {
		out[i] = map[string]any{
			"value":  t.Value,
			"line":   t.Line,
			"column": t.Column,
			"kind":   t.Kind.String(),
			"name":   t.Name.String(),
		}
	}

	return writeYAML(ctx, w, out, indent)
}

func writeJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}
