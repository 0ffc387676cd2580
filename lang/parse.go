package lang

import (
	"fmt"
	"slices"
)

// ParseOption configures [Analyse].
type ParseOption func(*parser)

// WithBase makes the parsed program extend base. The base globals keep their
// slots and remain visible, a top-level declaration of an existing global
// reuses its slot, and a function declared with the name of a base function
// replaces it. Neither base nor its nodes are modified.
func WithBase(base *Program) ParseOption {
	return func(p *parser) { p.base = base }
}

// Analyse builds a [Program] from tokens. Comment tokens are skipped.
//
// Statements are consumed by recursive descent; every delimited region is
// located by a balanced scan and parsed as an independent sub-sequence.
// Binary operators are first collected into a flat chain and then folded
// into nested chains by precedence group. After parsing, every variable
// reference is resolved to its declaration: locals are visible throughout
// their function, globals throughout the program.
//
// Malformed input fails with a [CodeSyntax] error positioned at the
// offending token.
func Analyse(tokens []Token, opts ...ParseOption) (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrSyntax.Wrap(fmt.Errorf("%v", r))
		}
	}()

	p := &parser{
		prog:    &Program{},
		globals: make(map[string]*Variable),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.base != nil {
		p.prog.Variables = slices.Clone(p.base.Variables)
		for _, v := range p.base.Variables {
			p.globals[v.Name] = v
		}
	}

	toks := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind != KindComment {
			toks = append(toks, t)
		}
	}

	p.push()

	p.prog.Instructions, err = p.statements(toks)
	if err != nil {
		return nil, err
	}

	p.merge()
	p.resolve()

	return p.prog, nil
}

// parser holds the declaration state while a program is analysed.
type parser struct {
	prog *Program
	base *Program

	// fn is the function being parsed, nil at top level.
	fn     *Function
	locals map[string]*Variable

	globals map[string]*Variable
	// loops is the number of loops enclosing the statement being parsed.
	loops int
	// scopes are the names declared in each open block, innermost last.
	scopes []map[string]bool
}

func (p *parser) push() { p.scopes = append(p.scopes, make(map[string]bool)) }

func (p *parser) pop() { p.scopes = p.scopes[:len(p.scopes)-1] }

func syntaxErrorf(at Pos, format string, args ...any) *Error {
	return ErrSyntax.Wrap(fmt.Errorf(format, args...)).at(at)
}

// unexpected reports toks[0], or the end of the enclosing region at end.
func unexpected(toks []Token, end Pos) *Error {
	if len(toks) == 0 {
		return syntaxErrorf(end, "unexpected end of input")
	}

	return syntaxErrorf(toks[0].Pos(), "unexpected %s", toks[0])
}

// endPos returns the position following the last token of toks.
func endPos(toks []Token) Pos {
	if len(toks) == 0 {
		return Pos{Line: 1, Column: 1}
	}

	last := toks[len(toks)-1]

	return Pos{Line: last.Line, Column: last.Column + len(last.Value)}
}

// declare creates or reuses the slot for name in the current function (or
// the global table) and records name in the innermost scope.
func (p *parser) declare(tok Token, ref bool) (*Variable, error) {
	scope := p.scopes[len(p.scopes)-1]
	if scope[tok.Value] {
		return nil, syntaxErrorf(tok.Pos(), "%s is already declared", tok.Value)
	}

	scope[tok.Value] = true

	if p.fn != nil {
		if v, ok := p.locals[tok.Value]; ok {
			return v, nil
		}

		v := &Variable{
			Name:        tok.Value,
			IsReference: ref,
			Index:       len(p.fn.Variables),
		}
		p.fn.Variables = append(p.fn.Variables, v)
		p.locals[tok.Value] = v

		return v, nil
	}

	if v, ok := p.globals[tok.Value]; ok {
		return v, nil
	}

	v := &Variable{
		Name:     tok.Value,
		IsGlobal: true,
		Index:    len(p.prog.Variables),
	}
	p.prog.Variables = append(p.prog.Variables, v)
	p.globals[tok.Value] = v

	return v, nil
}

// statements parses toks entirely as a statement sequence.
func (p *parser) statements(toks []Token) ([]Instruction, error) {
	var out []Instruction

	for i := 0; i < len(toks); {
		n, ins, err := p.statement(toks[i:])
		if err != nil {
			return nil, err
		}

		out = append(out, ins...)
		i += n
	}

	return out, nil
}

// statement parses one statement at the start of toks and returns the
// number of tokens consumed.
func (p *parser) statement(toks []Token) (int, []Instruction, error) {
	switch toks[0].Name {
	case NameSemicolon:
		return 1, nil, nil

	case NameVar:
		end, err := terminator(toks)
		if err != nil {
			return 0, nil, err
		}

		ins, err := p.declaration(toks[:end])

		return end + 1, ins, err

	case NameFunction:
		n, err := p.function(toks)

		return n, nil, err

	case NameIf:
		return one(p.condition(toks))

	case NameWhile:
		return one(p.while(toks))

	case NameDo:
		return one(p.doWhile(toks))

	case NameFor:
		return one(p.forLoop(toks))

	case NameBlockOpen:
		return one(p.block(toks, true))

	case NameBreak, NameContinue:
		if p.loops == 0 {
			return 0, nil, syntaxErrorf(toks[0].Pos(), "%s outside of a loop", toks[0])
		}

		if len(toks) < 2 || toks[1].Name != NameSemicolon {
			return 0, nil, syntaxErrorf(toks[0].Pos(), "expected ';' after %s", toks[0])
		}

		if toks[0].Name == NameBreak {
			return 2, []Instruction{&Break{node{Pos: toks[0].Pos()}}}, nil
		}

		return 2, []Instruction{&Continue{node{Pos: toks[0].Pos()}}}, nil

	case NameReturn:
		end, err := terminator(toks)
		if err != nil {
			return 0, nil, err
		}

		ret := &Return{node: node{Pos: toks[0].Pos()}}

		if end > 1 {
			if ret.Value, err = p.expression(toks[1:end]); err != nil {
				return 0, nil, err
			}
		}

		return end + 1, []Instruction{ret}, nil
	}

	end, err := terminator(toks)
	if err != nil {
		return 0, nil, err
	}

	in, err := p.simple(toks[:end])
	if err != nil {
		return 0, nil, err
	}

	return end + 1, []Instruction{in}, nil
}

// one adapts a single-instruction parse result to the statement signature.
func one[T Instruction](n int, in T, err error) (int, []Instruction, error) {
	if err != nil {
		return 0, nil, err
	}

	return n, []Instruction{in}, nil
}

// terminator returns the index of the first ';' at nesting depth zero.
func terminator(toks []Token) (int, error) {
	depth := 0

	for i, t := range toks {
		switch t.Name {
		case NameParenOpen, NameBracketOpen, NameBlockOpen:
			depth++
		case NameParenClose, NameBracketClose, NameBlockClose:
			depth--
		case NameSemicolon:
			if depth == 0 {
				return i, nil
			}
		}

		if depth < 0 {
			return 0, syntaxErrorf(t.Pos(), "unexpected %s", t)
		}
	}

	return 0, syntaxErrorf(endPos(toks), "expected ';'")
}

// matching returns the index of the delimiter closing toks[0].
func matching(toks []Token) (int, error) {
	open := toks[0].Name

	var closing Name

	switch open {
	case NameParenOpen:
		closing = NameParenClose
	case NameBracketOpen:
		closing = NameBracketClose
	case NameBlockOpen:
		closing = NameBlockClose
	default:
		return 0, syntaxErrorf(toks[0].Pos(), "expected delimiter, found %s", toks[0])
	}

	depth := 0

	for i, t := range toks {
		switch t.Name {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}

	return 0, syntaxErrorf(toks[0].Pos(), "unbalanced %s", toks[0])
}

// split divides toks at every sep found at nesting depth zero.
func split(toks []Token, sep Name) [][]Token {
	var (
		parts [][]Token
		depth int
		from  int
	)

	for i, t := range toks {
		switch t.Name {
		case NameParenOpen, NameBracketOpen, NameBlockOpen:
			depth++
		case NameParenClose, NameBracketClose, NameBlockClose:
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, toks[from:i])
				from = i + 1
			}
		}
	}

	return append(parts, toks[from:])
}

// expect reports an error unless toks begins with name.
func expect(toks []Token, name Name, end Pos) error {
	if len(toks) == 0 || toks[0].Name != name {
		if len(toks) == 0 {
			return syntaxErrorf(end, "expected '%s'", name)
		}

		return syntaxErrorf(toks[0].Pos(), "expected '%s', found %s", name, toks[0])
	}

	return nil
}

// parenthesized returns the interior of the parenthesized region at the
// start of toks and the number of tokens it spans.
func parenthesized(toks []Token, end Pos) ([]Token, int, error) {
	if err := expect(toks, NameParenOpen, end); err != nil {
		return nil, 0, err
	}

	closing, err := matching(toks)
	if err != nil {
		return nil, 0, err
	}

	return toks[1:closing], closing + 1, nil
}

// declaration parses "var a, b = expr" (without the terminator). Each name
// receives its own assignment of the shared initializer; names without an
// initializer produce no instruction.
func (p *parser) declaration(toks []Token) ([]Instruction, error) {
	var names []Token

	i := 1

	for {
		if i >= len(toks) {
			return nil, syntaxErrorf(endPos(toks), "expected variable name")
		}

		switch t := toks[i]; {
		case t.Name == NameRef:
			return nil, syntaxErrorf(t.Pos(), "ref is only valid on parameters")
		case t.Kind != KindIdentifier:
			return nil, syntaxErrorf(t.Pos(), "expected variable name, found %s", t)
		}

		names = append(names, toks[i])
		i++

		if i < len(toks) && toks[i].Name == NameComma {
			i++

			continue
		}

		break
	}

	var init Instruction

	if i < len(toks) {
		if toks[i].Name != NameAssign {
			return nil, unexpected(toks[i:], endPos(toks))
		}

		if i+1 == len(toks) {
			return nil, syntaxErrorf(toks[i].Pos(), "missing initializer")
		}

		var err error
		if init, err = p.expression(toks[i+1:]); err != nil {
			return nil, err
		}
	}

	out := make([]Instruction, 0, len(names))

	for _, name := range names {
		v, err := p.declare(name, false)
		if err != nil {
			return nil, err
		}

		if init != nil {
			out = append(out, &Assignment{
				node:  node{Pos: name.Pos()},
				Name:  name.Value,
				Var:   v,
				Op:    NameAssign,
				Value: init,
			})
		}
	}

	return out, nil
}

// function parses a function declaration and records it in the program.
func (p *parser) function(toks []Token) (int, error) {
	if p.fn != nil || len(p.scopes) > 1 {
		return 0, syntaxErrorf(toks[0].Pos(), "functions must be declared at top level")
	}

	if len(toks) < 2 || toks[1].Kind != KindIdentifier {
		return 0, unexpected(toks[1:], endPos(toks))
	}

	name := toks[1]

	for _, fn := range p.prog.Functions {
		if fn.Name == name.Value {
			return 0, syntaxErrorf(name.Pos(), "function %s is already declared", name.Value)
		}
	}

	params, n, err := parenthesized(toks[2:], endPos(toks))
	if err != nil {
		return 0, err
	}

	fn := &Function{Pos: toks[0].Pos(), Name: name.Value}
	p.fn, p.locals = fn, make(map[string]*Variable)
	p.push()

	defer func() {
		p.pop()
		p.fn, p.locals = nil, nil
	}()

	if len(params) > 0 {
		for _, param := range split(params, NameComma) {
			ref := len(param) > 0 && param[0].Name == NameRef
			if ref {
				param = param[1:]
			}

			if len(param) != 1 || param[0].Kind != KindIdentifier {
				return 0, unexpected(param, endPos(params))
			}

			if _, err := p.declare(param[0], ref); err != nil {
				return 0, err
			}
		}
	}

	fn.Parameters = len(fn.Variables)

	rest := toks[2+n:]
	if err := expect(rest, NameBlockOpen, endPos(toks)); err != nil {
		return 0, err
	}

	closing, err := matching(rest)
	if err != nil {
		return 0, err
	}

	// The body shares the parameter scope.
	if fn.Body, err = p.statements(rest[1:closing]); err != nil {
		return 0, err
	}

	p.prog.Functions = append(p.prog.Functions, fn)

	return 2 + n + closing + 1, nil
}

// block parses a braced statement sequence. A new declaration scope is
// opened when scoped is set.
func (p *parser) block(toks []Token, scoped bool) (int, *Block, error) {
	closing, err := matching(toks)
	if err != nil {
		return 0, nil, err
	}

	if scoped {
		p.push()
		defer p.pop()
	}

	body, err := p.statements(toks[1:closing])
	if err != nil {
		return 0, nil, err
	}

	return closing + 1, &Block{node: node{Pos: toks[0].Pos()}, Body: body}, nil
}

// body parses the braced block that must start toks.
func (p *parser) body(toks []Token, end Pos) (int, *Block, error) {
	if err := expect(toks, NameBlockOpen, end); err != nil {
		return 0, nil, err
	}

	return p.block(toks, true)
}

// loopBody parses the body of a loop.
func (p *parser) loopBody(toks []Token, end Pos) (int, *Block, error) {
	p.loops++
	defer func() { p.loops-- }()

	return p.body(toks, end)
}

// test parses a parenthesized, non-empty condition.
func (p *parser) test(toks []Token, end Pos) (int, Instruction, error) {
	inner, n, err := parenthesized(toks, end)
	if err != nil {
		return 0, nil, err
	}

	if len(inner) == 0 {
		return 0, nil, syntaxErrorf(toks[0].Pos(), "missing condition")
	}

	in, err := p.expression(inner)

	return n, in, err
}

func (p *parser) condition(toks []Token) (int, *Condition, error) {
	cond := &Condition{node: node{Pos: toks[0].Pos()}}
	end := endPos(toks)
	i := 0

	for {
		// toks[i] is "if"
		n, test, err := p.test(toks[i+1:], end)
		if err != nil {
			return 0, nil, err
		}

		i += 1 + n

		n, body, err := p.body(toks[i:], end)
		if err != nil {
			return 0, nil, err
		}

		i += n
		cond.Branches = append(cond.Branches, Branch{Test: test, Body: body})

		if i >= len(toks) || toks[i].Name != NameElse {
			return i, cond, nil
		}

		i++

		if i < len(toks) && toks[i].Name == NameIf {
			continue
		}

		n, cond.Else, err = p.body(toks[i:], end)
		if err != nil {
			return 0, nil, err
		}

		return i + n, cond, nil
	}
}

func (p *parser) while(toks []Token) (int, *While, error) {
	end := endPos(toks)

	n, test, err := p.test(toks[1:], end)
	if err != nil {
		return 0, nil, err
	}

	m, body, err := p.loopBody(toks[1+n:], end)
	if err != nil {
		return 0, nil, err
	}

	return 1 + n + m, &While{node: node{Pos: toks[0].Pos()}, Test: test, Body: body}, nil
}

func (p *parser) doWhile(toks []Token) (int, *DoWhile, error) {
	end := endPos(toks)

	n, body, err := p.loopBody(toks[1:], end)
	if err != nil {
		return 0, nil, err
	}

	i := 1 + n
	if err := expect(toks[i:], NameWhile, end); err != nil {
		return 0, nil, err
	}

	m, test, err := p.test(toks[i+1:], end)
	if err != nil {
		return 0, nil, err
	}

	i += 1 + m
	if i < len(toks) && toks[i].Name == NameSemicolon {
		i++
	}

	return i, &DoWhile{node: node{Pos: toks[0].Pos()}, Body: body, Test: test}, nil
}

func (p *parser) forLoop(toks []Token) (int, *For, error) {
	end := endPos(toks)

	header, n, err := parenthesized(toks[1:], end)
	if err != nil {
		return 0, nil, err
	}

	parts := split(header, NameSemicolon)
	if len(parts) != 3 {
		return 0, nil, syntaxErrorf(toks[0].Pos(), "for header needs init; test; step")
	}

	loop := &For{node: node{Pos: toks[0].Pos()}}

	// Declarations in the header belong to the loop's scope.
	p.push()
	defer p.pop()

	if init := parts[0]; len(init) > 0 {
		if init[0].Name == NameVar {
			ins, err := p.declaration(init)
			if err != nil {
				return 0, nil, err
			}

			switch len(ins) {
			case 0:
			case 1:
				loop.Init = ins[0]
			default:
				loop.Init = &Block{node: node{Pos: init[0].Pos()}, Body: ins}
			}
		} else if loop.Init, err = p.simple(init); err != nil {
			return 0, nil, err
		}
	}

	if len(parts[1]) > 0 {
		if loop.Test, err = p.expression(parts[1]); err != nil {
			return 0, nil, err
		}
	}

	if len(parts[2]) > 0 {
		if loop.Step, err = p.simple(parts[2]); err != nil {
			return 0, nil, err
		}
	}

	m, body, err := p.loopBody(toks[1+n:], end)
	if err != nil {
		return 0, nil, err
	}

	loop.Body = body

	return 1 + n + m, loop, nil
}

// simple parses an assignment or expression statement spanning all of toks.
func (p *parser) simple(toks []Token) (Instruction, error) {
	if at := assignmentAt(toks); at > 0 {
		return p.assignment(toks, at)
	}

	return p.expression(toks)
}

// assignmentAt returns the index of the assignment operator when toks is an
// identifier followed, before any operator, by an assignment token.
// Otherwise it returns -1.
func assignmentAt(toks []Token) int {
	if len(toks) == 0 || toks[0].Kind != KindIdentifier {
		return -1
	}

	depth := 0

	for i := 1; i < len(toks); i++ {
		switch t := toks[i]; {
		case t.Name == NameParenOpen || t.Name == NameBracketOpen:
			depth++
		case t.Name == NameParenClose || t.Name == NameBracketClose:
			depth--
		case depth > 0:
		case t.Kind == KindAssignment:
			return i
		case t.Kind == KindOperator || t.Kind == KindUnaryOperator:
			return -1
		}
	}

	return -1
}

func (p *parser) assignment(toks []Token, at int) (Instruction, error) {
	n, path, err := p.path(toks[1:at])
	if err != nil {
		return nil, err
	}

	if 1+n != at {
		return nil, unexpected(toks[1+n:], toks[at].Pos())
	}

	if at+1 == len(toks) {
		return nil, syntaxErrorf(toks[at].Pos(), "missing value after %s", toks[at])
	}

	value, err := p.expression(toks[at+1:])
	if err != nil {
		return nil, err
	}

	return &Assignment{
		node:  node{Pos: toks[0].Pos(), Path: path},
		Name:  toks[0].Value,
		Op:    toks[at].Name,
		Value: value,
	}, nil
}

// expression parses all of toks as an operand or a binary operation chain.
func (p *parser) expression(toks []Token) (Instruction, error) {
	var (
		operands []Instruction
		ops      []Name
		end      = endPos(toks)
	)

	for i := 0; ; {
		n, operand, err := p.operand(toks[i:], end)
		if err != nil {
			return nil, err
		}

		operands = append(operands, operand)
		i += n

		if i == len(toks) {
			break
		}

		if toks[i].Kind != KindOperator {
			return nil, unexpected(toks[i:], end)
		}

		ops = append(ops, toks[i].Name)
		i++

		if i == len(toks) {
			return nil, syntaxErrorf(toks[i-1].Pos(), "missing operand after %s", toks[i-1])
		}
	}

	if len(ops) == 0 {
		return operands[0], nil
	}

	return fold(operands, ops), nil
}

// groups are the precedence groups from tightest to loosest binding.
var groups = [][]Name{
	{NameMul, NameDiv, NameMod},
	{NameAdd, NameSub},
	{NameEqual, NameNotEqual, NameGreater, NameLess, NameGreaterEqual, NameLessEqual},
	{NameOr, NameAnd},
}

// fold restructures a flat chain so that each resulting chain holds
// operators of a single precedence group. Groups are processed tightest
// first: each run of consecutive operators from the group is replaced by a
// sub-chain, until every remaining operator is in the group at hand.
func fold(operands []Instruction, ops []Name) Instruction {
	for _, group := range groups {
		if !slices.ContainsFunc(ops, func(op Name) bool { return !slices.Contains(group, op) }) {
			break
		}

		var (
			nextOperands = []Instruction{operands[0]}
			nextOps      []Name
			open         *Chain // sub-chain built from the current run
		)

		for i, op := range ops {
			rhs := operands[i+1]

			if !slices.Contains(group, op) {
				open = nil
				nextOps = append(nextOps, op)
				nextOperands = append(nextOperands, rhs)

				continue
			}

			if open == nil {
				lhs := nextOperands[len(nextOperands)-1]
				open = &Chain{
					node:     node{Pos: lhs.Position()},
					Operands: []Instruction{lhs},
				}
				nextOperands[len(nextOperands)-1] = open
			}

			open.Operands = append(open.Operands, rhs)
			open.Operators = append(open.Operators, op)
		}

		operands, ops = nextOperands, nextOps
	}

	return &Chain{
		node:      node{Pos: operands[0].Position()},
		Operands:  operands,
		Operators: ops,
	}
}

// operand parses a single operand at the start of toks: a literal, a
// variable reference, a call, a parenthesized expression, or one of these
// behind a prefix operator. Paths may follow references, calls and
// parenthesized expressions.
func (p *parser) operand(toks []Token, end Pos) (int, Instruction, error) {
	if len(toks) == 0 {
		return 0, nil, syntaxErrorf(end, "missing operand")
	}

	t := toks[0]
	at := node{Pos: t.Pos()}

	switch {
	case t.Name == NameNot:
		n, in, err := p.operand(toks[1:], end)
		if err != nil {
			return 0, nil, err
		}

		return 1 + n, &Negation{node: at, Operand: in}, nil

	case t.Name == NameSub:
		// Unary minus on anything but a numeric literal is 0 - x.
		n, in, err := p.operand(toks[1:], end)
		if err != nil {
			return 0, nil, err
		}

		zero := &Literal{node: at, Value: NewInt(0)}

		return 1 + n, &Chain{
			node:      at,
			Operands:  []Instruction{zero, in},
			Operators: []Name{NameSub},
		}, nil

	case t.Name == NameIncrement || t.Name == NameDecrement:
		if len(toks) < 2 || toks[1].Kind != KindIdentifier {
			return 0, nil, unexpected(toks[1:], end)
		}

		n, path, err := p.path(toks[2:])
		if err != nil {
			return 0, nil, err
		}

		return 2 + n, &IncDec{
			node:   node{Pos: t.Pos(), Path: path},
			Name:   toks[1].Value,
			Op:     t.Name,
			Prefix: true,
		}, nil

	case t.Kind == KindLiteral:
		v, err := literal(t)
		if err != nil {
			return 0, nil, err
		}

		return 1, &Literal{node: at, Value: v}, nil

	case t.Kind == KindIdentifier:
		if len(toks) > 1 && toks[1].Name == NameParenOpen {
			return p.call(toks)
		}

		n, path, err := p.path(toks[1:])
		if err != nil {
			return 0, nil, err
		}

		at.Path = path
		i := 1 + n

		if i < len(toks) && (toks[i].Name == NameIncrement || toks[i].Name == NameDecrement) {
			return i + 1, &IncDec{node: at, Name: t.Value, Op: toks[i].Name}, nil
		}

		return i, &Reference{node: at, Name: t.Value}, nil

	case t.Name == NameParenOpen:
		closing, err := matching(toks)
		if err != nil {
			return 0, nil, err
		}

		if closing == 1 {
			return 0, nil, syntaxErrorf(t.Pos(), "empty parentheses")
		}

		in, err := p.expression(toks[1:closing])
		if err != nil {
			return 0, nil, err
		}

		n, path, err := p.path(toks[closing+1:])
		if err != nil {
			return 0, nil, err
		}

		if len(path) > 0 {
			in = withPath(in, path)
		}

		return closing + 1 + n, in, nil
	}

	return 0, nil, unexpected(toks, end)
}

// withPath returns in with path appended to its own. A node whose path is
// applied to an assignment target is wrapped in a chain first so that the
// path addresses its value.
func withPath(in Instruction, path []PathSegment) Instruction {
	switch in.(type) {
	case *Assignment, *IncDec:
		in = &Chain{node: node{Pos: in.Position()}, Operands: []Instruction{in}}
	}

	b := in.base()
	b.Path = append(b.Path, path...)

	return in
}

// call parses name(args...) with an optional trailing path.
func (p *parser) call(toks []Token) (int, Instruction, error) {
	inner, n, err := parenthesized(toks[1:], endPos(toks))
	if err != nil {
		return 0, nil, err
	}

	fc := &FunctionCall{node: node{Pos: toks[0].Pos()}, Name: toks[0].Value}

	if len(inner) > 0 {
		for _, arg := range split(inner, NameComma) {
			if len(arg) == 0 {
				return 0, nil, syntaxErrorf(toks[1].Pos(), "empty argument in call to %s", fc.Name)
			}

			in, err := p.expression(arg)
			if err != nil {
				return 0, nil, err
			}

			fc.Args = append(fc.Args, in)
		}
	}

	m, path, err := p.path(toks[1+n:])
	if err != nil {
		return 0, nil, err
	}

	fc.Path = path

	return 1 + n + m, fc, nil
}

// path parses the accessors at the start of toks, returning the tokens
// consumed. It stops at the first token that begins no accessor.
func (p *parser) path(toks []Token) (int, []PathSegment, error) {
	var (
		segs []PathSegment
		i    int
	)

	for i < len(toks) {
		t := toks[i]

		switch t.Name {
		case NameBracketOpen:
			closing, err := matching(toks[i:])
			if err != nil {
				return 0, nil, err
			}

			if closing == 1 {
				return 0, nil, syntaxErrorf(t.Pos(), "empty index")
			}

			index, err := p.expression(toks[i+1 : i+closing])
			if err != nil {
				return 0, nil, err
			}

			segs = append(segs, PathSegment{Pos: t.Pos(), Index: index})
			i += closing + 1

		case NameDot:
			if i+1 >= len(toks) || toks[i+1].Kind != KindIdentifier {
				return 0, nil, syntaxErrorf(t.Pos(), "expected member name after '.'")
			}

			segs = append(segs, PathSegment{Pos: toks[i+1].Pos(), Member: toks[i+1].Value})
			i += 2

		default:
			return i, segs, nil
		}
	}

	return i, segs, nil
}

// literal converts a literal token to its value.
func literal(t Token) (Value, error) {
	switch t.Name {
	case NameTrue:
		return NewBool(true), nil
	case NameFalse:
		return NewBool(false), nil
	case NameUndefined:
		return Undefined(), nil
	case NameString:
		return NewString(t.Value), nil
	}

	v, err := ParseNumeric(t.Value)
	if err != nil {
		return Value{}, ErrSyntax.Wrap(err).at(t.Pos())
	}

	return v, nil
}

// merge carries base functions that were not redeclared into the program
// and indexes it.
func (p *parser) merge() {
	if p.base != nil {
		declared := make(map[string]bool, len(p.prog.Functions))
		for _, fn := range p.prog.Functions {
			declared[fn.Name] = true
		}

		var carried []*Function

		for _, fn := range p.base.Functions {
			if !declared[fn.Name] {
				carried = append(carried, fn)
			}
		}

		p.prog.Functions = append(carried, p.prog.Functions...)
	}

	p.prog.index()
}

// resolve binds every variable use to its declaration. Inside a function a
// name resolves to the function's local of that name, else to a global;
// names that resolve to nothing stay unbound and fail when executed.
func (p *parser) resolve() {
	bind := func(locals map[string]*Variable) func(Instruction) {
		lookup := func(name string) *Variable {
			if v, ok := locals[name]; ok {
				return v
			}

			return p.globals[name]
		}

		return func(in Instruction) {
			switch n := in.(type) {
			case *Reference:
				n.Var = lookup(n.Name)
			case *Assignment:
				n.Var = lookup(n.Name)
			case *IncDec:
				n.Var = lookup(n.Name)
			}
		}
	}

	walkAll(p.prog.Instructions, bind(nil))

	for _, fn := range p.prog.Functions {
		if p.base != nil && slices.Contains(p.base.Functions, fn) {
			continue
		}

		locals := make(map[string]*Variable, len(fn.Variables))
		for _, v := range fn.Variables {
			locals[v.Name] = v
		}

		walkAll(fn.Body, bind(locals))
	}
}
