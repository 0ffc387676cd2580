package lang

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

// Position returns p. It lets nodes embedding Pos satisfy [Instruction].
func (p Pos) Position() Pos { return p }

// Program is a parsed script. A Program is immutable once returned by
// [Analyse] and may be shared by any number of interpreters.
type Program struct {
	// Variables are the global declarations, indexed by [Variable.Index].
	Variables []*Variable
	// Instructions are the top-level statements in source order.
	Instructions []Instruction
	// Functions are the user-defined functions in declaration order.
	Functions []*Function

	functions map[string]*Function
}

// Function returns the user-defined function named name.
func (p *Program) Function(name string) (*Function, bool) {
	if p == nil {
		return nil, false
	}

	fn, ok := p.functions[name]

	return fn, ok
}

func (p *Program) index() {
	p.functions = make(map[string]*Function, len(p.Functions))
	for _, fn := range p.Functions {
		p.functions[fn.Name] = fn
	}
}

// Function is a user-defined function.
type Function struct {
	Pos

	Name string
	// Parameters is the number of leading entries of Variables that are
	// parameters.
	Parameters int
	// Variables are the parameters followed by every local declared anywhere
	// in the body.
	Variables []*Variable
	Body      []Instruction
}

// Variable is a declared storage slot. Globals index the interpreter's global
// table; locals index the active frame.
type Variable struct {
	Name string
	// IsReference marks a parameter declared with ref, which aliases the
	// caller's variable instead of copying it.
	IsReference bool
	IsGlobal    bool
	Index       int
}

// Instruction is a node of the syntax tree. The set of implementations is
// closed: every Instruction is one of the pointer types declared in this
// file.
type Instruction interface {
	Position() Pos
	base() *node
}

// node holds what every instruction carries: its position and an optional
// path applied to its value (or, for assignments, to its target).
type node struct {
	Pos

	Path []PathSegment
}

func (n *node) base() *node { return n }

// PathSegment is one accessor of a path: an index expression (a[i]) when
// Index is non-nil, otherwise a member name (a.name).
type PathSegment struct {
	Pos

	Index  Instruction
	Member string
}

// Assignment stores Value into the variable named Name, or into the slot its
// Path designates. Op is one of NameAssign, NameAddAssign, NameSubAssign,
// NameMulAssign or NameDivAssign.
type Assignment struct {
	node

	Name  string
	Var   *Variable
	Op    Name
	Value Instruction
}

// Literal is a constant value.
type Literal struct {
	node

	Value Value
}

// FunctionCall invokes a native or user-defined function.
type FunctionCall struct {
	node

	Name string
	Args []Instruction
}

// Reference reads a variable.
type Reference struct {
	node

	Name string
	Var  *Variable
}

// Return leaves the current function (or the program at top level) with the
// value of Value, which may be nil.
type Return struct {
	node

	Value Instruction
}

// Chain is a binary operation chain evaluated left to right. It always
// holds one more operand than operators. After parsing, every operator in a
// chain belongs to the same precedence group.
type Chain struct {
	node

	Operands  []Instruction
	Operators []Name
}

// Branch is one test and body of a [Condition].
type Branch struct {
	Test Instruction
	Body *Block
}

// Condition is an if / else if / else chain. Else is nil without a trailing
// else.
type Condition struct {
	node

	Branches []Branch
	Else     *Block
}

// While is a pre-tested loop.
type While struct {
	node

	Test Instruction
	Body *Block
}

// DoWhile is a post-tested loop.
type DoWhile struct {
	node

	Body *Block
	Test Instruction
}

// For is a counted loop. Init, Test and Step may each be nil; a nil Test is
// always true.
type For struct {
	node

	Init Instruction
	Test Instruction
	Step Instruction
	Body *Block
}

// IncDec increments or decrements a numeric variable, or the slot its Path
// designates. A prefix form yields the updated value, a postfix form the
// previous one.
type IncDec struct {
	node

	Name   string
	Var    *Variable
	Op     Name
	Prefix bool
}

// Negation is logical not.
type Negation struct {
	node

	Operand Instruction
}

// Break leaves the nearest enclosing loop.
type Break struct{ node }

// Continue skips to the next iteration of the nearest enclosing loop.
type Continue struct{ node }

// Block is a braced statement sequence.
type Block struct {
	node

	Body []Instruction
}

// walk calls visit for in and each instruction nested in it, depth first.
// Shared subtrees are visited once per reference.
func walk(in Instruction, visit func(Instruction)) {
	if in == nil {
		return
	}

	visit(in)

	for _, seg := range in.base().Path {
		walk(seg.Index, visit)
	}

	switch n := in.(type) {
	case *Assignment:
		walk(n.Value, visit)
	case *FunctionCall:
		walkAll(n.Args, visit)
	case *Return:
		walk(n.Value, visit)
	case *Chain:
		walkAll(n.Operands, visit)
	case *Condition:
		for _, br := range n.Branches {
			walk(br.Test, visit)
			walkBlock(br.Body, visit)
		}

		walkBlock(n.Else, visit)
	case *While:
		walk(n.Test, visit)
		walkBlock(n.Body, visit)
	case *DoWhile:
		walkBlock(n.Body, visit)
		walk(n.Test, visit)
	case *For:
		walk(n.Init, visit)
		walk(n.Test, visit)
		walk(n.Step, visit)
		walkBlock(n.Body, visit)
	case *Negation:
		walk(n.Operand, visit)
	case *Block:
		walkAll(n.Body, visit)
	case *Literal, *Reference, *IncDec, *Break, *Continue:
	}
}

func walkAll(ins []Instruction, visit func(Instruction)) {
	for _, in := range ins {
		walk(in, visit)
	}
}

func walkBlock(b *Block, visit func(Instruction)) {
	if b != nil {
		walk(b, visit)
	}
}
