package lang

import (
	"context"
	"errors"
	"log/slog"
)

// flow is how control leaves an instruction.
type flow uint8

const (
	flowNext flow = iota
	flowReturn
	flowBreak
	flowContinue
)

var (
	errDepth     = errors.New("maximum call depth exceeded")
	errNotIndex  = errors.New("index must be numeric or string")
	errUnbound   = errors.New("assignment target has no value")
	errNoMembers = errors.New("value has no members")
)

// execAll runs ins in order until one of them changes the flow. It returns
// the value of the last instruction run.
func (it *Interpreter) execAll(ctx context.Context, ins []Instruction) (Value, flow, error) {
	var last Value

	for _, in := range ins {
		v, fl, err := it.exec(ctx, in)
		if err != nil {
			return Value{}, flowNext, err
		}

		if fl != flowNext {
			return v, fl, nil
		}

		last = v
	}

	return last, flowNext, nil
}

// eval runs an expression for its value.
func (it *Interpreter) eval(ctx context.Context, in Instruction) (Value, error) {
	v, _, err := it.exec(ctx, in)

	return v, err
}

// exec runs one instruction.
func (it *Interpreter) exec(ctx context.Context, in Instruction) (Value, flow, error) {
	it.at = in.Position()

	var (
		v   Value
		err error
	)

	switch n := in.(type) {
	case *Assignment:
		v, err = it.assign(ctx, n)

		return v, flowNext, err

	case *IncDec:
		v, err = it.incDec(ctx, n)

		return v, flowNext, err

	case *Literal:
		v = n.Value

	case *Reference:
		if n.Var == nil {
			return Value{}, flowNext, NewError(CodeVariableNotFound, n.Name).at(n.Pos)
		}

		v = *it.slot(n.Var)

	case *FunctionCall:
		v, err = it.call(ctx, n)

	case *Chain:
		v, err = it.chain(ctx, n)

	case *Negation:
		v, err = it.eval(ctx, n.Operand)
		v = NewBool(!v.Bool())

	case *Return:
		if n.Value != nil {
			v, err = it.eval(ctx, n.Value)
		}

		return v, flowReturn, err

	case *Break:
		return Value{}, flowBreak, nil

	case *Continue:
		return Value{}, flowContinue, nil

	case *Block:
		return it.execAll(ctx, n.Body)

	case *Condition:
		return it.condition(ctx, n)

	case *While:
		return it.loop(ctx, nil, n.Test, nil, n.Body, false)

	case *DoWhile:
		return it.loop(ctx, nil, n.Test, nil, n.Body, true)

	case *For:
		return it.loop(ctx, n.Init, n.Test, n.Step, n.Body, false)

	default:
		return Value{}, flowNext, execErrorf(in.Position(), "unknown instruction %T", in)
	}

	if err != nil {
		return Value{}, flowNext, err
	}

	if path := in.base().Path; len(path) > 0 {
		v, err = it.follow(ctx, v, path)
	}

	return v, flowNext, err
}

// slot returns the storage of a resolved variable.
func (it *Interpreter) slot(v *Variable) *Value {
	if v.IsGlobal {
		return it.globals[v.Index]
	}

	return it.arena.local(it.fn, v.Index)
}

func (it *Interpreter) condition(ctx context.Context, n *Condition) (Value, flow, error) {
	for _, br := range n.Branches {
		test, err := it.eval(ctx, br.Test)
		if err != nil {
			return Value{}, flowNext, err
		}

		if test.Bool() {
			return it.execAll(ctx, br.Body.Body)
		}
	}

	if n.Else != nil {
		return it.execAll(ctx, n.Else.Body)
	}

	return Value{}, flowNext, nil
}

// loop runs the shared loop state machine. init runs once; test runs before
// each iteration (after it when post is set) and a nil test is true; next
// runs after each iteration, including one ended by continue. A break or
// continue stops here; a return propagates.
func (it *Interpreter) loop(
	ctx context.Context,
	init, test, next Instruction,
	body *Block,
	post bool,
) (Value, flow, error) {
	if init != nil {
		if _, err := it.eval(ctx, init); err != nil {
			return Value{}, flowNext, err
		}
	}

	for first := true; ; first = false {
		if err := it.checkContext(ctx); err != nil {
			return Value{}, flowNext, err
		}

		if test != nil && !(post && first) {
			v, err := it.eval(ctx, test)
			if err != nil {
				return Value{}, flowNext, err
			}

			if !v.Bool() {
				return Value{}, flowNext, nil
			}
		}

		v, fl, err := it.execAll(ctx, body.Body)
		if err != nil {
			return Value{}, flowNext, err
		}

		switch fl {
		case flowReturn:
			return v, fl, nil
		case flowBreak:
			return Value{}, flowNext, nil
		case flowNext, flowContinue:
		}

		if next != nil {
			if _, err := it.eval(ctx, next); err != nil {
				return Value{}, flowNext, err
			}
		}
	}
}

func (it *Interpreter) checkContext(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}

	return ErrExecution.Wrap(context.Cause(ctx)).at(it.at)
}

// chain evaluates a binary operation chain left to right. The right operand
// of && is skipped while the accumulated value is false, and that of || while
// it is true; evaluation continues with the next operator either way.
func (it *Interpreter) chain(ctx context.Context, c *Chain) (Value, error) {
	acc, err := it.eval(ctx, c.Operands[0])
	if err != nil {
		return Value{}, err
	}

	for i, op := range c.Operators {
		switch {
		case op == NameAnd && !acc.Bool():
			acc = NewBool(false)

			continue
		case op == NameOr && acc.Bool():
			acc = NewBool(true)

			continue
		}

		operand := c.Operands[i+1]

		rhs, err := it.eval(ctx, operand)
		if err != nil {
			return Value{}, err
		}

		if acc, err = binary(op, acc, rhs); err != nil {
			return Value{}, ErrExecution.Wrap(err).at(operand.Position())
		}
	}

	return acc, nil
}

// assign stores the right-hand side into the target slot and returns the
// stored value.
func (it *Interpreter) assign(ctx context.Context, n *Assignment) (Value, error) {
	if n.Var == nil {
		return Value{}, NewError(CodeAssignNotFound, n.Name).at(n.Pos)
	}

	v, err := it.eval(ctx, n.Value)
	if err != nil {
		return Value{}, err
	}

	target, err := it.locate(ctx, it.slot(n.Var), n.Path)
	if err != nil {
		return Value{}, err
	}

	if n.Op != NameAssign {
		if v, err = binary(compound(n.Op), *target, v); err != nil {
			return Value{}, ErrExecution.Wrap(err).at(n.Pos)
		}
	}

	*target = v

	return v, nil
}

func (it *Interpreter) incDec(ctx context.Context, n *IncDec) (Value, error) {
	if n.Var == nil {
		return Value{}, NewError(CodeAssignNotFound, n.Name).at(n.Pos)
	}

	target, err := it.locate(ctx, it.slot(n.Var), n.Path)
	if err != nil {
		return Value{}, err
	}

	delta := int64(1)
	if n.Op == NameDecrement {
		delta = -1
	}

	old := *target

	v, err := step(old, delta)
	if err != nil {
		return Value{}, ErrExecution.Wrap(err).at(n.Pos)
	}

	*target = v

	if n.Prefix {
		return v, nil
	}

	return old, nil
}

// key evaluates an index segment.
func (it *Interpreter) key(ctx context.Context, seg PathSegment) (Value, error) {
	k, err := it.eval(ctx, seg.Index)
	if err != nil {
		return Value{}, err
	}

	if k.typ != TypeNumeric && k.typ != TypeString {
		return Value{}, ErrExecution.Wrap(errNotIndex).at(seg.Pos)
	}

	return k, nil
}

// follow applies path to v for reading. A missing structure or map member
// reads as undefined. Array indexes must be integers within the array.
func (it *Interpreter) follow(ctx context.Context, v Value, path []PathSegment) (Value, error) {
	for _, seg := range path {
		name := seg.Member

		if seg.Index != nil {
			k, err := it.key(ctx, seg)
			if err != nil {
				return Value{}, err
			}

			if v.typ == TypeArray {
				var item Value

				i, ok := k.Index()
				if ok {
					item, ok = v.arr.At(i)
				}

				if !ok {
					return Value{}, outOfRange(seg.Pos, k, v.arr.Len())
				}

				v = item

				continue
			}

			name = k.String()
		}

		if v.fields == nil {
			return Value{}, ErrExecution.Wrap(errNoMembers).
				With(slog.String("type", v.typ.String())).
				at(seg.Pos)
		}

		v, _ = v.fields.Get(name)
	}

	return v, nil
}

// locate applies path to the storage at slot for writing and returns the
// storage it designates. Missing structure and map members are created, and
// a member access on an undefined slot turns it into a new structure. Array
// indexes must be integers within the array.
func (it *Interpreter) locate(ctx context.Context, slot *Value, path []PathSegment) (*Value, error) {
	for _, seg := range path {
		name := seg.Member

		if seg.Index != nil {
			k, err := it.key(ctx, seg)
			if err != nil {
				return nil, err
			}

			if slot.typ == TypeArray {
				var item *Value

				i, ok := k.Index()
				if ok {
					item, ok = slot.arr.slot(i)
				}

				if !ok {
					return nil, outOfRange(seg.Pos, k, slot.arr.Len())
				}

				slot = item

				continue
			}

			if slot.typ == TypeUndefined {
				return nil, ErrExecution.Wrap(errUnbound).at(seg.Pos)
			}

			name = k.String()
		}

		if slot.typ == TypeUndefined {
			*slot = NewStructure()
		}

		if slot.fields == nil {
			return nil, ErrExecution.Wrap(errNoMembers).
				With(slog.String("type", slot.typ.String())).
				at(seg.Pos)
		}

		slot = slot.fields.slot(name)
	}

	return slot, nil
}

func outOfRange(at Pos, k Value, n int) *Error {
	return execErrorf(at, "index %s out of range [0, %d)", k, n)
}

// call evaluates the arguments and dispatches to a native function or, if
// none has the name, to a script function.
func (it *Interpreter) call(ctx context.Context, n *FunctionCall) (Value, error) {
	if native, ok := it.natives[n.Name]; ok {
		args := make([]Value, len(n.Args))

		for i, arg := range n.Args {
			v, err := it.eval(ctx, arg)
			if err != nil {
				return Value{}, err
			}

			args[i] = v
		}

		it.logger.TraceContext(ctx, "native call",
			slog.String("name", n.Name),
			slog.Int("args", len(args)),
		)

		v, err := it.native(ctx, native, Call{Name: n.Name, Interpreter: it, Args: args, Pos: n.Pos})
		it.at = n.Pos

		return v, err
	}

	fn, ok := it.program.Function(n.Name)
	if !ok {
		return Value{}, NewError(CodeFunctionNotFound, n.Name).at(n.Pos)
	}

	if len(n.Args) != fn.Parameters {
		return Value{}, execErrorf(n.Pos,
			"function %s expects %d arguments, got %d", fn.Name, fn.Parameters, len(n.Args))
	}

	slots := make([]*Value, len(n.Args))

	for i, arg := range n.Args {
		if ref, ok := arg.(*Reference); ok && fn.Variables[i].IsReference && ref.Var != nil {
			slot, err := it.locate(ctx, it.slot(ref.Var), ref.Path)
			if err != nil {
				return Value{}, err
			}

			slots[i] = slot

			continue
		}

		v, err := it.eval(ctx, arg)
		if err != nil {
			return Value{}, err
		}

		slots[i] = &v
	}

	v, err := it.invoke(ctx, fn, slots, n.Pos)
	it.at = n.Pos

	return v, err
}

// native invokes fn, positioning any error it returns at the call.
func (it *Interpreter) native(ctx context.Context, fn NativeFunction, call Call) (Value, error) {
	v, err := fn(ctx, call)
	if err != nil {
		ee := WrapError(CodeExecution, err)
		if ee.Line == 0 {
			ee = ee.at(call.Pos)
		}

		return Value{}, ee
	}

	return v, nil
}

// invoke runs fn in a new frame whose parameter slots are args.
func (it *Interpreter) invoke(ctx context.Context, fn *Function, args []*Value, at Pos) (Value, error) {
	if err := it.checkContext(ctx); err != nil {
		return Value{}, err
	}

	if it.depth >= it.maxDepth {
		return Value{}, ErrExecution.Wrap(errDepth).
			With(slog.String("function", fn.Name)).
			at(at)
	}

	f := it.arena.push(fn, args)
	defer f.pop()

	caller := it.fn
	it.fn = fn
	it.depth++

	defer func() {
		it.fn = caller
		it.depth--
	}()

	it.logger.TraceContext(ctx, "call",
		slog.String("function", fn.Name),
		slog.Int("depth", it.depth),
	)

	v, fl, err := it.execAll(ctx, fn.Body)
	if err != nil {
		return Value{}, err
	}

	it.logger.TraceContext(ctx, "return",
		slog.String("function", fn.Name),
		slog.Int("depth", it.depth),
	)

	if fl != flowReturn {
		return Value{}, nil
	}

	return v, nil
}
