package lang

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
)

// NativeFunction is a host function callable from scripts. A zero [Value]
// result means the call produces undefined. Native functions may mutate
// container arguments in place and may re-enter the interpreter through
// call.Interpreter.Call. Execute, Eval, Parse and Load fail while a run is
// in progress.
type NativeFunction func(ctx context.Context, call Call) (Value, error)

// Call describes one invocation of a [NativeFunction].
type Call struct {
	// Name is the name the script called.
	Name        string
	Interpreter *Interpreter
	// Args are the evaluated arguments, copied as by assignment.
	Args []Value
	// Pos is the position of the call in the script, or the zero Pos when
	// the host called [Interpreter.Call].
	Pos Pos
}

// Arg returns argument i, or undefined if there are fewer arguments.
func (c Call) Arg(i int) Value {
	if i < 0 || i >= len(c.Args) {
		return Value{}
	}

	return c.Args[i]
}

var (
	errNoProgram   = errors.New("no program loaded")
	errBusy        = errors.New("interpreter is executing")
	errInvalidName = errors.New("invalid function name")
	errNilFunction = errors.New("nil native function")
)

// Interpreter executes a [Program]. Each Interpreter owns its native
// functions, global storage and local arena; distinct interpreters may run
// concurrently, but a single Interpreter must not be used from more than
// one goroutine at a time.
type Interpreter struct {
	natives map[string]NativeFunction
	program *Program
	globals []*Value
	arena   arena

	fn    *Function // active user function, nil at top level
	depth int
	at    Pos  // position of the instruction being executed
	busy  bool // set for the duration of Execute and Eval

	options
}

// NewInterpreter returns an Interpreter with no program loaded.
func NewInterpreter(opts ...Option) *Interpreter {
	return &Interpreter{
		natives: make(map[string]NativeFunction),
		options: makeOptions(opts...),
	}
}

// AddFunction registers fn as the native function name, replacing any
// function already registered under that name. Native functions take
// precedence over script functions of the same name.
func (it *Interpreter) AddFunction(name string, fn NativeFunction) error {
	if !validName(name) {
		return ErrExecution.Wrap(errInvalidName).With(slog.String("name", name))
	}

	if fn == nil {
		return ErrExecution.Wrap(errNilFunction).With(slog.String("name", name))
	}

	it.natives[name] = fn

	return nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		if !isIdentPart(r) || (i == 0 && !isIdentStart(r)) {
			return false
		}
	}

	_, keyword := lexemes[name]

	return !keyword
}

// Parse compiles source and loads the resulting program.
func (it *Interpreter) Parse(ctx context.Context, source string) error {
	if it.busy {
		return ErrExecution.Wrap(errBusy)
	}

	prog, err := Compile(ctx, source, it.withLogger())
	if err != nil {
		return err
	}

	return it.Load(prog)
}

// ParseReader reads all of r and loads the program it holds.
func (it *Interpreter) ParseReader(ctx context.Context, r io.Reader) error {
	source, err := ReadSource(ctx, r)
	if err != nil {
		return err
	}

	return it.Parse(ctx, source)
}

// Load makes prog the program to execute and resets all globals. It fails
// if called while the interpreter is executing.
func (it *Interpreter) Load(prog *Program) error {
	if it.busy {
		return ErrExecution.Wrap(errBusy)
	}

	it.load(prog)

	return nil
}

func (it *Interpreter) load(prog *Program) {
	it.program = prog
	it.globals = make([]*Value, len(prog.Variables))

	for i := range it.globals {
		it.globals[i] = new(Value)
	}

	it.arena.reset()
}

// Program returns the loaded program.
func (it *Interpreter) Program() *Program { return it.program }

// Functions returns the names of the loaded program's functions, sorted.
func (it *Interpreter) Functions() []string {
	if it.program == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(it.program.functions))
}

// Natives returns the names of the registered native functions, sorted.
func (it *Interpreter) Natives() []string {
	return slices.Sorted(maps.Keys(it.natives))
}

// Globals returns the names of the loaded program's globals in slot order.
func (it *Interpreter) Globals() []string {
	if it.program == nil {
		return nil
	}

	names := make([]string, len(it.program.Variables))
	for i, v := range it.program.Variables {
		names[i] = v.Name
	}

	return names
}

// Global returns the current value of the global named name.
func (it *Interpreter) Global(name string) (Value, bool) {
	if it.program == nil {
		return Value{}, false
	}

	for _, v := range it.program.Variables {
		if v.Name == name && v.Index < len(it.globals) {
			return *it.globals[v.Index], true
		}
	}

	return Value{}, false
}

// Execute runs the loaded program's top-level instructions from a fresh
// global state. It returns the value of a top-level return statement, or
// undefined if the program runs to its end.
func (it *Interpreter) Execute(ctx context.Context) (result Value, err error) {
	if it.program == nil {
		return Value{}, ErrExecution.Wrap(errNoProgram)
	}

	if it.busy {
		return Value{}, ErrExecution.Wrap(errBusy)
	}

	it.busy = true
	defer func() { it.busy = false }()
	defer it.recover(&err)

	it.load(it.program)

	v, fl, err := it.execAll(ctx, it.program.Instructions)
	if err != nil {
		return Value{}, err
	}

	it.logger.TraceContext(ctx, "execute complete",
		slog.Int("instructions", len(it.program.Instructions)),
		slog.Int("globals", len(it.globals)),
	)

	if fl == flowReturn {
		return v, nil
	}

	return Value{}, nil
}

// Eval parses source as a continuation of the loaded program and runs its
// top-level instructions against the current global state. Functions it
// declares are added to (or replace those of) the loaded program, and
// globals it declares are added to the global table. It returns the value
// of the last instruction executed.
//
// The previously loaded [Program] is not modified, so a program obtained
// from [Compile] remains shareable.
func (it *Interpreter) Eval(ctx context.Context, source string) (result Value, err error) {
	if it.busy {
		return Value{}, ErrExecution.Wrap(errBusy)
	}

	tokens, err := Tokenize(source)
	if err != nil {
		return Value{}, err
	}

	prog, err := Analyse(tokens, WithBase(it.program))
	if err != nil {
		return Value{}, err
	}

	it.busy = true
	defer func() { it.busy = false }()
	defer it.recover(&err)

	it.program = prog
	for len(it.globals) < len(prog.Variables) {
		it.globals = append(it.globals, new(Value))
	}

	v, _, err := it.execAll(ctx, prog.Instructions)
	if err != nil {
		return Value{}, err
	}

	return v, nil
}

// Call invokes the native or script function name with args, as a script
// call would. It may be used by hosts between executions and by native
// functions during one.
func (it *Interpreter) Call(ctx context.Context, name string, args ...Value) (result Value, err error) {
	defer it.recover(&err)

	if native, ok := it.natives[name]; ok {
		return it.native(ctx, native, Call{Name: name, Interpreter: it, Args: args, Pos: it.at})
	}

	fn, ok := it.program.Function(name)
	if !ok {
		return Value{}, NewError(CodeFunctionNotFound, name)
	}

	if len(args) != fn.Parameters {
		return Value{}, ErrExecution.Wrap(fmt.Errorf(
			"function %s expects %d arguments, got %d", name, fn.Parameters, len(args)))
	}

	args = slices.Clone(args)
	slots := make([]*Value, len(args))

	for i := range args {
		slots[i] = &args[i]
	}

	return it.invoke(ctx, fn, slots, fn.Pos)
}

// recover converts a panic raised while executing into an execution error
// positioned at the instruction being executed.
func (it *Interpreter) recover(err *error) {
	if r := recover(); r != nil {
		*err = ErrExecution.Wrap(fmt.Errorf("%v", r)).at(it.at)
	}
}

// withLogger forwards the interpreter's logger to [Compile].
func (it *Interpreter) withLogger() Option { return WithLogger(it.logger) }
