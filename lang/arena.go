package lang

// arena is the local storage of every active call, concatenated in call
// order. The active function's locals are the last len(fn.Variables) slots.
// Slots are pointers so that a ref parameter can share its caller's storage.
type arena struct {
	slots []*Value
}

// frame releases the slots pushed for one call.
type frame struct {
	a    *arena
	base int
}

// push appends a frame for fn: args fill the parameter slots and every
// remaining local starts undefined.
func (a *arena) push(fn *Function, args []*Value) frame {
	f := frame{a: a, base: len(a.slots)}

	a.slots = append(a.slots, args...)
	for range len(fn.Variables) - len(args) {
		a.slots = append(a.slots, new(Value))
	}

	return f
}

// pop truncates the arena to the length it had before the frame was
// pushed.
func (f frame) pop() {
	clear(f.a.slots[f.base:])
	f.a.slots = f.a.slots[:f.base]
}

// local returns the slot of fn's local at index, addressed from the end.
func (a *arena) local(fn *Function, index int) *Value {
	return a.slots[len(a.slots)-len(fn.Variables)+index]
}

func (a *arena) reset() {
	clear(a.slots)
	a.slots = a.slots[:0]
}
