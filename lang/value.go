package lang

import (
	"iter"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the tag of a [Value].
type Type int

const (
	TypeUndefined Type = iota
	TypeString
	TypeNumeric
	TypeBoolean
	TypeDateTime
	TypeTimeSpan
	TypeArray
	TypeStructure
	TypeMap
)

// String returns the script-facing name of the type.
func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeString:
		return "string"
	case TypeNumeric:
		return "numeric"
	case TypeBoolean:
		return "boolean"
	case TypeDateTime:
		return "datetime"
	case TypeTimeSpan:
		return "timespan"
	case TypeArray:
		return "array"
	case TypeStructure:
		return "structure"
	case TypeMap:
		return "map"
	default:
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Value is a dynamically typed script value. The zero Value is undefined.
//
// Scalars (string, numeric, boolean, datetime, timespan) are copied when a
// Value is copied. Arrays, structures and maps are held by reference: copies
// of a Value share the same container, and mutation through one is visible
// through all of them.
//
// Values are built with the New* constructors, which keep the type tag and
// the payload consistent.
type Value struct {
	str    string
	num    decimal.Decimal
	time   time.Time
	span   time.Duration
	arr    *Array
	fields *Fields
	typ    Type
	b      bool
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{} }

// NewString returns a string value.
func NewString(s string) Value { return Value{typ: TypeString, str: s} }

// NewNumeric returns a numeric value.
func NewNumeric(d decimal.Decimal) Value { return Value{typ: TypeNumeric, num: d} }

// NewInt returns a numeric value holding n.
func NewInt(n int64) Value { return NewNumeric(decimal.NewFromInt(n)) }

// ParseNumeric parses a decimal literal such as "-12.5" or ".5".
func ParseNumeric(s string) (Value, error) {
	if digits, neg := strings.CutPrefix(s, "-"); strings.HasPrefix(digits, ".") {
		s = "0" + digits
		if neg {
			s = "-" + s
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, err
	}

	return NewNumeric(d), nil
}

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{typ: TypeBoolean, b: b} }

// NewDateTime returns a datetime value.
func NewDateTime(t time.Time) Value { return Value{typ: TypeDateTime, time: t} }

// NewTimeSpan returns a timespan value.
func NewTimeSpan(d time.Duration) Value { return Value{typ: TypeTimeSpan, span: d} }

// NewArray returns an array value holding copies of items.
func NewArray(items ...Value) Value {
	a := &Array{items: make([]*Value, 0, len(items))}
	a.Push(items...)

	return Value{typ: TypeArray, arr: a}
}

// NewStructure returns an empty structure value.
func NewStructure() Value {
	return Value{typ: TypeStructure, fields: newFields()}
}

// NewMap returns an empty map value.
func NewMap() Value { return Value{typ: TypeMap, fields: newFields()} }

// Type returns the value's type tag.
func (v Value) Type() Type { return v.typ }

// IsUndefined reports whether v is undefined.
func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }

// Text returns the string payload, or "" if v is not a string.
func (v Value) Text() string { return v.str }

// Numeric returns the numeric payload, or zero if v is not numeric.
func (v Value) Numeric() decimal.Decimal { return v.num }

// Int returns the integer part of the numeric payload. The result is
// unspecified outside the range of int; use [Value.Index] where that
// matters.
func (v Value) Int() int { return int(v.num.IntPart()) }

var (
	minIndex = decimal.NewFromInt(math.MinInt)
	maxIndex = decimal.NewFromInt(math.MaxInt)
)

// Index returns v as an int. It reports false unless v is a numeric
// integer within the range of int.
func (v Value) Index() (int, bool) {
	if v.typ != TypeNumeric || !v.num.IsInteger() {
		return 0, false
	}

	if v.num.LessThan(minIndex) || v.num.GreaterThan(maxIndex) {
		return 0, false
	}

	return int(v.num.IntPart()), true
}

// Bool returns the boolean payload, or false if v is not a boolean. This is
// the truth value used by conditions, loops and logical operators.
func (v Value) Bool() bool { return v.typ == TypeBoolean && v.b }

// DateTime returns the datetime payload.
func (v Value) DateTime() time.Time { return v.time }

// TimeSpan returns the timespan payload.
func (v Value) TimeSpan() time.Duration { return v.span }

// Array returns the shared array, or nil if v is not an array.
func (v Value) Array() *Array { return v.arr }

// Fields returns the shared members of a structure or map, or nil for any
// other type.
func (v Value) Fields() *Fields { return v.fields }

// IsContainer reports whether v holds a shared container.
func (v Value) IsContainer() bool {
	return v.typ == TypeArray || v.typ == TypeStructure || v.typ == TypeMap
}

// dateTimeLayout formats datetime values without a zone.
const dateTimeLayout = "2006-01-02 15:04:05"

// String returns the display form used by print and string concatenation.
func (v Value) String() string {
	var b strings.Builder

	v.write(&b, false, map[any]bool{})

	return b.String()
}

// write renders v into b. Strings nested in containers are quoted. seen
// guards against containers that hold themselves.
func (v Value) write(b *strings.Builder, nested bool, seen map[any]bool) {
	switch v.typ {
	case TypeUndefined:
		b.WriteString("undefined")

	case TypeString:
		if nested {
			b.WriteString(strconv.Quote(v.str))
		} else {
			b.WriteString(v.str)
		}

	case TypeNumeric:
		b.WriteString(v.num.String())

	case TypeBoolean:
		b.WriteString(strconv.FormatBool(v.b))

	case TypeDateTime:
		if v.time.Nanosecond() != 0 {
			b.WriteString(v.time.Format(dateTimeLayout + ".000"))
		} else {
			b.WriteString(v.time.Format(dateTimeLayout))
		}

	case TypeTimeSpan:
		b.WriteString(v.span.String())

	case TypeArray:
		if seen[v.arr] {
			b.WriteString("[...]")

			return
		}

		seen[v.arr] = true
		defer delete(seen, v.arr)

		b.WriteByte('[')

		for i, item := range v.arr.All() {
			if i > 0 {
				b.WriteString(", ")
			}

			item.write(b, true, seen)
		}

		b.WriteByte(']')

	case TypeStructure, TypeMap:
		if seen[v.fields] {
			b.WriteString("{...}")

			return
		}

		seen[v.fields] = true
		defer delete(seen, v.fields)

		b.WriteByte('{')

		for i, key := range v.fields.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}

			item, _ := v.fields.Get(key)

			b.WriteString(key)
			b.WriteString(": ")
			item.write(b, true, seen)
		}

		b.WriteByte('}')
	}
}

// Native converts v to plain Go data for serialization: nil, string, int64
// or float64, bool, time.Time, time.Duration, []any or map[string]any.
// Non-integral numerics convert inexactly.
func (v Value) Native() any {
	return v.native(map[any]bool{})
}

func (v Value) native(seen map[any]bool) any {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeNumeric:
		if v.num.IsInteger() {
			if n := v.num.IntPart(); decimal.NewFromInt(n).Equal(v.num) {
				return n
			}
		}

		return v.num.InexactFloat64()
	case TypeBoolean:
		return v.b
	case TypeDateTime:
		return v.time
	case TypeTimeSpan:
		return v.span
	case TypeArray:
		if seen[v.arr] {
			return nil
		}

		seen[v.arr] = true
		defer delete(seen, v.arr)

		out := make([]any, 0, v.arr.Len())
		for _, item := range v.arr.All() {
			out = append(out, item.native(seen))
		}

		return out
	case TypeStructure, TypeMap:
		if seen[v.fields] {
			return nil
		}

		seen[v.fields] = true
		defer delete(seen, v.fields)

		out := make(map[string]any, v.fields.Len())
		for key, item := range v.fields.All() {
			out[key] = item.native(seen)
		}

		return out
	default:
		return nil
	}
}

// Array is an ordered, shared sequence of values. Each element occupies a
// stable slot, so a reference to an element stays valid while the array
// grows.
type Array struct {
	items []*Value
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// At returns a copy of element i.
func (a *Array) At(i int) (Value, bool) {
	if i < 0 || i >= len(a.items) {
		return Value{}, false
	}

	return *a.items[i], true
}

// slot returns the storage of element i.
func (a *Array) slot(i int) (*Value, bool) {
	if i < 0 || i >= len(a.items) {
		return nil, false
	}

	return a.items[i], true
}

// Push appends copies of vs.
func (a *Array) Push(vs ...Value) {
	for _, v := range vs {
		a.items = append(a.items, &v)
	}
}

// RemoveAt deletes element i, reporting whether i was in range.
func (a *Array) RemoveAt(i int) bool {
	if i < 0 || i >= len(a.items) {
		return false
	}

	a.items = slices.Delete(a.items, i, i+1)

	return true
}

// Clear removes all elements.
func (a *Array) Clear() { a.items = a.items[:0] }

// All returns an iterator over the index and a copy of each element.
func (a *Array) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i, item := range a.items {
			if !yield(i, *item) {
				return
			}
		}
	}
}

// Fields is the shared string-keyed storage of structures and maps. Member
// order is not significant; iteration is sorted by key.
type Fields struct {
	m map[string]*Value
}

func newFields() *Fields { return &Fields{m: make(map[string]*Value)} }

// Len returns the number of members.
func (f *Fields) Len() int { return len(f.m) }

// Get returns a copy of member key.
func (f *Fields) Get(key string) (Value, bool) {
	v, ok := f.m[key]
	if !ok {
		return Value{}, false
	}

	return *v, true
}

// Set stores a copy of v as member key.
func (f *Fields) Set(key string, v Value) { *f.slot(key) = v }

// Delete removes member key, reporting whether it existed.
func (f *Fields) Delete(key string) bool {
	_, ok := f.m[key]
	delete(f.m, key)

	return ok
}

// Keys returns the member names in sorted order.
func (f *Fields) Keys() []string { return slices.Sorted(maps.Keys(f.m)) }

// All returns an iterator over members in key order.
func (f *Fields) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, key := range f.Keys() {
			if !yield(key, *f.m[key]) {
				return
			}
		}
	}
}

// slot returns the storage of member key, creating an undefined member if
// it does not exist.
func (f *Fields) slot(key string) *Value {
	v, ok := f.m[key]
	if !ok {
		v = new(Value)
		f.m[key] = v
	}

	return v
}
