package lang

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// divisionPrecision is the number of fractional digits kept by division.
const divisionPrecision = 28

var errDivideByZero = errors.New("division by zero")

// binary applies a non-logical binary operator.
func binary(op Name, a, b Value) (Value, error) {
	switch op {
	case NameAdd:
		return add(a, b)
	case NameSub:
		return sub(a, b)
	case NameMul, NameDiv, NameMod:
		return arith(op, a, b)
	case NameEqual:
		return NewBool(Equal(a, b)), nil
	case NameNotEqual:
		return NewBool(!Equal(a, b)), nil
	case NameGreater:
		return NewBool(compare(a, b) > 0), nil
	case NameLess:
		return NewBool(compare(a, b) < 0), nil
	case NameGreaterEqual:
		return NewBool(compare(a, b) >= 0), nil
	case NameLessEqual:
		return NewBool(compare(a, b) <= 0), nil
	case NameAnd:
		return NewBool(a.Bool() && b.Bool()), nil
	case NameOr:
		return NewBool(a.Bool() || b.Bool()), nil
	}

	return Value{}, fmt.Errorf("unknown operator %s", op)
}

// add concatenates when either side is a string and the other a string or
// numeric, and otherwise adds numerics, timespans, or a timespan to a
// datetime.
func add(a, b Value) (Value, error) {
	switch {
	case a.typ == TypeString && b.typ == TypeString:
		return NewString(a.str + b.str), nil
	case a.typ == TypeNumeric && b.typ == TypeString:
		return NewString(a.num.String() + b.str), nil
	case a.typ == TypeString && b.typ == TypeNumeric:
		return NewString(a.str + b.num.String()), nil
	case a.typ == TypeNumeric && b.typ == TypeNumeric:
		return NewNumeric(a.num.Add(b.num)), nil
	case a.typ == TypeTimeSpan && b.typ == TypeTimeSpan:
		return NewTimeSpan(a.span + b.span), nil
	case a.typ == TypeDateTime && b.typ == TypeTimeSpan:
		return NewDateTime(a.time.Add(b.span)), nil
	}

	return Value{}, mismatch("+", a, b)
}

// sub subtracts numerics. Two datetimes yield the timespan between them.
func sub(a, b Value) (Value, error) {
	switch {
	case a.typ == TypeDateTime && b.typ == TypeDateTime:
		return NewTimeSpan(a.time.Sub(b.time)), nil
	case a.typ == TypeDateTime && b.typ == TypeTimeSpan:
		return NewDateTime(a.time.Add(-b.span)), nil
	case a.typ == TypeTimeSpan && b.typ == TypeTimeSpan:
		return NewTimeSpan(a.span - b.span), nil
	case a.typ == TypeNumeric && b.typ == TypeNumeric:
		return NewNumeric(a.num.Sub(b.num)), nil
	}

	return Value{}, mismatch("-", a, b)
}

func arith(op Name, a, b Value) (Value, error) {
	if a.typ != TypeNumeric || b.typ != TypeNumeric {
		return Value{}, mismatch(op.String(), a, b)
	}

	switch op {
	case NameMul:
		return NewNumeric(a.num.Mul(b.num)), nil
	case NameDiv:
		if b.num.IsZero() {
			return Value{}, errDivideByZero
		}

		return NewNumeric(a.num.DivRound(b.num, divisionPrecision)), nil
	default:
		if b.num.IsZero() {
			return Value{}, errDivideByZero
		}

		return NewNumeric(a.num.Mod(b.num)), nil
	}
}

func mismatch(op string, a, b Value) error {
	return fmt.Errorf("operator %s is not defined for %s and %s", op, a.typ, b.typ)
}

// Equal reports whether a and b hold the same type and equal payloads.
// Containers are equal only to themselves.
func Equal(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}

	switch a.typ {
	case TypeUndefined:
		return true
	case TypeString:
		return a.str == b.str
	case TypeNumeric:
		return a.num.Equal(b.num)
	case TypeBoolean:
		return a.b == b.b
	case TypeDateTime:
		return a.time.Equal(b.time)
	case TypeTimeSpan:
		return a.span == b.span
	case TypeArray:
		return a.arr == b.arr
	case TypeStructure, TypeMap:
		return a.fields == b.fields
	}

	return false
}

// compare orders two datetimes or two timespans by time. Every other pair
// is ordered by its numeric payloads, which are zero for non-numerics.
func compare(a, b Value) int {
	switch {
	case a.typ == TypeDateTime && b.typ == TypeDateTime:
		return a.time.Compare(b.time)
	case a.typ == TypeTimeSpan && b.typ == TypeTimeSpan:
		switch {
		case a.span < b.span:
			return -1
		case a.span > b.span:
			return 1
		}

		return 0
	}

	return a.num.Cmp(b.num)
}

// step adds delta to a numeric value.
func step(v Value, delta int64) (Value, error) {
	if v.typ != TypeNumeric {
		return Value{}, fmt.Errorf("cannot increment or decrement %s", v.typ)
	}

	return NewNumeric(v.num.Add(decimal.NewFromInt(delta))), nil
}

// compound returns the binary operator applied by a compound assignment.
func compound(op Name) Name {
	switch op {
	case NameAddAssign:
		return NameAdd
	case NameSubAssign:
		return NameSub
	case NameMulAssign:
		return NameMul
	case NameDivAssign:
		return NameDiv
	}

	return NameNone
}
