package stdlib

import (
	"context"

	"github.com/ardnew/dopa/lang"
)

func (l *library) arrayNew(_ context.Context, c lang.Call) (lang.Value, error) {
	return lang.NewArray(c.Args...), nil
}

func (l *library) arrayPush(_ context.Context, c lang.Call) (lang.Value, error) {
	a, err := arrayArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	if err := arity(c, 2); err != nil {
		return lang.Value{}, err
	}

	a.Push(c.Args[1:]...)

	return lang.Value{}, nil
}

func (l *library) arrayLength(_ context.Context, c lang.Call) (lang.Value, error) {
	a, err := arrayArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.NewInt(int64(a.Len())), nil
}

func (l *library) arrayClear(_ context.Context, c lang.Call) (lang.Value, error) {
	a, err := arrayArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	a.Clear()

	return lang.Value{}, nil
}

func (l *library) arrayRemoveAt(_ context.Context, c lang.Call) (lang.Value, error) {
	a, err := arrayArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	i, err := intArg(c, 1)
	if err != nil {
		return lang.Value{}, err
	}

	if !a.RemoveAt(i) {
		return lang.Value{}, lang.Errorf("arrayRemoveAt: index %d out of range [0, %d)", i, a.Len())
	}

	return lang.Value{}, nil
}

func (l *library) structureNew(context.Context, lang.Call) (lang.Value, error) {
	return lang.NewStructure(), nil
}

func (l *library) mapNew(context.Context, lang.Call) (lang.Value, error) {
	return lang.NewMap(), nil
}

func (l *library) mapKeys(_ context.Context, c lang.Call) (lang.Value, error) {
	f, err := fieldsArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	keys := f.Keys()
	out := make([]lang.Value, len(keys))

	for i, k := range keys {
		out[i] = lang.NewString(k)
	}

	return lang.NewArray(out...), nil
}

func (l *library) mapContains(_ context.Context, c lang.Call) (lang.Value, error) {
	f, err := fieldsArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	key, err := stringArg(c, 1)
	if err != nil {
		return lang.Value{}, err
	}

	_, ok := f.Get(key)

	return lang.NewBool(ok), nil
}

func (l *library) mapRemove(_ context.Context, c lang.Call) (lang.Value, error) {
	f, err := fieldsArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	key, err := stringArg(c, 1)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.NewBool(f.Delete(key)), nil
}
