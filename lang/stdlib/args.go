package stdlib

import (
	"github.com/ardnew/dopa/lang"
)

// arity fails unless c has at least n arguments.
func arity(c lang.Call, n int) error {
	if len(c.Args) < n {
		return lang.Errorf("%s expects %d arguments, got %d", c.Name, n, len(c.Args))
	}

	return nil
}

// arg returns argument i of c, which must have type typ.
func arg(c lang.Call, i int, typ lang.Type) (lang.Value, error) {
	if err := arity(c, i+1); err != nil {
		return lang.Value{}, err
	}

	v := c.Args[i]
	if v.Type() != typ {
		return lang.Value{}, lang.Errorf("%s: argument %d must be %s, got %s", c.Name, i+1, typ, v.Type())
	}

	return v, nil
}

func arrayArg(c lang.Call, i int) (*lang.Array, error) {
	v, err := arg(c, i, lang.TypeArray)
	if err != nil {
		return nil, err
	}

	return v.Array(), nil
}

// fieldsArg accepts a structure or a map.
func fieldsArg(c lang.Call, i int) (*lang.Fields, error) {
	if err := arity(c, i+1); err != nil {
		return nil, err
	}

	v := c.Args[i]
	if v.Type() != lang.TypeMap && v.Type() != lang.TypeStructure {
		return nil, lang.Errorf("%s: argument %d must be map or structure, got %s", c.Name, i+1, v.Type())
	}

	return v.Fields(), nil
}

func stringArg(c lang.Call, i int) (string, error) {
	v, err := arg(c, i, lang.TypeString)
	if err != nil {
		return "", err
	}

	return v.Text(), nil
}

func intArg(c lang.Call, i int) (int, error) {
	v, err := arg(c, i, lang.TypeNumeric)
	if err != nil {
		return 0, err
	}

	n, ok := v.Index()
	if !ok {
		return 0, lang.Errorf("%s: argument %d must be an integer, got %s", c.Name, i+1, v)
	}

	return n, nil
}

// stringArgs converts the arguments from index i on.
func stringArgs(c lang.Call, i int) ([]string, error) {
	out := make([]string, 0, max(len(c.Args)-i, 0))

	for j := i; j < len(c.Args); j++ {
		s, err := stringArg(c, j)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}
