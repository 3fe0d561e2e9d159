package foreign

import (
	"aqua/internal/object"
	"fmt"
)

func newError(format string, a ...interface{}) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, a...)}
}

func unpackString(name string, args []object.Object, idx int) (string, *object.Error) {
	s, ok := args[idx].(*object.String)
	if !ok {
		return "", newError("argument to `%s` must be %s, got %s", name, object.STRING_OBJ, args[idx].Type())
	}
	return s.Value, nil
}

func unpackInteger(name string, args []object.Object, idx int) (int64, *object.Error) {
	i, ok := args[idx].(*object.Integer)
	if !ok {
		return 0, newError("argument to `%s` must be %s, got %s", name, object.INTEGER_OBJ, args[idx].Type())
	}
	return i.Value, nil
}

func checkArgs(args []object.Object, min int, variadic bool) *object.Error {
	if len(args) == min || (variadic && len(args) > min) {
		return nil
	}
	if variadic {
		return newError("wrong number of arguments. got=%d, want=%d+", len(args), min)
	}
	return newError("wrong number of arguments. got=%d, want=%d", len(args), min)
}
