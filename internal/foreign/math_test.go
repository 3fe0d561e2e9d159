package foreign

import (
	"aqua/internal/object"
	"testing"
)

func integer(v int64) *object.Integer { return &object.Integer{Value: v} }
func float(v float32) *object.Float { return &object.Float{Value: v} }
func double(v float64) *object.Double { return &object.Double{Value: v} }

func mathBuiltin(t *testing.T, name string) object.BuiltinFunction {
	t.Helper()
	for _, b := range MathBuiltins() {
		if b.Name == name {
			return b.Fn
		}
	}
	t.Fatalf("no math builtin %q", name)
	return nil
}

func TestMathBuiltins(t *testing.T) {
	tests := []struct {
		name     string
		args     []object.Object
		kind     object.ObjectType
		expected string
	}{
		{"abs", []object.Object{integer(-3)}, object.INTEGER_OBJ, "3"},
		{"abs", []object.Object{float(-1.5)}, object.FLOAT_OBJ, "1.5"},
		{"abs", []object.Object{double(-2)}, object.DOUBLE_OBJ, "2.0"},
		{"floor", []object.Object{double(2.7)}, object.INTEGER_OBJ, "2"},
		{"floor", []object.Object{double(-2.1)}, object.INTEGER_OBJ, "-3"},
		{"ceil", []object.Object{float(2.1)}, object.INTEGER_OBJ, "3"},
		{"round", []object.Object{double(2.5)}, object.INTEGER_OBJ, "3"},
		{"round", []object.Object{integer(7)}, object.INTEGER_OBJ, "7"},
		{"sqrt", []object.Object{integer(16)}, object.DOUBLE_OBJ, "4.0"},
		{"sqrt", []object.Object{float(2.25)}, object.FLOAT_OBJ, "1.5"},
		{"pow", []object.Object{integer(2), integer(10)}, object.INTEGER_OBJ, "1024"},
		{"pow", []object.Object{integer(2), integer(-1)}, object.DOUBLE_OBJ, "0.5"},
		{"pow", []object.Object{float(1.5), integer(2)}, object.FLOAT_OBJ, "2.25"},
		{"pow", []object.Object{float(2), double(3)}, object.DOUBLE_OBJ, "8.0"},
		{"min", []object.Object{integer(3), double(1.5), float(2)}, object.DOUBLE_OBJ, "1.5"},
		{"max", []object.Object{integer(3), double(1.5), float(2)}, object.INTEGER_OBJ, "3"},
		{"max", []object.Object{integer(4)}, object.INTEGER_OBJ, "4"},
		{"randomRange", []object.Object{integer(5), integer(5)}, object.INTEGER_OBJ, "5"},
	}

	for _, tt := range tests {
		result := mathBuiltin(t, tt.name)(tt.args...)
		if errObj, ok := result.(*object.Error); ok {
			t.Errorf("%s: unexpected error %q", tt.name, errObj.Message)
			continue
		}
		if result.Type() != tt.kind || result.Inspect() != tt.expected {
			t.Errorf("%s: got %s %s, want %s %s",
				tt.name, result.Type(), result.Inspect(), tt.kind, tt.expected)
		}
	}
}

func TestRandomRangeBounds(t *testing.T) {
	fn := mathBuiltin(t, "randomRange")
	for i := 0; i < 200; i++ {
		v := fn(integer(-2), integer(3)).(*object.Integer).Value
		if v < -2 || v > 3 {
			t.Fatalf("randomRange(-2, 3) = %d, out of range", v)
		}
	}
}

func TestMathBuiltinErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []object.Object
		message string
	}{
		{"abs", []object.Object{str("x")}, "argument to `abs` must be a number, got STRING"},
		{"abs", nil, "wrong number of arguments. got=0, want=1"},
		{"floor", []object.Object{double(1e300)}, "`floor` result out of INTEGER range: 1e+300"},
		{"sqrt", []object.Object{integer(-4)}, "argument to `sqrt` must not be negative, got -4"},
		{"pow", []object.Object{integer(2), object.TRUE}, "argument to `pow` must be a number, got BOOLEAN"},
		{"min", nil, "wrong number of arguments. got=0, want=1+"},
		{"max", []object.Object{integer(1), object.NULL}, "argument to `max` must be a number, got NULL"},
		{"randomRange", []object.Object{integer(3), integer(1)}, "invalid range: min (3) cannot be greater than max (1)"},
		{"randomRange", []object.Object{double(1), integer(2)}, "argument to `randomRange` must be INTEGER, got DOUBLE"},
	}

	for _, tt := range tests {
		result := mathBuiltin(t, tt.name)(tt.args...)
		errObj, ok := result.(*object.Error)
		if !ok {
			t.Errorf("%s: expected error, got %T (%+v)", tt.name, result, result)
			continue
		}
		if errObj.Message != tt.message {
			t.Errorf("%s: wrong message. want=%q, got=%q", tt.name, tt.message, errObj.Message)
		}
	}
}
