package foreign

import (
	"aqua/internal/object"
	"crypto/rand"
	"encoding/binary"
	"math"
)

// MathBuiltins returns the numeric helpers. Results keep the kind of their
// input where that makes sense; rounding always produces an INTEGER.
func MathBuiltins() []*object.Builtin {
	return []*object.Builtin{
		{Name: "abs", Fn: fnMathAbs},
		{Name: "floor", Fn: roundWith("floor", math.Floor)},
		{Name: "ceil", Fn: roundWith("ceil", math.Ceil)},
		{Name: "round", Fn: roundWith("round", math.Round)},
		{Name: "sqrt", Fn: fnMathSqrt},
		{Name: "pow", Fn: fnMathPow},
		{Name: "min", Fn: pickWith("min", func(a, b float64) bool { return a < b })},
		{Name: "max", Fn: pickWith("max", func(a, b float64) bool { return a > b })},
		{Name: "randomRange", Fn: fnMathRandomRange},
	}
}

func unpackNumber(name string, args []object.Object, idx int) (object.Numeric, *object.Error) {
	n, ok := args[idx].(object.Numeric)
	if !ok {
		return nil, newError("argument to `%s` must be a number, got %s", name, args[idx].Type())
	}
	return n, nil
}

func numberOfKind(kind object.ObjectType, v float64) object.Object {
	switch kind {
	case object.INTEGER_OBJ:
		return &object.Integer{Value: int64(v)}
	case object.FLOAT_OBJ:
		return &object.Float{Value: float32(v)}
	default:
		return &object.Double{Value: v}
	}
}

func fnMathAbs(args ...object.Object) object.Object {
	if err := checkArgs(args, 1, false); err != nil {
		return err
	}
	switch n := args[0].(type) {
	case *object.Integer:
		if n.Value < 0 {
			return &object.Integer{Value: -n.Value}
		}
		return n
	case *object.Float:
		return &object.Float{Value: float32(math.Abs(float64(n.Value)))}
	case *object.Double:
		return &object.Double{Value: math.Abs(n.Value)}
	default:
		return newError("argument to `abs` must be a number, got %s", args[0].Type())
	}
}

func roundWith(name string, round func(float64) float64) object.BuiltinFunction {
	return func(args ...object.Object) object.Object {
		if err := checkArgs(args, 1, false); err != nil {
			return err
		}
		if i, ok := args[0].(*object.Integer); ok {
			return i
		}
		n, errObj := unpackNumber(name, args, 0)
		if errObj != nil {
			return errObj
		}
		v := round(n.Float64())
		if math.IsNaN(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
			return newError("`%s` result out of INTEGER range: %v", name, v)
		}
		return &object.Integer{Value: int64(v)}
	}
}

func fnMathSqrt(args ...object.Object) object.Object {
	if err := checkArgs(args, 1, false); err != nil {
		return err
	}
	n, errObj := unpackNumber("sqrt", args, 0)
	if errObj != nil {
		return errObj
	}
	if n.Float64() < 0 {
		return newError("argument to `sqrt` must not be negative, got %s", args[0].Inspect())
	}
	kind := args[0].Type()
	if kind == object.INTEGER_OBJ {
		kind = object.DOUBLE_OBJ
	}
	return numberOfKind(kind, math.Sqrt(n.Float64()))
}

// pow stays in INTEGER arithmetic for integer operands with a non-negative
// exponent; anything else computes in float64 and narrows to the wider kind.
func fnMathPow(args ...object.Object) object.Object {
	if err := checkArgs(args, 2, false); err != nil {
		return err
	}
	base, errObj := unpackNumber("pow", args, 0)
	if errObj != nil {
		return errObj
	}
	exp, errObj := unpackNumber("pow", args, 1)
	if errObj != nil {
		return errObj
	}

	bi, baseInt := args[0].(*object.Integer)
	ei, expInt := args[1].(*object.Integer)
	if baseInt && expInt && ei.Value >= 0 {
		result := int64(1)
		for i := int64(0); i < ei.Value; i++ {
			result *= bi.Value
		}
		return &object.Integer{Value: result}
	}

	kind := wider(args[0].Type(), args[1].Type())
	if kind == object.INTEGER_OBJ {
		kind = object.DOUBLE_OBJ
	}
	return numberOfKind(kind, math.Pow(base.Float64(), exp.Float64()))
}

func wider(a, b object.ObjectType) object.ObjectType {
	rank := map[object.ObjectType]int{object.INTEGER_OBJ: 0, object.FLOAT_OBJ: 1, object.DOUBLE_OBJ: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// pickWith returns the argument that wins against every other, unchanged.
func pickWith(name string, better func(a, b float64) bool) object.BuiltinFunction {
	return func(args ...object.Object) object.Object {
		if err := checkArgs(args, 1, true); err != nil {
			return err
		}
		best, errObj := unpackNumber(name, args, 0)
		if errObj != nil {
			return errObj
		}
		winner := args[0]
		for i := 1; i < len(args); i++ {
			n, errObj := unpackNumber(name, args, i)
			if errObj != nil {
				return errObj
			}
			if better(n.Float64(), best.Float64()) {
				best, winner = n, args[i]
			}
		}
		return winner
	}
}

// randomRange returns an INTEGER in [min, max].
func fnMathRandomRange(args ...object.Object) object.Object {
	if err := checkArgs(args, 2, false); err != nil {
		return err
	}
	lo, errObj := unpackInteger("randomRange", args, 0)
	if errObj != nil {
		return errObj
	}
	hi, errObj := unpackInteger("randomRange", args, 1)
	if errObj != nil {
		return errObj
	}
	if lo > hi {
		return newError("invalid range: min (%d) cannot be greater than max (%d)", lo, hi)
	}

	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return newError("failed to generate random number: %v", err)
	}
	span := uint64(hi-lo) + 1
	if span == 0 {
		return &object.Integer{Value: int64(binary.BigEndian.Uint64(b[:]))}
	}
	return &object.Integer{Value: lo + int64(binary.BigEndian.Uint64(b[:])%span)}
}
