package evaluator

import (
	"aqua/internal/object"
)

// numeric kinds ordered by width
var numericRank = map[object.ObjectType]int{
	object.INTEGER_OBJ: 0,
	object.FLOAT_OBJ:   1,
	object.DOUBLE_OBJ:  2,
}

func isNumeric(obj object.Object) bool {
	_, ok := numericRank[obj.Type()]
	return ok
}

func widest(a, b object.ObjectType) object.ObjectType {
	if numericRank[a] >= numericRank[b] {
		return a
	}
	return b
}

func evalPrefixExpression(operator string, right object.Object) object.Object {
	switch operator {
	case "!":
		return evalBangOperatorExpression(right)
	case "-":
		return evalMinusPrefixOperatorExpression(right)
	default:
		return newError("Unknown operator: %s%s", operator, right.Type())
	}
}

func evalBangOperatorExpression(right object.Object) object.Object {
	switch right {
	case object.TRUE:
		return object.FALSE
	case object.FALSE:
		return object.TRUE
	case object.NULL:
		return object.TRUE
	default:
		return object.FALSE
	}
}

func evalMinusPrefixOperatorExpression(right object.Object) object.Object {
	switch right := right.(type) {
	case *object.Integer:
		return &object.Integer{Value: -right.Value}
	case *object.Float:
		return &object.Float{Value: -right.Value}
	case *object.Double:
		return &object.Double{Value: -right.Value}
	default:
		return newError("Unknown operator: -%s", right.Type())
	}
}

func evalInfixExpression(operator string, left, right object.Object) object.Object {
	switch {
	case isNumeric(left) && isNumeric(right):
		return evalNumericInfixExpression(operator, left, right)
	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		return evalStringInfixExpression(operator, left, right)
	case left.Type() == object.BOOLEAN_OBJ && right.Type() == object.BOOLEAN_OBJ &&
		(operator == "&&" || operator == "||"):
		return evalLogicalExpression(operator, left, right)
	case operator == "==":
		return nativeBoolToBooleanObject(left == right)
	case operator == "!=":
		return nativeBoolToBooleanObject(left != right)
	default:
		return unsupportedOperator(operator, left, right)
	}
}

func unsupportedOperator(operator string, left, right object.Object) *object.Error {
	if left.Type() != right.Type() {
		return newError("Type mismatch: %s %s %s", left.Type(), operator, right.Type())
	}
	return newError("Unknown operator: %s %s %s", left.Type(), operator, right.Type())
}

func evalLogicalExpression(operator string, left, right object.Object) object.Object {
	l := left == object.TRUE
	r := right == object.TRUE

	if operator == "&&" {
		return nativeBoolToBooleanObject(l && r)
	}
	return nativeBoolToBooleanObject(l || r)
}

func evalNumericInfixExpression(operator string, left, right object.Object) object.Object {
	if l, ok := left.(*object.Integer); ok {
		if r, ok := right.(*object.Integer); ok {
			return evalIntegerInfixExpression(operator, l.Value, r.Value)
		}
	}

	lv := left.(object.Numeric).Float64()
	rv := right.(object.Numeric).Float64()

	switch operator {
	case "+", "-", "*", "/":
		return evalArithmetic(widest(left.Type(), right.Type()), operator, left, right)
	case "<":
		return nativeBoolToBooleanObject(lv < rv)
	case ">":
		return nativeBoolToBooleanObject(lv > rv)
	case "<=":
		return nativeBoolToBooleanObject(lv <= rv)
	case ">=":
		return nativeBoolToBooleanObject(lv >= rv)
	case "==":
		return nativeBoolToBooleanObject(lv == rv)
	case "!=":
		return nativeBoolToBooleanObject(lv != rv)
	default:
		return unsupportedOperator(operator, left, right)
	}
}

func evalIntegerInfixExpression(operator string, leftVal, rightVal int64) object.Object {
	switch operator {
	case "+":
		return &object.Integer{Value: leftVal + rightVal}
	case "-":
		return &object.Integer{Value: leftVal - rightVal}
	case "*":
		return &object.Integer{Value: leftVal * rightVal}
	case "/":
		if rightVal == 0 {
			return newError("Division by zero")
		}
		return &object.Integer{Value: leftVal / rightVal}
	// ordering compares as doubles like every other numeric pair
	case "<":
		return nativeBoolToBooleanObject(float64(leftVal) < float64(rightVal))
	case ">":
		return nativeBoolToBooleanObject(float64(leftVal) > float64(rightVal))
	case "<=":
		return nativeBoolToBooleanObject(float64(leftVal) <= float64(rightVal))
	case ">=":
		return nativeBoolToBooleanObject(float64(leftVal) >= float64(rightVal))
	case "==":
		return nativeBoolToBooleanObject(leftVal == rightVal)
	case "!=":
		return nativeBoolToBooleanObject(leftVal != rightVal)
	default:
		return newError("Unknown operator: %s %s %s", object.INTEGER_OBJ, operator, object.INTEGER_OBJ)
	}
}

// evalArithmetic computes op in double precision and narrows to kind.
// Two integers never reach the float path.
func evalArithmetic(kind object.ObjectType, op string, left, right object.Object) object.Object {
	if l, ok := left.(*object.Integer); ok {
		if r, ok := right.(*object.Integer); ok {
			return evalIntegerInfixExpression(op, l.Value, r.Value)
		}
	}

	lv := left.(object.Numeric).Float64()
	rv := right.(object.Numeric).Float64()

	var result float64
	switch op {
	case "+":
		result = lv + rv
	case "-":
		result = lv - rv
	case "*":
		result = lv * rv
	case "/":
		if kind == object.INTEGER_OBJ && rv == 0 {
			return newError("Division by zero")
		}
		result = lv / rv
	default:
		return unsupportedOperator(op, left, right)
	}

	switch kind {
	case object.INTEGER_OBJ:
		return &object.Integer{Value: int64(result)}
	case object.FLOAT_OBJ:
		return &object.Float{Value: float32(result)}
	default:
		return &object.Double{Value: result}
	}
}

func evalStringInfixExpression(operator string, left, right object.Object) object.Object {
	if operator != "+" {
		return newError("Unknown operator: %s %s %s", left.Type(), operator, right.Type())
	}

	leftVal := left.(*object.String).Value
	rightVal := right.(*object.String).Value
	return &object.String{Value: leftVal + rightVal}
}

func evalIndexExpression(left, index object.Object) object.Object {
	switch {
	case left.Type() == object.ARRAY_OBJ && index.Type() == object.INTEGER_OBJ:
		return evalArrayIndexExpression(left, index)
	case left.Type() == object.HASH_OBJ:
		return evalHashIndexExpression(left, index)
	default:
		return newError("Index operator not supported: %s", left.Type())
	}
}

func evalArrayIndexExpression(array, index object.Object) object.Object {
	arrayObject := array.(*object.Array)
	idx := index.(*object.Integer).Value
	max := int64(len(arrayObject.Elements) - 1)

	if idx < 0 || idx > max {
		return object.NULL
	}

	return arrayObject.Elements[idx]
}

func evalHashIndexExpression(hash, index object.Object) object.Object {
	hashObject := hash.(*object.Hash)

	key, ok := index.(object.Hashable)
	if !ok {
		return newError("Unusable as hash key: %s", index.Type())
	}

	value, ok := hashObject.Get(key)
	if !ok {
		return object.NULL
	}

	return value
}
