package evaluator

import (
	"aqua/internal/ast"
	"aqua/internal/foreign"
	aqualog "aqua/internal/log"
	"aqua/internal/object"
	"aqua/internal/util"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Evaluator struct {
	builtins *Registry
	out      io.Writer
	logger   *slog.Logger
	config   util.Configuration
	modules  *moduleLoader
	sql      *foreign.SQL
}

type Option func(*Evaluator)

// WithBuiltins replaces the default registry.
func WithBuiltins(r *Registry) Option {
	return func(e *Evaluator) { e.builtins = r }
}

func WithOutput(w io.Writer) Option {
	return func(e *Evaluator) { e.out = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

func WithConfig(c util.Configuration) Option {
	return func(e *Evaluator) { e.config = c }
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		out:    os.Stdout,
		logger: slog.Default(),
		config: util.DefaultConfiguration(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.config.AquaHome == "" {
		e.config.AquaHome = os.Getenv("AQUA_HOME")
	}
	e.modules = newModuleLoader(e)

	if e.builtins == nil {
		e.sql = foreign.NewSQL()
		e.builtins = CoreBuiltins(e.out).
			Merge(NewRegistry(e.importBuiltin())).
			Merge(NewRegistry(foreign.MathBuiltins()...)).
			Merge(NewRegistry(e.sql.Builtins()...))
	}
	return e
}

// Close releases resources held by builtins, such as open SQL handles.
func (e *Evaluator) Close() error {
	if e.sql == nil {
		return nil
	}
	return e.sql.Close()
}

func (e *Evaluator) Builtins() *Registry { return e.builtins }

func (e *Evaluator) Eval(node ast.Node, env *object.Environment) object.Object {
	if e.logger.Enabled(context.Background(), aqualog.LevelTrace) {
		e.logger.Log(context.Background(), aqualog.LevelTrace, "eval",
			slog.String("node", fmt.Sprintf("%T", node)))
	}

	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.evalProgram(node, env)

	case *ast.BlockStatement:
		return e.evalBlockStatement(node, env)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)

	case *ast.LetStatement:
		val := e.Eval(node.Value, env)
		if isError(val) {
			return val
		}
		env.Create(node.Name.Value, val)
		return object.NULL

	case *ast.ReturnStatement:
		val := e.Eval(node.ReturnValue, env)
		if isError(val) {
			return val
		}
		return &object.ReturnValue{Value: val}

	case *ast.BreakStatement:
		return object.BREAK

	// Expressions
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &object.Float{Value: node.Value}

	case *ast.DoubleLiteral:
		return &object.Double{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.Boolean:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.PrefixExpression:
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalPrefixExpression(node.Operator, right)

	case *ast.InfixExpression:
		switch node.Operator {
		case "=", "+=", "-=", "*=", "/=":
			return e.evalAssignment(node, env)
		case ".":
			return e.evalMemberAccess(node, env)
		}

		left := e.Eval(node.Left, env)
		if isError(left) {
			return left
		}
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalInfixExpression(node.Operator, left, right)

	case *ast.IfExpression:
		return e.evalIfExpression(node, env)

	case *ast.ForExpression:
		return e.evalForExpression(node, env)

	case *ast.Identifier:
		return e.evalIdentifier(node, env)

	case *ast.FunctionLiteral:
		return &object.Function{
			Parameters: node.Parameters,
			Body:       node.Body,
			Env:        env,
		}

	case *ast.CallExpression:
		function := e.Eval(node.Function, env)
		if isError(function) {
			return function
		}
		args := e.evalExpressions(node.Arguments, env)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}
		return e.applyFunction(function, args)

	case *ast.ArrayLiteral:
		elements := e.evalExpressions(node.Elements, env)
		if len(elements) == 1 && isError(elements[0]) {
			return elements[0]
		}
		return &object.Array{Elements: elements}

	case *ast.HashLiteral:
		return e.evalHashLiteral(node, env)

	case *ast.IndexExpression:
		left := e.Eval(node.Left, env)
		if isError(left) {
			return left
		}
		index := e.Eval(node.Index, env)
		if isError(index) {
			return index
		}
		return evalIndexExpression(left, index)
	}

	return newError("Unsupported node: %T", node)
}

func (e *Evaluator) evalProgram(program *ast.Program, env *object.Environment) object.Object {
	var result object.Object = object.NULL

	for _, statement := range program.Statements {
		result = e.Eval(statement, env)

		switch result := result.(type) {
		case *object.ReturnValue:
			return result.Value
		case *object.Error:
			return result
		}
		if result == object.BREAK {
			result = object.NULL
		}
	}

	return result
}

// evalBlockStatement stops at the first signal and hands it back untouched
// so enclosing loops and functions can act on it.
func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, env *object.Environment) object.Object {
	var result object.Object = object.NULL

	for _, statement := range block.Statements {
		result = e.Eval(statement, env)

		rt := result.Type()
		if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ || rt == object.BREAK_OBJ {
			return result
		}
	}

	return result
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *object.Environment) object.Object {
	if builtin, ok := e.builtins.Lookup(node.Value); ok {
		return builtin
	}

	if val, ok := env.Get(node.Value); ok {
		return val
	}

	return newError("Identifier not found: %s", node.Value)
}

func (e *Evaluator) evalIfExpression(ie *ast.IfExpression, env *object.Environment) object.Object {
	condition := e.Eval(ie.Condition, env)
	if isError(condition) {
		return condition
	}
	if isTruthy(condition) {
		return e.Eval(ie.Consequence, env)
	}

	for i, elifCondition := range ie.ElifConditions {
		condition = e.Eval(elifCondition, env)
		if isError(condition) {
			return condition
		}
		if isTruthy(condition) {
			return e.Eval(ie.ElifBodies[i], env)
		}
	}

	if ie.Alternative != nil {
		return e.Eval(ie.Alternative, env)
	}
	return object.NULL
}

// evalForExpression runs each iteration in a fresh child of env. Only the
// loop variable is carried into the next iteration.
func (e *Evaluator) evalForExpression(fe *ast.ForExpression, env *object.Environment) object.Object {
	loopEnv := object.NewEnclosedEnvironment(env)
	if declared := e.Eval(fe.Declare, loopEnv); isError(declared) {
		return declared
	}
	loopVar := fe.Declare.Name.Value

	for {
		condition := e.Eval(fe.Condition, loopEnv)
		if isError(condition) {
			return condition
		}
		proceed, ok := condition.(*object.Boolean)
		if !ok {
			return newError("For loop condition must be BOOLEAN, got %s", condition.Type())
		}
		if proceed == object.FALSE {
			return object.NULL
		}

		result := e.Eval(fe.Body, loopEnv)
		switch result.Type() {
		case object.ERROR_OBJ, object.RETURN_VALUE_OBJ:
			return result
		case object.BREAK_OBJ:
			return object.NULL
		}

		if stepped := e.Eval(fe.Step, loopEnv); isError(stepped) {
			return stepped
		}

		counter, _ := loopEnv.Get(loopVar)
		loopEnv = object.NewEnclosedEnvironment(env)
		loopEnv.Create(loopVar, counter)
	}
}

func (e *Evaluator) evalExpressions(exps []ast.Expression, env *object.Environment) []object.Object {
	var result []object.Object

	for _, exp := range exps {
		evaluated := e.Eval(exp, env)
		if isError(evaluated) {
			return []object.Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

func (e *Evaluator) evalHashLiteral(node *ast.HashLiteral, env *object.Environment) object.Object {
	hash := object.NewHash()

	for _, pair := range node.Pairs {
		key := e.Eval(pair.Key, env)
		if isError(key) {
			return key
		}

		hashKey, ok := key.(object.Hashable)
		if !ok {
			return newError("Unusable as hash key: %s", key.Type())
		}

		value := e.Eval(pair.Value, env)
		if isError(value) {
			return value
		}

		hash.Put(hashKey, value)
	}

	return hash
}

func (e *Evaluator) applyFunction(fn object.Object, args []object.Object) object.Object {
	switch fn := fn.(type) {

	case *object.Function:
		if len(args) != len(fn.Parameters) {
			return newError("Wrong number of arguments: want=%d, got=%d", len(fn.Parameters), len(args))
		}
		extendedEnv := extendFunctionEnv(fn, args)
		evaluated := e.Eval(fn.Body, extendedEnv)
		return unwrapReturnValue(evaluated)

	case *object.Builtin:
		e.logger.Debug("calling builtin",
			slog.String("name", fn.Name),
			slog.Int("args", len(args)))
		if result := fn.Fn(args...); result != nil {
			return result
		}
		return object.NULL

	default:
		return newError("Not a function: %s", fn.Type())
	}
}

func extendFunctionEnv(fn *object.Function, args []object.Object) *object.Environment {
	env := object.NewEnclosedEnvironment(fn.Env)

	for paramIdx, param := range fn.Parameters {
		env.Create(param.Value, args[paramIdx])
	}

	return env
}

func unwrapReturnValue(obj object.Object) object.Object {
	if returnValue, ok := obj.(*object.ReturnValue); ok {
		return returnValue.Value
	}
	if obj == object.BREAK {
		return object.NULL
	}

	return obj
}

func (e *Evaluator) evalAssignment(node *ast.InfixExpression, env *object.Environment) object.Object {
	ident, ok := node.Left.(*ast.Identifier)
	if !ok {
		return newError("Cannot assign to %s: left side must be an identifier", node.Left.String())
	}

	right := e.Eval(node.Right, env)
	if isError(right) {
		return right
	}

	if node.Operator == "=" {
		return env.Set(ident.Value, right)
	}

	current, ok := env.Get(ident.Value)
	if !ok {
		return newError("Identifier not found: %s", ident.Value)
	}

	result := evalCompoundAssignment(node.Operator, current, right)
	if isError(result) {
		return result
	}
	return env.Set(ident.Value, result)
}

// evalCompoundAssignment keeps the kind of the existing binding: an INTEGER
// stays an INTEGER even when the right operand is a DOUBLE.
func evalCompoundAssignment(operator string, current, right object.Object) object.Object {
	op := strings.TrimSuffix(operator, "=")

	switch current := current.(type) {
	case *object.String:
		if operator != "+=" {
			return newError("Compound assignment %s not supported for %s", operator, current.Type())
		}
		r, ok := right.(*object.String)
		if !ok {
			return newError("Type mismatch: %s %s %s", current.Type(), operator, right.Type())
		}
		return &object.String{Value: current.Value + r.Value}

	case object.Numeric:
		if !isNumeric(right) {
			return newError("Compound assignment %s requires a numeric right operand, got %s", operator, right.Type())
		}
		return evalArithmetic(current.Type(), op, current, right)

	default:
		return newError("Compound assignment %s not supported for %s", operator, current.Type())
	}
}

func (e *Evaluator) evalMemberAccess(node *ast.InfixExpression, env *object.Environment) object.Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}

	module, ok := left.(*object.Module)
	if !ok {
		return newError("Member access not supported: %s", left.Type())
	}

	switch member := node.Right.(type) {
	case *ast.Identifier:
		if val, ok := module.Env.Get(member.Value); ok {
			return val
		}
		return newError("Identifier not found: %s", member.Value)

	case *ast.CallExpression:
		name, ok := member.Function.(*ast.Identifier)
		if !ok {
			return newError("Module member must be an identifier or call, got %s", member.String())
		}
		function, ok := module.Env.Get(name.Value)
		if !ok {
			return newError("Identifier not found: %s", name.Value)
		}
		args := e.evalExpressions(member.Arguments, env)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}
		return e.applyFunction(function, args)
	}

	return newError("Module member must be an identifier or call, got %s", node.Right.String())
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return object.TRUE
	}
	return object.FALSE
}

func isTruthy(obj object.Object) bool {
	switch obj {
	case object.NULL:
		return false
	case object.TRUE:
		return true
	case object.FALSE:
		return false
	default:
		return true
	}
}

func newError(format string, a ...interface{}) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, a...)}
}

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}
