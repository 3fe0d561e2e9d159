package parser

import (
	"aqua/internal/ast"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"
)

// WalkAST recursively traverses an AST and serializes it into a map structure
// suitable for JSON or YAML encoding.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Program:
		return map[string]interface{}{
			"type":       "Program",
			"statements": walkStatements(n.Statements),
		}

	case *ast.LetStatement:
		return map[string]interface{}{
			"type":  "LetStatement",
			"token": n.TokenLiteral(),
			"name":  WalkAST(n.Name),
			"value": WalkAST(n.Value),
		}

	case *ast.ReturnStatement:
		return map[string]interface{}{
			"type":        "ReturnStatement",
			"token":       n.TokenLiteral(),
			"returnValue": WalkAST(n.ReturnValue),
		}

	case *ast.BreakStatement:
		return map[string]interface{}{"type": "BreakStatement", "token": n.TokenLiteral()}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"type":       "ExpressionStatement",
			"token":      n.TokenLiteral(),
			"expression": WalkAST(n.Expression),
		}

	case *ast.BlockStatement:
		return map[string]interface{}{
			"type":       "BlockStatement",
			"token":      n.TokenLiteral(),
			"statements": walkStatements(n.Statements),
		}

	case *ast.Identifier:
		return map[string]interface{}{"type": "Identifier", "value": n.Value}

	case *ast.Boolean:
		return map[string]interface{}{"type": "Boolean", "value": n.Value}

	case *ast.IntegerLiteral:
		return map[string]interface{}{"type": "IntegerLiteral", "token": n.TokenLiteral(), "value": n.Value}

	case *ast.FloatLiteral:
		return map[string]interface{}{"type": "FloatLiteral", "token": n.TokenLiteral(), "value": n.Value}

	case *ast.DoubleLiteral:
		return map[string]interface{}{"type": "DoubleLiteral", "token": n.TokenLiteral(), "value": n.Value}

	case *ast.StringLiteral:
		return map[string]interface{}{"type": "StringLiteral", "value": n.Value}

	case *ast.ArrayLiteral:
		return map[string]interface{}{
			"type":     "ArrayLiteral",
			"elements": walkExpressions(n.Elements),
		}

	case *ast.HashLiteral:
		pairs := make([]interface{}, len(n.Pairs))
		for i, p := range n.Pairs {
			pairs[i] = map[string]interface{}{
				"key":   WalkAST(p.Key),
				"value": WalkAST(p.Value),
			}
		}
		return map[string]interface{}{"type": "HashLiteral", "pairs": pairs}

	case *ast.PrefixExpression:
		return map[string]interface{}{
			"type":     "PrefixExpression",
			"operator": n.Operator,
			"right":    WalkAST(n.Right),
		}

	case *ast.InfixExpression:
		return map[string]interface{}{
			"type":     "InfixExpression",
			"operator": n.Operator,
			"left":     WalkAST(n.Left),
			"right":    WalkAST(n.Right),
		}

	case *ast.IndexExpression:
		return map[string]interface{}{
			"type":  "IndexExpression",
			"left":  WalkAST(n.Left),
			"index": WalkAST(n.Index),
		}

	case *ast.IfExpression:
		elifs := make([]interface{}, len(n.ElifConditions))
		for i := range n.ElifConditions {
			elifs[i] = map[string]interface{}{
				"condition": WalkAST(n.ElifConditions[i]),
				"body":      WalkAST(n.ElifBodies[i]),
			}
		}
		return map[string]interface{}{
			"type":        "IfExpression",
			"condition":   WalkAST(n.Condition),
			"consequence": WalkAST(n.Consequence),
			"elif":        elifs,
			"alternative": WalkAST(n.Alternative),
		}

	case *ast.ForExpression:
		return map[string]interface{}{
			"type":      "ForExpression",
			"declare":   WalkAST(n.Declare),
			"condition": WalkAST(n.Condition),
			"step":      WalkAST(n.Step),
			"body":      WalkAST(n.Body),
		}

	case *ast.FunctionLiteral:
		params := make([]interface{}, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = WalkAST(p)
		}
		return map[string]interface{}{
			"type":       "FunctionLiteral",
			"parameters": params,
			"body":       WalkAST(n.Body),
		}

	case *ast.CallExpression:
		return map[string]interface{}{
			"type":      "CallExpression",
			"function":  WalkAST(n.Function),
			"arguments": walkExpressions(n.Arguments),
		}

	default:
		return map[string]interface{}{
			"type": "Unknown",
			"node": fmt.Sprintf("%T", n),
		}
	}
}

func walkStatements(stmts []ast.Statement) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = WalkAST(s)
	}
	return result
}

func walkExpressions(exprs []ast.Expression) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = WalkAST(e)
	}
	return result
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.String(), nil
}

func RenderASTAsYAML(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := yaml.NewEncoder(buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.String(), nil
}

// WriteAST renders node in the given format ("json" or "yaml") next to the
// source file, as <path>.ast.<format>. It returns the path written.
func WriteAST(node ast.Node, path, format string) (string, error) {
	var (
		out string
		err error
	)
	switch format {
	case "json":
		out, err = RenderASTAsJSON(node)
	case "yaml":
		out, err = RenderASTAsYAML(node)
	default:
		return "", fmt.Errorf("unknown AST format %q", format)
	}
	if err != nil {
		return "", err
	}

	target := path + ".ast." + format
	if err := os.WriteFile(target, []byte(out), 0644); err != nil {
		return "", fmt.Errorf("failed to write AST to %s: %w", target, err)
	}
	return target, nil
}
