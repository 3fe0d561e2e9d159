package repl

import (
	"bufio"
	"fmt"
	"io"

	"aqua/internal/evaluator"
	"aqua/internal/lexer"
	"aqua/internal/object"
	"aqua/internal/parser"

	"github.com/fatih/color"
)

const PROMPT = ">> "

var (
	errorColor  = color.New(color.FgRed)
	headerColor = color.New(color.FgYellow, color.Bold)
)

// Start reads one line at a time from in and evaluates it against a single
// environment, so bindings survive between lines. It returns when in is
// exhausted.
func Start(in io.Reader, out io.Writer, e *evaluator.Evaluator, prompt string) {
	if prompt == "" {
		prompt = PROMPT
	}
	scanner := bufio.NewScanner(in)
	env := object.NewEnvironment()

	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		l := lexer.New(line)
		p := parser.New(l, line)

		program := p.ParseProgram()
		if len(p.ParseErrors()) != 0 {
			printParserErrors(out, p.Diagnostics())
			continue
		}

		evaluated := e.Eval(program, env)
		switch evaluated := evaluated.(type) {
		case nil:
		case *object.Error:
			errorColor.Fprintf(out, "error: %s\n", evaluated.Message)
		default:
			if evaluated == object.NULL {
				continue
			}
			io.WriteString(out, evaluated.Inspect())
			io.WriteString(out, "\n")
		}
	}
}

func printParserErrors(out io.Writer, diagnostics []string) {
	headerColor.Fprintln(out, "parser errors:")
	for _, msg := range diagnostics {
		errorColor.Fprintf(out, "\t%s\n", msg)
	}
}
