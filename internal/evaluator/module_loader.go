package evaluator

import (
	"aqua/internal/ast"
	"aqua/internal/lexer"
	"aqua/internal/object"
	"aqua/internal/parser"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/edwingeng/deque"
	"github.com/zeebo/blake3"
)

const SourceExt = ".aqua"

// ParseErrors is returned when a source file does not parse.
type ParseErrors struct {
	Path   string
	Src    string
	Errors []parser.ParseError
}

func (pe *ParseErrors) Error() string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("Parser errors in %s:", pe.Path))
	for _, err := range pe.Errors {
		out.WriteString("\n\t")
		out.WriteString(err.String())
	}
	return out.String()
}

type cachedModule struct {
	fingerprint [32]byte
	module      *object.Module
}

// moduleLoader tracks which files are being evaluated so nested imports
// resolve relative to their importer and cycles are reported.
type moduleLoader struct {
	e       *Evaluator
	cache   map[string]cachedModule
	loading map[string]bool
	stack   deque.Deque // absolute paths, innermost at the back
}

func newModuleLoader(e *Evaluator) *moduleLoader {
	return &moduleLoader{
		e:       e,
		cache:   make(map[string]cachedModule),
		loading: make(map[string]bool),
		stack:   deque.NewDeque(),
	}
}

func (e *Evaluator) importBuiltin() *object.Builtin {
	return &object.Builtin{Name: "import", Fn: func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return wrongArgCount(len(args), 1)
		}
		path, ok := args[0].(*object.String)
		if !ok {
			return wrongArgType("import", object.STRING_OBJ, args[0])
		}

		module, err := e.modules.load(path.Value)
		if err != nil {
			return newError("%s", err.Error())
		}
		if errObj, ok := module.(*object.Error); ok {
			return errObj
		}
		return module
	}}
}

// EvalFile runs a script in env. Imports inside it resolve relative to the
// script's directory. Read and parse failures are returned as errors; runtime
// failures come back as *object.Error.
func (e *Evaluator) EvalFile(path string, env *object.Environment) (object.Object, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	program, err := e.parse(abs, string(src))
	if err != nil {
		return nil, err
	}

	return e.modules.evalWithin(abs, func() object.Object {
		return e.Eval(program, env)
	}), nil
}

func (e *Evaluator) parse(path, src string) (*ast.Program, error) {
	l := lexer.New(src)
	p := parser.New(l, src)
	program := p.ParseProgram()

	if format := e.config.DebugAST; format != "" {
		target, err := parser.WriteAST(program, path, format)
		if err != nil {
			e.logger.Error("failed to write AST", slog.Any("error", err))
		} else {
			e.logger.Debug("wrote AST", slog.String("path", target))
		}
	}

	if len(p.ParseErrors()) > 0 {
		return nil, &ParseErrors{Path: path, Src: src, Errors: p.ParseErrors()}
	}
	return program, nil
}

func (ml *moduleLoader) evalWithin(abs string, eval func() object.Object) object.Object {
	ml.loading[abs] = true
	ml.stack.PushBack(abs)
	defer func() {
		ml.stack.PopBack()
		delete(ml.loading, abs)
	}()
	return eval()
}

// resolve finds the file for an import path: relative to the importing
// file's directory (or the root path), then under $AQUA_HOME/lib.
func (ml *moduleLoader) resolve(name string) (string, error) {
	if !strings.HasSuffix(name, SourceExt) {
		name += SourceExt
	}
	if filepath.IsAbs(name) {
		return name, nil
	}

	base := ml.e.config.RootPath
	if !ml.stack.Empty() {
		base = filepath.Dir(ml.stack.Back().(string))
	}

	candidate := filepath.Join(base, name)
	if _, err := os.Stat(candidate); err == nil {
		return filepath.Abs(candidate)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", candidate, err)
	}

	if home := ml.e.config.AquaHome; home != "" {
		libPath := filepath.Join(home, "lib", name)
		if _, err := os.Stat(libPath); err == nil {
			return filepath.Abs(libPath)
		}
		return "", fmt.Errorf("Module not found: %s (looked in %s and %s)", name, candidate, libPath)
	}
	return "", fmt.Errorf("Module not found: %s (looked in %s, AQUA_HOME is not set)", name, candidate)
}

func (ml *moduleLoader) load(name string) (object.Object, error) {
	abs, err := ml.resolve(name)
	if err != nil {
		return nil, err
	}

	if ml.loading[abs] {
		return nil, fmt.Errorf("Import cycle detected: %s", ml.cycle(abs))
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read module %s: %w", abs, err)
	}
	fingerprint := blake3.Sum256(src)

	if cached, ok := ml.cache[abs]; ok && cached.fingerprint == fingerprint {
		ml.e.logger.Debug("module cache hit", slog.String("path", abs))
		return cached.module, nil
	}

	ml.e.logger.Debug("loading module",
		slog.String("path", abs),
		slog.Int("depth", ml.stack.Len()))

	program, err := ml.e.parse(abs, string(src))
	if err != nil {
		return nil, err
	}

	env := object.NewEnvironment()
	result := ml.evalWithin(abs, func() object.Object {
		return ml.e.Eval(program, env)
	})
	if isError(result) {
		return result, nil
	}

	module := &object.Module{
		Name: moduleName(abs),
		Path: abs,
		Env:  env,
	}
	ml.cache[abs] = cachedModule{fingerprint: fingerprint, module: module}
	return module, nil
}

// cycle renders the import chain from the first visit of abs back to abs.
func (ml *moduleLoader) cycle(abs string) string {
	var chain []string
	for i := 0; i < ml.stack.Len(); i++ {
		path := ml.stack.Peek(i).(string)
		if path == abs || len(chain) > 0 {
			chain = append(chain, moduleName(path))
		}
	}
	chain = append(chain, moduleName(abs))
	return strings.Join(chain, " -> ")
}

func moduleName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), SourceExt)
}
