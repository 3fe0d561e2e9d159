package object

import (
	"log/slog"
	"sort"
)

// Environment is one lexical scope. store holds every binding readable here,
// including values written through this scope on their way to an outer owner.
// owned holds only the bindings this scope introduced.
type Environment struct {
	store map[string]Object
	owned map[string]Object
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{
		store: make(map[string]Object),
		owned: make(map[string]Object),
	}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

func (e *Environment) Outer() *Environment { return e.outer }

// Get resolves name in this scope or the nearest enclosing scope that has it.
func (e *Environment) Get(name string) (Object, bool) {
	for scope := e; scope != nil; scope = scope.outer {
		if obj, ok := scope.store[name]; ok {
			return obj, true
		}
	}
	return nil, false
}

// Owns reports whether name was introduced by this scope.
func (e *Environment) Owns(name string) bool {
	_, ok := e.owned[name]
	return ok
}

// Set assigns to an existing binding. Every scope between e and the owner
// has its store updated too. When no scope owns name, the outermost scope
// takes ownership.
func (e *Environment) Set(name string, val Object) Object {
	scope := e
	for {
		scope.store[name] = val
		if _, ok := scope.owned[name]; ok {
			scope.owned[name] = val
			break
		}
		if scope.outer == nil {
			scope.owned[name] = val
			slog.Debug("implicit binding at outermost scope",
				slog.String("name", name))
			break
		}
		scope = scope.outer
	}

	slog.Debug("assigned binding",
		slog.String("name", name),
		slog.String("type", string(val.Type())))
	return val
}

// Create binds name in this scope, shadowing any outer binding.
func (e *Environment) Create(name string, val Object) Object {
	e.store[name] = val
	e.owned[name] = val

	slog.Debug("created binding",
		slog.String("name", name),
		slog.String("type", string(val.Type())))
	return val
}

// Names lists the bindings owned by this scope in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.owned))
	for name := range e.owned {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
