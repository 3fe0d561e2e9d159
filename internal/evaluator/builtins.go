package evaluator

import (
	"aqua/internal/object"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Registry is an immutable name -> builtin table. Identifier lookup
// consults it before the environment.
type Registry struct {
	fns map[string]*object.Builtin
}

func NewRegistry(builtins ...*object.Builtin) *Registry {
	r := &Registry{fns: make(map[string]*object.Builtin, len(builtins))}
	for _, b := range builtins {
		r.fns[b.Name] = b
	}
	return r
}

func (r *Registry) Lookup(name string) (*object.Builtin, bool) {
	if r == nil {
		return nil, false
	}
	b, ok := r.fns[name]
	return b, ok
}

// Merge returns a new registry holding both tables. Entries in other win.
func (r *Registry) Merge(other *Registry) *Registry {
	merged := &Registry{fns: make(map[string]*object.Builtin, len(r.fns)+len(other.fns))}
	for name, b := range r.fns {
		merged.fns[name] = b
	}
	for name, b := range other.fns {
		merged.fns[name] = b
	}
	return merged
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CoreBuiltins returns the language's standard functions. print and puts
// write to out.
func CoreBuiltins(out io.Writer) *Registry {
	return NewRegistry(
		funcLen(),
		funcType(),
		funcStr(),
		funcPrint(out),
		funcPuts(out),

		// array functions
		funcFirst(),
		funcLast(),
		funcRest(),
		funcPush(),

		// hash functions
		funcKeys(),
		funcValues(),
		funcPut(),
		funcRemove(),

		// string functions
		funcTrim(),
		funcContains(),
		funcStartsWith(),
		funcEndsWith(),
		funcIndexOf(),
	)
}

func wrongArgCount(got, want int) *object.Error {
	return newError("wrong number of arguments. got=%d, want=%d", got, want)
}

func wrongArgType(name string, want object.ObjectType, got object.Object) *object.Error {
	return newError("argument to `%s` must be %s, got %s", name, want, got.Type())
}

func funcLen() *object.Builtin {
	return &object.Builtin{Name: "len", Fn: func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return wrongArgCount(len(args), 1)
		}

		switch arg := args[0].(type) {
		case *object.Array:
			return &object.Integer{Value: int64(len(arg.Elements))}
		case *object.Hash:
			return &object.Integer{Value: int64(arg.Len())}
		case *object.String:
			return &object.Integer{Value: int64(len(arg.Value))}
		default:
			return newError("argument to `len` not supported, got %s", args[0].Type())
		}
	}}
}

func funcType() *object.Builtin {
	return &object.Builtin{Name: "type", Fn: func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return wrongArgCount(len(args), 1)
		}
		return &object.String{Value: string(args[0].Type())}
	}}
}

func funcStr() *object.Builtin {
	return &object.Builtin{Name: "str", Fn: func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return wrongArgCount(len(args), 1)
		}
		return &object.String{Value: args[0].Inspect()}
	}}
}

// funcPrint writes its arguments space separated on one line.
func funcPrint(out io.Writer) *object.Builtin {
	return &object.Builtin{Name: "print", Fn: func(args ...object.Object) object.Object {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = arg.Inspect()
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
		return object.NULL
	}}
}

// funcPuts writes each argument on its own line.
func funcPuts(out io.Writer) *object.Builtin {
	return &object.Builtin{Name: "puts", Fn: func(args ...object.Object) object.Object {
		for _, arg := range args {
			fmt.Fprintln(out, arg.Inspect())
		}
		return object.NULL
	}}
}

func arrayArg(name string, args []object.Object) (*object.Array, *object.Error) {
	if len(args) != 1 {
		return nil, wrongArgCount(len(args), 1)
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return nil, wrongArgType(name, object.ARRAY_OBJ, args[0])
	}
	return arr, nil
}

func funcFirst() *object.Builtin {
	return &object.Builtin{Name: "first", Fn: func(args ...object.Object) object.Object {
		arr, err := arrayArg("first", args)
		if err != nil {
			return err
		}
		if len(arr.Elements) > 0 {
			return arr.Elements[0]
		}
		return object.NULL
	}}
}

func funcLast() *object.Builtin {
	return &object.Builtin{Name: "last", Fn: func(args ...object.Object) object.Object {
		arr, err := arrayArg("last", args)
		if err != nil {
			return err
		}
		if length := len(arr.Elements); length > 0 {
			return arr.Elements[length-1]
		}
		return object.NULL
	}}
}

// funcRest returns a new array without the first element, or NULL for an empty array.
func funcRest() *object.Builtin {
	return &object.Builtin{Name: "rest", Fn: func(args ...object.Object) object.Object {
		arr, err := arrayArg("rest", args)
		if err != nil {
			return err
		}
		length := len(arr.Elements)
		if length == 0 {
			return object.NULL
		}

		newElements := make([]object.Object, length-1)
		copy(newElements, arr.Elements[1:length])
		return &object.Array{Elements: newElements}
	}}
}

// funcPush returns a copy of the array with the items appended.
func funcPush() *object.Builtin {
	return &object.Builtin{Name: "push", Fn: func(args ...object.Object) object.Object {
		if len(args) < 2 {
			return newError("wrong number of arguments. got=%d, want=2+", len(args))
		}
		arr, ok := args[0].(*object.Array)
		if !ok {
			return wrongArgType("push", object.ARRAY_OBJ, args[0])
		}

		length := len(arr.Elements)
		newElements := make([]object.Object, length, length+len(args)-1)
		copy(newElements, arr.Elements)
		newElements = append(newElements, args[1:]...)
		return &object.Array{Elements: newElements}
	}}
}

func hashArg(name string, args []object.Object, want int) (*object.Hash, *object.Error) {
	if len(args) != want {
		return nil, wrongArgCount(len(args), want)
	}
	hash, ok := args[0].(*object.Hash)
	if !ok {
		return nil, wrongArgType(name, object.HASH_OBJ, args[0])
	}
	return hash, nil
}

func funcKeys() *object.Builtin {
	return &object.Builtin{Name: "keys", Fn: func(args ...object.Object) object.Object {
		hash, err := hashArg("keys", args, 1)
		if err != nil {
			return err
		}
		keys := []object.Object{}
		for _, pair := range hash.Ordered() {
			keys = append(keys, pair.Key)
		}
		return &object.Array{Elements: keys}
	}}
}

func funcValues() *object.Builtin {
	return &object.Builtin{Name: "values", Fn: func(args ...object.Object) object.Object {
		hash, err := hashArg("values", args, 1)
		if err != nil {
			return err
		}
		values := []object.Object{}
		for _, pair := range hash.Ordered() {
			values = append(values, pair.Value)
		}
		return &object.Array{Elements: values}
	}}
}

func copyHash(hash *object.Hash, skip *object.HashKey) *object.Hash {
	result := object.NewHash()
	for _, pair := range hash.Ordered() {
		key := pair.Key.(object.Hashable)
		if skip != nil && key.HashKey() == *skip {
			continue
		}
		result.Put(key, pair.Value)
	}
	return result
}

// funcPut returns a copy of the hash with key set to value.
func funcPut() *object.Builtin {
	return &object.Builtin{Name: "put", Fn: func(args ...object.Object) object.Object {
		hash, err := hashArg("put", args, 3)
		if err != nil {
			return err
		}
		key, ok := args[1].(object.Hashable)
		if !ok {
			return newError("Unusable as hash key: %s", args[1].Type())
		}
		result := copyHash(hash, nil)
		result.Put(key, args[2])
		return result
	}}
}

// funcRemove returns a copy of the hash without key.
func funcRemove() *object.Builtin {
	return &object.Builtin{Name: "remove", Fn: func(args ...object.Object) object.Object {
		hash, err := hashArg("remove", args, 2)
		if err != nil {
			return err
		}
		key, ok := args[1].(object.Hashable)
		if !ok {
			return newError("Unusable as hash key: %s", args[1].Type())
		}
		hk := key.HashKey()
		return copyHash(hash, &hk)
	}}
}

func stringArgs(name string, args []object.Object, want int) ([]string, *object.Error) {
	if len(args) != want {
		return nil, wrongArgCount(len(args), want)
	}
	values := make([]string, want)
	for i, arg := range args {
		s, ok := arg.(*object.String)
		if !ok {
			return nil, wrongArgType(name, object.STRING_OBJ, arg)
		}
		values[i] = s.Value
	}
	return values, nil
}

func funcTrim() *object.Builtin {
	return &object.Builtin{Name: "trim", Fn: func(args ...object.Object) object.Object {
		s, err := stringArgs("trim", args, 1)
		if err != nil {
			return err
		}
		return &object.String{Value: strings.TrimSpace(s[0])}
	}}
}

func funcContains() *object.Builtin {
	return &object.Builtin{Name: "contains", Fn: func(args ...object.Object) object.Object {
		s, err := stringArgs("contains", args, 2)
		if err != nil {
			return err
		}
		return nativeBoolToBooleanObject(strings.Contains(s[0], s[1]))
	}}
}

func funcStartsWith() *object.Builtin {
	return &object.Builtin{Name: "startsWith", Fn: func(args ...object.Object) object.Object {
		s, err := stringArgs("startsWith", args, 2)
		if err != nil {
			return err
		}
		return nativeBoolToBooleanObject(strings.HasPrefix(s[0], s[1]))
	}}
}

func funcEndsWith() *object.Builtin {
	return &object.Builtin{Name: "endsWith", Fn: func(args ...object.Object) object.Object {
		s, err := stringArgs("endsWith", args, 2)
		if err != nil {
			return err
		}
		return nativeBoolToBooleanObject(strings.HasSuffix(s[0], s[1]))
	}}
}

// funcIndexOf returns the byte offset of the substring, or -1.
func funcIndexOf() *object.Builtin {
	return &object.Builtin{Name: "indexOf", Fn: func(args ...object.Object) object.Object {
		s, err := stringArgs("indexOf", args, 2)
		if err != nil {
			return err
		}
		return &object.Integer{Value: int64(strings.Index(s[0], s[1]))}
	}}
}
