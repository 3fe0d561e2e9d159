package object

import (
	"aqua/internal/ast"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/segmentio/fasthash/fnv1a"
)

type ObjectType string

const (
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	DOUBLE_OBJ  = "DOUBLE"
	BOOLEAN_OBJ = "BOOLEAN"
	STRING_OBJ  = "STRING"
	NULL_OBJ    = "NULL"

	ARRAY_OBJ = "ARRAY"
	HASH_OBJ  = "HASH"

	MODULE_OBJ   = "MODULE"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
	ERROR_OBJ    = "ERROR"

	RETURN_VALUE_OBJ = "RETURN_VALUE"
	BREAK_OBJ        = "BREAK"
)

// Interned values. The evaluator compares these by identity.
var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	BREAK = &Break{}
)

type Object interface {
	Type() ObjectType
	Inspect() string
}

type HashKey struct {
	Type  ObjectType
	Value uint64
}

type Hashable interface {
	Object
	HashKey() HashKey
}

// Numeric is implemented by the three number kinds.
type Numeric interface {
	Object
	Float64() float64
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Float64() float64 { return float64(i.Value) }
func (i *Integer) HashKey() HashKey {
	return HashKey{Type: i.Type(), Value: uint64(i.Value)}
}

type Float struct {
	Value float32
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	return formatDecimal(strconv.FormatFloat(float64(f.Value), 'g', -1, 32))
}
func (f *Float) Float64() float64 { return float64(f.Value) }
func (f *Float) HashKey() HashKey {
	v := f.Value
	if v == 0 {
		v = 0
	}
	return HashKey{Type: f.Type(), Value: uint64(math.Float32bits(v))}
}

type Double struct {
	Value float64
}

func (d *Double) Type() ObjectType { return DOUBLE_OBJ }
func (d *Double) Inspect() string {
	return formatDecimal(strconv.FormatFloat(d.Value, 'g', -1, 64))
}
func (d *Double) Float64() float64 { return d.Value }
func (d *Double) HashKey() HashKey {
	v := d.Value
	if v == 0 {
		v = 0
	}
	return HashKey{Type: d.Type(), Value: math.Float64bits(v)}
}

// formatDecimal makes whole values read as decimals, 35 -> 35.0.
func formatDecimal(s string) string {
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) HashKey() HashKey {
	var value uint64

	if b.Value {
		value = 1
	} else {
		value = 0
	}

	return HashKey{Type: b.Type(), Value: value}
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }
func (s *String) HashKey() HashKey {
	return HashKey{Type: s.Type(), Value: fnv1a.HashString64(s.Value)}
}

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

type Break struct{}

func (b *Break) Type() ObjectType { return BREAK_OBJ }
func (b *Break) Inspect() string  { return "break" }

type Error struct {
	Message string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return e.Message }

type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	elements := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elements[i] = inspectElement(e)
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

type HashPair struct {
	Key   Object
	Value Object
}

// Hash keeps its keys in insertion order so Inspect and keys() are stable.
type Hash struct {
	Pairs map[HashKey]HashPair
	order []HashKey
}

func NewHash() *Hash {
	return &Hash{Pairs: make(map[HashKey]HashPair)}
}

func (h *Hash) Type() ObjectType { return HASH_OBJ }
func (h *Hash) Inspect() string {
	pairs := make([]string, 0, len(h.order))
	for _, pair := range h.Ordered() {
		pairs = append(pairs, inspectElement(pair.Key)+": "+inspectElement(pair.Value))
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// Put inserts or replaces the value for key. Replacing keeps the original position.
func (h *Hash) Put(key Hashable, value Object) {
	hk := key.HashKey()
	if _, ok := h.Pairs[hk]; !ok {
		h.order = append(h.order, hk)
	}
	h.Pairs[hk] = HashPair{Key: key, Value: value}
}

func (h *Hash) Get(key Hashable) (Object, bool) {
	pair, ok := h.Pairs[key.HashKey()]
	if !ok {
		return nil, false
	}
	return pair.Value, true
}

func (h *Hash) Len() int { return len(h.order) }

func (h *Hash) Ordered() []HashPair {
	pairs := make([]HashPair, 0, len(h.order))
	for _, hk := range h.order {
		pairs = append(pairs, h.Pairs[hk])
	}
	return pairs
}

// strings are quoted inside containers so ["a"] and [a] read differently
func inspectElement(o Object) string {
	if s, ok := o.(*String); ok {
		return strconv.Quote(s.Value)
	}
	return o.Inspect()
}

type Function struct {
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := []string{}
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}

	return "fn(" + strings.Join(params, ", ") + ") " + f.Body.String()
}

type BuiltinFunction func(args ...Object) Object

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return fmt.Sprintf("builtin %s", b.Name) }

type Module struct {
	Name string
	Path string
	Env  *Environment
}

func (m *Module) Type() ObjectType { return MODULE_OBJ }
func (m *Module) Inspect() string {
	var out bytes.Buffer
	out.WriteString("module ")
	out.WriteString(m.Name)
	out.WriteString(" {")
	for _, name := range m.Env.Names() {
		val, _ := m.Env.Get(name)
		out.WriteString(fmt.Sprintf("\n  %s: %s,", name, inspectElement(val)))
	}
	out.WriteString("\n}")
	return out.String()
}
