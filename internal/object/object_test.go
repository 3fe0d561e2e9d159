package object

import (
	"math"
	"testing"
)

func TestStringHashKey(t *testing.T) {
	hello1 := &String{Value: "Hello World"}
	hello2 := &String{Value: "Hello World"}
	diff1 := &String{Value: "My name is johnny"}
	diff2 := &String{Value: "My name is johnny"}

	if hello1.HashKey() != hello2.HashKey() {
		t.Errorf("strings with same content have different hash keys")
	}

	if diff1.HashKey() != diff2.HashKey() {
		t.Errorf("strings with same content have different hash keys")
	}

	if hello1.HashKey() == diff1.HashKey() {
		t.Errorf("strings with different content have same hash keys")
	}
}

func TestBooleanHashKey(t *testing.T) {
	true1 := &Boolean{Value: true}
	true2 := &Boolean{Value: true}
	false1 := &Boolean{Value: false}
	false2 := &Boolean{Value: false}

	if true1.HashKey() != true2.HashKey() {
		t.Errorf("trues do not have same hash key")
	}

	if false1.HashKey() != false2.HashKey() {
		t.Errorf("falses do not have same hash key")
	}

	if true1.HashKey() == false1.HashKey() {
		t.Errorf("true has same hash key as false")
	}
}

func TestIntegerHashKey(t *testing.T) {
	one1 := &Integer{Value: 1}
	one2 := &Integer{Value: 1}
	two1 := &Integer{Value: 2}

	if one1.HashKey() != one2.HashKey() {
		t.Errorf("integers with same content have different hash keys")
	}

	if one1.HashKey() == two1.HashKey() {
		t.Errorf("integers with different content have same hash keys")
	}
}

func TestNumericHashKeysAreKindTagged(t *testing.T) {
	i := &Integer{Value: 1}
	f := &Float{Value: 1}
	d := &Double{Value: 1}

	if i.HashKey() == f.HashKey() || f.HashKey() == d.HashKey() || i.HashKey() == d.HashKey() {
		t.Errorf("numbers of different kinds share a hash key")
	}
}

func TestNegativeZeroHashKey(t *testing.T) {
	negZero := math.Copysign(0, -1)

	if (&Double{Value: negZero}).HashKey() != (&Double{Value: 0}).HashKey() {
		t.Errorf("-0.0d and 0.0d have different hash keys")
	}
	if (&Float{Value: float32(negZero)}).HashKey() != (&Float{Value: 0}).HashKey() {
		t.Errorf("-0.0f and 0.0f have different hash keys")
	}
}

func TestInspect(t *testing.T) {
	hash := NewHash()
	hash.Put(&String{Value: "b"}, &Integer{Value: 2})
	hash.Put(&String{Value: "a"}, &Array{Elements: []Object{&String{Value: "x"}, NULL}})

	tests := []struct {
		obj      Object
		expected string
	}{
		{&Integer{Value: -12}, "-12"},
		{&Float{Value: 35}, "35.0"},
		{&Float{Value: 1.5}, "1.5"},
		{&Double{Value: 11.6}, "11.6"},
		{&Double{Value: 2}, "2.0"},
		{TRUE, "true"},
		{NULL, "null"},
		{&String{Value: "plain"}, "plain"},
		{&Error{Message: "Identifier not found: x"}, "Identifier not found: x"},
		{&ReturnValue{Value: &Integer{Value: 3}}, "3"},
		{hash, `{"b": 2, "a": ["x", null]}`},
	}

	for _, tt := range tests {
		if got := tt.obj.Inspect(); got != tt.expected {
			t.Errorf("%T.Inspect() wrong. expected=%q, got=%q", tt.obj, tt.expected, got)
		}
	}
}

func TestHashPutKeepsInsertionOrder(t *testing.T) {
	hash := NewHash()
	hash.Put(&Integer{Value: 3}, TRUE)
	hash.Put(&String{Value: "k"}, FALSE)
	hash.Put(&Integer{Value: 3}, NULL)

	if hash.Len() != 2 {
		t.Fatalf("expected 2 pairs, got %d", hash.Len())
	}

	ordered := hash.Ordered()
	if ordered[0].Key.Inspect() != "3" || ordered[0].Value != NULL {
		t.Errorf("replaced key lost its position or value: %+v", ordered[0])
	}

	val, ok := hash.Get(&String{Value: "k"})
	if !ok || val != FALSE {
		t.Errorf("expected FALSE for key k, got %v (found=%t)", val, ok)
	}
	if _, ok := hash.Get(&String{Value: "missing"}); ok {
		t.Errorf("found a key that was never added")
	}
}
