package foreign

import (
	"aqua/internal/object"
	"strings"
	"testing"
)

func str(s string) *object.String { return &object.String{Value: s} }

func openMemory(t *testing.T) (*SQL, object.Object) {
	t.Helper()
	s := NewSQL()
	handle := s.open(str("sqlite3"), str(":memory:"))
	if errObj, ok := handle.(*object.Error); ok {
		t.Skipf("sqlite3 unavailable: %s", errObj.Message)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	})
	return s, handle
}

func mustNotError(t *testing.T, obj object.Object) object.Object {
	t.Helper()
	if errObj, ok := obj.(*object.Error); ok {
		t.Fatalf("unexpected error: %s", errObj.Message)
	}
	return obj
}

func TestExecAndQuery(t *testing.T) {
	s, handle := openMemory(t)

	mustNotError(t, s.exec(handle, str("CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT, score REAL, active BOOLEAN, note TEXT)")))

	res := mustNotError(t, s.exec(handle,
		str("INSERT INTO people (name, score, active, note) VALUES (?, ?, ?, ?)"),
		str("ada"), &object.Double{Value: 9.5}, object.TRUE, object.NULL))
	hash := res.(*object.Hash)
	affected, _ := hash.Get(str("rowsAffected"))
	if affected.(*object.Integer).Value != 1 {
		t.Errorf("rowsAffected wrong. got=%s", affected.Inspect())
	}
	lastID, _ := hash.Get(str("lastInsertId"))
	if lastID.(*object.Integer).Value != 1 {
		t.Errorf("lastInsertId wrong. got=%s", lastID.Inspect())
	}

	rows := mustNotError(t, s.query(handle, str("SELECT id, name, score, note FROM people WHERE name = ?"), str("ada")))
	arr, ok := rows.(*object.Array)
	if !ok || len(arr.Elements) != 1 {
		t.Fatalf("expected one row, got %s", rows.Inspect())
	}

	expected := `{"id": 1, "name": "ada", "score": 9.5, "note": null}`
	if got := arr.Elements[0].Inspect(); got != expected {
		t.Errorf("row wrong.\nexpected=%s\ngot=%s", expected, got)
	}
}

func TestTransactions(t *testing.T) {
	s, handle := openMemory(t)
	mustNotError(t, s.exec(handle, str("CREATE TABLE t (v INTEGER)")))

	count := func() string {
		t.Helper()
		return mustNotError(t, s.query(handle, str("SELECT COUNT(*) AS n FROM t"))).Inspect()
	}
	expectNull := func(name string, obj object.Object) {
		t.Helper()
		if mustNotError(t, obj) != object.NULL {
			t.Errorf("%s should return NULL, got %s %s", name, obj.Type(), obj.Inspect())
		}
	}

	expectNull("sqlBegin", s.begin(handle))
	mustNotError(t, s.exec(handle, str("INSERT INTO t (v) VALUES (?)"), &object.Integer{Value: 1}))
	expectNull("sqlRollback", s.rollback(handle))
	if got := count(); got != `[{"n": 0}]` {
		t.Errorf("rollback should discard the insert, got %s", got)
	}

	expectNull("sqlBegin", s.begin(handle))
	mustNotError(t, s.exec(handle, str("INSERT INTO t (v) VALUES (?)"), &object.Integer{Value: 2}))

	double := s.begin(handle)
	errObj, ok := double.(*object.Error)
	if !ok || errObj.Message != "transaction already open on handle 1" {
		t.Errorf("second sqlBegin should fail, got %s", double.Inspect())
	}

	expectNull("sqlCommit", s.commit(handle))
	rows := mustNotError(t, s.query(handle, str("SELECT v FROM t")))
	if got := rows.Inspect(); got != `[{"v": 2}]` {
		t.Errorf("expected only the committed row, got %s", got)
	}

	again := s.commit(handle)
	errObj, ok = again.(*object.Error)
	if !ok || errObj.Message != "no transaction open on handle 1" {
		t.Errorf("sqlCommit without a transaction should fail, got %s", again.Inspect())
	}
}

func TestSQLErrors(t *testing.T) {
	s := NewSQL()

	tests := []struct {
		result   object.Object
		contains string
	}{
		{s.open(str("oracle"), str("x")), `unsupported driver "oracle"`},
		{s.open(str("mysql"), str("not a dsn")), "invalid mysql DSN"},
		{s.open(str("sqlite3")), "wrong number of arguments. got=1, want=2"},
		{s.open(&object.Integer{Value: 1}, str("x")), "argument to `sqlOpen` must be STRING, got INTEGER"},
		{s.exec(&object.Integer{Value: 42}, str("SELECT 1")), "invalid connection handle: 42"},
		{s.query(&object.Integer{Value: 1}), "wrong number of arguments. got=1, want=2+"},
		{s.close(&object.Integer{Value: 7}), "invalid connection handle: 7"},
		{s.commit(&object.Integer{Value: 7}), "no transaction open on handle 7"},
	}

	for _, tt := range tests {
		errObj, ok := tt.result.(*object.Error)
		if !ok {
			t.Errorf("expected error containing %q, got %T (%s)", tt.contains, tt.result, tt.result.Inspect())
			continue
		}
		if !strings.Contains(errObj.Message, tt.contains) {
			t.Errorf("expected error containing %q, got %q", tt.contains, errObj.Message)
		}
	}
}

func TestUnsupportedParam(t *testing.T) {
	s, handle := openMemory(t)
	result := s.exec(handle, str("SELECT ?"), &object.Array{})
	errObj, ok := result.(*object.Error)
	if !ok || !strings.Contains(errObj.Message, "unsupported parameter type ARRAY") {
		t.Errorf("expected unsupported parameter error, got %s", result.Inspect())
	}
}

func TestBuiltinsNames(t *testing.T) {
	names := map[string]bool{}
	for _, b := range NewSQL().Builtins() {
		names[b.Name] = true
	}
	for _, want := range []string{"sqlOpen", "sqlExec", "sqlQuery", "sqlClose"} {
		if !names[want] {
			t.Errorf("missing builtin %s", want)
		}
	}
}
