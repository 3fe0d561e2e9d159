package foreign

import (
	"aqua/internal/object"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQL exposes database/sql to scripts through integer handles.
type SQL struct {
	nextID       int64
	connections  map[int64]*sql.DB
	transactions map[int64]*sql.Tx
}

func NewSQL() *SQL {
	return &SQL{
		connections:  map[int64]*sql.DB{},
		transactions: map[int64]*sql.Tx{},
	}
}

func (s *SQL) Builtins() []*object.Builtin {
	return []*object.Builtin{
		{Name: "sqlOpen", Fn: s.open},
		{Name: "sqlExec", Fn: s.exec},
		{Name: "sqlQuery", Fn: s.query},
		{Name: "sqlClose", Fn: s.close},
		{Name: "sqlBegin", Fn: s.begin},
		{Name: "sqlCommit", Fn: s.commit},
		{Name: "sqlRollback", Fn: s.rollback},
	}
}

// Close rolls back open transactions and closes every connection.
func (s *SQL) Close() error {
	var errs []error
	for id, tx := range s.transactions {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("rollback handle %d: %w", id, err))
		}
		delete(s.transactions, id)
	}
	for id, db := range s.connections {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close handle %d: %w", id, err))
		}
		delete(s.connections, id)
	}
	return errors.Join(errs...)
}

func validateDSN(driver, dsn string) error {
	switch driver {
	case "sqlite3", "postgres":
		return nil
	case "mysql":
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return fmt.Errorf("invalid mysql DSN: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}
}

func (s *SQL) open(args ...object.Object) object.Object {
	if err := checkArgs(args, 2, false); err != nil {
		return err
	}
	driver, errObj := unpackString("sqlOpen", args, 0)
	if errObj != nil {
		return errObj
	}
	dsn, errObj := unpackString("sqlOpen", args, 1)
	if errObj != nil {
		return errObj
	}

	if err := validateDSN(driver, dsn); err != nil {
		return newError("failed to open connection: %v", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return newError("failed to open connection: %v", err)
	}
	if driver == "sqlite3" {
		// each pooled sqlite connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return newError("failed to ping database: %v", err)
	}

	s.nextID++
	s.connections[s.nextID] = db
	return &object.Integer{Value: s.nextID}
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
}

// target returns the open transaction for a handle, or its connection.
func (s *SQL) target(name string, args []object.Object) (execer, *object.Error) {
	id, errObj := unpackInteger(name, args, 0)
	if errObj != nil {
		return nil, errObj
	}
	if tx, ok := s.transactions[id]; ok {
		return tx, nil
	}
	if db, ok := s.connections[id]; ok {
		return db, nil
	}
	return nil, newError("invalid connection handle: %d", id)
}

func (s *SQL) statement(name string, args []object.Object) (execer, string, []any, *object.Error) {
	if err := checkArgs(args, 2, true); err != nil {
		return nil, "", nil, err
	}
	conn, errObj := s.target(name, args)
	if errObj != nil {
		return nil, "", nil, errObj
	}
	query, errObj := unpackString(name, args, 1)
	if errObj != nil {
		return nil, "", nil, errObj
	}

	params := make([]any, 0, len(args)-2)
	for _, arg := range args[2:] {
		param, err := toParam(arg)
		if err != nil {
			return nil, "", nil, newError("%s: %v", name, err)
		}
		params = append(params, param)
	}
	return conn, query, params, nil
}

func (s *SQL) exec(args ...object.Object) object.Object {
	conn, query, params, errObj := s.statement("sqlExec", args)
	if errObj != nil {
		return errObj
	}

	result, err := conn.Exec(query, params...)
	if err != nil {
		return newError("exec failed: %v", err)
	}

	// not every driver supports both; report what it does
	affected, _ := result.RowsAffected()
	lastID, _ := result.LastInsertId()

	resHash := object.NewHash()
	resHash.Put(&object.String{Value: "rowsAffected"}, &object.Integer{Value: affected})
	resHash.Put(&object.String{Value: "lastInsertId"}, &object.Integer{Value: lastID})
	return resHash
}

func (s *SQL) query(args ...object.Object) object.Object {
	conn, query, params, errObj := s.statement("sqlQuery", args)
	if errObj != nil {
		return errObj
	}

	rows, err := conn.Query(query, params...)
	if err != nil {
		return newError("query failed: %v", err)
	}
	defer rows.Close()

	result, err := renderRows(rows)
	if err != nil {
		return newError("query failed: %v", err)
	}
	return result
}

func (s *SQL) close(args ...object.Object) object.Object {
	if err := checkArgs(args, 1, false); err != nil {
		return err
	}
	id, errObj := unpackInteger("sqlClose", args, 0)
	if errObj != nil {
		return errObj
	}

	if tx, ok := s.transactions[id]; ok {
		tx.Rollback()
		delete(s.transactions, id)
	}
	db, ok := s.connections[id]
	if !ok {
		return newError("invalid connection handle: %d", id)
	}
	delete(s.connections, id)
	if err := db.Close(); err != nil {
		return newError("failed to close connection: %v", err)
	}
	return object.NULL
}

func (s *SQL) begin(args ...object.Object) object.Object {
	if err := checkArgs(args, 1, false); err != nil {
		return err
	}
	id, errObj := unpackInteger("sqlBegin", args, 0)
	if errObj != nil {
		return errObj
	}

	db, ok := s.connections[id]
	if !ok {
		return newError("invalid connection handle: %d", id)
	}
	if _, open := s.transactions[id]; open {
		return newError("transaction already open on handle %d", id)
	}

	tx, err := db.Begin()
	if err != nil {
		return newError("failed to begin transaction: %v", err)
	}
	s.transactions[id] = tx
	return object.NULL
}

func (s *SQL) finish(name string, args []object.Object, commit bool) object.Object {
	if err := checkArgs(args, 1, false); err != nil {
		return err
	}
	id, errObj := unpackInteger(name, args, 0)
	if errObj != nil {
		return errObj
	}

	tx, ok := s.transactions[id]
	if !ok {
		return newError("no transaction open on handle %d", id)
	}
	delete(s.transactions, id)

	if commit {
		if err := tx.Commit(); err != nil {
			return newError("failed to commit transaction: %v", err)
		}
	} else if err := tx.Rollback(); err != nil {
		return newError("failed to rollback transaction: %v", err)
	}
	return object.NULL
}

func (s *SQL) commit(args ...object.Object) object.Object {
	return s.finish("sqlCommit", args, true)
}

func (s *SQL) rollback(args ...object.Object) object.Object {
	return s.finish("sqlRollback", args, false)
}

func toParam(obj object.Object) (any, error) {
	switch v := obj.(type) {
	case *object.Integer:
		return v.Value, nil
	case *object.Float:
		return float64(v.Value), nil
	case *object.Double:
		return v.Value, nil
	case *object.String:
		return v.Value, nil
	case *object.Boolean:
		return v.Value, nil
	case *object.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", obj.Type())
	}
}

func renderRows(rows *sql.Rows) (object.Object, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	resultRows := []object.Object{}

	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := object.NewHash()
		for i, col := range columns {
			row.Put(&object.String{Value: col}, mapValue(values[i]))
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &object.Array{Elements: resultRows}, nil
}

func mapValue(v any) object.Object {
	if v == nil {
		return object.NULL
	}
	switch x := v.(type) {
	case int64:
		return &object.Integer{Value: x}
	case float64:
		return &object.Double{Value: x}
	case []byte:
		return &object.String{Value: string(x)}
	case string:
		return &object.String{Value: x}
	case bool:
		if x {
			return object.TRUE
		}
		return object.FALSE
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339)}
	default:
		return &object.String{Value: fmt.Sprintf("%v", v)}
	}
}
