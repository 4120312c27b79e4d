package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/invoice-cli/internal/changes"
)

// Kind is the statement flavour produced by the compiler.
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindUpsert Kind = "upsert"
	KindDelete Kind = "delete"
)

// CachedStatement is compiled SQL text and its ordered parameters.
type CachedStatement struct {
	Table  changes.Table
	Kind   Kind
	SQL    string
	Params []any
}

var errNoColumns = errors.New("no columns to write")

func checkTable(t changes.Table) error {
	if !t.Valid() {
		return fmt.Errorf("table %q: %w", t, ErrValidation)
	}
	return nil
}

// CompileInsert builds INSERT INTO t (cols) VALUES (?, ...).
func CompileInsert(d changes.Descriptor) (CachedStatement, error) {
	st, _, err := compileInsert(d)
	return st, err
}

// compileInsert also returns the column names, in parameter order.
func compileInsert(d changes.Descriptor) (CachedStatement, []string, error) {
	t := d.Table()
	if err := checkTable(t); err != nil {
		return CachedStatement{}, nil, err
	}
	cols, err := d.Columns()
	if err != nil {
		return CachedStatement{}, nil, err
	}
	if len(cols) == 0 {
		return CachedStatement{}, nil, &OpError{Op: "compile insert", Table: t, Kind: ErrValidation, Err: errNoColumns}
	}
	fields := make([]string, len(cols))
	values := make([]any, len(cols))
	for i, c := range cols {
		fields[i] = c.Name
		values[i] = c.Value
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(fields)), ", ")
	return CachedStatement{
		Table:  t,
		Kind:   KindInsert,
		SQL:    fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t, strings.Join(fields, ", "), placeholders),
		Params: values,
	}, fields, nil
}

// CompileUpdate builds UPDATE t SET c = ?, ... WHERE id = ?. The id from
// Fields()[0] is bound as the last parameter.
func CompileUpdate(d changes.Update) (CachedStatement, error) {
	t := d.Table()
	if err := checkTable(t); err != nil {
		return CachedStatement{}, err
	}
	fields, err := changes.Fields(d)
	if err != nil {
		return CachedStatement{}, err
	}
	values, err := changes.Values(d)
	if err != nil {
		return CachedStatement{}, err
	}
	cols := fields[1:]
	if len(cols) == 0 {
		return CachedStatement{}, &OpError{Op: "compile update", Table: t, ID: d.RowID(), Kind: ErrValidation, Err: errNoColumns}
	}
	if len(cols) != len(values) {
		return CachedStatement{}, fmt.Errorf("compile update %s: %d fields, %d values", t, len(cols), len(values))
	}
	set := make([]string, len(cols))
	for i, c := range cols {
		set[i] = c + " = ?"
	}
	params := make([]any, 0, len(values)+1)
	params = append(params, values...)
	params = append(params, d.RowID())
	return CachedStatement{
		Table:  t,
		Kind:   KindUpdate,
		SQL:    fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t, strings.Join(set, ", ")),
		Params: params,
	}, nil
}

// CompileUpsert builds an insert that replaces the columns of an existing
// row with the same id.
func CompileUpsert(d changes.Descriptor) (CachedStatement, error) {
	st, fields, err := compileInsert(d)
	if err != nil {
		return st, err
	}
	var set []string
	for _, f := range fields {
		if f == "id" {
			continue
		}
		set = append(set, fmt.Sprintf("%s = excluded.%s", f, f))
	}
	st.Kind = KindUpsert
	st.SQL += " ON CONFLICT (id) DO UPDATE SET " + strings.Join(set, ", ")
	return st, nil
}

// CompileDelete builds DELETE FROM t WHERE id = ?.
func CompileDelete(d changes.Delete) (CachedStatement, error) {
	if err := checkTable(d.Table); err != nil {
		return CachedStatement{}, err
	}
	return CachedStatement{
		Table:  d.Table,
		Kind:   KindDelete,
		SQL:    fmt.Sprintf("DELETE FROM %s WHERE id = ?", d.Table),
		Params: []any{d.ID},
	}, nil
}
