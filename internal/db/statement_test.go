package db

import (
	"errors"
	"reflect"
	"testing"

	"github.com/diewo77/invoice-cli/internal/changes"
	"github.com/diewo77/invoice-cli/internal/models"
)

func TestCompileInsert(t *testing.T) {
	st, err := CompileInsert(changes.CreateClient{Name: "Globex", Contact: models.Contact{City: strp("Paris")}})
	if err != nil {
		t.Fatal(err)
	}
	if want := "INSERT INTO client (name, city) VALUES (?, ?)"; st.SQL != want {
		t.Errorf("SQL = %q, want %q", st.SQL, want)
	}
	if want := []any{"Globex", "Paris"}; !reflect.DeepEqual(st.Params, want) {
		t.Errorf("Params = %v, want %v", st.Params, want)
	}
	if st.Kind != KindInsert || st.Table != changes.Client {
		t.Errorf("Kind/Table = %s/%s", st.Kind, st.Table)
	}
}

type emptyInsert struct{}

func (emptyInsert) Table() changes.Table               { return changes.Terms }
func (emptyInsert) Columns() ([]changes.Column, error) { return nil, nil }

type rogueTable struct{ emptyInsert }

func (rogueTable) Table() changes.Table { return "terms; DROP TABLE terms" }

var errColumns = errors.New("columns failed")

// countingUpsert fails its second Columns call.
type countingUpsert struct{ calls *int }

func (countingUpsert) Table() changes.Table { return changes.EmailConfig }
func (c countingUpsert) Columns() ([]changes.Column, error) {
	*c.calls++
	if *c.calls > 1 {
		return nil, errColumns
	}
	return []changes.Column{{Name: "id", Value: 1}, {Name: "port", Value: 587}}, nil
}

func TestCompileInsert_Errors(t *testing.T) {
	if _, err := CompileInsert(emptyInsert{}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty insert err = %v, want ErrValidation", err)
	}
	if _, err := CompileInsert(rogueTable{}); !errors.Is(err, ErrValidation) {
		t.Errorf("rogue table err = %v, want ErrValidation", err)
	}
}

func TestCompileUpdate_BindsID(t *testing.T) {
	st, err := CompileUpdate(changes.EditTerms{ID: 42, Name: strp("Net 15")})
	if err != nil {
		t.Fatal(err)
	}
	if want := "UPDATE terms SET name = ? WHERE id = ?"; st.SQL != want {
		t.Errorf("SQL = %q, want %q", st.SQL, want)
	}
	if want := []any{"Net 15", int64(42)}; !reflect.DeepEqual(st.Params, want) {
		t.Errorf("Params = %v, want %v", st.Params, want)
	}
	values, _ := changes.Values(changes.EditTerms{ID: 42, Name: strp("Net 15")})
	for _, v := range values {
		if v == int64(42) {
			t.Error("row id leaked into descriptor values")
		}
	}
}

func TestCompileUpdate_NoColumns(t *testing.T) {
	if _, err := CompileUpdate(changes.EditTerms{ID: 1}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestCompileDelete(t *testing.T) {
	st, err := CompileDelete(changes.Delete{Table: changes.Items, ID: 3})
	if err != nil {
		t.Fatal(err)
	}
	if st.SQL != "DELETE FROM items WHERE id = ?" || !reflect.DeepEqual(st.Params, []any{int64(3)}) {
		t.Errorf("CompileDelete() = %+v", st)
	}
}

func TestCompileUpsert(t *testing.T) {
	st, err := CompileUpsert(changes.EmailSettings{Config: models.DefaultEmailConfig()})
	if err != nil {
		t.Fatal(err)
	}
	want := "INSERT INTO email_config (id, smtp_server, port, tls, username, password, fromname) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO UPDATE SET smtp_server = excluded.smtp_server, " +
		"port = excluded.port, tls = excluded.tls, username = excluded.username, " +
		"password = excluded.password, fromname = excluded.fromname"
	if st.SQL != want {
		t.Errorf("SQL = %q\nwant  %q", st.SQL, want)
	}
}

func TestCompileUpsert_ColumnsOnce(t *testing.T) {
	var calls int
	st, err := CompileUpsert(countingUpsert{calls: &calls})
	if err != nil {
		t.Fatalf("CompileUpsert() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("Columns() calls = %d, want 1", calls)
	}
	want := "INSERT INTO email_config (id, port) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET port = excluded.port"
	if st.SQL != want {
		t.Errorf("SQL = %q, want %q", st.SQL, want)
	}

	calls = 1
	if _, err := CompileUpsert(countingUpsert{calls: &calls}); !errors.Is(err, errColumns) {
		t.Errorf("CompileUpsert() err = %v, want %v", err, errColumns)
	}
}
