// Package changes describes entity-change requests as ordered column/value
// pairs. The db package compiles them into write statements.
package changes

import (
	"fmt"
	"strconv"

	"github.com/diewo77/invoice-cli/internal/models"
)

// Table is one of the persisted tables. Only values of this closed set are
// ever placed in SQL text.
type Table string

const (
	Company     Table = "company"
	Client      Table = "client"
	Terms       Table = "terms"
	Methods     Table = "methods"
	Items       Table = "items"
	Templates   Table = "templates"
	Invoices    Table = "invoices"
	EmailConfig Table = "email_config"
)

// Valid reports whether t belongs to the closed table set.
func (t Table) Valid() bool {
	switch t {
	case Company, Client, Terms, Methods, Items, Templates, Invoices, EmailConfig:
		return true
	}
	return false
}

// Label is the column used as the selection-list label.
func (t Table) Label() string {
	if t == Invoices {
		return "date"
	}
	return "name"
}

// ParseTable validates a caller-supplied table name.
func ParseTable(s string) (Table, error) {
	t := Table(s)
	if !t.Valid() || t == EmailConfig {
		return "", fmt.Errorf("unknown table %q: %w", s, models.ErrValidation)
	}
	return t, nil
}

// Column is one column touched by a change together with its value.
type Column struct {
	Name  string
	Value any
}

// Descriptor is an entity-change request. Columns returns only the columns
// the caller supplied plus any always-required ones.
type Descriptor interface {
	Table() Table
	Columns() ([]Column, error)
}

// Update is a descriptor targeting an existing row.
type Update interface {
	Descriptor
	RowID() int64
}

// Fields returns the column names of d. For an Update the first entry is the
// row id, which has no counterpart in Values.
func Fields(d Descriptor) ([]string, error) {
	cols, err := d.Columns()
	if err != nil {
		return nil, err
	}
	var fields []string
	if u, ok := d.(Update); ok {
		fields = make([]string, 0, len(cols)+1)
		fields = append(fields, strconv.FormatInt(u.RowID(), 10))
	} else {
		fields = make([]string, 0, len(cols))
	}
	for _, c := range cols {
		fields = append(fields, c.Name)
	}
	return fields, nil
}

// Values returns the values of d aligned with its column names.
func Values(d Descriptor) ([]any, error) {
	cols, err := d.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	for i, c := range cols {
		values[i] = c.Value
	}
	return values, nil
}

// Delete removes one row by id.
type Delete struct {
	Table Table
	ID    int64
}

type columns []Column

func (c *columns) add(name string, v any) { *c = append(*c, Column{Name: name, Value: v}) }

func (c *columns) str(name string, v *string) {
	if v != nil {
		c.add(name, *v)
	}
}

func (c *columns) blob(name string, v []byte) {
	if v != nil {
		c.add(name, v)
	}
}

func (c *columns) contact(ct models.Contact) {
	fields := []*string{ct.Phone, ct.Email, ct.Addr1, ct.Addr2, ct.City, ct.State, ct.Zip}
	for i, f := range fields {
		c.str(models.ContactColumns[i], f)
	}
}
