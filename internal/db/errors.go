package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/invoice-cli/internal/changes"
	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Error kinds, re-exported so callers of this package need not import models.
var (
	ErrNotFound   = models.ErrNotFound
	ErrConstraint = models.ErrConstraint
	ErrCorrupt    = models.ErrCorrupt
	ErrValidation = models.ErrValidation
	ErrIO         = models.ErrIO
)

// OpError records the operation, table and row a failure belongs to.
// errors.Is matches both its Kind and the underlying cause.
type OpError struct {
	Op    string
	Table changes.Table
	ID    int64
	Kind  error
	Err   error
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Table != "" {
		b.WriteString(" ")
		b.WriteString(string(e.Table))
	}
	if e.ID != 0 {
		fmt.Fprintf(&b, " %d", e.ID)
	}
	if e.Kind != nil && !errors.Is(e.Err, e.Kind) {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *OpError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// wrap attaches operation context to err and classifies engine errors.
func wrap(op string, table changes.Table, id int64, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Table: table, ID: id, Kind: classify(err), Err: err}
}

// classify maps gorm and sqlite errors onto the shared kinds. It returns nil
// when err carries no recognizable kind.
func classify(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ErrConstraint
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrConstraint:
			return ErrConstraint
		case sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
			return ErrCorrupt
		case sqlite3.ErrIoErr, sqlite3.ErrCantOpen, sqlite3.ErrFull, sqlite3.ErrReadonly, sqlite3.ErrPerm:
			return ErrIO
		}
	}
	return nil
}

func corrupt(table changes.Table, id int64, err error) error {
	return &OpError{Op: "decode", Table: table, ID: id, Kind: ErrCorrupt, Err: err}
}
