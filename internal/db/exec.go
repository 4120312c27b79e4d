package db

import (
	"context"
	"fmt"

	"github.com/diewo77/invoice-cli/internal/changes"
	"gorm.io/gorm"
)

// Execute runs st on the connection. Inserts return the new row id; other
// kinds return the number of rows affected. An update or delete that
// touches no row is ErrNotFound.
func (d *DB) Execute(ctx context.Context, st CachedStatement) (int64, error) {
	return execute(d.gorm.WithContext(ctx), st)
}

func execute(g *gorm.DB, st CachedStatement) (int64, error) {
	switch st.Kind {
	case KindInsert:
		var id int64
		err := onConnection(g, func(conn *gorm.DB) error {
			if err := conn.Exec(st.SQL, st.Params...).Error; err != nil {
				return err
			}
			return conn.Raw("SELECT last_insert_rowid()").Scan(&id).Error
		})
		if err != nil {
			return 0, wrap("insert", st.Table, 0, err)
		}
		return id, nil
	case KindUpdate, KindDelete, KindUpsert:
		res := g.Exec(st.SQL, st.Params...)
		id := rowID(st)
		if res.Error != nil {
			return 0, wrap(string(st.Kind), st.Table, id, res.Error)
		}
		if res.RowsAffected == 0 && st.Kind != KindUpsert {
			return 0, &OpError{Op: string(st.Kind), Table: st.Table, ID: id, Kind: ErrNotFound, Err: fmt.Errorf("no row with id %d", id)}
		}
		return res.RowsAffected, nil
	}
	return 0, fmt.Errorf("execute: unknown statement kind %q", st.Kind)
}

// onConnection pins fc to one connection so last_insert_rowid belongs to
// the preceding insert. A transaction is already pinned.
func onConnection(g *gorm.DB, fc func(*gorm.DB) error) error {
	if _, ok := g.Statement.ConnPool.(gorm.TxCommitter); ok {
		return fc(g)
	}
	return g.Connection(fc)
}

// rowID is the bound id of an update or delete, which is always last.
func rowID(st CachedStatement) int64 {
	if len(st.Params) == 0 || st.Kind == KindUpsert {
		return 0
	}
	id, _ := st.Params[len(st.Params)-1].(int64)
	return id
}

// Insert compiles and runs d, returning the new row id.
func (d *DB) Insert(ctx context.Context, desc changes.Descriptor) (int64, error) {
	return insert(d.gorm.WithContext(ctx), desc)
}

func insert(g *gorm.DB, desc changes.Descriptor) (int64, error) {
	st, err := CompileInsert(desc)
	if err != nil {
		return 0, err
	}
	return execute(g, st)
}

// Update compiles and runs u.
func (d *DB) Update(ctx context.Context, u changes.Update) error {
	st, err := CompileUpdate(u)
	if err != nil {
		return err
	}
	_, err = d.Execute(ctx, st)
	return err
}

// Delete removes one row. Rows still referenced by a foreign key
// cannot be deleted and yield ErrConstraint.
func (d *DB) Delete(ctx context.Context, del changes.Delete) error {
	st, err := CompileDelete(del)
	if err != nil {
		return err
	}
	_, err = d.Execute(ctx, st)
	return err
}
