// Package db persists the invoicing model in a single SQLite file through
// gorm. It compiles change descriptors into statements, hydrates aggregates
// and keeps the schema at the current version.
package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tunes Open.
type Options struct {
	// Debug logs every SQL statement.
	Debug bool
}

// Migration reports what Open did to the schema.
type Migration struct {
	From    int  // ledger version found on disk, 0 when absent
	To      int  // version after Open
	Applied int  // migration steps run; 0 for a fresh or current file
	Created bool // true when Open built the schema from scratch
}

// DB owns the single connection to the invoice database.
type DB struct {
	gorm      *gorm.DB
	path      string
	migration Migration
}

// Open opens the database at path, creating it at the current schema when
// the file does not exist and migrating it forward otherwise.
func Open(ctx context.Context, path string, opts Options) (*DB, error) {
	return open(ctx, path, opts, migrations)
}

func open(ctx context.Context, path string, opts Options, steps []migration) (*DB, error) {
	fresh := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fresh = true
	} else if err != nil {
		return nil, &OpError{Op: "open", Kind: ErrIO, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &OpError{Op: "open", Kind: ErrIO, Err: fmt.Errorf("create db dir: %w", err)}
	}

	level := logger.Silent
	if opts.Debug {
		level = logger.Info
	}
	gormLogger := logger.New(log.Default(), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	g, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, &OpError{Op: "open", Kind: ErrIO, Err: err}
	}
	sqlDB, err := g.DB()
	if err != nil {
		return nil, &OpError{Op: "open", Kind: ErrIO, Err: err}
	}
	// One connection: the pragma below and last_insert_rowid are
	// per-connection state.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := g.WithContext(ctx).Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		sqlDB.Close()
		return nil, wrap("open", "", 0, err)
	}
	// A file without tables is left behind when a create rolls back.
	if !fresh {
		var tables int64
		err := g.WithContext(ctx).Raw("SELECT count(*) FROM sqlite_master WHERE type = 'table'").Scan(&tables).Error
		if err != nil {
			sqlDB.Close()
			return nil, wrap("open", "", 0, err)
		}
		fresh = tables == 0
	}

	d := &DB{gorm: g, path: path}
	if fresh {
		err = d.create(ctx)
	} else {
		err = d.migrate(ctx, steps)
	}
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// dsn enables foreign keys on every connection the driver opens.
func dsn(path string) string {
	return path + "?_foreign_keys=on"
}

// Close releases the connection.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Path is the database file location.
func (d *DB) Path() string { return d.path }

// Migration reports the schema work performed by Open.
func (d *DB) Migration() Migration { return d.migration }

// Gorm exposes the underlying handle, bound to ctx.
func (d *DB) Gorm(ctx context.Context) *gorm.DB { return d.gorm.WithContext(ctx) }

// create builds every table and the ledger row in one transaction.
func (d *DB) create(ctx context.Context) error {
	err := d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ddl := range schema {
			if err := tx.Exec(ddl).Error; err != nil {
				return err
			}
		}
		return setLedger(tx, targetVersion)
	})
	if err != nil {
		return wrap("create schema", "", 0, err)
	}
	d.migration = Migration{From: 0, To: targetVersion, Created: true}
	log.Printf("database created (version %d)", targetVersion)
	return nil
}
