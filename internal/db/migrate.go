package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// migration is one forward-only schema step. up must be idempotent.
type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

var migrations = []migration{
	{1, "invoice attributes", addInvoiceAttributes},
	{2, "email config", addEmailConfig},
	{3, "method link and qr", addMethodLink},
}

// ledgerVersion reads the applied version. A missing ledger table or row
// means the oldest supported layout.
func ledgerVersion(g *gorm.DB) (int, error) {
	if !g.Migrator().HasTable("migrations") {
		return 0, nil
	}
	var versions []int
	err := g.Raw("SELECT version FROM migrations ORDER BY version DESC LIMIT 1").Scan(&versions).Error
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, nil
	}
	return versions[0], nil
}

// setLedger stores version as the single ledger row.
func setLedger(tx *gorm.DB, version int) error {
	if err := tx.Exec(createLedger).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM migrations").Error; err != nil {
		return err
	}
	return tx.Exec("INSERT INTO migrations (version) VALUES (?)", version).Error
}

// migrate runs every step newer than the ledger and the ledger update in a
// single transaction. On failure nothing is applied.
func (d *DB) migrate(ctx context.Context, steps []migration) error {
	g := d.gorm.WithContext(ctx)
	from, err := ledgerVersion(g)
	if err != nil {
		return wrap("read ledger", "", 0, err)
	}
	if len(steps) == 0 {
		return errors.New("no migrations registered")
	}
	target := steps[len(steps)-1].version
	d.migration = Migration{From: from, To: from}
	if from >= target {
		log.Printf("database current (version %d)", from)
		return nil
	}

	applied := 0
	err = g.Transaction(func(tx *gorm.DB) error {
		for _, s := range steps {
			if s.version <= from {
				continue
			}
			if err := s.up(tx); err != nil {
				return fmt.Errorf("migration %d (%s): %w", s.version, s.name, err)
			}
			applied++
		}
		return setLedger(tx, target)
	})
	if err != nil {
		return wrap("migrate", "", 0, fmt.Errorf("from version %d: %w", from, err))
	}
	d.migration = Migration{From: from, To: target, Applied: applied}
	log.Printf("migrated from %d to %d", from, target)
	return nil
}

// addInvoiceAttributes rebuilds invoices with the display and status
// columns. Existing rows get methods shown, notes hidden, stage Invoice and
// status Waiting.
func addInvoiceAttributes(tx *gorm.DB) error {
	if tx.Migrator().HasColumn("invoices", "stage") {
		return nil
	}
	stmts := []string{
		`CREATE TABLE invoice_backup AS SELECT id, template_id, date, items_json FROM invoices`,
		`DROP TABLE invoices`,
		createInvoices,
		`INSERT INTO invoices (id, template_id, date, show_methods, show_notes, stage, status,
			status_date, status_check, notes, items_json)
		SELECT id, template_id, date, 1, 0, 'Invoice', 'Waiting', NULL, NULL, NULL, items_json
		FROM invoice_backup`,
		`DROP TABLE invoice_backup`,
	}
	for _, s := range stmts {
		if err := tx.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}

func addEmailConfig(tx *gorm.DB) error {
	return tx.Exec(createEmailConfig).Error
}

func addMethodLink(tx *gorm.DB) error {
	for _, col := range []struct{ name, ddl string }{
		{"link", "ALTER TABLE methods ADD COLUMN link TEXT"},
		{"qr", "ALTER TABLE methods ADD COLUMN qr BLOB"},
	} {
		if tx.Migrator().HasColumn("methods", col.name) {
			continue
		}
		if err := tx.Exec(col.ddl).Error; err != nil {
			return err
		}
	}
	return nil
}
