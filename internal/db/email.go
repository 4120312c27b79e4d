package db

import (
	"context"

	"github.com/diewo77/invoice-cli/internal/changes"
	"github.com/diewo77/invoice-cli/internal/models"
)

// emailConfigID is the fixed id of the singleton row.
const emailConfigID = 0

type emailConfigRow struct {
	ID         int64
	SMTPServer string `gorm:"column:smtp_server"`
	Port       int
	TLS        bool `gorm:"column:tls"`
	Username   string
	Password   string
	FromName   string `gorm:"column:fromname"`
}

// GetEmailConfig returns the saved SMTP settings, or ErrNotFound when none
// were saved yet.
func (d *DB) GetEmailConfig(ctx context.Context) (models.EmailConfig, error) {
	var row emailConfigRow
	if err := take(d.gorm.WithContext(ctx), changes.EmailConfig, emailConfigID, &row); err != nil {
		return models.EmailConfig{}, err
	}
	return models.EmailConfig{
		SMTPServer: row.SMTPServer,
		Port:       row.Port,
		TLS:        row.TLS,
		Username:   row.Username,
		Password:   row.Password,
		FromName:   row.FromName,
	}, nil
}

// SaveEmailConfig inserts or replaces the singleton settings row.
func (d *DB) SaveEmailConfig(ctx context.Context, cfg models.EmailConfig) error {
	st, err := CompileUpsert(changes.EmailSettings{Config: cfg})
	if err != nil {
		return err
	}
	_, err = d.Execute(ctx, st)
	return err
}
