package db

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/invoice-cli/internal/changes"
	"github.com/diewo77/invoice-cli/internal/models"
)

func TestGetInvoice_DuplicateItemsLastWins(t *testing.T) {
	d := openTemp(t)
	f := seed(t, d)
	ctx := context.Background()

	id, err := d.Insert(ctx, changes.CreateInvoice{
		Template: f.template,
		Date:     "20240301",
		Items:    []models.ItemRef{{Item: f.widget, Quantity: 2}, {Item: f.widget, Quantity: 5}},
	})
	if err != nil {
		t.Fatal(err)
	}
	inv, err := d.GetInvoice(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(inv.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(inv.Items))
	}
	if q := inv.Items[f.widget].Quantity; q != 5 {
		t.Errorf("quantity = %d, want 5 (last wins)", q)
	}
}

func TestGet_NotFound(t *testing.T) {
	d := openTemp(t)
	ctx := context.Background()

	tests := []struct {
		name string
		get  func() error
	}{
		{"company", func() error { _, err := d.GetCompany(ctx, 1); return err }},
		{"client", func() error { _, err := d.GetClient(ctx, 1); return err }},
		{"terms", func() error { _, err := d.GetTerms(ctx, 1); return err }},
		{"method", func() error { _, err := d.GetMethod(ctx, 1); return err }},
		{"item", func() error { _, err := d.GetItem(ctx, 1); return err }},
		{"template", func() error { _, err := d.GetTemplate(ctx, 1); return err }},
		{"invoice", func() error { _, err := d.GetInvoice(ctx, 1); return err }},
		{"email config", func() error { _, err := d.GetEmailConfig(ctx); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.get()
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
			if errors.Is(err, ErrCorrupt) {
				t.Errorf("err = %v, must not be ErrCorrupt", err)
			}
		})
	}
}

func TestGetInvoice_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"unknown status", "UPDATE invoices SET status = 'Lost' WHERE id = ?"},
		{"paid without date", "UPDATE invoices SET status = 'Paid', status_date = NULL WHERE id = ?"},
		{"bad status date", "UPDATE invoices SET status = 'Failed', status_date = '01/02/2024' WHERE id = ?"},
		{"unknown stage", "UPDATE invoices SET stage = 'Draft' WHERE id = ?"},
		{"malformed items", "UPDATE invoices SET items_json = '[{\"item\":' WHERE id = ?"},
		{"malformed date", "UPDATE invoices SET date = '2024-01-15' WHERE id = ?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := openTemp(t)
			f := seed(t, d)
			ctx := context.Background()
			if err := d.Gorm(ctx).Exec(tt.sql, f.invoice).Error; err != nil {
				t.Fatal(err)
			}
			_, err := d.GetInvoice(ctx, f.invoice)
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("err = %v, want ErrCorrupt", err)
			}
			if errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, must not be ErrNotFound", err)
			}
		})
	}
}

func TestGetTemplate_DanglingMethod(t *testing.T) {
	d := openTemp(t)
	f := seed(t, d)
	ctx := context.Background()

	if err := d.Update(ctx, changes.EditTemplate{ID: f.template, Methods: []int64{f.cash, 404}}); err != nil {
		t.Fatal(err)
	}
	_, err := d.GetTemplate(ctx, f.template)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var op *OpError
	if !errors.As(err, &op) || op.Table != changes.Methods || op.ID != 404 {
		t.Errorf("OpError = %+v, want methods 404", op)
	}

	// The invoice built on the template surfaces the same error.
	if _, err := d.GetInvoice(ctx, f.invoice); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetInvoice() err = %v, want ErrNotFound", err)
	}
}

func TestGetInvoice_DanglingItem(t *testing.T) {
	d := openTemp(t)
	f := seed(t, d)
	ctx := context.Background()

	if err := d.Update(ctx, changes.EditInvoice{ID: f.invoice, Items: []models.ItemRef{{Item: 77, Quantity: 1}}}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.GetInvoice(ctx, f.invoice); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetTemplate_CorruptMethods(t *testing.T) {
	d := openTemp(t)
	f := seed(t, d)
	ctx := context.Background()

	if err := d.Gorm(ctx).Exec("UPDATE templates SET methods_json = 'oops' WHERE id = ?", f.template).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := d.GetTemplate(ctx, f.template); !errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
}
