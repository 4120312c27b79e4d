package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/diewo77/invoice-cli/internal/changes"
	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/internal/money"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type contactRow struct {
	Phone *string
	Email *string
	Addr1 *string
	Addr2 *string
	City  *string
	State *string
	Zip   *string
}

func (c contactRow) contact() models.Contact {
	return models.Contact{Phone: c.Phone, Email: c.Email, Addr1: c.Addr1, Addr2: c.Addr2, City: c.City, State: c.State, Zip: c.Zip}
}

type companyRow struct {
	ID      int64
	Name    string
	Logo    []byte
	Contact contactRow `gorm:"embedded"`
}

type clientRow struct {
	ID      int64
	Name    string
	Contact contactRow `gorm:"embedded"`
}

type termsRow struct {
	ID   int64
	Name string
	Due  int64
}

type methodRow struct {
	ID   int64
	Name string
	Link *string
	QR   []byte `gorm:"column:qr"`
}

type itemRow struct {
	ID   int64
	Name string
	Rate *int64
}

type templateRow struct {
	ID          int64
	Name        string
	CompanyID   int64
	ClientID    int64
	TermsID     int64
	MethodsJSON datatypes.JSON `gorm:"column:methods_json"`
}

type invoiceRow struct {
	ID          int64
	TemplateID  int64
	Date        string
	ShowMethods bool
	ShowNotes   bool
	Stage       string
	Status      string
	StatusDate  *string
	StatusCheck *string
	Notes       *string
	ItemsJSON   datatypes.JSON `gorm:"column:items_json"`
}

// take loads row id of t into dest. A missing row is ErrNotFound.
func take(g *gorm.DB, t changes.Table, id int64, dest any) error {
	return wrap("get", t, id, g.Table(string(t)).Where("id = ?", id).Take(dest).Error)
}

func (d *DB) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	return getCompany(d.gorm.WithContext(ctx), id)
}

func getCompany(g *gorm.DB, id int64) (*models.Company, error) {
	var row companyRow
	if err := take(g, changes.Company, id, &row); err != nil {
		return nil, err
	}
	return &models.Company{ID: row.ID, Name: row.Name, Logo: row.Logo, Contact: row.Contact.contact()}, nil
}

func (d *DB) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	return getClient(d.gorm.WithContext(ctx), id)
}

func getClient(g *gorm.DB, id int64) (*models.Client, error) {
	var row clientRow
	if err := take(g, changes.Client, id, &row); err != nil {
		return nil, err
	}
	return &models.Client{ID: row.ID, Name: row.Name, Contact: row.Contact.contact()}, nil
}

func (d *DB) GetTerms(ctx context.Context, id int64) (*models.Terms, error) {
	return getTerms(d.gorm.WithContext(ctx), id)
}

func getTerms(g *gorm.DB, id int64) (*models.Terms, error) {
	var row termsRow
	if err := take(g, changes.Terms, id, &row); err != nil {
		return nil, err
	}
	return &models.Terms{ID: row.ID, Name: row.Name, Due: row.Due}, nil
}

func (d *DB) GetMethod(ctx context.Context, id int64) (*models.Method, error) {
	return getMethod(d.gorm.WithContext(ctx), id)
}

func getMethod(g *gorm.DB, id int64) (*models.Method, error) {
	var row methodRow
	if err := take(g, changes.Methods, id, &row); err != nil {
		return nil, err
	}
	return &models.Method{ID: row.ID, Name: row.Name, Link: row.Link, QR: row.QR}, nil
}

func (d *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return getItem(d.gorm.WithContext(ctx), id)
}

func getItem(g *gorm.DB, id int64) (*models.Item, error) {
	var row itemRow
	if err := take(g, changes.Items, id, &row); err != nil {
		return nil, err
	}
	var cents int64
	if row.Rate != nil {
		cents = *row.Rate
	}
	return &models.Item{ID: row.ID, Name: row.Name, Rate: money.FromCents(cents)}, nil
}

// GetTemplate loads a template with its company, client, terms and every
// method listed in methods_json. Methods are fetched one query each.
func (d *DB) GetTemplate(ctx context.Context, id int64) (*models.Template, error) {
	return getTemplate(d.gorm.WithContext(ctx), id)
}

func getTemplate(g *gorm.DB, id int64) (*models.Template, error) {
	var row templateRow
	if err := take(g, changes.Templates, id, &row); err != nil {
		return nil, err
	}
	company, err := getCompany(g, row.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("template %d: %w", id, err)
	}
	client, err := getClient(g, row.ClientID)
	if err != nil {
		return nil, fmt.Errorf("template %d: %w", id, err)
	}
	terms, err := getTerms(g, row.TermsID)
	if err != nil {
		return nil, fmt.Errorf("template %d: %w", id, err)
	}

	var ids []int64
	if err := json.Unmarshal(row.MethodsJSON, &ids); err != nil {
		return nil, corrupt(changes.Templates, id, fmt.Errorf("methods_json: %w", err))
	}
	methods := make([]models.Method, 0, len(ids))
	for _, mid := range ids {
		m, err := getMethod(g, mid)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", id, err)
		}
		methods = append(methods, *m)
	}

	return &models.Template{
		ID:      row.ID,
		Name:    row.Name,
		Company: *company,
		Client:  *client,
		Terms:   *terms,
		Methods: methods,
	}, nil
}

// GetInvoice loads an invoice with its template and line items. Duplicate
// item ids in items_json collapse; the last quantity wins.
func (d *DB) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	return getInvoice(d.gorm.WithContext(ctx), id)
}

func getInvoice(g *gorm.DB, id int64) (*models.Invoice, error) {
	var row invoiceRow
	if err := take(g, changes.Invoices, id, &row); err != nil {
		return nil, err
	}
	if _, err := models.ParseIssueDate(row.Date); err != nil {
		return nil, corrupt(changes.Invoices, id, err)
	}
	stage, err := models.ParseStage(row.Stage)
	if err != nil {
		return nil, corrupt(changes.Invoices, id, err)
	}
	status, err := models.DecodeStatus(row.Status, row.StatusDate, row.StatusCheck)
	if err != nil {
		return nil, corrupt(changes.Invoices, id, err)
	}
	var refs []models.ItemRef
	if err := json.Unmarshal(row.ItemsJSON, &refs); err != nil {
		return nil, corrupt(changes.Invoices, id, fmt.Errorf("items_json: %w", err))
	}

	tmpl, err := getTemplate(g, row.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("invoice %d: %w", id, err)
	}

	quantities := models.CollapseItems(refs)
	items := make(map[int64]models.LineItem, len(quantities))
	for _, ref := range refs {
		if _, seen := items[ref.Item]; seen {
			continue
		}
		it, err := getItem(g, ref.Item)
		if err != nil {
			return nil, fmt.Errorf("invoice %d: %w", id, err)
		}
		items[ref.Item] = models.LineItem{Item: *it, Quantity: quantities[ref.Item]}
	}

	return &models.Invoice{
		ID:       row.ID,
		Template: *tmpl,
		Date:     row.Date,
		Attributes: models.Attributes{
			ShowMethods: row.ShowMethods,
			ShowNotes:   row.ShowNotes,
			Stage:       stage,
			Status:      status,
		},
		Notes: row.Notes,
		Items: items,
	}, nil
}

// GetTable lists id and label of every row of t ordered by id. The label is
// the name, or the issue date for invoices.
func (d *DB) GetTable(ctx context.Context, t changes.Table) ([]models.ShortList, error) {
	if err := checkTable(t); err != nil {
		return nil, err
	}
	if t == changes.EmailConfig {
		return nil, fmt.Errorf("table %q has no selection list: %w", t, ErrValidation)
	}
	out := []models.ShortList{}
	q := fmt.Sprintf("SELECT id, %s AS label FROM %s ORDER BY id", t.Label(), t)
	if err := d.gorm.WithContext(ctx).Raw(q).Scan(&out).Error; err != nil {
		return nil, wrap("list", t, 0, err)
	}
	return out, nil
}

// ListInvoices hydrates every invoice in id order.
func (d *DB) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	rows, err := d.GetTable(ctx, changes.Invoices)
	if err != nil {
		return nil, err
	}
	g := d.gorm.WithContext(ctx)
	out := make([]*models.Invoice, 0, len(rows))
	for _, r := range rows {
		inv, err := getInvoice(g, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}
