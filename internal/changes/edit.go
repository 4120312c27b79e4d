package changes

import (
	"fmt"

	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/internal/money"
	"github.com/shopspring/decimal"
)

// EditCompany updates the supplied company fields.
type EditCompany struct {
	ID      int64          `json:"-"`
	Name    *string        `json:"name,omitempty"`
	Logo    []byte         `json:"logo,omitempty"`
	Contact models.Contact `json:"contact"`
}

func (EditCompany) Table() Table   { return Company }
func (e EditCompany) RowID() int64 { return e.ID }

func (e EditCompany) Columns() ([]Column, error) {
	var cols columns
	cols.str("name", e.Name)
	cols.blob("logo", e.Logo)
	cols.contact(e.Contact)
	return cols, nil
}

// EditClient updates the supplied client fields.
type EditClient struct {
	ID      int64          `json:"-"`
	Name    *string        `json:"name,omitempty"`
	Contact models.Contact `json:"contact"`
}

func (EditClient) Table() Table   { return Client }
func (e EditClient) RowID() int64 { return e.ID }

func (e EditClient) Columns() ([]Column, error) {
	var cols columns
	cols.str("name", e.Name)
	cols.contact(e.Contact)
	return cols, nil
}

type EditTerms struct {
	ID   int64   `json:"-"`
	Name *string `json:"name,omitempty"`
	Due  *int64  `json:"due,omitempty"`
}

func (EditTerms) Table() Table   { return Terms }
func (e EditTerms) RowID() int64 { return e.ID }

func (e EditTerms) Columns() ([]Column, error) {
	var cols columns
	cols.str("name", e.Name)
	if e.Due != nil {
		cols.add("due", *e.Due)
	}
	return cols, nil
}

type EditMethod struct {
	ID   int64   `json:"-"`
	Name *string `json:"name,omitempty"`
	Link *string `json:"link,omitempty"`
	QR   []byte  `json:"qr,omitempty"`
}

func (EditMethod) Table() Table   { return Methods }
func (e EditMethod) RowID() int64 { return e.ID }

func (e EditMethod) Columns() ([]Column, error) {
	var cols columns
	cols.str("name", e.Name)
	cols.str("link", e.Link)
	cols.blob("qr", e.QR)
	return cols, nil
}

type EditItem struct {
	ID   int64            `json:"-"`
	Name *string          `json:"name,omitempty"`
	Rate *decimal.Decimal `json:"rate,omitempty"`
}

func (EditItem) Table() Table   { return Items }
func (e EditItem) RowID() int64 { return e.ID }

func (e EditItem) Columns() ([]Column, error) {
	var cols columns
	cols.str("name", e.Name)
	if e.Rate != nil {
		cents, err := money.ToCents(*e.Rate)
		if err != nil {
			return nil, fmt.Errorf("item rate: %w", err)
		}
		cols.add("rate", cents)
	}
	return cols, nil
}

// EditTemplate updates a template. A nil Methods leaves the list alone; an
// empty one clears it.
type EditTemplate struct {
	ID      int64   `json:"-"`
	Name    *string `json:"name,omitempty"`
	Company *int64  `json:"company_id,omitempty"`
	Client  *int64  `json:"client_id,omitempty"`
	Terms   *int64  `json:"terms_id,omitempty"`
	Methods []int64 `json:"methods,omitempty"`
}

func (EditTemplate) Table() Table   { return Templates }
func (e EditTemplate) RowID() int64 { return e.ID }

func (e EditTemplate) Columns() ([]Column, error) {
	var cols columns
	cols.str("name", e.Name)
	for _, fk := range []struct {
		name string
		id   *int64
	}{{"company_id", e.Company}, {"client_id", e.Client}, {"terms_id", e.Terms}} {
		if fk.id != nil {
			cols.add(fk.name, *fk.id)
		}
	}
	if e.Methods != nil {
		methods, err := encodeIDs(e.Methods)
		if err != nil {
			return nil, err
		}
		cols.add("methods_json", methods)
	}
	return cols, nil
}

// EditInvoice updates an invoice. Setting Status rewrites the status and
// both companion columns.
type EditInvoice struct {
	ID          int64
	Template    *int64
	Date        *string
	ShowMethods *bool
	ShowNotes   *bool
	Stage       *models.Stage
	Status      models.Status
	Notes       *string
	Items       []models.ItemRef
}

func (EditInvoice) Table() Table   { return Invoices }
func (e EditInvoice) RowID() int64 { return e.ID }

func (e EditInvoice) Columns() ([]Column, error) {
	var cols columns
	if e.Template != nil {
		cols.add("template_id", *e.Template)
	}
	if e.Date != nil {
		if _, err := models.ParseIssueDate(*e.Date); err != nil {
			return nil, fmt.Errorf("invoice date %q: %w", *e.Date, models.ErrValidation)
		}
		cols.add("date", *e.Date)
	}
	if err := invoiceAttributes(&cols, e.ShowMethods, e.ShowNotes, e.Stage, e.Status); err != nil {
		return nil, err
	}
	cols.str("notes", e.Notes)
	if e.Items != nil {
		items, err := encodeItems(e.Items)
		if err != nil {
			return nil, err
		}
		cols.add("items_json", items)
	}
	return cols, nil
}

type editInvoiceJSON struct {
	Template    *int64              `json:"template_id,omitempty"`
	Date        *string             `json:"date,omitempty"`
	ShowMethods *bool               `json:"show_methods,omitempty"`
	ShowNotes   *bool               `json:"show_notes,omitempty"`
	Stage       *models.Stage       `json:"stage,omitempty"`
	Status      *models.StatusValue `json:"status,omitempty"`
	Notes       *string             `json:"notes,omitempty"`
	Items       []models.ItemRef    `json:"items,omitempty"`
}

func (e *EditInvoice) UnmarshalJSON(b []byte) error {
	var in editInvoiceJSON
	if err := decodeStrict(b, &in); err != nil {
		return err
	}
	status, err := decodeStatusValue(in.Status)
	if err != nil {
		return err
	}
	*e = EditInvoice{
		ID:          e.ID,
		Template:    in.Template,
		Date:        in.Date,
		ShowMethods: in.ShowMethods,
		ShowNotes:   in.ShowNotes,
		Stage:       in.Stage,
		Status:      status,
		Notes:       in.Notes,
		Items:       in.Items,
	}
	return nil
}

// EmailSettings replaces the singleton email configuration.
type EmailSettings struct {
	Config models.EmailConfig
}

func (EmailSettings) Table() Table { return EmailConfig }

func (e EmailSettings) Columns() ([]Column, error) {
	c := e.Config
	return []Column{
		{"id", 0},
		{"smtp_server", c.SMTPServer},
		{"port", c.Port},
		{"tls", c.TLS},
		{"username", c.Username},
		{"password", c.Password},
		{"fromname", c.FromName},
	}, nil
}
