package changes

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/internal/money"
	"github.com/shopspring/decimal"
)

// CreateCompany inserts a company.
type CreateCompany struct {
	Name    string         `json:"name"`
	Logo    []byte         `json:"logo,omitempty"`
	Contact models.Contact `json:"contact"`
}

func (CreateCompany) Table() Table { return Company }

func (c CreateCompany) Columns() ([]Column, error) {
	var cols columns
	cols.add("name", c.Name)
	cols.blob("logo", c.Logo)
	cols.contact(c.Contact)
	return cols, nil
}

// CreateClient inserts a client.
type CreateClient struct {
	Name    string         `json:"name"`
	Contact models.Contact `json:"contact"`
}

func (CreateClient) Table() Table { return Client }

func (c CreateClient) Columns() ([]Column, error) {
	var cols columns
	cols.add("name", c.Name)
	cols.contact(c.Contact)
	return cols, nil
}

// CreateTerms inserts payment terms.
type CreateTerms struct {
	Name string `json:"name"`
	Due  int64  `json:"due"`
}

func (CreateTerms) Table() Table { return Terms }

func (c CreateTerms) Columns() ([]Column, error) {
	return []Column{{"name", c.Name}, {"due", c.Due}}, nil
}

// CreateMethod inserts a payment method.
type CreateMethod struct {
	Name string  `json:"name"`
	Link *string `json:"link,omitempty"`
	QR   []byte  `json:"qr,omitempty"`
}

func (CreateMethod) Table() Table { return Methods }

func (c CreateMethod) Columns() ([]Column, error) {
	var cols columns
	cols.add("name", c.Name)
	cols.str("link", c.Link)
	cols.blob("qr", c.QR)
	return cols, nil
}

// CreateItem inserts a billable item. Rate is stored in cents.
type CreateItem struct {
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

func (CreateItem) Table() Table { return Items }

func (c CreateItem) Columns() ([]Column, error) {
	cents, err := money.ToCents(c.Rate)
	if err != nil {
		return nil, fmt.Errorf("item rate: %w", err)
	}
	return []Column{{"name", c.Name}, {"rate", cents}}, nil
}

// CreateTemplate inserts a template. Methods are stored as a JSON id list.
type CreateTemplate struct {
	Name    string  `json:"name"`
	Company int64   `json:"company_id"`
	Client  int64   `json:"client_id"`
	Terms   int64   `json:"terms_id"`
	Methods []int64 `json:"methods"`
}

func (CreateTemplate) Table() Table { return Templates }

func (c CreateTemplate) Columns() ([]Column, error) {
	methods, err := encodeIDs(c.Methods)
	if err != nil {
		return nil, err
	}
	return []Column{
		{"name", c.Name},
		{"company_id", c.Company},
		{"client_id", c.Client},
		{"terms_id", c.Terms},
		{"methods_json", methods},
	}, nil
}

// CreateInvoice inserts an invoice. Omitted attributes take the column
// defaults (methods shown, notes hidden, stage Invoice, status Waiting).
type CreateInvoice struct {
	Template    int64
	Date        string
	ShowMethods *bool
	ShowNotes   *bool
	Stage       *models.Stage
	Status      models.Status
	Notes       *string
	Items       []models.ItemRef
}

func (CreateInvoice) Table() Table { return Invoices }

func (c CreateInvoice) Columns() ([]Column, error) {
	if _, err := models.ParseIssueDate(c.Date); err != nil {
		return nil, fmt.Errorf("invoice date %q: %w", c.Date, models.ErrValidation)
	}
	items, err := encodeItems(c.Items)
	if err != nil {
		return nil, err
	}
	var cols columns
	cols.add("template_id", c.Template)
	cols.add("date", c.Date)
	if err := invoiceAttributes(&cols, c.ShowMethods, c.ShowNotes, c.Stage, c.Status); err != nil {
		return nil, err
	}
	cols.str("notes", c.Notes)
	cols.add("items_json", items)
	return cols, nil
}

type invoiceJSON struct {
	Template    int64               `json:"template_id"`
	Date        string              `json:"date"`
	ShowMethods *bool               `json:"show_methods,omitempty"`
	ShowNotes   *bool               `json:"show_notes,omitempty"`
	Stage       *models.Stage       `json:"stage,omitempty"`
	Status      *models.StatusValue `json:"status,omitempty"`
	Notes       *string             `json:"notes,omitempty"`
	Items       []models.ItemRef    `json:"items"`
}

// decodeStrict unmarshals b into v, rejecting fields v does not declare.
func decodeStrict(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// UnmarshalJSON decodes the status from its {kind, date, check} shape.
func (c *CreateInvoice) UnmarshalJSON(b []byte) error {
	var in invoiceJSON
	if err := decodeStrict(b, &in); err != nil {
		return err
	}
	status, err := decodeStatusValue(in.Status)
	if err != nil {
		return err
	}
	*c = CreateInvoice{
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

func decodeStatusValue(v *models.StatusValue) (models.Status, error) {
	if v == nil {
		return nil, nil
	}
	return v.Status()
}

func invoiceAttributes(cols *columns, showMethods, showNotes *bool, stage *models.Stage, status models.Status) error {
	if showMethods != nil {
		cols.add("show_methods", *showMethods)
	}
	if showNotes != nil {
		cols.add("show_notes", *showNotes)
	}
	if stage != nil {
		if _, err := models.ParseStage(string(*stage)); err != nil {
			return fmt.Errorf("stage %q: %w", *stage, models.ErrValidation)
		}
		cols.add("stage", string(*stage))
	}
	if status != nil {
		// The companions are always written with the discriminant so a
		// previous variant's date or check cannot survive.
		kind, date, check := models.EncodeStatus(status)
		cols.add("status", kind)
		cols.add("status_date", nullable(date))
		cols.add("status_check", nullable(check))
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func encodeIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode methods: %w", err)
	}
	return string(b), nil
}

func encodeItems(refs []models.ItemRef) (string, error) {
	if refs == nil {
		refs = []models.ItemRef{}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	return string(b), nil
}
