package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/diewo77/invoice-cli/internal/db"
	"github.com/diewo77/invoice-cli/internal/mail"
	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/internal/money"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const dateLayout = "2006-01-02"

// Line is one rendered invoice row.
type Line struct {
	Name     string `json:"name"`
	Rate     string `json:"rate"`
	Quantity int64  `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// Summary is the flat, display-ready view of an invoice.
type Summary struct {
	ID             int64           `json:"id"`
	Stage          models.Stage    `json:"stage"`
	Company        string          `json:"company"`
	CompanyAddress string          `json:"company_address"`
	CompanyPhone   string          `json:"company_phone,omitempty"`
	CompanyEmail   string          `json:"company_email,omitempty"`
	Client         string          `json:"client"`
	ClientAddress  string          `json:"client_address"`
	Recipients     []string        `json:"recipients"`
	IssueDate      string          `json:"issue_date"`
	DueDate        string          `json:"due_date"`
	Terms          string          `json:"terms"`
	Status         string          `json:"status"`
	Lines          []Line          `json:"lines"`
	Total          string          `json:"total"`
	ShowMethods    bool            `json:"show_methods"`
	Methods        []models.Method `json:"methods,omitempty"`
	ShowNotes      bool            `json:"show_notes"`
	NotesHTML      template.HTML   `json:"notes_html,omitempty"`
}

// InvoiceService derives display values from hydrated invoices.
type InvoiceService struct {
	db *db.DB
	md goldmark.Markdown
}

func NewInvoiceService(d *db.DB) *InvoiceService {
	return &InvoiceService{
		db: d,
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Load hydrates invoice id and summarizes it.
func (s *InvoiceService) Load(ctx context.Context, id int64) (*models.Invoice, *Summary, error) {
	inv, err := s.db.GetInvoice(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sum, err := s.Summarize(inv)
	if err != nil {
		return nil, nil, err
	}
	return inv, sum, nil
}

// List summarizes every invoice in id order.
func (s *InvoiceService) List(ctx context.Context) ([]*Summary, error) {
	invoices, err := s.db.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Summary, 0, len(invoices))
	for _, inv := range invoices {
		sum, err := s.Summarize(inv)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

// Summarize computes lines, total, due date and status label.
func (s *InvoiceService) Summarize(inv *models.Invoice) (*Summary, error) {
	issued, err := inv.IssueDate()
	if err != nil {
		return nil, fmt.Errorf("invoice %d: %w", inv.ID, err)
	}
	due, err := inv.DueDate()
	if err != nil {
		return nil, fmt.Errorf("invoice %d: %w", inv.ID, err)
	}
	tpl := inv.Template
	sum := &Summary{
		ID:             inv.ID,
		Stage:          inv.Attributes.Stage,
		Company:        tpl.Company.Name,
		CompanyAddress: tpl.Company.Contact.FullAddress(),
		CompanyPhone:   value(tpl.Company.Contact.Phone),
		CompanyEmail:   value(tpl.Company.Contact.Email),
		Client:         tpl.Client.Name,
		ClientAddress:  tpl.Client.Contact.FullAddress(),
		Recipients:     tpl.Client.Contact.Recipients(),
		IssueDate:      issued.Format(dateLayout),
		DueDate:        due.Format(dateLayout),
		Terms:          tpl.Terms.Name,
		Status:         statusLabel(inv.Attributes.Status),
		Total:          money.Format(inv.Total()),
		ShowMethods:    inv.Attributes.ShowMethods,
		ShowNotes:      inv.Attributes.ShowNotes,
	}
	for _, l := range inv.Lines() {
		sum.Lines = append(sum.Lines, Line{
			Name:     l.Item.Name,
			Rate:     money.Format(l.Item.Rate),
			Quantity: l.Quantity,
			Subtotal: money.Format(l.Subtotal()),
		})
	}
	if sum.ShowMethods {
		sum.Methods = tpl.Methods
	}
	if sum.ShowNotes && inv.Notes != nil {
		html, err := s.NotesHTML(*inv.Notes)
		if err != nil {
			return nil, fmt.Errorf("invoice %d notes: %w", inv.ID, err)
		}
		sum.NotesHTML = html
	}
	return sum, nil
}

// NotesHTML renders markdown notes. Raw HTML in the source is dropped.
func (s *InvoiceService) NotesHTML(notes string) (template.HTML, error) {
	if strings.TrimSpace(notes) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(notes), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrExternal, err)
	}
	return template.HTML(buf.String()), nil
}

// Subject builds the email subject, e.g. "PAST DUE: Invoice 7 - 2024-01-15".
// Settled statuses carry their own date instead of the issue date.
func Subject(inv *models.Invoice) (string, error) {
	issued, err := inv.IssueDate()
	if err != nil {
		return "", err
	}
	head := fmt.Sprintf("%s %d", inv.Attributes.Stage, inv.ID)
	date := issued.Format(dateLayout)
	switch st := inv.Attributes.Status.(type) {
	case models.PastDue:
		return fmt.Sprintf("PAST DUE: %s - %s", head, date), nil
	case models.Paid:
		return fmt.Sprintf("PAID: %s - %s", head, st.Date.Format(dateLayout)), nil
	case models.Failed:
		return fmt.Sprintf("FAILED: %s - %s", head, st.Date.Format(dateLayout)), nil
	case models.Refunded:
		return fmt.Sprintf("REFUNDED: %s - %s", head, st.Date.Format(dateLayout)), nil
	}
	return fmt.Sprintf("%s - %s", head, date), nil
}

// Message composes the mail for an invoice and its summary.
func Message(inv *models.Invoice, sum *Summary) (mail.Message, error) {
	subject, err := Subject(inv)
	if err != nil {
		return mail.Message{}, err
	}
	if len(sum.Recipients) == 0 {
		return mail.Message{}, fmt.Errorf("client %q has no email: %w", sum.Client, models.ErrValidation)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d from %s\n", sum.Stage, sum.ID, sum.Company)
	fmt.Fprintf(&b, "Issued: %s\nDue: %s (%s)\nStatus: %s\n\n", sum.IssueDate, sum.DueDate, sum.Terms, sum.Status)
	for _, l := range sum.Lines {
		fmt.Fprintf(&b, "%s  %s x %d = %s\n", l.Name, l.Rate, l.Quantity, l.Subtotal)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", sum.Total)
	if sum.ShowMethods {
		for i, m := range sum.Methods {
			if i == 0 {
				b.WriteString("\nPayment methods:\n")
			}
			fmt.Fprintf(&b, "- %s", m.Name)
			if m.Link != nil && *m.Link != "" {
				fmt.Fprintf(&b, ": %s", *m.Link)
			}
			b.WriteString("\n")
		}
	}
	return mail.Message{To: sum.Recipients, Subject: subject, Body: b.String()}, nil
}

func statusLabel(st models.Status) string {
	if st == nil {
		return models.Waiting{}.String()
	}
	return st.String()
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
