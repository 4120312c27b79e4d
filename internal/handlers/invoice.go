package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/invoice-cli/httpx"
	"github.com/diewo77/invoice-cli/internal/db"
	"github.com/diewo77/invoice-cli/internal/mail"
	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/internal/services"
	"github.com/diewo77/invoice-cli/view"
)

// Dialer builds a sender from the saved email settings.
type Dialer func(cfg models.EmailConfig) (mail.Sender, error)

// SMTPDialer is the production Dialer.
func SMTPDialer(cfg models.EmailConfig) (mail.Sender, error) {
	return mail.NewSMTP(cfg)
}

// sender loads the email settings and dials them.
func sender(ctx context.Context, d *db.DB, dial Dialer) (mail.Sender, error) {
	cfg, err := d.GetEmailConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("email settings: %w", err)
	}
	return dial(cfg)
}

// InvoiceHandler serves the derived views of an invoice.
type InvoiceHandler struct {
	db       *db.DB
	invoices *services.InvoiceService
	view     *view.Renderer
	dial     Dialer
}

func NewInvoiceHandler(d *db.DB, svc *services.InvoiceService, r *view.Renderer, dial Dialer) *InvoiceHandler {
	return &InvoiceHandler{db: d, invoices: svc, view: r, dial: dial}
}

// Summaries lists the summary of every invoice.
func (h *InvoiceHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	sums, err := h.invoices.List(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sums)
}

// Summary returns the computed totals, dates and labels.
func (h *InvoiceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	_, sum, err := h.invoices.Load(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

// HTML renders the invoice document. The route wildcard is "<id>.html".
func (h *InvoiceHandler) HTML(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	raw, ok := strings.CutSuffix(file, ".html")
	id, err := strconv.ParseInt(raw, 10, 64)
	if !ok || err != nil {
		http.NotFound(w, r)
		return
	}
	_, sum, err := h.invoices.Load(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.view.Render(w, sum); err != nil {
		httpx.Error(w, err)
	}
}

// Send mails the invoice to the client's addresses.
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	inv, sum, err := h.invoices.Load(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	msg, err := services.Message(inv, sum)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	s, err := sender(r.Context(), h.db, h.dial)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := s.Send(r.Context(), msg); err != nil {
		httpx.Error(w, err)
		return
	}
	log.Printf("sent %q to %d recipient(s)", msg.Subject, len(msg.To))
	httpx.JSON(w, http.StatusOK, map[string]any{"subject": msg.Subject, "to": msg.To})
}
