package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/invoice-cli/httpx"
	"github.com/diewo77/invoice-cli/internal/db"
	"github.com/diewo77/invoice-cli/internal/mail"
	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/validation"
)

const (
	testSubject = "Test from Invoice-CLI"
	testBody    = "Test successful!"
)

// EmailHandler reads and writes the SMTP settings.
type EmailHandler struct {
	db   *db.DB
	dial Dialer
}

func NewEmailHandler(d *db.DB, dial Dialer) *EmailHandler {
	return &EmailHandler{db: d, dial: dial}
}

// Get returns the saved settings, or the defaults when none exist. The
// password is never sent back.
func (h *EmailHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.db.GetEmailConfig(r.Context())
	if errors.Is(err, models.ErrNotFound) {
		cfg, err = models.DefaultEmailConfig(), nil
	}
	if err != nil {
		httpx.Error(w, err)
		return
	}
	cfg.Password = ""
	httpx.JSON(w, http.StatusOK, cfg)
}

// Put replaces the settings. An empty password keeps the saved one.
func (h *EmailHandler) Put(w http.ResponseWriter, r *http.Request) {
	var cfg models.EmailConfig
	if err := decode(w, r, &cfg); err != nil {
		httpx.Error(w, err)
		return
	}
	v := validation.Violations{}
	validation.Required("smtp_server", cfg.SMTPServer, v)
	if cfg.Port <= 0 || cfg.Port > 65535 {
		v["port"] = "out_of_range"
	}
	if err := v.Err(); err != nil {
		httpx.Error(w, err)
		return
	}
	if cfg.Password == "" {
		prev, err := h.db.GetEmailConfig(r.Context())
		switch {
		case err == nil:
			cfg.Password = prev.Password
		case !errors.Is(err, models.ErrNotFound):
			httpx.Error(w, err)
			return
		}
	}
	if err := h.db.SaveEmailConfig(r.Context(), cfg); err != nil {
		httpx.Error(w, err)
		return
	}
	cfg.Password = ""
	httpx.JSON(w, http.StatusOK, cfg)
}

type testRequest struct {
	To string `json:"to"`
}

// Test sends a fixed message through the saved settings.
func (h *EmailHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := decode(w, r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	v := validation.Violations{}
	validation.Required("to", req.To, v)
	if err := v.Err(); err != nil {
		httpx.Error(w, err)
		return
	}
	s, err := sender(r.Context(), h.db, h.dial)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	msg := mail.Message{To: []string{req.To}, Subject: testSubject, Body: testBody}
	if err := s.Send(r.Context(), msg); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"subject": msg.Subject, "to": msg.To})
}
