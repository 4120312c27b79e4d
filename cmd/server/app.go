package main

import (
	"net/http"

	"github.com/diewo77/invoice-cli/httpx"
	"github.com/diewo77/invoice-cli/internal/config"
	"github.com/diewo77/invoice-cli/internal/db"
	"github.com/diewo77/invoice-cli/internal/handlers"
	"github.com/diewo77/invoice-cli/internal/services"
	"github.com/diewo77/invoice-cli/view"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
	db  *db.DB

	entity   *handlers.EntityHandler
	invoices *handlers.InvoiceHandler
	email    *handlers.EmailHandler
	imports  *handlers.ImportHandler
}

// NewApp creates a new application with all routes configured.
func NewApp(d *db.DB, cfg *config.Config, dial handlers.Dialer) *App {
	svc := services.NewInvoiceService(d)
	renderer := view.New(cfg.App.Templates, cfg.App.Dev)
	app := &App{
		mux:      http.NewServeMux(),
		db:       d,
		entity:   handlers.NewEntityHandler(d, cfg.App.MaxImageBytes),
		invoices: handlers.NewInvoiceHandler(d, svc, renderer, dial),
		email:    handlers.NewEmailHandler(d, dial),
		imports:  handlers.NewImportHandler(d),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /healthz", a.health)

	// Email settings and bulk import
	a.mux.HandleFunc("GET /api/email-config", a.email.Get)
	a.mux.HandleFunc("PUT /api/email-config", a.email.Put)
	a.mux.HandleFunc("POST /api/email-config/test", a.email.Test)
	a.mux.HandleFunc("POST /api/import", a.imports.Import)

	// Derived invoice views
	a.mux.HandleFunc("GET /api/summaries", a.invoices.Summaries)
	a.mux.HandleFunc("GET /api/invoices/{id}/summary", a.invoices.Summary)
	a.mux.HandleFunc("POST /api/invoices/{id}/send", a.invoices.Send)
	a.mux.HandleFunc("GET /invoices/{file}", a.invoices.HTML)

	// Entities
	a.mux.HandleFunc("GET /api/{table}", a.entity.List)
	a.mux.HandleFunc("POST /api/{table}", a.entity.Create)
	a.mux.HandleFunc("GET /api/{table}/{id}", a.entity.Get)
	a.mux.HandleFunc("PATCH /api/{table}/{id}", a.entity.Edit)
	a.mux.HandleFunc("DELETE /api/{table}/{id}", a.entity.Delete)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	m := a.db.Migration()
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok", "schema_version": m.To})
}
