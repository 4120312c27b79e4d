package handlers

import (
	"context"
	"net/http"

	"github.com/diewo77/invoice-cli/httpx"
	"github.com/diewo77/invoice-cli/internal/changes"
	"github.com/diewo77/invoice-cli/internal/db"
	"github.com/diewo77/invoice-cli/validation"
)

// resource binds a table to its change requests and its hydrator.
type resource struct {
	create func() changes.Descriptor
	edit   func(id int64) changes.Update
	get    func(ctx context.Context, d *db.DB, id int64) (any, error)
}

var resources = map[changes.Table]resource{
	changes.Company: {
		create: func() changes.Descriptor { return &changes.CreateCompany{} },
		edit:   func(id int64) changes.Update { return &changes.EditCompany{ID: id} },
		get:    func(ctx context.Context, d *db.DB, id int64) (any, error) { return d.GetCompany(ctx, id) },
	},
	changes.Client: {
		create: func() changes.Descriptor { return &changes.CreateClient{} },
		edit:   func(id int64) changes.Update { return &changes.EditClient{ID: id} },
		get:    func(ctx context.Context, d *db.DB, id int64) (any, error) { return d.GetClient(ctx, id) },
	},
	changes.Terms: {
		create: func() changes.Descriptor { return &changes.CreateTerms{} },
		edit:   func(id int64) changes.Update { return &changes.EditTerms{ID: id} },
		get:    func(ctx context.Context, d *db.DB, id int64) (any, error) { return d.GetTerms(ctx, id) },
	},
	changes.Methods: {
		create: func() changes.Descriptor { return &changes.CreateMethod{} },
		edit:   func(id int64) changes.Update { return &changes.EditMethod{ID: id} },
		get:    func(ctx context.Context, d *db.DB, id int64) (any, error) { return d.GetMethod(ctx, id) },
	},
	changes.Items: {
		create: func() changes.Descriptor { return &changes.CreateItem{} },
		edit:   func(id int64) changes.Update { return &changes.EditItem{ID: id} },
		get:    func(ctx context.Context, d *db.DB, id int64) (any, error) { return d.GetItem(ctx, id) },
	},
	changes.Templates: {
		create: func() changes.Descriptor { return &changes.CreateTemplate{} },
		edit:   func(id int64) changes.Update { return &changes.EditTemplate{ID: id} },
		get:    func(ctx context.Context, d *db.DB, id int64) (any, error) { return d.GetTemplate(ctx, id) },
	},
	changes.Invoices: {
		create: func() changes.Descriptor { return &changes.CreateInvoice{} },
		edit:   func(id int64) changes.Update { return &changes.EditInvoice{ID: id} },
		get:    func(ctx context.Context, d *db.DB, id int64) (any, error) { return d.GetInvoice(ctx, id) },
	},
}

// EntityHandler serves list, get, create, edit and delete for every table.
type EntityHandler struct {
	db            *db.DB
	maxImageBytes int
}

func NewEntityHandler(d *db.DB, maxImageBytes int) *EntityHandler {
	return &EntityHandler{db: d, maxImageBytes: maxImageBytes}
}

// List returns the id/label selection list of a table.
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	t, ok := pathTable(w, r)
	if !ok {
		return
	}
	rows, err := h.db.GetTable(r.Context(), t)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

// Get returns one hydrated entity.
func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := pathTable(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	v, err := resources[t].get(r.Context(), h.db, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

// Create inserts a row and answers with its id.
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	t, ok := pathTable(w, r)
	if !ok {
		return
	}
	desc := resources[t].create()
	if err := decode(w, r, desc); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.validate(desc); err != nil {
		httpx.Error(w, err)
		return
	}
	id, err := h.db.Insert(r.Context(), desc)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Edit applies the supplied fields and answers with the hydrated entity.
func (h *EntityHandler) Edit(w http.ResponseWriter, r *http.Request) {
	t, ok := pathTable(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	res := resources[t]
	upd := res.edit(id)
	if err := decode(w, r, upd); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.validate(upd); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.db.Update(r.Context(), upd); err != nil {
		httpx.Error(w, err)
		return
	}
	v, err := res.get(r.Context(), h.db, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

// Delete removes a row. Rows still referenced answer 409.
func (h *EntityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, ok := pathTable(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.db.Delete(r.Context(), changes.Delete{Table: t, ID: id}); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validate runs the field checks the schema cannot express.
func (h *EntityHandler) validate(d changes.Descriptor) error {
	v := validation.Violations{}
	switch c := d.(type) {
	case *changes.CreateCompany:
		validation.Required("name", c.Name, v)
		validation.Image("logo", c.Logo, h.maxImageBytes, v)
	case *changes.CreateClient:
		validation.Required("name", c.Name, v)
	case *changes.CreateTerms:
		validation.Required("name", c.Name, v)
		validation.NonNegative("due", c.Due, v)
	case *changes.CreateMethod:
		validation.Required("name", c.Name, v)
		validation.Image("qr", c.QR, h.maxImageBytes, v)
	case *changes.CreateItem:
		validation.Required("name", c.Name, v)
		validation.Money("rate", c.Rate, v)
	case *changes.CreateTemplate:
		validation.Required("name", c.Name, v)
	case *changes.CreateInvoice:
		validation.IssueDate("date", c.Date, v)
		for _, ref := range c.Items {
			validation.NonNegative("items", ref.Quantity, v)
		}
	case *changes.EditCompany:
		validation.RequiredPtr("name", c.Name, v)
		validation.Image("logo", c.Logo, h.maxImageBytes, v)
	case *changes.EditClient:
		validation.RequiredPtr("name", c.Name, v)
	case *changes.EditTerms:
		validation.RequiredPtr("name", c.Name, v)
		if c.Due != nil {
			validation.NonNegative("due", *c.Due, v)
		}
	case *changes.EditMethod:
		validation.RequiredPtr("name", c.Name, v)
		validation.Image("qr", c.QR, h.maxImageBytes, v)
	case *changes.EditItem:
		validation.RequiredPtr("name", c.Name, v)
		if c.Rate != nil {
			validation.Money("rate", *c.Rate, v)
		}
	case *changes.EditTemplate:
		validation.RequiredPtr("name", c.Name, v)
	case *changes.EditInvoice:
		if c.Date != nil {
			validation.IssueDate("date", *c.Date, v)
		}
		for _, ref := range c.Items {
			validation.NonNegative("items", ref.Quantity, v)
		}
	}
	return v.Err()
}
