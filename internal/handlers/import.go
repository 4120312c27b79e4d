package handlers

import (
	"net/http"

	"github.com/diewo77/invoice-cli/httpx"
	"github.com/diewo77/invoice-cli/internal/db"
)

type ImportHandler struct {
	db *db.DB
}

func NewImportHandler(d *db.DB) *ImportHandler {
	return &ImportHandler{db: d}
}

// Import inserts a bulk document atomically.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	res, err := h.db.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"count": res.Count(), "ids": res})
}
