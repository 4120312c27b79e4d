// Package handlers exposes the invoice store as a local JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/diewo77/invoice-cli/httpx"
	"github.com/diewo77/invoice-cli/internal/changes"
	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/internal/money"
)

const maxBodyBytes = 16 << 20

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("id %q: %w", raw, httpx.ErrBadRequest)
	}
	return id, nil
}

// pathTable parses the {table} wildcard. Unknown tables answer 404.
func pathTable(w http.ResponseWriter, r *http.Request) (changes.Table, bool) {
	t, err := changes.ParseTable(r.PathValue("table"))
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "unknown_table", r.PathValue("table"))
		return "", false
	}
	return t, true
}

// decode reads one JSON document into dst. Syntax and shape errors are bad
// requests; errors raised by the types themselves keep their kind.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, models.ErrValidation) || errors.Is(err, money.ErrOutOfRange) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body: %w", httpx.ErrBadRequest)
		}
		return fmt.Errorf("%w: %v", httpx.ErrBadRequest, err)
	}
	return nil
}
