// Package httpx holds the JSON response helpers shared by the handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/internal/money"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// ErrBadRequest is returned by handlers for bodies that are not valid JSON.
var ErrBadRequest = errors.New("bad request")

// StatusFor maps an error kind to an HTTP status and a short code.
func StatusFor(err error) (int, string) {
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, ErrBadRequest), errors.As(err, &syntax), errors.As(err, &typeErr):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrConstraint):
		return http.StatusConflict, "constraint"
	case errors.Is(err, models.ErrValidation), errors.Is(err, money.ErrOutOfRange):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, models.ErrExternal):
		return http.StatusBadGateway, "external"
	case errors.Is(err, models.ErrCorrupt):
		return http.StatusInternalServerError, "corrupt"
	}
	return http.StatusInternalServerError, "internal"
}

// Error writes err with the status its kind maps to. Server-side failures
// are logged and their detail is withheld.
func Error(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("error: %v", err)
		if status == http.StatusInternalServerError {
			JSONError(w, status, code, nil)
			return
		}
	}
	JSONError(w, status, code, err.Error())
}
