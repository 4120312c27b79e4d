// Package validation collects field-level violations before anything is
// written.
package validation

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/diewo77/invoice-cli/internal/models"
	"github.com/diewo77/invoice-cli/internal/money"
	svg "github.com/h2non/go-is-svg"
	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Err returns nil when there are no violations, otherwise an error wrapping
// models.ErrValidation that lists them.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v[f]
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(parts, ", "))
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// RequiredPtr is Required for optional edits: nil is allowed, blank is not.
func RequiredPtr(field string, value *string, v Violations) {
	if value != nil {
		Required(field, *value, v)
	}
}

func NonNegative(field string, val int64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

// Money checks that an amount is non-negative and fits in cents.
func Money(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
		return
	}
	if _, err := money.ToCents(val); err != nil {
		v[field] = "out_of_range"
	}
}

// IssueDate checks the compact YYYYMMDD form.
func IssueDate(field, value string, v Violations) {
	if _, err := models.ParseIssueDate(value); err != nil {
		v[field] = "invalid_date"
	}
}

var imageTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// ContentType sniffs data. SVG needs its own check since
// http.DetectContentType reports it as text.
func ContentType(data []byte) string {
	if svg.IsSVG(data) {
		return "image/svg+xml"
	}
	return http.DetectContentType(data)
}

// Image checks an uploaded logo or QR code by sniffed content type and size.
// Empty data is allowed.
func Image(field string, data []byte, maxBytes int, v Violations) {
	if len(data) == 0 {
		return
	}
	if maxBytes > 0 && len(data) > maxBytes {
		v[field] = "too_large"
		return
	}
	if !imageTypes[ContentType(data)] {
		v[field] = "unsupported_image"
	}
}
