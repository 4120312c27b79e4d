package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// IssueDateLayout is the compact layout of invoices.date.
const IssueDateLayout = "20060102"

// Invoice is the fully hydrated invoice aggregate.
type Invoice struct {
	ID         int64              `json:"id"`
	Template   Template           `json:"template"`
	Date       string             `json:"date"`
	Attributes Attributes         `json:"attributes"`
	Notes      *string            `json:"notes,omitempty"`
	Items      map[int64]LineItem `json:"items"`
}

// ParseIssueDate parses a compact YYYYMMDD date. Malformed input is
// ErrCorrupt.
func ParseIssueDate(s string) (time.Time, error) {
	t, err := time.Parse(IssueDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("issue date %q: %w", s, ErrCorrupt)
	}
	return t, nil
}

// IssueDate parses the stored date.
func (inv *Invoice) IssueDate() (time.Time, error) {
	return ParseIssueDate(inv.Date)
}

// DueDate is the issue date plus the template's terms in days.
func (inv *Invoice) DueDate() (time.Time, error) {
	issued, err := inv.IssueDate()
	if err != nil {
		return time.Time{}, err
	}
	return issued.AddDate(0, 0, int(inv.Template.Terms.Due)), nil
}

// Lines returns the line items ordered by item name (byte order), ties
// broken by id so the order is total.
func (inv *Invoice) Lines() []LineItem {
	lines := make([]LineItem, 0, len(inv.Items))
	for _, l := range inv.Items {
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Item.Name != lines[j].Item.Name {
			return lines[i].Item.Name < lines[j].Item.Name
		}
		return lines[i].Item.ID < lines[j].Item.ID
	})
	return lines
}

// Total sums the line subtotals.
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range inv.Lines() {
		total = total.Add(l.Subtotal())
	}
	return total
}

// CollapseItems turns persisted refs into the id-keyed quantity map. When an
// id repeats the last quantity wins.
func CollapseItems(refs []ItemRef) map[int64]int64 {
	out := make(map[int64]int64, len(refs))
	for _, r := range refs {
		out[r.Item] = r.Quantity
	}
	return out
}
