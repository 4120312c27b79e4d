package models

import "github.com/shopspring/decimal"

// Item is a billable line with a unit rate.
type Item struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

// Equal reports identity: two items are the same item when their ids match.
func (i Item) Equal(o Item) bool { return i.ID == o.ID }

// LineItem is an item together with the quantity billed on one invoice.
type LineItem struct {
	Item     Item  `json:"item"`
	Quantity int64 `json:"quantity"`
}

// Subtotal returns rate * quantity in exact decimal arithmetic.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Item.Rate.Mul(decimal.NewFromInt(l.Quantity))
}

// ItemRef is the persisted form of a line inside items_json.
type ItemRef struct {
	Item     int64 `json:"item"`
	Quantity int64 `json:"quantity"`
}
