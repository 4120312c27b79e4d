package models

// Company is the issuer printed at the top of an invoice.
type Company struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Logo    []byte  `json:"logo,omitempty"`
	Contact Contact `json:"contact"`
}

// Client is the billed party.
type Client struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Contact Contact `json:"contact"`
}

// Terms are payment terms; Due is the number of days after the issue date.
type Terms struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Due  int64  `json:"due"`
}

// Method is a payment method listed on a template.
type Method struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Link *string `json:"link,omitempty"`
	QR   []byte  `json:"qr,omitempty"`
}
