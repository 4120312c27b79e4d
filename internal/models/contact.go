package models

import "strings"

// Contact is the inline block of nullable text columns shared by Company and
// Client. A nil field was never set.
type Contact struct {
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
	Addr1 *string `json:"addr1,omitempty"`
	Addr2 *string `json:"addr2,omitempty"`
	City  *string `json:"city,omitempty"`
	State *string `json:"state,omitempty"`
	Zip   *string `json:"zip,omitempty"`
}

// ContactColumns lists the contact columns in table order.
var ContactColumns = []string{"phone", "email", "addr1", "addr2", "city", "state", "zip"}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// FullAddress returns the formatted postal address, one line per part.
// Empty parts are skipped.
func (c Contact) FullAddress() string {
	var lines []string
	for _, l := range []string{deref(c.Addr1), deref(c.Addr2)} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	locality := deref(c.City)
	if st := deref(c.State); st != "" {
		if locality != "" {
			locality += ", "
		}
		locality += st
	}
	if zip := deref(c.Zip); zip != "" {
		if locality != "" {
			locality += " "
		}
		locality += zip
	}
	if locality != "" {
		lines = append(lines, locality)
	}
	return strings.Join(lines, "\n")
}

// Recipients splits the email field on commas.
func (c Contact) Recipients() []string {
	var out []string
	for _, part := range strings.Split(deref(c.Email), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
