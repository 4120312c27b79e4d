package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusDateLayout is the storage and display layout of status dates.
const StatusDateLayout = "2006-01-02"

// StatusKind is the discriminant persisted in invoices.status.
type StatusKind string

const (
	StatusWaiting  StatusKind = "Waiting"
	StatusPastDue  StatusKind = "Past Due"
	StatusPaid     StatusKind = "Paid"
	StatusFailed   StatusKind = "Failed"
	StatusRefunded StatusKind = "Refunded"
)

// Status is the payment state of an invoice. It is exactly one of Waiting,
// PastDue, Paid, Failed or Refunded.
type Status interface {
	Kind() StatusKind
	String() string
	isStatus()
}

type (
	Waiting struct{}
	PastDue struct{}
	Paid    struct {
		Date  time.Time
		Check *string
	}
	Failed struct {
		Date time.Time
	}
	Refunded struct {
		Date time.Time
	}
)

func (Waiting) Kind() StatusKind  { return StatusWaiting }
func (PastDue) Kind() StatusKind  { return StatusPastDue }
func (Paid) Kind() StatusKind     { return StatusPaid }
func (Failed) Kind() StatusKind   { return StatusFailed }
func (Refunded) Kind() StatusKind { return StatusRefunded }

func (Waiting) isStatus()  {}
func (PastDue) isStatus()  {}
func (Paid) isStatus()     {}
func (Failed) isStatus()   {}
func (Refunded) isStatus() {}

func (Waiting) String() string { return string(StatusWaiting) }
func (PastDue) String() string { return string(StatusPastDue) }

func (p Paid) String() string {
	s := fmt.Sprintf("Paid %s", p.Date.Format(StatusDateLayout))
	if p.Check != nil && *p.Check != "" {
		s += fmt.Sprintf(" (check %s)", *p.Check)
	}
	return s
}

func (f Failed) String() string   { return "Failed " + f.Date.Format(StatusDateLayout) }
func (r Refunded) String() string { return "Refunded " + r.Date.Format(StatusDateLayout) }

// StatusDate returns the date carried by Paid, Failed and Refunded.
func StatusDate(s Status) (time.Time, bool) {
	switch v := s.(type) {
	case Paid:
		return v.Date, true
	case Failed:
		return v.Date, true
	case Refunded:
		return v.Date, true
	}
	return time.Time{}, false
}

// EncodeStatus splits a status into its discriminant and the two companion
// columns. Absent companions are nil.
func EncodeStatus(s Status) (kind string, date, check *string) {
	if s == nil {
		s = Waiting{}
	}
	if d, ok := StatusDate(s); ok {
		ds := d.Format(StatusDateLayout)
		date = &ds
	}
	if p, ok := s.(Paid); ok && p.Check != nil {
		c := *p.Check
		check = &c
	}
	return string(s.Kind()), date, check
}

// DecodeStatus rebuilds a status from its persisted columns. An unknown
// discriminant or a missing/unparsable companion date is ErrCorrupt.
func DecodeStatus(kind string, date, check *string) (Status, error) {
	parseDate := func() (time.Time, error) {
		if date == nil || *date == "" {
			return time.Time{}, fmt.Errorf("status %q without date: %w", kind, ErrCorrupt)
		}
		t, err := time.Parse(StatusDateLayout, *date)
		if err != nil {
			return time.Time{}, fmt.Errorf("status date %q: %w", *date, ErrCorrupt)
		}
		return t, nil
	}
	switch StatusKind(kind) {
	case StatusWaiting:
		return Waiting{}, nil
	case StatusPastDue:
		return PastDue{}, nil
	case StatusPaid:
		d, err := parseDate()
		if err != nil {
			return nil, err
		}
		p := Paid{Date: d}
		// Older rows stored a missing check as the literal "None".
		if check != nil && *check != "" && *check != "None" {
			c := *check
			p.Check = &c
		}
		return p, nil
	case StatusFailed:
		d, err := parseDate()
		if err != nil {
			return nil, err
		}
		return Failed{Date: d}, nil
	case StatusRefunded:
		d, err := parseDate()
		if err != nil {
			return nil, err
		}
		return Refunded{Date: d}, nil
	}
	return nil, fmt.Errorf("unknown status %q: %w", kind, ErrCorrupt)
}

// StatusValue is the JSON shape of a Status.
type StatusValue struct {
	Kind  StatusKind `json:"kind"`
	Date  string     `json:"date,omitempty"`
	Check *string    `json:"check,omitempty"`
}

// NewStatusValue converts a status to its JSON shape.
func NewStatusValue(s Status) StatusValue {
	kind, date, check := EncodeStatus(s)
	v := StatusValue{Kind: StatusKind(kind), Check: check}
	if date != nil {
		v.Date = *date
	}
	return v
}

// Status converts the JSON shape back, validating it. Errors are
// ErrValidation since the value comes from a caller.
func (v StatusValue) Status() (Status, error) {
	var date *string
	if v.Date != "" {
		date = &v.Date
	}
	s, err := DecodeStatus(string(v.Kind), date, v.Check)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s, nil
}

// Stage tells quotes and invoices apart.
type Stage string

const (
	StageQuote   Stage = "Quote"
	StageInvoice Stage = "Invoice"
)

// ParseStage decodes a persisted stage; anything else is ErrCorrupt.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageQuote, StageInvoice:
		return Stage(s), nil
	}
	return "", fmt.Errorf("unknown stage %q: %w", s, ErrCorrupt)
}

// Attributes are the display and payment flags of an invoice.
type Attributes struct {
	ShowMethods bool
	ShowNotes   bool
	Stage       Stage
	Status      Status
}

type attributesJSON struct {
	ShowMethods bool        `json:"show_methods"`
	ShowNotes   bool        `json:"show_notes"`
	Stage       Stage       `json:"stage"`
	Status      StatusValue `json:"status"`
}

// MarshalJSON flattens the status variant into StatusValue.
func (a Attributes) MarshalJSON() ([]byte, error) {
	return json.Marshal(attributesJSON{
		ShowMethods: a.ShowMethods,
		ShowNotes:   a.ShowNotes,
		Stage:       a.Stage,
		Status:      NewStatusValue(a.Status),
	})
}
