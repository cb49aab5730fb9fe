package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus is the state variable of the quote lifecycle state machine.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// quoteTransitions is the full allowed-transition table. accepted, rejected
// and expired are not terminal: each may be reverted to sent. No other
// transitions exist, including out of draft except to sent.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:    {QuoteStatusSent},
	QuoteStatusSent:     {QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired},
	QuoteStatusAccepted: {QuoteStatusSent},
	QuoteStatusRejected: {QuoteStatusSent},
	QuoteStatusExpired:  {QuoteStatusSent},
}

// IsValid reports whether s is a known quote status.
func (s QuoteStatus) IsValid() bool {
	_, ok := quoteTransitions[s]
	return ok
}

// CanTransition reports whether the status machine allows moving to target.
func (s QuoteStatus) CanTransition(target QuoteStatus) bool {
	for _, next := range quoteTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s.
func (s QuoteStatus) NextStatuses() []QuoteStatus {
	next := quoteTransitions[s]
	out := make([]QuoteStatus, len(next))
	copy(out, next)
	return out
}

type Quote struct {
	ID            int          `json:"id"`
	UserID        int          `json:"user_id"`
	CustomerID    int          `json:"customer_id"`
	RequestID     *int         `json:"request_id"`
	QuoteNumber   string       `json:"quote_number"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        QuoteStatus  `json:"status"`
	SubtotalCents int64        `json:"subtotal_cents"`
	TaxCents      int64        `json:"tax_cents"`
	TotalCents    int64        `json:"total_cents"`
	ValidUntil    *time.Time   `json:"valid_until"`
	Items         []*QuoteItem `json:"items"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type QuoteItem struct {
	ID             int    `json:"id"`
	QuoteID        int    `json:"quote_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
	SortOrder      int    `json:"sort_order"`
}

// Subtotal returns the subtotal as a decimal amount in major units.
func (q *Quote) Subtotal() decimal.Decimal {
	return decimal.New(q.SubtotalCents, -2)
}

// Tax returns the tax as a decimal amount in major units.
func (q *Quote) Tax() decimal.Decimal {
	return decimal.New(q.TaxCents, -2)
}

// Total returns the total as a decimal amount in major units.
func (q *Quote) Total() decimal.Decimal {
	return decimal.New(q.TotalCents, -2)
}

// LineTotal returns the line total as a decimal amount in major units.
func (i *QuoteItem) LineTotal() decimal.Decimal {
	return decimal.New(i.LineTotalCents, -2)
}

// NewQuoteItem is a line item as submitted by the client. Line items are
// replaced wholesale on every quote save, never patched individually.
type NewQuoteItem struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// SaveQuoteRequest represents the request body for creating or updating a quote
type SaveQuoteRequest struct {
	CustomerID  int             `json:"customer_id"`
	RequestID   *int            `json:"request_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TaxCents    int64           `json:"tax_cents"`
	ValidUntil  *time.Time      `json:"valid_until"`
	Items       []*NewQuoteItem `json:"items"`
}

// ChangeQuoteStatusRequest carries the target status for a lifecycle transition
type ChangeQuoteStatusRequest struct {
	Status QuoteStatus `json:"status"`
}

// ConvertQuoteRequest carries user overrides for the derived job payload.
// Zero-valued fields fall back to the derived defaults.
type ConvertQuoteRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ScheduledDate  *time.Time `json:"scheduled_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	Notes          string     `json:"notes"`
}

// JobDraft is the job creation payload derived from an accepted quote,
// returned to the client for editing before confirmation.
type JobDraft struct {
	CustomerID     int       `json:"customer_id"`
	QuoteID        int       `json:"quote_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ScheduledDate  time.Time `json:"scheduled_date"`
	EstimatedHours *float64  `json:"estimated_hours"`
	Notes          string    `json:"notes"`
}
