package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
	InvoiceStatusVoid  InvoiceStatus = "void"
)

type Invoice struct {
	ID            int            `json:"id"`
	UserID        int            `json:"user_id"`
	CustomerID    int            `json:"customer_id"`
	JobID         *int           `json:"job_id"`
	QuoteID       *int           `json:"quote_id"`
	InvoiceNumber string         `json:"invoice_number"`
	Status        InvoiceStatus  `json:"status"`
	SubtotalCents int64          `json:"subtotal_cents"`
	TaxCents      int64          `json:"tax_cents"`
	TotalCents    int64          `json:"total_cents"`
	DueDate       *time.Time     `json:"due_date"`
	PaidAt        *time.Time     `json:"paid_at"`
	Items         []*InvoiceItem `json:"items"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type InvoiceItem struct {
	ID             int    `json:"id"`
	InvoiceID      int    `json:"invoice_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
	SortOrder      int    `json:"sort_order"`
}

// Total returns the invoice total as a decimal amount in major units.
func (i *Invoice) Total() decimal.Decimal {
	return decimal.New(i.TotalCents, -2)
}

// NewInvoiceItem is a line item as submitted by the client
type NewInvoiceItem struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// SaveInvoiceRequest represents the request body for creating or updating an invoice
type SaveInvoiceRequest struct {
	CustomerID int               `json:"customer_id"`
	JobID      *int              `json:"job_id"`
	QuoteID    *int              `json:"quote_id"`
	TaxCents   int64             `json:"tax_cents"`
	DueDate    *time.Time        `json:"due_date"`
	Items      []*NewInvoiceItem `json:"items"`
}
