package models

import (
	"encoding/json"
	"time"
)

type PaymentIntentStatus string

const (
	PaymentIntentCreated PaymentIntentStatus = "created"
	PaymentIntentPaid    PaymentIntentStatus = "paid"
	PaymentIntentFailed  PaymentIntentStatus = "failed"
)

// PaymentIntent records one payment attempt against an invoice, backed by a
// provider order.
type PaymentIntent struct {
	ID              int                 `json:"id"`
	UserID          int                 `json:"user_id"`
	InvoiceID       int                 `json:"invoice_id"`
	ProviderOrderID string              `json:"provider_order_id"`
	AmountCents     int64               `json:"amount_cents"`
	Currency        string              `json:"currency"`
	Status          PaymentIntentStatus `json:"status"`
	Metadata        json.RawMessage     `json:"metadata"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// CreatePaymentIntentRequest represents the request body for creating a payment intent
type CreatePaymentIntentRequest struct {
	InvoiceID int             `json:"invoice_id"`
	Metadata  json.RawMessage `json:"metadata"`
}

// PaymentIntentResponse is returned to the client to drive checkout
type PaymentIntentResponse struct {
	IntentID        int    `json:"intent_id"`
	ProviderOrderID string `json:"provider_order_id"`
	KeyID           string `json:"key_id"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
}

// VerifyPaymentRequest carries the provider's signed checkout result
type VerifyPaymentRequest struct {
	ProviderOrderID   string `json:"provider_order_id"`
	ProviderPaymentID string `json:"provider_payment_id"`
	Signature         string `json:"signature"`
}
