package models

import "time"

// RequestStatus tracks an incoming work request through triage.
type RequestStatus string

const (
	RequestStatusNew       RequestStatus = "new"
	RequestStatusReviewed  RequestStatus = "reviewed"
	RequestStatusConverted RequestStatus = "converted"
	RequestStatusDeclined  RequestStatus = "declined"
)

// Request is an incoming work request from a customer, the usual origin of
// a quote.
type Request struct {
	ID            int           `json:"id"`
	UserID        int           `json:"user_id"`
	CustomerID    int           `json:"customer_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        RequestStatus `json:"status"`
	PreferredDate *time.Time    `json:"preferred_date"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CreateRequestRequest represents the request body for creating a work request
type CreateRequestRequest struct {
	CustomerID    int        `json:"customer_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	PreferredDate *time.Time `json:"preferred_date"`
}

// UpdateRequestRequest represents the request body for updating a work request
type UpdateRequestRequest struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        RequestStatus `json:"status"`
	PreferredDate *time.Time    `json:"preferred_date"`
}
