package models

import "time"

// SentEmail is one row of the transactional email audit trail.
type SentEmail struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	DocumentType string    `json:"document_type"` // "quote" or "invoice"
	DocumentID   int       `json:"document_id"`
	Recipients   string    `json:"recipients"`
	Subject      string    `json:"subject"`
	ProviderID   string    `json:"provider_id"`
	Status       string    `json:"status"` // "sent" or "failed"
	ErrorMessage string    `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}
