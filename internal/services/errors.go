package services

import (
	"errors"
	"fmt"

	"crm-backend/internal/models"
)

// ErrNotFound signals a missing record or one not owned by the caller.
// Handlers map it to 404.
var ErrNotFound = errors.New("record not found")

// TransitionError is returned when a status change falls outside the
// allowed-transition table. Handlers map it to 422 and surface the allowed
// next states so the client can recover.
type TransitionError struct {
	From    models.QuoteStatus
	To      models.QuoteStatus
	Allowed []models.QuoteStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change quote status from %q to %q (allowed: %v)", e.From, e.To, e.Allowed)
}

// ValidationError carries a user-facing message for a malformed request.
// Handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
