package handlers

import (
	"errors"
	"net/http"

	"crm-backend/internal/services"
	"crm-backend/pkg/utils"
)

// respondServiceError translates the service error taxonomy into HTTP status
// codes. Unknown errors become 500 without leaking internals.
func respondServiceError(w http.ResponseWriter, err error) {
	var transitionErr *services.TransitionError
	var validationErr *services.ValidationError

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "record not found")
	case errors.As(err, &transitionErr):
		utils.JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   transitionErr.Error(),
			"allowed": transitionErr.Allowed,
		})
	case errors.As(err, &validationErr):
		utils.Error(w, http.StatusBadRequest, validationErr.Message)
	default:
		utils.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
