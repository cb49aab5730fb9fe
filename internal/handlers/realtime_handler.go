package handlers

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/realtime"
	"crm-backend/pkg/utils"
)

type RealtimeHandler struct {
	Hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub}
}

// Subscribe upgrades the connection to a websocket and streams change events
// for the authenticated user's records.
func (h *RealtimeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	h.Hub.Subscribe(w, r, userID)
}
