package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"bankledger/internal/middleware"
	"bankledger/internal/websocket"
)

// WSBalance upgrades to a websocket that receives the caller's balance after
// every successful deposit or withdrawal. Browsers cannot set headers on
// websocket requests, so the token may also arrive as a query parameter.
func (h *Handler) WSBalance(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if bearer, ok := middleware.BearerToken(r); ok {
			token = bearer
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Access token required")
		return
	}
	identity, err := h.identities.GetByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusForbidden, "Invalid or expired token")
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	websocket.ServeWS(w, r, h.hub, identity.ID)
}
