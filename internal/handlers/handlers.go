package handlers

import (
	"encoding/json"
	"net/http"

	"bankledger/internal/models"
	"bankledger/internal/money"
)

// Every response carries the {success, message?, data?} envelope; failures
// never leak internals beyond the message.

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

func respondMessage(w http.ResponseWriter, status int, message string, data any) {
	payload := map[string]any{
		"success": true,
		"message": message,
	}
	if data != nil {
		payload["data"] = data
	}
	writeJSON(w, status, payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func entryPayload(entry models.LedgerEntry) map[string]any {
	return map[string]any{
		"id":            entry.ID,
		"type":          entry.Kind,
		"amount":        money.Format(entry.Amount),
		"balance_after": money.Format(entry.BalanceAfter),
		"created_at":    entry.CreatedAt,
	}
}

func identityPayload(identity models.Identity) map[string]any {
	return map[string]any{
		"id":         identity.ID,
		"name":       identity.Name,
		"email":      identity.Email,
		"role":       identity.Role,
		"created_at": identity.CreatedAt,
	}
}
