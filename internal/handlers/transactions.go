package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"bankledger/internal/middleware"
	"bankledger/internal/models"
	"bankledger/internal/money"
	"bankledger/internal/services"
)

const defaultHistoryLimit = 50

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	balance, err := h.ledger.CurrentBalance(r.Context(), identity.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"balance": money.Format(balance),
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"), defaultHistoryLimit)
	entries, err := h.ledger.History(r.Context(), identity.ID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	transactions := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		transactions = append(transactions, entryPayload(entry))
	}
	respondData(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	stats, err := h.ledger.StatsForUser(r.Context(), identity.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"total_transactions": stats.Count,
		"total_deposits":     money.Format(stats.TotalDeposits),
		"total_withdrawals":  money.Format(stats.TotalWithdrawals),
		"current_balance":    money.Format(stats.CurrentBalance),
	})
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, models.KindDeposit, "Deposit successful")
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, models.KindWithdraw, "Withdrawal successful")
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, kind, successMessage string) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Valid amount greater than 0 is required")
		return
	}
	entry, err := h.service.Execute(r.Context(), identity.ID, kind, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			respondError(w, http.StatusBadRequest, "Valid amount greater than 0 is required")
		case errors.Is(err, services.ErrDepositLimit):
			respondError(w, http.StatusBadRequest, "Deposit amount cannot exceed $1,000,000")
		case errors.Is(err, services.ErrInsufficientFunds):
			respondError(w, http.StatusBadRequest, "Insufficient funds")
		default:
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	respondMessage(w, http.StatusOK, successMessage, map[string]any{
		"transaction": entryPayload(entry),
	})
}

func parseLimit(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
