package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"bankledger/internal/models"
	"bankledger/internal/money"
	"bankledger/internal/store"
)

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	customers, err := h.ledger.AllCustomersWithBalances(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	totalBalance := decimal.Zero
	var totalTransactions int64
	for _, customer := range customers {
		totalBalance = totalBalance.Add(customer.CurrentBalance)
		totalTransactions += customer.EntryCount
	}
	averageBalance := decimal.Zero
	if len(customers) > 0 {
		averageBalance = totalBalance.Div(decimal.NewFromInt(int64(len(customers)))).Round(2)
	}

	ranked := make([]store.CustomerBalance, len(customers))
	copy(ranked, customers)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CurrentBalance.GreaterThan(ranked[j].CurrentBalance)
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	topCustomers := make([]map[string]any, 0, len(ranked))
	for _, customer := range ranked {
		topCustomers = append(topCustomers, customerPayload(customer))
	}

	respondData(w, http.StatusOK, map[string]any{
		"overview": map[string]any{
			"total_customers":      len(customers),
			"total_system_balance": money.Format(totalBalance),
			"total_transactions":   totalTransactions,
			"average_balance":      money.Format(averageBalance),
		},
		"top_customers": topCustomers,
	})
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.ledger.AllCustomersWithBalances(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	payload := make([]map[string]any, 0, len(customers))
	for _, customer := range customers {
		payload = append(payload, customerPayload(customer))
	}
	respondData(w, http.StatusOK, map[string]any{
		"customers": payload,
		"count":     len(payload),
	})
}

func (h *Handler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if len(query) < 2 {
		respondError(w, http.StatusBadRequest, "Search query must be at least 2 characters long")
		return
	}
	customers, err := h.ledger.SearchCustomers(r.Context(), "%"+query+"%")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	payload := make([]map[string]any, 0, len(customers))
	for _, customer := range customers {
		payload = append(payload, customerPayload(customer))
	}
	respondData(w, http.StatusOK, map[string]any{
		"customers": payload,
		"count":     len(payload),
		"query":     query,
	})
}

func (h *Handler) CustomerDetails(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.findCustomer(w, r)
	if !ok {
		return
	}
	balance, err := h.ledger.CurrentBalance(r.Context(), customer.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	stats, err := h.ledger.StatsForUser(r.Context(), customer.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"customer": map[string]any{
			"id":         customer.ID,
			"name":       customer.Name,
			"email":      customer.Email,
			"created_at": customer.CreatedAt,
		},
		"balance": money.Format(balance),
		"stats": map[string]any{
			"total_transactions": stats.Count,
			"total_deposits":     money.Format(stats.TotalDeposits),
			"total_withdrawals":  money.Format(stats.TotalWithdrawals),
			"current_balance":    money.Format(stats.CurrentBalance),
		},
	})
}

func (h *Handler) CustomerTransactions(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.findCustomer(w, r)
	if !ok {
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"), defaultHistoryLimit)
	entries, err := h.ledger.History(r.Context(), customer.ID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	transactions := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		transactions = append(transactions, entryPayload(entry))
	}
	respondData(w, http.StatusOK, map[string]any{
		"customer": map[string]any{
			"id":    customer.ID,
			"name":  customer.Name,
			"email": customer.Email,
		},
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// findCustomer loads the {id} route param and enforces that the target is a
// customer; bankers are not inspectable through these views.
func (h *Handler) findCustomer(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	customerID := chi.URLParam(r, "id")
	if customerID == "" {
		respondError(w, http.StatusBadRequest, "Valid customer ID is required")
		return models.Identity{}, false
	}
	customer, err := h.identities.GetByID(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Customer not found")
			return models.Identity{}, false
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return models.Identity{}, false
	}
	if customer.Role != models.RoleCustomer {
		respondError(w, http.StatusNotFound, "Customer not found")
		return models.Identity{}, false
	}
	return customer, true
}

func customerPayload(customer store.CustomerBalance) map[string]any {
	return map[string]any{
		"id":                customer.ID,
		"name":              customer.Name,
		"email":             customer.Email,
		"created_at":        customer.CreatedAt,
		"current_balance":   money.Format(customer.CurrentBalance),
		"transaction_count": customer.EntryCount,
	}
}
