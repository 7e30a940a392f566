package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"bankledger/internal/config"
	"bankledger/internal/db"
	"bankledger/internal/middleware"
	"bankledger/internal/models"
	"bankledger/internal/websocket"
)

type Handler struct {
	txRunner   db.TxRunner
	cfg        config.Config
	identities IdentityStore
	ledger     LedgerStore
	service    TransactionService
	hub        *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, identities IdentityStore, ledger LedgerStore, service TransactionService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:   txRunner,
		cfg:        cfg,
		identities: identities,
		ledger:     ledger,
		service:    service,
		hub:        hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(h.cfg.RequestTimeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authGate := middleware.Auth(h.identities)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(authGate).Post("/logout", h.Logout)
		r.With(authGate).Get("/profile", h.Profile)
	})

	router.Route("/transactions", func(r chi.Router) {
		r.Use(authGate)
		r.Use(middleware.RequireRole(models.RoleCustomer))
		r.Get("/balance", h.Balance)
		r.Get("/history", h.History)
		r.Get("/stats", h.Stats)
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
	})

	router.Route("/banker", func(r chi.Router) {
		r.Use(authGate)
		r.Use(middleware.RequireRole(models.RoleBanker))
		r.Get("/dashboard", h.Dashboard)
		r.Get("/customers", h.ListCustomers)
		r.Get("/customers/search", h.SearchCustomers)
		r.Get("/customers/{id}", h.CustomerDetails)
		r.Get("/customers/{id}/transactions", h.CustomerTransactions)
	})

	router.Get("/ws/balance", h.WSBalance)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusOK, "bankledger API is running", nil)
	})
	return router
}
