package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"bankledger/internal/models"
	"bankledger/internal/store"
)

type IdentityStore interface {
	Create(ctx context.Context, tx store.Execer, id, name, email, passwordHash, role string) error
	GetByEmail(ctx context.Context, email string) (models.Identity, error)
	GetByID(ctx context.Context, userID string) (models.Identity, error)
	GetByToken(ctx context.Context, token string) (models.Identity, error)
	SetToken(ctx context.Context, userID string, token *string) error
}

type LedgerStore interface {
	CurrentBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	History(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error)
	StatsForUser(ctx context.Context, userID string) (store.Stats, error)
	AllCustomersWithBalances(ctx context.Context) ([]store.CustomerBalance, error)
	SearchCustomers(ctx context.Context, pattern string) ([]store.CustomerBalance, error)
}

type TransactionService interface {
	Execute(ctx context.Context, userID, kind string, amount decimal.Decimal) (models.LedgerEntry, error)
}
