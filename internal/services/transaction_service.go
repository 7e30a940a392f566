package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bankledger/internal/db"
	"bankledger/internal/models"
	"bankledger/internal/money"
	"bankledger/internal/store"
	"bankledger/internal/websocket"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrDepositLimit      = errors.New("deposit amount exceeds the maximum")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrUnknownUser       = errors.New("unknown user")
)

type IdentityStore interface {
	LockForUpdate(ctx context.Context, tx store.Getter, userID string) error
}

type LedgerStore interface {
	CurrentBalanceTx(ctx context.Context, tx store.Getter, userID string) (decimal.Decimal, error)
	Append(ctx context.Context, tx store.Tx, userID, kind string, amount, balanceAfter decimal.Decimal) (models.LedgerEntry, error)
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

// TransactionService converts deposit/withdraw requests into ledger entries.
// The read-balance, funds check and append all run inside one serializable
// transaction holding a lock on the owning user row, so two concurrent
// operations for the same user can never both compute from the same stale
// balance. Operations for different users do not contend.
type TransactionService struct {
	txRunner   db.TxRunner
	identities IdentityStore
	ledger     LedgerStore
	hub        BalanceHub
	maxDeposit decimal.Decimal
}

func NewTransactionService(txRunner db.TxRunner, identities IdentityStore, ledger LedgerStore, hub BalanceHub, maxDeposit decimal.Decimal) *TransactionService {
	return &TransactionService{
		txRunner:   txRunner,
		identities: identities,
		ledger:     ledger,
		hub:        hub,
		maxDeposit: maxDeposit,
	}
}

func (s *TransactionService) Execute(ctx context.Context, userID, kind string, amount decimal.Decimal) (models.LedgerEntry, error) {
	if kind != models.KindDeposit && kind != models.KindWithdraw {
		return models.LedgerEntry{}, ErrInvalidKind
	}
	if err := money.Validate(amount); err != nil {
		return models.LedgerEntry{}, ErrInvalidAmount
	}
	if kind == models.KindDeposit && amount.GreaterThan(s.maxDeposit) {
		return models.LedgerEntry{}, ErrDepositLimit
	}

	var entry models.LedgerEntry
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.identities.LockForUpdate(ctx, tx, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUnknownUser
			}
			return err
		}
		balance, err := s.ledger.CurrentBalanceTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		var newBalance decimal.Decimal
		switch kind {
		case models.KindDeposit:
			newBalance = balance.Add(amount)
		case models.KindWithdraw:
			if amount.GreaterThan(balance) {
				return ErrInsufficientFunds
			}
			newBalance = balance.Sub(amount)
		}
		entry, err = s.ledger.Append(ctx, tx, userID, kind, amount, newBalance)
		return err
	})
	if err != nil {
		return models.LedgerEntry{}, err
	}
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		Balance: money.Format(entry.BalanceAfter),
	})
	return entry, nil
}
