package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"bankledger/internal/models"
)

// LedgerStore owns the append-only ledger_entries table. Entries are never
// updated or deleted; the current balance is always derived from the most
// recent row, never materialized anywhere else.
type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type Stats struct {
	Count            int64           `db:"count"`
	TotalDeposits    decimal.Decimal `db:"total_deposits"`
	TotalWithdrawals decimal.Decimal `db:"total_withdrawals"`
	CurrentBalance   decimal.Decimal `db:"current_balance"`
}

type CustomerBalance struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	Email          string          `db:"email"`
	CreatedAt      time.Time       `db:"created_at"`
	CurrentBalance decimal.Decimal `db:"current_balance"`
	EntryCount     int64           `db:"entry_count"`
}

// Append records one entry. The caller decides balance_after; the two steps
// must run back-to-back under the owning user's row lock (see the
// transaction service), which is why tx is required here.
func (s *LedgerStore) Append(ctx context.Context, tx Tx, userID, kind string, amount, balanceAfter decimal.Decimal) (models.LedgerEntry, error) {
	entry := models.LedgerEntry{
		UserID:       userID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}
	err := tx.GetContext(ctx, &entry, `
		INSERT INTO ledger_entries (user_id, kind, amount, balance_after)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, kind, amount, balance_after, created_at
	`, userID, kind, amount, balanceAfter)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	return entry, nil
}

// CurrentBalance derives the balance from the latest entry, zero when the
// user has none. Recomputed on every call, never cached.
func (s *LedgerStore) CurrentBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return latestBalance(ctx, s.db, userID)
}

// CurrentBalanceTx is CurrentBalance inside an open transaction, for the
// append protocol's read step.
func (s *LedgerStore) CurrentBalanceTx(ctx context.Context, tx Getter, userID string) (decimal.Decimal, error) {
	return latestBalance(ctx, tx, userID)
}

func latestBalance(ctx context.Context, g Getter, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := g.GetContext(ctx, &balance, `
		SELECT balance_after
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *LedgerStore) History(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, kind, amount, balance_after, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *LedgerStore) StatsForUser(ctx context.Context, userID string) (Stats, error) {
	var stats Stats
	err := s.db.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS count,
		       COALESCE(SUM(CASE WHEN kind = 'deposit' THEN amount ELSE 0 END), 0) AS total_deposits,
		       COALESCE(SUM(CASE WHEN kind = 'withdraw' THEN amount ELSE 0 END), 0) AS total_withdrawals,
		       COALESCE((
		           SELECT balance_after
		           FROM ledger_entries
		           WHERE user_id = $1
		           ORDER BY id DESC
		           LIMIT 1
		       ), 0) AS current_balance
		FROM ledger_entries
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// AllCustomersWithBalances pairs every customer identity with its derived
// balance and entry count, newest customers first.
func (s *LedgerStore) AllCustomersWithBalances(ctx context.Context) ([]CustomerBalance, error) {
	var rows []CustomerBalance
	err := s.db.SelectContext(ctx, &rows, `
		SELECT u.id,
		       u.name,
		       u.email,
		       u.created_at,
		       COALESCE((
		           SELECT l.balance_after
		           FROM ledger_entries l
		           WHERE l.user_id = u.id
		           ORDER BY l.id DESC
		           LIMIT 1
		       ), 0) AS current_balance,
		       (SELECT COUNT(*) FROM ledger_entries l WHERE l.user_id = u.id) AS entry_count
		FROM users u
		WHERE u.role = 'customer'
		ORDER BY u.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchCustomers matches name or email against term (caller supplies the
// %wrapped% pattern), at most 20 rows ordered by name.
func (s *LedgerStore) SearchCustomers(ctx context.Context, pattern string) ([]CustomerBalance, error) {
	var rows []CustomerBalance
	err := s.db.SelectContext(ctx, &rows, `
		SELECT u.id,
		       u.name,
		       u.email,
		       u.created_at,
		       COALESCE((
		           SELECT l.balance_after
		           FROM ledger_entries l
		           WHERE l.user_id = u.id
		           ORDER BY l.id DESC
		           LIMIT 1
		       ), 0) AS current_balance,
		       (SELECT COUNT(*) FROM ledger_entries l WHERE l.user_id = u.id) AS entry_count
		FROM users u
		WHERE u.role = 'customer'
		  AND (u.name ILIKE $1 OR u.email ILIKE $1)
		ORDER BY u.name ASC
		LIMIT 20
	`, pattern)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
