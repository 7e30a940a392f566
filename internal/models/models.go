package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleBanker   = "banker"
)

const (
	KindDeposit  = "deposit"
	KindWithdraw = "withdraw"
)

// ValidRole reports whether role is one of the two access classes.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleBanker
}

type Identity struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	AccessToken  *string   `db:"access_token" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// LedgerEntry is one immutable deposit or withdrawal. The store assigns id;
// ordering entries by id ascending yields the balance_after prefix-sum chain.
type LedgerEntry struct {
	ID           int64           `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"user_id"`
	Kind         string          `db:"kind" json:"type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	BalanceAfter decimal.Decimal `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
