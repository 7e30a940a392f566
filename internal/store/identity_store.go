package store

import (
	"context"

	"bankledger/internal/models"
)

// IdentityStore owns the users table: credentials, role and the current
// session token. Tokens are opaque strings; a non-null token maps back to
// exactly one identity (unique column).
type IdentityStore struct {
	db DB
}

func NewIdentityStore(db DB) *IdentityStore {
	return &IdentityStore{db: db}
}

func (s *IdentityStore) Create(ctx context.Context, tx Execer, id, name, email, passwordHash, role string) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, id, name, email, passwordHash, role)
	return err
}

func (s *IdentityStore) GetByEmail(ctx context.Context, email string) (models.Identity, error) {
	var identity models.Identity
	err := s.db.GetContext(ctx, &identity, `
		SELECT id, name, email, password_hash, role, access_token, created_at
		FROM users
		WHERE email = $1
	`, email)
	return identity, err
}

func (s *IdentityStore) GetByID(ctx context.Context, userID string) (models.Identity, error) {
	var identity models.Identity
	err := s.db.GetContext(ctx, &identity, `
		SELECT id, name, email, password_hash, role, access_token, created_at
		FROM users
		WHERE id = $1
	`, userID)
	return identity, err
}

func (s *IdentityStore) GetByToken(ctx context.Context, token string) (models.Identity, error) {
	var identity models.Identity
	err := s.db.GetContext(ctx, &identity, `
		SELECT id, name, email, password_hash, role, access_token, created_at
		FROM users
		WHERE access_token = $1
	`, token)
	return identity, err
}

// SetToken overwrites the session token (login) or clears it (logout, nil).
func (s *IdentityStore) SetToken(ctx context.Context, userID string, token *string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET access_token = $1
		WHERE id = $2
	`, token, userID)
	return err
}

// LockForUpdate takes a row lock on the user, serializing concurrent ledger
// appends for that user while leaving other users untouched. Returns
// sql.ErrNoRows for unknown ids.
func (s *IdentityStore) LockForUpdate(ctx context.Context, tx Getter, userID string) error {
	var id string
	return tx.GetContext(ctx, &id, `
		SELECT id
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID)
}
