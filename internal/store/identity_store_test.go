package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestIdentityStoreCreateInsertsAllColumns(t *testing.T) {
	dbx, mock := newMockDB(t)
	identities := NewIdentityStore(dbx)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("id-1", "Alice", "alice@example.com", "hash", "customer").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := identities.Create(context.Background(), dbx, "id-1", "Alice", "alice@example.com", "hash", "customer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIdentityStoreGetByTokenResolvesOwner(t *testing.T) {
	dbx, mock := newMockDB(t)
	identities := NewIdentityStore(dbx)

	token := "aabbccddeeff00112233445566778899aabb"
	mock.ExpectQuery("WHERE access_token").
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "access_token", "created_at"}).
			AddRow("id-1", "Alice", "alice@example.com", "hash", "customer", token, time.Now()))

	identity, err := identities.GetByToken(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "id-1" || identity.Role != "customer" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.AccessToken == nil || *identity.AccessToken != token {
		t.Fatalf("expected token on identity")
	}
}

func TestIdentityStoreGetByTokenUnknownToken(t *testing.T) {
	dbx, mock := newMockDB(t)
	identities := NewIdentityStore(dbx)

	mock.ExpectQuery("WHERE access_token").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	if _, err := identities.GetByToken(context.Background(), "nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestIdentityStoreSetTokenOverwritesAndClears(t *testing.T) {
	dbx, mock := newMockDB(t)
	identities := NewIdentityStore(dbx)

	token := "newtoken"
	mock.ExpectExec("UPDATE users").
		WithArgs(token, "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := identities.SetToken(context.Background(), "id-1", &token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE users").
		WithArgs(nil, "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := identities.SetToken(context.Background(), "id-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIdentityStoreLockForUpdateUsesRowLock(t *testing.T) {
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected FOR UPDATE, got: %s", query)
			}
			if len(args) != 1 || args[0] != "id-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*string) = "id-1"
			return nil
		},
	}
	identities := NewIdentityStore(stubDB{})
	if err := identities.LockForUpdate(context.Background(), getter, "id-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIdentityStoreLockForUpdateUnknownUser(t *testing.T) {
	getter := stubGetter{
		getFn: func(context.Context, any, string, ...any) error {
			return sql.ErrNoRows
		},
	}
	identities := NewIdentityStore(stubDB{})
	if err := identities.LockForUpdate(context.Background(), getter, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
