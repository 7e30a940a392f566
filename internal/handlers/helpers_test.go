package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bankledger/internal/config"
	"bankledger/internal/models"
	"bankledger/internal/store"
	"bankledger/internal/websocket"
)

type stubTxRunner struct {
	mu sync.Mutex
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(nil)
}

type stubIdentityStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, name, email, passwordHash, role string) error
	getByEmailFn func(ctx context.Context, email string) (models.Identity, error)
	getByIDFn    func(ctx context.Context, userID string) (models.Identity, error)
	getByTokenFn func(ctx context.Context, token string) (models.Identity, error)
	setTokenFn   func(ctx context.Context, userID string, token *string) error
}

func (s *stubIdentityStore) Create(ctx context.Context, tx store.Execer, id, name, email, passwordHash, role string) error {
	return s.createFn(ctx, tx, id, name, email, passwordHash, role)
}

func (s *stubIdentityStore) GetByEmail(ctx context.Context, email string) (models.Identity, error) {
	if s.getByEmailFn == nil {
		return models.Identity{}, sql.ErrNoRows
	}
	return s.getByEmailFn(ctx, email)
}

func (s *stubIdentityStore) GetByID(ctx context.Context, userID string) (models.Identity, error) {
	return s.getByIDFn(ctx, userID)
}

func (s *stubIdentityStore) GetByToken(ctx context.Context, token string) (models.Identity, error) {
	if s.getByTokenFn == nil {
		return models.Identity{}, sql.ErrNoRows
	}
	return s.getByTokenFn(ctx, token)
}

func (s *stubIdentityStore) SetToken(ctx context.Context, userID string, token *string) error {
	return s.setTokenFn(ctx, userID, token)
}

type stubLedgerStore struct {
	currentBalanceFn func(ctx context.Context, userID string) (decimal.Decimal, error)
	historyFn        func(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error)
	statsFn          func(ctx context.Context, userID string) (store.Stats, error)
	allCustomersFn   func(ctx context.Context) ([]store.CustomerBalance, error)
	searchFn         func(ctx context.Context, pattern string) ([]store.CustomerBalance, error)
}

func (s *stubLedgerStore) CurrentBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.currentBalanceFn(ctx, userID)
}

func (s *stubLedgerStore) History(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	return s.historyFn(ctx, userID, limit)
}

func (s *stubLedgerStore) StatsForUser(ctx context.Context, userID string) (store.Stats, error) {
	return s.statsFn(ctx, userID)
}

func (s *stubLedgerStore) AllCustomersWithBalances(ctx context.Context) ([]store.CustomerBalance, error) {
	return s.allCustomersFn(ctx)
}

func (s *stubLedgerStore) SearchCustomers(ctx context.Context, pattern string) ([]store.CustomerBalance, error) {
	return s.searchFn(ctx, pattern)
}

type stubTransactionService struct {
	executeFn func(ctx context.Context, userID, kind string, amount decimal.Decimal) (models.LedgerEntry, error)
}

func (s *stubTransactionService) Execute(ctx context.Context, userID, kind string, amount decimal.Decimal) (models.LedgerEntry, error) {
	return s.executeFn(ctx, userID, kind, amount)
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:         "test",
		AllowedOrigins: "*",
		BcryptCost:     4,
		MaxDeposit:     decimal.NewFromInt(1000000),
		RequestTimeout: 5 * time.Second,
	}
}

func newTestRouter(identities *stubIdentityStore, ledger *stubLedgerStore, service *stubTransactionService) http.Handler {
	handler := New(&stubTxRunner{}, testConfig(), identities, ledger, service, websocket.NewHub())
	return handler.Routes()
}

// authenticatedIdentities routes any bearer token to the given identity.
func authenticatedIdentities(identity models.Identity) *stubIdentityStore {
	return &stubIdentityStore{
		getByTokenFn: func(ctx context.Context, token string) (models.Identity, error) {
			return identity, nil
		},
	}
}

func doRequest(t *testing.T, router http.Handler, method, target, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return body
}
