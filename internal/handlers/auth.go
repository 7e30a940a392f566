package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"bankledger/internal/auth"
	"bankledger/internal/middleware"
	"bankledger/internal/models"
	"bankledger/internal/validator"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}
	if err := validator.ValidateName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateRole(req.Role); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.identities.GetByEmail(r.Context(), req.Email); err == nil {
		respondError(w, http.StatusConflict, "User with this email already exists")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	passwordHash, err := auth.HashPassword(req.Password, h.cfg.BcryptCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to secure password")
		return
	}
	userID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.identities.Create(r.Context(), tx, userID, req.Name, req.Email, passwordHash, req.Role)
	})
	if err != nil {
		// The pre-check above races with concurrent registrations; the unique
		// constraint is the source of truth.
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondMessage(w, http.StatusCreated, "User registered successfully", map[string]any{
		"user_id": userID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if err := validator.ValidateRole(req.Role); err != nil {
		respondError(w, http.StatusBadRequest, "Valid role (customer or banker) is required")
		return
	}
	identity, err := h.identities.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if identity.Role != req.Role {
		respondError(w, http.StatusUnauthorized, "Invalid credentials for this role")
		return
	}
	if !auth.CheckPassword(identity.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token, err := auth.GenerateToken()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	// A new login overwrites the previous token, invalidating older sessions.
	if err := h.identities.SetToken(r.Context(), identity.ID, &token); err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondMessage(w, http.StatusOK, "Login successful", map[string]any{
		"user": map[string]any{
			"id":    identity.ID,
			"name":  identity.Name,
			"email": identity.Email,
			"role":  identity.Role,
		},
		"access_token": token,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := h.identities.SetToken(r.Context(), identity.ID, nil); err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondMessage(w, http.StatusOK, "Logout successful", nil)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"user": identityPayload(identity),
	})
}
