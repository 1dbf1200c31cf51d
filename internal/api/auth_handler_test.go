package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/store"
)

type fakeUserStore struct {
	created   *domain.User
	byID      map[uuid.UUID]*domain.User
	byEmail   map[string]*domain.User
	listUsers []*domain.User
	createErr error
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) List(_ context.Context) ([]*domain.User, error) {
	return f.listUsers, nil
}

var _ store.UserStore = (*fakeUserStore)(nil)

// fakeJWTService issues deterministic token strings without signing.
type fakeJWTService struct {
	validClaims *auth.Claims
	validateErr error
}

func (f *fakeJWTService) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	return "access-" + userID.String(), nil
}

func (f *fakeJWTService) ValidateToken(_ context.Context, _ string) (*auth.Claims, error) {
	return f.validClaims, f.validateErr
}

func (f *fakeJWTService) GenerateRefreshToken(_ context.Context, userID uuid.UUID) (string, error) {
	return "refresh-" + userID.String(), nil
}

func (f *fakeJWTService) ValidateRefreshToken(_ context.Context, _ string) (*auth.Claims, error) {
	return f.validClaims, f.validateErr
}

var _ auth.JWTService = (*fakeJWTService)(nil)

type fakePasswordVerifier struct {
	err error
}

func (f *fakePasswordVerifier) Compare(_, _ string) error {
	return f.err
}

func newAuthRouter(users store.UserStore, jwt auth.JWTService, verifier auth.PasswordVerifier) http.Handler {
	handler := NewAuthHandler(users, jwt, verifier)

	r := chi.NewRouter()
	r.Post("/api/auth/register", handler.Register)
	r.Post("/api/auth/login", handler.Login)
	r.Post("/api/auth/refresh", handler.RefreshToken)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	t.Run("valid registration returns a token pair", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserStore{}
		router := newAuthRouter(users, &fakeJWTService{}, &fakePasswordVerifier{})

		rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
			`{"username":"dana","email":"Dana@Example.com","password":"hunter22"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, users.created)
		assert.Equal(t, "dana", users.created.Username)
		assert.Equal(t, "dana@example.com", users.created.Email, "email is lowercased")

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, users.created.ID, resp.UserID)
		assert.Equal(t, "dana", resp.Username)
		assert.Equal(t, "access-"+users.created.ID.String(), resp.AccessToken)
		assert.Equal(t, "refresh-"+users.created.ID.String(), resp.RefreshToken)
	})

	t.Run("duplicate email maps to 409", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserStore{createErr: store.ErrEmailExists}
		router := newAuthRouter(users, &fakeJWTService{}, &fakePasswordVerifier{})

		rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
			`{"username":"dana","email":"dana@example.com","password":"hunter22"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Email already exists", resp.Error)
	})

	t.Run("short password fails validation", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserStore{}
		router := newAuthRouter(users, &fakeJWTService{}, &fakePasswordVerifier{})

		rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
			`{"username":"dana","email":"dana@example.com","password":"pw"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, users.created)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	registered := &domain.User{
		ID:             uuid.New(),
		Username:       "dana",
		Email:          "dana@example.com",
		HashedPassword: "$2a$10$irrelevant",
	}

	t.Run("valid credentials return a token pair", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserStore{byEmail: map[string]*domain.User{registered.Email: registered}}
		router := newAuthRouter(users, &fakeJWTService{}, &fakePasswordVerifier{})

		rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
			`{"email":"dana@example.com","password":"hunter22"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, registered.ID, resp.UserID)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		t.Parallel()
		users := &fakeUserStore{byEmail: map[string]*domain.User{registered.Email: registered}}

		unknownRouter := newAuthRouter(users, &fakeJWTService{}, &fakePasswordVerifier{})
		unknownRec := doJSON(t, unknownRouter, http.MethodPost, "/api/auth/login",
			`{"email":"nobody@example.com","password":"hunter22"}`)

		wrongRouter := newAuthRouter(users, &fakeJWTService{},
			&fakePasswordVerifier{err: errors.New("mismatch")})
		wrongRec := doJSON(t, wrongRouter, http.MethodPost, "/api/auth/login",
			`{"email":"dana@example.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, unknownRec.Code)
		assert.Equal(t, http.StatusUnauthorized, wrongRec.Code)
		assert.JSONEq(t, unknownRec.Body.String(), wrongRec.Body.String(),
			"responses must not reveal whether the account exists")
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("valid refresh token yields a fresh pair", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		jwt := &fakeJWTService{validClaims: &auth.Claims{UserID: userID, TokenType: auth.TokenTypeRefresh}}
		router := newAuthRouter(&fakeUserStore{}, jwt, &fakePasswordVerifier{})

		rec := doJSON(t, router, http.MethodPost, "/api/auth/refresh",
			`{"refresh_token":"refresh-`+userID.String()+`"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp RefreshTokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "access-"+userID.String(), resp.AccessToken)
		assert.Equal(t, "refresh-"+userID.String(), resp.RefreshToken)
	})

	t.Run("expired refresh token maps to 401", func(t *testing.T) {
		t.Parallel()
		jwt := &fakeJWTService{validateErr: auth.ErrExpiredToken}
		router := newAuthRouter(&fakeUserStore{}, jwt, &fakePasswordVerifier{})

		rec := doJSON(t, router, http.MethodPost, "/api/auth/refresh",
			`{"refresh_token":"stale"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Token expired", resp.Error)
	})

	t.Run("missing refresh token fails validation", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(&fakeUserStore{}, &fakeJWTService{}, &fakePasswordVerifier{})

		rec := doJSON(t, router, http.MethodPost, "/api/auth/refresh", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
