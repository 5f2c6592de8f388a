package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosala-erp/payroll-backend-go/internal/pkg/jwt"
)

func authTestRouter(jwtService jwt.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
	r.Use(AuthRequired(jwtService))
	r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestAuthRequired_ValidToken(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret-key", "1h")
	token, _, err := jwtService.GenerateAccessToken("user-1", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authTestRouter(jwtService).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired_MissingToken(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret-key", "1h")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	authTestRouter(jwtService).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret-key", "1h")
	token, _, err := jwtService.GenerateAccessToken("user-1", "admin")
	require.NoError(t, err)

	jwtService.RevokeToken(token)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authTestRouter(jwtService).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token revoked")
}

func TestAuthRequired_WrongSecret(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret-key", "1h")
	other := jwt.NewJWTService("another-secret", "1h")
	token, _, err := other.GenerateAccessToken("user-1", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authTestRouter(jwtService).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
