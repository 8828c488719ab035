package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripmate/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, userID, role string, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		Email:  userID + "@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret())
	require.NoError(t, err)
	return token
}

func TestAuthenticateMissingToken(t *testing.T) {
	called := false
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/api/profile", nil), nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestAuthenticateBadFormatAndExpired(t *testing.T) {
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {})

	r := httptest.NewRequest("GET", "/api/profile", nil)
	r.Header.Set("Authorization", "token-without-scheme")
	w := httptest.NewRecorder()
	handler(w, r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r = httptest.NewRequest("GET", "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer "+mintToken(t, "u1", "USER", -time.Minute))
	w = httptest.NewRecorder()
	handler(w, r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatePutsClaimsInContext(t *testing.T) {
	var gotUserID, gotEmail, gotRole string
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUserID, _ = r.Context().Value(globals.UserIDKey).(string)
		gotEmail, _ = r.Context().Value(globals.EmailKey).(string)
		gotRole, _ = r.Context().Value(globals.RoleKey).(string)
	})

	r := httptest.NewRequest("GET", "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer "+mintToken(t, "u1", "USER", time.Hour))
	w := httptest.NewRecorder()
	handler(w, r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", gotUserID)
	assert.Equal(t, "u1@example.com", gotEmail)
	assert.Equal(t, "USER", gotRole)
}

func TestRequireRoles(t *testing.T) {
	called := false
	handler := Authenticate(RequireRoles(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	}, "ADMIN"))

	r := httptest.NewRequest("DELETE", "/api/users/u2", nil)
	r.Header.Set("Authorization", "Bearer "+mintToken(t, "u1", "USER", time.Hour))
	w := httptest.NewRecorder()
	handler(w, r, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)

	r = httptest.NewRequest("DELETE", "/api/users/u2", nil)
	r.Header.Set("Authorization", "Bearer "+mintToken(t, "u1", "ADMIN", time.Hour))
	w = httptest.NewRecorder()
	handler(w, r, nil)
	assert.True(t, called)
}
