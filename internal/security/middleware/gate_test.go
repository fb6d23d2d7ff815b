package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/security/auth"
)

func TestIsProtected(t *testing.T) {
	protected := []string{
		"/", "/dashboard", "/customers", "/customers/12", "/vendors/new", "/service-history",
		"/services", "/settings/profile", "/reports", "/inventory", "/jobs/3",
	}
	public := []string{
		"/login", "/api/customers", "/api/auth/login", "/about", "/customersx",
		"/_next/static/chunk.js", "/_next/image", "/favicon.ico", "/grid.svg", "/customers/logo.png",
	}
	for _, p := range protected {
		assert.True(t, IsProtected(p), p)
	}
	for _, p := range public {
		assert.False(t, IsProtected(p), p)
	}
}

func serveGate(t *testing.T, opts GateOptions, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	h := SessionGate(opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionGateRedirectsWithoutCookie(t *testing.T) {
	rec := serveGate(t, GateOptions{}, "/customers", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestSessionGatePresenceOnly(t *testing.T) {
	rec := serveGate(t, GateOptions{}, "/customers", &http.Cookie{Name: auth.CookieName, Value: "not-a-jwt"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionGatePublicPathsNeverRedirect(t *testing.T) {
	for _, p := range []string{"/login", "/api/customers", "/grid.svg", "/about"} {
		rec := serveGate(t, GateOptions{}, p, nil)
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
}

func TestSessionGateStrictValidatesToken(t *testing.T) {
	tm := auth.NewTokenManager("secret", "")
	opts := GateOptions{Tokens: tm}

	rec := serveGate(t, opts, "/dashboard", &http.Cookie{Name: auth.CookieName, Value: "forged"})
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	token, err := tm.GenerateToken(domain.SessionUser{ID: "1", Email: "a@b.c", Role: domain.RoleUser}, time.Hour)
	require.NoError(t, err)
	rec = serveGate(t, opts, "/dashboard", &http.Cookie{Name: auth.CookieName, Value: token})
	assert.Equal(t, http.StatusOK, rec.Code)
}
