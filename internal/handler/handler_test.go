package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/repository"
	"github.com/aryan0dhankhar/workshop/internal/security/auth"
	"github.com/aryan0dhankhar/workshop/internal/service"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.Invalid("bad"), http.StatusBadRequest},
		{domain.NewRuleError(domain.ErrInvalidCredentials, "x"), http.StatusUnauthorized},
		{domain.NewRuleError(domain.ErrForbidden, "x"), http.StatusForbidden},
		{domain.NotFound("customer", 1), http.StatusNotFound},
		{domain.DuplicateRegistration("KA-01"), http.StatusConflict},
		{domain.NewRuleError(domain.ErrHasDependents, "x"), http.StatusConflict},
		{domain.NewRuleError(domain.ErrInvalidTransition, "x"), http.StatusConflict},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, quiet, "op", fmt.Errorf("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, rec.Body.String())
}

func newAuth(t *testing.T) (*AuthHandler, *HealthHandler) {
	t.Helper()
	store := repository.NewMemoryStore(repository.Fixtures{})
	authService := service.NewAuthService(store, store, auth.NewTokenManager("secret", ""), nil, quiet)
	health := NewHealthHandler(service.NewHealthService(store), authService, map[string]Pinger{"database": store, "redis": nil}, quiet)
	return NewAuthHandler(authService, false, quiet), health
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestLoginFlow(t *testing.T) {
	authH, healthH := newAuth(t)

	rec := httptest.NewRecorder()
	healthH.Seed(rec, httptest.NewRequest(http.MethodGet, "/api/seed", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	bad := post(authH.Login, `{"email":"admin@meghcomm.store","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, bad.Body.String())
	assert.Empty(t, bad.Result().Cookies())

	empty := post(authH.Login, `{"email":"admin@meghcomm.store","password":""}`)
	assert.Equal(t, http.StatusUnauthorized, empty.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, empty.Body.String())
	assert.Empty(t, empty.Result().Cookies())

	ok := post(authH.Login, `{"email":"admin@meghcomm.store","password":"admin123456"}`)
	require.Equal(t, http.StatusOK, ok.Code)
	var body struct {
		User domain.SessionUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(ok.Body.Bytes(), &body))
	assert.Equal(t, domain.RoleAdmin, body.User.Role)

	cookies := ok.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, auth.CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 7*24*60*60, c.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(c)
	sess := httptest.NewRecorder()
	authH.Session(sess, req)
	assert.Contains(t, sess.Body.String(), `"role":"ADMIN"`)

	anon := httptest.NewRecorder()
	authH.Session(anon, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
	assert.JSONEq(t, `{"user":null}`, anon.Body.String())

	out := post(authH.Logout, "")
	assert.Equal(t, http.StatusOK, out.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, out.Body.String())
	require.Len(t, out.Result().Cookies(), 1)
	assert.True(t, out.Result().Cookies()[0].MaxAge < 0)
}

func TestHealthPayload(t *testing.T) {
	_, healthH := newAuth(t)

	rec := httptest.NewRecorder()
	healthH.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "visit /api/seed")
	assert.Contains(t, rec.Body.String(), `"adminUserExists":false`)

	seed := httptest.NewRecorder()
	healthH.Seed(seed, httptest.NewRequest(http.MethodGet, "/api/seed", nil))
	assert.Contains(t, seed.Body.String(), `"status":"seeded"`)

	rec = httptest.NewRecorder()
	healthH.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Contains(t, rec.Body.String(), `"adminUserExists":true`)
	assert.Contains(t, rec.Body.String(), "admin@meghcomm.store / admin123456")
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestReady(t *testing.T) {
	_, healthH := newAuth(t)
	rec := httptest.NewRecorder()
	healthH.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"not configured"`)

	healthH.deps["database"] = downPinger{}
	rec = httptest.NewRecorder()
	healthH.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPagesHandler(t *testing.T) {
	stub := NewPagesHandler("")
	rec := httptest.NewRecorder()
	stub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))
	assert.JSONEq(t, `{"page":"/customers"}`, rec.Body.String())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	spa := NewPagesHandler(dir)

	rec = httptest.NewRecorder()
	spa.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vendors/3", nil))
	assert.Contains(t, rec.Body.String(), "app</html>")

	rec = httptest.NewRecorder()
	spa.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	assert.Contains(t, rec.Body.String(), "console.log")
}

func TestPathIDAcceptsFallbackIDs(t *testing.T) {
	for raw, want := range map[string]int64{"42": 42, "-2": -2} {
		r := httptest.NewRequest(http.MethodGet, "/api/customers/"+raw, nil)
		r.SetPathValue("id", raw)
		got, err := pathID(r)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	for _, raw := range []string{"0", "abc", ""} {
		r := httptest.NewRequest(http.MethodGet, "/api/customers/x", nil)
		r.SetPathValue("id", raw)
		_, err := pathID(r)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}
