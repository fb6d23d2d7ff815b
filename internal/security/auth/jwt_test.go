package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

var admin = domain.SessionUser{ID: "u-1", Email: "admin@meghcomm.store", Name: "Workshop Admin", Role: domain.RoleAdmin}

func TestGenerateAndValidate(t *testing.T) {
	tm := NewTokenManager("secret", "")
	token, err := tm.GenerateToken(admin, time.Hour)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin, claims.SessionUser())
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("one", "").GenerateToken(admin, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenManager("two", "").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", "")
	issued := time.Now().Add(-2 * time.Hour)
	tm.now = func() time.Time { return issued }
	token, err := tm.GenerateToken(admin, time.Hour)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestGenerateRequiresIdentity(t *testing.T) {
	_, err := NewTokenManager("secret", "").GenerateToken(domain.SessionUser{}, time.Hour)
	assert.Error(t, err)
}

func TestSessionCookieAttributes(t *testing.T) {
	c := SessionCookie("tok", true)
	assert.Equal(t, "session", c.Name)
	assert.Equal(t, 604800, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	cleared := ClearSessionCookie(false)
	assert.Less(t, cleared.MaxAge, 0)
	assert.False(t, cleared.Secure)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(r))
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "abc"})
	assert.Equal(t, "abc", TokenFromRequest(r))
}
