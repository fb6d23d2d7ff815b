package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/security/auth"
)

func newAuthService(store domain.UserStore) (*AuthService, *auth.TokenManager) {
	tm := auth.NewTokenManager("secret", "")
	return NewAuthService(store, nil, tm, nil, testLogger), tm
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newAuthService(emptyStore())

	first, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedStatusSeeded, first.Status)
	assert.Len(t, first.Users, 2)

	second, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedStatusAlreadySeeded, second.Status)
	assert.Equal(t, AdminEmail, second.AdminEmail)
}

func TestLoginSeededAdmin(t *testing.T) {
	ctx := context.Background()
	s, tm := newAuthService(emptyStore())
	_, err := s.Seed(ctx)
	require.NoError(t, err)

	user, token, err := s.Login(ctx, AdminEmail, AdminPassword)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, "Workshop Admin", user.Name)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	session, err := s.Session(token)
	require.NoError(t, err)
	assert.Equal(t, user, session)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	ctx := context.Background()
	s, _ := newAuthService(emptyStore())
	_, err := s.Seed(ctx)
	require.NoError(t, err)

	_, _, wrongPassword := s.Login(ctx, AdminEmail, "nope")
	_, _, unknownEmail := s.Login(ctx, "ghost@meghcomm.store", AdminPassword)

	require.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginEmptyFieldsAreInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	s, _ := newAuthService(emptyStore())
	_, err := s.Seed(ctx)
	require.NoError(t, err)

	for _, tc := range []struct{ email, password string }{
		{AdminEmail, ""},
		{"", AdminPassword},
		{"", ""},
	} {
		_, token, err := s.Login(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "email=%q password=%q", tc.email, tc.password)
		assert.NotErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, token)
	}
}

type brokenUsers struct{ domain.UserStore }

func (brokenUsers) GetUserByEmail(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestSeedReportsStoreFailure(t *testing.T) {
	s, _ := newAuthService(brokenUsers{})
	_, err := s.Seed(context.Background())
	require.Error(t, err)
	assert.False(t, domain.IsBusinessError(err))
}

func TestSessionRejectsGarbage(t *testing.T) {
	s, _ := newAuthService(emptyStore())
	_, err := s.Session("garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = s.Session("")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
