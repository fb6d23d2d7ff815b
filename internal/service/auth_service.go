package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/observability/metrics"
	"github.com/aryan0dhankhar/workshop/internal/security/audit"
	"github.com/aryan0dhankhar/workshop/internal/security/auth"
)

// Seed accounts created by AuthService.Seed.
const (
	AdminEmail    = "admin@meghcomm.store"
	AdminPassword = "admin123456"
	UserEmail     = "user@meghcomm.store"
	UserPassword  = "user123456"

	bcryptCost = 10
)

// SeedStatus values returned by Seed
const (
	SeedStatusAlreadySeeded = "already_seeded"
	SeedStatusSeeded        = "seeded"
)

// SeedCredential is a seeded login handed back to the operator.
type SeedCredential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SeedResult reports what Seed did.
type SeedResult struct {
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	AdminEmail string           `json:"adminEmail,omitempty"`
	Users      []SeedCredential `json:"users,omitempty"`
}

// AuthService handles authentication operations
type AuthService struct {
	users  domain.UserStore
	seeds  domain.UserStore
	tokens *auth.TokenManager
	audit  *audit.Logger
	logger *slog.Logger
}

// NewAuthService creates a new authentication service. users serves logins;
// seeds is the store the seed accounts are written to and should not degrade,
// so seeding against an unreachable database reports the failure.
func NewAuthService(users, seeds domain.UserStore, tokens *auth.TokenManager, auditLog *audit.Logger, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	if seeds == nil {
		seeds = users
	}
	return &AuthService{
		users:  users,
		seeds:  seeds,
		tokens: tokens,
		audit:  auditLog,
		logger: logger,
	}
}

// Login verifies the credentials and returns the session identity with a
// signed token. Unknown emails and wrong passwords, empty ones included,
// yield the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.SessionUser, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		s.rejectLogin(ctx, email, "unknown_email")
		return domain.SessionUser{}, "", domain.NewRuleError(domain.ErrInvalidCredentials, "Invalid credentials")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("failed to load user", slog.String("error", err.Error()))
			return domain.SessionUser{}, "", fmt.Errorf("failed to load user: %w", err)
		}
		s.rejectLogin(ctx, email, "unknown_email")
		return domain.SessionUser{}, "", domain.NewRuleError(domain.ErrInvalidCredentials, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.rejectLogin(ctx, email, "wrong_password")
		return domain.SessionUser{}, "", domain.NewRuleError(domain.ErrInvalidCredentials, "Invalid credentials")
	}

	session := user.Session()
	token, err := s.tokens.GenerateToken(session, auth.SessionTTL)
	if err != nil {
		s.logger.Error("failed to sign session", slog.String("error", err.Error()))
		return domain.SessionUser{}, "", fmt.Errorf("failed to sign session: %w", err)
	}

	metrics.ObserveLogin("success")
	s.audit.LogLogin(ctx, email, "success")
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return session, token, nil
}

func (s *AuthService) rejectLogin(ctx context.Context, email, reason string) {
	metrics.ObserveLogin("failure")
	s.audit.LogLogin(ctx, email, "failure")
	s.logger.Info("login rejected", slog.String("reason", reason))
}

// Session returns the identity carried by a session token.
func (s *AuthService) Session(token string) (domain.SessionUser, error) {
	if token == "" {
		return domain.SessionUser{}, domain.NewRuleError(domain.ErrInvalidCredentials, "no session")
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return domain.SessionUser{}, domain.NewRuleError(domain.ErrInvalidCredentials, "invalid session")
	}
	return claims.SessionUser(), nil
}

// Seed creates the admin and demo user accounts unless the admin exists.
func (s *AuthService) Seed(ctx context.Context) (*SeedResult, error) {
	_, err := s.seeds.GetUserByEmail(ctx, AdminEmail)
	switch {
	case err == nil:
		return &SeedResult{
			Status:     SeedStatusAlreadySeeded,
			Message:    "Database is already seeded with admin user",
			AdminEmail: AdminEmail,
		}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to check admin user: %w", err)
	}

	accounts := []struct {
		email, name, password string
		role                  domain.Role
	}{
		{AdminEmail, "Workshop Admin", AdminPassword, domain.RoleAdmin},
		{UserEmail, "John Doe", UserPassword, domain.RoleUser},
	}

	result := &SeedResult{Status: SeedStatusSeeded, Message: "Database seeded successfully"}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		now := time.Now().UTC()
		user := &domain.User{
			ID:           uuid.NewString(),
			Email:        a.email,
			Name:         a.name,
			PasswordHash: string(hash),
			Role:         a.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.seeds.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", a.email, err)
		}
		result.Users = append(result.Users, SeedCredential{Email: a.email, Password: a.password})
	}

	s.audit.LogAction(ctx, "", "seed", "users", "", "success", fmt.Sprintf("%d accounts", len(accounts)))
	s.logger.Info("database seeded", slog.Int("users", len(accounts)))
	return result, nil
}
