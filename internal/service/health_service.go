package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

// AdminSummary is the non-secret view of the seeded admin account
type AdminSummary struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

// HealthReport describes the database contents behind /api/health
type HealthReport struct {
	Users           int
	Vehicles        int
	Parts           int
	AdminUserExists bool
	AdminUser       *AdminSummary
}

// HealthService inspects the primary store directly so outages are reported
// rather than masked by fallback data.
type HealthService struct {
	store domain.Store
}

func NewHealthService(store domain.Store) *HealthService {
	return &HealthService{store: store}
}

// Report counts users, vehicles and parts and looks up the admin account
func (s *HealthService) Report(ctx context.Context) (*HealthReport, error) {
	r := &HealthReport{}
	for entity, dst := range map[domain.Entity]*int{
		domain.EntityUsers:    &r.Users,
		domain.EntityVehicles: &r.Vehicles,
		domain.EntityParts:    &r.Parts,
	} {
		n, err := s.store.Count(ctx, entity)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", entity, err)
		}
		*dst = n
	}

	admin, err := s.store.GetUserByEmail(ctx, AdminEmail)
	switch {
	case err == nil:
		r.AdminUserExists = true
		r.AdminUser = &AdminSummary{Email: admin.Email, Name: admin.Name, Role: admin.Role}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	return r, nil
}

// Ready pings the store
func (s *HealthService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
