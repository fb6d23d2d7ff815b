package security

import (
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermViewDashboard         Permission = "view_dashboard"
	PermViewCustomers         Permission = "view_customers"
	PermManageCustomers       Permission = "manage_customers"
	PermViewVehicles          Permission = "view_vehicles"
	PermViewVendors           Permission = "view_vendors"
	PermManageVendors         Permission = "manage_vendors"
	PermViewAppointments      Permission = "view_appointments"
	PermCreateAppointment     Permission = "create_appointment"
	PermTransitionAppointment Permission = "transition_appointment"
	PermViewServiceHistory    Permission = "view_service_history"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermViewDashboard,
		PermViewCustomers,
		PermManageCustomers,
		PermViewVehicles,
		PermViewVendors,
		PermManageVendors,
		PermViewAppointments,
		PermCreateAppointment,
		PermTransitionAppointment,
		PermViewServiceHistory,
	},
	domain.RoleUser: {
		PermViewDashboard,
		PermViewVehicles,
		PermViewAppointments,
		PermCreateAppointment,
		PermViewServiceHistory,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission returns a domain.ErrForbidden rule error when the role
// lacks the permission
func (as *AuthorizationService) ValidatePermission(role domain.Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return domain.NewRuleError(domain.ErrForbidden, "%s", fmt.Sprintf("permission denied: %s role cannot %s", role, permission))
	}
	return nil
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role domain.Role) []Permission {
	return RolePermissions[role]
}
