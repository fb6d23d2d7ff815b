package security

import (
	"errors"
	"testing"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

func TestRolePermissions(t *testing.T) {
	as := NewAuthorizationService(nil)

	for _, p := range RolePermissions[domain.RoleAdmin] {
		if !as.HasPermission(domain.RoleAdmin, p) {
			t.Fatalf("admin should have %s", p)
		}
	}
	if as.HasPermission(domain.RoleUser, PermTransitionAppointment) {
		t.Fatalf("users must not transition appointments")
	}
	if as.HasPermission(domain.RoleUser, PermManageCustomers) {
		t.Fatalf("users must not manage customers")
	}
	if !as.HasPermission(domain.RoleUser, PermCreateAppointment) {
		t.Fatalf("users may book appointments")
	}
	if as.HasPermission(domain.Role("GUEST"), PermViewDashboard) {
		t.Fatalf("unknown roles have no permissions")
	}
}

func TestValidatePermissionIsForbidden(t *testing.T) {
	err := NewAuthorizationService(nil).ValidatePermission(domain.RoleUser, PermManageVendors)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
