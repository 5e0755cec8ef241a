// Package security provides the warehouse access scoping rules.
package security

import (
	"fmt"

	"stockledger/internal/core/apperror"
)

// Role is the caller's role as supplied by the identity provider.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// AllWarehouses is the synthetic read-only view across every warehouse.
const AllWarehouses = "ALL"

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// CallerContext is the explicit caller identity every core operation receives.
type CallerContext struct {
	UserID   string
	Username string
	Role     Role

	// AssignedWarehouse is the single warehouse a staff caller is bound to.
	// Empty disables all warehouse-scoped mutation for staff.
	AssignedWarehouse string

	// EmployeeID stamps movements created by this caller.
	EmployeeID string
}

// IsAdmin reports whether the caller is unrestricted.
func (c CallerContext) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// AuthorizeMutation checks that the caller may write to warehouseID.
func (c CallerContext) AuthorizeMutation(warehouseID string) error {
	switch c.Role {
	case RoleAdmin:
		if warehouseID == "" || warehouseID == AllWarehouses {
			return apperror.NewValidation("a concrete warehouse is required").
				WithDetail("warehouse_id", warehouseID)
		}
		return nil
	case RoleStaff:
		if c.AssignedWarehouse == "" {
			return apperror.NewUnconfigured(c.Username)
		}
		if warehouseID != c.AssignedWarehouse {
			return apperror.NewForbidden(
				fmt.Sprintf("account may only operate on warehouse %s", c.AssignedWarehouse),
			).WithDetail("warehouse_id", warehouseID)
		}
		return nil
	default:
		return apperror.NewForbidden("unknown role").WithDetail("role", string(c.Role))
	}
}

// ResolveView returns the warehouse a read operation is filtered to.
// Admin: empty means AllWarehouses. Staff: empty or AllWarehouses means the
// bound warehouse; any other explicit warehouse is Forbidden.
func (c CallerContext) ResolveView(warehouseID string) (string, error) {
	switch c.Role {
	case RoleAdmin:
		if warehouseID == "" {
			return AllWarehouses, nil
		}
		return warehouseID, nil
	case RoleStaff:
		if c.AssignedWarehouse == "" {
			return "", apperror.NewUnconfigured(c.Username)
		}
		if warehouseID == "" || warehouseID == AllWarehouses || warehouseID == c.AssignedWarehouse {
			return c.AssignedWarehouse, nil
		}
		return "", apperror.NewForbidden(
			fmt.Sprintf("account may only view warehouse %s", c.AssignedWarehouse),
		).WithDetail("warehouse_id", warehouseID)
	default:
		return "", apperror.NewForbidden("unknown role").WithDetail("role", string(c.Role))
	}
}

// RequireAdmin returns Forbidden unless the caller is an administrator.
func (c CallerContext) RequireAdmin(action string) error {
	if c.IsAdmin() {
		return nil
	}
	return apperror.NewForbidden(fmt.Sprintf("%s requires administrator privilege", action)).
		WithDetail("action", action)
}

// StampEmployee returns the employee id to record on a movement.
// Staff always stamp their own id; admin may pass any id or none.
func (c CallerContext) StampEmployee(requested string) string {
	if c.Role == RoleStaff {
		return c.EmployeeID
	}
	return requested
}
