// Package context carries request-scoped values: the request meta and the authenticated user.
package context

import (
	"context"
)

// UserContext is the authenticated user as decoded from the access token.
// AssignedWarehouse and EmployeeID are empty for admins.
type UserContext struct {
	UserID            string
	Username          string
	FullName          string
	Role              string
	AssignedWarehouse string
	EmployeeID        string
}

type userKey struct{}

// WithUser stores user on ctx.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser returns the user on ctx, or nil.
func GetUser(ctx context.Context) *UserContext {
	u, _ := ctx.Value(userKey{}).(*UserContext)
	return u
}
