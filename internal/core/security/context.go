package security

import (
	"context"

	appctx "stockledger/internal/core/context"
)

type callerKey struct{}

// WithCaller adds the caller to context.
// Used by middleware to propagate the authenticated caller through the request chain.
func WithCaller(ctx context.Context, caller CallerContext) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom retrieves the caller from context.
// Falls back to the UserContext set by authentication when no caller was stored.
func CallerFrom(ctx context.Context) (CallerContext, bool) {
	if c, ok := ctx.Value(callerKey{}).(CallerContext); ok {
		return c, true
	}
	if u := appctx.GetUser(ctx); u != nil {
		return CallerFromUser(u), true
	}
	return CallerContext{}, false
}

// CallerFromUser builds a CallerContext from an authenticated user.
func CallerFromUser(u *appctx.UserContext) CallerContext {
	c := CallerContext{
		UserID:   u.UserID,
		Username: u.Username,
		Role:     Role(u.Role),
	}
	if c.Role == RoleStaff {
		c.AssignedWarehouse = u.AssignedWarehouse
		c.EmployeeID = u.EmployeeID
		if c.EmployeeID == "" {
			c.EmployeeID = EmployeeFor(u.Username)
		}
	}
	return c
}
