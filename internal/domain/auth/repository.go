package auth

import (
	"context"

	"stockledger/internal/core/id"
)

// UserRepository defines user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Update stores login bookkeeping and the password hash.
	Update(ctx context.Context, user *User) error
}
