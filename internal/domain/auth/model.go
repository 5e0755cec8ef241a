package auth

import (
	"strings"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/security"
)

// User is a login account. Staff accounts are bound to at most one warehouse.
type User struct {
	ID                  id.ID      `db:"id" json:"id"`
	Username            string     `db:"username" json:"username"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	FullName            string     `db:"full_name" json:"fullName,omitempty"`
	Role                string     `db:"role" json:"role"`
	AssignedWarehouseID *string    `db:"assigned_warehouse_id" json:"assignedWarehouseId,omitempty"`
	EmployeeID          *string    `db:"employee_id" json:"employeeId,omitempty"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
}

// NewUser creates a new user.
func NewUser(username, passwordHash string, role security.Role) *User {
	now := time.Now()
	return &User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         string(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates user data.
func (u *User) Validate() error {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	if !security.Role(u.Role).Valid() {
		return apperror.NewValidation("unknown role").WithDetail("role", u.Role)
	}
	return nil
}

// IsLocked returns true if account is locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if maxAttempts > 0 && u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now()
	u.LastLoginAt = &now
}

// Caller returns the caller context this account acts as.
func (u *User) Caller() security.CallerContext {
	c := security.CallerContext{
		UserID:   u.ID.String(),
		Username: u.Username,
		Role:     security.Role(u.Role),
	}
	if c.Role == security.RoleStaff {
		c.AssignedWarehouse = deref(u.AssignedWarehouseID)
		c.EmployeeID = deref(u.EmployeeID)
		if c.EmployeeID == "" {
			c.EmployeeID = security.EmployeeFor(u.Username)
		}
	}
	return c
}

// Credentials for login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}
