package dto

import (
	"time"

	"stockledger/internal/domain/auth"
)

// LoginRequest represents login request.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Username: r.Username, Password: r.Password}
}

// ChangePasswordRequest represents a password change of the current user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// TokenResponse represents an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// UserResponse represents user in API responses.
type UserResponse struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	FullName            string     `json:"fullName,omitempty"`
	Role                string     `json:"role"`
	AssignedWarehouseID *string    `json:"assignedWarehouseId,omitempty"`
	EmployeeID          *string    `json:"employeeId,omitempty"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
}

// LoginResponse represents login response.
type LoginResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// FromToken converts an issued token.
func FromToken(t *auth.Token) TokenResponse {
	return TokenResponse{AccessToken: t.AccessToken, TokenType: t.TokenType, ExpiresAt: t.ExpiresAt}
}

// FromUser converts user to response.
func FromUser(u *auth.User) UserResponse {
	return UserResponse{
		ID:                  u.ID.String(),
		Username:            u.Username,
		FullName:            u.FullName,
		Role:                u.Role,
		AssignedWarehouseID: u.AssignedWarehouseID,
		EmployeeID:          u.EmployeeID,
		LastLoginAt:         u.LastLoginAt,
	}
}
