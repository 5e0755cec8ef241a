package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/auth"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		Token: dto.FromToken(token),
		User:  dto.FromUser(user),
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}

	user, err := h.service.Me(c.Request.Context(), caller.UserID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUser(user))
}

// ChangePassword handles POST /auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := h.Caller(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), caller.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "password changed")
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/login", h.Login)

	protected.GET("/me", h.Me)
	protected.POST("/password", h.ChangePassword)
}
