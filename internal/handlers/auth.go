package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/middleware"
	"github.com/jboilerplate/portal/internal/services"
	"github.com/jboilerplate/portal/pkg/response"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req)
	switch {
	case err == nil:
		response.OK(c, gin.H{
			"token":     result.Token,
			"csrfToken": result.CSRFToken,
			"expireAt":  result.ExpireAt,
			"user":      result.User,
		})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUserDisabled):
		response.Unauthorized(c, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err)
	}
}

// GetCurrentUser returns the current logged-in user
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, gin.H{"user": user})
}

// Logout handles user logout (client-side token removal)
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	response.OK(c, gin.H{"message": "logged out successfully"})
}
