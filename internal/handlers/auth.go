package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/requestdata"
	"github.com/pathfinder-hq/pathfinder-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("invalid request body: %w", apierr.ErrValidation))
		return
	}
	result, err := ah.authService.Register(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, result)
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("invalid request body: %w", apierr.ErrValidation))
		return
	}
	result, err := ah.authService.Login(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		RespondError(c, fmt.Errorf("refresh_token is required: %w", apierr.ErrValidation))
		return
	}
	result, err := ah.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if err := ah.authService.Logout(c.Request.Context(), userID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"logged_out": true})
}
