package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/collab-docs-api/internal/constants"
	"github.com/yukikurage/collab-docs-api/internal/dto"
	apierrors "github.com/yukikurage/collab-docs-api/internal/errors"
	"github.com/yukikurage/collab-docs-api/internal/middleware"
	"github.com/yukikurage/collab-docs-api/internal/services"
)

// UserHandler coordinates registration, login and profile handlers.
type UserHandler struct {
	authService *services.AuthService
	transport   middleware.TokenTransport
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService, transport middleware.TokenTransport) *UserHandler {
	return &UserHandler{
		authService: authService,
		transport:   transport,
	}
}

// Register creates a new user.
func (h *UserHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Fullname string `json:"fullname" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "fullname, email and password are required")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user and hands the session token to the transport.
func (h *UserHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "email and password are required")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	if err := h.transport.Issue(c, token, h.authService.TokenTTL()); err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	response := dto.LoginResponse{User: dto.ToUserDTO(*user)}
	if h.transport.RevealsToken() {
		response.Token = token
	}
	c.JSON(http.StatusOK, response)
}

// Logout revokes the presented token and clears it from the client.
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetToken(c)); err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	if err := h.transport.Clear(c); err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Update patches the authenticated user's profile.
func (h *UserHandler) Update(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateUserRequest struct {
		Fullname *string `json:"fullname"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateUser(c.Request.Context(), userID, services.UpdateUserInput{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Delete removes the authenticated user and ends the session.
func (h *UserHandler) Delete(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.authService.DeleteUser(c.Request.Context(), userID); err != nil {
		respondUserError(c, err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), middleware.GetToken(c)); err != nil {
		_ = c.Error(err)
	}
	if err := h.transport.Clear(c); err != nil {
		_ = c.Error(err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrFullnameRequired),
		errors.Is(err, services.ErrInvalidEmail):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUserOwnsContent):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
