package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/derslik/derslik-backend/internal/middleware"
	"github.com/derslik/derslik-backend/internal/model"
	"github.com/derslik/derslik-backend/internal/response"
	"github.com/derslik/derslik-backend/internal/service"
	"github.com/derslik/derslik-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password and returns a JWT. Students are limited to one
// active session; a second login is rejected with SESSION_ALREADY_ACTIVE.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateToken(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrSessionAlreadyActive) {
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Logout godoc
// POST /api/v1/auth/logout
// Releases the student's single-device session. A no-op for other roles.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if claims.Role == model.RoleStudent {
		if err := h.authService.ResetSession(c.Request.Context(), claims.UserID); err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Register godoc
// POST /api/v1/users
// Creates a new account. Admin only.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.CreateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// ResetSession godoc
// DELETE /api/v1/users/:id/session
// Clears a student's active session so they can log in again. Teacher/admin.
func (h *AuthHandler) ResetSession(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetSession(c.Request.Context(), userID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
