package handlers

import (
	"errors"
	"net/http"

	"coachdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the login endpoints.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates the login handler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LoginRequest is the body of both login endpoints. Students may send their
// admission number in either field.
type LoginRequest struct {
	Username        string `json:"username"`
	AdmissionNumber string `json:"admission_number"`
	Password        string `json:"password"`
}

// AdminLogin handles POST /api/admin/login.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body!"})
		return
	}

	token, err := h.authService.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// StudentLogin handles POST /api/student/login.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required!"})
		return
	}

	login := req.Username
	if login == "" {
		login = req.AdmissionNumber
	}

	result, err := h.authService.StudentLogin(c.Request.Context(), login, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
