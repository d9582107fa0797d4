package controllers

import (
	"net/http"

	"hostel-complaint-api/middleware"
	"hostel-complaint-api/models"
	"hostel-complaint-api/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

type AuthController struct {
	accounts *services.AccountService
	auth     *middleware.Authenticator
}

func NewAuthController(accounts *services.AccountService, auth *middleware.Authenticator) *AuthController {
	return &AuthController{accounts: accounts, auth: auth}
}

// Register creates a student account and signs them in.
func (ctl *AuthController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := ctl.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Registration failed")
		return
	}

	token, err := ctl.auth.GenerateToken(user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Registration successful",
		Token:   token,
		User:    user,
	})
}

// Login handles user authentication
func (ctl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := ctl.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	token, err := ctl.auth.GenerateToken(user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// Me returns current user profile
func (ctl *AuthController) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
