package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	apperrors "github.com/ikkim/eduverify-backend/internal/errors"
	"github.com/ikkim/eduverify-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup registers a new employer company
// POST /api/v1/auth/signup
func (ctrl *AuthController) Signup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid signup request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid signup data")
		return
	}

	company, err := ctrl.authService.Signup(c.Request.Context(), req)
	if err != nil {
		log.Warn("Signup failed", map[string]interface{}{
			"email": req.Email,
			"error": err.Error(),
		})
		apperrors.ParseAndRespond(c, err, "create company")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Company registered successfully",
		"company": company,
	})
}

// Login handles user login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and password are required")
		return
	}

	result, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "login")
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"user_id": result.UserID,
		"role":    result.Role,
	})
	c.JSON(http.StatusOK, result)
}

// GetMe returns the session user and company
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    session.User,
		"company": session.Company,
	})
}

// Logout revokes the current session
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, _ := middleware.GetToken(c)
	if err := ctrl.authService.Logout(c.Request.Context(), token); err != nil {
		log.Error("Logout failed", err)
		apperrors.ParseAndRespond(c, err, "logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}
