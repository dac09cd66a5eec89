package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	"github.com/ikkim/eduverify-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware, service.AuthService) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := storage.NewMemoryStore()
	authService := service.NewAuthService(
		repository.NewCompanyRepository(store),
		repository.NewSessionRepository(store),
		testJWTSecret,
		15*time.Minute,
		service.NoLatency(),
	)
	return router, NewAuthMiddleware(authService), authService
}

func loginToken(t *testing.T, authService service.AuthService, email string) string {
	result, err := authService.Login(context.Background(), email, "demo123")
	require.NoError(t, err)
	return result.Token
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, authMiddleware, authService := setupMiddlewareTest()
	token := loginToken(t, authService, "employer@demo")

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		session, ok := GetSession(c)
		require.True(t, ok)
		userID, _ := GetUserID(c)
		role, _ := GetUserRole(c)

		c.JSON(http.StatusOK, gin.H{
			"user_id":    userID,
			"role":       role,
			"company_id": session.Company.ID,
		})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"user-1","role":"EMPLOYER","company_id":"company-1"}`, w.Body.String())
}

func TestAuthMiddleware_Authenticate_QueryToken(t *testing.T) {
	router, authMiddleware, authService := setupMiddlewareTest()
	token := loginToken(t, authService, "verifier@demo")

	router.GET("/ws", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/ws?token="+token, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthMiddleware_Authenticate_NoToken(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest()

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authenticated")
}

func TestAuthMiddleware_Authenticate_InvalidFormat(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest()

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "Missing Bearer prefix",
			header: "invalid-token",
		},
		{
			name:   "Wrong prefix",
			header: "Basic token123",
		},
		{
			name:   "Empty token",
			header: "Bearer ",
		},
		{
			name:   "Not a JWT",
			header: "Bearer invalid.jwt.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_Authenticate_AfterLogout(t *testing.T) {
	router, authMiddleware, authService := setupMiddlewareTest()
	token := loginToken(t, authService, "employer@demo")
	require.NoError(t, authService.Logout(context.Background(), token))

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_UNAUTHORIZED")
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, authMiddleware, authService := setupMiddlewareTest()

	router.PUT("/requests/:id/status",
		authMiddleware.Authenticate(),
		authMiddleware.RequireRole(model.RoleVerifier),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "access granted"})
		},
	)
	router.GET("/dashboard",
		authMiddleware.Authenticate(),
		authMiddleware.RequireRole(model.RoleEmployer, model.RoleVerifier),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "access granted"})
		},
	)

	tests := []struct {
		name           string
		email          string
		path           string
		method         string
		expectedStatus int
	}{
		{name: "Verifier changes status", email: "verifier@demo", method: "PUT", path: "/requests/REQ-1/status", expectedStatus: http.StatusOK},
		{name: "Employer cannot change status", email: "employer@demo", method: "PUT", path: "/requests/REQ-1/status", expectedStatus: http.StatusForbidden},
		{name: "Employer sees dashboard", email: "employer@demo", method: "GET", path: "/dashboard", expectedStatus: http.StatusOK},
		{name: "Verifier sees dashboard", email: "verifier@demo", method: "GET", path: "/dashboard", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := loginToken(t, authService, tt.email)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireRole_WithoutAuthenticate(t *testing.T) {
	router, authMiddleware, _ := setupMiddlewareTest()

	router.GET("/test", authMiddleware.RequireRole(model.RoleEmployer), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHZ_ROLE_NOT_FOUND")
}
