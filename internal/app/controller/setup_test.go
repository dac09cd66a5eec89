package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	"github.com/ikkim/eduverify-backend/internal/metrics"
	"github.com/ikkim/eduverify-backend/internal/middleware"
	"github.com/ikkim/eduverify-backend/internal/storage"
	ws "github.com/ikkim/eduverify-backend/internal/websocket"
	"github.com/ikkim/eduverify-backend/pkg/payment/mockpay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

type testServer struct {
	Router         *gin.Engine
	Hub            *ws.Hub
	AuthService    service.AuthService
	RequestService service.RequestService
}

func setupControllerTest(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	companyRepo := repository.NewCompanyRepository(store)
	candidateRepo := repository.NewCandidateRepository(store)
	requestRepo := repository.NewRequestRepository(store)
	sessionRepo := repository.NewSessionRepository(store)

	m := metrics.New(prometheus.NewRegistry())
	hub := ws.NewHub(m)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	latency := service.NoLatency()
	authService := service.NewAuthService(companyRepo, sessionRepo, testJWTSecret, time.Hour, latency)
	require.NoError(t, authService.SeedDemoCompany(context.Background()))

	requestService := service.NewRequestService(
		requestRepo, candidateRepo, service.PermissivePolicy(), service.FanOut(hub, m), nil, latency,
	)
	gateway, err := mockpay.NewClient(mockpay.Config{SuccessRate: 1})
	require.NoError(t, err)

	authController := NewAuthController(authService)
	companyController := NewCompanyController(service.NewCompanyService(companyRepo, latency))
	candidateController := NewCandidateController(service.NewCandidateService(candidateRepo, latency))
	requestController := NewRequestController(requestService, service.NewExportService(requestService, candidateRepo), nil)
	paymentController := NewPaymentController(
		service.NewPaymentService(gateway, requestRepo, companyRepo, requestService, m, latency),
		requestService,
	)
	uploadController := NewUploadController(service.NewFileService(nil, latency))
	dashboardController := NewDashboardController(service.NewDashboardService(requestService, requestRepo, nil))
	liveController := NewLiveController(hub, nil)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	employer := authMiddleware.RequireRole(model.RoleEmployer)
	verifier := authMiddleware.RequireRole(model.RoleVerifier)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware(m))

	api := router.Group("/api/v1")
	{
		api.POST("/auth/signup", authController.Signup)
		api.POST("/auth/login", authController.Login)
		api.GET("/auth/me", authMiddleware.Authenticate(), authController.GetMe)
		api.POST("/auth/logout", authMiddleware.Authenticate(), authController.Logout)

		authed := api.Group("")
		authed.Use(authMiddleware.Authenticate())
		authed.GET("/company", companyController.GetCompany)
		authed.PUT("/company", employer, companyController.UpdateCompany)
		authed.GET("/candidates", candidateController.ListCandidates)
		authed.GET("/candidates/:id", candidateController.GetCandidate)
		authed.POST("/candidates", employer, candidateController.CreateCandidate)
		authed.GET("/requests", requestController.ListRequests)
		authed.GET("/requests/export", requestController.ExportRequests)
		authed.GET("/requests/:id", requestController.GetRequest)
		authed.POST("/requests", employer, requestController.CreateRequest)
		authed.PATCH("/requests/:id", verifier, requestController.UpdateRequest)
		authed.PUT("/requests/:id/status", verifier, requestController.SetStatus)
		authed.PUT("/requests/:id/payment", employer, requestController.UpdatePayment)
		authed.PUT("/requests/:id/check", verifier, requestController.UpdateCheck)
		authed.POST("/requests/:id/checkout", employer, paymentController.Checkout)
		authed.GET("/requests/:id/receipt", paymentController.GetReceipt)
		authed.POST("/payments/orders", employer, paymentController.CreateOrder)
		authed.POST("/payments/orders/:orderId/pay", employer, paymentController.PayOrder)
		authed.POST("/upload", uploadController.UploadFile)
		authed.GET("/dashboard", dashboardController.GetDashboard)
		authed.GET("/ws", liveController.WebSocketHandler)
	}

	return &testServer{
		Router:         router,
		Hub:            hub,
		AuthService:    authService,
		RequestService: requestService,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func janeDoe() map[string]interface{} {
	return map[string]interface{}{
		"fullName":       "Jane Doe",
		"mobile":         "+91 98765 43210",
		"email":          "jane@example.com",
		"degreeName":     "B.Tech Computer Science",
		"universityName": "IIT Bombay",
		"graduationYear": 2020,
	}
}

// createRequest adds Jane Doe and opens a request for her as the given employer
func (ts *testServer) createRequest(t *testing.T, token string) model.VerificationRequest {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/v1/candidates", token, janeDoe())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var candidateResp struct {
		Candidate model.Candidate `json:"candidate"`
	}
	decode(t, w, &candidateResp)

	w = ts.do(t, http.MethodPost, "/api/v1/requests", token, map[string]string{
		"candidateId": candidateResp.Candidate.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var requestResp struct {
		Request model.VerificationRequest `json:"request"`
	}
	decode(t, w, &requestResp)
	return requestResp.Request
}
