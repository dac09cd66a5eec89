package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/config"
	"github.com/ikkim/eduverify-backend/internal/app/controller"
	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/metrics"
	"github.com/ikkim/eduverify-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Controllers groups every HTTP handler set the API exposes
type Controllers struct {
	Auth      *controller.AuthController
	Company   *controller.CompanyController
	Candidate *controller.CandidateController
	Request   *controller.RequestController
	Payment   *controller.PaymentController
	Upload    *controller.UploadController
	Dashboard *controller.DashboardController
	Live      *controller.LiveController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	redis          *redis.Client
	config         *config.Config
}

// NewRouter wires handlers to routes. rdb may be nil, which disables login rate limiting.
func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	rdb *redis.Client,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		metrics:        m,
		gatherer:       gatherer,
		redis:          rdb,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(r.metrics))
	router.Use(cors.New(corsConfig(r.config.CORS.AllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "EduVerify API is running",
			"storage": r.config.Storage.Backend,
		})
	})
	if r.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	auth := r.authMiddleware
	employer := auth.RequireRole(model.RoleEmployer)
	verifier := auth.RequireRole(model.RoleVerifier)
	ctl := r.controllers

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			loginLimit := middleware.RateLimit(
				r.redis,
				r.metrics,
				r.config.Limits.LoginMax,
				r.config.Limits.LoginWindow,
				middleware.KeyByIPAndPath(r.config.Storage.Namespace),
			)
			authGroup.POST("/signup", ctl.Auth.Signup)
			authGroup.POST("/login", loginLimit, ctl.Auth.Login)
			authGroup.GET("/me", auth.Authenticate(), ctl.Auth.GetMe)
			authGroup.POST("/logout", auth.Authenticate(), ctl.Auth.Logout)
		}

		company := v1.Group("/company")
		company.Use(auth.Authenticate())
		{
			company.GET("", ctl.Company.GetCompany)
			company.PUT("", employer, ctl.Company.UpdateCompany)
		}

		candidates := v1.Group("/candidates")
		candidates.Use(auth.Authenticate())
		{
			candidates.GET("", ctl.Candidate.ListCandidates)
			candidates.GET("/:id", ctl.Candidate.GetCandidate)
			candidates.POST("", employer, ctl.Candidate.CreateCandidate)
		}

		requests := v1.Group("/requests")
		requests.Use(auth.Authenticate())
		{
			requests.GET("", ctl.Request.ListRequests)
			requests.GET("/export", ctl.Request.ExportRequests)
			requests.GET("/:id", ctl.Request.GetRequest)
			requests.POST("", employer, ctl.Request.CreateRequest)
			requests.PATCH("/:id", verifier, ctl.Request.UpdateRequest)
			requests.PUT("/:id/status", verifier, ctl.Request.SetStatus)
			requests.PUT("/:id/payment", employer, ctl.Request.UpdatePayment)
			requests.PUT("/:id/check", verifier, ctl.Request.UpdateCheck)
			requests.POST("/:id/checkout", employer, ctl.Payment.Checkout)
			requests.GET("/:id/receipt", ctl.Payment.GetReceipt)
		}

		payments := v1.Group("/payments")
		payments.Use(auth.Authenticate(), employer)
		{
			payments.POST("/orders", ctl.Payment.CreateOrder)
			payments.POST("/orders/:orderId/pay", ctl.Payment.PayOrder)
		}

		v1.POST("/upload", auth.Authenticate(), ctl.Upload.UploadFile)
		v1.GET("/dashboard", auth.Authenticate(), ctl.Dashboard.GetDashboard)
		v1.GET("/ws", auth.Authenticate(), ctl.Live.WebSocketHandler)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range allowedOrigins {
		if o == "*" {
			// credentials cannot be combined with a wildcard origin
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = allowedOrigins
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}
