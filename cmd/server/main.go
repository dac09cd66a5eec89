package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/eduverify-backend/config"
	"github.com/ikkim/eduverify-backend/internal/app/controller"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	"github.com/ikkim/eduverify-backend/internal/db"
	"github.com/ikkim/eduverify-backend/internal/metrics"
	"github.com/ikkim/eduverify-backend/internal/middleware"
	"github.com/ikkim/eduverify-backend/internal/router"
	"github.com/ikkim/eduverify-backend/internal/scheduler"
	"github.com/ikkim/eduverify-backend/internal/storage"
	"github.com/ikkim/eduverify-backend/internal/websocket"
	"github.com/ikkim/eduverify-backend/pkg/logger"
	"github.com/ikkim/eduverify-backend/pkg/payment/mockpay"
	"github.com/ikkim/eduverify-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logFormat := "console"
	if cfg.Server.Environment == "production" {
		logFormat = "json"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting EduVerify Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"storage":     cfg.Storage.Backend,
		"policy":      cfg.Workflow.TransitionPolicy,
		"log_level":   logLevel,
	})

	// Initialize database (postgres storage only)
	if cfg.Storage.Backend == config.StoragePostgres {
		if err := db.Initialize(&cfg.Database); err != nil {
			logger.Fatal("Failed to initialize database", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database connection", err)
			}
		}()

		if err := db.Migrate(); err != nil {
			logger.Fatal("Failed to run migrations", err)
		}
	}

	// Redis backs the redis storage and the login rate limiter
	if err := redis.Init(&cfg.Redis); err != nil {
		if cfg.Storage.Backend == config.StorageRedis {
			logger.Fatal("Failed to initialize Redis", err)
		}
		logger.Warn("Redis unavailable, login rate limiting disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	backend, err := storage.NewBackend(cfg.Storage.Backend, db.GetDB(), redis.GetClient())
	if err != nil {
		logger.Fatal("Failed to create storage backend", err)
	}
	store := storage.New(backend, cfg.Storage.Namespace)

	// Initialize repositories
	companyRepo := repository.NewCompanyRepository(store)
	candidateRepo := repository.NewCandidateRepository(store)
	requestRepo := repository.NewRequestRepository(store)
	sessionRepo := repository.NewSessionRepository(store)

	// Metrics and live updates
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := websocket.NewHub(m)
	go hub.Run(ctx)
	events := service.FanOut(hub, m)

	// Initialize services
	latency := service.NoLatency()
	if cfg.Mock.LatencyEnabled {
		latency = service.DefaultLatency()
	}
	policy, err := service.PolicyByName(cfg.Workflow.TransitionPolicy)
	if err != nil {
		logger.Fatal("Failed to select transition policy", err)
	}

	gatewayConfig := mockpay.DefaultConfig()
	gatewayConfig.SuccessRate = cfg.Mock.PaymentSuccessRate
	if !cfg.Mock.LatencyEnabled {
		gatewayConfig.OrderLatency = 0
		gatewayConfig.PayLatency = 0
	}
	gateway, err := mockpay.NewClient(gatewayConfig)
	if err != nil {
		logger.Fatal("Failed to create payment gateway", err)
	}

	authService := service.NewAuthService(
		companyRepo,
		sessionRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		latency,
	)
	if err := authService.SeedDemoCompany(ctx); err != nil {
		logger.Warn("Failed to seed demo company", map[string]interface{}{
			"error": err.Error(),
		})
	}
	companyService := service.NewCompanyService(companyRepo, latency)
	candidateService := service.NewCandidateService(candidateRepo, latency)
	requestService := service.NewRequestService(requestRepo, candidateRepo, policy, events, nil, latency)
	paymentService := service.NewPaymentService(gateway, requestRepo, companyRepo, requestService, m, latency)
	fileService := service.NewFileService(nil, latency)
	dashboardService := service.NewDashboardService(requestService, requestRepo, nil)
	exportService := service.NewExportService(requestService, candidateRepo)

	// Initialize SLA scheduler
	slaScheduler := scheduler.NewSLAScheduler(cfg.Workflow.SLACheckSchedule, dashboardService, events, m, nil)
	if err := slaScheduler.Start(); err != nil {
		logger.Fatal("Failed to start SLA scheduler", err)
	}
	defer slaScheduler.Stop()

	// Initialize controllers
	controllers := router.Controllers{
		Auth:      controller.NewAuthController(authService),
		Company:   controller.NewCompanyController(companyService),
		Candidate: controller.NewCandidateController(candidateService),
		Request:   controller.NewRequestController(requestService, exportService, nil),
		Payment:   controller.NewPaymentController(paymentService, requestService),
		Upload:    controller.NewUploadController(fileService),
		Dashboard: controller.NewDashboardController(dashboardService),
		Live:      controller.NewLiveController(hub, cfg.CORS.AllowedOrigins),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Setup router
	r := router.NewRouter(controllers, authMiddleware, m, registry, redis.GetClient(), cfg)
	engine := r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	stop()

	logger.Info("Server stopped successfully")
}
