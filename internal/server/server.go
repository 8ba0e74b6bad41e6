package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/adocavo/adocavo-api/internal/ai"
	"github.com/adocavo/adocavo-api/internal/circuitbreaker"
	"github.com/adocavo/adocavo-api/internal/config"
	"github.com/adocavo/adocavo-api/internal/handler"
	"github.com/adocavo/adocavo-api/internal/health"
	"github.com/adocavo/adocavo-api/internal/metrics"
	"github.com/adocavo/adocavo-api/internal/middleware"
	"github.com/adocavo/adocavo-api/internal/ratelimit"
	"github.com/adocavo/adocavo-api/internal/repository"
	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/adocavo/adocavo-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	router     *gin.Engine
	config     *config.Config
	logger     *slog.Logger
	metrics    *metrics.Metrics
	redis      *storage.RedisClient
	postgres   *storage.Postgres
	monitor    *health.Monitor
	logWorker  *middleware.RequestLogWorker
	httpServer *http.Server

	auth     *handler.AuthHandler
	hooks    *handler.HookHandler
	scripts  *handler.ScriptHandler
	analysis *handler.AnalysisHandler
	admin    *handler.AdminHandler
	waitlist *handler.WaitlistHandler
	device   *handler.DeviceHandler
}

func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres, logger *slog.Logger) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()

	userRepo := repository.NewUserRepository(postgres)
	hookRepo := repository.NewHookRepository(postgres)
	scriptRepo := repository.NewScriptRepository(postgres)
	favoriteRepo := repository.NewFavoriteRepository(postgres)
	waitlistRepo := repository.NewWaitlistRepository(postgres)
	deviceRepo := repository.NewDeviceRepository(postgres)
	rateLimitRepo := repository.NewRateLimitRepository(postgres)
	requestLogRepo := repository.NewRequestLogRepository(postgres)

	aiClient := ai.NewClient(cfg.AI)
	breaker := circuitbreaker.New(circuitbreaker.Config{})

	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.ExpiryHours)
	hookService := service.NewHookService(hookRepo, favoriteRepo)
	scriptService := service.NewScriptService(scriptRepo, userRepo, aiClient, breaker, m, logger)
	analysisService := service.NewAnalysisService(userRepo, aiClient, breaker, m, logger)
	adminService := service.NewAdminService(hookRepo, userRepo, waitlistRepo)
	analyticsService := service.NewAnalyticsService(requestLogRepo)
	waitlistService := service.NewWaitlistService(waitlistRepo)
	deviceService := service.NewDeviceService(deviceRepo, redis)

	limiter := ratelimit.NewLimiter(
		ratelimit.NewRedisCounterCache(redis),
		rateLimitRepo,
		logger,
		ratelimit.WithMetrics(m),
	)
	rules := ratelimit.NewRuleSet(cfg.RateLimit.Rules)

	monitor := health.NewMonitor(health.Config{}, logger)
	monitor.Register("postgres", postgres.Ping)
	monitor.Register("redis", redis.Ping)

	secureCookies := cfg.Server.Environment == "production"

	s := &Server{
		router:    gin.New(),
		config:    cfg,
		logger:    logger,
		metrics:   m,
		redis:     redis,
		postgres:  postgres,
		monitor:   monitor,
		logWorker: middleware.NewRequestLogWorker(requestLogRepo, logger, 1024),
		auth:      handler.NewAuthHandler(authService, secureCookies),
		hooks:     handler.NewHookHandler(hookService),
		scripts:   handler.NewScriptHandler(scriptService, hookService),
		analysis:  handler.NewAnalysisHandler(analysisService),
		admin:     handler.NewAdminHandler(adminService, analyticsService),
		waitlist:  handler.NewWaitlistHandler(waitlistService),
		device:    handler.NewDeviceHandler(deviceService),
	}

	s.setupMiddleware(authService, deviceService, limiter, rules)
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware(auth *service.AuthService, devices *service.DeviceService, limiter *ratelimit.Limiter, rules *ratelimit.RuleSet) {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger, s.metrics))
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.SessionContext(auth))
	s.router.Use(middleware.DeviceContext(devices))
	// Before the gatekeeper and limiter so rejected requests are logged too.
	s.router.Use(s.logWorker.Middleware())
	s.router.Use(middleware.Gatekeeper())
	s.router.Use(middleware.RateLimit(limiter, rules))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", s.auth.Register)
			auth.POST("/login", s.auth.Login)
			auth.POST("/logout", s.auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), s.auth.Me)
		}
		api.GET("/me", middleware.RequireAuth(), s.auth.Me)

		hooks := api.Group("/hooks")
		{
			hooks.GET("", s.hooks.List)
			hooks.GET("/top", s.hooks.TopRated)
			hooks.GET("/:id", s.hooks.Get)
			hooks.POST("", middleware.RequireAuth(), s.hooks.Submit)
			hooks.POST("/:id/rate", middleware.RequireAuth(), s.hooks.Rate)
		}

		favorites := api.Group("/favorites", middleware.RequireAuth())
		{
			favorites.GET("", s.hooks.Favorites)
			favorites.POST("/:id", s.hooks.AddFavorite)
			favorites.DELETE("/:id", s.hooks.RemoveFavorite)
		}

		api.POST("/generate", middleware.RequireAuth(), s.scripts.Generate)
		api.POST("/analyze", s.analysis.Analyze)

		scripts := api.Group("/scripts", middleware.RequireAuth())
		{
			scripts.GET("", s.scripts.List)
			scripts.GET("/:id", s.scripts.Get)
			scripts.GET("/:id/export", s.scripts.Export)
			scripts.DELETE("/:id", s.scripts.Delete)
		}

		admin := api.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/hooks/pending", s.admin.ReviewQueue)
			admin.POST("/hooks/:id/approve", s.admin.ApproveHook)
			admin.POST("/hooks/:id/reject", s.admin.RejectHook)
			admin.GET("/users", s.admin.Users)
			admin.POST("/users/:id/credits", s.admin.GrantCredits)
			admin.GET("/waitlist", s.admin.Waitlist)
			admin.GET("/analytics", s.admin.Analytics)
		}

		api.POST("/waitlist", s.waitlist.Join)
		api.POST("/device", s.device.Issue)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	snap := s.monitor.Snapshot()

	status := "healthy"
	statusCode := http.StatusOK
	if !snap.Healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":       status,
		"service":      "adocavo-api",
		"timestamp":    time.Now().Unix(),
		"dependencies": snap.Dependencies,
	})
}

// Run starts the dependency monitor, the request log worker, and the HTTP
// listener. It blocks until the listener stops.
func (s *Server) Run(addr string) error {
	s.monitor.Start()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server",
		slog.String("addr", addr),
		slog.String("environment", s.config.Server.Environment))

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the listener, then flushes the request log worker and
// halts the dependency monitor.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.logWorker.Stop()
	s.monitor.Stop()

	return err
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
