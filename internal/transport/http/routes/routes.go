package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/titandealer/portal/internal/infra/config"
	"github.com/titandealer/portal/internal/transport/http/handlers"
	"github.com/titandealer/portal/internal/transport/http/middleware"
	"github.com/titandealer/portal/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth      *usecase.AuthService
	Accounts  *usecase.AccountService
	Incidents *usecase.IncidentService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
//
// The login, forgot-password and incident submission endpoints stay public:
// the help form serves dealers who cannot log in. Everything the admin UI
// uses is gated behind a bearer session, triage endpoints behind the admin
// role on top.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS([]string{deps.Config.Frontend.URL}))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)
	adminMiddleware := middleware.RequireAdmin()

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.Services.Auth)
	accountHandler := handlers.NewAccountHandler(deps.Services.Accounts)
	incidentHandler := handlers.NewIncidentHandler(deps.Services.Incidents)

	loginChain := append(loginRateLimit(deps), authHandler.Login)
	r.POST("/login", loginChain...)

	api := r.Group("/api")
	{
		resetChain := append(resetRateLimit(deps), accountHandler.ForgotPassword)
		api.POST("/forgot-password", resetChain...)
		api.POST("/reset-password", accountHandler.ResetPassword)

		api.POST("/incidents", incidentHandler.Submit)

		api.GET("/get-incidents", authMiddleware, incidentHandler.List)
		api.DELETE("/delete-incident/:id", authMiddleware, adminMiddleware, incidentHandler.Delete)
		api.PUT("/update-incident/:id", authMiddleware, adminMiddleware, incidentHandler.UpdateChecked)

		api.POST("/register-user", authMiddleware, adminMiddleware, accountHandler.RegisterUser)
		api.GET("/get-users", authMiddleware, adminMiddleware, accountHandler.ListUsers)
		api.POST("/admin-reset-password", authMiddleware, adminMiddleware, accountHandler.AdminResetPassword)
		api.PUT("/update-user-status", authMiddleware, adminMiddleware, accountHandler.UpdateUserStatus)
	}

	handlers.RegisterSwagger(r)

	return r
}

func loginRateLimit(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(middleware.RateLimitRule{
		Name:   "login_ip",
		Limit:  limit,
		Window: window,
	})}
}

func resetRateLimit(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.PasswordResetMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(middleware.RateLimitRule{
		Name:   "password_reset_ip",
		Limit:  limit,
		Window: window,
	})}
}
