package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/tunelar/backend/docs"
	"github.com/tunelar/backend/internal/api/handler"
	"github.com/tunelar/backend/internal/api/middleware"
	"github.com/tunelar/backend/internal/core/domain"
	"github.com/tunelar/backend/internal/core/ports"
	"github.com/tunelar/backend/internal/core/service"
	"github.com/tunelar/backend/internal/infrastructure/config"
	mongodb "github.com/tunelar/backend/internal/infrastructure/db/mongo"
	redisdb "github.com/tunelar/backend/internal/infrastructure/db/redis"
	"github.com/tunelar/backend/internal/pkg/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rootID is the bootstrap admin's identifier resolved during seeding; audit
// may be nil to disable the trail (tests), as may rdb to disable throttling.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, rootID string, audit ports.AuditRecorder, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("tunelar"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	codec := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL())

	opts := []service.Option{}
	if audit != nil {
		opts = append(opts, service.WithAudit(audit))
	}
	if rdb != nil {
		throttle := redisdb.NewLoginThrottle(rdb, cfg.Throttle.MaxFailures, cfg.Throttle.Window)
		opts = append(opts, service.WithLoginThrottle(throttle))
	}
	authService := service.NewAuthService(userRepo, roleRepo, codec, rootID, log, opts...)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)

	// The authentication pipeline runs on every request and never rejects;
	// the RequireRoles groups below are where rejection happens.
	e.Use(middleware.Authenticate(codec, authService, log))

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	adminOnly := auth.Group("/user", middleware.RequireRoles(domain.RoleAdmin))
	adminOnly.PUT("/role/:id", userHandler.UpdateRole)
	adminOnly.PUT("/username/:id", userHandler.UpdateUsername)
	adminOnly.DELETE("/:id", userHandler.Delete)

	// --- User listing/lookup (admin and moderator) ---
	users := e.Group("/api/users", middleware.RequireRoles(domain.RoleAdmin, domain.RoleModerator))
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.GetByID)
	users.GET("/username/:username", userHandler.GetByUsername)

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
