package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/claritykit/claritykit-backend/docs"
	"github.com/claritykit/claritykit-backend/internal/api/handler"
	"github.com/claritykit/claritykit-backend/internal/api/middleware"
	"github.com/claritykit/claritykit-backend/internal/core/ports"
	"github.com/claritykit/claritykit-backend/internal/core/service"
	mongodb "github.com/claritykit/claritykit-backend/internal/infrastructure/db/mongo"
	redisdb "github.com/claritykit/claritykit-backend/internal/infrastructure/db/redis"
	"github.com/claritykit/claritykit-backend/internal/pkg/config"
	"github.com/claritykit/claritykit-backend/internal/pkg/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, mailer ports.Mailer, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("claritykit"))

	// --- Dependencies ---
	codec, err := token.NewCodec(cfg.Auth.SecretKey, cfg.Auth.Algorithm)
	if err != nil {
		return nil, err
	}

	userRepo := mongodb.NewUserRepository(db)
	throttle := redisdb.NewAttemptThrottle(rdb, cfg.Auth.MaxAttempts, cfg.Auth.AttemptWindow())

	authService := service.NewAuthService(userRepo, codec, mailer, throttle, cfg.Auth, cfg.BaseURL, log)
	userService := service.NewUserService(userRepo, mailer, cfg.Auth, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	authMiddleware := middleware.Auth(cfg.Auth.SecretKey, cfg.Auth.Algorithm)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.GET("/auth/verify-account/:token", authHandler.VerifyAccount)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/verify-account-request", authHandler.VerifyAccountRequest)
	e.POST("/auth/verify-otp", authHandler.VerifyOTP)
	e.GET("/auth/refresh-token", authHandler.RefreshToken)

	// --- User routes ---
	e.POST("/user/forget-password", userHandler.ForgetPassword)

	user := e.Group("/user", authMiddleware)
	user.GET("/user-info", userHandler.UserInfo)
	user.PUT("/update-password", userHandler.UpdatePassword)
	user.PUT("/update-password-by-otp", userHandler.UpdatePasswordByOTP)
	user.DELETE("/delete-account", userHandler.DeleteAccount)

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e, nil
}
