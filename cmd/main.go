package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"supplies-service/internal/authz"
	"supplies-service/internal/handler"
	"supplies-service/internal/mailer"
	"supplies-service/internal/middleware"
	"supplies-service/internal/policy"
	"supplies-service/internal/repository"
	"supplies-service/pkg/config"
	"supplies-service/pkg/database"
	"supplies-service/pkg/jwtutil"
	"supplies-service/pkg/logger"
	"supplies-service/pkg/validation"
	"supplies-service/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: config.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()
	log.Info("Starting supplies service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.Connect(&cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	gates, err := authz.NewEnforcer()
	if err != nil {
		log.Fatal("Failed to load role gates", zap.Error(err))
	}

	store := repository.New(db)
	accessPolicy := policy.New(gates)
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})
	h := handler.New(store, accessPolicy, jwt, mailer.NewLogMailer(cfg.Mail.From), handler.Options{
		FrontendURL: cfg.Server.FrontendURL,
		MailFrom:    cfg.Mail.From,
	})

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.EchoValidator{}
	e.HTTPErrorHandler = handler.ErrorHandler(cfg.IsProduction())

	// Apply global middleware - order matters
	e.Use(middleware.RequestIDMiddleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(logger.Middleware())
	e.Use(handler.RecoverMiddleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{cfg.Server.FrontendURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	handler.Register(e, h, middleware.JWTAuthMiddleware(jwt), accessPolicy)

	// Start server
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}
	log.Info("Server exited")
}
