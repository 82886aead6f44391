package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"videosplus/storefront/internal/api"
	"videosplus/storefront/internal/app"
	"videosplus/storefront/internal/config"
	"videosplus/storefront/internal/logger"
	"videosplus/storefront/internal/service"
	"videosplus/storefront/internal/tracing"
)

// @title VideosPlus API
// @version 1.0
// @description Catalog, accounts, sessions and site configuration of the VideosPlus storefront.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logrus.Fatalf("Could not load config: %v", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("Could not set up logging: %v", err)
	}
	log.WithField("backend", cfg.Store.Backend).Info("Starting VideosPlus server...")

	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret (JWT_SECRET) must be set")
	}

	ctx := context.Background()

	// --- Tracing ---
	shutdownTracing, err := tracing.Init(ctx, log, cfg.Tracing)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.WithError(err).Error("Failed to flush traces")
		}
	}()

	// --- Storage & Repositories ---
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize document store")
	}
	defer func() {
		log.Info("Closing document store...")
		if err := application.Close(context.Background()); err != nil {
			log.WithError(err).Error("Failed to close document store")
		}
	}()

	// --- Services ---
	authService := service.NewAuthService(application.Repos.Users, application.Repos.Sessions, cfg.JWT.Secret, cfg.JWT.Expiration, log)
	catalogService := service.NewCatalogService(application.Docs)

	// --- Gin Engine ---
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, log, authService, catalogService, application.Repos, application.Files, cfg.S3.PresignExpiry)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      otelhttp.NewHandler(router, "videosplus-api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("ListenAndServe error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exiting.")
}
