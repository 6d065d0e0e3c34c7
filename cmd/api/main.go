package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/rentyclub/internal/config"
	"github.com/joshua-takyi/rentyclub/internal/connect"
	"github.com/joshua-takyi/rentyclub/internal/container"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting RentyClub API server", "environment", cfg.Environment)

	var clients container.Clients

	clients.Supabase, err = connect.InitSupabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to Supabase", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to Supabase successfully")

	clients.MongoDB, err = connect.MongoDBConnect(cfg)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully")

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 15*time.Second)
	if err := models.MongodbNewRepo(clients.MongoDB, cfg.MongoDBDatabase).EnsureIndexes(indexCtx); err != nil {
		logger.Warn("Failed to ensure MongoDB indexes", "error", err)
	}
	cancelIndexes()

	clients.Redis, err = connect.RedisConnect(cfg)
	if err != nil {
		// the geocoder works without its cache
		logger.Warn("Redis unavailable, geocoding cache disabled", "error", err)
	} else if clients.Redis != nil {
		logger.Info("Connected to Redis successfully")
	}

	if cfg.MediaBackend == config.MediaCloudinary {
		clients.Cloudinary, err = connect.CloudinaryCredentials(cfg)
		if err != nil {
			logger.Error("Failed to connect to Cloudinary", "error", err)
			os.Exit(1)
		}
	}

	validatorCtx, cancelValidator := context.WithCancel(context.Background())
	defer cancelValidator()
	validator, err := helpers.NewTokenValidator(validatorCtx, cfg.SupabaseURL, cfg.SupabaseJWTSecret)
	if err != nil {
		logger.Error("Failed to initialise token validation", "error", err)
		os.Exit(1)
	}

	appContainer := container.NewContainer(cfg, logger, clients, validator)
	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	validator.Close()
	if err := appContainer.Publisher.Close(); err != nil {
		logger.Error("Error closing event publisher", "error", err)
	}
	if clients.Redis != nil {
		if err := clients.Redis.Close(); err != nil {
			logger.Error("Error closing Redis", "error", err)
		}
	}
	if err := connect.MongoDBDisconnect(clients.MongoDB); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
