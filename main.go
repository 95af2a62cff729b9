package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pelada-api/config"
	_ "pelada-api/docs" // Swagger docs
	"pelada-api/packages/auth"
	"pelada-api/packages/core"
	"pelada-api/packages/core/api"
	coreMiddleware "pelada-api/packages/core/middleware"
	"pelada-api/packages/core/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
)

// @title           Pelada API
// @version         1.0
// @description     API for organizing pickup football matches with JWT authentication

// @contact.name   API Support

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Println("Failed to read .env file, using environment variables:", err)
	}

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set, using the development secret")
	}

	config.ConnectDatabase()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	api.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(coreMiddleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authModule := auth.NewModule(config.DB, cfg.AppURL)
	authModule.SetupRoutes(r)

	coreModule := core.NewModule(config.DB, core.Options{
		Uploader:          newUploader(cfg.Storage),
		MatchClockEnabled: cfg.MatchClockEnabled,
	})
	coreModule.SetupRoutes(r)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", healthHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := coreModule.StartScheduler(); err != nil {
			return err
		}
		<-gCtx.Done()
		coreModule.StopScheduler()
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server", "timeout", shutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server shutdown complete")
}

func newUploader(cfg config.StorageConfig) storage.FileUploader {
	if !cfg.Enabled() {
		slog.Info("avatar storage disabled")
		return nil
	}

	uploader, err := storage.NewS3Uploader(context.Background(), storage.S3UploaderConfig{
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		BucketName:      cfg.Bucket,
		PublicBaseURL:   cfg.PublicBaseURL,
	})
	if err != nil {
		slog.Error("failed to configure avatar storage, uploads disabled", "error", err)
		return nil
	}

	slog.Info("avatar storage configured", "bucket", cfg.Bucket)
	return uploader
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"active"`
	Timestamp time.Time `json:"timestamp"`
}

// @Summary Health Check
// @Description Check if the server is running
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "active",
		Timestamp: time.Now().UTC(),
	})
}
