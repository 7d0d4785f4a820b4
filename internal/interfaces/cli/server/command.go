package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"aegis/internal/bootstrap"
	"aegis/internal/infrastructure/cache"
	"aegis/internal/infrastructure/config"
	"aegis/internal/infrastructure/database"
	"aegis/internal/infrastructure/migration"
	httpRouter "aegis/internal/interfaces/http"
	"aegis/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
	modelPath   string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP API server",
		Long:  `Start the aegis HTTP server with the reconciliation dispatcher attached.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup (not recommended for production)")
	cmd.Flags().StringVar(&modelPath, "rbac-model", "./configs/rbac_model.conf", "Path to the casbin model file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting server", "environment", env, "auto_migrate", autoMigrate)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	if autoMigrate {
		if env == "production" {
			log.Warnw("auto-migration enabled in production environment")
		}
		manager := migration.NewManager(env, log)
		if err := manager.Migrate(database.Get(), migration.AutoMigrateModels()...); err != nil {
			log.Fatalw("auto-migration failed", "error", err)
		}
		log.Infow("auto-migration completed")
	}

	redisClient, err := cache.New(&cfg.Redis)
	if err != nil {
		// Redis only backs the affiliation cache and the cross-process
		// in-flight guard; the server degrades without it.
		log.Warnw("redis unavailable, continuing without it", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	app, err := bootstrap.New(cfg, database.Get(), redisClient, modelPath, log)
	if err != nil {
		log.Fatalw("failed to build application", "error", err)
	}
	if err := app.Start(); err != nil {
		log.Fatalw("failed to start application", "error", err)
	}
	defer func() {
		if err := app.Stop(); err != nil {
			log.Errorw("failed to stop application", "error", err)
		}
	}()

	engine := httpRouter.Build(cfg, app, database.Get(), log)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server listening", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
