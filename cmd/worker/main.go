package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aegis/internal/application/provisioning"
	"aegis/internal/bootstrap"
	"aegis/internal/infrastructure/cache"
	"aegis/internal/infrastructure/config"
	"aegis/internal/infrastructure/database"
	"aegis/internal/infrastructure/scheduler"
	"aegis/internal/shared/logger"
)

// The worker runs the periodic jobs: the full resync sweep and the
// affiliation refresh. It carries its own dispatcher so scheduled work
// executes even when no API server is running; the redis guard keeps the two
// processes from reconciling the same account concurrently.
func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting sync worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	redisClient, err := cache.New(&cfg.Redis)
	if err != nil {
		log.Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()
	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())

	app, err := bootstrap.New(cfg, database.Get(), redisClient, "./configs/rbac_model.conf", log)
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

	sweep := provisioning.NewResyncSweep(app.Links, app.Registry, app.Calculator, app.Dispatcher, log)
	refresh := provisioning.NewAffiliationRefresh(app.Users, app.Ownerships, app.Affiliations, log)

	manager, err := scheduler.NewManager(log)
	if err != nil {
		log.Fatalw("failed to create scheduler", "error", err)
	}
	if err := manager.RegisterSweep(time.Duration(cfg.Sync.SweepIntervalHrs)*time.Hour, sweep); err != nil {
		log.Fatalw("failed to register resync sweep", "error", err)
	}
	if err := manager.RegisterAffiliationRefresh(time.Duration(cfg.Affiliation.RefreshIntervalHrs)*time.Hour, refresh); err != nil {
		log.Fatalw("failed to register affiliation refresh", "error", err)
	}

	manager.Start()
	defer func() {
		if err := manager.Stop(); err != nil {
			log.Errorw("failed to stop scheduler", "error", err)
		}
	}()

	log.Infow("sync worker started",
		"sweep_interval_hours", cfg.Sync.SweepIntervalHrs,
		"refresh_interval_hours", cfg.Affiliation.RefreshIntervalHrs,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Infow("received signal, shutting down", "signal", sig)
}
