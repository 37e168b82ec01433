package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/devsim-ops/go-dashboard-backend/config"
	"github.com/devsim-ops/go-dashboard-backend/internal/bootstrap"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/alert"
	monitoringhttp "github.com/devsim-ops/go-dashboard-backend/internal/monitoring/http"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/ingest"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/repository"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/service"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/store"
	platformhttp "github.com/devsim-ops/go-dashboard-backend/internal/platform/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis and Postgres are optional; without them the dashboard runs with
	// in-process state only.
	var deps bootstrap.RouterDeps
	var statusRepo *repository.StatusRepository
	var history *repository.AlertHistoryRepository

	if cfg.Redis.Addr != "" {
		client, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		deps.Redis = client
		statusRepo = repository.NewStatusRepository(client)
	} else {
		log.Println("REDIS_ADDR not set, status mirror disabled")
	}

	if cfg.Database.DSN != "" {
		db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer db.Close()
		deps.DB = db
		history = repository.NewAlertHistoryRepository(db)
	} else {
		log.Println("DB_DSN not set, alert history disabled")
	}

	statusStore := store.New(cfg.Monitor.LogCap)
	platformClient := platformhttp.NewPlatformClient(cfg.Platform.BaseURL)

	var notifier alert.Notifier = alert.LogNotifier{}
	if deps.Redis != nil {
		notifier = alert.MultiNotifier{alert.LogNotifier{}, alert.NewRedisNotifier(deps.Redis)}
	}

	emitterOpts := []alert.EmitterOption{
		alert.WithRateLimit(cfg.Monitor.AlertsPerSec, cfg.Monitor.AlertBurst),
		alert.WithFocus(func(projectID string) {
			log.Printf("focus requested for project %s", projectID)
		}),
	}
	if history != nil {
		emitterOpts = append(emitterOpts, alert.WithArchiver(history))
	}

	// Device reconnection semantics stay with the platform; alert actions
	// keep the default no-op retrier and only the explicit API passthrough
	// signals retry intent upstream.
	emitter := alert.NewEmitter(statusStore, notifier, cfg.Monitor.RecencyWindow, emitterOpts...)
	ingestor := ingest.New(statusStore, emitter, ingest.WithWindow(cfg.Monitor.RecencyWindow))
	monitor := service.NewMonitor(platformClient, ingestor, statusRepo, cfg.Monitor.PollInterval)

	if err := monitor.Start(); err != nil {
		log.Fatalf("monitor: %v", err)
	}
	defer monitor.Stop()

	deps.ServiceName = "go-dashboard-backend"
	deps.Version = cfg.App.Version
	deps.Monitoring = monitoringhttp.New(statusStore, history)
	deps.Platform = platformhttp.New(platformClient, statusStore, platformClient)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: bootstrap.BuildRouter(deps),
	}

	go func() {
		log.Printf("listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
