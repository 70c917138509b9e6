package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	promhandler "github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-api/internal/notification"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/security"
	"github.com/jwalitptl/clinic-api/pkg/worker"
)

func main() {
	var configPath string
	root := &cobra.Command{
		Use:           "clinic-worker",
		Short:         "Publishes outbox events, purges old ones and sends notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("clinic-worker failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	base, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	l := base.With().Str("worker_id", workerID()).Logger()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	encryptor, err := security.NewAESEncryptor([]byte(cfg.Security.EncryptionKey))
	if err != nil {
		return fmt.Errorf("failed to create encryptor: %w", err)
	}
	uow := postgres.NewUnitOfWork(db, encryptor)

	broker, err := redis.NewRedisBroker(ctx, redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, logger.Component(l, "broker"))
	if err != nil {
		return err
	}
	defer broker.Close()

	registry := promhandler.NewRegistry()
	m := metrics.New(registry, "clinic")

	processor, err := worker.NewOutboxProcessor(uow, broker, worker.OutboxProcessorConfig{
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: cfg.Outbox.PollInterval,
		MaxRetries:   cfg.Outbox.MaxRetries,
		RetryDelay:   cfg.Outbox.RetryDelay,
	}, logger.Component(l, "outbox"), m)
	if err != nil {
		return err
	}

	scheduler := cron.New()
	cleanup := worker.NewOutboxCleanup(uow, cfg.Outbox.Retention, logger.Component(l, "outbox-cleanup"), m)
	if _, err := cleanup.Schedule(ctx, scheduler, cfg.Outbox.CleanupSchedule); err != nil {
		return err
	}

	location, err := cfg.Clinic.Location()
	if err != nil {
		return err
	}
	notifier := notification.NewNotifier(broker, uow, mailer(cfg.SMTP, l), cfg.Clinic.Name, location, logger.Component(l, "notifier"), m)

	srv := healthServer(cfg.Worker.HealthPort, health.Checks{"postgres": db, "redis": broker}, promhandler.New(registry))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := notifier.Run(ctx); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("notifier stopped")
		}
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error().Err(err).Msg("health server failed")
		}
	}()
	scheduler.Start()
	l.Info().Str("cleanup_schedule", cfg.Outbox.CleanupSchedule).Msg("worker started")

	<-ctx.Done()
	l.Info().Msg("shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	<-scheduler.Stop().Done()
	wg.Wait()
	return nil
}

func mailer(cfg config.SMTPConfig, l zerolog.Logger) email.Service {
	if !cfg.Enabled {
		return email.NewLogService(logger.Component(l, "mailer"))
	}
	return email.NewSMTPService(email.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
}

func healthServer(port int, checks health.Checks, scrape *promhandler.Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(checks).RegisterRoutes(&engine.RouterGroup)
	scrape.RegisterRoutes(engine)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func workerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}
