package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/geo"
	"github.com/jwalitptl/clinic-api/internal/handler/appointment"
	authhandler "github.com/jwalitptl/clinic-api/internal/handler/auth"
	"github.com/jwalitptl/clinic-api/internal/handler/billing"
	"github.com/jwalitptl/clinic-api/internal/handler/doctor"
	geohandler "github.com/jwalitptl/clinic-api/internal/handler/geo"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	"github.com/jwalitptl/clinic-api/internal/handler/medicalrecord"
	"github.com/jwalitptl/clinic-api/internal/handler/patient"
	promhandler "github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-api/internal/handler/staff"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-api/internal/router"
	appointmentsvc "github.com/jwalitptl/clinic-api/internal/service/appointment"
	authsvc "github.com/jwalitptl/clinic-api/internal/service/auth"
	billingsvc "github.com/jwalitptl/clinic-api/internal/service/billing"
	doctorsvc "github.com/jwalitptl/clinic-api/internal/service/doctor"
	geosvc "github.com/jwalitptl/clinic-api/internal/service/geo"
	medicalrecordsvc "github.com/jwalitptl/clinic-api/internal/service/medicalrecord"
	patientsvc "github.com/jwalitptl/clinic-api/internal/service/patient"
	staffsvc "github.com/jwalitptl/clinic-api/internal/service/staff"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

const metricsNamespace = "clinic"

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

// setup loads config and the logger shared by every subcommand
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	l, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, l, nil
}

func serve(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	jwt := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	registry := promhandler.NewRegistry()
	m, err := buildMediator(cfg, db, jwt, log, registry)
	if err != nil {
		return err
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORS.AllowedOrigins
	if len(cfg.CORS.AllowedMethods) > 0 {
		cors.AllowMethods = cfg.CORS.AllowedMethods
	}
	if len(cfg.CORS.AllowedHeaders) > 0 {
		cors.AllowHeaders = cfg.CORS.AllowedHeaders
	}
	cors.MaxAge = cfg.CORS.MaxAge

	r := router.NewRouter(
		logger.Component(log, "http"),
		middleware.NewAuthMiddleware(jwt),
		metrics.New(registry, metricsNamespace),
		router.Handlers{
			Auth:          authhandler.NewHandler(m),
			Health:        health.NewHandler(health.Checks{"postgres": db}),
			Doctor:        doctor.NewHandler(m),
			Patient:       patient.NewHandler(m),
			Staff:         staff.NewHandler(m),
			Appointment:   appointment.NewHandler(m),
			MedicalRecord: medicalrecord.NewHandler(m),
			Billing:       billing.NewHandler(m),
			Geo:           geohandler.NewHandler(m),
			Metrics:       promhandler.New(registry).Handler(),
		},
		router.Config{
			Mode:           cfg.Server.Mode,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			CORS:           cors,
			Security:       middleware.DefaultSecurityConfig(),
			RateLimiter:    limiter,
		},
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited properly")
	return nil
}

// buildMediator registers every command and query handler behind the standard pipeline
func buildMediator(cfg *config.Config, db *sqlx.DB, jwt auth.JWTService, log zerolog.Logger, reg prometheus.Registerer) (*mediator.Mediator, error) {
	encryptor, err := security.NewAESEncryptor([]byte(cfg.Security.EncryptionKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}
	hours, err := cfg.Clinic.WorkingHours()
	if err != nil {
		return nil, err
	}

	uow := postgres.NewUnitOfWork(db, encryptor)
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	pipelineLog := logger.Component(log, "mediator")

	m := mediator.New(
		mediator.Logging(pipelineLog),
		mediator.Metrics(reg, metricsNamespace),
		mediator.Recovery(),
		mediator.Validation(mediator.NewValidator()),
	)

	doctorsvc.NewService(uow, nil).Register(m)
	patientsvc.NewService(uow, nil).Register(m)
	staffsvc.NewService(uow, hasher, nil).Register(m)
	authsvc.NewService(uow, jwt, hasher, nil).Register(m)
	appointmentsvc.NewService(uow, appointmentsvc.Schedule{Hours: hours, SlotLength: cfg.Clinic.SlotLength()}, nil).Register(m)
	billingsvc.NewService(uow, nil).Register(m)
	medicalrecordsvc.NewService(uow, nil).Register(m)
	geosvc.NewService(geo.NewClient(geo.Config{
		BaseURL:  cfg.Geo.BaseURL,
		Timeout:  cfg.Geo.Timeout,
		CacheTTL: cfg.Geo.CacheTTL,
	})).Register(m)

	return m, nil
}
