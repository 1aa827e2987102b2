// Package app builds the server from configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/appointments"
	"medconnect-server/internal/config"
	"medconnect-server/internal/jobs"
	"medconnect-server/internal/middleware"
	"medconnect-server/internal/notify"
	"medconnect-server/internal/payments"
	"medconnect-server/internal/revocation"
	"medconnect-server/internal/routes"
)

const shutdownTimeout = 10 * time.Second

// App is a fully wired server.
type App struct {
	Cfg          *config.Config
	Log          zerolog.Logger
	Router       *gin.Engine
	Accounts     *accounts.Resolver
	Appointments *appointments.Manager
	Payments     *payments.Service
	Reminder     *jobs.AppointmentReminder

	backend   *backend
	redis     *redis.Client
	scheduler *gocron.Scheduler
	server    *http.Server
}

// New connects every client the configuration asks for and wires the
// services and routes on top of them.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	b, err := openBackend(ctx, cfg.Database, !cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	a := &App{Cfg: cfg, Log: logger, backend: b}

	revoked, err := a.revocationStore(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	sender, err := a.sender(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	store := accounts.NewStore(b.patients, b.doctors, b.hospitals, logger)
	a.Accounts = accounts.NewResolver(store)

	a.Appointments = appointments.NewManager(b.appointments, a.Accounts, sender, logger)
	a.Appointments.NotifyTimeout = cfg.NotifyTimeout

	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
		logger.Warn().Msg("razorpay credentials are not set, payment endpoints will fail")
	}
	gateway := payments.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	a.Payments = payments.NewService(b.payments, gateway, a.Appointments, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, logger)

	a.Reminder = jobs.NewAppointmentReminder(a.Appointments, a.Accounts, sender, cfg.Reminder.Window, logger)

	a.Router = a.router(revoked)
	return a, nil
}

func (a *App) revocationStore(ctx context.Context) (revocation.Store, error) {
	switch {
	case a.Cfg.Redis.URL != "":
		opts, err := redis.ParseURL(a.Cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(opts)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.Log.Info().Msg("token revocation backed by redis")
		return revocation.NewRedisStore(a.redis), nil
	case a.backend.sql != nil:
		return revocation.NewGormStore(a.backend.sql), nil
	}
	return revocation.NewMemoryStore(), nil
}

func (a *App) sender(ctx context.Context) (notify.Sender, error) {
	if !a.Cfg.Firebase.Enabled() {
		a.Log.Warn().Msg("firebase is not configured, notifications are only logged")
		return notify.LogSender{Logger: a.Log}, nil
	}
	s, err := notify.NewFCMSender(ctx, a.Cfg.Firebase.ServiceAccountJSON, a.Cfg.Firebase.ServiceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return s, nil
}

func (a *App) router(revoked revocation.Store) *gin.Engine {
	if a.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(a.Log), middleware.Recovery(a.Log))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	if len(a.Cfg.Origins) == 0 || a.Cfg.Origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = a.Cfg.Origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	routes.SetupRoutes(router, routes.Services{
		Accounts:     a.Accounts,
		Appointments: a.Appointments,
		Payments:     a.Payments,
		Revoked:      revoked,
		DBDriver:     a.Cfg.Database.Driver,
		DBPing:       a.backend.ping,
	}, a.Cfg)
	return router
}

// Migrate creates the schema of the configured database.
func (a *App) Migrate(ctx context.Context) error {
	if err := a.backend.migrate(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", a.Cfg.Database.Driver, err)
	}
	return nil
}

// Run serves HTTP and runs the reminder job until ctx is cancelled, then
// shuts everything down.
func (a *App) Run(ctx context.Context) error {
	scheduler, err := a.Reminder.Start(a.Cfg.Reminder.Interval, a.Cfg.Reminder.Interval)
	if err != nil {
		return err
	}
	a.scheduler = scheduler

	a.server = &http.Server{
		Addr:              ":" + a.Cfg.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", a.server.Addr).Str("driver", a.Cfg.Database.Driver).Msg("starting server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = a.Shutdown(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, stops the scheduler, waits for pending
// notifications and closes every client.
func (a *App) Shutdown(ctx context.Context) error {
	a.Log.Info().Msg("shutting down server")
	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	done := make(chan struct{})
	go func() {
		a.Appointments.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.Log.Warn().Msg("gave up waiting for pending notifications")
	}

	if err := a.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	a.Log.Info().Msg("server stopped")
	return errors.Join(errs...)
}

// Close releases the database and cache clients.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.backend != nil && a.backend.close != nil {
		if err := a.backend.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
