package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smarthr/internal/app/session"
	"smarthr/internal/domain/payroll"
	"smarthr/internal/platform/config"
	"smarthr/internal/platform/crypto"
	"smarthr/internal/platform/db"
	"smarthr/internal/platform/metrics"
	"smarthr/internal/transport/http/api"
	attendancehandler "smarthr/internal/transport/http/handlers/attendance"
	authhandler "smarthr/internal/transport/http/handlers/auth"
	corehandler "smarthr/internal/transport/http/handlers/core"
	leavehandler "smarthr/internal/transport/http/handlers/leave"
	payrollhandler "smarthr/internal/transport/http/handlers/payroll"
	"smarthr/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Session *session.Session
	Metrics *metrics.Collector
	Router  http.Handler
	archive *pgxpool.Pool
}

// Open builds and loads a session over cfg.DataDir. The archive pool is
// returned so the caller can close it; it is nil when no archive is set.
func Open(ctx context.Context, cfg config.Config, collector *metrics.Collector) (*session.Session, *pgxpool.Pool, error) {
	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("data encryption key: %w", err)
	}
	opts := []session.Option{
		session.WithMetrics(collector),
		session.WithPayslips(payroll.PayslipWriter{Dir: cfg.PayslipDir, Crypto: sealer}),
	}

	var pool *pgxpool.Pool
	if cfg.ArchiveDatabaseURL != "" {
		pool, err = db.Connect(ctx, cfg.ArchiveDatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("archive connect: %w", err)
		}
		opts = append(opts, session.WithArchive(payroll.NewArchive(pool)))
	}

	sess := session.New(cfg.DataDir, opts...)
	if err := sess.Load(ctx); err != nil {
		if errors.Is(err, session.ErrEmployeesUnavailable) {
			slog.Error("employee file failed to load; employee changes and batch payroll are disabled", "dir", cfg.DataDir, "err", err)
		} else {
			slog.Warn("data directory loaded with errors", "dir", cfg.DataDir, "err", err)
		}
	}
	return sess, pool, nil
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	collector := metrics.New()
	sess, pool, err := Open(ctx, cfg, collector)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Session: sess, Metrics: collector, archive: pool}
	app.Router = app.routes()
	return app, nil
}

func (a *App) Close() {
	if a.archive != nil {
		a.archive.Close()
	}
}

func (a *App) routes() http.Handler {
	cfg := a.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.Throttle{
		Login:     cfg.LoginRatePerMinute,
		Mutations: cfg.LoginRatePerMinute * 3,
		Window:    time.Minute,
	}.Middleware())

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Session.EmployeesReady(); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "employees_unavailable", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(a.Session, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		corehandler.NewHandler(a.Session).RegisterRoutes(r)
		attendancehandler.NewHandler(a.Session).RegisterRoutes(r)
		leavehandler.NewHandler(a.Session).RegisterRoutes(r)
		payrollhandler.NewHandler(a.Session).RegisterRoutes(r)
	})
	return router
}

// Run serves the API until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg config.Config) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("smarthr server listening", "addr", cfg.Addr, "data_dir", cfg.DataDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
