package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"geoattend/internal/domain/audit"
	"geoattend/internal/domain/payroll"
	"geoattend/internal/platform/config"
	cryptoutil "geoattend/internal/platform/crypto"
	"geoattend/internal/platform/db"
	"geoattend/internal/platform/jobs"
	"geoattend/internal/platform/metrics"
	"geoattend/internal/transport/http/api"
	audithandler "geoattend/internal/transport/http/handlers/audit"
	payrollhandler "geoattend/internal/transport/http/handlers/payroll"
	"geoattend/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// Pinger reports database readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	Config      config.Config
	DB          Pinger
	Payroll     *payroll.Service
	Jobs        *jobs.Service
	Metrics     *metrics.Collector
	Idempotency middleware.IdempotencyChecker
	Audit       *audit.Service
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	if !crypto.Configured() {
		slog.Warn("DATA_ENCRYPTION_KEY not set, payslips are stored unencrypted")
	}

	collector := metrics.New()
	jobsSvc := jobs.New(cfg.JobQueueSize)
	service := payroll.NewService(payroll.NewStore(pool), crypto, payroll.Options{
		PayslipDir:        cfg.PayslipDir,
		DefaultPTKPStatus: cfg.DefaultPTKPStatus,
	})

	router := NewRouter(RouterDeps{
		Config:      cfg,
		DB:          pool,
		Payroll:     service,
		Jobs:        jobsSvc,
		Metrics:     collector,
		Idempotency: middleware.NewIdempotencyStore(pool),
		Audit:       audit.New(pool),
	})

	return &App{Config: cfg, DB: pool, Router: router, Jobs: jobsSvc, Metrics: collector}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func NewRouter(deps RouterDeps) http.Handler {
	trustedProxies, err := deps.Config.TrustedProxyPrefixes()
	if err != nil {
		slog.Warn("ignoring trusted proxies", "err", err)
		trustedProxies = nil
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.ClientAddr(trustedProxies))
	router.Use(middleware.Logger(deps.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(deps.Config.IsProduction()))
	router.Use(middleware.BodyLimit(deps.Config.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := deps.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if deps.Config.MetricsEnabled && deps.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(deps.Config.RateLimitPerMin, time.Minute))
		var auditor payrollhandler.AuditRecorder
		if deps.Audit != nil {
			auditor = deps.Audit
			audithandler.NewHandler(deps.Audit).RegisterRoutes(r)
		}
		payrollHandler := payrollhandler.NewHandler(deps.Payroll, deps.Jobs, deps.Metrics, deps.Idempotency, auditor)
		payrollHandler.RegisterRoutes(r)
	})

	return router
}

func Run() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	jobsCtx, cancelJobs := context.WithCancel(context.Background())
	app.Jobs.Start(jobsCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("GeoAttend payroll server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
	cancelJobs()
	app.Jobs.Wait()
}
