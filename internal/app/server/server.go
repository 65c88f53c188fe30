package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"perfdash/internal/domain/actions"
	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/dashboard"
	"perfdash/internal/platform/config"
	"perfdash/internal/platform/db"
	"perfdash/internal/platform/metrics"
	"perfdash/internal/transport/http/api"
	authhandler "perfdash/internal/transport/http/handlers/auth"
	datasethandler "perfdash/internal/transport/http/handlers/datasets"
	"perfdash/internal/transport/http/middleware"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config    config.Config
	Store     actions.StoreAPI
	Dashboard *dashboard.Service
	Metrics   *metrics.Collector
	Router    http.Handler
}

// SetupLogging installs a JSON slog handler as the process default.
func SetupLogging(cfg config.Config) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
}

// New opens the action store and wires the router. The caller owns Close.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	normalize, err := cfg.NormalizeOptions()
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	base, err := analytics.ParsePercentBase(cfg.PercentBase)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	collector := metrics.New()
	dash := dashboard.New(dashboard.Options{
		CacheSize: cfg.DatasetCacheSize,
		Normalize: normalize,
		Actions:   actions.NewService(store),
		Metrics:   collector,
	})
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL, accounts(cfg)...)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authService)
		r.With(middleware.LoginRateLimit(cfg.RateLimitPerMinute, time.Minute)).Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
			r.Get("/auth/me", authHandler.HandleMe)

			datasetHandler := datasethandler.NewHandler(dash, collector, cfg.RankingDefaultN, base, cfg.ScoreYear)
			datasetHandler.RegisterRoutes(r)
		})
	})

	slog.Info("app configured",
		"env", cfg.Environment,
		"auth", cfg.AuthEnabled(),
		"postgres", cfg.DatabaseURL != "",
		"categoryPolicy", normalize.CategoryPolicy,
		"percentBase", base,
		"scoreYear", cfg.ScoreYear,
	)
	return &App{Config: cfg, Store: store, Dashboard: dash, Metrics: collector, Router: router}, nil
}

func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg config.Config) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("perfdash listening", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// openStore prefers Postgres when DATABASE_URL is set and falls back to the
// embedded SQLite file.
func openStore(ctx context.Context, cfg config.Config) (actions.StoreAPI, error) {
	if cfg.DatabaseURL != "" {
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
		return actions.NewPGStore(pool), nil
	}

	sqlDB, err := db.OpenSQLite(ctx, cfg.ActionsDBPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	store, err := actions.NewSQLStore(ctx, sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return store, nil
}

func accounts(cfg config.Config) []auth.Account {
	return []auth.Account{
		{Username: cfg.AdminUser, PasswordHash: cfg.AdminPasswordHash, Role: auth.RoleEditor},
		{Username: cfg.ViewerUser, PasswordHash: cfg.ViewerPasswordHash, Role: auth.RoleViewer},
	}
}
