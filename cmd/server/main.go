package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/grainexport/internal/cache"
	"github.com/Simplici0/grainexport/internal/catalog"
	"github.com/Simplici0/grainexport/internal/config"
	"github.com/Simplici0/grainexport/internal/db"
	"github.com/Simplici0/grainexport/internal/estimate"
	"github.com/Simplici0/grainexport/internal/logger"
	"github.com/Simplici0/grainexport/internal/migrations"
	"github.com/Simplici0/grainexport/internal/seed"
	"github.com/Simplici0/grainexport/internal/settings"
)

const redisReadyWait = 10 * time.Second

type server struct {
	log       *zap.Logger
	estimates *estimate.Service
	products  *catalog.Repository
	settings  *settings.Repository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.IsDev(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
	log.Info("server shut down gracefully")
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	database, err := db.Open(ctx, cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if cfg.AutoMigrate {
		if err := migrations.Up(ctx, database); err != nil {
			return fmt.Errorf("run database migrations: %w", err)
		}
	}

	stats, err := seed.Run(ctx, database, seed.Config{ExportDutyPercent: cfg.ExportDutyPercent})
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	log.Info("seed complete", zap.Int("inserts", stats.Inserts))

	products := catalog.NewRepository(database)
	settingsRepo := settings.NewRepository(database)

	var store estimate.Store = estimate.NewSQLStore(database)
	if cfg.CacheEnabled() {
		rc := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, "grainexport:")
		defer rc.Close()

		if err := waitForRedis(ctx, rc, log); err != nil {
			log.Warn("redis unavailable, estimate cache disabled", zap.Error(err))
		} else {
			store = estimate.NewCachedStore(store, rc, log)
			log.Info("estimate cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
		}
	}

	srv := &server{
		log:       log,
		estimates: estimate.NewService(store, products, settingsRepo, log, cfg.StrictInputs),
		products:  products,
		settings:  settingsRepo,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func waitForRedis(ctx context.Context, rc *cache.Redis, log *zap.Logger) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = redisReadyWait

	return backoff.RetryNotify(
		func() error {
			return rc.Ping(ctx)
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			log.Warn("redis ping failed, retrying", zap.Error(err), zap.Duration("next_attempt_in", next))
		},
	)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Get("/products", s.handleProductsList)
	r.Get("/products/{id}/draft", s.handleProductDraft)

	r.Post("/pricing/calculate", s.handlePricingCalculate)
	r.Post("/pricing/quick", s.handlePricingQuick)

	r.Get("/settings", s.handleSettingsGet)
	r.Put("/settings", s.handleSettingsUpdate)

	r.Route("/estimates", func(r chi.Router) {
		r.Get("/", s.handleEstimatesList)
		r.Post("/", s.handleEstimateCreate)
		r.Get("/{id}", s.handleEstimateDetail)
		r.Get("/{id}/text", s.handleEstimateText)
		r.Put("/{id}", s.handleEstimateReplace)
		r.Delete("/{id}", s.handleEstimateDelete)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
