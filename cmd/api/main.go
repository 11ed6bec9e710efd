package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ocaso/ocaso-api/internal/auth"
	"github.com/ocaso/ocaso-api/internal/bids"
	"github.com/ocaso/ocaso-api/internal/config"
	"github.com/ocaso/ocaso-api/internal/database"
	"github.com/ocaso/ocaso-api/internal/handlers"
	"github.com/ocaso/ocaso-api/internal/importer"
	"github.com/ocaso/ocaso-api/internal/listings"
	"github.com/ocaso/ocaso-api/internal/logger"
	"github.com/ocaso/ocaso-api/internal/middleware"
	"github.com/ocaso/ocaso-api/internal/notify"
	"github.com/ocaso/ocaso-api/internal/routes"
	"github.com/ocaso/ocaso-api/internal/search"
	"github.com/ocaso/ocaso-api/internal/store"
	"github.com/ocaso/ocaso-api/internal/taxonomy"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	// 0. --- Load Configuration (.env + environment) ---
	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})
	slog.SetDefault(appLogger)

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Database Connection + Schema ---
	db, err := openDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	st := store.New(db, appLogger)

	// 2. --- Redis (optional: cache invalidation + shared rate limits) ---
	redisClient := notify.Connect(ctx, notify.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, appLogger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	notifier := notify.New(redisClient, cfg.Redis.Channel, appLogger)

	// 3. --- Services ---
	taxonomyService := taxonomy.NewService(st, notifier, appLogger)
	if cfg.App.SeedDefaultTaxonomy {
		seeded, err := taxonomyService.SeedDefaults(ctx)
		if err != nil {
			return err
		}
		if seeded {
			appLogger.Info("default taxonomy seeded", "categories", len(taxonomy.Defaults))
		}
	}

	app := &handlers.Handlers{
		Store:    st,
		Taxonomy: taxonomyService,
		Importer: importer.New(st, notifier, appLogger, importer.Options{LogOrphans: cfg.Import.LogOrphans}),
		Search:   search.NewService(st, appLogger),
		Listings: listings.NewService(st, notifier, appLogger),
		Bids:     bids.NewService(st, appLogger),
		Logger:   appLogger,
	}

	// 4. --- Rate Limiter: shared through Redis when available ---
	// Both run at SEARCH_RATE_RPS; only the in-process buckets honour SEARCH_RATE_BURST.
	var limiter middleware.Limiter
	if redisClient != nil {
		limiter = middleware.NewRedisRateLimiter(redisClient, cfg.Search.RateRPS, appLogger)
	} else {
		limiter = middleware.NewKeyedLimiter(cfg.Search.RateRPS, cfg.Search.RateBurst)
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Deps{
		Tokens:     auth.NewTokenService(string(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL),
		Limiter:    limiter,
		CORSOrigin: cfg.Server.CORSOrigin,
		Logger:     appLogger,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("starting Ocaso API server", "addr", cfg.Server.Addr, "env", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	// --- Graceful Shutdown ---
	appLogger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDatabase(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*database.DB, error) {
	if cfg.Database.Driver == "sqlite" {
		return database.OpenSQLite(ctx, cfg.Database.SQLitePath, appLogger)
	}
	return database.OpenMySQL(ctx, cfg.Database.DSN, database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, appLogger)
}
