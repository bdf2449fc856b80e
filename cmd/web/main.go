package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "hotel_front/internal/adapters/http_server"
	"hotel_front/internal/adapters/observability"
	redisad "hotel_front/internal/adapters/redis"
	"hotel_front/internal/adapters/reviewsapi"
	"hotel_front/internal/app"
	"hotel_front/internal/domain"
	"hotel_front/internal/scheduler"
	"hotel_front/internal/session"
	"hotel_front/internal/shared"
	"hotel_front/internal/storage/memory"
	mysqlrepo "hotel_front/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo := openCatalog(cfg)
	defer closeRepo()

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}

	client, err := reviewsapi.New(cfg.ReviewsBase, cfg.ReviewsRPS, cfg.ReviewsTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize reviews client")
	}

	catalog := app.NewCatalogService(repo, cache, cfg.CacheTTL)
	sessions := session.NewStore(cache, cfg.SessionTTL)
	views := app.NewViews(client, cfg.ReviewsTimeout, cfg.LoadWorkers)
	defer views.WatchSessions(sessions)()

	rec := scheduler.New(views, cfg.ReconcileInterval, cfg.ReconcileInterval).
		WithSweep(func(ctx context.Context) int {
			return views.Sweep(ctx, sessions, cfg.SessionTTL)
		}, cfg.SweepInterval)
	if err := rec.Start(); err != nil {
		log.Fatal().Err(err).Msg("reconciler start failed")
	}
	defer rec.Stop()

	// http
	srv := server.New(cfg.CORSOrigins)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:  catalog,
		Views:    views,
		Sessions: sessions,
		Validate: server.NewValidator(),
		PageSize: cfg.PageSize,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("reviews", cfg.ReviewsBase).Msg("web listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}

// openCatalog uses MySQL when a DSN is configured and the built-in hotels
// otherwise.
func openCatalog(cfg shared.Config) (domain.HotelRepository, func()) {
	if cfg.MySQLDSN == "" {
		return memory.NewCatalog(shared.DefaultHotels...), func() {}
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db), func() { _ = db.Close() }
}
