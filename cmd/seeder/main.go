package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_front/internal/adapters/observability"
	redisad "hotel_front/internal/adapters/redis"
	"hotel_front/internal/app"
	"hotel_front/internal/domain"
	"hotel_front/internal/shared"
	mysqlrepo "hotel_front/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if cfg.MySQLDSN == "" {
		log.Fatal().Msg("MYSQL_DSN is required to seed the catalog")
	}
	log.Info().
		Int("workers", cfg.SeedWorkers).
		Int("hotels", len(shared.DefaultHotels)).
		Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		// stale cache entries expire on their own; seeding still proceeds
		log.Warn().Err(err).Msg("redis unavailable; cached hotels will not be evicted")
	}
	seeder := app.NewSeedService(repo, cache)

	workers := cfg.SeedWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed int32

	for _, h := range shared.DefaultHotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)

			if err := seeder.SeedHotel(ctx, h); err != nil {
				atomic.AddInt32(&failed, 1)
				log.Warn().Int64("id", h.ID).Err(err).Msg("seed failed")
				return
			}
			log.Info().Int64("id", h.ID).Str("name", h.Name).Msg("seed ok")
		}(h)
	}

	wg.Wait()
	if n := atomic.LoadInt32(&failed); n > 0 {
		log.Fatal().Int32("failed", n).Msg("seeding incomplete")
	}
	log.Info().Msg("seeding completed")
}
