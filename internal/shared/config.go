package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPAddr string

	// Empty MySQLDSN serves the catalog from memory.
	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string

	ReviewsBase    string
	ReviewsRPS     int
	ReviewsTimeout time.Duration

	LoadWorkers       int
	SeedWorkers       int
	PageSize          int
	SessionTTL        time.Duration
	CacheTTL          time.Duration
	ReconcileInterval time.Duration
	SweepInterval     time.Duration
	CORSOrigins       []string
}

// Load reads the environment, after merging an optional .env file.
// Variables already set in the environment win over the file.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
		}
		return def
	}
	secs := func(k string, def int) time.Duration {
		return time.Duration(atoi(k, def)) * time.Second
	}

	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		LogLevel:          env("LOG_LEVEL", "info"),
		HTTPAddr:          env("HTTP_ADDR", ":3001"),
		MySQLDSN:          os.Getenv("MYSQL_DSN"),
		RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
		RedisDB:           atoi("REDIS_DB", 0),
		RedisPass:         env("REDIS_PASSWORD", ""),
		ReviewsBase:       strings.TrimRight(env("REVIEWS_BASE_URL", "http://localhost:8080"), "/"),
		ReviewsRPS:        atoi("REVIEWS_RPS", 20),
		ReviewsTimeout:    secs("REVIEWS_TIMEOUT_SECONDS", 10),
		LoadWorkers:       atoi("LOAD_WORKERS", 4),
		SeedWorkers:       atoi("SEED_WORKERS", 4),
		PageSize:          atoi("PAGE_SIZE", 10),
		SessionTTL:        secs("SESSION_TTL_SECONDS", 86400),
		CacheTTL:          secs("CACHE_TTL_SECONDS", 900),
		ReconcileInterval: secs("RECONCILE_INTERVAL_SECONDS", 30),
		SweepInterval:     secs("SWEEP_INTERVAL_SECONDS", 60),
		CORSOrigins:       list(env("CORS_ORIGINS", "http://localhost:3000")),
	}
	if c.MySQLDSN == "" {
		log.Warn().Msg("MYSQL_DSN is empty; serving the built-in catalog from memory")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
