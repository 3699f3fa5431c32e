package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup from environment variables.
type Config struct {
	Port      string
	RedisAddr string
	RedisPwd  string
	WebOrigin string

	// StatsCacheTTL bounds staleness of the cached dashboard stats.
	StatsCacheTTL time.Duration
	// SweepInterval is how often the background overdue sweep fires.
	// Zero disables the ticker; overdue loans are still caught lazily on read.
	SweepInterval time.Duration
}

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using process environment")
	}
}

func Load() Config {
	return Config{
		Port:          getenv("PORT", "3001"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:      os.Getenv("REDIS_PASSWORD"),
		WebOrigin:     getenv("WEB_ORIGIN", "http://localhost:3000"),
		StatsCacheTTL: getdur("STATS_CACHE_TTL_SECONDS", 30*time.Second),
		SweepInterval: getdur("SWEEP_INTERVAL_SECONDS", time.Minute),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("invalid duration env, using default", "key", k, "value", v)
		return def
	}
	return time.Duration(n) * time.Second
}
