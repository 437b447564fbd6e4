// Package config assembles runtime configuration from the environment so main
// stays lean. Every knob has a development-friendly default; production
// overrides via environment variables (a .env file is honored when present).
package config

import (
	"os"
	"strconv"
	"time"
)

// Store backends the server can run against.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Server captures top-level server configuration.
type Server struct {
	Addr            string
	StoreBackend    string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	Postgres        Postgres
	Redis           Redis
}

// Postgres captures the SQL backend configuration.
type Postgres struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// Redis captures the Redis backend configuration.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:            envString("VANADIUM_ADDR", ":8080"),
		StoreBackend:    envString("VANADIUM_STORE_BACKEND", BackendMemory),
		ShutdownTimeout: envDuration("VANADIUM_SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:  envDuration("VANADIUM_REQUEST_TIMEOUT", 30*time.Second),
		Postgres: Postgres{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
