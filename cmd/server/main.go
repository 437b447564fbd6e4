package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vanadium/internal/platform/config"
	"vanadium/internal/platform/httpserver"
	"vanadium/internal/platform/logger"
	platformmetrics "vanadium/internal/platform/metrics"
	platformpostgres "vanadium/internal/platform/postgres"
	platformredis "vanadium/internal/platform/redis"
	registrationhandler "vanadium/internal/registration/handler"
	registrationmetrics "vanadium/internal/registration/metrics"
	registrationservice "vanadium/internal/registration/service"
	registrationstore "vanadium/internal/registration/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages.
func main() {
	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	ctx := context.Background()

	st, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	httpMetrics := platformmetrics.New()
	svc := registrationservice.New(st, log, registrationmetrics.New())
	h := registrationhandler.New(svc, log, httpMetrics, cfg.RequestTimeout)

	router := chi.NewRouter()
	h.Register(router)
	router.Get("/healthz", handleHealth(st))
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting vanadium", "addr", cfg.Addr, "store_backend", cfg.StoreBackend)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildStore selects the persistence backend from configuration. The cleanup
// callback closes whatever connections the backend opened.
func buildStore(ctx context.Context, cfg config.Server) (registrationstore.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := platformpostgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return registrationstore.NewPostgresStore(db), func() { _ = db.Close() }, nil

	case config.BackendRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return registrationstore.NewRedisStore(client.Client), func() { _ = client.Close() }, nil

	default:
		return registrationstore.NewMemoryStore(), func() {}, nil
	}
}

func handleHealth(st registrationstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
