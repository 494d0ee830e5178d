package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/tenantgate"
	"github.com/dmitrymomot/tenantgate/api"
	"github.com/dmitrymomot/tenantgate/pkg/cache"
	"github.com/dmitrymomot/tenantgate/pkg/hostname"
	"github.com/dmitrymomot/tenantgate/pkg/hostrouter"
	"github.com/dmitrymomot/tenantgate/pkg/logger"
	"github.com/dmitrymomot/tenantgate/pkg/redis"
	"github.com/dmitrymomot/tenantgate/postgres"
)

type appConfig struct {
	Address         string        `env:"HTTP_ADDR" envDefault:":8080"`
	CNAMETarget     string        `env:"DOMAIN_CNAME_TARGET,required"`
	CacheTTL        time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	SweepSchedule   string        `env:"VERIFY_SWEEP_SCHEDULE" envDefault:"*/5 * * * *"`
	StuckAfter      time.Duration `env:"VERIFY_STUCK_AFTER" envDefault:"10m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

func main() {
	// Local development convenience; production uses real env vars.
	_ = godotenv.Load()

	var sentryCfg logger.SentryConfig
	if err := env.Parse(&sentryCfg); err != nil {
		slog.Error("failed to parse sentry config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.NewWithSentry(sentryCfg, tenantgate.LogExtractor(), requestIDExtractor())

	if err := run(log); err != nil {
		log.Error("tenantgated exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		cfg     appConfig
		hostCfg hostname.Config
		dbCfg   postgres.Config
		rdsCfg  redis.Config
	)
	for _, target := range []any{&cfg, &hostCfg, &dbCfg, &rdsCfg} {
		if err := env.Parse(target); err != nil {
			return err
		}
	}

	pool, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, dbCfg.MigrationsTable, log); err != nil {
		return err
	}

	// Shared tenant cache: Redis when configured, per-process memory
	// otherwise. Redis keeps invalidation visible across instances.
	var tenantCache cache.Cache[*tenantgate.TenantContext]
	if rdsCfg.URL != "" {
		client, err := redis.Connect(ctx, rdsCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		tenantCache = cache.NewRedis[*tenantgate.TenantContext](client,
			cache.WithKeyPrefix("tenantgate"),
		)
		log.Info("tenant cache backed by redis")
	} else {
		mem := cache.NewMemory[*tenantgate.TenantContext]()
		defer mem.Close()
		tenantCache = mem
		log.Info("tenant cache backed by process memory")
	}

	classifier := hostname.NewClassifier(hostCfg)
	dir := postgres.NewDirectory(pool)

	resolver := tenantgate.NewResolver(dir, classifier,
		tenantgate.WithCache(tenantCache, cfg.CacheTTL),
		tenantgate.WithFallbackSources(tenantgate.HeaderSource("X-Tenant-Slug")),
		tenantgate.WithResolverLogger(log),
	)

	verifier := tenantgate.NewVerifier(dir, classifier, cfg.CNAMETarget,
		tenantgate.WithVerifierCache(tenantCache, cfg.CacheTTL),
		tenantgate.WithVerifierLogger(log),
		tenantgate.WithStuckAfter(cfg.StuckAfter),
	)

	// Background recovery for attempts interrupted mid-flight.
	sweeper := cron.New()
	if _, err := tenantgate.ScheduleSweep(sweeper, verifier, cfg.SweepSchedule); err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	management := api.NewServer(verifier,
		api.WithLogger(log),
		api.WithHealthcheck(postgres.Healthcheck(pool)),
	).Router()

	tenantTraffic := chi.NewRouter()
	tenantTraffic.Use(middleware.RequestID)
	tenantTraffic.Use(resolver.Middleware())
	tenantTraffic.Get("/resolve", handleResolve)

	// Management endpoints live on the platform's own hostnames. Tenant
	// subdomains and custom domains, which arrive with hostnames the
	// platform cannot enumerate, fall through to resolved tenant traffic.
	handler := hostrouter.New(hostrouter.Routes{
		hostCfg.ApexDomain:          management,
		"api." + hostCfg.ApexDomain: management,
		"*." + hostCfg.ApexDomain:   tenantTraffic,
	}, tenantTraffic)

	return serve(ctx, log, cfg, handler)
}

// requestIDExtractor stamps log records with the chi request ID so
// verification logs correlate with their originating request.
func requestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := ctx.Value(middleware.RequestIDKey).(string); ok && id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}

// handleResolve echoes the tenant resolved from the request's hostname.
// Useful for checking DNS and proxy configuration end to end.
func handleResolve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	tc, ok := tenantgate.TenantFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no tenant resolved for this hostname"})
		return
	}
	_ = json.NewEncoder(w).Encode(tc)
}

func serve(ctx context.Context, log *slog.Logger, cfg appConfig, handler http.Handler) error {
	server := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("shutdown completed")
	return nil
}
