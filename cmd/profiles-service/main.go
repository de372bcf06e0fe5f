package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pribylovaa/profiles-service/internal/auth"
	"github.com/pribylovaa/profiles-service/internal/cache"
	"github.com/pribylovaa/profiles-service/internal/config"
	logctx "github.com/pribylovaa/profiles-service/internal/pkg/log"
	"github.com/pribylovaa/profiles-service/internal/schemas"
	"github.com/pribylovaa/profiles-service/internal/service"
	"github.com/pribylovaa/profiles-service/internal/storage"
	"github.com/pribylovaa/profiles-service/internal/storage/minio"
	"github.com/pribylovaa/profiles-service/internal/storage/postgres"
	"github.com/pribylovaa/profiles-service/internal/telemetry"
	profileshttp "github.com/pribylovaa/profiles-service/internal/transport/http"
	"github.com/pribylovaa/profiles-service/internal/transport/http/handlers"
	"github.com/pribylovaa/profiles-service/internal/validation"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Запас на текстовые поля и служебные части multipart сверх лимита аватара.
const multipartOverhead = 1 << 20

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	// .env необязателен.
	_ = godotenv.Load()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting profiles-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	shutdownTracing, err := telemetry.Init(logctx.Into(rootCtx, log), cfg.Telemetry, cfg.Env)
	if err != nil {
		log.Error("telemetry_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := postgres.New(dbCtx, cfg.Postgres.URL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer store.Close()
	log.Info("postgres_connected")

	s3Ctx, s3Cancel := context.WithTimeout(rootCtx, 10*time.Second)
	avatars, err := minio.New(s3Ctx, cfg)
	s3Cancel()
	if err != nil {
		log.Error("minio_connect_failed", slog.String("err", err.Error()))
		store.Close()
		os.Exit(1)
	}
	log.Info("minio_connected")

	// Кэш пользователей опционален.
	var users storage.Users = store
	if cfg.Cache.RedisURL != "" {
		rCtx, rCancel := context.WithTimeout(rootCtx, 5*time.Second)
		rdb, err := cache.NewRedisClient(rCtx, cfg.Cache.RedisURL)
		rCancel()
		if err != nil {
			log.Error("redis_connect_failed", slog.String("err", err.Error()))
			store.Close()
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()

		users = cache.NewUsers(store, rdb, cfg.Cache.UsersTTL)
		log.Info("redis_connected")
	}

	schema := schemas.NewProfileSchema(validation.New(cfg))
	authn := auth.NewAuthenticator(auth.NewJWTManager(cfg.Auth), users)
	svc := service.New(store, avatars, cfg)
	h := handlers.New(svc, schema, cfg.Avatar.MaxSizeBytes+multipartOverhead)
	log.Info("service_initialized")

	apiHandler := profileshttp.NewRouter(h, authn, profileshttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
	})

	var ready atomic.Bool

	mux := http.NewServeMux()
	profileshttp.RegisterProbes(mux, &ready, store)
	mux.Handle("/", otelhttp.NewHandler(apiHandler, "profiles-api"))

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		store.Close()
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)
	log.Info("service_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("telemetry_shutdown_failed", slog.String("err", err.Error()))
	}

	log.Info("service_stopped")
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
