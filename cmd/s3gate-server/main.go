// Package main is the entry point for the s3gate SigV4 auth gateway.
// s3gate validates AWS Signature Version 4 requests in front of an
// S3-compatible origin, issues pre-signed URLs, and proxies authenticated
// requests through.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harborlane/s3gate/internal/auth"
	"github.com/harborlane/s3gate/internal/config"
	"github.com/harborlane/s3gate/internal/credsource"
	"github.com/harborlane/s3gate/internal/credsource/postgres"
	"github.com/harborlane/s3gate/internal/credsource/sqlite"
	"github.com/harborlane/s3gate/internal/gatemetrics"
	"github.com/harborlane/s3gate/internal/handler"
	"github.com/harborlane/s3gate/internal/origin"
	"github.com/harborlane/s3gate/internal/pkg/crypto"
	"github.com/harborlane/s3gate/internal/presign"
	"github.com/harborlane/s3gate/internal/signingcache"
)

// Version information, set at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339Nano

	cfg := config.MustLoad(*configPath)

	logger := newLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("credential_source", cfg.CredSource.Driver).
		Msg("starting s3gate")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, closeSources, err := buildRegistry(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build credential registry")
	}
	defer closeSources()

	metrics := gatemetrics.New()
	metrics.SetRegistrySize(registry.Len())

	cache, stopCache := buildSigningKeyCache(cfg.Cache, logger)
	if stopCache != nil {
		defer stopCache()
	}

	authMiddleware := auth.Middleware(registry, auth.Config{
		SkipPaths:       cfg.Auth.SkipPaths,
		SigningKeyCache: cache,
		Metrics:         metrics,
	}, logger)

	issuer := presign.NewIssuer(registry, presign.Config{
		Region:        cfg.Auth.Region,
		Endpoint:      cfg.Origin.Endpoint,
		DefaultExpiry: cfg.Auth.PresignDefaultExpiry,
	}, logger)

	originClient, err := origin.NewClient(ctx, origin.Config{
		Region:          cfg.Origin.Region,
		Bucket:          cfg.Origin.Bucket,
		Endpoint:        cfg.Origin.Endpoint,
		AccessKeyID:     cfg.Origin.AccessKeyID,
		SecretAccessKey: cfg.Origin.SecretAccessKey,
		UsePathStyle:    cfg.Origin.UsePathStyle,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build origin client")
	}

	router := handler.NewRouter(handler.RouterConfig{
		AuthMiddleware: authMiddleware,
		PresignHandler: handler.NewPresignHandler(issuer, logger),
		ProxyHandler:   handler.NewProxyHandler(originClient, logger),
		HealthChecker:  alwaysHealthy{},
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Int("port", cfg.Metrics.Port).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// buildRegistry assembles the Credential Registry from the configured
// source and returns a cleanup func closing any database connections it
// opened.
func buildRegistry(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*auth.Registry, func(), error) {
	noop := func() {}

	switch cfg.CredSource.Driver {
	case "static":
		src := credsource.NewStaticSource([]credsource.StaticEntry{{
			AccessKeyID:     cfg.CredSource.StaticAccessKeyID,
			SecretAccessKey: cfg.CredSource.StaticSecretAccessKey,
			Region:          cfg.Auth.Region,
		}})
		registry, err := credsource.BuildRegistry(ctx, src)
		return registry, noop, err

	case "sqlite":
		encryptor, err := crypto.NewEncryptorFromHex(cfg.CredSource.EncryptionKeyHex)
		if err != nil {
			return nil, noop, fmt.Errorf("building encryptor: %w", err)
		}
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.CredSource.SQLitePath), logger)
		if err != nil {
			return nil, noop, fmt.Errorf("opening sqlite credential store: %w", err)
		}
		repo := sqlite.NewRepository(db, encryptor)
		registry, err := credsource.BuildRegistry(ctx, sqlite.NewSource(repo))
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return registry, func() { _ = db.Close() }, nil

	case "postgres":
		encryptor, err := crypto.NewEncryptorFromHex(cfg.CredSource.EncryptionKeyHex)
		if err != nil {
			return nil, noop, fmt.Errorf("building encryptor: %w", err)
		}
		db, err := postgres.NewDB(ctx, postgres.Config{
			Host:     cfg.CredSource.PostgresHost,
			Port:     cfg.CredSource.PostgresPort,
			Database: cfg.CredSource.PostgresDatabase,
			User:     cfg.CredSource.PostgresUser,
			Password: cfg.CredSource.PostgresPassword,
			SSLMode:  cfg.CredSource.PostgresSSLMode,
		}, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("opening postgres credential store: %w", err)
		}
		repo := postgres.NewRepository(db, encryptor)
		registry, err := credsource.BuildRegistry(ctx, postgres.NewSource(repo))
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return registry, func() { _ = db.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown credential_source.driver %q", cfg.CredSource.Driver)
	}
}

// buildSigningKeyCache builds the optional signing-key cache per
// cfg.Cache, returning a nil cache and nil stop func if caching is
// disabled. A Redis DSN selects the shared Redis-backed cache; otherwise
// the in-memory cache is used, which needs its cleanup goroutine stopped
// on shutdown.
func buildSigningKeyCache(cfg config.CacheConfig, logger zerolog.Logger) (auth.SigningKeyCache, func()) {
	if !cfg.Enabled {
		return nil, nil
	}

	if cfg.RedisDSN != "" {
		opts, err := redis.ParseURL(cfg.RedisDSN)
		if err != nil {
			logger.Error().Err(err).Msg("invalid cache.redis_dsn, falling back to in-memory signing key cache")
		} else {
			client := redis.NewClient(opts)
			return signingcache.NewRedis(client, cfg.TTL, logger), func() { _ = client.Close() }
		}
	}

	mem := signingcache.NewMemory(cfg.TTL)
	return mem, mem.Stop
}

type alwaysHealthy struct{}

func (alwaysHealthy) Healthy() bool { return true }
