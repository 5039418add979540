// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pierkoo/flasktaskr/internal/admin"
	"github.com/pierkoo/flasktaskr/internal/auth"
	"github.com/pierkoo/flasktaskr/internal/config"
	"github.com/pierkoo/flasktaskr/internal/core"
	"github.com/pierkoo/flasktaskr/internal/health"
	"github.com/pierkoo/flasktaskr/internal/middleware"
	"github.com/pierkoo/flasktaskr/internal/server"
	"github.com/pierkoo/flasktaskr/internal/session"
	"github.com/pierkoo/flasktaskr/internal/task"
	"github.com/pierkoo/flasktaskr/internal/user"
	"github.com/pierkoo/flasktaskr/internal/web"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("gen-keys", false, "write a new session signing key pair and exit")
	flag.Parse()

	if err := run(*configPath, *genKeys); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string, genKeys bool) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	if genKeys {
		return writeSessionKeys(cfg.Session, logger)
	}

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	codec, err := session.NewCodec(cfg.Session)
	if err != nil {
		return fmt.Errorf("session codec: %w (run with -gen-keys to create keys)", err)
	}
	sessions := session.NewManager(
		codec,
		session.NewRedisRevocations(redis.Client),
		cfg.Session,
		logger,
	)

	renderer, err := web.NewRenderer(cfg.App.Name, logger)
	if err != nil {
		return err
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)

	authSvc := auth.NewService(userSvc, logger)
	authHandler := auth.NewHandler(authSvc, renderer)

	taskRepo := task.NewRepository(db.DB)
	taskSvc := task.NewService(taskRepo, logger)
	taskHandler := task.NewHandler(taskSvc, renderer)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:       db.Stats,
		RedisStats:    redis.PoolStats,
		DBPing:        db.Ping,
		RedisPing:     redis.Ping,
		SchemaVersion: db.SchemaVersion,
		Tasks:         taskSvc,
		OnError:       renderer.ServerError,
	})

	limiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.NewLimit(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		FailOpen:  true,
		OnLimited: renderer.TooManyRequests,
	})

	srv := server.New(server.Config{
		ServerConfig:     cfg.Server,
		Drainer:          healthHandler,
		Logger:           logger,
		NotFound:         renderer.NotFound,
		MethodNotAllowed: renderer.MethodNotAllowed,
	})

	srv.Mount(server.Routes{
		Sessions: sessions,
		Roles:    authSvc,
		Renderer: renderer,
		Limiter:  limiter,
		Health:   healthHandler,
		Auth:     authHandler,
		Tasks:    taskHandler,
		Admin:    adminHandler,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// writeSessionKeys refuses to overwrite an existing private key, since that
// would log out every user.
func writeSessionKeys(cfg config.SessionConfig, logger *slog.Logger) error {
	if _, err := os.Stat(cfg.PrivateKeyPath); err == nil {
		return fmt.Errorf("session key %s already exists", cfg.PrivateKeyPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat session key: %w", err)
	}

	for _, path := range []string{cfg.PrivateKeyPath, cfg.PublicKeyPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("create key dir: %w", err)
		}
	}

	if err := session.GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath); err != nil {
		return err
	}

	logger.Info("session keys written",
		"private", cfg.PrivateKeyPath,
		"public", cfg.PublicKeyPath,
	)
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
