package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/infra/shutdown"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:    "respkv-server",
		Usage:   "Serve GET over the Redis protocol",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				EnvVars: []string{"RESPKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "override server.redis.addr",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override log.level (debug, info, warn, error)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	loader := newLoader(c)

	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, logCloser, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	info := buildinfo.Get()
	log.Info("starting respkv-server",
		"version", info.Version,
		"commit", info.Commit,
		"go", info.GoVersion,
		"config_file", loader.FilePath())
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	metrics := metric.NewRegistry()

	store, err := initStorage(c.Context, cfg, log, metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	// Hooks run in reverse registration order, so the store closes last.
	shutdownHandler.OnShutdown("storage", func(context.Context) error {
		log.Info("closing storage")
		return store.Close()
	})

	if cfg.Server.Metrics.Enabled {
		metricsServer := metric.NewServer(cfg.Server.Metrics.Addr, metrics)
		go func() {
			log.Info("metrics server listening", "addr", cfg.Server.Metrics.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", "error", err)
				shutdownHandler.Trigger("metrics server failed")
			}
		}()
		shutdownHandler.OnShutdown("metrics", metricsServer.Shutdown)
	}

	redisCfg := &redisserver.Config{
		Addr:           cfg.Server.Redis.Addr,
		ReadTimeout:    cfg.Server.Redis.ReadTimeout,
		WriteTimeout:   cfg.Server.Redis.WriteTimeout,
		IdleTimeout:    cfg.Server.Redis.IdleTimeout,
		RateLimit:      cfg.Server.Redis.RateLimit,
		MaxConnections: cfg.Server.Redis.MaxConnections,
	}
	srv := redisserver.New(redisCfg, store, metrics, log)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}
	shutdownHandler.OnShutdown("redis", srv.Shutdown)

	if path := loader.FilePath(); path != "" {
		stop, err := watchConfig(loader, path, log)
		if err != nil {
			log.Warn("configuration reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config-watcher", func(context.Context) error {
				return stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	reason, err := shutdownHandler.Wait(ctx)
	if err != nil {
		log.Error("shutdown error", "reason", reason, "error", err)
		return err
	}

	log.Info("server stopped gracefully", "reason", reason)
	return nil
}

// newLoader builds the configuration loader. Command-line flags take
// precedence over the file and environment.
func newLoader(c *cli.Context) *confloader.Loader {
	overrides := map[string]any{}
	if c.IsSet("addr") {
		overrides["server.redis.addr"] = c.String("addr")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	return confloader.NewLoader(opts...)
}

// loadConfig loads defaults, file, environment and flags, then validates.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger creates the process logger and installs it as the default.
// The returned closer is non-nil when logs go to a rotated file.
func initLogger(cfg *config.ServerConfig) (logger.Logger, io.Closer, error) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer
	)
	if cfg.Log.File != "" {
		w := logger.NewFileWriter(logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		})
		out, closer = w, w
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.SetDefault(log)
	return log, closer, nil
}

// initStorage opens the configured engine, registers its metrics and
// writes the seed entries.
func initStorage(ctx context.Context, cfg *config.ServerConfig, log logger.Logger, metrics *metric.Registry) (storage.Store, error) {
	var (
		store storage.Store
		keys  func() int
	)

	switch cfg.Storage.Engine {
	case storage.EngineBadger:
		bs, err := storage.NewBadgerStore(storage.BadgerConfig{
			Dir:         cfg.Storage.DataDir,
			GCInterval:  cfg.Storage.Badger.GCInterval,
			GCThreshold: cfg.Storage.Badger.GCThreshold,
			SyncWrites:  cfg.Storage.Badger.SyncWrites,
		}, logger.ToSlog(log).With("component", "badger"))
		if err != nil {
			return nil, err
		}
		if err := bs.RegisterMetrics(metrics.Registerer()); err != nil {
			_ = bs.Close()
			return nil, err
		}
		store = bs
	default:
		ms := memory.New()
		keys = ms.Len
		store = ms
	}

	if keys != nil {
		if err := metrics.Registerer().Register(metric.NewCollector(cfg.Storage.Engine, keys)); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("register store collector: %w", err)
		}
	}

	if err := storage.Seed(ctx, store, cfg.Storage.Seed); err != nil {
		_ = store.Close()
		return nil, err
	}

	log.Info("storage ready",
		"engine", cfg.Storage.Engine,
		"seeded_keys", len(cfg.Storage.Seed))
	return store, nil
}

// watchConfig reloads the configuration file on change and applies the
// settings that can change at runtime. Today that is the log level.
func watchConfig(loader *confloader.Loader, path string, log logger.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.ToSlog(log)))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg := config.Default()
		if err := loader.Reload(cfg); err != nil {
			log.Error("configuration reload failed", "error", err)
			return
		}
		if err := config.Verify(cfg); err != nil {
			log.Error("reloaded configuration is invalid", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w.Stop, nil
}
