package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/tutoradmin/internal/config"
	"github.com/JonMunkholm/tutoradmin/internal/core"
	"github.com/JonMunkholm/tutoradmin/internal/logging"
	"github.com/JonMunkholm/tutoradmin/internal/storage/csvstore"
	"github.com/JonMunkholm/tutoradmin/internal/storage/memstore"
	"github.com/JonMunkholm/tutoradmin/internal/storage/pgstore"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Options are the flags every command shares.
type Options struct {
	ConfigPath string
	EnvFile    string
}

// AddFlags registers the shared flags.
func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "TOML config file (default: $CONFIG_FILE)")
	flagSet.StringVar(&o.EnvFile, "env-file", ".env", "dotenv file loaded before the environment is read")
}

// app is a configured service over an open store.
type app struct {
	cfg     *config.Config
	svc     *core.Service
	closers []func()
}

// Close releases the store and the log file.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// setup loads configuration, installs logging, opens the configured store and
// writes the header row of every empty sheet.
func setup(ctx context.Context, opts *Options) (*app, error) {
	// Overload so the dotenv file wins over a stale shell environment
	if err := godotenv.Overload(opts.EnvFile); err != nil {
		slog.Debug("no .env file loaded", "path", opts.EnvFile)
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)", "path", opts.EnvFile)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	logFile := logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	a.closers = append(a.closers, func() { closeQuietly(logFile) })

	slog.Info("configuration loaded", "config", cfg.String())

	store, err := openStore(ctx, cfg.Storage, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	loc, err := cfg.Attendance.Location()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("attendance time zone: %w", err)
	}

	a.svc = core.NewService(store, core.Options{
		Location:  loc,
		WriteWait: cfg.Server.WriteWait,
	})

	n, err := a.svc.InitSheets(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init sheets: %w", err)
	}
	slog.Info("tables registered", "count", len(core.All()), "initialised", n)

	return a, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig, a *app) (core.RowStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		slog.Warn("using in-memory storage; data is lost on exit")
		return memstore.New(), nil

	case config.DriverCSV:
		store, err := csvstore.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		slog.Info("using csv storage", "dir", store.Dir())
		return store, nil

	case config.DriverPostgres:
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse database URL: %w", err)
		}
		poolConfig.MaxConns = int32(cfg.MaxConns)
		poolConfig.MinConns = int32(cfg.MinConns)
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		if u, err := url.Parse(cfg.DatabaseURL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		}

		store := pgstore.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("close failed", "error", err)
	}
}
