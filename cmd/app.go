package cmd

import (
	"context"
	"fmt"

	"netbox-reconciler/core/config"
	"netbox-reconciler/core/database"
	"netbox-reconciler/core/journal"
	"netbox-reconciler/core/logger"
	"netbox-reconciler/core/netbox"
	"netbox-reconciler/core/reconcile"
	"netbox-reconciler/core/storage"
	"netbox-reconciler/feature/inventory"

	"go.uber.org/zap"
)

// app holds the components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	journal  *journal.Journal
	archiver *storage.Archiver
	service  *inventory.Service
}

// loadConfig reads configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigFrom(".", configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}

// newApp wires logger, NetBox client, engine, journal and report archive.
// Journal and archive problems are logged and the feature is left disabled.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	l, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	client, err := netbox.NewClient(cfg.NetBox, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create netbox client: %w", err)
	}

	registry, err := inventory.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build kind registry: %w", err)
	}

	a := &app{cfg: cfg, logger: l}

	// typed nils must not reach the service as non-nil interfaces
	var (
		runs    inventory.Journal
		reports inventory.ReportStore
	)

	if cfg.Journal.Enabled {
		if j, err := openJournal(ctx, cfg.Database, l); err != nil {
			l.Warn("Run journal disabled", zap.Error(err))
		} else {
			a.journal = j
			runs = j
		}
	}

	if cfg.Storage.Enabled {
		if arc, err := openArchive(ctx, cfg.Storage, l); err != nil {
			l.Warn("Report archive disabled", zap.Error(err))
		} else {
			a.archiver = arc
			reports = arc
		}
	}

	engine := reconcile.NewEngine(client, registry, l)
	a.service = inventory.NewService(engine, runs, reports, l)
	return a, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

func openJournal(ctx context.Context, cfg database.Config, l *zap.Logger) (*journal.Journal, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	j := journal.New(db, l)
	if err := j.Migrate(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

func openArchive(ctx context.Context, cfg storage.Config, l *zap.Logger) (*storage.Archiver, error) {
	client, err := storage.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	arc := storage.NewArchiver(client, cfg, l)
	if err := arc.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return arc, nil
}
