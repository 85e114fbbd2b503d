// Package common wires the services every command needs.
package common

import (
	"context"
	"database/sql"

	"github.com/lithammer/shortuuid/v4"
	"github.com/spf13/cobra"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/audit"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/config"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/db"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/metrics"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/service"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/store"
)

// Options holds the persistent root flags
type Options struct {
	ConfigPath string
	Verbose    bool
	JSON       bool
}

// App bundles the long-lived services behind a command
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Runtime  docker.Runtime
	Store    *store.Store
	Journal  *audit.AuditService
	Metrics  *metrics.Collector
	Networks *service.NetworkService

	database *sql.DB
}

// NewApp loads configuration, opens the journal and the container runtime
// and starts the engine. The runtime must answer a ping.
func NewApp(ctx context.Context, opts *Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg, opts)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: log}
	if err := app.open(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) open(ctx context.Context) error {
	rt, err := docker.NewClient(a.Config.DockerSocket, a.Logger)
	if err != nil {
		return err
	}
	a.Runtime = rt

	a.Store, err = store.New(a.Config.DataDir, a.Logger)
	if err != nil {
		return err
	}

	a.database, err = db.Open(a.Config.DatabasePath())
	if err != nil {
		return err
	}
	a.Journal = audit.NewService(db.New(a.database), a.Logger, audit.DefaultConfig())

	a.Metrics, err = metrics.NewCollector()
	if err != nil {
		return err
	}

	engineCfg := service.DefaultConfig()
	engineCfg.Poll = a.Config.Poll()
	a.Networks, err = service.NewNetworkService(rt, a.Store, a.Logger,
		service.WithConfig(engineCfg),
		service.WithJournal(a.Journal),
		service.WithObserver(a.Metrics),
	)
	if err != nil {
		return err
	}
	return a.Networks.CheckRuntime(ctx)
}

// Close stops the engine, flushes the journal and releases connections
func (a *App) Close() {
	if a.Networks != nil {
		a.Networks.Close()
	}
	if a.Journal != nil {
		a.Journal.Close()
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			a.Logger.Warn("Failed to close database", "error", err)
		}
	}
	if a.Runtime != nil {
		if err := a.Runtime.Close(); err != nil {
			a.Logger.Warn("Failed to close docker client", "error", err)
		}
	}
	a.Logger.Sync()
}

// GenerateNetworkName returns a random name for networks created without one
func GenerateNetworkName() string {
	return "regtest-" + shortuuid.New()[0:5]
}

// Run opens the app for the duration of fn
func Run(cmd *cobra.Command, opts *Options, fn func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	app, err := NewApp(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func newLogger(cfg *config.Config, opts *Options) (*logger.Logger, error) {
	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	return logger.New(&logger.Config{
		Level:      level,
		Format:     cfg.Log.Format,
		OutputPath: "stderr",
	})
}

// OpenJournal opens only the activity journal, for commands that do not
// need the container runtime. The returned func releases it.
func OpenJournal(opts *Options) (*audit.AuditService, func(), error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg, opts)
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, err
	}
	journal := audit.NewService(db.New(database), log, audit.DefaultConfig())
	return journal, func() {
		journal.Close()
		database.Close()
	}, nil
}
