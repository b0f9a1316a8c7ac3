package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/sportsreel-backend/internal/data/db"
	"github.com/yungbote/sportsreel-backend/internal/data/repos"
	apphttp "github.com/yungbote/sportsreel-backend/internal/http"
	"github.com/yungbote/sportsreel-backend/internal/jobs/retention"
	"github.com/yungbote/sportsreel-backend/internal/observability"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Metrics  *observability.Metrics
	Repos    repos.Repos
	Clients  Clients
	Services Services
	Server   *apphttp.Server
	Sweeper  *retention.Sweeper

	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from the log section of cfg.
func NewLogger(cfg Config) (*logger.Logger, error) {
	log, err := logger.NewWithLevel(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB connects to the configured database without wiring anything else. Used by the
// migrate subcommand.
func OpenDB(log *logger.Logger, cfg Config) (*db.Service, error) {
	database, err := db.Open(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	return database, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	a.Metrics = observability.NewMetrics("sportsreel")

	database, err := OpenDB(log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.DB = database
	a.Repos = repos.New(database.DB(), log)

	clients, err := wireClients(log, cfg, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients
	a.Services = wireServices(database.DB(), log, cfg, a.Repos, clients, a.Metrics)
	a.Server = wireServer(log, cfg, wireHandlers(log, database, clients, a.Services), a.Metrics)

	if cfg.Retention.Enabled {
		sw, err := retention.NewSweeper(cfg.Retention, a.Services.Recommendations, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Sweeper = sw
	}
	return a, nil
}

func (a *App) Migrate() error {
	return a.DB.AutoMigrateAll()
}

// Run supervises the worker pool, the HTTP server and the retention sweeper until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	sup := newSupervisor(a.Log, a.Cfg.HTTP.ShutdownTimeout)
	sup.Add(a.Services.Pool)
	sup.Add(a.Server)
	if a.Sweeper != nil {
		sup.Add(a.Sweeper)
	}
	err := sup.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
	}
	if a.Clients.Store != nil {
		if err := a.Clients.Store.Close(); err != nil {
			a.Log.Warn("Cache store close failed", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	a.Log.Sync()
}
