package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/emiliopalmerini/factoryvision/internal/adapters/metricsapi"
	"github.com/emiliopalmerini/factoryvision/internal/adapters/otel"
	"github.com/emiliopalmerini/factoryvision/internal/adapters/turso"
	"github.com/emiliopalmerini/factoryvision/internal/infrastructure/config"
	"github.com/emiliopalmerini/factoryvision/internal/migrate"
	"github.com/emiliopalmerini/factoryvision/internal/monitor"
	"github.com/emiliopalmerini/factoryvision/internal/ports"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config   *config.Config
	Logger   zerolog.Logger
	DB       *turso.DB
	Source   ports.MetricsSource
	Store    ports.SnapshotStore
	Exporter ports.MetricsExporter

	shutdownTracing func(context.Context) error
}

// NewAppContext creates an AppContext with all dependencies initialized.
// History and telemetry fall back to no-op implementations when not
// configured.
func NewAppContext(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*AppContext, error) {
	source, err := metricsapi.NewClient(metricsapi.Config{URL: cfg.API.URL, Timeout: cfg.API.Timeout})
	if err != nil {
		return nil, err
	}

	a := &AppContext{
		Config:   cfg,
		Logger:   logger,
		Source:   source,
		Store:    turso.NewNoOpSnapshotStore(),
		Exporter: otel.NewNoOpExporter(),
	}

	history := turso.Config{URL: cfg.History.URL, AuthToken: cfg.History.AuthToken}
	if history.Enabled() {
		db, err := turso.NewDB(ctx, history)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to history database: %w", err)
		}
		if err := migrate.RunAll(ctx, db.DB); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate history database: %w", err)
		}
		a.DB = db
		a.Store = turso.NewSnapshotRepository(db.DB)
	}

	otelCfg := otel.Config{
		Endpoint: cfg.Telemetry.Endpoint,
		Enabled:  cfg.Telemetry.Enabled,
		Insecure: cfg.Telemetry.Insecure,
	}
	if otelCfg.Active() {
		exporter, err := otel.NewExporter(ctx, otelCfg)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to initialize metrics exporter: %w", err)
		}
		a.Exporter = exporter

		shutdown, err := otel.InitTracing(ctx, otelCfg)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		a.shutdownTracing = shutdown
	}

	logger.Debug().
		Str("api_url", cfg.API.URL).
		Bool("history", a.DB != nil).
		Bool("telemetry", otelCfg.Active()).
		Msg("application initialized")
	return a, nil
}

// NewMonitor builds a monitor wired to the context's source, store and
// exporter.
func (a *AppContext) NewMonitor() *monitor.Monitor {
	return monitor.New(a.Source,
		monitor.WithInterval(a.Config.Refresh.Interval),
		monitor.WithSettleDelay(a.Config.Refresh.Settle),
		monitor.WithStore(a.Store),
		monitor.WithExporter(a.Exporter),
		monitor.WithLogger(a.Logger.With().Str("component", "monitor").Logger()),
	)
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if a.Exporter != nil {
		errs = append(errs, a.Exporter.Close(ctx))
	}
	if a.shutdownTracing != nil {
		errs = append(errs, a.shutdownTracing(ctx))
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
