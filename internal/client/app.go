package client

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-keeper/internal/adapter"
	"github.com/MKhiriev/go-offline-keeper/internal/config"
	myHTTP "github.com/MKhiriev/go-offline-keeper/internal/handler/http"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/metrics"
	"github.com/MKhiriev/go-offline-keeper/internal/server"
	"github.com/MKhiriev/go-offline-keeper/internal/service"
	"github.com/MKhiriev/go-offline-keeper/internal/store"
	"github.com/MKhiriev/go-offline-keeper/internal/tui"
	"github.com/MKhiriev/go-offline-keeper/internal/workers"
)

var _ Client = (*App)(nil)

type App struct {
	cfg *config.StructuredConfig

	storages     *store.ClientStorages
	remote       adapter.RemoteStore
	connectivity *workers.ConnectivityMonitor
	metrics      *metrics.Metrics
	services     *service.ClientServices

	logger *logger.Logger
}

// NewApp builds the runtime from cfg. A local store that cannot be opened is
// logged and the services run degraded without it. An invalid remote
// configuration is an error; a missing one leaves the app cache-only.
func NewApp(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger, opts ...service.Option) (*App, error) {
	app := &App{cfg: cfg, metrics: metrics.New(), logger: log}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Err(err).Str("func", "client.NewApp").Str("dsn", cfg.Storage.DB.DSN).Msg("local storage unavailable, running degraded")
	} else {
		app.storages = storages
	}

	var pinger workers.Pinger
	if cfg.Remote.URL != "" {
		app.remote, err = adapter.NewPostgRESTAdapter(cfg.Remote, log)
		if err != nil {
			app.closeStorages()
			return nil, fmt.Errorf("create remote adapter: %w", err)
		}
		pinger = app.remote
	} else {
		log.Warn().Str("func", "client.NewApp").Msg("no remote url configured, queued mutations will not be replayed")
	}

	app.connectivity = workers.NewConnectivityMonitor(pinger, cfg.Workers.ConnectivityInterval, log)

	opts = append([]service.Option{service.WithObserver(app.metrics)}, opts...)
	app.services = service.NewClientServices(app.storages, app.remote, app.connectivity, cfg, log, opts...)

	app.connectivity.OnReconnect(func(ctx context.Context) {
		app.services.Sync.ProcessQueue(ctx)
	})

	return app, nil
}

func (a *App) Services() *service.ClientServices {
	return a.services
}

// Workers returns the background workers: the connectivity monitor first so
// the drain job sees a current online flag, then the drain ticker and the
// housekeeping schedule.
func (a *App) Workers() (*workers.Workers, error) {
	housekeeping, err := workers.NewHousekeepingJob(
		a.services.Housekeeping,
		a.cfg.Workers.HousekeepingSchedule,
		a.metrics,
		a.logger,
	)
	if err != nil {
		return nil, err
	}

	return workers.NewWorkers(
		a.connectivity,
		workers.NewDrainJob(a.services.Sync, a.cfg.Workers.SyncInterval, a.logger),
		housekeeping,
	), nil
}

func (a *App) Serve(ctx context.Context) error {
	w, err := a.Workers()
	if err != nil {
		return err
	}

	handler := myHTTP.NewHandler(a.services, a.metrics.Handler(), a.cfg.App.CompanyID, a.logger)

	srv, err := server.NewServer(handler.Init(), a.cfg.Server, w, a.logger)
	if err != nil {
		return err
	}

	return srv.RunServer(ctx)
}

func (a *App) Monitor(ctx context.Context) error {
	w, err := a.Workers()
	if err != nil {
		return err
	}

	ui, err := tui.New(a.services, a.logger)
	if err != nil {
		return err
	}

	w.Start(ctx)
	defer w.Stop()

	return ui.Monitor(ctx)
}

func (a *App) Close() error {
	return a.closeStorages()
}

func (a *App) closeStorages() error {
	if a.storages == nil {
		return nil
	}
	err := a.storages.Close()
	a.storages = nil
	return err
}
