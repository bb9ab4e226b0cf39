// Package control wires tapedeck's components together and manages
// their lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/tapedeck/internal/core/config"
	"github.com/vietddude/tapedeck/internal/infra/archive"
	"github.com/vietddude/tapedeck/internal/infra/connectivity"
	redisclient "github.com/vietddude/tapedeck/internal/infra/redis"
	"github.com/vietddude/tapedeck/internal/playback"
	"github.com/vietddude/tapedeck/internal/status"
)

// App owns the connectivity monitor, the archive client and the status
// server. The player is optional: headless deployments run without one.
type App struct {
	monitor   *connectivity.Monitor
	client    *archive.Client
	coord     *playback.Coordinator
	statusSrv *status.Server
	cache     *redisclient.Client
	log       *slog.Logger

	group *errgroup.Group
}

// NewApp builds all components from configuration. A nil player skips
// the playback coordinator.
func NewApp(cfg *config.AppConfig, player playback.Player) (*App, error) {
	log := slog.Default()

	client := archive.NewClient(archive.Config{
		BaseURL:           cfg.Archive.BaseURL,
		RequestsPerSecond: cfg.Archive.RequestsPerSecond,
		MaxRetries:        cfg.Archive.MaxRetries,
		Timeout:           config.Seconds(cfg.Archive.Timeout),
		BaseDelay:         config.Seconds(cfg.Retry.BaseDelay),
		MaxDelay:          config.Seconds(cfg.Retry.MaxDelay),
	}, log)

	var cache *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		cache, err = redisclient.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init cache: %w", err)
		}
		client.SetCache(cache)
		log.Info("metadata cache enabled")
	}

	monitor := connectivity.NewMonitor(connectivity.Config{
		Target:        cfg.Connectivity.Target,
		CheckInterval: config.Seconds(cfg.Connectivity.CheckInterval),
		ProbeTimeout:  config.Seconds(cfg.Connectivity.ProbeTimeout),
	}, log)

	app := &App{
		monitor:   monitor,
		client:    client,
		statusSrv: status.NewServer(monitor, cfg.Server.Port),
		cache:     cache,
		log:       log,
	}

	if player != nil {
		app.coord = playback.NewCoordinator(player, log)
		monitor.OnStateChange(app.coord.HandleStateChange)
	}

	return app, nil
}

// Start launches the monitor and the status server.
func (a *App) Start(ctx context.Context) error {
	a.monitor.Start()

	a.group, _ = errgroup.WithContext(ctx)
	a.group.Go(func() error {
		if err := a.statusSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("status server: %w", err)
		}
		return nil
	})

	a.log.Info("tapedeck started")
	return nil
}

// Stop shuts everything down, bounded by ctx.
func (a *App) Stop(ctx context.Context) error {
	a.monitor.Stop()

	var errs []error
	if err := a.statusSrv.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.group != nil {
		if err := a.group.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Client returns the paced archive client.
func (a *App) Client() *archive.Client {
	return a.client
}

// Monitor returns the connectivity monitor.
func (a *App) Monitor() *connectivity.Monitor {
	return a.monitor
}

// Coordinator returns the playback coordinator, or nil when the app
// runs headless.
func (a *App) Coordinator() *playback.Coordinator {
	return a.coord
}
