package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreef/internal/catalog"
	"github.com/dbsmedya/goreef/internal/config"
	"github.com/dbsmedya/goreef/internal/logger"
	"github.com/dbsmedya/goreef/internal/metrics"
	"github.com/dbsmedya/goreef/internal/store"
)

// app is the wiring shared by the data commands.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	client  *catalog.Client
	store   *store.Store
	metrics *metrics.Server
}

// newApp loads configuration and builds the logger, catalog client and store.
// The metrics endpoint is started when metrics.listen is set. Interactive
// commands own the terminal, so console logging is discarded for them.
func newApp(cmd *cobra.Command, interactive bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	var log *logger.Logger
	if interactive && (cfg.Logging.Output == "" || cfg.Logging.Output == "stderr" || cfg.Logging.Output == "stdout") {
		log = logger.NewNop()
	} else if log, err = logger.New(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	reg := metrics.NewRegistry()
	client := catalog.New(cfg.API.BaseURL,
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		catalog.WithUserAgent(cfg.API.UserAgent),
		catalog.WithLogger(log),
		catalog.WithMetrics(catalog.NewMetrics(reg)),
	)

	filters := resolveFilters(cmd, cfg)
	st := store.New(client,
		store.WithLogger(log),
		store.WithPageSize(cfg.API.PageSize),
		store.WithDisplayCap(cfg.Display.Cap),
		store.WithFilters(filters),
	)

	a := &app{cfg: cfg, log: log, client: client, store: st}

	if cfg.Metrics.Listen != "" {
		a.metrics = metrics.NewServer(&cfg.Metrics, reg, log)
		if err := a.metrics.Start(); err != nil {
			return nil, err
		}
	}

	log.Debugw("Configuration loaded", "config", GetConfigFile(), "base_url", cfg.API.BaseURL,
		"page_size", cfg.API.PageSize, "display_cap", cfg.Display.Cap)
	return a, nil
}

// close stops the metrics endpoint and flushes the logger.
func (a *app) close() {
	if a.metrics != nil {
		if err := a.metrics.Shutdown(context.Background()); err != nil {
			a.log.Warnf("Metrics server shutdown: %v", err)
		}
	}
	_ = a.log.Sync()
}
