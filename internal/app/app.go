// Package app assembles the store and domain components from a Config. Both
// the CLI and the daemon start here.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/celerix-dev/firmdesk/internal/advisory"
	"github.com/celerix-dev/firmdesk/internal/api"
	"github.com/celerix-dev/firmdesk/internal/clients"
	"github.com/celerix-dev/firmdesk/internal/config"
	"github.com/celerix-dev/firmdesk/internal/documents"
	"github.com/celerix-dev/firmdesk/internal/invoices"
	"github.com/celerix-dev/firmdesk/internal/metrics"
	"github.com/celerix-dev/firmdesk/internal/offsite"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

// ErrNoSink is returned when neither an offsite directory nor a bucket is configured.
var ErrNoSink = errors.New("no offsite destination configured (set FIRMDESK_OFFSITE_DIR or FIRMDESK_S3_BUCKET)")

// App holds one opened store and everything built on it.
type App struct {
	Config   config.Config
	Store    *sdk.Store
	Clients  *clients.Registry
	Docs     *documents.Manager
	Invoices *invoices.Book
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	logger *slog.Logger
}

// New opens the configured backend and wires the components.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := append(cfg.StoreOptions(), sdk.WithLogger(logger), sdk.WithDecodeFailureHook(m.DecodeFailure))
	store, err := sdk.Open(cfg.Backend(), opts...)
	if err != nil {
		return nil, err
	}
	dir := clients.NewRegistry(store)
	return &App{
		Config:  cfg,
		Store:   store,
		Clients: dir,
		Docs: documents.NewManager(store,
			documents.WithClientDirectory(dir),
			documents.WithObserver(m),
			documents.WithLogger(logger)),
		Invoices: invoices.NewBook(store, dir),
		Metrics:  m,
		Registry: reg,
		logger:   logger,
	}, nil
}

// Advisor connects to the generation model. It needs GEMINI_API_KEY or
// GOOGLE_API_KEY in the environment.
func (a *App) Advisor(ctx context.Context) (*advisory.Advisor, error) {
	gen, err := advisory.NewGeminiGenerator(ctx, a.Config.GeminiModel)
	if err != nil {
		return nil, err
	}
	return advisory.NewAdvisor(a.Store, gen, a.Clients), nil
}

// Sink returns the S3 sink when a bucket is configured, else the directory sink.
func (a *App) Sink(ctx context.Context) (offsite.Sink, error) {
	if s3cfg, ok := a.Config.S3Config(); ok {
		return offsite.NewS3Sink(ctx, s3cfg)
	}
	if a.Config.OffsiteDir != "" {
		return offsite.NewDirSink(a.Config.OffsiteDir)
	}
	return nil, ErrNoSink
}

// Handler builds the HTTP handler set. adv may be nil.
func (a *App) Handler(adv *advisory.Advisor) *api.Handler {
	return &api.Handler{
		Store:    a.Store,
		Docs:     a.Docs,
		Clients:  a.Clients,
		Invoices: a.Invoices,
		Advisor:  adv,
		Metrics:  a.Metrics,
	}
}

func (a *App) Close() error {
	return a.Store.Close()
}
