// Package bootstrap wires a definition file into a ready model,
// upstream client, and endpoint services.
package bootstrap

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/artpar/fieldmap/adapters/httpclient"
	"github.com/artpar/fieldmap/adapters/metrics"
	"github.com/artpar/fieldmap/app"
	"github.com/artpar/fieldmap/config"
	"github.com/artpar/fieldmap/domain/diag"
	"github.com/artpar/fieldmap/domain/payload"
	"github.com/artpar/fieldmap/ports"
)

// App is the running application: a model built from definitions plus
// the upstream client and endpoint bindings.
type App struct {
	Logger  zerolog.Logger
	Metrics *metrics.Collector

	mu        sync.RWMutex
	model     *app.Model
	client    *httpclient.Client
	requests  *app.RequestService
	endpoints map[string]payload.Endpoint
	order     []string
	diags     diag.List
}

// Options provides optional overrides for wiring.
type Options struct {
	// Logger overrides the logger built from config.
	Logger *zerolog.Logger

	// Registry receives the Prometheus collectors. Defaults to the
	// global registry; tests pass their own to avoid collisions.
	Registry prometheus.Registerer
}

// New creates and wires the application from loaded definitions.
func New(cfg *config.Config) (*App, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates the application with custom wiring options.
func NewWithOptions(cfg *config.Config, opts Options) (*App, error) {
	logger := SetupLogger(cfg.Logging)
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	a := &App{Logger: logger}

	if cfg.Metrics.Enabled {
		reg := opts.Registry
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		a.Metrics = metrics.NewWithRegistry(reg)
		logger.Info().Msg("prometheus metrics enabled")
	}

	if err := a.rebuild(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// Rebuild replaces the model, client, and endpoint bindings from new
// definitions. Used for hot reload; the metrics collector is kept.
func (a *App) Rebuild(cfg *config.Config) error {
	return a.rebuild(cfg)
}

func (a *App) rebuild(cfg *config.Config) error {
	model, diags, err := BuildModel(cfg, a.Logger)
	if err != nil {
		return err
	}

	client, err := httpclient.New(httpclient.Config{
		BaseURL:         cfg.Client.BaseURL,
		Timeout:         cfg.Client.Timeout,
		Headers:         cfg.Client.Headers,
		MaxIdleConns:    cfg.Client.MaxIdleConns,
		IdleConnTimeout: cfg.Client.IdleConnTimeout,
		Logger:          a.Logger,
	})
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	endpoints := make(map[string]payload.Endpoint, len(cfg.Endpoints))
	order := make([]string, 0, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		endpoints[ep.Name] = payload.Endpoint{
			Name:      ep.Name,
			Container: ep.Container,
			Method:    ep.Method,
			Path:      ep.Path,
			BaseURL:   ep.BaseURL,
			Headers:   ep.Headers,
			Into:      ep.Into,
		}
		order = append(order, ep.Name)
	}

	var observer ports.Observer
	if a.Metrics != nil {
		observer = a.Metrics
	}
	requests := app.NewRequestService(app.RequestDeps{
		Model:     model,
		Transport: client,
		Observer:  observer,
		Logger:    a.Logger,
	})

	a.mu.Lock()
	old := a.client
	a.model = model
	a.client = client
	a.requests = requests
	a.endpoints = endpoints
	a.order = order
	a.diags = diags
	a.mu.Unlock()

	if old != nil {
		old.Close()
	}

	if len(diags) > 0 {
		a.Logger.Warn().
			Strs("diagnostics", diags.Strings()).
			Msg("definitions loaded with diagnostics")
	}
	a.Logger.Info().
		Int("containers", len(model.Containers())).
		Int("endpoints", len(endpoints)).
		Msg("model ready")
	return nil
}

// Model returns the current model.
func (a *App) Model() *app.Model {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model
}

// Requests returns the current request service.
func (a *App) Requests() *app.RequestService {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.requests
}

// Endpoint looks up an endpoint binding by name.
func (a *App) Endpoint(name string) (payload.Endpoint, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ep, ok := a.endpoints[name]
	return ep, ok
}

// Endpoints returns endpoint names in definition-file order.
func (a *App) Endpoints() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Diags returns the diagnostics collected while building the model.
func (a *App) Diags() diag.List {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.diags
}

// Close releases the upstream client's connections.
func (a *App) Close() {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.client != nil {
		a.client.Close()
	}
}

// BuildModel constructs a model from definitions: attributes, the
// standard processor/modifier library, templates, then containers, all
// in file order. Declaration-time diagnostics are returned alongside.
func BuildModel(cfg *config.Config, logger zerolog.Logger) (*app.Model, diag.List, error) {
	m := app.NewModel(app.ModelConfig{
		Attrs:  cfg.Attrs,
		Logger: logger,
	})
	if err := app.RegisterStandard(m); err != nil {
		return nil, nil, fmt.Errorf("register standard library: %w", err)
	}

	var diags diag.List
	for _, tpl := range cfg.Templates {
		diags = diags.Merge(m.Describe(tpl.Name, tpl.Fields.Fields))
	}
	for _, c := range cfg.Containers {
		_, ds, err := m.Declare(c.Name, c.Fields.Fields, c.Data)
		diags = diags.Merge(ds)
		if err != nil {
			return nil, diags, fmt.Errorf("declare container %q: %w", c.Name, err)
		}
	}
	return m, diags, nil
}

// SetupLogger builds the process logger from config. Level and format
// may have been overridden from the environment by config.Load.
func SetupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
