// Package http provides a thin HTTP adapter over the projection pipeline.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	adapter "cost-projections/adapters/cli"
	"cost-projections/core/catalog"
	"cost-projections/core/output"
	"cost-projections/core/projections"
	"cost-projections/core/types"
	"cost-projections/internal/config"
	"cost-projections/internal/errors"
	"cost-projections/internal/logging"
)

// Config holds HTTP adapter configuration
type Config struct {
	// Address to listen on
	Address string `json:"address"`

	// ReadTimeout for requests
	ReadTimeout time.Duration `json:"read_timeout"`

	// WriteTimeout for responses
	WriteTimeout time.Duration `json:"write_timeout"`

	// MaxBodySize limits request body size
	MaxBodySize int64 `json:"max_body_size"`

	// EnableMetrics exposes Prometheus metrics on /metrics
	EnableMetrics bool `json:"enable_metrics"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Address:       ":8080",
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  120 * time.Second,
		MaxBodySize:   1 << 20,
		EnableMetrics: true,
	}
}

// Adapter is the HTTP adapter
type Adapter struct {
	projector *projections.Projector
	catalog   *catalog.Catalog
	defaults  projections.Options
	config    *Config
	server    *http.Server

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a new HTTP adapter
func New(c *catalog.Catalog, appCfg *config.Config, cfg *Config) *Adapter {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	a := &Adapter{
		projector: projections.NewProjector(c, appCfg.Horizon, appCfg.FixedCost),
		catalog:   c,
		defaults:  projections.OptionsFromConfig(appCfg),
		config:    cfg,
		registry:  prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cost_projections_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cost_projections_run_seconds",
			Help:    "Pipeline run duration by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	a.registry.MustRegister(a.requests, a.duration)
	return a
}

// SetProjector replaces the projector, e.g. one with a workbook GDP source
func (a *Adapter) SetProjector(p *projections.Projector) {
	a.projector = p
}

// SetDefaults replaces the options used for fields a request leaves empty
func (a *Adapter) SetDefaults(opts projections.Options) {
	a.defaults = opts
}

// Router returns the HTTP handler
func (a *Adapter) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /api/v1/catalog", a.handleCatalog)
	mux.HandleFunc("POST /api/v1/projections", a.handleProjections)

	if a.config.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}

	return a.recoveryMiddleware(mux)
}

// Start starts the HTTP server
func (a *Adapter) Start() error {
	a.server = &http.Server{
		Addr:         a.config.Address,
		Handler:      a.Router(),
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
	}
	logging.Info("HTTP server listening", zap.String("address", a.config.Address))
	return a.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (a *Adapter) Shutdown(ctx context.Context) error {
	if a.server != nil {
		return a.server.Shutdown(ctx)
	}
	return nil
}

// ProjectionRequest is the body of POST /api/v1/projections; empty fields take
// the configured defaults.
type ProjectionRequest struct {
	Node            string `json:"node,omitempty"`
	ReferenceRegion string `json:"reference_region,omitempty"`
	BaseYear        int    `json:"base_year,omitempty"`
	ScenarioVersion string `json:"scenario_version,omitempty"`
	Scenario        string `json:"scenario,omitempty"`
	Method          string `json:"method,omitempty"`
	ConvergenceYear int    `json:"convergence_year,omitempty"`
	Format          string `json:"format,omitempty"`

	// Tables lists the tables to return; all when empty
	Tables []string `json:"tables,omitempty"`
}

func (r *ProjectionRequest) options(defaults projections.Options) projections.Options {
	o := defaults
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&o.Node, r.Node)
	set(&o.ReferenceRegion, r.ReferenceRegion)
	set(&o.ScenarioVersion, r.ScenarioVersion)
	set(&o.Scenario, r.Scenario)
	set(&o.Method, r.Method)
	set(&o.Format, r.Format)
	if r.BaseYear != 0 {
		o.BaseYear = r.BaseYear
	}
	if r.ConvergenceYear != 0 {
		o.ConvergenceYear = r.ConvergenceYear
	}
	return o
}

// ProjectionResponse carries the summary and the requested tables
type ProjectionResponse struct {
	Success bool                           `json:"success"`
	Summary *adapter.Summary               `json:"summary"`
	Tables  map[string][]map[string]string `json:"tables"`
}

func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, "health", http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}

func (a *Adapter) handleCatalog(w http.ResponseWriter, r *http.Request) {
	techs := a.catalog.Technologies()
	names := make([]string, len(techs))
	for i, t := range techs {
		names[i] = t.Name
	}
	scenarios := a.catalog.Scenarios()
	scenarioNames := make([]string, len(scenarios))
	for i, s := range scenarios {
		scenarioNames[i] = s.Name
	}

	a.writeJSON(w, "catalog", http.StatusOK, map[string]interface{}{
		"nodes":        types.Nodes,
		"technologies": names,
		"scenarios":    scenarioNames,
		"versions":     a.catalog.Survey().Versions(),
		"stats":        a.catalog.Stats(),
	})
}

func (a *Adapter) handleProjections(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if err := a.parseJSON(r, &req); err != nil {
		a.writeError(w, "projections", errors.Parsing("invalid request body", err))
		return
	}

	opts := req.options(a.defaults)
	start := time.Now()
	res, err := a.projector.Project(r.Context(), opts)
	if err != nil {
		a.writeError(w, "projections", err)
		return
	}
	a.duration.WithLabelValues(string(res.Method)).Observe(time.Since(start).Seconds())

	wanted := make(map[string]bool, len(req.Tables))
	for _, t := range req.Tables {
		wanted[t] = true
	}
	doc := output.FromResult(res, "http")
	tables := make(map[string][]map[string]string)
	for _, t := range doc.Tables {
		if len(wanted) > 0 && !wanted[t.Name] {
			continue
		}
		rows := make([]map[string]string, len(t.Rows))
		for i, row := range t.Rows {
			obj := make(map[string]string, len(t.Header))
			for j, col := range t.Header {
				obj[col] = row[j]
			}
			rows[i] = obj
		}
		tables[t.Name] = rows
	}

	a.writeJSON(w, "projections", http.StatusOK, &ProjectionResponse{
		Success: true,
		Summary: adapter.Summarize(res, nil),
		Tables:  tables,
	})
}

// Middleware

func (a *Adapter) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Error("panic serving request",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec))
				a.writeError(w, "panic", errors.Newf(errors.TypeInternal, "internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Helpers

func (a *Adapter) parseJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, a.config.MaxBodySize))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func (a *Adapter) writeJSON(w http.ResponseWriter, route string, status int, v interface{}) {
	a.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", zap.String("route", route), zap.Error(err))
	}
}

func (a *Adapter) writeError(w http.ResponseWriter, route string, err error) {
	status := http.StatusInternalServerError
	switch errors.TypeOf(err) {
	case errors.TypeInput, errors.TypeParsing:
		status = http.StatusBadRequest
	case errors.TypeNotFound:
		status = http.StatusNotFound
	}
	a.writeJSON(w, route, status, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
		"type":    errors.TypeOf(err),
	})
}
