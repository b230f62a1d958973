package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	staticcatalog "rewardcore/internal/adapter/catalog/static"
	httpadapter "rewardcore/internal/adapter/http"
	metricsinmem "rewardcore/internal/adapter/metrics/inmemory"
	prommetrics "rewardcore/internal/adapter/metrics/prom"
	gormrepo "rewardcore/internal/adapter/repo/gorm"
	"rewardcore/internal/adapter/repo/memory"
	"rewardcore/internal/app/catalog"
	"rewardcore/internal/app/placement"
	"rewardcore/internal/app/ports"
	"rewardcore/internal/app/replay"
	"rewardcore/internal/app/session"
	"rewardcore/internal/app/status"
	"rewardcore/internal/domain/fulfillment"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type config struct {
	DBDSN         string `env:"REWARDCORE_DB_DSN"`
	HTTPAddr      string `env:"REWARDCORE_HTTP_ADDR" envDefault:":8080"`
	MetricsAddr   string `env:"REWARDCORE_METRICS_ADDR" envDefault:":9090"`
	CatalogRoot   string `env:"REWARDCORE_CATALOG_ROOT"`
	CatalogName   string `env:"REWARDCORE_CATALOG_FILE" envDefault:"standard"`
	MigrationsDir string `env:"REWARDCORE_MIGRATIONS_DIR" envDefault:"./db/migrations"`
	LogFormat     string `env:"REWARDCORE_LOG_FORMAT" envDefault:"text"`
	LogLevel      string `env:"REWARDCORE_LOG_LEVEL" envDefault:"info"`
	CORSOrigin    string `env:"REWARDCORE_CORS_ORIGIN"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx := context.Background()
	repos, err := buildRepos(ctx, cfg, logger)
	if err != nil {
		logger.Error("build repositories", "error", err)
		os.Exit(1)
	}

	provider := staticcatalog.Provider{Root: cfg.CatalogRoot}
	holder, err := loadCatalog(ctx, provider, cfg.CatalogName)
	if err != nil {
		logger.Error("load container catalog", "catalog", cfg.CatalogName, "error", err)
		os.Exit(1)
	}

	kpiRecorder := metricsinmem.NewRecorder()
	reg := prometheus.NewRegistry()
	promMetrics := prommetrics.MustNewMetrics(reg)
	sessions := &session.UseCase{
		TxManager:  repos.tx,
		Saves:      repos.saves,
		Events:     repos.events,
		Containers: holder,
		Logger:     logger,
		Resolution: fanout{kpiRecorder, promMetrics},
		Metrics:    fanout{kpiRecorder, promMetrics},
		Now:        time.Now,
	}

	h := httpadapter.Handler{
		SessionUC:   sessions,
		PlacementUC: placement.UseCase{Sessions: sessions, Metrics: fanout{kpiRecorder, promMetrics}, Now: time.Now},
		StatusUC:    status.UseCase{Sessions: sessions},
		ReplayUC:    replay.UseCase{TxManager: repos.tx, Events: repos.events},
		CatalogUC:   catalog.UseCase{Provider: provider, Holder: holder, Logger: logger},
		KPI:         kpiRecorder,
		AllowOrigin: cfg.CORSOrigin,
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)

	logger.Info("rewardcore server listening", "addr", cfg.HTTPAddr, "catalog", holder.Name(), "store", repos.kind)
	s.Spin()
}

func newLogger(cfg config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(cfg.LogFormat), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

type repoSet struct {
	kind   string
	tx     ports.TxManager
	saves  ports.SaveRepository
	events ports.EventRepository
}

// buildRepos uses Postgres when a DSN is configured and the in-memory store
// otherwise.
func buildRepos(ctx context.Context, cfg config, logger *slog.Logger) (repoSet, error) {
	dsn := strings.TrimSpace(cfg.DBDSN)
	if dsn == "" {
		store := memory.NewStore()
		return repoSet{
			kind:   "memory",
			tx:     memory.NewTxManager(store),
			saves:  memory.NewSaveRepo(store),
			events: memory.NewEventRepo(store),
		}, nil
	}
	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		return repoSet{}, err
	}
	if cfg.MigrationsDir != "" {
		applied, err := gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir)
		if err != nil {
			return repoSet{}, err
		}
		if len(applied) > 0 {
			logger.Info("migrations applied", "versions", applied)
		}
	}
	return repoSet{
		kind:   "postgres",
		tx:     gormrepo.NewTxManager(db),
		saves:  gormrepo.NewSaveRepo(db),
		events: gormrepo.NewEventRepo(db),
	}, nil
}

func loadCatalog(ctx context.Context, provider ports.CatalogProvider, name string) (*catalog.Holder, error) {
	cat, err := provider.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	reg, err := cat.Build()
	if err != nil {
		return nil, err
	}
	if cat.Name == "" {
		cat.Name = name
	}
	return catalog.NewHolder(cat.Name, reg), nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", "addr", addr, "error", err)
	}
}

type metricsSink interface {
	ports.SessionMetrics
	fulfillment.Observer
}

// fanout forwards every record to each sink.
type fanout []metricsSink

func (f fanout) RecordOpened() {
	for _, m := range f {
		m.RecordOpened()
	}
}

func (f fanout) RecordClosed() {
	for _, m := range f {
		m.RecordClosed()
	}
}

func (f fanout) RecordConflict() {
	for _, m := range f {
		m.RecordConflict()
	}
}

func (f fanout) RecordFailure() {
	for _, m := range f {
		m.RecordFailure()
	}
}

func (f fanout) RecordClaim(ok bool) {
	for _, m := range f {
		m.RecordClaim(ok)
	}
}

func (f fanout) ContainerResolved(placement, container string, rule fulfillment.Rule) {
	for _, m := range f {
		m.ContainerResolved(placement, container, rule)
	}
}
