package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	staticcatalog "rewardcore/internal/adapter/catalog/static"
	metricsinmem "rewardcore/internal/adapter/metrics/inmemory"
	"rewardcore/internal/app/ports"
	"rewardcore/internal/domain/fulfillment"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("REWARDCORE_DB_DSN", "")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.CatalogName != "standard" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("REWARDCORE_HTTP_ADDR", ":9999")
	t.Setenv("REWARDCORE_CATALOG_FILE", "arcade")
	t.Setenv("REWARDCORE_LOG_FORMAT", "json")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.HTTPAddr != ":9999" || cfg.CatalogName != "arcade" || cfg.LogFormat != "json" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestNewLogger_LevelAndFormat(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log"))
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	defer f.Close()

	logger := newLogger(config{LogFormat: "json", LogLevel: "warn"}, f)
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should be disabled at warn level")
	}
	logger.Warn("careful", "k", "v")
	b, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("{")) {
		t.Fatalf("expected json record, got %q", b)
	}

	if !newLogger(config{LogLevel: "bogus"}, f).Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("unknown level should fall back to info")
	}
}

func TestBuildRepos_MemoryWithoutDSN(t *testing.T) {
	repos, err := buildRepos(context.Background(), config{}, slog.Default())
	if err != nil {
		t.Fatalf("buildRepos: %v", err)
	}
	if repos.kind != "memory" {
		t.Fatalf("expected memory store, got %q", repos.kind)
	}
	if _, err := repos.saves.GetBySaveID(context.Background(), "absent"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found from empty store, got %v", err)
	}
}

func TestLoadCatalog_Builtin(t *testing.T) {
	holder, err := loadCatalog(context.Background(), staticcatalog.Provider{}, "standard")
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	if holder.Name() != "standard" || holder.Current().DefaultSingle().Name != "Shiny" {
		t.Fatalf("unexpected holder: %s %+v", holder.Name(), holder.Current().DefaultSingle())
	}
	if _, err := loadCatalog(context.Background(), staticcatalog.Provider{}, "absent"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFanout_ForwardsToEverySink(t *testing.T) {
	a, b := metricsinmem.NewRecorder(), metricsinmem.NewRecorder()
	f := fanout{a, b}
	f.RecordOpened()
	f.RecordClaim(true)
	f.ContainerResolved("shop", "Shiny", fulfillment.RuleCached)

	for _, r := range []*metricsinmem.Recorder{a, b} {
		s := r.Snapshot()
		if s.SessionsOpened != 1 || s.ClaimSuccess != 1 || s.ByContainer["Shiny"] != 1 {
			t.Fatalf("sink missed records: %+v", s)
		}
	}
}
