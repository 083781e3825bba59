package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base_url, got %s", cfg.API.BaseURL)
	}
	if cfg.API.PageSize != 200 {
		t.Errorf("expected page_size 200, got %d", cfg.API.PageSize)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("expected no client timeout by default, got %v", cfg.API.Timeout)
	}
	if cfg.Display.Cap != 50 {
		t.Errorf("expected display cap 50, got %d", cfg.Display.Cap)
	}

	// Start-up filters
	if cfg.Filters.Campagne == nil || *cfg.Filters.Campagne != "2024" {
		t.Errorf("expected default campagne '2024', got %v", cfg.Filters.Campagne)
	}
	if cfg.Filters.Site == nil || *cfg.Filters.Site != "Ouegoa" {
		t.Errorf("expected default site 'Ouegoa', got %v", cfg.Filters.Site)
	}
	if cfg.Filters.Transect != nil {
		t.Errorf("expected transect unset, got %v", *cfg.Filters.Transect)
	}

	if cfg.Export.Driver != "sqlite" {
		t.Errorf("expected export driver 'sqlite', got %s", cfg.Export.Driver)
	}
	if cfg.Metrics.Listen != "" {
		t.Errorf("expected metrics disabled by default, got %s", cfg.Metrics.Listen)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("expected logging output 'stderr', got %s", cfg.Logging.Output)
	}
}

func TestConfigFilterSet(t *testing.T) {
	cfg := DefaultConfig()
	fs := cfg.FilterSet()

	if fs.Campagne == nil || *fs.Campagne != "2024" {
		t.Fatalf("expected campagne '2024' in filter set")
	}

	// mutating the filter set must not leak back into the config
	*fs.Campagne = "2019"
	if *cfg.Filters.Campagne != "2024" {
		t.Errorf("filter set aliases config value")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOverrides("debug", "json", "http://localhost:8080/records", 100, 20, ":9090")

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level override, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected format override, got %s", cfg.Logging.Format)
	}
	if cfg.API.BaseURL != "http://localhost:8080/records" {
		t.Errorf("expected base_url override, got %s", cfg.API.BaseURL)
	}
	if cfg.API.PageSize != 100 {
		t.Errorf("expected page_size override, got %d", cfg.API.PageSize)
	}
	if cfg.Display.Cap != 20 {
		t.Errorf("expected cap override, got %d", cfg.Display.Cap)
	}
	if cfg.Metrics.Listen != ":9090" {
		t.Errorf("expected metrics listen override, got %s", cfg.Metrics.Listen)
	}
}

func TestApplyOverridesZeroValuesKeepConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = 5 * time.Second
	cfg.ApplyOverrides("", "", "", 0, 0, "")

	if cfg.Logging.Level != "info" || cfg.API.PageSize != 200 || cfg.Display.Cap != 50 {
		t.Errorf("zero overrides must not change config: %+v", cfg)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("timeout changed unexpectedly")
	}
}
