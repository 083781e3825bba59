package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/goreef/internal/config"
)

func TestCLIFlagsDefaults(t *testing.T) {
	resetFlags(rootCmd)

	assert.Equal(t, "goreef.yaml", cfgFile, "cfgFile should default to goreef.yaml")
	assert.Equal(t, "", logLevel)
	assert.Equal(t, "", logFormat)
	assert.Equal(t, "", baseURL)
	assert.Equal(t, 0, pageLimit)
	assert.Equal(t, 0, displayCap)
	assert.Equal(t, "", metricsListen)
}

func TestGetConfigFile(t *testing.T) {
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()

	tests := []struct {
		name     string
		cfgValue string
	}{
		{name: "default config file", cfgValue: "goreef.yaml"},
		{name: "custom config file", cfgValue: "/path/to/custom.yaml"},
		{name: "config file with spaces", cfgValue: "/path/to/my config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgFile = tt.cfgValue
			assert.Equal(t, tt.cfgValue, GetConfigFile())
		})
	}
}

func TestGetCLIOverrides(t *testing.T) {
	defer resetFlags(rootCmd)

	logLevel = "debug"
	logFormat = "json"
	baseURL = "http://localhost:8080/records"
	pageLimit = 100
	displayCap = 25
	metricsListen = ":9090"

	assert.Equal(t, CLIOverrides{
		LogLevel:      "debug",
		LogFormat:     "json",
		BaseURL:       "http://localhost:8080/records",
		PageSize:      100,
		DisplayCap:    25,
		MetricsListen: ":9090",
	}, GetCLIOverrides())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := []string{"fetch", "facets", "browse", "export", "validate", "version"}
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, n := range want {
		assert.True(t, names[n], "%s command should be added to root command", n)
	}
}

func TestRootPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{"config", "log-level", "log-format", "base-url", "limit", "display-cap", "metrics-listen"} {
		assert.NotNil(t, flags.Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "c", flags.Lookup("config").Shorthand)
}

func TestLoadConfig_MissingDefaultFileUsesDefaults(t *testing.T) {
	resetFlags(rootCmd)
	defer resetFlags(rootCmd)

	cfgFile = filepath.Join(t.TempDir(), "goreef.yaml")
	pageLimit = 80

	cfg, err := loadConfig(fetchCmd)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 80, cfg.API.PageSize)
	assert.Equal(t, 50, cfg.Display.Cap)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	resetFlags(rootCmd)
	defer resetFlags(rootCmd)

	path := filepath.Join(t.TempDir(), "reef.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: http://catalog.local/records
  page_size: 100
display:
  cap: 10
filters:
  campagne: "2023"
`), 0o600))
	cfgFile = path

	cfg, err := loadConfig(fetchCmd)
	require.NoError(t, err)
	assert.Equal(t, "http://catalog.local/records", cfg.API.BaseURL)
	assert.Equal(t, 10, cfg.Display.Cap)
	require.NotNil(t, cfg.Filters.Campagne)
	assert.Equal(t, "2023", *cfg.Filters.Campagne)
}

func TestExplicitMissingConfigFails(t *testing.T) {
	_, err := executeCommand(t, "validate", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to load config")
}

func TestInvalidOverrideFailsValidation(t *testing.T) {
	_, err := executeCommand(t, "validate", "--log-format", "xml")
	assert.ErrorContains(t, err, "logging.format")
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}
