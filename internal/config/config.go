// Package config provides configuration structures and loading for goreef.
package config

import (
	"time"

	"github.com/dbsmedya/goreef/internal/types"
)

// DefaultBaseURL is the records endpoint of the reef-fish survey dataset.
const DefaultBaseURL = "https://data.gouv.nc/api/explore/v2.1/catalog/datasets/rorc_poissons_recifaux/records"

// Config represents the complete application configuration.
type Config struct {
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Display DisplayConfig `yaml:"display" mapstructure:"display"`
	Filters FiltersConfig `yaml:"filters" mapstructure:"filters"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// APIConfig represents the remote catalog settings.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	PageSize  int           `yaml:"page_size" mapstructure:"page_size"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"` // 0 = no client timeout
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// DisplayConfig represents presentation settings.
type DisplayConfig struct {
	Cap int `yaml:"cap" mapstructure:"cap"`
}

// FiltersConfig holds the filters applied on start-up. Nil means unset.
type FiltersConfig struct {
	Campagne     *string `yaml:"campagne" mapstructure:"campagne"`
	Site         *string `yaml:"site" mapstructure:"site"`
	Station      *string `yaml:"station" mapstructure:"station"`
	Transect     *string `yaml:"transect" mapstructure:"transect"`
	TypePoissons *string `yaml:"type_poissons" mapstructure:"type_poissons"`
	Q            *string `yaml:"q" mapstructure:"q"`
}

// ExportConfig represents the SQL sink used by the export command.
type ExportConfig struct {
	Driver         string `yaml:"driver" mapstructure:"driver"` // mysql, sqlite, postgres
	DSN            string `yaml:"dsn" mapstructure:"dsn"`       // takes precedence over host/port/...
	Host           string `yaml:"host" mapstructure:"host"`
	Port           int    `yaml:"port" mapstructure:"port"`
	User           string `yaml:"user" mapstructure:"user"`
	Password       string `yaml:"password" mapstructure:"password"`
	Database       string `yaml:"database" mapstructure:"database"`
	TLS            string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	Table          string `yaml:"table" mapstructure:"table"`
	MaxConnections int    `yaml:"max_connections" mapstructure:"max_connections"`
	Verify         string `yaml:"verify" mapstructure:"verify"` // count, sha256, skip
}

// MetricsConfig represents the Prometheus endpoint settings.
type MetricsConfig struct {
	Listen string `yaml:"listen" mapstructure:"listen"` // empty disables the endpoint
	Path   string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			PageSize:  200,
			UserAgent: "goreef/1.0",
		},
		Display: DisplayConfig{
			Cap: 50,
		},
		Filters: FiltersConfig{
			Campagne: types.Str("2024"),
			Site:     types.Str("Ouegoa"),
		},
		Export: ExportConfig{
			Driver:         "sqlite",
			DSN:            "goreef.db",
			Port:           3306,
			TLS:            "preferred",
			Table:          "rorc_poissons",
			MaxConnections: 4,
			Verify:         "count",
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// FilterSet returns the configured start-up filters.
func (c *Config) FilterSet() types.FilterSet {
	return types.FilterSet{
		Campagne:     c.Filters.Campagne,
		Site:         c.Filters.Site,
		Station:      c.Filters.Station,
		Transect:     c.Filters.Transect,
		TypePoissons: c.Filters.TypePoissons,
		Q:            c.Filters.Q,
	}.Clone()
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat, baseURL string, pageSize, displayCap int, metricsListen string) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if pageSize > 0 {
		c.API.PageSize = pageSize
	}
	if displayCap > 0 {
		c.Display.Cap = displayCap
	}
	if metricsListen != "" {
		c.Metrics.Listen = metricsListen
	}
}
