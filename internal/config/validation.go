package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
// The export section is only checked by ValidateExport.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateAPI()...)
	errors = append(errors, c.validateDisplay()...)
	errors = append(errors, c.validateMetrics()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateExport checks the export section, for commands that write to a database.
func (c *Config) ValidateExport() error {
	errors := c.validateExport()
	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateAPI() ValidationErrors {
	var errors ValidationErrors

	if c.API.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Message: "base_url is required",
		})
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Message: "base_url must be an absolute http(s) URL",
		})
	}

	if c.API.PageSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "api.page_size",
			Message: "page_size must be positive",
		})
	}

	if c.API.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout",
			Message: "timeout cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateDisplay() ValidationErrors {
	var errors ValidationErrors

	if c.Display.Cap <= 0 {
		errors = append(errors, ValidationError{
			Field:   "display.cap",
			Message: "cap must be positive",
		})
	}

	return errors
}

func (c *Config) validateExport() ValidationErrors {
	var errors ValidationErrors

	validDrivers := map[string]bool{"mysql": true, "sqlite": true, "postgres": true}
	if !validDrivers[c.Export.Driver] {
		errors = append(errors, ValidationError{
			Field:   "export.driver",
			Message: "driver must be 'mysql', 'sqlite', or 'postgres'",
		})
	}

	if c.Export.Table == "" {
		errors = append(errors, ValidationError{
			Field:   "export.table",
			Message: "table is required",
		})
	}

	if c.Export.DSN == "" {
		if c.Export.Driver == "sqlite" {
			errors = append(errors, ValidationError{
				Field:   "export.dsn",
				Message: "dsn (database file) is required for sqlite",
			})
		} else {
			if c.Export.Host == "" {
				errors = append(errors, ValidationError{
					Field:   "export.host",
					Message: "host is required when dsn is empty",
				})
			}
			if c.Export.Port <= 0 || c.Export.Port > 65535 {
				errors = append(errors, ValidationError{
					Field:   "export.port",
					Message: "port must be between 1 and 65535",
				})
			}
			if c.Export.User == "" {
				errors = append(errors, ValidationError{
					Field:   "export.user",
					Message: "user is required when dsn is empty",
				})
			}
		}
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[c.Export.TLS] {
		errors = append(errors, ValidationError{
			Field:   "export.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	validVerify := map[string]bool{"count": true, "sha256": true, "skip": true, "": true}
	if !validVerify[c.Export.Verify] {
		errors = append(errors, ValidationError{
			Field:   "export.verify",
			Message: "verify must be 'count', 'sha256', or 'skip'",
		})
	}

	if c.Export.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "export.max_connections",
			Message: "max_connections cannot be negative",
		})
	} else if c.Export.MaxConnections == 1 && c.Export.Driver != "sqlite" {
		// the export lock pins one connection while the writer needs another
		errors = append(errors, ValidationError{
			Field:   "export.max_connections",
			Message: "max_connections must be 0 or at least 2 for mysql and postgres",
		})
	}

	return errors
}

func (c *Config) validateMetrics() ValidationErrors {
	var errors ValidationErrors

	if c.Metrics.Listen != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		errors = append(errors, ValidationError{
			Field:   "metrics.path",
			Message: "path must start with '/'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
