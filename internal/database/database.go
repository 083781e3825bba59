// Package database manages the SQL connection used by the export command.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/dbsmedya/goreef/internal/config"
	"github.com/dbsmedya/goreef/internal/sqlutil"
)

// Manager owns the export database handle.
type Manager struct {
	DB     *sql.DB
	config *config.ExportConfig
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.ExportConfig) *Manager {
	return &Manager{
		config: cfg,
	}
}

// Dialect returns the SQL dialect of the configured driver.
func (m *Manager) Dialect() sqlutil.Dialect {
	return sqlutil.Dialect(m.config.Driver)
}

// Connect opens the database and verifies it with a ping.
func (m *Manager) Connect(ctx context.Context) error {
	driver, err := DriverName(m.config.Driver)
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, BuildDSN(m.config))
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", m.config.Driver, err)
	}

	if m.config.MaxConnections > 0 {
		db.SetMaxOpenConns(m.config.MaxConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to %s database: %w", m.config.Driver, err)
	}

	m.DB = db
	return nil
}

// DriverName maps a configured driver to its database/sql registration name.
func DriverName(driver string) (string, error) {
	switch driver {
	case "mysql":
		return "mysql", nil
	case "sqlite":
		return "sqlite", nil
	case "postgres":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported export driver %q", driver)
	}
}

// BuildDSN returns cfg.DSN when set, otherwise a DSN assembled from the
// host/port/user fields in the driver's native format.
func BuildDSN(cfg *config.ExportConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	switch cfg.Driver {
	case "postgres":
		return buildPostgresDSN(cfg)
	case "mysql":
		return buildMySQLDSN(cfg)
	default:
		return cfg.Database
	}
}

func buildMySQLDSN(cfg *config.ExportConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	params := "?parseTime=true&charset=utf8mb4"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

func buildPostgresDSN(cfg *config.ExportConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Database,
	}

	q := url.Values{}
	switch cfg.TLS {
	case "disable":
		q.Set("sslmode", "disable")
	case "required":
		q.Set("sslmode", "require")
	case "preferred", "":
		q.Set("sslmode", "prefer")
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Close closes the connection if one is open.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.Close(); err != nil {
		return fmt.Errorf("export database close: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return fmt.Errorf("export database not connected")
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("export database ping failed: %w", err)
	}
	return nil
}
