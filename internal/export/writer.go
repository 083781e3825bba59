// Package export writes fetched catalog rows into a SQL table.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dbsmedya/goreef/internal/logger"
	"github.com/dbsmedya/goreef/internal/sqlutil"
	"github.com/dbsmedya/goreef/internal/types"
)

// Stats summarizes one Write call.
type Stats struct {
	Rows       int64
	Skipped    int64  // rows that failed to marshal
	ExportedAt string // exported_at value shared by every row of the batch
	Payloads   []string
	Duration   time.Duration
}

// Writer inserts records into one table. Facet fields get their own
// columns; the full record is kept as JSON in payload.
type Writer struct {
	db      *sql.DB
	dialect sqlutil.Dialect
	table   string // quoted
	logger  *logger.Logger
	now     func() time.Time
}

// facetColumns are the record fields stored in dedicated columns, in column order.
var facetColumns = []string{
	string(types.FieldCampagne),
	string(types.FieldSite),
	string(types.FieldStation),
	string(types.FieldTransect),
	string(types.FieldTypePoissons),
}

// NewWriter validates the table name and returns a Writer.
func NewWriter(db *sql.DB, dialect sqlutil.Dialect, table string, log *logger.Logger) (*Writer, error) {
	if db == nil {
		return nil, fmt.Errorf("export database is nil")
	}
	quoted, err := sqlutil.QuoteIdentifierSafe(dialect, table)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Writer{
		db:      db,
		dialect: dialect,
		table:   quoted,
		logger:  log.WithTable(table),
		now:     time.Now,
	}, nil
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for the dialect.
func (w *Writer) CreateTableSQL() string {
	text, payload := "TEXT", "TEXT"
	if w.dialect == sqlutil.MySQL {
		text, payload = "VARCHAR(255)", "LONGTEXT"
	}

	cols := make([]string, 0, len(facetColumns)+2)
	for _, c := range facetColumns {
		cols = append(cols, fmt.Sprintf("%s %s NULL", sqlutil.QuoteIdentifier(w.dialect, c), text))
	}
	cols = append(cols,
		fmt.Sprintf("%s %s NOT NULL", sqlutil.QuoteIdentifier(w.dialect, "payload"), payload),
		fmt.Sprintf("%s VARCHAR(40) NOT NULL", sqlutil.QuoteIdentifier(w.dialect, "exported_at")),
	)

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", w.table, strings.Join(cols, ", "))
}

// InsertSQL returns the parameterized INSERT statement for one record.
func (w *Writer) InsertSQL() string {
	cols := make([]string, 0, len(facetColumns)+2)
	for _, c := range append(append([]string{}, facetColumns...), "payload", "exported_at") {
		cols = append(cols, sqlutil.QuoteIdentifier(w.dialect, c))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		w.table, strings.Join(cols, ", "), sqlutil.Placeholders(w.dialect, 1, len(cols)))
}

// EnsureTable creates the target table when it does not exist.
func (w *Writer) EnsureTable(ctx context.Context) error {
	if _, err := w.db.ExecContext(ctx, w.CreateTableSQL()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", w.table, err)
	}
	return nil
}

// Write inserts rows in a single transaction. Nothing is written unless every insert succeeds.
func (w *Writer) Write(ctx context.Context, rows []types.Record) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	if len(rows) == 0 {
		w.logger.Info("No rows to export")
		return stats, nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin export transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			w.logger.Warn("Rolling back export transaction")
			if rbErr := tx.Rollback(); rbErr != nil {
				w.logger.Errorf("Failed to rollback transaction: %v", rbErr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, w.InsertSQL())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	exportedAt := w.now().UTC().Format(time.RFC3339Nano)
	stats.ExportedAt = exportedAt

	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("export interrupted: %w", err)
		}

		args, payload, err := recordArgs(r, exportedAt)
		if err != nil {
			w.logger.Warnf("Skipping row %d: %v", i, err)
			stats.Skipped++
			continue
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
		stats.Rows++
		stats.Payloads = append(stats.Payloads, payload)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit export transaction: %w", err)
	}
	tx = nil

	stats.Duration = time.Since(start)
	w.logger.Infof("Export complete: %d rows, %d skipped, duration: %s",
		stats.Rows, stats.Skipped, stats.Duration)

	return stats, nil
}

// recordArgs builds the bind values for one record: facet columns (NULL when
// absent), the JSON payload and the export timestamp.
func recordArgs(r types.Record, exportedAt string) ([]interface{}, string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, "", fmt.Errorf("marshal record: %w", err)
	}

	args := make([]interface{}, 0, len(facetColumns)+2)
	for _, c := range facetColumns {
		if v, ok := r.Get(c); ok {
			args = append(args, types.ToString(v))
		} else {
			args = append(args, nil)
		}
	}
	return append(args, string(payload), exportedAt), string(payload), nil
}
