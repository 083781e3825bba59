// Package verifier checks that an exported batch landed in the target table intact.
package verifier

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/dbsmedya/goreef/internal/logger"
	"github.com/dbsmedya/goreef/internal/sqlutil"
)

// Method defines how a batch is verified.
type Method string

const (
	// MethodCount compares row counts (fast)
	MethodCount Method = "count"
	// MethodSHA256 compares a SHA256 over every stored payload
	MethodSHA256 Method = "sha256"
	// MethodSkip skips verification entirely
	MethodSkip Method = "skip"
)

// ParseMethod maps a configured name to a Method. Empty means MethodCount.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case "":
		return MethodCount, nil
	case MethodCount, MethodSHA256, MethodSkip:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported verification method: %s", s)
	}
}

// Result holds the outcome for one batch.
type Result struct {
	Table        string
	Method       Method
	Expected     int64
	Actual       int64
	ExpectedHash string
	ActualHash   string
	Match        bool
	Message      string
}

// Verifier compares what was written with what the table holds.
type Verifier struct {
	db      *sql.DB
	dialect sqlutil.Dialect
	name    string
	table   string // quoted
	method  Method
	logger  *logger.Logger
}

// New creates a Verifier for table.
func New(db *sql.DB, dialect sqlutil.Dialect, table string, method Method, log *logger.Logger) (*Verifier, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	quoted, err := sqlutil.QuoteIdentifierSafe(dialect, table)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = MethodCount
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Verifier{
		db:      db,
		dialect: dialect,
		name:    table,
		table:   quoted,
		method:  method,
		logger:  log,
	}, nil
}

// Method returns the configured verification method.
func (v *Verifier) Method() Method {
	return v.method
}

// Verify checks the rows stamped with exportedAt against the payloads that
// were written. A mismatch returns both the Result and an error.
func (v *Verifier) Verify(ctx context.Context, exportedAt string, payloads []string) (*Result, error) {
	if v.method == MethodSkip {
		v.logger.Info("Verification SKIPPED (method=skip)")
		return &Result{Table: v.name, Method: MethodSkip, Match: true}, nil
	}

	var (
		result *Result
		err    error
	)
	switch v.method {
	case MethodCount:
		result, err = v.verifyByCount(ctx, exportedAt, payloads)
	case MethodSHA256:
		result, err = v.verifyBySHA256(ctx, exportedAt, payloads)
	default:
		return nil, fmt.Errorf("unsupported verification method: %s", v.method)
	}
	if err != nil {
		return nil, fmt.Errorf("verification failed for table %s: %w", v.name, err)
	}

	if !result.Match {
		v.logger.Errorf("Verification FAILED for table %q: %s", v.name, result.Message)
		return result, fmt.Errorf("verification mismatch in table %s: %s", v.name, result.Message)
	}

	v.logger.Infof("Verification PASSED for table %q (%s, %d rows)", v.name, v.method, result.Actual)
	return result, nil
}

func (v *Verifier) verifyByCount(ctx context.Context, exportedAt string, payloads []string) (*Result, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = %s",
		v.table, sqlutil.QuoteIdentifier(v.dialect, "exported_at"), sqlutil.Placeholder(v.dialect, 1))

	var actual int64
	if err := v.db.QueryRowContext(ctx, query, exportedAt).Scan(&actual); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	result := &Result{
		Table:    v.name,
		Method:   MethodCount,
		Expected: int64(len(payloads)),
		Actual:   actual,
	}
	result.Match = result.Expected == result.Actual
	if !result.Match {
		result.Message = fmt.Sprintf("count mismatch: written=%d, stored=%d", result.Expected, result.Actual)
	}
	return result, nil
}

func (v *Verifier) verifyBySHA256(ctx context.Context, exportedAt string, payloads []string) (*Result, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		sqlutil.QuoteIdentifier(v.dialect, "payload"), v.table,
		sqlutil.QuoteIdentifier(v.dialect, "exported_at"), sqlutil.Placeholder(v.dialect, 1))

	rows, err := v.db.QueryContext(ctx, query, exportedAt)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var stored []string
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("hash computation interrupted: %w", err)
		}
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		stored = append(stored, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	result := &Result{
		Table:        v.name,
		Method:       MethodSHA256,
		Expected:     int64(len(payloads)),
		Actual:       int64(len(stored)),
		ExpectedHash: HashPayloads(payloads),
		ActualHash:   HashPayloads(stored),
	}
	result.Match = result.Expected == result.Actual && result.ExpectedHash == result.ActualHash
	if !result.Match {
		if result.Expected != result.Actual {
			result.Message = fmt.Sprintf("count mismatch: written=%d, stored=%d", result.Expected, result.Actual)
		} else {
			result.Message = fmt.Sprintf("hash mismatch: written=%s, stored=%s",
				result.ExpectedHash[:16], result.ActualHash[:16])
		}
	}
	return result, nil
}

// HashPayloads returns the hex SHA256 of payloads in sorted order, so the
// database's row order and collation do not matter.
func HashPayloads(payloads []string) string {
	sorted := slices.Clone(payloads)
	slices.Sort(sorted)

	hasher := sha256.New()
	for _, p := range sorted {
		hasher.Write([]byte(p))
		hasher.Write([]byte("\n"))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
