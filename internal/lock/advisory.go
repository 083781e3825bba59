// Package lock provides the advisory lock that keeps two exports from
// writing into the same table at once.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/dbsmedya/goreef/internal/sqlutil"
)

// ErrLockTimeout is returned when another instance is holding the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Timeout values for lock acquisition (in seconds). Only MySQL waits;
// PostgreSQL always tries once.
const (
	TimeoutImmediate = 0
	TimeoutShort     = 1
	TimeoutInfinite  = -1
)

// TableLock is a session-level advisory lock named after an export table.
// MySQL uses GET_LOCK, PostgreSQL pg_try_advisory_lock on a key derived
// from the name. SQLite serializes writers itself, so the lock is a no-op there.
//
// Session locks belong to one connection, so the lock pins a *sql.Conn
// from the pool while held.
type TableLock struct {
	db       *sql.DB
	dialect  sqlutil.Dialect
	lockName string
	conn     *sql.Conn
	held     bool
}

// New creates a lock for table. Nothing is acquired until Acquire is called.
func New(db *sql.DB, dialect sqlutil.Dialect, table string) *TableLock {
	return &TableLock{
		db:       db,
		dialect:  dialect,
		lockName: Name(table),
	}
}

// Name returns the lock name for an export table: "goreef:export:{table}".
// Characters outside [A-Za-z0-9_-] are replaced with underscores.
func Name(table string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, table)
	return "goreef:export:" + sanitized
}

// Key returns the 64-bit PostgreSQL advisory key for name.
func Key(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

// Acquire tries to take the lock, waiting up to timeoutSeconds on MySQL.
// It reports false without error when another session holds it.
func (l *TableLock) Acquire(ctx context.Context, timeoutSeconds int) (bool, error) {
	if l.held {
		return true, nil
	}
	if l.dialect == sqlutil.SQLite {
		l.held = true
		return true, nil
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reserve connection for lock: %w", err)
	}

	acquired, err := l.acquireOn(ctx, conn, timeoutSeconds)
	if err != nil || !acquired {
		conn.Close()
		return false, err
	}

	l.conn = conn
	l.held = true
	return true, nil
}

func (l *TableLock) acquireOn(ctx context.Context, conn *sql.Conn, timeoutSeconds int) (bool, error) {
	switch l.dialect {
	case sqlutil.MySQL:
		// GET_LOCK: 1 obtained, 0 timed out, NULL error
		var result sql.NullInt64
		if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", l.lockName, timeoutSeconds).Scan(&result); err != nil {
			return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
		}
		if !result.Valid {
			return false, fmt.Errorf("GET_LOCK returned NULL for lock %q (possible database error)", l.lockName)
		}
		switch result.Int64 {
		case 1:
			return true, nil
		case 0:
			return false, nil
		default:
			return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
		}

	case sqlutil.Postgres:
		var ok bool
		if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", Key(l.lockName)).Scan(&ok); err != nil {
			return false, fmt.Errorf("failed to execute pg_try_advisory_lock: %w", err)
		}
		return ok, nil

	default:
		return false, fmt.Errorf("advisory locks not supported for dialect %q", l.dialect)
	}
}

// AcquireOrFail takes the lock with a short timeout and returns
// ErrLockTimeout when another instance holds it.
func (l *TableLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := l.Acquire(ctx, TimeoutShort)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, l.lockName)
	}
	return nil
}

// Release drops the lock and returns the pinned connection to the pool.
// Releasing a lock that is not held is a no-op.
func (l *TableLock) Release(ctx context.Context) error {
	if !l.held {
		return nil
	}
	l.held = false
	if l.conn == nil {
		return nil
	}
	conn := l.conn
	l.conn = nil
	defer conn.Close()

	var err error
	switch l.dialect {
	case sqlutil.MySQL:
		var result sql.NullInt64
		err = conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", l.lockName).Scan(&result)
		if err == nil && (!result.Valid || result.Int64 != 1) {
			err = fmt.Errorf("lock %q was not held by this session", l.lockName)
		}
	case sqlutil.Postgres:
		var ok bool
		err = conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", Key(l.lockName)).Scan(&ok)
		if err == nil && !ok {
			err = fmt.Errorf("lock %q was not held by this session", l.lockName)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// IsHeld reports whether this instance holds the lock.
func (l *TableLock) IsHeld() bool {
	return l.held
}

// LockName returns the name of the advisory lock.
func (l *TableLock) LockName() string {
	return l.lockName
}
