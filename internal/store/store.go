// Package store provides the SQLite connection, schema and scoped write
// transactions shared by the account directory, posting and report engines.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ErrUnavailable marks a transient storage failure: the write lock could not
// be acquired within the busy timeout, or the database could not be reached.
// The failed operation was rolled back and may be retried as a whole.
var ErrUnavailable = errors.New("storage unavailable")

// DefaultBusyTimeout bounds how long a writer waits for the database lock.
const DefaultBusyTimeout = 10 * time.Second

// Options tune how the database is opened.
type Options struct {
	BusyTimeout time.Duration
}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB manages a SQLite database connection.
type DB struct {
	db     *sql.DB
	dbPath string
}

// Open opens (creating if needed) the SQLite database at dbPath and applies
// the schema. WAL mode and foreign keys are enabled, and write transactions
// start with BEGIN IMMEDIATE so concurrent writers serialize on the lock.
func Open(dbPath string, opts Options) (*DB, error) {
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	timeout := opts.BusyTimeout
	if timeout <= 0 {
		timeout = DefaultBusyTimeout
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=%d",
		dbPath, timeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, Classify(fmt.Errorf("pinging database: %w", err))
	}

	s := &DB{db: db, dbPath: dbPath}
	if err := InitializeSchema(context.Background(), s); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *DB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SQL returns the underlying *sql.DB for read queries.
func (s *DB) SQL() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *DB) Path() string {
	return s.dbPath
}

// WithTx runs fn inside a write transaction. The transaction is committed when
// fn returns nil and rolled back when fn returns an error or panics.
func (s *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Classify(fmt.Errorf("beginning transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return Classify(fmt.Errorf("%w (rollback: %v)", err, rbErr))
		}
		return Classify(err)
	}

	if err := tx.Commit(); err != nil {
		return Classify(fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// Classify tags transient storage errors with ErrUnavailable. Other errors are
// returned unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr,
			sqlite3.ErrCantOpen, sqlite3.ErrFull, sqlite3.ErrProtocol:
			return true
		}
	}
	return false
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// TimeLayout is how timestamps are stored. Lexical order matches time order,
// and the first ten bytes are the calendar date.
const TimeLayout = time.RFC3339

// FormatTime renders t in UTC for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders the calendar date of t (UTC) for period filters.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
