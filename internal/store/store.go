// Package store is the relational data access layer. It is the only package that
// sees SQL rows: everything leaving it is a typed model, and every error leaving it
// is a coded domain error (QUERY for reads, PERSISTENCE for writes, NOT_FOUND for
// single-entity lookups).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ocaso/ocaso-api/internal/database"
	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
)

// Querier is implemented by both *sql.DB and *sql.Tx, so every query helper
// runs the same inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides persistence for categories, listings and bids.
type Store struct {
	db      *database.DB
	q       Querier
	dialect database.Dialect
	logger  *slog.Logger
	now     func() time.Time
	inTx    bool
}

// New wraps an open connection pool. The pool's lifecycle stays with the caller.
func New(db *database.DB, logger *slog.Logger) *Store {
	return &Store{
		db:      db,
		q:       db.DB,
		dialect: db.Dialect,
		logger:  logger,
		now:     time.Now,
	}
}

// Dialect returns the SQL dialect of the underlying pool.
func (s *Store) Dialect() database.Dialect {
	return s.dialect
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn inside a single transaction. The *Store passed to fn is bound
// to the transaction; fn's error (or a panic) rolls everything back.
// Nested calls reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domainerrors.Persistence(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil {
				s.logger.Error("transaction rollback failed", "error", rbErr)
			}
		}
	}()

	txStore := *s
	txStore.q = sqlTx
	txStore.inTx = true

	if err = fn(&txStore); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return domainerrors.Persistence(err, "commit transaction")
	}
	return nil
}

// timeLayout is fixed-width so TEXT timestamps in SQLite sort chronologically.
const timeLayout = "2006-01-02 15:04:05.000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timeScanner accepts DATETIME values from MySQL (time.Time with parseTime)
// and TEXT values from SQLite.
type timeScanner struct {
	dest *time.Time
}

func (ts timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.dest = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		*ts.dest = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into time", src)
	}
}

func (ts timeScanner) parse(s string) error {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.dest = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized time %q", s)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// chunk splits n items into [start, end) windows of at most size.
func chunk(n, size int, fn func(start, end int) error) error {
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// batchSize bounds multi-row statements well under SQLite's variable limit.
const batchSize = 200

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
