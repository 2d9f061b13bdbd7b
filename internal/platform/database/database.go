package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"activitylog/internal/platform/config"
	apperrors "activitylog/internal/platform/errors"
	"activitylog/internal/platform/retry"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// DB is the shared storage handle. It implements tx.Manager.
type DB struct {
	pool   *sql.DB
	driver string
	retry  retry.Policy
	logger zerolog.Logger
}

type Options struct {
	Retry  retry.Policy
	Logger zerolog.Logger
}

// Open connects to the configured driver and migrates the schema.
func Open(ctx context.Context, cfg config.Config, opts Options) (*DB, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.DBPath, cfg.Database.BusyTimeout, opts)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.Database.DSN, opts)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func OpenSQLite(ctx context.Context, path string, busyTimeout time.Duration, opts Options) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	if busyTimeout <= 0 {
		busyTimeout = config.DefaultSQLiteBusyTimeout
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return finishOpen(ctx, pool, config.DriverSQLite, opts)
}

func OpenPostgres(ctx context.Context, dsn string, opts Options) (*DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return finishOpen(ctx, pool, config.DriverPostgres, opts)
}

func finishOpen(ctx context.Context, pool *sql.DB, driver string, opts Options) (*DB, error) {
	db := &DB{pool: pool, driver: driver, retry: opts.Retry, logger: opts.Logger}
	if err := db.Migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.pool.Close()
}

func (db *DB) Driver() string {
	return db.driver
}

// Conn returns the transaction carried by ctx, or the pool outside Within.
func (db *DB) Conn(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.pool
}

// Rebind rewrites ? placeholders for the active driver.
func (db *DB) Rebind(query string) string {
	return Rebind(db.driver, query)
}

func Rebind(driver, query string) string {
	if driver != config.DriverPostgres || !strings.Contains(query, "?") {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Within runs fn in a single transaction and retries the whole transaction on
// failure. Nested calls join the outer transaction.
func (db *DB) Within(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	attempt := 0
	err := db.retry.Do(ctx, func() error {
		attempt++
		err := db.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || isDomainError(err) {
			return retry.Permanent(err)
		}
		return err
	}, func(err error, wait time.Duration) {
		db.logger.Warn().Err(err).Int("attempt", attempt).Dur("backoff", wait).Msg("storage transaction failed, retrying")
	})
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
}

func (db *DB) runTx(ctx context.Context, fn func(context.Context) error) error {
	tx, err := db.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isDomainError(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidInput) || errors.Is(err, apperrors.ErrNotFound)
}
