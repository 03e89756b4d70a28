package repository

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // postgres driver
	"github.com/okian/prhealth/pkg/metrics"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite" // sqlite driver
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultQueryTimeout = 5 * time.Second

// SQLStore implements Store and Writer on database/sql.
type SQLStore struct {
	db           *sql.DB
	driver       string
	sb           sq.StatementBuilderType
	queryTimeout time.Duration
}

// Open connects to the database. For sqlite the parent directory of dsn is created.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	var ph sq.PlaceholderFormat
	switch driver {
	case DriverSQLite:
		ph = sq.Question
		if dir := filepath.Dir(sqlitePath(dsn)); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, eris.Wrap(err, "create database directory")
			}
		}
	case DriverPostgres:
		ph = sq.Dollar
	default:
		return nil, eris.Wrapf(ErrUnsupportedDriver, "driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "open database")
	}
	if driver == DriverSQLite {
		// one connection serializes writers and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{
		db:           db,
		driver:       driver,
		sb:           sq.StatementBuilder.PlaceholderFormat(ph),
		queryTimeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func sqlitePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

// Driver returns the database driver name.
func (s *SQLStore) Driver() string { return s.driver }

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return eris.Wrap(err, "ping database")
	}
	return nil
}

func (s *SQLStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// query runs a select and hands every row to scan.
func (s *SQLStore) query(ctx context.Context, name string, b sq.Sqlizer, scan func(*sql.Rows) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()

	q, args, err := b.ToSql()
	if err != nil {
		return eris.Wrapf(err, "build %s query", name)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		metrics.RecordStoreQueryError(name)
		return eris.Wrapf(err, "query %s", name)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			metrics.RecordStoreQueryError(name)
			return eris.Wrapf(err, "scan %s", name)
		}
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreQueryError(name)
		return eris.Wrapf(err, "iterate %s", name)
	}
	metrics.RecordStoreQueryLatency(name, float64(time.Since(start).Microseconds())/1000)
	return nil
}

func (s *SQLStore) exec(ctx context.Context, name string, b sq.Sqlizer) (sql.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	q, args, err := b.ToSql()
	if err != nil {
		return nil, eris.Wrapf(err, "build %s statement", name)
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		metrics.RecordStoreQueryError(name)
		return nil, eris.Wrapf(err, "exec %s", name)
	}
	return res, nil
}

func millis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
