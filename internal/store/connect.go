// Package store persists batch records in sqlite or postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Store wraps a database handle with the dialect it speaks.
type Store struct {
	db     *sql.DB
	driver Driver
}

// ParseDSN picks the driver from the DSN: postgres:// and postgresql:// URLs
// go to pgx, everything else is a sqlite path (an optional sqlite: prefix is
// stripped).
func ParseDSN(dsn string) (Driver, string, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("empty store dsn")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite:"), nil
	default:
		return DriverSQLite, dsn, nil
	}
}

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, conn, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if !strings.Contains(conn, "_pragma=busy_timeout") {
			conn = withQuery(conn, "_pragma=busy_timeout(5000)")
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
	}

	db, err := sql.Open(drvName, conn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// один писатель: sqlite не любит параллельные транзакции
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return s, nil
}

func withQuery(conn, param string) string {
	if strings.Contains(conn, "?") {
		return conn + "&" + param
	}
	return conn + "?" + param
}

// Close releases the handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver reports the dialect in use.
func (s *Store) Driver() Driver {
	return s.driver
}

func (s *Store) ensureSchema(ctx context.Context) error {
	var schema string
	switch s.driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// rebind converts ? placeholders into $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  started_at INTEGER NOT NULL,
  fingerprint TEXT NOT NULL,
  originals TEXT NOT NULL,
  corrections TEXT NOT NULL,
  total INTEGER NOT NULL,
  comparable INTEGER NOT NULL,
  needs_review INTEGER NOT NULL,
  failed INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  question TEXT NOT NULL,
  old_path TEXT NOT NULL,
  new_path TEXT NOT NULL,
  comparable INTEGER NOT NULL,
  edit_distance INTEGER NOT NULL DEFAULT 0,
  ratio REAL NOT NULL DEFAULT 0,
  legit_lo INTEGER,
  legit_hi INTEGER,
  inspect TEXT NOT NULL DEFAULT '',
  old_flaws_json TEXT NOT NULL DEFAULT '{}',
  new_flaws_json TEXT NOT NULL DEFAULT '{}',
  diagnostics_json TEXT NOT NULL DEFAULT '[]',
  error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS records_run_question ON records(run_id, question);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS runs (
  id BIGSERIAL PRIMARY KEY,
  started_at BIGINT NOT NULL,
  fingerprint TEXT NOT NULL,
  originals TEXT NOT NULL,
  corrections TEXT NOT NULL,
  total INTEGER NOT NULL,
  comparable INTEGER NOT NULL,
  needs_review INTEGER NOT NULL,
  failed INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
  id BIGSERIAL PRIMARY KEY,
  run_id BIGINT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  question TEXT NOT NULL,
  old_path TEXT NOT NULL,
  new_path TEXT NOT NULL,
  comparable BOOLEAN NOT NULL,
  edit_distance INTEGER NOT NULL DEFAULT 0,
  ratio DOUBLE PRECISION NOT NULL DEFAULT 0,
  legit_lo INTEGER,
  legit_hi INTEGER,
  inspect TEXT NOT NULL DEFAULT '',
  old_flaws_json TEXT NOT NULL DEFAULT '{}',
  new_flaws_json TEXT NOT NULL DEFAULT '{}',
  diagnostics_json TEXT NOT NULL DEFAULT '[]',
  error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS records_run_question ON records(run_id, question);
`
