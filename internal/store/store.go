package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned when a sale would drive stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductInUse is returned when deleting a product that has sales history.
	ErrProductInUse = errors.New("product has sales history")
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

type Store struct {
	db  *sqlx.DB
	loc *time.Location
}

// NewStore opens the database named by databaseURL and creates the schema.
// A postgres:// URL selects Postgres; anything else is a SQLite file path
// (":memory:" for an in-memory database).
func NewStore(databaseURL string) (*Store, error) {
	driver, dsn := parseDatabaseURL(databaseURL)

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == driverSQLite {
		// one connection: in-memory databases are per-connection and the
		// file does not support concurrent writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	s := &Store{db: db, loc: time.Local}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

func parseDatabaseURL(databaseURL string) (driver, dsn string) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return driverPostgres, databaseURL
	}

	path := strings.TrimPrefix(databaseURL, "sqlite://")
	if path == "" {
		path = "pos.db"
	}
	if path == ":memory:" {
		return driverSQLite, "file::memory:?_loc=auto&_foreign_keys=on"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return driverSQLite, "file:" + path + sep + "_loc=auto&_foreign_keys=on&_busy_timeout=5000"
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// Location is the time zone used for day and month boundaries.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

// ts normalizes a timestamp before it is written or compared. SQLite compares
// DATETIME values as text, so everything is stored in UTC. Local time is only
// used to compute period bounds and for display.
func (s *Store) ts(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if s.db.DriverName() == driverPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Money columns are TEXT in SQLite: NUMERIC affinity would store fractional
// amounts as REAL.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_date DATETIME NOT NULL,
		total TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id INTEGER NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id),
		qty INTEGER NOT NULL CHECK (qty > 0),
		price TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_items_sale_id ON sales_items(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_items_product_id ON sales_items(product_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(14,2) NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGSERIAL PRIMARY KEY,
		sale_date TIMESTAMPTZ NOT NULL,
		total NUMERIC(14,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales_items (
		id BIGSERIAL PRIMARY KEY,
		sale_id BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id),
		qty INTEGER NOT NULL CHECK (qty > 0),
		price NUMERIC(14,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_items_sale_id ON sales_items(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_items_product_id ON sales_items(product_id)`,
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}
