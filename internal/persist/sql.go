package persist

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

// SQLKV stores keys in the vtodo_kv table of a SQLite or MySQL database.
type SQLKV struct {
	db     *sql.DB
	upsert string
}

const (
	selectKV     = `SELECT kv_value FROM vtodo_kv WHERE kv_key = ?`
	upsertSQLite = `INSERT INTO vtodo_kv (kv_key, kv_value) VALUES (?, ?)
		ON CONFLICT(kv_key) DO UPDATE SET kv_value = excluded.kv_value, updated_at = CURRENT_TIMESTAMP`
	upsertMySQL = `INSERT INTO vtodo_kv (kv_key, kv_value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE kv_value = VALUES(kv_value)`
)

// OpenSQLite opens (creating if needed) a SQLite database at path and applies
// migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLKV, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is empty")
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite migration driver: %w", err)
	}
	if err := runMigrations(driver, "sqlite3", "migrations/sqlite"); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLKV{db: db, upsert: upsertSQLite}, nil
}

// OpenMySQL connects to MySQL with dsn and applies migrations.
func OpenMySQL(ctx context.Context, dsn string) (*SQLKV, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("mysql dsn is empty")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql migration driver: %w", err)
	}
	if err := runMigrations(driver, "mysql", "migrations/mysql"); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLKV{db: db, upsert: upsertMySQL}, nil
}

// runMigrations applies every up migration under dir. The migrate instance is
// deliberately not closed: closing it would close the shared *sql.DB.
func runMigrations(driver database.Driver, dbName, dir string) error {
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, dbName, driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *SQLKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectKV, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLKV) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.upsert, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
