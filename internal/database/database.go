package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"rentacar/internal/database/migrations"
)

// DB represents the database connection.
type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
}

var ErrNotFound = errors.New("not found")

// NewDB opens the sqlite database at path and applies pending migrations.
func NewDB(ctx context.Context, path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{DB: db, path: path, logger: logger}
	if err := instance.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

// Migrate applies every embedded migration not yet recorded.
func (db *DB) Migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, migrations.FS)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		db.logger.Debug().Str("migration", r.Source.Path).Dur("took", r.Duration).Msg("Migration applied")
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// builder renders queries with '?' placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
