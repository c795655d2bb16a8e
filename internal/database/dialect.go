package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect captures the database-specific behavior the rest of the code
// needs: driver selection, placeholder syntax, ID retrieval and
// connection tuning. Queries are written once with ? placeholders and
// rewritten per dialect.
type Dialect interface {
	DriverName() string
	RewriteQuery(query string) string
	SupportsLastInsertID() bool
	Configure(db *sql.DB) error

	// MigrationsSubdir names the per-dialect migrations directory.
	MigrationsSubdir() string

	// MigrationsTableQuery returns the SQL creating the tracking table.
	MigrationsTableQuery() string
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewriteNumbered converts ? placeholders to $1, $2, ...
func rewriteNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

func tunePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
}

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct{}

func (SQLiteDialect) DriverName() string               { return "sqlite3" }
func (SQLiteDialect) RewriteQuery(query string) string { return query }
func (SQLiteDialect) SupportsLastInsertID() bool       { return true }
func (SQLiteDialect) MigrationsSubdir() string         { return "sqlite" }

func (SQLiteDialect) Configure(db *sql.DB) error {
	tunePool(db)
	// WAL for better concurrency between the HTTP handlers and the
	// background sweeper.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return err
	}
	return nil
}

func (SQLiteDialect) MigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct{}

func (PostgresDialect) DriverName() string               { return "postgres" }
func (PostgresDialect) RewriteQuery(query string) string { return rewriteNumbered(query) }
func (PostgresDialect) SupportsLastInsertID() bool       { return false }
func (PostgresDialect) MigrationsSubdir() string         { return "postgres" }

func (PostgresDialect) Configure(db *sql.DB) error {
	tunePool(db)
	return nil
}

func (PostgresDialect) MigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

func (MySQLDialect) DriverName() string               { return "mysql" }
func (MySQLDialect) RewriteQuery(query string) string { return query }
func (MySQLDialect) SupportsLastInsertID() bool       { return true }
func (MySQLDialect) MigrationsSubdir() string         { return "mysql" }

func (MySQLDialect) Configure(db *sql.DB) error {
	tunePool(db)
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}
	return nil
}

func (MySQLDialect) MigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}
