// Package sqlite provides SQLite implementation of repository interfaces
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// DB wraps the sql.DB with SQLite-specific optimizations
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection with optimizations for shared hosting
func New(dbPath string) (*DB, error) {
	// Validate and clean the path to prevent path traversal
	cleanPath := filepath.Clean(dbPath)

	if cleanPath != MemoryPath {
		// Check if path tries to escape current directory
		if !filepath.IsLocal(cleanPath) && !filepath.IsAbs(cleanPath) {
			return nil, fmt.Errorf("invalid database path: potential path traversal detected")
		}

		// Ensure the directory exists
		dir := filepath.Dir(cleanPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// WAL mode for better concurrent read performance
	// busy_timeout to handle lock contention gracefully
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=cache_size(2000)", cleanPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection also keeps an in-memory database alive between queries
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Verify the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{db}, nil
}

// Migrate runs database migrations
func (db *DB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user',
			shops_json TEXT NOT NULL DEFAULT '[]',
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			is_master_admin BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS shops (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			owner TEXT NOT NULL DEFAULT '',
			accounts_json TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			parent TEXT NOT NULL DEFAULT '',
			shops_json TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'Unauthorized',
			type TEXT NOT NULL DEFAULT '',
			users_json TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS creatives (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			account TEXT NOT NULL DEFAULT '',
			shop TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			sub_type TEXT NOT NULL DEFAULT '',
			video TEXT NOT NULL DEFAULT '',
			caption TEXT NOT NULL DEFAULT '',
			source_label TEXT NOT NULL DEFAULT '',
			authorized BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			account TEXT NOT NULL DEFAULT '',
			shop TEXT NOT NULL DEFAULT '',
			price_json TEXT NOT NULL DEFAULT 'null',
			description TEXT NOT NULL DEFAULT '',
			caption TEXT NOT NULL DEFAULT '',
			image_creatives_json TEXT NOT NULL DEFAULT '[]',
			video_creatives_json TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS campaigns (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			shop TEXT NOT NULL DEFAULT '',
			account TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL DEFAULT '',
			budget TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL DEFAULT '',
			end_date TEXT NOT NULL DEFAULT '',
			target_audience TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			enabled BOOLEAN NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT '',
			creative_mode TEXT NOT NULL DEFAULT '',
			selected_accounts_json TEXT NOT NULL DEFAULT '[]',
			selected_creatives_json TEXT NOT NULL DEFAULT '[]',
			excluded_creatives_json TEXT NOT NULL DEFAULT '[]',
			metrics_json TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		// Indexes for performance
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_creatives_shop ON creatives(shop)`,
		`CREATE INDEX IF NOT EXISTS idx_products_shop ON products(shop)`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_shop ON campaigns(shop)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, migration)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// NewRepositories wires every gateway onto one connection
func NewRepositories(db *DB) *repository.Repositories {
	return &repository.Repositories{
		Users:     NewUserRepo(db),
		Shops:     NewShopRepo(db),
		Accounts:  NewAccountRepo(db),
		Creatives: NewCreativeRepo(db),
		Products:  NewProductRepo(db),
		Campaigns: NewCampaignRepo(db),
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// stamp assigns a fresh identifier and both timestamps
func stamp(m *domain.Meta) {
	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
}

// touch sets the modification timestamp
func touch(m *domain.Meta) {
	m.UpdatedAt = time.Now().UTC()
}

// encodeJSON marshals a reference list or nested value into a text column.
// Nil slices are written as empty arrays.
func encodeJSON(v any) (string, error) {
	if ids, ok := v.([]string); ok && ids == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeIDs reads a reference list column, tolerating empty text
func decodeIDs(raw string) ([]string, error) {
	ids := []string{}
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
