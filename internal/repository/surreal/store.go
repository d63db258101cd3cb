// Package surreal provides a SurrealDB implementation of repository interfaces.
//
// Every collection is a schemaless table. Documents are written as plain maps
// so identifiers and datetimes can be converted to the native SurrealDB types
// on the way in and back to domain types on the way out.
package surreal

import (
	"context"
	"fmt"
	"strings"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"

	"github.com/surrealdb/surrealdb.go"
	"go.uber.org/zap"
)

// Config holds connection settings for a SurrealDB instance
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// Store owns the SurrealDB connection shared by all collections
type Store struct {
	db     *surrealdb.DB
	logger *zap.Logger
}

// Open connects, authenticates and selects the namespace and database
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if cfg.Username != "" && cfg.Password != "" {
		if _, err := db.SignIn(ctx, surrealdb.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
		}); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	logger.Info("connected to SurrealDB",
		zap.String("url", cfg.URL),
		zap.String("namespace", cfg.Namespace),
		zap.String("database", cfg.Database))

	return &Store{db: db, logger: logger}, nil
}

// Migrate defines the only constraint the collections rely on. Tables
// themselves are created on first write.
func (s *Store) Migrate(ctx context.Context) error {
	query := `DEFINE INDEX IF NOT EXISTS users_email ON TABLE users FIELDS email UNIQUE`
	if _, err := surrealdb.Query[any](ctx, s.db, query, nil); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

// NewRepositories wires every gateway onto the store
func NewRepositories(s *Store) *repository.Repositories {
	return &repository.Repositories{
		Users:     NewUserRepo(s),
		Shops:     newCollection[domain.Shop](s.db, repository.CollectionShops),
		Accounts:  newCollection[domain.Account](s.db, repository.CollectionAccounts),
		Creatives: newCollection[domain.Creative](s.db, repository.CollectionCreatives),
		Products:  newCollection[domain.Product](s.db, repository.CollectionProducts),
		Campaigns: newCollection[domain.Campaign](s.db, repository.CollectionCampaigns),
	}
}

// isNotFound matches the error the client reports when a record select
// comes back empty
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Expected a single or multiple results but got 0") ||
		strings.Contains(msg, "cannot unmarshal array into Go value")
}
