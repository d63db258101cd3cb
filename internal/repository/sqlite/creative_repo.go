package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
)

const creativeColumns = `id, name, account, shop, type, sub_type, video, caption, source_label, authorized, created_at, updated_at`

// CreativeRepo implements repository.CreativeRepository
type CreativeRepo struct {
	db *DB
}

func NewCreativeRepo(db *DB) repository.CreativeRepository {
	return &CreativeRepo{db: db}
}

func (r *CreativeRepo) Create(ctx context.Context, c *domain.Creative) error {
	stamp(&c.Meta)
	query := `INSERT INTO creatives (` + creativeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Account, c.Shop, c.Type, c.SubType, c.Video, c.Caption, c.SourceLabel, c.Authorized,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create creative: %w", err)
	}
	return nil
}

func (r *CreativeRepo) GetByID(ctx context.Context, id string) (*domain.Creative, error) {
	query := `SELECT ` + creativeColumns + ` FROM creatives WHERE id = ?`
	c, err := scanCreative(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creative: %w", err)
	}
	return c, nil
}

func (r *CreativeRepo) Update(ctx context.Context, c *domain.Creative) error {
	touch(&c.Meta)
	query := `
		UPDATE creatives SET name = ?, account = ?, shop = ?, type = ?, sub_type = ?, video = ?, caption = ?,
			source_label = ?, authorized = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		c.Name, c.Account, c.Shop, c.Type, c.SubType, c.Video, c.Caption, c.SourceLabel, c.Authorized,
		c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update creative: %w", err)
	}
	return nil
}

func (r *CreativeRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM creatives WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete creative: %w", err)
	}
	return nil
}

// List keeps insertion order so the wizard can rely on a stable order
func (r *CreativeRepo) List(ctx context.Context) ([]domain.Creative, error) {
	query := `SELECT ` + creativeColumns + ` FROM creatives ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list creatives: %w", err)
	}
	defer rows.Close()

	creatives := []domain.Creative{}
	for rows.Next() {
		c, err := scanCreative(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan creative: %w", err)
		}
		creatives = append(creatives, *c)
	}
	return creatives, rows.Err()
}

func scanCreative(row rowScanner) (*domain.Creative, error) {
	c := &domain.Creative{}
	err := row.Scan(&c.ID, &c.Name, &c.Account, &c.Shop, &c.Type, &c.SubType, &c.Video, &c.Caption,
		&c.SourceLabel, &c.Authorized, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}
