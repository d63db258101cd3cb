package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
)

const shopColumns = `id, name, owner, accounts_json, created_at, updated_at`

// ShopRepo implements repository.ShopRepository
type ShopRepo struct {
	db *DB
}

func NewShopRepo(db *DB) repository.ShopRepository {
	return &ShopRepo{db: db}
}

func (r *ShopRepo) Create(ctx context.Context, shop *domain.Shop) error {
	stamp(&shop.Meta)
	accounts, err := encodeJSON(shop.Accounts)
	if err != nil {
		return fmt.Errorf("failed to encode shop accounts: %w", err)
	}

	query := `INSERT INTO shops (` + shopColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		shop.ID, shop.Name, shop.Owner, accounts, shop.CreatedAt, shop.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}
	return nil
}

func (r *ShopRepo) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE id = ?`
	shop, err := scanShop(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

func (r *ShopRepo) Update(ctx context.Context, shop *domain.Shop) error {
	touch(&shop.Meta)
	accounts, err := encodeJSON(shop.Accounts)
	if err != nil {
		return fmt.Errorf("failed to encode shop accounts: %w", err)
	}

	query := `UPDATE shops SET name = ?, owner = ?, accounts_json = ?, updated_at = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query, shop.Name, shop.Owner, accounts, shop.UpdatedAt, shop.ID)
	if err != nil {
		return fmt.Errorf("failed to update shop: %w", err)
	}
	return nil
}

func (r *ShopRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM shops WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}
	return nil
}

func (r *ShopRepo) List(ctx context.Context) ([]domain.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer rows.Close()

	shops := []domain.Shop{}
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, *s)
	}
	return shops, rows.Err()
}

func scanShop(row rowScanner) (*domain.Shop, error) {
	shop := &domain.Shop{}
	var accounts string
	if err := row.Scan(&shop.ID, &shop.Name, &shop.Owner, &accounts, &shop.CreatedAt, &shop.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if shop.Accounts, err = decodeIDs(accounts); err != nil {
		return nil, fmt.Errorf("failed to decode shop accounts: %w", err)
	}
	return shop, nil
}
