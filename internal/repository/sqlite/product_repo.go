package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
)

const productColumns = `id, name, account, shop, price_json, description, caption, image_creatives_json, video_creatives_json, created_at, updated_at`

// ProductRepo implements repository.ProductRepository
type ProductRepo struct {
	db *DB
}

func NewProductRepo(db *DB) repository.ProductRepository {
	return &ProductRepo{db: db}
}

// productJSON holds the encoded JSON columns of a product row
type productJSON struct {
	price, images, videos string
}

func encodeProduct(p *domain.Product) (productJSON, error) {
	var out productJSON
	price, err := json.Marshal(p.Price)
	if err != nil {
		return out, fmt.Errorf("failed to encode product price: %w", err)
	}
	out.price = string(price)
	if out.images, err = encodeJSON(p.ImageCreatives); err != nil {
		return out, fmt.Errorf("failed to encode product image creatives: %w", err)
	}
	if out.videos, err = encodeJSON(p.VideoCreatives); err != nil {
		return out, fmt.Errorf("failed to encode product video creatives: %w", err)
	}
	return out, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	stamp(&p.Meta)
	cols, err := encodeProduct(p)
	if err != nil {
		return err
	}

	query := `INSERT INTO products (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Account, p.Shop, cols.price, p.Description, p.Caption, cols.images, cols.videos,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	touch(&p.Meta)
	cols, err := encodeProduct(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE products SET name = ?, account = ?, shop = ?, price_json = ?, description = ?, caption = ?,
			image_creatives_json = ?, video_creatives_json = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.ExecContext(ctx, query,
		p.Name, p.Account, p.Shop, cols.price, p.Description, p.Caption, cols.images, cols.videos,
		p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	var cols productJSON
	err := row.Scan(&p.ID, &p.Name, &p.Account, &p.Shop, &cols.price, &p.Description, &p.Caption,
		&cols.images, &cols.videos, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cols.price), &p.Price); err != nil {
		return nil, fmt.Errorf("failed to decode product price: %w", err)
	}
	if p.ImageCreatives, err = decodeIDs(cols.images); err != nil {
		return nil, fmt.Errorf("failed to decode product image creatives: %w", err)
	}
	if p.VideoCreatives, err = decodeIDs(cols.videos); err != nil {
		return nil, fmt.Errorf("failed to decode product video creatives: %w", err)
	}
	return p, nil
}
