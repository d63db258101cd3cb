package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
)

const userColumns = `id, email, password_hash, name, role, shops_json, is_admin, is_master_admin, created_at, updated_at`

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo
func NewUserRepo(db *DB) repository.UserRepository {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	stamp(&user.Meta)
	shops, err := encodeJSON(user.Shops)
	if err != nil {
		return fmt.Errorf("failed to encode user shops: %w", err)
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, shops,
		user.IsAdmin, user.IsMasterAdmin, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// Update rewrites the profile. An empty PasswordHash keeps the stored one.
func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	touch(&user.Meta)
	shops, err := encodeJSON(user.Shops)
	if err != nil {
		return fmt.Errorf("failed to encode user shops: %w", err)
	}

	query := `
		UPDATE users SET email = ?, name = ?, role = ?, shops_json = ?, is_admin = ?, is_master_admin = ?,
			password_hash = COALESCE(NULLIF(?, ''), password_hash), updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.ExecContext(ctx, query,
		user.Email, user.Name, user.Role, shops, user.IsAdmin, user.IsMasterAdmin,
		user.PasswordHash, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var shops string
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &shops,
		&user.IsAdmin, &user.IsMasterAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if user.Shops, err = decodeIDs(shops); err != nil {
		return nil, fmt.Errorf("failed to decode user shops: %w", err)
	}
	return user, nil
}
