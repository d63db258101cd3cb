package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
)

const accountColumns = `id, name, parent, shops_json, status, type, users_json, created_at, updated_at`

// AccountRepo implements repository.AccountRepository
type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) repository.AccountRepository {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Create(ctx context.Context, account *domain.Account) error {
	stamp(&account.Meta)
	shops, users, err := encodeAccountRefs(account)
	if err != nil {
		return err
	}

	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Parent, shops, account.Status, account.Type, users,
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *AccountRepo) Update(ctx context.Context, account *domain.Account) error {
	touch(&account.Meta)
	shops, users, err := encodeAccountRefs(account)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts SET name = ?, parent = ?, shops_json = ?, status = ?, type = ?, users_json = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.ExecContext(ctx, query,
		account.Name, account.Parent, shops, account.Status, account.Type, users, account.UpdatedAt, account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func encodeAccountRefs(account *domain.Account) (string, string, error) {
	shops, err := encodeJSON(account.Shops)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode account shops: %w", err)
	}
	users, err := encodeJSON(account.Users)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode account users: %w", err)
	}
	return shops, users, nil
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	a := &domain.Account{}
	var shops, users string
	err := row.Scan(&a.ID, &a.Name, &a.Parent, &shops, &a.Status, &a.Type, &users, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if a.Shops, err = decodeIDs(shops); err != nil {
		return nil, fmt.Errorf("failed to decode account shops: %w", err)
	}
	if a.Users, err = decodeIDs(users); err != nil {
		return nil, fmt.Errorf("failed to decode account users: %w", err)
	}
	return a, nil
}
