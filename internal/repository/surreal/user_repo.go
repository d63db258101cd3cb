package surreal

import (
	"context"
	"fmt"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"

	"github.com/surrealdb/surrealdb.go"
)

const passwordHashField = "passwordHash"

// UserRepo implements repository.UserRepository
type UserRepo struct {
	*collection[domain.User, *domain.User]
}

// NewUserRepo creates a new UserRepo
func NewUserRepo(s *Store) repository.UserRepository {
	return newUserRepo(s.db)
}

func newUserRepo(db *surrealdb.DB) *UserRepo {
	c := newCollection[domain.User](db, repository.CollectionUsers)
	c.encodeExtra = encodePasswordHash
	c.decodeExtra = decodePasswordHash
	return &UserRepo{collection: c}
}

// encodePasswordHash stores the hash that JSON encoding leaves out
func encodePasswordHash(u *domain.User, doc map[string]any) {
	if u.PasswordHash != "" {
		doc[passwordHashField] = u.PasswordHash
	}
}

func decodePasswordHash(doc map[string]any, u *domain.User) {
	if hash, ok := doc[passwordHashField].(string); ok {
		u.PasswordHash = hash
	}
}

// Update keeps the stored password hash when the caller leaves it empty
func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	if user.PasswordHash == "" {
		current, err := r.GetByID(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if current != nil {
			user.PasswordHash = current.PasswordHash
		}
	}
	return r.collection.Update(ctx, user)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.query(ctx, `SELECT * FROM users WHERE email = $email LIMIT 1`, map[string]any{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	type countRow struct {
		Count int `json:"count"`
	}
	res, err := surrealdb.Query[[]countRow](ctx, r.db, `SELECT count() FROM users GROUP ALL`, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	if res == nil || len(*res) == 0 || len((*res)[0].Result) == 0 {
		return 0, nil
	}
	return (*res)[0].Result[0].Count, nil
}
