package session

import (
	"context"
	"fmt"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
)

// EnsureAdmin creates a master admin when the user table is empty. It
// reports whether a user was created.
func EnsureAdmin(ctx context.Context, users repository.UserRepository, email, password, name string) (bool, error) {
	count, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if _, err := CreateAdmin(ctx, users, email, password, name); err != nil {
		return false, err
	}
	return true, nil
}

// CreateAdmin provisions an admin account with every shop in scope
func CreateAdmin(ctx context.Context, users repository.UserRepository, email, password, name string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < 6 {
		return nil, fmt.Errorf("%w: admin needs an email and a password of at least 6 characters", domain.ErrValidation)
	}
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if name == "" {
		name = "Administrator"
	}
	admin := &domain.User{
		Email:         email,
		Name:          name,
		Role:          domain.RoleAdmin,
		Shops:         []string{},
		IsAdmin:       true,
		IsMasterAdmin: true,
		PasswordHash:  hash,
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}
