package listing

import (
	"context"
	"fmt"
	"strings"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
	"campaignhub/internal/session"
)

// gateway is the write half shared by every entity repository
type gateway[T any] interface {
	Create(ctx context.Context, v *T) error
	Update(ctx context.Context, v *T) error
}

// Deleter removes an entity by identifier
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// save creates when id is empty and updates otherwise
func save[T any](ctx context.Context, g gateway[T], v *T, id, entity string) error {
	if id == "" {
		if err := g.Create(ctx, v); err != nil {
			return fmt.Errorf("failed to create %s: %w", entity, err)
		}
		return nil
	}
	if err := g.Update(ctx, v); err != nil {
		return fmt.Errorf("failed to update %s: %w", entity, err)
	}
	return nil
}

// SaveUser creates or updates a user. A non-empty password is hashed; new
// users must have one.
func SaveUser(ctx context.Context, repo repository.UserRepository, u *domain.User, password string) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if u.ID == "" && password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.Role != domain.RoleAdmin && u.Role != domain.RoleUser {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, u.Role)
	}
	if u.Shops == nil {
		u.Shops = []string{}
	}
	if password != "" {
		hash, err := session.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	existing, err := repo.GetByEmail(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil && existing.ID != u.ID {
		return domain.ErrEmailTaken
	}
	return save[domain.User](ctx, repo, u, u.ID, "user")
}

// SaveShop creates or updates a shop
func SaveShop(ctx context.Context, repo repository.ShopRepository, s *domain.Shop) error {
	if err := requireName(s.Name); err != nil {
		return err
	}
	if s.Accounts == nil {
		s.Accounts = []string{}
	}
	return save[domain.Shop](ctx, repo, s, s.ID, "shop")
}

// SaveAccount creates or updates an account. Parents are not checked for
// cycles.
func SaveAccount(ctx context.Context, repo repository.AccountRepository, a *domain.Account) error {
	if err := requireName(a.Name); err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = domain.AccountStatusUnauthorized
	}
	if a.Status != domain.AccountStatusAuthorized && a.Status != domain.AccountStatusUnauthorized {
		return fmt.Errorf("%w: unknown account status %q", domain.ErrValidation, a.Status)
	}
	if a.Shops == nil {
		a.Shops = []string{}
	}
	if a.Users == nil {
		a.Users = []string{}
	}
	return save[domain.Account](ctx, repo, a, a.ID, "account")
}

// SaveCreative creates or updates a creative
func SaveCreative(ctx context.Context, repo repository.CreativeRepository, c *domain.Creative) error {
	if err := requireName(c.Name); err != nil {
		return err
	}
	return save[domain.Creative](ctx, repo, c, c.ID, "creative")
}

// SaveProduct creates or updates a product. The price is coerced the same
// way on both paths: numeric text becomes a number, anything else stays text.
func SaveProduct(ctx context.Context, repo repository.ProductRepository, p *domain.Product) error {
	if err := requireName(p.Name); err != nil {
		return err
	}
	if !p.Price.IsNumeric() {
		p.Price = domain.ParsePrice(p.Price.Text)
	}
	if p.ImageCreatives == nil {
		p.ImageCreatives = []string{}
	}
	if p.VideoCreatives == nil {
		p.VideoCreatives = []string{}
	}
	return save[domain.Product](ctx, repo, p, p.ID, "product")
}

// Delete removes an entity once the user has confirmed. Without
// confirmation the gateway is never called.
func Delete(ctx context.Context, repo Deleter, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return nil
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return nil
}
