// Package repository defines interfaces for data persistence
package repository

import (
	"context"

	"campaignhub/internal/domain"
)

// Collection names shared by every backend
const (
	CollectionUsers     = "users"
	CollectionAccounts  = "accounts"
	CollectionShops     = "shops"
	CollectionCreatives = "creatives"
	CollectionProducts  = "products"
	CollectionCampaigns = "campaigns"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}

// ShopRepository defines the interface for shop data operations
type ShopRepository interface {
	Create(ctx context.Context, shop *domain.Shop) error
	GetByID(ctx context.Context, id string) (*domain.Shop, error)
	Update(ctx context.Context, shop *domain.Shop) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Shop, error)
}

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Account, error)
}

// CreativeRepository defines the interface for creative data operations
type CreativeRepository interface {
	Create(ctx context.Context, creative *domain.Creative) error
	GetByID(ctx context.Context, id string) (*domain.Creative, error)
	Update(ctx context.Context, creative *domain.Creative) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Creative, error)
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Product, error)
}

// CampaignRepository defines the interface for campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	Update(ctx context.Context, campaign *domain.Campaign) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Campaign, error)
}

// Repositories bundles all repository interfaces
type Repositories struct {
	Users     UserRepository
	Shops     ShopRepository
	Accounts  AccountRepository
	Creatives CreativeRepository
	Products  ProductRepository
	Campaigns CampaignRepository
}
