// Package listing loads the scoped entity lists behind the admin views. Each
// view fetches its own collection and every collection it references at the
// same time, and reports a single banner when any of them fails.
package listing

import (
	"context"
	"fmt"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
	"campaignhub/internal/session"
	"campaignhub/internal/wizard"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Banner is the one-line notice shown above a view
type Banner struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorBanner builds an error notice
func ErrorBanner(message string) *Banner {
	return &Banner{Type: "error", Message: message}
}

// UsersView is the user management page
type UsersView struct {
	Users  []domain.User `json:"users"`
	Shops  []domain.Shop `json:"shops"`
	Banner *Banner       `json:"banner,omitempty"`
}

// AccountsView is the account management page
type AccountsView struct {
	Accounts []domain.Account `json:"accounts"`
	Shops    []domain.Shop    `json:"shops"`
	Users    []domain.User    `json:"users"`
	Banner   *Banner          `json:"banner,omitempty"`
}

// ShopsView is the shop management page
type ShopsView struct {
	Shops    []domain.Shop    `json:"shops"`
	Users    []domain.User    `json:"users"`
	Accounts []domain.Account `json:"accounts"`
	Banner   *Banner          `json:"banner,omitempty"`
}

// CreativesView is the creative library page
type CreativesView struct {
	Creatives []domain.Creative `json:"creatives"`
	Accounts  []domain.Account  `json:"accounts"`
	Shops     []domain.Shop     `json:"shops"`
	Banner    *Banner           `json:"banner,omitempty"`
}

// ProductsView is the product catalogue page
type ProductsView struct {
	Products  []domain.Product  `json:"products"`
	Accounts  []domain.Account  `json:"accounts"`
	Shops     []domain.Shop     `json:"shops"`
	Creatives []domain.Creative `json:"creatives"`
	Banner    *Banner           `json:"banner,omitempty"`
}

// CampaignsView is the dashboard campaign table
type CampaignsView struct {
	Campaigns []domain.Campaign `json:"campaigns"`
	Shops     []domain.Shop     `json:"shops"`
	Accounts  []domain.Account  `json:"accounts"`
	Users     []domain.User     `json:"users"`
	Banner    *Banner           `json:"banner,omitempty"`
}

// Loader fetches views from the entity store
type Loader struct {
	repos  repository.Repositories
	logger *zap.Logger
}

// NewLoader creates a loader over the given gateways
func NewLoader(repos repository.Repositories, logger *zap.Logger) *Loader {
	return &Loader{repos: repos, logger: logger}
}

// Users loads the users view
func (l *Loader) Users(ctx context.Context, scope session.Scope) UsersView {
	v := UsersView{Users: []domain.User{}, Shops: []domain.Shop{}}
	v.Banner = l.load(ctx, repository.CollectionUsers,
		fetch(&v.Users, l.repos.Users.List, scope.Users),
		fetch(&v.Shops, l.repos.Shops.List, scope.Shops),
	)
	return v
}

// Accounts loads the accounts view
func (l *Loader) Accounts(ctx context.Context, scope session.Scope) AccountsView {
	v := AccountsView{Accounts: []domain.Account{}, Shops: []domain.Shop{}, Users: []domain.User{}}
	v.Banner = l.load(ctx, repository.CollectionAccounts,
		fetch(&v.Accounts, l.repos.Accounts.List, scope.Accounts),
		fetch(&v.Shops, l.repos.Shops.List, scope.Shops),
		fetch(&v.Users, l.repos.Users.List, scope.Users),
	)
	return v
}

// Shops loads the shops view
func (l *Loader) Shops(ctx context.Context, scope session.Scope) ShopsView {
	v := ShopsView{Shops: []domain.Shop{}, Users: []domain.User{}, Accounts: []domain.Account{}}
	v.Banner = l.load(ctx, repository.CollectionShops,
		fetch(&v.Shops, l.repos.Shops.List, scope.Shops),
		fetch(&v.Users, l.repos.Users.List, scope.Users),
		fetch(&v.Accounts, l.repos.Accounts.List, scope.Accounts),
	)
	return v
}

// Creatives loads the creatives view
func (l *Loader) Creatives(ctx context.Context, scope session.Scope) CreativesView {
	v := CreativesView{Creatives: []domain.Creative{}, Accounts: []domain.Account{}, Shops: []domain.Shop{}}
	v.Banner = l.load(ctx, repository.CollectionCreatives,
		fetch(&v.Creatives, l.repos.Creatives.List, scope.Creatives),
		fetch(&v.Accounts, l.repos.Accounts.List, scope.Accounts),
		fetch(&v.Shops, l.repos.Shops.List, scope.Shops),
	)
	return v
}

// Products loads the products view
func (l *Loader) Products(ctx context.Context, scope session.Scope) ProductsView {
	v := ProductsView{
		Products:  []domain.Product{},
		Accounts:  []domain.Account{},
		Shops:     []domain.Shop{},
		Creatives: []domain.Creative{},
	}
	v.Banner = l.load(ctx, repository.CollectionProducts,
		fetch(&v.Products, l.repos.Products.List, scope.Products),
		fetch(&v.Accounts, l.repos.Accounts.List, scope.Accounts),
		fetch(&v.Shops, l.repos.Shops.List, scope.Shops),
		fetch(&v.Creatives, l.repos.Creatives.List, scope.Creatives),
	)
	return v
}

// Campaigns loads the campaign table
func (l *Loader) Campaigns(ctx context.Context, scope session.Scope) CampaignsView {
	v := CampaignsView{
		Campaigns: []domain.Campaign{},
		Shops:     []domain.Shop{},
		Accounts:  []domain.Account{},
		Users:     []domain.User{},
	}
	v.Banner = l.load(ctx, repository.CollectionCampaigns,
		fetch(&v.Campaigns, l.repos.Campaigns.List, scope.Campaigns),
		fetch(&v.Shops, l.repos.Shops.List, scope.Shops),
		fetch(&v.Accounts, l.repos.Accounts.List, scope.Accounts),
		fetch(&v.Users, l.repos.Users.List, scope.Users),
	)
	return v
}

// load runs every fetch concurrently. Fetches are not cancelled when a
// sibling fails so whatever loaded is still shown under the banner.
func (l *Loader) load(ctx context.Context, view string, fetches ...func(context.Context) error) *Banner {
	var g errgroup.Group
	for _, f := range fetches {
		g.Go(func() error { return f(ctx) })
	}
	if err := g.Wait(); err != nil {
		l.logger.Error("failed to load view", zap.String("view", view), zap.Error(err))
		return ErrorBanner("Failed to load " + view)
	}
	return nil
}

// fetch lists one collection into dst after scope filtering. dst is only
// written on success and each dst belongs to exactly one goroutine.
func fetch[T any](dst *[]T, list func(context.Context) ([]T, error), keep func([]T) []T) func(context.Context) error {
	return func(ctx context.Context) error {
		items, err := list(ctx)
		if err != nil {
			return err
		}
		if items = keep(items); items != nil {
			*dst = items
		}
		return nil
	}
}

// WizardInputs fetches the scoped creatives, accounts and shops the wizard
// filters. Unlike the views it fails as a whole; the wizard never runs on
// partial data.
func (l *Loader) WizardInputs(ctx context.Context, scope session.Scope) (wizard.Inputs, error) {
	in := wizard.Inputs{Creatives: []domain.Creative{}, Accounts: []domain.Account{}, Shops: []domain.Shop{}}
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range []func(context.Context) error{
		fetch(&in.Creatives, l.repos.Creatives.List, scope.Creatives),
		fetch(&in.Accounts, l.repos.Accounts.List, scope.Accounts),
		fetch(&in.Shops, l.repos.Shops.List, scope.Shops),
	} {
		g.Go(func() error { return f(gctx) })
	}
	if err := g.Wait(); err != nil {
		return wizard.Inputs{}, fmt.Errorf("failed to load wizard inputs: %w", err)
	}
	return in, nil
}
