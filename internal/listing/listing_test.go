package listing

import (
	"context"
	"errors"
	"testing"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
	"campaignhub/internal/repository/sqlite"
	"campaignhub/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := sqlite.New(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return sqlite.NewRepositories(db)
}

// brokenShops fails every read
type brokenShops struct {
	repository.ShopRepository
}

func (brokenShops) List(context.Context) ([]domain.Shop, error) {
	return nil, errors.New("connection reset")
}

// countingDeleter records delete calls
type countingDeleter struct {
	calls int
}

func (d *countingDeleter) Delete(context.Context, string) error {
	d.calls++
	return nil
}

type fixture struct {
	repos  *repository.Repositories
	shop1  domain.Shop
	shop2  domain.Shop
	acct1  domain.Account
	acct2  domain.Account
	scoped *domain.User
}

func seed(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	repos := newTestRepos(t)
	f := fixture{repos: repos}

	f.shop1 = domain.Shop{Name: "North"}
	f.shop2 = domain.Shop{Name: "South"}
	require.NoError(t, SaveShop(ctx, repos.Shops, &f.shop1))
	require.NoError(t, SaveShop(ctx, repos.Shops, &f.shop2))

	f.acct1 = domain.Account{Name: "north-official", Shops: []string{f.shop1.ID}, Status: domain.AccountStatusAuthorized}
	f.acct2 = domain.Account{Name: "south-marketing", Shops: []string{f.shop2.ID}}
	require.NoError(t, SaveAccount(ctx, repos.Accounts, &f.acct1))
	require.NoError(t, SaveAccount(ctx, repos.Accounts, &f.acct2))

	for _, c := range []domain.Creative{
		{Name: "clip-a", Shop: f.shop1.ID, Type: domain.CreativeTypeVideo},
		{Name: "clip-b", Shop: f.shop2.ID, Type: domain.CreativeTypeVideo},
	} {
		require.NoError(t, SaveCreative(ctx, repos.Creatives, &c))
	}

	f.scoped = &domain.User{Email: "Scoped@Example.com", Name: "Scoped", Shops: []string{f.shop1.ID}}
	require.NoError(t, SaveUser(ctx, repos.Users, f.scoped, "secret1"))
	return f
}

func TestViewsApplyScope(t *testing.T) {
	ctx := context.Background()
	f := seed(t)
	loader := NewLoader(*f.repos, zap.NewNop())

	all := session.Scope{All: true}
	view := loader.Creatives(ctx, all)
	assert.Nil(t, view.Banner)
	assert.Len(t, view.Creatives, 2)
	assert.Len(t, view.Shops, 2)
	assert.Len(t, view.Accounts, 2)

	scoped := session.ScopeFor(f.scoped)
	view = loader.Creatives(ctx, scoped)
	require.Len(t, view.Creatives, 1)
	assert.Equal(t, "clip-a", view.Creatives[0].Name)
	require.Len(t, view.Accounts, 1)
	assert.Equal(t, f.acct1.ID, view.Accounts[0].ID)
	require.Len(t, view.Shops, 1)
	assert.Equal(t, "North", view.Shops[0].Name)

	none := session.ScopeFor(&domain.User{Meta: domain.Meta{ID: "nobody"}, Role: domain.RoleUser})
	empty := loader.Creatives(ctx, none)
	assert.NotNil(t, empty.Creatives)
	assert.Empty(t, empty.Creatives)
	assert.Empty(t, empty.Shops)
}

func TestUsersViewShowsSelf(t *testing.T) {
	f := seed(t)
	loader := NewLoader(*f.repos, zap.NewNop())

	view := loader.Users(context.Background(), session.ScopeFor(f.scoped))
	require.Len(t, view.Users, 1)
	assert.Equal(t, "scoped@example.com", view.Users[0].Email)
}

func TestPartialFailureKeepsLoadedLists(t *testing.T) {
	f := seed(t)
	repos := *f.repos
	repos.Shops = brokenShops{repos.Shops}
	loader := NewLoader(repos, zap.NewNop())

	view := loader.Accounts(context.Background(), session.Scope{All: true})
	require.NotNil(t, view.Banner)
	assert.Equal(t, "error", view.Banner.Type)
	assert.Equal(t, "Failed to load accounts", view.Banner.Message)
	assert.Len(t, view.Accounts, 2)
	assert.NotNil(t, view.Shops)
	assert.Empty(t, view.Shops)

	_, err := loader.WizardInputs(context.Background(), session.Scope{All: true})
	assert.Error(t, err)
}

func TestWizardInputs(t *testing.T) {
	f := seed(t)
	loader := NewLoader(*f.repos, zap.NewNop())

	in, err := loader.WizardInputs(context.Background(), session.ScopeFor(f.scoped))
	require.NoError(t, err)
	assert.Len(t, in.Creatives, 1)
	assert.Len(t, in.Accounts, 1)
	assert.Len(t, in.Shops, 1)
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	shop := domain.Shop{Name: "Outlet"}
	require.NoError(t, SaveShop(ctx, repos.Shops, &shop))
	require.NotEmpty(t, shop.ID)
	id := shop.ID

	shop.Name = "Outlet Store"
	require.NoError(t, SaveShop(ctx, repos.Shops, &shop))
	assert.Equal(t, id, shop.ID)

	list, err := repos.Shops.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Outlet Store", list[0].Name)

	assert.ErrorIs(t, SaveShop(ctx, repos.Shops, &domain.Shop{Name: " "}), domain.ErrValidation)
}

func TestSaveProductCoercesPriceOnBothPaths(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	p := domain.Product{Name: "Mug", Price: domain.Price{Text: " 12.50 "}}
	require.NoError(t, SaveProduct(ctx, repos.Products, &p))
	require.True(t, p.Price.IsNumeric())
	assert.InDelta(t, 12.5, *p.Price.Amount, 0.0001)

	p.Price = domain.Price{Text: "call for price"}
	require.NoError(t, SaveProduct(ctx, repos.Products, &p))
	stored, err := repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Price.IsNumeric())
	assert.Equal(t, "call for price", stored.Price.Text)

	p.Price = domain.Price{Text: "7"}
	require.NoError(t, SaveProduct(ctx, repos.Products, &p))
	stored, err = repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Price.IsNumeric())

	for _, raw := range []string{"NaN", "Inf", "infinity"} {
		p.Price = domain.Price{Text: raw}
		require.NoError(t, SaveProduct(ctx, repos.Products, &p), raw)
		stored, err = repos.Products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, stored.Price.IsNumeric(), raw)
		assert.Equal(t, raw, stored.Price.Text)
	}

	fresh := domain.Product{Name: "Odd", Price: domain.Price{Text: "NaN"}}
	require.NoError(t, SaveProduct(ctx, repos.Products, &fresh))
	assert.Equal(t, "NaN", fresh.Price.Text)
}

func TestSaveUser(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	assert.ErrorIs(t, SaveUser(ctx, repos.Users, &domain.User{Email: "a@b.c"}, ""), domain.ErrValidation)

	u := &domain.User{Email: "a@b.c", Name: "A"}
	require.NoError(t, SaveUser(ctx, repos.Users, u, "pw1234"))
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, session.CheckPassword("pw1234", u.PasswordHash))

	err := SaveUser(ctx, repos.Users, &domain.User{Email: "A@B.C"}, "other1")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	u.Name = "Renamed"
	u.PasswordHash = ""
	require.NoError(t, SaveUser(ctx, repos.Users, u, ""))
	stored, err := repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.True(t, session.CheckPassword("pw1234", stored.PasswordHash), "hash kept when no new password")
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	d := &countingDeleter{}
	err := Delete(context.Background(), d, "x", false)
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
	assert.Equal(t, 0, d.calls)

	require.NoError(t, Delete(context.Background(), d, "x", true))
	assert.Equal(t, 1, d.calls)
}

