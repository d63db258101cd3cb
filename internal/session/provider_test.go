package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campaignhub/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memUsers is an in-memory user gateway
type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]domain.User{}}
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memUsers) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func newTestProvider(t *testing.T) (*Provider, *memUsers) {
	t.Helper()
	users := newMemUsers()
	p := NewProvider(users, Options{Secret: "test-secret", TTL: time.Hour, Issuer: "test"}, zap.NewNop())
	return p, users
}

func TestSignupProvisionsDefaultProfile(t *testing.T) {
	p, users := newTestProvider(t)
	ctx := context.Background()

	sess, token, err := p.Signup(ctx, " New@Example.com ", "hunter22", "New User")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, "new@example.com", sess.Profile.Email)
	assert.Equal(t, domain.RoleUser, sess.Profile.Role)
	assert.Empty(t, sess.Profile.Shops)
	assert.False(t, sess.Scope.All)
	assert.Empty(t, sess.Scope.ShopIDs)

	stored, err := users.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
}

func TestSignupRejectsDuplicatesAndBadInput(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, _, err := p.Signup(ctx, "dup@example.com", "hunter22", "Dup")
	require.NoError(t, err)

	_, _, err = p.Signup(ctx, "dup@example.com", "hunter22", "Dup")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, _, err = p.Signup(ctx, "not-an-email", "hunter22", "X")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = p.Signup(ctx, "short@example.com", "123", "X")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoginChecksPassword(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, _, err := p.Signup(ctx, "ana@example.com", "correct-horse", "Ana")
	require.NoError(t, err)

	_, _, err = p.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = p.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	sess, token, err := p.Login(ctx, "ANA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "Ana", sess.Profile.Name)

	claims, err := p.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, sess.Profile.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLogoutRevokesToken(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, token, err := p.Signup(ctx, "bye@example.com", "hunter22", "Bye")
	require.NoError(t, err)

	claims, err := p.Parse(token)
	require.NoError(t, err)

	p.Logout(claims)
	_, err = p.Parse(token)
	assert.True(t, errors.Is(err, ErrTokenRevoked))
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	p, _ := newTestProvider(t)
	other := NewProvider(newMemUsers(), Options{Secret: "other", TTL: time.Hour}, zap.NewNop())

	token, _, err := other.Issue(&domain.User{Meta: domain.Meta{ID: "u1"}, Role: domain.RoleUser})
	require.NoError(t, err)
	_, err = p.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, _, err = p.Issue(&domain.User{Meta: domain.Meta{ID: "u1"}, Role: domain.RoleUser})
	require.NoError(t, err)
	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = p.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshProfilePicksUpScopeChanges(t *testing.T) {
	p, users := newTestProvider(t)
	ctx := context.Background()

	sess, _, err := p.Signup(ctx, "grow@example.com", "hunter22", "Grow")
	require.NoError(t, err)
	assert.Empty(t, sess.Scope.ShopIDs)

	u, err := users.GetByID(ctx, sess.Profile.ID)
	require.NoError(t, err)
	u.Shops = []string{"s1", "s2"}
	require.NoError(t, users.Update(ctx, u))

	refreshed, err := p.RefreshProfile(ctx, sess.Claims)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, refreshed.Scope.ShopIDs)

	require.NoError(t, users.Delete(ctx, u.ID))
	_, err = p.RefreshProfile(ctx, sess.Claims)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
