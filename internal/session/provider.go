// Package session resolves the current identity, its profile and its shop scope
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the explicit context handed to views and flows
type Session struct {
	Claims  *Claims      `json:"-"`
	Profile *domain.User `json:"profile"`
	Scope   Scope        `json:"scope"`
}

// Options configures token issuing
type Options struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Provider issues and validates sessions for the dashboard
type Provider struct {
	users    repository.UserRepository
	opts     Options
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewProvider creates a Provider backed by the user gateway
func NewProvider(users repository.UserRepository, opts Options, logger *zap.Logger) *Provider {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Provider{
		users:    users,
		opts:     opts,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
		revoked:  make(map[string]time.Time),
	}
}

// TTL is the lifetime of issued tokens
func (p *Provider) TTL() time.Duration {
	return p.opts.TTL
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Name     string `validate:"required"`
}

// Login verifies credentials and opens a session
func (p *Provider) Login(ctx context.Context, email, password string) (*Session, string, error) {
	email = normalizeEmail(email)
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, claims, err := p.Issue(user)
	if err != nil {
		return nil, "", err
	}
	p.logger.Info("user logged in", zap.String("user_id", user.ID))
	return newSession(claims, user), token, nil
}

// Signup registers a user with role user and no shops, then opens a session
func (p *Provider) Signup(ctx context.Context, email, password, name string) (*Session, string, error) {
	in := credentials{Email: normalizeEmail(email), Password: password, Name: strings.TrimSpace(name)}
	if err := p.validate.Struct(in); err != nil {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrValidation, describe(err))
	}

	existing, err := p.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, "", domain.ErrEmailTaken
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        in.Email,
		Name:         in.Name,
		Role:         domain.RoleUser,
		Shops:        []string{},
		PasswordHash: hash,
	}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create profile: %w", err)
	}

	token, claims, err := p.Issue(user)
	if err != nil {
		return nil, "", err
	}
	p.logger.Info("user signed up", zap.String("user_id", user.ID))
	return newSession(claims, user), token, nil
}

// Logout revokes the token until it would have expired anyway
func (p *Provider) Logout(claims *Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	expires := p.now().Add(p.opts.TTL)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for id, exp := range p.revoked {
		if exp.Before(now) {
			delete(p.revoked, id)
		}
	}
	p.revoked[claims.ID] = expires
}

// RefreshProfile reloads the profile so role and shop changes apply without
// a new login
func (p *Provider) RefreshProfile(ctx context.Context, claims *Claims) (*Session, error) {
	user, err := p.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("profile %s: %w", claims.UserID, domain.ErrNotFound)
	}
	return newSession(claims, user), nil
}

// Issue signs a token for the user
func (p *Provider) Issue(user *domain.User) (string, *Claims, error) {
	now := p.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.opts.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    p.opts.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(p.opts.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse validates a token and rejects revoked ones
func (p *Provider) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(p.opts.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	p.mu.Lock()
	_, revoked := p.revoked[claims.ID]
	p.mu.Unlock()
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func newSession(claims *Claims, user *domain.User) *Session {
	return &Session{Claims: claims, Profile: user, Scope: ScopeFor(user)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// describe turns validator output into a short field list
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
	}
	return strings.Join(fields, ", ")
}
