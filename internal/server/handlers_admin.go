package server

import (
	"context"
	"fmt"
	"net/http"

	"campaignhub/internal/domain"
	"campaignhub/internal/listing"
	"campaignhub/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Admin handlers

// resource wires one entity collection to the generic CRUD handlers
type resource[T any, P interface {
	*T
	Base() *domain.Meta
}] struct {
	name    string
	fetch   func(context.Context, string) (*T, error)
	save    func(context.Context, *T) error
	del     listing.Deleter
	visible func(session.Scope, *T) bool
}

func (s *Server) users() resource[domain.User, *domain.User] {
	return resource[domain.User, *domain.User]{
		name:  "user",
		fetch: s.repos.Users.GetByID,
		del:   s.repos.Users,
		visible: func(sc session.Scope, v *domain.User) bool {
			return len(sc.Users([]domain.User{*v})) == 1
		},
	}
}

func (s *Server) shops() resource[domain.Shop, *domain.Shop] {
	return resource[domain.Shop, *domain.Shop]{
		name:  "shop",
		fetch: s.repos.Shops.GetByID,
		save: func(ctx context.Context, v *domain.Shop) error {
			return listing.SaveShop(ctx, s.repos.Shops, v)
		},
		del: s.repos.Shops,
		visible: func(sc session.Scope, v *domain.Shop) bool {
			return sc.AllowsShop(v.ID)
		},
	}
}

func (s *Server) accounts() resource[domain.Account, *domain.Account] {
	return resource[domain.Account, *domain.Account]{
		name:  "account",
		fetch: s.repos.Accounts.GetByID,
		save: func(ctx context.Context, v *domain.Account) error {
			return listing.SaveAccount(ctx, s.repos.Accounts, v)
		},
		del: s.repos.Accounts,
		visible: func(sc session.Scope, v *domain.Account) bool {
			return len(sc.Accounts([]domain.Account{*v})) == 1
		},
	}
}

func (s *Server) creatives() resource[domain.Creative, *domain.Creative] {
	return resource[domain.Creative, *domain.Creative]{
		name:  "creative",
		fetch: s.repos.Creatives.GetByID,
		save: func(ctx context.Context, v *domain.Creative) error {
			return listing.SaveCreative(ctx, s.repos.Creatives, v)
		},
		del: s.repos.Creatives,
		visible: func(sc session.Scope, v *domain.Creative) bool {
			return sc.AllowsShop(v.Shop)
		},
	}
}

func (s *Server) products() resource[domain.Product, *domain.Product] {
	return resource[domain.Product, *domain.Product]{
		name:  "product",
		fetch: s.repos.Products.GetByID,
		save: func(ctx context.Context, v *domain.Product) error {
			return listing.SaveProduct(ctx, s.repos.Products, v)
		},
		del: s.repos.Products,
		visible: func(sc session.Scope, v *domain.Product) bool {
			return sc.AllowsShop(v.Shop)
		},
	}
}

// load fetches the entity named by the URL and hides it when it is out of
// the caller's scope
func (res resource[T, P]) load(r *http.Request) (*T, error) {
	id := chi.URLParam(r, "id")
	v, err := res.fetch(r.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", res.name, err)
	}
	if v == nil || !res.visible(getSession(r).Scope, v) {
		return nil, fmt.Errorf("%s %s: %w", res.name, id, domain.ErrNotFound)
	}
	return v, nil
}

func (res resource[T, P]) get(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := res.load(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, v)
	}
}

func (res resource[T, P]) create(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v T
		if err := decodeJSON(w, r, &v); err != nil {
			s.respondError(w, r, err)
			return
		}
		*P(&v).Base() = domain.Meta{}
		if !res.visible(getSession(r).Scope, &v) {
			s.respondError(w, r, fmt.Errorf("%w: %s is outside your shops", domain.ErrForbidden, res.name))
			return
		}
		if err := res.save(r.Context(), &v); err != nil {
			s.respondError(w, r, err)
			return
		}
		s.logger.Info("entity created", zap.String("entity", res.name), zap.String("id", P(&v).Base().ID))
		s.respondJSON(w, http.StatusCreated, &v)
	}
}

// update loads the stored entity, overlays the request body and saves it
func (res resource[T, P]) update(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		existing, err := res.load(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		meta := *P(existing).Base()
		if err := decodeJSON(w, r, existing); err != nil {
			s.respondError(w, r, err)
			return
		}
		*P(existing).Base() = meta
		if !res.visible(getSession(r).Scope, existing) {
			s.respondError(w, r, fmt.Errorf("%w: %s would leave your shops", domain.ErrForbidden, res.name))
			return
		}
		if err := res.save(r.Context(), existing); err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, existing)
	}
}

// remove deletes after confirmation; unconfirmed requests never reach the store
func (res resource[T, P]) remove(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !confirmed(r) {
			s.respondError(w, r, domain.ErrConfirmationRequired)
			return
		}
		v, err := res.load(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		id := P(v).Base().ID
		if err := listing.Delete(r.Context(), res.del, id, true); err != nil {
			s.respondError(w, r, err)
			return
		}
		s.logger.Info("entity deleted", zap.String("entity", res.name), zap.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// List views

func (s *Server) handleUsersList(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.views.Users(r.Context(), getSession(r).Scope))
}

func (s *Server) handleShopsList(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.views.Shops(r.Context(), getSession(r).Scope))
}

func (s *Server) handleAccountsList(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.views.Accounts(r.Context(), getSession(r).Scope))
}

func (s *Server) handleCreativesList(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.views.Creatives(r.Context(), getSession(r).Scope))
}

func (s *Server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.views.Products(r.Context(), getSession(r).Scope))
}

// User management

// userRequest carries the password next to the profile fields, since the
// stored hash is never serialized
type userRequest struct {
	domain.User
	Password string `json:"password"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	user := req.User
	user.Meta = domain.Meta{}
	if err := listing.SaveUser(r.Context(), s.repos.Users, &user, req.Password); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", user.Role))
	s.respondJSON(w, http.StatusCreated, &user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	existing, err := s.users().load(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	req := userRequest{User: *existing}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	user := req.User
	user.Meta = existing.Meta
	// an empty hash keeps the stored one
	user.PasswordHash = ""
	if err := listing.SaveUser(r.Context(), s.repos.Users, &user, req.Password); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, &user)
}
