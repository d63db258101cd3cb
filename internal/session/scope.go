package session

import (
	"slices"

	"campaignhub/internal/domain"
)

// Scope is the set of shops an identity may act on. It is the one place
// where shop visibility is decided; list views and the wizard filter through
// it instead of checking roles themselves.
type Scope struct {
	All     bool     `json:"all"`
	ShopIDs []string `json:"shopIds"`
	// UserID lets the creator keep seeing drafts that have no shop yet
	UserID string `json:"userId,omitempty"`
}

// ScopeFor resolves the scope of a profile. Admin role, admin flag and
// master-admin flag all grant every shop. Everyone else gets their own shop
// list, which may be empty.
func ScopeFor(u *domain.User) Scope {
	if u == nil {
		return Scope{}
	}
	if u.HasAdminRights() {
		return Scope{All: true, UserID: u.ID}
	}
	return Scope{ShopIDs: slices.Clone(u.Shops), UserID: u.ID}
}

// AllowsShop reports whether the shop is visible
func (s Scope) AllowsShop(id string) bool {
	if s.All {
		return true
	}
	return id != "" && slices.Contains(s.ShopIDs, id)
}

// allowsAny reports whether any of the shops is visible
func (s Scope) allowsAny(ids []string) bool {
	if s.All {
		return true
	}
	for _, id := range ids {
		if s.AllowsShop(id) {
			return true
		}
	}
	return false
}

// Default returns the shop a new draft should be attached to
func (s Scope) Default() string {
	if len(s.ShopIDs) > 0 {
		return s.ShopIDs[0]
	}
	return ""
}

// Narrow returns a copy of the scope with shop adopted as the active shop.
// A scope that cannot see the shop is returned unchanged.
func (s Scope) Narrow(shop string) Scope {
	if shop == "" || !s.AllowsShop(shop) {
		return s
	}
	out := Scope{All: s.All, UserID: s.UserID, ShopIDs: []string{shop}}
	for _, id := range s.ShopIDs {
		if id != shop {
			out.ShopIDs = append(out.ShopIDs, id)
		}
	}
	return out
}

// Shops filters shops to the visible ones
func (s Scope) Shops(in []domain.Shop) []domain.Shop {
	return filter(s, in, func(v domain.Shop) bool { return s.AllowsShop(v.ID) })
}

// Accounts keeps accounts attached to at least one visible shop
func (s Scope) Accounts(in []domain.Account) []domain.Account {
	return filter(s, in, func(v domain.Account) bool { return s.allowsAny(v.Shops) })
}

// Users keeps users sharing at least one visible shop
func (s Scope) Users(in []domain.User) []domain.User {
	return filter(s, in, func(v domain.User) bool { return v.ID == s.UserID || s.allowsAny(v.Shops) })
}

// Creatives keeps creatives owned by a visible shop
func (s Scope) Creatives(in []domain.Creative) []domain.Creative {
	return filter(s, in, func(v domain.Creative) bool { return s.AllowsShop(v.Shop) })
}

// Products keeps products owned by a visible shop
func (s Scope) Products(in []domain.Product) []domain.Product {
	return filter(s, in, func(v domain.Product) bool { return s.AllowsShop(v.Shop) })
}

// Campaigns keeps campaigns of a visible shop plus the caller's own drafts
func (s Scope) Campaigns(in []domain.Campaign) []domain.Campaign {
	return filter(s, in, func(v domain.Campaign) bool {
		return s.AllowsShop(v.Shop) || (v.Shop == "" && v.CreatedBy != "" && v.CreatedBy == s.UserID)
	})
}

// AllowsCampaign applies the campaign rule to a single record
func (s Scope) AllowsCampaign(c *domain.Campaign) bool {
	return len(s.Campaigns([]domain.Campaign{*c})) == 1
}

func filter[T any](s Scope, in []T, keep func(T) bool) []T {
	if s.All {
		return in
	}
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
