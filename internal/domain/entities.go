// Package domain defines core business entities
package domain

import (
	"time"
)

// Meta holds the identity and timestamps shared by every stored document
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Base exposes the embedded Meta so stores can handle any entity generically
func (m *Meta) Base() *Meta {
	return m
}

// User represents a dashboard user
type User struct {
	Meta
	Email         string   `json:"email"`
	PasswordHash  string   `json:"-"`
	Name          string   `json:"name"`
	Role          string   `json:"role"` // admin, user
	Shops         []string `json:"shops"`
	IsAdmin       bool     `json:"isAdmin"`
	IsMasterAdmin bool     `json:"isMasterAdmin"`
}

// Shop groups accounts under an owning user
type Shop struct {
	Meta
	Name     string   `json:"name"`
	Owner    string   `json:"owner,omitempty"`
	Accounts []string `json:"accounts"`
}

// Account is an advertising account attached to one or more shops
type Account struct {
	Meta
	Name   string   `json:"name"`
	Parent string   `json:"parent,omitempty"`
	Shops  []string `json:"shops"`
	Status string   `json:"status"` // Unauthorized, Authorized
	Type   string   `json:"type"`   // Official Account, Marketing Account
	Users  []string `json:"users"`
}

// Creative is a piece of ad media (video or image)
type Creative struct {
	Meta
	Name        string `json:"name"`
	Account     string `json:"account,omitempty"`
	Shop        string `json:"shop,omitempty"`
	Type        string `json:"type"`    // Video, Image
	SubType     string `json:"subType"` // TikTok post, Authorized post, ...
	Video       string `json:"video,omitempty"`
	Caption     string `json:"caption,omitempty"`
	SourceLabel string `json:"sourceLabel,omitempty"`
	Authorized  bool   `json:"authorized"`
}

// Product is an item promoted by campaigns
type Product struct {
	Meta
	Name           string   `json:"name"`
	Account        string   `json:"account,omitempty"`
	Shop           string   `json:"shop,omitempty"`
	Price          Price    `json:"price"`
	Description    string   `json:"description,omitempty"`
	Caption        string   `json:"caption,omitempty"`
	ImageCreatives []string `json:"imageCreatives"`
	VideoCreatives []string `json:"videoCreatives"`
}

// CampaignMetrics are reporting placeholders written by external tooling.
// Nothing in the service derives them.
type CampaignMetrics struct {
	Cost         float64 `json:"cost,omitempty"`
	ROI          float64 `json:"roi,omitempty"`
	GrossRevenue float64 `json:"grossRevenue,omitempty"`
	Orders       int     `json:"orders,omitempty"`
	CostPerOrder float64 `json:"costPerOrder,omitempty"`
	Impressions  int     `json:"impressions,omitempty"`
	Clicks       int     `json:"clicks,omitempty"`
}

// Campaign represents a marketing campaign
type Campaign struct {
	Meta
	Name              string          `json:"name"`
	Type              string          `json:"type"` // products, LIVE
	Shop              string          `json:"shop,omitempty"`
	Account           string          `json:"account,omitempty"`
	CreatedBy         string          `json:"createdBy,omitempty"`
	Budget            string          `json:"budget,omitempty"`
	StartDate         string          `json:"startDate,omitempty"`
	EndDate           string          `json:"endDate,omitempty"`
	TargetAudience    string          `json:"targetAudience,omitempty"`
	Description       string          `json:"description,omitempty"`
	Enabled           bool            `json:"enabled"`
	Status            string          `json:"status,omitempty"` // Active, Inactive
	CreativeMode      string          `json:"creativeMode,omitempty"`
	SelectedAccounts  []string        `json:"selectedAccounts"`
	SelectedCreatives []string        `json:"selectedCreatives"`
	ExcludedCreatives []string        `json:"excludedCreatives"`
	Metrics           CampaignMetrics `json:"metrics"`
}

// Constants
const (
	// User roles
	RoleAdmin = "admin"
	RoleUser  = "user"

	// Account statuses
	AccountStatusUnauthorized = "Unauthorized"
	AccountStatusAuthorized   = "Authorized"

	// Account types
	AccountTypeOfficial  = "Official Account"
	AccountTypeMarketing = "Marketing Account"

	// Creative media types
	CreativeTypeVideo = "Video"
	CreativeTypeImage = "Image"

	// Creative sources
	CreativeSourceTikTok     = "TikTok post"
	CreativeSourceAuthorized = "Authorized post"
	CreativeSourceAffiliate  = "Affiliate post"
	CreativeSourceCustom     = "Custom post"
	CreativeSourceAIGC       = "AIGC images"

	// Campaign types
	CampaignTypeProducts = "products"
	CampaignTypeLive     = "LIVE"

	// Campaign statuses
	CampaignStatusActive   = "Active"
	CampaignStatusInactive = "Inactive"

	// Creative sourcing modes
	CreativeModeAutoselect = "autoselect"
	CreativeModeManual     = "manual"
)

// ValidCampaignType reports whether t is one of the campaign types
func ValidCampaignType(t string) bool {
	return t == CampaignTypeProducts || t == CampaignTypeLive
}

// HasAdminRights reports whether the user sees every shop
func (u *User) HasAdminRights() bool {
	return u.Role == RoleAdmin || u.IsAdmin || u.IsMasterAdmin
}
