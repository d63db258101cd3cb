// Package wizard implements the four-step creative selection flow of a
// campaign: sourcing mode, source accounts with exclusions, optimization
// switches and tag-style review. It works only on data handed to it and
// never performs I/O.
package wizard

import (
	"slices"
	"strings"

	"campaignhub/internal/domain"
)

// Mode selects how creatives are sourced
type Mode string

const (
	ModeAutoselect Mode = domain.CreativeModeAutoselect
	ModeManual     Mode = domain.CreativeModeManual
)

// Tab is the active review tab of step four
type Tab string

const (
	TabTikTokPosts Tab = "tiktok-posts"
	TabAffiliates  Tab = "affiliates"
)

// Wizard steps
const (
	StepMode = iota + 1
	StepSources
	StepOptimize
	StepReview
)

// ManualLimit caps the number of creatives a manual campaign may carry
const ManualLimit = 400

// affiliateType is the media type some imports use instead of the sub-type
const affiliateType = "Affiliate"

// DefaultOptimizations are the switches offered in step three
var DefaultOptimizations = []string{"smartCaption", "autoCrop", "musicMatch"}

// State is everything the user has chosen so far. It round-trips through
// the client between requests.
type State struct {
	Mode              Mode              `json:"mode"`
	Step              int               `json:"step"`
	SourceSearch      string            `json:"sourceSearch"`
	AccountSearch     string            `json:"accountSearch"`
	ReviewSearch      string            `json:"reviewSearch"`
	SelectedAccounts  []string          `json:"selectedAccounts"`
	ExcludedCreatives []string          `json:"excludedCreatives"`
	SelectedTags      []domain.Creative `json:"selectedTags"`
	ActiveTab         Tab               `json:"activeTab"`
	FailedVideos      []string          `json:"failedVideos"`
	Optimizations     map[string]bool   `json:"optimizations"`
}

// NewState returns the state of a fresh wizard
func NewState() State {
	opts := make(map[string]bool, len(DefaultOptimizations))
	for _, name := range DefaultOptimizations {
		opts[name] = false
	}
	return State{
		Mode:              ModeAutoselect,
		Step:              StepMode,
		SelectedAccounts:  []string{},
		ExcludedCreatives: []string{},
		SelectedTags:      []domain.Creative{},
		ActiveTab:         TabTikTokPosts,
		FailedVideos:      []string{},
		Optimizations:     opts,
	}
}

// Inputs are the scoped lists the wizard filters
type Inputs struct {
	Creatives []domain.Creative
	Accounts  []domain.Account
	Shops     []domain.Shop
}

// Wizard couples the user's state with the lists it is computed over
type Wizard struct {
	State

	creatives []domain.Creative
	accounts  []domain.Account
	shopNames map[string]string
}

// New builds a wizard over in, starting from state. Selected tags are
// re-resolved against in.Creatives so only visible creatives are kept.
func New(in Inputs, state State) *Wizard {
	names := make(map[string]string, len(in.Shops))
	for _, s := range in.Shops {
		names[s.ID] = s.Name
	}
	w := &Wizard{
		State:     state,
		creatives: in.Creatives,
		accounts:  in.Accounts,
		shopNames: names,
	}
	w.SelectedTags = resolveTags(in.Creatives, state.SelectedTags)
	w.fillDefaults()
	return w
}

// resolveTags replaces posted tags with the matching visible creatives.
// Tags that do not resolve, and repeats, are dropped.
func resolveTags(visible []domain.Creative, tags []domain.Creative) []domain.Creative {
	out := make([]domain.Creative, 0, len(tags))
	for _, tag := range tags {
		c, ok := findCreative(visible, tag.ID)
		if !ok || slices.ContainsFunc(out, func(v domain.Creative) bool { return v.ID == c.ID }) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FromCampaign restores the persisted selection of a campaign so reopening
// the wizard shows what was saved
func FromCampaign(in Inputs, c *domain.Campaign) *Wizard {
	state := NewState()
	if c.CreativeMode == domain.CreativeModeManual {
		state.Mode = ModeManual
	}
	state.SelectedAccounts = slices.Clone(c.SelectedAccounts)
	state.ExcludedCreatives = slices.Clone(c.ExcludedCreatives)
	for _, id := range c.SelectedCreatives {
		if cr, ok := findCreative(in.Creatives, id); ok {
			state.SelectedTags = append(state.SelectedTags, cr)
		}
	}
	return New(in, state)
}

func (w *Wizard) fillDefaults() {
	def := NewState()
	if w.Mode == "" {
		w.Mode = def.Mode
	}
	if w.Step < StepMode || w.Step > StepReview {
		w.Step = def.Step
	}
	if w.ActiveTab == "" {
		w.ActiveTab = def.ActiveTab
	}
	if w.SelectedAccounts == nil {
		w.SelectedAccounts = def.SelectedAccounts
	}
	if w.ExcludedCreatives == nil {
		w.ExcludedCreatives = def.ExcludedCreatives
	}
	if w.SelectedTags == nil {
		w.SelectedTags = def.SelectedTags
	}
	if w.FailedVideos == nil {
		w.FailedVideos = def.FailedVideos
	}
	if w.Optimizations == nil {
		w.Optimizations = def.Optimizations
	}
}

// FilteredAccounts are the accounts whose name contains the account search
func (w *Wizard) FilteredAccounts() []domain.Account {
	term := strings.ToLower(w.AccountSearch)
	out := []domain.Account{}
	for _, a := range w.accounts {
		if strings.Contains(strings.ToLower(a.Name), term) {
			out = append(out, a)
		}
	}
	return out
}

// AuthorizedAccounts are the filtered accounts with status Authorized
func (w *Wizard) AuthorizedAccounts() []domain.Account {
	out := []domain.Account{}
	for _, a := range w.FilteredAccounts() {
		if a.Status == domain.AccountStatusAuthorized {
			out = append(out, a)
		}
	}
	return out
}

// UnauthorizedAccounts lists every unauthorized account. The account search
// term does not apply here.
func (w *Wizard) UnauthorizedAccounts() []domain.Account {
	out := []domain.Account{}
	for _, a := range w.accounts {
		if a.Status == domain.AccountStatusUnauthorized {
			out = append(out, a)
		}
	}
	return out
}

// FilteredCreatives are the creatives matching both the source search and
// the account search
func (w *Wizard) FilteredCreatives() []domain.Creative {
	source := strings.ToLower(w.SourceSearch)
	account := strings.ToLower(w.AccountSearch)
	out := []domain.Creative{}
	for _, c := range w.creatives {
		if w.matches(c, source) && w.matches(c, account) {
			out = append(out, c)
		}
	}
	return out
}

// CreativesToDisplay are the filtered creatives that are not excluded
func (w *Wizard) CreativesToDisplay() []domain.Creative {
	out := []domain.Creative{}
	for _, c := range w.FilteredCreatives() {
		if !slices.Contains(w.ExcludedCreatives, c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// ExclusionsToDisplay are the filtered creatives that are excluded
func (w *Wizard) ExclusionsToDisplay() []domain.Creative {
	out := []domain.Creative{}
	for _, c := range w.FilteredCreatives() {
		if slices.Contains(w.ExcludedCreatives, c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// FilterableCreatives are the step four candidates: every creative not yet
// chosen as a tag that matches the review search
func (w *Wizard) FilterableCreatives() []domain.Creative {
	term := strings.ToLower(w.ReviewSearch)
	out := []domain.Creative{}
	for _, c := range w.creatives {
		if w.hasTag(c.ID) {
			continue
		}
		if w.matches(c, term) {
			out = append(out, c)
		}
	}
	return out
}

// CreativesWithVideos are the displayed creatives with a playable video that
// has not failed to load
func (w *Wizard) CreativesWithVideos() []domain.Creative {
	out := []domain.Creative{}
	for _, c := range w.CreativesToDisplay() {
		if domain.IsValidVideoPath(c.Video) && !slices.Contains(w.FailedVideos, c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// AffiliateCreatives are the displayed creatives sourced from affiliates
func (w *Wizard) AffiliateCreatives() []domain.Creative {
	out := []domain.Creative{}
	for _, c := range w.CreativesToDisplay() {
		if isAffiliate(c) {
			out = append(out, c)
		}
	}
	return out
}

// TabCreatives returns the list shown under the active review tab
func (w *Wizard) TabCreatives() []domain.Creative {
	if w.ActiveTab == TabAffiliates {
		return w.AffiliateCreatives()
	}
	return w.CreativesWithVideos()
}

// matches reports whether the lowered term occurs in the creative's name,
// shop label, identifier or type. An empty term matches everything.
func (w *Wizard) matches(c domain.Creative, term string) bool {
	if term == "" {
		return true
	}
	for _, field := range []string{c.Name, w.shopLabel(c.Shop), c.ID, c.Type} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (w *Wizard) shopLabel(id string) string {
	if name, ok := w.shopNames[id]; ok && name != "" {
		return name
	}
	return id
}

func (w *Wizard) hasTag(id string) bool {
	return slices.ContainsFunc(w.SelectedTags, func(c domain.Creative) bool { return c.ID == id })
}

func isAffiliate(c domain.Creative) bool {
	return c.Type == affiliateType || c.SubType == domain.CreativeSourceAffiliate
}

func findCreative(list []domain.Creative, id string) (domain.Creative, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Creative{}, false
}
