package wizard

import (
	"fmt"
	"slices"
	"strconv"

	"campaignhub/internal/domain"
)

// ToggleAccountInclusion adds or removes an account from the sources
func (w *Wizard) ToggleAccountInclusion(id string) {
	w.SelectedAccounts = domain.ToggleID(w.SelectedAccounts, id)
}

// ToggleCreativeExclusion adds or removes a creative from the exclusions
func (w *Wizard) ToggleCreativeExclusion(id string) {
	w.ExcludedCreatives = domain.ToggleID(w.ExcludedCreatives, id)
}

// SelectTag appends the creative unless it is already selected and clears
// the review search
func (w *Wizard) SelectTag(c domain.Creative) {
	if !w.hasTag(c.ID) {
		w.SelectedTags = append(slices.Clone(w.SelectedTags), c)
	}
	w.ReviewSearch = ""
}

// RemoveTag drops the creative from the selected tags
func (w *Wizard) RemoveTag(id string) {
	w.SelectedTags = slices.DeleteFunc(slices.Clone(w.SelectedTags), func(c domain.Creative) bool {
		return c.ID == id
	})
}

// ClearAllTags empties the selection and the review search
func (w *Wizard) ClearAllTags() {
	w.SelectedTags = []domain.Creative{}
	w.ReviewSearch = ""
}

// RecordVideoLoadFailure marks a creative whose video failed at playback.
// The creative stays in every list except CreativesWithVideos.
func (w *Wizard) RecordVideoLoadFailure(id string) {
	if !slices.Contains(w.FailedVideos, id) {
		w.FailedVideos = append(slices.Clone(w.FailedVideos), id)
	}
}

// SetMode switches between autoselect and manual
func (w *Wizard) SetMode(m Mode) error {
	switch m {
	case ModeAutoselect, ModeManual:
		w.Mode = m
		return nil
	}
	return fmt.Errorf("%w: unknown mode %q", domain.ErrValidation, m)
}

// SetTab switches the review tab
func (w *Wizard) SetTab(t Tab) error {
	switch t {
	case TabTikTokPosts, TabAffiliates:
		w.ActiveTab = t
		return nil
	}
	return fmt.Errorf("%w: unknown tab %q", domain.ErrValidation, t)
}

// SetStep jumps to a step
func (w *Wizard) SetStep(step int) error {
	if step < StepMode || step > StepReview {
		return fmt.Errorf("%w: step %d out of range", domain.ErrValidation, step)
	}
	w.Step = step
	return nil
}

// ToggleOptimization flips one of the step three switches
func (w *Wizard) ToggleOptimization(name string) error {
	if !slices.Contains(DefaultOptimizations, name) {
		return fmt.Errorf("%w: unknown optimization %q", domain.ErrValidation, name)
	}
	opts := make(map[string]bool, len(w.Optimizations)+1)
	for k, v := range w.Optimizations {
		opts[k] = v
	}
	opts[name] = !opts[name]
	w.Optimizations = opts
	return nil
}

// ActionType names a wizard operation sent by the client
type ActionType string

const (
	ActionToggleAccount      ActionType = "toggleAccount"
	ActionToggleExclusion    ActionType = "toggleExclusion"
	ActionSelectTag          ActionType = "selectTag"
	ActionRemoveTag          ActionType = "removeTag"
	ActionClearTags          ActionType = "clearTags"
	ActionVideoFailed        ActionType = "videoFailed"
	ActionSetMode            ActionType = "setMode"
	ActionSetTab             ActionType = "setTab"
	ActionSetStep            ActionType = "setStep"
	ActionNextStep           ActionType = "nextStep"
	ActionPrevStep           ActionType = "prevStep"
	ActionToggleOptimization ActionType = "toggleOptimization"
	ActionSearchSources      ActionType = "searchSources"
	ActionSearchAccounts     ActionType = "searchAccounts"
	ActionSearchReview       ActionType = "searchReview"
)

// Action is one user interaction. ID carries an entity identifier and
// Value carries free text, a mode, a tab or a step number.
type Action struct {
	Type  ActionType `json:"type"`
	ID    string     `json:"id,omitempty"`
	Value string     `json:"value,omitempty"`
}

// Apply dispatches an action to the matching operation
func (w *Wizard) Apply(a Action) error {
	switch a.Type {
	case ActionToggleAccount:
		w.ToggleAccountInclusion(a.ID)
	case ActionToggleExclusion:
		w.ToggleCreativeExclusion(a.ID)
	case ActionSelectTag:
		c, ok := findCreative(w.creatives, a.ID)
		if !ok {
			return fmt.Errorf("creative %s: %w", a.ID, domain.ErrNotFound)
		}
		w.SelectTag(c)
	case ActionRemoveTag:
		w.RemoveTag(a.ID)
	case ActionClearTags:
		w.ClearAllTags()
	case ActionVideoFailed:
		w.RecordVideoLoadFailure(a.ID)
	case ActionSetMode:
		return w.SetMode(Mode(a.Value))
	case ActionSetTab:
		return w.SetTab(Tab(a.Value))
	case ActionSetStep:
		step, err := strconv.Atoi(a.Value)
		if err != nil {
			return fmt.Errorf("%w: step %q is not a number", domain.ErrValidation, a.Value)
		}
		return w.SetStep(step)
	case ActionNextStep:
		if w.Step < StepReview {
			w.Step++
		}
	case ActionPrevStep:
		if w.Step > StepMode {
			w.Step--
		}
	case ActionToggleOptimization:
		return w.ToggleOptimization(a.Value)
	case ActionSearchSources:
		w.SourceSearch = a.Value
	case ActionSearchAccounts:
		w.AccountSearch = a.Value
	case ActionSearchReview:
		w.ReviewSearch = a.Value
	default:
		return fmt.Errorf("%w: unknown action %q", domain.ErrValidation, a.Type)
	}
	return nil
}

// Selection is the part of the wizard state that is saved on the campaign
type Selection struct {
	Mode      Mode     `json:"mode"`
	Accounts  []string `json:"accounts"`
	Creatives []string `json:"creatives"`
	Excluded  []string `json:"excluded"`
}

// Selection returns the chosen tags minus exclusions, plus the sources and
// exclusions themselves
func (w *Wizard) Selection() Selection {
	sel := Selection{
		Mode:      w.Mode,
		Accounts:  slices.Clone(w.SelectedAccounts),
		Creatives: []string{},
		Excluded:  slices.Clone(w.ExcludedCreatives),
	}
	for _, c := range w.SelectedTags {
		if !slices.Contains(w.ExcludedCreatives, c.ID) {
			sel.Creatives = append(sel.Creatives, c.ID)
		}
	}
	if sel.Accounts == nil {
		sel.Accounts = []string{}
	}
	if sel.Excluded == nil {
		sel.Excluded = []string{}
	}
	return sel
}

// Validate enforces the manual mode limit
func (s Selection) Validate() error {
	if s.Mode == ModeManual && len(s.Creatives) > ManualLimit {
		return fmt.Errorf("%w: manual mode allows at most %d creatives, got %d",
			domain.ErrValidation, ManualLimit, len(s.Creatives))
	}
	return nil
}

// ApplyTo writes the selection onto the campaign after validating it
func (s Selection) ApplyTo(c *domain.Campaign) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.CreativeMode = string(s.Mode)
	c.SelectedAccounts = s.Accounts
	c.SelectedCreatives = s.Creatives
	c.ExcludedCreatives = s.Excluded
	return nil
}

// View is the state plus every derived list, as returned to the client
type View struct {
	State                State             `json:"state"`
	FilteredAccounts     []domain.Account  `json:"filteredAccounts"`
	AuthorizedAccounts   []domain.Account  `json:"authorizedAccounts"`
	UnauthorizedAccounts []domain.Account  `json:"unauthorizedAccounts"`
	CreativesToDisplay   []domain.Creative `json:"creativesToDisplay"`
	ExclusionsToDisplay  []domain.Creative `json:"exclusionsToDisplay"`
	FilterableCreatives  []domain.Creative `json:"filterableCreatives"`
	CreativesWithVideos  []domain.Creative `json:"creativesWithVideos"`
	AffiliateCreatives   []domain.Creative `json:"affiliateCreatives"`
	TabCreatives         []domain.Creative `json:"tabCreatives"`
	ManualLimit          int               `json:"manualLimit"`
}

// View computes every derived set from the current state
func (w *Wizard) View() View {
	return View{
		State:                w.State,
		FilteredAccounts:     w.FilteredAccounts(),
		AuthorizedAccounts:   w.AuthorizedAccounts(),
		UnauthorizedAccounts: w.UnauthorizedAccounts(),
		CreativesToDisplay:   w.CreativesToDisplay(),
		ExclusionsToDisplay:  w.ExclusionsToDisplay(),
		FilterableCreatives:  w.FilterableCreatives(),
		CreativesWithVideos:  w.CreativesWithVideos(),
		AffiliateCreatives:   w.AffiliateCreatives(),
		TabCreatives:         w.TabCreatives(),
		ManualLimit:          ManualLimit,
	}
}
