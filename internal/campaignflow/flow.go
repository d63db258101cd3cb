// Package campaignflow drives the lifecycle of a campaign being created: a
// draft record appears as soon as the user makes a meaningful choice, is
// updated while they edit and is deleted if they walk away.
package campaignflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"campaignhub/internal/domain"
	"campaignhub/internal/repository"
	"campaignhub/internal/session"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// State of the draft
type State string

const (
	StateNoDraft     State = "no-draft"
	StateDraftExists State = "draft-exists"
	StateSaved       State = "saved"
	StateDiscarded   State = "discarded"
)

// ErrInvalidTransition is returned when an operation is not allowed in the
// current state
var ErrInvalidTransition = errors.New("invalid campaign flow transition")

// Form is the full creation form submitted at the end of the flow
type Form struct {
	Name           string `json:"name" validate:"required"`
	Type           string `json:"type" validate:"omitempty,oneof=products LIVE"`
	Shop           string `json:"shop" validate:"required"`
	Account        string `json:"account" validate:"required"`
	Budget         string `json:"budget"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	TargetAudience string `json:"targetAudience"`
	Description    string `json:"description"`
	Enabled        bool   `json:"enabled"`
	Status         string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// FormFrom pre-fills a form from an existing campaign
func FormFrom(c *domain.Campaign) Form {
	return Form{
		Name:           c.Name,
		Type:           c.Type,
		Shop:           c.Shop,
		Account:        c.Account,
		Budget:         c.Budget,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		TargetAudience: c.TargetAudience,
		Description:    c.Description,
		Enabled:        c.Enabled,
		Status:         c.Status,
	}
}

// Flow is a single campaign creation session. It is not safe for
// concurrent use.
type Flow struct {
	campaigns repository.CampaignRepository
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	state   State
	draft   *domain.Campaign
	scope   session.Scope
	userID  string
	shop    string
	account string
}

// New starts a flow with no draft. account is the currently selected
// account, which may be empty.
func New(campaigns repository.CampaignRepository, sess *session.Session, account string, logger *zap.Logger) *Flow {
	f := &Flow{
		campaigns: campaigns,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
		state:     StateNoDraft,
		account:   account,
	}
	if sess != nil {
		f.scope = sess.Scope
		f.shop = sess.Scope.Default()
		if sess.Profile != nil {
			f.userID = sess.Profile.ID
		}
	}
	return f
}

// Resume rebuilds a flow around a draft that already exists, as happens
// when each step arrives in its own request
func Resume(campaigns repository.CampaignRepository, draft *domain.Campaign, logger *zap.Logger) *Flow {
	return &Flow{
		campaigns: campaigns,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
		state:     StateDraftExists,
		draft:     draft,
		userID:    draft.CreatedBy,
		shop:      draft.Shop,
		account:   draft.Account,
	}
}

// State reports where the flow is
func (f *Flow) State() State {
	return f.state
}

// Draft returns the current draft, nil before creation
func (f *Flow) Draft() *domain.Campaign {
	return f.draft
}

// UseShop makes shop the current shop for the draft about to be created.
// An empty shop keeps the scope's default; a shop outside the scope is
// forbidden.
func (f *Flow) UseShop(shop string) error {
	if f.state != StateNoDraft {
		return f.invalid("change shop")
	}
	if shop == "" {
		return nil
	}
	if !f.scope.AllowsShop(shop) {
		return fmt.Errorf("%w: shop %s is outside your scope", domain.ErrForbidden, shop)
	}
	f.shop = shop
	return nil
}

// CreateNow creates the draft immediately with a placeholder name, the
// chosen type and the current shop and account
func (f *Flow) CreateNow(ctx context.Context, campaignType string) (*domain.Campaign, error) {
	if f.state != StateNoDraft {
		return nil, f.invalid("create")
	}
	if err := checkType(campaignType); err != nil {
		return nil, err
	}
	return f.create(ctx, campaignType, "")
}

// SelectType records the products/LIVE choice. The first choice creates the
// draft with whatever name was typed so far, later ones update it.
func (f *Flow) SelectType(ctx context.Context, campaignType, typedName string) (*domain.Campaign, error) {
	if err := checkType(campaignType); err != nil {
		return nil, err
	}

	switch f.state {
	case StateNoDraft:
		return f.create(ctx, campaignType, typedName)
	case StateDraftExists:
		f.draft.Type = campaignType
		if name := strings.TrimSpace(typedName); name != "" {
			f.draft.Name = name
		}
		if err := f.campaigns.Update(ctx, f.draft); err != nil {
			return nil, fmt.Errorf("failed to update draft campaign: %w", err)
		}
		return f.draft, nil
	default:
		return nil, f.invalid("select type")
	}
}

// Cancel deletes the draft. Cancelling before any draft exists just ends
// the flow.
func (f *Flow) Cancel(ctx context.Context) error {
	switch f.state {
	case StateNoDraft:
		f.state = StateDiscarded
		return nil
	case StateDraftExists:
		if err := f.campaigns.Delete(ctx, f.draft.ID); err != nil {
			return fmt.Errorf("failed to delete draft campaign: %w", err)
		}
		f.logger.Info("draft campaign discarded", zap.String("campaign_id", f.draft.ID))
		f.state = StateDiscarded
		f.draft = nil
		return nil
	default:
		return f.invalid("cancel")
	}
}

// Submit validates the form, writes every field onto the draft and returns
// the creative management route for the campaign. A rejected form leaves
// the stored draft untouched.
func (f *Flow) Submit(ctx context.Context, form Form) (string, error) {
	if f.state != StateDraftExists {
		return "", f.invalid("submit")
	}
	form.Name = strings.TrimSpace(form.Name)
	if err := f.validate.Struct(form); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrValidation, describe(err))
	}

	updated := *f.draft
	updated.Name = form.Name
	if form.Type != "" {
		updated.Type = form.Type
	}
	updated.Shop = form.Shop
	updated.Account = form.Account
	updated.Budget = form.Budget
	updated.StartDate = form.StartDate
	updated.EndDate = form.EndDate
	updated.TargetAudience = form.TargetAudience
	updated.Description = form.Description
	updated.Enabled = form.Enabled
	updated.Status = form.Status
	if updated.Status == "" {
		updated.Status = domain.CampaignStatusActive
	}

	if err := f.campaigns.Update(ctx, &updated); err != nil {
		return "", fmt.Errorf("failed to save campaign: %w", err)
	}
	f.draft = &updated
	f.state = StateSaved
	f.logger.Info("campaign saved", zap.String("campaign_id", updated.ID))
	return CreativesRoute(updated.ID, updated.Type), nil
}

// Load enters the flow with an existing campaign and returns the scope
// narrowed to the campaign's shop
func (f *Flow) Load(ctx context.Context, id string, scope session.Scope) (*domain.Campaign, session.Scope, error) {
	if f.state != StateNoDraft {
		return nil, scope, f.invalid("load")
	}
	c, err := f.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, scope, fmt.Errorf("failed to load campaign: %w", err)
	}
	if c == nil || !scope.AllowsCampaign(c) {
		return nil, scope, fmt.Errorf("campaign %s: %w", id, domain.ErrNotFound)
	}
	f.draft = c
	f.state = StateDraftExists
	return c, scope.Narrow(c.Shop), nil
}

func (f *Flow) create(ctx context.Context, campaignType, name string) (*domain.Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = placeholderName(f.now())
	}
	draft := &domain.Campaign{
		Name:              name,
		Type:              campaignType,
		Shop:              f.shop,
		Account:           f.account,
		CreatedBy:         f.userID,
		Status:            domain.CampaignStatusInactive,
		CreativeMode:      domain.CreativeModeAutoselect,
		SelectedAccounts:  []string{},
		SelectedCreatives: []string{},
		ExcludedCreatives: []string{},
	}
	if err := f.campaigns.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to create draft campaign: %w", err)
	}
	f.logger.Info("draft campaign created",
		zap.String("campaign_id", draft.ID),
		zap.String("type", campaignType))
	f.draft = draft
	f.state = StateDraftExists
	return draft, nil
}

func (f *Flow) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s in state %s", ErrInvalidTransition, op, f.state)
}

// CreativesRoute is the creative management address of a campaign
func CreativesRoute(id, campaignType string) string {
	q := url.Values{}
	q.Set("type", campaignType)
	return "/api/campaigns/" + url.PathEscape(id) + "/creatives?" + q.Encode()
}

func placeholderName(t time.Time) string {
	return "Campaign " + t.Format("2006-01-02 15:04")
}

func checkType(t string) error {
	if !domain.ValidCampaignType(t) {
		return fmt.Errorf("%w: unknown campaign type %q", domain.ErrValidation, t)
	}
	return nil
}

// describe lists the failing fields in a short message
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" is "+fe.Tag())
	}
	return strings.Join(fields, ", ")
}
