package server

import (
	"fmt"
	"net/http"
	"strings"

	"campaignhub/internal/campaignflow"
	"campaignhub/internal/domain"
	"campaignhub/internal/listing"
	"campaignhub/internal/session"
	"campaignhub/internal/wizard"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// handleDashboard returns the scoped campaign table
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.views.Campaigns(r.Context(), getSession(r).Scope))
}

// loadCampaign fetches the campaign named by the URL; campaigns outside the
// caller's scope are reported as missing
func (s *Server) loadCampaign(r *http.Request) (*domain.Campaign, error) {
	id := chi.URLParam(r, "id")
	c, err := s.repos.Campaigns.GetByID(r.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	if c == nil || !getSession(r).Scope.AllowsCampaign(c) {
		return nil, fmt.Errorf("campaign %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (s *Server) handleCampaignGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.loadCampaign(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleCampaignDelete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		s.respondError(w, r, domain.ErrConfirmationRequired)
		return
	}
	c, err := s.loadCampaign(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := listing.Delete(r.Context(), s.repos.Campaigns, c.ID, true); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.logger.Info("campaign deleted", zap.String("campaign_id", c.ID))
	w.WriteHeader(http.StatusNoContent)
}

// Campaign creation flow

type flowResponse struct {
	State    campaignflow.State `json:"state"`
	Campaign *domain.Campaign   `json:"campaign,omitempty"`
	Form     *campaignflow.Form `json:"form,omitempty"`
	Scope    *session.Scope     `json:"scope,omitempty"`
	Route    string             `json:"route,omitempty"`
}

// handleCampaignCreate enters the creation route: ?id= loads an existing
// campaign, ?new=true&type= creates a draft at once, otherwise the flow
// starts empty. ?shop= and ?account= pick the current shop and account.
func (s *Server) handleCampaignCreate(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r)
	q := r.URL.Query()
	flow := campaignflow.New(s.repos.Campaigns, sess, q.Get("account"), s.logger)
	if err := flow.UseShop(q.Get("shop")); err != nil {
		s.respondError(w, r, err)
		return
	}

	switch {
	case q.Get("id") != "":
		c, scope, err := flow.Load(r.Context(), q.Get("id"), sess.Scope)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		form := campaignflow.FormFrom(c)
		s.respondJSON(w, http.StatusOK, flowResponse{State: flow.State(), Campaign: c, Form: &form, Scope: &scope})

	case q.Get("new") == "true":
		c, err := flow.CreateNow(r.Context(), q.Get("type"))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, flowResponse{State: flow.State(), Campaign: c})

	default:
		scope := sess.Scope
		s.respondJSON(w, http.StatusOK, flowResponse{State: flow.State(), Scope: &scope})
	}
}

type selectTypeRequest struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Shop    string `json:"shop"`
	Account string `json:"account"`
}

// handleCampaignSelectType records the type choice. Without an id the
// first choice creates the draft; with one the draft is updated.
func (s *Server) handleCampaignSelectType(w http.ResponseWriter, r *http.Request) {
	var req selectTypeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	sess := getSession(r)
	flow := campaignflow.New(s.repos.Campaigns, sess, req.Account, s.logger)
	status := http.StatusCreated
	if req.ID != "" {
		if _, _, err := flow.Load(r.Context(), req.ID, sess.Scope); err != nil {
			s.respondError(w, r, err)
			return
		}
		status = http.StatusOK
	} else if err := flow.UseShop(req.Shop); err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := flow.SelectType(r.Context(), req.Type, req.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, status, flowResponse{State: flow.State(), Campaign: c})
}

// resumeFlow rebuilds the flow around the draft named by the URL
func (s *Server) resumeFlow(r *http.Request) (*campaignflow.Flow, error) {
	c, err := s.loadCampaign(r)
	if err != nil {
		return nil, err
	}
	return campaignflow.Resume(s.repos.Campaigns, c, s.logger), nil
}

func (s *Server) handleCampaignCancel(w http.ResponseWriter, r *http.Request) {
	flow, err := s.resumeFlow(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := flow.Cancel(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, flowResponse{State: flow.State()})
}

func (s *Server) handleCampaignSubmit(w http.ResponseWriter, r *http.Request) {
	var form campaignflow.Form
	if err := decodeJSON(w, r, &form); err != nil {
		s.respondError(w, r, err)
		return
	}
	flow, err := s.resumeFlow(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sess := getSession(r)
	if form.Shop != "" && !sess.Scope.AllowsShop(form.Shop) {
		s.respondError(w, r, fmt.Errorf("%w: shop is outside your scope", domain.ErrForbidden))
		return
	}
	route, err := flow.Submit(r.Context(), form)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, flowResponse{State: flow.State(), Campaign: flow.Draft(), Route: route})
}

// Creative management

type wizardResponse struct {
	Campaign *domain.Campaign `json:"campaign"`
	Type     string           `json:"type"`
	View     wizard.View      `json:"view"`
}

type wizardActionRequest struct {
	State  wizard.State  `json:"state"`
	Action wizard.Action `json:"action"`
}

type saveSelectionRequest struct {
	State wizard.State `json:"state"`
}

// handleCreativesWizard opens the wizard with the campaign's saved selection
func (s *Server) handleCreativesWizard(w http.ResponseWriter, r *http.Request) {
	c, err := s.loadCampaign(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	in, err := s.views.WizardInputs(r.Context(), getSession(r).Scope)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	campaignType := r.URL.Query().Get("type")
	if campaignType == "" {
		campaignType = c.Type
	}
	wz := wizard.FromCampaign(in, c)
	s.respondJSON(w, http.StatusOK, wizardResponse{Campaign: c, Type: campaignType, View: wz.View()})
}

// handleWizardAction applies one interaction to the posted state and
// returns every derived list
func (s *Server) handleWizardAction(w http.ResponseWriter, r *http.Request) {
	var req wizardActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	c, err := s.loadCampaign(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	in, err := s.views.WizardInputs(r.Context(), getSession(r).Scope)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	wz := wizard.New(in, req.State)
	if err := wz.Apply(req.Action); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, wizardResponse{Campaign: c, Type: c.Type, View: wz.View()})
}

// handleSaveSelection persists the wizard selection onto the campaign
func (s *Server) handleSaveSelection(w http.ResponseWriter, r *http.Request) {
	var req saveSelectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	c, err := s.loadCampaign(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	in, err := s.views.WizardInputs(r.Context(), getSession(r).Scope)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	updated := *c
	if err := wizard.New(in, req.State).Selection().ApplyTo(&updated); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.repos.Campaigns.Update(r.Context(), &updated); err != nil {
		s.respondError(w, r, fmt.Errorf("failed to save creative selection: %w", err))
		return
	}
	s.logger.Info("creative selection saved",
		zap.String("campaign_id", updated.ID),
		zap.String("mode", updated.CreativeMode),
		zap.Int("creatives", len(updated.SelectedCreatives)))
	s.respondJSON(w, http.StatusOK, &updated)
}

// handleCampaignQR renders a QR code pointing at the creative management
// page of the campaign
func (s *Server) handleCampaignQR(w http.ResponseWriter, r *http.Request) {
	c, err := s.loadCampaign(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	target := strings.TrimRight(s.config.PublicURL, "/") + campaignflow.CreativesRoute(c.ID, c.Type)
	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("failed to generate QR code: %w", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
