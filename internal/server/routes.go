package server

import (
	"net/http"
	"time"

	"campaignhub/internal/domain"

	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	r := s.router

	// Health check endpoint
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/signup", s.handleSignup)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)

			r.Get("/dashboard", s.handleDashboard)

			r.Route("/admin", func(r chi.Router) {
				r.Route("/users", func(r chi.Router) {
					r.Get("/", s.handleUsersList)
					r.Get("/{id}", s.users().get(s))
					r.Group(func(r chi.Router) {
						r.Use(s.roleMiddleware(domain.RoleAdmin))
						r.Post("/", s.handleCreateUser)
						r.Put("/{id}", s.handleUpdateUser)
						r.Delete("/{id}", s.users().remove(s))
					})
				})

				r.Route("/shops", func(r chi.Router) {
					r.Get("/", s.handleShopsList)
					r.Get("/{id}", s.shops().get(s))
					r.Group(func(r chi.Router) {
						r.Use(s.roleMiddleware(domain.RoleAdmin))
						r.Post("/", s.shops().create(s))
						r.Put("/{id}", s.shops().update(s))
						r.Delete("/{id}", s.shops().remove(s))
					})
				})

				r.Route("/accounts", func(r chi.Router) {
					r.Get("/", s.handleAccountsList)
					r.Post("/", s.accounts().create(s))
					r.Get("/{id}", s.accounts().get(s))
					r.Put("/{id}", s.accounts().update(s))
					r.Delete("/{id}", s.accounts().remove(s))
				})

				r.Route("/creatives", func(r chi.Router) {
					r.Get("/", s.handleCreativesList)
					r.Post("/", s.creatives().create(s))
					r.Get("/{id}", s.creatives().get(s))
					r.Put("/{id}", s.creatives().update(s))
					r.Delete("/{id}", s.creatives().remove(s))
				})

				r.Route("/products", func(r chi.Router) {
					r.Get("/", s.handleProductsList)
					r.Post("/", s.products().create(s))
					r.Get("/{id}", s.products().get(s))
					r.Put("/{id}", s.products().update(s))
					r.Delete("/{id}", s.products().remove(s))
				})
			})

			r.Route("/campaigns", func(r chi.Router) {
				// Creation flow
				r.Get("/create", s.handleCampaignCreate)
				r.Post("/create/type", s.handleCampaignSelectType)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleCampaignGet)
					r.Delete("/", s.handleCampaignDelete)
					r.Post("/cancel", s.handleCampaignCancel)
					r.Post("/submit", s.handleCampaignSubmit)

					// Creative management
					r.Get("/creatives", s.handleCreativesWizard)
					r.Post("/creatives/wizard", s.handleWizardAction)
					r.Put("/creatives", s.handleSaveSelection)
					r.Get("/qr", s.handleCampaignQR)
				})
			})
		})
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
