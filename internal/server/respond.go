package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"campaignhub/internal/campaignflow"
	"campaignhub/internal/domain"
	"campaignhub/internal/listing"
	"campaignhub/internal/session"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; wizard state carries whole creatives
const maxBodyBytes = 4 << 20

type errorResponse struct {
	Banner *listing.Banner `json:"banner"`
}

// respondJSON writes v with the given status
func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// respondError maps an error to its status and writes it as a banner.
// Server-side failures are logged and reported with a generic message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		message = "Something went wrong, please try again"
	}
	s.respondJSON(w, status, errorResponse{Banner: listing.ErrorBanner(message)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfirmationRequired),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, campaignflow.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, session.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into v. Malformed input is a
// validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", domain.ErrValidation)
		}
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrValidation, err)
	}
	return nil
}

// confirmed reports whether the caller acknowledged a destructive action
func confirmed(r *http.Request) bool {
	v := r.URL.Query().Get("confirm")
	return v == "true" || v == "1"
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
