package server

import (
	"net/http"

	"campaignhub/internal/session"

	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authResponse struct {
	Token   string           `json:"token"`
	Session *session.Session `json:"session"`
}

// handleLogin verifies credentials and sets the session cookie
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, token, err := s.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Info("login rejected", zap.Error(err))
		s.respondError(w, r, err)
		return
	}

	s.setAuthCookie(w, token, int(s.sessions.TTL().Seconds()))
	s.respondJSON(w, http.StatusOK, authResponse{Token: token, Session: sess})
}

// handleSignup registers a new scoped user and signs them in
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, token, err := s.sessions.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.setAuthCookie(w, token, int(s.sessions.TTL().Seconds()))
	s.respondJSON(w, http.StatusCreated, authResponse{Token: token, Session: sess})
}

// handleLogout revokes the token and clears the cookie
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := getSession(r); sess != nil {
		s.sessions.Logout(sess.Claims)
	}
	clearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the current profile and scope
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, getSession(r))
}
