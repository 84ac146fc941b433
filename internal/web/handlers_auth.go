package web

import (
	"net/http"

	"github.com/JonMunkholm/surveyviz/internal/identity"
	"github.com/JonMunkholm/surveyviz/internal/logging"
	"github.com/JonMunkholm/surveyviz/internal/web/templates"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.auth.CurrentUser(r); err == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.LoginPage().Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render login page", "error", err)
	}
}

func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	target, err := s.auth.BeginLogin(w, r)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	id, err := s.auth.Authenticate(w, r)
	if err != nil {
		respondError(w, r, err, http.StatusUnauthorized)
		return
	}
	logging.FromContext(logging.WithUser(r.Context(), id.ID)).Info("user signed in")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		respondError(w, r, identity.ErrNotAuthenticated, http.StatusUnauthorized)
		return
	}
	writeJSON(w, id)
}
