// Package web serves the survey visualizer: sign-in, CSV upload and
// analysis, chart images, and the SMS questionnaire webhook.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/surveyviz/internal/config"
	"github.com/JonMunkholm/surveyviz/internal/identity"
	"github.com/JonMunkholm/surveyviz/internal/questionnaire"
	"github.com/JonMunkholm/surveyviz/internal/survey"
	"github.com/JonMunkholm/surveyviz/internal/web/middleware"
)

// Options are the collaborators a Server needs besides configuration.
type Options struct {
	// Provider signs users in. Required.
	Provider identity.Provider

	// Flow, Messenger and Responses back the SMS questionnaire. A nil Flow
	// leaves the SMS routes unregistered.
	Flow      *questionnaire.Flow
	Messenger questionnaire.Messenger
	Responses *questionnaire.Collector
}

// Server is the HTTP server.
type Server struct {
	cfg      *config.Config
	pipeline *survey.Pipeline
	auth     identity.Provider
	limiter  *AnalysisLimiter

	flow      *questionnaire.Flow
	messenger questionnaire.Messenger
	responses *questionnaire.Collector

	router *chi.Mux
	server *http.Server

	stopBackground context.CancelFunc
}

// NewServer builds the router. Background cleanup runs until Shutdown.
func NewServer(cfg *config.Config, opts Options) *Server {
	bg, stop := context.WithCancel(context.Background())

	s := &Server{
		cfg: cfg,
		pipeline: &survey.Pipeline{
			Columns: cfg.Survey.Columns(),
			Strict:  cfg.Survey.Strict,
		},
		auth:           opts.Provider,
		limiter:        NewAnalysisLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		flow:           opts.Flow,
		messenger:      opts.Messenger,
		responses:      opts.Responses,
		router:         chi.NewRouter(),
		stopBackground: stop,
	}
	s.setupMiddleware(bg)
	s.setupRoutes(bg)
	return s
}

func (s *Server) setupMiddleware(bg context.Context) {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		rl := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		go rl.run(bg)
		s.router.Use(rl.middleware(respondError))
	}
}

func (s *Server) setupRoutes(bg context.Context) {
	analyzeLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		rl := newRateLimiter(s.cfg.Rate.AnalyzeLimit, time.Minute)
		go rl.run(bg)
		analyzeLimit = rl.middleware(respondError)
	}

	s.router.Get("/healthz", s.handleHealth)

	s.router.Get("/login", s.handleLoginPage)
	s.router.Get("/auth/login", s.handleAuthLogin)
	s.router.Get("/auth/callback", s.handleAuthCallback)
	s.router.Post("/auth/logout", s.handleLogout)

	if s.flow != nil {
		sig := middleware.TwilioSignature(middleware.SignatureConfig{
			AuthToken:  s.cfg.SMS.AuthToken,
			WebhookURL: s.cfg.SMS.WebhookURL,
			Enabled:    s.cfg.SMS.ValidateSignature,
		})
		s.router.With(sig).Post("/sms", s.handleSMS)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(identity.RequireUser(s.auth, denyAccess))

		r.Get("/", s.handleIndex)
		r.With(analyzeLimit).Post("/analyze", s.handleAnalyzePage)

		r.Route("/api", func(r chi.Router) {
			r.Get("/me", s.handleMe)
			r.With(analyzeLimit).Post("/analyze", s.handleAnalyzeAPI)
			r.With(analyzeLimit).Post("/charts/{kind}", s.handleChart)

			if s.flow != nil {
				r.Post("/survey/start", s.handleSurveyStart)
				r.Get("/survey/responses.csv", s.handleSurveyExport)
			}
		})
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown waits for running analyses, then stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopBackground()

	drainErr := s.limiter.WaitForDrain(ctx)

	if s.server == nil {
		return drainErr
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return drainErr
}

// Limiter exposes the analysis limiter for shutdown reporting.
func (s *Server) Limiter() *AnalysisLimiter {
	return s.limiter
}

// Router returns the handler, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"analyses": s.limiter.Status(),
	})
}

// securityHeaders sets hardening headers on every response.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// Charts are inlined as data: URIs; styles are inline.
				h.Set("Content-Security-Policy",
					"default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self' https:")
			}
			next.ServeHTTP(w, r)
		})
	}
}
