// Package identity signs users in before they can analyse uploads.
//
// A Provider owns the whole sign-in round trip: it produces the redirect to
// the identity provider, completes the callback, remembers the user in a
// session, and forgets them on logout. Handlers never see tokens, only the
// resulting Identity.
package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/surveyviz/internal/logging"
)

var (
	// ErrNotAuthenticated is returned when a request carries no valid session.
	ErrNotAuthenticated = errors.New("identity: not authenticated")

	// ErrAuthFailed is returned when a login callback cannot be completed.
	ErrAuthFailed = errors.New("identity: authentication failed")
)

// Identity is the signed-in user.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// DisplayName returns the best human readable label for the user.
func (i Identity) DisplayName() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.Email != "":
		return i.Email
	default:
		return i.ID
	}
}

// Provider is the sign-in collaborator used by the web server.
type Provider interface {
	// BeginLogin prepares a login attempt and returns the URL to send the
	// browser to.
	BeginLogin(w http.ResponseWriter, r *http.Request) (string, error)

	// Authenticate completes the login callback and starts a session.
	// Failures wrap ErrAuthFailed.
	Authenticate(w http.ResponseWriter, r *http.Request) (Identity, error)

	// CurrentUser returns the session's user or ErrNotAuthenticated.
	CurrentUser(r *http.Request) (Identity, error)

	// Logout ends the session.
	Logout(w http.ResponseWriter, r *http.Request)
}

type ctxKey struct{}

// NewContext returns ctx carrying id.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by RequireUser.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// RequireUser rejects requests without a session by calling deny, and
// otherwise stores the identity in the request context for handlers and
// loggers.
func RequireUser(p Provider, deny func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := p.CurrentUser(r)
			if err != nil {
				deny(w, r, err)
				return
			}

			ctx := NewContext(r.Context(), id)
			ctx = logging.WithUser(ctx, id.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaticProvider treats every request as the same user. It backs
// AUTH_MODE=none for local use.
type StaticProvider struct {
	User Identity
}

// NewStaticProvider returns a provider for user, defaulting to a local user.
func NewStaticProvider(user Identity) *StaticProvider {
	if user.ID == "" {
		user = Identity{ID: "local", Name: "Local User"}
	}
	return &StaticProvider{User: user}
}

func (p *StaticProvider) BeginLogin(http.ResponseWriter, *http.Request) (string, error) {
	return "/", nil
}

func (p *StaticProvider) Authenticate(http.ResponseWriter, *http.Request) (Identity, error) {
	return p.User, nil
}

func (p *StaticProvider) CurrentUser(*http.Request) (Identity, error) {
	return p.User, nil
}

func (p *StaticProvider) Logout(http.ResponseWriter, *http.Request) {}
