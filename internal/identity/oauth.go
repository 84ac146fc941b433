package identity

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	defaultCookieName = "surveyviz_session"
	defaultSessionTTL = 12 * time.Hour
	stateTTL          = 10 * time.Minute
)

// OAuthConfig configures an OAuthProvider. An empty AuthURL and TokenURL
// select Google's endpoints.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string

	// HashKey and BlockKey are 32-byte hex strings used to sign and encrypt
	// the session cookie.
	HashKey  string
	BlockKey string

	CookieName string
	SessionTTL time.Duration
	Secure     bool
}

// OAuthProvider signs users in with the OAuth2 authorization code flow and
// reads their identity from the OpenID Connect ID token.
type OAuthProvider struct {
	oauth      *oauth2.Config
	secure     *securecookie.SecureCookie
	cookieName string
	stateName  string
	ttl        time.Duration
	cookieSafe bool
	now        func() time.Time
}

// session is the value sealed into the session cookie.
type session struct {
	UserID  string
	Name    string
	Email   string
	Expires time.Time
}

// NewOAuthProvider validates cfg and builds a provider.
func NewOAuthProvider(cfg OAuthConfig) (*OAuthProvider, error) {
	if cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, errors.New("oauth: client ID and redirect URL are required")
	}

	hashKey, err := decodeKey(cfg.HashKey)
	if err != nil {
		return nil, fmt.Errorf("oauth: hash key: %w", err)
	}
	blockKey, err := decodeKey(cfg.BlockKey)
	if err != nil {
		return nil, fmt.Errorf("oauth: block key: %w", err)
	}

	endpoint := endpoints.Google
	if cfg.AuthURL != "" || cfg.TokenURL != "" {
		endpoint = oauth2.Endpoint{AuthURL: cfg.AuthURL, TokenURL: cfg.TokenURL}
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}

	name := cfg.CookieName
	if name == "" {
		name = defaultCookieName
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(ttl / time.Second))

	return &OAuthProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		secure:     sc,
		cookieName: name,
		stateName:  name + "_state",
		ttl:        ttl,
		cookieSafe: cfg.Secure,
		now:        time.Now,
	}, nil
}

// BeginLogin stores a fresh state value in a short-lived cookie and returns
// the provider's consent URL carrying the same state.
func (p *OAuthProvider) BeginLogin(w http.ResponseWriter, _ *http.Request) (string, error) {
	state := uuid.NewString()
	encoded, err := p.secure.Encode(p.stateName, state)
	if err != nil {
		return "", fmt.Errorf("oauth: encode state: %w", err)
	}
	p.setCookie(w, p.stateName, encoded, p.now().Add(stateTTL))
	return p.oauth.AuthCodeURL(state), nil
}

// Authenticate handles the redirect back from the provider.
func (p *OAuthProvider) Authenticate(w http.ResponseWriter, r *http.Request) (Identity, error) {
	if msg := r.FormValue("error"); msg != "" {
		return Identity{}, fmt.Errorf("%w: provider returned %s", ErrAuthFailed, msg)
	}

	if err := p.checkState(r); err != nil {
		return Identity{}, err
	}
	p.clearCookie(w, p.stateName)

	code := r.FormValue("code")
	if code == "" {
		return Identity{}, fmt.Errorf("%w: missing authorization code", ErrAuthFailed)
	}

	token, err := p.oauth.Exchange(r.Context(), code)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: exchange code: %v", ErrAuthFailed, err)
	}

	id, err := identityFromToken(token)
	if err != nil {
		return Identity{}, err
	}

	sess := session{UserID: id.ID, Name: id.Name, Email: id.Email, Expires: p.now().Add(p.ttl)}
	encoded, err := p.secure.Encode(p.cookieName, sess)
	if err != nil {
		return Identity{}, fmt.Errorf("oauth: encode session: %w", err)
	}
	p.setCookie(w, p.cookieName, encoded, sess.Expires)

	return id, nil
}

// CurrentUser decodes the session cookie.
func (p *OAuthProvider) CurrentUser(r *http.Request) (Identity, error) {
	c, err := r.Cookie(p.cookieName)
	if err != nil {
		return Identity{}, ErrNotAuthenticated
	}

	var sess session
	if err := p.secure.Decode(p.cookieName, c.Value, &sess); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if !p.now().Before(sess.Expires) {
		return Identity{}, fmt.Errorf("%w: session expired", ErrNotAuthenticated)
	}

	return Identity{ID: sess.UserID, Name: sess.Name, Email: sess.Email}, nil
}

// Logout expires the session cookie.
func (p *OAuthProvider) Logout(w http.ResponseWriter, _ *http.Request) {
	p.clearCookie(w, p.cookieName)
}

func (p *OAuthProvider) checkState(r *http.Request) error {
	c, err := r.Cookie(p.stateName)
	if err != nil {
		return fmt.Errorf("%w: missing state cookie", ErrAuthFailed)
	}

	var want string
	if err := p.secure.Decode(p.stateName, c.Value, &want); err != nil {
		return fmt.Errorf("%w: invalid state cookie", ErrAuthFailed)
	}

	got := r.FormValue("state")
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return fmt.Errorf("%w: state mismatch", ErrAuthFailed)
	}
	return nil
}

func (p *OAuthProvider) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		Secure:   p.cookieSafe,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (p *OAuthProvider) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   p.cookieSafe,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// identityFromToken reads the subject, name and email claims from the ID
// token. The token arrived directly from the token endpoint over TLS, so its
// signature is not checked again here.
func identityFromToken(token *oauth2.Token) (Identity, error) {
	raw, _ := token.Extra("id_token").(string)
	if raw == "" {
		return Identity{}, fmt.Errorf("%w: token response has no id_token", ErrAuthFailed)
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: parse id_token: %v", ErrAuthFailed, err)
	}

	id := Identity{
		ID:    claimString(claims, "sub"),
		Name:  claimString(claims, "name"),
		Email: claimString(claims, "email"),
	}
	if id.ID == "" {
		return Identity{}, fmt.Errorf("%w: id_token has no subject", ErrAuthFailed)
	}
	return id, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func decodeKey(s string) ([]byte, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	if len(data) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(data))
	}
	return data, nil
}
