package middleware

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/surveyviz/internal/logging"
	"github.com/JonMunkholm/surveyviz/internal/questionnaire"
)

// SignatureConfig configures TwilioSignature.
type SignatureConfig struct {
	// AuthToken is the Twilio account auth token used as the HMAC key.
	AuthToken string

	// WebhookURL is the public URL Twilio posts to. When empty the URL is
	// rebuilt from the request, which only works if proxies preserve Host.
	WebhookURL string

	// Enabled turns validation on. Disabled, every request passes.
	Enabled bool
}

// TwilioSignature rejects webhook requests whose X-Twilio-Signature does not
// match the posted form.
func TwilioSignature(cfg SignatureConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid request.", http.StatusBadRequest)
				return
			}

			sig := r.Header.Get("X-Twilio-Signature")
			if sig == "" || !questionnaire.ValidSignature(cfg.AuthToken, webhookURL(cfg, r), r.PostForm, sig) {
				logging.FromContext(r.Context()).Warn("sms: invalid webhook signature",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Forbidden.", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// webhookURL is the URL the signature was computed over.
func webhookURL(cfg SignatureConfig, r *http.Request) string {
	if cfg.WebhookURL != "" {
		return cfg.WebhookURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
