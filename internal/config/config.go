// Package config loads surveyviz settings from environment variables, applies
// defaults, and validates everything on startup so misconfiguration fails
// fast.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/JonMunkholm/surveyviz/internal/survey"
)

// Auth modes.
const (
	AuthModeOAuth = "oauth"
	AuthModeNone  = "none"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Auth     AuthConfig
	Survey   SurveyConfig
	Chart    ChartConfig
	SMS      SMSConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"90s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds the graceful drain of in-flight analyses.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is applied by chi's Timeout middleware.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig bounds survey uploads and concurrent analyses.
type UploadConfig struct {
	// MaxFileSize is the largest accepted CSV in bytes (default: 10 MiB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is how many analyses may run at once (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a request waits for an analysis slot
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single analysis including chart rendering
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// AnalyzeLimit is requests per minute for the analysis endpoints
	AnalyzeLimit int `env:"RATE_LIMIT_ANALYZE" envAlt:"RATE_LIMIT_UPLOAD" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// forwarding headers are believed
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// AuthConfig configures sign-in.
type AuthConfig struct {
	// Mode is "oauth" (default) or "none" for a fixed local user
	Mode string `env:"AUTH_MODE" default:"oauth"`

	ClientID     string `env:"AUTH_CLIENT_ID"`
	ClientSecret string `env:"AUTH_CLIENT_SECRET"`

	// AuthURL and TokenURL default to Google's endpoints when empty
	AuthURL  string `env:"AUTH_AUTH_URL"`
	TokenURL string `env:"AUTH_TOKEN_URL"`

	RedirectURL string   `env:"AUTH_REDIRECT_URL"`
	Scopes      []string `env:"AUTH_SCOPES" default:"openid,profile,email"`

	// HashKey and BlockKey are 32-byte hex keys for the session cookie
	HashKey  string `env:"AUTH_HASH_KEY"`
	BlockKey string `env:"AUTH_BLOCK_KEY"`

	CookieName   string        `env:"AUTH_COOKIE_NAME" default:"surveyviz_session"`
	SessionTTL   time.Duration `env:"AUTH_SESSION_TTL" default:"12h"`
	CookieSecure bool          `env:"AUTH_COOKIE_SECURE" default:"true"`
}

// SurveyConfig selects the analysed columns by header name or position.
type SurveyConfig struct {
	LabelColumn      string `env:"SURVEY_COL_LABEL" default:"0"`
	FrequencyColumn  string `env:"SURVEY_COL_FREQUENCY" default:"1"`
	ImportanceColumn string `env:"SURVEY_COL_IMPORTANCE" default:"6"`
	NumericColumn    string `env:"SURVEY_COL_NUMERIC" default:"14"`
	CategoryColumn   string `env:"SURVEY_COL_CATEGORY" default:"15"`

	// Strict rejects uploads containing short rows instead of skipping them
	Strict bool `env:"SURVEY_STRICT" default:"false"`
}

// Columns returns the configured column selectors.
func (c SurveyConfig) Columns() survey.Columns {
	return survey.Columns{
		Label:      c.LabelColumn,
		Frequency:  c.FrequencyColumn,
		Importance: c.ImportanceColumn,
		Numeric:    c.NumericColumn,
		Category:   c.CategoryColumn,
	}
}

// ChartConfig sets rendered image dimensions in pixels.
type ChartConfig struct {
	Width  int `env:"CHART_WIDTH" default:"800"`
	Height int `env:"CHART_HEIGHT" default:"500"`
}

// SMSConfig configures the SMS questionnaire.
type SMSConfig struct {
	Enabled bool `env:"SMS_ENABLED" default:"false"`

	AccountSID string `env:"SMS_ACCOUNT_SID" envAlt:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"SMS_AUTH_TOKEN" envAlt:"TWILIO_AUTH_TOKEN"`
	FromNumber string `env:"SMS_FROM_NUMBER" envAlt:"TWILIO_NUMBER"`
	APIBase    string `env:"SMS_API_BASE" default:"https://api.twilio.com"`
	RetryMax   int    `env:"SMS_RETRY_MAX" default:"3"`

	// WebhookURL is the public URL Twilio posts to. When empty it is
	// rebuilt from the incoming request.
	WebhookURL        string `env:"SMS_WEBHOOK_URL"`
	ValidateSignature bool   `env:"SMS_VALIDATE_SIGNATURE" default:"true"`

	// SessionTTL expires abandoned questionnaires
	SessionTTL time.Duration `env:"SMS_SESSION_TTL" default:"24h"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
