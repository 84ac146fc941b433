package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JonMunkholm/surveyviz/internal/config"
	"github.com/JonMunkholm/surveyviz/internal/identity"
	"github.com/JonMunkholm/surveyviz/internal/logging"
	"github.com/JonMunkholm/surveyviz/internal/questionnaire"
	"github.com/JonMunkholm/surveyviz/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	loaded, err := config.LoadDotEnv()
	switch {
	case err != nil:
		slog.Error("failed to read .env file", "error", err)
		os.Exit(1)
	case loaded:
		slog.Info("loaded .env file (overwriting existing env vars)")
	default:
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"auth_mode", cfg.Auth.Mode,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"sms_enabled", cfg.SMS.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	provider, err := newProvider(cfg.Auth)
	if err != nil {
		slog.Error("failed to configure sign-in", "error", err)
		os.Exit(1)
	}

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	opts := web.Options{Provider: provider}
	if cfg.SMS.Enabled {
		if err := setupSMS(jobCtx, cfg.SMS, &opts); err != nil {
			slog.Error("failed to configure SMS questionnaire", "error", err)
			os.Exit(1)
		}
	}

	server := web.NewServer(cfg, opts)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := server.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for analyses to complete", "active", status.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown did not complete cleanly", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}

func newProvider(cfg config.AuthConfig) (identity.Provider, error) {
	if cfg.Mode == config.AuthModeNone {
		slog.Warn("authentication disabled, every request acts as the local user")
		return identity.NewStaticProvider(identity.Identity{}), nil
	}
	return identity.NewOAuthProvider(identity.OAuthConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AuthURL:      cfg.AuthURL,
		TokenURL:     cfg.TokenURL,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		HashKey:      cfg.HashKey,
		BlockKey:     cfg.BlockKey,
		CookieName:   cfg.CookieName,
		SessionTTL:   cfg.SessionTTL,
		Secure:       cfg.CookieSecure,
	})
}

// setupSMS wires the questionnaire and prunes abandoned sessions until ctx
// is cancelled.
func setupSMS(ctx context.Context, cfg config.SMSConfig, opts *web.Options) error {
	messenger, err := questionnaire.NewTwilioMessenger(questionnaire.TwilioConfig{
		AccountSID: cfg.AccountSID,
		AuthToken:  cfg.AuthToken,
		From:       cfg.FromNumber,
		BaseURL:    cfg.APIBase,
		RetryMax:   cfg.RetryMax,
		Logger:     slog.Default().With("component", "twilio"),
	})
	if err != nil {
		return err
	}

	store := questionnaire.NewMemoryStore(cfg.SessionTTL)
	responses := &questionnaire.Collector{}

	opts.Flow = questionnaire.NewFlow(store, responses)
	opts.Messenger = messenger
	opts.Responses = responses

	if cfg.SessionTTL > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SessionTTL / 4)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := store.Prune(); n > 0 {
						slog.Info("pruned abandoned survey sessions", "count", n)
					}
				}
			}
		}()
	}
	return nil
}
