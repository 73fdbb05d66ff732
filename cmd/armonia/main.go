package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"armonia/internal/adapter/gemini"
	adapthttp "armonia/internal/adapter/http"
	"armonia/internal/adapter/kvrepo"
	"armonia/internal/adapter/memory"
	"armonia/internal/adapter/postgres"
	"armonia/internal/adapter/redis"
	"armonia/internal/app"
	"armonia/internal/config"
	"armonia/internal/domain"
	"armonia/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	be, err := openBackend(cfg.Store)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() { _ = be.close() }()
	log.Info("store ready", "driver", cfg.Store.Driver)

	store := kvrepo.New(be.kv)
	progress := app.NewProgressService(store, store, store, store, log, app.WithLocation(loc))

	var responder app.Responder
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.New(gemini.Config{
			APIKey:   cfg.Gemini.APIKey,
			Model:    cfg.Gemini.Model,
			Endpoint: cfg.Gemini.Endpoint,
			Timeout:  cfg.Gemini.Timeout,
		})
		if err != nil {
			return fmt.Errorf("gemini: %w", err)
		}
		responder = client
		log.Info("generative chat enabled", "model", cfg.Gemini.Model)
	} else {
		log.Info("no gemini api key, chat uses keyword replies")
	}

	svcs := adapthttp.Services{
		Auth:      app.NewAuthService(be.users, be.sessions),
		Moods:     app.NewMoodService(store, progress, log, loc),
		Breathing: app.NewBreathingService(store, progress, log),
		Chat: app.NewChatService(store, responder, progress, log, app.ChatOptions{
			Timeout:       cfg.Gemini.Timeout,
			RatePerMinute: cfg.Chat.RatePerMinute,
			Burst:         cfg.Chat.Burst,
		}),
		Progress: progress,
	}

	if cfg.Demo.Seed {
		seeder := &app.DemoSeeder{
			Users:     be.users,
			Moods:     store,
			Breathing: store,
			Chat:      store,
			Progress:  progress,
			Log:       log,
		}
		if _, err := seeder.Seed(ctx); err != nil {
			return fmt.Errorf("demo seed: %w", err)
		}
	}

	oidcCfg, err := setupOIDC(ctx, cfg.OIDC)
	if err != nil {
		return fmt.Errorf("oidc: %w", err)
	}

	if be.janitor != nil {
		go runJanitor(ctx, log, be.janitor)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           adapthttp.New(svcs, oidcCfg, cfg.HTTP.WebDir, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Gemini.Timeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTP.Addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// backend bundles the key-value store with the account repositories for one
// store driver.
type backend struct {
	kv       domain.KVStore
	users    domain.UserRepository
	sessions domain.SessionRepository
	janitor  func(ctx context.Context) (int64, error)
	close    func() error
}

func openBackend(cfg config.StoreConfig) (*backend, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		sessions := postgres.NewSessionRepo(db)
		return &backend{kv: db, users: db, sessions: sessions, janitor: sessions.DeleteExpired, close: db.Close}, nil
	case "redis":
		rs, err := redis.Open(cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return &backend{kv: rs, users: kvrepo.NewUsers(rs), sessions: kvrepo.NewSessions(rs), close: rs.Close}, nil
	default:
		db := memory.New()
		return &backend{kv: db, users: kvrepo.NewUsers(db), sessions: kvrepo.NewSessions(db), close: func() error { return nil }}, nil
	}
}

func setupOIDC(ctx context.Context, cfg config.OIDCConfig) (adapthttp.OIDCConfig, error) {
	if cfg.Issuer == "" {
		return adapthttp.OIDCConfig{}, nil
	}
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// runJanitor purges expired sessions hourly until ctx is done.
func runJanitor(ctx context.Context, log *logger.Logger, purge func(ctx context.Context) (int64, error)) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purge(ctx)
			if err != nil {
				log.Warn("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
