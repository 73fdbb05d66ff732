package adapthttp

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"

	"armonia/internal/app"
	"armonia/internal/domain"
	"armonia/internal/logger"
)

// OIDCConfig holds the single sign-on provider. SSO routes answer 404 when
// Enabled is false.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Services groups the application services the HTTP adapter drives.
type Services struct {
	Auth      *app.AuthService
	Moods     *app.MoodService
	Breathing *app.BreathingService
	Chat      *app.ChatService
	Progress  *app.ProgressService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc     *app.AuthService
	moods       *app.MoodService
	breathing   *app.BreathingService
	chat        *app.ChatService
	progress    *app.ProgressService
	oidcConfig  OIDCConfig
	webDir      string
	log         *logger.Logger
	disableAuth bool
}

// localUser is the identity requests run as when auth is disabled.
var localUser = &domain.User{ID: "local", Email: "local@localhost", Name: "Local"}

// New creates a Server wired to the given application services.
func New(svcs Services, oidcCfg OIDCConfig, webDir string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		authSvc:    svcs.Auth,
		moods:      svcs.Moods,
		breathing:  svcs.Breathing,
		chat:       svcs.Chat,
		progress:   svcs.Progress,
		oidcConfig: oidcCfg,
		webDir:     webDir,
		log:        log.With("component", "http"),
	}
}

// WithoutAuth makes every request run as a fixed local user. Used by tests
// and single-user deployments behind a trusted proxy.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/auth/signup", s.handleSignup)
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	protect := func(path string, h http.HandlerFunc) {
		api.Handle(path, s.authMiddleware(h))
	}
	protect("/auth/me", s.handleMe)

	protect("/moods", s.handleMoods)
	protect("/moods/stats", s.handleMoodStats)
	protect("/moods/chart", s.handleMoodChart)

	protect("/breathing", s.handleBreathing)
	protect("/chat", s.handleChat)

	protect("/progress", s.handleProgress)
	protect("/progress/evaluate", s.handleProgressEvaluate)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
