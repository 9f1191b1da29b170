package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/bananamath/internal/api/handler"
	"github.com/mcoot/bananamath/internal/api/middleware"
	"github.com/mcoot/bananamath/internal/api/response"
	"github.com/mcoot/bananamath/internal/metrics"
	sharedmw "github.com/mcoot/bananamath/internal/middleware"
	"github.com/mcoot/bananamath/internal/services/auth"
	"github.com/mcoot/bananamath/internal/services/game"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthManager *auth.Manager
	Sessions    *game.Registry
	Metrics     *metrics.Metrics // optional; /metrics is only served when set
	RateLimit   middleware.RateLimitConfig
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthManager, cfg.Metrics)
	gameHandler := handler.NewGameHandler(cfg.Sessions, cfg.Metrics)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthManager)
	loginLimiter := middleware.NewIPRateLimiter(cfg.RateLimit, cfg.Metrics)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(sharedmw.Logging(cfg.Logger))
	api.Use(sharedmw.Recovery(cfg.Logger, handler.PanicHandler))
	api.Use(middleware.Metrics(cfg.Metrics))

	// Credential routes are rate limited per client IP
	credentials := api.PathPrefix("/players").Subrouter()
	credentials.Use(loginLimiter.Middleware)
	credentials.HandleFunc("/register", playerHandler.Register).Methods(http.MethodPost)
	credentials.HandleFunc("/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	players := api.PathPrefix("/players").Subrouter()
	players.Use(authMiddleware)
	players.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	players.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Game routes (all require auth)
	games := api.PathPrefix("/game").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("/puzzle", gameHandler.NewPuzzle).Methods(http.MethodPost)
	games.HandleFunc("/puzzle", gameHandler.CurrentPuzzle).Methods(http.MethodGet)
	games.HandleFunc("/answer", gameHandler.Answer).Methods(http.MethodPost)
	games.HandleFunc("/hint", gameHandler.Hint).Methods(http.MethodPost)
	games.HandleFunc("/state", gameHandler.State).Methods(http.MethodGet)
	games.HandleFunc("/settings", gameHandler.UpdateSettings).Methods(http.MethodPatch)
	games.HandleFunc("/save", gameHandler.Save).Methods(http.MethodPost)
	games.HandleFunc("/load", gameHandler.Load).Methods(http.MethodPost)
	games.HandleFunc("/saves", gameHandler.Saves).Methods(http.MethodGet)
	games.HandleFunc("/reset", gameHandler.Reset).Methods(http.MethodPost)
	games.HandleFunc("/high-scores", gameHandler.HighScores).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
