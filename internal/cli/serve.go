package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/bananamath/internal/api"
	"github.com/mcoot/bananamath/internal/api/middleware"
	"github.com/mcoot/bananamath/internal/config"
	"github.com/mcoot/bananamath/internal/factory"
	"github.com/mcoot/bananamath/internal/logging"
)

const sessionSweepInterval = time.Minute

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Long: `Run the JSON API server. Settings come from the environment
(JWT_SECRET is required; see STORAGE_TYPE, REDIS_URL, SQLITE_PATH, HTTP_ADDR).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.Load()
			if err != nil {
				return err
			}

			level := env.LogLevel
			if env.Debug {
				level = "DEBUG"
			}
			logger := logging.New(os.Stdout, level, env.AppName)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, env, logger)
		},
	}
}

// serve runs the API until ctx is cancelled, then shuts down gracefully
func serve(ctx context.Context, env config.Config, logger *slog.Logger) error {
	// Create application factory
	app, err := factory.New(ctx, factory.FromEnv(env, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthManager: app.AuthManager,
		Sessions:    app.Sessions,
		Metrics:     app.Metrics,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: env.LoginRatePerSecond,
			Burst:             env.LoginRateBurst,
			IdleTTL:           middleware.DefaultRateLimitConfig().IdleTTL,
		},
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = env.HTTPAddr
	server := api.NewServer(router, serverConfig, logger)

	go sweepSessions(ctx, app, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-server.Ready():
		logger.Info("server started", slog.String("addr", server.Addr()))
	case err := <-errCh:
		logger.Error("server failed to start", slog.String("error", err.Error()))
		return err
	}

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

// sweepSessions drops expired sessions and idle login counters until ctx
// is done
func sweepSessions(ctx context.Context, app *factory.App, logger *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.AuthManager.CleanExpiredSessions(); n > 0 {
				logger.Info("expired sessions removed", slog.Int("count", n))
			}
			if n := app.AuthManager.PruneLoginAttempts(); n > 0 {
				logger.Debug("idle login attempts pruned", slog.Int("count", n))
			}
			app.Metrics.SetActiveSessions(app.Sessions.Len())
		}
	}
}
