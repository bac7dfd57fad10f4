package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/user-registry/internal/adapter/cassandra"
	userrepo "github.com/heartmarshall/user-registry/internal/adapter/cassandra/user"
	"github.com/heartmarshall/user-registry/internal/config"
	usersvc "github.com/heartmarshall/user-registry/internal/service/user"
	"github.com/heartmarshall/user-registry/internal/transport/middleware"
	"github.com/heartmarshall/user-registry/internal/transport/rest"
)

// startupPingTimeout bounds the informational ping made at startup.
const startupPingTimeout = 5 * time.Second

// Run is the application entry point. It loads configuration from
// configPath (empty means ./config.yaml when present, then ENV), wires the
// Cassandra store, the user service and the HTTP router, and serves until
// ctx is cancelled.
func Run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("keyspace", cfg.Cassandra.Keyspace),
	)

	provider, err := cassandra.NewProvider(cfg.Cassandra, logger)
	if err != nil {
		return fmt.Errorf("cassandra: %w", err)
	}
	checkStore(ctx, provider, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      newHandler(cfg, logger, provider, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return serve(ctx, srv, cfg.Server.ShutdownTimeout, logger)
}

// newHandler builds the repository, service and router on top of provider.
func newHandler(cfg *config.Config, logger *slog.Logger, provider *cassandra.Provider, limiter *middleware.RateLimiter) http.Handler {
	repo := userrepo.New(provider, logger)
	svc := usersvc.NewService(logger, repo)

	return rest.NewRouter(rest.RouterDeps{
		Users:     rest.NewUserHandler(svc, logger),
		Health:    rest.NewHealthHandler(provider, BuildVersion()),
		Limiter:   limiter,
		Logger:    logger,
		CORS:      cfg.CORS,
		RateLimit: cfg.RateLimit,
	})
}

// checkStore pings the cluster once and logs the outcome. A failure is not
// fatal: the readiness probe keeps reporting it until the cluster is up.
func checkStore(ctx context.Context, provider *cassandra.Provider, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()

	if err := provider.Ping(ctx); err != nil {
		logger.Warn("cassandra not reachable at startup",
			slog.Any("hosts", provider.Hosts()),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Info("cassandra reachable", slog.Any("hosts", provider.Hosts()))
}

// serve runs srv until ctx is done, then shuts it down gracefully within
// shutdownTimeout.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return <-errCh
}
