package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskboard-service/config"
	"taskboard-service/handlers"
	"taskboard-service/logging"
	"taskboard-service/repositories"
	"taskboard-service/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func loadBlackList(cfg *config.Config) map[string]bool {
	if cfg.PasswordBlacklistFile == "" {
		return nil
	}
	blackList, err := services.LoadBlackList(cfg.PasswordBlacklistFile)
	if err != nil {
		logging.Logger.Warnf("Event ID: BLACKLIST_LOAD_FAILED, Description: Could not load %s: %v", cfg.PasswordBlacklistFile, err)
		return nil
	}
	logging.Logger.Infof("Event ID: BLACKLIST_LOADED, Description: Loaded %d blacklisted passwords", len(blackList))
	return blackList
}

// buildHandler wires services and handlers onto store.
func buildHandler(cfg *config.Config, store *repositories.Store) http.Handler {
	ids := services.NewIDGenerator()
	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	breaker := services.NewStorageBreaker("storage-cb", cfg.BreakerMaxFailures, cfg.BreakerTimeout)

	userService := services.NewUserService(store.Users, jwtService, ids, loadBlackList(cfg), cfg.BcryptCost, breaker)
	projectService := services.NewProjectService(store.Projects, ids, breaker)
	taskService := services.NewTaskService(store.Tasks, ids, breaker)
	commentService := services.NewCommentService(store.Comments, store.Tasks, ids, breaker)

	return handlers.NewRouter(handlers.Router{
		Auth:       handlers.NewAuthHandler(userService),
		Projects:   handlers.NewProjectHandler(projectService),
		Tasks:      handlers.NewTaskHandler(taskService, commentService),
		Comments:   handlers.NewCommentHandler(commentService),
		Health:     handlers.NewHealthHandler(store),
		Validator:  jwtService,
		CORSOrigin: cfg.CORSOrigin,
	})
}

func serve(ctx context.Context, cfg *config.Config) error {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := openStore(connectCtx, cfg)
	if err != nil {
		cancel()
		return err
	}
	store = withCache(connectCtx, cfg, store)
	cancel()
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logging.Logger.Errorf("Event ID: DB_CLOSE_FAILED, Description: %v", err)
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           buildHandler(cfg, store),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Infof("Event ID: SERVER_START, Description: Server listening on %s (storage: %s)", server.Addr, describeStore(cfg))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Logger.Infof("Event ID: SERVER_SHUTDOWN, Description: Shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logging.Logger.Infof("Event ID: SERVER_STOPPED, Description: Server stopped gracefully")
	return nil
}
