package cli

import (
	"context"
	"time"

	"matdepot/authctl/internal/handlers"
	"matdepot/authctl/internal/jobs"
	"matdepot/authctl/internal/server"
)

// cmdServe hosts the session-management API locally until the context
// is cancelled. A cron job re-checks the held token periodically so a
// remote revocation drops the server back to anonymous.
func (a *App) cmdServe(ctx context.Context) error {
	handlerSet := handlers.NewHandlerSet(a.log, a.manager, a.sessions)
	httpServer := server.NewHTTPServer(a.cfg, a.log, handlerSet)

	scheduler := jobs.NewScheduler(a.manager, a.log)
	if err := scheduler.Start(a.cfg.Serve.RevalidateInterval); err != nil {
		a.log.Error().Err(err).Msg("scheduler start failed")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		scheduler.Stop()
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("graceful shutdown failed")
	}
	scheduler.Stop()

	a.log.Info().Msg("server exited cleanly")
	return nil
}
