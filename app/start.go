package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// Run starts the modules and the HTTP server and blocks until ctx is canceled
// or the server fails. It shuts everything down before returning.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go app.LeaderboardModule.Run(ctx, &wg)
	go app.RoundModule.Run(ctx, &wg)

	serverErr := make(chan error, 1)
	go func() {
		app.Logger.InfoContext(ctx, "Starting HTTP server", slog.String("address", app.HTTPServer.Addr))
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	cancel()
	if err := app.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	wg.Wait()
	if err := app.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
