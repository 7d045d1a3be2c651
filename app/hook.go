package app

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const shutdownTimeout = 15 * time.Second

// Shutdown stops accepting HTTP requests and stops the modules.
func (app *App) Shutdown() error {
	app.Logger.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.HTTPServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
	}
	if err := app.LeaderboardModule.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := app.RoundModule.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close releases the event bus and the database pool. Call it after the
// modules have stopped.
func (app *App) Close() error {
	var errs []error
	if err := app.EventBus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event bus close: %w", err))
	}
	if err := app.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
