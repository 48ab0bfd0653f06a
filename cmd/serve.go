package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/playrec/internal/metrics"
	"github.com/desertthunder/playrec/internal/repositories"
	"github.com/desertthunder/playrec/internal/shared"
	"github.com/desertthunder/playrec/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web app until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = port
	}

	handler, cleanup, err := r.webHandler()
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("serving recommender", "addr", "http://"+cfg.Addr(), "proxy", r.api.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// webHandler builds the web app. Spotify sign-in needs the session database; without credentials it runs
// with local sign-in and no database.
func (r *Runner) webHandler() (http.Handler, func(), error) {
	opts := web.Options{
		Fetcher:    r.recommender,
		Logger:     r.logger,
		UseFetched: r.config.Recommender.UseFetched,
		RateLimit:  r.config.Server.RateLimit,
		Burst:      r.config.Server.Burst,
	}
	if r.config.Server.Metrics {
		opts.Metrics = metrics.New()
	}

	cleanup := func() {}
	if r.spotify != nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session database: %w", err)
		}
		cleanup = func() { closeDB(r, db) }

		opts.OAuth = r.spotify
		opts.Sessions = repositories.NewSessionRepository(db)
	} else {
		r.logger.Warn("spotify credentials not configured, sign-in is local only")
	}

	app, err := web.New(opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return app.Handler(), cleanup, nil
}

func closeDB(r *Runner, db *sql.DB) {
	if err := db.Close(); err != nil {
		r.logger.Warn("failed to close database", "error", err)
	}
}
