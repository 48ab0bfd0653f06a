package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/playrec/internal/formatter"
	"github.com/desertthunder/playrec/internal/viewstate"
	"github.com/urfave/cli/v3"
)

// Recommend runs one query through a controller and prints the view it ends on.
//
// The remaining arguments are joined with spaces to form the query; no arguments submits an empty query.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	format := cmd.String("format")

	controller := viewstate.New(viewstate.Options{
		Fetcher:    r.recommender,
		Session:    r.authenticator(),
		Logger:     r.logger,
		UseFetched: r.config.Recommender.UseFetched,
	})

	controller.UpdateQueryText(query)
	controller.Submit(ctx)
	view := controller.CurrentView()

	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteExport(view, format, out); err != nil {
			return err
		}
		r.logger.Info("recommendations exported", "file", out, "format", format)
		return r.writePlain("✓ Recommendations written to %s\n", out)
	}

	data, err := formatter.Render(view, format)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if format == formatter.FormatJSON {
		return r.writePlain("\n")
	}
	return nil
}
