package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/songsnap/songsnap/internal/engine"
	"github.com/songsnap/songsnap/internal/formatter"
	"github.com/songsnap/songsnap/internal/shared"
	"github.com/urfave/cli/v3"
)

// SyncRun reconciles the queue (or one song) against all active platforms.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureStores(); err != nil {
		return err
	}

	songID := cmd.String("song")
	report := cmd.String("report")
	switch report {
	case "", "text", "json", "markdown":
	default:
		return fmt.Errorf("%w: --report must be text, json, or markdown", shared.ErrInvalidFlag)
	}

	r.logger.Info("starting sync", "song", songID)
	r.writePlain("Starting sync...\n\n")

	progressCh := make(chan engine.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			switch update.Phase {
			case engine.SyncSong:
				r.writePlain("♪ %s\n", update.Message)
			case engine.AddToPlaylist:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	var result *engine.BatchResult
	var err error
	if songID != "" {
		result, err = r.engine.SyncSingle(ctx, songID, progressCh)
	} else {
		result, err = r.engine.SyncAll(ctx, progressCh)
	}
	close(progressCh)
	<-drained

	if err != nil {
		if errors.Is(err, shared.ErrNoIntegrations) {
			r.writePlain("No platform is connected with a selected playlist.\n")
			r.writePlain("Run 'songsnap integrations refresh' and 'songsnap integrations select-playlist' first.\n")
			return err
		}
		return err
	}

	switch report {
	case "json":
		return r.writeJSON(result, true)
	case "markdown":
		return r.writePlain("%s", formatter.ReportToMarkdown(result))
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync " + string(result.Status))
	r.writePlain("Added: %d\n", result.Added)
	r.writePlain("Already present: %d\n", result.Duplicates)
	r.writePlain("Failed: %d\n", result.Failed)
	r.writePlain("Skipped: %d\n", result.Skipped)

	if result.Failed > 0 {
		r.writePlainln("Failures:")
		for _, pair := range result.Pairs {
			if pair.Outcome == engine.OutcomeFailed || pair.Outcome == engine.OutcomeNotFound {
				r.writePlain("  ✗ %s - %s on %s: %s\n", pair.Artist, pair.Title, pair.Platform, pair.Error)
			}
		}
	}

	return nil
}
