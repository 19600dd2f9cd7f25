package main

import (
	"context"
	"fmt"

	"github.com/songsnap/songsnap/internal/formatter"
	"github.com/songsnap/songsnap/internal/shared"
	"github.com/urfave/cli/v3"
)

// QueueList prints the queue with per-platform sync badges.
func (r *Runner) QueueList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureStores(); err != nil {
		return err
	}

	songs, err := r.queue.List()
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(songs, cmd.Bool("pretty"))
	case cmd.Bool("csv"):
		data, err := formatter.QueueToCSV(songs)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	default:
		return r.writePlain("%s", formatter.QueueToText(songs))
	}
}

// QueueRemove removes one song by id.
func (r *Runner) QueueRemove(ctx context.Context, cmd *cli.Command) error {
	songID := cmd.StringArg("id")
	if songID == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	if err := r.ensureStores(); err != nil {
		return err
	}

	if err := r.queue.Remove(songID); err != nil {
		return err
	}

	r.logger.Info("song removed", "id", songID)
	return r.writePlain("✓ Removed %s\n", songID)
}

// QueueClear removes every queued song.
func (r *Runner) QueueClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureStores(); err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		songs, err := r.queue.List()
		if err != nil {
			return err
		}
		r.writePlain("About to remove %d queued song(s). Re-run with --yes to confirm.\n", len(songs))
		return nil
	}

	if err := r.queue.Clear(); err != nil {
		return err
	}

	r.logger.Info("queue cleared")
	return r.writePlain("✓ Queue cleared\n")
}
