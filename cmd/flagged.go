package main

import (
	"context"
	"fmt"

	"github.com/songsnap/songsnap/internal/shared"
	"github.com/urfave/cli/v3"
)

// FlaggedList prints the flagged-images ledger.
func (r *Runner) FlaggedList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureStores(); err != nil {
		return err
	}

	flags, err := r.flagged.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(flags, cmd.Bool("pretty"))
	}

	if len(flags) == 0 {
		return r.writePlain("No flagged images.\n")
	}

	for _, flag := range flags {
		r.writePlain("⚑ %s\n  %s\n  id: %s  flagged: %s\n",
			flag.ImageURI, flag.Error, flag.ID, flag.FlaggedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// FlaggedDismiss removes one flagged image by id.
func (r *Runner) FlaggedDismiss(ctx context.Context, cmd *cli.Command) error {
	flagID := cmd.StringArg("id")
	if flagID == "" {
		return fmt.Errorf("%w: flag id", shared.ErrMissingArgument)
	}

	if err := r.ensureStores(); err != nil {
		return err
	}

	if err := r.flagged.Dismiss(flagID); err != nil {
		return err
	}

	return r.writePlain("✓ Dismissed %s\n", flagID)
}

// FlaggedClear removes every flagged image.
func (r *Runner) FlaggedClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureStores(); err != nil {
		return err
	}

	if err := r.flagged.Clear(); err != nil {
		return err
	}

	return r.writePlain("✓ Flagged images cleared\n")
}
