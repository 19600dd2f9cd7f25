package main

import (
	"context"
	"fmt"
	"os"

	"github.com/songsnap/songsnap/internal/intake"
	"github.com/songsnap/songsnap/internal/shared"
	"github.com/urfave/cli/v3"
)

// Intake runs the batch intake pipeline over the given image files.
func (r *Runner) Intake(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one image path", shared.ErrMissingArgument)
	}

	if err := r.ensureStores(); err != nil {
		return err
	}

	images := make([]intake.ImageSource, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read image %s: %w", path, err)
		}
		images = append(images, intake.ImageSource{URI: path, Data: data})
	}

	r.logger.Info("starting intake", "images", len(images))

	pipeline := r.pipeline()
	pipeline.KeepLowConfidence = cmd.Bool("keep-low-confidence")

	result, err := pipeline.Process(ctx, images)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Intake Complete")
	r.writePlain("Images processed: %d\n", len(result.Images))
	r.writePlain("Songs queued: %d\n", len(result.QueuedSongs))
	r.writePlain("Images flagged: %d\n", result.FlaggedCount)

	for _, img := range result.Images {
		if img.Flagged {
			r.writePlain("  ⚑ %s: %s\n", img.ImageURI, img.Error)
		} else {
			r.writePlain("  ✓ %s: %d song(s) queued\n", img.ImageURI, img.Queued)
		}
	}

	return nil
}
