package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/songsnap/songsnap/internal/engine"
	"github.com/songsnap/songsnap/internal/formatter"
	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
	"github.com/songsnap/songsnap/internal/store"
	"github.com/urfave/cli/v3"
)

// platformArg parses and validates the positional platform argument.
func platformArg(cmd *cli.Command) (models.Platform, error) {
	raw := strings.ToLower(strings.TrimSpace(cmd.StringArg("platform")))
	if raw == "" {
		return "", fmt.Errorf("%w: platform", shared.ErrMissingArgument)
	}
	platform := models.Platform(raw)
	if !platform.Valid() {
		return "", fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidInput, raw)
	}
	return platform, nil
}

// IntegrationsStatus prints the registry snapshot.
func (r *Runner) IntegrationsStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureStores(); err != nil {
		return err
	}

	state, err := r.registry.Get()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(state, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.IntegrationsToText(state))
}

// IntegrationsRefresh probes every available platform in parallel.
func (r *Runner) IntegrationsRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureStores(); err != nil {
		return err
	}

	r.writePlain("Probing platforms...\n\n")

	progressCh := make(chan engine.ProgressUpdate, 10)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			r.writePlain("  %s\n", update.Message)
		}
	}()

	state, err := r.engine.RefreshConnections(ctx, progressCh)
	close(progressCh)
	<-drained
	if err != nil {
		return err
	}

	r.writePlain("\n%s", formatter.IntegrationsToText(state))
	return nil
}

// IntegrationsConnect probes one platform and records the result.
func (r *Runner) IntegrationsConnect(ctx context.Context, cmd *cli.Command) error {
	platform, err := platformArg(cmd)
	if err != nil {
		return err
	}

	if !platform.DefaultAvailable() {
		return fmt.Errorf("%w: %s", shared.ErrPlatformUnavailable, platform.DisplayName())
	}

	if err := r.ensureStores(); err != nil {
		return err
	}

	client, err := r.clients(platform)
	if err != nil {
		return err
	}

	probeErr := client.Probe(ctx)
	connected := probeErr == nil
	errMsg := ""
	if probeErr != nil {
		errMsg = probeErr.Error()
	}

	if err := r.registry.Update(platform, store.IntegrationUpdate{Connected: &connected, Error: &errMsg}); err != nil {
		return err
	}

	if probeErr != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrAuthFailed, platform.DisplayName(), probeErr)
	}

	r.logger.Info("platform connected", "platform", platform)
	return r.writePlain("✓ %s connected\n", platform.DisplayName())
}

// IntegrationsDisconnect clears a platform's connection state.
func (r *Runner) IntegrationsDisconnect(ctx context.Context, cmd *cli.Command) error {
	platform, err := platformArg(cmd)
	if err != nil {
		return err
	}

	if err := r.ensureStores(); err != nil {
		return err
	}

	if err := r.registry.Disconnect(platform); err != nil {
		return err
	}

	r.logger.Info("platform disconnected", "platform", platform)
	return r.writePlain("✓ %s disconnected\n", platform.DisplayName())
}

// IntegrationsSelectPlaylist records the sync target playlist for a platform.
// The playlist is given by --id, or resolved by --name against the platform's
// playlists; an --id given alone gets its display name resolved the same way.
func (r *Runner) IntegrationsSelectPlaylist(ctx context.Context, cmd *cli.Command) error {
	platform, err := platformArg(cmd)
	if err != nil {
		return err
	}

	playlistID := cmd.String("id")
	playlistName := cmd.String("name")
	if playlistID == "" && playlistName == "" {
		return fmt.Errorf("%w: either --id or --name", shared.ErrMissingArgument)
	}

	if err := r.ensureStores(); err != nil {
		return err
	}

	if playlistID != "" && playlistName != "" {
		if err := r.registry.SetSelectedPlaylist(platform, playlistID, playlistName); err != nil {
			return err
		}
		r.logger.Info("playlist selected", "platform", platform, "playlist", playlistID)
		return r.writePlain("✓ %s will sync to %s (%s)\n", platform.DisplayName(), playlistName, playlistID)
	}

	client, err := r.clients(platform)
	if err != nil {
		return err
	}

	playlists, err := client.Playlists(ctx)
	if err != nil {
		return err
	}

	if playlistID == "" {
		for _, pl := range playlists {
			if strings.EqualFold(pl.Name, playlistName) {
				playlistID = pl.ID
				playlistName = pl.Name
				break
			}
		}
		if playlistID == "" {
			return fmt.Errorf("%w: no playlist named %q on %s", shared.ErrPlaylistNotFound, playlistName, platform.DisplayName())
		}
	} else {
		// An id given alone still needs the display name for status output.
		for _, pl := range playlists {
			if pl.ID == playlistID {
				playlistName = pl.Name
				break
			}
		}
		if playlistName == "" {
			return fmt.Errorf("%w: no playlist with id %q on %s", shared.ErrPlaylistNotFound, playlistID, platform.DisplayName())
		}
	}

	if err := r.registry.SetSelectedPlaylist(platform, playlistID, playlistName); err != nil {
		return err
	}

	r.logger.Info("playlist selected", "platform", platform, "playlist", playlistID)
	return r.writePlain("✓ %s will sync to %s (%s)\n", platform.DisplayName(), playlistName, playlistID)
}
