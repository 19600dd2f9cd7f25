package catalog

import (
	"context"
	"fmt"

	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
)

// UnavailableClient satisfies [Client] for platforms without an adapter yet
// (Apple Music, Amazon Music). Every operation fails with
// [shared.ErrPlatformUnavailable].
type UnavailableClient struct {
	platform models.Platform
}

// NewUnavailableClient creates a stub client for the given platform.
func NewUnavailableClient(platform models.Platform) *UnavailableClient {
	return &UnavailableClient{platform: platform}
}

func (u *UnavailableClient) Platform() models.Platform {
	return u.platform
}

func (u *UnavailableClient) err() error {
	return fmt.Errorf("%w: %s", shared.ErrPlatformUnavailable, u.platform.DisplayName())
}

func (u *UnavailableClient) Search(ctx context.Context, title, artist string) (*Candidate, error) {
	return nil, u.err()
}

func (u *UnavailableClient) ListMembership(ctx context.Context, playlistID string) (map[string]bool, error) {
	return nil, u.err()
}

func (u *UnavailableClient) AddItems(ctx context.Context, playlistID string, remoteIDs []string) error {
	return u.err()
}

func (u *UnavailableClient) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return nil, u.err()
}

func (u *UnavailableClient) Probe(ctx context.Context) error {
	return u.err()
}
