package catalog

import (
	"fmt"

	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
)

// NewFactory builds a [Factory] from application configuration. Clients are
// constructed lazily per call so credential problems surface as per-platform
// errors instead of startup failures.
func NewFactory(cfg *shared.Config) Factory {
	opts := Opts{
		RateLimit:      cfg.Sync.RateLimit,
		MatchThreshold: cfg.Sync.MatchThreshold,
	}

	return func(platform models.Platform) (Client, error) {
		switch platform {
		case models.PlatformSpotify:
			return NewSpotifyClient(SpotifyCredentials{
				ClientID:     cfg.Credentials.Spotify.ClientID,
				ClientSecret: cfg.Credentials.Spotify.ClientSecret,
				AccessToken:  cfg.Credentials.Spotify.AccessToken,
				RefreshToken: cfg.Credentials.Spotify.RefreshToken,
			}, opts)
		case models.PlatformYouTube:
			return NewYouTubeClient(cfg.Credentials.YouTube.ProxyURL, opts), nil
		case models.PlatformApple, models.PlatformAmazon:
			return NewUnavailableClient(platform), nil
		default:
			return nil, fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidInput, platform)
		}
	}
}
