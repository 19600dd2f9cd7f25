// package catalog defines the per-platform catalog Client interface and its
// implementations.
//
// Spotify talks to the Web API directly with an oauth2 bearer. YouTube Music
// goes through the FastAPI proxy wrapping ytmusicapi. Apple Music and Amazon
// Music are stubs that report unavailable.
package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/songsnap/songsnap/internal/models"
	"golang.org/x/time/rate"
)

// Candidate is the best search hit for a title/artist pair on one platform.
type Candidate struct {
	RemoteID    string `json:"remote_id"`
	DisplayName string `json:"display_name"`
	Artist      string `json:"artist"`
	Album       string `json:"album,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Client is the catalog adapter for one platform.
type Client interface {
	// Platform returns the platform this client serves.
	Platform() models.Platform

	// Search looks up the best catalog match for a title/artist pair.
	// Returns (nil, nil) when the catalog has no acceptable match; an error
	// indicates a transport or auth failure, not a miss.
	Search(ctx context.Context, title, artist string) (*Candidate, error)

	// ListMembership returns the set of remote item ids currently in the playlist.
	ListMembership(ctx context.Context, playlistID string) (map[string]bool, error)

	// AddItems appends the given remote ids to the playlist.
	AddItems(ctx context.Context, playlistID string, remoteIDs []string) error

	// Playlists lists the authenticated user's playlists.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// Probe checks live connectivity and auth with a cheap call.
	Probe(ctx context.Context) error
}

// Factory resolves a Client for a platform. Implementations return
// [shared.ErrPlatformUnavailable]-wrapped errors for unknown platforms.
type Factory func(platform models.Platform) (Client, error)

// Opts tunes shared client behavior.
type Opts struct {
	HTTPClient     *http.Client
	RateLimit      float64 // requests per second; <= 0 disables limiting
	MatchThreshold float64 // minimum Jaro-Winkler similarity, default 0.85
}

func (o Opts) limiter() *rate.Limiter {
	if o.RateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(o.RateLimit), 1)
}

func (o Opts) threshold() float64 {
	if o.MatchThreshold <= 0 {
		return defaultMatchThreshold
	}
	return o.MatchThreshold
}

// withRetry runs fn with fibonacci backoff, retrying only errors fn marked
// retryable (HTTP 429 and 5xx).
func withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(3, retry.NewFibonacci(250*time.Millisecond))
	return retry.Do(ctx, b, fn)
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
