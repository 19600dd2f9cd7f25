// YouTube Music [Client] implementation
//
// Communicates with the FastAPI proxy server wrapping the ytmusicapi Python
// library. The proxy handles browser-header auth; this client only needs the
// base URL.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sethvargo/go-retry"
	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
	"golang.org/x/time/rate"
)

const defaultYTBaseURL = "http://localhost:8080"

type youtubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type youtubeTrack struct {
	VideoID    string             `json:"videoId"`
	Title      string             `json:"title"`
	Artists    []youtubeArtist    `json:"artists"`
	Album      *youtubeAlbum      `json:"album"`
	Thumbnails []youtubeThumbnail `json:"thumbnails"`
}

type youtubePlaylist struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	TrackCount int            `json:"trackCount"`
	Tracks     []youtubeTrack `json:"tracks"`
}

// YouTubeClient implements [Client] for YouTube Music via the proxy.
type YouTubeClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	threshold  float64
}

// NewYouTubeClient creates a YouTube Music client against the given proxy URL.
func NewYouTubeClient(baseURL string, opts Opts) *YouTubeClient {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &YouTubeClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    opts.limiter(),
		threshold:  opts.threshold(),
	}
}

func (y *YouTubeClient) Platform() models.Platform {
	return models.PlatformYouTube
}

// doRequest performs a rate-limited, retrying request against the proxy.
func (y *YouTubeClient) doRequest(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	return withRetry(ctx, func(ctx context.Context) error {
		if err := y.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, y.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := y.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			data, _ := io.ReadAll(resp.Body)
			err := fmt.Errorf("%w: proxy status %d: %s", shared.ErrAPIRequest, resp.StatusCode, string(data))
			if retryableStatus(resp.StatusCode) {
				return retry.RetryableError(err)
			}
			return err
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil
	})
}

// Search finds the best video match for a title/artist pair.
func (y *YouTubeClient) Search(ctx context.Context, title, artist string) (*Candidate, error) {
	query := url.QueryEscape(fmt.Sprintf("%s %s", artist, cleanTitle(title)))
	path := fmt.Sprintf("/api/search?q=%s&filter=songs&limit=10", query)

	var results []youtubeTrack
	if err := y.doRequest(ctx, http.MethodGet, path, nil, &results); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(results))
	for _, track := range results {
		cand := Candidate{
			RemoteID:    track.VideoID,
			DisplayName: track.Title,
		}
		if len(track.Artists) > 0 {
			cand.Artist = track.Artists[0].Name
		}
		if track.Album != nil {
			cand.Album = track.Album.Name
		}
		if len(track.Thumbnails) > 0 {
			cand.ImageURL = track.Thumbnails[len(track.Thumbnails)-1].URL
		}
		candidates = append(candidates, cand)
	}

	return bestMatch(title, artist, candidates, y.threshold), nil
}

// ListMembership returns the video ids currently in the playlist.
func (y *YouTubeClient) ListMembership(ctx context.Context, playlistID string) (map[string]bool, error) {
	path := fmt.Sprintf("/api/playlists/%s", url.PathEscape(playlistID))

	var playlist youtubePlaylist
	if err := y.doRequest(ctx, http.MethodGet, path, nil, &playlist); err != nil {
		return nil, err
	}

	members := make(map[string]bool, len(playlist.Tracks))
	for _, track := range playlist.Tracks {
		if track.VideoID != "" {
			members[track.VideoID] = true
		}
	}
	return members, nil
}

// AddItems appends videos to the playlist.
func (y *YouTubeClient) AddItems(ctx context.Context, playlistID string, remoteIDs []string) error {
	if len(remoteIDs) == 0 {
		return nil
	}

	path := fmt.Sprintf("/api/playlists/%s/items", url.PathEscape(playlistID))
	body := map[string]any{"videoIds": remoteIDs}

	if err := y.doRequest(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAddFailed, err)
	}
	return nil
}

// Playlists lists the user's library playlists.
func (y *YouTubeClient) Playlists(ctx context.Context) ([]models.Playlist, error) {
	var results []youtubePlaylist
	if err := y.doRequest(ctx, http.MethodGet, "/api/library/playlists", nil, &results); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(results))
	for _, pl := range results {
		playlists = append(playlists, models.Playlist{
			ID:         pl.ID,
			Name:       pl.Title,
			TrackCount: pl.TrackCount,
		})
	}
	return playlists, nil
}

// Probe checks proxy health and authentication state.
func (y *YouTubeClient) Probe(ctx context.Context) error {
	var health struct {
		Status        string `json:"status"`
		Authenticated bool   `json:"authenticated"`
	}
	if err := y.doRequest(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return err
	}
	if !health.Authenticated {
		return fmt.Errorf("%w: proxy reports unauthenticated", shared.ErrNotAuthenticated)
	}
	return nil
}
