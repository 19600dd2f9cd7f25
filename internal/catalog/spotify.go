// Spotify Web API implementation of [Client]
//
// Response types follow https://developer.spotify.com/documentation/web-api/reference/
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sethvargo/go-retry"
	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyCredentials carries everything needed to build an authenticated client.
type SpotifyCredentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
}

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

type spotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	URI     string          `json:"uri"`
	Artists []spotifyArtist `json:"artists"`
	Album   spotifyAlbum    `json:"album"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyPlaylistTrackPage struct {
	Items []struct {
		Track spotifyTrack `json:"track"`
	} `json:"items"`
	Next *string `json:"next"`
}

type spotifyPlaylistPage struct {
	Items []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Tracks struct {
			Total int `json:"total"`
		} `json:"tracks"`
	} `json:"items"`
	Next *string `json:"next"`
}

// SpotifyClient implements [Client] against the Spotify Web API.
// Uses [oauth2] for bearer auth with automatic token refresh.
type SpotifyClient struct {
	config     *oauth2.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	threshold  float64
}

// NewSpotifyClient creates an authenticated Spotify client.
func NewSpotifyClient(creds SpotifyCredentials, opts Opts) (*SpotifyClient, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing spotify client id or secret", shared.ErrMissingConfig)
	}
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("%w: spotify", shared.ErrMissingToken)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes: []string{
			"user-read-private",
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}

	httpClient := config.Client(context.Background(), token)
	if opts.HTTPClient != nil {
		httpClient = opts.HTTPClient
	}

	return &SpotifyClient{
		config:     config,
		httpClient: httpClient,
		limiter:    opts.limiter(),
		threshold:  opts.threshold(),
	}, nil
}

func (s *SpotifyClient) Platform() models.Platform {
	return models.PlatformSpotify
}

// doRequest performs a rate-limited, retrying HTTP request against the Spotify API.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	return withRetry(ctx, func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader *bytes.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, spotifyBaseURL+endpoint, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			err := fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
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

// Search finds the best track match for a title/artist pair.
func (s *SpotifyClient) Search(ctx context.Context, title, artist string) (*Candidate, error) {
	query := fmt.Sprintf("track:%s artist:%s", cleanTitle(title), artist)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=10", url.QueryEscape(query))

	var response spotifySearchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		cand := Candidate{
			RemoteID:    item.ID,
			DisplayName: item.Name,
			Album:       item.Album.Name,
		}
		if len(item.Artists) > 0 {
			cand.Artist = item.Artists[0].Name
		}
		if len(item.Album.Images) > 0 {
			cand.ImageURL = item.Album.Images[0].URL
		}
		candidates = append(candidates, cand)
	}

	return bestMatch(title, artist, candidates, s.threshold), nil
}

// ListMembership returns the track ids currently in the playlist, following pagination.
func (s *SpotifyClient) ListMembership(ctx context.Context, playlistID string) (map[string]bool, error) {
	members := make(map[string]bool)
	endpoint := fmt.Sprintf("/playlists/%s/tracks?fields=items(track(id)),next&limit=100", playlistID)

	for {
		var page spotifyPlaylistTrackPage
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track.ID != "" {
				members[item.Track.ID] = true
			}
		}

		if page.Next == nil {
			break
		}

		next, err := url.Parse(*page.Next)
		if err != nil {
			return nil, fmt.Errorf("failed to parse next page URL: %w", err)
		}
		endpoint = next.Path[len("/v1"):] + "?" + next.RawQuery
	}

	return members, nil
}

// AddItems appends tracks to the playlist.
func (s *SpotifyClient) AddItems(ctx context.Context, playlistID string, remoteIDs []string) error {
	if len(remoteIDs) == 0 {
		return nil
	}

	uris := make([]string, len(remoteIDs))
	for i, id := range remoteIDs {
		uris[i] = "spotify:track:" + id
	}

	body := map[string]any{"uris": uris}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)

	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAddFailed, err)
	}
	return nil
}

// Playlists lists the current user's playlists, following pagination.
func (s *SpotifyClient) Playlists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	endpoint := "/me/playlists?limit=50"

	for {
		var page spotifyPlaylistPage
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			playlists = append(playlists, models.Playlist{
				ID:         item.ID,
				Name:       item.Name,
				TrackCount: item.Tracks.Total,
			})
		}

		if page.Next == nil {
			break
		}

		next, err := url.Parse(*page.Next)
		if err != nil {
			return nil, fmt.Errorf("failed to parse next page URL: %w", err)
		}
		endpoint = next.Path[len("/v1"):] + "?" + next.RawQuery
	}

	return playlists, nil
}

// Probe verifies auth by fetching the current user's profile.
func (s *SpotifyClient) Probe(ctx context.Context) error {
	var profile struct {
		ID string `json:"id"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &profile); err != nil {
		return err
	}
	if profile.ID == "" {
		return fmt.Errorf("%w: spotify returned empty profile", shared.ErrAuthFailed)
	}
	return nil
}
