// package testing contains shared testing utilities
package testing

import (
	"context"

	"github.com/songsnap/songsnap/internal/catalog"
	"github.com/songsnap/songsnap/internal/models"
)

// MockClient is a configurable test double for [catalog.Client].
//
// Zero value behaves as an empty but healthy platform: searches miss,
// playlists are empty, adds and probes succeed.
type MockClient struct {
	PlatformName models.Platform
	SearchFunc   func(ctx context.Context, title, artist string) (*catalog.Candidate, error)
	Membership   map[string]bool
	MemberErr    error
	AddErr       error
	AddFunc      func(ctx context.Context, playlistID string, remoteIDs []string) error
	AddedIDs     [][]string
	PlaylistList []models.Playlist
	ProbeErr     error
}

func (m *MockClient) Platform() models.Platform { return m.PlatformName }

func (m *MockClient) Search(ctx context.Context, title, artist string) (*catalog.Candidate, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, title, artist)
	}
	return nil, nil
}

func (m *MockClient) ListMembership(ctx context.Context, playlistID string) (map[string]bool, error) {
	if m.MemberErr != nil {
		return nil, m.MemberErr
	}
	if m.Membership == nil {
		return map[string]bool{}, nil
	}
	return m.Membership, nil
}

func (m *MockClient) AddItems(ctx context.Context, playlistID string, remoteIDs []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	if m.AddFunc != nil {
		if err := m.AddFunc(ctx, playlistID, remoteIDs); err != nil {
			return err
		}
	}
	m.AddedIDs = append(m.AddedIDs, remoteIDs)
	if m.Membership == nil {
		m.Membership = map[string]bool{}
	}
	for _, id := range remoteIDs {
		m.Membership[id] = true
	}
	return nil
}

func (m *MockClient) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return m.PlaylistList, nil
}

func (m *MockClient) Probe(ctx context.Context) error { return m.ProbeErr }

// MockDetector is a test double for [detect.Detector].
type MockDetector struct {
	Songs []models.DetectedSong
	Err   error
	Calls int
}

func (m *MockDetector) Detect(ctx context.Context, image []byte) ([]models.DetectedSong, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Songs, nil
}
