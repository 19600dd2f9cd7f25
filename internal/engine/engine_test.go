package engine

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/songsnap/songsnap/internal/catalog"
	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
	"github.com/songsnap/songsnap/internal/store"
	mocks "github.com/songsnap/songsnap/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	db       *sql.DB
	queue    *store.SongQueueStore
	registry *store.IntegrationRegistry
	clients  map[models.Platform]*mocks.MockClient
	engine   *Engine
}

// newHarness wires an Engine against an in-memory database and mock catalog
// clients, with no platforms connected yet.
func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, shared.RunMigrations(db))

	h := &harness{
		db:       db,
		queue:    store.NewSongQueueStore(db),
		registry: store.NewIntegrationRegistry(db),
		clients:  map[models.Platform]*mocks.MockClient{},
	}
	for _, p := range models.Platforms() {
		h.clients[p] = &mocks.MockClient{PlatformName: p}
	}

	factory := func(platform models.Platform) (catalog.Client, error) {
		client, ok := h.clients[platform]
		if !ok {
			return nil, shared.ErrPlatformUnavailable
		}
		return client, nil
	}
	h.engine = NewEngine(h.queue, h.registry, factory)
	return h
}

func (h *harness) connect(t *testing.T, platform models.Platform, playlistID string) {
	t.Helper()
	connected := true
	require.NoError(t, h.registry.Update(platform, store.IntegrationUpdate{Connected: &connected}))
	require.NoError(t, h.registry.SetSelectedPlaylist(platform, playlistID, "Snapped Songs"))
}

func (h *harness) queueSong(t *testing.T, title, artist string) *models.QueuedSong {
	t.Helper()
	songs, err := h.queue.AppendBatch([]store.NewSong{{Title: title, Artist: artist, SourceImageURI: "file:///cap.png"}})
	require.NoError(t, err)
	return songs[0]
}

// matchOn makes a client resolve the given title/artist to one candidate.
func matchOn(client *mocks.MockClient, title, artist string, candidate catalog.Candidate) {
	client.SearchFunc = func(ctx context.Context, gotTitle, gotArtist string) (*catalog.Candidate, error) {
		if gotTitle == title && gotArtist == artist {
			c := candidate
			return &c, nil
		}
		return nil, nil
	}
}

func TestSyncAll(t *testing.T) {
	t.Run("adds a matched song and persists the status", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		song := h.queueSong(t, "Yesterday", "The Beatles")
		matchOn(h.clients[models.PlatformSpotify], "Yesterday", "The Beatles",
			catalog.Candidate{RemoteID: "t1", Album: "Help!", ImageURL: "https://img/1.jpg"})

		result, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Added)
		assert.Equal(t, StatusComplete, result.Status)
		require.Len(t, h.clients[models.PlatformSpotify].AddedIDs, 1)
		assert.Equal(t, []string{"t1"}, h.clients[models.PlatformSpotify].AddedIDs[0])

		got, err := h.queue.Get(song.ID)
		require.NoError(t, err)
		assert.True(t, got.SyncedOn(models.PlatformSpotify))
		st, _ := got.StatusFor(models.PlatformSpotify)
		assert.Equal(t, "t1", st.RemoteID)
		assert.Equal(t, "Help!", got.Album, "album should be enriched from the candidate")
	})

	t.Run("re-running a synced queue adds nothing", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		h.queueSong(t, "Yesterday", "The Beatles")
		matchOn(h.clients[models.PlatformSpotify], "Yesterday", "The Beatles", catalog.Candidate{RemoteID: "t1"})

		_, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err)

		second, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, 0, second.Added)
		assert.Equal(t, 1, second.Skipped)
		assert.Equal(t, StatusComplete, second.Status)
		assert.Len(t, h.clients[models.PlatformSpotify].AddedIDs, 1, "at most one add per song and platform")
	})

	t.Run("track already in playlist is marked synced without adding", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		song := h.queueSong(t, "Yesterday", "The Beatles")
		client := h.clients[models.PlatformSpotify]
		matchOn(client, "Yesterday", "The Beatles", catalog.Candidate{RemoteID: "t1"})
		client.Membership = map[string]bool{"t1": true}

		result, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, 0, result.Added)
		assert.Equal(t, 1, result.Duplicates)
		assert.Equal(t, StatusComplete, result.Status)
		assert.Empty(t, client.AddedIDs, "duplicate must not be re-added")

		got, err := h.queue.Get(song.ID)
		require.NoError(t, err)
		assert.True(t, got.SyncedOn(models.PlatformSpotify))
	})

	t.Run("unmatched song records a not-found failure", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		song := h.queueSong(t, "Obscure B-Side", "Nobody")

		result, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, StatusFailed, result.Status)
		require.Len(t, result.Pairs, 1)
		assert.Equal(t, OutcomeNotFound, result.Pairs[0].Outcome)

		got, err := h.queue.Get(song.ID)
		require.NoError(t, err)
		st, ok := got.StatusFor(models.PlatformSpotify)
		require.True(t, ok)
		assert.False(t, st.Synced)
		assert.Contains(t, st.Error, "no match")
	})

	t.Run("mid-batch failure keeps earlier statuses", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		first := h.queueSong(t, "First", "A")
		second := h.queueSong(t, "Second", "B")
		third := h.queueSong(t, "Third", "C")

		client := h.clients[models.PlatformSpotify]
		client.SearchFunc = func(ctx context.Context, title, artist string) (*catalog.Candidate, error) {
			if title == "Second" {
				return nil, errors.New("catalog blew up")
			}
			return &catalog.Candidate{RemoteID: "id-" + title}, nil
		}

		result, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err, "catalog failures are recorded, not raised")

		assert.Equal(t, 2, result.Added)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, StatusPartial, result.Status)

		for _, tc := range []struct {
			song   *models.QueuedSong
			synced bool
		}{
			{first, true},
			{second, false},
			{third, true},
		} {
			got, err := h.queue.Get(tc.song.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.synced, got.SyncedOn(models.PlatformSpotify), tc.song.Title)
		}
	})

	t.Run("rejected add is recorded and retriable", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		first := h.queueSong(t, "First", "A")
		second := h.queueSong(t, "Second", "B")
		third := h.queueSong(t, "Third", "C")

		client := h.clients[models.PlatformSpotify]
		client.SearchFunc = func(_ context.Context, title, artist string) (*catalog.Candidate, error) {
			return &catalog.Candidate{RemoteID: "id-" + title}, nil
		}
		client.AddFunc = func(_ context.Context, _ string, ids []string) error {
			if ids[0] == "id-Second" {
				return errors.New("remote rejected write")
			}
			return nil
		}

		result, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err, "add failures are recorded, not raised")

		assert.Equal(t, 2, result.Added)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, StatusPartial, result.Status)

		for _, song := range []*models.QueuedSong{first, third} {
			got, err := h.queue.Get(song.ID)
			require.NoError(t, err)
			assert.True(t, got.SyncedOn(models.PlatformSpotify), song.Title)
		}

		got, err := h.queue.Get(second.ID)
		require.NoError(t, err)
		st, ok := got.StatusFor(models.PlatformSpotify)
		require.True(t, ok)
		assert.False(t, st.Synced)
		assert.Contains(t, st.Error, "remote rejected write")

		// Once the platform accepts the write, the stored failure is
		// overwritten and the earlier successes are not re-added.
		client.AddFunc = nil
		rerun, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 1, rerun.Added)
		assert.Equal(t, 2, rerun.Skipped)
		assert.Equal(t, StatusComplete, rerun.Status)

		got, err = h.queue.Get(second.ID)
		require.NoError(t, err)
		assert.True(t, got.SyncedOn(models.PlatformSpotify))
	})

	t.Run("membership fetch failure is recorded per song", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		song := h.queueSong(t, "Yesterday", "The Beatles")
		client := h.clients[models.PlatformSpotify]
		matchOn(client, "Yesterday", "The Beatles", catalog.Candidate{RemoteID: "t1"})
		client.MemberErr = errors.New("playlist fetch timed out")

		result, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, StatusFailed, result.Status)
		assert.Empty(t, client.AddedIDs, "nothing is added without a membership view")

		got, err := h.queue.Get(song.ID)
		require.NoError(t, err)
		st, ok := got.StatusFor(models.PlatformSpotify)
		require.True(t, ok)
		assert.False(t, st.Synced)
		assert.Contains(t, st.Error, "playlist fetch timed out")

		client.MemberErr = nil
		rerun, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 1, rerun.Added)
	})

	t.Run("all duplicates is a complete run", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		h.queueSong(t, "Yesterday", "The Beatles")
		client := h.clients[models.PlatformSpotify]
		matchOn(client, "Yesterday", "The Beatles", catalog.Candidate{RemoteID: "t1"})
		client.Membership = map[string]bool{"t1": true}

		result, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, StatusComplete, result.Status)
	})

	t.Run("no active integrations", func(t *testing.T) {
		h := newHarness(t)
		h.queueSong(t, "Yesterday", "The Beatles")

		_, err := h.engine.SyncAll(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, IsNotConfigured(err))
	})

	t.Run("connected platform without a selected playlist is not a target", func(t *testing.T) {
		h := newHarness(t)
		connected := true
		require.NoError(t, h.registry.Update(models.PlatformSpotify, store.IntegrationUpdate{Connected: &connected}))
		h.queueSong(t, "Yesterday", "The Beatles")

		_, err := h.engine.SyncAll(context.Background(), nil)
		assert.True(t, IsNotConfigured(err))
	})

	t.Run("canceled context stops between songs with statuses kept", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		first := h.queueSong(t, "First", "A")
		h.queueSong(t, "Second", "B")

		ctx, cancel := context.WithCancel(context.Background())
		client := h.clients[models.PlatformSpotify]
		client.SearchFunc = func(_ context.Context, title, artist string) (*catalog.Candidate, error) {
			cancel() // takes effect before the next song starts
			return &catalog.Candidate{RemoteID: "id-" + title}, nil
		}

		result, err := h.engine.SyncAll(ctx, nil)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, result.Added)

		got, err := h.queue.Get(first.ID)
		require.NoError(t, err)
		assert.True(t, got.SyncedOn(models.PlatformSpotify), "completed pair survives cancellation")
	})

	t.Run("multiple platforms are reconciled independently", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		h.connect(t, models.PlatformYouTube, "pl2")
		song := h.queueSong(t, "Yesterday", "The Beatles")

		matchOn(h.clients[models.PlatformSpotify], "Yesterday", "The Beatles", catalog.Candidate{RemoteID: "t1"})
		// YouTube finds nothing.

		result, err := h.engine.SyncAll(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Added)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, StatusPartial, result.Status)

		got, err := h.queue.Get(song.ID)
		require.NoError(t, err)
		assert.True(t, got.SyncedOn(models.PlatformSpotify))
		assert.False(t, got.SyncedOn(models.PlatformYouTube))
	})
}

func TestSyncSingle(t *testing.T) {
	t.Run("syncs only the requested song", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")
		target := h.queueSong(t, "Yesterday", "The Beatles")
		other := h.queueSong(t, "Karma Police", "Radiohead")

		client := h.clients[models.PlatformSpotify]
		client.SearchFunc = func(_ context.Context, title, artist string) (*catalog.Candidate, error) {
			return &catalog.Candidate{RemoteID: "id-" + title}, nil
		}

		result, err := h.engine.SyncSingle(context.Background(), target.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Added)

		got, err := h.queue.Get(other.ID)
		require.NoError(t, err)
		_, touched := got.StatusFor(models.PlatformSpotify)
		assert.False(t, touched, "untargeted song must stay untouched")
	})

	t.Run("unknown song id", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t, models.PlatformSpotify, "pl1")

		_, err := h.engine.SyncSingle(context.Background(), "missing", nil)
		require.ErrorIs(t, err, shared.ErrSongNotFound)
	})
}

func TestRefreshConnections(t *testing.T) {
	t.Run("probe failure disconnects only the failing platform", func(t *testing.T) {
		h := newHarness(t)
		connected := true
		require.NoError(t, h.registry.Update(models.PlatformSpotify, store.IntegrationUpdate{Connected: &connected}))
		require.NoError(t, h.registry.Update(models.PlatformYouTube, store.IntegrationUpdate{Connected: &connected}))
		h.clients[models.PlatformYouTube].ProbeErr = errors.New("proxy unreachable")

		state, err := h.engine.RefreshConnections(context.Background(), nil)
		require.NoError(t, err)

		assert.True(t, state[models.PlatformSpotify].Connected)
		assert.False(t, state[models.PlatformYouTube].Connected)
		assert.Contains(t, state[models.PlatformYouTube].Error, "proxy unreachable")
	})

	t.Run("unavailable platforms are not probed", func(t *testing.T) {
		h := newHarness(t)

		state, err := h.engine.RefreshConnections(context.Background(), nil)
		require.NoError(t, err)

		assert.False(t, state[models.PlatformApple].Connected)
		assert.Empty(t, state[models.PlatformApple].Error)
	})

	t.Run("progress updates are delivered without blocking", func(t *testing.T) {
		h := newHarness(t)
		connected := true
		require.NoError(t, h.registry.Update(models.PlatformSpotify, store.IntegrationUpdate{Connected: &connected}))

		progress := make(chan ProgressUpdate, 1) // deliberately tiny
		_, err := h.engine.RefreshConnections(context.Background(), progress)
		require.NoError(t, err)
	})
}
