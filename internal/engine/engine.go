// package engine implements the sync reconciliation engine.
//
// For one song × platform pair the engine runs dedup-check → search → add →
// status write, and composes that across the whole queue and every connected
// platform. Per-pair failures are captured as status data, never thrown:
// only store-level failures abort a run. Operations emit progress updates
// via channels for non-blocking status reporting to CLI/UI layers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/songsnap/songsnap/internal/catalog"
	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
	"github.com/songsnap/songsnap/internal/store"
)

// QueueStore is the queue surface the engine needs.
type QueueStore interface {
	List() ([]*models.QueuedSong, error)
	Get(id string) (*models.QueuedSong, error)
	UpdateSyncStatus(songID string, platform models.Platform, status models.PlatformSyncStatus) error
	Enrich(songID, album, imageURL string) error
}

// Registry is the integration-registry surface the engine needs.
type Registry interface {
	Get() (models.IntegrationsState, error)
	Update(platform models.Platform, update store.IntegrationUpdate) error
}

// Engine reconciles queued songs against platform playlists.
//
// The engine holds no long-lived sync state of its own: it re-reads queue
// and registry state at the start of each operation and writes statuses back
// incrementally, so an interrupted batch loses at most the in-flight pair.
type Engine struct {
	queue    QueueStore
	registry Registry
	clients  catalog.Factory
}

// NewEngine creates an Engine with injected stores and catalog client factory.
func NewEngine(queue QueueStore, registry Registry, clients catalog.Factory) *Engine {
	return &Engine{
		queue:    queue,
		registry: registry,
		clients:  clients,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls reconciliation.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SyncAll reconciles every queued song against every active platform.
//
// Songs are processed in queue order; platform calls for one song are
// sequential so the song's status record never sees interleaved writes.
// A canceled context stops the run after the in-flight pair, keeping the
// statuses persisted so far. Returns [shared.ErrNoIntegrations] when no
// platform is connected with a selected playlist.
func (e *Engine) SyncAll(ctx context.Context, progress chan<- ProgressUpdate) (*BatchResult, error) {
	songs, err := e.queue.List()
	if err != nil {
		return nil, err
	}
	return e.syncBatch(ctx, songs, progress)
}

// SyncSingle reconciles one queued song against every active platform.
func (e *Engine) SyncSingle(ctx context.Context, songID string, progress chan<- ProgressUpdate) (*BatchResult, error) {
	song, err := e.queue.Get(songID)
	if err != nil {
		return nil, err
	}
	return e.syncBatch(ctx, []*models.QueuedSong{song}, progress)
}

func (e *Engine) syncBatch(ctx context.Context, songs []*models.QueuedSong, progress chan<- ProgressUpdate) (*BatchResult, error) {
	state, err := e.registry.Get()
	if err != nil {
		return nil, err
	}

	active := state.ActivePlatforms()
	if len(active) == 0 {
		return nil, shared.ErrNoIntegrations
	}

	result := &BatchResult{}

	total := len(songs)
	for i, song := range songs {
		if err := ctx.Err(); err != nil {
			result.classify()
			return result, err
		}

		e.sendProgress(progress, syncSongUpdate(i+1, total, song))

		for _, platform := range active {
			pair, err := e.syncOne(ctx, song, platform, state[platform], progress, i+1, total)
			if err != nil {
				// Store failures are fatal to the run; partial progress is
				// already persisted.
				result.classify()
				return result, err
			}
			result.tally(pair)
			e.sendProgress(progress, outcomeUpdate(i+1, total, platform, pair.Outcome))
		}
	}

	result.classify()

	// Reload so callers see the statuses as persisted, not as buffered.
	final, err := e.queue.List()
	if err != nil {
		return result, err
	}
	result.Songs = final

	e.sendProgress(progress, batchCompleteUpdate(result))
	return result, nil
}

// syncOne reconciles a single song × platform pair.
//
// Catalog failures become status writes (failures are data); only a failed
// status write itself is returned as an error.
func (e *Engine) syncOne(
	ctx context.Context,
	song *models.QueuedSong,
	platform models.Platform,
	cfg models.IntegrationConfig,
	progress chan<- ProgressUpdate,
	step, total int,
) (PairResult, error) {
	pair := PairResult{
		SongID:   song.ID,
		Title:    song.Title,
		Artist:   song.Artist,
		Platform: platform,
	}

	if !cfg.Active() {
		pair.Outcome = OutcomeSkipped
		return pair, nil
	}

	// Re-running sync never re-adds a song already confirmed on the platform.
	if song.SyncedOn(platform) {
		pair.Outcome = OutcomeAlreadySynced
		if st, ok := song.StatusFor(platform); ok {
			pair.RemoteID = st.RemoteID
		}
		return pair, nil
	}

	client, err := e.clients(platform)
	if err != nil {
		return e.recordFailure(pair, OutcomeFailed, err)
	}

	// Membership is fetched fresh per song so concurrent external playlist
	// edits are respected.
	e.sendProgress(progress, ProgressUpdate{Phase: CheckMembership, Step: step, Total: total,
		Message: fmt.Sprintf("Checking %s playlist %q...", platform.DisplayName(), cfg.SelectedPlaylistName)})
	members, err := client.ListMembership(ctx, cfg.SelectedPlaylistID)
	if err != nil {
		return e.recordFailure(pair, OutcomeFailed, err)
	}

	e.sendProgress(progress, searchUpdate(step, total, platform))
	candidate, err := client.Search(ctx, song.Title, song.Artist)
	if err != nil {
		return e.recordFailure(pair, OutcomeFailed, err)
	}
	if candidate == nil {
		notFound := fmt.Errorf("%w: no match for %q by %q on %s",
			shared.ErrTrackNotFound, song.Title, song.Artist, platform.DisplayName())
		return e.recordFailure(pair, OutcomeNotFound, notFound)
	}

	if err := e.queue.Enrich(song.ID, candidate.Album, candidate.ImageURL); err != nil {
		return pair, err
	}

	pair.RemoteID = candidate.RemoteID

	if members[candidate.RemoteID] {
		// Already present remotely, possibly added through another client.
		// Recording it as synced is the dedup guarantee: no duplicate add.
		pair.Outcome = OutcomeDuplicate
		return pair, e.writeStatus(song.ID, platform, models.PlatformSyncStatus{
			Synced:   true,
			RemoteID: candidate.RemoteID,
		})
	}

	if err := client.AddItems(ctx, cfg.SelectedPlaylistID, []string{candidate.RemoteID}); err != nil {
		return e.recordFailure(pair, OutcomeFailed, err)
	}

	pair.Outcome = OutcomeAdded
	return pair, e.writeStatus(song.ID, platform, models.PlatformSyncStatus{
		Synced:   true,
		RemoteID: candidate.RemoteID,
	})
}

// recordFailure converts a catalog error into a persisted failure status.
// The returned error is non-nil only when the status write itself failed.
func (e *Engine) recordFailure(pair PairResult, outcome Outcome, cause error) (PairResult, error) {
	pair.Outcome = outcome
	pair.Error = cause.Error()
	return pair, e.writeStatus(pair.SongID, pair.Platform, models.PlatformSyncStatus{
		Synced: false,
		Error:  cause.Error(),
	})
}

func (e *Engine) writeStatus(songID string, platform models.Platform, status models.PlatformSyncStatus) error {
	if err := e.queue.UpdateSyncStatus(songID, platform, status); err != nil {
		return fmt.Errorf("failed to persist sync status: %w", err)
	}
	return nil
}

// RefreshConnections probes each platform's live connectivity in parallel
// and independently updates connected/error per platform. One platform's
// probe failure never blocks or corrupts another's result.
func (e *Engine) RefreshConnections(ctx context.Context, progress chan<- ProgressUpdate) (models.IntegrationsState, error) {
	state, err := e.registry.Get()
	if err != nil {
		return nil, err
	}

	type probeResult struct {
		platform models.Platform
		err      error
	}

	platforms := models.Platforms()
	results := make(chan probeResult, len(platforms))
	var wg sync.WaitGroup

	for i, platform := range platforms {
		cfg := state[platform]
		if !cfg.Available {
			continue
		}

		e.sendProgress(progress, probeUpdate(i+1, len(platforms), platform))

		wg.Add(1)
		go func(platform models.Platform) {
			defer wg.Done()
			client, err := e.clients(platform)
			if err != nil {
				results <- probeResult{platform: platform, err: err}
				return
			}
			results <- probeResult{platform: platform, err: client.Probe(ctx)}
		}(platform)
	}

	wg.Wait()
	close(results)

	for res := range results {
		connected := res.err == nil
		errMsg := ""
		if res.err != nil {
			errMsg = res.err.Error()
		}
		update := store.IntegrationUpdate{Connected: &connected, Error: &errMsg}
		if err := e.registry.Update(res.platform, update); err != nil {
			return nil, err
		}
	}

	return e.registry.Get()
}

// IsNotConfigured reports whether err is the no-active-integrations condition.
func IsNotConfigured(err error) bool {
	return errors.Is(err, shared.ErrNoIntegrations)
}
