package engine

import "github.com/songsnap/songsnap/internal/models"

// Outcome classifies one song × platform reconciliation attempt.
type Outcome string

const (
	// OutcomeAdded means the track was found and appended to the playlist.
	OutcomeAdded Outcome = "added"
	// OutcomeDuplicate means the track was already in the playlist; no add
	// was issued and the song is recorded as synced.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeAlreadySynced means local state already had a confirmed sync;
	// the pair was a no-op.
	OutcomeAlreadySynced Outcome = "already_synced"
	// OutcomeNotFound means the catalog search returned no acceptable match.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeFailed means a membership fetch, search, or add call failed.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped means the platform was not an eligible sync target.
	OutcomeSkipped Outcome = "skipped"
)

func (o Outcome) String() string { return string(o) }

// BatchStatus is the aggregate classification of a reconciliation run,
// derived purely from per-pair outcome counts.
type BatchStatus string

const (
	StatusComplete BatchStatus = "complete"
	StatusPartial  BatchStatus = "partial"
	StatusFailed   BatchStatus = "failed"
)

// PairResult records the outcome for one song × platform pair.
type PairResult struct {
	SongID   string          `json:"song_id"`
	Title    string          `json:"title"`
	Artist   string          `json:"artist"`
	Platform models.Platform `json:"platform"`
	Outcome  Outcome         `json:"outcome"`
	RemoteID string          `json:"remote_id,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// BatchResult aggregates a full reconciliation pass.
type BatchResult struct {
	Pairs      []PairResult         `json:"pairs"`
	Added      int                  `json:"added"`
	Duplicates int                  `json:"duplicates"`
	Failed     int                  `json:"failed"`
	Skipped    int                  `json:"skipped"`
	Attempted  int                  `json:"attempted"`
	Status     BatchStatus          `json:"status"`
	Songs      []*models.QueuedSong `json:"songs"` // final queue state, reloaded after the pass
}

// tally folds one pair outcome into the aggregate counters.
func (r *BatchResult) tally(pair PairResult) {
	r.Pairs = append(r.Pairs, pair)
	switch pair.Outcome {
	case OutcomeAdded:
		r.Attempted++
		r.Added++
	case OutcomeDuplicate:
		r.Attempted++
		r.Duplicates++
	case OutcomeNotFound, OutcomeFailed:
		r.Attempted++
		r.Failed++
	case OutcomeAlreadySynced, OutcomeSkipped:
		r.Skipped++
	}
}

// classify derives the aggregate status. All-duplicates and an empty run
// both count as complete; only unresolved failures make a run partial or
// failed.
func (r *BatchResult) classify() {
	switch {
	case r.Failed == 0:
		r.Status = StatusComplete
	case r.Added+r.Duplicates > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusFailed
	}
}
