package engine

import (
	"fmt"

	"github.com/songsnap/songsnap/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SyncSong Phase = iota
	SearchCatalog
	CheckMembership
	AddToPlaylist
	ProbeConnections
	BatchComplete
)

func (p Phase) String() string {
	switch p {
	case SyncSong:
		return "sync_song"
	case SearchCatalog:
		return "search_catalog"
	case CheckMembership:
		return "check_membership"
	case AddToPlaylist:
		return "add_to_playlist"
	case ProbeConnections:
		return "probe_connections"
	case BatchComplete:
		return "batch_complete"
	default:
		return ""
	}
}

func syncSongUpdate(step, total int, song *models.QueuedSong) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Syncing %s - %s", song.Artist, song.Title),
		Data:    song,
	}
}

func searchUpdate(step, total int, platform models.Platform) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching %s catalog...", platform.DisplayName()),
	}
}

func outcomeUpdate(step, total int, platform models.Platform, outcome Outcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddToPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: %s", platform.DisplayName(), outcome),
		Data:    outcome,
	}
}

func probeUpdate(step, total int, platform models.Platform) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProbeConnections,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Probing %s...", platform.DisplayName()),
	}
}

func batchCompleteUpdate(result *BatchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchComplete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync %s: %d added, %d already present, %d failed", result.Status, result.Added, result.Duplicates, result.Failed),
		Data:    result,
	}
}
