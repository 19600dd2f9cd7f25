package ui

import (
	"github.com/songsnap/songsnap/internal/engine"
	"github.com/songsnap/songsnap/internal/models"
)

// queueLoadedMsg carries the queue contents after a (re)load.
type queueLoadedMsg struct {
	songs []*models.QueuedSong
	err   error
}

// progressMsg wraps an engine progress update during a sync run.
type progressMsg engine.ProgressUpdate

// syncCompleteMsg carries the final batch result once the run finishes.
type syncCompleteMsg struct {
	result *engine.BatchResult
	err    error
}
