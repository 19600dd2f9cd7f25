// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing and syncing the song queue:
//  1. [QueueListView] : Browse queued songs with per-platform sync badges
//  2. [SongDetailView] : Inspect one song's detection metadata and sync statuses
//  3. [ConfirmSyncView] : Confirm a full-queue sync run
//  4. [SyncView] : Monitor real-time progress updates
//  5. [ResultView] : Display the batch outcome and unresolved songs
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the sync engine, providing
// non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, s, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
