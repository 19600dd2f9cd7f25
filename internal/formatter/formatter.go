// package formatter renders queue listings and sync reports for CLI output (plain text, Markdown, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/songsnap/songsnap/internal/engine"
	"github.com/songsnap/songsnap/internal/models"
)

// QueueToText renders the queue as an aligned plain-text listing with
// per-platform sync badges.
func QueueToText(songs []*models.QueuedSong) []byte {
	var buf bytes.Buffer

	if len(songs) == 0 {
		buf.WriteString("Queue is empty.\n")
		return buf.Bytes()
	}

	for i, song := range songs {
		buf.WriteString(fmt.Sprintf("%3d. %s - %s", i+1, song.Artist, song.Title))
		if song.Album != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", song.Album))
		}
		buf.WriteString(fmt.Sprintf("\n     id: %s\n", song.ID))

		for _, platform := range models.Platforms() {
			status, ok := song.StatusFor(platform)
			if !ok {
				continue
			}
			buf.WriteString(fmt.Sprintf("     %s %s", Badge(status), platform.DisplayName()))
			if status.Error != "" {
				buf.WriteString(fmt.Sprintf(": %s", status.Error))
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes()
}

// Badge returns the one-glyph sync indicator for a status record.
func Badge(status models.PlatformSyncStatus) string {
	if status.Synced {
		return "✓"
	}
	return "✗"
}

// QueueToCSV renders the queue as CSV with one row per song × recorded platform.
func QueueToCSV(songs []*models.QueuedSong) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Platform", "Synced", "RemoteID", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		wrote := false
		for _, platform := range models.Platforms() {
			status, ok := song.StatusFor(platform)
			if !ok {
				continue
			}
			record := []string{
				song.ID, song.Title, song.Artist, song.Album,
				string(platform), strconv.FormatBool(status.Synced), status.RemoteID, status.Error,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
			wrote = true
		}
		if !wrote {
			record := []string{song.ID, song.Title, song.Artist, song.Album, "", "", "", ""}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown renders a batch sync result as a Markdown report.
func ReportToMarkdown(result *engine.BatchResult) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Sync Report\n\n")
	buf.WriteString(fmt.Sprintf("**Status**: %s\n", result.Status))
	buf.WriteString(fmt.Sprintf("**Added**: %d\n", result.Added))
	buf.WriteString(fmt.Sprintf("**Already present**: %d\n", result.Duplicates))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n", result.Failed))
	buf.WriteString(fmt.Sprintf("**Skipped**: %d\n\n", result.Skipped))

	if len(result.Pairs) > 0 {
		buf.WriteString("## Details\n\n")
		buf.WriteString("| Song | Platform | Outcome | Remote ID | Error |\n")
		buf.WriteString("|------|----------|---------|-----------|-------|\n")
		for _, pair := range result.Pairs {
			buf.WriteString(fmt.Sprintf("| %s - %s | %s | %s | %s | %s |\n",
				pair.Artist, pair.Title, pair.Platform, pair.Outcome, pair.RemoteID, pair.Error))
		}
	}

	return buf.Bytes()
}

// IntegrationsToText renders the registry snapshot as a plain-text listing.
func IntegrationsToText(state models.IntegrationsState) []byte {
	var buf bytes.Buffer

	for _, platform := range models.Platforms() {
		cfg := state[platform]
		buf.WriteString(fmt.Sprintf("%-14s", platform.DisplayName()))

		switch {
		case !cfg.Available:
			buf.WriteString("unavailable")
		case cfg.Connected:
			buf.WriteString("connected")
		default:
			buf.WriteString("disconnected")
		}

		if cfg.SelectedPlaylistName != "" {
			buf.WriteString(fmt.Sprintf("  →  %s", cfg.SelectedPlaylistName))
		}
		if cfg.Error != "" {
			buf.WriteString(fmt.Sprintf("  (last error: %s)", cfg.Error))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}
