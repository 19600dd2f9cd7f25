package store

import (
	"database/sql"
	"time"

	"github.com/songsnap/songsnap/internal/models"
	"github.com/songsnap/songsnap/internal/shared"
)

// NewSong is the intake-side input for queueing one detected song.
type NewSong struct {
	Title          string
	Artist         string
	SourceImageURI string
}

// SongQueueStore is the durable ledger of detected songs awaiting sync.
//
// Songs keep insertion order via the songs_sequence counter. Per-platform
// sync statuses live in their own table keyed by (song_id, platform) and are
// merged into [models.QueuedSong.SyncStatus] on read.
type SongQueueStore struct {
	db *sql.DB
}

// NewSongQueueStore creates a SongQueueStore backed by the given database.
func NewSongQueueStore(db *sql.DB) *SongQueueStore {
	return &SongQueueStore{db: db}
}

// List returns all queued songs in insertion order with their sync statuses.
func (s *SongQueueStore) List() ([]*models.QueuedSong, error) {
	rows, err := s.db.Query(`
		SELECT id, sequence, title, artist, album, image_url, source_image_uri, detected_at
		FROM songs
		ORDER BY sequence ASC
	`)
	if err != nil {
		return nil, storeErr("list songs", err)
	}
	defer rows.Close()

	var songs []*models.QueuedSong
	index := make(map[string]*models.QueuedSong)

	for rows.Next() {
		song := &models.QueuedSong{SyncStatus: make(map[models.Platform]models.PlatformSyncStatus)}
		err := rows.Scan(&song.ID, &song.Sequence, &song.Title, &song.Artist,
			&song.Album, &song.ImageURL, &song.SourceImageURI, &song.DetectedAt)
		if err != nil {
			return nil, storeErr("scan song", err)
		}
		songs = append(songs, song)
		index[song.ID] = song
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate songs", err)
	}

	if err := s.attachStatuses(index); err != nil {
		return nil, err
	}

	return songs, nil
}

// Get returns a single queued song by id, or [shared.ErrSongNotFound].
func (s *SongQueueStore) Get(id string) (*models.QueuedSong, error) {
	song := &models.QueuedSong{SyncStatus: make(map[models.Platform]models.PlatformSyncStatus)}
	err := s.db.QueryRow(`
		SELECT id, sequence, title, artist, album, image_url, source_image_uri, detected_at
		FROM songs
		WHERE id = ?
	`, id).Scan(&song.ID, &song.Sequence, &song.Title, &song.Artist,
		&song.Album, &song.ImageURL, &song.SourceImageURI, &song.DetectedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrSongNotFound
	}
	if err != nil {
		return nil, storeErr("get song", err)
	}

	if err := s.attachStatuses(map[string]*models.QueuedSong{song.ID: song}); err != nil {
		return nil, err
	}
	return song, nil
}

// AppendBatch inserts all new songs in a single transaction, assigning ids,
// sequences, and timestamps. The whole batch becomes visible at once or not
// at all.
func (s *SongQueueStore) AppendBatch(newSongs []NewSong) ([]*models.QueuedSong, error) {
	if len(newSongs) == 0 {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storeErr("begin append batch", err)
	}
	defer tx.Rollback()

	created := make([]*models.QueuedSong, 0, len(newSongs))
	now := time.Now().UTC()

	for _, ns := range newSongs {
		sequence, err := nextSequence(tx, "songs")
		if err != nil {
			return nil, storeErr("assign sequence", err)
		}

		song := &models.QueuedSong{
			ID:             shared.GenerateID(),
			Sequence:       sequence,
			Title:          ns.Title,
			Artist:         ns.Artist,
			SourceImageURI: ns.SourceImageURI,
			DetectedAt:     now,
			SyncStatus:     make(map[models.Platform]models.PlatformSyncStatus),
		}

		_, err = tx.Exec(`
			INSERT INTO songs (id, sequence, title, artist, album, image_url, source_image_uri, detected_at)
			VALUES (?, ?, ?, ?, '', '', ?, ?)
		`, song.ID, song.Sequence, song.Title, song.Artist, song.SourceImageURI, song.DetectedAt)
		if err != nil {
			return nil, storeErr("insert song", err)
		}

		created = append(created, song)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit append batch", err)
	}

	return created, nil
}

// UpdateSyncStatus upserts the status record for one song/platform pair.
//
// A missing song id is a no-op, not an error: the song may have been removed
// while a sync was in flight. A confirmed sync is never downgraded: once
// the stored record has synced = 1, a later failed attempt leaves it intact.
func (s *SongQueueStore) UpdateSyncStatus(songID string, platform models.Platform, status models.PlatformSyncStatus) error {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM songs WHERE id = ?)", songID).Scan(&exists)
	if err != nil {
		return storeErr("check song", err)
	}
	if !exists {
		return nil
	}

	updatedAt := status.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = s.db.Exec(`
		INSERT INTO sync_statuses (song_id, platform, synced, remote_id, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(song_id, platform) DO UPDATE SET
			synced = CASE WHEN sync_statuses.synced = 1 THEN 1 ELSE excluded.synced END,
			remote_id = CASE WHEN sync_statuses.synced = 1 THEN sync_statuses.remote_id ELSE excluded.remote_id END,
			error = CASE WHEN sync_statuses.synced = 1 THEN '' ELSE excluded.error END,
			updated_at = excluded.updated_at
	`, songID, platform, status.Synced, status.RemoteID, status.Error, updatedAt)
	if err != nil {
		return storeErr("update sync status", err)
	}

	return nil
}

// Enrich fills album/image metadata from a successful catalog search. Empty
// arguments and already-populated fields are left untouched.
func (s *SongQueueStore) Enrich(songID, album, imageURL string) error {
	_, err := s.db.Exec(`
		UPDATE songs
		SET album = CASE WHEN album = '' THEN ? ELSE album END,
		    image_url = CASE WHEN image_url = '' THEN ? ELSE image_url END
		WHERE id = ?
	`, album, imageURL, songID)
	if err != nil {
		return storeErr("enrich song", err)
	}
	return nil
}

// Remove deletes one song and its sync statuses.
func (s *SongQueueStore) Remove(songID string) error {
	result, err := s.db.Exec("DELETE FROM songs WHERE id = ?", songID)
	if err != nil {
		return storeErr("remove song", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("remove song", err)
	}
	if rows == 0 {
		return shared.ErrSongNotFound
	}

	// sync_statuses rows cascade, but the pragma may be off on this handle
	if _, err := s.db.Exec("DELETE FROM sync_statuses WHERE song_id = ?", songID); err != nil {
		return storeErr("remove sync statuses", err)
	}
	return nil
}

// Clear removes every queued song.
func (s *SongQueueStore) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return storeErr("begin clear", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sync_statuses"); err != nil {
		return storeErr("clear sync statuses", err)
	}
	if _, err := tx.Exec("DELETE FROM songs"); err != nil {
		return storeErr("clear songs", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit clear", err)
	}
	return nil
}

// attachStatuses loads sync status rows for the given songs and merges them
// into each song's SyncStatus map.
func (s *SongQueueStore) attachStatuses(index map[string]*models.QueuedSong) error {
	if len(index) == 0 {
		return nil
	}

	rows, err := s.db.Query("SELECT song_id, platform, synced, remote_id, error, updated_at FROM sync_statuses")
	if err != nil {
		return storeErr("list sync statuses", err)
	}
	defer rows.Close()

	for rows.Next() {
		var songID string
		var platform models.Platform
		var status models.PlatformSyncStatus
		if err := rows.Scan(&songID, &platform, &status.Synced, &status.RemoteID, &status.Error, &status.UpdatedAt); err != nil {
			return storeErr("scan sync status", err)
		}
		if song, ok := index[songID]; ok {
			song.SyncStatus[platform] = status
		}
	}
	return rows.Err()
}
