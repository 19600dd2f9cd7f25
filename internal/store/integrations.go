package store

import (
	"database/sql"
	"time"

	"github.com/songsnap/songsnap/internal/models"
)

// IntegrationRegistry is the durable record of platform connections: which
// platforms are connected, the selected target playlist per platform, and
// the last observed connection error.
type IntegrationRegistry struct {
	db *sql.DB
}

// NewIntegrationRegistry creates an IntegrationRegistry backed by the given database.
func NewIntegrationRegistry(db *sql.DB) *IntegrationRegistry {
	return &IntegrationRegistry{db: db}
}

// IntegrationUpdate carries the partial fields merged by [IntegrationRegistry.Update].
// Nil pointers leave the stored value untouched.
type IntegrationUpdate struct {
	Connected *bool
	Error     *string
}

// Get returns a complete snapshot with one entry per known platform.
// Platforms without a stored row default to disconnected with their static
// availability.
func (r *IntegrationRegistry) Get() (models.IntegrationsState, error) {
	state := make(models.IntegrationsState, len(models.Platforms()))
	for _, p := range models.Platforms() {
		state[p] = models.IntegrationConfig{
			Platform:  p,
			Available: p.DefaultAvailable(),
		}
	}

	rows, err := r.db.Query(`
		SELECT platform, connected, available, selected_playlist_id, selected_playlist_name, error
		FROM integrations
	`)
	if err != nil {
		return nil, storeErr("list integrations", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cfg models.IntegrationConfig
		if err := rows.Scan(&cfg.Platform, &cfg.Connected, &cfg.Available,
			&cfg.SelectedPlaylistID, &cfg.SelectedPlaylistName, &cfg.Error); err != nil {
			return nil, storeErr("scan integration", err)
		}
		if !cfg.Platform.Valid() {
			continue
		}
		// Availability is static per platform, never persisted state
		cfg.Available = cfg.Platform.DefaultAvailable()
		if !cfg.Available {
			cfg.Connected = false
		}
		state[cfg.Platform] = cfg
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate integrations", err)
	}

	return state, nil
}

// Update merges the partial fields onto the stored record for the platform.
// An unavailable platform can never become connected.
func (r *IntegrationRegistry) Update(platform models.Platform, update IntegrationUpdate) error {
	if err := r.ensureRow(platform); err != nil {
		return err
	}

	if update.Connected != nil {
		connected := *update.Connected && platform.DefaultAvailable()
		if _, err := r.db.Exec(
			"UPDATE integrations SET connected = ?, updated_at = ? WHERE platform = ?",
			connected, time.Now().UTC(), platform,
		); err != nil {
			return storeErr("update connected", err)
		}
	}

	if update.Error != nil {
		if _, err := r.db.Exec(
			"UPDATE integrations SET error = ?, updated_at = ? WHERE platform = ?",
			*update.Error, time.Now().UTC(), platform,
		); err != nil {
			return storeErr("update error", err)
		}
	}

	return nil
}

// SetSelectedPlaylist records the sync target playlist for the platform.
func (r *IntegrationRegistry) SetSelectedPlaylist(platform models.Platform, id, name string) error {
	if err := r.ensureRow(platform); err != nil {
		return err
	}

	_, err := r.db.Exec(`
		UPDATE integrations
		SET selected_playlist_id = ?, selected_playlist_name = ?, updated_at = ?
		WHERE platform = ?
	`, id, name, time.Now().UTC(), platform)
	if err != nil {
		return storeErr("set selected playlist", err)
	}
	return nil
}

// Disconnect clears connection, selection, and error atomically.
func (r *IntegrationRegistry) Disconnect(platform models.Platform) error {
	if err := r.ensureRow(platform); err != nil {
		return err
	}

	_, err := r.db.Exec(`
		UPDATE integrations
		SET connected = 0, selected_playlist_id = '', selected_playlist_name = '', error = '', updated_at = ?
		WHERE platform = ?
	`, time.Now().UTC(), platform)
	if err != nil {
		return storeErr("disconnect", err)
	}
	return nil
}

func (r *IntegrationRegistry) ensureRow(platform models.Platform) error {
	_, err := r.db.Exec(`
		INSERT INTO integrations (platform, connected, available, updated_at)
		VALUES (?, 0, ?, ?)
		ON CONFLICT(platform) DO NOTHING
	`, platform, platform.DefaultAvailable(), time.Now().UTC())
	if err != nil {
		return storeErr("ensure integration row", err)
	}
	return nil
}
