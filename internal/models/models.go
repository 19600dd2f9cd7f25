package models

import (
	"time"
)

// Platform identifies an external streaming service.
type Platform string

const (
	PlatformSpotify Platform = "spotify"
	PlatformYouTube Platform = "youtube"
	PlatformApple   Platform = "apple"
	PlatformAmazon  Platform = "amazon"
)

// Platforms returns the closed set of known platforms in stable order.
func Platforms() []Platform {
	return []Platform{PlatformSpotify, PlatformYouTube, PlatformApple, PlatformAmazon}
}

// Valid reports whether p is a member of the closed platform set.
func (p Platform) Valid() bool {
	switch p {
	case PlatformSpotify, PlatformYouTube, PlatformApple, PlatformAmazon:
		return true
	}
	return false
}

// DefaultAvailable reports the static availability default for p.
// Apple Music and Amazon Music adapters are not implemented yet.
func (p Platform) DefaultAvailable() bool {
	switch p {
	case PlatformSpotify, PlatformYouTube:
		return true
	}
	return false
}

// DisplayName returns the human-readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformSpotify:
		return "Spotify"
	case PlatformYouTube:
		return "YouTube Music"
	case PlatformApple:
		return "Apple Music"
	case PlatformAmazon:
		return "Amazon Music"
	default:
		return string(p)
	}
}

// Confidence grades a single detection result from the classifier.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Usable reports whether a detection is trustworthy enough to queue.
func (c Confidence) Usable() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium
}

// DetectedSong is one classifier hit for a captured image.
type DetectedSong struct {
	Title      string     `json:"title"`
	Artist     string     `json:"artist"`
	Confidence Confidence `json:"confidence"`
}

// PlatformSyncStatus records the outcome of the most recent reconciliation
// attempt for one song on one platform.
//
// Once Synced is true, RemoteID is set and the record is never downgraded:
// a later failed attempt may not clear a confirmed sync.
type PlatformSyncStatus struct {
	Synced    bool      `json:"synced"`
	RemoteID  string    `json:"remote_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QueuedSong is one detected song awaiting sync.
//
// Album and ImageURL start empty and are filled in only after a successful
// platform search. SyncStatus is sparse: absence of a platform key means
// that platform has never been attempted.
type QueuedSong struct {
	ID             string                          `json:"id"`
	Sequence       int                             `json:"-"`
	Title          string                          `json:"title"`
	Artist         string                          `json:"artist"`
	Album          string                          `json:"album,omitempty"`
	ImageURL       string                          `json:"image_url,omitempty"`
	SourceImageURI string                          `json:"source_image_uri,omitempty"`
	DetectedAt     time.Time                       `json:"detected_at"`
	SyncStatus     map[Platform]PlatformSyncStatus `json:"sync_status"`
}

// StatusFor returns the sync status for platform p, if any attempt was recorded.
func (s *QueuedSong) StatusFor(p Platform) (PlatformSyncStatus, bool) {
	st, ok := s.SyncStatus[p]
	return st, ok
}

// SyncedOn reports whether the song has a confirmed sync on platform p.
func (s *QueuedSong) SyncedOn(p Platform) bool {
	st, ok := s.SyncStatus[p]
	return ok && st.Synced
}

// IntegrationConfig is the durable connection record for one platform.
type IntegrationConfig struct {
	Platform             Platform `json:"platform"`
	Connected            bool     `json:"connected"`
	Available            bool     `json:"available"`
	SelectedPlaylistID   string   `json:"selected_playlist_id,omitempty"`
	SelectedPlaylistName string   `json:"selected_playlist_name,omitempty"`
	Error                string   `json:"error,omitempty"`
}

// Active reports whether the platform is a valid sync target: available,
// connected, and with a target playlist selected.
func (c IntegrationConfig) Active() bool {
	return c.Available && c.Connected && c.SelectedPlaylistID != ""
}

// IntegrationsState is a complete registry snapshot, one entry per known platform.
type IntegrationsState map[Platform]IntegrationConfig

// ActivePlatforms returns the platforms eligible for reconciliation, in
// stable platform order.
func (s IntegrationsState) ActivePlatforms() []Platform {
	var active []Platform
	for _, p := range Platforms() {
		if cfg, ok := s[p]; ok && cfg.Active() {
			active = append(active, p)
		}
	}
	return active
}

// FlaggedImage records a captured image that yielded zero usable songs.
type FlaggedImage struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"-"`
	ImageURI  string    `json:"image_uri"`
	Error     string    `json:"error"`
	FlaggedAt time.Time `json:"flagged_at"`
}

// Playlist is basic playlist metadata from a platform catalog.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TrackCount int    `json:"track_count"`
}
