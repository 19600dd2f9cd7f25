package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrMissingToken     = fmt.Errorf("missing access token")

	// Catalog and sync errors
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrPlatformUnavailable = fmt.Errorf("platform unavailable")
	ErrTrackNotFound       = fmt.Errorf("track not found")
	ErrPlaylistNotFound    = fmt.Errorf("playlist not found")
	ErrAddFailed           = fmt.Errorf("playlist add failed")
	ErrNoIntegrations      = fmt.Errorf("no integrations configured")

	// Intake errors
	ErrDetectionFailed = fmt.Errorf("song detection failed")

	// Persistence errors
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
	ErrSongNotFound     = fmt.Errorf("song not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
