// Package models defines domain entities for the songsnap sync service.
//
// The package contains three durable entity types and their supporting
// value types:
//
//   - [QueuedSong] : A detected song awaiting sync, with independent
//     per-platform [PlatformSyncStatus] records
//   - [IntegrationConfig] : Per-platform connection state and target playlist
//   - [FlaggedImage] : A captured image that produced no usable songs
//
// [Platform] is a closed enumeration of streaming platforms. Code that
// ranges over platforms uses [Platforms] so a new platform is a one-file
// change here rather than a scattered string hunt.
package models
