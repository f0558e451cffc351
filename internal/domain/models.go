// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the Aura music client.
package domain

import (
	"time"
)

// Track represents a single streamable track as returned by the backend.
// Tracks are replaced wholesale on navigation and never patched in place.
type Track struct {
	// ID is the provider track identifier
	ID string

	// Title is the song title
	Title string

	// Artist is the performing artist name
	Artist string

	// Album is the album name
	Album string

	// AlbumArt is the artwork URL (empty when the provider has none)
	AlbumArt string

	// Duration is the declared length of the track
	Duration time.Duration

	// AccessToken is the provider playback credential scoped to the owning session
	AccessToken string
}

// DisplayName returns "Artist - Title", or whichever half is present.
func (t Track) DisplayName() string {
	switch {
	case t.Artist != "" && t.Title != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	default:
		return t.ID
	}
}

// PlayerState is the lifecycle state of the vendor playback device.
type PlayerState int

const (
	// PlayerIdle means no device bootstrap has been attempted yet.
	PlayerIdle PlayerState = iota

	// PlayerLoading means the device is being registered.
	PlayerLoading

	// PlayerReady means the device is registered and accepts commands.
	PlayerReady

	// PlayerError means the device failed; only Retry leaves this state.
	PlayerError
)

// String returns a human-readable representation of the player state.
func (s PlayerState) String() string {
	switch s {
	case PlayerIdle:
		return "idle"
	case PlayerLoading:
		return "loading"
	case PlayerReady:
		return "ready"
	case PlayerError:
		return "error"
	default:
		return "unknown"
	}
}

// PlaybackStatus is the display status shown to the user.
type PlaybackStatus int

const (
	// StatusStopped means nothing is playing and the position is reset.
	StatusStopped PlaybackStatus = iota

	// StatusPlaying means a track is actively playing.
	StatusPlaying

	// StatusPaused means the current track is paused.
	StatusPaused
)

// String returns a human-readable representation of the status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackSession is a snapshot of the playback adapter state.
// It is owned by the playback service; other components only read copies.
type PlaybackSession struct {
	// DeviceID is assigned when the device reports ready
	DeviceID string

	// Volume is the device volume (0.0 to 1.0)
	Volume float64

	// Position is the elapsed position of the current track
	Position time.Duration

	// Duration is the declared duration of the current track
	Duration time.Duration

	// Status is the display status
	Status PlaybackStatus

	// State is the device lifecycle state
	State PlayerState

	// ErrorMessage is set while State is PlayerError
	ErrorMessage string

	// AuthFailure is true when the error requires the user to log in again
	AuthFailure bool

	// Track is the track the device is playing or about to play
	Track *Track
}

// QueueSnapshot is a copy of the queue coordinator state.
type QueueSnapshot struct {
	Tracks    []Track
	CurrentID string
}

// CurrentIndex returns the index of the current track, or -1.
func (q QueueSnapshot) CurrentIndex() int {
	for i, t := range q.Tracks {
		if t.ID == q.CurrentID {
			return i
		}
	}
	return -1
}

// Current returns the current track, if any.
func (q QueueSnapshot) Current() (Track, bool) {
	idx := q.CurrentIndex()
	if idx < 0 {
		return Track{}, false
	}
	return q.Tracks[idx], true
}

// Profile is the signed-in user's provider profile.
type Profile struct {
	DisplayName    string
	Email          string
	Followers      int
	ProfilePicture string
	TopArtists     []string
	Playlists      []string
}

// RecentTrack is an entry of the recently played list.
type RecentTrack struct {
	ID         string
	Name       string
	Artist     string
	AlbumCover string
}

// PlaylistSummary is a playlist reference shown in the library.
type PlaylistSummary struct {
	ID       string
	Name     string
	ImageURL string
}

// Library is the user's library page content.
type Library struct {
	RecentlyPlayed []RecentTrack
	Playlists      []PlaylistSummary
}

// Playlist is a provider playlist with its playable songs.
type Playlist struct {
	ID       string
	Name     string
	ImageURL string
	Songs    []Track
}

// Song is a recommended song.
type Song struct {
	TrackID string `json:"track_id"`
	Name    string `json:"name"`
	Artist  string `json:"artist"`
	Album   string `json:"album,omitempty"`
	Image   string `json:"image,omitempty"`
}

// Recommendation is a recommendation list with the request that produced it.
type Recommendation struct {
	Emotion Emotion
	Genres  []string
	Songs   []Song
}

// Lyrics is a lyrics cache entry. Found is false for the "not found" sentinel.
type Lyrics struct {
	TrackID string
	Text    string
	Found   bool
}

// NotFoundLyrics returns the sentinel entry for a track without lyrics.
func NotFoundLyrics(trackID string) Lyrics {
	return Lyrics{TrackID: trackID}
}
