// Package domain defines events for the event-driven architecture.
// Events decouple services from each other and from the UI.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventTrackStarted   EventType = "track.started"
	EventTrackPaused    EventType = "track.paused"
	EventTrackStopped   EventType = "track.stopped"
	EventTrackProgress  EventType = "track.progress"
	EventTrackEnded     EventType = "track.ended"
	EventVolumeChanged  EventType = "volume.changed"
	EventPlaybackError  EventType = "playback.error"
	EventPlayerState    EventType = "player.state"
	EventDeviceTrackSet EventType = "player.device_track"

	// Queue events
	EventQueueChanged        EventType = "queue.changed"
	EventCurrentTrackChanged EventType = "queue.current_changed"

	// Lyrics events
	EventLyricsLoaded EventType = "lyrics.loaded"

	// Emotion sampling events
	EventSamplingStarted  EventType = "emotion.sampling_started"
	EventSamplingFinished EventType = "emotion.sampling_finished"

	// Recommendation events
	EventRecommendationsLoaded EventType = "recommendations.loaded"
	EventPlaylistCreated       EventType = "playlist.created"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackStartedEvent is published when the device starts playing a track.
type TrackStartedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType {
	return EventTrackStarted
}

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track Track) TrackStartedEvent {
	return TrackStartedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
	Track    Track
	Position time.Duration
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType {
	return EventTrackPaused
}

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(track Track, position time.Duration) TrackPausedEvent {
	return TrackPausedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Position:  position,
	}
}

// TrackStoppedEvent is published when the queue runs out and playback stops.
type TrackStoppedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackStoppedEvent) Type() EventType {
	return EventTrackStopped
}

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent(track Track) TrackStoppedEvent {
	return TrackStoppedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackProgressEvent is published periodically during playback.
type TrackProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e TrackProgressEvent) Type() EventType {
	return EventTrackProgress
}

// NewTrackProgressEvent creates a new TrackProgressEvent.
func NewTrackProgressEvent(position, duration time.Duration) TrackProgressEvent {
	return TrackProgressEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
		Duration:  duration,
	}
}

// TrackEndedEvent is published once per track when the end of the track is detected.
type TrackEndedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackEndedEvent) Type() EventType {
	return EventTrackEnded
}

// NewTrackEndedEvent creates a new TrackEndedEvent.
func NewTrackEndedEvent(track Track) TrackEndedEvent {
	return TrackEndedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// PlaybackErrorEvent is published when a device or command failure should be shown.
// Persistent errors stay on screen; the rest are dismissible.
type PlaybackErrorEvent struct {
	baseEvent
	Message    string
	Auth       bool
	Persistent bool
	Err        error
}

// Type returns the event type.
func (e PlaybackErrorEvent) Type() EventType {
	return EventPlaybackError
}

// NewPlaybackErrorEvent creates a new PlaybackErrorEvent.
func NewPlaybackErrorEvent(message string, auth, persistent bool, err error) PlaybackErrorEvent {
	return PlaybackErrorEvent{
		baseEvent:  newBaseEvent(),
		Message:    message,
		Auth:       auth,
		Persistent: persistent,
		Err:        err,
	}
}

// PlayerStateChangedEvent is published on every device lifecycle transition.
type PlayerStateChangedEvent struct {
	baseEvent
	Previous PlayerState
	Current  PlayerState
	Message  string
}

// Type returns the event type.
func (e PlayerStateChangedEvent) Type() EventType {
	return EventPlayerState
}

// NewPlayerStateChangedEvent creates a new PlayerStateChangedEvent.
func NewPlayerStateChangedEvent(previous, current PlayerState, message string) PlayerStateChangedEvent {
	return PlayerStateChangedEvent{
		baseEvent: newBaseEvent(),
		Previous:  previous,
		Current:   current,
		Message:   message,
	}
}

// DeviceTrackChangedEvent is published when the device reports a track other than the one requested.
type DeviceTrackChangedEvent struct {
	baseEvent
	TrackID string
}

// Type returns the event type.
func (e DeviceTrackChangedEvent) Type() EventType {
	return EventDeviceTrackSet
}

// NewDeviceTrackChangedEvent creates a new DeviceTrackChangedEvent.
func NewDeviceTrackChangedEvent(trackID string) DeviceTrackChangedEvent {
	return DeviceTrackChangedEvent{
		baseEvent: newBaseEvent(),
		TrackID:   trackID,
	}
}

// QueueChangedEvent is published when the queue contents or order change.
type QueueChangedEvent struct {
	baseEvent
	Queue QueueSnapshot
}

// Type returns the event type.
func (e QueueChangedEvent) Type() EventType {
	return EventQueueChanged
}

// NewQueueChangedEvent creates a new QueueChangedEvent.
func NewQueueChangedEvent(queue QueueSnapshot) QueueChangedEvent {
	return QueueChangedEvent{
		baseEvent: newBaseEvent(),
		Queue:     queue,
	}
}

// CurrentTrackChangedEvent is published when the queue's current pointer moves.
type CurrentTrackChangedEvent struct {
	baseEvent
	Track Track
	Index int
}

// Type returns the event type.
func (e CurrentTrackChangedEvent) Type() EventType {
	return EventCurrentTrackChanged
}

// NewCurrentTrackChangedEvent creates a new CurrentTrackChangedEvent.
func NewCurrentTrackChangedEvent(track Track, index int) CurrentTrackChangedEvent {
	return CurrentTrackChangedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Index:     index,
	}
}

// LyricsLoadedEvent is published when lyrics for a track become available.
type LyricsLoadedEvent struct {
	baseEvent
	Lyrics Lyrics
}

// Type returns the event type.
func (e LyricsLoadedEvent) Type() EventType {
	return EventLyricsLoaded
}

// NewLyricsLoadedEvent creates a new LyricsLoadedEvent.
func NewLyricsLoadedEvent(lyrics Lyrics) LyricsLoadedEvent {
	return LyricsLoadedEvent{
		baseEvent: newBaseEvent(),
		Lyrics:    lyrics,
	}
}

// SamplingStartedEvent is published when a sampling window opens.
type SamplingStartedEvent struct {
	baseEvent
	WindowID string
	Duration time.Duration
}

// Type returns the event type.
func (e SamplingStartedEvent) Type() EventType {
	return EventSamplingStarted
}

// NewSamplingStartedEvent creates a new SamplingStartedEvent.
func NewSamplingStartedEvent(windowID string, duration time.Duration) SamplingStartedEvent {
	return SamplingStartedEvent{
		baseEvent: newBaseEvent(),
		WindowID:  windowID,
		Duration:  duration,
	}
}

// SamplingFinishedEvent is published when a sampling window closes.
// Err is set when no dominant emotion could be resolved.
type SamplingFinishedEvent struct {
	baseEvent
	WindowID string
	Captures int
	Emotion  Emotion
	Genres   []string
	Err      error
}

// Type returns the event type.
func (e SamplingFinishedEvent) Type() EventType {
	return EventSamplingFinished
}

// NewSamplingFinishedEvent creates a new SamplingFinishedEvent.
func NewSamplingFinishedEvent(windowID string, captures int, emotion Emotion, err error) SamplingFinishedEvent {
	return SamplingFinishedEvent{
		baseEvent: newBaseEvent(),
		WindowID:  windowID,
		Captures:  captures,
		Emotion:   emotion,
		Genres:    emotion.Genres(),
		Err:       err,
	}
}

// RecommendationsLoadedEvent is published when a recommendation list is shown.
type RecommendationsLoadedEvent struct {
	baseEvent
	Recommendation Recommendation
	FromCache      bool
}

// Type returns the event type.
func (e RecommendationsLoadedEvent) Type() EventType {
	return EventRecommendationsLoaded
}

// NewRecommendationsLoadedEvent creates a new RecommendationsLoadedEvent.
func NewRecommendationsLoadedEvent(rec Recommendation, fromCache bool) RecommendationsLoadedEvent {
	return RecommendationsLoadedEvent{
		baseEvent:      newBaseEvent(),
		Recommendation: rec,
		FromCache:      fromCache,
	}
}

// PlaylistCreatedEvent is published when the backend created a playlist.
type PlaylistCreatedEvent struct {
	baseEvent
	PlaylistID  string
	Name        string
	MoodChanger bool
}

// Type returns the event type.
func (e PlaylistCreatedEvent) Type() EventType {
	return EventPlaylistCreated
}

// NewPlaylistCreatedEvent creates a new PlaylistCreatedEvent.
func NewPlaylistCreatedEvent(playlistID, name string, moodChanger bool) PlaylistCreatedEvent {
	return PlaylistCreatedEvent{
		baseEvent:   newBaseEvent(),
		PlaylistID:  playlistID,
		Name:        name,
		MoodChanger: moodChanger,
	}
}
