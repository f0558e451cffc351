// Package service provides business logic for the Aura client.
package service

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// Direction selects the neighbor Advance moves to.
type Direction int

const (
	// DirectionNext moves forward, wrapping to the first track.
	DirectionNext Direction = iota

	// DirectionPrevious moves backward, wrapping to the last track.
	DirectionPrevious
)

// Player is the part of the playback service the queue drives.
type Player interface {
	// Play starts track at position, or buffers the request until the device is ready.
	Play(track domain.Track, position time.Duration) error

	// Follow adopts track as current without issuing a command.
	Follow(track domain.Track)

	// Stop switches the display to stopped.
	Stop()
}

// QueueService is the queue coordinator: an ordered track list with a current pointer.
// The current track is tracked by ID, so reordering never invalidates it.
// Every change of current asks the Player to start the new track.
type QueueService struct {
	// Dependencies (injected)
	logger *slog.Logger
	player Player
	bus    ports.EventBus

	// State
	tracks     []domain.Track
	currentID  string
	shuffle    func(n int, swap func(i, j int))
	retryDelay time.Duration
	retry      *time.Timer

	subscriptions []domain.SubscriptionID

	mu sync.Mutex
}

// QueueOption configures a QueueService.
type QueueOption func(*QueueService)

// WithShuffleFunc replaces the permutation used by Shuffle (rand.Shuffle by default).
func WithShuffleFunc(fn func(n int, swap func(i, j int))) QueueOption {
	return func(s *QueueService) {
		s.shuffle = fn
	}
}

// WithRetryDelay sets the delay of the single retry after a failed auto-advance.
func WithRetryDelay(d time.Duration) QueueOption {
	return func(s *QueueService) {
		s.retryDelay = d
	}
}

// NewQueueService creates a queue coordinator driving player.
func NewQueueService(logger *slog.Logger, player Player, bus ports.EventBus, opts ...QueueOption) *QueueService {
	s := &QueueService{
		logger:     logger,
		player:     player,
		bus:        bus,
		shuffle:    rand.Shuffle,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.subscriptions = append(s.subscriptions,
		bus.Subscribe(domain.EventTrackEnded, s.onTrackEnded),
		bus.Subscribe(domain.EventDeviceTrackSet, s.onDeviceTrackChanged),
	)

	logger.Debug("queue service initialized")
	return s
}

// SetQueue replaces the queue and the current pointer in one step.
// An empty currentID selects the first track. The new current track is started at 0.
func (s *QueueService) SetQueue(tracks []domain.Track, currentID string) error {
	s.mu.Lock()
	if len(tracks) > 0 && currentID == "" {
		currentID = tracks[0].ID
	}
	if len(tracks) > 0 && indexOf(tracks, currentID) < 0 {
		s.mu.Unlock()
		return domain.ErrTrackNotFound
	}

	s.tracks = append([]domain.Track(nil), tracks...)
	s.currentID = currentID
	s.cancelRetryLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("queue replaced",
		slog.Int("tracks", len(tracks)),
		slog.String("current", currentID))

	s.bus.Publish(domain.NewQueueChangedEvent(snapshot))
	current, ok := snapshot.Current()
	if !ok {
		return nil
	}
	s.bus.Publish(domain.NewCurrentTrackChangedEvent(current, snapshot.CurrentIndex()))
	return s.player.Play(current, 0)
}

// Advance moves current to the next or previous track with wrap-around.
// A single-track queue is left untouched.
func (s *QueueService) Advance(dir Direction) error {
	s.mu.Lock()
	n := len(s.tracks)
	if n == 0 {
		s.mu.Unlock()
		return domain.ErrQueueEmpty
	}
	idx := indexOf(s.tracks, s.currentID)
	if n == 1 || idx < 0 {
		s.mu.Unlock()
		return nil
	}

	switch dir {
	case DirectionPrevious:
		idx = (idx - 1 + n) % n
	default:
		idx = (idx + 1) % n
	}
	track := s.moveToLocked(idx)
	s.mu.Unlock()

	s.bus.Publish(domain.NewCurrentTrackChangedEvent(track, idx))
	return s.player.Play(track, 0)
}

// Next advances to the next track.
func (s *QueueService) Next() error {
	return s.Advance(DirectionNext)
}

// Previous advances to the previous track.
func (s *QueueService) Previous() error {
	return s.Advance(DirectionPrevious)
}

// Shuffle randomly permutes the queue, pinning the current track to the front.
// Playback is not restarted.
func (s *QueueService) Shuffle() {
	s.mu.Lock()
	if len(s.tracks) <= 1 {
		s.mu.Unlock()
		return
	}

	rest := make([]domain.Track, 0, len(s.tracks))
	var pinned []domain.Track
	for _, t := range s.tracks {
		if t.ID == s.currentID && pinned == nil {
			pinned = append(pinned, t)
			continue
		}
		rest = append(rest, t)
	}
	s.shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	s.tracks = append(pinned, rest...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("queue shuffled", slog.Int("tracks", len(snapshot.Tracks)))
	s.bus.Publish(domain.NewQueueChangedEvent(snapshot))
}

// JumpTo makes trackID current and starts it at 0.
// Selecting the current track again does nothing.
func (s *QueueService) JumpTo(trackID string) error {
	s.mu.Lock()
	idx := indexOf(s.tracks, trackID)
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrTrackNotFound
	}
	if trackID == s.currentID {
		s.mu.Unlock()
		return nil
	}
	track := s.moveToLocked(idx)
	s.mu.Unlock()

	s.bus.Publish(domain.NewCurrentTrackChangedEvent(track, idx))
	return s.player.Play(track, 0)
}

// Snapshot returns a copy of the queue.
func (s *QueueService) Snapshot() domain.QueueSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Current returns the current track.
func (s *QueueService) Current() (domain.Track, bool) {
	return s.Snapshot().Current()
}

// HandleTrackEnded advances past trackID once the player reports its end.
// Reports for a track that is no longer current are ignored, so simultaneous
// end heuristics cannot advance twice.
func (s *QueueService) HandleTrackEnded(trackID string) {
	s.mu.Lock()
	if trackID == "" || trackID != s.currentID {
		s.mu.Unlock()
		return
	}
	idx := indexOf(s.tracks, trackID)
	if idx < 0 || idx >= len(s.tracks)-1 {
		s.mu.Unlock()
		s.logger.Info("end of queue reached", slog.String("track_id", trackID))
		s.player.Stop()
		return
	}
	next := s.moveToLocked(idx + 1)
	s.mu.Unlock()

	s.bus.Publish(domain.NewCurrentTrackChangedEvent(next, idx+1))
	if err := s.player.Play(next, 0); err != nil {
		s.logger.Warn("failed to play next track, retrying once",
			slog.String("track_id", next.ID),
			slog.Any("error", err))
		s.scheduleRetry(next)
	}
}

func (s *QueueService) scheduleRetry(track domain.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelRetryLocked()
	s.retry = time.AfterFunc(s.retryDelay, func() {
		s.mu.Lock()
		stillCurrent := s.currentID == track.ID
		s.retry = nil
		s.mu.Unlock()
		if !stillCurrent {
			return
		}
		if err := s.player.Play(track, 0); err != nil {
			s.logger.Error("retry failed", slog.String("track_id", track.ID), slog.Any("error", err))
		}
	})
}

func (s *QueueService) cancelRetryLocked() {
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
}

func (s *QueueService) onTrackEnded(event domain.Event) {
	e, ok := event.(domain.TrackEndedEvent)
	if !ok {
		return
	}
	s.HandleTrackEnded(e.Track.ID)
}

// onDeviceTrackChanged follows a track switch made on the device itself.
func (s *QueueService) onDeviceTrackChanged(event domain.Event) {
	e, ok := event.(domain.DeviceTrackChangedEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	idx := indexOf(s.tracks, e.TrackID)
	if idx < 0 || e.TrackID == s.currentID {
		s.mu.Unlock()
		return
	}
	track := s.moveToLocked(idx)
	s.mu.Unlock()

	s.logger.Debug("following device track change", slog.String("track_id", track.ID))
	s.player.Follow(track)
	s.bus.Publish(domain.NewCurrentTrackChangedEvent(track, idx))
}

// moveToLocked sets current to the track at idx and returns it.
func (s *QueueService) moveToLocked(idx int) domain.Track {
	s.cancelRetryLocked()
	s.currentID = s.tracks[idx].ID
	return s.tracks[idx]
}

func (s *QueueService) snapshotLocked() domain.QueueSnapshot {
	return domain.QueueSnapshot{
		Tracks:    append([]domain.Track(nil), s.tracks...),
		CurrentID: s.currentID,
	}
}

// Shutdown detaches from the event bus and cancels a pending retry.
func (s *QueueService) Shutdown() error {
	s.mu.Lock()
	s.cancelRetryLocked()
	subs := s.subscriptions
	s.subscriptions = nil
	s.mu.Unlock()

	for _, id := range subs {
		s.bus.Unsubscribe(id)
	}
	return nil
}

func indexOf(tracks []domain.Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Verify that QueueService implements the expected interface patterns
var _ interface {
	SetQueue([]domain.Track, string) error
	Advance(Direction) error
	Shuffle()
	JumpTo(string) error
	Snapshot() domain.QueueSnapshot
	HandleTrackEnded(string)
	Shutdown() error
} = (*QueueService)(nil)
