package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// LyricsService memoizes lyrics per track ID for the lifetime of the process.
// A failed or empty lookup is cached as not found, so each track is fetched at most once.
// Concurrent requests for the same track share one backend call.
type LyricsService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	gateway ports.Gateway
	bus     ports.EventBus

	cache map[string]domain.Lyrics
	group singleflight.Group

	mu sync.RWMutex
}

// NewLyricsService creates a new lyrics cache.
func NewLyricsService(logger *slog.Logger, gateway ports.Gateway, bus ports.EventBus) *LyricsService {
	logger.Debug("lyrics service initialized")
	return &LyricsService{
		logger:  logger,
		gateway: gateway,
		bus:     bus,
		cache:   make(map[string]domain.Lyrics),
	}
}

// Lyrics returns the lyrics of track, calling the backend only on the first request for its ID.
func (s *LyricsService) Lyrics(ctx context.Context, session string, track domain.Track) (domain.Lyrics, error) {
	if session == "" {
		return domain.Lyrics{}, domain.ErrMissingSession
	}
	if track.ID == "" {
		return domain.Lyrics{}, domain.ErrTrackNotFound
	}

	if lyrics, ok := s.Cached(track.ID); ok {
		return lyrics, nil
	}

	v, _, _ := s.group.Do(track.ID, func() (any, error) {
		if lyrics, ok := s.Cached(track.ID); ok {
			return lyrics, nil
		}

		lyrics := domain.NotFoundLyrics(track.ID)
		text, err := s.gateway.Lyrics(ctx, session, track.Title, track.Artist)
		switch {
		case err != nil:
			s.logger.Warn("failed to fetch lyrics",
				slog.String("track_id", track.ID),
				slog.Any("error", err))
		case text != "":
			lyrics = domain.Lyrics{TrackID: track.ID, Text: text, Found: true}
		}

		s.mu.Lock()
		s.cache[track.ID] = lyrics
		s.mu.Unlock()

		s.bus.Publish(domain.NewLyricsLoadedEvent(lyrics))
		return lyrics, nil
	})

	return v.(domain.Lyrics), nil
}

// Cached returns the cache entry for trackID. The boolean is false when the
// track was never requested, which is distinct from a cached not-found entry.
func (s *LyricsService) Cached(trackID string) (domain.Lyrics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lyrics, ok := s.cache[trackID]
	return lyrics, ok
}

// Verify that LyricsService implements the expected interface patterns
var _ interface {
	Lyrics(context.Context, string, domain.Track) (domain.Lyrics, error)
	Cached(string) (domain.Lyrics, bool)
} = (*LyricsService)(nil)
