package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// Session store keys of the last recommendation list.
const (
	keyRecommendedSongs   = "recommendedSongs"
	keyRecommendedEmotion = "recommendedEmotion"
	keyRecommendedGenres  = "recommendedGenres"
)

// RecommendationService fetches recommendation lists and creates playlists from them.
// The last list is kept in the session store together with the emotion and genres
// that produced it, and is reused only when both match the next request.
type RecommendationService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	gateway ports.Gateway
	store   ports.SessionStore
	bus     ports.EventBus
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(
	logger *slog.Logger,
	gateway ports.Gateway,
	store ports.SessionStore,
	bus ports.EventBus,
) *RecommendationService {
	logger.Debug("recommendation service initialized")
	return &RecommendationService{
		logger:  logger,
		gateway: gateway,
		store:   store,
		bus:     bus,
	}
}

// Recommend returns songs for emotion and genres, from the cache when the
// previous request had the same emotion and the same genres.
func (s *RecommendationService) Recommend(
	ctx context.Context,
	session string,
	emotion domain.Emotion,
	genres []string,
) (domain.Recommendation, error) {
	if session == "" {
		return domain.Recommendation{}, domain.ErrMissingSession
	}
	emotion = domain.NormalizeEmotion(string(emotion))
	if emotion == "" || len(genres) == 0 {
		return domain.Recommendation{}, domain.ErrNoEmotion
	}

	if cached, ok := s.cached(session); ok && cached.Emotion == emotion && domain.SameGenres(cached.Genres, genres) {
		s.logger.Debug("serving cached recommendations", slog.String("emotion", string(emotion)))
		s.bus.Publish(domain.NewRecommendationsLoadedEvent(cached, true))
		return cached, nil
	}

	songs, err := s.gateway.RecommendSongs(ctx, session, string(emotion), genres)
	if err != nil {
		s.logger.Error("failed to fetch recommendations", slog.Any("error", err))
		return domain.Recommendation{}, err
	}

	rec := domain.Recommendation{
		Emotion: emotion,
		Genres:  append([]string(nil), genres...),
		Songs:   songs,
	}
	if err := s.save(session, rec); err != nil {
		s.logger.Warn("failed to cache recommendations", slog.Any("error", err))
	}

	s.logger.Info("recommendations loaded",
		slog.String("emotion", string(emotion)),
		slog.Int("songs", len(songs)))
	s.bus.Publish(domain.NewRecommendationsLoadedEvent(rec, false))
	return rec, nil
}

// Refresh drops the cached list and fetches a new one ("go again").
func (s *RecommendationService) Refresh(
	ctx context.Context,
	session string,
	emotion domain.Emotion,
	genres []string,
) (domain.Recommendation, error) {
	if err := s.store.Delete(session, keyRecommendedSongs); err != nil {
		s.logger.Warn("failed to clear cached recommendations", slog.Any("error", err))
	}
	return s.Recommend(ctx, session, emotion, genres)
}

// Last returns the cached recommendation list of the session, if any.
func (s *RecommendationService) Last(session string) (domain.Recommendation, bool) {
	return s.cached(session)
}

// CreatePlaylist saves songs as a new provider playlist and returns its ID.
func (s *RecommendationService) CreatePlaylist(
	ctx context.Context,
	session string,
	name string,
	songs []domain.Song,
	moodChanger bool,
) (string, error) {
	if session == "" {
		return "", domain.ErrMissingSession
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrEmptyPlaylistName
	}
	if len(songs) == 0 {
		return "", domain.ErrNoRecommendations
	}

	ids := make([]string, 0, len(songs))
	for _, song := range songs {
		ids = append(ids, song.TrackID)
	}

	playlistID, err := s.gateway.CreatePlaylist(ctx, session, ports.PlaylistRequest{
		Name:        name,
		TrackIDs:    ids,
		MoodChanger: moodChanger,
	})
	if err != nil {
		s.logger.Error("failed to create playlist", slog.String("name", name), slog.Any("error", err))
		return "", err
	}

	s.logger.Info("playlist created",
		slog.String("playlist_id", playlistID),
		slog.Int("tracks", len(ids)),
		slog.Bool("mood_changer", moodChanger))
	s.bus.Publish(domain.NewPlaylistCreatedEvent(playlistID, name, moodChanger))
	return playlistID, nil
}

// CreateMoodChanger creates a mood changer playlist from the cached list.
// It is only offered for negative emotions.
func (s *RecommendationService) CreateMoodChanger(ctx context.Context, session, name string) (string, error) {
	rec, ok := s.cached(session)
	if !ok {
		return "", domain.ErrNoRecommendations
	}
	if !rec.Emotion.MoodChangerEligible() {
		return "", domain.NewValidationError("emotion", rec.Emotion, "mood changer is offered for sad, angry or frustrated moods only")
	}
	return s.CreatePlaylist(ctx, session, name, rec.Songs, true)
}

func (s *RecommendationService) cached(session string) (domain.Recommendation, bool) {
	var rec domain.Recommendation

	songs, err := s.store.Get(session, keyRecommendedSongs)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("failed to read cached recommendations", slog.Any("error", err))
		}
		return rec, false
	}
	emotion, err := s.store.Get(session, keyRecommendedEmotion)
	if err != nil {
		return rec, false
	}
	genres, err := s.store.Get(session, keyRecommendedGenres)
	if err != nil {
		return rec, false
	}

	if err := json.Unmarshal(songs, &rec.Songs); err != nil {
		s.logger.Warn("discarding corrupt recommendation cache", slog.Any("error", err))
		return rec, false
	}
	if err := json.Unmarshal(genres, &rec.Genres); err != nil {
		return rec, false
	}
	rec.Emotion = domain.Emotion(emotion)
	return rec, true
}

func (s *RecommendationService) save(session string, rec domain.Recommendation) error {
	songs, err := json.Marshal(rec.Songs)
	if err != nil {
		return domain.NewServiceError("RecommendationService", "save", "failed to marshal songs", err)
	}
	genres, err := json.Marshal(rec.Genres)
	if err != nil {
		return domain.NewServiceError("RecommendationService", "save", "failed to marshal genres", err)
	}

	if err := s.store.Set(session, keyRecommendedEmotion, []byte(rec.Emotion)); err != nil {
		return err
	}
	if err := s.store.Set(session, keyRecommendedGenres, genres); err != nil {
		return err
	}
	return s.store.Set(session, keyRecommendedSongs, songs)
}

// Forget clears everything cached for session, as on logout.
func (s *RecommendationService) Forget(session string) error {
	return s.store.Clear(session)
}

// Verify that RecommendationService implements the expected interface patterns
var _ interface {
	Recommend(context.Context, string, domain.Emotion, []string) (domain.Recommendation, error)
	Refresh(context.Context, string, domain.Emotion, []string) (domain.Recommendation, error)
	Last(string) (domain.Recommendation, bool)
	CreatePlaylist(context.Context, string, string, []domain.Song, bool) (string, error)
	CreateMoodChanger(context.Context, string, string) (string, error)
	Forget(string) error
} = (*RecommendationService)(nil)
