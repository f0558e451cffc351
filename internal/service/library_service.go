package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// QueueLoader is the part of the queue coordinator used to start a player page.
type QueueLoader interface {
	SetQueue(tracks []domain.Track, currentID string) error
}

// LibraryService loads the read-only pages (home, profile, library, playlist),
// resolves navigation through the backend and bootstraps the player page.
type LibraryService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	gateway ports.Gateway
	queue   QueueLoader
	store   ports.SessionStore
}

// NewLibraryService creates a new library service.
func NewLibraryService(
	logger *slog.Logger,
	gateway ports.Gateway,
	queue QueueLoader,
	store ports.SessionStore,
) *LibraryService {
	logger.Debug("library service initialized")
	return &LibraryService{
		logger:  logger,
		gateway: gateway,
		queue:   queue,
		store:   store,
	}
}

// HomePage is the content of the home page.
type HomePage struct {
	Profile domain.Profile
	Library domain.Library
}

// Home loads the profile and the library concurrently.
func (s *LibraryService) Home(ctx context.Context, session string) (HomePage, error) {
	if session == "" {
		return HomePage{}, domain.ErrMissingSession
	}

	var page HomePage
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.gateway.Profile(ctx, session)
		if err != nil {
			return err
		}
		page.Profile = profile
		return nil
	})
	g.Go(func() error {
		library, err := s.gateway.Library(ctx, session)
		if err != nil {
			return err
		}
		page.Library = library
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load home page", slog.Any("error", err))
		return HomePage{}, err
	}
	return page, nil
}

// Profile loads the profile page.
func (s *LibraryService) Profile(ctx context.Context, session string) (domain.Profile, error) {
	if session == "" {
		return domain.Profile{}, domain.ErrMissingSession
	}
	profile, err := s.gateway.Profile(ctx, session)
	if err != nil {
		s.logger.Error("failed to load profile", slog.Any("error", err))
	}
	return profile, err
}

// Library loads the library page.
func (s *LibraryService) Library(ctx context.Context, session string) (domain.Library, error) {
	if session == "" {
		return domain.Library{}, domain.ErrMissingSession
	}
	library, err := s.gateway.Library(ctx, session)
	if err != nil {
		s.logger.Error("failed to load library", slog.Any("error", err))
	}
	return library, err
}

// Playlist loads a playlist page.
func (s *LibraryService) Playlist(ctx context.Context, session, playlistID string) (domain.Playlist, error) {
	if session == "" {
		return domain.Playlist{}, domain.ErrMissingSession
	}
	if playlistID == "" {
		return domain.Playlist{}, domain.NewValidationError("playlist_id", playlistID, "is required")
	}
	playlist, err := s.gateway.Playlist(ctx, session, playlistID)
	if err != nil {
		s.logger.Error("failed to load playlist", slog.String("playlist_id", playlistID), slog.Any("error", err))
	}
	return playlist, err
}

// OpenPlayer fills the queue for a media player location and starts it.
// A playlist becomes the queue (starting at track_id when it is part of it,
// otherwise at the first song); a lone track_id becomes a one-track queue.
func (s *LibraryService) OpenPlayer(ctx context.Context, loc domain.Location) ([]domain.Track, error) {
	if err := loc.RequireSession(); err != nil {
		return nil, err
	}

	var tracks []domain.Track
	currentID := ""
	switch {
	case loc.PlaylistID != "":
		playlist, err := s.gateway.Playlist(ctx, loc.Session, loc.PlaylistID)
		if err != nil {
			s.logger.Error("failed to load playlist for player", slog.Any("error", err))
			return nil, err
		}
		if len(playlist.Songs) == 0 {
			return nil, domain.ErrEmptyPlaylist
		}
		tracks = playlist.Songs
		for _, t := range tracks {
			if t.ID == loc.TrackID {
				currentID = t.ID
				break
			}
		}
	case loc.TrackID != "":
		track, err := s.gateway.Track(ctx, loc.Session, loc.TrackID)
		if err != nil {
			s.logger.Error("failed to load track for player", slog.Any("error", err))
			return nil, err
		}
		tracks = []domain.Track{track}
	default:
		return nil, domain.ErrNoPlaybackSource
	}

	s.logger.Info("opening player",
		slog.String("playlist_id", loc.PlaylistID),
		slog.String("track_id", loc.TrackID),
		slog.Int("tracks", len(tracks)))

	if err := s.queue.SetQueue(tracks, currentID); err != nil {
		return tracks, err
	}
	return tracks, nil
}

// Navigate resolves page through the backend and returns the target location.
// Recommendation pages carry the emotion and genres forward.
func (s *LibraryService) Navigate(
	ctx context.Context,
	session string,
	page domain.Page,
	emotion domain.Emotion,
	genres []string,
) (domain.Location, error) {
	if session == "" {
		return domain.Location{}, domain.ErrMissingSession
	}

	params := map[string]string{}
	if page == domain.PageRecommend {
		if emotion == "" || len(genres) == 0 {
			return domain.Location{}, domain.ErrNoEmotion
		}
		params["emotion"] = string(emotion)
		params["genres"] = strings.Join(genres, ",")
	}

	loc, err := s.gateway.Navigate(ctx, session, page, params)
	if err != nil {
		s.logger.Error("navigation failed", slog.String("page", string(page)), slog.Any("error", err))
		return domain.Location{}, err
	}
	if loc.Session == "" {
		loc.Session = session
	}
	if page == domain.PageRecommend {
		if loc.Emotion == "" {
			loc.Emotion = string(emotion)
		}
		if len(loc.Genres) == 0 {
			loc.Genres = append([]string(nil), genres...)
		}
	}
	return loc, nil
}

// Ping probes the backend.
func (s *LibraryService) Ping(ctx context.Context) (string, error) {
	return s.gateway.Hello(ctx)
}

// LoginURL returns the browser target that starts the login flow.
func (s *LibraryService) LoginURL() string {
	return s.gateway.LoginURL()
}

// Logout forgets the session's cached state and returns the logout URL to open.
func (s *LibraryService) Logout(session string) (string, error) {
	if session == "" {
		return "", domain.ErrMissingSession
	}
	if err := s.store.Clear(session); err != nil {
		s.logger.Warn("failed to clear session state", slog.Any("error", err))
	}
	s.logger.Info("logged out")
	return s.gateway.LogoutURL(session), nil
}

// Verify that LibraryService implements the expected interface patterns
var _ interface {
	Home(context.Context, string) (HomePage, error)
	Profile(context.Context, string) (domain.Profile, error)
	Library(context.Context, string) (domain.Library, error)
	Playlist(context.Context, string, string) (domain.Playlist, error)
	OpenPlayer(context.Context, domain.Location) ([]domain.Track, error)
	Navigate(context.Context, string, domain.Page, domain.Emotion, []string) (domain.Location, error)
	Ping(context.Context) (string, error)
	Logout(string) (string, error)
} = (*LibraryService)(nil)
