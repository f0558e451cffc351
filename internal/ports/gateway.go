package ports

import (
	"context"

	"github.com/tejashwikalptaru/aura/internal/domain"
)

// PlaylistRequest is the body of a create-playlist call.
type PlaylistRequest struct {
	Name        string
	TrackIDs    []string
	MoodChanger bool
}

// Gateway is the backend HTTP API. Every call except Hello is authorized by the session token.
// Calls never retry; failures are returned as *domain.GatewayError.
type Gateway interface {
	// Hello probes the backend and returns its greeting.
	Hello(ctx context.Context) (string, error)

	Profile(ctx context.Context, session string) (domain.Profile, error)
	Library(ctx context.Context, session string) (domain.Library, error)
	Track(ctx context.Context, session, trackID string) (domain.Track, error)
	Playlist(ctx context.Context, session, playlistID string) (domain.Playlist, error)

	// Lyrics returns the lyrics text, or "" when the backend has none.
	Lyrics(ctx context.Context, session, title, artist string) (string, error)

	// DetectEmotion submits one frame (a data URL) and returns raw per-label scores.
	DetectEmotion(ctx context.Context, session, frame string) (map[string]float64, error)

	// DominantEmotion submits an accumulated tally and returns the raw dominant label.
	DominantEmotion(ctx context.Context, session string, counts map[string]float64) (string, error)

	RecommendSongs(ctx context.Context, session string, emotion string, genres []string) ([]domain.Song, error)

	// CreatePlaylist returns the new playlist identifier.
	CreatePlaylist(ctx context.Context, session string, req PlaylistRequest) (string, error)

	// Navigate resolves a logical page to the location the backend redirects to.
	Navigate(ctx context.Context, session string, page domain.Page, params map[string]string) (domain.Location, error)

	// LoginURL is the browser target that starts the OAuth flow.
	LoginURL() string

	// LogoutURL is the browser target that ends the session.
	LogoutURL(session string) string
}
