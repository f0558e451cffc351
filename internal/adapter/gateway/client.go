// Package gateway implements the backend HTTP API the client talks to.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// RequestIDHeader carries the per-call correlation ID.
const RequestIDHeader = "X-Request-ID"

const (
	pathHello          = "/api/hello/"
	pathLogin          = "/api/spotify/login/"
	pathLogout         = "/api/spotify/logout/"
	pathProfile        = "/api/user/profile/"
	pathLibrary        = "/api/spotify/library/"
	pathTrack          = "/api/spotify/track/"
	pathPlaylist       = "/api/spotify/playlist/"
	pathLyrics         = "/api/spotify/lyrics/"
	pathDetectEmotion  = "/api/detect/emotion/"
	pathDominant       = "/api/get/dominant/emotion/"
	pathRecommend      = "/api/recommend/songs/"
	pathRecommendAlias = "/api/recommend_songs/"
	pathCreatePlaylist = "/api/spotify/create-playlist/"
	pathNavigate       = "/api/go/%s/"
)

// Client is the backend HTTP client. It is stateless apart from its configuration
// and never retries a failed call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	legacy     bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (a 15s timeout client by default).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLegacyRecommend routes recommendation requests to the old /api/recommend_songs/ alias.
func WithLegacyRecommend(legacy bool) Option {
	return func(c *Client) {
		c.legacy = legacy
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody is the error payload shape shared by every endpoint.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (b errorBody) text() string {
	switch {
	case b.Error != "":
		return b.Error
	case b.Message != "":
		return b.Message
	default:
		return b.Detail
	}
}

// call performs one request and decodes a successful JSON response into out.
// Any failure is returned as a *domain.GatewayError tagged with op.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.NewGatewayError(op, 0, "failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return domain.NewGatewayError(op, 0, "failed to build request", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend call failed",
			slog.String("op", op),
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return domain.NewGatewayError(op, 0, "backend unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewGatewayError(op, resp.StatusCode, "failed to read response", err)
	}

	c.logger.Debug("backend call",
		slog.String("op", op),
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &eb) == nil && eb.text() != "" {
			msg = eb.text()
		}
		c.logger.Warn("backend returned an error",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", msg),
			slog.String("request_id", requestID))
		return domain.NewGatewayError(op, resp.StatusCode, msg, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewGatewayError(op, resp.StatusCode, "invalid response", err)
	}
	return nil
}

func sessionQuery(session string) url.Values {
	q := url.Values{}
	q.Set("session", session)
	return q
}

// Hello probes the backend.
func (c *Client) Hello(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.call(ctx, "hello", http.MethodGet, pathHello, nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

type profileBody struct {
	DisplayName    string   `json:"display_name"`
	Email          string   `json:"email"`
	Followers      int      `json:"followers"`
	ProfilePicture *string  `json:"profile_picture"`
	TopArtists     []string `json:"top_artists"`
	Playlists      []string `json:"playlists"`
	errorBody
}

// Profile loads the signed-in user's profile.
func (c *Client) Profile(ctx context.Context, session string) (domain.Profile, error) {
	var out profileBody
	if err := c.call(ctx, "profile", http.MethodGet, pathProfile, sessionQuery(session), nil, &out); err != nil {
		return domain.Profile{}, err
	}
	if msg := out.text(); msg != "" && out.DisplayName == "" {
		return domain.Profile{}, domain.NewGatewayError("profile", http.StatusOK, msg, nil)
	}
	return domain.Profile{
		DisplayName:    out.DisplayName,
		Email:          out.Email,
		Followers:      out.Followers,
		ProfilePicture: deref(out.ProfilePicture),
		TopArtists:     out.TopArtists,
		Playlists:      out.Playlists,
	}, nil
}

type libraryBody struct {
	RecentlyPlayed []struct {
		ID         flexString `json:"id"`
		Name       string     `json:"name"`
		Artist     string     `json:"artist"`
		AlbumCover *string    `json:"album_cover"`
	} `json:"recently_played"`
	Playlists []playlistSummaryBody `json:"playlists"`
}

type playlistSummaryBody struct {
	ID       flexString `json:"id"`
	Name     string     `json:"name"`
	ImageURL *string    `json:"image_url"`
}

// Library loads the recently played tracks and the user's playlists.
func (c *Client) Library(ctx context.Context, session string) (domain.Library, error) {
	var out libraryBody
	if err := c.call(ctx, "library", http.MethodGet, pathLibrary, sessionQuery(session), nil, &out); err != nil {
		return domain.Library{}, err
	}

	lib := domain.Library{
		RecentlyPlayed: make([]domain.RecentTrack, 0, len(out.RecentlyPlayed)),
		Playlists:      make([]domain.PlaylistSummary, 0, len(out.Playlists)),
	}
	for _, t := range out.RecentlyPlayed {
		lib.RecentlyPlayed = append(lib.RecentlyPlayed, domain.RecentTrack{
			ID:         string(t.ID),
			Name:       t.Name,
			Artist:     t.Artist,
			AlbumCover: deref(t.AlbumCover),
		})
	}
	for _, p := range out.Playlists {
		lib.Playlists = append(lib.Playlists, domain.PlaylistSummary{
			ID:       string(p.ID),
			Name:     p.Name,
			ImageURL: deref(p.ImageURL),
		})
	}
	return lib, nil
}

// Track loads one playable track.
func (c *Client) Track(ctx context.Context, session, trackID string) (domain.Track, error) {
	q := sessionQuery(session)
	q.Set("track_id", trackID)

	var out trackBody
	if err := c.call(ctx, "track", http.MethodGet, pathTrack, q, nil, &out); err != nil {
		return domain.Track{}, err
	}
	if out.ID == "" {
		return domain.Track{}, domain.NewGatewayError("track", http.StatusOK, "track not found", domain.ErrTrackNotFound)
	}
	return out.toDomain(), nil
}

type playlistBody struct {
	ID       flexString  `json:"id"`
	Name     string      `json:"name"`
	ImageURL *string     `json:"image_url"`
	Songs    []trackBody `json:"songs"`
}

// Playlist loads a playlist with its songs.
func (c *Client) Playlist(ctx context.Context, session, playlistID string) (domain.Playlist, error) {
	q := sessionQuery(session)
	q.Set("playlist_id", playlistID)

	var out playlistBody
	if err := c.call(ctx, "playlist", http.MethodGet, pathPlaylist, q, nil, &out); err != nil {
		return domain.Playlist{}, err
	}

	pl := domain.Playlist{
		ID:       string(out.ID),
		Name:     out.Name,
		ImageURL: deref(out.ImageURL),
		Songs:    make([]domain.Track, 0, len(out.Songs)),
	}
	if pl.ID == "" {
		pl.ID = playlistID
	}
	for _, s := range out.Songs {
		if s.ID == "" {
			continue
		}
		pl.Songs = append(pl.Songs, s.toDomain())
	}
	return pl, nil
}

// Lyrics returns the lyrics of a song, or "" when the backend has none.
func (c *Client) Lyrics(ctx context.Context, session, title, artist string) (string, error) {
	q := sessionQuery(session)
	q.Set("song_title", title)
	q.Set("artist_name", artist)

	var out struct {
		Lyrics *string `json:"lyrics"`
	}
	if err := c.call(ctx, "lyrics", http.MethodGet, pathLyrics, q, nil, &out); err != nil {
		return "", err
	}
	return deref(out.Lyrics), nil
}

// DetectEmotion uploads one frame and returns the raw per-label scores.
func (c *Client) DetectEmotion(ctx context.Context, session, frame string) (map[string]float64, error) {
	body := map[string]string{"image": frame}

	var raw map[string]json.RawMessage
	if err := c.call(ctx, "detect_emotion", http.MethodPost, pathDetectEmotion, sessionQuery(session), body, &raw); err != nil {
		return nil, err
	}
	if msg, ok := raw["error"]; ok {
		var text string
		if err := json.Unmarshal(msg, &text); err != nil {
			text = string(msg)
		}
		return nil, domain.NewGatewayError("detect_emotion", http.StatusOK, text, nil)
	}

	scores := make(map[string]float64, len(raw))
	for label, value := range raw {
		var score float64
		if err := json.Unmarshal(value, &score); err != nil {
			c.logger.Debug("ignoring non-numeric score", slog.String("label", label))
			continue
		}
		scores[label] = score
	}
	return scores, nil
}

// DominantEmotion submits an accumulated tally and returns the backend's label.
func (c *Client) DominantEmotion(ctx context.Context, session string, counts map[string]float64) (string, error) {
	body := map[string]any{"emotion_count": counts}

	var out struct {
		DominantEmotion string `json:"dominant_emotion"`
		errorBody
	}
	if err := c.call(ctx, "dominant_emotion", http.MethodPost, pathDominant, sessionQuery(session), body, &out); err != nil {
		return "", err
	}
	if msg := out.text(); msg != "" {
		return "", domain.NewGatewayError("dominant_emotion", http.StatusOK, msg, nil)
	}
	return out.DominantEmotion, nil
}

// RecommendSongs asks the backend for songs matching emotion and genres.
func (c *Client) RecommendSongs(ctx context.Context, session, emotion string, genres []string) ([]domain.Song, error) {
	path := pathRecommend
	if c.legacy {
		path = pathRecommendAlias
	}
	body := struct {
		Emotion string   `json:"emotion"`
		Genres  []string `json:"genres"`
	}{Emotion: emotion, Genres: genres}

	var out struct {
		Songs []domain.Song `json:"songs"`
		errorBody
	}
	if err := c.call(ctx, "recommend", http.MethodPost, path, sessionQuery(session), body, &out); err != nil {
		return nil, err
	}
	if msg := out.text(); msg != "" && len(out.Songs) == 0 {
		return nil, domain.NewGatewayError("recommend", http.StatusOK, msg, nil)
	}
	return out.Songs, nil
}

// CreatePlaylist creates a playlist on the user's account and returns its ID.
func (c *Client) CreatePlaylist(ctx context.Context, session string, req ports.PlaylistRequest) (string, error) {
	body := struct {
		Name        string   `json:"name"`
		TrackIDs    []string `json:"track_ids"`
		MoodChanger bool     `json:"is_mood_changer"`
	}{Name: req.Name, TrackIDs: req.TrackIDs, MoodChanger: req.MoodChanger}

	var out struct {
		PlaylistID string `json:"playlist_id"`
		errorBody
	}
	if err := c.call(ctx, "create_playlist", http.MethodPost, pathCreatePlaylist, sessionQuery(session), body, &out); err != nil {
		return "", err
	}
	if out.PlaylistID == "" {
		msg := out.text()
		if msg == "" {
			msg = "Failed to create playlist."
		}
		return "", domain.NewGatewayError("create_playlist", http.StatusOK, msg, nil)
	}
	return out.PlaylistID, nil
}

// Navigate resolves page to the location the backend redirects to.
// The recommendation page posts its emotion and genres; other pages send params as query values.
func (c *Client) Navigate(ctx context.Context, session string, page domain.Page, params map[string]string) (domain.Location, error) {
	q := sessionQuery(session)
	path := fmt.Sprintf(pathNavigate, strings.Trim(string(page), "/"))

	method := http.MethodGet
	var body any
	if page == domain.PageRecommend {
		method = http.MethodPost
		body = struct {
			Emotion string   `json:"emotion"`
			Genres  []string `json:"genres"`
		}{Emotion: params["emotion"], Genres: splitGenres(params["genres"])}
	} else {
		for k, v := range params {
			q.Set(k, v)
		}
	}

	var out struct {
		RedirectURL string `json:"redirect_url"`
		errorBody
	}
	if err := c.call(ctx, "navigate", method, path, q, body, &out); err != nil {
		return domain.Location{}, err
	}
	if out.RedirectURL == "" {
		msg := out.text()
		if msg == "" {
			msg = "Failed to navigate."
		}
		return domain.Location{}, domain.NewGatewayError("navigate", http.StatusOK, msg, nil)
	}

	loc, err := domain.ParseLocation(out.RedirectURL)
	if err != nil {
		return domain.Location{}, domain.NewGatewayError("navigate", http.StatusOK, "invalid redirect", err)
	}
	if loc.Session == "" {
		loc.Session = session
	}
	if page == domain.PageRecommend {
		if loc.Emotion == "" {
			loc.Emotion = params["emotion"]
		}
		if len(loc.Genres) == 0 {
			loc.Genres = splitGenres(params["genres"])
		}
	}
	return loc, nil
}

// LoginURL is the browser target that starts the OAuth flow.
func (c *Client) LoginURL() string {
	return c.baseURL + pathLogin
}

// LogoutURL is the browser target that ends session.
func (c *Client) LogoutURL(session string) string {
	return c.baseURL + pathLogout + "?" + sessionQuery(session).Encode()
}

func splitGenres(s string) []string {
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ ports.Gateway = (*Client)(nil)
