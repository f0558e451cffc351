package service

import (
	"context"
	"sync"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// fakeGateway is a scriptable ports.Gateway that counts calls per endpoint.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	profile   domain.Profile
	library   domain.Library
	tracks    map[string]domain.Track
	playlists map[string]domain.Playlist
	lyrics    map[string]string // keyed by title
	scores    []map[string]float64
	dominant  string
	songs     []domain.Song
	err       map[string]error

	lastCounts      map[string]float64
	lastRecommend   []string
	lastPlaylistReq ports.PlaylistRequest
	lastNavigate    map[string]string
	block           chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		calls:     make(map[string]int),
		tracks:    make(map[string]domain.Track),
		playlists: make(map[string]domain.Playlist),
		lyrics:    make(map[string]string),
		err:       make(map[string]error),
	}
}

func (g *fakeGateway) count(op string) error {
	g.mu.Lock()
	g.calls[op]++
	err := g.err[op]
	block := g.block
	g.mu.Unlock()
	if block != nil && op == "lyrics" {
		<-block
	}
	return err
}

func (g *fakeGateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *fakeGateway) SetError(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err[op] = err
}

func (g *fakeGateway) Hello(context.Context) (string, error) {
	return "Hello", g.count("hello")
}

func (g *fakeGateway) Profile(context.Context, string) (domain.Profile, error) {
	if err := g.count("profile"); err != nil {
		return domain.Profile{}, err
	}
	return g.profile, nil
}

func (g *fakeGateway) Library(context.Context, string) (domain.Library, error) {
	if err := g.count("library"); err != nil {
		return domain.Library{}, err
	}
	return g.library, nil
}

func (g *fakeGateway) Track(_ context.Context, _ string, trackID string) (domain.Track, error) {
	if err := g.count("track"); err != nil {
		return domain.Track{}, err
	}
	t, ok := g.tracks[trackID]
	if !ok {
		return domain.Track{}, domain.NewGatewayError("track", 404, "Track not found", nil)
	}
	return t, nil
}

func (g *fakeGateway) Playlist(_ context.Context, _ string, playlistID string) (domain.Playlist, error) {
	if err := g.count("playlist"); err != nil {
		return domain.Playlist{}, err
	}
	p, ok := g.playlists[playlistID]
	if !ok {
		return domain.Playlist{}, domain.NewGatewayError("playlist", 404, "Playlist not found", nil)
	}
	return p, nil
}

func (g *fakeGateway) Lyrics(_ context.Context, _ string, title, _ string) (string, error) {
	if err := g.count("lyrics"); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lyrics[title], nil
}

func (g *fakeGateway) DetectEmotion(context.Context, string, string) (map[string]float64, error) {
	if err := g.count("detect"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.scores) == 0 {
		return map[string]float64{}, nil
	}
	s := g.scores[0]
	if len(g.scores) > 1 {
		g.scores = g.scores[1:]
	}
	return s, nil
}

func (g *fakeGateway) DominantEmotion(_ context.Context, _ string, counts map[string]float64) (string, error) {
	g.mu.Lock()
	g.lastCounts = counts
	g.mu.Unlock()
	if err := g.count("dominant"); err != nil {
		return "", err
	}
	return g.dominant, nil
}

func (g *fakeGateway) RecommendSongs(_ context.Context, _ string, _ string, genres []string) ([]domain.Song, error) {
	g.mu.Lock()
	g.lastRecommend = genres
	g.mu.Unlock()
	if err := g.count("recommend"); err != nil {
		return nil, err
	}
	return g.songs, nil
}

func (g *fakeGateway) CreatePlaylist(_ context.Context, _ string, req ports.PlaylistRequest) (string, error) {
	g.mu.Lock()
	g.lastPlaylistReq = req
	g.mu.Unlock()
	if err := g.count("create_playlist"); err != nil {
		return "", err
	}
	return "pl-new", nil
}

func (g *fakeGateway) Navigate(_ context.Context, session string, page domain.Page, params map[string]string) (domain.Location, error) {
	g.mu.Lock()
	g.lastNavigate = params
	g.mu.Unlock()
	if err := g.count("navigate"); err != nil {
		return domain.Location{}, err
	}
	return domain.Location{Page: page, Session: session}, nil
}

func (g *fakeGateway) LoginURL() string {
	return "http://backend/api/spotify/login/"
}

func (g *fakeGateway) LogoutURL(session string) string {
	return "http://backend/api/spotify/logout/?session=" + session
}

var _ ports.Gateway = (*fakeGateway)(nil)

// mapSessionStore is an in-memory ports.SessionStore for service tests.
type mapSessionStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapSessionStore() *mapSessionStore {
	return &mapSessionStore{data: make(map[string][]byte)}
}

func (m *mapSessionStore) Get(session, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[session+"/"+key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mapSessionStore) Set(session, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[session+"/"+key] = value
	return nil
}

func (m *mapSessionStore) Delete(session, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, session+"/"+key)
	return nil
}

func (m *mapSessionStore) Clear(session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if len(k) > len(session) && k[:len(session)+1] == session+"/" {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *mapSessionStore) Close() error { return nil }

var _ ports.SessionStore = (*mapSessionStore)(nil)
