package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/logger"
)

// recordingQueue captures SetQueue calls.
type recordingQueue struct {
	tracks    []domain.Track
	currentID string
	err       error
}

func (q *recordingQueue) SetQueue(tracks []domain.Track, currentID string) error {
	q.tracks = tracks
	q.currentID = currentID
	return q.err
}

func newTestLibraryService() (*LibraryService, *fakeGateway, *recordingQueue, *mapSessionStore) {
	gateway := newFakeGateway()
	queue := &recordingQueue{}
	store := newMapSessionStore()
	return NewLibraryService(logger.NewTestLogger(), gateway, queue, store), gateway, queue, store
}

func TestLibraryService_Home(t *testing.T) {
	service, gateway, _, _ := newTestLibraryService()
	gateway.profile = domain.Profile{DisplayName: "Ada", Followers: 3}
	gateway.library = domain.Library{Playlists: []domain.PlaylistSummary{{ID: "p1", Name: "Mix"}}}

	page, err := service.Home(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, "Ada", page.Profile.DisplayName)
	assert.Len(t, page.Library.Playlists, 1)
	assert.Equal(t, 1, gateway.Calls("profile"))
	assert.Equal(t, 1, gateway.Calls("library"))
}

func TestLibraryService_HomeFailure(t *testing.T) {
	service, gateway, _, _ := newTestLibraryService()
	gateway.SetError("library", domain.NewGatewayError("library", 500, "Failed to fetch library", nil))

	_, err := service.Home(context.Background(), "s1")
	var gatewayErr *domain.GatewayError
	assert.ErrorAs(t, err, &gatewayErr)
}

func TestLibraryService_MissingSession(t *testing.T) {
	service, gateway, _, _ := newTestLibraryService()
	ctx := context.Background()

	_, err := service.Home(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingSession)
	_, err = service.Profile(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingSession)
	_, err = service.Library(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingSession)
	_, err = service.OpenPlayer(ctx, domain.Location{Page: domain.PageMediaPlayer, TrackID: "t1"})
	assert.ErrorIs(t, err, domain.ErrMissingSession)

	assert.Equal(t, 0, gateway.Calls("profile")+gateway.Calls("library")+gateway.Calls("track"))
}

func TestLibraryService_OpenPlayer(t *testing.T) {
	tracks := []domain.Track{createTestTrack("a", time.Minute), createTestTrack("b", time.Minute)}

	tests := []struct {
		name        string
		loc         domain.Location
		setup       func(g *fakeGateway)
		wantErr     error
		wantTracks  int
		wantCurrent string
	}{
		{
			name:    "neither playlist nor track",
			loc:     domain.Location{Session: "s1"},
			wantErr: domain.ErrNoPlaybackSource,
		},
		{
			name: "empty playlist",
			loc:  domain.Location{Session: "s1", PlaylistID: "empty"},
			setup: func(g *fakeGateway) {
				g.playlists["empty"] = domain.Playlist{ID: "empty"}
			},
			wantErr: domain.ErrEmptyPlaylist,
		},
		{
			name: "playlist starts at first song",
			loc:  domain.Location{Session: "s1", PlaylistID: "p1"},
			setup: func(g *fakeGateway) {
				g.playlists["p1"] = domain.Playlist{ID: "p1", Songs: tracks}
			},
			wantTracks: 2,
		},
		{
			name: "playlist starts at requested track",
			loc:  domain.Location{Session: "s1", PlaylistID: "p1", TrackID: "b"},
			setup: func(g *fakeGateway) {
				g.playlists["p1"] = domain.Playlist{ID: "p1", Songs: tracks}
			},
			wantTracks:  2,
			wantCurrent: "b",
		},
		{
			name: "single track",
			loc:  domain.Location{Session: "s1", TrackID: "a"},
			setup: func(g *fakeGateway) {
				g.tracks["a"] = tracks[0]
			},
			wantTracks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, gateway, queue, _ := newTestLibraryService()
			if tt.setup != nil {
				tt.setup(gateway)
			}

			got, err := service.OpenPlayer(context.Background(), tt.loc)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, queue.tracks)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantTracks)
			assert.Len(t, queue.tracks, tt.wantTracks)
			assert.Equal(t, tt.wantCurrent, queue.currentID)
		})
	}
}

func TestLibraryService_OpenPlayerPropagatesPlayError(t *testing.T) {
	service, gateway, queue, _ := newTestLibraryService()
	gateway.tracks["a"] = createTestTrack("a", time.Minute)
	queue.err = domain.ErrNoAccessToken

	_, err := service.OpenPlayer(context.Background(), domain.Location{Session: "s1", TrackID: "a"})
	assert.ErrorIs(t, err, domain.ErrNoAccessToken)
}

func TestLibraryService_NavigateRecommend(t *testing.T) {
	service, gateway, _, _ := newTestLibraryService()

	_, err := service.Navigate(context.Background(), "s1", domain.PageRecommend, "", nil)
	assert.ErrorIs(t, err, domain.ErrNoEmotion)

	loc, err := service.Navigate(context.Background(), "s1", domain.PageRecommend, domain.EmotionHappy, []string{"Pop", "Rock"})
	require.NoError(t, err)

	assert.Equal(t, "s1", loc.Session)
	assert.Equal(t, "happy", loc.Emotion)
	assert.Equal(t, []string{"Pop", "Rock"}, loc.Genres)
	assert.Equal(t, map[string]string{"emotion": "happy", "genres": "Pop,Rock"}, gateway.lastNavigate)
}

func TestLibraryService_NavigateFailure(t *testing.T) {
	service, gateway, _, _ := newTestLibraryService()
	gateway.SetError("navigate", errors.New("network down"))

	_, err := service.Navigate(context.Background(), "s1", domain.PageLibrary, "", nil)
	assert.Error(t, err)
}

func TestLibraryService_Logout(t *testing.T) {
	service, _, _, store := newTestLibraryService()
	require.NoError(t, store.Set("s1", "recommendedSongs", []byte("[]")))

	url, err := service.Logout("s1")
	require.NoError(t, err)
	assert.Contains(t, url, "logout")

	_, err = store.Get("s1", "recommendedSongs")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
