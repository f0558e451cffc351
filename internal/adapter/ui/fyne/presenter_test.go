package fyne

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/aura/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/logger"
	"github.com/tejashwikalptaru/aura/internal/service"
	"github.com/tejashwikalptaru/aura/internal/testutil"
)

// fakeView records the calls the presenter makes.
type fakeView struct {
	mu sync.Mutex

	playing       bool
	volume        float64
	track         *domain.Track
	position      time.Duration
	duration      time.Duration
	playerState   domain.PlayerState
	lyrics        domain.Lyrics
	lyricsVisible bool
	queue         domain.QueueSnapshot

	greeting        string
	home            *service.HomePage
	profile         *domain.Profile
	library         *domain.Library
	playlist        *domain.Playlist
	playerShown     bool
	detectionShown  bool
	selectionShown  []domain.Emotion
	sampling        bool
	result          domain.Emotion
	recommendations *domain.Recommendation
	moodChanger     bool
	aboutShown      bool

	banner        string
	persistent    bool
	sessionError  string
	loginURL      string
	notifications []string
	openedURL     string
}

func (v *fakeView) SetPlayState(playing bool) { v.mu.Lock(); v.playing = playing; v.mu.Unlock() }
func (v *fakeView) SetVolume(volume float64)  { v.mu.Lock(); v.volume = volume; v.mu.Unlock() }
func (v *fakeView) SetTrackInfo(track domain.Track) {
	v.mu.Lock()
	v.track = &track
	v.mu.Unlock()
}
func (v *fakeView) ClearTrackInfo() { v.mu.Lock(); v.track = nil; v.mu.Unlock() }
func (v *fakeView) SetProgress(position, duration time.Duration) {
	v.mu.Lock()
	v.position, v.duration = position, duration
	v.mu.Unlock()
}
func (v *fakeView) SetPlayerState(state domain.PlayerState, _ string) {
	v.mu.Lock()
	v.playerState = state
	v.mu.Unlock()
}
func (v *fakeView) SetLyrics(lyrics domain.Lyrics) { v.mu.Lock(); v.lyrics = lyrics; v.mu.Unlock() }
func (v *fakeView) SetLyricsVisible(visible bool) {
	v.mu.Lock()
	v.lyricsVisible = visible
	v.mu.Unlock()
}
func (v *fakeView) SetQueue(queue domain.QueueSnapshot) { v.mu.Lock(); v.queue = queue; v.mu.Unlock() }
func (v *fakeView) ShowHome(page service.HomePage) {
	v.mu.Lock()
	v.home = &page
	v.mu.Unlock()
}
func (v *fakeView) SetGreeting(message string) { v.mu.Lock(); v.greeting = message; v.mu.Unlock() }
func (v *fakeView) ShowProfile(profile domain.Profile) {
	v.mu.Lock()
	v.profile = &profile
	v.mu.Unlock()
}
func (v *fakeView) ShowLibrary(library domain.Library) {
	v.mu.Lock()
	v.library = &library
	v.mu.Unlock()
}
func (v *fakeView) ShowPlaylist(pl domain.Playlist) { v.mu.Lock(); v.playlist = &pl; v.mu.Unlock() }
func (v *fakeView) ShowPlayer()                    { v.mu.Lock(); v.playerShown = true; v.mu.Unlock() }
func (v *fakeView) ShowEmotionDetection()          { v.mu.Lock(); v.detectionShown = true; v.mu.Unlock() }
func (v *fakeView) ShowEmotionSelection(emotions []domain.Emotion, _ []string) {
	v.mu.Lock()
	v.selectionShown = emotions
	v.mu.Unlock()
}
func (v *fakeView) SetSampling(active bool, _ time.Duration) {
	v.mu.Lock()
	v.sampling = active
	v.mu.Unlock()
}
func (v *fakeView) ShowEmotionResult(emotion domain.Emotion, _ []string) {
	v.mu.Lock()
	v.result = emotion
	v.mu.Unlock()
}
func (v *fakeView) ShowRecommendations(rec domain.Recommendation, moodChanger bool) {
	v.mu.Lock()
	v.recommendations = &rec
	v.moodChanger = moodChanger
	v.mu.Unlock()
}
func (v *fakeView) ShowAbout() { v.mu.Lock(); v.aboutShown = true; v.mu.Unlock() }
func (v *fakeView) ShowBanner(message string, persistent bool) {
	v.mu.Lock()
	v.banner, v.persistent = message, persistent
	v.mu.Unlock()
}
func (v *fakeView) ClearBanner() { v.mu.Lock(); v.banner = ""; v.mu.Unlock() }
func (v *fakeView) ShowSessionError(message, loginURL string) {
	v.mu.Lock()
	v.sessionError, v.loginURL = message, loginURL
	v.mu.Unlock()
}
func (v *fakeView) ShowNotification(title, message string) {
	v.mu.Lock()
	v.notifications = append(v.notifications, title+": "+message)
	v.mu.Unlock()
}
func (v *fakeView) OpenURL(rawURL string) { v.mu.Lock(); v.openedURL = rawURL; v.mu.Unlock() }

// fakeServices implements every controller interface the presenter uses.
type fakeServices struct {
	mu sync.Mutex

	state    domain.PlaybackSession
	queue    domain.QueueSnapshot
	toggles  int
	seeks    []time.Duration
	volumes  []float64
	retries  int
	nextErr  error
	jumps    []string
	shuffled bool

	lyricsCalls []string

	startedFor string
	stopped    bool
	emotion    domain.Emotion
	genres     []string

	recommendCalls []domain.Emotion
	refreshes      int
	last           *domain.Recommendation
	created        []string

	hello     string
	helloErr  error
	home      service.HomePage
	homeErr   error
	playlist  domain.Playlist
	opened    []domain.Location
	navigated []domain.Page
	navResult domain.Location

	showLyrics   bool
	lastLocation string

	// playGate, when set, holds TogglePlay until it is closed
	playGate chan struct{}
}

func (f *fakeServices) TogglePlay() error {
	if f.playGate != nil {
		<-f.playGate
	}
	f.mu.Lock()
	f.toggles++
	f.mu.Unlock()
	return nil
}
func (f *fakeServices) Seek(position time.Duration) error {
	f.mu.Lock()
	f.seeks = append(f.seeks, position)
	f.mu.Unlock()
	return nil
}
func (f *fakeServices) SetVolume(volume float64) error {
	f.mu.Lock()
	f.volumes = append(f.volumes, volume)
	f.mu.Unlock()
	return nil
}
func (f *fakeServices) Retry() error                     { f.mu.Lock(); f.retries++; f.mu.Unlock(); return nil }
func (f *fakeServices) GetState() domain.PlaybackSession { return f.state }
func (f *fakeServices) Next() error                      { return f.nextErr }
func (f *fakeServices) Previous() error                  { return f.nextErr }
func (f *fakeServices) Shuffle()                         { f.mu.Lock(); f.shuffled = true; f.mu.Unlock() }
func (f *fakeServices) JumpTo(trackID string) error {
	f.mu.Lock()
	f.jumps = append(f.jumps, trackID)
	f.mu.Unlock()
	return nil
}
func (f *fakeServices) Snapshot() domain.QueueSnapshot { return f.queue }

func (f *fakeServices) Lyrics(_ context.Context, _ string, track domain.Track) (domain.Lyrics, error) {
	f.mu.Lock()
	f.lyricsCalls = append(f.lyricsCalls, track.ID)
	f.mu.Unlock()
	return domain.Lyrics{TrackID: track.ID, Text: "la la", Found: true}, nil
}

func (f *fakeServices) Start(session string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session == "" {
		return "", domain.ErrMissingSession
	}
	f.startedFor = session
	return "w1", nil
}
func (f *fakeServices) Stop() { f.mu.Lock(); f.stopped = true; f.mu.Unlock() }
func (f *fakeServices) Select(emotion domain.Emotion, genres []string) error {
	f.mu.Lock()
	f.emotion, f.genres = emotion, genres
	f.mu.Unlock()
	return nil
}
func (f *fakeServices) Result() (domain.Emotion, []string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emotion, f.genres, f.emotion != ""
}

func (f *fakeServices) Recommend(_ context.Context, _ string, emotion domain.Emotion, genres []string) (domain.Recommendation, error) {
	f.mu.Lock()
	f.recommendCalls = append(f.recommendCalls, emotion)
	f.mu.Unlock()
	return domain.Recommendation{Emotion: emotion, Genres: genres}, nil
}
func (f *fakeServices) Refresh(ctx context.Context, session string, emotion domain.Emotion, genres []string) (domain.Recommendation, error) {
	f.mu.Lock()
	f.refreshes++
	f.mu.Unlock()
	return domain.Recommendation{Emotion: emotion, Genres: genres}, nil
}
func (f *fakeServices) Last(string) (domain.Recommendation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return domain.Recommendation{}, false
	}
	return *f.last, true
}
func (f *fakeServices) CreatePlaylist(_ context.Context, _ string, name string, _ []domain.Song, _ bool) (string, error) {
	f.mu.Lock()
	f.created = append(f.created, name)
	f.mu.Unlock()
	return "pl-1", nil
}
func (f *fakeServices) CreateMoodChanger(_ context.Context, _ string, name string) (string, error) {
	f.mu.Lock()
	f.created = append(f.created, "mood:"+name)
	f.mu.Unlock()
	return "pl-2", nil
}

func (f *fakeServices) Ping(context.Context) (string, error) { return f.hello, f.helloErr }
func (f *fakeServices) Home(context.Context, string) (service.HomePage, error) {
	return f.home, f.homeErr
}
func (f *fakeServices) Profile(context.Context, string) (domain.Profile, error) {
	return f.home.Profile, f.homeErr
}
func (f *fakeServices) Library(context.Context, string) (domain.Library, error) {
	return f.home.Library, f.homeErr
}
func (f *fakeServices) Playlist(_ context.Context, _ string, id string) (domain.Playlist, error) {
	pl := f.playlist
	pl.ID = id
	return pl, nil
}
func (f *fakeServices) OpenPlayer(_ context.Context, loc domain.Location) ([]domain.Track, error) {
	f.mu.Lock()
	f.opened = append(f.opened, loc)
	f.mu.Unlock()
	return nil, nil
}
func (f *fakeServices) Navigate(_ context.Context, session string, page domain.Page, emotion domain.Emotion, genres []string) (domain.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = append(f.navigated, page)
	if f.navResult.Page != "" {
		return f.navResult, nil
	}
	return domain.Location{Page: page, Session: session, Emotion: string(emotion), Genres: genres}, nil
}
func (f *fakeServices) LoginURL() string { return "http://backend/api/spotify/login/" }
func (f *fakeServices) Logout(session string) (string, error) {
	return "http://backend/api/spotify/logout/?session=" + session, nil
}

func (f *fakeServices) GetVolume() float64 { return 0.8 }
func (f *fakeServices) GetShowLyrics() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.showLyrics
}
func (f *fakeServices) SetShowLyrics(show bool) error {
	f.mu.Lock()
	f.showLyrics = show
	f.mu.Unlock()
	return nil
}
func (f *fakeServices) SetLastLocation(raw string) error {
	f.mu.Lock()
	f.lastLocation = raw
	f.mu.Unlock()
	return nil
}

type presenterFixture struct {
	presenter *Presenter
	view      *fakeView
	services  *fakeServices
	bus       *eventbus.SyncEventBus
}

func newPresenterFixture(t *testing.T, configure ...func(*fakeServices)) *presenterFixture {
	t.Helper()
	svc := &fakeServices{state: domain.PlaybackSession{Volume: 0.8}}
	for _, c := range configure {
		c(svc)
	}
	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	view := &fakeView{}
	p := NewPresenter(logger.NewTestLogger(), Services{
		Playback:        svc,
		Queue:           svc,
		Lyrics:          svc,
		Emotion:         svc,
		Recommendations: svc,
		Library:         svc,
		Preferences:     svc,
	}, bus, view)
	t.Cleanup(func() {
		p.Shutdown()
		_ = bus.Close()
	})
	return &presenterFixture{presenter: p, view: view, services: svc, bus: bus}
}

func TestPresenter_SyncsInitialState(t *testing.T) {
	track := domain.Track{ID: "t1", Title: "Song"}
	f := newPresenterFixture(t, func(s *fakeServices) {
		s.state = domain.PlaybackSession{Volume: 0.5, Status: domain.StatusPlaying, State: domain.PlayerReady, Track: &track}
		s.queue = domain.QueueSnapshot{Tracks: []domain.Track{track}, CurrentID: "t1"}
	})

	assert.Equal(t, 0.5, f.view.volume)
	assert.True(t, f.view.playing)
	assert.Equal(t, domain.PlayerReady, f.view.playerState)
	require.NotNil(t, f.view.track)
	assert.Equal(t, "t1", f.view.track.ID)
	assert.Equal(t, "t1", f.view.queue.CurrentID)
}

func TestPresenter_GreetsFromBackend(t *testing.T) {
	f := newPresenterFixture(t, func(s *fakeServices) { s.hello = "Hello from Aura" })
	f.presenter.Wait()
	assert.Equal(t, "Hello from Aura", f.view.greeting)
}

func TestPresenter_GreetingWhenBackendDown(t *testing.T) {
	f := newPresenterFixture(t, func(s *fakeServices) { s.helloErr = errors.New("connection refused") })
	f.presenter.Wait()
	assert.Equal(t, "The Aura backend is not reachable.", f.view.greeting)
	assert.Empty(t, f.view.banner)
}

func TestPresenter_OpenWithoutSession(t *testing.T) {
	f := newPresenterFixture(t)

	err := f.presenter.Open(domain.Location{Page: domain.PageProfile})
	assert.ErrorIs(t, err, domain.ErrMissingSession)
	assert.Equal(t, "Session key is missing. Please log in again.", f.view.sessionError)
	assert.Equal(t, "http://backend/api/spotify/login/", f.view.loginURL)
	assert.Nil(t, f.view.home)
}

func TestPresenter_OpenPages(t *testing.T) {
	f := newPresenterFixture(t, func(s *fakeServices) {
		s.home = service.HomePage{
			Profile: domain.Profile{DisplayName: "Ada"},
			Library: domain.Library{Playlists: []domain.PlaylistSummary{{ID: "p1", Name: "Focus"}}},
		}
		s.playlist = domain.Playlist{Name: "Mix"}
	})

	require.NoError(t, f.presenter.OpenLocation("aura://home?session=s1"))
	f.presenter.Wait()
	require.NotNil(t, f.view.home)
	assert.Equal(t, "Ada", f.view.home.Profile.DisplayName)
	assert.Equal(t, "aura://home?session=s1", f.services.lastLocation)

	require.NoError(t, f.presenter.OpenLocation("aura://profile?session=s1"))
	f.presenter.Wait()
	require.NotNil(t, f.view.profile)
	assert.Equal(t, "Ada", f.view.profile.DisplayName)

	require.NoError(t, f.presenter.OpenLocation("aura://library?session=s1"))
	f.presenter.Wait()
	require.NotNil(t, f.view.library)
	assert.Equal(t, "Focus", f.view.library.Playlists[0].Name)

	require.NoError(t, f.presenter.OpenLocation("aura://playlist?session=s1&playlist_id=p9"))
	f.presenter.Wait()
	require.NotNil(t, f.view.playlist)
	assert.Equal(t, "p9", f.view.playlist.ID)

	require.NoError(t, f.presenter.OpenLocation("aura://detect/emotion?session=s1"))
	assert.True(t, f.view.detectionShown)

	require.NoError(t, f.presenter.OpenLocation("aura://select/emotion?session=s1"))
	assert.Equal(t, domain.SelectableEmotions, f.view.selectionShown)

	require.NoError(t, f.presenter.OpenLocation("aura://about?session=s1"))
	assert.True(t, f.view.aboutShown)

	assert.Equal(t, "s1", f.presenter.Location().Session)
}

func TestPresenter_OpenPlayer(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.mu.Lock()
	f.presenter.location = domain.Location{Page: domain.PageHome, Session: "s1"}
	f.presenter.mu.Unlock()

	f.presenter.OnPlayPlaylist("p1", "t3")
	f.presenter.Wait()

	assert.True(t, f.view.playerShown)
	require.Len(t, f.services.opened, 1)
	assert.Equal(t, domain.Location{Page: domain.PageMediaPlayer, Session: "s1", PlaylistID: "p1", TrackID: "t3"}, f.services.opened[0])
}

func TestPresenter_HomeError(t *testing.T) {
	f := newPresenterFixture(t, func(s *fakeServices) {
		s.homeErr = domain.NewGatewayError("profile", 500, "Failed to fetch profile", nil)
	})

	require.NoError(t, f.presenter.OpenLocation("aura://home?session=s1"))
	f.presenter.Wait()
	assert.Equal(t, "Failed to fetch profile", f.view.banner)
	assert.False(t, f.view.persistent)
}

func TestPresenter_PlaybackCommands(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnPlayClicked()
	f.presenter.OnSeekRequested(12.5)
	f.presenter.OnVolumeChanged(40)
	f.presenter.OnShuffleClicked()
	f.presenter.OnQueueTrackSelected("t2")
	f.presenter.Wait()

	assert.Equal(t, 1, f.services.toggles)
	assert.Equal(t, []time.Duration{12500 * time.Millisecond}, f.services.seeks)
	assert.Equal(t, []float64{0.4}, f.services.volumes)
	assert.True(t, f.services.shuffled)
	assert.Equal(t, []string{"t2"}, f.services.jumps)
}

func TestPresenter_EmptyQueueIsQuiet(t *testing.T) {
	f := newPresenterFixture(t, func(s *fakeServices) { s.nextErr = domain.ErrQueueEmpty })

	f.presenter.OnNextClicked()
	f.presenter.OnPreviousClicked()
	f.presenter.Wait()
	assert.Empty(t, f.view.banner)
}

func TestPresenter_PlaybackCommandsDoNotBlockCaller(t *testing.T) {
	gate := make(chan struct{})
	f := newPresenterFixture(t, func(s *fakeServices) { s.playGate = gate })
	var release sync.Once
	t.Cleanup(func() { release.Do(func() { close(gate) }) })

	returned := make(chan struct{})
	go func() {
		f.presenter.OnPlayClicked()
		f.presenter.OnVolumeChanged(10)
		f.presenter.OnVolumeChanged(20)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("player commands blocked the caller")
	}

	f.services.mu.Lock()
	assert.Zero(t, f.services.toggles)
	assert.Empty(t, f.services.volumes)
	f.services.mu.Unlock()

	release.Do(func() { close(gate) })
	f.presenter.Wait()
	assert.Equal(t, 1, f.services.toggles)
	assert.Equal(t, []float64{0.1, 0.2}, f.services.volumes, "commands run in click order")
}

func TestPresenter_CommandErrorShowsBanner(t *testing.T) {
	f := newPresenterFixture(t, func(s *fakeServices) { s.nextErr = domain.ErrPlayerNotReady })

	f.presenter.OnNextClicked()
	f.presenter.Wait()
	assert.Equal(t, domain.UserMessage(domain.ErrPlayerNotReady), f.view.banner)
}

func TestPresenter_RetryClearsBanner(t *testing.T) {
	f := newPresenterFixture(t)
	f.bus.Publish(domain.NewPlaybackErrorEvent("Player failed", false, true, errors.New("x")))
	assert.Equal(t, "Player failed", f.view.banner)
	assert.True(t, f.view.persistent)

	f.presenter.OnRetryClicked()
	f.presenter.Wait()
	assert.Empty(t, f.view.banner)
	assert.Equal(t, 1, f.services.retries)
}

func TestPresenter_PlaybackEvents(t *testing.T) {
	f := newPresenterFixture(t)
	track := domain.Track{ID: "t1", Title: "Song", Duration: 3 * time.Minute}

	f.bus.Publish(domain.NewTrackStartedEvent(track))
	assert.True(t, f.view.playing)
	require.NotNil(t, f.view.track)
	assert.Equal(t, "t1", f.view.track.ID)

	f.bus.Publish(domain.NewTrackProgressEvent(30*time.Second, track.Duration))
	assert.Equal(t, 30*time.Second, f.view.position)

	f.bus.Publish(domain.NewTrackPausedEvent(track, 30*time.Second))
	assert.False(t, f.view.playing)

	f.bus.Publish(domain.NewVolumeChangedEvent(0.3))
	assert.Equal(t, 0.3, f.view.volume)

	f.bus.Publish(domain.NewTrackStoppedEvent(track))
	assert.Equal(t, time.Duration(0), f.view.position)

	f.bus.Publish(domain.NewPlayerStateChangedEvent(domain.PlayerLoading, domain.PlayerError, "gone"))
	assert.Equal(t, domain.PlayerError, f.view.playerState)
}

func TestPresenter_LyricsFollowCurrentTrack(t *testing.T) {
	f := newPresenterFixture(t)
	f.presenter.mu.Lock()
	f.presenter.location = domain.Location{Page: domain.PageMediaPlayer, Session: "s1"}
	f.presenter.mu.Unlock()

	f.bus.Publish(domain.NewCurrentTrackChangedEvent(domain.Track{ID: "t1"}, 0))
	f.presenter.Wait()
	assert.Empty(t, f.services.lyricsCalls, "hidden lyrics are not fetched")

	f.presenter.OnLyricsToggled()
	f.presenter.Wait()
	assert.True(t, f.view.lyricsVisible)
	assert.True(t, f.services.showLyrics)
	assert.Equal(t, []string{"t1"}, f.services.lyricsCalls)

	f.bus.Publish(domain.NewLyricsLoadedEvent(domain.Lyrics{TrackID: "other", Text: "x", Found: true}))
	assert.Equal(t, "t1", f.view.lyrics.TrackID, "lyrics of another track are ignored")

	f.bus.Publish(domain.NewLyricsLoadedEvent(domain.Lyrics{TrackID: "t1", Text: "la la", Found: true}))
	assert.Equal(t, "la la", f.view.lyrics.Text)
}

func TestPresenter_EmotionFlow(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnStartDetection()
	assert.Equal(t, "Session key is missing. Please log in again.", f.view.sessionError)

	require.NoError(t, f.presenter.OpenLocation("aura://detect/emotion?session=s1"))
	f.presenter.OnStartDetection()
	assert.Equal(t, "s1", f.services.startedFor)

	f.bus.Publish(domain.NewSamplingStartedEvent("w1", 10*time.Second))
	assert.True(t, f.view.sampling)

	f.bus.Publish(domain.NewSamplingFinishedEvent("w1", 5, domain.EmotionHappy, nil))
	assert.False(t, f.view.sampling)
	assert.Equal(t, domain.EmotionHappy, f.view.result)

	f.bus.Publish(domain.NewSamplingFinishedEvent("w2", 0, "", errors.New("no face")))
	assert.Contains(t, f.view.notifications, "Emotion Detection: No emotion detected. Please try again.")

	f.presenter.OnStopDetection()
	assert.True(t, f.services.stopped)
}

func TestPresenter_SelectEmotionRecommends(t *testing.T) {
	f := newPresenterFixture(t)
	require.NoError(t, f.presenter.OpenLocation("aura://select/emotion?session=s1"))

	f.presenter.OnEmotionSelected(domain.EmotionSad, []string{"Blues"})
	f.presenter.Wait()

	assert.Equal(t, []domain.Page{domain.PageRecommend}, f.services.navigated)
	assert.Equal(t, []domain.Emotion{domain.EmotionSad}, f.services.recommendCalls)
	assert.Equal(t, domain.PageRecommend, f.presenter.Location().Page)
}

func TestPresenter_RecommendWithoutEmotion(t *testing.T) {
	f := newPresenterFixture(t)
	require.NoError(t, f.presenter.OpenLocation("aura://detect/emotion?session=s1"))

	f.presenter.OnRecommendClicked()
	f.presenter.Wait()
	assert.Equal(t, "Emotion and genres are missing.", f.view.banner)
	assert.Empty(t, f.services.navigated)
}

func TestPresenter_RecommendationsLoaded(t *testing.T) {
	f := newPresenterFixture(t)

	f.bus.Publish(domain.NewRecommendationsLoadedEvent(domain.Recommendation{Emotion: domain.EmotionAngry}, false))
	require.NotNil(t, f.view.recommendations)
	assert.True(t, f.view.moodChanger)

	f.bus.Publish(domain.NewRecommendationsLoadedEvent(domain.Recommendation{Emotion: domain.EmotionHappy}, true))
	assert.False(t, f.view.moodChanger)
}

func TestPresenter_PlaylistCommands(t *testing.T) {
	f := newPresenterFixture(t)
	require.NoError(t, f.presenter.OpenLocation("aura://recommend/songs?session=s1&emotion=sad&genres=Blues"))
	f.presenter.Wait()

	f.presenter.OnCreatePlaylist("Later")
	f.presenter.Wait()
	assert.Equal(t, "no recommendations available", f.view.banner)

	f.services.last = &domain.Recommendation{Emotion: domain.EmotionSad, Genres: []string{"Blues"}}
	f.presenter.OnCreatePlaylist("Rainy")
	f.presenter.OnCreateMoodChanger("Lift")
	f.presenter.OnGoAgainClicked()
	f.presenter.Wait()

	assert.ElementsMatch(t, []string{"Rainy", "mood:Lift"}, f.services.created)
	assert.Equal(t, 1, f.services.refreshes)

	f.bus.Publish(domain.NewPlaylistCreatedEvent("pl-2", "Lift", true))
	assert.Contains(t, f.view.notifications, "Mood Changer Created: Lift")
}

func TestPresenter_LoginLogout(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnLoginClicked()
	assert.Equal(t, "http://backend/api/spotify/login/", f.view.openedURL)

	require.NoError(t, f.presenter.OpenLocation("aura://about?session=s1"))
	f.presenter.OnLogoutClicked()
	assert.Equal(t, "http://backend/api/spotify/logout/?session=s1", f.view.openedURL)
	assert.True(t, f.services.stopped)
	assert.Empty(t, f.presenter.Location().Session)
}

func TestPresenter_ShutdownUnsubscribes(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	defer bus.Close()
	svc := &fakeServices{}
	p := NewPresenter(logger.NewTestLogger(), Services{
		Playback: svc, Queue: svc, Lyrics: svc, Emotion: svc,
		Recommendations: svc, Library: svc, Preferences: svc,
	}, bus, &fakeView{})

	assert.True(t, bus.HasSubscribers(domain.EventTrackStarted))
	p.Shutdown()
	p.Shutdown()
	assert.False(t, bus.HasSubscribers(domain.EventTrackStarted))
}
