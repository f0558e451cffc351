// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
	"github.com/tejashwikalptaru/aura/internal/service"
)

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
// Implementations must be safe to call from any goroutine.
type UIView interface {
	// Now playing
	SetPlayState(playing bool)
	SetVolume(volume float64)
	SetTrackInfo(track domain.Track)
	ClearTrackInfo()
	SetProgress(position, duration time.Duration)
	SetPlayerState(state domain.PlayerState, message string)
	SetLyrics(lyrics domain.Lyrics)
	SetLyricsVisible(visible bool)
	SetQueue(queue domain.QueueSnapshot)

	// Pages
	SetGreeting(message string)
	ShowHome(page service.HomePage)
	ShowProfile(profile domain.Profile)
	ShowLibrary(library domain.Library)
	ShowPlaylist(playlist domain.Playlist)
	ShowPlayer()
	ShowEmotionDetection()
	ShowEmotionSelection(emotions []domain.Emotion, genres []string)
	SetSampling(active bool, window time.Duration)
	ShowEmotionResult(emotion domain.Emotion, genres []string)
	ShowRecommendations(rec domain.Recommendation, moodChanger bool)
	ShowAbout()

	// Errors
	ShowBanner(message string, persistent bool)
	ClearBanner()
	ShowSessionError(message, loginURL string)
	ShowNotification(title, message string)
	OpenURL(rawURL string)
}

// PlaybackController is the part of the playback service the UI drives.
type PlaybackController interface {
	TogglePlay() error
	Seek(position time.Duration) error
	SetVolume(volume float64) error
	Retry() error
	GetState() domain.PlaybackSession
}

// QueueController is the part of the queue service the UI drives.
type QueueController interface {
	Next() error
	Previous() error
	Shuffle()
	JumpTo(trackID string) error
	Snapshot() domain.QueueSnapshot
}

// LyricsProvider loads lyrics through the lyrics cache.
type LyricsProvider interface {
	Lyrics(ctx context.Context, session string, track domain.Track) (domain.Lyrics, error)
}

// EmotionController runs the emotion sampler.
type EmotionController interface {
	Start(session string) (string, error)
	Stop()
	Select(emotion domain.Emotion, genres []string) error
	Result() (domain.Emotion, []string, bool)
}

// RecommendationProvider loads recommendations and creates playlists from them.
type RecommendationProvider interface {
	Recommend(ctx context.Context, session string, emotion domain.Emotion, genres []string) (domain.Recommendation, error)
	Refresh(ctx context.Context, session string, emotion domain.Emotion, genres []string) (domain.Recommendation, error)
	Last(session string) (domain.Recommendation, bool)
	CreatePlaylist(ctx context.Context, session, name string, songs []domain.Song, moodChanger bool) (string, error)
	CreateMoodChanger(ctx context.Context, session, name string) (string, error)
}

// Navigator loads pages and resolves navigation.
type Navigator interface {
	Ping(ctx context.Context) (string, error)
	Home(ctx context.Context, session string) (service.HomePage, error)
	Profile(ctx context.Context, session string) (domain.Profile, error)
	Library(ctx context.Context, session string) (domain.Library, error)
	Playlist(ctx context.Context, session, playlistID string) (domain.Playlist, error)
	OpenPlayer(ctx context.Context, loc domain.Location) ([]domain.Track, error)
	Navigate(ctx context.Context, session string, page domain.Page, emotion domain.Emotion, genres []string) (domain.Location, error)
	LoginURL() string
	Logout(session string) (string, error)
}

// Preferences is the part of the preference service the UI reads and writes.
type Preferences interface {
	GetVolume() float64
	GetShowLyrics() bool
	SetShowLyrics(show bool) error
	SetLastLocation(raw string) error
}

// Services groups the presenter's dependencies.
type Services struct {
	Playback        PlaybackController
	Queue           QueueController
	Lyrics          LyricsProvider
	Emotion         EmotionController
	Recommendations RecommendationProvider
	Library         Navigator
	Preferences     Preferences
}

// Presenter implements the Presenter pattern (MVP architecture).
// It maps domain events to view updates and turns view commands into service
// calls. Calls that reach the network run on their own goroutine so the UI
// thread never blocks; Shutdown cancels and waits for them.
type Presenter struct {
	// Dependencies
	logger   *slog.Logger
	services Services

	// Event bus for subscriptions (exported for QueueWindow access)
	EventBus ports.EventBus

	// UI view
	view UIView

	// Presentation state
	location      domain.Location
	currentTrack  *domain.Track
	showLyrics    bool
	subscriptions []domain.SubscriptionID

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Player commands, run in click order off the UI goroutine
	cmdMu    sync.Mutex
	commands []command
	draining bool

	// Concurrency control
	mu           sync.RWMutex
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter.
func NewPresenter(logger *slog.Logger, services Services, eventBus ports.EventBus, view UIView) *Presenter {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:   logger,
		services: services,
		EventBus: eventBus,
		view:     view,
		ctx:      ctx,
		cancel:   cancel,
	}

	// Subscribe to events
	p.subscribeToEvents()

	// Sync UI with current state
	p.syncInitialState()
	p.greet()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Playback events
		domain.EventTrackStarted:  p.onTrackStarted,
		domain.EventTrackPaused:   p.onTrackPaused,
		domain.EventTrackStopped:  p.onTrackStopped,
		domain.EventTrackProgress: p.onTrackProgress,
		domain.EventVolumeChanged: p.onVolumeChanged,
		domain.EventPlaybackError: p.onPlaybackError,
		domain.EventPlayerState:   p.onPlayerStateChanged,

		// Queue events
		domain.EventQueueChanged:        p.onQueueChanged,
		domain.EventCurrentTrackChanged: p.onCurrentTrackChanged,

		// Lyrics, emotion and recommendation events
		domain.EventLyricsLoaded:          p.onLyricsLoaded,
		domain.EventSamplingStarted:       p.onSamplingStarted,
		domain.EventSamplingFinished:      p.onSamplingFinished,
		domain.EventRecommendationsLoaded: p.onRecommendationsLoaded,
		domain.EventPlaylistCreated:       p.onPlaylistCreated,
	}

	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.EventBus.Subscribe(eventType, handler))
	}
}

// syncInitialState synchronizes the UI with the current application state.
func (p *Presenter) syncInitialState() {
	p.mu.Lock()
	p.showLyrics = p.services.Preferences.GetShowLyrics()
	p.mu.Unlock()

	state := p.services.Playback.GetState()
	p.view.SetVolume(state.Volume)
	p.view.SetPlayState(state.Status == domain.StatusPlaying)
	p.view.SetPlayerState(state.State, state.ErrorMessage)
	p.view.SetLyricsVisible(p.lyricsVisible())

	if state.Track != nil {
		p.setCurrentTrack(*state.Track)
		p.view.SetProgress(state.Position, state.Duration)
	} else {
		p.view.ClearTrackInfo()
	}
	p.view.SetQueue(p.services.Queue.Snapshot())
}

// greet asks the backend for its greeting and shows it on the welcome page.
func (p *Presenter) greet() {
	p.async(func(ctx context.Context) {
		message, err := p.services.Library.Ping(ctx)
		if err != nil {
			p.logger.Warn("backend unreachable", slog.Any("error", err))
			p.view.SetGreeting("The Aura backend is not reachable.")
			return
		}
		p.view.SetGreeting(message)
	})
}

// Location returns the location currently shown.
func (p *Presenter) Location() domain.Location {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.location
}

func (p *Presenter) session() string {
	return p.Location().Session
}

func (p *Presenter) lyricsVisible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.showLyrics
}

// async runs fn on its own goroutine with the presenter's lifetime context.
// It reports false once the presenter is shut down.
func (p *Presenter) async(fn func(ctx context.Context)) bool {
	p.mu.RLock()
	if p.ctx.Err() != nil {
		p.mu.RUnlock()
		return false
	}
	p.wg.Add(1)
	p.mu.RUnlock()
	go func() {
		defer p.wg.Done()
		fn(p.ctx)
	}()
	return true
}

// command is a queued player command. Errors matching quiet are dropped.
type command struct {
	op    string
	run   func() error
	quiet error
}

// enqueue schedules a player command. Commands reach the vendor REST API, so
// they never run on the caller's goroutine; a single drainer keeps their order.
func (p *Presenter) enqueue(op string, run func() error, quiet error) {
	p.cmdMu.Lock()
	defer p.cmdMu.Unlock()
	p.commands = append(p.commands, command{op: op, run: run, quiet: quiet})
	if p.draining {
		return
	}
	p.draining = p.async(p.drainCommands)
	if !p.draining {
		p.commands = nil
	}
}

func (p *Presenter) drainCommands(ctx context.Context) {
	for {
		p.cmdMu.Lock()
		if len(p.commands) == 0 || ctx.Err() != nil {
			p.commands = nil
			p.draining = false
			p.cmdMu.Unlock()
			return
		}
		cmd := p.commands[0]
		p.commands = p.commands[1:]
		p.cmdMu.Unlock()

		if err := cmd.run(); err != nil && (cmd.quiet == nil || !errors.Is(err, cmd.quiet)) {
			p.showError(cmd.op, err)
		}
	}
}

// Wait blocks until every background call has returned.
func (p *Presenter) Wait() {
	p.wg.Wait()
}

// showError routes err to the matching surface: a missing session is terminal,
// anything else becomes a dismissible banner.
func (p *Presenter) showError(op string, err error) {
	p.logger.Error(op+" failed", slog.Any("error", err))
	if errors.Is(err, context.Canceled) {
		return
	}
	if errors.Is(err, domain.ErrMissingSession) {
		p.view.ShowSessionError(domain.UserMessage(err), p.services.Library.LoginURL())
		return
	}
	p.view.ShowBanner(domain.UserMessage(err), false)
}

// Navigation

// OpenLocation parses raw and opens it.
func (p *Presenter) OpenLocation(raw string) error {
	loc, err := domain.ParseLocation(raw)
	if err != nil {
		p.showError("parse location", err)
		return err
	}
	return p.Open(loc)
}

// Open shows the page loc points at. Without a session only the session error is shown.
func (p *Presenter) Open(loc domain.Location) error {
	if err := loc.RequireSession(); err != nil {
		p.logger.Warn("location without session", slog.String("page", string(loc.Page)))
		p.view.ShowSessionError(domain.UserMessage(err), p.services.Library.LoginURL())
		return err
	}

	p.mu.Lock()
	p.location = loc
	p.mu.Unlock()

	if err := p.services.Preferences.SetLastLocation(loc.String()); err != nil {
		p.logger.Warn("failed to remember location", slog.Any("error", err))
	}
	p.logger.Info("opening page", slog.String("page", string(loc.Page)))

	switch loc.Page {
	case domain.PageHome:
		p.async(func(ctx context.Context) {
			page, err := p.services.Library.Home(ctx, loc.Session)
			if err != nil {
				p.showError("load home", err)
				return
			}
			p.view.ShowHome(page)
		})
	case domain.PageProfile:
		p.async(func(ctx context.Context) {
			profile, err := p.services.Library.Profile(ctx, loc.Session)
			if err != nil {
				p.showError("load profile", err)
				return
			}
			p.view.ShowProfile(profile)
		})
	case domain.PageLibrary:
		p.async(func(ctx context.Context) {
			library, err := p.services.Library.Library(ctx, loc.Session)
			if err != nil {
				p.showError("load library", err)
				return
			}
			p.view.ShowLibrary(library)
		})
	case domain.PagePlaylist:
		if loc.PlaylistID == "" {
			p.view.ShowBanner("Playlist ID is missing.", false)
			return nil
		}
		p.async(func(ctx context.Context) {
			pl, err := p.services.Library.Playlist(ctx, loc.Session, loc.PlaylistID)
			if err != nil {
				p.showError("load playlist", err)
				return
			}
			p.view.ShowPlaylist(pl)
		})
	case domain.PageMediaPlayer:
		p.view.ShowPlayer()
		p.async(func(ctx context.Context) {
			if _, err := p.services.Library.OpenPlayer(ctx, loc); err != nil {
				p.showError("open player", err)
			}
		})
	case domain.PageDetectEmotion:
		p.view.ShowEmotionDetection()
	case domain.PageSelectEmotion:
		p.view.ShowEmotionSelection(domain.SelectableEmotions, domain.SelectableGenres)
	case domain.PageRecommend:
		emotion, genres := domain.NormalizeEmotion(loc.Emotion), loc.Genres
		if emotion == "" || len(genres) == 0 {
			if e, g, ok := p.services.Emotion.Result(); ok {
				emotion, genres = e, g
			}
		}
		p.async(func(ctx context.Context) {
			if _, err := p.services.Recommendations.Recommend(ctx, loc.Session, emotion, genres); err != nil {
				p.showError("recommend", err)
			}
		})
	case domain.PageAbout:
		p.view.ShowAbout()
	default:
		p.view.ShowBanner("Unknown page: "+string(loc.Page), false)
	}
	return nil
}

// OnNavigate resolves page through the backend and opens the result.
func (p *Presenter) OnNavigate(page domain.Page) {
	session := p.session()
	p.async(func(ctx context.Context) {
		loc, err := p.services.Library.Navigate(ctx, session, page, "", nil)
		if err != nil {
			p.showError("navigate", err)
			return
		}
		_ = p.Open(loc)
	})
}

// OnPlaylistSelected opens a playlist page.
func (p *Presenter) OnPlaylistSelected(playlistID string) {
	_ = p.Open(domain.Location{Page: domain.PagePlaylist, Session: p.session(), PlaylistID: playlistID})
}

// OnPlayPlaylist opens the player on a playlist, starting at trackID when given.
func (p *Presenter) OnPlayPlaylist(playlistID, trackID string) {
	_ = p.Open(domain.Location{
		Page:       domain.PageMediaPlayer,
		Session:    p.session(),
		PlaylistID: playlistID,
		TrackID:    trackID,
	})
}

// OnPlayTrack opens the player on a single track.
func (p *Presenter) OnPlayTrack(trackID string) {
	_ = p.Open(domain.Location{Page: domain.PageMediaPlayer, Session: p.session(), TrackID: trackID})
}

// OnLoginClicked opens the login flow in the browser.
func (p *Presenter) OnLoginClicked() {
	p.view.OpenURL(p.services.Library.LoginURL())
}

// OnLogoutClicked forgets the session and opens the logout URL.
func (p *Presenter) OnLogoutClicked() {
	p.services.Emotion.Stop()
	target, err := p.services.Library.Logout(p.session())
	if err != nil {
		p.showError("logout", err)
		return
	}
	p.mu.Lock()
	p.location = domain.Location{}
	p.mu.Unlock()
	p.view.OpenURL(target)
}

// Playback commands

// OnPlayClicked toggles between playing and paused.
func (p *Presenter) OnPlayClicked() {
	p.enqueue("play/pause", p.services.Playback.TogglePlay, nil)
}

// OnNextClicked skips to the next queue entry.
func (p *Presenter) OnNextClicked() {
	p.enqueue("next track", p.services.Queue.Next, domain.ErrQueueEmpty)
}

// OnPreviousClicked goes back to the previous queue entry.
func (p *Presenter) OnPreviousClicked() {
	p.enqueue("previous track", p.services.Queue.Previous, domain.ErrQueueEmpty)
}

// OnShuffleClicked shuffles the queue.
func (p *Presenter) OnShuffleClicked() {
	p.services.Queue.Shuffle()
}

// OnQueueTrackSelected makes trackID current.
func (p *Presenter) OnQueueTrackSelected(trackID string) {
	p.enqueue("jump to track", func() error { return p.services.Queue.JumpTo(trackID) }, nil)
}

// OnSeekRequested seeks to position (seconds).
func (p *Presenter) OnSeekRequested(position float64) {
	target := time.Duration(position * float64(time.Second))
	p.enqueue("seek", func() error { return p.services.Playback.Seek(target) }, nil)
}

// OnVolumeChanged handles volume slider changes (0 to 100).
func (p *Presenter) OnVolumeChanged(volume float64) {
	p.enqueue("volume change", func() error { return p.services.Playback.SetVolume(volume / 100.0) }, nil)
}

// OnRetryClicked leaves the player error state.
func (p *Presenter) OnRetryClicked() {
	p.view.ClearBanner()
	p.enqueue("retry", p.services.Playback.Retry, nil)
}

// OnLyricsToggled shows or hides the lyrics panel.
func (p *Presenter) OnLyricsToggled() {
	p.mu.Lock()
	p.showLyrics = !p.showLyrics
	visible := p.showLyrics
	track := p.currentTrack
	p.mu.Unlock()

	if err := p.services.Preferences.SetShowLyrics(visible); err != nil {
		p.logger.Warn("failed to save lyrics preference", slog.Any("error", err))
	}
	p.view.SetLyricsVisible(visible)
	if visible && track != nil {
		p.loadLyrics(*track)
	}
}

func (p *Presenter) loadLyrics(track domain.Track) {
	session := p.session()
	if session == "" {
		return
	}
	p.async(func(ctx context.Context) {
		// Errors are cached as "not found" and surface through the loaded event.
		_, _ = p.services.Lyrics.Lyrics(ctx, session, track)
	})
}

// Emotion commands

// OnStartDetection opens a sampling window.
func (p *Presenter) OnStartDetection() {
	if _, err := p.services.Emotion.Start(p.session()); err != nil {
		p.showError("start detection", err)
	}
}

// OnStopDetection cancels the running window.
func (p *Presenter) OnStopDetection() {
	p.services.Emotion.Stop()
	p.view.SetSampling(false, 0)
}

// OnEmotionSelected sets the emotion by hand and moves on to recommendations.
func (p *Presenter) OnEmotionSelected(emotion domain.Emotion, genres []string) {
	if err := p.services.Emotion.Select(emotion, genres); err != nil {
		p.showError("select emotion", err)
		return
	}
	p.OnRecommendClicked()
}

// OnRecommendClicked navigates to the recommendation page for the current result.
func (p *Presenter) OnRecommendClicked() {
	emotion, genres, ok := p.services.Emotion.Result()
	if !ok {
		p.showError("recommend", domain.ErrNoEmotion)
		return
	}
	session := p.session()
	p.async(func(ctx context.Context) {
		loc, err := p.services.Library.Navigate(ctx, session, domain.PageRecommend, emotion, genres)
		if err != nil {
			p.showError("navigate to recommendations", err)
			return
		}
		_ = p.Open(loc)
	})
}

// Recommendation commands

// OnGoAgainClicked drops the cached list and fetches a new one.
func (p *Presenter) OnGoAgainClicked() {
	session := p.session()
	rec, ok := p.services.Recommendations.Last(session)
	if !ok {
		p.showError("refresh recommendations", domain.ErrNoRecommendations)
		return
	}
	p.async(func(ctx context.Context) {
		if _, err := p.services.Recommendations.Refresh(ctx, session, rec.Emotion, rec.Genres); err != nil {
			p.showError("refresh recommendations", err)
		}
	})
}

// OnCreatePlaylist saves the shown recommendations as a playlist named name.
func (p *Presenter) OnCreatePlaylist(name string) {
	session := p.session()
	rec, ok := p.services.Recommendations.Last(session)
	if !ok {
		p.showError("create playlist", domain.ErrNoRecommendations)
		return
	}
	p.async(func(ctx context.Context) {
		if _, err := p.services.Recommendations.CreatePlaylist(ctx, session, name, rec.Songs, false); err != nil {
			p.showError("create playlist", err)
		}
	})
}

// OnCreateMoodChanger saves a mood changer playlist named name.
func (p *Presenter) OnCreateMoodChanger(name string) {
	session := p.session()
	p.async(func(ctx context.Context) {
		if _, err := p.services.Recommendations.CreateMoodChanger(ctx, session, name); err != nil {
			p.showError("create mood changer", err)
		}
	})
}

// Event handlers

func (p *Presenter) setCurrentTrack(track domain.Track) {
	p.mu.Lock()
	p.currentTrack = &track
	p.mu.Unlock()

	p.view.SetTrackInfo(track)
	p.view.SetLyrics(domain.Lyrics{TrackID: track.ID})
	if p.lyricsVisible() {
		p.loadLyrics(track)
	}
}

func (p *Presenter) onTrackStarted(event domain.Event) {
	e, ok := event.(domain.TrackStartedEvent)
	if !ok {
		return
	}
	p.mu.RLock()
	same := p.currentTrack != nil && p.currentTrack.ID == e.Track.ID
	p.mu.RUnlock()
	if !same {
		p.setCurrentTrack(e.Track)
	}
	p.view.SetPlayState(true)
}

func (p *Presenter) onTrackPaused(event domain.Event) {
	p.view.SetPlayState(false)
}

func (p *Presenter) onTrackStopped(event domain.Event) {
	e, ok := event.(domain.TrackStoppedEvent)
	if !ok {
		return
	}
	p.view.SetPlayState(false)
	p.view.SetProgress(0, e.Track.Duration)
}

func (p *Presenter) onTrackProgress(event domain.Event) {
	e, ok := event.(domain.TrackProgressEvent)
	if !ok {
		return
	}
	p.view.SetProgress(e.Position, e.Duration)
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}
	p.view.SetVolume(e.Volume)
}

func (p *Presenter) onPlaybackError(event domain.Event) {
	e, ok := event.(domain.PlaybackErrorEvent)
	if !ok {
		return
	}
	p.view.ShowBanner(e.Message, e.Persistent)
}

func (p *Presenter) onPlayerStateChanged(event domain.Event) {
	e, ok := event.(domain.PlayerStateChangedEvent)
	if !ok {
		return
	}
	p.view.SetPlayerState(e.Current, e.Message)
	if e.Current == domain.PlayerReady && e.Previous == domain.PlayerError {
		p.view.ClearBanner()
	}
}

func (p *Presenter) onQueueChanged(event domain.Event) {
	e, ok := event.(domain.QueueChangedEvent)
	if !ok {
		return
	}
	p.view.SetQueue(e.Queue)
}

func (p *Presenter) onCurrentTrackChanged(event domain.Event) {
	e, ok := event.(domain.CurrentTrackChangedEvent)
	if !ok {
		return
	}
	p.setCurrentTrack(e.Track)
	p.view.SetQueue(p.services.Queue.Snapshot())
}

func (p *Presenter) onLyricsLoaded(event domain.Event) {
	e, ok := event.(domain.LyricsLoadedEvent)
	if !ok {
		return
	}
	p.mu.RLock()
	current := p.currentTrack != nil && p.currentTrack.ID == e.Lyrics.TrackID
	p.mu.RUnlock()
	if current {
		p.view.SetLyrics(e.Lyrics)
	}
}

func (p *Presenter) onSamplingStarted(event domain.Event) {
	e, ok := event.(domain.SamplingStartedEvent)
	if !ok {
		return
	}
	p.view.SetSampling(true, e.Duration)
}

func (p *Presenter) onSamplingFinished(event domain.Event) {
	e, ok := event.(domain.SamplingFinishedEvent)
	if !ok {
		return
	}
	p.view.SetSampling(false, 0)
	if e.Err != nil {
		p.logger.Warn("emotion detection failed", slog.Any("error", e.Err))
		p.view.ShowNotification("Emotion Detection", domain.Emotion("").Sentence())
		return
	}
	p.view.ShowEmotionResult(e.Emotion, e.Genres)
}

func (p *Presenter) onRecommendationsLoaded(event domain.Event) {
	e, ok := event.(domain.RecommendationsLoadedEvent)
	if !ok {
		return
	}
	p.view.ShowRecommendations(e.Recommendation, e.Recommendation.Emotion.MoodChangerEligible())
}

func (p *Presenter) onPlaylistCreated(event domain.Event) {
	e, ok := event.(domain.PlaylistCreatedEvent)
	if !ok {
		return
	}
	title := "Playlist Created"
	if e.MoodChanger {
		title = "Mood Changer Created"
	}
	p.view.ShowNotification(title, e.Name)
}

// Shutdown cleans up resources.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.cancel()
		subs := p.subscriptions
		p.subscriptions = nil
		p.mu.Unlock()

		for _, id := range subs {
			p.EventBus.Unsubscribe(id)
		}
		p.wg.Wait()
	})
}
