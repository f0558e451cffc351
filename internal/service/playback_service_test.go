package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/aura/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/aura/internal/adapter/vendors/mock"
	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/logger"
	"github.com/tejashwikalptaru/aura/internal/ports"
	"github.com/tejashwikalptaru/aura/internal/testutil"
)

type playbackHarness struct {
	service  *PlaybackService
	queue    *QueueService
	device   *mock.Device
	recorder *mock.Recorder
	bus      *eventbus.SyncEventBus
}

// Helper to create a test playback service with the local timer effectively disabled
func newTestPlaybackService(t *testing.T, autoReady bool) *playbackHarness {
	t.Helper()
	cfg := DefaultPlaybackConfig()
	cfg.TickInterval = time.Hour
	return newTestPlaybackServiceWithConfig(t, autoReady, cfg)
}

func newTestPlaybackServiceWithConfig(t *testing.T, autoReady bool, cfg PlaybackConfig) *playbackHarness {
	t.Helper()
	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus(log)
	device := mock.NewDevice(log, autoReady)
	recorder := mock.NewRecorder()

	service := NewPlaybackService(log, device, recorder.Factory(), bus, cfg)
	queue := NewQueueService(log, service, bus, WithRetryDelay(10*time.Millisecond))

	t.Cleanup(func() {
		_ = queue.Shutdown()
		_ = service.Shutdown()
		_ = bus.Close()
	})

	return &playbackHarness{service: service, queue: queue, device: device, recorder: recorder, bus: bus}
}

// Helper to create a test track
func createTestTrack(id string, duration time.Duration) domain.Track {
	return domain.Track{
		ID:          id,
		Title:       "Song " + id,
		Artist:      "Test Artist",
		Duration:    duration,
		AccessToken: "token-" + id,
	}
}

func threeTracks() []domain.Track {
	return []domain.Track{
		createTestTrack("a", 3*time.Minute),
		createTestTrack("b", 3*time.Minute),
		createTestTrack("c", 3*time.Minute),
	}
}

func playedIDs(rec *mock.Recorder) []string {
	var ids []string
	for _, c := range rec.CallsOf(mock.OpPlay) {
		ids = append(ids, c.TrackID)
	}
	return ids
}

func TestPlaybackService_BootstrapOnFirstPlay(t *testing.T) {
	h := newTestPlaybackService(t, true)

	var states []domain.PlayerState
	h.bus.Subscribe(domain.EventPlayerState, func(e domain.Event) {
		states = append(states, e.(domain.PlayerStateChangedEvent).Current)
	})

	track := createTestTrack("a", 3*time.Minute)
	require.NoError(t, h.service.Play(track, 0))

	assert.Equal(t, []domain.PlayerState{domain.PlayerLoading, domain.PlayerReady}, states)
	assert.Equal(t, "Aura MediaPlayer", h.device.Config().Name)

	calls := h.recorder.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, mock.OpTransfer, calls[0].Op)
	assert.False(t, calls[0].Play)
	assert.Equal(t, mock.DefaultDeviceID, calls[0].DeviceID)
	assert.Equal(t, mock.OpPlay, calls[1].Op)
	assert.Equal(t, "a", calls[1].TrackID)
	assert.Equal(t, "token-a", calls[1].Token)

	state := h.service.GetState()
	assert.Equal(t, domain.PlayerReady, state.State)
	assert.Equal(t, domain.StatusPlaying, state.Status)
}

func TestPlaybackService_PendingPlayLatestWins(t *testing.T) {
	h := newTestPlaybackService(t, false)

	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))
	require.NoError(t, h.service.Play(createTestTrack("b", time.Minute), 5*time.Second))

	assert.Equal(t, 1, h.device.Connects(), "device should be bootstrapped once")
	assert.Empty(t, h.recorder.CallsOf(mock.OpPlay), "no command before ready")

	require.NoError(t, h.device.EmitReady("dev-1"))

	plays := h.recorder.CallsOf(mock.OpPlay)
	require.Len(t, plays, 1)
	assert.Equal(t, "b", plays[0].TrackID)
	assert.Equal(t, 5*time.Second, plays[0].Position)
	assert.Equal(t, "dev-1", plays[0].DeviceID)
}

func TestPlaybackService_NoTokenWhileIdle(t *testing.T) {
	h := newTestPlaybackService(t, true)

	track := createTestTrack("a", time.Minute)
	track.AccessToken = ""

	err := h.service.Play(track, 0)
	assert.ErrorIs(t, err, domain.ErrNoAccessToken)
	assert.Equal(t, 0, h.device.Connects())
	assert.Equal(t, domain.PlayerIdle, h.service.GetState().State)
}

// A paused-at-zero report after real progress ends the track, and the queue
// moves to the next track exactly once.
func TestPlaybackService_EndDetectedFromDeviceState(t *testing.T) {
	h := newTestPlaybackService(t, true)

	require.NoError(t, h.queue.SetQueue(threeTracks(), "a"))
	h.recorder.Reset()

	var ended []string
	h.bus.Subscribe(domain.EventTrackEnded, func(e domain.Event) {
		ended = append(ended, e.(domain.TrackEndedEvent).Track.ID)
	})

	require.NoError(t, h.device.EmitState(ports.DeviceState{Paused: false, Position: 42300 * time.Millisecond, TrackID: "a"}))
	require.NoError(t, h.device.EmitState(ports.DeviceState{Paused: true, Position: 0, TrackID: "a"}))
	// The device repeats the paused report of the finished track.
	require.NoError(t, h.device.EmitState(ports.DeviceState{Paused: true, Position: 0, TrackID: "a"}))

	assert.Equal(t, []string{"a"}, ended)
	assert.Equal(t, []string{"b"}, playedIDs(h.recorder))

	current, ok := h.queue.Current()
	require.True(t, ok)
	assert.Equal(t, "b", current.ID)
}

func TestPlaybackService_PausedAtZeroWithoutProgress(t *testing.T) {
	h := newTestPlaybackService(t, true)

	require.NoError(t, h.queue.SetQueue(threeTracks(), "a"))
	h.recorder.Reset()

	require.NoError(t, h.device.EmitState(ports.DeviceState{Paused: true, Position: 0, TrackID: "a"}))

	assert.Empty(t, h.recorder.CallsOf(mock.OpPlay))
	assert.Equal(t, domain.StatusPaused, h.service.GetState().Status)
}

func TestPlaybackService_PremiumAccountError(t *testing.T) {
	h := newTestPlaybackService(t, false)

	var errorEvent domain.PlaybackErrorEvent
	h.bus.Subscribe(domain.EventPlaybackError, func(e domain.Event) {
		errorEvent = e.(domain.PlaybackErrorEvent)
	})

	require.NoError(t, h.queue.SetQueue(threeTracks(), "a"))
	require.NoError(t, h.device.EmitAccountError("This functionality is restricted to Premium users only"))

	state := h.service.GetState()
	assert.Equal(t, domain.PlayerError, state.State)
	assert.Equal(t, "Spotify Premium is required for playback.", state.ErrorMessage)
	assert.True(t, errorEvent.Persistent)

	// No command is issued automatically from the error state.
	assert.ErrorIs(t, h.queue.Next(), domain.ErrPlayerUnavailable)
	h.queue.HandleTrackEnded("b")
	assert.Empty(t, h.recorder.CallsOf(mock.OpPlay))
	assert.Empty(t, h.recorder.CallsOf(mock.OpTransfer))

	err := h.service.WaitReady(context.Background())
	assert.ErrorIs(t, err, domain.ErrPlayerUnavailable)
}

func TestPlaybackService_AccountErrorMessage(t *testing.T) {
	h := newTestPlaybackService(t, false)

	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))
	require.NoError(t, h.device.EmitAccountError("region blocked"))

	assert.Equal(t, "Account error: region blocked", h.service.GetState().ErrorMessage)
}

func TestPlaybackService_AuthenticationErrorFlagsAuth(t *testing.T) {
	h := newTestPlaybackService(t, false)

	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))
	require.NoError(t, h.device.EmitAuthenticationError("invalid token"))

	state := h.service.GetState()
	assert.Equal(t, domain.PlayerError, state.State)
	assert.True(t, state.AuthFailure)
	assert.Equal(t, "Authentication error. Please log in again.", state.ErrorMessage)
}

func TestPlaybackService_ConnectFailure(t *testing.T) {
	h := newTestPlaybackService(t, false)
	h.device.SetFailConnect(true)

	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))

	state := h.service.GetState()
	assert.Equal(t, domain.PlayerError, state.State)
	assert.Equal(t, "Failed to connect to Spotify. Please refresh and try again.", state.ErrorMessage)
}

func TestPlaybackService_Retry(t *testing.T) {
	h := newTestPlaybackService(t, false)

	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))
	require.NoError(t, h.device.EmitNotReady("dev-1"))
	require.Equal(t, domain.PlayerError, h.service.GetState().State)

	h.device.SetAutoReady(true)
	require.NoError(t, h.service.Retry())

	assert.Equal(t, domain.PlayerReady, h.service.GetState().State)
	assert.Equal(t, 2, h.device.Connects())
	assert.Equal(t, []string{"a"}, playedIDs(h.recorder))
}

func TestPlaybackService_Jitter(t *testing.T) {
	h := newTestPlaybackService(t, true)
	require.NoError(t, h.service.Play(createTestTrack("a", 3*time.Minute), 0))

	require.NoError(t, h.device.EmitState(ports.DeviceState{Position: 10 * time.Second, TrackID: "a"}))
	assert.Equal(t, 10*time.Second, h.service.GetState().Position)

	// Small backward jump is accepted.
	require.NoError(t, h.device.EmitState(ports.DeviceState{Position: 9 * time.Second, TrackID: "a"}))
	assert.Equal(t, 9*time.Second, h.service.GetState().Position)

	// Large backward jump is not applied to the display.
	require.NoError(t, h.device.EmitState(ports.DeviceState{Position: 2 * time.Second, TrackID: "a"}))
	assert.Equal(t, 9*time.Second, h.service.GetState().Position)

	// Forward movement is always applied.
	require.NoError(t, h.device.EmitState(ports.DeviceState{Position: 20 * time.Second, TrackID: "a"}))
	assert.Equal(t, 20*time.Second, h.service.GetState().Position)
}

func TestPlaybackService_TimerEndDetection(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	cfg := DefaultPlaybackConfig()
	cfg.TickInterval = 10 * time.Millisecond
	h := newTestPlaybackServiceWithConfig(t, true, cfg)

	tracks := []domain.Track{
		createTestTrack("short", 1100*time.Millisecond),
		createTestTrack("next", 3*time.Minute),
	}
	require.NoError(t, h.queue.SetQueue(tracks, ""))

	assert.Eventually(t, func() bool {
		ids := playedIDs(h.recorder)
		return len(ids) == 2 && ids[1] == "next"
	}, 2*time.Second, 10*time.Millisecond)

	// Let more ticks pass; the end of "short" must not be reported again.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"short", "next"}, playedIDs(h.recorder))

	require.NoError(t, h.queue.Shutdown())
	require.NoError(t, h.service.Shutdown())
}

// stallingTransport blocks Play of one track until the command context ends.
type stallingTransport struct {
	ports.PlaybackTransport
	trackID string
	stalled chan struct{}
}

func (t *stallingTransport) Play(ctx context.Context, deviceID, trackID string, position time.Duration) error {
	if trackID != t.trackID {
		return t.PlaybackTransport.Play(ctx, deviceID, trackID, position)
	}
	close(t.stalled)
	<-ctx.Done()
	return ctx.Err()
}

func TestPlaybackService_ShutdownCancelsAutoAdvance(t *testing.T) {
	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus(log)
	defer bus.Close()
	recorder := mock.NewRecorder()
	stalled := make(chan struct{})
	factory := func(token string) ports.PlaybackTransport {
		return &stallingTransport{PlaybackTransport: recorder.Factory()(token), trackID: "next", stalled: stalled}
	}

	cfg := DefaultPlaybackConfig()
	cfg.TickInterval = 10 * time.Millisecond
	cfg.CommandTimeout = time.Minute
	service := NewPlaybackService(log, mock.NewDevice(log, true), factory, bus, cfg)
	queue := NewQueueService(log, service, bus, WithRetryDelay(time.Hour))
	defer queue.Shutdown()

	require.NoError(t, queue.SetQueue([]domain.Track{
		createTestTrack("short", 1100*time.Millisecond),
		createTestTrack("next", 3*time.Minute),
	}, ""))

	// The end of "short" is detected by the timer, so "next" stalls on the update goroutine.
	select {
	case <-stalled:
	case <-time.After(3 * time.Second):
		t.Fatal("auto-advance never reached the transport")
	}

	done := make(chan error, 1)
	go func() { done <- service.Shutdown() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("shutdown waited for the stalled vendor call")
	}
}

func TestPlaybackService_DeviceGoneReconnects(t *testing.T) {
	h := newTestPlaybackService(t, true)
	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))
	h.recorder.Reset()

	var states []domain.PlayerState
	h.bus.Subscribe(domain.EventPlayerState, func(e domain.Event) {
		states = append(states, e.(domain.PlayerStateChangedEvent).Current)
	})

	h.recorder.FailNext(mock.OpPlay, domain.NewVendorError("play", 404, "Device not found", nil))
	require.NoError(t, h.service.Play(createTestTrack("b", time.Minute), 0))

	assert.Equal(t, []domain.PlayerState{domain.PlayerIdle, domain.PlayerLoading, domain.PlayerReady}, states)
	assert.Equal(t, 1, h.device.Disconnects())
	assert.Equal(t, 2, h.device.Connects())
	// The failed play is replayed after the new device is ready.
	assert.Equal(t, []string{"b", "b"}, playedIDs(h.recorder))
}

func TestPlaybackService_AuthFailureKeepsState(t *testing.T) {
	h := newTestPlaybackService(t, true)
	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))

	var errorEvent domain.PlaybackErrorEvent
	h.bus.Subscribe(domain.EventPlaybackError, func(e domain.Event) {
		errorEvent = e.(domain.PlaybackErrorEvent)
	})

	h.recorder.FailNext(mock.OpPlay, domain.NewVendorError("play", 401, "Unauthorized", nil))
	err := h.service.Play(createTestTrack("b", time.Minute), 0)
	assert.Error(t, err)

	assert.Equal(t, "Authentication failed. Please log in again.", errorEvent.Message)
	assert.True(t, errorEvent.Auth)
	assert.True(t, errorEvent.Persistent)
	assert.Equal(t, domain.PlayerReady, h.service.GetState().State)
}

func TestPlaybackService_OtherFailureIsDismissible(t *testing.T) {
	h := newTestPlaybackService(t, true)
	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))

	var errorEvent domain.PlaybackErrorEvent
	h.bus.Subscribe(domain.EventPlaybackError, func(e domain.Event) {
		errorEvent = e.(domain.PlaybackErrorEvent)
	})

	h.recorder.FailNext(mock.OpPlay, domain.NewVendorError("play", 500, "Server error", nil))
	assert.Error(t, h.service.Play(createTestTrack("b", time.Minute), 0))

	assert.Equal(t, "Failed to play track. Please try again.", errorEvent.Message)
	assert.False(t, errorEvent.Persistent)
}

func TestPlaybackService_PlaybackErrorBanner(t *testing.T) {
	h := newTestPlaybackService(t, true)
	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))

	var messages []string
	h.bus.Subscribe(domain.EventPlaybackError, func(e domain.Event) {
		messages = append(messages, e.(domain.PlaybackErrorEvent).Message)
	})

	require.NoError(t, h.device.EmitPlaybackError("Device went offline"))
	require.NoError(t, h.device.EmitPlaybackError("transient glitch"))

	assert.Len(t, messages, 1)
	assert.Equal(t, domain.PlayerReady, h.service.GetState().State)
}

func TestPlaybackService_TogglePlay(t *testing.T) {
	h := newTestPlaybackService(t, true)
	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))
	require.NoError(t, h.device.EmitState(ports.DeviceState{Position: 12 * time.Second, TrackID: "a"}))

	require.NoError(t, h.service.TogglePlay())
	assert.Equal(t, domain.StatusPaused, h.service.GetState().Status)
	assert.Len(t, h.recorder.CallsOf(mock.OpPause), 1)

	// Resuming replays the track at its last position.
	require.NoError(t, h.service.TogglePlay())
	plays := h.recorder.CallsOf(mock.OpPlay)
	require.Len(t, plays, 2)
	assert.Equal(t, 12*time.Second, plays[1].Position)
	assert.Equal(t, domain.StatusPlaying, h.service.GetState().Status)
}

func TestPlaybackService_Seek(t *testing.T) {
	h := newTestPlaybackService(t, true)

	assert.ErrorIs(t, h.service.Seek(time.Second), domain.ErrPlayerNotReady)

	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))
	assert.ErrorIs(t, h.service.Seek(-time.Second), domain.ErrInvalidPosition)
	assert.ErrorIs(t, h.service.Seek(2*time.Minute), domain.ErrInvalidPosition)

	require.NoError(t, h.service.Seek(30*time.Second))
	assert.Equal(t, 30*time.Second, h.service.GetState().Position)
	seeks := h.recorder.CallsOf(mock.OpSeek)
	require.Len(t, seeks, 1)
	assert.Equal(t, 30*time.Second, seeks[0].Position)
}

func TestPlaybackService_SetVolume(t *testing.T) {
	h := newTestPlaybackService(t, true)

	assert.ErrorIs(t, h.service.SetVolume(1.5), domain.ErrInvalidVolume)
	assert.ErrorIs(t, h.service.SetVolume(-0.1), domain.ErrInvalidVolume)

	// Before the device exists the value is handed over on connect.
	require.NoError(t, h.service.SetVolume(0.4))
	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))
	assert.InDelta(t, 0.4, h.device.Config().Volume, 0.001)
	assert.Empty(t, h.recorder.CallsOf(mock.OpVolume))

	require.NoError(t, h.service.SetVolume(0.8))
	volumes := h.recorder.CallsOf(mock.OpVolume)
	require.Len(t, volumes, 1)
	assert.InDelta(t, 0.8, volumes[0].Volume, 0.001)
	assert.InDelta(t, 0.8, h.service.GetState().Volume, 0.001)
}

func TestPlaybackService_WaitReady(t *testing.T) {
	h := newTestPlaybackService(t, false)
	require.NoError(t, h.service.Play(createTestTrack("a", time.Minute), 0))

	var wg sync.WaitGroup
	var waitErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		waitErr = h.service.WaitReady(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, h.device.EmitReady("dev-1"))
	wg.Wait()

	assert.NoError(t, waitErr)
}

func TestPlaybackService_DeviceTrackChangeFollowed(t *testing.T) {
	h := newTestPlaybackService(t, true)
	require.NoError(t, h.queue.SetQueue(threeTracks(), "a"))
	h.recorder.Reset()

	require.NoError(t, h.device.EmitState(ports.DeviceState{Position: time.Second, TrackID: "c"}))

	current, ok := h.queue.Current()
	require.True(t, ok)
	assert.Equal(t, "c", current.ID)
	assert.Equal(t, "c", h.service.GetState().Track.ID)
	assert.Empty(t, h.recorder.CallsOf(mock.OpPlay), "following a device change issues no command")
}

func TestPlaybackService_PausedDeviceTrackChangeFollowed(t *testing.T) {
	h := newTestPlaybackService(t, true)
	require.NoError(t, h.queue.SetQueue(threeTracks(), "a"))
	h.recorder.Reset()

	require.NoError(t, h.device.EmitState(ports.DeviceState{Paused: true, Position: 5 * time.Second, TrackID: "c"}))

	current, ok := h.queue.Current()
	require.True(t, ok)
	assert.Equal(t, "c", current.ID)
	assert.Empty(t, h.recorder.CallsOf(mock.OpPlay))
}

func TestPlaybackService_PausedTailOfReplacedTrackIgnored(t *testing.T) {
	h := newTestPlaybackService(t, true)
	require.NoError(t, h.queue.SetQueue(threeTracks(), "a"))
	require.NoError(t, h.queue.Next())

	// The device still reports the track it was told to leave.
	require.NoError(t, h.device.EmitState(ports.DeviceState{Paused: true, Position: 90 * time.Second, TrackID: "a"}))

	current, ok := h.queue.Current()
	require.True(t, ok)
	assert.Equal(t, "b", current.ID)
	assert.Equal(t, "b", h.service.GetState().Track.ID)
	assert.Zero(t, h.service.GetState().Position)
}

func TestPlaybackService_ShutdownIdempotent(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus(log)
	service := NewPlaybackService(log, mock.NewDevice(log, true), mock.NewRecorder().Factory(), bus, DefaultPlaybackConfig())

	require.NoError(t, service.Shutdown())
	require.NoError(t, service.Shutdown())
	assert.ErrorIs(t, service.Play(createTestTrack("a", time.Minute), 0), domain.ErrPlayerUnavailable)
}
