package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// User-facing messages of the playback adapter.
const (
	msgNotReady       = "Spotify player not ready. Please refresh the page."
	msgAuthError      = "Authentication error. Please log in again."
	msgPremium        = "Spotify Premium is required for playback."
	msgConnectFailed  = "Failed to connect to Spotify. Please refresh and try again."
	msgNoToken        = "No access token available."
	msgAuthFailed     = "Authentication failed. Please log in again."
	msgSessionExpired = "Spotify session expired. Please log in again."
	msgPlayFailed     = "Failed to play track. Please try again."
)

// PlaybackConfig holds the playback adapter timings.
type PlaybackConfig struct {
	// DeviceName is the name the device registers under
	DeviceName string

	// TickInterval is the local progress step while playing
	TickInterval time.Duration

	// JitterTolerance is the largest backward jump treated as noise
	JitterTolerance time.Duration

	// EndThreshold is how close to the declared duration the timer ends a track
	EndThreshold time.Duration

	// CommandTimeout bounds each vendor REST call
	CommandTimeout time.Duration
}

// DefaultPlaybackConfig returns the default playback timings.
func DefaultPlaybackConfig() PlaybackConfig {
	return PlaybackConfig{
		DeviceName:      "Aura MediaPlayer",
		TickInterval:    250 * time.Millisecond,
		JitterTolerance: 3 * time.Second,
		EndThreshold:    time.Second,
		CommandTimeout:  10 * time.Second,
	}
}

type playRequest struct {
	track    domain.Track
	position time.Duration
}

// PlaybackService is the playback adapter: it owns the vendor device and its
// idle -> loading -> ready -> error lifecycle, issues REST commands in ready,
// buffers one play request otherwise, and reconciles device notifications
// with a local progress timer.
type PlaybackService struct {
	// Dependencies (injected)
	logger       *slog.Logger
	device       ports.PlayerDevice
	newTransport ports.TransportFactory
	bus          ports.EventBus
	cfg          PlaybackConfig

	// Device state
	state       domain.PlayerState
	deviceID    string
	errMessage  string
	authFailure bool
	pending     *playRequest
	stateCh     chan struct{} // closed and replaced on every transition
	transports  map[string]ports.PlaybackTransport

	// Track state
	track        *domain.Track
	status       domain.PlaybackStatus
	position     time.Duration
	lastPosition time.Duration
	volume       float64
	endSignaled  string // ID of the track whose end was already reported
	replacedID   string // ID of the track current before the last track change

	// Lifecycle
	ctx        context.Context
	cancel     context.CancelFunc
	stopUpdate chan struct{}
	updateWg   sync.WaitGroup
	closed     bool

	mu sync.Mutex
}

// NewPlaybackService creates the playback adapter and starts its progress timer.
func NewPlaybackService(
	logger *slog.Logger,
	device ports.PlayerDevice,
	newTransport ports.TransportFactory,
	bus ports.EventBus,
	cfg PlaybackConfig,
) *PlaybackService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &PlaybackService{
		logger:       logger,
		device:       device,
		newTransport: newTransport,
		bus:          bus,
		cfg:          cfg,
		state:        domain.PlayerIdle,
		stateCh:      make(chan struct{}),
		transports:   make(map[string]ports.PlaybackTransport),
		volume:       1.0,
		ctx:          ctx,
		cancel:       cancel,
		stopUpdate:   make(chan struct{}),
	}

	logger.Debug("playback service initialized", slog.String("device_name", cfg.DeviceName))

	s.startUpdateRoutine()
	return s
}

// Play starts track at position. Outside the ready state the request replaces
// any buffered one and is issued on the next ready transition; an idle device
// is bootstrapped with the track's credential.
func (s *PlaybackService) Play(track domain.Track, position time.Duration) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrPlayerUnavailable
	}
	if s.state == domain.PlayerError {
		s.mu.Unlock()
		s.logger.Warn("play ignored, player in error state", slog.String("track_id", track.ID))
		return domain.ErrPlayerUnavailable
	}

	s.setTrackLocked(track, position)

	if s.state != domain.PlayerReady {
		s.pending = &playRequest{track: track, position: position}
		s.logger.Debug("player not ready, queueing play request",
			slog.String("track_id", track.ID),
			slog.String("state", s.state.String()))

		if s.state != domain.PlayerIdle {
			s.mu.Unlock()
			return nil
		}
		if track.AccessToken == "" {
			s.mu.Unlock()
			s.bus.Publish(domain.NewPlaybackErrorEvent(msgNoToken, false, false, domain.ErrNoAccessToken))
			return domain.ErrNoAccessToken
		}
		events := s.transitionLocked(domain.PlayerLoading, "")
		s.mu.Unlock()

		s.publish(events...)
		s.connect()
		return nil
	}

	deviceID := s.deviceID
	s.mu.Unlock()

	return s.issuePlay(deviceID, playRequest{track: track, position: position})
}

func (s *PlaybackService) issuePlay(deviceID string, req playRequest) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.CommandTimeout)
	defer cancel()

	s.logger.Debug("playing track",
		slog.String("track_id", req.track.ID),
		slog.Duration("position", req.position))

	err := s.transport(req.track.AccessToken).Play(ctx, deviceID, req.track.ID, req.position)
	if err != nil {
		return s.handleCommandError("play", err, &req)
	}

	s.mu.Lock()
	if s.track == nil || s.track.ID != req.track.ID {
		s.mu.Unlock()
		return nil
	}
	s.status = domain.StatusPlaying
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackStartedEvent(req.track))
	return nil
}

// TogglePlay pauses when playing, otherwise resumes the current track at its position.
func (s *PlaybackService) TogglePlay() error {
	s.mu.Lock()
	if s.track == nil {
		s.mu.Unlock()
		return domain.ErrQueueEmpty
	}
	playing := s.status == domain.StatusPlaying
	track := *s.track
	position := s.lastPosition
	s.mu.Unlock()

	if playing {
		return s.Pause()
	}
	return s.Play(track, position)
}

// Pause pauses the device.
func (s *PlaybackService) Pause() error {
	s.mu.Lock()
	if s.state != domain.PlayerReady || s.track == nil {
		s.mu.Unlock()
		return domain.ErrPlayerNotReady
	}
	deviceID, track := s.deviceID, *s.track
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.CommandTimeout)
	defer cancel()
	err := s.transport(track.AccessToken).Pause(ctx, deviceID)

	s.mu.Lock()
	s.status = domain.StatusPaused
	position := s.position
	s.mu.Unlock()

	if err != nil {
		return s.handleCommandError("pause", err, nil)
	}
	s.bus.Publish(domain.NewTrackPausedEvent(track, position))
	return nil
}

// Seek moves the device to position within the current track.
func (s *PlaybackService) Seek(position time.Duration) error {
	s.mu.Lock()
	if s.state != domain.PlayerReady || s.track == nil {
		s.mu.Unlock()
		return domain.ErrPlayerNotReady
	}
	if position < 0 || (s.track.Duration > 0 && position > s.track.Duration) {
		s.mu.Unlock()
		return domain.ErrInvalidPosition
	}
	deviceID, track := s.deviceID, *s.track
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.CommandTimeout)
	defer cancel()
	if err := s.transport(track.AccessToken).Seek(ctx, deviceID, position); err != nil {
		return s.handleCommandError("seek", err, nil)
	}

	s.mu.Lock()
	s.position = position
	s.lastPosition = position
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackProgressEvent(position, track.Duration))
	return nil
}

// SetVolume sets the device volume (0.0 to 1.0). Outside ready the value is
// kept and handed to the device when it connects.
func (s *PlaybackService) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	s.mu.Lock()
	s.volume = volume
	ready := s.state == domain.PlayerReady && s.track != nil
	var deviceID, token string
	if ready {
		deviceID, token = s.deviceID, s.track.AccessToken
	}
	s.mu.Unlock()

	if ready {
		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.CommandTimeout)
		defer cancel()
		if err := s.transport(token).SetVolume(ctx, deviceID, volume); err != nil {
			return s.handleCommandError("volume", err, nil)
		}
	}

	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
	return nil
}

// Follow adopts track as current without commanding the device.
func (s *PlaybackService) Follow(track domain.Track) {
	s.mu.Lock()
	s.setTrackLocked(track, 0)
	s.mu.Unlock()
}

// Stop switches the display to stopped and resets the position.
func (s *PlaybackService) Stop() {
	s.mu.Lock()
	s.status = domain.StatusStopped
	s.position = 0
	s.lastPosition = 0
	var track domain.Track
	if s.track != nil {
		track = *s.track
	}
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackStoppedEvent(track))
}

// Retry leaves the error state and bootstraps the device again,
// replaying the current track at its last position.
func (s *PlaybackService) Retry() error {
	s.mu.Lock()
	if s.state != domain.PlayerError {
		s.mu.Unlock()
		return nil
	}
	s.errMessage = ""
	s.authFailure = false
	events := s.transitionLocked(domain.PlayerIdle, "")
	var req *playRequest
	if s.track != nil {
		req = &playRequest{track: *s.track, position: s.lastPosition}
	}
	s.mu.Unlock()

	s.logger.Info("retrying player bootstrap")
	s.publish(events...)
	if req == nil {
		return nil
	}
	return s.Play(req.track, req.position)
}

// WaitReady blocks until the device is ready, the player fails, or ctx ends.
func (s *PlaybackService) WaitReady(ctx context.Context) error {
	for {
		s.mu.Lock()
		state, ch := s.state, s.stateCh
		s.mu.Unlock()

		switch state {
		case domain.PlayerReady:
			return nil
		case domain.PlayerError:
			return domain.ErrPlayerUnavailable
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// GetState returns a snapshot of the playback session.
func (s *PlaybackService) GetState() domain.PlaybackSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := domain.PlaybackSession{
		DeviceID:     s.deviceID,
		Volume:       s.volume,
		Position:     s.position,
		Status:       s.status,
		State:        s.state,
		ErrorMessage: s.errMessage,
		AuthFailure:  s.authFailure,
	}
	if s.track != nil {
		t := *s.track
		session.Track = &t
		session.Duration = t.Duration
	}
	return session
}

// Shutdown stops the progress timer and disconnects the device.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stopUpdate)
	s.mu.Unlock()

	// Cancel first: the update goroutine may be inside a vendor call
	// (auto-advance runs on it). Wait without holding the lock.
	s.cancel()
	s.updateWg.Wait()

	return s.device.Disconnect()
}

// setTrackLocked makes track current at position and re-arms end detection.
func (s *PlaybackService) setTrackLocked(track domain.Track, position time.Duration) {
	s.endSignaled = ""
	if s.track != nil && s.track.ID != track.ID {
		s.replacedID = s.track.ID
	}
	t := track
	s.track = &t
	s.position = position
	s.lastPosition = position
}

// transitionLocked moves to state and returns the events to publish after unlocking.
func (s *PlaybackService) transitionLocked(state domain.PlayerState, message string) []domain.Event {
	if s.state == state {
		return nil
	}
	previous := s.state
	s.state = state
	close(s.stateCh)
	s.stateCh = make(chan struct{})

	s.logger.Info("player state changed",
		slog.String("from", previous.String()),
		slog.String("to", state.String()))
	return []domain.Event{domain.NewPlayerStateChangedEvent(previous, state, message)}
}

func (s *PlaybackService) publish(events ...domain.Event) {
	for _, e := range events {
		s.bus.Publish(e)
	}
}

// connect registers the device. Callbacks may fire before Connect returns.
func (s *PlaybackService) connect() {
	s.mu.Lock()
	volume := s.volume
	s.mu.Unlock()

	cfg := ports.DeviceConfig{
		Name:   s.cfg.DeviceName,
		Volume: volume,
		Token:  s.currentToken,
	}
	if err := s.device.Connect(s.ctx, cfg, deviceListener{s}); err != nil {
		s.logger.Error("failed to connect player device", slog.Any("error", err))
		s.fail(msgConnectFailed, false)
	}
}

func (s *PlaybackService) currentToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.track == nil || s.track.AccessToken == "" {
		return "", domain.ErrNoAccessToken
	}
	return s.track.AccessToken, nil
}

// transport returns the REST transport bound to token.
func (s *PlaybackService) transport(token string) ports.PlaybackTransport {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transports[token]
	if !ok {
		t = s.newTransport(token)
		s.transports[token] = t
	}
	return t
}

// fail enters the error state. Buffered requests are dropped.
func (s *PlaybackService) fail(message string, auth bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.deviceID = ""
	s.errMessage = message
	s.authFailure = auth
	if s.status == domain.StatusPlaying {
		s.status = domain.StatusPaused
	}
	events := s.transitionLocked(domain.PlayerError, message)
	s.mu.Unlock()

	s.logger.Error("player failed", slog.String("message", message), slog.Bool("auth", auth))
	events = append(events, domain.NewPlaybackErrorEvent(message, auth, true, domain.ErrPlayerUnavailable))
	s.publish(events...)
}

// handleCommandError classifies a failed REST command. A vanished device
// resets to idle and re-registers, keeping req buffered; auth failures are
// surfaced as a persistent banner; anything else is a dismissible message.
func (s *PlaybackService) handleCommandError(op string, err error, req *playRequest) error {
	if s.ctx.Err() != nil {
		// Shutting down; the command was cancelled, not failed.
		return err
	}
	s.logger.Error("playback command failed", slog.String("op", op), slog.Any("error", err))

	var vendorErr *domain.VendorError
	if errors.As(err, &vendorErr) {
		switch {
		case vendorErr.IsDeviceGone():
			s.mu.Lock()
			if s.state != domain.PlayerReady {
				s.mu.Unlock()
				return nil
			}
			s.deviceID = ""
			if req != nil {
				s.pending = req
			}
			events := s.transitionLocked(domain.PlayerIdle, "")
			events = append(events, s.transitionLocked(domain.PlayerLoading, "")...)
			s.mu.Unlock()

			s.logger.Warn("device not found, reconnecting")
			s.publish(events...)
			if derr := s.device.Disconnect(); derr != nil {
				s.logger.Warn("failed to disconnect stale device", slog.Any("error", derr))
			}
			s.connect()
			return nil
		case vendorErr.IsAuth():
			message := msgAuthFailed
			if op == "transfer" {
				message = msgSessionExpired
			}
			s.bus.Publish(domain.NewPlaybackErrorEvent(message, true, true, err))
			return err
		}
	}

	message := "Playback error. Please try again."
	if op == "play" {
		message = msgPlayFailed
	}
	s.bus.Publish(domain.NewPlaybackErrorEvent(message, false, false, err))
	return err
}

// onReady transfers playback to the new device, then accepts commands and flushes the buffered request.
func (s *PlaybackService) onReady(deviceID string) {
	s.mu.Lock()
	if s.closed || s.state != domain.PlayerLoading {
		s.mu.Unlock()
		return
	}
	s.deviceID = deviceID
	token := ""
	if s.track != nil {
		token = s.track.AccessToken
	}
	s.mu.Unlock()

	s.logger.Info("player device ready", slog.String("device_id", deviceID))

	if token != "" {
		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.CommandTimeout)
		err := s.transport(token).Transfer(ctx, deviceID, false)
		cancel()
		if err != nil {
			s.logger.Error("failed to transfer playback", slog.Any("error", err))
			var vendorErr *domain.VendorError
			if errors.As(err, &vendorErr) && vendorErr.IsAuth() {
				s.bus.Publish(domain.NewPlaybackErrorEvent(msgSessionExpired, true, true, err))
			}
		}
	}

	s.mu.Lock()
	if s.closed || s.state != domain.PlayerLoading || s.deviceID != deviceID {
		s.mu.Unlock()
		return
	}
	events := s.transitionLocked(domain.PlayerReady, "")
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.publish(events...)
	if pending != nil {
		s.logger.Debug("processing pending play request", slog.String("track_id", pending.track.ID))
		if err := s.issuePlay(deviceID, *pending); err != nil {
			s.logger.Warn("pending play request failed", slog.Any("error", err))
		}
	}
}

// onStateChanged reconciles a device notification with local state.
func (s *PlaybackService) onStateChanged(ds ports.DeviceState) {
	s.mu.Lock()
	if s.closed || s.state != domain.PlayerReady || s.track == nil {
		s.mu.Unlock()
		return
	}
	// A paused report of the track we just replaced is its tail.
	if ds.Paused && ds.TrackID != "" && ds.TrackID != s.track.ID && ds.TrackID == s.replacedID {
		s.mu.Unlock()
		return
	}

	var events []domain.Event
	last := s.lastPosition

	if ds.Paused {
		if s.status == domain.StatusPlaying {
			s.status = domain.StatusPaused
		}
	} else {
		s.status = domain.StatusPlaying
	}

	// Small backward jumps are jitter; larger ones are not applied.
	if ds.Position >= last || last-ds.Position < s.cfg.JitterTolerance {
		s.position = ds.Position
	}
	if !ds.Paused {
		s.lastPosition = ds.Position
	}

	if ds.Paused && ds.Position == 0 && last > 0 {
		s.logger.Debug("track end detected from device state", slog.Duration("last_position", last))
		if e := s.signalEndLocked(); e != nil {
			events = append(events, e)
		}
	}

	// The device may switch tracks on its own, playing or paused.
	if ds.TrackID != "" && ds.TrackID != s.track.ID {
		events = append(events, domain.NewDeviceTrackChangedEvent(ds.TrackID))
	} else {
		events = append(events, domain.NewTrackProgressEvent(s.position, s.track.Duration))
	}
	s.mu.Unlock()

	s.publish(events...)
}

// signalEndLocked reports the end of the current track once.
func (s *PlaybackService) signalEndLocked() domain.Event {
	if s.track == nil || s.endSignaled == s.track.ID {
		return nil
	}
	s.endSignaled = s.track.ID
	s.status = domain.StatusPaused
	return domain.NewTrackEndedEvent(*s.track)
}

// startUpdateRoutine starts the goroutine that advances the local position while playing.
func (s *PlaybackService) startUpdateRoutine() {
	s.updateWg.Add(1)
	go func() {
		defer s.updateWg.Done()
		ticker := time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopUpdate:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// tick advances the position by one interval and ends the track near its declared duration.
func (s *PlaybackService) tick() {
	s.mu.Lock()
	if s.status != domain.StatusPlaying || s.track == nil {
		s.mu.Unlock()
		return
	}

	var events []domain.Event
	duration := s.track.Duration
	next := s.position + s.cfg.TickInterval
	if duration > 0 && next >= duration-s.cfg.EndThreshold {
		s.logger.Debug("track end detected by timer", slog.String("track_id", s.track.ID))
		if e := s.signalEndLocked(); e != nil {
			events = append(events, e)
		}
	} else {
		s.position = next
		s.lastPosition = next
		events = append(events, domain.NewTrackProgressEvent(next, duration))
	}
	s.mu.Unlock()

	s.publish(events...)
}

// deviceListener routes device callbacks into the service.
type deviceListener struct {
	s *PlaybackService
}

func (l deviceListener) OnReady(deviceID string) {
	l.s.onReady(deviceID)
}

func (l deviceListener) OnNotReady(deviceID string) {
	l.s.logger.Warn("player device not ready", slog.String("device_id", deviceID))
	l.s.fail(msgNotReady, false)
}

func (l deviceListener) OnStateChanged(state ports.DeviceState) {
	l.s.onStateChanged(state)
}

func (l deviceListener) OnInitializationError(message string) {
	l.s.fail("Initialization error: "+message, false)
}

func (l deviceListener) OnAuthenticationError(message string) {
	l.s.logger.Error("device authentication error", slog.String("message", message))
	l.s.fail(msgAuthError, true)
}

func (l deviceListener) OnAccountError(message string) {
	if strings.Contains(strings.ToLower(message), "premium") {
		l.s.fail(msgPremium, false)
		return
	}
	l.s.fail("Account error: "+message, false)
}

func (l deviceListener) OnPlaybackError(message string) {
	l.s.logger.Error("device playback error", slog.String("message", message))
	lower := strings.ToLower(message)
	if strings.Contains(lower, "offline") || strings.Contains(lower, "forbidden") {
		l.s.bus.Publish(domain.NewPlaybackErrorEvent("Playback error: "+message, false, false, nil))
	}
}

var _ ports.DeviceListener = deviceListener{}

// Verify that PlaybackService implements the expected interface patterns
var _ interface {
	Player
	TogglePlay() error
	Pause() error
	Seek(time.Duration) error
	SetVolume(float64) error
	Retry() error
	WaitReady(context.Context) error
	GetState() domain.PlaybackSession
	Shutdown() error
} = (*PlaybackService)(nil)
