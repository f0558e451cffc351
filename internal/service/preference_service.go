package service

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// DefaultVolume is the device volume used until the user changes it.
const DefaultVolume = 0.8

// PreferenceService manages the client preferences that survive restarts.
// Volume changes published on the bus are persisted automatically.
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository
	bus        ports.EventBus

	// Cached preferences
	volume       float64
	showLyrics   bool
	lastLocation string

	subscription domain.SubscriptionID

	mu sync.RWMutex
}

// NewPreferenceService creates a new preference service and loads the saved values.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
	bus ports.EventBus,
) *PreferenceService {
	service := &PreferenceService{
		logger:     logger,
		repository: repository,
		bus:        bus,
		volume:     DefaultVolume,
	}

	service.loadPreferences()
	service.subscription = bus.Subscribe(domain.EventVolumeChanged, service.onVolumeChanged)

	logger.Debug("preference service initialized")
	return service
}

// loadPreferences loads all preferences from the repository into the cache.
func (s *PreferenceService) loadPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vol, err := s.repository.LoadVolume(); err == nil {
		s.volume = vol
	} else {
		s.logger.Warn("failed to load volume", slog.Any("error", err))
	}

	if show, err := s.repository.LoadShowLyrics(); err == nil {
		s.showLyrics = show
	}

	if loc, err := s.repository.LoadLastLocation(); err == nil {
		s.lastLocation = loc
	}
}

// GetVolume returns the saved volume preference (0.0 to 1.0).
func (s *PreferenceService) GetVolume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// SetVolume saves the volume preference (0.0 to 1.0).
func (s *PreferenceService) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()

	return s.repository.SaveVolume(volume)
}

// GetShowLyrics returns whether the lyrics panel was left open.
func (s *PreferenceService) GetShowLyrics() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showLyrics
}

// SetShowLyrics saves the lyrics panel preference.
func (s *PreferenceService) SetShowLyrics(show bool) error {
	s.mu.Lock()
	s.showLyrics = show
	s.mu.Unlock()

	return s.repository.SaveShowLyrics(show)
}

// GetLastLocation returns the last opened location, or "" if none.
func (s *PreferenceService) GetLastLocation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastLocation
}

// SetLastLocation saves the last opened location. Invalid locations are rejected.
func (s *PreferenceService) SetLastLocation(raw string) error {
	if raw != "" {
		if _, err := domain.ParseLocation(raw); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.lastLocation = raw
	s.mu.Unlock()

	return s.repository.SaveLastLocation(raw)
}

// ResetToDefaults clears every saved preference.
func (s *PreferenceService) ResetToDefaults() error {
	s.mu.Lock()
	s.volume = DefaultVolume
	s.showLyrics = false
	s.lastLocation = ""
	s.mu.Unlock()

	return s.repository.Clear()
}

func (s *PreferenceService) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}
	if err := s.SetVolume(e.Volume); err != nil {
		s.logger.Warn("failed to persist volume", slog.Any("error", err))
	}
}

// Shutdown detaches from the event bus.
func (s *PreferenceService) Shutdown() error {
	s.bus.Unsubscribe(s.subscription)
	return nil
}

// Verify that PreferenceService implements the expected interface patterns
var _ interface {
	GetVolume() float64
	SetVolume(float64) error
	GetShowLyrics() bool
	SetShowLyrics(bool) error
	GetLastLocation() string
	SetLastLocation(string) error
	ResetToDefaults() error
	Shutdown() error
} = (*PreferenceService)(nil)
