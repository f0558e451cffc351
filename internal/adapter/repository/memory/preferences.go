// Package memory provides repository implementations on top of Fyne preferences.
//
// Fyne preferences automatically use OS-specific app data directories:
// - macOS: ~/Library/Preferences/<app id>.plist
// - Linux: ~/.config/fyne/<app id>/
// - Windows: %APPDATA%\fyne\<app id>\
package memory

import (
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

const (
	keyVolume       = "preferences.volume"
	keyShowLyrics   = "preferences.show_lyrics"
	keyLastLocation = "preferences.last_location"
)

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences' repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// SaveVolume persists the volume level.
func (r *PreferencesRepository) SaveVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetFloat(keyVolume, volume)
	return nil
}

// LoadVolume retrieves the saved volume level.
func (r *PreferencesRepository) LoadVolume() (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.FloatWithFallback(keyVolume, 0.8), nil
}

// SaveShowLyrics persists the lyrics panel state.
func (r *PreferencesRepository) SaveShowLyrics(show bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetBool(keyShowLyrics, show)
	return nil
}

// LoadShowLyrics retrieves the lyrics panel state.
func (r *PreferencesRepository) LoadShowLyrics() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.BoolWithFallback(keyShowLyrics, false), nil
}

// SaveLastLocation persists the last opened location.
func (r *PreferencesRepository) SaveLastLocation(location string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyLastLocation, location)
	return nil
}

// LoadLastLocation retrieves the last opened location.
func (r *PreferencesRepository) LoadLastLocation() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.String(keyLastLocation), nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyVolume)
	r.prefs.RemoveValue(keyShowLyrics)
	r.prefs.RemoveValue(keyLastLocation)

	return nil
}

// Verify interface implementation
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
