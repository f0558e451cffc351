// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

// SessionStore holds session-scoped client state such as the last recommendation list.
// Values are scoped by session token so that a new login never sees stale data.
//
// Thread-safety: Implementations must be thread-safe.
type SessionStore interface {
	// Get returns the value stored under key for the session.
	// Returns domain.ErrNotFound when the key is absent.
	Get(session, key string) ([]byte, error)

	// Set stores value under key for the session, replacing any previous value.
	Set(session, key string, value []byte) error

	// Delete removes a single key. Deleting an absent key is a no-op.
	Delete(session, key string) error

	// Clear removes every key of the session.
	Clear(session string) error

	// Close releases the underlying storage.
	Close() error
}

// PreferencesRepository handles the persistence of user preferences.
// This abstracts the Fyne preferences storage.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveVolume persists the device volume (0.0 to 1.0).
	SaveVolume(volume float64) error

	// LoadVolume retrieves the saved volume, or the default when none was saved.
	LoadVolume() (float64, error)

	// SaveShowLyrics persists whether the lyrics panel is open.
	SaveShowLyrics(show bool) error

	// LoadShowLyrics retrieves the lyrics panel preference.
	LoadShowLyrics() (bool, error)

	// SaveLastLocation persists the last opened location so the app can reopen it.
	SaveLastLocation(location string) error

	// LoadLastLocation retrieves the last opened location ("" if none).
	LoadLastLocation() (string, error)

	// Clear removes all saved preferences.
	Clear() error
}
