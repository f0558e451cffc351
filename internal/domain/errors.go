// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrMissingSession is returned when a page is opened without a session token.
	ErrMissingSession = errors.New("session key is missing")

	// ErrTrackNotFound is returned when a requested track is not in the queue.
	ErrTrackNotFound = errors.New("track not found")

	// ErrQueueEmpty is returned when queue operations are attempted on an empty queue.
	ErrQueueEmpty = errors.New("queue is empty")

	// ErrNoPlaybackSource is returned when the player is opened with neither a playlist nor a track.
	ErrNoPlaybackSource = errors.New("neither playlist_id nor track_id is provided")

	// ErrEmptyPlaylist is returned when a playlist has no playable songs.
	ErrEmptyPlaylist = errors.New("no tracks found in the playlist")

	// ErrPlayerNotReady is returned when a device command is issued outside the ready state.
	ErrPlayerNotReady = errors.New("player not ready")

	// ErrPlayerUnavailable is returned when the player is in the error state.
	ErrPlayerUnavailable = errors.New("player unavailable")

	// ErrNoAccessToken is returned when the current track carries no playback credential.
	ErrNoAccessToken = errors.New("no access token available")

	// ErrInvalidVolume is returned when the volume is out of valid range (0.0-1.0).
	ErrInvalidVolume = errors.New("invalid volume: must be between 0.0 and 1.0")

	// ErrInvalidPosition is returned when seeking to an invalid position.
	ErrInvalidPosition = errors.New("invalid playback position")

	// ErrAlreadySampling is returned when a sampling window is already running.
	ErrAlreadySampling = errors.New("emotion sampling already in progress")

	// ErrNoEmotion is returned when recommendations are requested without an emotion.
	ErrNoEmotion = errors.New("emotion and genres are missing")

	// ErrNoRecommendations is returned when a playlist is requested before any recommendation.
	ErrNoRecommendations = errors.New("no recommendations available")

	// ErrEmptyPlaylistName is returned when creating a playlist without a name.
	ErrEmptyPlaylistName = errors.New("playlist name is empty")

	// ErrNotFound is returned by stores when a key is absent.
	ErrNotFound = errors.New("not found")
)

// GatewayError is the normalized {message} error of a backend call.
type GatewayError struct {
	Op      string // Endpoint operation (e.g., "profile", "lyrics")
	Status  int    // HTTP status (0 for transport failures)
	Message string // Message reported by the backend or derived from the failure
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway %s failed: %s (status: %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("gateway %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a new GatewayError.
func NewGatewayError(op string, status int, message string, err error) *GatewayError {
	return &GatewayError{
		Op:      op,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// VendorError represents a failed call against the vendor playback REST transport.
type VendorError struct {
	Op      string // Command that failed (e.g., "play", "transfer")
	Status  int    // HTTP status reported by the vendor (0 when unknown)
	Message string // Vendor message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *VendorError) Error() string {
	return fmt.Sprintf("vendor %s failed: %s (status: %d)", e.Op, e.Message, e.Status)
}

// Unwrap returns the underlying error.
func (e *VendorError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether the failure requires the user to log in again.
func (e *VendorError) IsAuth() bool {
	return e.Status == 401 || e.Status == 403
}

// IsDeviceGone reports whether the playback device vanished.
func (e *VendorError) IsDeviceGone() bool {
	return e.Status == 404
}

// NewVendorError creates a new VendorError.
func NewVendorError(op string, status int, message string, err error) *VendorError {
	return &VendorError{
		Op:      op,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// RepositoryError represents an error from a repository.
// This wraps persistence layer errors with additional context.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "get", "set", "delete")
	Type    string // Repository type (e.g., "session", "preferences")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "PlaybackService", "LibraryService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// UserMessage maps an error onto the text shown to the user.
func UserMessage(err error) string {
	var vendorErr *VendorError
	var gatewayErr *GatewayError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingSession):
		return "Session key is missing. Please log in again."
	case errors.Is(err, ErrNoPlaybackSource):
		return "Neither playlist_id nor track_id is provided."
	case errors.Is(err, ErrEmptyPlaylist):
		return "No tracks found in the playlist."
	case errors.Is(err, ErrNoAccessToken):
		return "No access token available."
	case errors.Is(err, ErrNoEmotion):
		return "Emotion and genres are missing."
	case errors.As(err, &vendorErr):
		if vendorErr.IsAuth() {
			return "Authentication failed. Please log in again."
		}
		return "Failed to play track. Please try again."
	case errors.As(err, &gatewayErr):
		if gatewayErr.Message != "" {
			return gatewayErr.Message
		}
	}
	return err.Error()
}
