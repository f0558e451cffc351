package ports

import (
	"context"
	"time"
)

// PlaybackTransport issues commands against the vendor's playback REST API.
// A transport is bound to one bearer credential; failures are *domain.VendorError.
type PlaybackTransport interface {
	// Transfer moves playback to the device. play=false keeps it paused.
	Transfer(ctx context.Context, deviceID string, play bool) error

	// Play starts trackID on the device at position.
	Play(ctx context.Context, deviceID, trackID string, position time.Duration) error

	Pause(ctx context.Context, deviceID string) error
	Seek(ctx context.Context, deviceID string, position time.Duration) error

	// SetVolume sets the device volume (0.0 to 1.0).
	SetVolume(ctx context.Context, deviceID string, volume float64) error
}

// TransportFactory builds a transport for a playback credential.
type TransportFactory func(accessToken string) PlaybackTransport

// DeviceState is a vendor "state changed" notification.
type DeviceState struct {
	Paused   bool
	Position time.Duration
	TrackID  string
}

// DeviceListener receives the asynchronous device callbacks.
// Callbacks may arrive on any goroutine.
type DeviceListener interface {
	OnReady(deviceID string)
	OnNotReady(deviceID string)
	OnStateChanged(state DeviceState)
	OnInitializationError(message string)
	OnAuthenticationError(message string)
	OnAccountError(message string)
	OnPlaybackError(message string)
}

// DeviceConfig configures the playback device registration.
type DeviceConfig struct {
	// Name is the device name shown to the vendor
	Name string

	// Volume is the initial volume (0.0 to 1.0)
	Volume float64

	// Token returns the current playback credential
	Token func() (string, error)
}

// PlayerDevice is the vendor playback device. One device is owned by one playback service.
type PlayerDevice interface {
	// Connect starts registration. Readiness and failures are reported to the listener.
	// An error means the connection could not even be attempted.
	Connect(ctx context.Context, cfg DeviceConfig, listener DeviceListener) error

	// Disconnect tears the device down and detaches the listener.
	Disconnect() error
}
