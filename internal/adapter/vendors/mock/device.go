// Package mock provides in-memory implementations of the vendor playback ports.
// They are used by service tests and by the offline mode of the app.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// DefaultDeviceID is the identifier reported by an auto-ready device.
const DefaultDeviceID = "mock-device"

// Device is a mock implementation of ports.PlayerDevice.
// It records connections and lets tests fire device callbacks by hand.
//
// Thread-safety: This implementation is thread-safe.
type Device struct {
	// Dependencies
	logger *slog.Logger

	// State
	listener    ports.DeviceListener
	cfg         ports.DeviceConfig
	connects    int
	disconnects int

	// Behavior configuration (for testing error scenarios)
	autoReady   bool
	failConnect bool

	mu sync.Mutex
}

// NewDevice creates a mock device. An auto-ready device reports OnReady
// with DefaultDeviceID from inside Connect.
func NewDevice(logger *slog.Logger, autoReady bool) *Device {
	return &Device{
		logger:    logger,
		autoReady: autoReady,
	}
}

// SetFailConnect configures the mock to fail Connect (for testing).
func (d *Device) SetFailConnect(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failConnect = fail
}

// SetAutoReady configures whether Connect reports readiness immediately.
func (d *Device) SetAutoReady(auto bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.autoReady = auto
}

// Connect registers the listener.
func (d *Device) Connect(_ context.Context, cfg ports.DeviceConfig, listener ports.DeviceListener) error {
	d.mu.Lock()
	if d.failConnect {
		d.mu.Unlock()
		return fmt.Errorf("mock connect failed")
	}
	if cfg.Token != nil {
		if _, err := cfg.Token(); err != nil {
			d.mu.Unlock()
			return err
		}
	}
	d.listener = listener
	d.cfg = cfg
	d.connects++
	auto := d.autoReady
	d.mu.Unlock()

	if d.logger != nil {
		d.logger.Debug("mock device connected", slog.String("name", cfg.Name))
	}
	if auto {
		listener.OnReady(DefaultDeviceID)
	}
	return nil
}

// Disconnect detaches the listener.
func (d *Device) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listener = nil
	d.disconnects++
	return nil
}

// Connects returns how many times Connect succeeded.
func (d *Device) Connects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connects
}

// Disconnects returns how many times Disconnect was called.
func (d *Device) Disconnects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disconnects
}

// Config returns the configuration of the last connection.
func (d *Device) Config() ports.DeviceConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Connected returns true while a listener is attached.
func (d *Device) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listener != nil
}

func (d *Device) current() (ports.DeviceListener, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listener == nil {
		return nil, domain.ErrPlayerNotReady
	}
	return d.listener, nil
}

// EmitReady fires the ready callback.
func (d *Device) EmitReady(deviceID string) error {
	l, err := d.current()
	if err != nil {
		return err
	}
	l.OnReady(deviceID)
	return nil
}

// EmitNotReady fires the not-ready callback.
func (d *Device) EmitNotReady(deviceID string) error {
	l, err := d.current()
	if err != nil {
		return err
	}
	l.OnNotReady(deviceID)
	return nil
}

// EmitState fires a state-changed notification.
func (d *Device) EmitState(state ports.DeviceState) error {
	l, err := d.current()
	if err != nil {
		return err
	}
	l.OnStateChanged(state)
	return nil
}

// EmitInitializationError fires the initialization error callback.
func (d *Device) EmitInitializationError(message string) error {
	l, err := d.current()
	if err != nil {
		return err
	}
	l.OnInitializationError(message)
	return nil
}

// EmitAuthenticationError fires the authentication error callback.
func (d *Device) EmitAuthenticationError(message string) error {
	l, err := d.current()
	if err != nil {
		return err
	}
	l.OnAuthenticationError(message)
	return nil
}

// EmitAccountError fires the account error callback.
func (d *Device) EmitAccountError(message string) error {
	l, err := d.current()
	if err != nil {
		return err
	}
	l.OnAccountError(message)
	return nil
}

// EmitPlaybackError fires the playback error callback.
func (d *Device) EmitPlaybackError(message string) error {
	l, err := d.current()
	if err != nil {
		return err
	}
	l.OnPlaybackError(message)
	return nil
}

var _ ports.PlayerDevice = (*Device)(nil)
