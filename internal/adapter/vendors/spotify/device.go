package spotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// DeviceConfig tunes the device poller.
type DeviceConfig struct {
	// PollInterval is the delay between device and state polls
	PollInterval time.Duration

	// DiscoveryTimeout bounds how long the named device is searched for
	DiscoveryTimeout time.Duration

	// RequestTimeout bounds every Web API call
	RequestTimeout time.Duration
}

// DefaultDeviceConfig returns the polling defaults.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		PollInterval:     time.Second,
		DiscoveryTimeout: 30 * time.Second,
		RequestTimeout:   5 * time.Second,
	}
}

// Device adopts the Connect device named in ports.DeviceConfig and reports its
// lifecycle and playback state through the listener.
type Device struct {
	logger *slog.Logger
	opts   options
	cfg    DeviceConfig

	mu         sync.Mutex
	generation int
	cancel     context.CancelFunc
	listener   ports.DeviceListener
	wg         sync.WaitGroup
}

// NewDevice creates a polling device.
func NewDevice(cfg DeviceConfig, opts ...Option) *Device {
	o := newOptions(opts)
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultDeviceConfig().PollInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultDeviceConfig().RequestTimeout
	}
	return &Device{
		logger: o.logger,
		opts:   o,
		cfg:    cfg,
	}
}

// tokenFunc adapts the device's credential callback to an oauth2.TokenSource.
type tokenFunc func() (string, error)

func (f tokenFunc) Token() (*oauth2.Token, error) {
	tok, err := f()
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, domain.ErrNoAccessToken
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// Connect starts discovery of the device named cfg.Name. A previous connection is replaced.
func (d *Device) Connect(ctx context.Context, cfg ports.DeviceConfig, listener ports.DeviceListener) error {
	if cfg.Name == "" {
		return domain.NewValidationError("name", cfg.Name, "device name is required")
	}
	if cfg.Token == nil {
		return domain.ErrNoAccessToken
	}
	if listener == nil {
		return fmt.Errorf("device listener is required")
	}

	client := d.opts.newAPIClient(tokenFunc(cfg.Token))

	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	pollCtx, cancel := context.WithCancel(ctx)
	d.generation++
	gen := d.generation
	d.cancel = cancel
	d.listener = listener
	d.mu.Unlock()

	d.logger.Info("searching for playback device", slog.String("name", cfg.Name))

	d.wg.Add(1)
	go d.poll(pollCtx, gen, client, cfg)
	return nil
}

// Disconnect stops polling and detaches the listener. It does not wait for the
// poller, so it may be called from a listener callback.
func (d *Device) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.listener = nil
	d.generation++
	return nil
}

// Wait blocks until every poller has exited.
func (d *Device) Wait() {
	d.wg.Wait()
}

// current returns the listener if gen is still the active connection.
func (d *Device) current(gen int) ports.DeviceListener {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.generation {
		return nil
	}
	return d.listener
}

func (d *Device) emit(gen int, fn func(ports.DeviceListener)) {
	if l := d.current(gen); l != nil {
		fn(l)
	}
}

func (d *Device) poll(ctx context.Context, gen int, client *spotifyapi.Client, cfg ports.DeviceConfig) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	var deviceID string
	var deadline time.Time
	if d.cfg.DiscoveryTimeout > 0 {
		deadline = time.Now().Add(d.cfg.DiscoveryTimeout)
	}

	for {
		if deviceID == "" {
			id, err := d.discover(ctx, client, cfg.Name)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				if d.fatal(gen, err) {
					return
				}
			case id != "":
				deviceID = id
				d.logger.Info("playback device ready", slog.String("device_id", id))
				d.applyVolume(ctx, client, id, cfg.Volume)
				d.emit(gen, func(l ports.DeviceListener) { l.OnReady(id) })
			case !deadline.IsZero() && time.Now().After(deadline):
				d.emit(gen, func(l ports.DeviceListener) {
					l.OnInitializationError(fmt.Sprintf("no playback device named %q was found", cfg.Name))
				})
				return
			}
		} else if !d.report(ctx, gen, client, deviceID) {
			if ctx.Err() != nil {
				return
			}
			d.logger.Warn("playback device went away", slog.String("device_id", deviceID))
			d.emit(gen, func(l ports.DeviceListener) { l.OnNotReady(deviceID) })
			deviceID = ""
			if d.cfg.DiscoveryTimeout > 0 {
				deadline = time.Now().Add(d.cfg.DiscoveryTimeout)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// discover looks up the device by name. An empty id means not (yet) listed.
func (d *Device) discover(ctx context.Context, client *spotifyapi.Client, name string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
	defer cancel()

	devices, err := client.PlayerDevices(reqCtx)
	if err != nil {
		return "", vendorError("devices", err)
	}
	for _, dev := range devices {
		if strings.EqualFold(dev.Name, name) && !dev.Restricted {
			return string(dev.ID), nil
		}
	}
	return "", nil
}

// report polls the player state. It returns false when the device is no longer listed.
func (d *Device) report(ctx context.Context, gen int, client *spotifyapi.Client, deviceID string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
	defer cancel()

	state, err := client.PlayerState(reqCtx)
	if err != nil {
		verr := vendorError("state", err)
		if verr.IsAuth() {
			d.fatal(gen, verr)
			return true
		}
		d.logger.Debug("state poll failed", slog.Int("status", verr.Status), slog.String("message", verr.Message))
		return true
	}
	if state == nil || state.Item == nil {
		return true
	}
	if string(state.Device.ID) != deviceID {
		// Playback is on another device; ours must still be listed to stay ready.
		return d.listed(ctx, client, deviceID)
	}

	ds := ports.DeviceState{
		Paused:   !state.Playing,
		Position: time.Duration(state.Progress) * time.Millisecond,
		TrackID:  string(state.Item.ID),
	}
	d.emit(gen, func(l ports.DeviceListener) { l.OnStateChanged(ds) })
	return true
}

func (d *Device) listed(ctx context.Context, client *spotifyapi.Client, deviceID string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
	defer cancel()

	devices, err := client.PlayerDevices(reqCtx)
	if err != nil {
		return true
	}
	for _, dev := range devices {
		if string(dev.ID) == deviceID {
			return true
		}
	}
	return false
}

// fatal reports err to the listener. It returns true when polling must stop.
func (d *Device) fatal(gen int, err error) bool {
	var verr *domain.VendorError
	if !errors.As(err, &verr) {
		d.logger.Warn("device poll failed", slog.Any("error", err))
		if errors.Is(err, domain.ErrNoAccessToken) {
			d.emit(gen, func(l ports.DeviceListener) { l.OnAuthenticationError(err.Error()) })
			return true
		}
		return false
	}

	switch {
	case verr.Status == http.StatusForbidden && strings.Contains(strings.ToLower(verr.Message), "premium"):
		d.emit(gen, func(l ports.DeviceListener) { l.OnAccountError(verr.Message) })
		return true
	case verr.IsAuth():
		d.emit(gen, func(l ports.DeviceListener) { l.OnAuthenticationError(verr.Message) })
		return true
	default:
		d.logger.Warn("device poll failed",
			slog.Int("status", verr.Status),
			slog.String("message", verr.Message))
		return false
	}
}

func (d *Device) applyVolume(ctx context.Context, client *spotifyapi.Client, deviceID string, volume float64) {
	if volume < 0 || volume > 1 {
		return
	}
	reqCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
	defer cancel()

	id := spotifyapi.ID(deviceID)
	if err := client.VolumeOpt(reqCtx, int(volume*100+0.5), &spotifyapi.PlayOptions{DeviceID: &id}); err != nil {
		d.logger.Warn("failed to apply initial volume", slog.Any("error", vendorError("volume", err)))
	}
}

var _ ports.PlayerDevice = (*Device)(nil)
