// Package spotify adapts the Spotify Web API to the playback ports.
//
// The transport issues player commands with the per-track bearer credential.
// The device adopts a Spotify Connect device registered under the configured name
// (a local receiver such as spotifyd) and polls its state.
package spotify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// Option configures the transport and the device.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// WithBaseURL points the client at another Web API root (used by tests).
func WithBaseURL(url string) Option {
	return func(o *options) {
		if url != "" && !strings.HasSuffix(url, "/") {
			url += "/"
		}
		o.baseURL = url
	}
}

// WithHTTPClient sets the client the oauth2 transport wraps.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newAPIClient builds a Web API client authorized by src.
func (o options) newAPIClient(src oauth2.TokenSource) *spotifyapi.Client {
	ctx := context.Background()
	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}
	var clientOpts []spotifyapi.ClientOption
	if o.baseURL != "" {
		clientOpts = append(clientOpts, spotifyapi.WithBaseURL(o.baseURL))
	}
	return spotifyapi.New(oauth2.NewClient(ctx, src), clientOpts...)
}

func staticToken(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}

// Transport sends player commands for one access token.
type Transport struct {
	client *spotifyapi.Client
	logger *slog.Logger
}

// NewTransport creates a transport bound to accessToken.
func NewTransport(accessToken string, opts ...Option) *Transport {
	o := newOptions(opts)
	return &Transport{
		client: o.newAPIClient(staticToken(accessToken)),
		logger: o.logger,
	}
}

// Factory returns a TransportFactory producing transports that share opts.
func Factory(opts ...Option) ports.TransportFactory {
	return func(accessToken string) ports.PlaybackTransport {
		return NewTransport(accessToken, opts...)
	}
}

func deviceOpt(deviceID string) *spotifyapi.PlayOptions {
	id := spotifyapi.ID(deviceID)
	return &spotifyapi.PlayOptions{DeviceID: &id}
}

// Transfer moves playback to deviceID.
func (t *Transport) Transfer(ctx context.Context, deviceID string, play bool) error {
	return t.do("transfer", func() error {
		return t.client.TransferPlayback(ctx, spotifyapi.ID(deviceID), play)
	})
}

// Play starts trackID on deviceID, seeking to position when it is past the start.
func (t *Transport) Play(ctx context.Context, deviceID, trackID string, position time.Duration) error {
	opt := deviceOpt(deviceID)
	opt.URIs = []spotifyapi.URI{spotifyapi.URI("spotify:track:" + trackID)}

	if err := t.do("play", func() error { return t.client.PlayOpt(ctx, opt) }); err != nil {
		return err
	}
	if position <= 0 {
		return nil
	}
	return t.Seek(ctx, deviceID, position)
}

// Pause pauses deviceID.
func (t *Transport) Pause(ctx context.Context, deviceID string) error {
	return t.do("pause", func() error {
		return t.client.PauseOpt(ctx, deviceOpt(deviceID))
	})
}

// Seek moves the playhead of deviceID.
func (t *Transport) Seek(ctx context.Context, deviceID string, position time.Duration) error {
	return t.do("seek", func() error {
		return t.client.SeekOpt(ctx, int(position.Milliseconds()), deviceOpt(deviceID))
	})
}

// SetVolume sets the volume of deviceID (0.0 to 1.0).
func (t *Transport) SetVolume(ctx context.Context, deviceID string, volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}
	return t.do("volume", func() error {
		return t.client.VolumeOpt(ctx, int(volume*100+0.5), deviceOpt(deviceID))
	})
}

func (t *Transport) do(op string, fn func() error) error {
	if err := fn(); err != nil {
		verr := vendorError(op, err)
		t.logger.Warn("vendor command failed",
			slog.String("op", op),
			slog.Int("status", verr.Status),
			slog.String("message", verr.Message))
		return verr
	}
	return nil
}

// vendorError classifies a Web API failure by its HTTP status.
func vendorError(op string, err error) *domain.VendorError {
	var apiErr spotifyapi.Error
	if errors.As(err, &apiErr) {
		return domain.NewVendorError(op, apiErr.Status, apiErr.Message, err)
	}
	return domain.NewVendorError(op, 0, err.Error(), err)
}

var _ ports.PlaybackTransport = (*Transport)(nil)
