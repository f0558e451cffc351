package mock

import (
	"context"
	"sync"
	"time"

	"github.com/tejashwikalptaru/aura/internal/ports"
)

// Transport operation names as recorded in Call.Op.
const (
	OpTransfer = "transfer"
	OpPlay     = "play"
	OpPause    = "pause"
	OpSeek     = "seek"
	OpVolume   = "volume"
)

// Call is one recorded transport command.
type Call struct {
	Op       string
	Token    string
	DeviceID string
	TrackID  string
	Position time.Duration
	Volume   float64
	Play     bool
}

// Transport is a mock implementation of ports.PlaybackTransport that records every command.
// All transports built by one Factory share the same recorder.
//
// Thread-safety: This implementation is thread-safe.
type Transport struct {
	rec   *Recorder
	token string
}

// Recorder collects calls and holds the scripted failures.
type Recorder struct {
	calls []Call
	fail  map[string][]error

	mu sync.Mutex
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{fail: make(map[string][]error)}
}

// Factory returns a ports.TransportFactory whose transports record into r.
func (r *Recorder) Factory() ports.TransportFactory {
	return func(token string) ports.PlaybackTransport {
		return &Transport{rec: r, token: token}
	}
}

// FailNext makes the next call of op return err. Repeated calls queue up.
func (r *Recorder) FailNext(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[op] = append(r.fail[op], err)
}

// Calls returns a copy of all recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsOf returns the recorded calls of op.
func (r *Recorder) CallsOf(op string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls and scripted failures.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.fail = make(map[string][]error)
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if errs := r.fail[c.Op]; len(errs) > 0 {
		r.fail[c.Op] = errs[1:]
		return errs[0]
	}
	return nil
}

// Transfer records a transfer.
func (t *Transport) Transfer(_ context.Context, deviceID string, play bool) error {
	return t.rec.record(Call{Op: OpTransfer, Token: t.token, DeviceID: deviceID, Play: play})
}

// Play records a play.
func (t *Transport) Play(_ context.Context, deviceID, trackID string, position time.Duration) error {
	return t.rec.record(Call{Op: OpPlay, Token: t.token, DeviceID: deviceID, TrackID: trackID, Position: position})
}

// Pause records a pause.
func (t *Transport) Pause(_ context.Context, deviceID string) error {
	return t.rec.record(Call{Op: OpPause, Token: t.token, DeviceID: deviceID})
}

// Seek records a seek.
func (t *Transport) Seek(_ context.Context, deviceID string, position time.Duration) error {
	return t.rec.record(Call{Op: OpSeek, Token: t.token, DeviceID: deviceID, Position: position})
}

// SetVolume records a volume change.
func (t *Transport) SetVolume(_ context.Context, deviceID string, volume float64) error {
	return t.rec.record(Call{Op: OpVolume, Token: t.token, DeviceID: deviceID, Volume: volume})
}

var _ ports.PlaybackTransport = (*Transport)(nil)
