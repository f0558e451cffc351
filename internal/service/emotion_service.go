package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// EmotionConfig holds the sampler timings.
type EmotionConfig struct {
	// CaptureInterval is the pause between two frame captures
	CaptureInterval time.Duration

	// Window is the length of one sampling window
	Window time.Duration

	// RequestTimeout bounds each capture and backend call
	RequestTimeout time.Duration
}

// DefaultEmotionConfig returns the default sampler timings.
func DefaultEmotionConfig() EmotionConfig {
	return EmotionConfig{
		CaptureInterval: 500 * time.Millisecond,
		Window:          10 * time.Second,
		RequestTimeout:  5 * time.Second,
	}
}

// EmotionService is the emotion sampler. A window captures a frame every
// CaptureInterval, folds the returned scores into a tally and, once the
// capture loop has stopped, asks the backend for the dominant category.
// Failures are logged and leave the previous result in place.
type EmotionService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	gateway ports.Gateway
	frames  ports.FrameSource
	bus     ports.EventBus
	cfg     EmotionConfig

	// State
	tally    *domain.EmotionTally
	result   domain.Emotion
	genres   []string
	windowID string
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu sync.Mutex
}

// NewEmotionService creates a new emotion sampler. frames may be nil when no camera exists;
// manual selection still works then.
func NewEmotionService(
	logger *slog.Logger,
	gateway ports.Gateway,
	frames ports.FrameSource,
	bus ports.EventBus,
	cfg EmotionConfig,
) *EmotionService {
	logger.Debug("emotion service initialized",
		slog.Duration("window", cfg.Window),
		slog.Duration("interval", cfg.CaptureInterval))

	return &EmotionService{
		logger:  logger,
		gateway: gateway,
		frames:  frames,
		bus:     bus,
		cfg:     cfg,
		tally:   domain.NewEmotionTally(),
	}
}

// Start opens a sampling window for session and returns its ID.
func (s *EmotionService) Start(session string) (string, error) {
	if session == "" {
		return "", domain.ErrMissingSession
	}
	if s.frames == nil {
		return "", domain.NewServiceError("EmotionService", "Start", "no camera available", nil)
	}

	s.mu.Lock()
	if s.windowID != "" {
		s.mu.Unlock()
		return "", domain.ErrAlreadySampling
	}
	ctx, cancel := context.WithCancel(context.Background())
	windowID := uuid.NewString()
	s.windowID = windowID
	s.cancel = cancel
	s.tally.Reset()
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("emotion sampling started", slog.String("window_id", windowID))
	s.bus.Publish(domain.NewSamplingStartedEvent(windowID, s.cfg.Window))

	go s.sample(ctx, windowID, session)
	return windowID, nil
}

// sample runs one window. The tally is submitted only after the capture
// ticker is stopped, so no capture can land after submission.
func (s *EmotionService) sample(ctx context.Context, windowID, session string) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CaptureInterval)
	window := time.NewTimer(s.cfg.Window)
	captures := 0

	func() {
		defer ticker.Stop()
		defer window.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-window.C:
				return
			case <-ticker.C:
				if s.capture(ctx, session) {
					captures++
				}
			}
		}
	}()

	if ctx.Err() != nil {
		s.finish(windowID, captures, "", ctx.Err())
		return
	}

	emotion, err := s.resolve(ctx, session)
	s.finish(windowID, captures, emotion, err)
}

// capture grabs one frame and adds its scores to the tally.
func (s *EmotionService) capture(ctx context.Context, session string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	frame, err := s.frames.Capture(ctx)
	if err != nil {
		s.logger.Warn("frame capture failed", slog.Any("error", err))
		return false
	}

	scores, err := s.gateway.DetectEmotion(ctx, session, frame)
	if err != nil {
		s.logger.Warn("emotion detection failed", slog.Any("error", err))
		return false
	}

	s.mu.Lock()
	s.tally.Add(scores)
	s.mu.Unlock()
	return true
}

// resolve submits the tally. An empty answer falls back to the local argmax.
func (s *EmotionService) resolve(ctx context.Context, session string) (domain.Emotion, error) {
	s.mu.Lock()
	counts := s.tally.Counts()
	local, hasLocal := s.tally.Dominant()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	label, err := s.gateway.DominantEmotion(ctx, session, counts)
	if err != nil {
		return "", fmt.Errorf("failed to resolve dominant emotion: %w", err)
	}
	if label != "" {
		return domain.NormalizeEmotion(label), nil
	}
	if hasLocal {
		return local, nil
	}
	return "", domain.ErrNoEmotion
}

func (s *EmotionService) finish(windowID string, captures int, emotion domain.Emotion, err error) {
	s.mu.Lock()
	if s.windowID == windowID {
		s.windowID = ""
		s.cancel = nil
	}
	if err == nil {
		s.result = emotion
		s.genres = emotion.Genres()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("emotion sampling finished without result",
			slog.String("window_id", windowID),
			slog.Int("captures", captures),
			slog.Any("error", err))
	} else {
		s.logger.Info("emotion sampling finished",
			slog.String("window_id", windowID),
			slog.Int("captures", captures),
			slog.String("emotion", string(emotion)))
	}

	s.bus.Publish(domain.NewSamplingFinishedEvent(windowID, captures, emotion, err))
}

// Stop closes the current window early without submitting the tally.
func (s *EmotionService) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// Select sets the result by hand, as on the emotion selection page.
// An empty genre list selects the emotion's default genres.
func (s *EmotionService) Select(emotion domain.Emotion, genres []string) error {
	emotion = domain.NormalizeEmotion(string(emotion))
	if !slices.Contains(domain.SelectableEmotions, emotion) && !slices.Contains(domain.TallyCategories, emotion) {
		return domain.NewValidationError("emotion", emotion, "unknown emotion")
	}
	if len(genres) == 0 {
		genres = emotion.Genres()
	}

	s.mu.Lock()
	s.result = emotion
	s.genres = append([]string(nil), genres...)
	s.mu.Unlock()

	s.logger.Debug("emotion selected", slog.String("emotion", string(emotion)), slog.Any("genres", genres))
	return nil
}

// Result returns the last resolved or selected emotion and its genres.
func (s *EmotionService) Result() (domain.Emotion, []string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, append([]string(nil), s.genres...), s.result != ""
}

// Sampling reports whether a window is open.
func (s *EmotionService) Sampling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windowID != ""
}

// Tally returns a snapshot of the running tally.
func (s *EmotionService) Tally() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally.Counts()
}

// Shutdown stops sampling and releases the camera.
func (s *EmotionService) Shutdown() error {
	s.Stop()
	if s.frames != nil {
		return s.frames.Close()
	}
	return nil
}

// Verify that EmotionService implements the expected interface patterns
var _ interface {
	Start(string) (string, error)
	Stop()
	Select(domain.Emotion, []string) error
	Result() (domain.Emotion, []string, bool)
	Sampling() bool
	Shutdown() error
} = (*EmotionService)(nil)
