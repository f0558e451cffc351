// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/aura/internal/adapter/camera"
	"github.com/tejashwikalptaru/aura/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/aura/internal/adapter/gateway"
	"github.com/tejashwikalptaru/aura/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/aura/internal/adapter/repository/sqlite"
	fyneui "github.com/tejashwikalptaru/aura/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/aura/internal/adapter/vendors/mock"
	"github.com/tejashwikalptaru/aura/internal/adapter/vendors/spotify"
	"github.com/tejashwikalptaru/aura/internal/logger"
	"github.com/tejashwikalptaru/aura/internal/ports"
	"github.com/tejashwikalptaru/aura/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	config Config

	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus *eventbus.SyncEventBus
	gateway  *gateway.Client
	device   ports.PlayerDevice
	frames   ports.FrameSource

	// Repositories
	sessionStore    ports.SessionStore
	preferencesRepo ports.PreferencesRepository

	// Services
	playbackService       *service.PlaybackService
	queueService          *service.QueueService
	lyricsService         *service.LyricsService
	emotionService        *service.EmotionService
	recommendationService *service.RecommendationService
	libraryService        *service.LibraryService
	preferenceService     *service.PreferenceService

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// BackendURL is the root of the Aura backend
	BackendURL string

	// LegacyRecommend selects the older recommendation endpoint
	LegacyRecommend bool

	// DeviceName is the Spotify Connect device playback is sent to
	DeviceName string

	// StartLocation is opened on startup instead of the last visited location
	StartLocation string

	// SessionDB is the SQLite file of the per-session cache (empty keeps it in memory for the process lifetime)
	SessionDB string

	// FramesDir is the directory camera frames are read from (empty disables detection)
	FramesDir string

	// Offline replaces the Spotify device with an in-process mock
	Offline bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// Environment variables read by DefaultConfig.
const (
	EnvBackendURL      = "AURA_BACKEND_URL"
	EnvLegacyRecommend = "AURA_LEGACY_RECOMMEND"
	EnvDeviceName      = "AURA_DEVICE_NAME"
	EnvLocation        = "AURA_LOCATION"
	EnvSessionDB       = "AURA_SESSION_DB"
	EnvFramesDir       = "AURA_FRAMES_DIR"
	EnvOffline         = "AURA_OFFLINE"
)

// DefaultConfig returns the application configuration, taking overrides from the environment.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:           "com.aura.app",
		AppName:         "Aura",
		BackendURL:      envOr(EnvBackendURL, gateway.DefaultBaseURL),
		LegacyRecommend: envBool(EnvLegacyRecommend),
		DeviceName:      envOr(EnvDeviceName, service.DefaultPlaybackConfig().DeviceName),
		StartLocation:   os.Getenv(EnvLocation),
		SessionDB:       os.Getenv(EnvSessionDB),
		FramesDir:       os.Getenv(EnvFramesDir),
		Offline:         envBool(EnvOffline),
		LogLevel:        loggerCfg.Level,
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	app := &Application{config: config}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 1.5: Create logger
	loggerCfg := logger.DefaultConfig()
	loggerCfg.Level = config.LogLevel
	app.logger = logger.NewLogger(loggerCfg)
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("version", GetVersionInfo().FullString()),
		slog.String("backend", config.BackendURL))

	// Step 2: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(app.logger.With(slog.String("component", "eventbus")))

	// Step 3: Create the backend gateway and the playback device
	app.gateway = gateway.NewClient(config.BackendURL,
		gateway.WithLogger(app.logger.With(slog.String("component", "gateway"))),
		gateway.WithLegacyRecommend(config.LegacyRecommend),
	)

	var transports ports.TransportFactory
	if config.Offline {
		app.device = mock.NewDevice(app.logger.With(slog.String("device", "mock")), true)
		transports = mock.NewRecorder().Factory()
	} else {
		vendorLogger := app.logger.With(slog.String("device", "spotify"))
		app.device = spotify.NewDevice(spotify.DefaultDeviceConfig(), spotify.WithLogger(vendorLogger))
		transports = spotify.Factory(spotify.WithLogger(vendorLogger))
	}

	// Step 4: Create repositories
	prefs := app.fyneApp.Preferences()
	app.preferencesRepo = memory.NewPreferencesRepository(prefs)
	if config.SessionDB != "" {
		store, err := sqlite.NewSessionStore(config.SessionDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		app.sessionStore = store
	} else {
		app.sessionStore = memory.NewSessionStore()
	}

	// Frames are optional; manual mood selection works without them.
	if config.FramesDir != "" {
		frames, err := camera.NewDirectorySource(app.logger.With(slog.String("component", "camera")), config.FramesDir)
		if err != nil {
			app.logger.Warn("emotion detection disabled", slog.Any("error", err))
		} else {
			app.frames = frames
		}
	}

	// Step 5: Create services (with dependency injection)
	playbackCfg := service.DefaultPlaybackConfig()
	playbackCfg.DeviceName = config.DeviceName
	app.playbackService = service.NewPlaybackService(
		app.logger.With(slog.String("service", "playback")),
		app.device,
		transports,
		app.eventBus,
		playbackCfg,
	)

	app.queueService = service.NewQueueService(
		app.logger.With(slog.String("service", "queue")),
		app.playbackService,
		app.eventBus,
	)

	app.lyricsService = service.NewLyricsService(
		app.logger.With(slog.String("service", "lyrics")),
		app.gateway,
		app.eventBus,
	)

	app.emotionService = service.NewEmotionService(
		app.logger.With(slog.String("service", "emotion")),
		app.gateway,
		app.frames,
		app.eventBus,
		service.DefaultEmotionConfig(),
	)

	app.recommendationService = service.NewRecommendationService(
		app.logger.With(slog.String("service", "recommendation")),
		app.gateway,
		app.sessionStore,
		app.eventBus,
	)

	app.libraryService = service.NewLibraryService(
		app.logger.With(slog.String("service", "library")),
		app.gateway,
		app.queueService,
		app.sessionStore,
	)

	app.preferenceService = service.NewPreferenceService(
		app.logger.With(slog.String("service", "preference")),
		app.preferencesRepo,
		app.eventBus,
	)

	// Step 6: Load saved state
	app.loadSavedState()

	// Step 7: Create UI
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, app.logger.With(slog.String("component", "window")))

	// Step 8: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		fyneui.Services{
			Playback:        app.playbackService,
			Queue:           app.queueService,
			Lyrics:          app.lyricsService,
			Emotion:         app.emotionService,
			Recommendations: app.recommendationService,
			Library:         app.libraryService,
			Preferences:     app.preferenceService,
		},
		app.eventBus,
		app.mainWindow,
	)

	// Connect presenter to the main window
	app.mainWindow.SetPresenter(app.presenter)

	// Stop sampling before the window goes away; a running window would keep uploading frames.
	app.mainWindow.SetOnBeforeClose(app.emotionService.Stop)

	return app, nil
}

// loadSavedState restores the volume of the previous session.
func (a *Application) loadSavedState() {
	if err := a.playbackService.SetVolume(a.preferenceService.GetVolume()); err != nil {
		a.logger.Warn("failed to restore volume", slog.Any("error", err))
	}
}

// startLocation returns the location opened on startup.
func (a *Application) startLocation() string {
	if a.config.StartLocation != "" {
		return a.config.StartLocation
	}
	return a.preferenceService.GetLastLocation()
}

// Open shows the location raw points at.
func (a *Application) Open(raw string) error {
	return a.presenter.OpenLocation(raw)
}

// Run starts the application. It blocks until the window is closed.
func (a *Application) Run() error {
	a.logger.Info("Aura started")

	if loc := a.startLocation(); loc != "" {
		if err := a.Open(loc); err != nil {
			a.logger.Warn("failed to open start location", slog.Any("error", err))
		}
	}

	a.mainWindow.ShowAndRun()
	return nil
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	var errs []error
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		// Shutdown UI and presenter
		if a.presenter != nil {
			a.presenter.Shutdown()
		}
		if a.mainWindow != nil {
			a.mainWindow.Close()
		}

		// Shutdown services (in reverse order of creation)
		closers := []struct {
			name string
			fn   func() error
		}{
			{"preference service", a.preferenceService.Shutdown},
			{"emotion service", a.emotionService.Shutdown},
			{"queue service", a.queueService.Shutdown},
			{"playback service", a.playbackService.Shutdown},
			{"session store", a.sessionStore.Close},
			{"event bus", a.eventBus.Close},
		}
		if a.frames != nil {
			closers = append(closers, struct {
				name string
				fn   func() error
			}{"camera", a.frames.Close})
		}
		for _, c := range closers {
			if err := c.fn(); err != nil {
				a.logger.Warn("failed to shutdown "+c.name, slog.Any("error", err))
				errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			}
		}

		a.logger.Info("application shutdown complete")
	})
	return errors.Join(errs...)
}

// GetServices returns the services (for testing).
func (a *Application) GetServices() (*service.PlaybackService, *service.QueueService, *service.LibraryService, *service.PreferenceService) {
	return a.playbackService, a.queueService, a.libraryService, a.preferenceService
}

// GetEventBus returns the event bus (for testing).
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne application (for testing).
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}
