package fyne

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/aura/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/service"
	"github.com/tejashwikalptaru/aura/res"
)

// Window defaults.
const (
	AppName      = "Aura"
	WindowWidth  = 960
	WindowHeight = 680

	songInfoWidth  = 48
	scrollInterval = 300 * time.Millisecond
	trackLinkBase  = "https://open.spotify.com/track/"
)

// MainWindow is the main UI window implementing the UIView interface.
// It handles all UI rendering and user interactions.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// UIView methods may be called from any goroutine; they hop onto the UI
// goroutine with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger

	// Page area
	pages      *fyneapp.Container
	banner     *fyneapp.Container
	bannerText *widget.Label
	retry      *widget.Button
	dismiss    *widget.Button

	// Player bar
	prevButton     *widget.Button
	playButton     *widget.Button
	nextButton     *widget.Button
	shuffleButton  *widget.Button
	lyricsButton   *widget.Button
	queueButton    *widget.Button
	songInfo       *widget.Label
	stateLabel     *widget.Label
	currentTime    *widget.Label
	endTime        *widget.Label
	progressSlider *widget.Slider
	volumeSlider   *widget.Slider

	// Welcome page
	greeting *widget.Label

	// Player page
	playerPage fyneapp.CanvasObject
	albumArt   *fyneapp.Container
	lyricsText *widget.Label
	lyrics     *container.Scroll

	// Emotion detection page
	detectPage      fyneapp.CanvasObject
	detectStatus    *widget.Label
	detectGenres    *widget.Label
	detectProgress  *widget.ProgressBarInfinite
	startButton     *widget.Button
	stopButton      *widget.Button
	recommendButton *widget.Button

	// State, only touched on the UI goroutine
	currentTrack domain.Track
	rotator      *widgets.Rotator
	stopScroll   chan struct{}
	queueWindow  *QueueWindow

	// Lifecycle management
	closeOnce     sync.Once
	onBeforeClose func()

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window.
func NewMainWindow(app fyneapp.App, logger *slog.Logger) *MainWindow {
	w := &MainWindow{
		app:        app,
		logger:     logger,
		rotator:    widgets.NewRotator(AppName, songInfoWidth),
		stopScroll: make(chan struct{}),
	}

	w.window = app.NewWindow(AppName)
	w.buildUI()
	w.window.Resize(fyneapp.NewSize(WindowWidth, WindowHeight))
	w.window.SetCloseIntercept(func() {
		if w.onBeforeClose != nil {
			w.onBeforeClose()
		}
		w.window.Close()
	})

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// SetOnBeforeClose registers a callback run before the window closes.
func (w *MainWindow) SetOnBeforeClose(callback func()) {
	w.onBeforeClose = callback
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	// Banner
	w.bannerText = widget.NewLabel("")
	w.bannerText.Wrapping = fyneapp.TextWrapWord
	w.retry = widget.NewButtonWithIcon("Retry", theme.ViewRefreshIcon(), nil)
	w.dismiss = widget.NewButtonWithIcon("", theme.CancelIcon(), func() { w.banner.Hide() })
	w.banner = container.NewBorder(nil, nil, widget.NewIcon(theme.ErrorIcon()), container.NewHBox(w.retry, w.dismiss), w.bannerText)
	w.banner.Hide()

	// Control buttons
	w.prevButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.nextButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), nil)
	w.shuffleButton = widget.NewButtonWithIcon("", theme.MediaReplayIcon(), nil)
	w.lyricsButton = widget.NewButtonWithIcon("Lyrics", theme.DocumentIcon(), nil)
	w.queueButton = widget.NewButtonWithIcon("Queue", theme.ListIcon(), nil)

	// Song info label
	w.songInfo = widget.NewLabel(AppName)
	w.songInfo.Truncation = fyneapp.TextTruncateClip
	w.songInfo.TextStyle = fyneapp.TextStyle{Bold: true, Italic: true}
	w.stateLabel = widget.NewLabel(domain.PlayerIdle.String())

	// Volume slider
	w.volumeSlider = widget.NewSlider(0, 100)
	volIcon := canvas.NewImageFromResource(theme.VolumeUpIcon())
	volIcon.SetMinSize(fyneapp.NewSquareSize(20))
	volumeHolder := container.NewBorder(nil, nil, volIcon, nil, container.NewGridWrap(fyneapp.NewSize(120, 36), w.volumeSlider))

	buttons := container.NewHBox(w.prevButton, w.playButton, w.nextButton, w.shuffleButton, w.lyricsButton, w.queueButton)
	buttonsHolder := container.NewBorder(nil, nil, buttons, container.NewHBox(w.stateLabel, volumeHolder), w.songInfo)

	// Progress slider
	w.progressSlider = widget.NewSlider(0, 1)
	w.currentTime = widget.NewLabel(formatClock(0))
	w.endTime = widget.NewLabel(formatClock(0))
	sliderHolder := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.progressSlider)

	controls := container.NewVBox(widget.NewSeparator(), sliderHolder, buttonsHolder)

	w.buildPlayerPage()
	w.buildDetectPage()

	w.pages = container.NewStack(w.welcomePage())
	top := container.NewVBox(w.navigationBar(), w.banner)
	w.window.SetContent(container.NewPadded(container.NewBorder(top, controls, nil, nil, w.pages)))

	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

func (w *MainWindow) navigationBar() fyneapp.CanvasObject {
	nav := func(label string, icon fyneapp.Resource, page domain.Page) *widget.Button {
		return widget.NewButtonWithIcon(label, icon, func() {
			if w.presenter != nil {
				w.presenter.OnNavigate(page)
			}
		})
	}
	return container.NewHBox(
		nav("Home", theme.HomeIcon(), domain.PageHome),
		nav("Profile", theme.AccountIcon(), domain.PageProfile),
		nav("Library", theme.StorageIcon(), domain.PageLibrary),
		nav("Detect Emotion", theme.MediaPhotoIcon(), domain.PageDetectEmotion),
		nav("Pick a Mood", theme.ListIcon(), domain.PageSelectEmotion),
		nav("Player", theme.MediaMusicIcon(), domain.PageMediaPlayer),
		nav("About", theme.InfoIcon(), domain.PageAbout),
	)
}

func (w *MainWindow) welcomePage() fyneapp.CanvasObject {
	title := widget.NewLabelWithStyle("Welcome to "+AppName, fyneapp.TextAlignCenter, fyneapp.TextStyle{Bold: true})
	w.greeting = widget.NewLabelWithStyle("", fyneapp.TextAlignCenter, fyneapp.TextStyle{Italic: true})
	login := widget.NewButtonWithIcon("Log in with Spotify", theme.LoginIcon(), func() {
		if w.presenter != nil {
			w.presenter.OnLoginClicked()
		}
	})
	open := widget.NewButtonWithIcon("Open Link", theme.FolderOpenIcon(), w.handleOpenLink)
	return container.NewCenter(container.NewVBox(title, w.greeting, login, open))
}

func (w *MainWindow) buildPlayerPage() {
	w.albumArt = container.NewStack(remoteImage("", 320))
	art := widgets.NewTappableStack(w.albumArt, func(pe *fyneapp.PointEvent) {
		w.showAlbumArtMenu(pe.AbsolutePosition)
	})

	w.lyricsText = widget.NewLabel("")
	w.lyricsText.Wrapping = fyneapp.TextWrapWord
	w.lyrics = container.NewVScroll(w.lyricsText)
	w.lyrics.Hide()

	w.playerPage = container.NewHSplit(container.NewCenter(art), w.lyrics)
}

func (w *MainWindow) buildDetectPage() {
	w.detectStatus = widget.NewLabelWithStyle("Look at the camera and press Start.", fyneapp.TextAlignCenter, fyneapp.TextStyle{Bold: true})
	w.detectGenres = widget.NewLabel("")
	w.detectGenres.Alignment = fyneapp.TextAlignCenter
	w.detectProgress = widget.NewProgressBarInfinite()
	w.detectProgress.Stop()
	w.detectProgress.Hide()

	w.startButton = widget.NewButtonWithIcon("Start", theme.MediaRecordIcon(), nil)
	w.stopButton = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), nil)
	w.stopButton.Disable()
	w.recommendButton = widget.NewButtonWithIcon("Get Recommendations", theme.MediaMusicIcon(), nil)
	w.recommendButton.Disable()
	manual := widget.NewButton("Pick a mood instead", func() {
		if w.presenter != nil {
			w.presenter.OnNavigate(domain.PageSelectEmotion)
		}
	})

	w.detectPage = container.NewCenter(container.NewVBox(
		w.detectStatus,
		w.detectGenres,
		w.detectProgress,
		container.NewHBox(w.startButton, w.stopButton, w.recommendButton),
		manual,
	))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.playButton.OnTapped = w.presenter.OnPlayClicked
	w.nextButton.OnTapped = w.presenter.OnNextClicked
	w.prevButton.OnTapped = w.presenter.OnPreviousClicked
	w.shuffleButton.OnTapped = w.presenter.OnShuffleClicked
	w.lyricsButton.OnTapped = w.presenter.OnLyricsToggled
	w.queueButton.OnTapped = w.showQueueWindow
	w.retry.OnTapped = w.presenter.OnRetryClicked

	w.startButton.OnTapped = w.presenter.OnStartDetection
	w.stopButton.OnTapped = w.presenter.OnStopDetection
	w.recommendButton.OnTapped = w.presenter.OnRecommendClicked

	// Only committed drags reach the device.
	w.volumeSlider.OnChangeEnded = w.presenter.OnVolumeChanged
	w.progressSlider.OnChangeEnded = w.presenter.OnSeekRequested
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	separator := fyneapp.NewMenuItemSeparator()

	openLink := fyneapp.NewMenuItem("Open Link...", w.handleOpenLink)
	viewQueue := fyneapp.NewMenuItem("View Queue", w.showQueueWindow)
	logout := fyneapp.NewMenuItem("Log Out", func() {
		if w.presenter != nil {
			w.presenter.OnLogoutClicked()
		}
	})
	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		w.window.Close()
	})

	return []*fyneapp.Menu{
		fyneapp.NewMenu("File", openLink, viewQueue, separator, logout, separator, exitMenu),
	}
}

// handleOpenLink asks for a location and opens it.
func (w *MainWindow) handleOpenLink() {
	if w.presenter == nil {
		return
	}
	NewLocationDialog(w.window, func(raw string) {
		_ = w.presenter.OpenLocation(raw)
	}, w.logger).Show()
}

func (w *MainWindow) showQueueWindow() {
	if w.presenter == nil {
		return
	}
	if w.queueWindow != nil && w.queueWindow.IsVisible() {
		w.queueWindow.window.RequestFocus()
		return
	}
	w.queueWindow = NewQueueWindow(w.app, w.presenter, w.presenter.EventBus)
	w.queueWindow.SetOnWindowClosed(func() { w.queueWindow = nil })
	w.queueWindow.Show()
}

func (w *MainWindow) showAlbumArtMenu(pos fyneapp.Position) {
	trackID := w.currentTrack.ID
	if trackID == "" {
		return
	}
	menu := fyneapp.NewMenu("",
		fyneapp.NewMenuItem("Copy Track Link", func() {
			w.app.Clipboard().SetContent(trackLinkBase + trackID)
		}),
		fyneapp.NewMenuItem("Open in Spotify", func() {
			w.OpenURL(trackLinkBase + trackID)
		}),
		fyneapp.NewMenuItem("View Queue", w.showQueueWindow),
	)
	widget.ShowPopUpMenuAtPosition(menu, w.window.Canvas(), pos)
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	step := func(delta float64) func(fyneapp.Shortcut) {
		return func(fyneapp.Shortcut) {
			vol := min(max(w.volumeSlider.Value+delta, 0), 100)
			w.volumeSlider.SetValue(vol)
			w.presenter.OnVolumeChanged(vol)
		}
	}
	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyUp,
		Modifier: fyneapp.KeyModifierAlt,
	}, step(5))
	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyDown,
		Modifier: fyneapp.KeyModifierAlt,
	}, step(-5))
	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeySpace,
		Modifier: fyneapp.KeyModifierShortcutDefault,
	}, func(fyneapp.Shortcut) { w.presenter.OnPlayClicked() })
}

// startScrollInfoRoutine scrolls long song titles until the window closes.
func (w *MainWindow) startScrollInfoRoutine() {
	go func() {
		ticker := time.NewTicker(scrollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stopScroll:
				return
			case <-ticker.C:
				fyneapp.Do(func() {
					if w.rotator.Scrolls() {
						w.songInfo.SetText(w.rotator.Rotate())
					}
				})
			}
		}
	}()
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.startScrollInfoRoutine()
	w.window.ShowAndRun()
}

// Close closes the window and stops the scrolling animation.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		close(w.stopScroll)
		fyneapp.Do(func() {
			if w.queueWindow != nil {
				w.queueWindow.Close()
			}
			w.window.Close()
		})
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

func (w *MainWindow) setPage(page fyneapp.CanvasObject) {
	w.pages.Objects = []fyneapp.CanvasObject{page}
	w.pages.Refresh()
}

// UIView interface implementation

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	fyneapp.Do(func() {
		if playing {
			w.playButton.SetIcon(theme.MediaPauseIcon())
		} else {
			w.playButton.SetIcon(theme.MediaPlayIcon())
		}
	})
}

// SetVolume updates the volume slider.
func (w *MainWindow) SetVolume(volume float64) {
	fyneapp.Do(func() {
		// Convert from 0.0-1.0 to 0-100
		w.volumeSlider.Value = volume * 100.0
		w.volumeSlider.Refresh()
	})
}

// SetTrackInfo updates the displayed track information.
func (w *MainWindow) SetTrackInfo(track domain.Track) {
	fyneapp.Do(func() {
		w.currentTrack = track
		w.rotator = widgets.NewRotator(track.DisplayName(), songInfoWidth)
		w.songInfo.SetText(w.rotator.Frame())
		w.endTime.SetText(formatClock(track.Duration))
		w.window.SetTitle(fmt.Sprintf("%s - %s", AppName, track.DisplayName()))
		w.albumArt.Objects = []fyneapp.CanvasObject{remoteImage(track.AlbumArt, 320)}
		w.albumArt.Refresh()
	})
}

// ClearTrackInfo resets the player bar.
func (w *MainWindow) ClearTrackInfo() {
	fyneapp.Do(func() {
		w.currentTrack = domain.Track{}
		w.rotator = widgets.NewRotator(AppName, songInfoWidth)
		w.songInfo.SetText(AppName)
		w.window.SetTitle(AppName)
		w.currentTime.SetText(formatClock(0))
		w.endTime.SetText(formatClock(0))
		w.progressSlider.Value = 0
		w.progressSlider.Refresh()
		w.albumArt.Objects = []fyneapp.CanvasObject{remoteImage("", 320)}
		w.albumArt.Refresh()
	})
}

// SetProgress updates the progress slider and the time labels.
func (w *MainWindow) SetProgress(position, duration time.Duration) {
	fyneapp.Do(func() {
		w.currentTime.SetText(formatClock(position))
		w.endTime.SetText(formatClock(duration))
		if duration > 0 {
			w.progressSlider.Max = duration.Seconds()
			w.progressSlider.Value = min(position.Seconds(), w.progressSlider.Max)
			w.progressSlider.Refresh()
		}
	})
}

// SetPlayerState shows the device lifecycle state.
func (w *MainWindow) SetPlayerState(state domain.PlayerState, message string) {
	fyneapp.Do(func() {
		text := state.String()
		if state == domain.PlayerError && message != "" {
			text += ": " + message
		}
		w.stateLabel.SetText(text)
	})
}

// SetLyrics shows the lyrics of the current track.
func (w *MainWindow) SetLyrics(lyrics domain.Lyrics) {
	fyneapp.Do(func() {
		if !lyrics.Found {
			w.lyricsText.SetText("Lyrics not available.")
		} else {
			w.lyricsText.SetText(lyrics.Text)
		}
		w.lyrics.ScrollToTop()
	})
}

// SetLyricsVisible shows or hides the lyrics panel.
func (w *MainWindow) SetLyricsVisible(visible bool) {
	fyneapp.Do(func() {
		if visible {
			w.lyrics.Show()
			w.lyricsButton.Importance = widget.HighImportance
		} else {
			w.lyrics.Hide()
			w.lyricsButton.Importance = widget.MediumImportance
		}
		w.lyricsButton.Refresh()
	})
}

// SetQueue updates the queue button.
func (w *MainWindow) SetQueue(queue domain.QueueSnapshot) {
	fyneapp.Do(func() {
		label := "Queue"
		if n := len(queue.Tracks); n > 0 {
			label = fmt.Sprintf("Queue (%d)", n)
		}
		w.queueButton.SetText(label)
	})
}

// SetGreeting shows the backend greeting on the welcome page.
func (w *MainWindow) SetGreeting(message string) {
	fyneapp.Do(func() {
		w.greeting.SetText(message)
	})
}

// ShowHome shows the profile and the library.
func (w *MainWindow) ShowHome(page service.HomePage) {
	fyneapp.Do(func() {
		w.setPage(container.NewBorder(w.profileCard(page.Profile), nil, nil, nil, w.libraryTabs(page.Library)))
	})
}

// ShowProfile shows the profile page.
func (w *MainWindow) ShowProfile(profile domain.Profile) {
	fyneapp.Do(func() {
		names := profile.Playlists
		playlists := widget.NewList(
			func() int { return len(names) },
			func() fyneapp.CanvasObject { return widget.NewLabel("") },
			func(i widget.ListItemID, obj fyneapp.CanvasObject) {
				obj.(*widget.Label).SetText(names[i])
			},
		)
		header := widget.NewLabelWithStyle("Playlists", fyneapp.TextAlignLeading, fyneapp.TextStyle{Bold: true})
		w.setPage(container.NewBorder(container.NewVBox(w.profileCard(profile), header), nil, nil, nil, playlists))
	})
}

// ShowLibrary shows the recently played tracks and the playlists.
func (w *MainWindow) ShowLibrary(library domain.Library) {
	fyneapp.Do(func() {
		title := widget.NewLabelWithStyle("Your Library", fyneapp.TextAlignLeading, fyneapp.TextStyle{Bold: true})
		w.setPage(container.NewBorder(title, nil, nil, nil, w.libraryTabs(library)))
	})
}

func (w *MainWindow) profileCard(profile domain.Profile) fyneapp.CanvasObject {
	header := widget.NewLabelWithStyle("Welcome, "+profile.DisplayName, fyneapp.TextAlignLeading, fyneapp.TextStyle{Bold: true})
	details := widget.NewForm(
		widget.NewFormItem("Email", widget.NewLabel(profile.Email)),
		widget.NewFormItem("Followers", widget.NewLabel(strconv.Itoa(profile.Followers))),
		widget.NewFormItem("Top artists", wrapped(strings.Join(profile.TopArtists, ", "))),
	)
	return container.NewBorder(nil, nil, remoteImage(profile.ProfilePicture, 96), nil, container.NewVBox(header, details))
}

func (w *MainWindow) libraryTabs(library domain.Library) fyneapp.CanvasObject {
	return container.NewAppTabs(
		container.NewTabItem("Recently Played", w.recentList(library.RecentlyPlayed)),
		container.NewTabItem("Playlists", w.playlistList(library.Playlists)),
	)
}

func (w *MainWindow) recentList(tracks []domain.RecentTrack) fyneapp.CanvasObject {
	list := widget.NewList(
		func() int { return len(tracks) },
		func() fyneapp.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			t := tracks[i]
			obj.(*widget.Label).SetText(domain.Track{Title: t.Name, Artist: t.Artist, ID: t.ID}.DisplayName())
		},
	)
	list.OnSelected = func(i widget.ListItemID) {
		list.UnselectAll()
		w.presenter.OnPlayTrack(tracks[i].ID)
	}
	return list
}

func (w *MainWindow) playlistList(playlists []domain.PlaylistSummary) fyneapp.CanvasObject {
	list := widget.NewList(
		func() int { return len(playlists) },
		func() fyneapp.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			obj.(*widget.Label).SetText(playlists[i].Name)
		},
	)
	list.OnSelected = func(i widget.ListItemID) {
		list.UnselectAll()
		w.presenter.OnPlaylistSelected(playlists[i].ID)
	}
	return list
}

// ShowPlaylist shows a playlist and its songs.
func (w *MainWindow) ShowPlaylist(playlist domain.Playlist) {
	fyneapp.Do(func() {
		songs := playlist.Songs
		list := widget.NewList(
			func() int { return len(songs) },
			func() fyneapp.CanvasObject {
				return widgets.NewTrackLabel(func(trackID string) {
					w.presenter.OnPlayPlaylist(playlist.ID, trackID)
				})
			},
			func(i widget.ListItemID, obj fyneapp.CanvasObject) {
				obj.(*widgets.TrackLabel).Bind(songs[i].ID, songs[i].DisplayName())
			},
		)
		playAll := widget.NewButtonWithIcon("Play All", theme.MediaPlayIcon(), func() {
			w.presenter.OnPlayPlaylist(playlist.ID, "")
		})
		title := widget.NewLabelWithStyle(playlist.Name, fyneapp.TextAlignLeading, fyneapp.TextStyle{Bold: true})
		header := container.NewBorder(nil, nil, remoteImage(playlist.ImageURL, 64), playAll,
			container.NewVBox(title, widget.NewLabel(fmt.Sprintf("%d songs", len(songs)))))
		w.setPage(container.NewBorder(header, nil, nil, nil, list))
	})
}

// ShowPlayer shows the now playing page.
func (w *MainWindow) ShowPlayer() {
	fyneapp.Do(func() {
		w.setPage(w.playerPage)
	})
}

// ShowEmotionDetection shows the camera sampling page.
func (w *MainWindow) ShowEmotionDetection() {
	fyneapp.Do(func() {
		w.setPage(w.detectPage)
	})
}

// SetSampling reflects whether a sampling window is open.
func (w *MainWindow) SetSampling(active bool, window time.Duration) {
	fyneapp.Do(func() {
		if active {
			w.detectStatus.SetText(fmt.Sprintf("Reading your expression for %s...", window.Round(time.Second)))
			w.detectGenres.SetText("")
			w.detectProgress.Show()
			w.detectProgress.Start()
			w.startButton.Disable()
			w.stopButton.Enable()
			w.recommendButton.Disable()
			return
		}
		w.detectProgress.Stop()
		w.detectProgress.Hide()
		w.startButton.Enable()
		w.stopButton.Disable()
	})
}

// ShowEmotionResult shows the detected emotion and its genres.
func (w *MainWindow) ShowEmotionResult(emotion domain.Emotion, genres []string) {
	fyneapp.Do(func() {
		w.detectStatus.SetText(emotion.Sentence())
		w.detectGenres.SetText(strings.Join(genres, ", "))
		w.recommendButton.Enable()
	})
}

// ShowEmotionSelection shows the manual mood picker.
func (w *MainWindow) ShowEmotionSelection(emotions []domain.Emotion, genres []string) {
	fyneapp.Do(func() {
		byName := make(map[string]domain.Emotion, len(emotions))
		names := make([]string, 0, len(emotions))
		for _, e := range emotions {
			byName[e.Display()] = e
			names = append(names, e.Display())
		}
		mood := widget.NewRadioGroup(names, nil)
		mood.Horizontal = true
		picked := widget.NewCheckGroup(genres, nil)
		picked.Horizontal = true

		submit := widget.NewButtonWithIcon("Recommend", theme.MediaMusicIcon(), func() {
			emotion, ok := byName[mood.Selected]
			if !ok {
				w.ShowBanner("Pick a mood first.", false)
				return
			}
			w.presenter.OnEmotionSelected(emotion, picked.Selected)
		})
		w.setPage(container.NewCenter(container.NewVBox(
			widget.NewLabelWithStyle("How are you feeling?", fyneapp.TextAlignCenter, fyneapp.TextStyle{Bold: true}),
			mood,
			widget.NewLabel("Genres (leave empty for the mood's defaults)"),
			picked,
			submit,
		)))
	})
}

// ShowRecommendations shows a recommendation list and its playlist actions.
func (w *MainWindow) ShowRecommendations(rec domain.Recommendation, moodChanger bool) {
	fyneapp.Do(func() {
		songs := rec.Songs
		list := widget.NewList(
			func() int { return len(songs) },
			func() fyneapp.CanvasObject { return widgets.NewTrackLabel(w.presenter.OnPlayTrack) },
			func(i widget.ListItemID, obj fyneapp.CanvasObject) {
				s := songs[i]
				obj.(*widgets.TrackLabel).Bind(s.TrackID, domain.Track{ID: s.TrackID, Title: s.Name, Artist: s.Artist}.DisplayName())
			},
		)

		title := widget.NewLabelWithStyle(fmt.Sprintf("Songs for a %s mood", strings.ToLower(rec.Emotion.Display())),
			fyneapp.TextAlignLeading, fyneapp.TextStyle{Bold: true})
		actions := container.NewHBox(
			widget.NewButtonWithIcon("Go Again", theme.ViewRefreshIcon(), w.presenter.OnGoAgainClicked),
			widget.NewButtonWithIcon("Save as Playlist", theme.DocumentSaveIcon(), func() {
				NewPlaylistNameDialog(w.window, "Save as Playlist", w.presenter.OnCreatePlaylist).Show()
			}),
		)
		if moodChanger {
			actions.Add(widget.NewButtonWithIcon("Mood Changer", theme.MediaFastForwardIcon(), func() {
				NewPlaylistNameDialog(w.window, "Create Mood Changer", w.presenter.OnCreateMoodChanger).Show()
			}))
		}
		header := container.NewVBox(title, widget.NewLabel(strings.Join(rec.Genres, ", ")), actions)
		w.setPage(container.NewBorder(header, nil, nil, nil, list))
	})
}

// ShowAbout shows the about page.
func (w *MainWindow) ShowAbout() {
	fyneapp.Do(func() {
		about := widget.NewRichTextFromMarkdown("# " + AppName + "\n\n" + res.AboutContent)
		about.Wrapping = fyneapp.TextWrapWord
		w.setPage(container.NewVScroll(about))
	})
}

// ShowBanner shows an error above the page. Persistent banners offer Retry.
func (w *MainWindow) ShowBanner(message string, persistent bool) {
	fyneapp.Do(func() {
		w.bannerText.SetText(message)
		if persistent {
			w.retry.Show()
			w.dismiss.Hide()
		} else {
			w.retry.Hide()
			w.dismiss.Show()
		}
		w.banner.Show()
	})
}

// ClearBanner hides the banner.
func (w *MainWindow) ClearBanner() {
	fyneapp.Do(func() {
		w.banner.Hide()
	})
}

// ShowSessionError replaces the page with a log in prompt.
func (w *MainWindow) ShowSessionError(message, loginURL string) {
	fyneapp.Do(func() {
		login := widget.NewButtonWithIcon("Log in with Spotify", theme.LoginIcon(), func() {
			w.OpenURL(loginURL)
		})
		open := widget.NewButtonWithIcon("Open Link", theme.FolderOpenIcon(), w.handleOpenLink)
		w.setPage(container.NewCenter(container.NewVBox(
			widget.NewLabelWithStyle(message, fyneapp.TextAlignCenter, fyneapp.TextStyle{Bold: true}),
			login,
			open,
		)))
	})
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// OpenURL opens rawURL in the default browser.
func (w *MainWindow) OpenURL(rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		w.logger.Error("invalid url", slog.String("url", rawURL), slog.Any("error", err))
		return
	}
	if err := w.app.OpenURL(u); err != nil {
		w.logger.Error("failed to open url", slog.Any("error", err))
	}
}

// remoteImage loads rawURL, falling back to a music icon.
func remoteImage(rawURL string, size float32) *canvas.Image {
	var img *canvas.Image
	if uri, err := storage.ParseURI(rawURL); rawURL != "" && err == nil {
		img = canvas.NewImageFromURI(uri)
	} else {
		img = canvas.NewImageFromResource(theme.MediaMusicIcon())
	}
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyneapp.NewSquareSize(size))
	return img
}

func wrapped(text string) *widget.Label {
	l := widget.NewLabel(text)
	l.Wrapping = fyneapp.TextWrapWord
	return l
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
