package fyne

import (
	"fmt"
	"strings"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/aura/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// QueueWindow shows the play queue with search and follows queue events.
// Double-clicking an entry makes it the current track.
type QueueWindow struct {
	window      fyneapp.Window
	app         fyneapp.App
	list        *widget.List
	searchEntry *widget.Entry

	// Data state, only touched on the UI goroutine
	data      []domain.Track // Filtered view (shown in the list)
	queue     []domain.Track // Full queue
	currentID string

	// Dependencies
	presenter     *Presenter
	eventBus      ports.EventBus
	subscriptions []domain.SubscriptionID

	// Lifecycle
	onWindowClosed func()
	isVisible      bool
}

// NewQueueWindow creates a new queue window.
// It initializes the UI, subscribes to events, and loads the current queue.
func NewQueueWindow(app fyneapp.App, presenter *Presenter, eventBus ports.EventBus) *QueueWindow {
	w := &QueueWindow{
		app:       app,
		presenter: presenter,
		eventBus:  eventBus,
	}

	w.window = app.NewWindow("Queue")
	w.window.Resize(fyneapp.NewSize(420, 560))

	w.buildUI()
	w.subscribeToEvents()

	w.window.SetOnClosed(func() {
		w.isVisible = false
		w.unsubscribeFromEvents()
		if w.onWindowClosed != nil {
			w.onWindowClosed()
		}
	})

	w.load(presenter.services.Queue.Snapshot())
	return w
}

// buildUI constructs the queue window layout.
func (w *QueueWindow) buildUI() {
	w.searchEntry = widget.NewEntry()
	w.searchEntry.SetPlaceHolder("Search...")
	w.searchEntry.OnChanged = func(query string) {
		w.applyFilter(query)
	}

	w.list = widget.NewList(
		func() int {
			return len(w.data)
		},
		func() fyneapp.CanvasObject {
			return widgets.NewTrackLabel(w.onCellDoubleTapped)
		},
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			w.updateCell(i, obj)
		},
	)

	shuffle := widget.NewButton("Shuffle", func() {
		w.presenter.OnShuffleClicked()
	})

	w.window.SetContent(container.NewBorder(w.searchEntry, shuffle, nil, nil, w.list))
}

// updateCell updates a list cell with track information.
func (w *QueueWindow) updateCell(i widget.ListItemID, obj fyneapp.CanvasObject) {
	label, ok := obj.(*widgets.TrackLabel)
	if !ok || i < 0 || i >= len(w.data) {
		return
	}
	track := w.data[i]
	label.TextStyle.Bold = track.ID == w.currentID
	label.Bind(track.ID, track.DisplayName())
}

// onCellDoubleTapped routes the selection through the presenter.
func (w *QueueWindow) onCellDoubleTapped(trackID string) {
	if w.presenter != nil {
		w.presenter.OnQueueTrackSelected(trackID)
	}
}

// subscribeToEvents subscribes to queue events.
func (w *QueueWindow) subscribeToEvents() {
	w.subscriptions = append(w.subscriptions,
		w.eventBus.Subscribe(domain.EventQueueChanged, w.onQueueChanged),
		w.eventBus.Subscribe(domain.EventCurrentTrackChanged, w.onCurrentTrackChanged),
	)
}

// unsubscribeFromEvents unsubscribes from all events.
func (w *QueueWindow) unsubscribeFromEvents() {
	for _, sub := range w.subscriptions {
		w.eventBus.Unsubscribe(sub)
	}
	w.subscriptions = nil
}

func (w *QueueWindow) onQueueChanged(event domain.Event) {
	e, ok := event.(domain.QueueChangedEvent)
	if !ok {
		return
	}
	fyneapp.Do(func() {
		w.load(e.Queue)
	})
}

func (w *QueueWindow) onCurrentTrackChanged(event domain.Event) {
	e, ok := event.(domain.CurrentTrackChangedEvent)
	if !ok {
		return
	}
	fyneapp.Do(func() {
		w.currentID = e.Track.ID
		w.list.Refresh()
		w.highlightCurrent()
	})
}

// load replaces the queue and re-applies the active search.
func (w *QueueWindow) load(queue domain.QueueSnapshot) {
	w.queue = queue.Tracks
	w.currentID = queue.CurrentID
	w.applyFilter(w.searchEntry.Text)
	w.highlightCurrent()
}

// applyFilter filters the queue by the search query.
func (w *QueueWindow) applyFilter(query string) {
	w.data = filterTracks(w.queue, query)
	w.window.SetTitle(fmt.Sprintf("Queue (%d items)", len(w.data)))
	w.list.Refresh()
}

// highlightCurrent selects the current track, or nothing when it is filtered out.
func (w *QueueWindow) highlightCurrent() {
	for i, t := range w.data {
		if t.ID == w.currentID {
			w.list.Select(i)
			w.list.ScrollTo(i)
			return
		}
	}
	w.list.UnselectAll()
}

// filterTracks returns the tracks whose title, artist or album contain query.
func filterTracks(tracks []domain.Track, query string) []domain.Track {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return tracks
	}
	filtered := make([]domain.Track, 0)
	for _, t := range tracks {
		for _, field := range []string{t.Title, t.Artist, t.Album} {
			if strings.Contains(strings.ToLower(field), query) {
				filtered = append(filtered, t)
				break
			}
		}
	}
	return filtered
}

// Show displays the queue window.
func (w *QueueWindow) Show() {
	w.isVisible = true
	w.window.Show()
}

// Close closes the queue window.
func (w *QueueWindow) Close() {
	w.isVisible = false
	w.unsubscribeFromEvents()
	w.window.Close()
}

// IsVisible returns whether the window is currently visible.
func (w *QueueWindow) IsVisible() bool {
	return w.isVisible
}

// SetOnWindowClosed sets a callback to be invoked when the window is closed.
func (w *QueueWindow) SetOnWindowClosed(callback func()) {
	w.onWindowClosed = callback
}
