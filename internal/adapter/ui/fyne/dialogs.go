package fyne

import (
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/aura/internal/domain"
)

// LocationDialog asks for an aura:// link or a backend redirect URL, typically
// the one the browser lands on after login.
type LocationDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewLocationDialog creates a new location dialog.
func NewLocationDialog(window fyne.Window, callback func(string), logger *slog.Logger) *LocationDialog {
	return &LocationDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the dialog.
func (d *LocationDialog) Show() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("aura://home?session=...")
	entry.Validator = func(s string) error {
		_, err := domain.ParseLocation(s)
		return err
	}

	items := []*widget.FormItem{widget.NewFormItem("Link", entry)}
	dialog.ShowForm("Open Link", "Open", "Cancel", items, func(ok bool) {
		if !ok {
			return // User cancelled
		}
		raw := strings.TrimSpace(entry.Text)
		d.logger.Debug("location entered", slog.Int("length", len(raw)))
		if d.callback != nil {
			d.callback(raw)
		}
	}, d.window)
}

// PlaylistNameDialog asks for the name of a playlist to create.
type PlaylistNameDialog struct {
	window   fyne.Window
	title    string
	callback func(string)
}

// NewPlaylistNameDialog creates a new playlist name dialog.
func NewPlaylistNameDialog(window fyne.Window, title string, callback func(string)) *PlaylistNameDialog {
	return &PlaylistNameDialog{
		window:   window,
		title:    title,
		callback: callback,
	}
}

// Show displays the dialog.
func (d *PlaylistNameDialog) Show() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Playlist name")
	entry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return domain.ErrEmptyPlaylistName
		}
		return nil
	}

	items := []*widget.FormItem{widget.NewFormItem("Name", entry)}
	dialog.ShowForm(d.title, "Create", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		if d.callback != nil {
			d.callback(strings.TrimSpace(entry.Text))
		}
	}, d.window)
}
