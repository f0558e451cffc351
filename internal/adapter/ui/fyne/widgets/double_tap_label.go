package widgets

import (
	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

var _ fyneapp.DoubleTappable = (*TrackLabel)(nil)
var _ fyneapp.SecondaryTappable = (*TrackLabel)(nil)

// TrackLabel is a list cell bound to a track ID. Double-tapping plays the track,
// a secondary tap opens the row's context menu.
type TrackLabel struct {
	widget.Label
	doubleTapped    func(trackID string)
	secondaryTapped func(trackID string, pos fyneapp.Position)
	trackID         string
}

// NewTrackLabel creates a TrackLabel calling doubleTapped with the bound track ID.
func NewTrackLabel(doubleTapped func(trackID string)) *TrackLabel {
	label := &TrackLabel{
		doubleTapped: doubleTapped,
	}
	label.Truncation = fyneapp.TextTruncateEllipsis
	label.ExtendBaseWidget(label)
	return label
}

// Bind sets the track shown by this cell.
func (l *TrackLabel) Bind(trackID, text string) {
	l.trackID = trackID
	l.SetText(text)
}

// TrackID returns the bound track ID.
func (l *TrackLabel) TrackID() string {
	return l.trackID
}

// DoubleTapped implements fyne.DoubleTappable.
func (l *TrackLabel) DoubleTapped(_ *fyneapp.PointEvent) {
	if l.doubleTapped != nil && l.trackID != "" {
		l.doubleTapped(l.trackID)
	}
}

// SetSecondaryTapped sets the right-click callback.
func (l *TrackLabel) SetSecondaryTapped(callback func(trackID string, pos fyneapp.Position)) {
	l.secondaryTapped = callback
}

// TappedSecondary implements fyne.SecondaryTappable.
func (l *TrackLabel) TappedSecondary(pe *fyneapp.PointEvent) {
	if l.secondaryTapped != nil && l.trackID != "" {
		l.secondaryTapped(l.trackID, pe.AbsolutePosition)
	}
}
