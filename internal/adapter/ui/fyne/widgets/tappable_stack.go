// Package widgets provides custom Fyne widgets for the Aura client.
package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// TappableStack wraps content and reports secondary (right-click) taps.
// The player page uses it to open the album art context menu.
type TappableStack struct {
	widget.BaseWidget

	content        fyne.CanvasObject
	onSecondaryTap func(*fyne.PointEvent)
}

// NewTappableStack creates a new tappable stack with the given content.
func NewTappableStack(content fyne.CanvasObject, onSecondaryTap func(*fyne.PointEvent)) *TappableStack {
	t := &TappableStack{
		content:        content,
		onSecondaryTap: onSecondaryTap,
	}
	t.ExtendBaseWidget(t)
	return t
}

// CreateRenderer implements fyne.Widget.
func (t *TappableStack) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

// Tapped implements fyne.Tappable. Primary taps are ignored.
func (t *TappableStack) Tapped(*fyne.PointEvent) {}

// TappedSecondary implements fyne.SecondaryTappable.
func (t *TappableStack) TappedSecondary(pe *fyne.PointEvent) {
	if t.onSecondaryTap != nil {
		t.onSecondaryTap(pe)
	}
}

var _ fyne.Tappable = (*TappableStack)(nil)
var _ fyne.SecondaryTappable = (*TappableStack)(nil)
