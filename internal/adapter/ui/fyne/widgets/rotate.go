package widgets

import "unicode/utf8"

// rotatorGap separates the end of the text from its start while scrolling.
const rotatorGap = "    "

// Rotator produces the frames of a scrolling label. Text that fits in width
// runes is returned unchanged.
type Rotator struct {
	runes  []rune
	width  int
	offset int
}

// NewRotator creates a rotator for text shown in width runes.
func NewRotator(text string, width int) *Rotator {
	r := &Rotator{width: width}
	if utf8.RuneCountInString(text) > width {
		text += rotatorGap
	}
	r.runes = []rune(text)
	return r
}

// Scrolls reports whether the text is wider than the label.
func (r *Rotator) Scrolls() bool {
	return len(r.runes) > r.width
}

// Rotate advances the text by one rune and returns the visible window.
func (r *Rotator) Rotate() string {
	if !r.Scrolls() {
		return string(r.runes)
	}
	r.offset = (r.offset + 1) % len(r.runes)
	return r.Frame()
}

// Frame returns the visible window without advancing.
func (r *Rotator) Frame() string {
	if !r.Scrolls() {
		return string(r.runes)
	}
	out := make([]rune, r.width)
	for i := range out {
		out[i] = r.runes[(r.offset+i)%len(r.runes)]
	}
	return string(out)
}
