package domain

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Emotion is a canonical, lower-case emotion category.
type Emotion string

// Known emotion categories.
const (
	EmotionHappy      Emotion = "happy"
	EmotionAngry      Emotion = "angry"
	EmotionSad        Emotion = "sad"
	EmotionSurprised  Emotion = "surprised"
	EmotionCalm       Emotion = "calm"
	EmotionFearful    Emotion = "fearful"
	EmotionExcited    Emotion = "excited"
	EmotionFrustrated Emotion = "frustrated"
)

// TallyCategories lists the sampler buckets in declaration order.
// The order is the tie-break order for Dominant.
var TallyCategories = []Emotion{
	EmotionHappy,
	EmotionAngry,
	EmotionSad,
	EmotionSurprised,
	EmotionCalm,
	EmotionFearful,
}

// SelectableEmotions are offered for manual selection.
var SelectableEmotions = []Emotion{
	EmotionHappy,
	EmotionSad,
	EmotionAngry,
	EmotionSurprised,
	EmotionExcited,
	EmotionCalm,
}

// SelectableGenres are offered alongside a manual emotion selection.
var SelectableGenres = []string{"Pop", "Rock", "Jazz", "Classical", "Hip-Hop", "Electronic"}

var emotionGenres = map[Emotion][]string{
	EmotionHappy:     {"Pop", "Dance", "Electronic", "Funk", "Disco"},
	EmotionSad:       {"Acoustic", "Blues", "Classical", "Soul", "Folk"},
	EmotionAngry:     {"Metal", "Rock", "Punk", "Hardcore", "Grunge"},
	EmotionSurprised: {"Indie", "Alternative", "Experimental", "Psychedelic"},
	EmotionExcited:   {"Hip-Hop", "Rap", "Party", "Trap", "Reggaeton"},
	EmotionCalm:      {"Ambient", "Chill", "Jazz", "Lo-Fi", "New-Age"},
	// fearful has no list of its own and borrows the calm one
	EmotionFearful: {"Ambient", "Chill", "Jazz", "Lo-Fi", "New-Age"},
}

var emotionSentences = map[Emotion]string{
	EmotionHappy:     "You seem to be in a great mood! Let's find some upbeat music for you.",
	EmotionSad:       "Feeling down? Here's some soothing music to lift your spirits.",
	EmotionAngry:     "Let's channel that energy with some intense tunes.",
	EmotionSurprised: "Surprised? Let's explore some experimental genres together.",
	EmotionExcited:   "You're full of energy! Let's get the party started with some lively beats.",
	EmotionCalm:      "You seem relaxed. Here's some chill music to keep the vibe going.",
	EmotionFearful:   "Feeling uneasy? Here's something calm to settle in with.",
}

// NormalizeEmotion maps a raw vendor or display label onto its canonical category.
func NormalizeEmotion(label string) Emotion {
	l := strings.ToLower(strings.TrimSpace(label))
	switch l {
	case "surprise":
		return EmotionSurprised
	case "fear":
		return EmotionFearful
	case "neutral":
		return EmotionCalm
	}
	return Emotion(l)
}

// Display returns the capitalized form shown to the user.
func (e Emotion) Display() string {
	return Capitalize(string(e))
}

// Genres returns the candidate genres for the emotion (nil when unknown).
func (e Emotion) Genres() []string {
	g := emotionGenres[e]
	if g == nil {
		return nil
	}
	out := make([]string, len(g))
	copy(out, g)
	return out
}

// Sentence returns the headline shown for a detected emotion.
func (e Emotion) Sentence() string {
	if s, ok := emotionSentences[e]; ok {
		return s
	}
	if e == "" {
		return "No emotion detected. Please try again."
	}
	return "Detected Emotion: " + e.Display()
}

// MoodChangerEligible reports whether a mood changer playlist is offered.
func (e Emotion) MoodChangerEligible() bool {
	switch e {
	case EmotionSad, EmotionAngry, EmotionFrustrated:
		return true
	}
	return false
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// EmotionTally accumulates per-category confidence scores over one sampling window.
type EmotionTally struct {
	scores map[Emotion]float64
}

// NewEmotionTally returns a tally with every category at zero.
func NewEmotionTally() *EmotionTally {
	t := &EmotionTally{scores: make(map[Emotion]float64, len(TallyCategories))}
	t.Reset()
	return t
}

// Reset zeroes every category.
func (t *EmotionTally) Reset() {
	for _, c := range TallyCategories {
		t.scores[c] = 0
	}
}

// Add folds one frame's raw scores into the tally.
// Labels are normalized; labels outside the tally categories are dropped.
func (t *EmotionTally) Add(frame map[string]float64) {
	for label, score := range frame {
		key := NormalizeEmotion(label)
		if _, ok := t.scores[key]; ok {
			t.scores[key] += score
		}
	}
}

// Score returns the accumulated score for a category.
func (t *EmotionTally) Score(e Emotion) float64 {
	return t.scores[e]
}

// Counts returns a copy keyed by category name, the wire shape of emotion_count.
func (t *EmotionTally) Counts() map[string]float64 {
	out := make(map[string]float64, len(t.scores))
	for k, v := range t.scores {
		out[string(k)] = v
	}
	return out
}

// Dominant returns the category with the greatest score.
// Ties go to the category declared first in TallyCategories.
// It reports false when no category accumulated a positive score.
func (t *EmotionTally) Dominant() (Emotion, bool) {
	var best Emotion
	bestScore := 0.0
	for _, c := range TallyCategories {
		if s := t.scores[c]; s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, best != ""
}

// SameGenres compares two genre lists ignoring order and case.
func SameGenres(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	na, nb := normalizeGenres(a), normalizeGenres(b)
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

func normalizeGenres(genres []string) []string {
	out := make([]string, len(genres))
	for i, g := range genres {
		out[i] = strings.ToLower(strings.TrimSpace(g))
	}
	sort.Strings(out)
	return out
}
