package gateway

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tejashwikalptaru/aura/internal/domain"
)

// trackBody is a track as the backend serializes it.
// Playlist pages send numeric ids and "m:ss" durations, the player endpoints strings and seconds.
type trackBody struct {
	ID          flexString `json:"id"`
	Title       string     `json:"title"`
	Name        string     `json:"name"`
	Artist      string     `json:"artist"`
	Album       string     `json:"album"`
	AlbumArt    *string    `json:"albumArt"`
	Duration    seconds    `json:"duration"`
	AccessToken string     `json:"accessToken"`
}

func (t trackBody) toDomain() domain.Track {
	title := t.Title
	if title == "" {
		title = t.Name
	}
	return domain.Track{
		ID:          string(t.ID),
		Title:       title,
		Artist:      t.Artist,
		Album:       t.Album,
		AlbumArt:    deref(t.AlbumArt),
		Duration:    time.Duration(t.Duration),
		AccessToken: t.AccessToken,
	}
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// seconds decodes a duration given as a number of seconds or as "m:ss" / "h:mm:ss".
type seconds time.Duration

func (s *seconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		d, err := parseClock(text)
		if err != nil {
			return err
		}
		*s = seconds(d)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = seconds(time.Duration(f * float64(time.Second)))
	return nil
}

func parseClock(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	var total float64
	for _, part := range strings.Split(text, ":") {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, err
		}
		total = total*60 + v
	}
	return time.Duration(total * float64(time.Second)), nil
}
