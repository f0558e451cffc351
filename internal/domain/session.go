package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Page names a logical page of the client.
type Page string

// Pages reachable through the backend navigation endpoints.
const (
	PageHome          Page = "home"
	PageProfile       Page = "profile"
	PageLibrary       Page = "library"
	PageAbout         Page = "about"
	PagePlaylist      Page = "playlist"
	PageMediaPlayer   Page = "mediaplayer"
	PageDetectEmotion Page = "detect/emotion"
	PageSelectEmotion Page = "select/emotion"
	PageRecommend     Page = "recommend/songs"
)

// LocationScheme is the scheme used for locations built by the client itself.
const LocationScheme = "aura"

// Location is the parsed navigation location a page is opened with.
// Session is the opaque token every backend call is authorized with.
type Location struct {
	Page       Page
	Session    string
	TrackID    string
	PlaylistID string
	Emotion    string
	Genres     []string
}

// ParseLocation parses an aura:// location or a backend redirect URL.
// The page is taken from the host and path; query parameters carry the rest.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, NewValidationError("location", raw, err.Error())
	}

	path := u.Path
	if u.Scheme == LocationScheme {
		path = u.Host + "/" + u.Path
	}
	page := strings.Trim(path, "/")
	for strings.Contains(page, "//") {
		page = strings.ReplaceAll(page, "//", "/")
	}
	if page == "" {
		page = string(PageHome)
	}

	q := u.Query()
	loc := Location{
		Page:       Page(page),
		Session:    q.Get("session"),
		TrackID:    q.Get("track_id"),
		PlaylistID: q.Get("playlist_id"),
		Emotion:    q.Get("emotion"),
	}
	if g := q.Get("genres"); g != "" {
		for _, genre := range strings.Split(g, ",") {
			if genre = strings.TrimSpace(genre); genre != "" {
				loc.Genres = append(loc.Genres, genre)
			}
		}
	}
	return loc, nil
}

// RequireSession returns ErrMissingSession when the location carries no token.
func (l Location) RequireSession() error {
	if l.Session == "" {
		return ErrMissingSession
	}
	return nil
}

// With returns a copy of the location pointing at another page with the same session.
func (l Location) With(page Page) Location {
	return Location{Page: page, Session: l.Session}
}

// String renders the location as an aura:// URL.
func (l Location) String() string {
	q := url.Values{}
	if l.Session != "" {
		q.Set("session", l.Session)
	}
	if l.TrackID != "" {
		q.Set("track_id", l.TrackID)
	}
	if l.PlaylistID != "" {
		q.Set("playlist_id", l.PlaylistID)
	}
	if l.Emotion != "" {
		q.Set("emotion", l.Emotion)
	}
	if len(l.Genres) > 0 {
		q.Set("genres", strings.Join(l.Genres, ","))
	}
	s := fmt.Sprintf("%s://%s", LocationScheme, l.Page)
	if enc := q.Encode(); enc != "" {
		s += "?" + enc
	}
	return s
}
