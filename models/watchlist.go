package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MediaKind identifies whether a catalog item is a movie or a series.
type MediaKind string

const (
	MediaKindMovie  MediaKind = "movie"
	MediaKindSeries MediaKind = "series"
)

// ErrInvalidMediaKind is returned when a media kind cannot be parsed.
var ErrInvalidMediaKind = errors.New("media type must be movie or series")

// ParseMediaKind accepts the stored spelling as well as the catalog's "tv".
func ParseMediaKind(value string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie", "movies":
		return MediaKindMovie, nil
	case "series", "tv", "show":
		return MediaKindSeries, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMediaKind, value)
	}
}

// Valid reports whether k is one of the closed set of kinds.
func (k MediaKind) Valid() bool {
	return k == MediaKindMovie || k == MediaKindSeries
}

// CatalogPath returns the path segment the catalog uses for this kind.
func (k MediaKind) CatalogPath() string {
	if k == MediaKindSeries {
		return "tv"
	}
	return "movie"
}

// LikeState is the tri-state rating of an entry. The zero value is unrated.
type LikeState int8

const (
	LikeUnrated LikeState = iota
	LikeLiked
	LikeDisliked
)

func (l LikeState) String() string {
	switch l {
	case LikeLiked:
		return "liked"
	case LikeDisliked:
		return "disliked"
	default:
		return "unrated"
	}
}

// ParseLikeState understands the query-string forms used by the list filter.
func ParseLikeState(value string) LikeState {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "liked", "1":
		return LikeLiked
	case "false", "disliked", "0":
		return LikeDisliked
	default:
		return LikeUnrated
	}
}

// MarshalJSON encodes the state as true, false or null.
func (l LikeState) MarshalJSON() ([]byte, error) {
	switch l {
	case LikeLiked:
		return []byte("true"), nil
	case LikeDisliked:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true/false/null and the named string forms.
func (l *LikeState) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*l = LikeLiked
		return nil
	case "false":
		*l = LikeDisliked
		return nil
	case "null":
		*l = LikeUnrated
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("liked must be true, false or null")
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "liked":
		*l = LikeLiked
	case "disliked":
		*l = LikeDisliked
	case "unrated", "":
		*l = LikeUnrated
	default:
		return fmt.Errorf("unknown liked value %q", name)
	}
	return nil
}

// WatchlistEntry is one row per (user, catalog item, media kind).
type WatchlistEntry struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	TMDBID      int64      `json:"tmdb_id"`
	MediaType   MediaKind  `json:"media_type"`
	Title       string     `json:"title"`
	PosterPath  string     `json:"poster_path,omitempty"`
	PosterURL   string     `json:"poster_url,omitempty"`
	ReleaseDate string     `json:"release_date,omitempty"`
	Watched     bool       `json:"watched"`
	Liked       LikeState  `json:"liked"`
	WatchedAt   *time.Time `json:"watch_date"`
	LikedAt     *time.Time `json:"liked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Key returns the catalog identity of the entry.
func (e WatchlistEntry) Key() ItemKey {
	return ItemKey{ID: e.TMDBID, Kind: e.MediaType}
}

// WatchlistAdd captures the fields accepted when adding an item to the list.
type WatchlistAdd struct {
	TMDBID      int64  `json:"tmdb_id"`
	MediaType   string `json:"media_type"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// WatchlistFilter narrows List results. Nil fields are not applied.
type WatchlistFilter struct {
	Watched *bool
	Liked   *LikeState
	Kind    MediaKind
}

// SeasonWatchState tracks a user's watched flag for one season of a show.
type SeasonWatchState struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	ShowID       int64      `json:"tmdb_show_id"`
	SeasonNumber int        `json:"season_number"`
	Watched      bool       `json:"watched"`
	WatchedAt    *time.Time `json:"watch_date"`
}

// EpisodeWatchState tracks a user's watched flag for one episode of a show.
type EpisodeWatchState struct {
	ID            int64      `json:"id"`
	UserID        string     `json:"user_id"`
	ShowID        int64      `json:"tmdb_show_id"`
	SeasonNumber  int        `json:"season_number"`
	EpisodeNumber int        `json:"episode_number"`
	Watched       bool       `json:"watched"`
	WatchedAt     *time.Time `json:"watch_date"`
}

// SeasonWatchUpdate marks a season; Watched defaults to true when omitted.
type SeasonWatchUpdate struct {
	ShowID       int64 `json:"tmdb_show_id"`
	SeasonNumber *int  `json:"season_number"`
	Watched      *bool `json:"watched,omitempty"`
}

// EpisodeWatchUpdate marks an episode; Watched defaults to true when omitted.
type EpisodeWatchUpdate struct {
	ShowID        int64 `json:"tmdb_show_id"`
	SeasonNumber  *int  `json:"season_number"`
	EpisodeNumber *int  `json:"episode_number"`
	Watched       *bool `json:"watched,omitempty"`
}

// WatchedOrDefault resolves the optional watched flag.
func WatchedOrDefault(watched *bool) bool {
	if watched == nil {
		return true
	}
	return *watched
}
