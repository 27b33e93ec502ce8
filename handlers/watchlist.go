package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cinetrack/internal/i18n"
	"cinetrack/models"
	"cinetrack/services/metadata"
	"cinetrack/services/watchlist"
)

type watchlistService interface {
	Add(ctx context.Context, userID string, input models.WatchlistAdd) (models.WatchlistEntry, error)
	List(ctx context.Context, userID string, filter models.WatchlistFilter) ([]models.WatchlistEntry, error)
	SetWatched(ctx context.Context, userID string, id int64, watched bool) (models.WatchlistEntry, error)
	SetLiked(ctx context.Context, userID string, id int64, liked models.LikeState) (models.WatchlistEntry, error)
	Remove(ctx context.Context, userID string, id int64) error

	MarkEpisodeWatched(ctx context.Context, userID string, update models.EpisodeWatchUpdate) (models.EpisodeWatchState, error)
	MarkSeasonWatched(ctx context.Context, userID string, update models.SeasonWatchUpdate) (models.SeasonWatchState, error)
	ListEpisodes(ctx context.Context, userID string, showID int64) ([]models.EpisodeWatchState, error)
	ListSeasons(ctx context.Context, userID string, showID int64) ([]models.SeasonWatchState, error)
}

var _ watchlistService = (*watchlist.Service)(nil)

type WatchlistHandler struct {
	Service  watchlistService
	Images   metadata.ImageResolver
	Messages *i18n.Translator
}

func NewWatchlistHandler(service watchlistService, images metadata.ImageResolver, messages *i18n.Translator) *WatchlistHandler {
	return &WatchlistHandler{Service: service, Images: images, Messages: messages}
}

type conflictResponse struct {
	Message string                `json:"message"`
	Entry   models.WatchlistEntry `json:"entry"`
}

func (h *WatchlistHandler) entry(e models.WatchlistEntry) models.WatchlistEntry {
	e.PosterURL = h.Images.Poster(e.PosterPath)
	return e
}

// parseListFilter reads watched, liked and media_type. Empty values are
// ignored; liked=null selects unrated entries.
func parseListFilter(r *http.Request) (models.WatchlistFilter, i18n.Key, bool) {
	var filter models.WatchlistFilter
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("watched")); raw != "" {
		watched, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, i18n.InvalidWatched, false
		}
		filter.Watched = &watched
	}
	if raw := strings.TrimSpace(q.Get("liked")); raw != "" {
		liked := models.ParseLikeState(raw)
		filter.Liked = &liked
	}
	if raw := strings.TrimSpace(q.Get("media_type")); raw != "" {
		kind, err := models.ParseMediaKind(raw)
		if err != nil {
			return filter, i18n.InvalidMediaType, false
		}
		filter.Kind = kind
	}
	return filter, "", true
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	filter, key, ok := parseListFilter(r)
	if !ok {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, key)
		return
	}

	entries, err := h.Service.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	h.Images.ApplyEntries(entries)
	writeJSON(w, http.StatusOK, entries)
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}

	var body models.WatchlistAdd
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidBody)
		return
	}
	if body.TMDBID == 0 || strings.TrimSpace(body.MediaType) == "" || strings.TrimSpace(body.Title) == "" {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.MissingFields)
		return
	}

	entry, err := h.Service.Add(r.Context(), userID, body)
	if errors.Is(err, watchlist.ErrConflict) {
		resp := conflictResponse{Message: h.Messages.ForRequest(r, i18n.Conflict)}
		if entry.ID != 0 {
			resp.Entry = h.entry(entry)
		}
		writeJSON(w, http.StatusConflict, resp)
		return
	}
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.entry(entry))
}

func (h *WatchlistHandler) SetWatched(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidID)
		return
	}

	var body struct {
		Watched *bool `json:"watched"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidBody)
		return
	}
	if body.Watched == nil {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidWatched)
		return
	}

	entry, err := h.Service.SetWatched(r.Context(), userID, id, *body.Watched)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, h.entry(entry))
}

func (h *WatchlistHandler) SetLiked(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidID)
		return
	}

	// An absent or null liked clears the rating.
	var body struct {
		Liked models.LikeState `json:"liked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidBody)
		return
	}

	entry, err := h.Service.SetLiked(r.Context(), userID, id, body.Liked)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, h.entry(entry))
}

func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidID)
		return
	}

	if err := h.Service.Remove(r.Context(), userID, id); err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeMessage(w, r, h.Messages, http.StatusOK, i18n.Removed)
}

func (h *WatchlistHandler) MarkEpisode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	var body models.EpisodeWatchUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidBody)
		return
	}

	state, err := h.Service.MarkEpisodeWatched(r.Context(), userID, body)
	if err != nil {
		if errors.Is(err, watchlist.ErrInvalidID) {
			writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidEpisode)
			return
		}
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *WatchlistHandler) MarkSeason(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	var body models.SeasonWatchUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidBody)
		return
	}

	state, err := h.Service.MarkSeasonWatched(r.Context(), userID, body)
	if err != nil {
		if errors.Is(err, watchlist.ErrInvalidID) {
			writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidEpisode)
			return
		}
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *WatchlistHandler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	showID, ok := pathID(r, "showId")
	if !ok {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidID)
		return
	}

	states, err := h.Service.ListEpisodes(r.Context(), userID, showID)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

func (h *WatchlistHandler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	showID, ok := pathID(r, "showId")
	if !ok {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidID)
		return
	}

	states, err := h.Service.ListSeasons(r.Context(), userID, showID)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}
