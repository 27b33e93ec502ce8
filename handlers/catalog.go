package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinetrack/internal/i18n"
	"cinetrack/models"
	"cinetrack/services/metadata"
	"cinetrack/services/recommendations"
)

type catalogService interface {
	Search(ctx context.Context, query string, page int) (models.CatalogPage, error)
	Popular(ctx context.Context, kind models.MediaKind, page int) (models.CatalogPage, error)
	Movie(ctx context.Context, id int64) (models.MovieDetails, error)
	Show(ctx context.Context, id int64) (models.ShowDetails, error)
	Season(ctx context.Context, showID int64, season int) (models.SeasonDetails, error)
	Genres(ctx context.Context) (models.GenreLists, error)
}

var _ catalogService = (*metadata.Service)(nil)

// CatalogHandler proxies catalog lookups. Nothing here is cached.
type CatalogHandler struct {
	Service  catalogService
	Messages *i18n.Translator
}

func NewCatalogHandler(service catalogService, messages *i18n.Translator) *CatalogHandler {
	return &CatalogHandler{Service: service, Messages: messages}
}

func (h *CatalogHandler) page(w http.ResponseWriter, r *http.Request) (int, bool) {
	page, err := recommendations.ParsePage(r.URL.Query().Get("page"))
	if err != nil {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidCriteria)
		return 0, false
	}
	return page, true
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.QueryRequired)
		return
	}
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	result, err := h.Service.Search(r.Context(), query, page)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CatalogHandler) popular(kind models.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := h.page(w, r)
		if !ok {
			return
		}
		result, err := h.Service.Popular(r.Context(), kind, page)
		if err != nil {
			writeError(w, r, h.Messages, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *CatalogHandler) PopularMovies(w http.ResponseWriter, r *http.Request) {
	h.popular(models.MediaKindMovie)(w, r)
}

func (h *CatalogHandler) PopularTV(w http.ResponseWriter, r *http.Request) {
	h.popular(models.MediaKindSeries)(w, r)
}

func (h *CatalogHandler) Movie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidID)
		return
	}
	movie, err := h.Service.Movie(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (h *CatalogHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidID)
		return
	}
	show, err := h.Service.Show(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, show)
}

func (h *CatalogHandler) Season(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidID)
		return
	}
	// season 0 holds specials
	season, err := strconv.Atoi(strings.TrimSpace(mux.Vars(r)["season"]))
	if err != nil || season < 0 {
		writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidEpisode)
		return
	}
	details, err := h.Service.Season(r.Context(), id, season)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.Service.Genres(r.Context())
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}
