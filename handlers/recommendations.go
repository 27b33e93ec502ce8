package handlers

import (
	"context"
	"net/http"
	"strings"

	"cinetrack/internal/i18n"
	"cinetrack/models"
	"cinetrack/services/recommendations"
)

type recommendationsService interface {
	Discover(ctx context.Context, userID string, criteria recommendations.Criteria) (recommendations.Result, error)
	BasedOnLikes(ctx context.Context, userID string, kind models.MediaKind, page int) (recommendations.Result, error)
}

var _ recommendationsService = (*recommendations.Service)(nil)

type RecommendationsHandler struct {
	Service  recommendationsService
	Messages *i18n.Translator
}

func NewRecommendationsHandler(service recommendationsService, messages *i18n.Translator) *RecommendationsHandler {
	return &RecommendationsHandler{Service: service, Messages: messages}
}

type needsLikesResponse struct {
	Results []models.CatalogItem `json:"results"`
	Message string               `json:"message"`
}

// Discover serves criteria-based recommendations.
func (h *RecommendationsHandler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	criteria, err := recommendations.ParseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}

	result, err := h.Service.Discover(r.Context(), userID, criteria)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	if result.Results == nil {
		result.Results = []models.CatalogItem{}
	}
	writeJSON(w, http.StatusOK, result)
}

// BasedOnLikes serves recommendations derived from liked titles. Users with
// nothing liked get an empty list and guidance instead of an error.
func (h *RecommendationsHandler) BasedOnLikes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	q := r.URL.Query()

	kind := models.MediaKindMovie
	if raw := strings.TrimSpace(q.Get("media_type")); raw != "" {
		parsed, err := models.ParseMediaKind(raw)
		if err != nil {
			writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidMediaType)
			return
		}
		kind = parsed
	}
	page, err := recommendations.ParsePage(q.Get("page"))
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}

	result, err := h.Service.BasedOnLikes(r.Context(), userID, kind, page)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	if result.NeedsLikes {
		writeJSON(w, http.StatusOK, needsLikesResponse{
			Results: []models.CatalogItem{},
			Message: h.Messages.ForRequest(r, i18n.NeedsLikes),
		})
		return
	}
	if result.Results == nil {
		result.Results = []models.CatalogItem{}
	}
	writeJSON(w, http.StatusOK, result)
}
