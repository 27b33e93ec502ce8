package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinetrack/internal/i18n"
	"cinetrack/models"
	"cinetrack/services/browse"
	"cinetrack/services/recommendations"
)

type browseService interface {
	Fetch(ctx context.Context, userID string, q browse.Query) (browse.Page, error)
	Reset(userID string, q browse.Query) (bool, error)
}

var _ browseService = (*browse.Service)(nil)

type BrowseHandler struct {
	Service  browseService
	Messages *i18n.Translator
}

func NewBrowseHandler(service browseService, messages *i18n.Translator) *BrowseHandler {
	return &BrowseHandler{Service: service, Messages: messages}
}

// parseQuery reads the feed from the path and the listing options from the
// query string. An omitted page asks for the next unloaded page.
func (h *BrowseHandler) parseQuery(w http.ResponseWriter, r *http.Request) (browse.Query, bool) {
	feed, err := browse.ParseFeed(mux.Vars(r)["feed"])
	if err != nil {
		writeError(w, r, h.Messages, err)
		return browse.Query{}, false
	}
	values := r.URL.Query()
	q := browse.Query{Feed: feed, Text: values.Get("query")}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := recommendations.ParsePage(raw)
		if err != nil {
			writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidCriteria)
			return browse.Query{}, false
		}
		q.Page = page
	}
	if raw := strings.TrimSpace(values.Get("kind")); raw != "" {
		kind, err := models.ParseMediaKind(raw)
		if err != nil {
			writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidMediaType)
			return browse.Query{}, false
		}
		q.Kind = kind
	}
	if raw := strings.TrimSpace(values.Get("hide_watched")); raw != "" {
		hide, err := strconv.ParseBool(raw)
		if err != nil {
			writeMessage(w, r, h.Messages, http.StatusBadRequest, i18n.InvalidWatched)
			return browse.Query{}, false
		}
		q.HideWatched = hide
	}
	return q, true
}

func (h *BrowseHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	page, err := h.Service.Fetch(r.Context(), userID, q)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *BrowseHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Messages)
	if !ok {
		return
	}
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	existed, err := h.Service.Reset(userID, q)
	if err != nil {
		writeError(w, r, h.Messages, err)
		return
	}
	key := i18n.FeedReset
	if !existed {
		key = i18n.FeedNotLoaded
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		Reset   bool   `json:"reset"`
	}{Message: h.Messages.ForRequest(r, key), Reset: existed})
}
