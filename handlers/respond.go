package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinetrack/internal/auth"
	"cinetrack/internal/i18n"
	"cinetrack/services/browse"
	"cinetrack/services/metadata"
	"cinetrack/services/recommendations"
	"cinetrack/services/watchlist"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, tr *i18n.Translator, status int, key i18n.Key) {
	writeJSON(w, status, messageResponse{Message: tr.ForRequest(r, key)})
}

// errorStatus maps a service error to a status and message key. Catalog
// not-found is checked before the generic upstream match because an
// upstream 404 satisfies both.
func errorStatus(err error) (int, i18n.Key) {
	switch {
	case errors.Is(err, watchlist.ErrConflict):
		return http.StatusConflict, i18n.Conflict
	case errors.Is(err, watchlist.ErrNotFound):
		return http.StatusNotFound, i18n.EntryNotFound
	case errors.Is(err, watchlist.ErrUserIDRequired),
		errors.Is(err, recommendations.ErrUserIDRequired),
		errors.Is(err, browse.ErrUserIDRequired):
		return http.StatusUnauthorized, i18n.Unauthorized
	case errors.Is(err, watchlist.ErrInvalidMediaKind):
		return http.StatusBadRequest, i18n.InvalidMediaType
	case errors.Is(err, watchlist.ErrInvalidReleaseDate):
		return http.StatusBadRequest, i18n.InvalidReleaseDate
	case errors.Is(err, watchlist.ErrInvalidEpisode):
		return http.StatusBadRequest, i18n.InvalidEpisode
	case errors.Is(err, watchlist.ErrInvalidID):
		return http.StatusBadRequest, i18n.InvalidID
	case errors.Is(err, watchlist.ErrTitleRequired):
		return http.StatusBadRequest, i18n.MissingFields
	case errors.Is(err, recommendations.ErrInvalidCriteria):
		return http.StatusBadRequest, i18n.InvalidCriteria
	case errors.Is(err, browse.ErrQueryRequired):
		return http.StatusBadRequest, i18n.QueryRequired
	case errors.Is(err, browse.ErrUnknownFeed):
		return http.StatusNotFound, i18n.UnknownFeed
	case errors.Is(err, metadata.ErrNotFound):
		return http.StatusNotFound, i18n.CatalogNotFound
	case errors.Is(err, metadata.ErrNotConfigured):
		return http.StatusInternalServerError, i18n.CatalogUnconfigured
	case errors.Is(err, metadata.ErrUpstream):
		return http.StatusInternalServerError, i18n.Upstream
	default:
		return http.StatusInternalServerError, i18n.Internal
	}
}

// writeError renders err as a localized message. Server-side failures are
// logged with their detail; the client only sees the message.
func writeError(w http.ResponseWriter, r *http.Request, tr *i18n.Translator, err error) {
	status, key := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", auth.RequestID(r.Context()),
			"error", err,
		)
	}
	writeMessage(w, r, tr, status, key)
}

// requireUser reads the authenticated user id injected by the auth middleware.
func requireUser(w http.ResponseWriter, r *http.Request, tr *i18n.Translator) (string, bool) {
	userID := strings.TrimSpace(auth.GetUserID(r))
	if userID == "" {
		writeMessage(w, r, tr, http.StatusUnauthorized, i18n.Unauthorized)
		return "", false
	}
	return userID, true
}

// pathID parses a positive integer path variable.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(mux.Vars(r)[name]), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// NotFound answers unknown routes.
func NotFound(tr *i18n.Translator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, r, tr, http.StatusNotFound, i18n.RouteNotFound)
	})
}
