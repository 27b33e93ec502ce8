package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetrack/handlers"
	"cinetrack/internal/auth"
	"cinetrack/internal/database"
	"cinetrack/internal/i18n"
	"cinetrack/services/metadata"
	"cinetrack/services/watchlist"
	"cinetrack/utils"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{
		Driver:       database.DriverSQLite,
		DatabasePath: filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	messages := i18n.New("en")
	r := utils.NewRouter()
	Register(r, Handlers{
		Watchlist: handlers.NewWatchlistHandler(watchlist.NewService(db), metadata.NewImageResolver(""), messages),
	}, auth.NewVerifier(testSecret), nil, messages)
	return r
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.Issue(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return token
}

func do(t *testing.T, h http.Handler, token, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func TestWatchlistLifecycle(t *testing.T) {
	h := newTestRouter(t)
	token := tokenFor(t, "user-1")
	add := map[string]any{"tmdb_id": 100, "media_type": "movie", "title": "Film", "poster_path": "/p.jpg"}

	rec, created := do(t, h, token, http.MethodPost, "/watchlist/add", add)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/p.jpg", created["poster_url"])
	assert.Equal(t, false, created["watched"])
	assert.Nil(t, created["watch_date"])
	id := int64(created["id"].(float64))

	rec, conflict := do(t, h, token, http.MethodPost, "/watchlist/add", add)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This item is already in your list", conflict["message"])

	rec, watched := do(t, h, token, http.MethodPut, fmt.Sprintf("/watchlist/%d/watch", id), map[string]any{"watched": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, watched["watched"])
	assert.NotNil(t, watched["watch_date"])

	rec, unwatched := do(t, h, token, http.MethodPut, fmt.Sprintf("/watchlist/%d/watch", id), map[string]any{"watched": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, unwatched["watch_date"])

	rec, liked := do(t, h, token, http.MethodPut, fmt.Sprintf("/watchlist/%d/like", id), map[string]any{"liked": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, liked["liked"])

	rec, _ = do(t, h, token, http.MethodDelete, fmt.Sprintf("/watchlist/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, token, http.MethodGet, "/watchlist", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec, _ = do(t, h, token, http.MethodDelete, fmt.Sprintf("/watchlist/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatchlistOwnership(t *testing.T) {
	h := newTestRouter(t)
	owner := tokenFor(t, "owner")
	intruder := tokenFor(t, "intruder")

	rec, created := do(t, h, owner, http.MethodPost, "/watchlist/add", map[string]any{"tmdb_id": 7, "media_type": "tv", "title": "Show"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "series", created["media_type"])
	id := int64(created["id"].(float64))

	rec, body := do(t, h, intruder, http.MethodPut, fmt.Sprintf("/watchlist/%d/watch", id), map[string]any{"watched": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Item not found in your list", body["message"])

	rec, _ = do(t, h, intruder, http.MethodDelete, fmt.Sprintf("/watchlist/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, intruder, http.MethodGet, "/watchlist", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestEpisodeRoutes(t *testing.T) {
	h := newTestRouter(t)
	token := tokenFor(t, "user-1")

	mark := map[string]any{"tmdb_show_id": 55, "season_number": 1, "episode_number": 2}
	rec, first := do(t, h, token, http.MethodPost, "/watchlist/episodes/watch", mark)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, first["watched"])

	rec, second := do(t, h, token, http.MethodPost, "/watchlist/episodes/watch", mark)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first["id"], second["id"], "marking twice reuses the row")

	rec, _ = do(t, h, token, http.MethodPost, "/watchlist/seasons/watch", map[string]any{"tmdb_show_id": 55, "season_number": 1, "watched": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, token, http.MethodGet, "/watchlist/episodes/55", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var episodes []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &episodes))
	require.Len(t, episodes, 1)
	assert.Equal(t, true, episodes[0]["watched"], "season ledger does not cascade")

	rec, _ = do(t, h, token, http.MethodGet, "/watchlist/seasons/55", nil)
	var seasons []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seasons))
	require.Len(t, seasons, 1)
	assert.Equal(t, false, seasons[0]["watched"])

	rec, _ = do(t, h, token, http.MethodPost, "/watchlist/episodes/watch", map[string]any{"tmdb_show_id": 55})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddValidation(t *testing.T) {
	h := newTestRouter(t)
	token := tokenFor(t, "user-1")

	rec, body := do(t, h, token, http.MethodPost, "/watchlist/add", map[string]any{"tmdb_id": 1, "media_type": "movie"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "tmdb_id, media_type and title are required", body["message"])

	rec, _ = do(t, h, token, http.MethodPost, "/watchlist/add", map[string]any{"tmdb_id": 1, "media_type": "book", "title": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, token, http.MethodGet, "/watchlist?watched=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnauthenticatedAndUnknownRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec, _ := do(t, h, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, h, "", http.MethodGet, "/watchlist", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", body["message"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, body = do(t, h, "", http.MethodGet, "/nope/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", body["message"])
}
