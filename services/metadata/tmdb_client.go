package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"cinetrack/models"
)

const (
	tmdbBaseURL     = "https://api.themoviedb.org/3"
	defaultLanguage = "es-ES"
	maxAttempts     = 3
)

var (
	// ErrUpstream matches every failed catalog call.
	ErrUpstream = errors.New("catalog request failed")
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("tmdb api key not configured")
	// ErrNotFound is returned when the catalog has no such resource.
	ErrNotFound = errors.New("catalog resource not found")
)

// UpstreamError describes a failed catalog call. The detail is for logs and
// must not reach API clients.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tmdb %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("tmdb %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstream:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string { return "unexpected response " + e.status }

type tmdbClient struct {
	apiKey   string
	language string
	baseURL  string
	httpc    *http.Client
	limiter  *rate.Limiter
	backoff  time.Duration
}

func newTMDBClient(apiKey, language, baseURL string, httpc *http.Client, requestsPerSecond float64) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = tmdbBaseURL
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &tmdbClient{
		apiKey:   strings.TrimSpace(apiKey),
		language: normalizeLanguage(language),
		baseURL:  baseURL,
		httpc:    httpc,
		limiter:  rate.NewLimiter(limit, 1),
		backoff:  300 * time.Millisecond,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// get performs a throttled GET against a catalog path. 429, 5xx and
// transport failures are retried with exponential backoff; other 4xx
// responses fail immediately.
func (c *tmdbClient) get(ctx context.Context, op string, params url.Values, v any, segments ...string) error {
	if !c.isConfigured() {
		return &UpstreamError{Op: op, Err: ErrNotConfigured}
	}

	endpoint, err := url.JoinPath(c.baseURL, segments...)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	q := url.Values{}
	for key, values := range params {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	endpoint += "?" + q.Encode()

	err = retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.fetch(ctx, endpoint, v)
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(c.backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[tmdb] %s failed (attempt %d/%d): %v", op, n+1, maxAttempts, err)
		}),
	)
	if err == nil {
		return nil
	}

	upstream := &UpstreamError{Op: op, Err: err}
	var se *statusError
	if errors.As(err, &se) {
		upstream.StatusCode = se.code
	}
	return upstream
}

func (c *tmdbClient) fetch(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func normalizeLanguage(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" {
		return defaultLanguage
	}
	if len(lang) == 2 {
		return strings.ToLower(lang)
	}
	if len(lang) >= 5 {
		return strings.ToLower(lang[:2]) + "-" + strings.ToUpper(lang[3:])
	}
	return defaultLanguage
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func idSegment(id int64) string {
	return strconv.FormatInt(id, 10)
}

type tmdbPage struct {
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	TotalResults int                  `json:"total_results"`
	Results      []models.CatalogItem `json:"results"`
}

func (p tmdbPage) toModel() models.CatalogPage {
	results := p.Results
	if results == nil {
		results = []models.CatalogItem{}
	}
	return models.CatalogPage{
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
		Results:      results,
	}
}

func (c *tmdbClient) searchMulti(ctx context.Context, query string, page int) (models.CatalogPage, error) {
	params := pageParams(page)
	params.Set("query", query)
	params.Set("include_adult", "false")
	var payload tmdbPage
	if err := c.get(ctx, "search multi", params, &payload, "search", "multi"); err != nil {
		return models.CatalogPage{}, err
	}
	return payload.toModel(), nil
}

func (c *tmdbClient) popular(ctx context.Context, kind models.MediaKind, page int) (models.CatalogPage, error) {
	var payload tmdbPage
	if err := c.get(ctx, "popular "+kind.CatalogPath(), pageParams(page), &payload, kind.CatalogPath(), "popular"); err != nil {
		return models.CatalogPage{}, err
	}
	return payload.toModel(), nil
}

func (c *tmdbClient) discover(ctx context.Context, kind models.MediaKind, params url.Values) (models.CatalogPage, error) {
	var payload tmdbPage
	if err := c.get(ctx, "discover "+kind.CatalogPath(), params, &payload, "discover", kind.CatalogPath()); err != nil {
		return models.CatalogPage{}, err
	}
	return payload.toModel(), nil
}

func (c *tmdbClient) recommendations(ctx context.Context, kind models.MediaKind, id int64, page int) (models.CatalogPage, error) {
	var payload tmdbPage
	err := c.get(ctx, "recommendations "+kind.CatalogPath(), pageParams(page), &payload,
		kind.CatalogPath(), idSegment(id), "recommendations")
	if err != nil {
		return models.CatalogPage{}, err
	}
	return payload.toModel(), nil
}

func (c *tmdbClient) movieDetails(ctx context.Context, id int64) (models.MovieDetails, error) {
	var movie models.MovieDetails
	if err := c.get(ctx, "movie details", nil, &movie, "movie", idSegment(id)); err != nil {
		return models.MovieDetails{}, err
	}
	return movie, nil
}

func (c *tmdbClient) showDetails(ctx context.Context, id int64) (models.ShowDetails, error) {
	var show models.ShowDetails
	if err := c.get(ctx, "tv details", nil, &show, "tv", idSegment(id)); err != nil {
		return models.ShowDetails{}, err
	}
	return show, nil
}

func (c *tmdbClient) seasonDetails(ctx context.Context, showID int64, season int) (models.SeasonDetails, error) {
	var details models.SeasonDetails
	err := c.get(ctx, "season details", nil, &details, "tv", idSegment(showID), "season", strconv.Itoa(season))
	if err != nil {
		return models.SeasonDetails{}, err
	}
	if details.Episodes == nil {
		details.Episodes = []models.Episode{}
	}
	return details, nil
}

func (c *tmdbClient) genres(ctx context.Context, kind models.MediaKind) ([]models.Genre, error) {
	var payload struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := c.get(ctx, "genres "+kind.CatalogPath(), nil, &payload, "genre", kind.CatalogPath(), "list"); err != nil {
		return nil, err
	}
	if payload.Genres == nil {
		return []models.Genre{}, nil
	}
	return payload.Genres, nil
}
