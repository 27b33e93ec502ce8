package recommendations

//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=mocks_test.go -package=recommendations

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"cinetrack/models"
	"cinetrack/utils/filter"
)

// sourcePage is the recommendations page read for each liked title.
const sourcePage = 1

var ErrUserIDRequired = errors.New("user id is required")

// Catalog is the subset of the catalog collaborator the aggregator needs.
type Catalog interface {
	Discover(ctx context.Context, kind models.MediaKind, params url.Values) (models.CatalogPage, error)
	Recommendations(ctx context.Context, kind models.MediaKind, id int64, page int) (models.CatalogPage, error)
}

// WatchState exposes the user's list as id sets.
type WatchState interface {
	WatchedIDs(ctx context.Context, userID string, kind models.MediaKind) (filter.IDSet, error)
	ListedIDs(ctx context.Context, userID string, kind models.MediaKind) (filter.IDSet, error)
	LikedIDs(ctx context.Context, userID string, kind models.MediaKind, limit int) ([]int64, error)
}

// Options bound the aggregation.
type Options struct {
	MaxResults   int
	LikedSources int
	PerSource    int
	FetchTimeout time.Duration
}

// DefaultOptions returns 20 results from up to 3 liked items, 5 per item.
func DefaultOptions() Options {
	return Options{MaxResults: 20, LikedSources: 3, PerSource: 5, FetchTimeout: 10 * time.Second}
}

// Result is one page of recommendations.
type Result struct {
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	TotalResults int                  `json:"total_results"`
	Results      []models.CatalogItem `json:"results"`

	// NeedsLikes is set when the user has nothing liked to build from.
	NeedsLikes bool `json:"-"`
	// SkippedSources lists liked ids whose recommendations could not be fetched.
	SkippedSources []int64 `json:"skipped_sources,omitempty"`
}

type Service struct {
	catalog Catalog
	state   WatchState
	opts    Options
}

func NewService(catalog Catalog, state WatchState, opts Options) *Service {
	defaults := DefaultOptions()
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaults.MaxResults
	}
	if opts.LikedSources <= 0 {
		opts.LikedSources = defaults.LikedSources
	}
	if opts.PerSource <= 0 {
		opts.PerSource = defaults.PerSource
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaults.FetchTimeout
	}
	return &Service{catalog: catalog, state: state, opts: opts}
}

// Discover runs one criteria-based discovery query and drops titles the
// user has already watched.
func (s *Service) Discover(ctx context.Context, userID string, criteria Criteria) (Result, error) {
	if strings.TrimSpace(userID) == "" {
		return Result{}, ErrUserIDRequired
	}
	if !criteria.Kind.Valid() {
		criteria.Kind = models.MediaKindMovie
	}

	watched, err := s.state.WatchedIDs(ctx, userID, criteria.Kind)
	if err != nil {
		return Result{}, err
	}

	page, err := s.catalog.Discover(ctx, criteria.Kind, criteria.Params())
	if err != nil {
		return Result{}, err
	}

	results := filter.Truncate(filter.ExcludeIDs(page.Results, watched), s.opts.MaxResults)
	return Result{
		Page:         page.Page,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
		Results:      results,
	}, nil
}

// BasedOnLikes builds recommendations from the user's most recently liked
// titles. Sources are fetched one after another; a failing source is
// skipped rather than failing the request. Each source contributes from its
// first recommendations page; page is only echoed in the result.
func (s *Service) BasedOnLikes(ctx context.Context, userID string, kind models.MediaKind, page int) (Result, error) {
	if strings.TrimSpace(userID) == "" {
		return Result{}, ErrUserIDRequired
	}
	if !kind.Valid() {
		kind = models.MediaKindMovie
	}
	if page < 1 {
		page = 1
	}

	liked, err := s.state.LikedIDs(ctx, userID, kind, s.opts.LikedSources)
	if err != nil {
		return Result{}, err
	}
	if len(liked) == 0 {
		return Result{Page: page, Results: []models.CatalogItem{}, NeedsLikes: true}, nil
	}
	if len(liked) > s.opts.LikedSources {
		liked = liked[:s.opts.LikedSources]
	}

	listed, err := s.state.ListedIDs(ctx, userID, kind)
	if err != nil {
		return Result{}, err
	}

	var (
		collected []models.CatalogItem
		skipped   []int64
	)
	for _, sourceID := range liked {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		items, err := s.fromSource(ctx, kind, sourceID, listed)
		if err != nil {
			slog.Warn("skipping recommendation source",
				"user", userID,
				"kind", kind,
				"source", sourceID,
				"error", err,
			)
			skipped = append(skipped, sourceID)
			continue
		}
		collected = append(collected, items...)
	}

	results := filter.Truncate(filter.DedupeByID(collected), s.opts.MaxResults)
	return Result{
		Page:           page,
		TotalPages:     1,
		TotalResults:   len(results),
		Results:        results,
		SkippedSources: skipped,
	}, nil
}

func (s *Service) fromSource(ctx context.Context, kind models.MediaKind, sourceID int64, listed filter.IDSet) ([]models.CatalogItem, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	related, err := s.catalog.Recommendations(callCtx, kind, sourceID, sourcePage)
	if err != nil {
		return nil, err
	}
	return filter.Truncate(filter.ExcludeIDs(related.Results, listed), s.opts.PerSource), nil
}
