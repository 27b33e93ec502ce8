// Package browse serves paginated catalog feeds with "load more" semantics.
// Every distinct query owns one accumulator; changing any part of the query
// starts a fresh one.
package browse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"cinetrack/models"
	"cinetrack/utils/filter"
	"cinetrack/utils/pagination"
)

// Feed names a browsable catalog listing.
type Feed string

const (
	FeedPopularMovies Feed = "popular-movies"
	FeedPopularTV     Feed = "popular-tv"
	FeedSearch        Feed = "search"
)

var (
	ErrUnknownFeed    = errors.New("unknown feed")
	ErrQueryRequired  = errors.New("search query is required")
	ErrUserIDRequired = errors.New("user id is required")
)

// ParseFeed validates a feed name.
func ParseFeed(value string) (Feed, error) {
	switch f := Feed(strings.ToLower(strings.TrimSpace(value))); f {
	case FeedPopularMovies, FeedPopularTV, FeedSearch:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFeed, value)
	}
}

// Kind is the single media kind of the feed, or "" for mixed feeds.
func (f Feed) Kind() models.MediaKind {
	switch f {
	case FeedPopularMovies:
		return models.MediaKindMovie
	case FeedPopularTV:
		return models.MediaKindSeries
	default:
		return ""
	}
}

// Catalog is the subset of the catalog collaborator the feeds read.
type Catalog interface {
	Popular(ctx context.Context, kind models.MediaKind, page int) (models.CatalogPage, error)
	Search(ctx context.Context, query string, page int) (models.CatalogPage, error)
}

// WatchState supplies the user's list for filtering and annotation.
type WatchState interface {
	Snapshot(ctx context.Context, userID string, kind models.MediaKind) (filter.WatchSnapshot, error)
}

// Query identifies one logical listing. Page is not part of the identity;
// zero means "the next page".
type Query struct {
	Feed        Feed
	Text        string
	Kind        models.MediaKind // narrows mixed feeds
	HideWatched bool
	Page        int
}

// Page is the accumulated view returned to clients.
type Page struct {
	Key         string               `json:"key"`
	Page        int                  `json:"page"`
	TotalPages  int                  `json:"total_pages"`
	HasMore     bool                 `json:"has_more"`
	MergedPages []int                `json:"merged_pages"`
	Added       int                  `json:"added"`
	Results     []models.CatalogItem `json:"results"`
}

type Service struct {
	catalog Catalog
	state   WatchState

	mu    sync.Mutex
	feeds *lru.Cache[string, *pagination.Accumulator]
}

// NewService keeps at most maxFeeds accumulators, evicting the least
// recently used.
func NewService(catalog Catalog, state WatchState, maxFeeds int) (*Service, error) {
	if maxFeeds <= 0 {
		maxFeeds = 512
	}
	feeds, err := lru.New[string, *pagination.Accumulator](maxFeeds)
	if err != nil {
		return nil, err
	}
	return &Service{catalog: catalog, state: state, feeds: feeds}, nil
}

// Key derives the cache identity of a query for a user.
func Key(userID string, q Query) string {
	return strings.Join([]string{
		strings.TrimSpace(userID),
		string(q.Feed),
		filter.NormalizeQuery(q.Text),
		string(q.Kind),
		strconv.FormatBool(q.HideWatched),
	}, "|")
}

func (s *Service) validate(userID string, q Query) (Query, error) {
	if strings.TrimSpace(userID) == "" {
		return q, ErrUserIDRequired
	}
	feed, err := ParseFeed(string(q.Feed))
	if err != nil {
		return q, err
	}
	q.Feed = feed
	if feed == FeedSearch {
		if strings.TrimSpace(q.Text) == "" {
			return q, ErrQueryRequired
		}
	} else {
		// single-kind feeds ignore free text and kind filters
		q.Text = ""
		q.Kind = ""
	}
	return q, nil
}

func (s *Service) accumulator(key string, kind models.MediaKind) *pagination.Accumulator {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.feeds.Get(key); ok {
		return acc
	}
	acc := pagination.NewAccumulator(kind)
	s.feeds.Add(key, acc)
	return acc
}

// Fetch loads one catalog page into the query's accumulator and returns the
// whole accumulated list annotated with the user's list state.
func (s *Service) Fetch(ctx context.Context, userID string, q Query) (Page, error) {
	q, err := s.validate(userID, q)
	if err != nil {
		return Page{}, err
	}

	key := Key(userID, q)
	feedKind := q.Feed.Kind()
	acc := s.accumulator(key, feedKind)

	pageNumber := q.Page
	if pageNumber <= 0 {
		pageNumber = acc.NextPage()
	}

	snapshot, err := s.state.Snapshot(ctx, userID, feedKind)
	if err != nil {
		return Page{}, err
	}
	resolve := filter.DefaultKind(feedKind)

	// A page already merged is served from the accumulation.
	var merged pagination.MergeResult
	if acc.HasPage(pageNumber) {
		merged = pagination.MergeResult{Page: pageNumber, TotalPages: acc.TotalPages(), Duplicate: true}
	} else {
		var catalogPage models.CatalogPage
		if q.Feed == FeedSearch {
			catalogPage, err = s.catalog.Search(ctx, q.Text, pageNumber)
		} else {
			catalogPage, err = s.catalog.Popular(ctx, feedKind, pageNumber)
		}
		if err != nil {
			return Page{}, err
		}

		incoming := catalogPage.Results
		if q.Kind.Valid() {
			incoming = onlyKind(incoming, q.Kind, resolve)
		}
		if q.HideWatched {
			incoming = filter.ExcludeWatched(incoming, snapshot, resolve)
		}
		merged = acc.MergePage(pageNumber, catalogPage.TotalPages, incoming)
	}

	return Page{
		Key:         key,
		Page:        pageNumber,
		TotalPages:  merged.TotalPages,
		HasMore:     acc.HasMore(),
		MergedPages: acc.MergedPages(),
		Added:       merged.Added,
		Results:     filter.Annotate(acc.Items(), snapshot, resolve),
	}, nil
}

// Reset drops the accumulator for a query. It reports whether one existed.
func (s *Service) Reset(userID string, q Query) (bool, error) {
	q, err := s.validate(userID, q)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feeds.Remove(Key(userID, q)), nil
}

// Len reports how many accumulators are cached.
func (s *Service) Len() int {
	return s.feeds.Len()
}

func onlyKind(items []models.CatalogItem, kind models.MediaKind, resolve filter.KindResolver) []models.CatalogItem {
	kept := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if k, ok := resolve(item); ok && k == kind {
			kept = append(kept, item)
		}
	}
	return kept
}
