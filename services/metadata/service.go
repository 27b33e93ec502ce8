package metadata

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"cinetrack/config"
	"cinetrack/models"
)

// Service is the catalog collaborator. It fetches from TMDB and resolves
// image URLs; it caches nothing.
type Service struct {
	tmdb   *tmdbClient
	images ImageResolver
}

// NewService builds a catalog service from settings. httpc may be nil.
func NewService(cfg config.MetadataSettings, httpc *http.Client) *Service {
	if httpc == nil {
		timeout := cfg.Timeout()
		if timeout <= 0 {
			timeout = config.DefaultSettings().Metadata.Timeout()
		}
		httpc = &http.Client{Timeout: timeout}
	}
	return &Service{
		tmdb:   newTMDBClient(cfg.TMDBAPIKey, cfg.Language, cfg.BaseURL, httpc, cfg.RequestsPerSecond),
		images: NewImageResolver(cfg.ImageBaseURL),
	}
}

// Configured reports whether an API key is set.
func (s *Service) Configured() bool {
	return s.tmdb.isConfigured()
}

// Images exposes the resolver used for list entries.
func (s *Service) Images() ImageResolver {
	return s.images
}

func (s *Service) finishPage(page models.CatalogPage, kind models.MediaKind) models.CatalogPage {
	if kind.Valid() {
		for i := range page.Results {
			if page.Results[i].MediaType == "" {
				page.Results[i].MediaType = kind.CatalogPath()
			}
		}
	}
	s.images.applyItems(page.Results)
	return page
}

// Search runs a multi search across movies, series and people.
func (s *Service) Search(ctx context.Context, query string, page int) (models.CatalogPage, error) {
	result, err := s.tmdb.searchMulti(ctx, strings.TrimSpace(query), page)
	if err != nil {
		return models.CatalogPage{}, err
	}
	return s.finishPage(result, ""), nil
}

// Popular returns one page of popular titles of kind.
func (s *Service) Popular(ctx context.Context, kind models.MediaKind, page int) (models.CatalogPage, error) {
	result, err := s.tmdb.popular(ctx, kind, page)
	if err != nil {
		return models.CatalogPage{}, err
	}
	return s.finishPage(result, kind), nil
}

// Discover queries the catalog with prebuilt discover parameters.
func (s *Service) Discover(ctx context.Context, kind models.MediaKind, params url.Values) (models.CatalogPage, error) {
	result, err := s.tmdb.discover(ctx, kind, params)
	if err != nil {
		return models.CatalogPage{}, err
	}
	return s.finishPage(result, kind), nil
}

// Recommendations returns titles the catalog recommends for one item.
func (s *Service) Recommendations(ctx context.Context, kind models.MediaKind, id int64, page int) (models.CatalogPage, error) {
	result, err := s.tmdb.recommendations(ctx, kind, id, page)
	if err != nil {
		return models.CatalogPage{}, err
	}
	return s.finishPage(result, kind), nil
}

// Movie returns movie details.
func (s *Service) Movie(ctx context.Context, id int64) (models.MovieDetails, error) {
	movie, err := s.tmdb.movieDetails(ctx, id)
	if err != nil {
		return models.MovieDetails{}, err
	}
	movie.PosterURL = s.images.Poster(movie.PosterPath)
	movie.BackdropURL = s.images.Backdrop(movie.BackdropPath)
	return movie, nil
}

// Show returns series details including the season list.
func (s *Service) Show(ctx context.Context, id int64) (models.ShowDetails, error) {
	show, err := s.tmdb.showDetails(ctx, id)
	if err != nil {
		return models.ShowDetails{}, err
	}
	show.PosterURL = s.images.Poster(show.PosterPath)
	show.BackdropURL = s.images.Backdrop(show.BackdropPath)
	for i := range show.Seasons {
		show.Seasons[i].PosterURL = s.images.Poster(show.Seasons[i].PosterPath)
	}
	return show, nil
}

// Season returns one season with its episodes.
func (s *Service) Season(ctx context.Context, showID int64, season int) (models.SeasonDetails, error) {
	details, err := s.tmdb.seasonDetails(ctx, showID, season)
	if err != nil {
		return models.SeasonDetails{}, err
	}
	details.PosterURL = s.images.Poster(details.PosterPath)
	for i := range details.Episodes {
		details.Episodes[i].StillURL = s.images.Still(details.Episodes[i].StillPath)
	}
	return details, nil
}

// Genres fetches the movie and series genre lists concurrently.
func (s *Service) Genres(ctx context.Context) (models.GenreLists, error) {
	var lists models.GenreLists
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		genres, err := s.tmdb.genres(ctx, models.MediaKindMovie)
		lists.Movie = genres
		return err
	})
	p.Go(func(ctx context.Context) error {
		genres, err := s.tmdb.genres(ctx, models.MediaKindSeries)
		lists.TV = genres
		return err
	})
	if err := p.Wait(); err != nil {
		return models.GenreLists{}, err
	}
	return lists, nil
}
