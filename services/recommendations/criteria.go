package recommendations

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"cinetrack/models"
)

// ErrInvalidCriteria is returned when a query value cannot be coerced.
var ErrInvalidCriteria = errors.New("invalid recommendation criteria")

const (
	defaultVoteMin = 6
	defaultVoteMax = 10
	sortByPopular  = "popularity.desc"
)

// Criteria are the user-facing discovery filters. Values are coerced but not
// range checked; the catalog decides what to do with out-of-range input.
type Criteria struct {
	Kind          models.MediaKind
	YearFrom      *int
	YearTo        *int
	VoteMin       float64
	VoteMax       float64
	Genres        string
	ExcludeGenres string
	Page          int
}

// DefaultCriteria returns movie discovery with a 6-10 score window.
func DefaultCriteria() Criteria {
	return Criteria{
		Kind:    models.MediaKindMovie,
		VoteMin: defaultVoteMin,
		VoteMax: defaultVoteMax,
		Page:    1,
	}
}

// ParseCriteria reads criteria from query parameters. Empty values keep
// their defaults.
func ParseCriteria(q url.Values) (Criteria, error) {
	c := DefaultCriteria()

	if v := strings.TrimSpace(q.Get("media_type")); v != "" {
		kind, err := models.ParseMediaKind(v)
		if err != nil {
			return Criteria{}, fmt.Errorf("%w: media_type %q", ErrInvalidCriteria, v)
		}
		c.Kind = kind
	}

	var err error
	if c.YearFrom, err = optionalInt(q, "year_from"); err != nil {
		return Criteria{}, err
	}
	if c.YearTo, err = optionalInt(q, "year_to"); err != nil {
		return Criteria{}, err
	}
	if c.VoteMin, err = floatOr(q, "vote_average_min", defaultVoteMin); err != nil {
		return Criteria{}, err
	}
	if c.VoteMax, err = floatOr(q, "vote_average_max", defaultVoteMax); err != nil {
		return Criteria{}, err
	}
	if c.Page, err = ParsePage(q.Get("page")); err != nil {
		return Criteria{}, err
	}

	c.Genres = strings.TrimSpace(q.Get("genres"))
	c.ExcludeGenres = strings.TrimSpace(q.Get("exclude_genres"))
	return c, nil
}

// ParsePage coerces a page number; empty means 1.
func ParsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: page %q", ErrInvalidCriteria, raw)
	}
	if page < 1 {
		page = 1
	}
	return page, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidCriteria, key, raw)
	}
	return &v, nil
}

func floatOr(q url.Values, key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidCriteria, key, raw)
	}
	return v, nil
}

// Params maps the criteria onto catalog discover parameters.
func (c Criteria) Params() url.Values {
	params := url.Values{}
	page := c.Page
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", sortByPopular)
	params.Set("vote_average.gte", formatScore(c.VoteMin))
	params.Set("vote_average.lte", formatScore(c.VoteMax))

	dateField := "primary_release_date"
	if c.Kind == models.MediaKindSeries {
		dateField = "first_air_date"
	}
	if c.YearFrom != nil {
		params.Set(dateField+".gte", fmt.Sprintf("%04d-01-01", *c.YearFrom))
	}
	if c.YearTo != nil {
		params.Set(dateField+".lte", fmt.Sprintf("%04d-12-31", *c.YearTo))
	}
	if c.Genres != "" {
		params.Set("with_genres", c.Genres)
	}
	if c.ExcludeGenres != "" {
		params.Set("without_genres", c.ExcludeGenres)
	}
	return params
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
