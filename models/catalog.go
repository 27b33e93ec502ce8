package models

// ItemKey identifies a catalog item. Movie and TV ids share one id space,
// so the kind is part of the identity.
type ItemKey struct {
	ID   int64
	Kind MediaKind
}

// CatalogItem is a single result returned by the external catalog.
type CatalogItem struct {
	ID               int64   `json:"id"`
	MediaType        string  `json:"media_type,omitempty"` // movie | tv | person, as the catalog reports it
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalName     string  `json:"original_name,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	ProfilePath      string  `json:"profile_path,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Adult            bool    `json:"adult,omitempty"`

	PosterURL   string `json:"poster_url,omitempty"`
	BackdropURL string `json:"backdrop_url,omitempty"`

	WatchState *ItemWatchState `json:"watch_state,omitempty"`
}

// DisplayTitle returns the movie title or the series name.
func (c CatalogItem) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// ItemWatchState annotates a catalog item with the caller's list state.
type ItemWatchState struct {
	EntryID     int64     `json:"entry_id"`
	InWatchlist bool      `json:"in_watchlist"`
	Watched     bool      `json:"watched"`
	Liked       LikeState `json:"liked"`
}

// CatalogPage is one page of a paginated catalog response.
type CatalogPage struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
	Results      []CatalogItem `json:"results"`
}

// Genre is a catalog genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreLists holds genre lists for both media kinds.
type GenreLists struct {
	Movie []Genre `json:"movie"`
	TV    []Genre `json:"tv"`
}

// MovieDetails is the subset of the catalog's movie resource the API exposes.
type MovieDetails struct {
	ID               int64   `json:"id"`
	IMDBID           string  `json:"imdb_id,omitempty"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	Tagline          string  `json:"tagline,omitempty"`
	Status           string  `json:"status,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	Runtime          int     `json:"runtime,omitempty"`
	Genres           []Genre `json:"genres,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Homepage         string  `json:"homepage,omitempty"`

	PosterURL   string `json:"poster_url,omitempty"`
	BackdropURL string `json:"backdrop_url,omitempty"`
}

// SeasonSummary is a season entry inside show details.
type SeasonSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Overview     string `json:"overview,omitempty"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date,omitempty"`
	PosterPath   string `json:"poster_path,omitempty"`
	PosterURL    string `json:"poster_url,omitempty"`
}

// ShowDetails is the subset of the catalog's TV resource the API exposes.
type ShowDetails struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"original_name,omitempty"`
	Overview         string          `json:"overview,omitempty"`
	Tagline          string          `json:"tagline,omitempty"`
	Status           string          `json:"status,omitempty"`
	FirstAirDate     string          `json:"first_air_date,omitempty"`
	LastAirDate      string          `json:"last_air_date,omitempty"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
	Genres           []Genre         `json:"genres,omitempty"`
	Seasons          []SeasonSummary `json:"seasons,omitempty"`
	OriginalLanguage string          `json:"original_language,omitempty"`
	PosterPath       string          `json:"poster_path,omitempty"`
	BackdropPath     string          `json:"backdrop_path,omitempty"`
	Popularity       float64         `json:"popularity"`
	VoteAverage      float64         `json:"vote_average"`
	VoteCount        int             `json:"vote_count"`

	PosterURL   string `json:"poster_url,omitempty"`
	BackdropURL string `json:"backdrop_url,omitempty"`
}

// Episode is one episode inside a season response.
type Episode struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview,omitempty"`
	AirDate       string  `json:"air_date,omitempty"`
	EpisodeNumber int     `json:"episode_number"`
	SeasonNumber  int     `json:"season_number"`
	Runtime       int     `json:"runtime,omitempty"`
	StillPath     string  `json:"still_path,omitempty"`
	VoteAverage   float64 `json:"vote_average"`

	StillURL string `json:"still_url,omitempty"`
}

// SeasonDetails is a season with its episode list.
type SeasonDetails struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview,omitempty"`
	AirDate      string    `json:"air_date,omitempty"`
	SeasonNumber int       `json:"season_number"`
	PosterPath   string    `json:"poster_path,omitempty"`
	Episodes     []Episode `json:"episodes"`

	PosterURL string `json:"poster_url,omitempty"`
}
