package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"cinetrack/handlers"
	"cinetrack/internal/auth"
	"cinetrack/internal/i18n"
)

// Handlers groups the route handlers registered on the router.
type Handlers struct {
	Watchlist       *handlers.WatchlistHandler
	Recommendations *handlers.RecommendationsHandler
	Catalog         *handlers.CatalogHandler
	Browse          *handlers.BrowseHandler
}

// Register mounts every API route on r. All routes but /health require a
// bearer token; the rate limiter, when set, covers everything.
func Register(r *mux.Router, h Handlers, verifier *auth.Verifier, limiter *IPRateLimiter, messages *i18n.Translator) {
	r.Use(RequestLogger)
	if limiter != nil {
		r.Use(RateLimitMiddleware(limiter, messages))
	}
	r.Use(securityHeaders)
	r.NotFoundHandler = handlers.NotFound(messages)

	protected := r.PathPrefix("/").Subrouter()
	protected.Use(AuthMiddleware(verifier, messages))

	if wl := h.Watchlist; wl != nil {
		protected.HandleFunc("/watchlist", wl.List).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/watchlist/add", wl.Add).Methods(http.MethodPost, http.MethodOptions)
		protected.HandleFunc("/watchlist/episodes/watch", wl.MarkEpisode).Methods(http.MethodPost, http.MethodOptions)
		protected.HandleFunc("/watchlist/seasons/watch", wl.MarkSeason).Methods(http.MethodPost, http.MethodOptions)
		protected.HandleFunc("/watchlist/episodes/{showId}", wl.ListEpisodes).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/watchlist/seasons/{showId}", wl.ListSeasons).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/watchlist/{id}/watch", wl.SetWatched).Methods(http.MethodPut, http.MethodOptions)
		protected.HandleFunc("/watchlist/{id}/like", wl.SetLiked).Methods(http.MethodPut, http.MethodOptions)
		protected.HandleFunc("/watchlist/{id}", wl.Remove).Methods(http.MethodDelete, http.MethodOptions)
	}

	if rec := h.Recommendations; rec != nil {
		protected.HandleFunc("/recommendations", rec.Discover).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/recommendations/based-on-likes", rec.BasedOnLikes).Methods(http.MethodGet, http.MethodOptions)
	}

	if cat := h.Catalog; cat != nil {
		protected.HandleFunc("/movies/search", cat.Search).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/movies/popular/movies", cat.PopularMovies).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/movies/popular/tv", cat.PopularTV).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/movies/movie/{id}", cat.Movie).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/movies/tv/{id}", cat.Show).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/movies/tv/{id}/season/{season}", cat.Season).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/movies/genres", cat.Genres).Methods(http.MethodGet, http.MethodOptions)
	}

	if br := h.Browse; br != nil {
		protected.HandleFunc("/browse/{feed}", br.Fetch).Methods(http.MethodGet, http.MethodOptions)
		protected.HandleFunc("/browse/{feed}", br.Reset).Methods(http.MethodDelete)
	}
}

// securityHeaders sets the conservative response headers an API needs.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
