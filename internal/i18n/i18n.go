// Package i18n localizes API messages. The language comes from the request's
// Accept-Language header and falls back to the configured server locale.
package i18n

import (
	"log"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a translatable message.
type Key string

const (
	InvalidBody         Key = "invalid_body"
	MissingFields       Key = "missing_fields"
	InvalidID           Key = "invalid_id"
	InvalidMediaType    Key = "invalid_media_type"
	InvalidReleaseDate  Key = "invalid_release_date"
	InvalidEpisode      Key = "invalid_episode"
	InvalidWatched      Key = "invalid_watched"
	InvalidCriteria     Key = "invalid_criteria"
	QueryRequired       Key = "query_required"
	UnknownFeed         Key = "unknown_feed"
	Conflict            Key = "conflict"
	EntryNotFound       Key = "entry_not_found"
	CatalogNotFound     Key = "catalog_not_found"
	Upstream            Key = "upstream"
	Internal            Key = "internal"
	Unauthorized        Key = "unauthorized"
	RateLimited         Key = "rate_limited"
	NeedsLikes          Key = "needs_likes"
	Removed             Key = "removed"
	FeedReset           Key = "feed_reset"
	FeedNotLoaded       Key = "feed_not_loaded"
	CatalogUnconfigured Key = "catalog_unconfigured"
	RouteNotFound       Key = "route_not_found"
)

var messages = map[Key]map[language.Tag]string{
	InvalidBody: {
		language.English: "Invalid request body",
		language.Spanish: "Cuerpo de la petición no válido",
	},
	MissingFields: {
		language.English: "tmdb_id, media_type and title are required",
		language.Spanish: "tmdb_id, media_type y title son obligatorios",
	},
	InvalidID: {
		language.English: "Invalid id",
		language.Spanish: "Identificador no válido",
	},
	InvalidMediaType: {
		language.English: "media_type must be movie or series",
		language.Spanish: "media_type debe ser movie o series",
	},
	InvalidReleaseDate: {
		language.English: "release_date must be formatted as YYYY-MM-DD",
		language.Spanish: "release_date debe tener el formato AAAA-MM-DD",
	},
	InvalidEpisode: {
		language.English: "tmdb_show_id, season_number and episode_number are required",
		language.Spanish: "tmdb_show_id, season_number y episode_number son obligatorios",
	},
	InvalidWatched: {
		language.English: "watched must be true or false",
		language.Spanish: "watched debe ser true o false",
	},
	InvalidCriteria: {
		language.English: "Invalid filter parameters",
		language.Spanish: "Parámetros de filtro no válidos",
	},
	QueryRequired: {
		language.English: "A search query is required",
		language.Spanish: "Se requiere un término de búsqueda",
	},
	UnknownFeed: {
		language.English: "Unknown feed",
		language.Spanish: "Listado desconocido",
	},
	Conflict: {
		language.English: "This item is already in your list",
		language.Spanish: "Este elemento ya está en tu lista",
	},
	EntryNotFound: {
		language.English: "Item not found in your list",
		language.Spanish: "Elemento no encontrado en tu lista",
	},
	CatalogNotFound: {
		language.English: "Title not found",
		language.Spanish: "Título no encontrado",
	},
	Upstream: {
		language.English: "Could not fetch data from the catalog",
		language.Spanish: "Error al obtener datos del catálogo",
	},
	Internal: {
		language.English: "Internal server error",
		language.Spanish: "Error interno del servidor",
	},
	Unauthorized: {
		language.English: "Authentication required",
		language.Spanish: "Autenticación requerida",
	},
	RateLimited: {
		language.English: "Too many requests, please try again later",
		language.Spanish: "Demasiadas peticiones, inténtalo más tarde",
	},
	NeedsLikes: {
		language.English: "Like some titles to get personalised recommendations",
		language.Spanish: "Marca algunos títulos como favoritos para obtener recomendaciones personalizadas",
	},
	Removed: {
		language.English: "Removed from your list",
		language.Spanish: "Eliminado de tu lista",
	},
	FeedReset: {
		language.English: "Listing reset",
		language.Spanish: "Listado reiniciado",
	},
	FeedNotLoaded: {
		language.English: "Listing was not loaded",
		language.Spanish: "El listado no estaba cargado",
	},
	CatalogUnconfigured: {
		language.English: "The catalog is not configured",
		language.Spanish: "El catálogo no está configurado",
	},
	RouteNotFound: {
		language.English: "Endpoint not found",
		language.Spanish: "Endpoint no encontrado",
	},
}

var supported = []language.Tag{language.English, language.Spanish}

// Translator resolves messages for a request language.
type Translator struct {
	catalog  *catalog.Builder
	matcher  language.Matcher
	fallback language.Tag
}

// New builds a translator whose fallback is locale, or Spanish when locale
// is not one of the supported languages.
func New(locale string) *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, byTag := range messages {
		for tag, text := range byTag {
			if err := b.SetString(tag, string(key), text); err != nil {
				log.Printf("[i18n] register %s/%s: %v", tag, key, err)
			}
		}
	}

	t := &Translator{
		catalog:  b,
		matcher:  language.NewMatcher(supported),
		fallback: language.Spanish,
	}
	if tag, ok := t.match(locale); ok {
		t.fallback = tag
	}
	return t
}

func (t *Translator) match(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return language.Und, false
	}
	_, index, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return language.Und, false
	}
	return supported[index], true
}

// Language picks the message language for an Accept-Language header value.
func (t *Translator) Language(acceptLanguage string) language.Tag {
	if tag, ok := t.match(acceptLanguage); ok {
		return tag
	}
	return t.fallback
}

// Message returns the text for key in the language chosen by acceptLanguage.
func (t *Translator) Message(acceptLanguage string, key Key, args ...any) string {
	p := message.NewPrinter(t.Language(acceptLanguage), message.Catalog(t.catalog))
	return p.Sprintf(string(key), args...)
}

// ForRequest is Message with the header read from r.
func (t *Translator) ForRequest(r *http.Request, key Key, args ...any) string {
	return t.Message(r.Header.Get("Accept-Language"), key, args...)
}
