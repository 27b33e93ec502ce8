package metadata

import (
	"strings"

	"cinetrack/models"
)

const (
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"

	PosterSize   = "w500"
	BackdropSize = "w1280"
	StillSize    = "w300"
)

// ImageResolver turns catalog image paths into absolute URLs.
type ImageResolver struct {
	base string
}

// NewImageResolver returns a resolver rooted at base, or the public image
// host when base is empty.
func NewImageResolver(base string) ImageResolver {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = tmdbImageBaseURL
	}
	return ImageResolver{base: base}
}

// URL returns the absolute image URL, or "" when imagePath is empty.
func (r ImageResolver) URL(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	base := r.base
	if base == "" {
		base = tmdbImageBaseURL
	}
	return base + "/" + size + "/" + strings.TrimPrefix(trimmed, "/")
}

// Poster resolves a poster path.
func (r ImageResolver) Poster(imagePath string) string { return r.URL(imagePath, PosterSize) }

// Backdrop resolves a backdrop path.
func (r ImageResolver) Backdrop(imagePath string) string { return r.URL(imagePath, BackdropSize) }

// Still resolves an episode still path.
func (r ImageResolver) Still(imagePath string) string { return r.URL(imagePath, StillSize) }

func (r ImageResolver) applyItems(items []models.CatalogItem) {
	for i := range items {
		items[i].PosterURL = r.Poster(items[i].PosterPath)
		if items[i].PosterURL == "" && items[i].ProfilePath != "" {
			items[i].PosterURL = r.Poster(items[i].ProfilePath)
		}
		items[i].BackdropURL = r.Backdrop(items[i].BackdropPath)
	}
}

// ApplyEntries fills poster URLs on stored list entries.
func (r ImageResolver) ApplyEntries(entries []models.WatchlistEntry) {
	for i := range entries {
		entries[i].PosterURL = r.Poster(entries[i].PosterPath)
	}
}
