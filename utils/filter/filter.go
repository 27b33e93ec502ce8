package filter

import (
	"strings"

	"github.com/mozillazg/go-unidecode"

	"cinetrack/models"
)

// WatchSnapshot indexes a user's list entries by catalog identity.
type WatchSnapshot struct {
	entries map[models.ItemKey]models.WatchlistEntry
}

// NewWatchSnapshot builds a snapshot from list entries. Later duplicates of
// the same key replace earlier ones.
func NewWatchSnapshot(entries []models.WatchlistEntry) WatchSnapshot {
	snapshot := WatchSnapshot{entries: make(map[models.ItemKey]models.WatchlistEntry, len(entries))}
	for _, entry := range entries {
		snapshot.entries[entry.Key()] = entry
	}
	return snapshot
}

// Lookup returns the entry stored for key, if any.
func (s WatchSnapshot) Lookup(key models.ItemKey) (models.WatchlistEntry, bool) {
	if s.entries == nil {
		return models.WatchlistEntry{}, false
	}
	entry, ok := s.entries[key]
	return entry, ok
}

// Len reports how many entries the snapshot holds.
func (s WatchSnapshot) Len() int {
	return len(s.entries)
}

// KindResolver decides which media kind a catalog item belongs to.
type KindResolver func(item models.CatalogItem) (models.MediaKind, bool)

// DefaultKind resolves items by the catalog's media_type and falls back to
// fallback for single-kind feeds that omit it. Items that are neither a
// movie nor a series (people in multi search) do not resolve.
func DefaultKind(fallback models.MediaKind) KindResolver {
	return func(item models.CatalogItem) (models.MediaKind, bool) {
		if item.MediaType == "" {
			return fallback, fallback.Valid()
		}
		kind, err := models.ParseMediaKind(item.MediaType)
		if err != nil {
			return "", false
		}
		return kind, true
	}
}

// ExcludeWatched keeps items that have no entry or an entry not yet watched.
// Order is preserved and the input slice is not modified.
func ExcludeWatched(items []models.CatalogItem, snapshot WatchSnapshot, resolve KindResolver) []models.CatalogItem {
	kept := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		kind, ok := resolve(item)
		if ok {
			if entry, found := snapshot.Lookup(models.ItemKey{ID: item.ID, Kind: kind}); found && entry.Watched {
				continue
			}
		}
		kept = append(kept, item)
	}
	return kept
}

// IDSet is a set of catalog ids of a single kind.
type IDSet map[int64]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...int64) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// ExcludeIDs drops every item whose id is in ids, preserving order.
func ExcludeIDs(items []models.CatalogItem, ids IDSet) []models.CatalogItem {
	kept := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if ids.Has(item.ID) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// DedupeByID keeps the first occurrence of every id.
func DedupeByID(items []models.CatalogItem) []models.CatalogItem {
	seen := make(map[int64]struct{}, len(items))
	kept := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		kept = append(kept, item)
	}
	return kept
}

// Truncate caps items at limit. A non-positive limit leaves items untouched.
func Truncate(items []models.CatalogItem, limit int) []models.CatalogItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// Annotate returns a copy of items carrying the caller's list state.
func Annotate(items []models.CatalogItem, snapshot WatchSnapshot, resolve KindResolver) []models.CatalogItem {
	out := make([]models.CatalogItem, len(items))
	for i, item := range items {
		out[i] = item
		kind, ok := resolve(item)
		if !ok {
			continue
		}
		state := &models.ItemWatchState{}
		if entry, found := snapshot.Lookup(models.ItemKey{ID: item.ID, Kind: kind}); found {
			state.EntryID = entry.ID
			state.InWatchlist = true
			state.Watched = entry.Watched
			state.Liked = entry.Liked
		}
		out[i].WatchState = state
	}
	return out
}

// NormalizeQuery folds free text into a stable cache key component:
// transliterated to ASCII, lower-cased and with whitespace collapsed.
func NormalizeQuery(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	folded := unidecode.Unidecode(value)
	if strings.TrimSpace(folded) == "" {
		folded = value
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
