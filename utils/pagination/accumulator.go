// Package pagination merges successive pages of one logical catalog query
// into a single duplicate-free list.
package pagination

import (
	"sort"
	"sync"

	"cinetrack/models"
)

// MergeResult describes what a MergePage call did.
type MergeResult struct {
	Page       int  `json:"page"`
	Added      int  `json:"added"`
	Duplicate  bool `json:"duplicate_page"`
	TotalPages int  `json:"total_pages"`
}

// Accumulator owns the merged view of one query. Callers must use a fresh
// accumulator, or call Reset, whenever the query changes.
type Accumulator struct {
	mu         sync.Mutex
	kind       models.MediaKind
	items      []models.CatalogItem
	seen       map[models.ItemKey]struct{}
	pages      map[int]struct{}
	totalPages int
}

// NewAccumulator returns an empty accumulator. kind tags items of single-kind
// feeds that carry no media_type; pass "" for mixed feeds.
func NewAccumulator(kind models.MediaKind) *Accumulator {
	a := &Accumulator{kind: kind}
	a.resetLocked()
	return a
}

// Reset forgets everything merged so far.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

func (a *Accumulator) resetLocked() {
	a.items = nil
	a.seen = make(map[models.ItemKey]struct{})
	a.pages = make(map[int]struct{})
	a.totalPages = 0
}

// MergePage folds one page of results in. Page 1 into an empty accumulation
// is taken as-is; any other page appends only identities not seen before,
// in response order. A page already merged is ignored.
func (a *Accumulator) MergePage(page, totalPages int, items []models.CatalogItem) MergeResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := MergeResult{Page: page}
	if _, done := a.pages[page]; done {
		result.Duplicate = true
		result.TotalPages = a.totalPages
		return result
	}

	if page == 1 && len(a.items) == 0 {
		a.items = make([]models.CatalogItem, 0, len(items))
		for _, item := range items {
			item = a.tag(item)
			a.seen[a.key(item)] = struct{}{}
			a.items = append(a.items, item)
		}
		result.Added = len(items)
	} else {
		for _, item := range items {
			item = a.tag(item)
			key := a.key(item)
			if _, dup := a.seen[key]; dup {
				continue
			}
			a.seen[key] = struct{}{}
			a.items = append(a.items, item)
			result.Added++
		}
	}

	a.pages[page] = struct{}{}
	if totalPages > 0 {
		a.totalPages = totalPages
	}
	result.TotalPages = a.totalPages
	return result
}

func (a *Accumulator) tag(item models.CatalogItem) models.CatalogItem {
	if item.MediaType == "" && a.kind.Valid() {
		item.MediaType = a.kind.CatalogPath()
	}
	return item
}

// key treats the catalog's "tv" and the stored "series" as the same kind.
// Items of other types (people) keep their raw type so they never collide
// with a movie or series of the same id.
func (a *Accumulator) key(item models.CatalogItem) models.ItemKey {
	if kind, err := models.ParseMediaKind(item.MediaType); err == nil {
		return models.ItemKey{ID: item.ID, Kind: kind}
	}
	return models.ItemKey{ID: item.ID, Kind: models.MediaKind(item.MediaType)}
}

// Items returns a copy of the merged list.
func (a *Accumulator) Items() []models.CatalogItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.CatalogItem, len(a.items))
	copy(out, a.items)
	return out
}

// Len reports how many items have been merged.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// HasMore reports whether a page beyond the highest merged one exists.
func (a *Accumulator) HasMore() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.pages) == 0 {
		return true
	}
	return a.highestLocked() < a.totalPages
}

// NextPage returns the page after the highest merged one.
func (a *Accumulator) NextPage() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.highestLocked() + 1
}

func (a *Accumulator) highestLocked() int {
	highest := 0
	for p := range a.pages {
		if p > highest {
			highest = p
		}
	}
	return highest
}

// HasPage reports whether page has already been merged.
func (a *Accumulator) HasPage(page int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pages[page]
	return ok
}

// MergedPages returns the merged page numbers in ascending order.
func (a *Accumulator) MergedPages() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	pages := make([]int, 0, len(a.pages))
	for p := range a.pages {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// TotalPages is the last total reported by the catalog.
func (a *Accumulator) TotalPages() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalPages
}
