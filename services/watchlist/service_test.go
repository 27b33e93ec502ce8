package watchlist

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetrack/internal/database"
	"cinetrack/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{
		Driver:       database.DriverSQLite,
		DatabasePath: filepath.Join(t.TempDir(), "watchlist.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(db)
	svc.SetClock(clock.Now)
	return svc, clock
}

func addMovie(t *testing.T, svc *Service, user string, id int64) models.WatchlistEntry {
	t.Helper()
	entry, err := svc.Add(context.Background(), user, models.WatchlistAdd{
		TMDBID:    id,
		MediaType: "movie",
		Title:     "Movie",
	})
	require.NoError(t, err)
	return entry
}

func TestAddCreatesUnwatchedUnratedEntry(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.Add(context.Background(), "u1", models.WatchlistAdd{
		TMDBID:      100,
		MediaType:   "movie",
		Title:       "Dune",
		PosterPath:  "/dune.jpg",
		ReleaseDate: "2021-10-22",
	})
	require.NoError(t, err)

	assert.NotZero(t, entry.ID)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, models.MediaKindMovie, entry.MediaType)
	assert.Equal(t, "/dune.jpg", entry.PosterPath)
	assert.Equal(t, "2021-10-22", entry.ReleaseDate)
	assert.False(t, entry.Watched)
	assert.Equal(t, models.LikeUnrated, entry.Liked)
	assert.Nil(t, entry.WatchedAt)
}

func TestAddAcceptsCatalogSeriesSpelling(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.Add(context.Background(), "u1", models.WatchlistAdd{TMDBID: 1399, MediaType: "tv", Title: "Show"})
	require.NoError(t, err)
	assert.Equal(t, models.MediaKindSeries, entry.MediaType)
}

func TestAddValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		user  string
		input models.WatchlistAdd
		want  error
	}{
		{"missing user", "", models.WatchlistAdd{TMDBID: 1, MediaType: "movie", Title: "x"}, ErrUserIDRequired},
		{"missing id", "u1", models.WatchlistAdd{MediaType: "movie", Title: "x"}, ErrInvalidID},
		{"bad kind", "u1", models.WatchlistAdd{TMDBID: 1, MediaType: "book", Title: "x"}, ErrInvalidMediaKind},
		{"missing title", "u1", models.WatchlistAdd{TMDBID: 1, MediaType: "movie", Title: "  "}, ErrTitleRequired},
		{"bad date", "u1", models.WatchlistAdd{TMDBID: 1, MediaType: "movie", Title: "x", ReleaseDate: "soon"}, ErrInvalidReleaseDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tt.user, tt.input)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestAddDuplicateReturnsExistingWithConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := addMovie(t, svc, "u1", 100)
	_, err := svc.SetWatched(ctx, "u1", first.ID, true)
	require.NoError(t, err)

	again, err := svc.Add(ctx, "u1", models.WatchlistAdd{TMDBID: 100, MediaType: "movie", Title: "Other"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Movie", again.Title, "existing row must not be overwritten")
	assert.True(t, again.Watched)

	list, err := svc.List(ctx, "u1", models.WatchlistFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSameIDDifferentKindIsDistinct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	addMovie(t, svc, "u1", 5)
	_, err := svc.Add(ctx, "u1", models.WatchlistAdd{TMDBID: 5, MediaType: "series", Title: "Show"})
	require.NoError(t, err)

	// and another user may list the same item
	addMovie(t, svc, "u2", 5)
}

func TestSetWatchedTimestamps(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	entry := addMovie(t, svc, "u1", 100)

	watched, err := svc.SetWatched(ctx, "u1", entry.ID, true)
	require.NoError(t, err)
	require.True(t, watched.Watched)
	require.NotNil(t, watched.WatchedAt)
	firstStamp := *watched.WatchedAt
	assert.True(t, firstStamp.Equal(clock.Now()))

	clock.Advance(time.Hour)
	again, err := svc.SetWatched(ctx, "u1", entry.ID, true)
	require.NoError(t, err)
	require.NotNil(t, again.WatchedAt)
	assert.True(t, again.WatchedAt.Equal(firstStamp), "repeating watched=true must keep the original timestamp")

	cleared, err := svc.SetWatched(ctx, "u1", entry.ID, false)
	require.NoError(t, err)
	assert.False(t, cleared.Watched)
	assert.Nil(t, cleared.WatchedAt)
}

func TestSetLikedIsIndependentOfWatched(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	entry := addMovie(t, svc, "u1", 100)

	liked, err := svc.SetLiked(ctx, "u1", entry.ID, models.LikeLiked)
	require.NoError(t, err)
	assert.Equal(t, models.LikeLiked, liked.Liked)
	assert.False(t, liked.Watched)
	assert.NotNil(t, liked.LikedAt)

	disliked, err := svc.SetLiked(ctx, "u1", entry.ID, models.LikeDisliked)
	require.NoError(t, err)
	assert.Equal(t, models.LikeDisliked, disliked.Liked)
	assert.Nil(t, disliked.LikedAt)

	cleared, err := svc.SetLiked(ctx, "u1", entry.ID, models.LikeUnrated)
	require.NoError(t, err)
	assert.Equal(t, models.LikeUnrated, cleared.Liked)
}

func TestOwnershipIsEnforced(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	entry := addMovie(t, svc, "owner", 100)

	_, err := svc.SetWatched(ctx, "intruder", entry.ID, true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.SetLiked(ctx, "intruder", entry.ID, models.LikeLiked)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Remove(ctx, "intruder", entry.ID), ErrNotFound)
	_, err = svc.Get(ctx, "intruder", entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := svc.Get(ctx, "owner", entry.ID)
	require.NoError(t, err)
	assert.False(t, stored.Watched)
	assert.Equal(t, models.LikeUnrated, stored.Liked)
}

func TestRemove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	keep := addMovie(t, svc, "u1", 1)
	drop := addMovie(t, svc, "u1", 2)

	require.NoError(t, svc.Remove(ctx, "u1", drop.ID))
	assert.ErrorIs(t, svc.Remove(ctx, "u1", drop.ID), ErrNotFound)

	list, err := svc.List(ctx, "u1", models.WatchlistFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func TestListOrderAndFilters(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	a := addMovie(t, svc, "u1", 1)
	clock.Advance(time.Minute)
	b := addMovie(t, svc, "u1", 2)
	clock.Advance(time.Minute)
	c, err := svc.Add(ctx, "u1", models.WatchlistAdd{TMDBID: 3, MediaType: "series", Title: "Show"})
	require.NoError(t, err)

	_, err = svc.SetWatched(ctx, "u1", a.ID, true)
	require.NoError(t, err)
	_, err = svc.SetLiked(ctx, "u1", b.ID, models.LikeLiked)
	require.NoError(t, err)

	all, err := svc.List(ctx, "u1", models.WatchlistFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	watched := true
	onlyWatched, err := svc.List(ctx, "u1", models.WatchlistFilter{Watched: &watched})
	require.NoError(t, err)
	require.Len(t, onlyWatched, 1)
	assert.Equal(t, a.ID, onlyWatched[0].ID)

	liked := models.LikeLiked
	onlyLiked, err := svc.List(ctx, "u1", models.WatchlistFilter{Liked: &liked})
	require.NoError(t, err)
	require.Len(t, onlyLiked, 1)
	assert.Equal(t, b.ID, onlyLiked[0].ID)

	unrated := models.LikeUnrated
	onlyUnrated, err := svc.List(ctx, "u1", models.WatchlistFilter{Liked: &unrated})
	require.NoError(t, err)
	assert.Len(t, onlyUnrated, 2)

	series, err := svc.List(ctx, "u1", models.WatchlistFilter{Kind: models.MediaKindSeries})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, c.ID, series[0].ID)

	other, err := svc.List(ctx, "u2", models.WatchlistFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestConcurrentAddsYieldSingleRow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, "u1", models.WatchlistAdd{TMDBID: 77, MediaType: "movie", Title: "Race"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 7, conflicts)
}

func TestIDHelpers(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	first := addMovie(t, svc, "u1", 1)
	second := addMovie(t, svc, "u1", 2)
	addMovie(t, svc, "u1", 3)

	_, err := svc.SetWatched(ctx, "u1", first.ID, true)
	require.NoError(t, err)
	_, err = svc.SetLiked(ctx, "u1", first.ID, models.LikeLiked)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.SetLiked(ctx, "u1", second.ID, models.LikeLiked)
	require.NoError(t, err)

	watched, err := svc.WatchedIDs(ctx, "u1", models.MediaKindMovie)
	require.NoError(t, err)
	assert.True(t, watched.Has(1))
	assert.Len(t, watched, 1)

	listed, err := svc.ListedIDs(ctx, "u1", models.MediaKindMovie)
	require.NoError(t, err)
	assert.Len(t, listed, 3)

	liked, err := svc.LikedIDs(ctx, "u1", models.MediaKindMovie, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, liked, "most recently liked first")

	limited, err := svc.LikedIDs(ctx, "u1", models.MediaKindMovie, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, limited)

	none, err := svc.LikedIDs(ctx, "u1", models.MediaKindSeries, 3)
	require.NoError(t, err)
	assert.Empty(t, none)

	snapshot, err := svc.Snapshot(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.Len())
	entry, ok := snapshot.Lookup(models.ItemKey{ID: 1, Kind: models.MediaKindMovie})
	require.True(t, ok)
	assert.True(t, entry.Watched)
}
