package watchlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetrack/models"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestMarkEpisodeDefaultsToWatched(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	state, err := svc.MarkEpisodeWatched(ctx, "u1", models.EpisodeWatchUpdate{
		ShowID:        1399,
		SeasonNumber:  intPtr(1),
		EpisodeNumber: intPtr(3),
	})
	require.NoError(t, err)
	assert.True(t, state.Watched)
	require.NotNil(t, state.WatchedAt)
	assert.True(t, state.WatchedAt.Equal(clock.Now()))
}

func TestMarkEpisodeIsIdempotent(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	update := models.EpisodeWatchUpdate{ShowID: 1399, SeasonNumber: intPtr(1), EpisodeNumber: intPtr(3), Watched: boolPtr(true)}

	first, err := svc.MarkEpisodeWatched(ctx, "u1", update)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	second, err := svc.MarkEpisodeWatched(ctx, "u1", update)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.WatchedAt)
	assert.True(t, second.WatchedAt.Equal(*first.WatchedAt))

	rows, err := svc.ListEpisodes(ctx, "u1", 1399)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMarkEpisodeUnwatchClearsTimestamp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.MarkEpisodeWatched(ctx, "u1", models.EpisodeWatchUpdate{ShowID: 10, SeasonNumber: intPtr(2), EpisodeNumber: intPtr(1)})
	require.NoError(t, err)
	state, err := svc.MarkEpisodeWatched(ctx, "u1", models.EpisodeWatchUpdate{ShowID: 10, SeasonNumber: intPtr(2), EpisodeNumber: intPtr(1), Watched: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, state.Watched)
	assert.Nil(t, state.WatchedAt)
}

func TestMarkEpisodeValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.MarkEpisodeWatched(ctx, "u1", models.EpisodeWatchUpdate{SeasonNumber: intPtr(1), EpisodeNumber: intPtr(1)})
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = svc.MarkEpisodeWatched(ctx, "u1", models.EpisodeWatchUpdate{ShowID: 1, EpisodeNumber: intPtr(1)})
	assert.ErrorIs(t, err, ErrInvalidEpisode)
	_, err = svc.MarkSeasonWatched(ctx, "u1", models.SeasonWatchUpdate{ShowID: 1})
	assert.ErrorIs(t, err, ErrInvalidEpisode)
	assert.True(t, IsValidation(err))
}

func TestListEpisodesOrderedAndScoped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	marks := [][2]int{{2, 1}, {1, 2}, {1, 1}}
	for _, m := range marks {
		_, err := svc.MarkEpisodeWatched(ctx, "u1", models.EpisodeWatchUpdate{ShowID: 50, SeasonNumber: intPtr(m[0]), EpisodeNumber: intPtr(m[1])})
		require.NoError(t, err)
	}
	_, err := svc.MarkEpisodeWatched(ctx, "u2", models.EpisodeWatchUpdate{ShowID: 50, SeasonNumber: intPtr(1), EpisodeNumber: intPtr(1)})
	require.NoError(t, err)
	_, err = svc.MarkEpisodeWatched(ctx, "u1", models.EpisodeWatchUpdate{ShowID: 51, SeasonNumber: intPtr(1), EpisodeNumber: intPtr(1)})
	require.NoError(t, err)

	rows, err := svc.ListEpisodes(ctx, "u1", 50)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, [2]int{1, 1}, [2]int{rows[0].SeasonNumber, rows[0].EpisodeNumber})
	assert.Equal(t, [2]int{1, 2}, [2]int{rows[1].SeasonNumber, rows[1].EpisodeNumber})
	assert.Equal(t, [2]int{2, 1}, [2]int{rows[2].SeasonNumber, rows[2].EpisodeNumber})
}

func TestSeasonAndEpisodeLedgersAreIndependent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	show, err := svc.Add(ctx, "u1", models.WatchlistAdd{TMDBID: 1399, MediaType: "series", Title: "Show"})
	require.NoError(t, err)

	for ep := 1; ep <= 3; ep++ {
		_, err := svc.MarkEpisodeWatched(ctx, "u1", models.EpisodeWatchUpdate{ShowID: 1399, SeasonNumber: intPtr(1), EpisodeNumber: intPtr(ep)})
		require.NoError(t, err)
	}
	season, err := svc.MarkSeasonWatched(ctx, "u1", models.SeasonWatchUpdate{ShowID: 1399, SeasonNumber: intPtr(1)})
	require.NoError(t, err)
	assert.True(t, season.Watched)

	stored, err := svc.Get(ctx, "u1", show.ID)
	require.NoError(t, err)
	assert.False(t, stored.Watched, "episode and season marks must not flip the show entry")

	_, err = svc.MarkSeasonWatched(ctx, "u1", models.SeasonWatchUpdate{ShowID: 1399, SeasonNumber: intPtr(1), Watched: boolPtr(false)})
	require.NoError(t, err)
	episodes, err := svc.ListEpisodes(ctx, "u1", 1399)
	require.NoError(t, err)
	for _, ep := range episodes {
		assert.True(t, ep.Watched, "unmarking a season leaves episodes alone")
	}

	require.NoError(t, svc.Remove(ctx, "u1", show.ID))
	episodes, err = svc.ListEpisodes(ctx, "u1", 1399)
	require.NoError(t, err)
	assert.Len(t, episodes, 3, "removing the show entry does not cascade")
	seasons, err := svc.ListSeasons(ctx, "u1", 1399)
	require.NoError(t, err)
	require.Len(t, seasons, 1)
	assert.False(t, seasons[0].Watched)
}
