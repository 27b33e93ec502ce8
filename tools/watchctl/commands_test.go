package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetrack/config"
	"cinetrack/internal/auth"
	"cinetrack/internal/database"
	"cinetrack/models"
	"cinetrack/services/watchlist"
)

func writeSettings(t *testing.T) (string, config.Settings) {
	t.Helper()
	dir := t.TempDir()
	settings := config.DefaultSettings()
	settings.Database.Path = filepath.Join(dir, "watch.db")
	settings.Auth.JWTSecret = "cli-secret"
	settings.Log.File = ""

	data, err := json.Marshal(settings)
	require.NoError(t, err)
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, settings
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateAndList(t *testing.T) {
	path, settings := writeSettings(t)

	out, err := run(t, "--config", path, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations applied (sqlite3)")

	out, err = run(t, "--config", path, "list", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Watchlist: empty")

	db, err := database.Open(context.Background(), database.Config{Driver: database.DriverSQLite, DatabasePath: settings.Database.Path})
	require.NoError(t, err)
	_, err = watchlist.NewService(db).Add(context.Background(), "u1", models.WatchlistAdd{TMDBID: 603, MediaType: "movie", Title: "The Matrix"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err = run(t, "--config", path, "list", "--user", "u1", "--kind", "movie")
	require.NoError(t, err)
	assert.Contains(t, out, "The Matrix")
	assert.Contains(t, out, "603")

	_, err = run(t, "--config", path, "list", "--user", "u1", "--kind", "book")
	assert.Error(t, err)
}

func TestEpisodesCommand(t *testing.T) {
	path, settings := writeSettings(t)

	db, err := database.Open(context.Background(), database.Config{Driver: database.DriverSQLite, DatabasePath: settings.Database.Path})
	require.NoError(t, err)
	season, episode := 1, 4
	_, err = watchlist.NewService(db).MarkEpisodeWatched(context.Background(), "u1", models.EpisodeWatchUpdate{
		ShowID: 1399, SeasonNumber: &season, EpisodeNumber: &episode,
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := run(t, "--config", path, "episodes", "--user", "u1", "--show", "1399")
	require.NoError(t, err)
	assert.Contains(t, out, "S01E04")

	out, err = run(t, "--config", path, "episodes", "--user", "u1", "--show", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "No progress recorded for show 7")
}

func TestTokenCommand(t *testing.T) {
	path, _ := writeSettings(t)

	out, err := run(t, "--config", path, "token", "--user", "u9")
	require.NoError(t, err)

	userID, err := auth.NewVerifier("cli-secret").Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u9", userID)

	_, err = run(t, "--config", path, "token")
	assert.Error(t, err, "user flag is required")
}
