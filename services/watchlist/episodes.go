package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cinetrack/internal/database"
	"cinetrack/models"
)

// MarkEpisodeWatched records the watched flag of one episode, creating the
// row on first use. It never touches the show's list entry.
func (s *Service) MarkEpisodeWatched(ctx context.Context, userID string, update models.EpisodeWatchUpdate) (models.EpisodeWatchState, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return models.EpisodeWatchState{}, err
	}
	if update.ShowID <= 0 {
		return models.EpisodeWatchState{}, ErrInvalidID
	}
	if update.SeasonNumber == nil || update.EpisodeNumber == nil || *update.SeasonNumber < 0 || *update.EpisodeNumber < 0 {
		return models.EpisodeWatchState{}, ErrInvalidEpisode
	}
	watched := models.WatchedOrDefault(update.Watched)
	season, episode := *update.SeasonNumber, *update.EpisodeNumber

	state, err := s.upsertEpisode(ctx, userID, update.ShowID, season, episode, watched)
	if err != nil && database.IsUniqueViolation(err) {
		// A concurrent request created the row first; apply as an update.
		state, err = s.upsertEpisode(ctx, userID, update.ShowID, season, episode, watched)
	}
	return state, err
}

func (s *Service) upsertEpisode(ctx context.Context, userID string, showID int64, season, episode int, watched bool) (models.EpisodeWatchState, error) {
	tx, err := s.db.Connection().BeginTx(ctx, nil)
	if err != nil {
		return models.EpisodeWatchState{}, fmt.Errorf("begin mark episode: %w", err)
	}
	defer tx.Rollback()

	selectQuery := s.db.Rebind(`SELECT id, user_id, tmdb_show_id, season_number, episode_number, watched, watched_at
		FROM episodes_watched WHERE user_id = ? AND tmdb_show_id = ? AND season_number = ? AND episode_number = ?`)
	existing, err := scanEpisode(tx.QueryRowContext(ctx, selectQuery, userID, showID, season, episode))

	switch {
	case errors.Is(err, sql.ErrNoRows):
		insert := s.db.Rebind(`INSERT INTO episodes_watched (user_id, tmdb_show_id, season_number, episode_number, watched, watched_at)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, insert, userID, showID, season, episode, watched, s.stamp(watched)); err != nil {
			return models.EpisodeWatchState{}, err
		}
	case err != nil:
		return models.EpisodeWatchState{}, fmt.Errorf("find episode state: %w", err)
	case existing.Watched == watched:
		return existing, nil
	default:
		update := s.db.Rebind(`UPDATE episodes_watched SET watched = ?, watched_at = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, update, watched, s.stamp(watched), existing.ID); err != nil {
			return models.EpisodeWatchState{}, fmt.Errorf("update episode state: %w", err)
		}
	}

	state, err := scanEpisode(tx.QueryRowContext(ctx, selectQuery, userID, showID, season, episode))
	if err != nil {
		return models.EpisodeWatchState{}, fmt.Errorf("reload episode state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.EpisodeWatchState{}, fmt.Errorf("commit mark episode: %w", err)
	}
	return state, nil
}

// MarkSeasonWatched records the watched flag of a whole season. Episode rows
// are independent and are not modified.
func (s *Service) MarkSeasonWatched(ctx context.Context, userID string, update models.SeasonWatchUpdate) (models.SeasonWatchState, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return models.SeasonWatchState{}, err
	}
	if update.ShowID <= 0 {
		return models.SeasonWatchState{}, ErrInvalidID
	}
	if update.SeasonNumber == nil || *update.SeasonNumber < 0 {
		return models.SeasonWatchState{}, ErrInvalidEpisode
	}
	watched := models.WatchedOrDefault(update.Watched)

	state, err := s.upsertSeason(ctx, userID, update.ShowID, *update.SeasonNumber, watched)
	if err != nil && database.IsUniqueViolation(err) {
		state, err = s.upsertSeason(ctx, userID, update.ShowID, *update.SeasonNumber, watched)
	}
	return state, err
}

func (s *Service) upsertSeason(ctx context.Context, userID string, showID int64, season int, watched bool) (models.SeasonWatchState, error) {
	tx, err := s.db.Connection().BeginTx(ctx, nil)
	if err != nil {
		return models.SeasonWatchState{}, fmt.Errorf("begin mark season: %w", err)
	}
	defer tx.Rollback()

	selectQuery := s.db.Rebind(`SELECT id, user_id, tmdb_show_id, season_number, watched, watched_at
		FROM seasons_watched WHERE user_id = ? AND tmdb_show_id = ? AND season_number = ?`)
	existing, err := scanSeason(tx.QueryRowContext(ctx, selectQuery, userID, showID, season))

	switch {
	case errors.Is(err, sql.ErrNoRows):
		insert := s.db.Rebind(`INSERT INTO seasons_watched (user_id, tmdb_show_id, season_number, watched, watched_at)
			VALUES (?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, insert, userID, showID, season, watched, s.stamp(watched)); err != nil {
			return models.SeasonWatchState{}, err
		}
	case err != nil:
		return models.SeasonWatchState{}, fmt.Errorf("find season state: %w", err)
	case existing.Watched == watched:
		return existing, nil
	default:
		update := s.db.Rebind(`UPDATE seasons_watched SET watched = ?, watched_at = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, update, watched, s.stamp(watched), existing.ID); err != nil {
			return models.SeasonWatchState{}, fmt.Errorf("update season state: %w", err)
		}
	}

	state, err := scanSeason(tx.QueryRowContext(ctx, selectQuery, userID, showID, season))
	if err != nil {
		return models.SeasonWatchState{}, fmt.Errorf("reload season state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.SeasonWatchState{}, fmt.Errorf("commit mark season: %w", err)
	}
	return state, nil
}

// ListEpisodes returns every episode row the user has for a show.
func (s *Service) ListEpisodes(ctx context.Context, userID string, showID int64) ([]models.EpisodeWatchState, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return nil, err
	}
	if showID <= 0 {
		return nil, ErrInvalidID
	}

	query := s.db.Rebind(`SELECT id, user_id, tmdb_show_id, season_number, episode_number, watched, watched_at
		FROM episodes_watched WHERE user_id = ? AND tmdb_show_id = ?
		ORDER BY season_number ASC, episode_number ASC`)
	rows, err := s.db.Connection().QueryContext(ctx, query, userID, showID)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	states := make([]models.EpisodeWatchState, 0)
	for rows.Next() {
		state, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

// ListSeasons returns every season row the user has for a show.
func (s *Service) ListSeasons(ctx context.Context, userID string, showID int64) ([]models.SeasonWatchState, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return nil, err
	}
	if showID <= 0 {
		return nil, ErrInvalidID
	}

	query := s.db.Rebind(`SELECT id, user_id, tmdb_show_id, season_number, watched, watched_at
		FROM seasons_watched WHERE user_id = ? AND tmdb_show_id = ?
		ORDER BY season_number ASC`)
	rows, err := s.db.Connection().QueryContext(ctx, query, userID, showID)
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	states := make([]models.SeasonWatchState, 0)
	for rows.Next() {
		state, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

func (s *Service) stamp(watched bool) sql.NullTime {
	if !watched {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: s.now(), Valid: true}
}

func scanEpisode(row rowScanner) (models.EpisodeWatchState, error) {
	var (
		state     models.EpisodeWatchState
		watchedAt sql.NullTime
	)
	if err := row.Scan(&state.ID, &state.UserID, &state.ShowID, &state.SeasonNumber, &state.EpisodeNumber, &state.Watched, &watchedAt); err != nil {
		return models.EpisodeWatchState{}, err
	}
	state.WatchedAt = timeFromNull(watchedAt)
	return state, nil
}

func scanSeason(row rowScanner) (models.SeasonWatchState, error) {
	var (
		state     models.SeasonWatchState
		watchedAt sql.NullTime
	)
	if err := row.Scan(&state.ID, &state.UserID, &state.ShowID, &state.SeasonNumber, &state.Watched, &watchedAt); err != nil {
		return models.SeasonWatchState{}, err
	}
	state.WatchedAt = timeFromNull(watchedAt)
	return state, nil
}
