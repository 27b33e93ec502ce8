package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinetrack/internal/database"
	"cinetrack/models"
)

var (
	ErrUserIDRequired     = errors.New("user id is required")
	ErrInvalidID          = errors.New("catalog id must be a positive integer")
	ErrTitleRequired      = errors.New("title is required")
	ErrInvalidMediaKind   = models.ErrInvalidMediaKind
	ErrInvalidReleaseDate = errors.New("release date must be formatted as YYYY-MM-DD")
	ErrInvalidEpisode     = errors.New("season and episode numbers are required")
	ErrConflict           = errors.New("item is already in the watchlist")
	ErrNotFound           = errors.New("watchlist entry not found")
)

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUserIDRequired) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrInvalidMediaKind) ||
		errors.Is(err, ErrInvalidReleaseDate) ||
		errors.Is(err, ErrInvalidEpisode)
}

// Service persists the three watch-state ledgers: list entries, seasons and
// episodes. Every operation is scoped to the calling user.
type Service struct {
	db  *database.DB
	now func() time.Time
}

// NewService creates a watch-state service on top of an open database.
func NewService(db *database.DB) *Service {
	return &Service{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

const entryColumns = `id, user_id, tmdb_id, media_type, title, poster_path, release_date, watched, liked, watched_at, liked_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.WatchlistEntry, error) {
	var (
		entry       models.WatchlistEntry
		mediaType   string
		posterPath  sql.NullString
		releaseDate sql.NullString
		liked       sql.NullBool
		watchedAt   sql.NullTime
		likedAt     sql.NullTime
	)
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.TMDBID,
		&mediaType,
		&entry.Title,
		&posterPath,
		&releaseDate,
		&entry.Watched,
		&liked,
		&watchedAt,
		&likedAt,
		&entry.CreatedAt,
	)
	if err != nil {
		return models.WatchlistEntry{}, err
	}

	entry.MediaType = models.MediaKind(mediaType)
	entry.PosterPath = posterPath.String
	entry.ReleaseDate = releaseDate.String
	entry.Liked = likeFromNull(liked)
	entry.WatchedAt = timeFromNull(watchedAt)
	entry.LikedAt = timeFromNull(likedAt)
	entry.CreatedAt = entry.CreatedAt.UTC()
	return entry, nil
}

func likeFromNull(v sql.NullBool) models.LikeState {
	if !v.Valid {
		return models.LikeUnrated
	}
	if v.Bool {
		return models.LikeLiked
	}
	return models.LikeDisliked
}

func likeToNull(l models.LikeState) sql.NullBool {
	switch l {
	case models.LikeLiked:
		return sql.NullBool{Bool: true, Valid: true}
	case models.LikeDisliked:
		return sql.NullBool{Bool: false, Valid: true}
	default:
		return sql.NullBool{}
	}
}

func timeFromNull(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}

func normaliseUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrUserIDRequired
	}
	return userID, nil
}

// Add creates a list entry. When the (user, tmdb id, kind) tuple already
// exists the stored entry is returned together with ErrConflict and nothing
// is overwritten.
func (s *Service) Add(ctx context.Context, userID string, input models.WatchlistAdd) (models.WatchlistEntry, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return models.WatchlistEntry{}, err
	}
	if input.TMDBID <= 0 {
		return models.WatchlistEntry{}, ErrInvalidID
	}
	kind, err := models.ParseMediaKind(input.MediaType)
	if err != nil {
		return models.WatchlistEntry{}, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.WatchlistEntry{}, ErrTitleRequired
	}
	releaseDate := strings.TrimSpace(input.ReleaseDate)
	if releaseDate != "" {
		if len(releaseDate) > 10 {
			releaseDate = releaseDate[:10]
		}
		if _, err := time.Parse("2006-01-02", releaseDate); err != nil {
			return models.WatchlistEntry{}, ErrInvalidReleaseDate
		}
	}

	existing, err := s.findByKey(ctx, userID, input.TMDBID, kind)
	if err == nil {
		return existing, ErrConflict
	}
	if !errors.Is(err, ErrNotFound) {
		return models.WatchlistEntry{}, err
	}

	query := s.db.Rebind(`INSERT INTO watchlist (user_id, tmdb_id, media_type, title, poster_path, release_date, watched, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING ` + entryColumns)
	row := s.db.Connection().QueryRowContext(ctx, query,
		userID,
		input.TMDBID,
		string(kind),
		title,
		nullString(input.PosterPath),
		nullString(releaseDate),
		false,
		s.now(),
	)
	entry, err := scanEntry(row)
	if err != nil {
		if database.IsUniqueViolation(err) {
			// Lost a race with a concurrent add of the same tuple.
			if existing, findErr := s.findByKey(ctx, userID, input.TMDBID, kind); findErr == nil {
				return existing, ErrConflict
			}
			return models.WatchlistEntry{}, ErrConflict
		}
		return models.WatchlistEntry{}, fmt.Errorf("insert watchlist entry: %w", err)
	}
	return entry, nil
}

func (s *Service) findByKey(ctx context.Context, userID string, tmdbID int64, kind models.MediaKind) (models.WatchlistEntry, error) {
	query := s.db.Rebind(`SELECT ` + entryColumns + ` FROM watchlist WHERE user_id = ? AND tmdb_id = ? AND media_type = ?`)
	entry, err := scanEntry(s.db.Connection().QueryRowContext(ctx, query, userID, tmdbID, string(kind)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchlistEntry{}, ErrNotFound
	}
	if err != nil {
		return models.WatchlistEntry{}, fmt.Errorf("find watchlist entry: %w", err)
	}
	return entry, nil
}

// Get returns one entry owned by the user.
func (s *Service) Get(ctx context.Context, userID string, id int64) (models.WatchlistEntry, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return models.WatchlistEntry{}, err
	}
	return s.get(ctx, s.db.Connection(), userID, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Service) get(ctx context.Context, q queryer, userID string, id int64) (models.WatchlistEntry, error) {
	query := s.db.Rebind(`SELECT ` + entryColumns + ` FROM watchlist WHERE id = ? AND user_id = ?`)
	entry, err := scanEntry(q.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchlistEntry{}, ErrNotFound
	}
	if err != nil {
		return models.WatchlistEntry{}, fmt.Errorf("get watchlist entry: %w", err)
	}
	return entry, nil
}

// List returns the user's entries newest first.
func (s *Service) List(ctx context.Context, userID string, filter models.WatchlistFilter) ([]models.WatchlistEntry, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return nil, err
	}

	var (
		where = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if filter.Watched != nil {
		where = append(where, "watched = ?")
		args = append(args, *filter.Watched)
	}
	if filter.Liked != nil {
		if *filter.Liked == models.LikeUnrated {
			where = append(where, "liked IS NULL")
		} else {
			where = append(where, "liked = ?")
			args = append(args, *filter.Liked == models.LikeLiked)
		}
	}
	if filter.Kind != "" {
		where = append(where, "media_type = ?")
		args = append(args, string(filter.Kind))
	}

	query := s.db.Rebind(`SELECT ` + entryColumns + ` FROM watchlist WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC, id DESC`)
	return s.queryEntries(ctx, query, args...)
}

func (s *Service) queryEntries(ctx context.Context, query string, args ...any) ([]models.WatchlistEntry, error) {
	rows, err := s.db.Connection().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	entries := make([]models.WatchlistEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}
	return entries, nil
}

// SetWatched updates the watched flag. Moving to watched stamps the time,
// moving out clears it, and repeating the current value changes nothing.
func (s *Service) SetWatched(ctx context.Context, userID string, id int64, watched bool) (models.WatchlistEntry, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return models.WatchlistEntry{}, err
	}

	tx, err := s.db.Connection().BeginTx(ctx, nil)
	if err != nil {
		return models.WatchlistEntry{}, fmt.Errorf("begin set watched: %w", err)
	}
	defer tx.Rollback()

	entry, err := s.get(ctx, tx, userID, id)
	if err != nil {
		return models.WatchlistEntry{}, err
	}
	if entry.Watched == watched {
		return entry, nil
	}

	query := s.db.Rebind(`UPDATE watchlist SET watched = ?, watched_at = ? WHERE id = ? AND user_id = ?`)
	if _, err := tx.ExecContext(ctx, query, watched, s.stamp(watched), id, userID); err != nil {
		return models.WatchlistEntry{}, fmt.Errorf("update watched: %w", err)
	}

	updated, err := s.get(ctx, tx, userID, id)
	if err != nil {
		return models.WatchlistEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.WatchlistEntry{}, fmt.Errorf("commit set watched: %w", err)
	}
	return updated, nil
}

// SetLiked overwrites the rating. It does not depend on the watched flag.
func (s *Service) SetLiked(ctx context.Context, userID string, id int64, liked models.LikeState) (models.WatchlistEntry, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return models.WatchlistEntry{}, err
	}

	var likedAt sql.NullTime
	if liked == models.LikeLiked {
		likedAt = sql.NullTime{Time: s.now(), Valid: true}
	}
	query := s.db.Rebind(`UPDATE watchlist SET liked = ?, liked_at = ? WHERE id = ? AND user_id = ?`)
	res, err := s.db.Connection().ExecContext(ctx, query, likeToNull(liked), likedAt, id, userID)
	if err != nil {
		return models.WatchlistEntry{}, fmt.Errorf("update liked: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.WatchlistEntry{}, ErrNotFound
	}
	return s.get(ctx, s.db.Connection(), userID, id)
}

// Remove deletes exactly one entry owned by the user. Season and episode
// state for the same show is left untouched.
func (s *Service) Remove(ctx context.Context, userID string, id int64) error {
	userID, err := normaliseUser(userID)
	if err != nil {
		return err
	}
	query := s.db.Rebind(`DELETE FROM watchlist WHERE id = ? AND user_id = ?`)
	res, err := s.db.Connection().ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
