package watchlist

import (
	"context"
	"fmt"

	"cinetrack/models"
	"cinetrack/utils/filter"
)

// Snapshot loads every entry of the user into an index keyed by catalog
// identity. An empty kind loads both kinds.
func (s *Service) Snapshot(ctx context.Context, userID string, kind models.MediaKind) (filter.WatchSnapshot, error) {
	entries, err := s.List(ctx, userID, models.WatchlistFilter{Kind: kind})
	if err != nil {
		return filter.WatchSnapshot{}, err
	}
	return filter.NewWatchSnapshot(entries), nil
}

// WatchedIDs returns the catalog ids of the user's watched entries of kind.
func (s *Service) WatchedIDs(ctx context.Context, userID string, kind models.MediaKind) (filter.IDSet, error) {
	return s.idSet(ctx, userID, kind, `AND watched = ?`, true)
}

// ListedIDs returns the catalog ids of every entry of kind, in any state.
func (s *Service) ListedIDs(ctx context.Context, userID string, kind models.MediaKind) (filter.IDSet, error) {
	return s.idSet(ctx, userID, kind, "")
}

func (s *Service) idSet(ctx context.Context, userID string, kind models.MediaKind, clause string, args ...any) (filter.IDSet, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, ErrInvalidMediaKind
	}

	query := s.db.Rebind(`SELECT tmdb_id FROM watchlist WHERE user_id = ? AND media_type = ? ` + clause)
	rows, err := s.db.Connection().QueryContext(ctx, query, append([]any{userID, string(kind)}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("query watchlist ids: %w", err)
	}
	defer rows.Close()

	ids := make(filter.IDSet)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan watchlist id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// LikedIDs returns up to limit liked catalog ids of kind, most recently
// liked first. A non-positive limit returns all of them.
func (s *Service) LikedIDs(ctx context.Context, userID string, kind models.MediaKind, limit int) ([]int64, error) {
	userID, err := normaliseUser(userID)
	if err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, ErrInvalidMediaKind
	}

	query := `SELECT tmdb_id FROM watchlist WHERE user_id = ? AND media_type = ? AND liked = ?
		ORDER BY liked_at DESC, id DESC`
	args := []any{userID, string(kind), true}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Connection().QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query liked ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan liked id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
