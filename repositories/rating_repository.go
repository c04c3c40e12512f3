package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/7893/PaddlePal/models"
)

var ErrRatingRecordConflict = errors.New("rating already recorded for this match and player")

// RatingHistoryRow is one audit entry joined with the event title, newest
// first, for a player's rating history page.
type RatingHistoryRow struct {
	models.RatingRecord
	EventTitle string `json:"event_title"`
}

type RatingRepository interface {
	// Create inserts one audit row. The (match, player) unique constraint
	// is the idempotency gate: computing the same match twice fails here
	// no matter how the requests interleave.
	Create(ctx context.Context, exec SQLExecutor, rec *models.RatingRecord) error
	ExistsForMatch(ctx context.Context, matchID int) (bool, error)
	HistoryByPlayer(ctx context.Context, playerID int) ([]*RatingHistoryRow, error)
}

type postgresRatingRepository struct {
	db *sql.DB
}

func NewPostgresRatingRepository(db *sql.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

func (r *postgresRatingRepository) Create(ctx context.Context, exec SQLExecutor, rec *models.RatingRecord) error {
	query := `
		INSERT INTO ratings (tournament_id, player_id, event_id, match_id, rating_before, rating_after, rating_change)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		rec.TournamentID, rec.PlayerID, rec.EventID, rec.MatchID, rec.RatingBefore, rec.RatingAfter, rec.Delta,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "ratings_match_id_player_id_key") {
			return ErrRatingRecordConflict
		}
		return fmt.Errorf("failed to create rating record: %w", err)
	}
	return nil
}

func (r *postgresRatingRepository) ExistsForMatch(ctx context.Context, matchID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM ratings WHERE match_id = $1)`, matchID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ratings for match %d: %w", matchID, err)
	}
	return exists, nil
}

func (r *postgresRatingRepository) HistoryByPlayer(ctx context.Context, playerID int) ([]*RatingHistoryRow, error) {
	query := `
		SELECT r.id, r.tournament_id, r.player_id, r.event_id, r.match_id,
			r.rating_before, r.rating_after, r.rating_change, r.created_at,
			COALESCE(e.title, '')
		FROM ratings r
		LEFT JOIN events e ON r.event_id = e.id
		WHERE r.player_id = $1
		ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history for player %d: %w", playerID, err)
	}
	defer rows.Close()

	out := make([]*RatingHistoryRow, 0)
	for rows.Next() {
		h := &RatingHistoryRow{}
		err := rows.Scan(
			&h.ID, &h.TournamentID, &h.PlayerID, &h.EventID, &h.MatchID,
			&h.RatingBefore, &h.RatingAfter, &h.Delta, &h.CreatedAt,
			&h.EventTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating history row: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
