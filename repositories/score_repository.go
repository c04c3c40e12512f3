package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/7893/PaddlePal/models"
)

type ScoreRepository interface {
	ListByMatch(ctx context.Context, matchID int) ([]*models.Score, error)
	// Replace swaps a match's full scoreline atomically: a resubmission
	// never leaves games from the previous submission behind.
	Replace(ctx context.Context, exec SQLExecutor, matchID int, scores []*models.Score) error
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.Score, error) {
	query := `
		SELECT id, match_id, game_no, score_left, score_right
		FROM scores WHERE match_id = $1 ORDER BY game_no`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores for match %d: %w", matchID, err)
	}
	defer rows.Close()

	scores := make([]*models.Score, 0)
	for rows.Next() {
		s := &models.Score{}
		if err := rows.Scan(&s.ID, &s.MatchID, &s.GameNo, &s.ScoreLeft, &s.ScoreRight); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *postgresScoreRepository) Replace(ctx context.Context, exec SQLExecutor, matchID int, scores []*models.Score) error {
	if err := r.DeleteByMatch(ctx, exec, matchID); err != nil {
		return err
	}
	query := `
		INSERT INTO scores (match_id, game_no, score_left, score_right)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for _, s := range scores {
		s.MatchID = matchID
		if err := exec.QueryRowContext(ctx, query, s.MatchID, s.GameNo, s.ScoreLeft, s.ScoreRight).Scan(&s.ID); err != nil {
			return fmt.Errorf("failed to insert game %d of match %d: %w", s.GameNo, matchID, err)
		}
	}
	return nil
}

func (r *postgresScoreRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM scores WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to delete scores for match %d: %w", matchID, err)
	}
	return nil
}

func (r *postgresScoreRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	query := `DELETE FROM scores WHERE match_id IN (SELECT id FROM matches WHERE event_id = $1)`
	if _, err := exec.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to delete scores for event %d: %w", eventID, err)
	}
	return nil
}
