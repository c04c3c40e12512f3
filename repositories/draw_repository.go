package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/7893/PaddlePal/models"
)

var (
	ErrDrawNotFound     = errors.New("draw not found")
	ErrPositionTaken    = errors.New("draw position already taken")
	ErrPlayerDrawnTwice = errors.New("player already holds a draw position")
)

// DrawDetail is a draw row joined with the player's display data for the
// public draw sheet.
type DrawDetail struct {
	models.Draw
	PlayerName string `json:"player_name"`
	TeamName   string `json:"team_name"`
}

type DrawRepository interface {
	// Assign writes one seed-to-position assignment. Two unique
	// constraints arbitrate concurrent draws: one per position, one per
	// player. Losing either race surfaces as a typed conflict.
	Assign(ctx context.Context, exec SQLExecutor, draw *models.Draw) error
	ListByEvent(ctx context.Context, eventID int) ([]*models.Draw, error)
	ListDetailsByEvent(ctx context.Context, eventID int) ([]*DrawDetail, error)
	TakenPositions(ctx context.Context, eventID int) ([]int, error)
	// UndrawnPlayers returns event entrants without a draw position yet,
	// in seed order.
	UndrawnPlayers(ctx context.Context, eventID int) ([]*models.GroupEntry, error)
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error
}

type postgresDrawRepository struct {
	db *sql.DB
}

func NewPostgresDrawRepository(db *sql.DB) DrawRepository {
	return &postgresDrawRepository{db: db}
}

func (r *postgresDrawRepository) Assign(ctx context.Context, exec SQLExecutor, draw *models.Draw) error {
	query := `
		INSERT INTO draws (event_id, player_id, seed, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, drawn_at`

	err := exec.QueryRowContext(ctx, query, draw.EventID, draw.PlayerID, draw.Seed, draw.Position).
		Scan(&draw.ID, &draw.DrawnAt)
	if err != nil {
		if uniqueViolation(err, "draws_event_id_position_key") {
			return ErrPositionTaken
		}
		if uniqueViolation(err, "draws_event_id_player_id_key") {
			return ErrPlayerDrawnTwice
		}
		return fmt.Errorf("failed to assign draw position: %w", err)
	}
	return nil
}

func (r *postgresDrawRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Draw, error) {
	query := `
		SELECT id, event_id, player_id, seed, position, drawn_at
		FROM draws WHERE event_id = $1 ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws for event %d: %w", eventID, err)
	}
	defer rows.Close()

	draws := make([]*models.Draw, 0)
	for rows.Next() {
		d := &models.Draw{}
		if err := rows.Scan(&d.ID, &d.EventID, &d.PlayerID, &d.Seed, &d.Position, &d.DrawnAt); err != nil {
			return nil, fmt.Errorf("failed to scan draw row: %w", err)
		}
		draws = append(draws, d)
	}
	return draws, rows.Err()
}

func (r *postgresDrawRepository) ListDetailsByEvent(ctx context.Context, eventID int) ([]*DrawDetail, error) {
	query := `
		SELECT d.id, d.event_id, d.player_id, d.seed, d.position, d.drawn_at,
			COALESCE(p.name, ''), COALESCE(t.short_name, '')
		FROM draws d
		LEFT JOIN players p ON d.player_id = p.id
		LEFT JOIN teams t ON p.team_id = t.id
		WHERE d.event_id = $1 ORDER BY d.position`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query draw details for event %d: %w", eventID, err)
	}
	defer rows.Close()

	out := make([]*DrawDetail, 0)
	for rows.Next() {
		d := &DrawDetail{}
		err := rows.Scan(&d.ID, &d.EventID, &d.PlayerID, &d.Seed, &d.Position, &d.DrawnAt, &d.PlayerName, &d.TeamName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw detail row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *postgresDrawRepository) TakenPositions(ctx context.Context, eventID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT position FROM draws WHERE event_id = $1 ORDER BY position`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query taken positions for event %d: %w", eventID, err)
	}
	defer rows.Close()

	positions := make([]int, 0)
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan position row: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *postgresDrawRepository) UndrawnPlayers(ctx context.Context, eventID int) ([]*models.GroupEntry, error) {
	query := `
		SELECT ge.id, ge.group_id, ge.player_id, ge.team_id, ge.position, ge.rank
		FROM group_entries ge
		JOIN group_tables gt ON ge.group_id = gt.id
		WHERE gt.event_id = $1
		  AND NOT EXISTS (SELECT 1 FROM draws d WHERE d.event_id = $1 AND d.player_id = ge.player_id)
		ORDER BY ge.position, gt.group_index`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query undrawn players for event %d: %w", eventID, err)
	}
	defer rows.Close()

	entries := make([]*models.GroupEntry, 0)
	for rows.Next() {
		e := &models.GroupEntry{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PlayerID, &e.TeamID, &e.Position, &e.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan undrawn row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresDrawRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM draws WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to delete draws for event %d: %w", eventID, err)
	}
	return nil
}
