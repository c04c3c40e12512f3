package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/7893/PaddlePal/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrEventKeyConflict = errors.New("event key already in use")
)

// EventProgress is an event row enriched with match completion counters
// for the tournament overview.
type EventProgress struct {
	models.Event
	Plays    int    `json:"plays"`
	Finished int    `json:"finished"`
	BegTime  string `json:"beg_time"`
	EndTime  string `json:"end_time"`
}

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.Event) error
	Update(ctx context.Context, exec SQLExecutor, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	GetByKey(ctx context.Context, key string) (*models.Event, error)
	ListWithProgress(ctx context.Context) ([]*EventProgress, error)
	// DeleteCascade removes the event together with its groups, entries,
	// draws, matches and scores. Rating audit rows are kept.
	DeleteCascade(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `id, tournament_id, key, title, event_type, stage, groups, best_of, created_at`

func scanEvent(row interface{ Scan(dest ...interface{}) error }) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(&e.ID, &e.TournamentID, &e.Key, &e.Title, &e.Type, &e.Stage, &e.Groups, &e.BestOf, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, event *models.Event) error {
	query := `
		INSERT INTO events (tournament_id, key, title, event_type, stage, groups, best_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		event.TournamentID, event.Key, event.Title, event.Type, event.Stage, event.Groups, event.BestOf,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "events_key_key") {
			return ErrEventKeyConflict
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) Update(ctx context.Context, exec SQLExecutor, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, event_type = $2, stage = $3, groups = $4, best_of = $5
		WHERE id = $6`

	result, err := exec.ExecContext(ctx, query, event.Title, event.Type, event.Stage, event.Groups, event.BestOf, event.ID)
	if err != nil {
		return fmt.Errorf("failed to update event %d: %w", event.ID, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event by id %d: %w", id, err)
	}
	return e, nil
}

func (r *postgresEventRepository) GetByKey(ctx context.Context, key string) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE key = $1`, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event by key %q: %w", key, err)
	}
	return e, nil
}

func (r *postgresEventRepository) ListWithProgress(ctx context.Context) ([]*EventProgress, error) {
	query := `
		SELECT ` + eventColumns + `,
			(SELECT COUNT(*) FROM matches WHERE event_id = events.id) AS plays,
			(SELECT COUNT(*) FROM matches WHERE event_id = events.id AND status = 'finished') AS finished,
			COALESCE((SELECT MIN(time) FROM matches WHERE event_id = events.id), '') AS beg_time,
			COALESCE((SELECT MAX(time) FROM matches WHERE event_id = events.id), '') AS end_time
		FROM events ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query event progress: %w", err)
	}
	defer rows.Close()

	out := make([]*EventProgress, 0)
	for rows.Next() {
		ep := &EventProgress{}
		err := rows.Scan(
			&ep.ID, &ep.TournamentID, &ep.Key, &ep.Title, &ep.Type, &ep.Stage, &ep.Groups, &ep.BestOf, &ep.CreatedAt,
			&ep.Plays, &ep.Finished, &ep.BegTime, &ep.EndTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event progress row: %w", err)
		}
		out = append(out, ep)
	}
	return out, rows.Err()
}

func (r *postgresEventRepository) DeleteCascade(ctx context.Context, exec SQLExecutor, id int) error {
	steps := []string{
		`DELETE FROM scores WHERE match_id IN (SELECT id FROM matches WHERE event_id = $1)`,
		`DELETE FROM matches WHERE event_id = $1`,
		`DELETE FROM draws WHERE event_id = $1`,
		`DELETE FROM group_entries WHERE group_id IN (SELECT id FROM group_tables WHERE event_id = $1)`,
		`DELETE FROM group_tables WHERE event_id = $1`,
	}
	for _, q := range steps {
		if _, err := exec.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to cascade-delete event %d: %w", id, err)
		}
	}
	result, err := exec.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return r.handleEventError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) handleEventError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return fmt.Errorf("event still referenced: %w", err)
	}
	return err
}
