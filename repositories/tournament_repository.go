package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/7893/PaddlePal/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrNoticeNotFound     = errors.New("notice not found")
)

// tournamentID is the singleton row every entity hangs off.
const tournamentID = 1

type TournamentRepository interface {
	Get(ctx context.Context) (*models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error

	ListNotices(ctx context.Context) ([]*models.Notice, error)
	CreateNotice(ctx context.Context, exec SQLExecutor, n *models.Notice) error
	UpdateNotice(ctx context.Context, exec SQLExecutor, n *models.Notice) error
	DeleteNotice(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Get(ctx context.Context) (*models.Tournament, error) {
	query := `
		SELECT id, name, info, venue, start_date, tables_count, days, created_at
		FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(
		&t.ID, &t.Name, &t.Info, &t.Venue, &t.StartDate, &t.Tables, &t.Days, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $1, info = $2, venue = $3, start_date = $4, tables_count = $5, days = $6
		WHERE id = $7`

	result, err := exec.ExecContext(ctx, query, t.Name, t.Info, t.Venue, t.StartDate, t.Tables, t.Days, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update tournament: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListNotices(ctx context.Context) ([]*models.Notice, error) {
	query := `
		SELECT id, tournament_id, COALESCE(title, ''), content, created_at
		FROM notices WHERE tournament_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notices: %w", err)
	}
	defer rows.Close()

	notices := make([]*models.Notice, 0)
	for rows.Next() {
		n := &models.Notice{}
		if err := rows.Scan(&n.ID, &n.TournamentID, &n.Title, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notice row: %w", err)
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

func (r *postgresTournamentRepository) CreateNotice(ctx context.Context, exec SQLExecutor, n *models.Notice) error {
	query := `
		INSERT INTO notices (tournament_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	n.TournamentID = tournamentID
	if err := exec.QueryRowContext(ctx, query, n.TournamentID, n.Title, n.Content).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("failed to create notice: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) UpdateNotice(ctx context.Context, exec SQLExecutor, n *models.Notice) error {
	result, err := exec.ExecContext(ctx, `UPDATE notices SET title = $1, content = $2 WHERE id = $3`, n.Title, n.Content, n.ID)
	if err != nil {
		return fmt.Errorf("failed to update notice %d: %w", n.ID, err)
	}
	return checkAffectedRows(result, ErrNoticeNotFound)
}

func (r *postgresTournamentRepository) DeleteNotice(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notice %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrNoticeNotFound)
}
