package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/7893/PaddlePal/models"
)

var ErrPlayerNotFound = errors.New("player not found")

// LeaderboardRow is a player joined with the team short name, ordered by
// rating for the public leaderboard.
type LeaderboardRow struct {
	PlayerID int    `json:"id"`
	Name     string `json:"name"`
	Rating   int    `json:"rating"`
	Team     string `json:"team"`
}

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
	SearchByName(ctx context.Context, name string) ([]*models.Player, error)
	// SetRating writes the player's new running rating.
	SetRating(ctx context.Context, exec SQLExecutor, id, rating int) error
	Leaderboard(ctx context.Context, limit int) ([]*LeaderboardRow, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, tournament_id, team_id, name, gender, rating, phone`

func scanPlayer(row interface{ Scan(dest ...interface{}) error }) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(&p.ID, &p.TournamentID, &p.TeamID, &p.Name, &p.Gender, &p.Rating, &p.Phone)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players (tournament_id, team_id, name, gender, rating, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		player.TournamentID, player.TeamID, player.Name, player.Gender, player.Rating, player.Phone,
	).Scan(&player.ID)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		UPDATE players SET team_id = $1, name = $2, gender = $3, rating = $4, phone = $5
		WHERE id = $6`

	result, err := exec.ExecContext(ctx, query,
		player.TeamID, player.Name, player.Gender, player.Rating, player.Phone, player.ID)
	if err != nil {
		return fmt.Errorf("failed to update player %d: %w", player.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, err := scanPlayer(r.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	return r.queryPlayers(ctx, `SELECT `+playerColumns+` FROM players ORDER BY id`)
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	return r.queryPlayers(ctx, `SELECT `+playerColumns+` FROM players WHERE team_id = $1 ORDER BY id`, teamID)
}

func (r *postgresPlayerRepository) SearchByName(ctx context.Context, name string) ([]*models.Player, error) {
	return r.queryPlayers(ctx,
		`SELECT `+playerColumns+` FROM players WHERE name ILIKE '%' || $1 || '%' ORDER BY name`, name)
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) SetRating(ctx context.Context, exec SQLExecutor, id, rating int) error {
	result, err := exec.ExecContext(ctx, `UPDATE players SET rating = $1 WHERE id = $2`, rating, id)
	if err != nil {
		return fmt.Errorf("failed to set rating for player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Leaderboard(ctx context.Context, limit int) ([]*LeaderboardRow, error) {
	query := `
		SELECT p.id, p.name, p.rating, COALESCE(t.short_name, '')
		FROM players p
		LEFT JOIN teams t ON p.team_id = t.id
		WHERE p.rating > 0
		ORDER BY p.rating DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]*LeaderboardRow, 0)
	for rows.Next() {
		lr := &LeaderboardRow{}
		if err := rows.Scan(&lr.PlayerID, &lr.Name, &lr.Rating, &lr.Team); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}
