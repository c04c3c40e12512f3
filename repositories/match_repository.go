package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/7893/PaddlePal/models"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrTicketConflict = errors.New("ticket number already in use")
)

// MatchDetail is a match joined with the display names of its occupants.
// Player2/Player4 names matter for doubles, team names for team rubbers.
type MatchDetail struct {
	models.Match
	Player1Name string `json:"player1_name"`
	Player2Name string `json:"player2_name"`
	Player3Name string `json:"player3_name"`
	Player4Name string `json:"player4_name"`
	Team1Name   string `json:"team1_name"`
	Team3Name   string `json:"team3_name"`
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	GetByTicket(ctx context.Context, ticket int) (*models.Match, error)

	ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error)
	ListByGroup(ctx context.Context, groupID int) ([]*models.Match, error)
	ListByParent(ctx context.Context, parentID int) ([]*models.Match, error)
	ListByRound(ctx context.Context, eventID, round int) ([]*models.Match, error)
	ListByStatus(ctx context.Context, status models.MatchStatus) ([]*models.Match, error)
	ListDetailsByGroup(ctx context.Context, groupID int) ([]*MatchDetail, error)
	ListDetailsByEvent(ctx context.Context, eventID int) ([]*MatchDetail, error)

	// FindGroupPair locates the single round-robin match between two lead
	// players inside a group, whichever slot order they were stored in.
	FindGroupPair(ctx context.Context, groupID, playerID, opponentID int) (*models.Match, error)

	// ListFinishedUnrated returns finished matches of the event that have
	// no rating rows yet. Double walkovers are excluded at the source.
	ListFinishedUnrated(ctx context.Context, eventID int) ([]*models.Match, error)

	UpdateResult(ctx context.Context, exec SQLExecutor, id int, result string, winner models.Side, status models.MatchStatus) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, tableNo *int, date, time *string) error
	// SetSide fills one side's player slots: slots 1/2 for side one,
	// slots 3/4 for side two. Partner may be nil for singles.
	SetSide(ctx context.Context, exec SQLExecutor, id int, side models.Side, lead, partner *int) error
	// SetPlayers overwrites all four player slots, used when naming a
	// team rubber's lineup.
	SetPlayers(ctx context.Context, exec SQLExecutor, id int, p1, p2, p3, p4 *int) error

	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, event_id, group_id, parent_id, match_order, round, table_no, date, time,
	player1_id, player2_id, player3_id, player4_id,
	team1_id, team2_id, team3_id, team4_id,
	result, winner_side, status, created_at`

func scanMatch(row interface{ Scan(dest ...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.EventID, &m.GroupID, &m.ParentID, &m.MatchOrder, &m.Round, &m.TableNo, &m.Date, &m.Time,
		&m.Player1ID, &m.Player2ID, &m.Player3ID, &m.Player4ID,
		&m.Team1ID, &m.Team2ID, &m.Team3ID, &m.Team4ID,
		&m.Result, &m.WinnerSide, &m.Status, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (event_id, group_id, parent_id, match_order, round, table_no, date, time,
			player1_id, player2_id, player3_id, player4_id,
			team1_id, team2_id, team3_id, team4_id,
			result, winner_side, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.EventID, match.GroupID, match.ParentID, match.MatchOrder, match.Round,
		match.TableNo, match.Date, match.Time,
		match.Player1ID, match.Player2ID, match.Player3ID, match.Player4ID,
		match.Team1ID, match.Team2ID, match.Team3ID, match.Team4ID,
		match.Result, match.WinnerSide, match.Status,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "matches_match_order_key") {
			return ErrTicketConflict
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByTicket(ctx context.Context, ticket int) (*models.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE match_order = $1`, ticket))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by ticket %d: %w", ticket, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	return r.queryMatches(ctx, `SELECT `+matchColumns+` FROM matches WHERE event_id = $1 ORDER BY match_order`, eventID)
}

func (r *postgresMatchRepository) ListByGroup(ctx context.Context, groupID int) ([]*models.Match, error) {
	return r.queryMatches(ctx, `SELECT `+matchColumns+` FROM matches WHERE group_id = $1 ORDER BY match_order`, groupID)
}

func (r *postgresMatchRepository) ListByParent(ctx context.Context, parentID int) ([]*models.Match, error) {
	return r.queryMatches(ctx, `SELECT `+matchColumns+` FROM matches WHERE parent_id = $1 ORDER BY match_order`, parentID)
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, eventID, round int) ([]*models.Match, error) {
	return r.queryMatches(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE event_id = $1 AND round = $2 ORDER BY match_order`, eventID, round)
}

func (r *postgresMatchRepository) ListByStatus(ctx context.Context, status models.MatchStatus) ([]*models.Match, error) {
	return r.queryMatches(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE status = $1 ORDER BY match_order`, status)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

const matchDetailQuery = `
	SELECT m.id, m.event_id, m.group_id, m.parent_id, m.match_order, m.round, m.table_no, m.date, m.time,
		m.player1_id, m.player2_id, m.player3_id, m.player4_id,
		m.team1_id, m.team2_id, m.team3_id, m.team4_id,
		m.result, m.winner_side, m.status, m.created_at,
		COALESCE(p1.name, ''), COALESCE(p2.name, ''), COALESCE(p3.name, ''), COALESCE(p4.name, ''),
		COALESCE(t1.short_name, ''), COALESCE(t3.short_name, '')
	FROM matches m
	LEFT JOIN players p1 ON m.player1_id = p1.id
	LEFT JOIN players p2 ON m.player2_id = p2.id
	LEFT JOIN players p3 ON m.player3_id = p3.id
	LEFT JOIN players p4 ON m.player4_id = p4.id
	LEFT JOIN teams t1 ON COALESCE(m.team1_id, p1.team_id) = t1.id
	LEFT JOIN teams t3 ON COALESCE(m.team3_id, p3.team_id) = t3.id`

func (r *postgresMatchRepository) ListDetailsByGroup(ctx context.Context, groupID int) ([]*MatchDetail, error) {
	return r.queryDetails(ctx, matchDetailQuery+` WHERE m.group_id = $1 ORDER BY m.match_order`, groupID)
}

func (r *postgresMatchRepository) ListDetailsByEvent(ctx context.Context, eventID int) ([]*MatchDetail, error) {
	return r.queryDetails(ctx, matchDetailQuery+` WHERE m.event_id = $1 ORDER BY m.match_order`, eventID)
}

func (r *postgresMatchRepository) queryDetails(ctx context.Context, query string, args ...interface{}) ([]*MatchDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query match details: %w", err)
	}
	defer rows.Close()

	out := make([]*MatchDetail, 0)
	for rows.Next() {
		d := &MatchDetail{}
		err := rows.Scan(
			&d.ID, &d.EventID, &d.GroupID, &d.ParentID, &d.MatchOrder, &d.Round, &d.TableNo, &d.Date, &d.Time,
			&d.Player1ID, &d.Player2ID, &d.Player3ID, &d.Player4ID,
			&d.Team1ID, &d.Team2ID, &d.Team3ID, &d.Team4ID,
			&d.Result, &d.WinnerSide, &d.Status, &d.CreatedAt,
			&d.Player1Name, &d.Player2Name, &d.Player3Name, &d.Player4Name,
			&d.Team1Name, &d.Team3Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match detail row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *postgresMatchRepository) FindGroupPair(ctx context.Context, groupID, playerID, opponentID int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE group_id = $1
		  AND ((player1_id = $2 AND player3_id = $3) OR (player1_id = $3 AND player3_id = $2))`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, groupID, playerID, opponentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to find group pair %d/%d: %w", playerID, opponentID, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListFinishedUnrated(ctx context.Context, eventID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE event_id = $1 AND status = 'finished' AND winner_side <> 0
		  AND player1_id IS NOT NULL AND player3_id IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM ratings WHERE ratings.match_id = matches.id)
		ORDER BY match_order`
	return r.queryMatches(ctx, query, eventID)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, result string, winner models.Side, status models.MatchStatus) error {
	res, err := exec.ExecContext(ctx,
		`UPDATE matches SET result = $1, winner_side = $2, status = $3 WHERE id = $4`,
		result, winner, status, id)
	if err != nil {
		return fmt.Errorf("failed to update result for match %d: %w", id, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	res, err := exec.ExecContext(ctx, `UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status for match %d: %w", id, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, tableNo *int, date, time *string) error {
	res, err := exec.ExecContext(ctx,
		`UPDATE matches SET table_no = $1, date = $2, time = $3 WHERE id = $4`, tableNo, date, time, id)
	if err != nil {
		return fmt.Errorf("failed to update schedule for match %d: %w", id, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetSide(ctx context.Context, exec SQLExecutor, id int, side models.Side, lead, partner *int) error {
	var query string
	switch side {
	case models.SideOne:
		query = `UPDATE matches SET player1_id = $1, player2_id = $2 WHERE id = $3`
	case models.SideTwo:
		query = `UPDATE matches SET player3_id = $1, player4_id = $2 WHERE id = $3`
	default:
		return fmt.Errorf("cannot set players for side %d", side)
	}
	res, err := exec.ExecContext(ctx, query, lead, partner, id)
	if err != nil {
		return fmt.Errorf("failed to set side %d of match %d: %w", side, id, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetPlayers(ctx context.Context, exec SQLExecutor, id int, p1, p2, p3, p4 *int) error {
	res, err := exec.ExecContext(ctx,
		`UPDATE matches SET player1_id = $1, player2_id = $2, player3_id = $3, player4_id = $4 WHERE id = $5`,
		p1, p2, p3, p4, id)
	if err != nil {
		return fmt.Errorf("failed to set players of match %d: %w", id, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to delete matches for event %d: %w", eventID, err)
	}
	return nil
}
