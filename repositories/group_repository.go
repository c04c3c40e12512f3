package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/7893/PaddlePal/models"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrGroupEntryNotFound = errors.New("group entry not found")
	ErrGroupEntryConflict = errors.New("player or position already assigned in this group")
)

// GroupEntryDetail is an entry joined with its player's display data.
type GroupEntryDetail struct {
	models.GroupEntry
	PlayerName string `json:"player_name"`
	TeamName   string `json:"team_name"`
	Rating     int    `json:"rating"`
}

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.GroupTable) error
	ListByEvent(ctx context.Context, eventID int) ([]*models.GroupTable, error)
	GetByIndex(ctx context.Context, eventID, index int) (*models.GroupTable, error)

	AddEntry(ctx context.Context, exec SQLExecutor, entry *models.GroupEntry) error
	RemoveEntry(ctx context.Context, exec SQLExecutor, groupID, playerID int) error
	ClearByEvent(ctx context.Context, exec SQLExecutor, eventID int) error
	SetEntryRank(ctx context.Context, exec SQLExecutor, groupID, playerID, rank int) error
	MaxPosition(ctx context.Context, groupID int) (int, error)

	ListEntries(ctx context.Context, groupID int) ([]*GroupEntryDetail, error)
	// ListEventEntrants returns every entry of the event across groups,
	// ordered by position: the seed order feeding a knockout draw.
	ListEventEntrants(ctx context.Context, eventID int) ([]*models.GroupEntry, error)
	CountEventEntrants(ctx context.Context, eventID int) (int, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.GroupTable) error {
	query := `
		INSERT INTO group_tables (event_id, group_name, group_index)
		VALUES ($1, $2, $3)
		RETURNING id`

	if err := exec.QueryRowContext(ctx, query, group.EventID, group.Name, group.Index).Scan(&group.ID); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (r *postgresGroupRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.GroupTable, error) {
	query := `
		SELECT id, event_id, group_name, group_index
		FROM group_tables WHERE event_id = $1 ORDER BY group_index`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for event %d: %w", eventID, err)
	}
	defer rows.Close()

	groups := make([]*models.GroupTable, 0)
	for rows.Next() {
		g := &models.GroupTable{}
		if err := rows.Scan(&g.ID, &g.EventID, &g.Name, &g.Index); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *postgresGroupRepository) GetByIndex(ctx context.Context, eventID, index int) (*models.GroupTable, error) {
	query := `
		SELECT id, event_id, group_name, group_index
		FROM group_tables WHERE event_id = $1 AND group_index = $2`

	g := &models.GroupTable{}
	err := r.db.QueryRowContext(ctx, query, eventID, index).Scan(&g.ID, &g.EventID, &g.Name, &g.Index)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group %d/%d: %w", eventID, index, err)
	}
	return g, nil
}

func (r *postgresGroupRepository) AddEntry(ctx context.Context, exec SQLExecutor, entry *models.GroupEntry) error {
	query := `
		INSERT INTO group_entries (group_id, player_id, team_id, position, rank)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query, entry.GroupID, entry.PlayerID, entry.TeamID, entry.Position, entry.Rank).Scan(&entry.ID)
	if err != nil {
		if uniqueViolation(err, "group_entries_group_id_position_key") ||
			uniqueViolation(err, "group_entries_group_id_player_id_key") {
			return ErrGroupEntryConflict
		}
		return fmt.Errorf("failed to add group entry: %w", err)
	}
	return nil
}

func (r *postgresGroupRepository) RemoveEntry(ctx context.Context, exec SQLExecutor, groupID, playerID int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM group_entries WHERE group_id = $1 AND player_id = $2`, groupID, playerID)
	if err != nil {
		return fmt.Errorf("failed to remove group entry: %w", err)
	}
	return checkAffectedRows(result, ErrGroupEntryNotFound)
}

func (r *postgresGroupRepository) ClearByEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	query := `DELETE FROM group_entries WHERE group_id IN (SELECT id FROM group_tables WHERE event_id = $1)`
	if _, err := exec.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to clear entries for event %d: %w", eventID, err)
	}
	return nil
}

func (r *postgresGroupRepository) SetEntryRank(ctx context.Context, exec SQLExecutor, groupID, playerID, rank int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE group_entries SET rank = $1 WHERE group_id = $2 AND player_id = $3`, rank, groupID, playerID)
	if err != nil {
		return fmt.Errorf("failed to set entry rank: %w", err)
	}
	return checkAffectedRows(result, ErrGroupEntryNotFound)
}

func (r *postgresGroupRepository) MaxPosition(ctx context.Context, groupID int) (int, error) {
	var max int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM group_entries WHERE group_id = $1`, groupID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read max position for group %d: %w", groupID, err)
	}
	return max, nil
}

func (r *postgresGroupRepository) ListEntries(ctx context.Context, groupID int) ([]*GroupEntryDetail, error) {
	query := `
		SELECT ge.id, ge.group_id, ge.player_id, ge.team_id, ge.position, ge.rank,
			COALESCE(p.name, ''), COALESCE(t.short_name, ''), COALESCE(p.rating, 0)
		FROM group_entries ge
		LEFT JOIN players p ON ge.player_id = p.id
		LEFT JOIN teams t ON COALESCE(ge.team_id, p.team_id) = t.id
		WHERE ge.group_id = $1 ORDER BY ge.position`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for group %d: %w", groupID, err)
	}
	defer rows.Close()

	entries := make([]*GroupEntryDetail, 0)
	for rows.Next() {
		e := &GroupEntryDetail{}
		err := rows.Scan(&e.ID, &e.GroupID, &e.PlayerID, &e.TeamID, &e.Position, &e.Rank, &e.PlayerName, &e.TeamName, &e.Rating)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresGroupRepository) ListEventEntrants(ctx context.Context, eventID int) ([]*models.GroupEntry, error) {
	query := `
		SELECT ge.id, ge.group_id, ge.player_id, ge.team_id, ge.position, ge.rank
		FROM group_entries ge
		JOIN group_tables gt ON ge.group_id = gt.id
		WHERE gt.event_id = $1 ORDER BY ge.position, gt.group_index`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entrants for event %d: %w", eventID, err)
	}
	defer rows.Close()

	entries := make([]*models.GroupEntry, 0)
	for rows.Next() {
		e := &models.GroupEntry{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PlayerID, &e.TeamID, &e.Position, &e.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan entrant row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresGroupRepository) CountEventEntrants(ctx context.Context, eventID int) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM group_entries
		WHERE group_id IN (SELECT id FROM group_tables WHERE event_id = $1)`
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entrants for event %d: %w", eventID, err)
	}
	return count, nil
}
