package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/7893/PaddlePal/brackets"
	"github.com/7893/PaddlePal/models"
	"github.com/7893/PaddlePal/repositories"
)

// StandingRow is one entrant's aggregate line in a group.
type StandingRow struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Points   int    `json:"points"`
	Rank     int    `json:"rank,omitempty"`
}

type GroupStanding struct {
	GroupID   int           `json:"group_id"`
	GroupName string        `json:"group_name"`
	Rows      []StandingRow `json:"rows"`
}

// BracketMatch is one knockout fixture in the public bracket view.
type BracketMatch struct {
	Ticket     int         `json:"ticket"`
	SideOne    string      `json:"side_one"`
	SideTwo    string      `json:"side_two"`
	Result     string      `json:"result,omitempty"`
	WinnerSide models.Side `json:"winner_side"`
	Status     string      `json:"status"`
}

type BracketRound struct {
	Round   int            `json:"round"`
	Matches []BracketMatch `json:"matches"`
}

type TableService interface {
	// CrossTables renders every group of the event as an N x N cross
	// table, one goroutine per group.
	CrossTables(ctx context.Context, eventKey string, mode brackets.CrossMode) ([]brackets.Table, error)
	Standings(ctx context.Context, eventKey string) ([]GroupStanding, error)
	Bracket(ctx context.Context, eventKey string) ([]BracketRound, error)
}

type tableService struct {
	eventRepo repositories.EventRepository
	groupRepo repositories.GroupRepository
	matchRepo repositories.MatchRepository
	scoreRepo repositories.ScoreRepository
	logger    *slog.Logger
}

func NewTableService(
	eventRepo repositories.EventRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.ScoreRepository,
	logger *slog.Logger,
) TableService {
	return &tableService{
		eventRepo: eventRepo,
		groupRepo: groupRepo,
		matchRepo: matchRepo,
		scoreRepo: scoreRepo,
		logger:    logger,
	}
}

func (s *tableService) event(ctx context.Context, key string) (*models.Event, error) {
	event, err := s.eventRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %q: %w", key, err)
	}
	return event, nil
}

func (s *tableService) CrossTables(ctx context.Context, eventKey string, mode brackets.CrossMode) ([]brackets.Table, error) {
	event, err := s.event(ctx, eventKey)
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for event %q: %w", eventKey, err)
	}

	tables := make([]brackets.Table, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			t, err := s.buildGroupTable(gctx, event, group, mode)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *tableService) buildGroupTable(ctx context.Context, event *models.Event, group *models.GroupTable, mode brackets.CrossMode) (brackets.Table, error) {
	entries, err := s.groupRepo.ListEntries(ctx, group.ID)
	if err != nil {
		return brackets.Table{}, fmt.Errorf("failed to list entries for group %d: %w", group.ID, err)
	}
	details, err := s.matchRepo.ListDetailsByGroup(ctx, group.ID)
	if err != nil {
		return brackets.Table{}, fmt.Errorf("failed to list matches for group %d: %w", group.ID, err)
	}

	pairs := make([]*brackets.PairMatch, 0, len(details))
	for _, d := range details {
		pm := &brackets.PairMatch{
			MatchID: d.ID,
			Ticket:  d.MatchOrder,
			Time:    derefString(d.Time),
			Result:  d.ResultString(),
			OneID:   derefInt(d.Player1ID),
			TwoID:   derefInt(d.Player3ID),
		}
		if mode == brackets.ModeResult && d.Status == models.StatusFinished {
			scores, err := s.scoreRepo.ListByMatch(ctx, d.ID)
			if err != nil {
				return brackets.Table{}, fmt.Errorf("failed to list scores for match %d: %w", d.ID, err)
			}
			for _, sc := range scores {
				pm.Games = append(pm.Games, sc.Game())
			}
		}
		pairs = append(pairs, pm)
	}

	rows := make([]brackets.Entry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, brackets.Entry{
			PlayerID: e.PlayerID,
			Position: e.Position,
			Rank:     e.Rank,
			Name:     entrantLabel(event, e, details),
			Team:     e.TeamName,
		})
	}
	return brackets.BuildTable(group.ID, group.Name, rows, pairs, mode), nil
}

// entrantLabel appends the doubles partner's name, read from the match rows
// the entrant appears in, to the lead player's name.
func entrantLabel(event *models.Event, e *repositories.GroupEntryDetail, details []*repositories.MatchDetail) string {
	if event.Type != models.EventDoubles {
		return e.PlayerName
	}
	for _, d := range details {
		if derefInt(d.Player1ID) == e.PlayerID && d.Player2Name != "" {
			return e.PlayerName + " / " + d.Player2Name
		}
		if derefInt(d.Player3ID) == e.PlayerID && d.Player4Name != "" {
			return e.PlayerName + " / " + d.Player4Name
		}
	}
	return e.PlayerName
}

func (s *tableService) Standings(ctx context.Context, eventKey string) ([]GroupStanding, error) {
	tables, err := s.CrossTables(ctx, eventKey, brackets.ModeResult)
	if err != nil {
		return nil, err
	}
	out := make([]GroupStanding, 0, len(tables))
	for _, t := range tables {
		gs := GroupStanding{GroupID: t.GroupID, GroupName: t.GroupName}
		for _, row := range t.Rows {
			gs.Rows = append(gs.Rows, StandingRow{
				Position: row.Position,
				Name:     row.Name,
				Team:     row.Team,
				Points:   row.Points,
				Rank:     row.Rank,
			})
		}
		out = append(out, gs)
	}
	return out, nil
}

func (s *tableService) Bracket(ctx context.Context, eventKey string) ([]BracketRound, error) {
	event, err := s.event(ctx, eventKey)
	if err != nil {
		return nil, err
	}
	if event.Stage != models.StageKnockout {
		return nil, fmt.Errorf("%w: event %q has no bracket", ErrValidationFailed, eventKey)
	}
	details, err := s.matchRepo.ListDetailsByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for event %q: %w", eventKey, err)
	}

	byRound := make(map[int][]BracketMatch)
	maxRound := 0
	for _, d := range details {
		if d.Round == 0 {
			continue
		}
		byRound[d.Round] = append(byRound[d.Round], BracketMatch{
			Ticket:     d.MatchOrder,
			SideOne:    d.Player1Name,
			SideTwo:    d.Player3Name,
			Result:     d.ResultString(),
			WinnerSide: d.WinnerSide,
			Status:     string(d.Status),
		})
		if d.Round > maxRound {
			maxRound = d.Round
		}
	}
	rounds := make([]BracketRound, 0, maxRound)
	for r := 1; r <= maxRound; r++ {
		rounds = append(rounds, BracketRound{Round: r, Matches: byRound[r]})
	}
	return rounds, nil
}
