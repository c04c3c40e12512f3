package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/7893/PaddlePal/brackets"
	"github.com/7893/PaddlePal/models"
	"github.com/7893/PaddlePal/repositories"
)

// teamRubbers is the fixed number of rubbers a team tie is played over.
const teamRubbers = 5

type GameInput struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// MatchView is the public single-match payload: the match with names, its
// stored games, and for team matches the child rubbers.
type MatchView struct {
	Match   *repositories.MatchDetail   `json:"match"`
	Scores  []*models.Score             `json:"scores"`
	Rubbers []*repositories.MatchDetail `json:"rubbers,omitempty"`
}

type MatchService interface {
	GetByTicket(ctx context.Context, ticket int) (*MatchView, error)
	ListByEvent(ctx context.Context, eventKey string) ([]*repositories.MatchDetail, error)
	ListPlaying(ctx context.Context) ([]*models.Match, error)
	ListQueue(ctx context.Context) ([]*models.Match, error)

	// SubmitScore replaces the match's scoreline and finishes it. A
	// scoreline with equal games per side is rejected outright.
	SubmitScore(ctx context.Context, matchID int, games []GameInput) (*models.Match, error)
	// Walkover finishes the match by default. Side is "left", "right" or
	// "both"; the named side is the one that failed to appear.
	Walkover(ctx context.Context, matchID int, side string) (*models.Match, error)
	SetStatus(ctx context.Context, matchID int, status models.MatchStatus) error
	Schedule(ctx context.Context, matchID int, tableNo *int, date, time *string) error

	// EnsureRubbers creates the five child rubbers of a team match on
	// first use and returns them.
	EnsureRubbers(ctx context.Context, teamMatchID int) ([]*models.Match, error)
	SetRubberPlayers(ctx context.Context, rubberID int, p1, p2, p3, p4 *int) error
	// FinishTeamMatch recomputes a team match's result from its finished
	// rubbers. The tie is decided when one side has won a majority.
	FinishTeamMatch(ctx context.Context, teamMatchID int) (*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	scoreRepo repositories.ScoreRepository
	eventRepo repositories.EventRepository
	tickets   repositories.TicketSequence
	txManager repositories.TxManager
	logger    *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.ScoreRepository,
	eventRepo repositories.EventRepository,
	tickets repositories.TicketSequence,
	txManager repositories.TxManager,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		scoreRepo: scoreRepo,
		eventRepo: eventRepo,
		tickets:   tickets,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *matchService) match(ctx context.Context, id int) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return m, nil
}

func (s *matchService) GetByTicket(ctx context.Context, ticket int) (*MatchView, error) {
	m, err := s.matchRepo.GetByTicket(ctx, ticket)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match by ticket %d: %w", ticket, err)
	}
	details, err := s.matchRepo.ListDetailsByEvent(ctx, m.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match details: %w", err)
	}
	view := &MatchView{}
	for _, d := range details {
		if d.ID == m.ID {
			view.Match = d
		}
		if d.ParentID != nil && *d.ParentID == m.ID {
			view.Rubbers = append(view.Rubbers, d)
		}
	}
	if view.Match == nil {
		return nil, ErrMatchNotFound
	}
	view.Scores, err = s.scoreRepo.ListByMatch(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores for match %d: %w", m.ID, err)
	}
	return view, nil
}

func (s *matchService) ListByEvent(ctx context.Context, eventKey string) ([]*repositories.MatchDetail, error) {
	event, err := s.eventRepo.GetByKey(ctx, eventKey)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %q: %w", eventKey, err)
	}
	details, err := s.matchRepo.ListDetailsByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for event %q: %w", eventKey, err)
	}
	return details, nil
}

func (s *matchService) ListPlaying(ctx context.Context) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByStatus(ctx, models.StatusPlaying)
	if err != nil {
		return nil, fmt.Errorf("failed to list playing matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) ListQueue(ctx context.Context) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByStatus(ctx, models.StatusCheckin)
	if err != nil {
		return nil, fmt.Errorf("failed to list checked-in matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) SubmitScore(ctx context.Context, matchID int, games []GameInput) (*models.Match, error) {
	m, err := s.match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, m.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %d: %w", m.EventID, err)
	}
	if len(games) == 0 {
		return nil, ErrScorelineEmpty
	}
	if len(games) > event.BestOf {
		return nil, ErrScorelineTooLong
	}

	scores := make([]*models.Score, 0, len(games))
	for i, g := range games {
		scores = append(scores, &models.Score{MatchID: m.ID, GameNo: i + 1, ScoreLeft: g.Left, ScoreRight: g.Right})
	}
	one, two := models.CountGames(scores)
	if one == two {
		return nil, ErrScorelineTied
	}
	winner := models.SideOne
	wins := one
	if two > one {
		winner, wins = models.SideTwo, two
	}
	// A finished match must carry a decided best-of-N scoreline.
	if wins < event.BestOf/2+1 {
		return nil, ErrScorelineShort
	}
	result := fmt.Sprintf("%d:%d", one, two)

	advance, err := s.advancement(ctx, event, m, winner)
	if err != nil {
		return nil, err
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.scoreRepo.Replace(ctx, exec, m.ID, scores); err != nil {
			return err
		}
		if err := s.matchRepo.UpdateResult(ctx, exec, m.ID, result, winner, models.StatusFinished); err != nil {
			return err
		}
		return advance(exec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit score for match %d: %w", matchID, err)
	}

	m.Result = &result
	m.WinnerSide = winner
	m.Status = models.StatusFinished
	s.logger.InfoContext(ctx, "score submitted",
		slog.Int("match_id", m.ID), slog.String("result", result))
	return m, nil
}

func (s *matchService) Walkover(ctx context.Context, matchID int, side string) (*models.Match, error) {
	m, err := s.match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, m.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %d: %w", m.EventID, err)
	}

	var (
		defaulting models.Side
		both       bool
	)
	switch side {
	case "left":
		defaulting = models.SideOne
	case "right":
		defaulting = models.SideTwo
	case "both":
		both = true
	default:
		return nil, ErrInvalidWalkoverSide
	}

	var (
		result string
		winner models.Side
		scores []*models.Score
	)
	if both {
		result = models.ResultDoubleWalkover
		winner = models.SideNone
	} else {
		winsNeeded := event.WinsNeeded()
		result = models.WalkoverResult(winsNeeded, defaulting)
		winner = defaulting.Other()
		scores = models.WalkoverScores(m.ID, winsNeeded, defaulting)
	}

	advance := func(repositories.SQLExecutor) error { return nil }
	if !both {
		advance, err = s.advancement(ctx, event, m, winner)
		if err != nil {
			return nil, err
		}
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if both {
			if err := s.scoreRepo.DeleteByMatch(ctx, exec, m.ID); err != nil {
				return err
			}
		} else {
			if err := s.scoreRepo.Replace(ctx, exec, m.ID, scores); err != nil {
				return err
			}
		}
		if err := s.matchRepo.UpdateResult(ctx, exec, m.ID, result, winner, models.StatusFinished); err != nil {
			return err
		}
		return advance(exec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record walkover for match %d: %w", matchID, err)
	}

	m.Result = &result
	m.WinnerSide = winner
	m.Status = models.StatusFinished
	s.logger.InfoContext(ctx, "walkover recorded",
		slog.Int("match_id", m.ID), slog.String("side", side))
	return m, nil
}

// advancement resolves where a knockout winner moves and returns the write
// to run inside the finishing transaction. Non-knockout matches advance
// nowhere.
func (s *matchService) advancement(ctx context.Context, event *models.Event, m *models.Match, winner models.Side) (func(repositories.SQLExecutor) error, error) {
	noop := func(repositories.SQLExecutor) error { return nil }
	if event.Stage != models.StageKnockout || m.Round == 0 {
		return noop, nil
	}
	roundMatches, err := s.matchRepo.ListByRound(ctx, event.ID, m.Round)
	if err != nil {
		return nil, fmt.Errorf("failed to list round %d: %w", m.Round, err)
	}
	idx := 0
	for i, rm := range roundMatches {
		if rm.ID == m.ID {
			idx = i + 1
			break
		}
	}
	if idx == 0 {
		return nil, fmt.Errorf("match %d missing from its own round", m.ID)
	}
	nextRound, err := s.matchRepo.ListByRound(ctx, event.ID, m.Round+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list round %d: %w", m.Round+1, err)
	}
	if len(nextRound) == 0 {
		// Final: nowhere to advance.
		return noop, nil
	}
	targetIdx := brackets.NextMatch(idx)
	if targetIdx > len(nextRound) {
		return nil, fmt.Errorf("no shell for winner of match %d", m.ID)
	}
	target := nextRound[targetIdx-1]

	var lead, partner *int
	if winner == models.SideOne {
		lead, partner = m.Player1ID, m.Player2ID
	} else {
		lead, partner = m.Player3ID, m.Player4ID
	}
	targetSide := models.SideOne
	if brackets.NextSlot(idx) == 2 {
		targetSide = models.SideTwo
	}
	return func(exec repositories.SQLExecutor) error {
		return s.matchRepo.SetSide(ctx, exec, target.ID, targetSide, lead, partner)
	}, nil
}

func (s *matchService) SetStatus(ctx context.Context, matchID int, status models.MatchStatus) error {
	if !status.Valid() || status == models.StatusFinished {
		// Finished is only reachable through a scoreline or walkover.
		return ErrInvalidStatus
	}
	if _, err := s.match(ctx, matchID); err != nil {
		return err
	}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.UpdateStatus(ctx, exec, matchID, status)
	})
	if err != nil {
		return fmt.Errorf("failed to set status of match %d: %w", matchID, err)
	}
	return nil
}

func (s *matchService) Schedule(ctx context.Context, matchID int, tableNo *int, date, time *string) error {
	if _, err := s.match(ctx, matchID); err != nil {
		return err
	}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.UpdateSchedule(ctx, exec, matchID, tableNo, date, time)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule match %d: %w", matchID, err)
	}
	return nil
}

func (s *matchService) teamMatch(ctx context.Context, id int) (*models.Match, error) {
	m, err := s.match(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.ParentID != nil {
		return nil, ErrNotTeamMatch
	}
	event, err := s.eventRepo.GetByID(ctx, m.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %d: %w", m.EventID, err)
	}
	if event.Type != models.EventTeam {
		return nil, ErrNotTeamMatch
	}
	return m, nil
}

func (s *matchService) EnsureRubbers(ctx context.Context, teamMatchID int) ([]*models.Match, error) {
	parent, err := s.teamMatch(ctx, teamMatchID)
	if err != nil {
		return nil, err
	}
	rubbers, err := s.matchRepo.ListByParent(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rubbers of match %d: %w", parent.ID, err)
	}
	if len(rubbers) > 0 {
		return rubbers, nil
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for i := 0; i < teamRubbers; i++ {
			ticket, err := s.tickets.Next(ctx, exec, repositories.TicketRubber)
			if err != nil {
				return err
			}
			r := &models.Match{
				EventID:    parent.EventID,
				ParentID:   intPtr(parent.ID),
				MatchOrder: ticket,
				Team1ID:    parent.Team1ID,
				Team3ID:    parent.Team3ID,
				Status:     models.StatusScheduled,
			}
			if err := s.matchRepo.Create(ctx, exec, r); err != nil {
				return err
			}
			rubbers = append(rubbers, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rubbers for match %d: %w", parent.ID, err)
	}
	return rubbers, nil
}

func (s *matchService) SetRubberPlayers(ctx context.Context, rubberID int, p1, p2, p3, p4 *int) error {
	m, err := s.match(ctx, rubberID)
	if err != nil {
		return err
	}
	if m.ParentID == nil {
		return ErrNotTeamMatch
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.SetPlayers(ctx, exec, rubberID, p1, p2, p3, p4)
	})
	if err != nil {
		return fmt.Errorf("failed to set lineup of rubber %d: %w", rubberID, err)
	}
	return nil
}

func (s *matchService) FinishTeamMatch(ctx context.Context, teamMatchID int) (*models.Match, error) {
	parent, err := s.teamMatch(ctx, teamMatchID)
	if err != nil {
		return nil, err
	}
	rubbers, err := s.matchRepo.ListByParent(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rubbers of match %d: %w", parent.ID, err)
	}

	one, two := 0, 0
	for _, r := range rubbers {
		if r.Status != models.StatusFinished {
			continue
		}
		switch r.WinnerSide {
		case models.SideOne:
			one++
		case models.SideTwo:
			two++
		}
	}
	needed := teamRubbers/2 + 1
	if one < needed && two < needed {
		return nil, ErrMatchNotFinished
	}
	winner := models.SideOne
	if two > one {
		winner = models.SideTwo
	}
	result := fmt.Sprintf("%d:%d", one, two)

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.UpdateResult(ctx, exec, parent.ID, result, winner, models.StatusFinished)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to finish team match %d: %w", parent.ID, err)
	}

	parent.Result = &result
	parent.WinnerSide = winner
	parent.Status = models.StatusFinished
	s.logger.InfoContext(ctx, "team match finished",
		slog.Int("match_id", parent.ID), slog.String("result", result))
	return parent, nil
}
