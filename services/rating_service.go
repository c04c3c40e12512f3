package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/7893/PaddlePal/models"
	"github.com/7893/PaddlePal/ratings"
	"github.com/7893/PaddlePal/repositories"
)

// RatingResult reports one applied rating exchange.
type RatingResult struct {
	MatchID     int `json:"match_id"`
	WinnerID    int `json:"winner_id"`
	LoserID     int `json:"loser_id"`
	WinnerDelta int `json:"winner_delta"`
	LoserDelta  int `json:"loser_delta"`
}

type RatingService interface {
	// Compute applies the rating exchange of one finished match: two
	// audit rows plus both running ratings, in one transaction. A second
	// call for the same match fails with a conflict.
	Compute(ctx context.Context, matchID int) (*RatingResult, error)
	// BatchCompute applies every finished, not-yet-rated match of the
	// event and returns how many it processed.
	BatchCompute(ctx context.Context, eventKey string) (int, error)
	History(ctx context.Context, playerID int) ([]*repositories.RatingHistoryRow, error)
	Leaderboard(ctx context.Context, limit int) ([]*repositories.LeaderboardRow, error)
}

type ratingService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	ratingRepo repositories.RatingRepository
	eventRepo  repositories.EventRepository
	txManager  repositories.TxManager
	logger     *slog.Logger
}

func NewRatingService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	ratingRepo repositories.RatingRepository,
	eventRepo repositories.EventRepository,
	txManager repositories.TxManager,
	logger *slog.Logger,
) RatingService {
	return &ratingService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		ratingRepo: ratingRepo,
		eventRepo:  eventRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

func (s *ratingService) Compute(ctx context.Context, matchID int) (*RatingResult, error) {
	m, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	return s.compute(ctx, m)
}

func (s *ratingService) compute(ctx context.Context, m *models.Match) (*RatingResult, error) {
	if m.Status != models.StatusFinished {
		return nil, ErrMatchNotFinished
	}
	if m.WinnerSide == models.SideNone {
		// Double walkovers carry no winner and move no points.
		return nil, ErrNoWinner
	}

	var winnerID, loserID *int
	if m.WinnerSide == models.SideOne {
		winnerID, loserID = m.Player1ID, m.Player3ID
	} else {
		winnerID, loserID = m.Player3ID, m.Player1ID
	}
	if winnerID == nil || loserID == nil {
		return nil, fmt.Errorf("%w: match %d has an open player slot", ErrValidationFailed, m.ID)
	}

	winner, err := s.playerRepo.GetByID(ctx, *winnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load winner %d: %w", *winnerID, err)
	}
	loser, err := s.playerRepo.GetByID(ctx, *loserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load loser %d: %w", *loserID, err)
	}
	event, err := s.eventRepo.GetByID(ctx, m.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %d: %w", m.EventID, err)
	}

	wBefore, lBefore := winner.EffectiveRating(), loser.EffectiveRating()
	wDelta, lDelta := ratings.Change(wBefore, lBefore)

	records := []*models.RatingRecord{
		{
			TournamentID: event.TournamentID, PlayerID: winner.ID, EventID: event.ID, MatchID: m.ID,
			RatingBefore: wBefore, RatingAfter: wBefore + wDelta, Delta: wDelta,
		},
		{
			TournamentID: event.TournamentID, PlayerID: loser.ID, EventID: event.ID, MatchID: m.ID,
			RatingBefore: lBefore, RatingAfter: lBefore + lDelta, Delta: lDelta,
		},
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, rec := range records {
			if err := s.ratingRepo.Create(ctx, exec, rec); err != nil {
				return err
			}
			if err := s.playerRepo.SetRating(ctx, exec, rec.PlayerID, rec.RatingAfter); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrRatingRecordConflict) {
			return nil, ErrRatingAlreadyComputed
		}
		return nil, fmt.Errorf("failed to apply rating for match %d: %w", m.ID, err)
	}

	s.logger.InfoContext(ctx, "rating applied",
		slog.Int("match_id", m.ID),
		slog.Int("winner_id", winner.ID), slog.Int("winner_delta", wDelta),
		slog.Int("loser_id", loser.ID), slog.Int("loser_delta", lDelta))
	return &RatingResult{
		MatchID:     m.ID,
		WinnerID:    winner.ID,
		LoserID:     loser.ID,
		WinnerDelta: wDelta,
		LoserDelta:  lDelta,
	}, nil
}

func (s *ratingService) BatchCompute(ctx context.Context, eventKey string) (int, error) {
	event, err := s.eventRepo.GetByKey(ctx, eventKey)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return 0, ErrEventNotFound
		}
		return 0, fmt.Errorf("failed to load event %q: %w", eventKey, err)
	}
	matches, err := s.matchRepo.ListFinishedUnrated(ctx, event.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list unrated matches: %w", err)
	}

	computed := 0
	for _, m := range matches {
		if _, err := s.compute(ctx, m); err != nil {
			// A concurrent compute may win the race per match; skip and
			// continue with the rest.
			if errors.Is(err, ErrRatingAlreadyComputed) || errors.Is(err, ErrNoWinner) {
				continue
			}
			return computed, err
		}
		computed++
	}
	s.logger.InfoContext(ctx, "batch rating computed",
		slog.String("event", eventKey), slog.Int("count", computed))
	return computed, nil
}

func (s *ratingService) History(ctx context.Context, playerID int) ([]*repositories.RatingHistoryRow, error) {
	history, err := s.ratingRepo.HistoryByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating history for player %d: %w", playerID, err)
	}
	return history, nil
}

func (s *ratingService) Leaderboard(ctx context.Context, limit int) ([]*repositories.LeaderboardRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.playerRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return rows, nil
}
