package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7893/PaddlePal/models"
)

type ratingFixture struct {
	events  *fakeEventRepo
	matches *fakeMatchRepo
	players *fakePlayerRepo
	ratings *fakeRatingRepo
	service RatingService
}

func newRatingFixture(t *testing.T, players ...*models.Player) *ratingFixture {
	t.Helper()
	events := &fakeEventRepo{events: []*models.Event{{
		ID: 1, TournamentID: 1, Key: "ms", Title: "Singles",
		Type: models.EventSingles, Stage: models.StageRoundRobin, Groups: 1, BestOf: 5,
	}}}
	ratings := &fakeRatingRepo{}
	matches := &fakeMatchRepo{ratings: ratings}
	playerRepo := newFakePlayers(players...)
	service := NewRatingService(matches, playerRepo, ratings, events, fakeTxManager{}, discardLogger())
	return &ratingFixture{events: events, matches: matches, players: playerRepo, ratings: ratings, service: service}
}

func finishedMatch(order, p1, p3 int, winner models.Side, result string) *models.Match {
	return &models.Match{
		EventID: 1, MatchOrder: order,
		Player1ID: intPtr(p1), Player3ID: intPtr(p3),
		Result: &result, WinnerSide: winner,
		Status: models.StatusFinished,
	}
}

func TestCompute_AppliesBandedExchange(t *testing.T) {
	fx := newRatingFixture(t,
		&models.Player{ID: 11, Name: "Ang", Rating: 1600},
		&models.Player{ID: 22, Name: "Berg", Rating: 1500},
	)
	m := finishedMatch(90001, 11, 22, models.SideOne, "3:1")
	require.NoError(t, fx.matches.Create(context.Background(), nil, m))

	res, err := fx.service.Compute(context.Background(), m.ID)
	require.NoError(t, err)

	// A 100-point favorite winning sits in the 4/20 band.
	assert.Equal(t, 11, res.WinnerID)
	assert.Equal(t, 22, res.LoserID)
	assert.Equal(t, 4, res.WinnerDelta)
	assert.Equal(t, -20, res.LoserDelta)

	winner, _ := fx.players.GetByID(context.Background(), 11)
	loser, _ := fx.players.GetByID(context.Background(), 22)
	assert.Equal(t, 1604, winner.Rating)
	assert.Equal(t, 1480, loser.Rating)

	require.Len(t, fx.ratings.records, 2)
	assert.Equal(t, 1600, fx.ratings.records[0].RatingBefore)
	assert.Equal(t, 1604, fx.ratings.records[0].RatingAfter)
	assert.Equal(t, 4, fx.ratings.records[0].Delta)
}

func TestCompute_UnratedPlayersUseBaseline(t *testing.T) {
	fx := newRatingFixture(t,
		&models.Player{ID: 11, Name: "Ang"},
		&models.Player{ID: 22, Name: "Berg"},
	)
	m := finishedMatch(90001, 11, 22, models.SideTwo, "1:3")
	require.NoError(t, fx.matches.Create(context.Background(), nil, m))

	res, err := fx.service.Compute(context.Background(), m.ID)
	require.NoError(t, err)

	// Both start at the 1500 baseline, so the closest band applies.
	assert.Equal(t, 22, res.WinnerID)
	assert.Equal(t, 8, res.WinnerDelta)
	assert.Equal(t, -8, res.LoserDelta)

	winner, _ := fx.players.GetByID(context.Background(), 22)
	loser, _ := fx.players.GetByID(context.Background(), 11)
	assert.Equal(t, 1508, winner.Rating)
	assert.Equal(t, 1492, loser.Rating)
}

func TestCompute_SecondRunConflicts(t *testing.T) {
	fx := newRatingFixture(t,
		&models.Player{ID: 11, Rating: 1500},
		&models.Player{ID: 22, Rating: 1500},
	)
	m := finishedMatch(90001, 11, 22, models.SideOne, "3:0")
	require.NoError(t, fx.matches.Create(context.Background(), nil, m))

	_, err := fx.service.Compute(context.Background(), m.ID)
	require.NoError(t, err)

	_, err = fx.service.Compute(context.Background(), m.ID)
	assert.ErrorIs(t, err, ErrRatingAlreadyComputed)

	// The conflict leaves the first exchange untouched.
	p, _ := fx.players.GetByID(context.Background(), 11)
	assert.Equal(t, 1508, p.Rating)
	assert.Len(t, fx.ratings.records, 2)
}

func TestCompute_Guards(t *testing.T) {
	fx := newRatingFixture(t,
		&models.Player{ID: 11, Rating: 1500},
		&models.Player{ID: 22, Rating: 1500},
	)

	unfinished := &models.Match{
		EventID: 1, MatchOrder: 90001,
		Player1ID: intPtr(11), Player3ID: intPtr(22),
		Status: models.StatusPlaying,
	}
	require.NoError(t, fx.matches.Create(context.Background(), nil, unfinished))
	_, err := fx.service.Compute(context.Background(), unfinished.ID)
	assert.ErrorIs(t, err, ErrMatchNotFinished)

	doubleWO := finishedMatch(90002, 11, 22, models.SideNone, models.ResultDoubleWalkover)
	require.NoError(t, fx.matches.Create(context.Background(), nil, doubleWO))
	_, err = fx.service.Compute(context.Background(), doubleWO.ID)
	assert.ErrorIs(t, err, ErrNoWinner)

	_, err = fx.service.Compute(context.Background(), 999)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestBatchCompute(t *testing.T) {
	fx := newRatingFixture(t,
		&models.Player{ID: 11, Rating: 1500},
		&models.Player{ID: 22, Rating: 1500},
		&models.Player{ID: 33, Rating: 1500},
		&models.Player{ID: 44, Rating: 1500},
	)
	m1 := finishedMatch(90001, 11, 22, models.SideOne, "3:0")
	m2 := finishedMatch(90002, 33, 44, models.SideTwo, "2:3")
	doubleWO := finishedMatch(90003, 11, 33, models.SideNone, models.ResultDoubleWalkover)
	pending := &models.Match{
		EventID: 1, MatchOrder: 90004,
		Player1ID: intPtr(22), Player3ID: intPtr(44),
		Status: models.StatusPlaying,
	}
	for _, m := range []*models.Match{m1, m2, doubleWO, pending} {
		require.NoError(t, fx.matches.Create(context.Background(), nil, m))
	}

	computed, err := fx.service.BatchCompute(context.Background(), "ms")
	require.NoError(t, err)
	assert.Equal(t, 2, computed)
	assert.Len(t, fx.ratings.records, 4)

	// A second batch finds nothing left to do.
	computed, err = fx.service.BatchCompute(context.Background(), "ms")
	require.NoError(t, err)
	assert.Zero(t, computed)

	_, err = fx.service.BatchCompute(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestBatchCompute_SkipsFinishedTeamTie(t *testing.T) {
	fx := newRatingFixture(t,
		&models.Player{ID: 11, Rating: 1500},
		&models.Player{ID: 22, Rating: 1500},
	)
	rubber := finishedMatch(70001, 11, 22, models.SideOne, "3:1")
	// The parent tie carries team slots only; it must never enter the
	// rating exchange, and it must not stall the rest of the batch.
	result := "3:1"
	tie := &models.Match{
		EventID: 1, MatchOrder: 80001,
		Team1ID: intPtr(5), Team3ID: intPtr(6),
		Result: &result, WinnerSide: models.SideOne,
		Status: models.StatusFinished,
	}
	require.NoError(t, fx.matches.Create(context.Background(), nil, rubber))
	require.NoError(t, fx.matches.Create(context.Background(), nil, tie))

	computed, err := fx.service.BatchCompute(context.Background(), "ms")
	require.NoError(t, err)
	assert.Equal(t, 1, computed)
	assert.Len(t, fx.ratings.records, 2)

	rated, err := fx.ratings.ExistsForMatch(context.Background(), tie.ID)
	require.NoError(t, err)
	assert.False(t, rated)
}

func TestLeaderboard_LimitClamp(t *testing.T) {
	fx := newRatingFixture(t)

	_, err := fx.service.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	_, err = fx.service.Leaderboard(context.Background(), 1000)
	require.NoError(t, err)
}
