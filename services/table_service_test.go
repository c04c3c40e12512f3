package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7893/PaddlePal/brackets"
	"github.com/7893/PaddlePal/models"
)

type tableFixture struct {
	events  *fakeEventRepo
	groups  *fakeGroupRepo
	matches *fakeMatchRepo
	scores  *fakeScoreRepo
	service TableService
}

func newTableFixture(t *testing.T, event *models.Event) *tableFixture {
	t.Helper()
	events := &fakeEventRepo{events: []*models.Event{event}}
	groups := newFakeGroups()
	matches := &fakeMatchRepo{}
	scores := newFakeScores()
	service := NewTableService(events, groups, matches, scores, discardLogger())
	return &tableFixture{events: events, groups: groups, matches: matches, scores: scores, service: service}
}

func TestStandings_AccumulatesPoints(t *testing.T) {
	fx := newTableFixture(t, singlesEvent())
	require.NoError(t, fx.groups.Create(context.Background(), nil, &models.GroupTable{EventID: 1, Name: "Group 1", Index: 1}))
	for i, pid := range []int{11, 22, 33} {
		require.NoError(t, fx.groups.AddEntry(context.Background(), nil, &models.GroupEntry{
			GroupID: 1, PlayerID: pid, Position: i + 1,
		}))
	}

	result1 := "3:1"
	m1 := &models.Match{
		EventID: 1, GroupID: intPtr(1), MatchOrder: 90001,
		Player1ID: intPtr(11), Player3ID: intPtr(22),
		Result: &result1, WinnerSide: models.SideOne, Status: models.StatusFinished,
	}
	require.NoError(t, fx.matches.Create(context.Background(), nil, m1))
	require.NoError(t, fx.scores.Replace(context.Background(), nil, m1.ID, []*models.Score{
		{MatchID: m1.ID, GameNo: 1, ScoreLeft: 11, ScoreRight: 5},
		{MatchID: m1.ID, GameNo: 2, ScoreLeft: 11, ScoreRight: 7},
		{MatchID: m1.ID, GameNo: 3, ScoreLeft: 9, ScoreRight: 11},
		{MatchID: m1.ID, GameNo: 4, ScoreLeft: 11, ScoreRight: 8},
	}))

	// Player 33's fixture against 11 is still unplayed, so it renders
	// blank and contributes nothing.
	m2 := &models.Match{
		EventID: 1, GroupID: intPtr(1), MatchOrder: 90002,
		Player1ID: intPtr(22), Player3ID: intPtr(33),
		Status: models.StatusScheduled,
	}
	require.NoError(t, fx.matches.Create(context.Background(), nil, m2))

	standings, err := fx.service.Standings(context.Background(), "ms")
	require.NoError(t, err)
	require.Len(t, standings, 1)
	require.Len(t, standings[0].Rows, 3)

	assert.Equal(t, 2, standings[0].Rows[0].Points)
	assert.Equal(t, 1, standings[0].Rows[1].Points)
	assert.Equal(t, 0, standings[0].Rows[2].Points)
}

func TestCrossTables_TimeModeSkipsScores(t *testing.T) {
	fx := newTableFixture(t, singlesEvent())
	require.NoError(t, fx.groups.Create(context.Background(), nil, &models.GroupTable{EventID: 1, Name: "Group 1", Index: 1}))
	for i, pid := range []int{11, 22} {
		require.NoError(t, fx.groups.AddEntry(context.Background(), nil, &models.GroupEntry{
			GroupID: 1, PlayerID: pid, Position: i + 1,
		}))
	}
	tm := "10:30"
	m := &models.Match{
		EventID: 1, GroupID: intPtr(1), MatchOrder: 90001, Time: &tm,
		Player1ID: intPtr(11), Player3ID: intPtr(22),
		Status: models.StatusScheduled,
	}
	require.NoError(t, fx.matches.Create(context.Background(), nil, m))

	tables, err := fx.service.CrossTables(context.Background(), "ms", brackets.ModeTime)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	cell := tables[0].Rows[0].Cells[1]
	assert.Equal(t, "time", cell.Kind)
	assert.Equal(t, "10:30", cell.Text)
	assert.Equal(t, 90001, cell.Ticket)
}

func TestBracket(t *testing.T) {
	event := singlesEvent()
	event.Stage = models.StageKnockout
	fx := newTableFixture(t, event)

	result := "3:0"
	for _, m := range []*models.Match{
		{EventID: 1, MatchOrder: 90001, Round: 1, Player1ID: intPtr(11), Player3ID: intPtr(22),
			Result: &result, WinnerSide: models.SideOne, Status: models.StatusFinished},
		{EventID: 1, MatchOrder: 90002, Round: 1, Player1ID: intPtr(33), Player3ID: intPtr(44),
			Status: models.StatusScheduled},
		{EventID: 1, MatchOrder: 90003, Round: 2, Status: models.StatusScheduled},
	} {
		require.NoError(t, fx.matches.Create(context.Background(), nil, m))
	}

	rounds, err := fx.service.Bracket(context.Background(), "ms")
	require.NoError(t, err)
	require.Len(t, rounds, 2)

	assert.Equal(t, 1, rounds[0].Round)
	require.Len(t, rounds[0].Matches, 2)
	assert.Equal(t, "3:0", rounds[0].Matches[0].Result)
	assert.Equal(t, models.SideOne, rounds[0].Matches[0].WinnerSide)
	require.Len(t, rounds[1].Matches, 1)
}

func TestBracket_RoundRobinRejected(t *testing.T) {
	fx := newTableFixture(t, singlesEvent())
	_, err := fx.service.Bracket(context.Background(), "ms")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
