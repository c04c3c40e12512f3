package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7893/PaddlePal/models"
)

type drawFixture struct {
	events  *fakeEventRepo
	groups  *fakeGroupRepo
	draws   *fakeDrawRepo
	matches *fakeMatchRepo
	service DrawService
}

// newDrawFixture builds an event with one group and the given players
// entered at positions 1..n.
func newDrawFixture(t *testing.T, key string, stage models.EventStage, playerIDs []int) *drawFixture {
	t.Helper()
	events := &fakeEventRepo{events: []*models.Event{{
		ID: 1, TournamentID: 1, Key: key, Title: key,
		Type: models.EventSingles, Stage: stage, Groups: 1, BestOf: 5,
	}}}
	groups := newFakeGroups()
	require.NoError(t, groups.Create(context.Background(), nil, &models.GroupTable{EventID: 1, Name: "Group 1", Index: 1}))
	for i, pid := range playerIDs {
		require.NoError(t, groups.AddEntry(context.Background(), nil, &models.GroupEntry{
			GroupID: 1, PlayerID: pid, Position: i + 1,
		}))
	}
	draws := &fakeDrawRepo{groups: groups}
	matches := &fakeMatchRepo{}

	service := NewDrawService(events, groups, draws, matches, newFakeTickets(), fakeTxManager{},
		rand.New(rand.NewSource(1)), discardLogger())
	return &drawFixture{events: events, groups: groups, draws: draws, matches: matches, service: service}
}

func TestDrawStart_PlacesSeeds(t *testing.T) {
	fx := newDrawFixture(t, "ms", models.StageKnockout, []int{101, 102, 103, 104, 105})

	status, err := fx.service.Start(context.Background(), "ms")
	require.NoError(t, err)

	assert.Equal(t, 8, status.DrawSize)
	assert.Equal(t, 5, status.Entrants)
	assert.Len(t, status.Taken, 5)
	assert.Empty(t, status.Undrawn)

	byPlayer := map[int]*models.Draw{}
	for _, d := range fx.draws.draws {
		byPlayer[d.PlayerID] = d
	}
	// Seed order follows entry position; slots come from the seed table.
	assert.Equal(t, 1, byPlayer[101].Position)
	assert.Equal(t, 8, byPlayer[102].Position)
	assert.Equal(t, 5, byPlayer[103].Position)
	assert.Equal(t, 4, byPlayer[104].Position)
	assert.Equal(t, 3, byPlayer[105].Position)
	assert.Equal(t, 1, byPlayer[101].Seed)
	assert.Equal(t, 5, byPlayer[105].Seed)
}

func TestDrawStart_IsRepeatable(t *testing.T) {
	fx := newDrawFixture(t, "ms", models.StageKnockout, []int{101, 102, 103})

	_, err := fx.service.Start(context.Background(), "ms")
	require.NoError(t, err)

	// A restart clears the previous ceremony instead of conflicting.
	status, err := fx.service.Start(context.Background(), "ms")
	require.NoError(t, err)
	assert.Len(t, status.Taken, 3)
	assert.Len(t, fx.draws.draws, 3)
}

func TestDrawNext_DrawsFromUndrawn(t *testing.T) {
	players := make([]int, 0, 10)
	for i := 0; i < 10; i++ {
		players = append(players, 100+i)
	}
	fx := newDrawFixture(t, "ms", models.StageKnockout, players)

	_, err := fx.service.Start(context.Background(), "ms")
	require.NoError(t, err)
	// Eight seeds placed, two entrants left for the open ceremony.

	d, err := fx.service.Next(context.Background(), "ms")
	require.NoError(t, err)
	assert.Contains(t, []int{108, 109}, d.PlayerID)
	assert.GreaterOrEqual(t, d.Position, 1)
	assert.LessOrEqual(t, d.Position, 16)
	assert.Zero(t, d.Seed)

	n, err := fx.service.Auto(context.Background(), "ms")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = fx.service.Next(context.Background(), "ms")
	assert.ErrorIs(t, err, ErrAllPlayersDrawn)
}

func TestDrawNext_UnknownEvent(t *testing.T) {
	fx := newDrawFixture(t, "ms", models.StageKnockout, []int{101})
	_, err := fx.service.Next(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDraw_TooManyEntrants(t *testing.T) {
	players := make([]int, 0, 33)
	for i := 0; i < 33; i++ {
		players = append(players, 100+i)
	}
	fx := newDrawFixture(t, "ms", models.StageKnockout, players)

	_, err := fx.service.Status(context.Background(), "ms")
	assert.ErrorIs(t, err, ErrDrawTooLarge)
}

func TestDrawReset(t *testing.T) {
	fx := newDrawFixture(t, "ms", models.StageKnockout, []int{101, 102})
	_, err := fx.service.Start(context.Background(), "ms")
	require.NoError(t, err)

	require.NoError(t, fx.service.Reset(context.Background(), "ms"))
	assert.Empty(t, fx.draws.draws)
}

func TestGenerateMatches_RoundRobin(t *testing.T) {
	fx := newDrawFixture(t, "grp", models.StageRoundRobin, []int{101, 102, 103, 104})

	created, err := fx.service.GenerateMatches(context.Background(), "grp")
	require.NoError(t, err)
	assert.Equal(t, 6, created)
	require.Len(t, fx.matches.matches, 6)

	// Tickets come from the individual band, consecutively.
	for i, m := range fx.matches.matches {
		assert.Equal(t, 90001+i, m.MatchOrder)
		require.NotNil(t, m.GroupID)
		assert.Equal(t, 1, *m.GroupID)
		require.NotNil(t, m.Player1ID)
		require.NotNil(t, m.Player3ID)
		assert.Equal(t, models.StatusScheduled, m.Status)
	}

	// Every pair appears exactly once.
	seen := map[[2]int]bool{}
	for _, m := range fx.matches.matches {
		a, b := *m.Player1ID, *m.Player3ID
		if a > b {
			a, b = b, a
		}
		assert.False(t, seen[[2]int{a, b}], "pair %d-%d duplicated", a, b)
		seen[[2]int{a, b}] = true
	}
	assert.Len(t, seen, 6)

	// Regeneration is refused once fixtures exist.
	_, err = fx.service.GenerateMatches(context.Background(), "grp")
	assert.ErrorIs(t, err, ErrMatchesExist)
}

func TestGenerateMatches_Knockout(t *testing.T) {
	fx := newDrawFixture(t, "ms", models.StageKnockout, []int{101, 102, 103, 104, 105})
	_, err := fx.service.Start(context.Background(), "ms")
	require.NoError(t, err)

	created, err := fx.service.GenerateMatches(context.Background(), "ms")
	require.NoError(t, err)
	// Four first-round matches plus shells: two semifinals and a final.
	assert.Equal(t, 7, created)

	round1, err := fx.matches.ListByRound(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, round1, 4)

	// Slots 1-8 held 101, -, 105, 104, 103, -, -, 102 after seeding.
	assert.Equal(t, 101, *round1[0].Player1ID)
	assert.Nil(t, round1[0].Player3ID)
	assert.Equal(t, 105, *round1[1].Player1ID)
	assert.Equal(t, 104, *round1[1].Player3ID)
	assert.Equal(t, 103, *round1[2].Player1ID)
	assert.Nil(t, round1[2].Player3ID)
	assert.Nil(t, round1[3].Player1ID)
	assert.Equal(t, 102, *round1[3].Player3ID)

	round2, err := fx.matches.ListByRound(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, round2, 2)
	assert.Nil(t, round2[0].Player1ID)

	round3, err := fx.matches.ListByRound(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, round3, 1)
}
