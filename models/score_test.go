package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreGame_Decode(t *testing.T) {
	tests := []struct {
		name  string
		left  int
		right int
		kind  GameKind
		side  Side
	}{
		{"played", 11, 9, GamePlayed, SideNone},
		{"left forfeit", ScoreForfeit, WalkoverPoints, GameForfeited, SideOne},
		{"right forfeit", WalkoverPoints, ScoreForfeit, GameForfeited, SideTwo},
		{"left void", ScoreVoid, 11, GameForfeited, SideOne},
		{"both sentinels", ScoreForfeit, ScoreVoid, GameForfeited, SideNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Score{GameNo: 2, ScoreLeft: tt.left, ScoreRight: tt.right}
			g := s.Game()
			assert.Equal(t, 2, g.No)
			assert.Equal(t, tt.kind, g.Kind)
			if tt.kind == GameForfeited {
				assert.Equal(t, tt.side, g.DefaultingSide)
			} else {
				assert.Equal(t, tt.left, g.Left)
				assert.Equal(t, tt.right, g.Right)
			}
		})
	}
}

func TestGameWinner(t *testing.T) {
	assert.Equal(t, SideOne, Game{Kind: GamePlayed, Left: 11, Right: 9}.Winner())
	assert.Equal(t, SideTwo, Game{Kind: GamePlayed, Left: 9, Right: 11}.Winner())
	assert.Equal(t, SideNone, Game{Kind: GamePlayed, Left: 10, Right: 10}.Winner())

	// A forfeited game goes to the side that showed up.
	assert.Equal(t, SideTwo, Game{Kind: GameForfeited, DefaultingSide: SideOne}.Winner())
	assert.Equal(t, SideOne, Game{Kind: GameForfeited, DefaultingSide: SideTwo}.Winner())
	assert.Equal(t, SideNone, Game{Kind: GameForfeited, DefaultingSide: SideNone}.Winner())
}

func TestCountGames_MixedRows(t *testing.T) {
	scores := []*Score{
		{GameNo: 1, ScoreLeft: 11, ScoreRight: 7},
		{GameNo: 2, ScoreLeft: 9, ScoreRight: 11},
		{GameNo: 3, ScoreLeft: ScoreForfeit, ScoreRight: WalkoverPoints},
		{GameNo: 4, ScoreLeft: 12, ScoreRight: 10},
	}
	one, two := CountGames(scores)
	assert.Equal(t, 2, one)
	assert.Equal(t, 2, two)
}

func TestWalkoverScores(t *testing.T) {
	rows := WalkoverScores(42, 3, SideTwo)
	require.Len(t, rows, 3)

	for i, s := range rows {
		assert.Equal(t, 42, s.MatchID)
		assert.Equal(t, i+1, s.GameNo)
		assert.Equal(t, WalkoverPoints, s.ScoreLeft)
		assert.Equal(t, ScoreForfeit, s.ScoreRight)
		assert.Equal(t, SideOne, s.Game().Winner())
	}

	rows = WalkoverScores(42, 3, SideOne)
	one, two := CountGames(rows)
	assert.Equal(t, 0, one)
	assert.Equal(t, 3, two)
}
