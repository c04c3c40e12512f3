package models

// Reserved raw score values. They flag a non-contested game in the stored
// columns; no arithmetic may be done on them. Decode to a Game first.
const (
	// ScoreForfeit marks the side that defaulted the game.
	ScoreForfeit = 65535
	// ScoreVoid marks a column that carries no score at all (forfeit marker
	// rows written by older imports).
	ScoreVoid = -1
	// WalkoverPoints is the placeholder written on the non-defaulting side
	// of a synthesized walkover game.
	WalkoverPoints = 11
)

// Score is one stored per-game row of a match, ordered by GameNo.
type Score struct {
	ID         int `json:"id"`
	MatchID    int `json:"match_id"`
	GameNo     int `json:"game_no"`
	ScoreLeft  int `json:"score_left"`
	ScoreRight int `json:"score_right"`
}

type GameKind int

const (
	GamePlayed GameKind = iota
	GameForfeited
)

// Game is the decoded form of a Score row: either a played game with real
// point values, or a forfeited game identified by the defaulting side.
// Engines work on Games so the reserved sentinels never reach arithmetic.
type Game struct {
	No   int
	Kind GameKind

	// Played games only.
	Left  int
	Right int

	// Forfeited games only. SideNone means both columns carried sentinels.
	DefaultingSide Side
}

func isSentinel(v int) bool {
	return v == ScoreForfeit || v == ScoreVoid
}

// Game decodes the raw row into its tagged form.
func (s *Score) Game() Game {
	l, r := isSentinel(s.ScoreLeft), isSentinel(s.ScoreRight)
	if !l && !r {
		return Game{No: s.GameNo, Kind: GamePlayed, Left: s.ScoreLeft, Right: s.ScoreRight}
	}
	g := Game{No: s.GameNo, Kind: GameForfeited}
	switch {
	case l && r:
		g.DefaultingSide = SideNone
	case l:
		g.DefaultingSide = SideOne
	default:
		g.DefaultingSide = SideTwo
	}
	return g
}

// Winner is the side that took the game. A forfeited game goes to the
// non-defaulting side; a drawn or doubly void game goes to no one.
func (g Game) Winner() Side {
	if g.Kind == GameForfeited {
		return g.DefaultingSide.Other()
	}
	switch {
	case g.Left > g.Right:
		return SideOne
	case g.Right > g.Left:
		return SideTwo
	}
	return SideNone
}

// CountGames tallies games won per side from stored rows.
func CountGames(scores []*Score) (one, two int) {
	for _, s := range scores {
		switch s.Game().Winner() {
		case SideOne:
			one++
		case SideTwo:
			two++
		}
	}
	return one, two
}

// WalkoverScores synthesizes the stored rows for a single-sided walkover:
// exactly winsNeeded games, sentinel on the defaulting side, placeholder
// points on the other.
func WalkoverScores(matchID, winsNeeded int, defaulting Side) []*Score {
	rows := make([]*Score, 0, winsNeeded)
	for i := 1; i <= winsNeeded; i++ {
		s := &Score{MatchID: matchID, GameNo: i}
		if defaulting == SideOne {
			s.ScoreLeft, s.ScoreRight = ScoreForfeit, WalkoverPoints
		} else {
			s.ScoreLeft, s.ScoreRight = WalkoverPoints, ScoreForfeit
		}
		rows = append(rows, s)
	}
	return rows
}
