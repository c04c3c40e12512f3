package brackets

import (
	"fmt"
	"strings"

	"github.com/7893/PaddlePal/models"
)

// CrossMode selects what a cell renders: the head-to-head result, or the
// scheduled time and ticket for the combined schedule+draw display.
type CrossMode int

const (
	ModeResult CrossMode = iota
	ModeTime
)

// Entry is one row of a group, ordered by position.
type Entry struct {
	PlayerID int
	Position int
	Rank     int
	Name     string
	Team     string
}

// PairMatch is the fixture form of a stored round-robin match: the two
// opposing lead players (slots 1 and 3) plus decoded games. The engine
// never touches raw score sentinels.
type PairMatch struct {
	MatchID int
	Ticket  int
	Time    string
	Result  string
	OneID   int
	TwoID   int
	Games   []models.Game
}

// FindPair locates the single match between two entrants, in either slot
// order, and reports whether the first entrant occupies side one.
func FindPair(matches []*PairMatch, playerID, opponentID int) (m *PairMatch, isLeft bool, ok bool) {
	for _, pm := range matches {
		if pm.OneID == playerID && pm.TwoID == opponentID {
			return pm, true, true
		}
		if pm.OneID == opponentID && pm.TwoID == playerID {
			return pm, false, true
		}
	}
	return nil, false, false
}

// Cell kinds. "result" and "wo" carry Text/Color/Ticket, "time" carries
// Text/Ticket, "blank" means no match exists, "blocked" is the diagonal.
type Cell struct {
	Kind   string `json:"kind"`
	Text   string `json:"text,omitempty"`
	Color  string `json:"color,omitempty"`
	Ticket int    `json:"pid,omitempty"`
}

type Row struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Cells    []Cell `json:"cells"`
	Points   int    `json:"points"`
	Rank     int    `json:"rank,omitempty"`
	RankTop  bool   `json:"rank_top,omitempty"`
}

type Table struct {
	GroupID   int    `json:"group_id"`
	GroupName string `json:"group_name"`
	Rows      []Row  `json:"rows"`
}

// BuildTable renders one group's N x N cross table. Entries must already be
// ordered by position; matches are whatever exists for the group.
//
// Point rule per located match, from the viewing entrant's side: win 2,
// contested loss 1, walkover loss 0, double walkover 0. A pair without a
// match renders blank and contributes nothing.
func BuildTable(groupID int, groupName string, entries []Entry, matches []*PairMatch, mode CrossMode) Table {
	t := Table{GroupID: groupID, GroupName: groupName, Rows: make([]Row, 0, len(entries))}

	for i, e := range entries {
		row := Row{Position: e.Position, Name: e.Name, Team: e.Team, Rank: e.Rank}
		row.RankTop = e.Rank >= 1 && e.Rank <= 2
		for j, opp := range entries {
			if i == j {
				row.Cells = append(row.Cells, Cell{Kind: "blocked"})
				continue
			}
			pm, isLeft, ok := FindPair(matches, e.PlayerID, opp.PlayerID)
			if !ok {
				row.Cells = append(row.Cells, Cell{Kind: "blank"})
				continue
			}
			if mode == ModeTime {
				row.Cells = append(row.Cells, Cell{Kind: "time", Text: pm.Time, Ticket: pm.Ticket})
				continue
			}
			cell, pts := resultCell(pm, isLeft, e.Position < opp.Position)
			row.Points += pts
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// resultCell renders one directed view of a match and returns the points
// the viewing entrant earned from it.
func resultCell(pm *PairMatch, isLeft, upperTriangle bool) (Cell, int) {
	one, two := countGameWins(pm.Games)
	myWins, oppWins := one, two
	if !isLeft {
		myWins, oppWins = two, one
	}

	isDouble := pm.Result == models.ResultDoubleWalkover
	isWalkover := isDouble || strings.Contains(pm.Result, "W-0")
	won := myWins > oppWins

	points := 0
	switch {
	case won:
		points = 2
	case isDouble:
		points = 0
	case isWalkover:
		// Walkover loser earns nothing.
		points = 0
	case pm.Result != "":
		points = 1
	}

	cell := Cell{Ticket: pm.Ticket, Color: "nol"}
	if won {
		cell.Color = "red"
	}

	myResult := pm.Result
	if !isLeft {
		myResult = models.FlipResult(pm.Result)
	}

	switch {
	case isDouble:
		cell.Kind = "wo"
		cell.Text = pm.Result
	case upperTriangle:
		// Aggregate set score plus points earned, paper-scoresheet style.
		cell.Kind = "result"
		cell.Text = fmt.Sprintf("%s<br>---<br>%d", myResult, points)
	default:
		// Per-game point differential from the viewer's perspective:
		// won game shows the opponent's score, lost game the viewer's
		// score negated. Forfeited games are skipped.
		cell.Kind = "result"
		cell.Text = gameDiffs(pm.Games, isLeft)
	}
	return cell, points
}

func countGameWins(games []models.Game) (one, two int) {
	for _, g := range games {
		switch g.Winner() {
		case models.SideOne:
			one++
		case models.SideTwo:
			two++
		}
	}
	return one, two
}

func gameDiffs(games []models.Game, isLeft bool) string {
	parts := make([]string, 0, len(games))
	for _, g := range games {
		if g.Kind != models.GamePlayed {
			continue
		}
		my, opp := g.Left, g.Right
		if !isLeft {
			my, opp = g.Right, g.Left
		}
		if my > opp {
			parts = append(parts, fmt.Sprintf("%d", opp))
		} else {
			parts = append(parts, fmt.Sprintf("%d", -my))
		}
	}
	return strings.Join(parts, "<br>")
}
