package models

import (
	"fmt"
	"strings"
	"time"
)

type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusCheckin   MatchStatus = "checkin"
	StatusPlaying   MatchStatus = "playing"
	StatusFinished  MatchStatus = "finished"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCheckin, StatusPlaying, StatusFinished:
		return true
	}
	return false
}

// Side identifies one side of a match. Side one occupies player slots 1/2
// (team slots 1/2), side two occupies player slots 3/4.
type Side int

const (
	SideNone Side = 0
	SideOne  Side = 1
	SideTwo  Side = 2
)

func (s Side) Other() Side {
	switch s {
	case SideOne:
		return SideTwo
	case SideTwo:
		return SideOne
	}
	return SideNone
}

// ResultDoubleWalkover marks a match both sides defaulted. It is the only
// way a finished match ends with WinnerSide == SideNone.
const ResultDoubleWalkover = "W-W"

// Match is one scheduled encounter. MatchOrder is the globally unique ticket
// number used as the public identifier. A round-robin pairing references its
// GroupID; a team rubber references its parent team match via ParentID.
// Round is the knockout round number (1 = first round, 0 = not knockout).
type Match struct {
	ID         int         `json:"id"`
	EventID    int         `json:"event_id"`
	GroupID    *int        `json:"group_id,omitempty"`
	ParentID   *int        `json:"parent_id,omitempty"`
	MatchOrder int         `json:"match_order"`
	Round      int         `json:"round"`
	TableNo    *int        `json:"table_no,omitempty"`
	Date       *string     `json:"date,omitempty"`
	Time       *string     `json:"time,omitempty"`
	Player1ID  *int        `json:"player1_id,omitempty"`
	Player2ID  *int        `json:"player2_id,omitempty"`
	Player3ID  *int        `json:"player3_id,omitempty"`
	Player4ID  *int        `json:"player4_id,omitempty"`
	Team1ID    *int        `json:"team1_id,omitempty"`
	Team2ID    *int        `json:"team2_id,omitempty"`
	Team3ID    *int        `json:"team3_id,omitempty"`
	Team4ID    *int        `json:"team4_id,omitempty"`
	Result     *string     `json:"result,omitempty"`
	WinnerSide Side        `json:"winner_side"`
	Status     MatchStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (m *Match) ResultString() string {
	if m.Result == nil {
		return ""
	}
	return *m.Result
}

// IsWalkover reports whether the stored result was decided by default
// rather than play (single- or double-sided).
func (m *Match) IsWalkover() bool {
	r := m.ResultString()
	return r == ResultDoubleWalkover || strings.Contains(r, "W-0")
}

func (m *Match) IsDoubleWalkover() bool {
	return m.ResultString() == ResultDoubleWalkover
}

// WalkoverResult renders the result string for a single-sided walkover.
// The defaulting side shows "W-0", the other side the games awarded.
func WalkoverResult(winsNeeded int, defaulting Side) string {
	if defaulting == SideOne {
		return fmt.Sprintf("W-0:%d", winsNeeded)
	}
	return fmt.Sprintf("%d:W-0", winsNeeded)
}

// FlipResult mirrors an "a:b" result string for display from the other
// side's perspective. Non-numeric markers pass through unchanged.
func FlipResult(result string) string {
	parts := strings.SplitN(result, ":", 2)
	if len(parts) != 2 {
		return result
	}
	return parts[1] + ":" + parts[0]
}
