package models

import "time"

// EventType is the discipline of an event.
type EventType string

const (
	EventSingles EventType = "singles"
	EventDoubles EventType = "doubles"
	EventTeam    EventType = "team"
)

func (t EventType) Valid() bool {
	switch t {
	case EventSingles, EventDoubles, EventTeam:
		return true
	}
	return false
}

// EventStage selects the progression model of an event.
type EventStage string

const (
	StageRoundRobin EventStage = "roundrobin"
	StageKnockout   EventStage = "knockout"
)

func (s EventStage) Valid() bool {
	return s == StageRoundRobin || s == StageKnockout
}

// Event belongs to the tournament and owns its groups, entries, draws and
// matches. Key is the stable external identifier used by the public pages.
type Event struct {
	ID           int        `json:"id"`
	TournamentID int        `json:"tournament_id"`
	Key          string     `json:"key"`
	Title        string     `json:"title"`
	Type         EventType  `json:"type"`
	Stage        EventStage `json:"stage"`
	Groups       int        `json:"groups"`
	BestOf       int        `json:"best_of"`
	CreatedAt    time.Time  `json:"created_at"`
}

// WinsNeeded is the games a side must take to win a best-of-N match.
func (e *Event) WinsNeeded() int {
	return e.BestOf/2 + 1
}
