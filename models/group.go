package models

// GroupTable is one round-robin group, or the seeding pool feeding a
// knockout bracket (knockout events carry exactly one group).
type GroupTable struct {
	ID      int    `json:"id"`
	EventID int    `json:"event_id"`
	Name    string `json:"name"`
	Index   int    `json:"index"`
}

// GroupEntry assigns a player to a group. Position is unique within the
// group and doubles as the seed rank source for knockout events. Rank is
// assigned externally (import or manual tie-break) once standings are final;
// zero means unranked.
type GroupEntry struct {
	ID       int  `json:"id"`
	GroupID  int  `json:"group_id"`
	PlayerID int  `json:"player_id"`
	TeamID   *int `json:"team_id,omitempty"`
	Position int  `json:"position"`
	Rank     int  `json:"rank"`
}
