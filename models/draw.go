package models

import "time"

// Draw assigns a player to a knockout bracket position (1..drawSize).
// Seed is the seed rank for seeded placements, 0 for random ones.
// Uniqueness of (event, position) and (event, player) is enforced by the
// store so racing draw actions cannot double-assign.
type Draw struct {
	ID       int       `json:"id"`
	EventID  int       `json:"event_id"`
	PlayerID int       `json:"player_id"`
	Seed     int       `json:"seed"`
	Position int       `json:"position"`
	DrawnAt  time.Time `json:"drawn_at"`
}
