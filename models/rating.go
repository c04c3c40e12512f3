package models

import "time"

// RatingRecord is the immutable audit row written when a match's rating
// deltas are applied. At most one row exists per (match, player); the
// store-level uniqueness is the idempotency gate for rating computation.
type RatingRecord struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	PlayerID     int       `json:"player_id"`
	EventID      int       `json:"event_id"`
	MatchID      int       `json:"match_id"`
	RatingBefore int       `json:"rating_before"`
	RatingAfter  int       `json:"rating_after"`
	Delta        int       `json:"rating_change"`
	CreatedAt    time.Time `json:"created_at"`
}
