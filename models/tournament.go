package models

import "time"

// Tournament is the singleton configuration row (id = 1). It is created once
// by the seed data and only ever updated by admin edits.
type Tournament struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Info      *string   `json:"info,omitempty"`
	Venue     *string   `json:"venue,omitempty"`
	StartDate *string   `json:"start_date,omitempty"`
	Tables    int       `json:"tables"`
	Days      int       `json:"days"`
	CreatedAt time.Time `json:"created_at"`
}

type Notice struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}
