package models

// DefaultRating is assumed for players whose rating has never been set.
const DefaultRating = 1500

type Player struct {
	ID           int     `json:"id"`
	TournamentID int     `json:"tournament_id"`
	TeamID       *int    `json:"team_id,omitempty"`
	Name         string  `json:"name"`
	Gender       string  `json:"gender"`
	Rating       int     `json:"rating"`
	Phone        *string `json:"phone,omitempty"`
}

// EffectiveRating treats an unset (zero) rating as the baseline.
func (p *Player) EffectiveRating() int {
	if p.Rating <= 0 {
		return DefaultRating
	}
	return p.Rating
}

type Team struct {
	ID           int     `json:"id"`
	TournamentID int     `json:"tournament_id"`
	Name         string  `json:"name"`
	ShortName    string  `json:"short_name"`
	FlagKey      *string `json:"-"`
	FlagURL      *string `json:"flag_url,omitempty"`
}
