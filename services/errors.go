package services

import "errors"

// Sentinel errors shared by the services and the HTTP error mapping.
var (
	// Generic validation failure for malformed input.
	ErrValidationFailed = errors.New("validation failed")

	// Not-found errors surfaced to handlers.
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrNoticeNotFound     = errors.New("notice not found")
	ErrEntryNotFound      = errors.New("group entry not found")

	// Conflicts.
	ErrEventKeyConflict   = errors.New("event key already in use")
	ErrGroupEntryConflict = errors.New("player or position already assigned in this group")
	ErrMatchesExist       = errors.New("matches already generated for this event")

	// Draw ceremony.
	ErrDrawTooLarge       = errors.New("draw sizes above 32 are not supported")
	ErrAllPlayersDrawn    = errors.New("every player already holds a draw position")
	ErrNoPositionsOpen    = errors.New("no open draw positions remain")
	ErrDrawPositionTaken  = errors.New("draw position already taken")
	ErrPlayerAlreadyDrawn = errors.New("player already holds a draw position")

	// Match results.
	ErrScorelineTied       = errors.New("scoreline has no winner: equal games per side")
	ErrScorelineEmpty      = errors.New("scoreline must contain at least one game")
	ErrScorelineTooLong    = errors.New("scoreline exceeds the event's best-of limit")
	ErrScorelineShort      = errors.New("scoreline ends before a side reached the games needed to win")
	ErrInvalidWalkoverSide = errors.New("walkover side must be left, right or both")
	ErrInvalidStatus       = errors.New("invalid match status")
	ErrMatchNotFinished    = errors.New("match is not finished")
	ErrNoWinner            = errors.New("match finished without a winner")
	ErrNotTeamMatch        = errors.New("match is not a team match")

	// Ratings.
	ErrRatingAlreadyComputed = errors.New("rating already computed for this match")

	// Auth.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
