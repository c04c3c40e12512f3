// Package ratings implements the CTTA-style banded rating exchange.
package ratings

import "math"

// Band covers rating differences up to MaxDiff inclusive. FavoredGain is
// what the higher-rated player earns by winning; UnderdogLoss is what the
// lower-rated player pays for losing. Loss >= gain by construction, so the
// exchange is deliberately not zero-sum.
type Band struct {
	MaxDiff      int
	FavoredGain  int
	UnderdogLoss int
}

// bands is ordered ascending by threshold and terminates in an unbounded
// band. Fixed federation data; do not tune.
var bands = []Band{
	{12, 8, 8},
	{37, 7, 10},
	{62, 6, 13},
	{87, 5, 16},
	{112, 4, 20},
	{137, 3, 25},
	{162, 2, 30},
	{187, 2, 35},
	{212, 1, 40},
	{237, 1, 45},
	{math.MaxInt, 0, 50},
}

// Bands returns a copy of the band table.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

func bandFor(diff int) Band {
	for _, b := range bands {
		if diff <= b.MaxDiff {
			return b
		}
	}
	return bands[len(bands)-1]
}

// Change returns the signed deltas for winner and loser. When the favorite
// wins the band applies directly; when the underdog wins the two band
// values swap, so upsets move more points than expected results.
func Change(winnerRating, loserRating int) (winnerDelta, loserDelta int) {
	diff := winnerRating - loserRating
	if diff < 0 {
		diff = -diff
	}
	b := bandFor(diff)
	if winnerRating >= loserRating {
		return b.FavoredGain, -b.UnderdogLoss
	}
	return b.UnderdogLoss, -b.FavoredGain
}
