package brackets

import "errors"

// Supported single-elimination draw sizes.
const MaxDrawSize = 32

var ErrDrawTooLarge = errors.New("draw sizes above 32 are not supported")

// seedSlots maps seed rank (index 0 = seed 1) to bracket position for each
// supported draw size. The tables are fixed tournament data: seeds 1 and 2
// land in opposite halves so they can only meet in the final, and higher
// seeds meet weaker opposition in the earliest rounds. Do not derive these
// at runtime.
var seedSlots = map[int][]int{
	8:  {1, 8, 5, 4, 3, 6, 7, 2},
	16: {1, 16, 9, 8, 5, 12, 13, 4, 3, 14, 11, 6, 7, 10, 15, 2},
	32: {1, 32, 17, 16, 9, 24, 25, 8, 5, 28, 21, 12, 13, 20, 29, 4, 3, 30, 19, 14, 11, 22, 27, 6, 7, 26, 23, 10, 15, 18, 31, 2},
}

// DrawSize returns the smallest supported bracket that fits the entrant
// count.
func DrawSize(entrants int) (int, error) {
	switch {
	case entrants <= 8:
		return 8, nil
	case entrants <= 16:
		return 16, nil
	case entrants <= 32:
		return 32, nil
	}
	return 0, ErrDrawTooLarge
}

// SeedSlots returns a copy of the seed position table for a draw size.
func SeedSlots(size int) ([]int, bool) {
	t, ok := seedSlots[size]
	if !ok {
		return nil, false
	}
	out := make([]int, len(t))
	copy(out, t)
	return out, true
}

// SeedSlot returns the bracket position for a seed rank (1-based).
func SeedSlot(size, seedRank int) (int, bool) {
	t, ok := seedSlots[size]
	if !ok || seedRank < 1 || seedRank > len(t) {
		return 0, false
	}
	return t[seedRank-1], true
}
