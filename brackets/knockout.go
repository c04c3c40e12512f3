package brackets

// Rounds is the number of knockout rounds for a draw size (8 -> 3).
func Rounds(drawSize int) int {
	r := 0
	for s := drawSize; s > 1; s >>= 1 {
		r++
	}
	return r
}

// MatchesInRound is the match count of a round (1-based) of a draw.
func MatchesInRound(drawSize, round int) int {
	return drawSize >> uint(round)
}

// NextMatch maps a match index within its round (1-based) to the index of
// the next-round match its winner feeds.
func NextMatch(matchIndex int) int {
	return (matchIndex + 1) / 2
}

// NextSlot is the side of the next-round match the winner occupies: odd
// match indexes feed side one, even feed side two.
func NextSlot(matchIndex int) int {
	if matchIndex%2 == 1 {
		return 1
	}
	return 2
}

// MeetRound is the earliest round in which the occupants of two bracket
// positions can face each other.
func MeetRound(slotA, slotB int) int {
	round := 1
	a, b := (slotA+1)/2, (slotB+1)/2
	for a != b {
		a, b = (a+1)/2, (b+1)/2
		round++
	}
	return round
}

// SlotAssignment is a drawn bracket position.
type SlotAssignment struct {
	Position int
	PlayerID int
	Seed     int
}

// Pairing is one round-1 match derived from slot adjacency: positions
// (2k-1, 2k) form match k. A zero player ID means the slot is still open.
type Pairing struct {
	Index   int
	Player1 int
	Player2 int
}

// RoundOnePairings folds slot assignments into first-round pairings for
// the full draw, including pairings where one or both slots are open.
func RoundOnePairings(drawSize int, slots []SlotAssignment) []Pairing {
	byPos := make(map[int]int, len(slots))
	for _, s := range slots {
		byPos[s.Position] = s.PlayerID
	}
	pairs := make([]Pairing, 0, drawSize/2)
	for k := 1; k <= drawSize/2; k++ {
		pairs = append(pairs, Pairing{
			Index:   k,
			Player1: byPos[2*k-1],
			Player2: byPos[2*k],
		})
	}
	return pairs
}
