package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestSideOther(t *testing.T) {
	assert.Equal(t, SideTwo, SideOne.Other())
	assert.Equal(t, SideOne, SideTwo.Other())
	assert.Equal(t, SideNone, SideNone.Other())
}

func TestMatchStatusValid(t *testing.T) {
	for _, s := range []MatchStatus{StatusScheduled, StatusCheckin, StatusPlaying, StatusFinished} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, MatchStatus("cancelled").Valid())
	assert.False(t, MatchStatus("").Valid())
}

func TestWalkoverResult(t *testing.T) {
	assert.Equal(t, "W-0:3", WalkoverResult(3, SideOne))
	assert.Equal(t, "3:W-0", WalkoverResult(3, SideTwo))
	assert.Equal(t, "4:W-0", WalkoverResult(4, SideTwo))
}

func TestMatchWalkoverPredicates(t *testing.T) {
	contested := &Match{Result: strPtr("3:1")}
	assert.False(t, contested.IsWalkover())
	assert.False(t, contested.IsDoubleWalkover())

	single := &Match{Result: strPtr("3:W-0")}
	assert.True(t, single.IsWalkover())
	assert.False(t, single.IsDoubleWalkover())

	double := &Match{Result: strPtr(ResultDoubleWalkover)}
	assert.True(t, double.IsWalkover())
	assert.True(t, double.IsDoubleWalkover())

	unplayed := &Match{}
	assert.False(t, unplayed.IsWalkover())
	assert.Equal(t, "", unplayed.ResultString())
}

func TestFlipResult(t *testing.T) {
	assert.Equal(t, "1:3", FlipResult("3:1"))
	assert.Equal(t, "W-0:3", FlipResult("3:W-0"))
	assert.Equal(t, "W-W", FlipResult("W-W"))
	assert.Equal(t, "", FlipResult(""))
}
