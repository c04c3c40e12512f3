package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7893/PaddlePal/models"
)

func newEventFixture(t *testing.T, playerIDs ...int) (EventService, *fakeEventRepo, *fakeGroupRepo) {
	t.Helper()
	events := &fakeEventRepo{}
	groups := newFakeGroups()
	roster := make([]*models.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		roster = append(roster, &models.Player{ID: id})
	}
	service := NewEventService(events, groups, newFakePlayers(roster...), fakeTxManager{},
		rand.New(rand.NewSource(1)), discardLogger())
	return service, events, groups
}

func validEventInput() EventInput {
	return EventInput{
		Key: "ms", Title: "Men's Singles",
		Type: models.EventSingles, Stage: models.StageRoundRobin,
		Groups: 2, BestOf: 5,
	}
}

func TestCreateEvent_CreatesGroups(t *testing.T) {
	service, _, groups := newEventFixture(t)

	event, err := service.Create(context.Background(), validEventInput())
	require.NoError(t, err)
	require.NotZero(t, event.ID)

	created, err := groups.ListByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Group 1", created[0].Name)
	assert.Equal(t, 1, created[0].Index)
	assert.Equal(t, "Group 2", created[1].Name)
}

func TestCreateEvent_Validation(t *testing.T) {
	service, _, _ := newEventFixture(t)

	tests := []struct {
		name   string
		mutate func(*EventInput)
	}{
		{"missing key", func(in *EventInput) { in.Key = "" }},
		{"unknown type", func(in *EventInput) { in.Type = "mixed" }},
		{"unknown stage", func(in *EventInput) { in.Stage = "swiss" }},
		{"zero groups", func(in *EventInput) { in.Groups = 0 }},
		{"even best_of", func(in *EventInput) { in.BestOf = 4 }},
		{"knockout with two groups", func(in *EventInput) {
			in.Stage = models.StageKnockout
			in.Groups = 2
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validEventInput()
			tt.mutate(&in)
			_, err := service.Create(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestAssignEntry_AppendsAtZeroPosition(t *testing.T) {
	service, _, groups := newEventFixture(t)
	event, err := service.Create(context.Background(), validEventInput())
	require.NoError(t, err)

	require.NoError(t, service.AssignEntry(context.Background(), event.ID, 1, 11, 0, nil))
	require.NoError(t, service.AssignEntry(context.Background(), event.ID, 1, 22, 0, nil))

	entries, err := groups.ListEntries(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, 2, entries[1].Position)

	// The same player cannot enter the group twice.
	err = service.AssignEntry(context.Background(), event.ID, 1, 11, 0, nil)
	assert.ErrorIs(t, err, ErrGroupEntryConflict)

	// Nor can two players share a position.
	err = service.AssignEntry(context.Background(), event.ID, 1, 33, 2, nil)
	assert.ErrorIs(t, err, ErrGroupEntryConflict)
}

func TestAssignEntry_UnknownGroup(t *testing.T) {
	service, _, _ := newEventFixture(t)
	event, err := service.Create(context.Background(), validEventInput())
	require.NoError(t, err)

	err = service.AssignEntry(context.Background(), event.ID, 9, 11, 0, nil)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestAutoAssignEntries_DealsRosterAcrossGroups(t *testing.T) {
	service, _, groups := newEventFixture(t, 11, 22, 33, 44, 55)
	event, err := service.Create(context.Background(), validEventInput())
	require.NoError(t, err)

	// A stale manual entry is discarded before dealing.
	require.NoError(t, service.AssignEntry(context.Background(), event.ID, 1, 11, 0, nil))

	assigned, err := service.AutoAssignEntries(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, assigned)

	first, err := groups.ListEntries(context.Background(), 1)
	require.NoError(t, err)
	second, err := groups.ListEntries(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.Len(t, second, 2)

	seen := map[int]bool{}
	for i, e := range first {
		assert.Equal(t, i+1, e.Position)
		seen[e.PlayerID] = true
	}
	for i, e := range second {
		assert.Equal(t, i+1, e.Position)
		seen[e.PlayerID] = true
	}
	assert.Len(t, seen, 5)
}

func TestAutoAssignEntries_ConcurrentRequests(t *testing.T) {
	service, _, groups := newEventFixture(t, 11, 22, 33, 44, 55)

	first, err := service.Create(context.Background(), validEventInput())
	require.NoError(t, err)
	in := validEventInput()
	in.Key, in.Title = "ws", "Women's Singles"
	second, err := service.Create(context.Background(), in)
	require.NoError(t, err)

	// Two admin deals in flight at once must not corrupt either event.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int{first.ID, second.ID} {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			_, errs[i] = service.AutoAssignEntries(context.Background(), id)
		}(i, id)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	for _, eventID := range []int{first.ID, second.ID} {
		entrants, err := groups.ListEventEntrants(context.Background(), eventID)
		require.NoError(t, err)
		assert.Len(t, entrants, 5)
	}
}

func TestAutoAssignEntries_UnknownEvent(t *testing.T) {
	service, _, _ := newEventFixture(t)
	_, err := service.AutoAssignEntries(context.Background(), 42)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestSetEntryRank(t *testing.T) {
	service, _, groups := newEventFixture(t)
	event, err := service.Create(context.Background(), validEventInput())
	require.NoError(t, err)
	require.NoError(t, service.AssignEntry(context.Background(), event.ID, 1, 11, 0, nil))

	require.NoError(t, service.SetEntryRank(context.Background(), event.ID, 1, 11, 2))
	entries, _ := groups.ListEntries(context.Background(), 1)
	assert.Equal(t, 2, entries[0].Rank)

	assert.ErrorIs(t, service.SetEntryRank(context.Background(), event.ID, 1, 99, 1), ErrEntryNotFound)
	assert.ErrorIs(t, service.SetEntryRank(context.Background(), event.ID, 1, 11, -1), ErrValidationFailed)
}
