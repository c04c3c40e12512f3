package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/7893/PaddlePal/models"
	"github.com/7893/PaddlePal/repositories"
)

// In-memory fakes for the repository interfaces. They enforce the same
// uniqueness rules the postgres constraints do, so conflict paths are
// exercised for real.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTicketSequence struct {
	next map[repositories.TicketCategory]int
}

func newFakeTickets() *fakeTicketSequence {
	return &fakeTicketSequence{next: map[repositories.TicketCategory]int{
		repositories.TicketIndividual: 90001,
		repositories.TicketTeam:       80001,
		repositories.TicketRubber:     70001,
	}}
}

func (f *fakeTicketSequence) Next(ctx context.Context, exec repositories.SQLExecutor, category repositories.TicketCategory) (int, error) {
	n := f.next[category]
	f.next[category] = n + 1
	return n, nil
}

type fakeEventRepo struct {
	events []*models.Event
}

func (f *fakeEventRepo) Create(ctx context.Context, exec repositories.SQLExecutor, event *models.Event) error {
	event.ID = len(f.events) + 1
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, exec repositories.SQLExecutor, event *models.Event) error {
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int) (*models.Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repositories.ErrEventNotFound
}

func (f *fakeEventRepo) GetByKey(ctx context.Context, key string) (*models.Event, error) {
	for _, e := range f.events {
		if e.Key == key {
			return e, nil
		}
	}
	return nil, repositories.ErrEventNotFound
}

func (f *fakeEventRepo) ListWithProgress(ctx context.Context) ([]*repositories.EventProgress, error) {
	return nil, nil
}

func (f *fakeEventRepo) DeleteCascade(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	return nil
}

// fakeGroupRepo is locked so tests can issue concurrent service calls,
// the way the postgres pool would take them.
type fakeGroupRepo struct {
	mu      sync.Mutex
	groups  []*models.GroupTable
	entries map[int][]*repositories.GroupEntryDetail
}

func newFakeGroups() *fakeGroupRepo {
	return &fakeGroupRepo{entries: map[int][]*repositories.GroupEntryDetail{}}
}

func (f *fakeGroupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, group *models.GroupTable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	group.ID = len(f.groups) + 1
	f.groups = append(f.groups, group)
	return nil
}

func (f *fakeGroupRepo) ListByEvent(ctx context.Context, eventID int) ([]*models.GroupTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.GroupTable{}
	for _, g := range f.groups {
		if g.EventID == eventID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) GetByIndex(ctx context.Context, eventID, index int) (*models.GroupTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.groups {
		if g.EventID == eventID && g.Index == index {
			return g, nil
		}
	}
	return nil, repositories.ErrGroupNotFound
}

func (f *fakeGroupRepo) AddEntry(ctx context.Context, exec repositories.SQLExecutor, entry *models.GroupEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.entries[entry.GroupID] {
		if d.PlayerID == entry.PlayerID || d.Position == entry.Position {
			return repositories.ErrGroupEntryConflict
		}
	}
	f.entries[entry.GroupID] = append(f.entries[entry.GroupID], &repositories.GroupEntryDetail{GroupEntry: *entry})
	return nil
}

func (f *fakeGroupRepo) RemoveEntry(ctx context.Context, exec repositories.SQLExecutor, groupID, playerID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.entries[groupID][:0]
	for _, d := range f.entries[groupID] {
		if d.PlayerID != playerID {
			kept = append(kept, d)
		}
	}
	f.entries[groupID] = kept
	return nil
}

func (f *fakeGroupRepo) ClearByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.groups {
		if g.EventID == eventID {
			delete(f.entries, g.ID)
		}
	}
	return nil
}

func (f *fakeGroupRepo) SetEntryRank(ctx context.Context, exec repositories.SQLExecutor, groupID, playerID, rank int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.entries[groupID] {
		if d.PlayerID == playerID {
			d.Rank = rank
			return nil
		}
	}
	return repositories.ErrGroupEntryNotFound
}

func (f *fakeGroupRepo) MaxPosition(ctx context.Context, groupID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, d := range f.entries[groupID] {
		if d.Position > max {
			max = d.Position
		}
	}
	return max, nil
}

func (f *fakeGroupRepo) ListEntries(ctx context.Context, groupID int) ([]*repositories.GroupEntryDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]*repositories.GroupEntryDetail{}, f.entries[groupID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeGroupRepo) ListEventEntrants(ctx context.Context, eventID int) ([]*models.GroupEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.GroupEntry{}
	for _, g := range f.groups {
		if g.EventID != eventID {
			continue
		}
		for _, d := range f.entries[g.ID] {
			e := d.GroupEntry
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (f *fakeGroupRepo) CountEventEntrants(ctx context.Context, eventID int) (int, error) {
	entrants, _ := f.ListEventEntrants(ctx, eventID)
	return len(entrants), nil
}

type fakeDrawRepo struct {
	groups *fakeGroupRepo
	draws  []*models.Draw
}

func (f *fakeDrawRepo) Assign(ctx context.Context, exec repositories.SQLExecutor, draw *models.Draw) error {
	for _, d := range f.draws {
		if d.EventID != draw.EventID {
			continue
		}
		if d.Position == draw.Position {
			return repositories.ErrPositionTaken
		}
		if d.PlayerID == draw.PlayerID {
			return repositories.ErrPlayerDrawnTwice
		}
	}
	draw.ID = len(f.draws) + 1
	f.draws = append(f.draws, draw)
	return nil
}

func (f *fakeDrawRepo) ListByEvent(ctx context.Context, eventID int) ([]*models.Draw, error) {
	out := []*models.Draw{}
	for _, d := range f.draws {
		if d.EventID == eventID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeDrawRepo) ListDetailsByEvent(ctx context.Context, eventID int) ([]*repositories.DrawDetail, error) {
	draws, _ := f.ListByEvent(ctx, eventID)
	out := make([]*repositories.DrawDetail, 0, len(draws))
	for _, d := range draws {
		out = append(out, &repositories.DrawDetail{Draw: *d})
	}
	return out, nil
}

func (f *fakeDrawRepo) TakenPositions(ctx context.Context, eventID int) ([]int, error) {
	draws, _ := f.ListByEvent(ctx, eventID)
	out := make([]int, 0, len(draws))
	for _, d := range draws {
		out = append(out, d.Position)
	}
	return out, nil
}

func (f *fakeDrawRepo) UndrawnPlayers(ctx context.Context, eventID int) ([]*models.GroupEntry, error) {
	drawn := map[int]bool{}
	for _, d := range f.draws {
		if d.EventID == eventID {
			drawn[d.PlayerID] = true
		}
	}
	entrants, _ := f.groups.ListEventEntrants(ctx, eventID)
	out := []*models.GroupEntry{}
	for _, e := range entrants {
		if !drawn[e.PlayerID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeDrawRepo) DeleteByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) error {
	kept := f.draws[:0]
	for _, d := range f.draws {
		if d.EventID != eventID {
			kept = append(kept, d)
		}
	}
	f.draws = kept
	return nil
}

type fakeRatingRepo struct {
	records []*models.RatingRecord
}

func (f *fakeRatingRepo) Create(ctx context.Context, exec repositories.SQLExecutor, rec *models.RatingRecord) error {
	for _, r := range f.records {
		if r.MatchID == rec.MatchID && r.PlayerID == rec.PlayerID {
			return repositories.ErrRatingRecordConflict
		}
	}
	rec.ID = len(f.records) + 1
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRatingRepo) ExistsForMatch(ctx context.Context, matchID int) (bool, error) {
	for _, r := range f.records {
		if r.MatchID == matchID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRatingRepo) HistoryByPlayer(ctx context.Context, playerID int) ([]*repositories.RatingHistoryRow, error) {
	out := []*repositories.RatingHistoryRow{}
	for _, r := range f.records {
		if r.PlayerID == playerID {
			out = append(out, &repositories.RatingHistoryRow{RatingRecord: *r})
		}
	}
	return out, nil
}

type fakeMatchRepo struct {
	ratings *fakeRatingRepo
	matches []*models.Match
	nextID  int
}

func (f *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	for _, m := range f.matches {
		if m.MatchOrder == match.MatchOrder {
			return repositories.ErrTicketConflict
		}
	}
	f.nextID++
	match.ID = f.nextID
	f.matches = append(f.matches, match)
	return nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	for _, m := range f.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeMatchRepo) GetByTicket(ctx context.Context, ticket int) (*models.Match, error) {
	for _, m := range f.matches {
		if m.MatchOrder == ticket {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeMatchRepo) list(keep func(*models.Match) bool) []*models.Match {
	out := []*models.Match{}
	for _, m := range f.matches {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchOrder < out[j].MatchOrder })
	return out
}

func (f *fakeMatchRepo) ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	return f.list(func(m *models.Match) bool { return m.EventID == eventID }), nil
}

func (f *fakeMatchRepo) ListByGroup(ctx context.Context, groupID int) ([]*models.Match, error) {
	return f.list(func(m *models.Match) bool { return m.GroupID != nil && *m.GroupID == groupID }), nil
}

func (f *fakeMatchRepo) ListByParent(ctx context.Context, parentID int) ([]*models.Match, error) {
	return f.list(func(m *models.Match) bool { return m.ParentID != nil && *m.ParentID == parentID }), nil
}

func (f *fakeMatchRepo) ListByRound(ctx context.Context, eventID, round int) ([]*models.Match, error) {
	return f.list(func(m *models.Match) bool { return m.EventID == eventID && m.Round == round }), nil
}

func (f *fakeMatchRepo) ListByStatus(ctx context.Context, status models.MatchStatus) ([]*models.Match, error) {
	return f.list(func(m *models.Match) bool { return m.Status == status }), nil
}

func (f *fakeMatchRepo) details(matches []*models.Match) []*repositories.MatchDetail {
	out := make([]*repositories.MatchDetail, 0, len(matches))
	for _, m := range matches {
		out = append(out, &repositories.MatchDetail{Match: *m})
	}
	return out
}

func (f *fakeMatchRepo) ListDetailsByGroup(ctx context.Context, groupID int) ([]*repositories.MatchDetail, error) {
	matches, _ := f.ListByGroup(ctx, groupID)
	return f.details(matches), nil
}

func (f *fakeMatchRepo) ListDetailsByEvent(ctx context.Context, eventID int) ([]*repositories.MatchDetail, error) {
	matches, _ := f.ListByEvent(ctx, eventID)
	return f.details(matches), nil
}

func (f *fakeMatchRepo) FindGroupPair(ctx context.Context, groupID, playerID, opponentID int) (*models.Match, error) {
	for _, m := range f.matches {
		if m.GroupID == nil || *m.GroupID != groupID || m.Player1ID == nil || m.Player3ID == nil {
			continue
		}
		if (*m.Player1ID == playerID && *m.Player3ID == opponentID) ||
			(*m.Player1ID == opponentID && *m.Player3ID == playerID) {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeMatchRepo) ListFinishedUnrated(ctx context.Context, eventID int) ([]*models.Match, error) {
	return f.list(func(m *models.Match) bool {
		if m.EventID != eventID || m.Status != models.StatusFinished || m.IsDoubleWalkover() {
			return false
		}
		// Team ties and unfilled knockout shells carry no player slots.
		if m.Player1ID == nil || m.Player3ID == nil {
			return false
		}
		if f.ratings != nil {
			rated, _ := f.ratings.ExistsForMatch(ctx, m.ID)
			if rated {
				return false
			}
		}
		return true
	}), nil
}

func (f *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, result string, winner models.Side, status models.MatchStatus) error {
	m, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.Result = &result
	m.WinnerSide = winner
	m.Status = status
	return nil
}

func (f *fakeMatchRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus) error {
	m, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.Status = status
	return nil
}

func (f *fakeMatchRepo) UpdateSchedule(ctx context.Context, exec repositories.SQLExecutor, id int, tableNo *int, date, time *string) error {
	m, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.TableNo, m.Date, m.Time = tableNo, date, time
	return nil
}

func (f *fakeMatchRepo) SetSide(ctx context.Context, exec repositories.SQLExecutor, id int, side models.Side, lead, partner *int) error {
	m, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if side == models.SideOne {
		m.Player1ID, m.Player2ID = lead, partner
	} else {
		m.Player3ID, m.Player4ID = lead, partner
	}
	return nil
}

func (f *fakeMatchRepo) SetPlayers(ctx context.Context, exec repositories.SQLExecutor, id int, p1, p2, p3, p4 *int) error {
	m, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.Player1ID, m.Player2ID, m.Player3ID, m.Player4ID = p1, p2, p3, p4
	return nil
}

func (f *fakeMatchRepo) DeleteByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) error {
	kept := f.matches[:0]
	for _, m := range f.matches {
		if m.EventID != eventID {
			kept = append(kept, m)
		}
	}
	f.matches = kept
	return nil
}

type fakeScoreRepo struct {
	byMatch map[int][]*models.Score
}

func newFakeScores() *fakeScoreRepo {
	return &fakeScoreRepo{byMatch: map[int][]*models.Score{}}
}

func (f *fakeScoreRepo) ListByMatch(ctx context.Context, matchID int) ([]*models.Score, error) {
	return f.byMatch[matchID], nil
}

func (f *fakeScoreRepo) Replace(ctx context.Context, exec repositories.SQLExecutor, matchID int, scores []*models.Score) error {
	f.byMatch[matchID] = scores
	return nil
}

func (f *fakeScoreRepo) DeleteByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) error {
	delete(f.byMatch, matchID)
	return nil
}

func (f *fakeScoreRepo) DeleteByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) error {
	return nil
}

type fakePlayerRepo struct {
	players map[int]*models.Player
}

func newFakePlayers(players ...*models.Player) *fakePlayerRepo {
	f := &fakePlayerRepo{players: map[int]*models.Player{}}
	for _, p := range players {
		f.players[p.ID] = p
	}
	return f
}

func (f *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	player.ID = len(f.players) + 1
	f.players[player.ID] = player
	return nil
}

func (f *fakePlayerRepo) Update(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	f.players[player.ID] = player
	return nil
}

func (f *fakePlayerRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	delete(f.players, id)
	return nil
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return p, nil
}

func (f *fakePlayerRepo) List(ctx context.Context) ([]*models.Player, error) {
	// Fresh slice per call, like a query result. Callers shuffle it.
	out := make([]*models.Player, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePlayerRepo) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	return nil, nil
}

func (f *fakePlayerRepo) SearchByName(ctx context.Context, name string) ([]*models.Player, error) {
	return nil, nil
}

func (f *fakePlayerRepo) SetRating(ctx context.Context, exec repositories.SQLExecutor, id, rating int) error {
	p, ok := f.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Rating = rating
	return nil
}

func (f *fakePlayerRepo) Leaderboard(ctx context.Context, limit int) ([]*repositories.LeaderboardRow, error) {
	return nil, nil
}
