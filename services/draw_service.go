package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/7893/PaddlePal/brackets"
	"github.com/7893/PaddlePal/models"
	"github.com/7893/PaddlePal/repositories"
)

// maxSeeds is how many entrants are placed deterministically when a draw
// ceremony starts; everyone after them draws a random position.
const maxSeeds = 8

// DrawStatus is the live state of a draw ceremony.
type DrawStatus struct {
	Event       *models.Event              `json:"event"`
	Entrants    int                        `json:"entrants"`
	DrawSize    int                        `json:"draw_size"`
	Taken       []int                      `json:"taken"`
	Assignments []*repositories.DrawDetail `json:"assignments"`
	Undrawn     []*models.GroupEntry       `json:"undrawn"`
}

type DrawService interface {
	Status(ctx context.Context, eventKey string) (*DrawStatus, error)
	// Start clears any previous draw and places the seeded entrants into
	// their fixed bracket positions.
	Start(ctx context.Context, eventKey string) (*DrawStatus, error)
	// Next draws one random undrawn player into one random open position.
	Next(ctx context.Context, eventKey string) (*models.Draw, error)
	// Auto finishes the ceremony: every remaining player is paired with a
	// random open position in a single atomic batch.
	Auto(ctx context.Context, eventKey string) (int, error)
	Reset(ctx context.Context, eventKey string) error
	// GenerateMatches materializes the event's fixtures: the full
	// round-robin per group, or knockout round 1 plus empty shells for
	// the later rounds.
	GenerateMatches(ctx context.Context, eventKey string) (int, error)
}

type drawService struct {
	eventRepo repositories.EventRepository
	groupRepo repositories.GroupRepository
	drawRepo  repositories.DrawRepository
	matchRepo repositories.MatchRepository
	tickets   repositories.TicketSequence
	txManager repositories.TxManager
	logger    *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDrawService(
	eventRepo repositories.EventRepository,
	groupRepo repositories.GroupRepository,
	drawRepo repositories.DrawRepository,
	matchRepo repositories.MatchRepository,
	tickets repositories.TicketSequence,
	txManager repositories.TxManager,
	rng *rand.Rand,
	logger *slog.Logger,
) DrawService {
	return &drawService{
		eventRepo: eventRepo,
		groupRepo: groupRepo,
		drawRepo:  drawRepo,
		matchRepo: matchRepo,
		tickets:   tickets,
		txManager: txManager,
		rng:       rng,
		logger:    logger,
	}
}

func (s *drawService) event(ctx context.Context, key string) (*models.Event, error) {
	event, err := s.eventRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %q: %w", key, err)
	}
	return event, nil
}

func (s *drawService) drawSize(ctx context.Context, eventID int) (size, entrants int, err error) {
	entrants, err = s.groupRepo.CountEventEntrants(ctx, eventID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count entrants: %w", err)
	}
	size, err = brackets.DrawSize(entrants)
	if err != nil {
		return 0, 0, ErrDrawTooLarge
	}
	return size, entrants, nil
}

func (s *drawService) Status(ctx context.Context, eventKey string) (*DrawStatus, error) {
	event, err := s.event(ctx, eventKey)
	if err != nil {
		return nil, err
	}
	size, entrants, err := s.drawSize(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	taken, err := s.drawRepo.TakenPositions(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read taken positions: %w", err)
	}
	assignments, err := s.drawRepo.ListDetailsByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draw assignments: %w", err)
	}
	undrawn, err := s.drawRepo.UndrawnPlayers(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list undrawn players: %w", err)
	}
	return &DrawStatus{
		Event:       event,
		Entrants:    entrants,
		DrawSize:    size,
		Taken:       taken,
		Assignments: assignments,
		Undrawn:     undrawn,
	}, nil
}

func (s *drawService) Start(ctx context.Context, eventKey string) (*DrawStatus, error) {
	event, err := s.event(ctx, eventKey)
	if err != nil {
		return nil, err
	}
	size, _, err := s.drawSize(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	entrants, err := s.groupRepo.ListEventEntrants(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entrants: %w", err)
	}

	seeded := entrants
	if len(seeded) > maxSeeds {
		seeded = seeded[:maxSeeds]
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.drawRepo.DeleteByEvent(ctx, exec, event.ID); err != nil {
			return err
		}
		for rank, entry := range seeded {
			pos, ok := brackets.SeedSlot(size, rank+1)
			if !ok {
				return fmt.Errorf("no seed slot for rank %d in draw of %d", rank+1, size)
			}
			d := &models.Draw{EventID: event.ID, PlayerID: entry.PlayerID, Seed: rank + 1, Position: pos}
			if err := s.drawRepo.Assign(ctx, exec, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapDrawError(err, fmt.Errorf("failed to start draw for %q: %w", eventKey, err))
	}
	s.logger.InfoContext(ctx, "draw started",
		slog.String("event", eventKey), slog.Int("draw_size", size), slog.Int("seeds", len(seeded)))
	return s.Status(ctx, eventKey)
}

func (s *drawService) Next(ctx context.Context, eventKey string) (*models.Draw, error) {
	event, err := s.event(ctx, eventKey)
	if err != nil {
		return nil, err
	}
	size, _, err := s.drawSize(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	undrawn, err := s.drawRepo.UndrawnPlayers(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list undrawn players: %w", err)
	}
	if len(undrawn) == 0 {
		return nil, ErrAllPlayersDrawn
	}
	open, err := s.openPositions(ctx, event.ID, size)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, ErrNoPositionsOpen
	}

	s.mu.Lock()
	entry := undrawn[s.rng.Intn(len(undrawn))]
	pos := open[s.rng.Intn(len(open))]
	s.mu.Unlock()

	d := &models.Draw{EventID: event.ID, PlayerID: entry.PlayerID, Position: pos}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.drawRepo.Assign(ctx, exec, d)
	})
	if err != nil {
		return nil, mapDrawError(err, fmt.Errorf("failed to draw player %d: %w", entry.PlayerID, err))
	}
	return d, nil
}

func (s *drawService) Auto(ctx context.Context, eventKey string) (int, error) {
	event, err := s.event(ctx, eventKey)
	if err != nil {
		return 0, err
	}
	size, _, err := s.drawSize(ctx, event.ID)
	if err != nil {
		return 0, err
	}
	undrawn, err := s.drawRepo.UndrawnPlayers(ctx, event.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list undrawn players: %w", err)
	}
	if len(undrawn) == 0 {
		return 0, nil
	}
	open, err := s.openPositions(ctx, event.ID, size)
	if err != nil {
		return 0, err
	}
	if len(open) < len(undrawn) {
		return 0, ErrNoPositionsOpen
	}

	s.mu.Lock()
	s.rng.Shuffle(len(undrawn), func(i, j int) { undrawn[i], undrawn[j] = undrawn[j], undrawn[i] })
	s.rng.Shuffle(len(open), func(i, j int) { open[i], open[j] = open[j], open[i] })
	s.mu.Unlock()

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for i, entry := range undrawn {
			d := &models.Draw{EventID: event.ID, PlayerID: entry.PlayerID, Position: open[i]}
			if err := s.drawRepo.Assign(ctx, exec, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, mapDrawError(err, fmt.Errorf("failed to auto-complete draw for %q: %w", eventKey, err))
	}
	s.logger.InfoContext(ctx, "draw auto-completed",
		slog.String("event", eventKey), slog.Int("drawn", len(undrawn)))
	return len(undrawn), nil
}

func (s *drawService) Reset(ctx context.Context, eventKey string) error {
	event, err := s.event(ctx, eventKey)
	if err != nil {
		return err
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.drawRepo.DeleteByEvent(ctx, exec, event.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to reset draw for %q: %w", eventKey, err)
	}
	return nil
}

func (s *drawService) openPositions(ctx context.Context, eventID, size int) ([]int, error) {
	taken, err := s.drawRepo.TakenPositions(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to read taken positions: %w", err)
	}
	used := make(map[int]bool, len(taken))
	for _, p := range taken {
		used[p] = true
	}
	open := make([]int, 0, size-len(taken))
	for p := 1; p <= size; p++ {
		if !used[p] {
			open = append(open, p)
		}
	}
	return open, nil
}

func mapDrawError(err, wrapped error) error {
	switch {
	case errors.Is(err, repositories.ErrPositionTaken):
		return ErrDrawPositionTaken
	case errors.Is(err, repositories.ErrPlayerDrawnTwice):
		return ErrPlayerAlreadyDrawn
	}
	return wrapped
}

func (s *drawService) GenerateMatches(ctx context.Context, eventKey string) (int, error) {
	event, err := s.event(ctx, eventKey)
	if err != nil {
		return 0, err
	}
	existing, err := s.matchRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list matches for event %d: %w", event.ID, err)
	}
	if len(existing) > 0 {
		return 0, ErrMatchesExist
	}

	var created int
	if event.Stage == models.StageKnockout {
		created, err = s.generateKnockout(ctx, event)
	} else {
		created, err = s.generateRoundRobin(ctx, event)
	}
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "matches generated",
		slog.String("event", eventKey), slog.Int("count", created))
	return created, nil
}

func ticketCategory(t models.EventType) repositories.TicketCategory {
	if t == models.EventTeam {
		return repositories.TicketTeam
	}
	return repositories.TicketIndividual
}

// generateRoundRobin creates the n(n-1)/2 pairings of every group, lead
// players in slots 1 and 3.
func (s *drawService) generateRoundRobin(ctx context.Context, event *models.Event) (int, error) {
	groups, err := s.groupRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list groups: %w", err)
	}
	category := ticketCategory(event.Type)

	created := 0
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, g := range groups {
			entries, err := s.groupRepo.ListEntries(ctx, g.ID)
			if err != nil {
				return err
			}
			for i := 0; i < len(entries); i++ {
				for j := i + 1; j < len(entries); j++ {
					ticket, err := s.tickets.Next(ctx, exec, category)
					if err != nil {
						return err
					}
					m := &models.Match{
						EventID:    event.ID,
						GroupID:    intPtr(g.ID),
						MatchOrder: ticket,
						Status:     models.StatusScheduled,
					}
					if event.Type == models.EventTeam {
						m.Team1ID = entries[i].TeamID
						m.Team3ID = entries[j].TeamID
					}
					m.Player1ID = intPtr(entries[i].PlayerID)
					m.Player3ID = intPtr(entries[j].PlayerID)
					if err := s.matchRepo.Create(ctx, exec, m); err != nil {
						return err
					}
					created++
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to generate round-robin matches: %w", err)
	}
	return created, nil
}

// generateKnockout creates round-1 matches from the draw's slot pairs and
// empty shells for every later round.
func (s *drawService) generateKnockout(ctx context.Context, event *models.Event) (int, error) {
	size, _, err := s.drawSize(ctx, event.ID)
	if err != nil {
		return 0, err
	}
	draws, err := s.drawRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list draws: %w", err)
	}
	slots := make([]brackets.SlotAssignment, 0, len(draws))
	for _, d := range draws {
		slots = append(slots, brackets.SlotAssignment{Position: d.Position, PlayerID: d.PlayerID, Seed: d.Seed})
	}
	pairings := brackets.RoundOnePairings(size, slots)
	rounds := brackets.Rounds(size)
	category := ticketCategory(event.Type)

	created := 0
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, p := range pairings {
			ticket, err := s.tickets.Next(ctx, exec, category)
			if err != nil {
				return err
			}
			m := &models.Match{
				EventID:    event.ID,
				MatchOrder: ticket,
				Round:      1,
				Status:     models.StatusScheduled,
			}
			if p.Player1 != 0 {
				m.Player1ID = intPtr(p.Player1)
			}
			if p.Player2 != 0 {
				m.Player3ID = intPtr(p.Player2)
			}
			if err := s.matchRepo.Create(ctx, exec, m); err != nil {
				return err
			}
			created++
		}
		for round := 2; round <= rounds; round++ {
			for i := 0; i < brackets.MatchesInRound(size, round); i++ {
				ticket, err := s.tickets.Next(ctx, exec, category)
				if err != nil {
					return err
				}
				m := &models.Match{
					EventID:    event.ID,
					MatchOrder: ticket,
					Round:      round,
					Status:     models.StatusScheduled,
				}
				if err := s.matchRepo.Create(ctx, exec, m); err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to generate knockout matches: %w", err)
	}
	return created, nil
}
