package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/7893/PaddlePal/models"
	"github.com/7893/PaddlePal/repositories"
)

type EventInput struct {
	Key    string            `json:"key"`
	Title  string            `json:"title"`
	Type   models.EventType  `json:"type"`
	Stage  models.EventStage `json:"stage"`
	Groups int               `json:"groups"`
	BestOf int               `json:"best_of"`
}

func (in *EventInput) validate() error {
	if in.Key == "" || in.Title == "" {
		return fmt.Errorf("%w: key and title are required", ErrValidationFailed)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown event type %q", ErrValidationFailed, in.Type)
	}
	if !in.Stage.Valid() {
		return fmt.Errorf("%w: unknown event stage %q", ErrValidationFailed, in.Stage)
	}
	if in.Groups < 1 {
		return fmt.Errorf("%w: at least one group is required", ErrValidationFailed)
	}
	if in.Stage == models.StageKnockout && in.Groups != 1 {
		return fmt.Errorf("%w: knockout events carry exactly one group", ErrValidationFailed)
	}
	if in.BestOf < 1 || in.BestOf%2 == 0 {
		return fmt.Errorf("%w: best_of must be a positive odd number", ErrValidationFailed)
	}
	return nil
}

type EventService interface {
	Create(ctx context.Context, input EventInput) (*models.Event, error)
	Update(ctx context.Context, id int, input EventInput) (*models.Event, error)
	Delete(ctx context.Context, id int) error
	GetByKey(ctx context.Context, key string) (*models.Event, error)
	ListWithProgress(ctx context.Context) ([]*repositories.EventProgress, error)

	Groups(ctx context.Context, eventID int) ([]*models.GroupTable, error)
	GroupEntries(ctx context.Context, groupID int) ([]*repositories.GroupEntryDetail, error)
	// AssignEntry places a player into a group. Position 0 appends after
	// the group's current highest position.
	AssignEntry(ctx context.Context, eventID, groupIndex, playerID, position int, teamID *int) error
	RemoveEntry(ctx context.Context, eventID, groupIndex, playerID int) error
	ClearEntries(ctx context.Context, eventID int) error
	// AutoAssignEntries discards the event's current entries, shuffles the
	// full player roster and deals it across the groups round-robin.
	AutoAssignEntries(ctx context.Context, eventID int) (int, error)
	SetEntryRank(ctx context.Context, eventID, groupIndex, playerID, rank int) error
}

type eventService struct {
	eventRepo  repositories.EventRepository
	groupRepo  repositories.GroupRepository
	playerRepo repositories.PlayerRepository
	txManager  repositories.TxManager
	logger     *slog.Logger

	// rand.Rand is not safe for concurrent handlers.
	mu  sync.Mutex
	rng *rand.Rand
}

func NewEventService(
	eventRepo repositories.EventRepository,
	groupRepo repositories.GroupRepository,
	playerRepo repositories.PlayerRepository,
	txManager repositories.TxManager,
	rng *rand.Rand,
	logger *slog.Logger,
) EventService {
	return &eventService{
		eventRepo:  eventRepo,
		groupRepo:  groupRepo,
		playerRepo: playerRepo,
		txManager:  txManager,
		rng:        rng,
		logger:     logger,
	}
}

func (s *eventService) Create(ctx context.Context, input EventInput) (*models.Event, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	event := &models.Event{
		TournamentID: 1,
		Key:          input.Key,
		Title:        input.Title,
		Type:         input.Type,
		Stage:        input.Stage,
		Groups:       input.Groups,
		BestOf:       input.BestOf,
	}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.eventRepo.Create(ctx, exec, event); err != nil {
			return err
		}
		for i := 1; i <= input.Groups; i++ {
			g := &models.GroupTable{
				EventID: event.ID,
				Name:    fmt.Sprintf("Group %d", i),
				Index:   i,
			}
			if err := s.groupRepo.Create(ctx, exec, g); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEventKeyConflict) {
			return nil, ErrEventKeyConflict
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created",
		slog.Int("event_id", event.ID), slog.String("key", event.Key))
	return event, nil
}

func (s *eventService) Update(ctx context.Context, id int, input EventInput) (*models.Event, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", id, err)
	}
	event.Title = input.Title
	event.Type = input.Type
	event.Stage = input.Stage
	event.Groups = input.Groups
	event.BestOf = input.BestOf

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.eventRepo.Update(ctx, exec, event)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event %d: %w", id, err)
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, id int) error {
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.eventRepo.DeleteCascade(ctx, exec, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "event deleted", slog.Int("event_id", id))
	return nil
}

func (s *eventService) GetByKey(ctx context.Context, key string) (*models.Event, error) {
	event, err := s.eventRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %q: %w", key, err)
	}
	return event, nil
}

func (s *eventService) ListWithProgress(ctx context.Context) ([]*repositories.EventProgress, error) {
	events, err := s.eventRepo.ListWithProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list event progress: %w", err)
	}
	return events, nil
}

func (s *eventService) Groups(ctx context.Context, eventID int) ([]*models.GroupTable, error) {
	groups, err := s.groupRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for event %d: %w", eventID, err)
	}
	return groups, nil
}

func (s *eventService) GroupEntries(ctx context.Context, groupID int) ([]*repositories.GroupEntryDetail, error) {
	entries, err := s.groupRepo.ListEntries(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for group %d: %w", groupID, err)
	}
	return entries, nil
}

func (s *eventService) group(ctx context.Context, eventID, groupIndex int) (*models.GroupTable, error) {
	g, err := s.groupRepo.GetByIndex(ctx, eventID, groupIndex)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to load group %d of event %d: %w", groupIndex, eventID, err)
	}
	return g, nil
}

func (s *eventService) AssignEntry(ctx context.Context, eventID, groupIndex, playerID, position int, teamID *int) error {
	g, err := s.group(ctx, eventID, groupIndex)
	if err != nil {
		return err
	}
	if position == 0 {
		max, err := s.groupRepo.MaxPosition(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("failed to pick next position: %w", err)
		}
		position = max + 1
	}
	entry := &models.GroupEntry{GroupID: g.ID, PlayerID: playerID, TeamID: teamID, Position: position}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.groupRepo.AddEntry(ctx, exec, entry)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrGroupEntryConflict) {
			return ErrGroupEntryConflict
		}
		return fmt.Errorf("failed to assign player %d to group %d: %w", playerID, g.ID, err)
	}
	return nil
}

func (s *eventService) RemoveEntry(ctx context.Context, eventID, groupIndex, playerID int) error {
	g, err := s.group(ctx, eventID, groupIndex)
	if err != nil {
		return err
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.groupRepo.RemoveEntry(ctx, exec, g.ID, playerID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrGroupEntryNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to remove player %d from group %d: %w", playerID, g.ID, err)
	}
	return nil
}

func (s *eventService) ClearEntries(ctx context.Context, eventID int) error {
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.groupRepo.ClearByEvent(ctx, exec, eventID)
	})
	if err != nil {
		return fmt.Errorf("failed to clear entries for event %d: %w", eventID, err)
	}
	return nil
}

func (s *eventService) AutoAssignEntries(ctx context.Context, eventID int) (int, error) {
	groups, err := s.groupRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to list groups for event %d: %w", eventID, err)
	}
	if len(groups) == 0 {
		return 0, ErrGroupNotFound
	}
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list players: %w", err)
	}
	s.mu.Lock()
	s.rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
	s.mu.Unlock()

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.groupRepo.ClearByEvent(ctx, exec, eventID); err != nil {
			return err
		}
		positions := make([]int, len(groups))
		for i, p := range players {
			gi := i % len(groups)
			positions[gi]++
			entry := &models.GroupEntry{
				GroupID:  groups[gi].ID,
				PlayerID: p.ID,
				Position: positions[gi],
				TeamID:   p.TeamID,
			}
			if err := s.groupRepo.AddEntry(ctx, exec, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to auto-assign entries for event %d: %w", eventID, err)
	}
	s.logger.InfoContext(ctx, "group entries auto-assigned",
		slog.Int("event_id", eventID), slog.Int("players", len(players)))
	return len(players), nil
}

func (s *eventService) SetEntryRank(ctx context.Context, eventID, groupIndex, playerID, rank int) error {
	if rank < 0 {
		return fmt.Errorf("%w: rank must not be negative", ErrValidationFailed)
	}
	g, err := s.group(ctx, eventID, groupIndex)
	if err != nil {
		return err
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.groupRepo.SetEntryRank(ctx, exec, g.ID, playerID, rank)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrGroupEntryNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to set rank for player %d in group %d: %w", playerID, g.ID, err)
	}
	return nil
}
