package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/7893/PaddlePal/models"
	"github.com/7893/PaddlePal/repositories"
)

type TournamentUpdateInput struct {
	Name      string  `json:"name"`
	Info      *string `json:"info"`
	Venue     *string `json:"venue"`
	StartDate *string `json:"start_date"`
	Tables    int     `json:"tables"`
	Days      int     `json:"days"`
}

// Overview is the public landing payload: the tournament header, event
// progress counters and current notices in one read.
type Overview struct {
	Tournament *models.Tournament            `json:"tournament"`
	Events     []*repositories.EventProgress `json:"events"`
	Notices    []*models.Notice              `json:"notices"`
}

type TournamentService interface {
	Info(ctx context.Context) (*models.Tournament, error)
	Update(ctx context.Context, input TournamentUpdateInput) (*models.Tournament, error)
	Overview(ctx context.Context) (*Overview, error)

	ListNotices(ctx context.Context) ([]*models.Notice, error)
	CreateNotice(ctx context.Context, title, content string) (*models.Notice, error)
	UpdateNotice(ctx context.Context, id int, title, content string) (*models.Notice, error)
	DeleteNotice(ctx context.Context, id int) error

	// Backup exports every table as JSON-ready rows.
	Backup(ctx context.Context) (map[string][]map[string]interface{}, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	eventRepo      repositories.EventRepository
	backupRepo     repositories.BackupRepository
	txManager      repositories.TxManager
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	eventRepo repositories.EventRepository,
	backupRepo repositories.BackupRepository,
	txManager repositories.TxManager,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		eventRepo:      eventRepo,
		backupRepo:     backupRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

func (s *tournamentService) Info(ctx context.Context) (*models.Tournament, error) {
	t, err := s.tournamentRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	return t, nil
}

func (s *tournamentService) Update(ctx context.Context, input TournamentUpdateInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if input.Tables < 0 || input.Days < 0 {
		return nil, fmt.Errorf("%w: tables and days must not be negative", ErrValidationFailed)
	}

	t, err := s.Info(ctx)
	if err != nil {
		return nil, err
	}
	t.Name = input.Name
	t.Info = input.Info
	t.Venue = input.Venue
	t.StartDate = input.StartDate
	t.Tables = input.Tables
	t.Days = input.Days

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.Update(ctx, exec, t)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}
	s.logger.InfoContext(ctx, "tournament updated", slog.String("name", t.Name))
	return t, nil
}

func (s *tournamentService) Overview(ctx context.Context) (*Overview, error) {
	t, err := s.Info(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListWithProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load event progress: %w", err)
	}
	notices, err := s.tournamentRepo.ListNotices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notices: %w", err)
	}
	return &Overview{Tournament: t, Events: events, Notices: notices}, nil
}

func (s *tournamentService) ListNotices(ctx context.Context) ([]*models.Notice, error) {
	notices, err := s.tournamentRepo.ListNotices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	return notices, nil
}

func (s *tournamentService) CreateNotice(ctx context.Context, title, content string) (*models.Notice, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: notice content is required", ErrValidationFailed)
	}
	n := &models.Notice{Title: title, Content: content}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.CreateNotice(ctx, exec, n)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notice: %w", err)
	}
	return n, nil
}

func (s *tournamentService) UpdateNotice(ctx context.Context, id int, title, content string) (*models.Notice, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: notice content is required", ErrValidationFailed)
	}
	n := &models.Notice{ID: id, Title: title, Content: content}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.UpdateNotice(ctx, exec, n)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNoticeNotFound) {
			return nil, ErrNoticeNotFound
		}
		return nil, fmt.Errorf("failed to update notice %d: %w", id, err)
	}
	return n, nil
}

func (s *tournamentService) DeleteNotice(ctx context.Context, id int) error {
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.DeleteNotice(ctx, exec, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNoticeNotFound) {
			return ErrNoticeNotFound
		}
		return fmt.Errorf("failed to delete notice %d: %w", id, err)
	}
	return nil
}

func (s *tournamentService) Backup(ctx context.Context) (map[string][]map[string]interface{}, error) {
	dump, err := s.backupRepo.Dump(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export backup: %w", err)
	}
	s.logger.InfoContext(ctx, "backup exported", slog.Int("tables", len(dump)))
	return dump, nil
}
