package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/7893/PaddlePal/models"
	"github.com/7893/PaddlePal/repositories"
	"github.com/7893/PaddlePal/storage"
)

type PlayerInput struct {
	TeamID *int    `json:"team_id"`
	Name   string  `json:"name"`
	Gender string  `json:"gender"`
	Rating int     `json:"rating"`
	Phone  *string `json:"phone"`
}

type TeamInput struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// RosterService manages players and teams.
type RosterService interface {
	CreatePlayer(ctx context.Context, input PlayerInput) (*models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id int) error
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	SearchPlayers(ctx context.Context, name string) ([]*models.Player, error)

	CreateTeam(ctx context.Context, input TeamInput) (*models.Team, error)
	UpdateTeam(ctx context.Context, id int, input TeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int) error
	ListTeams(ctx context.Context) ([]*models.Team, error)
	TeamMembers(ctx context.Context, teamID int) (*models.Team, []*models.Player, error)
	// UploadTeamFlag stores the flag image and records its blob key.
	UploadTeamFlag(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error)
}

type rosterService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	uploader   storage.FileUploader
	txManager  repositories.TxManager
	logger     *slog.Logger
}

func NewRosterService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	txManager repositories.TxManager,
	logger *slog.Logger,
) RosterService {
	return &rosterService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		uploader:   uploader,
		txManager:  txManager,
		logger:     logger,
	}
}

func (s *rosterService) CreatePlayer(ctx context.Context, input PlayerInput) (*models.Player, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrValidationFailed)
	}
	p := &models.Player{
		TournamentID: 1,
		TeamID:       input.TeamID,
		Name:         input.Name,
		Gender:       input.Gender,
		Rating:       input.Rating,
		Phone:        input.Phone,
	}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.playerRepo.Create(ctx, exec, p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

func (s *rosterService) UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*models.Player, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrValidationFailed)
	}
	p, err := s.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	p.TeamID = input.TeamID
	p.Name = input.Name
	p.Gender = input.Gender
	p.Rating = input.Rating
	p.Phone = input.Phone

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.playerRepo.Update(ctx, exec, p)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update player %d: %w", id, err)
	}
	return p, nil
}

func (s *rosterService) DeletePlayer(ctx context.Context, id int) error {
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.playerRepo.Delete(ctx, exec, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	return nil
}

func (s *rosterService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	p, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load player %d: %w", id, err)
	}
	return p, nil
}

func (s *rosterService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *rosterService) SearchPlayers(ctx context.Context, name string) ([]*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []*models.Player{}, nil
	}
	players, err := s.playerRepo.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	return players, nil
}

func (s *rosterService) CreateTeam(ctx context.Context, input TeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}
	if input.ShortName == "" {
		input.ShortName = input.Name
	}
	t := &models.Team{TournamentID: 1, Name: input.Name, ShortName: input.ShortName}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.teamRepo.Create(ctx, exec, t)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return t, nil
}

func (s *rosterService) UpdateTeam(ctx context.Context, id int, input TeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}
	t, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", id, err)
	}
	t.Name = input.Name
	if input.ShortName != "" {
		t.ShortName = input.ShortName
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.teamRepo.Update(ctx, exec, t)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team %d: %w", id, err)
	}
	s.populateFlagURL(t)
	return t, nil
}

func (s *rosterService) DeleteTeam(ctx context.Context, id int) error {
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.teamRepo.Delete(ctx, exec, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return nil
}

func (s *rosterService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for _, t := range teams {
		s.populateFlagURL(t)
	}
	return teams, nil
}

func (s *rosterService) TeamMembers(ctx context.Context, teamID int) (*models.Team, []*models.Player, error) {
	t, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	s.populateFlagURL(t)
	players, err := s.playerRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}
	return t, players, nil
}

func (s *rosterService) UploadTeamFlag(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error) {
	t, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("flags/team_%d%s", teamID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload flag for team %d: %w", teamID, err)
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.teamRepo.SetFlagKey(ctx, exec, teamID, key)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record flag key for team %d: %w", teamID, err)
	}

	t.FlagKey = &key
	s.populateFlagURL(t)
	s.logger.InfoContext(ctx, "team flag uploaded",
		slog.Int("team_id", teamID), slog.String("key", key))
	return t, nil
}

func (s *rosterService) populateFlagURL(t *models.Team) {
	if t == nil || t.FlagKey == nil || *t.FlagKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.FlagKey); url != "" {
		t.FlagURL = &url
	}
}

func extensionForContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	}
	return "", fmt.Errorf("unsupported image content type %q", contentType)
}
