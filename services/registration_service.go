package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/repositories"
)

type RegistrationService interface {
	// Register подаёт заявку на участие. Заявка создаётся в статусе
	// PENDING и ждёт подтверждения организатором.
	Register(ctx context.Context, tournamentID, userID int, teamName *string) (*models.Registration, error)
	Confirm(ctx context.Context, callerID int, callerRole models.UserRole, registrationID int) error
	Reject(ctx context.Context, callerID int, callerRole models.UserRole, registrationID int) error
	Withdraw(ctx context.Context, userID, tournamentID int) error
	GetOwn(ctx context.Context, tournamentID, userID int) (*models.Registration, error)
	ListConfirmed(ctx context.Context, tournamentID int) ([]*models.Registration, error)
}

type registrationService struct {
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
}

func NewRegistrationService(registrationRepo repositories.RegistrationRepository, tournamentRepo repositories.TournamentRepository) RegistrationService {
	return &registrationService{registrationRepo: registrationRepo, tournamentRepo: tournamentRepo}
}

func (s *registrationService) Register(ctx context.Context, tournamentID, userID int, teamName *string) (*models.Registration, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, tournamentID)
		}
		return nil, err
	}
	if tournament.Status != models.StatusRegistrationOpen {
		return nil, fmt.Errorf("%w: status is %s", ErrRegistrationNotOpen, tournament.Status)
	}

	reg := &models.Registration{
		TournamentID: tournamentID,
		UserID:       userID,
		TeamName:     teamName,
		Status:       models.RegistrationPending,
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) Confirm(ctx context.Context, callerID int, callerRole models.UserRole, registrationID int) error {
	return s.review(ctx, callerID, callerRole, registrationID, models.RegistrationConfirmed)
}

func (s *registrationService) Reject(ctx context.Context, callerID int, callerRole models.UserRole, registrationID int) error {
	return s.review(ctx, callerID, callerRole, registrationID, models.RegistrationRejected)
}

func (s *registrationService) review(ctx context.Context, callerID int, callerRole models.UserRole, registrationID int, status models.RegistrationStatus) error {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return fmt.Errorf("%w: registration %d", ErrNotFound, registrationID)
		}
		return err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, reg.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to load tournament %d: %w", reg.TournamentID, err)
	}
	if callerRole != models.RoleAdmin && tournament.OrganizerID != callerID {
		return ErrForbiddenOperation
	}

	return s.registrationRepo.UpdateStatus(ctx, registrationID, status)
}

func (s *registrationService) Withdraw(ctx context.Context, userID, tournamentID int) error {
	reg, err := s.registrationRepo.GetByUserAndTournament(ctx, tournamentID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrUserNotRegistered
		}
		return err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	// После старта турнира участник уже в лидерборде, выход закрыт.
	if tournament.Status == models.StatusOngoing || tournament.Status.IsTerminal() {
		return fmt.Errorf("%w: tournament status is %s", ErrRegistrationNotOpen, tournament.Status)
	}

	return s.registrationRepo.UpdateStatus(ctx, reg.ID, models.RegistrationWithdrawn)
}

func (s *registrationService) GetOwn(ctx context.Context, tournamentID, userID int) (*models.Registration, error) {
	reg, err := s.registrationRepo.GetByUserAndTournament(ctx, tournamentID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrUserNotRegistered
		}
		return nil, err
	}
	return reg, nil
}

func (s *registrationService) ListConfirmed(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	return s.registrationRepo.ListConfirmed(ctx, nil, tournamentID)
}
