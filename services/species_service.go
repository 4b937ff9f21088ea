package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/repositories"
	"github.com/Marinovinc/TournamentMaster/scoring"
)

type SpeciesService interface {
	List(ctx context.Context) ([]models.Species, error)
	GetByID(ctx context.Context, id int) (*models.Species, error)
	// SetScoring задаёт таблицу очков вида для турнира CATCH_RELEASE.
	// Нулевые значения ярусов заменяются значениями по умолчанию.
	SetScoring(ctx context.Context, callerID int, callerRole models.UserRole, s *models.SpeciesScoring) error
	ListScoring(ctx context.Context, tournamentID int) ([]models.SpeciesScoring, error)
}

type speciesService struct {
	speciesRepo    repositories.SpeciesRepository
	tournamentRepo repositories.TournamentRepository
}

func NewSpeciesService(speciesRepo repositories.SpeciesRepository, tournamentRepo repositories.TournamentRepository) SpeciesService {
	return &speciesService{speciesRepo: speciesRepo, tournamentRepo: tournamentRepo}
}

func (s *speciesService) List(ctx context.Context) ([]models.Species, error) {
	return s.speciesRepo.List(ctx)
}

func (s *speciesService) GetByID(ctx context.Context, id int) (*models.Species, error) {
	species, err := s.speciesRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSpeciesNotFound) {
			return nil, fmt.Errorf("%w: species %d", ErrSpeciesNotFound, id)
		}
		return nil, err
	}
	return species, nil
}

func (s *speciesService) SetScoring(ctx context.Context, callerID int, callerRole models.UserRole, sc *models.SpeciesScoring) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, sc.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, sc.TournamentID)
		}
		return err
	}
	if callerRole != models.RoleAdmin && tournament.OrganizerID != callerID {
		return ErrForbiddenOperation
	}
	if tournament.Status.IsTerminal() {
		return fmt.Errorf("%w: status is %s", ErrTournamentTerminal, tournament.Status)
	}
	if _, err := s.speciesRepo.GetByID(ctx, sc.SpeciesID); err != nil {
		if errors.Is(err, repositories.ErrSpeciesNotFound) {
			return fmt.Errorf("%w: species %d", ErrSpeciesNotFound, sc.SpeciesID)
		}
		return err
	}

	if sc.PointsSmall < 0 || sc.PointsMedium < 0 || sc.PointsLarge < 0 || sc.PointsExtraLarge < 0 {
		return fmt.Errorf("%w: tier points cannot be negative", ErrValidationFailed)
	}
	if sc.PointsSmall == 0 {
		sc.PointsSmall = scoring.DefaultPointsSmall
	}
	if sc.PointsMedium == 0 {
		sc.PointsMedium = scoring.DefaultPointsMedium
	}
	if sc.PointsLarge == 0 {
		sc.PointsLarge = scoring.DefaultPointsLarge
	}
	if sc.PointsExtraLarge == 0 {
		sc.PointsExtraLarge = scoring.DefaultPointsExtraLarge
	}
	if sc.CatchReleaseBonus <= 0 {
		sc.CatchReleaseBonus = scoring.DefaultCatchReleaseBonus
	}

	return s.speciesRepo.UpsertScoring(ctx, sc)
}

func (s *speciesService) ListScoring(ctx context.Context, tournamentID int) ([]models.SpeciesScoring, error) {
	return s.speciesRepo.ListScoringByTournament(ctx, tournamentID)
}
