package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/realtime"
	"github.com/Marinovinc/TournamentMaster/repositories"
	"github.com/Marinovinc/TournamentMaster/storage"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// validTransitions — линейный порядок жизненного цикла, по нему же
// движется автопереход по датам. CANCELLED достижим из любого
// нетерминального статуса и обрабатывается отдельно.
var validTransitions = map[models.TournamentStatus]models.TournamentStatus{
	models.StatusDraft:              models.StatusPublished,
	models.StatusPublished:          models.StatusRegistrationOpen,
	models.StatusRegistrationOpen:   models.StatusRegistrationClosed,
	models.StatusRegistrationClosed: models.StatusOngoing,
	models.StatusOngoing:            models.StatusCompleted,
}

// canTransition разрешает шаг по линейному порядку плюс досрочный старт:
// организатор может запустить турнир прямо из PUBLISHED, минуя окна
// регистрации.
func canTransition(from, to models.TournamentStatus) bool {
	if validTransitions[from] == to {
		return true
	}
	return from == models.StatusPublished && to == models.StatusOngoing
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, t *models.Tournament) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, callerID int, callerRole models.UserRole, t *models.Tournament) (*models.Tournament, error)
	Delete(ctx context.Context, callerID int, callerRole models.UserRole, id int) error
	UploadLogo(ctx context.Context, callerID int, callerRole models.UserRole, id int, logo MediaUpload) (*models.Tournament, error)

	// Переходы жизненного цикла. Каждый проверяет свой гейт и
	// рассылает TOURNAMENT_STATUS_CHANGED после успеха.
	Publish(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error)
	OpenRegistration(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error)
	CloseRegistration(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error)
	Start(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error)
	Complete(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error)
	Cancel(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error)

	// AutoUpdateTournamentStatusesByDates продвигает турниры, у которых
	// наступила дата перехода. Ошибка одного турнира не останавливает
	// обработку остальных.
	AutoUpdateTournamentStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	zoneRepo         repositories.FishingZoneRepository
	registrationRepo repositories.RegistrationRepository
	catchRepo        repositories.CatchRepository
	leaderboard      LeaderboardService
	locks            *TournamentLocks
	uploader         storage.FileUploader
	broadcaster      EventBroadcaster
	clock            clockwork.Clock
	logger           *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	zoneRepo repositories.FishingZoneRepository,
	registrationRepo repositories.RegistrationRepository,
	catchRepo repositories.CatchRepository,
	leaderboard LeaderboardService,
	locks *TournamentLocks,
	uploader storage.FileUploader,
	broadcaster EventBroadcaster,
	clock clockwork.Clock,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		zoneRepo:         zoneRepo,
		registrationRepo: registrationRepo,
		catchRepo:        catchRepo,
		leaderboard:      leaderboard,
		locks:            locks,
		uploader:         uploader,
		broadcaster:      broadcaster,
		clock:            clock,
		logger:           logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, t *models.Tournament) (*models.Tournament, error) {
	if err := validateTournamentFields(t); err != nil {
		return nil, err
	}

	t.OrganizerID = organizerID
	t.Status = models.StatusDraft
	if t.PointsPerKg <= 0 {
		t.PointsPerKg = 10
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return t, nil
}

func validateTournamentFields(t *models.Tournament) error {
	if t.Name == "" {
		return ErrTournamentNameRequired
	}
	if t.GameMode != models.ModeTraditional && t.GameMode != models.ModeCatchRelease {
		return fmt.Errorf("%w: unknown game mode %q", ErrValidationFailed, t.GameMode)
	}
	if !t.RegistrationCloses.After(t.RegistrationOpens) {
		return ErrTournamentInvalidRegDates
	}
	if !t.EndDate.After(t.StartDate) {
		return ErrTournamentInvalidDates
	}
	if t.RegistrationCloses.After(t.StartDate) {
		return fmt.Errorf("%w: registration must close before the tournament starts", ErrTournamentInvalidRegDates)
	}
	return nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, id)
		}
		return nil, err
	}

	zones, err := s.zoneRepo.ListByTournament(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load zones for tournament %d: %w", id, err)
	}
	t.FishingZones = zones
	s.fillLogoURL(t)
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.fillLogoURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, callerID int, callerRole models.UserRole, t *models.Tournament) (*models.Tournament, error) {
	existing, err := s.loadOwned(ctx, callerID, callerRole, t.ID)
	if err != nil {
		return nil, err
	}
	// Основные параметры можно менять только до открытия регистрации.
	if existing.Status != models.StatusDraft && existing.Status != models.StatusPublished {
		return nil, fmt.Errorf("%w: tournament can be edited only before registration opens", ErrTournamentInvalidStatusTransition)
	}
	if err := validateTournamentFields(t); err != nil {
		return nil, err
	}

	t.OrganizerID = existing.OrganizerID
	t.Status = existing.Status
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", t.ID, err)
	}
	return t, nil
}

func (s *tournamentService) Delete(ctx context.Context, callerID int, callerRole models.UserRole, id int) error {
	existing, err := s.loadOwned(ctx, callerID, callerRole, id)
	if err != nil {
		return err
	}
	if existing.Status != models.StatusDraft {
		return fmt.Errorf("%w: only draft tournaments can be deleted", ErrTournamentInvalidStatusTransition)
	}
	return s.tournamentRepo.Delete(ctx, id)
}

func (s *tournamentService) UploadLogo(ctx context.Context, callerID int, callerRole models.UserRole, id int, logo MediaUpload) (*models.Tournament, error) {
	t, err := s.loadOwned(ctx, callerID, callerRole, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/logos/%s%s", uuid.NewString(), extensionFor(logo.ContentType))
	if _, err := s.uploader.Upload(ctx, key, logo.ContentType, logo.Reader); err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}

	oldKey := t.LogoKey
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("failed to save tournament logo key: %w", err)
	}
	if oldKey != nil {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous tournament logo", "key", *oldKey, "error", err)
		}
	}

	t.LogoKey = &key
	s.fillLogoURL(t)
	return t, nil
}

func (s *tournamentService) Publish(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error) {
	t, err := s.loadOwned(ctx, callerID, callerRole, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, t, models.StatusPublished)
}

func (s *tournamentService) OpenRegistration(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error) {
	t, err := s.loadOwned(ctx, callerID, callerRole, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, t, models.StatusRegistrationOpen)
}

func (s *tournamentService) CloseRegistration(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error) {
	t, err := s.loadOwned(ctx, callerID, callerRole, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, t, models.StatusRegistrationClosed)
}

func (s *tournamentService) Start(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error) {
	t, err := s.loadOwned(ctx, callerID, callerRole, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, t, models.StatusOngoing)
}

func (s *tournamentService) Complete(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error) {
	t, err := s.loadOwned(ctx, callerID, callerRole, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, t, models.StatusCompleted)
}

func (s *tournamentService) Cancel(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error) {
	t, err := s.loadOwned(ctx, callerID, callerRole, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, t, models.StatusCancelled)
}

// transition применяет один переход жизненного цикла со всеми гейтами.
func (s *tournamentService) transition(ctx context.Context, t *models.Tournament, target models.TournamentStatus) (*models.Tournament, error) {
	if t.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: status is %s", ErrTournamentTerminal, t.Status)
	}
	if target != models.StatusCancelled && !canTransition(t.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, target)
	}

	switch target {
	case models.StatusPublished:
		if err := s.gatePublish(ctx, t); err != nil {
			return nil, err
		}
	case models.StatusOngoing:
		if err := s.gateStart(ctx, t); err != nil {
			return nil, err
		}
	case models.StatusCompleted:
		// Завершение конкурирует с одобрением уловов, поэтому гейт
		// по PENDING и смена статуса выполняются атомарно.
		return s.completeLocked(ctx, t)
	}

	oldStatus := t.Status
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, target); err != nil {
		return nil, fmt.Errorf("failed to update tournament %d status: %w", t.ID, err)
	}
	t.Status = target
	s.afterTransition(ctx, t, oldStatus)
	return t, nil
}

func (s *tournamentService) gatePublish(ctx context.Context, t *models.Tournament) error {
	count, err := s.zoneRepo.CountByTournament(ctx, nil, t.ID)
	if err != nil {
		return fmt.Errorf("failed to count zones for tournament %d: %w", t.ID, err)
	}
	if count == 0 {
		return ErrTournamentNoFishingZones
	}
	return nil
}

func (s *tournamentService) gateStart(ctx context.Context, t *models.Tournament) error {
	if t.MinParticipants == nil {
		return nil
	}
	confirmed, err := s.registrationRepo.CountConfirmed(ctx, nil, t.ID)
	if err != nil {
		return fmt.Errorf("failed to count confirmed registrations for tournament %d: %w", t.ID, err)
	}
	if confirmed < *t.MinParticipants {
		return fmt.Errorf("%w: %d of %d required", ErrTournamentNotEnoughParticipants, confirmed, *t.MinParticipants)
	}
	return nil
}

func (s *tournamentService) completeLocked(ctx context.Context, t *models.Tournament) (*models.Tournament, error) {
	lock := s.locks.ForTournament(t.ID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin completion transaction: %w", err)
	}
	defer tx.Rollback()

	pending, err := s.catchRepo.CountByStatus(ctx, tx, t.ID, models.CatchPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending catches for tournament %d: %w", t.ID, err)
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: %d pending", ErrTournamentHasPendingCatches, pending)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, tx, t.ID, models.StatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete tournament %d: %w", t.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit completion transaction: %w", err)
	}

	oldStatus := t.Status
	t.Status = models.StatusCompleted
	s.afterTransition(ctx, t, oldStatus)
	return t, nil
}

func (s *tournamentService) afterTransition(ctx context.Context, t *models.Tournament, oldStatus models.TournamentStatus) {
	s.logger.Info("tournament status changed",
		"tournament_id", t.ID,
		"old_status", oldStatus,
		"new_status", t.Status,
	)

	if t.Status == models.StatusOngoing {
		if err := s.leaderboard.InitializeForTournament(ctx, t.ID); err != nil {
			s.logger.Error("failed to initialize leaderboard", "tournament_id", t.ID, "error", err)
		}
	}

	s.broadcaster.BroadcastToRoom(realtime.TournamentRoom(t.ID), Event{
		Type: realtime.MessageTournamentStatusChanged,
		Payload: TournamentStatusEventPayload{
			TournamentID: t.ID,
			OldStatus:    string(oldStatus),
			NewStatus:    string(t.Status),
		},
	})
}

func (s *tournamentService) AutoUpdateTournamentStatusesByDates(ctx context.Context) error {
	now := s.clock.Now().UTC()
	due, err := s.tournamentRepo.GetTournamentsForAutoTransition(ctx, nil, now)
	if err != nil {
		return fmt.Errorf("failed to load tournaments due for transition: %w", err)
	}

	for _, t := range due {
		target, ok := validTransitions[t.Status]
		if !ok {
			continue
		}
		if _, err := s.transition(ctx, t, target); err != nil {
			// ONGOING с PENDING-уловами остаётся активным до решения
			// судьи; следующий проход заберёт его снова.
			if errors.Is(err, ErrTournamentHasPendingCatches) {
				s.logger.Warn("tournament past end date but has pending catches, skipping completion",
					"tournament_id", t.ID,
				)
				continue
			}
			// Недобор участников может держаться много проходов подряд,
			// это не сбой планировщика.
			if errors.Is(err, ErrTournamentNotEnoughParticipants) {
				s.logger.Warn("tournament past start date but lacks participants, skipping start",
					"tournament_id", t.ID,
				)
				continue
			}
			s.logger.Error("automatic tournament transition failed",
				"tournament_id", t.ID,
				"from", t.Status,
				"to", target,
				"error", err,
			)
		}
	}
	return nil
}

func (s *tournamentService) loadOwned(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, id)
		}
		return nil, err
	}
	if callerRole != models.RoleAdmin && t.OrganizerID != callerID {
		return nil, ErrForbiddenOperation
	}
	return t, nil
}

func (s *tournamentService) fillLogoURL(t *models.Tournament) {
	if t.LogoKey != nil {
		url := s.uploader.GetPublicURL(*t.LogoKey)
		t.LogoURL = &url
	}
}
