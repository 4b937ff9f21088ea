package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Marinovinc/TournamentMaster/geo"
	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/realtime"
	"github.com/Marinovinc/TournamentMaster/repositories"
	"github.com/Marinovinc/TournamentMaster/scoring"
	"github.com/Marinovinc/TournamentMaster/storage"
	"github.com/google/uuid"
)

// MediaUpload — загружаемый файл (фото или видео улова).
type MediaUpload struct {
	Reader      io.Reader
	ContentType string
}

// SubmitCatchInput — данные подачи улова участником.
type SubmitCatchInput struct {
	TournamentID int
	UserID       int
	SpeciesID    *int
	Weight       *float64
	Length       *float64
	SizeCategory *models.SizeCategory
	WasReleased  bool
	Latitude     float64
	Longitude    float64
	GPSAccuracy  *float64
	CaughtAt     time.Time
	Notes        *string
	Photo        *MediaUpload
	Video        *MediaUpload
}

type CatchService interface {
	// Submit валидирует и сохраняет улов со статусом PENDING.
	// Гео-вердикт рекомендательный: улов вне зоны принимается,
	// решение остаётся за судьёй.
	Submit(ctx context.Context, input SubmitCatchInput) (*models.Catch, error)
	// Approve начисляет очки и пересчитывает лидерборд атомарно.
	Approve(ctx context.Context, catchID, reviewerID int, notes *string) (*models.Catch, error)
	// Reject требует причину; очки не начисляются.
	Reject(ctx context.Context, catchID, reviewerID int, reason *string) (*models.Catch, error)
	GetByID(ctx context.Context, id int) (*models.Catch, error)
	List(ctx context.Context, filter repositories.ListCatchesFilter) ([]*models.Catch, int, error)
	ListPending(ctx context.Context, tournamentID, page, limit int) ([]*models.Catch, int, error)
}

type catchService struct {
	db               *sql.DB
	catchRepo        repositories.CatchRepository
	tournamentRepo   repositories.TournamentRepository
	zoneRepo         repositories.FishingZoneRepository
	speciesRepo      repositories.SpeciesRepository
	registrationRepo repositories.RegistrationRepository
	leaderboard      LeaderboardService
	locks            *TournamentLocks
	uploader         storage.FileUploader
	broadcaster      EventBroadcaster
	logger           *slog.Logger
}

func NewCatchService(
	db *sql.DB,
	catchRepo repositories.CatchRepository,
	tournamentRepo repositories.TournamentRepository,
	zoneRepo repositories.FishingZoneRepository,
	speciesRepo repositories.SpeciesRepository,
	registrationRepo repositories.RegistrationRepository,
	leaderboard LeaderboardService,
	locks *TournamentLocks,
	uploader storage.FileUploader,
	broadcaster EventBroadcaster,
	logger *slog.Logger,
) CatchService {
	return &catchService{
		db:               db,
		catchRepo:        catchRepo,
		tournamentRepo:   tournamentRepo,
		zoneRepo:         zoneRepo,
		speciesRepo:      speciesRepo,
		registrationRepo: registrationRepo,
		leaderboard:      leaderboard,
		locks:            locks,
		uploader:         uploader,
		broadcaster:      broadcaster,
		logger:           logger,
	}
}

func (s *catchService) Submit(ctx context.Context, input SubmitCatchInput) (*models.Catch, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, input.TournamentID)
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", input.TournamentID, err)
	}
	if tournament.Status != models.StatusOngoing {
		return nil, fmt.Errorf("%w: status is %s", ErrTournamentNotActive, tournament.Status)
	}

	reg, err := s.registrationRepo.GetByUserAndTournament(ctx, input.TournamentID, input.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrUserNotRegistered
		}
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}
	if reg.Status != models.RegistrationConfirmed {
		return nil, fmt.Errorf("%w: registration status is %s", ErrUserNotRegistered, reg.Status)
	}

	if !geo.IsValidCoordinate(input.Latitude, input.Longitude) {
		return nil, fmt.Errorf("%w: lat=%f, lng=%f", ErrInvalidCoordinates, input.Latitude, input.Longitude)
	}
	if input.CaughtAt.Before(tournament.StartDate) || input.CaughtAt.After(tournament.EndDate) {
		return nil, ErrCatchOutsideDates
	}

	if tournament.MaxCatchesPerDay != nil {
		count, err := s.catchRepo.CountByUserAndDay(ctx, input.TournamentID, input.UserID, input.CaughtAt)
		if err != nil {
			return nil, fmt.Errorf("failed to count daily catches: %w", err)
		}
		if count >= *tournament.MaxCatchesPerDay {
			return nil, fmt.Errorf("%w: limit is %d per day", ErrDailyCatchLimitReached, *tournament.MaxCatchesPerDay)
		}
	}

	if err := s.validateModeFields(tournament, input); err != nil {
		return nil, err
	}

	if input.SpeciesID != nil {
		if _, err := s.speciesRepo.GetByID(ctx, *input.SpeciesID); err != nil {
			if errors.Is(err, repositories.ErrSpeciesNotFound) {
				return nil, fmt.Errorf("%w: species %d", ErrSpeciesNotFound, *input.SpeciesID)
			}
			return nil, fmt.Errorf("failed to load species %d: %w", *input.SpeciesID, err)
		}
	}

	validation, err := s.validateLocation(ctx, input)
	if err != nil {
		return nil, err
	}

	c := &models.Catch{
		TournamentID: input.TournamentID,
		UserID:       input.UserID,
		SpeciesID:    input.SpeciesID,
		Weight:       input.Weight,
		Length:       input.Length,
		SizeCategory: input.SizeCategory,
		WasReleased:  input.WasReleased,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		GPSAccuracy:  input.GPSAccuracy,
		CaughtAt:     input.CaughtAt,
		Notes:        input.Notes,
		Status:       models.CatchPending,
		IsInsideZone: validation.IsInsideZone,
	}

	if input.Photo != nil {
		key, err := s.uploadMedia(ctx, "catches/photos", input.Photo)
		if err != nil {
			return nil, fmt.Errorf("failed to upload catch photo: %w", err)
		}
		c.PhotoKey = &key
	}
	if input.Video != nil {
		key, err := s.uploadMedia(ctx, "catches/videos", input.Video)
		if err != nil {
			return nil, fmt.Errorf("failed to upload catch video: %w", err)
		}
		c.VideoKey = &key
	}

	if err := s.catchRepo.Create(ctx, c, validation); err != nil {
		return nil, fmt.Errorf("failed to create catch: %w", err)
	}
	s.fillMediaURLs(c)

	if !validation.IsInsideZone {
		s.logger.Warn("catch submitted outside fishing zones",
			"catch_id", c.ID,
			"tournament_id", c.TournamentID,
			"distance_m", validation.DistanceFromZone,
		)
	}

	s.broadcastCatch(c)
	return c, nil
}

// validateModeFields проверяет обязательные поля режима подсчёта.
func (s *catchService) validateModeFields(t *models.Tournament, input SubmitCatchInput) error {
	switch t.GameMode {
	case models.ModeTraditional:
		if input.Weight == nil {
			return ErrWeightRequired
		}
		if *input.Weight <= 0 {
			return fmt.Errorf("%w: weight must be positive", ErrValidationFailed)
		}
		if t.MinWeight != nil && *input.Weight < *t.MinWeight {
			return fmt.Errorf("%w: minimum is %.2f kg", ErrWeightBelowMinimum, *t.MinWeight)
		}
	case models.ModeCatchRelease:
		if input.SpeciesID == nil {
			return ErrSpeciesRequired
		}
		if input.SizeCategory == nil {
			return ErrSizeCategoryRequired
		}
		switch *input.SizeCategory {
		case models.SizeSmall, models.SizeMedium, models.SizeLarge, models.SizeExtraLarge:
		default:
			return fmt.Errorf("%w: unknown size category %q", ErrSizeCategoryRequired, *input.SizeCategory)
		}
		// Видео отпускания обязательно для каждой заявки режима,
		// не только когда рыба уже отмечена отпущенной.
		if input.Video == nil {
			return ErrReleaseVideoRequired
		}
	}
	return nil
}

func (s *catchService) validateLocation(ctx context.Context, input SubmitCatchInput) (*geo.ValidationResult, error) {
	zones, err := s.zoneRepo.ListByTournament(ctx, input.TournamentID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load fishing zones for tournament %d: %w", input.TournamentID, err)
	}
	geoZones := make([]geo.Zone, 0, len(zones))
	for _, z := range zones {
		geoZones = append(geoZones, geo.Zone{Name: z.Name, RawGeoJSON: z.GeoJSON})
	}
	result := geo.ValidateLocation(input.Latitude, input.Longitude, input.GPSAccuracy, geoZones)
	return &result, nil
}

func (s *catchService) uploadMedia(ctx context.Context, prefix string, media *MediaUpload) (string, error) {
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), extensionFor(media.ContentType))
	if _, err := s.uploader.Upload(ctx, key, media.ContentType, media.Reader); err != nil {
		return "", err
	}
	return key, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	default:
		return ""
	}
}

func (s *catchService) Approve(ctx context.Context, catchID, reviewerID int, notes *string) (*models.Catch, error) {
	return s.review(ctx, catchID, reviewerID, notes, true)
}

func (s *catchService) Reject(ctx context.Context, catchID, reviewerID int, reason *string) (*models.Catch, error) {
	if reason == nil || *reason == "" {
		return nil, ErrRejectionReasonRequired
	}
	return s.review(ctx, catchID, reviewerID, reason, false)
}

// review выполняет одобрение или отклонение под блокировкой турнира.
// Начисление очков, обновление улова и пересчёт лидерборда — одна
// транзакция: частично одобренный улов невозможен.
func (s *catchService) review(ctx context.Context, catchID, reviewerID int, notes *string, approve bool) (*models.Catch, error) {
	// Турнир улова нужен до взятия блокировки.
	existing, err := s.catchRepo.GetByID(ctx, catchID)
	if err != nil {
		if errors.Is(err, repositories.ErrCatchNotFound) {
			return nil, fmt.Errorf("%w: catch %d", ErrCatchNotFound, catchID)
		}
		return nil, fmt.Errorf("failed to load catch %d: %w", catchID, err)
	}

	lock := s.locks.ForTournament(existing.TournamentID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin review transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := s.catchRepo.GetByIDForUpdate(ctx, tx, catchID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock catch %d: %w", catchID, err)
	}
	if c.Status != models.CatchPending {
		return nil, fmt.Errorf("%w: status is %s", ErrCatchAlreadyReviewed, c.Status)
	}

	now := time.Now().UTC()
	c.ReviewerID = &reviewerID
	c.ReviewNotes = notes
	c.ReviewedAt = &now

	if approve {
		points, err := s.computePoints(ctx, c)
		if err != nil {
			return nil, err
		}
		c.Status = models.CatchApproved
		c.Points = &points
	} else {
		c.Status = models.CatchRejected
	}

	if err := s.catchRepo.UpdateReview(ctx, tx, c); err != nil {
		return nil, fmt.Errorf("failed to update catch %d review: %w", catchID, err)
	}

	if approve {
		if _, err := s.leaderboard.RecomputeEntry(ctx, tx, c.TournamentID, c.UserID); err != nil {
			return nil, fmt.Errorf("failed to recompute leaderboard: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review transaction: %w", err)
	}

	s.fillMediaURLs(c)
	s.broadcastCatch(c)
	if approve {
		s.broadcaster.BroadcastToRoom(realtime.TournamentRoom(c.TournamentID), Event{
			Type:    realtime.MessageLeaderboardUpdated,
			Payload: LeaderboardEventPayload{TournamentID: c.TournamentID},
		})
	}
	return c, nil
}

func (s *catchService) computePoints(ctx context.Context, c *models.Catch) (float64, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, c.TournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to load tournament %d: %w", c.TournamentID, err)
	}

	var species *models.Species
	var table *models.SpeciesScoring
	if c.SpeciesID != nil {
		species, err = s.speciesRepo.GetByID(ctx, *c.SpeciesID)
		if err != nil && !errors.Is(err, repositories.ErrSpeciesNotFound) {
			return 0, fmt.Errorf("failed to load species %d: %w", *c.SpeciesID, err)
		}
		table, err = s.speciesRepo.GetScoring(ctx, c.TournamentID, *c.SpeciesID)
		if err != nil {
			return 0, fmt.Errorf("failed to load species scoring: %w", err)
		}
	}

	points, err := scoring.ComputePoints(tournament, c, species, table)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return points, nil
}

func (s *catchService) GetByID(ctx context.Context, id int) (*models.Catch, error) {
	c, err := s.catchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCatchNotFound) {
			return nil, fmt.Errorf("%w: catch %d", ErrCatchNotFound, id)
		}
		return nil, err
	}
	s.fillMediaURLs(c)
	return c, nil
}

func (s *catchService) List(ctx context.Context, filter repositories.ListCatchesFilter) ([]*models.Catch, int, error) {
	catches, total, err := s.catchRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for _, c := range catches {
		s.fillMediaURLs(c)
	}
	return catches, total, nil
}

// ListPending — очередь судьи, старые заявки первыми.
func (s *catchService) ListPending(ctx context.Context, tournamentID, page, limit int) ([]*models.Catch, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	status := models.CatchPending
	return s.List(ctx, repositories.ListCatchesFilter{
		TournamentID: &tournamentID,
		Status:       &status,
		Limit:        limit,
		Offset:       (page - 1) * limit,
	})
}

func (s *catchService) fillMediaURLs(c *models.Catch) {
	if c.PhotoKey != nil {
		url := s.uploader.GetPublicURL(*c.PhotoKey)
		c.PhotoURL = &url
	}
	if c.VideoKey != nil {
		url := s.uploader.GetPublicURL(*c.VideoKey)
		c.VideoURL = &url
	}
}

func (s *catchService) broadcastCatch(c *models.Catch) {
	s.broadcaster.BroadcastToRoom(realtime.TournamentRoom(c.TournamentID), Event{
		Type: realtime.MessageCatchUpdated,
		Payload: CatchEventPayload{
			CatchID:      c.ID,
			TournamentID: c.TournamentID,
			UserID:       c.UserID,
			Status:       string(c.Status),
			Points:       c.Points,
		},
	})
}
