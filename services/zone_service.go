package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marinovinc/TournamentMaster/geo"
	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/repositories"
)

// CreateZoneInput — данные создания зоны лова. Заполняется либо GeoJSON,
// либо круг (центр + радиус), который конвертируется в полигон.
type CreateZoneInput struct {
	TournamentID int
	Name         string
	GeoJSON      []byte
	CenterLat    *float64
	CenterLng    *float64
	RadiusKm     *float64
}

// ZoneInfo — зона вместе с производными геометрическими характеристиками.
type ZoneInfo struct {
	Zone         *models.FishingZone `json:"zone"`
	AreaSquareKm float64             `json:"area_square_km"`
}

type FishingZoneService interface {
	Create(ctx context.Context, callerID int, callerRole models.UserRole, input CreateZoneInput) (*models.FishingZone, error)
	GetByID(ctx context.Context, id int) (*ZoneInfo, error)
	ListByTournament(ctx context.Context, tournamentID int, onlyActive bool) ([]models.FishingZone, error)
	Update(ctx context.Context, callerID int, callerRole models.UserRole, zoneID int, name string, geoJSON []byte, isActive bool) (*models.FishingZone, error)
	Delete(ctx context.Context, callerID int, callerRole models.UserRole, zoneID int) error
}

type fishingZoneService struct {
	zoneRepo       repositories.FishingZoneRepository
	tournamentRepo repositories.TournamentRepository
}

func NewFishingZoneService(zoneRepo repositories.FishingZoneRepository, tournamentRepo repositories.TournamentRepository) FishingZoneService {
	return &fishingZoneService{zoneRepo: zoneRepo, tournamentRepo: tournamentRepo}
}

func (s *fishingZoneService) Create(ctx context.Context, callerID int, callerRole models.UserRole, input CreateZoneInput) (*models.FishingZone, error) {
	tournament, err := s.loadEditableTournament(ctx, callerID, callerRole, input.TournamentID)
	if err != nil {
		return nil, err
	}

	raw := input.GeoJSON
	if len(raw) == 0 {
		if input.CenterLat == nil || input.CenterLng == nil || input.RadiusKm == nil {
			return nil, fmt.Errorf("%w: either geo_json or center with radius is required", ErrValidationFailed)
		}
		if !geo.IsValidCoordinate(*input.CenterLat, *input.CenterLng) {
			return nil, fmt.Errorf("%w: center lat=%f, lng=%f", ErrInvalidCoordinates, *input.CenterLat, *input.CenterLng)
		}
		if *input.RadiusKm <= 0 {
			return nil, fmt.Errorf("%w: radius must be positive", ErrValidationFailed)
		}
		circle := geo.CircularZone(*input.CenterLat, *input.CenterLng, *input.RadiusKm, 0)
		raw, err = geo.MarshalGeometry(circle)
		if err != nil {
			return nil, fmt.Errorf("failed to encode circular zone: %w", err)
		}
	}

	geometry, err := geo.ParseGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeoJSON, err)
	}

	box := geometry.Bounds()
	zone := &models.FishingZone{
		TournamentID: tournament.ID,
		Name:         input.Name,
		GeoJSON:      raw,
		MinLat:       box.MinLat,
		MaxLat:       box.MaxLat,
		MinLng:       box.MinLng,
		MaxLng:       box.MaxLng,
		IsActive:     true,
	}
	if zone.Name == "" {
		return nil, fmt.Errorf("%w: zone name is required", ErrValidationFailed)
	}

	if err := s.zoneRepo.Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to create fishing zone: %w", err)
	}
	return zone, nil
}

func (s *fishingZoneService) GetByID(ctx context.Context, id int) (*ZoneInfo, error) {
	zone, err := s.zoneRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFishingZoneNotFound) {
			return nil, fmt.Errorf("%w: zone %d", ErrFishingZoneNotFound, id)
		}
		return nil, err
	}

	info := &ZoneInfo{Zone: zone}
	if geometry, err := geo.ParseGeometry(zone.GeoJSON); err == nil {
		info.AreaSquareKm = geometry.AreaSquareKm()
	}
	return info, nil
}

func (s *fishingZoneService) ListByTournament(ctx context.Context, tournamentID int, onlyActive bool) ([]models.FishingZone, error) {
	return s.zoneRepo.ListByTournament(ctx, tournamentID, onlyActive)
}

func (s *fishingZoneService) Update(ctx context.Context, callerID int, callerRole models.UserRole, zoneID int, name string, geoJSON []byte, isActive bool) (*models.FishingZone, error) {
	zone, err := s.zoneRepo.GetByID(ctx, zoneID)
	if err != nil {
		if errors.Is(err, repositories.ErrFishingZoneNotFound) {
			return nil, fmt.Errorf("%w: zone %d", ErrFishingZoneNotFound, zoneID)
		}
		return nil, err
	}
	if _, err := s.loadEditableTournament(ctx, callerID, callerRole, zone.TournamentID); err != nil {
		return nil, err
	}

	if name != "" {
		zone.Name = name
	}
	if len(geoJSON) > 0 {
		geometry, err := geo.ParseGeometry(geoJSON)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeoJSON, err)
		}
		box := geometry.Bounds()
		zone.GeoJSON = geoJSON
		zone.MinLat = box.MinLat
		zone.MaxLat = box.MaxLat
		zone.MinLng = box.MinLng
		zone.MaxLng = box.MaxLng
	}
	zone.IsActive = isActive

	if err := s.zoneRepo.Update(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to update fishing zone %d: %w", zoneID, err)
	}
	return zone, nil
}

func (s *fishingZoneService) Delete(ctx context.Context, callerID int, callerRole models.UserRole, zoneID int) error {
	zone, err := s.zoneRepo.GetByID(ctx, zoneID)
	if err != nil {
		if errors.Is(err, repositories.ErrFishingZoneNotFound) {
			return fmt.Errorf("%w: zone %d", ErrFishingZoneNotFound, zoneID)
		}
		return err
	}
	if _, err := s.loadEditableTournament(ctx, callerID, callerRole, zone.TournamentID); err != nil {
		return err
	}
	return s.zoneRepo.Delete(ctx, zoneID)
}

// loadEditableTournament проверяет права вызывающего и что турнир ещё
// допускает изменение зон. Зоны завершённого или отменённого турнира
// заморожены, история уловов должна оставаться воспроизводимой.
func (s *fishingZoneService) loadEditableTournament(ctx context.Context, callerID int, callerRole models.UserRole, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, tournamentID)
		}
		return nil, err
	}
	if callerRole != models.RoleAdmin && tournament.OrganizerID != callerID {
		return nil, ErrForbiddenOperation
	}
	if tournament.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: status is %s", ErrTournamentTerminal, tournament.Status)
	}
	return tournament, nil
}
