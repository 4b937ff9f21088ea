package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/lib/pq"
)

var (
	ErrFishingZoneNotFound          = errors.New("fishing zone not found")
	ErrFishingZoneTournamentInvalid = errors.New("fishing zone tournament conflict or invalid")
)

type FishingZoneRepository interface {
	Create(ctx context.Context, zone *models.FishingZone) error
	GetByID(ctx context.Context, id int) (*models.FishingZone, error)
	ListByTournament(ctx context.Context, tournamentID int, onlyActive bool) ([]models.FishingZone, error)
	Update(ctx context.Context, zone *models.FishingZone) error
	Delete(ctx context.Context, id int) error
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

const fishingZoneColumns = `
	id, tournament_id, name, geo_json, min_lat, max_lat, min_lng, max_lng, is_active, created_at`

type postgresFishingZoneRepository struct {
	db *sql.DB
}

func NewPostgresFishingZoneRepository(db *sql.DB) FishingZoneRepository {
	return &postgresFishingZoneRepository{db: db}
}

func (r *postgresFishingZoneRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresFishingZoneRepository) scanZone(rowScanner interface{ Scan(...interface{}) error }) (*models.FishingZone, error) {
	z := &models.FishingZone{}
	var raw []byte
	err := rowScanner.Scan(
		&z.ID, &z.TournamentID, &z.Name, &raw,
		&z.MinLat, &z.MaxLat, &z.MinLng, &z.MaxLng, &z.IsActive, &z.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFishingZoneNotFound
		}
		return nil, err
	}
	z.GeoJSON = raw
	return z, nil
}

func (r *postgresFishingZoneRepository) Create(ctx context.Context, z *models.FishingZone) error {
	executor := r.getExecutor(nil)
	query := `
		INSERT INTO fishing_zones (
			tournament_id, name, geo_json, min_lat, max_lat, min_lng, max_lng, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		z.TournamentID, z.Name, []byte(z.GeoJSON),
		z.MinLat, z.MaxLat, z.MinLng, z.MaxLng, z.IsActive,
	).Scan(&z.ID, &z.CreatedAt)

	return r.handleZoneError(err)
}

func (r *postgresFishingZoneRepository) GetByID(ctx context.Context, id int) (*models.FishingZone, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + fishingZoneColumns + ` FROM fishing_zones WHERE id = $1`
	return r.scanZone(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresFishingZoneRepository) ListByTournament(ctx context.Context, tournamentID int, onlyActive bool) ([]models.FishingZone, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + fishingZoneColumns + ` FROM fishing_zones WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if onlyActive {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY id"

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := make([]models.FishingZone, 0)
	for rows.Next() {
		z, scanErr := r.scanZone(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		zones = append(zones, *z)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return zones, nil
}

func (r *postgresFishingZoneRepository) Update(ctx context.Context, z *models.FishingZone) error {
	executor := r.getExecutor(nil)
	query := `
		UPDATE fishing_zones SET
			name = $1, geo_json = $2, min_lat = $3, max_lat = $4, min_lng = $5, max_lng = $6, is_active = $7
		WHERE id = $8`
	result, err := executor.ExecContext(ctx, query,
		z.Name, []byte(z.GeoJSON), z.MinLat, z.MaxLat, z.MinLng, z.MaxLng, z.IsActive, z.ID)
	if err != nil {
		return r.handleZoneError(err)
	}
	return checkAffectedRows(result, ErrFishingZoneNotFound)
}

func (r *postgresFishingZoneRepository) Delete(ctx context.Context, id int) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx, `DELETE FROM fishing_zones WHERE id = $1`, id)
	if err != nil {
		return r.handleZoneError(err)
	}
	return checkAffectedRows(result, ErrFishingZoneNotFound)
}

func (r *postgresFishingZoneRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fishing_zones WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	return count, err
}

func (r *postgresFishingZoneRepository) handleZoneError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		if pqErr.Constraint == "fishing_zones_tournament_id_fkey" {
			return ErrFishingZoneTournamentInvalid
		}
	}
	return err
}
