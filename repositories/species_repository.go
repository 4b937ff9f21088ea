package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Marinovinc/TournamentMaster/models"
)

var ErrSpeciesNotFound = errors.New("species not found")

type SpeciesRepository interface {
	GetByID(ctx context.Context, id int) (*models.Species, error)
	List(ctx context.Context) ([]models.Species, error)
	// GetScoring возвращает (nil, nil), если у вида нет таблицы очков для
	// турнира: в этом случае действуют значения по умолчанию движка.
	GetScoring(ctx context.Context, tournamentID, speciesID int) (*models.SpeciesScoring, error)
	UpsertScoring(ctx context.Context, scoring *models.SpeciesScoring) error
	ListScoringByTournament(ctx context.Context, tournamentID int) ([]models.SpeciesScoring, error)
}

type postgresSpeciesRepository struct {
	db *sql.DB
}

func NewPostgresSpeciesRepository(db *sql.DB) SpeciesRepository {
	return &postgresSpeciesRepository{db: db}
}

func (r *postgresSpeciesRepository) GetByID(ctx context.Context, id int) (*models.Species, error) {
	s := &models.Species{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, common_name, scientific_name, points_multiplier FROM species WHERE id = $1`, id,
	).Scan(&s.ID, &s.CommonName, &s.ScientificName, &s.PointsMultiplier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpeciesNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSpeciesRepository) List(ctx context.Context) ([]models.Species, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, common_name, scientific_name, points_multiplier FROM species ORDER BY common_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	species := make([]models.Species, 0)
	for rows.Next() {
		var s models.Species
		if scanErr := rows.Scan(&s.ID, &s.CommonName, &s.ScientificName, &s.PointsMultiplier); scanErr != nil {
			return nil, scanErr
		}
		species = append(species, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return species, nil
}

func (r *postgresSpeciesRepository) GetScoring(ctx context.Context, tournamentID, speciesID int) (*models.SpeciesScoring, error) {
	sc := &models.SpeciesScoring{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tournament_id, species_id, points_small, points_medium, points_large, points_extra_large, catch_release_bonus
		 FROM species_scoring WHERE tournament_id = $1 AND species_id = $2`,
		tournamentID, speciesID,
	).Scan(&sc.ID, &sc.TournamentID, &sc.SpeciesID,
		&sc.PointsSmall, &sc.PointsMedium, &sc.PointsLarge, &sc.PointsExtraLarge, &sc.CatchReleaseBonus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sc, nil
}

func (r *postgresSpeciesRepository) UpsertScoring(ctx context.Context, sc *models.SpeciesScoring) error {
	query := `
		INSERT INTO species_scoring (
			tournament_id, species_id, points_small, points_medium, points_large, points_extra_large, catch_release_bonus
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tournament_id, species_id) DO UPDATE SET
			points_small = EXCLUDED.points_small,
			points_medium = EXCLUDED.points_medium,
			points_large = EXCLUDED.points_large,
			points_extra_large = EXCLUDED.points_extra_large,
			catch_release_bonus = EXCLUDED.catch_release_bonus
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		sc.TournamentID, sc.SpeciesID,
		sc.PointsSmall, sc.PointsMedium, sc.PointsLarge, sc.PointsExtraLarge, sc.CatchReleaseBonus,
	).Scan(&sc.ID)
}

func (r *postgresSpeciesRepository) ListScoringByTournament(ctx context.Context, tournamentID int) ([]models.SpeciesScoring, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tournament_id, species_id, points_small, points_medium, points_large, points_extra_large, catch_release_bonus
		 FROM species_scoring WHERE tournament_id = $1 ORDER BY species_id`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scorings := make([]models.SpeciesScoring, 0)
	for rows.Next() {
		var sc models.SpeciesScoring
		if scanErr := rows.Scan(&sc.ID, &sc.TournamentID, &sc.SpeciesID,
			&sc.PointsSmall, &sc.PointsMedium, &sc.PointsLarge, &sc.PointsExtraLarge, &sc.CatchReleaseBonus); scanErr != nil {
			return nil, scanErr
		}
		scorings = append(scorings, sc)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return scorings, nil
}
