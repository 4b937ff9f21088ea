package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/lib/pq"
)

var (
	ErrCatchNotFound          = errors.New("catch not found")
	ErrCatchTournamentInvalid = errors.New("catch tournament conflict or invalid")
	ErrCatchUserInvalid       = errors.New("catch user conflict or invalid")
	ErrCatchSpeciesInvalid    = errors.New("catch species conflict or invalid")
)

type ListCatchesFilter struct {
	TournamentID *int
	UserID       *int
	Status       *models.CatchStatus
	SpeciesID    *int
	DateFrom     *time.Time
	DateTo       *time.Time
	Limit        int
	Offset       int
}

type CatchRepository interface {
	Create(ctx context.Context, c *models.Catch, validation interface{}) error
	GetByID(ctx context.Context, id int) (*models.Catch, error)
	// GetByIDForUpdate читает улов с блокировкой строки; использовать только
	// внутри транзакции одобрения/отклонения.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Catch, error)
	List(ctx context.Context, filter ListCatchesFilter) ([]*models.Catch, int, error)
	ListApprovedByUser(ctx context.Context, exec SQLExecutor, tournamentID, userID int) ([]*models.Catch, error)
	UpdateReview(ctx context.Context, exec SQLExecutor, c *models.Catch) error
	CountByStatus(ctx context.Context, exec SQLExecutor, tournamentID int, status models.CatchStatus) (int, error)
	CountByUserAndDay(ctx context.Context, tournamentID, userID int, day time.Time) (int, error)
}

const catchColumns = `
	id, tournament_id, user_id, species_id, weight, length, size_category, was_released,
	latitude, longitude, gps_accuracy, caught_at, photo_key, video_key, notes,
	status, points, is_inside_zone, reviewer_id, review_notes, reviewed_at, submitted_at`

type postgresCatchRepository struct {
	db *sql.DB
}

func NewPostgresCatchRepository(db *sql.DB) CatchRepository {
	return &postgresCatchRepository{db: db}
}

func (r *postgresCatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCatchRepository) scanCatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Catch, error) {
	c := &models.Catch{}
	err := rowScanner.Scan(
		&c.ID, &c.TournamentID, &c.UserID, &c.SpeciesID, &c.Weight, &c.Length, &c.SizeCategory, &c.WasReleased,
		&c.Latitude, &c.Longitude, &c.GPSAccuracy, &c.CaughtAt, &c.PhotoKey, &c.VideoKey, &c.Notes,
		&c.Status, &c.Points, &c.IsInsideZone, &c.ReviewerID, &c.ReviewNotes, &c.ReviewedAt, &c.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCatchNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create сохраняет улов вместе с сериализованным вердиктом гео-валидации.
// Вердикт — структурированный тип в памяти; JSON-кодирование изолировано
// здесь, на границе хранилища.
func (r *postgresCatchRepository) Create(ctx context.Context, c *models.Catch, validation interface{}) error {
	executor := r.getExecutor(nil)

	validationJSON, err := json.Marshal(validation)
	if err != nil {
		return fmt.Errorf("failed to encode validation verdict: %w", err)
	}

	query := `
		INSERT INTO catches (
			tournament_id, user_id, species_id, weight, length, size_category, was_released,
			latitude, longitude, gps_accuracy, caught_at, photo_key, video_key, notes,
			status, is_inside_zone, validation_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, submitted_at`

	err = executor.QueryRowContext(ctx, query,
		c.TournamentID, c.UserID, c.SpeciesID, c.Weight, c.Length, c.SizeCategory, c.WasReleased,
		c.Latitude, c.Longitude, c.GPSAccuracy, c.CaughtAt, c.PhotoKey, c.VideoKey, c.Notes,
		c.Status, c.IsInsideZone, validationJSON,
	).Scan(&c.ID, &c.SubmittedAt)

	return r.handleCatchError(err)
}

func (r *postgresCatchRepository) GetByID(ctx context.Context, id int) (*models.Catch, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + catchColumns + ` FROM catches WHERE id = $1`
	return r.scanCatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresCatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Catch, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + catchColumns + ` FROM catches WHERE id = $1 FOR UPDATE`
	return r.scanCatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresCatchRepository) List(ctx context.Context, filter ListCatchesFilter) ([]*models.Catch, int, error) {
	executor := r.getExecutor(nil)

	where := " WHERE 1=1"
	args := []interface{}{}
	argID := 1

	addArg := func(cond string, value interface{}) {
		where += fmt.Sprintf(" AND "+cond, argID)
		args = append(args, value)
		argID++
	}

	if filter.TournamentID != nil {
		addArg("tournament_id = $%d", *filter.TournamentID)
	}
	if filter.UserID != nil {
		addArg("user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		addArg("status = $%d", *filter.Status)
	}
	if filter.SpeciesID != nil {
		addArg("species_id = $%d", *filter.SpeciesID)
	}
	if filter.DateFrom != nil {
		addArg("caught_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addArg("caught_at <= $%d", *filter.DateTo)
	}

	var total int
	if err := executor.QueryRowContext(ctx, "SELECT COUNT(*) FROM catches"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + catchColumns + ` FROM catches` + where + " ORDER BY caught_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	catches := make([]*models.Catch, 0)
	for rows.Next() {
		c, scanErr := r.scanCatch(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		catches = append(catches, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return catches, total, nil
}

func (r *postgresCatchRepository) ListApprovedByUser(ctx context.Context, exec SQLExecutor, tournamentID, userID int) ([]*models.Catch, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + catchColumns + `
		FROM catches
		WHERE tournament_id = $1 AND user_id = $2 AND status = $3
		ORDER BY caught_at`

	rows, err := executor.QueryContext(ctx, query, tournamentID, userID, models.CatchApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catches := make([]*models.Catch, 0)
	for rows.Next() {
		c, scanErr := r.scanCatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		catches = append(catches, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return catches, nil
}

func (r *postgresCatchRepository) UpdateReview(ctx context.Context, exec SQLExecutor, c *models.Catch) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE catches SET
			status = $1, points = $2, reviewer_id = $3, review_notes = $4, reviewed_at = $5
		WHERE id = $6`
	result, err := executor.ExecContext(ctx, query,
		c.Status, c.Points, c.ReviewerID, c.ReviewNotes, c.ReviewedAt, c.ID)
	if err != nil {
		return r.handleCatchError(err)
	}
	return checkAffectedRows(result, ErrCatchNotFound)
}

func (r *postgresCatchRepository) CountByStatus(ctx context.Context, exec SQLExecutor, tournamentID int, status models.CatchStatus) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM catches WHERE tournament_id = $1 AND status = $2`,
		tournamentID, status,
	).Scan(&count)
	return count, err
}

// CountByUserAndDay считает уловы пользователя за календарные сутки caught_at
// для проверки дневного лимита.
func (r *postgresCatchRepository) CountByUserAndDay(ctx context.Context, tournamentID, userID int, day time.Time) (int, error) {
	executor := r.getExecutor(nil)
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM catches
		 WHERE tournament_id = $1 AND user_id = $2 AND caught_at >= $3 AND caught_at < $4`,
		tournamentID, userID, dayStart, dayEnd,
	).Scan(&count)
	return count, err
}

func (r *postgresCatchRepository) handleCatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "catches_tournament_id_fkey":
			return ErrCatchTournamentInvalid
		case "catches_user_id_fkey", "catches_reviewer_id_fkey":
			return ErrCatchUserInvalid
		case "catches_species_id_fkey":
			return ErrCatchSpeciesInvalid
		}
	}
	return err
}
