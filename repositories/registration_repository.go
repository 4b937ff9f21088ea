package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationConflict = errors.New("user is already registered for this tournament")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	GetByUserAndTournament(ctx context.Context, tournamentID, userID int) (*models.Registration, error)
	ListConfirmed(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Registration, error)
	CountConfirmed(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error
}

const registrationColumns = `id, tournament_id, user_id, team_name, status, created_at`

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) scanRegistration(rowScanner interface{ Scan(...interface{}) error }) (*models.Registration, error) {
	reg := &models.Registration{}
	err := rowScanner.Scan(&reg.ID, &reg.TournamentID, &reg.UserID, &reg.TeamName, &reg.Status, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	executor := r.getExecutor(nil)
	query := `
		INSERT INTO registrations (tournament_id, user_id, team_name, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		reg.TournamentID, reg.UserID, reg.TeamName, reg.Status,
	).Scan(&reg.ID, &reg.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrRegistrationConflict
	}
	return err
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return r.scanRegistration(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresRegistrationRepository) GetByUserAndTournament(ctx context.Context, tournamentID, userID int) (*models.Registration, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + registrationColumns + `
		FROM registrations WHERE tournament_id = $1 AND user_id = $2`
	return r.scanRegistration(executor.QueryRowContext(ctx, query, tournamentID, userID))
}

func (r *postgresRegistrationRepository) ListConfirmed(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Registration, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + registrationColumns + `
		FROM registrations WHERE tournament_id = $1 AND status = $2 ORDER BY id`

	rows, err := executor.QueryContext(ctx, query, tournamentID, models.RegistrationConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg, scanErr := r.scanRegistration(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) CountConfirmed(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE tournament_id = $1 AND status = $2`,
		tournamentID, models.RegistrationConfirmed,
	).Scan(&count)
	return count, err
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx,
		`UPDATE registrations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
