package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Marinovinc/TournamentMaster/models"
)

var ErrLeaderboardEntryNotFound = errors.New("leaderboard entry not found")

// LeaderboardAggregates — суммы по всем строкам лидерборда турнира.
type LeaderboardAggregates struct {
	TotalWeight  float64
	TotalPoints  float64
	BiggestCatch *float64
}

type LeaderboardRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, entry *models.LeaderboardEntry) error
	GetByTournamentAndUser(ctx context.Context, exec SQLExecutor, tournamentID, userID int) (*models.LeaderboardEntry, error)
	// ListByTournament возвращает строки по возрастанию ранга; limit <= 0
	// означает без ограничения.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID, limit, offset int) ([]*models.LeaderboardEntry, error)
	// ListForRanking загружает все строки турнира без сортировки по рангу;
	// порядок для пересчёта определяет сервис.
	ListForRanking(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.LeaderboardEntry, error)
	UpdateRanks(ctx context.Context, exec SQLExecutor, entries []*models.LeaderboardEntry) error
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	Aggregate(ctx context.Context, exec SQLExecutor, tournamentID int) (*LeaderboardAggregates, error)
}

const leaderboardColumns = `
	id, tournament_id, user_id, participant_name, team_name, rank,
	total_points, total_weight, catch_count, biggest_catch, updated_at`

type postgresLeaderboardRepository struct {
	db *sql.DB
}

func NewPostgresLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

func (r *postgresLeaderboardRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeaderboardRepository) scanEntry(rowScanner interface{ Scan(...interface{}) error }) (*models.LeaderboardEntry, error) {
	e := &models.LeaderboardEntry{}
	err := rowScanner.Scan(
		&e.ID, &e.TournamentID, &e.UserID, &e.ParticipantName, &e.TeamName, &e.Rank,
		&e.TotalPoints, &e.TotalWeight, &e.CatchCount, &e.BiggestCatch, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeaderboardEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresLeaderboardRepository) Upsert(ctx context.Context, exec SQLExecutor, e *models.LeaderboardEntry) error {
	executor := r.getExecutor(exec)
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}
	query := `
		INSERT INTO leaderboard_entries (
			tournament_id, user_id, participant_name, team_name, rank,
			total_points, total_weight, catch_count, biggest_catch, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tournament_id, user_id) DO UPDATE SET
			participant_name = EXCLUDED.participant_name,
			team_name = EXCLUDED.team_name,
			total_points = EXCLUDED.total_points,
			total_weight = EXCLUDED.total_weight,
			catch_count = EXCLUDED.catch_count,
			biggest_catch = EXCLUDED.biggest_catch,
			updated_at = EXCLUDED.updated_at
		RETURNING id, rank`

	return executor.QueryRowContext(ctx, query,
		e.TournamentID, e.UserID, e.ParticipantName, e.TeamName, e.Rank,
		e.TotalPoints, e.TotalWeight, e.CatchCount, e.BiggestCatch, e.UpdatedAt,
	).Scan(&e.ID, &e.Rank)
}

func (r *postgresLeaderboardRepository) GetByTournamentAndUser(ctx context.Context, exec SQLExecutor, tournamentID, userID int) (*models.LeaderboardEntry, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + leaderboardColumns + `
		FROM leaderboard_entries WHERE tournament_id = $1 AND user_id = $2`
	return r.scanEntry(executor.QueryRowContext(ctx, query, tournamentID, userID))
}

func (r *postgresLeaderboardRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID, limit, offset int) ([]*models.LeaderboardEntry, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + leaderboardColumns + `
		FROM leaderboard_entries WHERE tournament_id = $1 ORDER BY rank ASC`
	args := []interface{}{tournamentID}
	argID := 2
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, limit)
		argID++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, offset)
	}
	return r.queryEntries(ctx, executor, query, args...)
}

func (r *postgresLeaderboardRepository) ListForRanking(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.LeaderboardEntry, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + leaderboardColumns + `
		FROM leaderboard_entries WHERE tournament_id = $1 ORDER BY id`
	return r.queryEntries(ctx, executor, query, tournamentID)
}

func (r *postgresLeaderboardRepository) queryEntries(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.LeaderboardEntry, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.LeaderboardEntry, 0)
	for rows.Next() {
		e, scanErr := r.scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateRanks переписывает ранги всех переданных строк. Полная перезапись,
// не инкрементальная: N ограничено числом участников турнира.
func (r *postgresLeaderboardRepository) UpdateRanks(ctx context.Context, exec SQLExecutor, entries []*models.LeaderboardEntry) error {
	executor := r.getExecutor(exec)
	for _, e := range entries {
		result, err := executor.ExecContext(ctx,
			`UPDATE leaderboard_entries SET rank = $1, updated_at = $2 WHERE id = $3`,
			e.Rank, time.Now(), e.ID)
		if err != nil {
			return fmt.Errorf("failed to update rank for entry %d: %w", e.ID, err)
		}
		if err := checkAffectedRows(result, ErrLeaderboardEntryNotFound); err != nil {
			return fmt.Errorf("entry %d: %w", e.ID, err)
		}
	}
	return nil
}

func (r *postgresLeaderboardRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leaderboard_entries WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	return count, err
}

func (r *postgresLeaderboardRepository) Aggregate(ctx context.Context, exec SQLExecutor, tournamentID int) (*LeaderboardAggregates, error) {
	executor := r.getExecutor(exec)
	agg := &LeaderboardAggregates{}
	err := executor.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_weight), 0), COALESCE(SUM(total_points), 0), MAX(biggest_catch)
		 FROM leaderboard_entries WHERE tournament_id = $1`, tournamentID,
	).Scan(&agg.TotalWeight, &agg.TotalPoints, &agg.BiggestCatch)
	if err != nil {
		return nil, err
	}
	return agg, nil
}
