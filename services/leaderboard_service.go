package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/repositories"
	"golang.org/x/sync/errgroup"
)

// LeaderboardPage — страница лидерборда с метаданными пагинации.
type LeaderboardPage struct {
	Entries    []*models.LeaderboardEntry `json:"entries"`
	Page       int                        `json:"page"`
	Limit      int                        `json:"limit"`
	Total      int                        `json:"total"`
	TotalPages int                        `json:"total_pages"`
}

// UserPosition — строка пользователя плюс общее число участников.
type UserPosition struct {
	Entry             *models.LeaderboardEntry `json:"entry"`
	TotalParticipants int                      `json:"total_participants"`
}

type LeaderboardService interface {
	// RecomputeEntry пересобирает строку пользователя из его одобренных
	// уловов и пересчитывает ранги всего турнира. Вызывающий обязан
	// держать блокировку турнира и передать транзакцию, в которой
	// обновлялся улов. Возвращает свежий полный рейтинг.
	RecomputeEntry(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID int) ([]*models.LeaderboardEntry, error)
	// RecalculateRanks переписывает ранги по контракту тай-брейка:
	// (totalPoints desc, biggestCatch desc, catchCount desc, id asc).
	RecalculateRanks(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.LeaderboardEntry, error)
	// InitializeForTournament создаёт нулевые строки для всех CONFIRMED
	// регистраций, которых ещё нет в лидерборде. Идемпотентна.
	InitializeForTournament(ctx context.Context, tournamentID int) error
	GetLeaderboard(ctx context.Context, tournamentID, page, limit int) (*LeaderboardPage, error)
	GetTopN(ctx context.Context, tournamentID, n int) ([]*models.LeaderboardEntry, error)
	GetUserPosition(ctx context.Context, tournamentID, userID int) (*UserPosition, error)
	GetTournamentStats(ctx context.Context, tournamentID int) (*models.TournamentStats, error)
}

type leaderboardService struct {
	entryRepo        repositories.LeaderboardRepository
	catchRepo        repositories.CatchRepository
	userRepo         repositories.UserRepository
	registrationRepo repositories.RegistrationRepository
	locks            *TournamentLocks
}

func NewLeaderboardService(
	entryRepo repositories.LeaderboardRepository,
	catchRepo repositories.CatchRepository,
	userRepo repositories.UserRepository,
	registrationRepo repositories.RegistrationRepository,
	locks *TournamentLocks,
) LeaderboardService {
	return &leaderboardService{
		entryRepo:        entryRepo,
		catchRepo:        catchRepo,
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		locks:            locks,
	}
}

func (s *leaderboardService) RecomputeEntry(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID int) ([]*models.LeaderboardEntry, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	var teamName *string
	reg, err := s.registrationRepo.GetByUserAndTournament(ctx, tournamentID, userID)
	if err != nil && !errors.Is(err, repositories.ErrRegistrationNotFound) {
		return nil, fmt.Errorf("failed to load registration for user %d in tournament %d: %w", userID, tournamentID, err)
	}
	if reg != nil {
		teamName = reg.TeamName
	}

	catches, err := s.catchRepo.ListApprovedByUser(ctx, exec, tournamentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved catches for user %d in tournament %d: %w", userID, tournamentID, err)
	}

	entry := &models.LeaderboardEntry{
		TournamentID:    tournamentID,
		UserID:          userID,
		ParticipantName: user.FullName(),
		TeamName:        teamName,
		CatchCount:      len(catches),
	}
	for _, c := range catches {
		if c.Points != nil {
			entry.TotalPoints += *c.Points
		}
		if c.Weight != nil {
			entry.TotalWeight += *c.Weight
			if entry.BiggestCatch == nil || *c.Weight > *entry.BiggestCatch {
				w := *c.Weight
				entry.BiggestCatch = &w
			}
		}
	}

	if err := s.entryRepo.Upsert(ctx, exec, entry); err != nil {
		return nil, fmt.Errorf("failed to upsert leaderboard entry for user %d in tournament %d: %w", userID, tournamentID, err)
	}

	return s.RecalculateRanks(ctx, exec, tournamentID)
}

func (s *leaderboardService) RecalculateRanks(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.LeaderboardEntry, error) {
	entries, err := s.entryRepo.ListForRanking(ctx, exec, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard entries for tournament %d: %w", tournamentID, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return rankLess(entries[i], entries[j])
	})
	for i, e := range entries {
		e.Rank = i + 1
	}

	if err := s.entryRepo.UpdateRanks(ctx, exec, entries); err != nil {
		return nil, fmt.Errorf("failed to write ranks for tournament %d: %w", tournamentID, err)
	}
	return entries, nil
}

// rankLess — контракт тай-брейка лидерборда. Последний ключ (id) даёт
// строгий полный порядок: два участника никогда не делят ранг.
func rankLess(a, b *models.LeaderboardEntry) bool {
	if a.TotalPoints != b.TotalPoints {
		return a.TotalPoints > b.TotalPoints
	}
	ab, bb := biggestOrZero(a), biggestOrZero(b)
	if ab != bb {
		return ab > bb
	}
	if a.CatchCount != b.CatchCount {
		return a.CatchCount > b.CatchCount
	}
	return a.ID < b.ID
}

// Отсутствие зафиксированного веса (режим C&R) ранжируется ниже любого веса.
func biggestOrZero(e *models.LeaderboardEntry) float64 {
	if e.BiggestCatch == nil {
		return -1
	}
	return *e.BiggestCatch
}

func (s *leaderboardService) InitializeForTournament(ctx context.Context, tournamentID int) error {
	lock := s.locks.ForTournament(tournamentID)
	lock.Lock()
	defer lock.Unlock()

	regs, err := s.registrationRepo.ListConfirmed(ctx, nil, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to list confirmed registrations for tournament %d: %w", tournamentID, err)
	}

	for _, reg := range regs {
		existing, err := s.entryRepo.GetByTournamentAndUser(ctx, nil, tournamentID, reg.UserID)
		if err != nil && !errors.Is(err, repositories.ErrLeaderboardEntryNotFound) {
			return fmt.Errorf("failed to check leaderboard entry for user %d: %w", reg.UserID, err)
		}
		if existing != nil {
			continue
		}

		user, err := s.userRepo.GetByID(ctx, reg.UserID)
		if err != nil {
			return fmt.Errorf("failed to load user %d for leaderboard init: %w", reg.UserID, err)
		}
		entry := &models.LeaderboardEntry{
			TournamentID:    tournamentID,
			UserID:          reg.UserID,
			ParticipantName: user.FullName(),
			TeamName:        reg.TeamName,
		}
		if err := s.entryRepo.Upsert(ctx, nil, entry); err != nil {
			return fmt.Errorf("failed to create zero entry for user %d: %w", reg.UserID, err)
		}
	}

	_, err = s.RecalculateRanks(ctx, nil, tournamentID)
	return err
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, tournamentID, page, limit int) (*LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	entries, err := s.entryRepo.ListByTournament(ctx, nil, tournamentID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard for tournament %d: %w", tournamentID, err)
	}
	total, err := s.entryRepo.CountByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count leaderboard entries for tournament %d: %w", tournamentID, err)
	}

	totalPages := (total + limit - 1) / limit
	return &LeaderboardPage{
		Entries:    entries,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *leaderboardService) GetTopN(ctx context.Context, tournamentID, n int) ([]*models.LeaderboardEntry, error) {
	if n < 1 {
		n = 3
	}
	return s.entryRepo.ListByTournament(ctx, nil, tournamentID, n, 0)
}

func (s *leaderboardService) GetUserPosition(ctx context.Context, tournamentID, userID int) (*UserPosition, error) {
	entry, err := s.entryRepo.GetByTournamentAndUser(ctx, nil, tournamentID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeaderboardEntryNotFound) {
			return nil, fmt.Errorf("%w: tournament %d, user %d", ErrEntryNotFound, tournamentID, userID)
		}
		return nil, err
	}
	total, err := s.entryRepo.CountByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	return &UserPosition{Entry: entry, TotalParticipants: total}, nil
}

// GetTournamentStats собирает сводку по турниру; независимые запросы
// выполняются параллельно.
func (s *leaderboardService) GetTournamentStats(ctx context.Context, tournamentID int) (*models.TournamentStats, error) {
	stats := &models.TournamentStats{}
	var pending, approved, rejected int
	var agg *repositories.LeaderboardAggregates
	var top []*models.LeaderboardEntry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalParticipants, err = s.entryRepo.CountByTournament(gctx, nil, tournamentID)
		return err
	})
	g.Go(func() (err error) {
		pending, err = s.catchRepo.CountByStatus(gctx, nil, tournamentID, models.CatchPending)
		return err
	})
	g.Go(func() (err error) {
		approved, err = s.catchRepo.CountByStatus(gctx, nil, tournamentID, models.CatchApproved)
		return err
	})
	g.Go(func() (err error) {
		rejected, err = s.catchRepo.CountByStatus(gctx, nil, tournamentID, models.CatchRejected)
		return err
	})
	g.Go(func() (err error) {
		agg, err = s.entryRepo.Aggregate(gctx, nil, tournamentID)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.entryRepo.ListByTournament(gctx, nil, tournamentID, 1, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to collect stats for tournament %d: %w", tournamentID, err)
	}

	stats.PendingCatches = pending
	stats.ApprovedCatches = approved
	stats.RejectedCatches = rejected
	stats.TotalCatches = pending + approved + rejected
	stats.TotalWeight = agg.TotalWeight
	stats.TotalPoints = agg.TotalPoints
	stats.BiggestCatch = agg.BiggestCatch
	if len(top) > 0 && top[0].Rank == 1 {
		stats.Leader = &models.Leader{
			UserID:  top[0].UserID,
			Name:    top[0].ParticipantName,
			Points:  top[0].TotalPoints,
			Catches: top[0].CatchCount,
		}
	}
	return stats, nil
}
