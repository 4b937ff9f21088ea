package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// DefaultSweepInterval — периодичность автоматических переходов статусов.
const DefaultSweepInterval = 5 * time.Minute

// StatusScheduler периодически запускает AutoUpdateTournamentStatusesByDates.
// Джоба не реентерабельна: если проход ещё идёт, следующий тик
// переносится, а не запускается параллельно.
type StatusScheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

func NewStatusScheduler(service TournamentService, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) (*StatusScheduler, error) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	scheduler, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()

			if err := service.AutoUpdateTournamentStatusesByDates(ctx); err != nil {
				logger.Error("tournament status sweep failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule status sweep: %w", err)
	}

	return &StatusScheduler{scheduler: scheduler, logger: logger}, nil
}

func (s *StatusScheduler) Start() {
	s.logger.Info("starting tournament status scheduler")
	s.scheduler.Start()
}

func (s *StatusScheduler) Stop() error {
	s.logger.Info("stopping tournament status scheduler")
	return s.scheduler.Shutdown()
}
