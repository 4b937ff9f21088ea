package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// sweepCounter реализует TournamentService для наблюдения за запусками
// планировщика; все методы кроме AutoUpdate не используются.
type sweepCounter struct {
	TournamentService
	ran chan struct{}
}

func (s *sweepCounter) AutoUpdateTournamentStatusesByDates(ctx context.Context) error {
	select {
	case s.ran <- struct{}{}:
	default:
	}
	return nil
}

func TestStatusSchedulerRunsSweepOnStart(t *testing.T) {
	counter := &sweepCounter{ran: make(chan struct{}, 1)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sched, err := NewStatusScheduler(counter, time.Minute, clockwork.NewRealClock(), logger)
	if err != nil {
		t.Fatalf("NewStatusScheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	select {
	case <-counter.ran:
	case <-time.After(3 * time.Second):
		t.Fatal("sweep did not run after scheduler start")
	}
}

func TestStatusSchedulerDefaultsInterval(t *testing.T) {
	counter := &sweepCounter{ran: make(chan struct{}, 1)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Нулевой и отрицательный интервалы не валят конструктор.
	for _, interval := range []time.Duration{0, -time.Second} {
		sched, err := NewStatusScheduler(counter, interval, clockwork.NewFakeClock(), logger)
		if err != nil {
			t.Fatalf("NewStatusScheduler(%v): %v", interval, err)
		}
		if err := sched.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	}
}

func TestStatusSchedulerStopIsClean(t *testing.T) {
	counter := &sweepCounter{ran: make(chan struct{}, 1)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sched, err := NewStatusScheduler(counter, time.Minute, clockwork.NewRealClock(), logger)
	if err != nil {
		t.Fatalf("NewStatusScheduler: %v", err)
	}
	sched.Start()
	if err := sched.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
