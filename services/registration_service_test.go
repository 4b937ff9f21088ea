package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Marinovinc/TournamentMaster/models"
)

func newRegistrationFixture() (RegistrationService, *fakeRegistrationRepo, *fakeTournamentRepo, *models.Tournament) {
	regRepo := newFakeRegistrationRepo()
	tournamentRepo := newFakeTournamentRepo()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tournament := tournamentRepo.add(&models.Tournament{
		Name:               "Кубок Ладоги",
		OrganizerID:        1,
		GameMode:           models.ModeTraditional,
		Status:             models.StatusRegistrationOpen,
		RegistrationOpens:  now.Add(-time.Hour),
		RegistrationCloses: now.Add(24 * time.Hour),
		StartDate:          now.Add(48 * time.Hour),
		EndDate:            now.Add(72 * time.Hour),
	})
	return NewRegistrationService(regRepo, tournamentRepo), regRepo, tournamentRepo, tournament
}

func TestRegisterCreatesPendingRequest(t *testing.T) {
	svc, _, _, tournament := newRegistrationFixture()

	team := "Щука"
	reg, err := svc.Register(context.Background(), tournament.ID, 7, &team)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Status != models.RegistrationPending {
		t.Errorf("Status = %s, want PENDING", reg.Status)
	}
	if reg.TeamName == nil || *reg.TeamName != "Щука" {
		t.Errorf("TeamName = %v", reg.TeamName)
	}
}

func TestRegisterOnlyWhenRegistrationOpen(t *testing.T) {
	svc, _, _, tournament := newRegistrationFixture()
	ctx := context.Background()

	for _, status := range []models.TournamentStatus{
		models.StatusDraft, models.StatusPublished, models.StatusRegistrationClosed,
		models.StatusOngoing, models.StatusCompleted, models.StatusCancelled,
	} {
		tournament.Status = status
		if _, err := svc.Register(ctx, tournament.ID, 7, nil); !errors.Is(err, ErrRegistrationNotOpen) {
			t.Errorf("%s: error = %v, want %v", status, err, ErrRegistrationNotOpen)
		}
	}
}

func TestRegisterTwice(t *testing.T) {
	svc, _, _, tournament := newRegistrationFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, tournament.ID, 7, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, tournament.ID, 7, nil); !errors.Is(err, ErrRegistrationConflict) {
		t.Errorf("error = %v, want %v", err, ErrRegistrationConflict)
	}
}

func TestConfirmByOrganizer(t *testing.T) {
	svc, regRepo, _, tournament := newRegistrationFixture()
	ctx := context.Background()

	reg, err := svc.Register(ctx, tournament.ID, 7, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Чужой организатор не может подтверждать.
	if err := svc.Confirm(ctx, 99, models.RoleOrganizer, reg.ID); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("foreign organizer: error = %v, want %v", err, ErrForbiddenOperation)
	}

	if err := svc.Confirm(ctx, 1, models.RoleOrganizer, reg.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	stored, _ := regRepo.GetByID(ctx, reg.ID)
	if stored.Status != models.RegistrationConfirmed {
		t.Errorf("Status = %s, want CONFIRMED", stored.Status)
	}
}

func TestRejectRegistration(t *testing.T) {
	svc, regRepo, _, tournament := newRegistrationFixture()
	ctx := context.Background()

	reg, err := svc.Register(ctx, tournament.ID, 7, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Reject(ctx, 1, models.RoleOrganizer, reg.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	stored, _ := regRepo.GetByID(ctx, reg.ID)
	if stored.Status != models.RegistrationRejected {
		t.Errorf("Status = %s, want REJECTED", stored.Status)
	}
}

func TestConfirmUnknownRegistration(t *testing.T) {
	svc, _, _, _ := newRegistrationFixture()

	if err := svc.Confirm(context.Background(), 1, models.RoleOrganizer, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want %v", err, ErrNotFound)
	}
}

func TestWithdraw(t *testing.T) {
	svc, regRepo, _, tournament := newRegistrationFixture()
	ctx := context.Background()

	reg, err := svc.Register(ctx, tournament.ID, 7, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Withdraw(ctx, 7, tournament.ID); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	stored, _ := regRepo.GetByID(ctx, reg.ID)
	if stored.Status != models.RegistrationWithdrawn {
		t.Errorf("Status = %s, want WITHDRAWN", stored.Status)
	}
}

func TestWithdrawBlockedAfterStart(t *testing.T) {
	svc, _, _, tournament := newRegistrationFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, tournament.ID, 7, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for _, status := range []models.TournamentStatus{
		models.StatusOngoing, models.StatusCompleted, models.StatusCancelled,
	} {
		tournament.Status = status
		if err := svc.Withdraw(ctx, 7, tournament.ID); !errors.Is(err, ErrRegistrationNotOpen) {
			t.Errorf("%s: error = %v, want %v", status, err, ErrRegistrationNotOpen)
		}
	}
}

func TestWithdrawWithoutRegistration(t *testing.T) {
	svc, _, _, tournament := newRegistrationFixture()

	if err := svc.Withdraw(context.Background(), 42, tournament.ID); !errors.Is(err, ErrUserNotRegistered) {
		t.Errorf("error = %v, want %v", err, ErrUserNotRegistered)
	}
}
