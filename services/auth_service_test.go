package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Marinovinc/TournamentMaster/models"
)

func newAuthFixture() (AuthService, *fakeUserRepo) {
	userRepo := newFakeUserRepo()
	return NewAuthService(userRepo, "test-secret", time.Hour), userRepo
}

func validRegisterInput() RegisterUserInput {
	return RegisterUserInput{
		FirstName: "Иван",
		LastName:  "Петров",
		Email:     "ivan@example.com",
		Password:  "correct-horse",
	}
}

func TestRegisterUser(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != models.RolePlayer {
		t.Errorf("Role = %s, want player by default", user.Role)
	}
	if user.PasswordHash == "correct-horse" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterUserNormalizesEmail(t *testing.T) {
	svc, userRepo := newAuthFixture()

	input := validRegisterInput()
	input.Email = "  Ivan@Example.COM "
	user, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ivan@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", user.Email)
	}
	if _, err := userRepo.GetByEmail(context.Background(), "ivan@example.com"); err != nil {
		t.Errorf("user not findable by normalized email: %v", err)
	}
}

func TestRegisterUserValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterUserInput)
	}{
		{"empty email", func(in *RegisterUserInput) { in.Email = "" }},
		{"email without at sign", func(in *RegisterUserInput) { in.Email = "ivan.example.com" }},
		{"short password", func(in *RegisterUserInput) { in.Password = "1234567" }},
		{"empty first name", func(in *RegisterUserInput) { in.FirstName = "" }},
		{"empty last name", func(in *RegisterUserInput) { in.LastName = "" }},
		{"admin role rejected", func(in *RegisterUserInput) { in.Role = models.RoleAdmin }},
		{"garbage role", func(in *RegisterUserInput) { in.Role = "root" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegisterInput()
			tt.mutate(&input)
			if _, err := svc.Register(ctx, input); !errors.Is(err, ErrValidationFailed) {
				t.Errorf("error = %v, want %v", err, ErrValidationFailed)
			}
		})
	}
}

func TestRegisterUserExplicitRoles(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	for i, role := range []models.UserRole{models.RoleOrganizer, models.RoleJudge, models.RolePlayer} {
		input := validRegisterInput()
		input.Email = string(role) + "@example.com"
		input.Role = role
		user, err := svc.Register(ctx, input)
		if err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
		if user.Role != role {
			t.Errorf("Role = %s, want %s", user.Role, role)
		}
	}
}

func TestRegisterUserEmailConflict(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, validRegisterInput()); !errors.Is(err, ErrUserEmailConflict) {
		t.Errorf("error = %v, want %v", err, ErrUserEmailConflict)
	}
}

func TestLoginAndParseToken(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	input := validRegisterInput()
	input.Role = models.RoleJudge
	registered, err := svc.Register(ctx, input)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, user, err := svc.Login(ctx, input.Email, input.Password)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("logged in user ID = %d, want %d", user.ID, registered.ID)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Errorf("claims.UserID = %d, want %d", claims.UserID, registered.ID)
	}
	if claims.Role != models.RoleJudge {
		t.Errorf("claims.Role = %s, want judge", claims.Role)
	}
	if claims.ExpiresAt == nil {
		t.Error("token must carry an expiry")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "ivan@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: error = %v, want %v", err, ErrInvalidCredentials)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: error = %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	svc, _ := newAuthFixture()
	other := NewAuthService(newFakeUserRepo(), "different-secret", time.Hour)
	ctx := context.Background()

	if _, err := other.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := other.Login(ctx, "ivan@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.ParseToken(token); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}

func TestParseTokenExpired(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, "test-secret", -time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Login(ctx, "ivan@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.ParseToken(token); err == nil {
		t.Error("expired token must be rejected")
	}
}
