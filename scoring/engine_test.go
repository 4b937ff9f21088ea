package scoring

import (
	"errors"
	"testing"

	"github.com/Marinovinc/TournamentMaster/models"
)

func floatPtr(v float64) *float64 { return &v }

func sizePtr(s models.SizeCategory) *models.SizeCategory { return &s }

func TestTraditionalPoints(t *testing.T) {
	tournament := &models.Tournament{GameMode: models.ModeTraditional, PointsPerKg: 10}

	tests := []struct {
		name    string
		catch   *models.Catch
		species *models.Species
		want    float64
		wantErr error
	}{
		{
			name:  "weight times points per kg",
			catch: &models.Catch{Weight: floatPtr(5.0)},
			want:  50,
		},
		{
			name:    "species multiplier applied",
			catch:   &models.Catch{Weight: floatPtr(2.5)},
			species: &models.Species{PointsMultiplier: floatPtr(2.0)},
			want:    50,
		},
		{
			name:    "nil multiplier defaults to one",
			catch:   &models.Catch{Weight: floatPtr(3.0)},
			species: &models.Species{},
			want:    30,
		},
		{
			name:  "zero weight scores zero",
			catch: &models.Catch{Weight: floatPtr(0)},
			want:  0,
		},
		{
			name:    "missing weight",
			catch:   &models.Catch{},
			wantErr: ErrWeightRequired,
		},
		{
			name:    "negative weight",
			catch:   &models.Catch{Weight: floatPtr(-1.2)},
			wantErr: ErrNegativeWeight,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputePoints(tournament, tt.catch, tt.species, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputePoints: %v", err)
			}
			if got != tt.want {
				t.Errorf("points = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCatchReleaseDefaultTiers(t *testing.T) {
	tournament := &models.Tournament{GameMode: models.ModeCatchRelease}

	tests := []struct {
		size models.SizeCategory
		want float64
	}{
		{models.SizeSmall, 100},
		{models.SizeMedium, 200},
		{models.SizeLarge, 400},
		{models.SizeExtraLarge, 800},
	}
	for _, tt := range tests {
		t.Run(string(tt.size), func(t *testing.T) {
			got, err := ComputePoints(tournament, &models.Catch{SizeCategory: sizePtr(tt.size)}, nil, nil)
			if err != nil {
				t.Fatalf("ComputePoints: %v", err)
			}
			if got != tt.want {
				t.Errorf("points = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCatchReleaseReleaseBonus(t *testing.T) {
	tournament := &models.Tournament{GameMode: models.ModeCatchRelease}

	// 100 * 1.5 = 150, 400 * 1.5 = 600 — бонус по умолчанию.
	got, err := ComputePoints(tournament, &models.Catch{SizeCategory: sizePtr(models.SizeSmall), WasReleased: true}, nil, nil)
	if err != nil {
		t.Fatalf("ComputePoints: %v", err)
	}
	if got != 150 {
		t.Errorf("released small = %v, want 150", got)
	}

	table := &models.SpeciesScoring{
		PointsSmall:       25,
		PointsMedium:      50,
		PointsLarge:       75,
		PointsExtraLarge:  125,
		CatchReleaseBonus: 1.2,
	}
	got, err = ComputePoints(tournament, &models.Catch{SizeCategory: sizePtr(models.SizeLarge), WasReleased: true}, nil, table)
	if err != nil {
		t.Fatalf("ComputePoints: %v", err)
	}
	// 75 * 1.2 = 90.
	if got != 90 {
		t.Errorf("released large with custom table = %v, want 90", got)
	}

	// Округление до ближайшего целого: 25 * 1.3 = 32.5 -> 33.
	table.CatchReleaseBonus = 1.3
	got, err = ComputePoints(tournament, &models.Catch{SizeCategory: sizePtr(models.SizeSmall), WasReleased: true}, nil, table)
	if err != nil {
		t.Fatalf("ComputePoints: %v", err)
	}
	if got != 33 {
		t.Errorf("rounded bonus = %v, want 33", got)
	}
}

func TestCatchReleaseCustomTableWithoutRelease(t *testing.T) {
	tournament := &models.Tournament{GameMode: models.ModeCatchRelease}
	table := &models.SpeciesScoring{PointsSmall: 10, PointsMedium: 20, PointsLarge: 30, PointsExtraLarge: 40, CatchReleaseBonus: 2}

	got, err := ComputePoints(tournament, &models.Catch{SizeCategory: sizePtr(models.SizeMedium)}, nil, table)
	if err != nil {
		t.Fatalf("ComputePoints: %v", err)
	}
	if got != 20 {
		t.Errorf("unreleased medium = %v, want 20", got)
	}
}

func TestCatchReleaseErrors(t *testing.T) {
	tournament := &models.Tournament{GameMode: models.ModeCatchRelease}

	_, err := ComputePoints(tournament, &models.Catch{}, nil, nil)
	if !errors.Is(err, ErrSizeCategoryRequired) {
		t.Errorf("error = %v, want %v", err, ErrSizeCategoryRequired)
	}

	bogus := models.SizeCategory("GIGANTIC")
	_, err = ComputePoints(tournament, &models.Catch{SizeCategory: &bogus}, nil, nil)
	if !errors.Is(err, ErrUnknownSizeCategory) {
		t.Errorf("error = %v, want %v", err, ErrUnknownSizeCategory)
	}
}

func TestUnknownGameMode(t *testing.T) {
	_, err := ComputePoints(&models.Tournament{GameMode: "BIATHLON"}, &models.Catch{}, nil, nil)
	if !errors.Is(err, ErrUnknownGameMode) {
		t.Errorf("error = %v, want %v", err, ErrUnknownGameMode)
	}
}
