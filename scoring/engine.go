package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/Marinovinc/TournamentMaster/models"
)

// Очки по умолчанию для режима catch-and-release, когда у вида нет
// собственной таблицы. Лестница удваивается от категории к категории.
const (
	DefaultPointsSmall      = 100
	DefaultPointsMedium     = 200
	DefaultPointsLarge      = 400
	DefaultPointsExtraLarge = 800

	// DefaultCatchReleaseBonus — множитель за подтверждённый выпуск рыбы.
	DefaultCatchReleaseBonus = 1.5
)

var (
	ErrWeightRequired       = errors.New("weight is required for traditional scoring")
	ErrNegativeWeight       = errors.New("weight must not be negative")
	ErrSizeCategoryRequired = errors.New("size category is required for catch-and-release scoring")
	ErrUnknownSizeCategory  = errors.New("unknown size category")
	ErrUnknownGameMode      = errors.New("unknown tournament game mode")
)

// ComputePoints вычисляет очки одного улова. Чистая детерминированная
// функция: одинаковые входы всегда дают одинаковый результат. Вызывается
// ровно один раз, в момент одобрения улова судьёй.
func ComputePoints(t *models.Tournament, c *models.Catch, species *models.Species, table *models.SpeciesScoring) (float64, error) {
	switch t.GameMode {
	case models.ModeTraditional:
		return traditionalPoints(t, c, species)
	case models.ModeCatchRelease:
		return catchReleasePoints(c, table)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownGameMode, t.GameMode)
	}
}

// traditionalPoints: вес * очки за килограмм * множитель вида.
// Множитель по умолчанию равен 1, если у вида он не настроен.
func traditionalPoints(t *models.Tournament, c *models.Catch, species *models.Species) (float64, error) {
	if c.Weight == nil {
		return 0, ErrWeightRequired
	}
	if *c.Weight < 0 {
		return 0, fmt.Errorf("%w: %.3f", ErrNegativeWeight, *c.Weight)
	}

	multiplier := 1.0
	if species != nil && species.PointsMultiplier != nil {
		multiplier = *species.PointsMultiplier
	}
	return *c.Weight * t.PointsPerKg * multiplier, nil
}

// catchReleasePoints: базовые очки берутся из таблицы вида по категории
// размера, при отсутствии таблицы — значения по умолчанию. Выпуск рыбы
// умножает очки на бонус с округлением до ближайшего целого; без выпуска
// базовые очки возвращаются как есть.
func catchReleasePoints(c *models.Catch, table *models.SpeciesScoring) (float64, error) {
	if c.SizeCategory == nil {
		return 0, ErrSizeCategoryRequired
	}

	small, medium, large, extraLarge := DefaultPointsSmall, DefaultPointsMedium, DefaultPointsLarge, DefaultPointsExtraLarge
	bonus := DefaultCatchReleaseBonus
	if table != nil {
		small, medium, large, extraLarge = table.PointsSmall, table.PointsMedium, table.PointsLarge, table.PointsExtraLarge
		bonus = table.CatchReleaseBonus
	}

	var base int
	switch *c.SizeCategory {
	case models.SizeSmall:
		base = small
	case models.SizeMedium:
		base = medium
	case models.SizeLarge:
		base = large
	case models.SizeExtraLarge:
		base = extraLarge
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSizeCategory, *c.SizeCategory)
	}

	if c.WasReleased {
		return math.Round(float64(base) * bonus), nil
	}
	return float64(base), nil
}
