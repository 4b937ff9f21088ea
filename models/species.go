package models

// Species — вид рыбы из справочника.
type Species struct {
	ID               int      `json:"id" db:"id"`
	CommonName       string   `json:"common_name" db:"common_name"`
	ScientificName   *string  `json:"scientific_name,omitempty" db:"scientific_name"`
	PointsMultiplier *float64 `json:"points_multiplier,omitempty" db:"points_multiplier"`
}

// SpeciesScoring — таблица очков вида для конкретного турнира.
// Используется только в режиме CATCH_RELEASE; при отсутствии строки
// применяются значения по умолчанию из пакета scoring.
type SpeciesScoring struct {
	ID                int     `json:"id" db:"id"`
	TournamentID      int     `json:"tournament_id" db:"tournament_id"`
	SpeciesID         int     `json:"species_id" db:"species_id"`
	PointsSmall       int     `json:"points_small" db:"points_small"`
	PointsMedium      int     `json:"points_medium" db:"points_medium"`
	PointsLarge       int     `json:"points_large" db:"points_large"`
	PointsExtraLarge  int     `json:"points_extra_large" db:"points_extra_large"`
	CatchReleaseBonus float64 `json:"catch_release_bonus" db:"catch_release_bonus"`
}
