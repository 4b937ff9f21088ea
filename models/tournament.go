package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusDraft              TournamentStatus = "DRAFT"
	StatusPublished          TournamentStatus = "PUBLISHED"
	StatusRegistrationOpen   TournamentStatus = "REGISTRATION_OPEN"
	StatusRegistrationClosed TournamentStatus = "REGISTRATION_CLOSED"
	StatusOngoing            TournamentStatus = "ONGOING"
	StatusCompleted          TournamentStatus = "COMPLETED"
	StatusCancelled          TournamentStatus = "CANCELLED"
)

// IsTerminal сообщает, что из статуса больше нет переходов.
func (s TournamentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// GameMode определяет режим подсчёта очков турнира.
type GameMode string

const (
	ModeTraditional  GameMode = "TRADITIONAL"
	ModeCatchRelease GameMode = "CATCH_RELEASE"
)

// Tournament представляет рыболовный турнир.
type Tournament struct {
	ID                 int              `json:"id" db:"id"`
	Name               string           `json:"name" db:"name"`
	Description        *string          `json:"description,omitempty" db:"description"`
	OrganizerID        int              `json:"organizer_id" db:"organizer_id"`
	GameMode           GameMode         `json:"game_mode" db:"game_mode"`
	Status             TournamentStatus `json:"status" db:"status"`
	RegistrationOpens  time.Time        `json:"registration_opens" db:"registration_opens"`
	RegistrationCloses time.Time        `json:"registration_closes" db:"registration_closes"`
	StartDate          time.Time        `json:"start_date" db:"start_date"`
	EndDate            time.Time        `json:"end_date" db:"end_date"`
	Location           *string          `json:"location,omitempty" db:"location"`
	MinParticipants    *int             `json:"min_participants,omitempty" db:"min_participants"`
	MaxCatchesPerDay   *int             `json:"max_catches_per_day,omitempty" db:"max_catches_per_day"`
	MinWeight          *float64         `json:"min_weight,omitempty" db:"min_weight"`
	PointsPerKg        float64          `json:"points_per_kg" db:"points_per_kg"`
	BonusPoints        *float64         `json:"bonus_points,omitempty" db:"bonus_points"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	LogoKey            *string          `json:"-" db:"logo_key"`
	LogoURL            *string          `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Organizer    *User         `json:"organizer,omitempty" db:"-"`
	FishingZones []FishingZone `json:"fishing_zones,omitempty" db:"-"`
}
