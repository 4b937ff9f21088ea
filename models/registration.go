package models

import "time"

// RegistrationStatus — статус заявки участника.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationRejected  RegistrationStatus = "REJECTED"
	RegistrationWithdrawn RegistrationStatus = "WITHDRAWN"
)

// Registration связывает пользователя с турниром. Только CONFIRMED
// регистрации учитываются при старте турнира и инициализации лидерборда.
type Registration struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	UserID       int                `json:"user_id" db:"user_id"`
	TeamName     *string            `json:"team_name,omitempty" db:"team_name"`
	Status       RegistrationStatus `json:"status" db:"status"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
