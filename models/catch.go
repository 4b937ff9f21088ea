package models

import "time"

// CatchStatus представляет статусы улова, соответствующие ENUM в БД.
type CatchStatus string

const (
	CatchPending  CatchStatus = "PENDING"
	CatchApproved CatchStatus = "APPROVED"
	CatchRejected CatchStatus = "REJECTED"
)

// SizeCategory используется вместо веса в режиме catch-and-release.
type SizeCategory string

const (
	SizeSmall      SizeCategory = "SMALL"
	SizeMedium     SizeCategory = "MEDIUM"
	SizeLarge      SizeCategory = "LARGE"
	SizeExtraLarge SizeCategory = "EXTRA_LARGE"
)

// Catch представляет заявленный улов участника.
// Переход статуса PENDING -> APPROVED/REJECTED происходит ровно один раз;
// Points заполняется только вместе с APPROVED.
type Catch struct {
	ID           int           `json:"id" db:"id"`
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	UserID       int           `json:"user_id" db:"user_id"`
	SpeciesID    *int          `json:"species_id,omitempty" db:"species_id"`
	Weight       *float64      `json:"weight,omitempty" db:"weight"`
	Length       *float64      `json:"length,omitempty" db:"length"`
	SizeCategory *SizeCategory `json:"size_category,omitempty" db:"size_category"`
	WasReleased  bool          `json:"was_released" db:"was_released"`
	Latitude     float64       `json:"latitude" db:"latitude"`
	Longitude    float64       `json:"longitude" db:"longitude"`
	GPSAccuracy  *float64      `json:"gps_accuracy,omitempty" db:"gps_accuracy"`
	CaughtAt     time.Time     `json:"caught_at" db:"caught_at"`
	PhotoKey     *string       `json:"-" db:"photo_key"`
	PhotoURL     *string       `json:"photo_url,omitempty" db:"-"`
	VideoKey     *string       `json:"-" db:"video_key"`
	VideoURL     *string       `json:"video_url,omitempty" db:"-"`
	Notes        *string       `json:"notes,omitempty" db:"notes"`
	Status       CatchStatus   `json:"status" db:"status"`
	Points       *float64      `json:"points,omitempty" db:"points"`
	IsInsideZone bool          `json:"is_inside_zone" db:"is_inside_zone"`
	ReviewerID   *int          `json:"reviewer_id,omitempty" db:"reviewer_id"`
	ReviewNotes  *string       `json:"review_notes,omitempty" db:"review_notes"`
	ReviewedAt   *time.Time    `json:"reviewed_at,omitempty" db:"reviewed_at"`
	SubmittedAt  time.Time     `json:"submitted_at" db:"submitted_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	User       *User       `json:"user,omitempty" db:"-"`
	Species    *Species    `json:"species,omitempty" db:"-"`
	Tournament *Tournament `json:"-" db:"-"`
}
