package models

import "time"

// LeaderboardEntry — агрегированная строка лидерборда турнира.
// Одна строка на пару (tournament, user); Rank пересчитывается целиком
// после любого изменения очков.
type LeaderboardEntry struct {
	ID              int       `json:"id" db:"id"`
	TournamentID    int       `json:"tournament_id" db:"tournament_id"`
	UserID          int       `json:"user_id" db:"user_id"`
	ParticipantName string    `json:"participant_name" db:"participant_name"`
	TeamName        *string   `json:"team_name,omitempty" db:"team_name"`
	Rank            int       `json:"rank" db:"rank"`
	TotalPoints     float64   `json:"total_points" db:"total_points"`
	TotalWeight     float64   `json:"total_weight" db:"total_weight"`
	CatchCount      int       `json:"catch_count" db:"catch_count"`
	BiggestCatch    *float64  `json:"biggest_catch,omitempty" db:"biggest_catch"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// TournamentStats — сводные показатели турнира для дашборда организатора.
type TournamentStats struct {
	TotalParticipants int      `json:"total_participants"`
	TotalCatches      int      `json:"total_catches"`
	PendingCatches    int      `json:"pending_catches"`
	ApprovedCatches   int      `json:"approved_catches"`
	RejectedCatches   int      `json:"rejected_catches"`
	TotalWeight       float64  `json:"total_weight"`
	TotalPoints       float64  `json:"total_points"`
	BiggestCatch      *float64 `json:"biggest_catch,omitempty"`
	Leader            *Leader  `json:"leader,omitempty"`
}

// Leader — текущий лидер турнира.
type Leader struct {
	UserID  int     `json:"user_id"`
	Name    string  `json:"name"`
	Points  float64 `json:"points"`
	Catches int     `json:"catches"`
}
