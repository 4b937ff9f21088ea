package models

import (
	"encoding/json"
	"time"
)

// FishingZone описывает зону лова турнира. Геометрия хранится в БД как
// сырой GeoJSON (Polygon или MultiPolygon), в памяти разбирается пакетом geo.
type FishingZone struct {
	ID           int             `json:"id" db:"id"`
	TournamentID int             `json:"tournament_id" db:"tournament_id"`
	Name         string          `json:"name" db:"name"`
	GeoJSON      json.RawMessage `json:"geo_json" db:"geo_json"`
	MinLat       float64         `json:"min_lat" db:"min_lat"`
	MaxLat       float64         `json:"max_lat" db:"max_lat"`
	MinLng       float64         `json:"min_lng" db:"min_lng"`
	MaxLng       float64         `json:"max_lng" db:"max_lng"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
