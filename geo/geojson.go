package geo

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidGeoJSON      = errors.New("invalid GeoJSON geometry")
	ErrUnsupportedGeometry = errors.New("unsupported GeoJSON geometry type (want Polygon or MultiPolygon)")
)

// Coordinate — точка в градусах. В GeoJSON координаты идут в порядке
// [longitude, latitude]; этот порядок сохраняется при разборе и сериализации.
type Coordinate struct {
	Lng float64
	Lat float64
}

// Ring — замкнутый контур полигона.
type Ring []Coordinate

// Polygon — внешний контур плюс дырки.
type Polygon []Ring

// Geometry — разобранная геометрия зоны: Polygon или MultiPolygon.
type Geometry struct {
	Type     string
	Polygons []Polygon
}

// BoundingBox — охватывающий прямоугольник геометрии.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

type rawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseGeometry разбирает GeoJSON Polygon или MultiPolygon.
// Замыкание и ориентация контуров не проверяются: алгоритм containment
// не чувствителен к направлению обхода, а незамкнутые контуры трактуются
// как замкнутые неявно.
func ParseGeometry(raw []byte) (*Geometry, error) {
	var g rawGeometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeoJSON, err)
	}

	switch g.Type {
	case "Polygon":
		var coords [][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("%w: polygon coordinates: %v", ErrInvalidGeoJSON, err)
		}
		poly, err := buildPolygon(coords)
		if err != nil {
			return nil, err
		}
		return &Geometry{Type: g.Type, Polygons: []Polygon{poly}}, nil

	case "MultiPolygon":
		var coords [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("%w: multipolygon coordinates: %v", ErrInvalidGeoJSON, err)
		}
		if len(coords) == 0 {
			return nil, fmt.Errorf("%w: empty multipolygon", ErrInvalidGeoJSON)
		}
		polys := make([]Polygon, 0, len(coords))
		for _, pc := range coords {
			poly, err := buildPolygon(pc)
			if err != nil {
				return nil, err
			}
			polys = append(polys, poly)
		}
		return &Geometry{Type: g.Type, Polygons: polys}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGeometry, g.Type)
	}
}

func buildPolygon(coords [][][]float64) (Polygon, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: polygon without rings", ErrInvalidGeoJSON)
	}
	poly := make(Polygon, 0, len(coords))
	for _, rawRing := range coords {
		if len(rawRing) < 3 {
			return nil, fmt.Errorf("%w: ring has fewer than 3 positions", ErrInvalidGeoJSON)
		}
		ring := make(Ring, 0, len(rawRing))
		for _, pos := range rawRing {
			if len(pos) < 2 {
				return nil, fmt.Errorf("%w: position has fewer than 2 values", ErrInvalidGeoJSON)
			}
			ring = append(ring, Coordinate{Lng: pos[0], Lat: pos[1]})
		}
		poly = append(poly, ring)
	}
	return poly, nil
}

// IsValidGeoJSON — структурная проверка: тип Polygon/MultiPolygon и
// непустой числовой массив coordinates. Семантику контуров не проверяет.
func IsValidGeoJSON(raw []byte) bool {
	_, err := ParseGeometry(raw)
	return err == nil
}

// MarshalGeometry сериализует геометрию обратно в стандартный GeoJSON
// с порядком координат [lng, lat].
func MarshalGeometry(g *Geometry) ([]byte, error) {
	toRaw := func(p Polygon) [][][]float64 {
		out := make([][][]float64, 0, len(p))
		for _, ring := range p {
			r := make([][]float64, 0, len(ring))
			for _, c := range ring {
				r = append(r, []float64{c.Lng, c.Lat})
			}
			out = append(out, r)
		}
		return out
	}

	switch g.Type {
	case "Polygon":
		return json.Marshal(struct {
			Type        string        `json:"type"`
			Coordinates [][][]float64 `json:"coordinates"`
		}{g.Type, toRaw(g.Polygons[0])})
	case "MultiPolygon":
		coords := make([][][][]float64, 0, len(g.Polygons))
		for _, p := range g.Polygons {
			coords = append(coords, toRaw(p))
		}
		return json.Marshal(struct {
			Type        string          `json:"type"`
			Coordinates [][][][]float64 `json:"coordinates"`
		}{g.Type, coords})
	default:
		return nil, ErrUnsupportedGeometry
	}
}

// Bounds возвращает охватывающий прямоугольник; для MultiPolygon это
// объединение прямоугольников всех частей.
func (g *Geometry) Bounds() BoundingBox {
	box := BoundingBox{MinLat: 90, MaxLat: -90, MinLng: 180, MaxLng: -180}
	for _, poly := range g.Polygons {
		for _, ring := range poly {
			for _, c := range ring {
				if c.Lat < box.MinLat {
					box.MinLat = c.Lat
				}
				if c.Lat > box.MaxLat {
					box.MaxLat = c.Lat
				}
				if c.Lng < box.MinLng {
					box.MinLng = c.Lng
				}
				if c.Lng > box.MaxLng {
					box.MaxLng = c.Lng
				}
			}
		}
	}
	return box
}

// Contains — быстрая проверка по прямоугольнику, без учёта формы полигона.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}
