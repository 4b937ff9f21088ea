package geo

import (
	"fmt"
	"log"
	"math"
)

const (
	earthRadiusMeters = 6371000.0

	// MaxRecommendedAccuracyMeters — порог точности GPS, выше которого
	// вердикт получает предупреждение для судьи.
	MaxRecommendedAccuracyMeters = 50.0
)

// Zone — зона лова в том виде, в котором её видит валидатор:
// имя для логов и сырой GeoJSON из хранилища.
type Zone struct {
	Name       string
	RawGeoJSON []byte
}

// ValidationResult — рекомендательный вердикт по местоположению улова.
// Вердикт сохраняется вместе с уловом и никогда не блокирует подачу:
// окончательное решение остаётся за судьёй.
type ValidationResult struct {
	IsValid          bool     `json:"is_valid"`
	IsInsideZone     bool     `json:"is_inside_zone"`
	GPSAccuracy      float64  `json:"gps_accuracy"`
	DistanceFromZone *float64 `json:"distance_from_zone,omitempty"`
	AccuracyWarning  bool     `json:"accuracy_warning"`
	Errors           []string `json:"errors,omitempty"`
}

// IsValidCoordinate проверяет диапазоны широты и долготы.
func IsValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ValidateLocation проверяет точку против всех активных зон турнира.
// Точка считается внутри, если она попадает хотя бы в одну зону (объединение
// зон, не пересечение); перебор останавливается на первом попадании.
// Если точка вне всех зон, возвращается минимальное расстояние до границы
// в метрах. Зона с некорректным GeoJSON пропускается с предупреждением в лог
// и не мешает проверке по остальным зонам.
func ValidateLocation(lat, lng float64, accuracy *float64, zones []Zone) ValidationResult {
	result := ValidationResult{}
	if accuracy != nil {
		result.GPSAccuracy = *accuracy
	}

	if !IsValidCoordinate(lat, lng) {
		result.Errors = append(result.Errors, "invalid GPS coordinates")
		return result
	}

	var minDistance *float64
	for _, zone := range zones {
		geom, err := ParseGeometry(zone.RawGeoJSON)
		if err != nil {
			log.Printf("geo: skipping zone %q: %v", zone.Name, err)
			continue
		}

		if geom.Contains(lat, lng) {
			result.IsInsideZone = true
			minDistance = nil
			break
		}

		d := geom.DistanceToBoundary(lat, lng)
		if minDistance == nil || d < *minDistance {
			minDistance = &d
		}
	}

	if !result.IsInsideZone {
		if minDistance != nil {
			result.DistanceFromZone = minDistance
			result.Errors = append(result.Errors,
				fmt.Sprintf("catch is outside all fishing zones, nearest boundary %.0fm away", *minDistance))
		} else {
			result.Errors = append(result.Errors, "catch is outside all fishing zones")
		}
	}

	if accuracy != nil && *accuracy > MaxRecommendedAccuracyMeters {
		result.AccuracyWarning = true
		result.Errors = append(result.Errors,
			fmt.Sprintf("GPS accuracy is low: %.0fm", *accuracy))
	}

	result.IsValid = result.IsInsideZone && len(result.Errors) == 0
	return result
}

// Contains проверяет принадлежность точки геометрии тестом чётности
// пересечений (even-odd). Подсчёт ведётся по всем контурам полигона, поэтому
// дырки обрабатываются естественно, а направление обхода не имеет значения.
func (g *Geometry) Contains(lat, lng float64) bool {
	for _, poly := range g.Polygons {
		crossings := 0
		for _, ring := range poly {
			crossings += rayCrossings(ring, lat, lng)
		}
		if crossings%2 == 1 {
			return true
		}
	}
	return false
}

func rayCrossings(ring Ring, lat, lng float64) int {
	n := len(ring)
	count := 0
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		if (a.Lat > lat) != (b.Lat > lat) {
			x := a.Lng + (lat-a.Lat)/(b.Lat-a.Lat)*(b.Lng-a.Lng)
			if lng < x {
				count++
			}
		}
	}
	return count
}

// Haversine возвращает ортодромическое расстояние между двумя точками
// в метрах. Плоское приближение не годится: зоны могут тянуться на
// километры вдоль побережья.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceToBoundary — минимальное расстояние от точки до границы геометрии
// в метрах, по всем сегментам всех контуров.
func (g *Geometry) DistanceToBoundary(lat, lng float64) float64 {
	min := math.Inf(1)
	for _, poly := range g.Polygons {
		for _, ring := range poly {
			n := len(ring)
			for i := 0; i < n; i++ {
				d := distanceToSegment(lat, lng, ring[i], ring[(i+1)%n])
				if d < min {
					min = d
				}
			}
		}
	}
	return min
}

// distanceToSegment проецирует точку на сегмент в локальной касательной
// плоскости (долгота масштабируется на cos широты), а само расстояние до
// ближайшей точки сегмента считает гаверсинусом.
func distanceToSegment(lat, lng float64, a, b Coordinate) float64 {
	scale := math.Cos(lat * math.Pi / 180)

	ax, ay := (a.Lng-lng)*scale, a.Lat-lat
	bx, by := (b.Lng-lng)*scale, b.Lat-lat

	dx, dy := bx-ax, by-ay
	segLenSq := dx*dx + dy*dy

	t := 0.0
	if segLenSq > 0 {
		t = -(ax*dx + ay*dy) / segLenSq
		t = math.Max(0, math.Min(1, t))
	}

	nearestLng := a.Lng + (b.Lng-a.Lng)*t
	nearestLat := a.Lat + (b.Lat-a.Lat)*t
	return Haversine(lat, lng, nearestLat, nearestLng)
}

// AreaSquareKm — площадь геометрии в квадратных километрах по формуле
// сферического избытка; дырки вычитаются.
func (g *Geometry) AreaSquareKm() float64 {
	var total float64
	for _, poly := range g.Polygons {
		for i, ring := range poly {
			area := math.Abs(sphericalRingArea(ring))
			if i == 0 {
				total += area
			} else {
				total -= area
			}
		}
	}
	if total < 0 {
		total = 0
	}
	return total / 1e6
}

func sphericalRingArea(ring Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		l1 := a.Lng * math.Pi / 180
		l2 := b.Lng * math.Pi / 180
		p1 := a.Lat * math.Pi / 180
		p2 := b.Lat * math.Pi / 180
		sum += (l2 - l1) * (2 + math.Sin(p1) + math.Sin(p2))
	}
	return sum * earthRadiusMeters * earthRadiusMeters / 2
}

// CircularZone строит полигональную аппроксимацию круга. Круглые зоны
// хранятся как обычные полигоны, отдельной геометрии для них нет.
func CircularZone(centerLat, centerLng, radiusKm float64, steps int) *Geometry {
	if steps < 3 {
		steps = 64
	}
	angular := radiusKm * 1000 / earthRadiusMeters
	phi := centerLat * math.Pi / 180
	lambda := centerLng * math.Pi / 180

	ring := make(Ring, 0, steps+1)
	for i := 0; i <= steps; i++ {
		bearing := 2 * math.Pi * float64(i) / float64(steps)
		lat := math.Asin(math.Sin(phi)*math.Cos(angular) +
			math.Cos(phi)*math.Sin(angular)*math.Cos(bearing))
		lng := lambda + math.Atan2(
			math.Sin(bearing)*math.Sin(angular)*math.Cos(phi),
			math.Cos(angular)-math.Sin(phi)*math.Sin(lat))
		ring = append(ring, Coordinate{Lng: lng * 180 / math.Pi, Lat: lat * 180 / math.Pi})
	}
	return &Geometry{Type: "Polygon", Polygons: []Polygon{{ring}}}
}
