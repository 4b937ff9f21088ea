package geo

import (
	"math"
	"testing"
)

// Квадрат ~2.2 x 2.2 км вокруг нулевых координат.
var squareZone = []byte(`{
	"type": "Polygon",
	"coordinates": [[[-0.01,-0.01],[0.01,-0.01],[0.01,0.01],[-0.01,0.01],[-0.01,-0.01]]]
}`)

// Квадрат с квадратной дыркой посередине.
var donutZone = []byte(`{
	"type": "Polygon",
	"coordinates": [
		[[-0.1,-0.1],[0.1,-0.1],[0.1,0.1],[-0.1,0.1],[-0.1,-0.1]],
		[[-0.02,-0.02],[0.02,-0.02],[0.02,0.02],[-0.02,0.02],[-0.02,-0.02]]
	]
}`)

var multiZone = []byte(`{
	"type": "MultiPolygon",
	"coordinates": [
		[[[10.0,10.0],[10.1,10.0],[10.1,10.1],[10.0,10.1],[10.0,10.0]]],
		[[[20.0,20.0],[20.1,20.0],[20.1,20.1],[20.0,20.1],[20.0,20.0]]]
	]
}`)

func floatPtr(v float64) *float64 { return &v }

func TestIsValidCoordinate(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{"origin", 0, 0, true},
		{"north pole", 90, 0, true},
		{"date line", 0, -180, true},
		{"lat too big", 90.0001, 0, false},
		{"lng too big", 0, 180.5, false},
		{"nan lat", math.NaN(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCoordinate(tt.lat, tt.lng); got != tt.want {
				t.Errorf("IsValidCoordinate(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name    string
		geoJSON []byte
		lat     float64
		lng     float64
		want    bool
	}{
		{"inside square", squareZone, 0, 0, true},
		{"outside square", squareZone, 0.02, 0.02, false},
		{"near edge inside", squareZone, 0.009, 0.009, true},
		{"in donut ring", donutZone, 0.05, 0.05, true},
		{"in donut hole", donutZone, 0, 0, false},
		{"first part of multipolygon", multiZone, 10.05, 10.05, true},
		{"second part of multipolygon", multiZone, 20.05, 20.05, true},
		{"between multipolygon parts", multiZone, 15, 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geom, err := ParseGeometry(tt.geoJSON)
			if err != nil {
				t.Fatalf("ParseGeometry: %v", err)
			}
			if got := geom.Contains(tt.lat, tt.lng); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestHaversine(t *testing.T) {
	// Один градус широты на экваторе ~111.19 км при радиусе 6371 км.
	got := Haversine(0, 0, 1, 0)
	want := 111194.9
	if math.Abs(got-want) > 100 {
		t.Errorf("Haversine one degree of latitude = %.1f, want ~%.1f", got, want)
	}

	if d := Haversine(59.93, 30.33, 59.93, 30.33); d != 0 {
		t.Errorf("Haversine same point = %v, want 0", d)
	}
}

func TestValidateLocationInsideZone(t *testing.T) {
	result := ValidateLocation(0, 0, floatPtr(10), []Zone{{Name: "square", RawGeoJSON: squareZone}})

	if !result.IsValid {
		t.Error("expected IsValid for point inside zone with good accuracy")
	}
	if !result.IsInsideZone {
		t.Error("expected IsInsideZone")
	}
	if result.DistanceFromZone != nil {
		t.Errorf("expected no distance for inside point, got %v", *result.DistanceFromZone)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
}

func TestValidateLocationOutsideZone(t *testing.T) {
	// Точка в ~1.1 км восточнее границы квадрата.
	result := ValidateLocation(0, 0.02, nil, []Zone{{Name: "square", RawGeoJSON: squareZone}})

	if result.IsValid {
		t.Error("point outside zone must not be valid")
	}
	if result.IsInsideZone {
		t.Error("point outside zone must not be inside")
	}
	if result.DistanceFromZone == nil {
		t.Fatal("expected distance to nearest boundary")
	}
	if d := *result.DistanceFromZone; math.Abs(d-1112) > 50 {
		t.Errorf("distance to boundary = %.0fm, want ~1112m", d)
	}
	if len(result.Errors) == 0 {
		t.Error("expected an advisory error for outside point")
	}
}

func TestValidateLocationUnionOfZones(t *testing.T) {
	zones := []Zone{
		{Name: "far", RawGeoJSON: multiZone},
		{Name: "home", RawGeoJSON: squareZone},
	}
	result := ValidateLocation(0, 0, nil, zones)
	if !result.IsInsideZone {
		t.Error("point inside any zone must count as inside")
	}
}

func TestValidateLocationSkipsMalformedZone(t *testing.T) {
	zones := []Zone{
		{Name: "broken", RawGeoJSON: []byte(`{"type":"Point","coordinates":[0,0]}`)},
		{Name: "square", RawGeoJSON: squareZone},
	}
	result := ValidateLocation(0, 0, nil, zones)
	if !result.IsInsideZone {
		t.Error("malformed zone must not block validation against remaining zones")
	}
}

func TestValidateLocationInvalidCoordinates(t *testing.T) {
	result := ValidateLocation(95, 0, nil, []Zone{{Name: "square", RawGeoJSON: squareZone}})

	if result.IsValid || result.IsInsideZone {
		t.Error("invalid coordinates must fail validation")
	}
	if result.DistanceFromZone != nil {
		t.Error("no distance should be computed for invalid coordinates")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "invalid GPS coordinates" {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestValidateLocationAccuracyWarning(t *testing.T) {
	result := ValidateLocation(0, 0, floatPtr(120), []Zone{{Name: "square", RawGeoJSON: squareZone}})

	if !result.IsInsideZone {
		t.Fatal("expected point inside zone")
	}
	if !result.AccuracyWarning {
		t.Error("accuracy above threshold must set AccuracyWarning")
	}
	if result.IsValid {
		t.Error("accuracy warning must clear IsValid")
	}
	if result.GPSAccuracy != 120 {
		t.Errorf("GPSAccuracy = %v, want 120", result.GPSAccuracy)
	}
}

func TestDistanceToBoundaryFromInside(t *testing.T) {
	geom, err := ParseGeometry(squareZone)
	if err != nil {
		t.Fatalf("ParseGeometry: %v", err)
	}
	// Из центра квадрата до любой стороны ~1.1 км.
	d := geom.DistanceToBoundary(0, 0)
	if math.Abs(d-1112) > 50 {
		t.Errorf("DistanceToBoundary from center = %.0fm, want ~1112m", d)
	}
}

func TestAreaSquareKm(t *testing.T) {
	geom, err := ParseGeometry(squareZone)
	if err != nil {
		t.Fatalf("ParseGeometry: %v", err)
	}
	// 0.02 x 0.02 градуса на экваторе ~ 2.224 x 2.224 км ~ 4.95 кв. км.
	area := geom.AreaSquareKm()
	if math.Abs(area-4.95) > 0.1 {
		t.Errorf("AreaSquareKm = %.2f, want ~4.95", area)
	}

	donut, err := ParseGeometry(donutZone)
	if err != nil {
		t.Fatalf("ParseGeometry: %v", err)
	}
	full, _ := ParseGeometry([]byte(`{
		"type": "Polygon",
		"coordinates": [[[-0.1,-0.1],[0.1,-0.1],[0.1,0.1],[-0.1,0.1],[-0.1,-0.1]]]
	}`))
	if donut.AreaSquareKm() >= full.AreaSquareKm() {
		t.Error("hole must reduce polygon area")
	}
}

func TestCircularZone(t *testing.T) {
	circle := CircularZone(59.93, 30.33, 2, 64)

	if !circle.Contains(59.93, 30.33) {
		t.Error("circle must contain its center")
	}
	// Точка в ~1 км от центра — внутри, ~3 км — снаружи.
	if !circle.Contains(59.939, 30.33) {
		t.Error("point 1km from center must be inside 2km circle")
	}
	if circle.Contains(59.957, 30.33) {
		t.Error("point 3km from center must be outside 2km circle")
	}

	box := circle.Bounds()
	if box.MinLat >= 59.93 || box.MaxLat <= 59.93 {
		t.Errorf("bounds %+v must straddle the center latitude", box)
	}
}
