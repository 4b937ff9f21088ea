package geo

import (
	"errors"
	"testing"
)

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "polygon",
			input: `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`,
		},
		{
			name:  "multipolygon",
			input: `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]}`,
		},
		{
			name:    "point unsupported",
			input:   `{"type":"Point","coordinates":[0,0]}`,
			wantErr: ErrUnsupportedGeometry,
		},
		{
			name:    "linestring unsupported",
			input:   `{"type":"LineString","coordinates":[[0,0],[1,1]]}`,
			wantErr: ErrUnsupportedGeometry,
		},
		{
			name:    "not json",
			input:   `{"type":`,
			wantErr: ErrInvalidGeoJSON,
		},
		{
			name:    "too few positions",
			input:   `{"type":"Polygon","coordinates":[[[0,0],[1,1]]]}`,
			wantErr: ErrInvalidGeoJSON,
		},
		{
			name:    "position with one value",
			input:   `{"type":"Polygon","coordinates":[[[0,0],[1],[1,1]]]}`,
			wantErr: ErrInvalidGeoJSON,
		},
		{
			name:    "polygon without rings",
			input:   `{"type":"Polygon","coordinates":[]}`,
			wantErr: ErrInvalidGeoJSON,
		},
		{
			name:    "empty multipolygon",
			input:   `{"type":"MultiPolygon","coordinates":[]}`,
			wantErr: ErrInvalidGeoJSON,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geom, err := ParseGeometry([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseGeometry error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGeometry: %v", err)
			}
			if len(geom.Polygons) == 0 {
				t.Error("expected at least one polygon")
			}
		})
	}
}

func TestIsValidGeoJSON(t *testing.T) {
	if !IsValidGeoJSON([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)) {
		t.Error("valid polygon rejected")
	}
	if IsValidGeoJSON([]byte(`{"type":"Point","coordinates":[0,0]}`)) {
		t.Error("point must not validate")
	}
}

func TestMarshalGeometryRoundTrip(t *testing.T) {
	geom, err := ParseGeometry(multiZone)
	if err != nil {
		t.Fatalf("ParseGeometry: %v", err)
	}
	raw, err := MarshalGeometry(geom)
	if err != nil {
		t.Fatalf("MarshalGeometry: %v", err)
	}
	again, err := ParseGeometry(raw)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(again.Polygons) != len(geom.Polygons) {
		t.Errorf("polygon count after round trip = %d, want %d", len(again.Polygons), len(geom.Polygons))
	}
}

func TestBounds(t *testing.T) {
	geom, err := ParseGeometry(multiZone)
	if err != nil {
		t.Fatalf("ParseGeometry: %v", err)
	}
	box := geom.Bounds()
	if box.MinLat != 10.0 || box.MaxLat != 20.1 {
		t.Errorf("latitude bounds = [%v, %v], want [10.0, 20.1]", box.MinLat, box.MaxLat)
	}
	if box.MinLng != 10.0 || box.MaxLng != 20.1 {
		t.Errorf("longitude bounds = [%v, %v], want [10.0, 20.1]", box.MinLng, box.MaxLng)
	}
	if !box.Contains(15, 15) {
		t.Error("bounding box must contain interior point")
	}
	if box.Contains(25, 15) {
		t.Error("bounding box must not contain exterior point")
	}
}
