package geo

import (
	"math"
	"testing"
)

func TestDecodePolyline_GoogleExample(t *testing.T) {
	// Reference example from the polyline algorithm documentation.
	encoded := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	want := []Coordinate{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}

	got := DecodePolyline(encoded)
	if len(got) != len(want) {
		t.Fatalf("expected %d coordinates, got %d", len(want), len(got))
	}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-5) {
			t.Errorf("coordinate %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDecodePolyline_Empty(t *testing.T) {
	if got := DecodePolyline(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestEncodePolyline_Empty(t *testing.T) {
	if got := EncodePolyline(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestPolyline_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		coords []Coordinate
	}{
		{
			name:   "single point",
			coords: []Coordinate{{Lat: 39.17298, Lon: -77.27169}},
		},
		{
			name: "commute route",
			coords: []Coordinate{
				{Lat: 39.17298, Lon: -77.27169},
				{Lat: 39.08964, Lon: -77.15201},
				{Lat: 38.97212, Lon: -77.10382},
				{Lat: 38.92583, Lon: -77.01091},
			},
		},
		{
			name: "negative and positive hemispheres",
			coords: []Coordinate{
				{Lat: -33.86882, Lon: 151.20929},
				{Lat: 35.67619, Lon: 139.65031},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := DecodePolyline(EncodePolyline(tt.coords))
			if len(decoded) != len(tt.coords) {
				t.Fatalf("expected %d coordinates, got %d", len(tt.coords), len(decoded))
			}
			for i := range tt.coords {
				if !almostEqual(decoded[i], tt.coords[i], 1e-5) {
					t.Errorf("coordinate %d: got %+v, want %+v", i, decoded[i], tt.coords[i])
				}
			}
		})
	}
}

func almostEqual(a, b Coordinate, tol float64) bool {
	return math.Abs(a.Lat-b.Lat) <= tol && math.Abs(a.Lon-b.Lon) <= tol
}
