package tracking

import (
	"math"
	"testing"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lon1      float64
		lat2      float64
		lon2      float64
		wantKm    float64
		tolerance float64
	}{
		{
			name: "same point",
			lat1: 43.238949, lon1: 76.889709,
			lat2: 43.238949, lon2: 76.889709,
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name: "one degree of latitude (~111km)",
			lat1: 43.0, lon1: 76.9,
			lat2: 44.0, lon2: 76.9,
			wantKm:    111.19,
			tolerance: 0.1,
		},
		{
			name: "Almaty to Astana (~970km)",
			lat1: 43.238949, lon1: 76.889709,
			lat2: 51.169392, lon2: 71.449074,
			wantKm:    970,
			tolerance: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("HaversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	d1 := HaversineKm(43.0, 76.0, 44.0, 77.0)
	d2 := HaversineKm(44.0, 77.0, 43.0, 76.0)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}
