// internal/estimator/geo/geo_test.go
package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMiles(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lon1      float64
		lat2      float64
		lon2      float64
		expected  float64
		tolerance float64
	}{
		{
			name: "same point is zero",
			lat1: 41.4993, lon1: -81.6944,
			lat2: 41.4993, lon2: -81.6944,
			expected:  0,
			tolerance: 1e-9,
		},
		{
			name: "cleveland downtown to lakewood",
			lat1: 41.4993, lon1: -81.6944,
			lat2: 41.4819, lon2: -81.7982,
			expected:  5.5,
			tolerance: 0.3,
		},
		{
			name: "cleveland to indianapolis",
			lat1: 41.4993, lon1: -81.6944,
			lat2: 39.7684, lon2: -86.1581,
			expected:  263,
			tolerance: 5,
		},
		{
			name: "one degree of latitude",
			lat1: 40.0, lon1: -81.0,
			lat2: 41.0, lon2: -81.0,
			expected:  69.09,
			tolerance: 0.2,
		},
		{
			name: "antipodal-ish symmetry",
			lat1: 10.0, lon1: 20.0,
			lat2: -10.0, lon2: -160.0,
			expected:  12436,
			tolerance: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMiles(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expected, got, tt.tolerance)
		})
	}
}

func TestHaversineMiles_Symmetric(t *testing.T) {
	d1 := HaversineMiles(41.5, -81.7, 41.6, -81.5)
	d2 := HaversineMiles(41.6, -81.5, 41.5, -81.7)
	assert.InDelta(t, d1, d2, 1e-9)
}
