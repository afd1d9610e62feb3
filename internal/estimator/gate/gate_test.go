// internal/estimator/gate/gate_test.go
package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNonRentable(t *testing.T) {
	tests := []struct {
		name         string
		propertyType string
		expected     bool
	}{
		{"empty string is rentable", "", false},
		{"single family is rentable", "SINGLE_FAMILY", false},
		{"condo is rentable", "condo", false},
		{"multi family is rentable", "MULTI_FAMILY", false},
		{"townhouse is rentable", "Townhouse", false},

		{"exact land", "LAND", true},
		{"exact lot", "LOT", true},
		{"exact lots", "LOTS", true},
		{"exact vacant", "VACANT", true},
		{"vacant land", "VACANT_LAND", true},
		{"lots slash land", "LOTS/LAND", true},
		{"farm", "FARM", true},
		{"mobile land", "MOBILE_LAND", true},
		{"other", "OTHER", true},
		{"timberland", "TIMBERLAND", true},
		{"agricultural", "AGRICULTURAL", true},

		{"lowercase vacant_land", "vacant_land", true},
		{"mixed case with whitespace", "  Vacant_Land  ", true},
		{"substring land match", "RESIDENTIAL_LAND", true},
		{"substring lot match", "CORNER_LOT", true},
		{"substring vacant match", "VACANT_COMMERCIAL", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNonRentable(tt.propertyType))
		})
	}
}
