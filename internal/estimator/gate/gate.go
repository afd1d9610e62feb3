// internal/estimator/gate/gate.go
package gate

import "strings"

// nonRentableTypes are property type codes with no rentable structure.
var nonRentableTypes = map[string]struct{}{
	"LAND":         {},
	"LOT":          {},
	"LOTS":         {},
	"VACANT":       {},
	"VACANT_LAND":  {},
	"LOTS/LAND":    {},
	"FARM":         {},
	"MOBILE_LAND":  {},
	"OTHER":        {},
	"TIMBERLAND":   {},
	"AGRICULTURAL": {},
}

// substring matches catch compound codes like "RESIDENTIAL_VACANT_LOT".
var nonRentableFragments = []string{"LAND", "LOT", "VACANT"}

// IsNonRentable reports whether a free-text property type indicates no
// rentable structure. Empty or unknown types pass through the pipeline.
func IsNonRentable(propertyType string) bool {
	if propertyType == "" {
		return false
	}

	pt := strings.ToUpper(strings.TrimSpace(propertyType))

	if _, ok := nonRentableTypes[pt]; ok {
		return true
	}

	for _, fragment := range nonRentableFragments {
		if strings.Contains(pt, fragment) {
			return true
		}
	}

	return false
}
