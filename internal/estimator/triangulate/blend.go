// internal/estimator/triangulate/blend.go
package triangulate

import (
	"math"
	"strings"

	"rent-estimator/internal/models"
)

// Base weights per present source. Comps carry the most signal when the
// sample is big enough to trust; HUD is the safety floor; the model is
// the arbiter.
const (
	weightHud         = 0.30
	weightML          = 0.20
	weightCompsStrong = 0.50
	weightCompsWeak   = 0.30

	// strongSampleSize is the comp count at which comps get full weight.
	strongSampleSize = 3
)

// Confidence contributions per present source. Comps saturate at
// compSaturation comps.
const (
	confidenceHud  = 0.25
	confidenceML   = 0.15
	confidenceComp = 0.50
	compSaturation = 5
)

// Sources disagreeing by more than the threshold cut confidence by the
// penalty factor.
const (
	varianceThresholdPct = 25.0
	variancePenalty      = 0.8
)

// baseWeights assigns the availability-dependent weight of every present
// source. The map is empty when nothing is present.
func baseWeights(values map[models.Source]float64, compCount int) models.SourceWeights {
	weights := models.SourceWeights{}

	if _, ok := values[models.SourceHud]; ok {
		weights[models.SourceHud] = weightHud
	}
	if _, ok := values[models.SourceComps]; ok {
		if compCount >= strongSampleSize {
			weights[models.SourceComps] = weightCompsStrong
		} else {
			weights[models.SourceComps] = weightCompsWeak
		}
	}
	if _, ok := values[models.SourceML]; ok {
		weights[models.SourceML] = weightML
	}

	return weights
}

// normalize scales the present weights so they sum to 1.0.
func normalize(weights models.SourceWeights) models.SourceWeights {
	total := weights.Sum()
	if total == 0 {
		return weights
	}
	out := make(models.SourceWeights, len(weights))
	for s, w := range weights {
		out[s] = w / total
	}
	return out
}

// blend computes the weighted average over the fixed source order and
// rounds to a whole dollar.
func blend(values map[models.Source]float64, weights models.SourceWeights) float64 {
	sum := 0.0
	for _, s := range models.AllSources {
		if v, ok := values[s]; ok {
			sum += v * weights[s]
		}
	}
	return math.Round(sum)
}

// confidence accumulates the per-source contributions. The variance
// penalty and final clamp happen in the caller.
func confidence(values map[models.Source]float64, compCount int) float64 {
	c := 0.0
	if _, ok := values[models.SourceHud]; ok {
		c += confidenceHud
	}
	if _, ok := values[models.SourceComps]; ok {
		c += math.Min(confidenceComp, float64(compCount)/compSaturation*confidenceComp)
	}
	if _, ok := values[models.SourceML]; ok {
		c += confidenceML
	}
	return c
}

// variancePct measures the largest relative deviation of any source value
// from the mean, in percent. Zero with fewer than two values.
func variancePct(values map[models.Source]float64) float64 {
	if len(values) < 2 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0
	}

	maxDiff := 0.0
	for _, v := range values {
		if d := math.Abs(v - mean); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff / mean * 100
}

// methodLabel names the outcome by the contributing sources, in the
// fixed hud/comps/ml order. One source keeps the bare tag.
func methodLabel(values map[models.Source]float64) string {
	var parts []string
	for _, s := range models.AllSources {
		if _, ok := values[s]; ok {
			parts = append(parts, s.String())
		}
	}

	switch len(parts) {
	case 0:
		return models.MethodInsufficientData
	case 1:
		return parts[0]
	default:
		return "triangulated_" + strings.Join(parts, "_")
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
