// internal/estimator/model/source_test.go
package model

import (
	"testing"

	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact() *Artifact {
	return &Artifact{
		ModelType:    "linear_regression",
		TrainedAt:    "2025-07-01T00:00:00Z",
		FeatureNames: []string{"bedrooms", "sqft", "hud_fmr"},
		Intercept:    200,
		Weights: map[string]float64{
			"bedrooms": 150,
			"sqft":     0.5,
			"hud_fmr":  0.2,
		},
		Metrics: ArtifactMetrics{TestMAPE: 12.5},
	}
}

func TestSource_PredictRoundsToNearest25(t *testing.T) {
	src := NewSourceFromArtifact(testArtifact(), logger.NewTestLogger(t))

	// 200 + 3*150 + 1500*0.5 + 1200*0.2 = 1640, rounds up to 1650.
	pred, ok := src.Predict(models.PropertyQuery{
		Bedrooms: 3,
		Sqft:     intPtr(1500),
	}, floatPtr(1200), nil)

	require.True(t, ok)
	assert.Equal(t, 1650, pred.Estimate)
	assert.Zero(t, pred.Estimate%25)
}

func TestSource_PredictWithoutBenchmark(t *testing.T) {
	src := NewSourceFromArtifact(testArtifact(), logger.NewTestLogger(t))

	// 200 + 3*150 + 1500*0.5 = 1400, already a $25 multiple.
	pred, ok := src.Predict(models.PropertyQuery{
		Bedrooms: 3,
		Sqft:     intPtr(1500),
	}, nil, nil)

	require.True(t, ok)
	assert.Equal(t, 1400, pred.Estimate)
}

func TestSource_ConfidenceFromMAPE(t *testing.T) {
	tests := []struct {
		name     string
		mape     float64
		expected float64
	}{
		{"typical", 12.5, 0.875},
		{"very accurate clamps high", 2.0, 0.95},
		{"very inaccurate clamps low", 80.0, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := testArtifact()
			artifact.Metrics.TestMAPE = tt.mape
			src := NewSourceFromArtifact(artifact, logger.NewTestLogger(t))

			pred, ok := src.Predict(models.PropertyQuery{Bedrooms: 3}, nil, nil)
			require.True(t, ok)
			assert.InDelta(t, tt.expected, pred.Confidence, 1e-9)
		})
	}
}

func TestSource_PredictionInterval(t *testing.T) {
	src := NewSourceFromArtifact(testArtifact(), logger.NewTestLogger(t))

	pred, ok := src.Predict(models.PropertyQuery{
		Bedrooms: 3,
		Sqft:     intPtr(1500),
	}, nil, nil)
	require.True(t, ok)

	// 1400 with 12.5% MAPE gives a +/-175 interval.
	assert.Equal(t, 1225, pred.Low)
	assert.Equal(t, 1575, pred.High)
	assert.Equal(t, 12.5, pred.ExpectedErrorPct)
}

func TestSource_NoArtifactIsAbsent(t *testing.T) {
	src := NewSourceFromArtifact(nil, logger.NewTestLogger(t))

	assert.False(t, src.Available())
	pred, ok := src.Predict(models.PropertyQuery{Bedrooms: 3}, nil, nil)
	assert.False(t, ok)
	assert.Nil(t, pred)
}

func TestSource_UnknownFeatureContributesZero(t *testing.T) {
	artifact := testArtifact()
	artifact.FeatureNames = append(artifact.FeatureNames, "exotic_feature")
	artifact.Weights["exotic_feature"] = 9999

	src := NewSourceFromArtifact(artifact, logger.NewTestLogger(t))
	pred, ok := src.Predict(models.PropertyQuery{
		Bedrooms: 3,
		Sqft:     intPtr(1500),
	}, nil, nil)

	require.True(t, ok)
	assert.Equal(t, 1400, pred.Estimate)
}
