// internal/estimator/model/source.go
package model

import (
	"math"

	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/models"
)

// Prediction is one inference result. Estimate is rounded to the nearest
// $25; Low and High bound the prediction by the model's held-out MAPE.
type Prediction struct {
	Estimate         int
	Confidence       float64
	Low              int
	High             int
	ExpectedErrorPct float64
	ModelType        string
	TrainedAt        string
}

// Source runs inference against a frozen artifact. A Source without an
// artifact is valid and answers every Predict with absent; the caller
// treats that the same as any other missing estimation source.
type Source struct {
	artifact *Artifact
	logger   logger.Logger
}

// NewSource loads the artifact at path and wraps it. A missing artifact
// yields a working but unavailable source, not an error.
func NewSource(path string, log logger.Logger) (*Source, error) {
	artifact, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}

	src := &Source{
		artifact: artifact,
		logger:   log.WithFields(map[string]interface{}{"component": "model"}),
	}
	if artifact == nil {
		src.logger.Warn("model artifact not found, ml source disabled", map[string]interface{}{
			"path": path,
		})
	} else {
		src.logger.Info("model artifact loaded", map[string]interface{}{
			"model_type": artifact.ModelType,
			"trained_at": artifact.TrainedAt,
			"features":   len(artifact.FeatureNames),
			"test_mape":  artifact.TestMAPEOrDefault(),
		})
	}
	return src, nil
}

// NewSourceFromArtifact wraps an already loaded artifact. Used by tests
// and by callers that manage artifact loading themselves.
func NewSourceFromArtifact(artifact *Artifact, log logger.Logger) *Source {
	return &Source{
		artifact: artifact,
		logger:   log.WithFields(map[string]interface{}{"component": "model"}),
	}
}

// Available reports whether an artifact is loaded.
func (s *Source) Available() bool {
	return s.artifact != nil
}

// Predict runs the frozen regression over the engineered feature vector.
// The boolean is false when no artifact is loaded. Features the artifact
// names but the vector lacks contribute zero.
func (s *Source) Predict(query models.PropertyQuery, hudRent *float64, gis *models.GISFeatures) (*Prediction, bool) {
	if s.artifact == nil {
		return nil, false
	}

	features := AddMarketFeatures(ExtractFeatures(query), hudRent, nil, gis)

	raw := s.artifact.Intercept
	for _, name := range s.artifact.FeatureNames {
		raw += s.artifact.Weights[name] * features[name]
	}

	estimate := int(math.Round(raw/25) * 25)
	if estimate < 0 {
		estimate = 0
	}

	mape := s.artifact.TestMAPEOrDefault()
	margin := float64(estimate) * mape / 100

	return &Prediction{
		Estimate:         estimate,
		Confidence:       mapeConfidence(mape),
		Low:              int(float64(estimate) - margin),
		High:             int(float64(estimate) + margin),
		ExpectedErrorPct: roundTo(mape, 1),
		ModelType:        s.artifact.ModelType,
		TrainedAt:        s.artifact.TrainedAt,
	}, true
}

// mapeConfidence converts held-out error into a confidence score,
// clamped to [0.3, 0.95].
func mapeConfidence(mape float64) float64 {
	c := (100 - mape) / 100
	if c < 0.3 {
		return 0.3
	}
	if c > 0.95 {
		return 0.95
	}
	return c
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
