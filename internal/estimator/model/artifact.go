// internal/estimator/model/artifact.go
package model

import (
	"encoding/json"
	"fmt"
	"os"

	stderrors "rent-estimator/internal/common/errors"
)

// defaultTestMAPE is assumed when an artifact ships without metrics.
const defaultTestMAPE = 15.0

// Artifact is a frozen linear regression exported by the training
// pipeline: an intercept plus one coefficient per named feature. The
// feature_names list fixes the input order; inference never reorders it.
type Artifact struct {
	ModelType    string             `json:"model_type"`
	TrainedAt    string             `json:"trained_at"`
	FeatureNames []string           `json:"feature_names"`
	Intercept    float64            `json:"intercept"`
	Weights      map[string]float64 `json:"weights"`
	Metrics      ArtifactMetrics    `json:"metrics"`
}

// ArtifactMetrics carries held-out evaluation results from training.
type ArtifactMetrics struct {
	TestMAPE float64 `json:"test_mape"`
	TestMAE  float64 `json:"test_mae,omitempty"`
	TestR2   float64 `json:"test_r2,omitempty"`
}

// TestMAPEOrDefault returns the held-out MAPE, or the assumed default
// when training did not record one.
func (a *Artifact) TestMAPEOrDefault() float64 {
	if a.Metrics.TestMAPE > 0 {
		return a.Metrics.TestMAPE
	}
	return defaultTestMAPE
}

// LoadArtifact reads a model artifact from disk. A missing file is not an
// error: it returns (nil, nil) and the model source simply reports itself
// unavailable. A present but unreadable or malformed file is an error.
func LoadArtifact(path string) (*Artifact, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, stderrors.NewArtifactLoadFailedError(path, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, stderrors.NewArtifactLoadFailedError(path, err)
	}

	if err := artifact.validate(); err != nil {
		return nil, stderrors.NewArtifactLoadFailedError(path, err)
	}

	return &artifact, nil
}

func (a *Artifact) validate() error {
	if len(a.FeatureNames) == 0 {
		return fmt.Errorf("artifact has no feature_names")
	}
	if len(a.Weights) == 0 {
		return fmt.Errorf("artifact has no weights")
	}
	for _, name := range a.FeatureNames {
		if _, ok := a.Weights[name]; !ok {
			return fmt.Errorf("artifact missing weight for feature %q", name)
		}
	}
	return nil
}
