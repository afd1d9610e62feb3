// internal/workers/estimation/estimate-rent/handler_test.go
package estimaterent

import (
	"context"
	"encoding/json"
	"testing"

	stderrors "rent-estimator/internal/common/errors"
	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeEstimator struct {
	estimate *models.RentEstimate
	err      error
	lastSeen models.PropertyQuery
}

func (f *fakeEstimator) Estimate(_ context.Context, query models.PropertyQuery) (*models.RentEstimate, error) {
	f.lastSeen = query
	if f.err != nil {
		return nil, f.err
	}
	return f.estimate, nil
}

func createTestConfig() *Config {
	return LoadConfig()
}

func createTestInput() *Input {
	bathrooms := 2.0
	sqft := 1500
	return &Input{
		Latitude:     41.4993,
		Longitude:    -81.6944,
		Bedrooms:     3,
		Bathrooms:    &bathrooms,
		Sqft:         &sqft,
		ZipCode:      "44113",
		PropertyType: "single_family",
		HasGarage:    true,
	}
}

func newHandler(t *testing.T, estimator Estimator) *Handler {
	return NewHandler(createTestConfig(), estimator, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	hud := 1200.0
	estimator := &fakeEstimator{
		estimate: &models.RentEstimate{
			EstimatedRent:   1231,
			ConfidenceScore: 0.75,
			Method:          "triangulated_hud_comps",
			HudFMR:          &hud,
			CompCount:       5,
		},
	}

	output, err := newHandler(t, estimator).Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	require.NotNil(t, output.RentEstimate)

	assert.Equal(t, 1231.0, output.RentEstimate.EstimatedRent)
	assert.Equal(t, "triangulated_hud_comps", output.RentEstimate.Method)
}

func TestHandler_Execute_MapsAllInputFields(t *testing.T) {
	estimator := &fakeEstimator{estimate: &models.RentEstimate{}}
	input := createTestInput()

	_, err := newHandler(t, estimator).Execute(context.Background(), input)
	require.NoError(t, err)

	query := estimator.lastSeen
	assert.Equal(t, input.Latitude, query.Latitude)
	assert.Equal(t, input.Longitude, query.Longitude)
	assert.Equal(t, input.Bedrooms, query.Bedrooms)
	assert.Equal(t, input.Bathrooms, query.Bathrooms)
	assert.Equal(t, input.Sqft, query.Sqft)
	assert.Equal(t, input.ZipCode, query.ZipCode)
	assert.Equal(t, input.PropertyType, query.PropertyType)
	assert.True(t, query.HasGarage)
}

func TestHandler_Execute_PropagatesEstimatorError(t *testing.T) {
	estimator := &fakeEstimator{err: stderrors.NewMissingBedroomsError()}

	_, err := newHandler(t, estimator).Execute(context.Background(), createTestInput())
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeMissingBedrooms, stderrors.CodeOf(err))
}

// ==========================
// Variable Contract
// ==========================

func TestInput_UnmarshalsJobVariables(t *testing.T) {
	raw := `{
		"latitude": 41.4993,
		"longitude": -81.6944,
		"bedrooms": 3,
		"bathrooms": 2.5,
		"zipCode": "44113",
		"propertyType": "condo",
		"hasPool": true
	}`

	var input Input
	require.NoError(t, json.Unmarshal([]byte(raw), &input))

	assert.Equal(t, 41.4993, input.Latitude)
	assert.Equal(t, 3, input.Bedrooms)
	require.NotNil(t, input.Bathrooms)
	assert.Equal(t, 2.5, *input.Bathrooms)
	assert.Equal(t, "condo", input.PropertyType)
	assert.True(t, input.HasPool)
	assert.Nil(t, input.Sqft)
}

func TestOutput_MarshalsEstimateVariable(t *testing.T) {
	output := Output{RentEstimate: &models.RentEstimate{
		EstimatedRent:   1250,
		ConfidenceScore: 0.75,
		Method:          "triangulated_hud_comps",
	}}

	raw, err := json.Marshal(output)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	estimate, ok := decoded["rentEstimate"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1250.0, estimate["estimated_rent"])
	assert.Equal(t, "triangulated_hud_comps", estimate["method"])
}
