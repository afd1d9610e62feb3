// internal/estimator/triangulate/triangulate.go
package triangulate

import (
	"context"
	"math"
	"sync"
	"time"

	stderrors "rent-estimator/internal/common/errors"
	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/common/metrics"
	"rent-estimator/internal/estimator/comps"
	"rent-estimator/internal/estimator/gate"
	"rent-estimator/internal/estimator/model"
	"rent-estimator/internal/models"
)

// BenchmarkSource answers the HUD SAFMR lookup. The boolean is false when
// no benchmark exists for the zip; lookups never fail hard.
type BenchmarkSource interface {
	Lookup(ctx context.Context, zipCode string, bedrooms int) (float64, bool)
}

// CompsMatcher runs the comparable pipeline. Failures degrade to an empty
// result inside the matcher.
type CompsMatcher interface {
	Match(ctx context.Context, query comps.CompQuery) comps.Result
}

// ModelSource runs inference against the frozen artifact, if one is loaded.
type ModelSource interface {
	Available() bool
	Predict(query models.PropertyQuery, hudRent *float64, gis *models.GISFeatures) (*model.Prediction, bool)
}

// ProximityProvider supplies GIS features for the model's feature vector.
type ProximityProvider interface {
	Features(ctx context.Context, lat, lon float64) (*models.GISFeatures, error)
}

// Triangulator orchestrates the three estimation sources and blends
// whatever subset answered into one estimate with a confidence score.
// Safe for concurrent use.
type Triangulator struct {
	benchmark     BenchmarkSource
	comps         CompsMatcher
	model         ModelSource
	proximity     ProximityProvider
	sourceTimeout time.Duration
	logger        logger.Logger
}

// NewTriangulator wires the sources. proximity may be nil; the model then
// runs on its GIS defaults.
func NewTriangulator(benchmark BenchmarkSource, matcher CompsMatcher, mlSource ModelSource, proximity ProximityProvider, sourceTimeout time.Duration, log logger.Logger) *Triangulator {
	return &Triangulator{
		benchmark:     benchmark,
		comps:         matcher,
		model:         mlSource,
		proximity:     proximity,
		sourceTimeout: sourceTimeout,
		logger:        log.WithFields(map[string]interface{}{"component": "triangulator"}),
	}
}

// Estimate produces a RentEstimate for the query. Missing sources reduce
// confidence, never fail the call; only malformed input returns an error.
func (t *Triangulator) Estimate(ctx context.Context, query models.PropertyQuery) (*models.RentEstimate, error) {
	start := time.Now()

	// Non-rentable land short-circuits everything, including validation:
	// the answer is certain no matter what else the query carries.
	if gate.IsNonRentable(query.PropertyType) {
		return t.finish(&models.RentEstimate{
			EstimatedRent:   0,
			ConfidenceScore: 1.0,
			Method:          models.MethodNonRentable,
			Comps:           []models.CompSummary{},
			PropertyType:    query.PropertyType,
			Reason:          "property type indicates no rentable structure",
		}, start), nil
	}

	if err := validateQuery(query); err != nil {
		return nil, err
	}

	// Stage one: benchmark and proximity features are independent.
	var (
		hudRent float64
		hudOK   bool
		gis     *models.GISFeatures
	)
	t.fanOut(ctx,
		func(ctx context.Context) {
			if query.ZipCode != "" {
				hudRent, hudOK = t.benchmark.Lookup(ctx, query.ZipCode, query.Bedrooms)
			}
		},
		func(ctx context.Context) {
			if t.proximity == nil {
				return
			}
			if features, err := t.proximity.Features(ctx, query.Latitude, query.Longitude); err == nil {
				gis = features
			}
		},
	)

	var hudPtr *float64
	if hudOK && hudRent > 0 {
		hudPtr = &hudRent
	}

	// Stage two: comps and model both condition on the benchmark.
	var (
		compsResult comps.Result
		prediction  *model.Prediction
		predicted   bool
	)
	t.fanOut(ctx,
		func(ctx context.Context) {
			compQuery := comps.CompQuery{
				Latitude:  query.Latitude,
				Longitude: query.Longitude,
				Bedrooms:  query.Bedrooms,
				Bathrooms: query.Bathrooms,
				Sqft:      query.Sqft,
				YearBuilt: query.YearBuilt,
			}
			if hudPtr != nil {
				compQuery.BenchmarkRent = *hudPtr
			}
			compsResult = t.comps.Match(ctx, compQuery)
		},
		func(_ context.Context) {
			if t.model != nil && t.model.Available() {
				prediction, predicted = t.model.Predict(query, hudPtr, gis)
			}
		},
	)

	values := map[models.Source]float64{}
	if hudPtr != nil {
		values[models.SourceHud] = *hudPtr
	}
	if compsResult.Value != nil {
		values[models.SourceComps] = *compsResult.Value
	}
	var mlPtr *float64
	if predicted && prediction.Estimate > 0 {
		v := float64(prediction.Estimate)
		values[models.SourceML] = v
		mlPtr = &v
	}
	t.recordAvailability(values)

	if len(values) == 0 {
		return t.finish(&models.RentEstimate{
			EstimatedRent:   0,
			ConfidenceScore: 0.1,
			Method:          models.MethodInsufficientData,
			Comps:           []models.CompSummary{},
			Reason:          "no benchmark, comparable, or model data available",
		}, start), nil
	}

	weights := normalize(baseWeights(values, compsResult.Count))
	estimate := blend(values, weights)

	score := confidence(values, compsResult.Count)
	variance := variancePct(values)
	if variance > varianceThresholdPct {
		score *= variancePenalty
	}

	var variancePtr *float64
	if variance > 0 {
		rounded := math.Round(variance*10) / 10
		variancePtr = &rounded
	}

	return t.finish(&models.RentEstimate{
		EstimatedRent:   estimate,
		ConfidenceScore: clamp01(score),
		Method:          methodLabel(values),
		HudFMR:          hudPtr,
		CompsValue:      compsResult.Value,
		MLPrediction:    mlPtr,
		CompCount:       compsResult.Count,
		Comps:           compsResult.Comps,
		PropertyType:    query.PropertyType,
		VariancePct:     variancePtr,
		WeightsUsed:     weights.Tags(),
	}, start), nil
}

// fanOut runs the given stages concurrently, each under its own
// per-source timeout, and waits for all of them.
func (t *Triangulator) fanOut(ctx context.Context, stages ...func(context.Context)) {
	var wg sync.WaitGroup
	for _, stage := range stages {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			stageCtx := ctx
			if t.sourceTimeout > 0 {
				var cancel context.CancelFunc
				stageCtx, cancel = context.WithTimeout(ctx, t.sourceTimeout)
				defer cancel()
			}
			run(stageCtx)
		}(stage)
	}
	wg.Wait()
}

func (t *Triangulator) recordAvailability(values map[models.Source]float64) {
	for _, s := range models.AllSources {
		available := "false"
		if _, ok := values[s]; ok {
			available = "true"
		}
		metrics.SourceAvailable.WithLabelValues(s.String(), available).Inc()
	}
}

func (t *Triangulator) finish(estimate *models.RentEstimate, start time.Time) *models.RentEstimate {
	elapsed := time.Since(start)
	metrics.EstimatesTotal.WithLabelValues(estimate.Method).Inc()
	metrics.EstimateDuration.WithLabelValues(estimate.Method).Observe(elapsed.Seconds())

	t.logger.Info("estimate produced", map[string]interface{}{
		"method":      estimate.Method,
		"rent":        estimate.EstimatedRent,
		"confidence":  estimate.ConfidenceScore,
		"comp_count":  estimate.CompCount,
		"duration_ms": elapsed.Milliseconds(),
	})
	return estimate
}

func validateQuery(query models.PropertyQuery) error {
	if query.Latitude == 0 {
		return stderrors.NewMissingCoordinateError("latitude")
	}
	if query.Longitude == 0 {
		return stderrors.NewMissingCoordinateError("longitude")
	}
	if query.Bedrooms <= 0 {
		return stderrors.NewMissingBedroomsError()
	}
	return nil
}
