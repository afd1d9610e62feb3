// internal/backfill/backfill.go
package backfill

import (
	"context"
	"database/sql"
	"time"

	stderrors "rent-estimator/internal/common/errors"
	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/common/metrics"
	"rent-estimator/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// failedSentinel marks rows whose estimation failed so the pending filter
// stops reselecting them. Distinguishable from "never estimated" (NULL/0).
const failedSentinel = -1

// Estimator is the triangulation pipeline the daemon drives.
type Estimator interface {
	Estimate(ctx context.Context, query models.PropertyQuery) (*models.RentEstimate, error)
}

// Daemon fills estimated_rent on sale listings that never got one. Each
// pass is idempotent: updates key on listing id, and processed rows drop
// out of the pending filter, so restarts and concurrent runs are safe.
type Daemon struct {
	db           *sql.DB
	estimator    Estimator
	batchSize    int
	pollInterval time.Duration
	errorBackoff time.Duration
	logger       logger.Logger
}

func NewDaemon(db *sql.DB, estimator Estimator, batchSize int, pollInterval, errorBackoff time.Duration, log logger.Logger) *Daemon {
	return &Daemon{
		db:           db,
		estimator:    estimator,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		errorBackoff: errorBackoff,
		logger:       log.WithFields(map[string]interface{}{"component": "backfill"}),
	}
}

// Run loops until the context is cancelled: drain all pending rows in
// batches, then sleep for the poll interval. Errors back off briefly and
// retry rather than kill the daemon.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("backfill daemon started", map[string]interface{}{
		"batch_size":    d.batchSize,
		"poll_interval": d.pollInterval.String(),
	})

	for {
		pending, err := d.countPending(ctx)
		if err != nil {
			if !d.sleep(ctx, d.errorBackoff) {
				return ctx.Err()
			}
			continue
		}

		if pending == 0 {
			d.logger.Debug("no pending listings", nil)
			if !d.sleep(ctx, d.pollInterval) {
				return ctx.Err()
			}
			continue
		}

		d.logger.Info("pending listings found", map[string]interface{}{
			"count": pending,
		})

		for {
			processed, err := d.ProcessBatch(ctx)
			if err != nil {
				d.logger.Error("batch failed", map[string]interface{}{
					"error": err.Error(),
				})
				if !d.sleep(ctx, d.errorBackoff) {
					return ctx.Err()
				}
				continue
			}
			if processed == 0 {
				break
			}
		}

		if !d.sleep(ctx, d.pollInterval) {
			return ctx.Err()
		}
	}
}

type pendingListing struct {
	ID           uuid.UUID
	Query        models.PropertyQuery
	PropertyType string
}

const pendingFilter = `
	(estimated_rent IS NULL OR estimated_rent = 0)
	AND listing_status = 'FOR_SALE'
	AND latitude IS NOT NULL AND longitude IS NOT NULL`

func (d *Daemon) countPending(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT count(*) FROM listings WHERE`+pendingFilter).Scan(&count)
	if err != nil {
		return 0, stderrors.NewQueryExecutionFailedError("count_pending", err)
	}
	return count, nil
}

// ProcessBatch estimates one batch of pending listings and writes the
// results back. Returns how many rows it handled; zero means drained.
func (d *Daemon) ProcessBatch(ctx context.Context) (int, error) {
	listings, err := d.fetchBatch(ctx)
	if err != nil {
		return 0, err
	}
	if len(listings) == 0 {
		return 0, nil
	}

	completed := make([]uuid.UUID, 0, len(listings))
	rents := make([]float64, 0, len(listings))
	failed := make([]uuid.UUID, 0)

	for _, listing := range listings {
		estimate, err := d.estimator.Estimate(ctx, listing.Query)
		if err != nil || estimate.EstimatedRent <= 0 {
			// Zero-rent outcomes (non-rentable, insufficient data) get the
			// sentinel too, or the pending filter would reselect them forever.
			failed = append(failed, listing.ID)
			continue
		}
		completed = append(completed, listing.ID)
		rents = append(rents, estimate.EstimatedRent)
	}

	for i, id := range completed {
		if err := d.writeEstimate(ctx, id, rents[i]); err != nil {
			return 0, err
		}
	}
	if len(failed) > 0 {
		if err := d.markFailed(ctx, failed); err != nil {
			return 0, err
		}
	}

	metrics.BackfillProcessed.Add(float64(len(listings)))
	d.logger.Info("batch processed", map[string]interface{}{
		"completed": len(completed),
		"failed":    len(failed),
	})

	return len(listings), nil
}

func (d *Daemon) fetchBatch(ctx context.Context) ([]pendingListing, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, latitude, longitude, bedrooms, bathrooms, sqft, year_built,
		       zip_code, property_type
		FROM listings
		WHERE`+pendingFilter+`
		LIMIT $1`, d.batchSize)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("fetch_batch", err)
	}
	defer rows.Close()

	var listings []pendingListing
	for rows.Next() {
		var (
			listing   pendingListing
			bedrooms  sql.NullInt64
			bathrooms sql.NullFloat64
			sqft      sql.NullInt64
			yearBuilt sql.NullInt64
			zipCode   sql.NullString
			propType  sql.NullString
		)
		if err := rows.Scan(&listing.ID, &listing.Query.Latitude, &listing.Query.Longitude,
			&bedrooms, &bathrooms, &sqft, &yearBuilt, &zipCode, &propType); err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("scan_batch", err)
		}

		listing.Query.Bedrooms = int(bedrooms.Int64)
		if bathrooms.Valid {
			v := bathrooms.Float64
			listing.Query.Bathrooms = &v
		}
		if sqft.Valid {
			v := int(sqft.Int64)
			listing.Query.Sqft = &v
		}
		if yearBuilt.Valid {
			v := int(yearBuilt.Int64)
			listing.Query.YearBuilt = &v
		}
		listing.Query.ZipCode = zipCode.String
		listing.Query.PropertyType = propType.String
		listing.PropertyType = propType.String

		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

func (d *Daemon) writeEstimate(ctx context.Context, id uuid.UUID, rent float64) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE listings SET estimated_rent = $1 WHERE id = $2`, rent, id)
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("write_estimate", err)
	}
	return nil
}

func (d *Daemon) markFailed(ctx context.Context, ids []uuid.UUID) error {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	_, err := d.db.ExecContext(ctx,
		`UPDATE listings SET estimated_rent = $1 WHERE id = ANY($2::uuid[])`,
		failedSentinel, pq.Array(strIDs))
	if err != nil {
		return stderrors.NewQueryExecutionFailedError("mark_failed", err)
	}
	return nil
}

// sleep waits for the duration or the context, whichever ends first.
// Returns false on cancellation.
func (d *Daemon) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}
