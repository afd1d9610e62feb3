// internal/workers/estimation/estimate-rent/handler.go
package estimaterent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	stderrors "rent-estimator/internal/common/errors"
	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "estimate-rent"
)

var (
	ErrEstimationFailed = errors.New("ESTIMATION_FAILED")
)

// Estimator is the triangulation pipeline behind this worker.
type Estimator interface {
	Estimate(ctx context.Context, query models.PropertyQuery) (*models.RentEstimate, error)
}

type Handler struct {
	config    *Config
	estimator Estimator
	logger    logger.Logger
}

func NewHandler(config *Config, estimator Estimator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		estimator: estimator,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, string(stderrors.CodeOf(err)), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	estimate, err := h.estimator.Estimate(ctx, input.toQuery())
	if err != nil {
		return nil, err
	}

	h.logger.Info("rent estimated", map[string]interface{}{
		"method":     estimate.Method,
		"rent":       estimate.EstimatedRent,
		"confidence": estimate.ConfidenceScore,
		"compCount":  estimate.CompCount,
	})

	return &Output{RentEstimate: estimate}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
