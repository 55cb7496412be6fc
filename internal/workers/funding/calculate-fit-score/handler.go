// internal/workers/funding/calculate-fit-score/handler.go
package calculatefitscore

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"fundingos-workers/internal/common/errors"
	"fundingos-workers/internal/common/logger"
	"fundingos-workers/internal/common/metrics"
	"fundingos-workers/internal/fitscore"
	"fundingos-workers/internal/models"
	"fundingos-workers/internal/store"
)

const (
	TaskType = "calculate-fit-score"
)

type InputValidator interface {
	Validate(taskType string, variables map[string]interface{}) error
}

type Handler struct {
	config     *Config
	scorer     *fitscore.Scorer
	records    store.RecordStore
	validator  InputValidator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

// NewHandler wires the scorer to its record source. validator may be nil.
func NewHandler(config *Config, scorer *fitscore.Scorer, records store.RecordStore, validator InputValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		scorer:     scorer,
		records:    records,
		validator:  validator,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
		now:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	vars, err := job.GetVariablesAsMap()
	if err != nil {
		h.failJob(client, job, started, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}
	if h.validator != nil {
		if err := h.validator.Validate(TaskType, vars); err != nil {
			h.failJob(client, job, started, err)
			return
		}
	}

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		h.failJob(client, job, started, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, started, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.ObserveJob(TaskType, started, "")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	opp := input.Opportunity
	if opp == nil && input.OpportunityID != "" {
		var err error
		if opp, err = h.records.Opportunity(ctx, input.OpportunityID); err != nil {
			return nil, err
		}
	}

	proj := input.Project
	if proj == nil && input.ProjectID != "" {
		var err error
		if proj, err = h.records.Project(ctx, input.ProjectID); err != nil {
			return nil, err
		}
	}

	org := h.organization(ctx, input)

	result, err := h.scorer.Score(opp, proj, org)
	if stderrors.Is(err, fitscore.ErrInvalidInput) {
		return nil, errors.NewInvalidInputError("opportunity and project are both missing")
	}
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	metrics.ObserveFitScore(result.OverallScore, result.Eligible)
	h.logger.Info("fit score calculated", map[string]interface{}{
		"opportunityId": opportunityID(opp, input),
		"projectId":     projectID(proj, input),
		"score":         result.OverallScore,
		"eligible":      result.Eligible,
		"confidence":    result.Confidence,
	})

	return &Output{
		FitScore: result,
		ScoreID:  uuid.NewString(),
		ScoredAt: h.now().UTC().Format(time.RFC3339),
	}, nil
}

// organization is optional context; a failed lookup lowers confidence
// instead of failing the job.
func (h *Handler) organization(ctx context.Context, input *Input) *models.OrganizationProfile {
	if input.Organization != nil || input.OrganizationID == "" {
		return input.Organization
	}
	org, err := h.records.Organization(ctx, input.OrganizationID)
	if err != nil {
		h.logger.Warn("failed to fetch organization profile", map[string]interface{}{
			"organizationId": input.OrganizationID,
			"error":          err,
		})
		return nil
	}
	return org
}

func opportunityID(opp *models.Opportunity, input *Input) string {
	if opp != nil && opp.ID != "" {
		return opp.ID
	}
	return input.OpportunityID
}

func projectID(proj *models.Project, input *Input) string {
	if proj != nil && proj.ID != "" {
		return proj.ID
	}
	return input.ProjectID
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
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, started time.Time, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.ObserveJob(TaskType, started, string(stdErr.Code))
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
