// internal/workers/funding/rank-opportunities/handler.go
package rankopportunities

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"fundingos-workers/internal/common/errors"
	"fundingos-workers/internal/common/logger"
	"fundingos-workers/internal/common/metrics"
	"fundingos-workers/internal/fitscore"
	"fundingos-workers/internal/models"
	"fundingos-workers/internal/store"
)

const (
	TaskType = "rank-opportunities"
)

type InputValidator interface {
	Validate(taskType string, variables map[string]interface{}) error
}

type Handler struct {
	config     *Config
	scorer     *fitscore.Scorer
	records    store.RecordStore
	search     store.OpportunitySearcher
	validator  InputValidator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(
	config *Config,
	scorer *fitscore.Scorer,
	records store.RecordStore,
	search store.OpportunitySearcher,
	validator InputValidator,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		scorer:     scorer,
		records:    records,
		search:     search,
		validator:  validator,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
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
	start := time.Now()

	proj := input.Project
	if proj == nil && input.ProjectID != "" {
		var err error
		if proj, err = h.records.Project(ctx, input.ProjectID); err != nil {
			return nil, err
		}
	}

	query := searchQuery(input, proj, h.config.CandidatePool)
	if query.Text == "" && len(query.Categories) == 0 {
		return nil, errors.NewInvalidInputError("a project or a query is required")
	}

	org := input.Organization
	if org == nil && input.OrganizationID != "" {
		var err error
		if org, err = h.records.Organization(ctx, input.OrganizationID); err != nil {
			h.logger.Warn("failed to fetch organization profile", map[string]interface{}{
				"organizationId": input.OrganizationID,
				"error":          err,
			})
			org = nil
		}
	}

	found, err := h.search.SearchOpportunities(ctx, query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ranked []RankedOpportunity
	for i := range found.Opportunities {
		opp := &found.Opportunities[i]
		if opp.ID == "" || seen[opp.ID] {
			continue
		}
		seen[opp.ID] = true

		result, err := h.scorer.Score(opp, proj, org)
		if err != nil {
			continue
		}
		metrics.ObserveFitScore(result.OverallScore, result.Eligible)

		item := RankedOpportunity{
			OpportunityID: opp.ID,
			Title:         opp.Title,
			Sponsor:       opp.Sponsor,
			FitScore:      result,
		}
		if opp.Deadline != nil {
			item.Deadline = opp.Deadline.UTC().Format(time.RFC3339)
		}
		ranked = append(ranked, item)
	}

	sortRanked(ranked)

	total := len(ranked)
	if limit := h.limit(input.MaxResults); len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	if ranked == nil {
		ranked = []RankedOpportunity{}
	}

	h.logger.Info("opportunities ranked", map[string]interface{}{
		"projectId":  input.ProjectID,
		"candidates": total,
		"returned":   len(ranked),
		"totalHits":  found.TotalHits,
	})

	return &Output{
		RankedOpportunities: ranked,
		TotalCandidates:     total,
		TotalHits:           found.TotalHits,
		ProcessingTimeMs:    time.Since(start).Milliseconds(),
	}, nil
}

// sortRanked orders eligible before ineligible, then by score, confidence
// and id so equal inputs always rank the same way.
func sortRanked(ranked []RankedOpportunity) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].FitScore, ranked[j].FitScore
		if a.Eligible != b.Eligible {
			return a.Eligible
		}
		if a.OverallScore != b.OverallScore {
			return a.OverallScore > b.OverallScore
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return ranked[i].OpportunityID < ranked[j].OpportunityID
	})
}

func (h *Handler) limit(requested int) int {
	switch {
	case requested <= 0:
		return h.config.DefaultResults
	case requested > h.config.MaxResults:
		return h.config.MaxResults
	}
	return requested
}

func searchQuery(input *Input, proj *models.Project, pool int) store.SearchQuery {
	q := store.SearchQuery{Text: strings.TrimSpace(input.Query), Size: pool}
	if proj == nil {
		return q
	}
	if q.Text == "" {
		q.Text = strings.TrimSpace(strings.Join([]string{proj.DisplayName(), proj.Description}, " "))
	}
	q.Categories = models.NormalizeList(proj.Category)
	return q
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
