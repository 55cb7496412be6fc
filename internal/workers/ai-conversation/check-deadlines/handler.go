package checkdeadlines

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"fundingos-workers/internal/common/errors"
	"fundingos-workers/internal/common/logger"
	"fundingos-workers/internal/common/metrics"
	"fundingos-workers/internal/models"
	"fundingos-workers/internal/store"
)

const (
	TaskType = "check-deadlines"

	UrgencyUrgent   = "urgent"
	UrgencySoon     = "soon"
	UrgencyUpcoming = "upcoming"

	maxWithinDays = 365
	maxLimit      = 200
)

type InputValidator interface {
	Validate(taskType string, variables map[string]interface{}) error
}

// AlertPublisher is satisfied by *aws.SNSClient.
type AlertPublisher interface {
	PublishDeadlineAlert(ctx context.Context, alert models.DeadlineAlert) (string, error)
}

type Handler struct {
	config     *Config
	deadlines  store.DeadlineStore
	publisher  AlertPublisher
	validator  InputValidator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

// NewHandler builds the handler. A nil publisher turns notify requests into
// alerts with status "disabled".
func NewHandler(
	config *Config,
	deadlines store.DeadlineStore,
	publisher AlertPublisher,
	validator InputValidator,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		deadlines:  deadlines,
		publisher:  publisher,
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

	now := h.now().UTC()
	within := bounded(input.WithinDays, h.config.WithinDays, maxWithinDays)
	limit := bounded(input.Limit, h.config.Limit, maxLimit)

	opps, err := h.deadlines.UpcomingDeadlines(ctx, store.DeadlineQuery{
		OrganizationID: input.OrganizationID,
		From:           now,
		Until:          now.AddDate(0, 0, within),
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}

	out := &Output{Deadlines: []Deadline{}, CheckedAt: now.Format(time.RFC3339)}
	for _, opp := range opps {
		if opp.Deadline == nil {
			continue
		}
		days := daysUntil(now, *opp.Deadline)
		out.Deadlines = append(out.Deadlines, Deadline{
			OpportunityID: opp.ID,
			Title:         opp.Title,
			Sponsor:       opp.Sponsor,
			Deadline:      opp.Deadline.UTC().Format(time.RFC3339),
			DaysRemaining: days,
			Urgency:       h.urgency(days),
		})
	}

	if input.Notify && len(out.Deadlines) > 0 {
		if err := h.publishAlerts(ctx, input.OrganizationID, now, out); err != nil {
			return nil, err
		}
	}

	h.logger.Info("deadlines checked", map[string]interface{}{
		"organizationId":  input.OrganizationID,
		"withinDays":      within,
		"found":           len(out.Deadlines),
		"alertsPublished": out.AlertsPublished,
	})
	return out, nil
}

// publishAlerts sends one alert per deadline. Individual failures are
// recorded on the alert; the job fails only when every send failed.
func (h *Handler) publishAlerts(ctx context.Context, orgID string, now time.Time, out *Output) error {
	var lastErr error
	for _, d := range out.Deadlines {
		alert := models.DeadlineAlert{
			ID:             uuid.NewString(),
			OpportunityID:  d.OpportunityID,
			OrganizationID: orgID,
			Title:          d.Title,
			Deadline:       d.Deadline,
			DaysRemaining:  d.DaysRemaining,
			Urgency:        d.Urgency,
			Channel:        "sns",
			CreatedAt:      now.Format(time.RFC3339),
		}

		if h.publisher == nil {
			alert.Status = "disabled"
		} else if _, err := h.publisher.PublishDeadlineAlert(ctx, alert); err != nil {
			h.logger.Warn("failed to publish deadline alert", map[string]interface{}{
				"opportunityId": d.OpportunityID,
				"error":         err,
			})
			alert.Status = "failed"
			lastErr = err
		} else {
			alert.Status = "sent"
			out.AlertsPublished++
			metrics.DeadlineAlertsPublished.WithLabelValues(d.Urgency).Inc()
		}
		out.Alerts = append(out.Alerts, alert)
	}

	if lastErr != nil && out.AlertsPublished == 0 {
		return errors.NewNotificationSendFailedError("sns", lastErr)
	}
	return nil
}

func (h *Handler) urgency(days int) string {
	switch {
	case days <= h.config.UrgentDays:
		return UrgencyUrgent
	case days <= 2*h.config.UrgentDays:
		return UrgencySoon
	}
	return UrgencyUpcoming
}

// daysUntil rounds partial days up, so a deadline later today is 1 day away.
func daysUntil(now, deadline time.Time) int {
	d := deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

func bounded(requested, fallback, max int) int {
	switch {
	case requested <= 0:
		return fallback
	case requested > max:
		return max
	}
	return requested
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
