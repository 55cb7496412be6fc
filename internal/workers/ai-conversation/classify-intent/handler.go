package classifyintent

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"fundingos-workers/internal/common/errors"
	"fundingos-workers/internal/common/logger"
	"fundingos-workers/internal/common/metrics"
	"fundingos-workers/internal/intent"
	"fundingos-workers/internal/models"
	"fundingos-workers/internal/store"
)

const (
	TaskType = "classify-intent"
)

type InputValidator interface {
	Validate(taskType string, variables map[string]interface{}) error
}

type Handler struct {
	config        *Config
	classifier    *intent.Classifier
	conversations store.ConversationStore
	validator     InputValidator
	errHandler    *errors.ErrorHandler
	logger        logger.Logger
	now           func() time.Time
}

// NewHandler builds the handler. conversations and validator may be nil.
func NewHandler(
	config *Config,
	classifier *intent.Classifier,
	conversations store.ConversationStore,
	validator InputValidator,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:        config,
		classifier:    classifier,
		conversations: conversations,
		validator:     validator,
		errHandler:    errors.NewErrorHandler(log),
		logger:        log,
		now:           time.Now,
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

	history := input.History
	if history == nil {
		history = h.loadHistory(ctx, input.ConversationID)
	}

	result := h.classifier.Classify(input.Message, history, h.referenceTime(input.SentAt))
	metrics.ObserveIntent(string(result.Intent), result.IsFollowUp)

	h.logger.Info("intent classified", map[string]interface{}{
		"conversationId": input.ConversationID,
		"intent":         string(result.Intent),
		"isFollowUp":     result.IsFollowUp,
		"matchedRule":    result.MatchedRule,
		"historySize":    len(history),
	})

	return &Output{
		Intent:       result.Intent,
		IsFollowUp:   result.IsFollowUp,
		ResponseKind: result.ResponseKind,
		MatchedRule:  result.MatchedRule,
		HistorySize:  len(history),
	}, nil
}

// loadHistory degrades to no history when the store is unavailable, which
// only costs follow-up detection.
func (h *Handler) loadHistory(ctx context.Context, conversationID string) []models.Turn {
	if h.conversations == nil || conversationID == "" {
		return nil
	}
	turns, err := h.conversations.RecentTurns(ctx, conversationID, h.config.HistoryLimit)
	if err != nil {
		h.logger.Warn("failed to load conversation history", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err,
		})
		return nil
	}
	return turns
}

func (h *Handler) referenceTime(sentAt string) time.Time {
	if sentAt != "" {
		if t, err := time.Parse(time.RFC3339, sentAt); err == nil {
			return t
		}
		h.logger.Warn("ignoring unparseable sentAt", map[string]interface{}{"sentAt": sentAt})
	}
	return h.now()
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
