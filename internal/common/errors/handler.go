package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

type Action string

const (
	ActionFail  Action = "fail"
	ActionThrow Action = "throw"
)

type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decide picks between failing the job so the engine retries it and throwing
// a BPMN error for the process to catch. A failed job keeps at most the
// code's retry budget; once the job has no attempts left the error is thrown.
func Decide(stdErr *StandardError, jobRetries int32) (Action, int32) {
	budget := int32(GetRetryCount(stdErr.Code))
	if !stdErr.Retryable || budget == 0 {
		return ActionThrow, 0
	}
	remaining := jobRetries - 1
	if remaining <= 0 {
		return ActionThrow, 0
	}
	if remaining > budget {
		remaining = budget
	}
	return ActionFail, remaining
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	action, retries := Decide(stdErr, job.Retries)

	h.logError(job, stdErr, bpmnErr, action, retries)

	vars, _ := json.Marshal(bpmnErr.ToErrorVariables())

	switch action {
	case ActionFail:
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(string(stdErr.Code) + ": " + bpmnErr.Message)
		if withVars, vErr := cmd.VariablesFromString(string(vars)); vErr == nil {
			_, _ = withVars.Send(ctx)
			return
		}
		_, _ = cmd.Send(ctx)
	default:
		cmd := client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(bpmnErr.Code).
			ErrorMessage(bpmnErr.Message)
		if withVars, vErr := cmd.VariablesFromString(string(vars)); vErr == nil {
			_, _ = withVars.Send(ctx)
			return
		}
		_, _ = cmd.Send(ctx)
	}
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError, action Action, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":        job.Key,
		"jobType":       job.Type,
		"workflowKey":   job.ProcessInstanceKey,
		"errorCode":     string(stdErr.Code),
		"bpmnErrorCode": bpmnErr.Code,
		"message":       bpmnErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"action":        string(action),
		"retries":       retries,
	})
}
