package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name          string
		err           *StandardError
		expectedCode  string
		expectedRetry int
		category      string
	}{
		{name: "invalid input", err: NewInvalidInputError("both nil"), expectedCode: "INVALID_INPUT", expectedRetry: 0, category: "VALIDATION"},
		{name: "schema", err: NewInputValidationFailedError("message is required"), expectedCode: "INPUT_VALIDATION_FAILED", expectedRetry: 0, category: "VALIDATION"},
		{name: "not found", err: NewRecordNotFoundError("opportunity", "opp-1"), expectedCode: "RECORD_NOT_FOUND", expectedRetry: 0, category: "VALIDATION"},
		{name: "query failure", err: NewQueryExecutionFailedError("opportunity_by_id", fmt.Errorf("conn reset")), expectedCode: "QUERY_EXECUTION_FAILED", expectedRetry: 3, category: "DATABASE"},
		{name: "query timeout", err: NewQueryTimeoutError("recent_turns"), expectedCode: "QUERY_TIMEOUT", expectedRetry: 2, category: "DATABASE"},
		{name: "search failure", err: NewSearchQueryFailedError("opportunities", fmt.Errorf("503")), expectedCode: "SEARCH_QUERY_FAILED", expectedRetry: 3, category: "SEARCH"},
		{name: "index missing", err: NewIndexNotFoundError("opportunities"), expectedCode: "INDEX_NOT_FOUND", expectedRetry: 0, category: "SEARCH"},
		{name: "notification", err: NewNotificationSendFailedError("sns", fmt.Errorf("throttled")), expectedCode: "NOTIFICATION_SEND_FAILED", expectedRetry: 3, category: "NOTIFICATION"},
		{name: "cache", err: NewCacheUnavailableError(fmt.Errorf("dial")), expectedCode: "CACHE_UNAVAILABLE", expectedRetry: 3, category: "CACHE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.expectedCode, bpmn.Code)
			assert.Equal(t, tt.expectedRetry, bpmn.Retries)
			assert.Equal(t, tt.category, bpmn.ErrorVariables["errorCategory"])

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.expectedCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestRecordNotFoundCarriesMetadata(t *testing.T) {
	bpmn := ConvertToBPMNError(NewRecordNotFoundError("project", "proj-9"))
	assert.Equal(t, "project", bpmn.ErrorVariables["recordKind"])
	assert.Equal(t, "proj-9", bpmn.ErrorVariables["recordId"])
}

func TestAsStandardError(t *testing.T) {
	wrapped := fmt.Errorf("fetch opportunity: %w", NewRecordNotFoundError("opportunity", "x"))
	assert.Equal(t, ErrCodeRecordNotFound, AsStandardError(wrapped).Code)

	timeout := AsStandardError(fmt.Errorf("scan: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrCodeQueryTimeout, timeout.Code)
	assert.True(t, timeout.Retryable)

	internal := AsStandardError(stderrors.New("nil map"))
	assert.Equal(t, ErrCodeInternal, internal.Code)
	assert.False(t, internal.Retryable)
}

func TestStandardErrorUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewDatabaseConnectionFailedError(cause)
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "DATABASE_CONNECTION_FAILED")
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		jobRetries      int32
		expectedAction  Action
		expectedRetries int32
	}{
		{name: "business error is thrown", err: NewInvalidInputError(""), jobRetries: 3, expectedAction: ActionThrow, expectedRetries: 0},
		{name: "technical error retries", err: NewQueryExecutionFailedError("q", fmt.Errorf("x")), jobRetries: 3, expectedAction: ActionFail, expectedRetries: 2},
		{name: "budget caps retries", err: NewQueryTimeoutError("q"), jobRetries: 10, expectedAction: ActionFail, expectedRetries: 2},
		{name: "last attempt is thrown", err: NewSearchQueryFailedError("i", fmt.Errorf("x")), jobRetries: 1, expectedAction: ActionThrow, expectedRetries: 0},
		{name: "no retries left", err: NewSearchQueryFailedError("i", fmt.Errorf("x")), jobRetries: 0, expectedAction: ActionThrow, expectedRetries: 0},
		{name: "internal error", err: NewInternalError(fmt.Errorf("panic")), jobRetries: 3, expectedAction: ActionThrow, expectedRetries: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, retries := Decide(tt.err, tt.jobRetries)
			require.Equal(t, tt.expectedAction, action)
			assert.Equal(t, tt.expectedRetries, retries)
		})
	}
}
