package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveJob(t *testing.T) {
	beforeOK := testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test"))
	beforeFail := testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-test", "QUERY_TIMEOUT"))

	ObserveJob("metrics-test", time.Now().Add(-50*time.Millisecond), "")
	ObserveJob("metrics-test", time.Now(), "QUERY_TIMEOUT")

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test")))
	assert.Equal(t, beforeFail+1, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-test", "QUERY_TIMEOUT")))
}

func TestObserveIntent(t *testing.T) {
	before := testutil.ToFloat64(IntentClassifications.WithLabelValues("check_deadlines", "true"))
	ObserveIntent("check_deadlines", true)
	assert.Equal(t, before+1, testutil.ToFloat64(IntentClassifications.WithLabelValues("check_deadlines", "true")))
}

func TestObserveFitScore(t *testing.T) {
	ObserveFitScore(85, true)
	ObserveFitScore(12, false)
	assert.Equal(t, 2, testutil.CollectAndCount(FitScores))
}
