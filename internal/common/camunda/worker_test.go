package camunda

import (
	"context"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"fundingos-workers/internal/common/metrics"
)

type recordingInstrumentation struct {
	spans    []string
	recorded []string
}

func (r *recordingInstrumentation) StartSpan(ctx context.Context, name string, _ ...attribute.KeyValue) (context.Context, trace.Span) {
	r.spans = append(r.spans, name)
	return noop.NewTracerProvider().Tracer("test").Start(ctx, name)
}

func (r *recordingInstrumentation) RecordJob(_ context.Context, taskType, status string, _ time.Duration) {
	r.recorded = append(r.recorded, taskType+":"+status)
}

func TestInstrument(t *testing.T) {
	inst := &recordingInstrumentation{}
	var seen int64
	var activeDuringHandle float64

	handler := Instrument("check-deadlines", func(_ worker.JobClient, job entities.Job) {
		seen = job.Key
		activeDuringHandle = testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues("check-deadlines"))
	}, inst)

	handler(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42}})

	assert.Equal(t, int64(42), seen)
	assert.Equal(t, float64(1), activeDuringHandle)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues("check-deadlines")))
	assert.Equal(t, []string{"job check-deadlines"}, inst.spans)
	assert.Equal(t, []string{"check-deadlines:handled"}, inst.recorded)
}

func TestInstrument_NilInstrumentation(t *testing.T) {
	called := false
	handler := Instrument("rank-opportunities", func(worker.JobClient, entities.Job) { called = true }, nil)
	handler(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1}})
	assert.True(t, called)
}
