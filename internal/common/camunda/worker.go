// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"fundingos-workers/internal/common/config"
	"fundingos-workers/internal/common/metrics"
)

// Instrumentation is satisfied by *observability.Observability.
type Instrumentation interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

// Register opens a job worker for taskType. It returns nil when the worker
// is disabled in configuration.
func Register(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler worker.JobHandler,
	inst Instrumentation,
	log *zap.Logger,
) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, inst)).
		Name(taskType).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return jobWorker
}

// Instrument wraps handler with the active-jobs gauge and a span per job.
// Outcome counters are recorded by the handlers themselves.
func Instrument(taskType string, handler worker.JobHandler, inst Instrumentation) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		gauge := metrics.WorkerJobsActive.WithLabelValues(taskType)
		gauge.Inc()
		defer gauge.Dec()

		started := time.Now()
		if inst == nil {
			handler(client, job)
			return
		}

		ctx, span := inst.StartSpan(context.Background(), "job "+taskType,
			attribute.String("taskType", taskType),
			attribute.Int64("jobKey", job.Key),
			attribute.Int64("processInstanceKey", job.ProcessInstanceKey),
		)
		defer span.End()

		handler(client, job)
		inst.RecordJob(ctx, taskType, "handled", time.Since(started))
	}
}

// Close stops every non-nil worker.
func Close(workers ...worker.JobWorker) {
	for _, w := range workers {
		if w != nil {
			w.Close()
		}
	}
}
