// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"pos-onboarding-workers/internal/common/config"
	"pos-onboarding-workers/internal/common/errors"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/common/metrics"
	"pos-onboarding-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// StartWorker opens a job worker for taskType. It returns nil when the worker
// is disabled.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler worker.JobHandler, log *zap.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(fmt.Sprintf("%s-worker", taskType)).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return jobWorker
}

// ExecuteFunc turns the job variables into the object the job is completed with.
type ExecuteFunc func(ctx context.Context, variables map[string]interface{}) (interface{}, error)

// JobRunner carries the job lifecycle shared by every handler: metrics, the
// per-job timeout, completion and error routing.
type JobRunner struct {
	taskType string
	timeout  time.Duration
	logger   logger.Logger
	errors   *errors.ErrorHandler
	obs      *observability.Observability
}

func NewJobRunner(taskType string, timeout time.Duration, log logger.Logger, obs *observability.Observability) *JobRunner {
	return &JobRunner{
		taskType: taskType,
		timeout:  timeout,
		logger:   log,
		errors:   errors.NewErrorHandler(log),
		obs:      obs,
	}
}

func (r *JobRunner) Run(client worker.JobClient, job entities.Job, execute ExecuteFunc) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.taskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(r.taskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	log := r.logger.With(map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})
	log.Info("Processing job", nil)

	output, err := r.execute(ctx, job, execute)
	if err != nil {
		stdErr := errors.AsStandardError(err)
		metrics.WorkerJobsFailed.WithLabelValues(r.taskType, string(stdErr.Code)).Inc()
		r.obs.RecordJobProcessed(ctx, r.taskType, "failed")
		r.errors.HandleJobError(ctx, client, job, stdErr)
		return
	}

	if err := r.complete(ctx, client, job, output); err != nil {
		log.Error("Failed to complete job", map[string]interface{}{"error": err.Error()})
		metrics.WorkerJobsFailed.WithLabelValues(r.taskType, "COMPLETE_FAILED").Inc()
		return
	}

	elapsed := time.Since(startTime)
	metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(r.taskType).Observe(elapsed.Seconds())
	r.obs.RecordJobProcessed(ctx, r.taskType, "completed")
	r.obs.RecordJobDuration(ctx, r.taskType, elapsed, "completed")

	log.Info("Job completed", map[string]interface{}{"durationMs": elapsed.Milliseconds()})
}

func (r *JobRunner) execute(ctx context.Context, job entities.Job, execute ExecuteFunc) (interface{}, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	return execute(ctx, variables)
}

func (r *JobRunner) complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("encode job result: %w", err)
	}
	return SendWithRetry(ctx, DefaultRetryConfig, "complete job", func(ctx context.Context) error {
		_, err := request.Send(ctx)
		return err
	})
}
