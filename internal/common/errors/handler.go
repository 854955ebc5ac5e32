// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler turns worker failures into Zeebe fail or throw-error commands.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails the job while retries remain for retryable errors and
// throws a BPMN error otherwise, so the process can re-prompt the user.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) *BPMNError {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	if remaining := RemainingRetries(stdErr, job.GetRetries()); remaining > 0 {
		h.failJobWithRetries(ctx, client, job, bpmnErr, remaining)
	} else {
		h.throwBPMNError(ctx, client, job, bpmnErr)
	}
	return bpmnErr
}

// RemainingRetries returns how many retries the job should keep after this
// failure. Zero means the error must be thrown instead.
func RemainingRetries(stdErr *StandardError, jobRetries int32) int {
	if !stdErr.Retryable {
		return 0
	}
	recommended := GetRetryCount(stdErr.Code)
	if recommended == 0 {
		return 0
	}
	remaining := int(jobRetries) - 1
	if remaining > recommended {
		remaining = recommended
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) {
	cmd := client.NewFailJobCommand().
		JobKey(job.GetKey()).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromString(variablesJSON(bpmnErr))
	if err != nil {
		_, _ = cmd.Send(ctx)
		return
	}
	if _, err := withVars.Send(ctx); err != nil {
		h.logger.Error("Failed to send fail job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.GetKey()).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromString(variablesJSON(bpmnErr))
	if err != nil {
		_, _ = cmd.Send(ctx)
		return
	}
	if _, err := withVars.Send(ctx); err != nil {
		h.logger.Error("Failed to send throw error command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
	}
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"jobType":            job.GetType(),
		"errorCode":          string(stdErr.Code),
		"errorKind":          bpmnErr.Kind,
		"message":            bpmnErr.Message,
		"details":            stdErr.Details,
		"retryable":          stdErr.Retryable,
		"errorCategory":      GetErrorCategory(stdErr.Code),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})
}

func variablesJSON(bpmnErr *BPMNError) string {
	data, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		return "{}"
	}
	return string(data)
}
