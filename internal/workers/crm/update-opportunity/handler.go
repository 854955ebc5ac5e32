package updateopportunity

import (
	"context"
	"fmt"

	"pos-onboarding-workers/internal/common/camunda"
	"pos-onboarding-workers/internal/common/config"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/common/observability"
	"pos-onboarding-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "crm.opportunity.update"

type ServiceInterface interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

type Handler struct {
	config  *Config
	logger  logger.Logger
	service ServiceInterface
	runner  *camunda.JobRunner
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Logger        logger.Logger
	Observability *observability.Observability
	Annotator     Annotator
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Annotator == nil {
		return nil, fmt.Errorf("%s requires an opportunity annotator", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config: workerConfig,
		logger: log,
		service: NewService(ServiceDependencies{
			Annotator: opts.Annotator,
			Logger:    log,
		}, workerConfig),
		runner: camunda.NewJobRunner(TaskType, workerConfig.Timeout, log, opts.Observability),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, func(ctx context.Context, variables map[string]interface{}) (interface{}, error) {
		input, err := h.parseInput(variables)
		if err != nil {
			return nil, err
		}
		return h.Execute(ctx, input)
	})
}

func (h *Handler) parseInput(variables map[string]interface{}) (*Input, error) {
	var input Input
	if err := validation.Parse(variables, GetInputSchema(), &input); err != nil {
		return nil, err
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}
