package updateopportunity

import (
	"context"

	"pos-onboarding-workers/internal/common/errors"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/opportunity"
)

type Service struct {
	config    *Config
	annotator Annotator
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		annotator: deps.Annotator,
		logger:    deps.Logger,
	}
}

// Execute adds the comment before changing the stage. A failed annotation is
// reported in the output and never fails the job.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Comment == "" && input.Stage == "" {
		return nil, errors.NewValidationFailedError("comment or stage is required")
	}

	ref := opportunity.Ref{ID: input.OpportunityID, BusinessName: input.BusinessName}
	out := &Output{Acknowledged: true}

	if input.Comment != "" {
		ack := s.annotator.AddComment(ctx, ref, input.Comment)
		out.Comment = &ack
		out.record(ack)
	}
	if input.Stage != "" {
		ack := s.annotator.UpdateStage(ctx, ref, input.Stage)
		out.Stage = &ack
		out.record(ack)
	}

	s.logger.Info("Opportunity annotated", map[string]interface{}{
		"businessName":  input.BusinessName,
		"opportunityId": out.OpportunityID,
		"stage":         input.Stage,
		"acknowledged":  out.Acknowledged,
	})
	return out, nil
}

func (o *Output) record(ack opportunity.Ack) {
	if !ack.Acknowledged {
		o.Acknowledged = false
	}
	if o.OpportunityID == "" {
		o.OpportunityID = ack.OpportunityID
	}
}
