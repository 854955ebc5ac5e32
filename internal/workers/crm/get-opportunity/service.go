package getopportunity

import (
	"context"

	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/opportunity"
)

type Service struct {
	config *Config
	finder Finder
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		finder: deps.Finder,
		logger: deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	deal, ack := s.finder.Details(ctx, opportunity.Ref{ID: input.OpportunityID, BusinessName: input.BusinessName})

	s.logger.Debug("Opportunity lookup", map[string]interface{}{
		"businessName": input.BusinessName,
		"found":        deal != nil,
	})
	return &Output{
		Found:       deal != nil,
		Opportunity: deal,
		Message:     ack.Message,
		Reason:      ack.Reason,
	}, nil
}
