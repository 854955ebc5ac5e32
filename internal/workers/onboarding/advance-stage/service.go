package advancestage

import (
	"context"
	stderrors "errors"
	"fmt"

	"pos-onboarding-workers/internal/common/errors"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/onboarding"

	"github.com/google/uuid"
)

type Service struct {
	config  *Config
	machine Advancer
	logger  logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:  config,
		machine: deps.Machine,
		logger:  deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	event, ok := onboarding.ParseEvent(input.Event)
	if !ok {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("unknown event %q", input.Event))
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
		s.logger.Debug("Starting new onboarding session", map[string]interface{}{"sessionId": sessionID})
	}

	result, err := s.machine.Apply(ctx, onboarding.Command{
		SessionID:     sessionID,
		BusinessName:  input.BusinessName,
		OpportunityID: input.OpportunityID,
		Event:         event,
	})
	if err != nil {
		var stdErr *errors.StandardError
		if stderrors.As(err, &stdErr) {
			return nil, stdErr
		}
		return nil, errors.NewDatabaseQueryFailedError("advance onboarding session", err)
	}

	return &Output{
		SessionID:     result.Session.SessionID,
		PreviousStage: string(result.Transition.From),
		Stage:         string(result.Transition.Next),
		Owner:         result.Transition.Owner,
		Message:       result.Transition.Message,
		SideEffects:   result.Transition.SideEffects,
		Opportunity:   result.Opportunity,
	}, nil
}
