package verifyidentity

import (
	"context"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/kyc"
)

type Service struct {
	config    *Config
	verifier  Verifier
	artifacts artifacts.Sessions
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		verifier:  deps.Verifier,
		artifacts: deps.Artifacts,
		logger:    deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	subject := kyc.Subject{
		SessionID:     input.SessionID,
		BusinessName:  input.BusinessName,
		OpportunityID: input.OpportunityID,
	}

	var (
		outcome *kyc.Outcome
		err     error
	)
	if input.fullRun() {
		outcome, err = s.run(ctx, subject, input)
	} else {
		outcome, err = s.verifier.Decide(ctx, kyc.DecideRequest{
			Subject:   subject,
			Screen:    input.LicenseScreen,
			License:   input.LicenseFields,
			Statement: input.StatementFields,
		})
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Identity verification decided", map[string]interface{}{
		"sessionId": input.SessionID,
		"outcome":   outcome.Outcome,
		"fullRun":   input.fullRun(),
	})
	return &Output{Outcome: *outcome}, nil
}

func (s *Service) run(ctx context.Context, subject kyc.Subject, input *Input) (*kyc.Outcome, error) {
	store := s.artifacts.Session(input.SessionID)

	license, err := kyc.LoadDocument(ctx, store, nil, input.LicenseArtifact)
	if err != nil {
		return nil, err
	}
	statement, err := kyc.LoadDocument(ctx, store, nil, input.StatementArtifact)
	if err != nil {
		return nil, err
	}

	return s.verifier.Run(ctx, kyc.RunRequest{Subject: subject, License: license, Statement: statement})
}
