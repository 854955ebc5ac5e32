package extractbankstatement

import (
	"context"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/kyc"
)

type Service struct {
	config    *Config
	extractor FieldExtractor
	artifacts artifacts.Sessions
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		extractor: deps.Extractor,
		artifacts: deps.Artifacts,
		logger:    deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	doc, err := kyc.LoadDocument(ctx, s.artifacts.Session(input.SessionID), input.Document, input.ArtifactName)
	if err != nil {
		return nil, err
	}

	fields, err := s.extractor.Extract(ctx, kyc.BankStatement, doc)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bank statement extracted", map[string]interface{}{
		"sessionId":  input.SessionID,
		"hasName":    fields.FullName != "",
		"hasAddress": fields.Address != "",
	})
	return &Output{StatementFields: fields}, nil
}
