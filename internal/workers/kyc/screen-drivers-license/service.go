package screendriverslicense

import (
	"context"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/kyc"
)

type Service struct {
	config    *Config
	screener  Screener
	artifacts artifacts.Sessions
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		screener:  deps.Screener,
		artifacts: deps.Artifacts,
		logger:    deps.Logger,
	}
}

// Execute returns the screen result even when the license is flagged. License
// extraction and verification both refuse a flagged result.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	doc, err := kyc.LoadDocument(ctx, s.artifacts.Session(input.SessionID), input.Document, input.ArtifactName)
	if err != nil {
		return nil, err
	}

	result, err := s.screener.Screen(ctx, doc)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Driver's license screened", map[string]interface{}{
		"sessionId":    input.SessionID,
		"isFraudulent": result.IsFraudulent,
		"reasons":      len(result.Reasons),
	})
	return &Output{LicenseScreen: result}, nil
}
