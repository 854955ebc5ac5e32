package visualizedevice

import (
	"context"
	"errors"
	"fmt"

	"pos-onboarding-workers/internal/common/artifacts"
	apperrors "pos-onboarding-workers/internal/common/errors"
	"pos-onboarding-workers/internal/common/genai"
	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/logger"
)

type Service struct {
	config    *Config
	model     ImageModel
	artifacts artifacts.Sessions
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		model:     deps.Model,
		artifacts: deps.Artifacts,
		logger:    deps.Logger,
	}
}

// EditInstruction is the prompt sent with the stored photo.
func EditInstruction(system string) string {
	return fmt.Sprintf("Change ONLY the Point of Sale system in the image with the %s", system)
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !s.model.Configured() {
		return nil, apperrors.NewServiceNotConfiguredError("genai", "api key")
	}

	store := s.artifacts.Session(input.SessionID)
	photo, err := store.LoadArtifact(ctx, artifacts.UserPOSImage)
	if errors.Is(err, artifacts.ErrNotFound) {
		return nil, apperrors.NewArtifactNotFoundError(artifacts.UserPOSImage)
	}
	if err != nil {
		return nil, apperrors.NewArtifactStoreFailedError(err)
	}
	if _, err := genai.CheckImage(photo.Data); err != nil {
		return nil, apperrors.NewImageUnreadableError(err)
	}

	prompt := input.Prompt
	if prompt == "" {
		prompt = EditInstruction(input.SelectedSystem)
	}

	resp, err := s.model.GenerateContent(ctx, s.config.Model,
		[]genai.Part{genai.TextPart(prompt), genai.ImagePart(photo.Data, photo.MediaType)},
		genai.ModalityText, genai.ModalityImage)
	if err != nil {
		if errors.Is(err, httpclient.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewModelTimeoutError(s.config.Model)
		}
		return nil, apperrors.NewModelCallFailedError(s.config.Model, err)
	}

	out := &Output{Commentary: resp.Text(), Model: s.config.Model}
	image, ok := resp.FirstImage()
	if !ok {
		if out.Commentary == "" {
			return nil, apperrors.NewModelCallFailedError(s.config.Model, errors.New("response carried neither text nor image"))
		}
		s.logger.Warn("Image model returned no image", map[string]interface{}{
			"sessionId": input.SessionID,
			"system":    input.SelectedSystem,
		})
		return out, nil
	}

	mediaType := image.MimeType
	if mediaType == "" {
		mediaType = "image/png"
	}
	if err := store.SaveArtifact(ctx, artifacts.InStorePOSImage, image.Data, mediaType); err != nil {
		return nil, apperrors.NewArtifactStoreFailedError(err)
	}

	out.ImageProduced = true
	out.ImageArtifact = artifacts.InStorePOSImage
	s.logger.Info("In-store visualization generated", map[string]interface{}{
		"sessionId": input.SessionID,
		"system":    input.SelectedSystem,
		"bytes":     len(image.Data),
	})
	return out, nil
}
