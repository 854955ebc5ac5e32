package identifydevice

import (
	"context"
	"errors"

	"pos-onboarding-workers/internal/common/artifacts"
	apperrors "pos-onboarding-workers/internal/common/errors"
	"pos-onboarding-workers/internal/common/genai"
	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/logger"
)

const identifyInstruction = `You are an expert in identifying the make and model of Point of Sale systems in an image. Identify the Point of Sale (POS) make and model in the image.
If the image does not show a POS system then do not attempt to identify it.`

type Service struct {
	config    *Config
	model     Model
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

// Execute identifies the terminal in the photo and keeps the photo as
// user:user_pos_image.png so it can be edited later in the session.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !s.model.Configured() {
		return nil, apperrors.NewServiceNotConfiguredError("genai", "api key")
	}

	store := s.artifacts.Session(input.SessionID)
	photo, err := artifacts.Resolve(ctx, store, input.Image, "")
	switch {
	case errors.Is(err, artifacts.ErrInvalidInline):
		return nil, apperrors.NewImageUnreadableError(err)
	case err != nil:
		return nil, apperrors.NewArtifactStoreFailedError(err)
	case photo == nil || len(photo.Data) == 0:
		return nil, apperrors.NewImageMissingError()
	}

	format, err := genai.CheckImage(photo.Data)
	if err != nil {
		return nil, apperrors.NewImageUnreadableError(err)
	}
	mediaType := photo.MediaType
	if mediaType == "" {
		mediaType = "image/" + format
	}

	parts := []genai.Part{genai.TextPart(identifyInstruction), genai.ImagePart(photo.Data, mediaType)}
	if input.Question != "" {
		parts = append(parts, genai.TextPart(input.Question))
	}

	resp, err := s.model.GenerateContent(ctx, s.config.Model, parts)
	if err != nil {
		return nil, modelError(s.config.Model, err)
	}

	if err := store.SaveArtifact(ctx, artifacts.UserPOSImage, photo.Data, mediaType); err != nil {
		return nil, apperrors.NewArtifactStoreFailedError(err)
	}

	s.logger.Info("Terminal photo identified", map[string]interface{}{
		"sessionId": input.SessionID,
		"format":    format,
		"model":     s.config.Model,
	})
	return &Output{
		Description:   resp.Text(),
		ImageArtifact: artifacts.UserPOSImage,
		Model:         s.config.Model,
	}, nil
}

func modelError(model string, err error) error {
	if errors.Is(err, httpclient.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewModelTimeoutError(model)
	}
	return apperrors.NewModelCallFailedError(model, err)
}
