package identifydevice

import (
	"context"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/genai"
	"pos-onboarding-workers/internal/common/logger"
)

type Input struct {
	SessionID string                `json:"sessionId" jsonschema:"minLength=1,description=Onboarding session the photo belongs to"`
	Image     *artifacts.InlineFile `json:"image,omitempty" jsonschema:"description=Terminal photo passed inline; defaults to the session upload"`
	Question  string                `json:"question,omitempty" jsonschema:"description=Anything the user asked about the photo"`
}

type Output struct {
	Description   string `json:"description"`
	ImageArtifact string `json:"imageArtifact"`
	Model         string `json:"model"`
}

type Model interface {
	Configured() bool
	GenerateContent(ctx context.Context, model string, parts []genai.Part, modalities ...string) (*genai.Response, error)
}

type ServiceDependencies struct {
	Model     Model
	Artifacts artifacts.Sessions
	Logger    logger.Logger
}
