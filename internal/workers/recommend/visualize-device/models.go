package visualizedevice

import (
	"context"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/genai"
	"pos-onboarding-workers/internal/common/logger"
)

type Input struct {
	SessionID      string `json:"sessionId" jsonschema:"minLength=1,description=Onboarding session holding the terminal photo"`
	SelectedSystem string `json:"selectedSystem" jsonschema:"minLength=1,description=Product the user picked, e.g. Clover Flex"`
	Prompt         string `json:"prompt,omitempty" jsonschema:"description=Replaces the default editing instruction"`
}

// Output reports ImageProduced=false with the model's commentary when the
// model answered without an image.
type Output struct {
	ImageProduced bool   `json:"imageProduced"`
	ImageArtifact string `json:"imageArtifact,omitempty"`
	Commentary    string `json:"commentary,omitempty"`
	Model         string `json:"model"`
}

type ImageModel interface {
	Configured() bool
	GenerateContent(ctx context.Context, model string, parts []genai.Part, modalities ...string) (*genai.Response, error)
}

type ServiceDependencies struct {
	Model     ImageModel
	Artifacts artifacts.Sessions
	Logger    logger.Logger
}
