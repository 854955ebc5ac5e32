package updateopportunity

import (
	"context"

	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/opportunity"
)

type Input struct {
	BusinessName  string `json:"businessName,omitempty" jsonschema:"description=Business the opportunity was opened for"`
	OpportunityID string `json:"opportunityId,omitempty" jsonschema:"description=Explicit opportunity id; skips the name lookup"`
	Comment       string `json:"comment,omitempty" jsonschema:"description=Note to attach to the opportunity"`
	Stage         string `json:"stage,omitempty" jsonschema:"description=New opportunity stage, e.g. Solution Eval Complete"`
}

// Output is acknowledged only when every requested change went through.
type Output struct {
	Acknowledged  bool             `json:"acknowledged"`
	OpportunityID string           `json:"opportunityId,omitempty"`
	Comment       *opportunity.Ack `json:"comment,omitempty"`
	Stage         *opportunity.Ack `json:"stage,omitempty"`
}

type Annotator interface {
	AddComment(ctx context.Context, ref opportunity.Ref, comment string) opportunity.Ack
	UpdateStage(ctx context.Context, ref opportunity.Ref, stage string) opportunity.Ack
}

type ServiceDependencies struct {
	Annotator Annotator
	Logger    logger.Logger
}
