package advancestage

import (
	"context"

	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/onboarding"
	"pos-onboarding-workers/internal/opportunity"
)

type Input struct {
	SessionID     string `json:"sessionId,omitempty" jsonschema:"description=Onboarding session; a new one is started when empty"`
	Event         string `json:"event" jsonschema:"enum=BUSINESS_CONFIRMED,enum=PURCHASE_CONFIRMED,enum=VERIFICATION_PASSED,enum=VERIFICATION_FAILED,enum=RESTART,description=What just happened in the conversation"`
	BusinessName  string `json:"businessName,omitempty" jsonschema:"description=Confirmed business name"`
	OpportunityID string `json:"opportunityId,omitempty" jsonschema:"description=Explicit opportunity id for stage side effects"`
}

type Output struct {
	SessionID     string                  `json:"sessionId"`
	PreviousStage string                  `json:"previousStage"`
	Stage         string                  `json:"stage"`
	Owner         string                  `json:"owner"`
	Message       string                  `json:"message"`
	SideEffects   []onboarding.SideEffect `json:"sideEffects"`
	Opportunity   []opportunity.Ack       `json:"opportunity"`
}

type Advancer interface {
	Apply(ctx context.Context, cmd onboarding.Command) (*onboarding.Result, error)
}

type ServiceDependencies struct {
	Machine Advancer
	Logger  logger.Logger
}
