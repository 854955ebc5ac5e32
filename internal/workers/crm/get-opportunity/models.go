package getopportunity

import (
	"context"

	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/common/zoho"
	"pos-onboarding-workers/internal/opportunity"
)

type Input struct {
	BusinessName  string `json:"businessName,omitempty" jsonschema:"description=Business the opportunity was opened for"`
	OpportunityID string `json:"opportunityId,omitempty" jsonschema:"description=Explicit opportunity id; skips the name lookup"`
}

type Output struct {
	Found       bool       `json:"found"`
	Opportunity *zoho.Deal `json:"opportunity,omitempty"`
	Message     string     `json:"message"`
	Reason      string     `json:"reason,omitempty"`
}

type Finder interface {
	Details(ctx context.Context, ref opportunity.Ref) (*zoho.Deal, opportunity.Ack)
}

type ServiceDependencies struct {
	Finder Finder
	Logger logger.Logger
}
