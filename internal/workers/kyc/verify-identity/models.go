package verifyidentity

import (
	"context"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/kyc"
)

type Input struct {
	SessionID         string                 `json:"sessionId" jsonschema:"minLength=1"`
	BusinessName      string                 `json:"businessName" jsonschema:"minLength=1,description=Confirmed business name used for the buy-now link"`
	OpportunityID     string                 `json:"opportunityId,omitempty" jsonschema:"description=Opportunity to annotate; resolved by business name when empty"`
	LicenseScreen     *kyc.FraudSignalResult `json:"licenseScreen,omitempty"`
	LicenseFields     *kyc.ExtractedFields   `json:"licenseFields,omitempty"`
	StatementFields   *kyc.ExtractedFields   `json:"statementFields,omitempty"`
	LicenseArtifact   string                 `json:"licenseArtifact,omitempty" jsonschema:"description=Stored driver's license; with statementArtifact runs the whole check"`
	StatementArtifact string                 `json:"statementArtifact,omitempty" jsonschema:"description=Stored bank statement"`
}

// fullRun reports whether the job asks for screening and extraction too.
func (i *Input) fullRun() bool {
	return i.LicenseArtifact != "" && i.StatementArtifact != ""
}

type Output struct {
	kyc.Outcome
}

type Verifier interface {
	Run(ctx context.Context, req kyc.RunRequest) (*kyc.Outcome, error)
	Decide(ctx context.Context, req kyc.DecideRequest) (*kyc.Outcome, error)
}

type ServiceDependencies struct {
	Verifier  Verifier
	Artifacts artifacts.Sessions
	Logger    logger.Logger
}
