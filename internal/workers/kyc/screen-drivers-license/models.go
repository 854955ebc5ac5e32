package screendriverslicense

import (
	"context"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/kyc"
)

type Input struct {
	SessionID    string                `json:"sessionId" jsonschema:"minLength=1,description=Onboarding session the upload belongs to"`
	Document     *artifacts.InlineFile `json:"document,omitempty" jsonschema:"description=Driver's license passed inline; defaults to the session upload"`
	ArtifactName string                `json:"artifactName,omitempty" jsonschema:"description=Stored artifact holding the driver's license"`
}

type Output struct {
	LicenseScreen *kyc.FraudSignalResult `json:"licenseScreen"`
}

type Screener interface {
	Screen(ctx context.Context, doc *artifacts.InboundFile) (*kyc.FraudSignalResult, error)
}

type ServiceDependencies struct {
	Screener  Screener
	Artifacts artifacts.Sessions
	Logger    logger.Logger
}
