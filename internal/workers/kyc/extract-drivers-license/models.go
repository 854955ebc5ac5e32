package extractdriverslicense

import (
	"context"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/kyc"
)

type Input struct {
	SessionID     string                 `json:"sessionId" jsonschema:"minLength=1,description=Onboarding session the upload belongs to"`
	Document      *artifacts.InlineFile  `json:"document,omitempty" jsonschema:"description=Driver's license passed inline; defaults to the session upload"`
	ArtifactName  string                 `json:"artifactName,omitempty" jsonschema:"description=Stored artifact holding the driver's license"`
	LicenseScreen *kyc.FraudSignalResult `json:"licenseScreen" jsonschema:"description=Result of the fraud screen of the same license"`
}

type Output struct {
	LicenseFields *kyc.ExtractedFields `json:"licenseFields"`
}

type FieldExtractor interface {
	ExtractLicense(ctx context.Context, screen *kyc.FraudSignalResult, doc *artifacts.InboundFile) (*kyc.ExtractedFields, error)
}

type ServiceDependencies struct {
	Extractor FieldExtractor
	Artifacts artifacts.Sessions
	Logger    logger.Logger
}
