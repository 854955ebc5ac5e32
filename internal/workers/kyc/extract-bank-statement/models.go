package extractbankstatement

import (
	"context"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/kyc"
)

type Input struct {
	SessionID    string                `json:"sessionId" jsonschema:"minLength=1,description=Onboarding session the upload belongs to"`
	Document     *artifacts.InlineFile `json:"document,omitempty" jsonschema:"description=Bank statement passed inline; defaults to the session upload"`
	ArtifactName string                `json:"artifactName,omitempty" jsonschema:"description=Stored artifact holding the bank statement"`
}

type Output struct {
	StatementFields *kyc.ExtractedFields `json:"statementFields"`
}

type FieldExtractor interface {
	Extract(ctx context.Context, class kyc.DocumentClass, doc *artifacts.InboundFile) (*kyc.ExtractedFields, error)
}

type ServiceDependencies struct {
	Extractor FieldExtractor
	Artifacts artifacts.Sessions
	Logger    logger.Logger
}
