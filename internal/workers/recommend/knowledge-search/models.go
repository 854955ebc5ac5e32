package knowledgesearch

import (
	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/logger"
)

type Input struct {
	SessionID string `json:"sessionId" jsonschema:"minLength=1,description=Onboarding session that receives result images"`
	Query     string `json:"query" jsonschema:"minLength=1,description=Product question in plain language"`
}

type Reference struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ImageRef points at a result image saved as a session artifact.
type ImageRef struct {
	ArtifactName string `json:"artifactName"`
	MimeType     string `json:"mimeType"`
}

type Output struct {
	AnswerText string      `json:"answerText"`
	References []Reference `json:"references"`
	Images     []ImageRef  `json:"images"`
	Backend    string      `json:"backend"`
}

type ServiceDependencies struct {
	Backend   Backend
	Artifacts artifacts.Sessions
	Logger    logger.Logger
}
