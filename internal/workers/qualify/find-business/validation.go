package findbusiness

import (
	"pos-onboarding-workers/internal/common/validation"
	"pos-onboarding-workers/internal/models"
)

var (
	inputSchema  = validation.SchemaJSON(&Input{})
	answerSchema = validation.SchemaJSON(&models.BusinessSuggestions{})
	outputSchema = validation.SchemaJSON(&Output{})
)

func GetInputSchema() []byte {
	return inputSchema
}

func GetOutputSchema() []byte {
	return outputSchema
}
