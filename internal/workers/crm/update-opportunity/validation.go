package updateopportunity

import "pos-onboarding-workers/internal/common/validation"

var (
	inputSchema  = validation.SchemaJSON(&Input{})
	outputSchema = validation.SchemaJSON(&Output{})
)

func GetInputSchema() []byte {
	return inputSchema
}

func GetOutputSchema() []byte {
	return outputSchema
}
