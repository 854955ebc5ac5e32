package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_Kinds(t *testing.T) {
	tests := []struct {
		name string
		err  *StandardError
		kind ErrorKind
		code ErrorCode
	}{
		{"processor", NewProcessorNotConfiguredError("driver's license"), KindConfiguration, ErrCodeProcessorNotConfigured},
		{"service", NewServiceNotConfiguredError("Places", "api key"), KindConfiguration, ErrCodeServiceNotConfigured},
		{"document missing", NewDocumentMissingError("bank statement"), KindInputMissing, ErrCodeDocumentMissing},
		{"media type", NewUnsupportedMediaTypeError("image/gif"), KindInputMissing, ErrCodeUnsupportedMediaType},
		{"image missing", NewImageMissingError(), KindInputMissing, ErrCodeImageMissing},
		{"image unreadable", NewImageUnreadableError(fmt.Errorf("bad header")), KindInputMissing, ErrCodeImageUnreadable},
		{"extraction empty", NewExtractionEmptyError("driver's license"), KindExtractionEmpty, ErrCodeExtractionEmpty},
		{"docai", NewDocumentExtractionFailedError(fmt.Errorf("503")), KindCollaborator, ErrCodeDocumentExtractionFailed},
		{"stage", NewInvalidStageTransitionError("QUALIFY", "VERIFICATION_PASSED"), KindBusinessRule, ErrCodeInvalidStageTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestNewExtractionEmptyError_Message(t *testing.T) {
	err := NewExtractionEmptyError("driver's license")
	assert.Equal(t, "Could not extract Names or Address from the driver's license.", err.Message)
}

func TestNewPlaceSearchFailedError_StatusIsNotRetryable(t *testing.T) {
	withStatus := NewPlaceSearchFailedError("REQUEST_DENIED", fmt.Errorf("The provided API key is invalid."))
	assert.False(t, withStatus.Retryable)
	assert.Equal(t, "REQUEST_DENIED", withStatus.Metadata["status"])

	transport := NewPlaceSearchFailedError("", fmt.Errorf("connection refused"))
	assert.True(t, transport.Retryable)
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewDocumentExtractionFailedError(fmt.Errorf("deadline exceeded")).WithMetadata("processor", "dl")
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, string(ErrCodeDocumentExtractionFailed), bpmnErr.Code)
	assert.Equal(t, string(KindCollaborator), bpmnErr.Kind)
	assert.Equal(t, 3, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "DOCUMENT_EXTRACTION_FAILED", vars["errorCode"])
	assert.Equal(t, "COLLABORATOR", vars["errorKind"])
	assert.Equal(t, "deadline exceeded", vars["errorDetails"])
	assert.Equal(t, "dl", vars["processor"])
}

func TestConvertToBPMNError_NonRetryableHasNoRetries(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewDocumentMissingError("driver's license"))
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.False(t, bpmnErr.Retryable)
}

func TestAsStandardError(t *testing.T) {
	original := NewImageMissingError()
	wrapped := fmt.Errorf("identify: %w", original)

	got := AsStandardError(wrapped)
	require.NotNil(t, got)
	assert.Same(t, original, got)

	plain := AsStandardError(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, KindInternal, plain.Kind)
	assert.Equal(t, "boom", plain.Details)
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(NewExtractionEmptyError("bank statement"), KindExtractionEmpty))
	assert.False(t, IsKind(NewExtractionEmptyError("bank statement"), KindInputMissing))
	assert.False(t, IsKind(fmt.Errorf("plain"), KindInputMissing))
}

func TestRemainingRetries(t *testing.T) {
	collaborator := NewDocumentExtractionFailedError(fmt.Errorf("503"))

	assert.Equal(t, 2, RemainingRetries(collaborator, 3))
	assert.Equal(t, 3, RemainingRetries(collaborator, 10))
	assert.Equal(t, 0, RemainingRetries(collaborator, 1))
	assert.Equal(t, 0, RemainingRetries(collaborator, 0))
	assert.Equal(t, 0, RemainingRetries(NewDocumentMissingError("x"), 3))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "KYC", GetErrorCategory(ErrCodeExtractionEmpty))
	assert.Equal(t, "QUALIFY", GetErrorCategory(ErrCodePlaceSearchFailed))
	assert.Equal(t, "RECOMMEND", GetErrorCategory(ErrCodeImageUnreadable))
	assert.Equal(t, "CRM", GetErrorCategory(ErrCodeOpportunityUpdateFailed))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeArtifactNotFound))
	assert.Equal(t, "WORKFLOW", GetErrorCategory(ErrCodeInvalidStageTransition))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))
}
