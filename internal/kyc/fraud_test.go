package kyc

import (
	"context"
	"errors"
	"testing"

	"pos-onboarding-workers/internal/common/docai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEvaluateSignals(t *testing.T) {
	identityOnly := []string{SignalIdentityDocument}

	t.Run("fail flags the document", func(t *testing.T) {
		result := EvaluateSignals([]docai.Entity{{Type: SignalIdentityDocument, MentionText: "FAIL"}}, identityOnly)
		assert.True(t, result.IsFraudulent)
		require.Len(t, result.Reasons, 1)
		assert.Equal(t, "Identity Document Check Failed: FAIL (Expected PASS)", result.Reasons[0])
		assert.Contains(t, result.Message, "Fraudulent document detected based on DocAI analysis. Details: ")
	})

	t.Run("pass is clean", func(t *testing.T) {
		result := EvaluateSignals([]docai.Entity{{Type: SignalIdentityDocument, MentionText: "PASS"}}, identityOnly)
		assert.False(t, result.IsFraudulent)
		assert.Empty(t, result.Reasons)
		assert.Equal(t, cleanMessage, result.Message)
	})

	t.Run("image manipulation is ignored unless enabled", func(t *testing.T) {
		entities := []docai.Entity{
			{Type: SignalIdentityDocument, MentionText: "PASS"},
			{Type: SignalImageManipulation, MentionText: "SUSPICIOUS"},
		}
		assert.False(t, EvaluateSignals(entities, identityOnly).IsFraudulent)

		enabled := EvaluateSignals(entities, []string{SignalIdentityDocument, SignalImageManipulation})
		assert.True(t, enabled.IsFraudulent)
		assert.Equal(t, []string{"Image Manipulation Detected: SUSPICIOUS (Expected PASS)"}, enabled.Reasons)
	})

	t.Run("absent signal is not a finding", func(t *testing.T) {
		result := EvaluateSignals([]docai.Entity{{Type: "fraud_signals_suspicious_words", MentionText: "FAIL"}}, identityOnly)
		assert.False(t, result.IsFraudulent)
	})
}

func TestScreen_UsesIDProofingProcessor(t *testing.T) {
	proc := new(MockProcessor)
	proc.On("Process", mock.Anything, testProcessors.IDProofing, licenseFile.Data, "image/jpeg").
		Return([]docai.Entity{{Type: SignalIdentityDocument, MentionText: "FAIL"}}, nil)

	result, err := NewExtractor(proc, testProcessors, nil).Screen(context.Background(), licenseFile)
	require.NoError(t, err)
	assert.True(t, result.IsFraudulent)
	proc.AssertExpectations(t)
}

func TestScreen_ExtractionErrorIsNotAPass(t *testing.T) {
	proc := new(MockProcessor)
	proc.On("Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	result, err := NewExtractor(proc, testProcessors, nil).Screen(context.Background(), licenseFile)
	assert.Nil(t, result)
	assert.Error(t, err)
}
