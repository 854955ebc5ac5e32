package kyc

import (
	"context"
	"fmt"
	"strings"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/docai"
	"pos-onboarding-workers/internal/common/metrics"
)

const (
	SignalIdentityDocument  = "fraud_signals_is_identity_document"
	SignalImageManipulation = "fraud_signals_image_manipulation"

	// SignalClear is the mention text of a signal that found nothing.
	SignalClear = "PASS"

	cleanMessage = "No targeted fraud signals (identity document, image manipulation) detected by DocAI."
)

var signalLabels = map[string]string{
	SignalIdentityDocument:  "Identity Document Check Failed",
	SignalImageManipulation: "Image Manipulation Detected",
}

type FraudSignalResult struct {
	IsFraudulent bool     `json:"isFraudulent"`
	Reasons      []string `json:"reasons"`
	Message      string   `json:"message"`
}

// EvaluateSignals checks every entity whose type is in signals. Anything but
// PASS flags the document. A signal the processor did not return is not a
// finding.
func EvaluateSignals(entities []docai.Entity, signals []string) *FraudSignalResult {
	watched := make(map[string]bool, len(signals))
	for _, s := range signals {
		watched[s] = true
	}

	result := &FraudSignalResult{Reasons: []string{}}
	for _, e := range entities {
		if !watched[e.Type] {
			continue
		}
		mention := strings.TrimSpace(e.MentionText)
		if mention == SignalClear {
			continue
		}
		result.IsFraudulent = true
		result.Reasons = append(result.Reasons, fmt.Sprintf("%s: %s (Expected %s)", signalLabel(e.Type), mention, SignalClear))
		metrics.KYCFraudSignals.WithLabelValues(e.Type).Inc()
	}

	if result.IsFraudulent {
		result.Message = "Fraudulent document detected based on DocAI analysis. Details: " + strings.Join(result.Reasons, "; ")
	} else {
		result.Message = cleanMessage
	}
	return result
}

func signalLabel(signal string) string {
	if label, ok := signalLabels[signal]; ok {
		return label
	}
	return signal + " check failed"
}

// Screen runs the license through the identity proofing processor. An
// extraction error is returned as an error and never as a clean result.
func (e *Extractor) Screen(ctx context.Context, doc *artifacts.InboundFile) (*FraudSignalResult, error) {
	entities, err := e.process(ctx, DriversLicense, e.processors.IDProofing, doc)
	if err != nil {
		return nil, err
	}
	return EvaluateSignals(entities, e.signals), nil
}
