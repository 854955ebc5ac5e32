package kyc

import (
	"context"
	"fmt"
	"time"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/aws"
	"pos-onboarding-workers/internal/common/errors"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/common/metrics"
	"pos-onboarding-workers/internal/models"
	"pos-onboarding-workers/internal/opportunity"

	"github.com/google/uuid"
)

// Annotator marks the opportunity once identity is verified.
type Annotator interface {
	MarkVerified(ctx context.Context, ref opportunity.Ref) opportunity.Ack
}

// Notifier announces a verified business to the sales team.
type Notifier interface {
	Notify(ctx context.Context, a aws.Announcement) bool
}

type VerifierDependencies struct {
	Extractor *Extractor
	Annotator Annotator
	Audit     models.VerificationRepository
	Notifier  Notifier
	Logger    logger.Logger
	// Domain is the storefront host used in buy-now links.
	Domain string
}

type Verifier struct {
	extractor *Extractor
	annotator Annotator
	audit     models.VerificationRepository
	notifier  Notifier
	logger    logger.Logger
	domain    string
	now       func() time.Time
}

func NewVerifier(deps VerifierDependencies) *Verifier {
	return &Verifier{
		extractor: deps.Extractor,
		annotator: deps.Annotator,
		audit:     deps.Audit,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
		domain:    deps.Domain,
		now:       time.Now,
	}
}

// Subject identifies whose documents are being verified.
type Subject struct {
	SessionID     string
	BusinessName  string
	OpportunityID string
}

// DecideRequest carries the results of the screen and extraction steps.
type DecideRequest struct {
	Subject
	Screen    *FraudSignalResult
	License   *ExtractedFields
	Statement *ExtractedFields
}

// RunRequest carries the raw documents for a full verification.
type RunRequest struct {
	Subject
	License   *artifacts.InboundFile
	Statement *artifacts.InboundFile
}

type Outcome struct {
	Verified            bool               `json:"verified"`
	Outcome             string             `json:"outcome"`
	RestartVerification bool               `json:"restartVerification"`
	Message             string             `json:"message"`
	Screen              *FraudSignalResult `json:"screen,omitempty"`
	License             *ExtractedFields   `json:"license,omitempty"`
	Statement           *ExtractedFields   `json:"statement,omitempty"`
	Decision            *MatchDecision     `json:"decision,omitempty"`
	BuyNowLink          string             `json:"buyNowLink,omitempty"`
	Opportunity         *opportunity.Ack   `json:"opportunity,omitempty"`
	SalesNotified       bool               `json:"salesNotified"`
	AuditRecordID       string             `json:"auditRecordId,omitempty"`
}

// Run screens the license, extracts both documents and decides. A
// fraudulent license stops before either extraction.
func (v *Verifier) Run(ctx context.Context, req RunRequest) (*Outcome, error) {
	screen, err := v.extractor.Screen(ctx, req.License)
	if err != nil {
		return nil, err
	}
	if screen.IsFraudulent {
		return v.Decide(ctx, DecideRequest{Subject: req.Subject, Screen: screen})
	}

	license, err := v.extractor.ExtractLicense(ctx, screen, req.License)
	if err != nil {
		return nil, err
	}
	statement, err := v.extractor.Extract(ctx, BankStatement, req.Statement)
	if err != nil {
		return nil, err
	}

	return v.Decide(ctx, DecideRequest{
		Subject:   req.Subject,
		Screen:    screen,
		License:   license,
		Statement: statement,
	})
}

// Decide turns screen and extraction results into the verification outcome
// and performs the completion side effects on a match.
func (v *Verifier) Decide(ctx context.Context, req DecideRequest) (*Outcome, error) {
	if req.Screen == nil {
		return nil, errors.NewValidationFailedError("the driver's license has not been fraud screened")
	}

	record := &models.VerificationRecord{
		ID:            uuid.NewString(),
		SessionID:     req.SessionID,
		BusinessName:  req.BusinessName,
		FraudScreened: true,
		Fraudulent:    req.Screen.IsFraudulent,
		CreatedAt:     v.now().UTC(),
	}

	if req.Screen.IsFraudulent {
		metrics.KYCDecisions.WithLabelValues(metrics.OutcomeFraudulent).Inc()
		v.saveRecord(ctx, record)
		return nil, errors.NewFraudulentDocumentError(req.Screen.Reasons).
			WithMetadata("auditRecordId", record.ID)
	}

	if req.License == nil || req.License.Empty() {
		return nil, errors.NewExtractionEmptyError(DriversLicense.Label())
	}
	if req.Statement == nil || req.Statement.Empty() {
		return nil, errors.NewExtractionEmptyError(BankStatement.Label())
	}
	if req.License.DocumentClass != DriversLicense || req.Statement.DocumentClass != BankStatement {
		return nil, errors.NewValidationFailedError(fmt.Sprintf(
			"verification needs a %s and a %s, got %q and %q",
			DriversLicense.Label(), BankStatement.Label(), req.License.DocumentClass, req.Statement.DocumentClass))
	}

	decision := Match(req.License, req.Statement)
	record.NamesMatch = decision.NamesMatch
	record.AddressesMatch = decision.AddressesMatch

	out := &Outcome{
		Screen:    req.Screen,
		License:   req.License,
		Statement: req.Statement,
		Decision:  &decision,
	}

	if !decision.NamesMatch {
		metrics.KYCDecisions.WithLabelValues(metrics.OutcomeMismatch).Inc()
		out.Outcome = metrics.OutcomeMismatch
		out.RestartVerification = true
		out.Message = fmt.Sprintf(
			"The name on the driver's license (%s) does not match the name on the bank statement (%s). Please upload both documents again.",
			decision.LicenseName, decision.StatementName)
		out.AuditRecordID = v.saveRecord(ctx, record)
		return out, nil
	}

	metrics.KYCDecisions.WithLabelValues(metrics.OutcomeVerified).Inc()
	out.Verified = true
	out.Outcome = metrics.OutcomeVerified
	out.BuyNowLink = BuyNowLink(v.domain, req.BusinessName)
	record.BuyNowLink = out.BuyNowLink

	if v.annotator != nil {
		ack := v.annotator.MarkVerified(ctx, opportunity.Ref{ID: req.OpportunityID, BusinessName: req.BusinessName})
		out.Opportunity = &ack
	}
	if v.notifier != nil {
		out.SalesNotified = v.notifier.Notify(ctx, aws.Announcement{
			SessionID:    req.SessionID,
			BusinessName: req.BusinessName,
			BuyNowLink:   out.BuyNowLink,
		})
	}

	out.Message = "Your identity has been verified. You can complete your purchase here: " + out.BuyNowLink
	out.AuditRecordID = v.saveRecord(ctx, record)
	return out, nil
}

// saveRecord writes the audit row and returns its id, or "" when the write
// failed. The decision stands either way.
func (v *Verifier) saveRecord(ctx context.Context, record *models.VerificationRecord) string {
	if v.audit == nil {
		return ""
	}
	if err := v.audit.Save(ctx, record); err != nil {
		v.logger.Warn("Failed to write verification audit record", map[string]interface{}{
			"sessionId": record.SessionID,
			"error":     err.Error(),
		})
		return ""
	}
	return record.ID
}
