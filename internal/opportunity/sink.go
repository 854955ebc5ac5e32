// Package opportunity annotates the sales opportunity for an onboarding
// business. Every call is best-effort: failures come back as an
// unacknowledged Ack, never as an error.
package opportunity

import (
	"context"
	"errors"
	"fmt"

	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/common/zoho"
)

const (
	StageSolutionEvalComplete = "Solution Eval Complete"
	StageKYCComplete          = "KYC Complete"

	// CommentKYCComplete is the one annotation written for a verified business.
	CommentKYCComplete = "KYC Complete"

	noteTitle = "POS onboarding"
)

// CRM is the subset of the Zoho client the sink needs.
type CRM interface {
	Configured() bool
	FindDeal(ctx context.Context, id, businessName string) (*zoho.Deal, error)
	UpdateStage(ctx context.Context, id, stage string) error
	AddNote(ctx context.Context, id, title, content string) (string, error)
}

// Ref identifies an opportunity by explicit id or by business name.
type Ref struct {
	ID           string
	BusinessName string
}

func (r Ref) label() string {
	if r.BusinessName != "" {
		return r.BusinessName
	}
	return r.ID
}

type Ack struct {
	Acknowledged  bool   `json:"acknowledged"`
	OpportunityID string `json:"opportunityId,omitempty"`
	Message       string `json:"message"`
	Reason        string `json:"reason,omitempty"`
}

type Sink struct {
	crm    CRM
	logger logger.Logger
}

func NewSink(crm CRM, log logger.Logger) *Sink {
	return &Sink{crm: crm, logger: log}
}

// AddComment attaches comment as a note on the opportunity.
func (s *Sink) AddComment(ctx context.Context, ref Ref, comment string) Ack {
	deal, ack := s.resolve(ctx, ref)
	if deal == nil {
		return ack
	}
	if _, err := s.crm.AddNote(ctx, deal.ID, noteTitle, comment); err != nil {
		return s.unacknowledged(ref, "add comment", err)
	}
	return Ack{
		Acknowledged:  true,
		OpportunityID: deal.ID,
		Message:       fmt.Sprintf("Comment added successfully to opportunity '%s'.", ref.label()),
	}
}

func (s *Sink) UpdateStage(ctx context.Context, ref Ref, stage string) Ack {
	deal, ack := s.resolve(ctx, ref)
	if deal == nil {
		return ack
	}
	if err := s.crm.UpdateStage(ctx, deal.ID, stage); err != nil {
		return s.unacknowledged(ref, "update stage", err)
	}
	return Ack{
		Acknowledged:  true,
		OpportunityID: deal.ID,
		Message:       fmt.Sprintf("Opportunity with '%s' stage updated successfully to '%s'.", ref.label(), stage),
	}
}

// Details looks the opportunity up. The deal is nil whenever the Ack is not
// acknowledged.
func (s *Sink) Details(ctx context.Context, ref Ref) (*zoho.Deal, Ack) {
	deal, ack := s.resolve(ctx, ref)
	if deal == nil {
		return nil, ack
	}
	return deal, Ack{
		Acknowledged:  true,
		OpportunityID: deal.ID,
		Message:       fmt.Sprintf("Opportunity found for customer '%s'.", ref.label()),
	}
}

// MarkVerified records a completed KYC check as a single comment. Stage
// moves are left to the stage machine and the update tool.
func (s *Sink) MarkVerified(ctx context.Context, ref Ref) Ack {
	return s.AddComment(ctx, ref, CommentKYCComplete)
}

func (s *Sink) resolve(ctx context.Context, ref Ref) (*zoho.Deal, Ack) {
	if s == nil || s.crm == nil || !s.crm.Configured() {
		return nil, Ack{Message: "Opportunity store is not configured.", Reason: "crm not configured"}
	}
	if ref.ID == "" && ref.BusinessName == "" {
		return nil, Ack{Message: "No opportunity reference supplied.", Reason: "missing business name"}
	}
	deal, err := s.crm.FindDeal(ctx, ref.ID, ref.BusinessName)
	if err != nil {
		if errors.Is(err, zoho.ErrDealNotFound) {
			return nil, Ack{
				Message: fmt.Sprintf("No opportunity found for '%s'.", ref.label()),
				Reason:  err.Error(),
			}
		}
		return nil, s.unacknowledged(ref, "find opportunity", err)
	}
	return deal, Ack{}
}

func (s *Sink) unacknowledged(ref Ref, operation string, err error) Ack {
	s.logger.Warn("Opportunity annotation failed", map[string]interface{}{
		"operation":   operation,
		"opportunity": ref.label(),
		"error":       err.Error(),
	})
	return Ack{
		Message: fmt.Sprintf("Could not %s for opportunity '%s'.", operation, ref.label()),
		Reason:  err.Error(),
	}
}
