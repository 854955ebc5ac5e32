package onboarding

import (
	"context"
	"errors"
	"time"

	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/opportunity"
)

// StageUpdater applies opportunity stage side effects.
type StageUpdater interface {
	UpdateStage(ctx context.Context, ref opportunity.Ref, stage string) opportunity.Ack
}

type Machine struct {
	store  SessionStore
	sink   StageUpdater
	logger logger.Logger
	now    func() time.Time
}

func NewMachine(store SessionStore, sink StageUpdater, log logger.Logger) *Machine {
	return &Machine{store: store, sink: sink, logger: log, now: time.Now}
}

type Command struct {
	SessionID     string
	BusinessName  string
	OpportunityID string
	Event         Event
}

type Result struct {
	Session     *Session          `json:"session"`
	Transition  *Transition       `json:"transition"`
	Opportunity []opportunity.Ack `json:"opportunity"`
}

// Apply loads the session, advances it and persists the new stage before
// running side effects. Side effects are best-effort.
func (m *Machine) Apply(ctx context.Context, cmd Command) (*Result, error) {
	session, err := m.store.Get(ctx, cmd.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		session = NewSession(cmd.SessionID, cmd.BusinessName)
	} else if err != nil {
		return nil, err
	}
	if cmd.BusinessName != "" {
		session.BusinessName = cmd.BusinessName
	}

	transition, err := Advance(session, cmd.Event)
	if err != nil {
		return nil, err
	}

	session.Stage = transition.Next
	session.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, session); err != nil {
		return nil, err
	}

	result := &Result{Session: session, Transition: transition, Opportunity: []opportunity.Ack{}}
	for _, effect := range transition.SideEffects {
		if effect.Type != SideEffectOpportunityStage || m.sink == nil {
			continue
		}
		ack := m.sink.UpdateStage(ctx, opportunity.Ref{ID: cmd.OpportunityID, BusinessName: session.BusinessName}, effect.Stage)
		if !ack.Acknowledged {
			m.logger.Warn("Opportunity stage update not acknowledged", map[string]interface{}{
				"sessionId": session.SessionID,
				"stage":     effect.Stage,
				"reason":    ack.Reason,
			})
		}
		result.Opportunity = append(result.Opportunity, ack)
	}

	m.logger.Info("Onboarding stage advanced", map[string]interface{}{
		"sessionId": session.SessionID,
		"from":      string(transition.From),
		"event":     string(transition.Event),
		"to":        string(transition.Next),
	})
	return result, nil
}
