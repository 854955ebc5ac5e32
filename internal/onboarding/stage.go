package onboarding

import (
	"strings"
	"time"

	"pos-onboarding-workers/internal/common/errors"
	"pos-onboarding-workers/internal/opportunity"
)

type Stage string

const (
	StageQualify   Stage = "QUALIFY"
	StageRecommend Stage = "RECOMMEND"
	StageVerify    Stage = "VERIFY"
	StageDone      Stage = "DONE"
)

type Event string

const (
	EventBusinessConfirmed  Event = "BUSINESS_CONFIRMED"
	EventPurchaseConfirmed  Event = "PURCHASE_CONFIRMED"
	EventVerificationPassed Event = "VERIFICATION_PASSED"
	EventVerificationFailed Event = "VERIFICATION_FAILED"
	EventRestart            Event = "RESTART"
)

// Agents that own each stage of the conversation.
const (
	AgentRoot               = "root"
	AgentQualify            = "qualify"
	AgentProductRecommender = "product_recommender"
	AgentKYC                = "kyc"
)

// Session is one onboarding conversation.
type Session struct {
	SessionID    string    `json:"sessionId"`
	Stage        Stage     `json:"stage"`
	BusinessName string    `json:"businessName"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewSession starts a conversation in the qualification stage.
func NewSession(sessionID, businessName string) *Session {
	return &Session{SessionID: sessionID, Stage: StageQualify, BusinessName: businessName}
}

const SideEffectOpportunityStage = "opportunity.stage"

// SideEffect is a request the caller performs after a transition.
type SideEffect struct {
	Type  string `json:"type"`
	Stage string `json:"stage,omitempty"`
}

type Transition struct {
	From        Stage        `json:"from"`
	Event       Event        `json:"event"`
	Next        Stage        `json:"next"`
	Owner       string       `json:"owner"`
	Message     string       `json:"message"`
	SideEffects []SideEffect `json:"sideEffects"`
}

var owners = map[Stage]string{
	StageQualify:   AgentQualify,
	StageRecommend: AgentProductRecommender,
	StageVerify:    AgentKYC,
	StageDone:      AgentRoot,
}

// Owner returns the agent that handles the conversation in stage s.
func Owner(s Stage) string {
	return owners[s]
}

// ParseStage accepts stage names in any case. An empty name is QUALIFY.
func ParseStage(s string) (Stage, bool) {
	if strings.TrimSpace(s) == "" {
		return StageQualify, true
	}
	stage := Stage(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := owners[stage]
	return stage, ok
}

func ParseEvent(s string) (Event, bool) {
	event := Event(strings.ToUpper(strings.TrimSpace(s)))
	switch event {
	case EventBusinessConfirmed, EventPurchaseConfirmed, EventVerificationPassed,
		EventVerificationFailed, EventRestart:
		return event, true
	}
	return event, false
}

// Advance computes the transition for event without touching session.
func Advance(session *Session, event Event) (*Transition, error) {
	from := session.Stage
	if from == "" {
		from = StageQualify
	}

	t := &Transition{From: from, Event: event, SideEffects: []SideEffect{}}

	switch {
	case event == EventRestart:
		t.Next = StageQualify
		t.Message = "Let's start over. What is the name and location of your business?"

	case from == StageQualify && event == EventBusinessConfirmed:
		t.Next = StageRecommend
		t.Message = "Thanks for confirming " + subject(session) + ". Let's find the point of sale solution that fits your business."

	case from == StageRecommend && event == EventPurchaseConfirmed:
		t.Next = StageVerify
		t.Message = "Great choice. To complete your purchase, please upload a photo of your driver's license and a recent bank statement."
		t.SideEffects = append(t.SideEffects, SideEffect{
			Type:  SideEffectOpportunityStage,
			Stage: opportunity.StageSolutionEvalComplete,
		})

	case from == StageVerify && event == EventVerificationPassed:
		t.Next = StageDone
		t.Message = "Thank you for choosing us for " + subject(session) + "."

	case from == StageVerify && event == EventVerificationFailed:
		t.Next = StageVerify
		t.Message = "We could not verify your identity. Please upload both documents again."

	default:
		return nil, errors.NewInvalidStageTransitionError(string(from), string(event))
	}

	t.Owner = Owner(t.Next)
	return t, nil
}

func subject(s *Session) string {
	if strings.TrimSpace(s.BusinessName) == "" {
		return "your business"
	}
	return s.BusinessName
}
