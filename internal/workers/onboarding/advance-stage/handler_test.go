package advancestage

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	apperrors "pos-onboarding-workers/internal/common/errors"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/onboarding"
	"pos-onboarding-workers/internal/opportunity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockAdvancer struct {
	mock.Mock
}

func (m *MockAdvancer) Apply(ctx context.Context, cmd onboarding.Command) (*onboarding.Result, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.Result), args.Error(1)
}

type MockStageUpdater struct {
	mock.Mock
}

func (m *MockStageUpdater) UpdateStage(ctx context.Context, ref opportunity.Ref, stage string) opportunity.Ack {
	return m.Called(ctx, ref, stage).Get(0).(opportunity.Ack)
}

// ==========================
// Test Helpers
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "pos-onboarding",
		ElementId:          "Activity_AdvanceStage",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createValidConfig() *Config {
	return &Config{Enabled: true, MaxJobsActive: 5, Timeout: 30 * time.Second}
}

var sessionColumns = []string{"session_id", "stage", "business_name", "updated_at"}

// ==========================
// Handler Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: createValidConfig(), Machine: new(MockAdvancer)})
	assert.NoError(t, err)

	_, err = NewHandler(HandlerOptions{CustomConfig: createValidConfig()})
	assert.ErrorContains(t, err, "requires a stage machine")
}

func TestHandler_ParseInput(t *testing.T) {
	handler := &Handler{config: createValidConfig(), logger: logger.NewNoOpLogger()}

	job := createMockJob(1, map[string]interface{}{
		"sessionId": "s-1",
		"event":     "PURCHASE_CONFIRMED",
	})
	variables, err := job.GetVariablesAsMap()
	require.NoError(t, err)

	input, err := handler.parseInput(variables)
	require.NoError(t, err)
	assert.Equal(t, "PURCHASE_CONFIRMED", input.Event)

	_, err = handler.parseInput(map[string]interface{}{"sessionId": "s-1", "event": "SKIP_KYC"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

// ==========================
// Service Tests
// ==========================

func TestService_NewSessionGetsAnID(t *testing.T) {
	machine := new(MockAdvancer)
	machine.On("Apply", mock.Anything, mock.MatchedBy(func(cmd onboarding.Command) bool {
		_, err := uuid.Parse(cmd.SessionID)
		return err == nil && cmd.Event == onboarding.EventBusinessConfirmed && cmd.BusinessName == "Not Just Coffee"
	})).Return(&onboarding.Result{
		Session: &onboarding.Session{SessionID: "generated", Stage: onboarding.StageRecommend},
		Transition: &onboarding.Transition{
			From:  onboarding.StageQualify,
			Next:  onboarding.StageRecommend,
			Owner: onboarding.AgentProductRecommender,
		},
		Opportunity: []opportunity.Ack{},
	}, nil)

	svc := NewService(ServiceDependencies{Machine: machine, Logger: logger.NewTestLogger(t)}, createValidConfig())
	out, err := svc.Execute(context.Background(), &Input{Event: "business_confirmed", BusinessName: "Not Just Coffee"})
	require.NoError(t, err)

	assert.Equal(t, "generated", out.SessionID)
	assert.Equal(t, "QUALIFY", out.PreviousStage)
	assert.Equal(t, "RECOMMEND", out.Stage)
	assert.Equal(t, "product_recommender", out.Owner)
	machine.AssertExpectations(t)
}

func TestService_PurchaseConfirmedAgainstPostgres(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectQuery(regexp.QuoteMeta("FROM onboarding_sessions")).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(sessionColumns).AddRow("s-1", "RECOMMEND", "Not Just Coffee", time.Now()))
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO onboarding_sessions")).
		WithArgs("s-1", "VERIFY", "Not Just Coffee", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sink := new(MockStageUpdater)
	sink.On("UpdateStage", mock.Anything, opportunity.Ref{ID: "d-1", BusinessName: "Not Just Coffee"}, "Solution Eval Complete").
		Return(opportunity.Ack{Acknowledged: true, OpportunityID: "d-1"})

	log := logger.NewTestLogger(t)
	machine := onboarding.NewMachine(onboarding.NewPostgresSessionStore(db, nil, time.Minute), sink, log)
	svc := NewService(ServiceDependencies{Machine: machine, Logger: log}, createValidConfig())

	out, err := svc.Execute(context.Background(), &Input{SessionID: "s-1", Event: "PURCHASE_CONFIRMED", OpportunityID: "d-1"})
	require.NoError(t, err)

	assert.Equal(t, "VERIFY", out.Stage)
	assert.Equal(t, "kyc", out.Owner)
	assert.Equal(t, []onboarding.SideEffect{{Type: onboarding.SideEffectOpportunityStage, Stage: "Solution Eval Complete"}}, out.SideEffects)
	require.Len(t, out.Opportunity, 1)
	assert.True(t, out.Opportunity[0].Acknowledged)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
	sink.AssertExpectations(t)
}

func TestService_InvalidTransitionIsBusinessRule(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectQuery(regexp.QuoteMeta("FROM onboarding_sessions")).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(sessionColumns).AddRow("s-1", "QUALIFY", "", time.Now()))

	log := logger.NewTestLogger(t)
	machine := onboarding.NewMachine(onboarding.NewPostgresSessionStore(db, nil, time.Minute), new(MockStageUpdater), log)
	svc := NewService(ServiceDependencies{Machine: machine, Logger: log}, createValidConfig())

	_, err = svc.Execute(context.Background(), &Input{SessionID: "s-1", Event: "VERIFICATION_PASSED"})
	stdErr := apperrors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, apperrors.ErrCodeInvalidStageTransition, stdErr.Code)
	assert.Equal(t, apperrors.KindBusinessRule, stdErr.Kind)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestService_StoreFailure(t *testing.T) {
	machine := new(MockAdvancer)
	machine.On("Apply", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	svc := NewService(ServiceDependencies{Machine: machine, Logger: logger.NewTestLogger(t)}, createValidConfig())
	_, err := svc.Execute(context.Background(), &Input{SessionID: "s-1", Event: "RESTART"})

	stdErr := apperrors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseQueryFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
