package getopportunity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/common/zoho"
	"pos-onboarding-workers/internal/opportunity"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockFinder struct {
	mock.Mock
}

func (m *MockFinder) Details(ctx context.Context, ref opportunity.Ref) (*zoho.Deal, opportunity.Ack) {
	args := m.Called(ctx, ref)
	deal, _ := args.Get(0).(*zoho.Deal)
	return deal, args.Get(1).(opportunity.Ack)
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
		ElementId:          "Activity_GetOpportunity",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createValidConfig() *Config {
	return &Config{Enabled: true, MaxJobsActive: 5, Timeout: 30 * time.Second}
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: createValidConfig(), Finder: new(MockFinder)})
	assert.NoError(t, err)

	_, err = NewHandler(HandlerOptions{CustomConfig: createValidConfig()})
	assert.ErrorContains(t, err, "requires an opportunity finder")
}

func TestHandler_ParseInput(t *testing.T) {
	handler := &Handler{config: createValidConfig(), logger: logger.NewNoOpLogger()}

	job := createMockJob(1, map[string]interface{}{"businessName": "Not Just Coffee"})
	variables, err := job.GetVariablesAsMap()
	require.NoError(t, err)

	input, err := handler.parseInput(variables)
	require.NoError(t, err)
	assert.Equal(t, "Not Just Coffee", input.BusinessName)
}

// ==========================
// Service Tests
// ==========================

func TestService_Found(t *testing.T) {
	finder := new(MockFinder)
	deal := &zoho.Deal{ID: "d-1", Name: "Not Just Coffee", Stage: "Qualification"}
	finder.On("Details", mock.Anything, opportunity.Ref{BusinessName: "Not Just Coffee"}).
		Return(deal, opportunity.Ack{Acknowledged: true, OpportunityID: "d-1", Message: "Opportunity found for customer 'Not Just Coffee'."})

	svc := NewService(ServiceDependencies{Finder: finder, Logger: logger.NewTestLogger(t)}, createValidConfig())
	out, err := svc.Execute(context.Background(), &Input{BusinessName: "Not Just Coffee"})
	require.NoError(t, err)

	assert.True(t, out.Found)
	assert.Equal(t, deal, out.Opportunity)
	assert.Equal(t, "Opportunity found for customer 'Not Just Coffee'.", out.Message)
}

func TestService_NotFoundAgainstZoho(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	log := logger.NewTestLogger(t)
	sink := opportunity.NewSink(zoho.NewCRMClient(srv.URL, "token", time.Second, nil), log)

	svc := NewService(ServiceDependencies{Finder: sink, Logger: log}, createValidConfig())
	out, err := svc.Execute(context.Background(), &Input{BusinessName: "Nobody Inc"})
	require.NoError(t, err)

	assert.False(t, out.Found)
	assert.Nil(t, out.Opportunity)
	assert.Equal(t, "No opportunity found for 'Nobody Inc'.", out.Message)
}
