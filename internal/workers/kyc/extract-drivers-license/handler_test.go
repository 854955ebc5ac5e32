package extractdriverslicense

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/docai"
	apperrors "pos-onboarding-workers/internal/common/errors"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/kyc"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Process(ctx context.Context, processor string, content []byte, mimeType string) ([]docai.Entity, error) {
	args := m.Called(ctx, processor, content, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]docai.Entity), args.Error(1)
}

type MockService struct {
	mock.Mock
}

func (m *MockService) Execute(ctx context.Context, input *Input) (*Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Output), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

const dlProcessor = "projects/p/locations/us/processors/dl"

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "pos-onboarding",
		ElementId:          "Activity_ExtractLicense",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createValidConfig() *Config {
	return &Config{Enabled: true, MaxJobsActive: 5, Timeout: 30 * time.Second}
}

func cleanScreen() *kyc.FraudSignalResult {
	return &kyc.FraudSignalResult{Reasons: []string{}, Message: "No targeted fraud signals detected."}
}

func newTestService(t *testing.T, proc *MockProcessor) (*Service, *artifacts.RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := artifacts.NewRedisStore(client, "artifact", time.Hour)

	extractor := kyc.NewExtractor(proc, kyc.Processors{DriversLicense: dlProcessor}, nil)
	return NewService(ServiceDependencies{Extractor: extractor, Artifacts: store, Logger: logger.NewTestLogger(t)}, createValidConfig()), store
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_ParseInputAndExecute(t *testing.T) {
	svc := new(MockService)
	handler := &Handler{config: createValidConfig(), logger: logger.NewNoOpLogger(), service: svc}

	job := createMockJob(7, map[string]interface{}{
		"sessionId":    "s-1",
		"artifactName": "user:license.jpg",
		"businessName": "Not Just Coffee",
		"licenseScreen": map[string]interface{}{
			"isFraudulent": false,
			"reasons":      []string{},
			"message":      "No targeted fraud signals detected.",
		},
	})
	variables, err := job.GetVariablesAsMap()
	require.NoError(t, err)

	input, err := handler.parseInput(variables)
	require.NoError(t, err)
	assert.Equal(t, "user:license.jpg", input.ArtifactName)
	assert.Nil(t, input.Document)
	require.NotNil(t, input.LicenseScreen)
	assert.False(t, input.LicenseScreen.IsFraudulent)

	expected := &Output{LicenseFields: &kyc.ExtractedFields{FullName: "BRENDA SAMPLE"}}
	svc.On("Execute", mock.Anything, input).Return(expected, nil)

	out, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Same(t, expected, out)
}

func TestHandler_ParseInputRequiresScreen(t *testing.T) {
	handler := &Handler{config: createValidConfig(), logger: logger.NewNoOpLogger()}

	_, err := handler.parseInput(map[string]interface{}{
		"sessionId":    "s-1",
		"artifactName": "user:license.jpg",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestHandler_RequiresDependencies(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: createValidConfig()})
	assert.ErrorContains(t, err, "requires an extractor")
}

// ==========================
// Service Tests
// ==========================

func TestService_ExtractsNamedArtifact(t *testing.T) {
	proc := new(MockProcessor)
	svc, store := newTestService(t, proc)
	require.NoError(t, store.Session("s-1").SaveArtifact(context.Background(), "user:license.jpg", []byte("dl"), "image/jpeg"))

	proc.On("Process", mock.Anything, dlProcessor, []byte("dl"), "image/jpeg").Return([]docai.Entity{
		{Type: kyc.EntityGivenNames, MentionText: "BRENDA"},
		{Type: kyc.EntityFamilyName, MentionText: "SAMPLE"},
		{Type: kyc.EntityAddress, MentionText: "123 MAIN STREET\nHELENA, MT 59601"},
	}, nil)

	out, err := svc.Execute(context.Background(), &Input{SessionID: "s-1", ArtifactName: "user:license.jpg", LicenseScreen: cleanScreen()})
	require.NoError(t, err)

	assert.Equal(t, kyc.DriversLicense, out.LicenseFields.DocumentClass)
	assert.Equal(t, "BRENDA SAMPLE", out.LicenseFields.FullName)
	assert.Equal(t, "123 MAIN STREET\nHELENA, MT 59601", out.LicenseFields.Address)
}

func TestService_EmptyExtraction(t *testing.T) {
	proc := new(MockProcessor)
	svc, _ := newTestService(t, proc)

	proc.On("Process", mock.Anything, dlProcessor, []byte("hi"), "image/png").Return([]docai.Entity{}, nil)

	_, err := svc.Execute(context.Background(), &Input{
		SessionID:     "s-1",
		Document:      &artifacts.InlineFile{MimeType: "image/png", Data: "aGk="},
		LicenseScreen: cleanScreen(),
	})

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.KindExtractionEmpty, stdErr.Kind)
	assert.Equal(t, "Could not extract Names or Address from the driver's license.", stdErr.Message)
}

func TestService_NoUpload(t *testing.T) {
	proc := new(MockProcessor)
	svc, _ := newTestService(t, proc)

	_, err := svc.Execute(context.Background(), &Input{SessionID: "s-1", LicenseScreen: cleanScreen()})

	assert.True(t, apperrors.IsKind(err, apperrors.KindInputMissing))
	proc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_FraudulentLicenseIsNotExtracted(t *testing.T) {
	proc := new(MockProcessor)
	svc, store := newTestService(t, proc)
	require.NoError(t, store.Session("s-1").SaveArtifact(context.Background(), artifacts.InboundFileName, []byte("dl"), "image/jpeg"))

	out, err := svc.Execute(context.Background(), &Input{
		SessionID: "s-1",
		LicenseScreen: &kyc.FraudSignalResult{
			IsFraudulent: true,
			Reasons:      []string{"Identity Document Check Failed: FAIL (Expected PASS)"},
		},
	})

	assert.Nil(t, out)
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeFraudulentDocument, stdErr.Code)
	assert.Equal(t, apperrors.KindBusinessRule, stdErr.Kind)
	proc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UnscreenedLicenseIsNotExtracted(t *testing.T) {
	proc := new(MockProcessor)
	svc, store := newTestService(t, proc)
	require.NoError(t, store.Session("s-1").SaveArtifact(context.Background(), artifacts.InboundFileName, []byte("dl"), "image/jpeg"))

	_, err := svc.Execute(context.Background(), &Input{SessionID: "s-1"})

	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	proc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
