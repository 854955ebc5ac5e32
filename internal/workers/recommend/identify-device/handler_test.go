package identifydevice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"
	"time"

	"pos-onboarding-workers/internal/common/artifacts"
	apperrors "pos-onboarding-workers/internal/common/errors"
	"pos-onboarding-workers/internal/common/genai"
	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/logger"

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

type MockModel struct {
	mock.Mock
}

func (m *MockModel) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockModel) GenerateContent(ctx context.Context, model string, parts []genai.Part, modalities ...string) (*genai.Response, error) {
	args := m.Called(ctx, model, parts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.Response), args.Error(1)
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
		ElementId:          "Activity_IdentifyDevice",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createValidConfig() *Config {
	return &Config{Enabled: true, MaxJobsActive: 5, Timeout: 30 * time.Second, Model: "gemini-2.0-flash"}
}

func setupStore(t *testing.T) *artifacts.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return artifacts.NewRedisStore(client, "artifact", time.Hour)
}

func terminalPhoto(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func newService(t *testing.T, model Model, store artifacts.Sessions) *Service {
	return NewService(ServiceDependencies{Model: model, Artifacts: store, Logger: logger.NewTestLogger(t)}, createValidConfig())
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	store := setupStore(t)

	h, err := NewHandler(HandlerOptions{CustomConfig: createValidConfig(), Model: new(MockModel), Artifacts: store})
	require.NoError(t, err)
	assert.Equal(t, "recommend.device.identify", h.GetTaskType())

	_, err = NewHandler(HandlerOptions{CustomConfig: createValidConfig(), Artifacts: store})
	assert.ErrorContains(t, err, "requires a model client")

	_, err = NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: time.Second},
		Model:        new(MockModel),
		Artifacts:    store,
	})
	assert.ErrorContains(t, err, "model is required")
}

func TestHandler_ParseInput(t *testing.T) {
	handler := &Handler{config: createValidConfig(), logger: logger.NewNoOpLogger()}

	job := createMockJob(1, map[string]interface{}{
		"sessionId": "s-1",
		"question":  "Which terminal is this?",
	})
	variables, err := job.GetVariablesAsMap()
	require.NoError(t, err)

	input, err := handler.parseInput(variables)
	require.NoError(t, err)
	assert.Equal(t, "s-1", input.SessionID)
	assert.Nil(t, input.Image)
	assert.Equal(t, "Which terminal is this?", input.Question)

	_, err = handler.parseInput(map[string]interface{}{"sessionId": ""})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

// ==========================
// Service Tests
// ==========================

func TestService_IdentifiesAndKeepsPhoto(t *testing.T) {
	store := setupStore(t)
	photo := terminalPhoto(t)
	require.NoError(t, store.Session("s-1").SaveArtifact(context.Background(), artifacts.InboundFileName, photo, "image/png"))

	model := new(MockModel)
	model.On("Configured").Return(true)
	model.On("GenerateContent", mock.Anything, "gemini-2.0-flash", mock.MatchedBy(func(parts []genai.Part) bool {
		return len(parts) == 2 && parts[0].Text == identifyInstruction && bytes.Equal(parts[1].Data, photo)
	})).Return(&genai.Response{Parts: []genai.Part{genai.TextPart("This is a Square Register.")}}, nil)

	out, err := newService(t, model, store).Execute(context.Background(), &Input{SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, "This is a Square Register.", out.Description)
	assert.Equal(t, artifacts.UserPOSImage, out.ImageArtifact)

	saved, err := store.Session("s-1").LoadArtifact(context.Background(), artifacts.UserPOSImage)
	require.NoError(t, err)
	assert.Equal(t, photo, saved.Data)
	assert.Equal(t, "image/png", saved.MediaType)
	model.AssertExpectations(t)
}

func TestService_InlinePhotoWithQuestion(t *testing.T) {
	store := setupStore(t)
	photo := terminalPhoto(t)

	model := new(MockModel)
	model.On("Configured").Return(true)
	model.On("GenerateContent", mock.Anything, "gemini-2.0-flash", mock.MatchedBy(func(parts []genai.Part) bool {
		return len(parts) == 3 && parts[2].Text == "Is it wireless?"
	})).Return(&genai.Response{Parts: []genai.Part{genai.TextPart("A Clover Mini.")}}, nil)

	out, err := newService(t, model, store).Execute(context.Background(), &Input{
		SessionID: "s-2",
		Image:     &artifacts.InlineFile{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(photo)},
		Question:  "Is it wireless?",
	})
	require.NoError(t, err)
	assert.Equal(t, "A Clover Mini.", out.Description)
}

func TestService_ImageProblems(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		seed     []byte
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "no image supplied",
			input:    &Input{SessionID: "s-1"},
			wantCode: apperrors.ErrCodeImageMissing,
		},
		{
			name:     "corrupt upload",
			input:    &Input{SessionID: "s-1"},
			seed:     []byte("definitely not a png"),
			wantCode: apperrors.ErrCodeImageUnreadable,
		},
		{
			name:     "invalid inline base64",
			input:    &Input{SessionID: "s-1", Image: &artifacts.InlineFile{MimeType: "image/png", Data: "%%%"}},
			wantCode: apperrors.ErrCodeImageUnreadable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupStore(t)
			if tt.seed != nil {
				require.NoError(t, store.Session("s-1").SaveArtifact(context.Background(), artifacts.InboundFileName, tt.seed, "image/png"))
			}
			model := new(MockModel)
			model.On("Configured").Return(true)

			_, err := newService(t, model, store).Execute(context.Background(), tt.input)

			stdErr := apperrors.AsStandardError(err)
			require.NotNil(t, stdErr)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, apperrors.KindInputMissing, stdErr.Kind)
			model.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_ModelErrors(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.Session("s-1").SaveArtifact(context.Background(), artifacts.InboundFileName, terminalPhoto(t), "image/png"))

	timeout := new(MockModel)
	timeout.On("Configured").Return(true)
	timeout.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("generate content: %w", httpclient.ErrTimeout))

	_, err := newService(t, timeout, store).Execute(context.Background(), &Input{SessionID: "s-1"})
	stdErr := apperrors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, apperrors.ErrCodeModelTimeout, stdErr.Code)
	assert.True(t, stdErr.Retryable)

	failing := new(MockModel)
	failing.On("Configured").Return(true)
	failing.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("400 bad request"))

	_, err = newService(t, failing, store).Execute(context.Background(), &Input{SessionID: "s-1"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindCollaborator))

	_, err = store.Session("s-1").LoadArtifact(context.Background(), artifacts.UserPOSImage)
	assert.ErrorIs(t, err, artifacts.ErrNotFound)
}

func TestService_NotConfigured(t *testing.T) {
	model := new(MockModel)
	model.On("Configured").Return(false)

	_, err := newService(t, model, setupStore(t)).Execute(context.Background(), &Input{SessionID: "s-1"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConfiguration))
}
