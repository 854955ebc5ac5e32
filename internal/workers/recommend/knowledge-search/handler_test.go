package knowledgesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/discovery"
	apperrors "pos-onboarding-workers/internal/common/errors"
	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// ==========================
// Mock Implementations
// ==========================

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Name() string {
	return "mock"
}

func (m *MockBackend) Missing() string {
	return m.Called().String(0)
}

func (m *MockBackend) Answer(ctx context.Context, query string) (*discovery.Answer, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discovery.Answer), args.Error(1)
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
		ElementId:          "Activity_KnowledgeSearch",
		CustomHeaders:      "{}",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createValidConfig() *Config {
	return &Config{Enabled: true, MaxJobsActive: 5, Timeout: 30 * time.Second}
}

func setupStore(t *testing.T) *artifacts.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return artifacts.NewRedisStore(client, "artifact", time.Hour)
}

func newService(t *testing.T, backend Backend, store artifacts.Sessions) *Service {
	return NewService(ServiceDependencies{Backend: backend, Artifacts: store, Logger: logger.NewTestLogger(t)}, createValidConfig())
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: createValidConfig(), Backend: new(MockBackend), Artifacts: setupStore(t)})
	assert.NoError(t, err)

	_, err = NewHandler(HandlerOptions{CustomConfig: createValidConfig(), Artifacts: setupStore(t)})
	assert.ErrorContains(t, err, "requires a knowledge backend")
}

func TestHandler_ParseInput(t *testing.T) {
	handler := &Handler{config: createValidConfig(), logger: logger.NewNoOpLogger()}

	job := createMockJob(1, map[string]interface{}{
		"sessionId": "s-1",
		"query":     "Which Clover device prints receipts?",
	})
	variables, err := job.GetVariablesAsMap()
	require.NoError(t, err)

	input, err := handler.parseInput(variables)
	require.NoError(t, err)
	assert.Equal(t, "Which Clover device prints receipts?", input.Query)

	_, err = handler.parseInput(map[string]interface{}{"sessionId": "s-1", "query": ""})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

// ==========================
// Service Tests
// ==========================

func TestService_SavesAttachmentsAndStripsData(t *testing.T) {
	store := setupStore(t)
	backend := new(MockBackend)
	backend.On("Missing").Return("")
	backend.On("Answer", mock.Anything, "show me the Flex").Return(&discovery.Answer{
		Text:       "- The Flex is handheld.",
		References: []discovery.Reference{{URI: "gs://pos-docs/flex.pdf", Title: "Flex datasheet"}},
		Attachments: []discovery.Attachment{
			{MimeType: "image/jpeg", Data: "aGVsbG8="},
			{MimeType: "image/png", Data: "%%%"},
			{MimeType: "image/webp", Data: "d29ybGQ="},
		},
	}, nil)

	out, err := newService(t, backend, store).Execute(context.Background(), &Input{SessionID: "s-1", Query: "show me the Flex"})
	require.NoError(t, err)

	assert.Equal(t, "- The Flex is handheld.", out.AnswerText)
	assert.Equal(t, []Reference{{URI: "https://storage.cloud.google.com/pos-docs/flex.pdf", Title: "Flex datasheet"}}, out.References)
	assert.Equal(t, []ImageRef{
		{ArtifactName: "user:search_result_image_0.jpg", MimeType: "image/jpeg"},
		{ArtifactName: "user:search_result_image_2.webp", MimeType: "image/webp"},
	}, out.Images)

	saved, err := store.Session("s-1").LoadArtifact(context.Background(), "user:search_result_image_0.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), saved.Data)

	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "aGVsbG8=")
}

func TestService_NotConfigured(t *testing.T) {
	backend := new(MockBackend)
	backend.On("Missing").Return("engine id")

	_, err := newService(t, backend, setupStore(t)).Execute(context.Background(), &Input{SessionID: "s-1", Query: "q"})
	stdErr := apperrors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, apperrors.KindConfiguration, stdErr.Kind)
	assert.Contains(t, stdErr.Details, "engine id")
	backend.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
}

func TestService_BackendErrors(t *testing.T) {
	timeout := new(MockBackend)
	timeout.On("Missing").Return("")
	timeout.On("Answer", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("discovery answer: %w", httpclient.ErrTimeout))

	_, err := newService(t, timeout, setupStore(t)).Execute(context.Background(), &Input{SessionID: "s-1", Query: "q"})
	stdErr := apperrors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, apperrors.ErrorCode("TIMEOUT_ERROR"), stdErr.Code)
	assert.True(t, stdErr.Retryable)

	failing := new(MockBackend)
	failing.On("Missing").Return("")
	failing.On("Answer", mock.Anything, mock.Anything).Return(nil, errors.New("permission denied"))

	_, err = newService(t, failing, setupStore(t)).Execute(context.Background(), &Input{SessionID: "s-1", Query: "q"})
	stdErr = apperrors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, apperrors.ErrCodeKnowledgeSearchFailed, stdErr.Code)
}

// ==========================
// Backend Tests
// ==========================

func TestDiscoveryBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":{"answerText":"- Yes.","references":[{"chunkInfo":{"documentMetadata":{"uri":"https://x/doc","title":"Doc"}}}]}}`))
	}))
	defer srv.Close()

	backend := NewDiscoveryBackend(discovery.NewClient(srv.URL, "p1", "global", "e1", 3, httpclient.NewClient(time.Second), nil))
	assert.Equal(t, "discovery", backend.Name())
	assert.Empty(t, backend.Missing())

	answer, err := backend.Answer(context.Background(), "is it waterproof")
	require.NoError(t, err)
	assert.Equal(t, "- Yes.", answer.Text)

	unconfigured := NewDiscoveryBackend(discovery.NewClient(srv.URL, "p1", "global", "", 3, httpclient.NewClient(time.Second), nil))
	assert.Equal(t, "engine id", unconfigured.Missing())
}

func TestElasticsearchBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, "/product_knowledge/_search", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("size"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "contactless payments", gjson.GetBytes(body, "query.multi_match.query").String())

		w.Write([]byte(`{"hits":{"total":{"value":2},"hits":[
			{"_score":2.1,"_source":{"title":"Clover Flex","content":"Accepts tap, chip and swipe.\n\nShips with a battery.","uri":"gs://docs/flex.pdf"}},
			{"_score":1.3,"_source":{"title":"Clover Mini","content":"Countertop terminal.","uri":"https://docs/mini"}}
		]}}`))
	}))
	defer srv.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	backend := NewElasticsearchBackend(es, "product_knowledge", 3, nil)
	assert.Equal(t, "elasticsearch", backend.Name())
	assert.Empty(t, backend.Missing())

	answer, err := backend.Answer(context.Background(), "contactless payments")
	require.NoError(t, err)
	assert.Equal(t, "- Clover Flex: Accepts tap, chip and swipe.\n- Clover Mini: Countertop terminal.", answer.Text)
	assert.Equal(t, []discovery.Reference{
		{URI: "https://storage.cloud.google.com/docs/flex.pdf", Title: "Clover Flex"},
		{URI: "https://docs/mini", Title: "Clover Mini"},
	}, answer.References)

	assert.Equal(t, "index", NewElasticsearchBackend(es, "", 3, nil).Missing())
}
