package kyc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/docai"
	apperrors "pos-onboarding-workers/internal/common/errors"
	httpclient "pos-onboarding-workers/internal/common/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Document Processor
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

var testProcessors = Processors{
	IDProofing:     "projects/p/locations/us/processors/idp",
	DriversLicense: "projects/p/locations/us/processors/dl",
	BankStatement:  "projects/p/locations/us/processors/bank",
}

var (
	licenseFile   = &artifacts.InboundFile{Data: []byte("license-bytes"), MediaType: "image/jpeg"}
	statementFile = &artifacts.InboundFile{Data: []byte("statement-bytes"), MediaType: "application/pdf"}
)

var licenseEntities = []docai.Entity{
	{Type: "Given Names", MentionText: "BRENDA"},
	{Type: "Family Name", MentionText: "SAMPLE"},
	{Type: "Address", MentionText: "123 MAIN STREET\nHELENA, MT 59601"},
}

var statementEntities = []docai.Entity{
	{Type: "client_name", MentionText: "Brenda Sample"},
	{Type: "client_address", MentionText: "123 Main Street\nHelena, MT 59601"},
}

func assertKind(t *testing.T, err error, kind apperrors.ErrorKind, code apperrors.ErrorCode) {
	t.Helper()
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr), "expected StandardError, got %v", err)
	assert.Equal(t, kind, stdErr.Kind)
	assert.Equal(t, code, stdErr.Code)
}

// ==========================
// Pure Field Mapping Tests
// ==========================

func TestFieldsFromLicense(t *testing.T) {
	fields := FieldsFromLicense(licenseEntities)

	assert.Equal(t, DriversLicense, fields.DocumentClass)
	assert.Equal(t, "BRENDA SAMPLE", fields.FullName)
	assert.Equal(t, "BRENDA", fields.GivenName)
	assert.Equal(t, "SAMPLE", fields.FamilyName)
	assert.Equal(t, "123 MAIN STREET\nHELENA, MT 59601", fields.Address)
}

func TestFieldsFromLicense_MultipleNamesKeepOrder(t *testing.T) {
	fields := FieldsFromLicense([]docai.Entity{
		{Type: "Family Name", MentionText: "SAMPLE"},
		{Type: "Given Names", MentionText: "BRENDA"},
		{Type: "Given Names", MentionText: "LEE"},
		{Type: "Address", MentionText: "first"},
		{Type: "Address", MentionText: "second"},
	})

	assert.Equal(t, "BRENDA LEE SAMPLE", fields.FullName)
	assert.Equal(t, "first", fields.Address)
}

func TestFieldsFromBankStatement(t *testing.T) {
	fields := FieldsFromBankStatement(statementEntities)

	assert.Equal(t, BankStatement, fields.DocumentClass)
	assert.Equal(t, "Brenda Sample", fields.FullName)
	assert.Equal(t, "123 Main Street\nHelena, MT 59601", fields.Address)
}

// ==========================
// Extractor Tests
// ==========================

func TestExtract_DriversLicense(t *testing.T) {
	proc := new(MockProcessor)
	proc.On("Process", mock.Anything, testProcessors.DriversLicense, licenseFile.Data, "image/jpeg").Return(licenseEntities, nil)

	fields, err := NewExtractor(proc, testProcessors, nil).Extract(context.Background(), DriversLicense, licenseFile)
	require.NoError(t, err)
	assert.Equal(t, "BRENDA SAMPLE", fields.FullName)
	proc.AssertExpectations(t)
}

func TestExtractLicense_RequiresCleanScreen(t *testing.T) {
	proc := new(MockProcessor)
	e := NewExtractor(proc, testProcessors, nil)

	_, err := e.ExtractLicense(context.Background(), nil, licenseFile)
	assertKind(t, err, apperrors.KindValidation, apperrors.ErrCodeValidationFailed)

	flagged := &FraudSignalResult{IsFraudulent: true, Reasons: []string{"Identity Document Check Failed: FAIL (Expected PASS)"}}
	_, err = e.ExtractLicense(context.Background(), flagged, licenseFile)
	assertKind(t, err, apperrors.KindBusinessRule, apperrors.ErrCodeFraudulentDocument)

	proc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	proc.On("Process", mock.Anything, testProcessors.DriversLicense, licenseFile.Data, "image/jpeg").Return(licenseEntities, nil)
	fields, err := e.ExtractLicense(context.Background(), &FraudSignalResult{Reasons: []string{}}, licenseFile)
	require.NoError(t, err)
	assert.Equal(t, "BRENDA SAMPLE", fields.FullName)
}

func TestExtract_IsIdempotent(t *testing.T) {
	proc := new(MockProcessor)
	proc.On("Process", mock.Anything, testProcessors.BankStatement, statementFile.Data, "application/pdf").Return(statementEntities, nil)
	e := NewExtractor(proc, testProcessors, nil)

	first, err := e.Extract(context.Background(), BankStatement, statementFile)
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), BankStatement, statementFile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtract_EmptyResultIsAnError(t *testing.T) {
	proc := new(MockProcessor)
	proc.On("Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]docai.Entity{
		{Type: "Date Of Birth", MentionText: "01/01/1980"},
		{Type: "Given Names", MentionText: "   "},
	}, nil)

	fields, err := NewExtractor(proc, testProcessors, nil).Extract(context.Background(), DriversLicense, licenseFile)
	assert.Nil(t, fields)
	assertKind(t, err, apperrors.KindExtractionEmpty, apperrors.ErrCodeExtractionEmpty)
	assert.Contains(t, err.Error(), "Could not extract Names or Address from the driver's license.")
}

func TestExtract_AddressOnlyIsEnough(t *testing.T) {
	proc := new(MockProcessor)
	proc.On("Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]docai.Entity{
		{Type: "client_address", MentionText: "1 Elm St"},
	}, nil)

	fields, err := NewExtractor(proc, testProcessors, nil).Extract(context.Background(), BankStatement, statementFile)
	require.NoError(t, err)
	assert.Empty(t, fields.FullName)
	assert.Equal(t, "1 Elm St", fields.Address)
}

func TestExtract_InputAndConfigurationErrors(t *testing.T) {
	tests := []struct {
		name       string
		processors Processors
		doc        *artifacts.InboundFile
		kind       apperrors.ErrorKind
		code       apperrors.ErrorCode
	}{
		{
			name:       "no document",
			processors: testProcessors,
			doc:        nil,
			kind:       apperrors.KindInputMissing,
			code:       apperrors.ErrCodeDocumentMissing,
		},
		{
			name:       "unsupported media type",
			processors: testProcessors,
			doc:        &artifacts.InboundFile{Data: []byte("x"), MediaType: "image/gif"},
			kind:       apperrors.KindInputMissing,
			code:       apperrors.ErrCodeUnsupportedMediaType,
		},
		{
			name:       "processor not configured",
			processors: Processors{},
			doc:        licenseFile,
			kind:       apperrors.KindConfiguration,
			code:       apperrors.ErrCodeProcessorNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := new(MockProcessor)
			_, err := NewExtractor(proc, tt.processors, nil).Extract(context.Background(), DriversLicense, tt.doc)
			assertKind(t, err, tt.kind, tt.code)
			proc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestExtract_CollaboratorErrors(t *testing.T) {
	proc := new(MockProcessor)
	proc.On("Process", mock.Anything, testProcessors.DriversLicense, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("document ai process: %w", &httpclient.StatusError{StatusCode: 500, Body: "boom"})).Once()
	proc.On("Process", mock.Anything, testProcessors.DriversLicense, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("document ai process: %w", httpclient.ErrTimeout)).Once()
	e := NewExtractor(proc, testProcessors, nil)

	_, err := e.Extract(context.Background(), DriversLicense, licenseFile)
	assertKind(t, err, apperrors.KindCollaborator, apperrors.ErrCodeDocumentExtractionFailed)
	assert.Contains(t, err.Error(), "boom")

	_, err = e.Extract(context.Background(), DriversLicense, licenseFile)
	assertKind(t, err, apperrors.KindCollaborator, "TIMEOUT_ERROR")
}
