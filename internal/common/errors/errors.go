// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// ErrorKind groups codes by how the conversation should recover.
type ErrorKind string

const (
	KindConfiguration   ErrorKind = "CONFIGURATION"
	KindInputMissing    ErrorKind = "INPUT_MISSING"
	KindExtractionEmpty ErrorKind = "EXTRACTION_EMPTY"
	KindCollaborator    ErrorKind = "COLLABORATOR"
	KindValidation      ErrorKind = "VALIDATION"
	KindBusinessRule    ErrorKind = "BUSINESS_RULE"
	KindInternal        ErrorKind = "INTERNAL"
)

// Configuration errors
const (
	ErrCodeProcessorNotConfigured ErrorCode = "PROCESSOR_NOT_CONFIGURED"
	ErrCodeServiceNotConfigured   ErrorCode = "SERVICE_NOT_CONFIGURED"
)

// Input-missing errors
const (
	ErrCodeDocumentMissing      ErrorCode = "DOCUMENT_MISSING"
	ErrCodeUnsupportedMediaType ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	ErrCodeImageMissing         ErrorCode = "IMAGE_MISSING"
	ErrCodeImageUnreadable      ErrorCode = "IMAGE_UNREADABLE"
	ErrCodeArtifactNotFound     ErrorCode = "ARTIFACT_NOT_FOUND"
)

// Extraction-empty errors
const (
	ErrCodeExtractionEmpty ErrorCode = "EXTRACTION_EMPTY"
)

// Collaborator errors
const (
	ErrCodeDocumentExtractionFailed ErrorCode = "DOCUMENT_EXTRACTION_FAILED"
	ErrCodePlaceSearchFailed        ErrorCode = "PLACE_SEARCH_FAILED"
	ErrCodeKnowledgeSearchFailed    ErrorCode = "KNOWLEDGE_SEARCH_FAILED"
	ErrCodeModelCallFailed          ErrorCode = "MODEL_CALL_FAILED"
	ErrCodeModelTimeout             ErrorCode = "MODEL_TIMEOUT"
	ErrCodeWebSearchTimeout         ErrorCode = "WEB_SEARCH_TIMEOUT"
	ErrCodeOpportunityUpdateFailed  ErrorCode = "OPPORTUNITY_UPDATE_FAILED"
	ErrCodeArtifactStoreFailed      ErrorCode = "ARTIFACT_STORE_FAILED"
	ErrCodeDatabaseQueryFailed      ErrorCode = "DATABASE_QUERY_FAILED"
)

// Job variable and workflow errors
const (
	ErrCodeInputParsingFailed     ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrCodeFraudulentDocument     ErrorCode = "FRAUDULENT_DOCUMENT"
	ErrCodeInvalidStageTransition ErrorCode = "INVALID_STAGE_TRANSITION"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Kind      ErrorKind              `json:"kind"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Kind           string                 `json:"kind"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorKind":    e.Kind,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, kind ErrorKind, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Kind:      kind,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewProcessorNotConfiguredError reports a missing extraction processor id.
func NewProcessorNotConfiguredError(documentClass string) *StandardError {
	return newError(ErrCodeProcessorNotConfigured, KindConfiguration,
		fmt.Sprintf("Document AI processor for %s is not configured.", documentClass),
		"", false)
}

// NewServiceNotConfiguredError reports a missing key, project or endpoint for a collaborator.
func NewServiceNotConfiguredError(service, missing string) *StandardError {
	return newError(ErrCodeServiceNotConfigured, KindConfiguration,
		fmt.Sprintf("%s is not configured", service),
		fmt.Sprintf("missing %s", missing), false)
}

func NewDocumentMissingError(documentClass string) *StandardError {
	return newError(ErrCodeDocumentMissing, KindInputMissing,
		fmt.Sprintf("No file provided for %s processing.", documentClass),
		"", false)
}

func NewUnsupportedMediaTypeError(mediaType string) *StandardError {
	return newError(ErrCodeUnsupportedMediaType, KindInputMissing,
		"Unsupported document type. Please upload a JPEG, PNG or PDF file.",
		fmt.Sprintf("media type %q", mediaType), false)
}

func NewImageMissingError() *StandardError {
	return newError(ErrCodeImageMissing, KindInputMissing,
		"No image supplied. Please upload a photo of your current terminal.",
		"", false)
}

func NewImageUnreadableError(err error) *StandardError {
	return newError(ErrCodeImageUnreadable, KindInputMissing,
		"The uploaded image could not be read. Please upload a clear JPEG or PNG photo.",
		err.Error(), false)
}

func NewArtifactNotFoundError(name string) *StandardError {
	return newError(ErrCodeArtifactNotFound, KindInputMissing,
		fmt.Sprintf("Artifact %q was not found for this session", name),
		"", false)
}

// NewExtractionEmptyError reports a successful collaborator call that yielded no usable fields.
func NewExtractionEmptyError(documentClass string) *StandardError {
	return newError(ErrCodeExtractionEmpty, KindExtractionEmpty,
		fmt.Sprintf("Could not extract Names or Address from the %s.", documentClass),
		"", false)
}

func NewDocumentExtractionFailedError(err error) *StandardError {
	return newError(ErrCodeDocumentExtractionFailed, KindCollaborator,
		"Document extraction failed", err.Error(), true)
}

func NewPlaceSearchFailedError(status string, err error) *StandardError {
	e := newError(ErrCodePlaceSearchFailed, KindCollaborator,
		"Place search failed", err.Error(), true)
	if status != "" {
		e.WithMetadata("status", status)
		// A non-OK status from the service is not a transport problem.
		e.Retryable = false
	}
	return e
}

func NewKnowledgeSearchFailedError(err error) *StandardError {
	return newError(ErrCodeKnowledgeSearchFailed, KindCollaborator,
		"Knowledge search failed", err.Error(), true)
}

func NewModelCallFailedError(model string, err error) *StandardError {
	return newError(ErrCodeModelCallFailed, KindCollaborator,
		fmt.Sprintf("Model '%s' call failed", model), err.Error(), true)
}

func NewModelTimeoutError(model string) *StandardError {
	return newError(ErrCodeModelTimeout, KindCollaborator,
		fmt.Sprintf("Model '%s' timed out", model), "", true)
}

func NewWebSearchTimeoutError() *StandardError {
	return newError(ErrCodeWebSearchTimeout, KindCollaborator,
		"Web search timed out", "", true)
}

func NewOpportunityUpdateFailedError(err error) *StandardError {
	return newError(ErrCodeOpportunityUpdateFailed, KindCollaborator,
		"Opportunity update failed", err.Error(), true)
}

func NewArtifactStoreFailedError(err error) *StandardError {
	return newError(ErrCodeArtifactStoreFailed, KindCollaborator,
		"Artifact store unavailable", err.Error(), true)
}

func NewDatabaseQueryFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeDatabaseQueryFailed, KindCollaborator,
		fmt.Sprintf("Database operation '%s' failed", operation), err.Error(), true)
}

func NewInputParsingFailedError(err error) *StandardError {
	return newError(ErrCodeInputParsingFailed, KindValidation,
		"Failed to parse job variables", err.Error(), false)
}

func NewValidationFailedError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, KindValidation,
		"Input validation failed", details, false)
}

func NewFraudulentDocumentError(reasons []string) *StandardError {
	return newError(ErrCodeFraudulentDocument, KindBusinessRule,
		"Fraudulent document detected; verification cannot continue",
		strings.Join(reasons, "; "), false)
}

func NewInvalidStageTransitionError(stage, event string) *StandardError {
	return newError(ErrCodeInvalidStageTransition, KindBusinessRule,
		fmt.Sprintf("Event %s is not allowed in stage %s", event, stage),
		"", false)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", KindCollaborator,
		fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", KindCollaborator,
		fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError("RESOURCE_NOT_FOUND", KindBusinessRule,
		fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError("AUTHENTICATION_ERROR", KindConfiguration,
		"Authentication failed", details, false)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError("BUSINESS_RULE_VIOLATION", KindBusinessRule, message, details, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDocumentExtractionFailed,
		ErrCodeKnowledgeSearchFailed,
		ErrCodeArtifactStoreFailed,
		ErrCodeDatabaseQueryFailed,
		ErrCodeOpportunityUpdateFailed,
		"EXTERNAL_SERVICE_ERROR":
		return 3

	case ErrCodePlaceSearchFailed,
		ErrCodeModelCallFailed,
		ErrCodeWebSearchTimeout,
		"TIMEOUT_ERROR":
		return 2

	case ErrCodeModelTimeout:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	kind := stdErr.Kind
	if kind == "" {
		kind = KindInternal
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Kind:           string(kind),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err into a StandardError, downgrading anything
// unrecognised to an internal error.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, KindInternal, "Unexpected error", err.Error(), false)
}

// IsKind reports whether err is a StandardError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Kind == kind
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DOCUMENT") || strings.Contains(codeStr, "EXTRACTION") || strings.Contains(codeStr, "PROCESSOR") || strings.Contains(codeStr, "FRAUD"):
		return "KYC"
	case strings.Contains(codeStr, "PLACE"):
		return "QUALIFY"
	case strings.Contains(codeStr, "MODEL") || strings.Contains(codeStr, "IMAGE") || strings.Contains(codeStr, "KNOWLEDGE") || strings.Contains(codeStr, "WEB"):
		return "RECOMMEND"
	case strings.Contains(codeStr, "OPPORTUNITY"):
		return "CRM"
	case strings.Contains(codeStr, "ARTIFACT") || strings.Contains(codeStr, "DATABASE"):
		return "STORAGE"
	case strings.Contains(codeStr, "STAGE"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSING") || strings.Contains(codeStr, "UNSUPPORTED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
